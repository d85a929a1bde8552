// Package discountcreate реализует HTTP-обработчик добавления скидки.
//
// Новая скидка сразу участвует в выборе лучшей скидки: сервис сбрасывает
// кэш её категории.
package discountcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler добавляет скидки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает добавление скидки.
type Service interface {
	CreateDiscount(ctx context.Context, d models.Discount) (*models.Discount, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить скидку
// @Description Категории: upfront, subscription, loyalty. Скидка loyalty не привязывается к продукту.
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Param request body models.Discount true "Скидка"
// @Success 201 {object} response.Response "Скидка добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректная скидка"
// @Failure 404 {object} response.ErrorResponse "Продукт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /discounts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.discountcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Discount
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	discount, err := h.service.CreateDiscount(r.Context(), req)
	if err != nil {
		log.Error("failed to create discount", sl.Err(err))
		response.RenderError(w, r, err, "could not create discount")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"discount": discount,
	}))
}
