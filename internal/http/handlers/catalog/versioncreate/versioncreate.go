// Package versioncreate реализует HTTP-обработчик добавления версии продукта.
package versioncreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler добавляет версии продуктов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает добавление версии.
type Service interface {
	AddVersion(ctx context.Context, v models.ProductVersion) (*models.ProductVersion, error)
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
// @Summary Добавить версию продукта
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Param id path int true "ID продукта"
// @Param request body models.ProductVersion true "Версия и годовая цена"
// @Success 201 {object} response.Response "Версия добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Продукт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /products/{id}/versions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.versioncreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	productID, err := request.ID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.ProductVersion
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
	req.ProductID = productID

	version, err := h.service.AddVersion(r.Context(), req)
	if err != nil {
		log.Error("failed to add product version", sl.Err(err))
		response.RenderError(w, r, err, "could not add product version")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"version": version,
	}))
}
