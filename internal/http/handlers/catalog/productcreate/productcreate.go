// Package productcreate реализует HTTP-обработчик добавления продукта в каталог.
package productcreate

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

// Handler добавляет продукты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает добавление продукта.
type Service interface {
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
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
// @Summary Добавить продукт
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Param request body models.Product true "Продукт"
// @Success 201 {object} response.Response "Продукт добавлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Продукт с таким именем уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /products [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.productcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Product
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

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		log.Error("failed to create product", sl.Err(err))
		response.RenderError(w, r, err, "could not create product")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"product": product,
	}))
}
