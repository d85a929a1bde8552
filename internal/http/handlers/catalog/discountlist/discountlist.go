// Package discountlist реализует HTTP-обработчик списка скидок категории.
package discountlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler отдаёт скидки категории.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку скидок.
type Service interface {
	ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Скидки категории
// @Tags Catalog
// @Produce  json
// @Param category query string true "upfront, subscription или loyalty"
// @Success 200 {object} response.Response "Список скидок"
// @Failure 400 {object} response.ErrorResponse "Неизвестная категория"
// @Router /discounts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.discountlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := models.DiscountCategory(r.URL.Query().Get("category"))
	list, err := h.service.ListDiscounts(r.Context(), category)
	if err != nil {
		log.Error("failed to list discounts", sl.Err(err))
		response.RenderError(w, r, err, "could not list discounts")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"discounts": list,
	}))
}
