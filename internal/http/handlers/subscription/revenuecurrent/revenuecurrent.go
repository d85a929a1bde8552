// Package revenuecurrent реализует HTTP-обработчик полученной выручки по активным подпискам.
package revenuecurrent

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Handler отдаёт сумму платежей по активным подпискам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает подсчёт текущей выручки по подпискам.
type Service interface {
	CurrentRevenue(ctx context.Context) (decimal.Decimal, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущая выручка по подпискам
// @Description Сумма всех платежей по активным подпискам
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Выручка"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/revenue/current [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.revenuecurrent"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	total, err := h.service.CurrentRevenue(r.Context())
	if err != nil {
		log.Error("failed to compute subscription revenue", sl.Err(err))
		response.RenderError(w, r, err, "could not compute revenue")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"current": total,
	}))
}
