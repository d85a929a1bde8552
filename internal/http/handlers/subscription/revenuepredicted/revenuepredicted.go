// Package revenuepredicted реализует HTTP-обработчик прогноза выручки по подпискам.
package revenuepredicted

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Handler отдаёт полученную выручку по активным подпискам вместе
// с ценой их следующих периодов.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает прогноз выручки по подпискам.
type Service interface {
	PredictedRevenue(ctx context.Context, now time.Time) (decimal.Decimal, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ServeHTTP godoc
// @Summary Прогноз выручки по подпискам
// @Description Платежи по активным подпискам плюс цена следующего периода со скидкой лояльности
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Прогноз"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/revenue/predicted [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.revenuepredicted"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	total, err := h.service.PredictedRevenue(r.Context(), h.now())
	if err != nil {
		log.Error("failed to compute predicted subscription revenue", sl.Err(err))
		response.RenderError(w, r, err, "could not compute revenue")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"predicted": total,
	}))
}
