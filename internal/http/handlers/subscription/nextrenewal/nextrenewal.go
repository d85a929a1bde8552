// Package nextrenewal реализует HTTP-обработчик даты следующего платежа по подписке.
package nextrenewal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/month"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Handler отдаёт дату следующего платежа и границы текущего окна оплаты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает расчёт дат продления.
type Service interface {
	NextRenewalDate(ctx context.Context, subscriptionID int64) (time.Time, error)
	CurrentPeriod(ctx context.Context, subscriptionID int64) (month.Period, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Дата следующего платежа по подписке
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response "Дата и окно оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id}/next-renewal [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.nextrenewal"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := request.ID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	next, err := h.service.NextRenewalDate(r.Context(), id)
	if err != nil {
		log.Error("failed to compute next renewal date", sl.Err(err))
		response.RenderError(w, r, err, "could not compute next renewal date")
		return
	}
	period, err := h.service.CurrentPeriod(r.Context(), id)
	if err != nil {
		log.Error("failed to compute current period", sl.Err(err))
		response.RenderError(w, r, err, "could not compute next renewal date")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id":   id,
		"next_renewal_date": next,
		"period_end":        period.End,
		"window_end":        period.WindowEnd,
	}))
}
