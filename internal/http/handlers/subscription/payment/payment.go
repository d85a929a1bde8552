// Package payment реализует HTTP-обработчик платежа за продление подписки.
//
// Сумма должна в точности совпадать с ценой подписки с учётом скидки
// постоянного клиента, действующей в момент платежа.
package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler принимает платежи за продление.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает бизнес-логику продления.
type Service interface {
	AddRenewalPayment(ctx context.Context, subscriptionID int64, amount decimal.Decimal, now time.Time) (*models.Subscription, error)
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
// @Summary Оплатить продление подписки
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param id path int true "ID подписки"
// @Param request body models.PaymentRequest true "Сумма платежа"
// @Success 200 {object} response.Response "Платеж принят"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка неактивна или окно оплаты закрыто"
// @Failure 422 {object} response.ErrorResponse "Сумма не совпадает с ценой или период уже оплачен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id}/payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.payment"
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

	var req models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	sub, err := h.service.AddRenewalPayment(r.Context(), id, req.Amount, h.now())
	if err != nil {
		log.Warn("renewal payment rejected", slog.Int64("subscription_id", id), sl.Err(err))
		response.RenderError(w, r, err, "could not add renewal payment")
		return
	}

	log.Info("renewal payment accepted", slog.Int64("subscription_id", id), slog.Int("payments", len(sub.Payments)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub.Response(),
	}))
}
