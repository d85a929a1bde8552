// Package payment реализует HTTP-обработчик платежа по договору.
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

// Handler принимает платежи по договорам.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает бизнес-логику приёма платежа.
type Service interface {
	AddPayment(ctx context.Context, contractID int64, amount decimal.Decimal, now time.Time) (*models.Contract, error)
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
// @Summary Оплатить договор
// @Description Записывает платеж по договору. Когда сумма платежей становится равной цене, договор подписывается.
// @Tags Contracts
// @Accept  json
// @Produce  json
// @Param id path int true "ID договора"
// @Param request body models.PaymentRequest true "Сумма платежа"
// @Success 200 {object} response.Response "Платеж принят"
// @Failure 400 {object} response.ErrorResponse "Некорректная сумма"
// @Failure 404 {object} response.ErrorResponse "Договор не найден"
// @Failure 409 {object} response.ErrorResponse "Срок договора истек"
// @Failure 422 {object} response.ErrorResponse "Переплата"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id}/payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.payment"
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

	contract, err := h.service.AddPayment(r.Context(), id, req.Amount, h.now())
	if err != nil {
		log.Warn("payment rejected", slog.Int64("contract_id", id), sl.Err(err))
		response.RenderError(w, r, err, "could not add payment")
		return
	}

	log.Info("payment accepted", slog.Int64("contract_id", id), slog.Bool("signed", contract.Signed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"contract": contract.Response(),
		"paid":     contract.Paid(),
	}))
}
