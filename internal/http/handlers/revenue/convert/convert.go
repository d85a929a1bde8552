// Package convert реализует HTTP-обработчик пересчёта суммы в другую валюту.
package convert

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler пересчитывает сумму в базовой валюте в запрошенную.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает пересчёт в валюту.
type Service interface {
	Convert(ctx context.Context, amount decimal.Decimal, currency string) (*models.Conversion, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пересчитать сумму в валюту
// @Tags Revenue
// @Produce  json
// @Param amount query string true "Сумма в базовой валюте"
// @Param currency query string true "Код валюты"
// @Success 200 {object} response.Response "Результат пересчета"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 502 {object} response.ErrorResponse "Курс валюты недоступен"
// @Router /revenue/convert [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.revenue.convert"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		log.Error("failed to parse amount", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid amount"))
		return
	}
	currency := q.Get("currency")
	if currency == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("currency is required"))
		return
	}

	conv, err := h.service.Convert(r.Context(), amount, currency)
	if err != nil {
		log.Error("failed to convert amount", sl.Err(err))
		response.RenderError(w, r, err, "could not convert amount")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"conversion": conv,
	}))
}
