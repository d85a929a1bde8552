// Package actual реализует HTTP-обработчик фактической выручки за период.
//
// Учитываются платежи по подписанным договорам и все платежи по подпискам,
// попавшие в окно [from, to). Параметр product_id сужает выборку до продукта,
// параметр currency пересчитывает сумму в другую валюту по курсу NBP.
package actual

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler считает фактическую выручку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает расчёт выручки и пересчёт в валюту.
type Service interface {
	Actual(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error)
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
// @Summary Фактическая выручка
// @Tags Revenue
// @Produce  json
// @Param from query string true "Начало окна (RFC 3339 или 2006-01-02), включительно"
// @Param to query string true "Конец окна (RFC 3339 или 2006-01-02), не включительно"
// @Param product_id query int false "ID продукта"
// @Param currency query string false "Код валюты для пересчета"
// @Success 200 {object} response.Response "Сумма выручки"
// @Failure 400 {object} response.ErrorResponse "Некорректный диапазон"
// @Failure 502 {object} response.ErrorResponse "Курс валюты недоступен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /revenue/actual [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.revenue.actual"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	from, err := request.Time(q.Get("from"))
	if err != nil {
		log.Error("failed to parse from", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid from"))
		return
	}
	to, err := request.Time(q.Get("to"))
	if err != nil {
		log.Error("failed to parse to", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid to"))
		return
	}
	productID, err := request.OptionalID(r, "product_id")
	if err != nil {
		log.Error("failed to parse product_id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid product_id"))
		return
	}

	total, err := h.service.Actual(r.Context(), models.RevenueFilter{From: from, To: to, ProductID: productID})
	if err != nil {
		log.Error("failed to compute actual revenue", sl.Err(err))
		response.RenderError(w, r, err, "could not compute revenue")
		return
	}

	data := map[string]any{
		"from":    from,
		"to":      to,
		"revenue": total,
	}
	if currency := q.Get("currency"); currency != "" {
		conv, err := h.service.Convert(r.Context(), total, currency)
		if err != nil {
			log.Error("failed to convert revenue", sl.Err(err))
			response.RenderError(w, r, err, "could not convert revenue")
			return
		}
		data["conversion"] = conv
	}

	render.JSON(w, r, response.StatusOKWithData(data))
}
