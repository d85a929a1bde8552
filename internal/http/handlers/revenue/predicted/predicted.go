// Package predicted реализует HTTP-обработчик прогнозируемой выручки.
//
// Прогноз складывается из полной цены действующих неподписанных
// договоров и цены следующего продления каждой активной подписки.
package predicted

import (
	"context"
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

// Handler считает прогнозируемую выручку.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает прогноз выручки и пересчёт в валюту.
type Service interface {
	Predicted(ctx context.Context, productID *int64, now time.Time) (decimal.Decimal, error)
	Convert(ctx context.Context, amount decimal.Decimal, currency string) (*models.Conversion, error)
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
// @Summary Прогнозируемая выручка
// @Tags Revenue
// @Produce  json
// @Param product_id query int false "ID продукта"
// @Param currency query string false "Код валюты для пересчета"
// @Success 200 {object} response.Response "Прогноз"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 502 {object} response.ErrorResponse "Курс валюты недоступен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /revenue/predicted [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.revenue.predicted"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	productID, err := request.OptionalID(r, "product_id")
	if err != nil {
		log.Error("failed to parse product_id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid product_id"))
		return
	}

	total, err := h.service.Predicted(r.Context(), productID, h.now())
	if err != nil {
		log.Error("failed to compute predicted revenue", sl.Err(err))
		response.RenderError(w, r, err, "could not compute revenue")
		return
	}

	data := map[string]any{
		"predicted": total,
	}
	if currency := r.URL.Query().Get("currency"); currency != "" {
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
