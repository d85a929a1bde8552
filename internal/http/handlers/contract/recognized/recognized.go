// Package recognized реализует HTTP-обработчик проверки признания выручки по договору.
//
// Выручка по договору признаётся только после подписания, то есть после полной оплаты.
package recognized

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Handler отвечает, признана ли выручка по договору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает проверку признания выручки.
type Service interface {
	IsRevenueRecognized(ctx context.Context, contractID int64) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Признана ли выручка по договору
// @Tags Contracts
// @Produce  json
// @Param id path int true "ID договора"
// @Success 200 {object} response.Response "Признак признания выручки"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Договор не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id}/revenue-recognized [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.recognized"
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

	recognized, err := h.service.IsRevenueRecognized(r.Context(), id)
	if err != nil {
		log.Error("failed to check revenue recognition", sl.Err(err))
		response.RenderError(w, r, err, "could not check revenue recognition")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"contract_id": id,
		"recognized":  recognized,
	}))
}
