// Package read реализует HTTP-обработчик получения договора по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler отдаёт договор с платежами и зафиксированными скидками.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение договора.
type Service interface {
	Get(ctx context.Context, contractID int64) (*models.Contract, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить договор
// @Tags Contracts
// @Produce  json
// @Param id path int true "ID договора"
// @Success 200 {object} response.Response "Договор"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Договор не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.read"
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

	contract, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to read contract", sl.Err(err))
		response.RenderError(w, r, err, "could not read contract")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"contract": contract,
		"paid":     contract.Paid(),
	}))
}
