// Package listforclient реализует HTTP-обработчик списка договоров клиента.
package listforclient

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

// Handler отдаёт договоры клиента вместе с платежами и примененными скидками.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку договоров клиента.
type Service interface {
	ListForClient(ctx context.Context, clientID int64) ([]models.Contract, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Договоры клиента
// @Tags Contracts
// @Produce  json
// @Param id path int true "ID клиента"
// @Success 200 {object} response.Response "Список договоров"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id}/contracts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.listforclient"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clientID, err := request.ID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	contracts, err := h.service.ListForClient(r.Context(), clientID)
	if err != nil {
		log.Error("failed to list contracts", sl.Err(err))
		response.RenderError(w, r, err, "could not list contracts")
		return
	}

	log.Info("contracts listed", slog.Int("count", len(contracts)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"contracts": contracts,
	}))
}
