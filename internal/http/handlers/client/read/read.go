// Package read реализует HTTP-обработчик получения клиента по ID.
// Клиенты после мягкого удаления не находятся.
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

// Handler отдаёт клиента по ID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение клиента.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить клиента
// @Tags Clients
// @Produce  json
// @Param id path int true "ID клиента"
// @Success 200 {object} response.Response "Клиент"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.read"
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

	client, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to read client", sl.Err(err))
		response.RenderError(w, r, err, "could not read client")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": client,
	}))
}
