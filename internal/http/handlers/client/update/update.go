// Package update реализует HTTP-обработчик изменения данных клиента.
//
// Меняются только контакты и имена. Смена варианта клиента или PESEL/KRS
// отклоняется с причиной ImmutableIdentity.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler управляет HTTP-запросами на изменение клиентов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает изменение клиента.
type Service interface {
	Update(ctx context.Context, id int64, req models.ClientRequest) (*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить клиента
// @Tags Clients
// @Accept  json
// @Produce  json
// @Param id path int true "ID клиента"
// @Param request body models.ClientRequest true "Новые данные клиента"
// @Success 200 {object} response.Response "Клиент изменен"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "Попытка изменить PESEL, KRS или вид клиента"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.update"
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

	var req models.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	client, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update client", sl.Err(err))
		response.RenderError(w, r, err, "could not update client")
		return
	}

	log.Info("client updated", slog.Int64("id", client.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": client,
	}))
}
