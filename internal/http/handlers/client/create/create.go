// Package create реализует HTTP-обработчик регистрации клиента.
//
// Клиент регистрируется либо как физическое лицо (person с PESEL), либо как
// компания (company с KRS). Идентификатор после создания не меняется.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler управляет HTTP-запросами на регистрацию клиентов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис клиентов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает бизнес-логику регистрации клиента.
type Service interface {
	Create(ctx context.Context, req models.ClientRequest) (*models.Client, error)
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
// @Summary Зарегистрировать клиента
// @Description Создает физическое лицо (person) или компанию (company). Должен быть заполнен ровно один профиль.
// @Tags Clients
// @Accept  json
// @Produce  json
// @Param request body models.ClientRequest true "Данные клиента"
// @Success 201 {object} response.Response "Клиент создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 409 {object} response.ErrorResponse "Клиент с таким PESEL или KRS уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	client, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create client", sl.Err(err))
		response.RenderError(w, r, err, "could not create client")
		return
	}

	log.Info("client created", slog.Int64("id", client.ID), slog.String("kind", string(client.Kind)))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": client,
	}))
}
