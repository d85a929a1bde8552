// Package create реализует HTTP-обработчик оформления подписки на продукт.
//
// Handler принимает JSON с клиентом, продуктом, периодом продления и ценой из прайса,
// валидирует его и вызывает сервис подписок. Сервис сразу записывает первый платеж
// со скидкой, поэтому в ответе подписка уже оплачена за первый период.
//
// В случае ошибок формируются HTTP-ответы с видом и причиной ошибки.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// Handler управляет HTTP-запросами на создание подписок.
//
// Использует логгер для записи операций и ошибок,
// сервис бизнес-логики для создания подписки,
// а также валидатор для проверки структуры входных данных.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики для создания подписок
	validate *validator.Validate // Валидатор структуры входящих данных
	now      func() time.Time
}

// Service описывает интерфейс бизнес-логики создания подписки.
type Service interface {
	Create(ctx context.Context, req models.SubscriptionRequest, now time.Time) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ServeHTTP godoc
// @Summary Создать новую подписку
// @Description Создает подписку клиента на продукт и записывает первый платеж со скидкой.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.SubscriptionRequest true "Данные новой подписки"
// @Success 201 {object} response.Response "Подписка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, период или цена"
// @Failure 404 {object} response.ErrorResponse "Клиент или продукт не найдены"
// @Failure 409 {object} response.ErrorResponse "Активная подписка на продукт уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании подписки"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, err := h.service.Create(r.Context(), req, h.now())
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		response.RenderError(w, r, err, "could not create subscription")
		return
	}

	log.Info("subscription created", slog.Int64("id", sub.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
	}))
}
