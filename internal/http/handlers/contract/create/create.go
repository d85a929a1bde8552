// Package create реализует HTTP-обработчик заключения договора на версию продукта.
//
// Handler принимает JSON с клиентом, версией продукта, сроком и годами поддержки,
// валидирует его и передаёт сервису договоров. Цена считается сервисом с учётом
// лучшей скидки за разовую оплату и надбавки постоянного клиента.
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

// Handler управляет HTTP-запросами на создание договоров.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис договоров
	validate *validator.Validate // Валидатор структуры входящих данных
	now      func() time.Time
}

// Service описывает бизнес-логику создания договора.
type Service interface {
	Create(ctx context.Context, req models.ContractRequest, now time.Time) (*models.Contract, error)
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
// @Summary Создать договор
// @Description Создает неподписанный договор на версию продукта. Срок договора строго больше 3 и меньше 30 дней.
// @Tags Contracts
// @Accept  json
// @Produce  json
// @Param request body models.ContractRequest true "Данные договора"
// @Success 201 {object} response.Response "Договор создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Клиент или версия продукта не найдены"
// @Failure 409 {object} response.ErrorResponse "У клиента уже есть действующий договор или подписка на продукт"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ContractRequest
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

	contract, err := h.service.Create(r.Context(), req, h.now())
	if err != nil {
		log.Error("failed to create contract", sl.Err(err))
		response.RenderError(w, r, err, "could not create contract")
		return
	}

	log.Info("contract created", slog.Int64("id", contract.ID), slog.String("price", contract.Price.StringFixed(2)))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"contract": contract,
	}))
}
