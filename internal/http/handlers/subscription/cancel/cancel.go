// Package cancel реализует HTTP-обработчик проверки подписки на просрочку.
//
// Подписка деактивируется, только если текущий период не оплачен и окно оплаты
// закрыто. В остальных случаях запрос ничего не меняет и возвращает lapsed=false.
package cancel

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/software-billing/internal/http/request"
	"github.com/magabrotheeeer/software-billing/internal/http/response"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Handler запускает проверку просрочки для одной подписки.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает проверку просрочки.
type Service interface {
	Cancel(ctx context.Context, subscriptionID int64, now time.Time) (bool, error)
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
// @Summary Проверить подписку на просрочку
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
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

	lapsed, err := h.service.Cancel(r.Context(), id, h.now())
	if err != nil {
		log.Error("failed to check subscription", sl.Err(err))
		response.RenderError(w, r, err, "could not cancel subscription")
		return
	}

	log.Info("subscription checked", slog.Int64("subscription_id", id), slog.Bool("lapsed", lapsed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": id,
		"lapsed":          lapsed,
	}))
}
