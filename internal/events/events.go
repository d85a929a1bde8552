// Package events публикует доменные события биллинга (подписание договора,
// записанные платежи, истечение подписки) для внешних потребителей.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/software-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Типы событий, они же routing key.
const (
	ContractCreated     = "contract.created"
	ContractPaid        = "contract.payment_recorded"
	ContractSigned      = "contract.signed"
	SubscriptionCreated = "subscription.created"
	SubscriptionRenewed = "subscription.renewed"
	SubscriptionLapsed  = "subscription.lapsed"
)

// Event — конверт доменного события.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New создаёт событие с новым идентификатором.
func New(eventType string, at time.Time, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: at,
		Payload:    payload,
	}
}

// Publisher публикует события.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AMQPPublisher публикует события в topic-exchange RabbitMQ.
// Канал amqp не потокобезопасен, поэтому публикация сериализуется.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher создаёт публикатор поверх открытого канала.
func NewAMQPPublisher(ch *amqp.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish отправляет событие с routing key, равным типу события.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return rabbitmq.Publish(p.ch, p.exchange, e.message())
}

func (e Event) message() rabbitmq.Message {
	return rabbitmq.Message{
		ID:         e.ID,
		RoutingKey: e.Type,
		Timestamp:  e.OccurredAt,
		Body:       e,
	}
}

// Noop отбрасывает события. Используется, когда RabbitMQ не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, Event) error { return nil }

// Emit публикует событие и только логирует ошибку: состояние уже зафиксировано
// в хранилище, и неудачная публикация не должна менять результат операции.
func Emit(ctx context.Context, p Publisher, log *slog.Logger, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn("failed to publish event", slog.String("type", e.Type), slog.String("event_id", e.ID), sl.Err(err))
	}
}
