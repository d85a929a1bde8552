package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Message описывает одно сообщение для exchange. RoutingKey уходит также
// в свойство Type, ID в MessageId, чтобы потребитель мог отбрасывать повторы.
type Message struct {
	ID         string
	RoutingKey string
	Timestamp  time.Time
	Body       any
}

func publishing(msg Message) (amqp.Publishing, error) {
	body, err := json.Marshal(msg.Body)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.RoutingKey,
		Timestamp:    msg.Timestamp.UTC(),
		Body:         body,
	}, nil
}

// Publish сериализует тело сообщения в JSON и публикует его в exchange.
func Publish(ch *amqp.Channel, exchange string, msg Message) error {
	const op = "rabbitmq.Publish"
	p, err := publishing(msg)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, msg.RoutingKey, err)
	}
	if err := ch.Publish(exchange, msg.RoutingKey, false, false, p); err != nil {
		return fmt.Errorf("%s: %s: %w", op, msg.RoutingKey, err)
	}
	return nil
}
