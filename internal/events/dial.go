package events

import (
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Dial подключается к RabbitMQ и объявляет exchange для событий. При пустом
// URL возвращает Noop. Возвращаемая функция закрывает канал и соединение.
func Dial(cfg config.RabbitMQ, log *slog.Logger) (Publisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		log.Info("rabbitmq url is empty, domain events are disabled")
		return Noop{}, func() {}, nil
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, nil, fmt.Errorf("events.Dial: %w", err)
	}
	ch, err := rabbitmq.SetupExchange(conn, cfg.Exchange)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("events.Dial: %w", err)
	}

	closeFn := func() {
		if err := ch.Close(); err != nil {
			log.Error("failed to close channel", sl.Err(err))
		}
		if err := conn.Close(); err != nil {
			log.Error("failed to close connection", sl.Err(err))
		}
	}
	log.Info("connected to rabbitmq", slog.String("exchange", cfg.Exchange))
	return NewAMQPPublisher(ch, cfg.Exchange), closeFn, nil
}
