// Package sweeper собирает фоновый процесс, который деактивирует
// подписки с закрытым окном оплаты.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/software-billing/internal/cache"
	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/events"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/services/discount"
	schedulerservice "github.com/magabrotheeeer/software-billing/internal/services/scheduler"
	subservice "github.com/magabrotheeeer/software-billing/internal/services/subscription"
	"github.com/magabrotheeeer/software-billing/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	closeEvents      func()
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := db.CheckDatabaseReady(ctx)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
// Миграции применяет HTTP-сервис, поэтому здесь только ожидается готовность схемы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		_ = db.DB.Close()
		return nil, err
	}

	publisher, closeEvents, err := events.Dial(cfg.RabbitMQ, logger)
	if err != nil {
		_ = db.DB.Close()
		return nil, err
	}

	resolver := discount.NewResolver(db, cache.Noop{}, cfg.DiscountCacheTTL, logger)
	subscriptions := subservice.NewSubscriptionService(db, resolver, publisher, cfg.GraceDays, logger)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(subscriptions, cfg.Interval, logger),
		db:               db,
		closeEvents:      closeEvents,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down sweeper")
	a.closeEvents()
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
