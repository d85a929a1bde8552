package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/software-billing/internal/cache"
	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/currency"
	"github.com/magabrotheeeer/software-billing/internal/events"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
	"github.com/magabrotheeeer/software-billing/internal/migrations"
	catalogservice "github.com/magabrotheeeer/software-billing/internal/services/catalog"
	clientservice "github.com/magabrotheeeer/software-billing/internal/services/client"
	contractservice "github.com/magabrotheeeer/software-billing/internal/services/contract"
	"github.com/magabrotheeeer/software-billing/internal/services/discount"
	revenueservice "github.com/magabrotheeeer/software-billing/internal/services/revenue"
	subservice "github.com/magabrotheeeer/software-billing/internal/services/subscription"
	"github.com/magabrotheeeer/software-billing/internal/storage/repository"
)

// App — HTTP-сервис биллинга.
type App struct {
	server      *http.Server
	logger      *slog.Logger
	db          *repository.Storage
	cache       *cache.Cache
	closeEvents func()
}

// New подключает зависимости, применяет миграции и собирает роутер.
// Redis и RabbitMQ необязательны: без адреса используются заглушки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.DB.Close()
		return nil, err
	}

	var (
		discountCache discount.Cache = cache.Noop{}
		redisCache    *cache.Cache
	)
	if cfg.AddressRedis != "" {
		redisCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.DB.Close()
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		discountCache = redisCache
	} else {
		logger.Info("redis address is empty, discount cache is disabled")
	}

	publisher, closeEvents, err := events.Dial(cfg.RabbitMQ, logger)
	if err != nil {
		_ = db.DB.Close()
		if redisCache != nil {
			_ = redisCache.Close()
		}
		return nil, err
	}

	resolver := discount.NewResolver(db, discountCache, cfg.DiscountCacheTTL, logger)
	rates := currency.NewClient(cfg.RatesBaseURL, cfg.RatesTimeout)

	services := Services{
		Clients:       clientservice.NewClientService(db, logger),
		Catalog:       catalogservice.NewCatalogService(db, resolver, logger),
		Contracts:     contractservice.NewContractService(db, resolver, publisher, logger),
		Subscriptions: subservice.NewSubscriptionService(db, resolver, publisher, cfg.GraceDays, logger),
		Revenue:       revenueservice.NewRevenueService(db, resolver, rates, cfg.BaseCurrency, logger),
		Health:        db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:      srv,
		logger:      logger,
		db:          db,
		cache:       redisCache,
		closeEvents: closeEvents,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	a.closeEvents()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
