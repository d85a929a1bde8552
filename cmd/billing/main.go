// Package main Software Billing API
//
// @title           Software Billing API
// @version         1.0
// @description     API биллинга поставщика ПО: клиенты, каталог и скидки, договоры с разовой оплатой, подписки и выручка
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/software-billing/internal/app/billing"
	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(os.Stdout, cfg.Env)

	logger.Info("starting billing", slog.String("env", cfg.Env))
	logger.Debug("loaded config", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := billing.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("billing stopped gracefully")
}
