package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/software-billing/internal/app/sweeper"
	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(os.Stdout, cfg.Env)
	logger.Info("starting sweeper", slog.String("env", cfg.Env), slog.Duration("interval", cfg.Interval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sweeper.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sweeper", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("sweeper stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("sweeper stopped gracefully")
}
