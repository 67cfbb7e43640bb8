package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"round/internal/config"
	"round/internal/db"
	"round/internal/providers"
	"round/internal/rates"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadForWorker()
	if err != nil {
		slog.Error("failed to load worker config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	service := rates.NewService(database, providers.NewFromConfig(cfg), cfg.DefaultCurrency, cfg.FXMaxAge)
	scheduler := rates.NewScheduler(cfg.FXRefreshInterval, func(ctx context.Context) error {
		// A failed refresh is retried on the next tick.
		if err := service.Refresh(ctx); err != nil {
			slog.Error("fx refresh failed", "error", err)
		}
		return nil
	})

	slog.Info("fx worker started", "provider", cfg.FXProviderName, "interval", cfg.FXRefreshInterval.String(), "max_age", cfg.FXMaxAge.String())
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fx worker stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("fx worker stopped")
}
