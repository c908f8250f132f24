package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"newsdigest/internal/app"
	"newsdigest/internal/config"
	"newsdigest/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	logger.Info("news pipeline starting", "feeds", len(cfg.Feeds), "db", cfg.Database.Path)

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped")
}
