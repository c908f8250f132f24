package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"newsdigest/internal/config"
	"newsdigest/internal/extractor"
	"newsdigest/internal/infrastructure/llm"
	"newsdigest/internal/infrastructure/rss"
	"newsdigest/internal/infrastructure/sites"
	"newsdigest/internal/infrastructure/storage"
	"newsdigest/internal/infrastructure/telegram"
	"newsdigest/internal/logging"
	"newsdigest/internal/usecase"
)

// Application wires configuration to the pipeline stages and their supervisor.
type Application struct {
	cfg        config.Config
	db         *sql.DB
	supervisor *usecase.Supervisor
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	repo := storage.NewSQLiteRepository(db)

	registry := extractor.NewRegistry()
	registry.Register(sites.NewWiredExtractor(nil))
	registry.Register(sites.NewCnetExtractor(nil))
	registry.Register(sites.NewComputerWeeklyExtractor(nil))
	registry.Register(sites.NewEngadgetExtractor(nil))

	feeds := rss.NewFeedClient(nil)
	gpt := llm.NewYandexGPTClient(cfg.YandexGPT)
	notifier := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	ingester := usecase.NewIngester(cfg.Feeds, feeds, repo, baseLogger.With("component", "ingester"))
	fetcher := usecase.NewFetcher(repo, registry, baseLogger.With("component", "fetcher"))
	processor := usecase.NewProcessor(repo, gpt, baseLogger.With("component", "processor"))
	publisher := usecase.NewPublisher(repo, notifier, cfg.Location(), baseLogger.With("component", "publisher"))

	supervisor := usecase.NewSupervisor(baseLogger.With("component", "supervisor"),
		usecase.Task{
			Name:            "ingester",
			Run:             ingester.Run,
			SuccessCooldown: 1800 * time.Second,
			ErrorCooldown:   300 * time.Second,
		},
		usecase.Task{
			Name:            "fetcher",
			InitialDelay:    60 * time.Second,
			Run:             fetcher.Run,
			SuccessCooldown: 1800 * time.Second,
			ErrorCooldown:   300 * time.Second,
		},
		usecase.Task{
			Name:            "processor",
			InitialDelay:    120 * time.Second,
			Run:             processor.Run,
			SuccessCooldown: 2100 * time.Second,
			ErrorCooldown:   300 * time.Second,
		},
		usecase.Task{
			Name: "publisher",
			Run:  publisher.Run,
		},
	)

	return &Application{cfg: cfg, db: db, supervisor: supervisor}, nil
}

// Run starts the supervised stages and blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()
	a.supervisor.Start(ctx)
	return nil
}
