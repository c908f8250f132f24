package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsdigest/internal/ports"
)

// Processor translates headlines and rewrites bodies for rows in state
// 'fetched'. The LLM is treated as a flaky collaborator: any failure leaves
// the row in 'fetched' for a later retry, and success is recorded only
// atomically with both translated fields present.
type Processor struct {
	repo   ports.NewsRepository
	llm    ports.TextProcessor
	logger *slog.Logger

	pause time.Duration
}

// NewProcessor wires the completion client with the repository.
func NewProcessor(repo ports.NewsRepository, llm ports.TextProcessor, logger *slog.Logger) *Processor {
	return &Processor{
		repo:   repo,
		llm:    llm,
		logger: logger,
		pause:  time.Second,
	}
}

// Run executes one translation pass.
func (p *Processor) Run(ctx context.Context) error {
	if err := p.repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	fetched, err := p.repo.SelectFetched(ctx)
	if err != nil {
		return fmt.Errorf("load fetched rows: %w", err)
	}
	if len(fetched) == 0 {
		p.logger.Info("no rows awaiting translation")
		return nil
	}

	p.logger.Info("translation pass started", "rows", len(fetched))
	processed := 0

	for _, item := range fetched {
		titleRU, err := p.llm.TranslateTitle(ctx, item.Title)
		if err != nil {
			// Keep the original headline rather than lose the row over a
			// title-only failure; the body decides the row's fate.
			p.logger.Error("title translation failed", "title", item.Title, "error", err)
			titleRU = item.Title
		}
		if titleRU == "" {
			p.logger.Warn("empty translated title", "title", item.Title)
			continue
		}

		bodyRU, err := p.llm.RewriteBody(ctx, item.FullText)
		if err != nil {
			p.logger.Error("body rewrite failed", "title", item.Title, "error", err)
			continue
		}

		if err := p.repo.SetProcessed(ctx, item.Title, titleRU, bodyRU); err != nil {
			p.logger.Error("store processed text", "title", item.Title, "error", err)
			continue
		}
		processed++

		if err := sleepCtx(ctx, p.pause); err != nil {
			return err
		}
	}

	p.logger.Info("translation pass finished", "processed", processed)
	return nil
}
