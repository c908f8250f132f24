package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"newsdigest/internal/extractor"
	"newsdigest/internal/ports"
)

// Fetcher resolves a site extractor for each pending row and stores the
// extracted body.
type Fetcher struct {
	repo     ports.NewsRepository
	registry *extractor.Registry
	logger   *slog.Logger
	rng      *rand.Rand

	pauseMin time.Duration
	pauseMax time.Duration
}

// NewFetcher wires the extractor registry with the repository.
func NewFetcher(repo ports.NewsRepository, registry *extractor.Registry, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		repo:     repo,
		registry: registry,
		logger:   logger,
		rng:      newRand(),
		pauseMin: time.Second,
		pauseMax: 2 * time.Second,
	}
}

// Run executes one extraction pass over all rows in state 'no'. Rows without
// a matching extractor are skipped in place and re-scanned next tick; an
// empty extraction is terminal.
func (f *Fetcher) Run(ctx context.Context) error {
	if err := f.repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	pending, err := f.repo.SelectUnfetched(ctx)
	if err != nil {
		return fmt.Errorf("load pending rows: %w", err)
	}
	if len(pending) == 0 {
		f.logger.Info("no rows awaiting extraction")
		return nil
	}

	f.logger.Info("extraction pass started", "rows", len(pending))
	fetched := 0

	for _, item := range pending {
		ext, err := f.registry.Resolve(item.Link)
		if err != nil {
			f.logger.Warn("no extractor for row", "link", item.Link)
			continue
		}

		body, err := ext.Extract(ctx, item.Link)
		if err != nil {
			f.logger.Error("extraction failed", "link", item.Link, "error", err)
			continue
		}

		if body == "" {
			f.logger.Warn("extractor returned empty body", "title", item.Title)
			if err := f.repo.SetFetchFailed(ctx, item.Title); err != nil {
				f.logger.Error("mark fetch_failed", "title", item.Title, "error", err)
			}
			continue
		}

		if err := f.repo.SetFullText(ctx, item.Title, body); err != nil {
			f.logger.Error("store full text", "title", item.Title, "error", err)
			continue
		}
		fetched++

		if err := sleepCtx(ctx, jitter(f.rng, f.pauseMin, f.pauseMax)); err != nil {
			return err
		}
	}

	f.logger.Info("extraction pass finished", "fetched", fetched)
	return nil
}
