package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"newsdigest/internal/config"
	"newsdigest/internal/ports"
)

// Ingester polls the configured RSS feeds and inserts unseen headlines.
type Ingester struct {
	feeds  []config.FeedConfig
	source ports.FeedSource
	repo   ports.NewsRepository
	logger *slog.Logger
	rng    *rand.Rand

	pauseMin time.Duration
	pauseMax time.Duration
}

// NewIngester wires the feed list with the repository.
func NewIngester(feeds []config.FeedConfig, source ports.FeedSource, repo ports.NewsRepository, logger *slog.Logger) *Ingester {
	return &Ingester{
		feeds:    feeds,
		source:   source,
		repo:     repo,
		logger:   logger,
		rng:      newRand(),
		pauseMin: 500 * time.Millisecond,
		pauseMax: 2 * time.Second,
	}
}

// Run executes one ingestion pass. Feeds are visited in random order with a
// short pause between them to smooth outbound traffic; a broken feed is
// logged and skipped, never aborting the pass.
func (i *Ingester) Run(ctx context.Context) error {
	if err := i.repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	shuffled := make([]config.FeedConfig, len(i.feeds))
	copy(shuffled, i.feeds)
	i.rng.Shuffle(len(shuffled), func(a, b int) {
		shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
	})

	added := 0
	for _, feed := range shuffled {
		items, err := i.source.Fetch(ctx, feed.Name, feed.URL)
		if err != nil {
			i.logger.Error("feed fetch failed", "source", feed.Name, "error", err)
			continue
		}

		inserted := 0
		for _, item := range items {
			isNew, err := i.repo.InsertIfNew(ctx, item)
			if err != nil {
				i.logger.Error("insert failed", "title", item.Title, "error", err)
				continue
			}
			if isNew {
				inserted++
			}
		}
		added += inserted
		i.logger.Info("feed processed", "source", feed.Name, "items", len(items), "new", inserted)

		if err := sleepCtx(ctx, jitter(i.rng, i.pauseMin, i.pauseMax)); err != nil {
			return err
		}
	}

	i.logger.Info("ingestion pass finished", "added", added)
	return nil
}
