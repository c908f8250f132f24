package ports

import (
	"context"

	"newsdigest/internal/domain"
)

// NewsRepository persists news rows and drives the lifecycle state machine.
type NewsRepository interface {
	InitSchema(ctx context.Context) error
	InsertIfNew(ctx context.Context, item domain.NewsItem) (bool, error)
	SelectUnfetched(ctx context.Context) ([]domain.NewsItem, error)
	SelectFetched(ctx context.Context) ([]domain.NewsItem, error)
	SelectOneProcessedRandom(ctx context.Context) (*domain.NewsItem, error)
	SetFullText(ctx context.Context, title, text string) error
	SetFetchFailed(ctx context.Context, title string) error
	SetProcessed(ctx context.Context, title, titleRU, bodyRU string) error
	SetPublished(ctx context.Context, title string) error
}

// FeedSource pulls current items from one RSS feed.
type FeedSource interface {
	Fetch(ctx context.Context, sourceName, feedURL string) ([]domain.NewsItem, error)
}

// TextProcessor turns English text into Russian output via the LLM service.
type TextProcessor interface {
	TranslateTitle(ctx context.Context, title string) (string, error)
	RewriteBody(ctx context.Context, body string) (string, error)
}

// Notifier delivers a formatted message to the chat channel.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}
