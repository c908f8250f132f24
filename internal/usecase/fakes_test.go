package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryRepo mirrors the store's status guards so stage tests exercise the
// same forward-only lifecycle.
type memoryRepo struct {
	rows map[string]*domain.NewsItem
}

var _ ports.NewsRepository = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[string]*domain.NewsItem{}}
}

func (m *memoryRepo) InitSchema(context.Context) error { return nil }

func (m *memoryRepo) InsertIfNew(_ context.Context, item domain.NewsItem) (bool, error) {
	if _, ok := m.rows[item.Title]; ok {
		return false, nil
	}
	item.Status = domain.StatusNew
	m.rows[item.Title] = &item
	return true, nil
}

func (m *memoryRepo) selectByStatus(status domain.Status) []domain.NewsItem {
	var out []domain.NewsItem
	for _, row := range m.rows {
		if row.Status == status {
			out = append(out, *row)
		}
	}
	return out
}

func (m *memoryRepo) SelectUnfetched(context.Context) ([]domain.NewsItem, error) {
	return m.selectByStatus(domain.StatusNew), nil
}

func (m *memoryRepo) SelectFetched(context.Context) ([]domain.NewsItem, error) {
	return m.selectByStatus(domain.StatusFetched), nil
}

func (m *memoryRepo) SelectOneProcessedRandom(context.Context) (*domain.NewsItem, error) {
	for _, row := range m.rows {
		if row.Status == domain.StatusProcessed {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) transition(title string, from, to domain.Status) (*domain.NewsItem, error) {
	row, ok := m.rows[title]
	if !ok || row.Status != from {
		return nil, fmt.Errorf("no row %q in state %s", title, from)
	}
	row.Status = to
	return row, nil
}

func (m *memoryRepo) SetFullText(_ context.Context, title, text string) error {
	row, err := m.transition(title, domain.StatusNew, domain.StatusFetched)
	if err != nil {
		return err
	}
	row.FullText = text
	return nil
}

func (m *memoryRepo) SetFetchFailed(_ context.Context, title string) error {
	_, err := m.transition(title, domain.StatusNew, domain.StatusFetchFailed)
	return err
}

func (m *memoryRepo) SetProcessed(_ context.Context, title, titleRU, bodyRU string) error {
	row, err := m.transition(title, domain.StatusFetched, domain.StatusProcessed)
	if err != nil {
		return err
	}
	row.TitleRU = titleRU
	row.ProcessedFullText = bodyRU
	return nil
}

func (m *memoryRepo) SetPublished(_ context.Context, title string) error {
	_, err := m.transition(title, domain.StatusProcessed, domain.StatusPublished)
	return err
}

type feedSourceFunc func(ctx context.Context, sourceName, feedURL string) ([]domain.NewsItem, error)

func (f feedSourceFunc) Fetch(ctx context.Context, sourceName, feedURL string) ([]domain.NewsItem, error) {
	return f(ctx, sourceName, feedURL)
}

type fakeTextProcessor struct {
	translateTitle func(title string) (string, error)
	rewriteBody    func(body string) (string, error)
}

func (f *fakeTextProcessor) TranslateTitle(_ context.Context, title string) (string, error) {
	return f.translateTitle(title)
}

func (f *fakeTextProcessor) RewriteBody(_ context.Context, body string) (string, error) {
	return f.rewriteBody(body)
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendMessage(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}
