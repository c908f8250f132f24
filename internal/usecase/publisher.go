package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// Telegram caps message text at 4096 characters; 4000 leaves headroom for
// the entities envelope.
const maxMessageLen = 4000

// refusalSentinel is the phrase the model emits instead of a summary when it
// declines the source text; such rows are consumed without posting.
const refusalSentinel = "В интернете есть много сайтов с информацией на эту тему."

var emojiSet = []string{"📰", "📄", "♨️", "‼️", "⭐", "⚡", "💥", "🧨", "🎉", "🌟", "✨", "📨", "❗"}

// Publisher posts one processed row per cycle to the chat channel, pacing
// publications 10–20 minutes apart and staying silent between 02:00 and
// 07:00 local time.
type Publisher struct {
	repo     ports.NewsRepository
	notifier ports.Notifier
	logger   *slog.Logger
	rng      *rand.Rand
	now      func() time.Time

	intervalMin int // minutes
	intervalMax int
}

// NewPublisher wires the notifier with the repository. The location fixes
// what "local time" means for the quiet window.
func NewPublisher(repo ports.NewsRepository, notifier ports.Notifier, loc *time.Location, logger *slog.Logger) *Publisher {
	if loc == nil {
		loc = time.Local
	}
	return &Publisher{
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
		rng:         newRand(),
		now:         func() time.Time { return time.Now().In(loc) },
		intervalMin: 10,
		intervalMax: 20,
	}
}

// Run is the long-lived publication loop; it exits when ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publisher started")

	for {
		if pause := sleepUntilMorning(p.now()); pause > 0 {
			p.logger.Info("quiet hours, sleeping until 07:00", "hours", pause.Hours())
			if err := sleepCtx(ctx, pause); err != nil {
				return err
			}
			continue
		}

		item, err := p.repo.SelectOneProcessedRandom(ctx)
		switch {
		case err != nil:
			p.logger.Error("pick processed row", "error", err)
		case item == nil:
			p.logger.Info("no processed rows ready for publication")
		default:
			p.publish(ctx, item)
		}

		delay := time.Duration(p.intervalMin+p.rng.Intn(p.intervalMax-p.intervalMin+1)) * time.Minute
		p.logger.Info("waiting before next publication", "delay", delay)
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
}

// publish runs the pre-send filters, composes and sends the message, and
// advances the row. A chat-API failure leaves the row 'processed' so the next
// cycle retries it.
func (p *Publisher) publish(ctx context.Context, item *domain.NewsItem) {
	if reason := p.filterReason(item); reason != "" {
		p.logger.Info("row consumed without sending", "title", item.Title, "reason", reason)
		p.markPublished(ctx, item.Title)
		return
	}

	emoji := emojiSet[p.rng.Intn(len(emojiSet))]
	message := enforceLength(composeMessage(emoji, item), item)

	if err := p.notifier.SendMessage(ctx, message); err != nil {
		p.logger.Error("send failed, will retry", "title", item.Title, "error", err)
		return
	}

	p.logger.Info("published", "title", item.Title, "source", item.Source)
	p.markPublished(ctx, item.Title)
}

// filterReason returns a non-empty reason when the row must not be posted.
func (p *Publisher) filterReason(item *domain.NewsItem) string {
	if item.TitleRU == "" || item.ProcessedFullText == "" {
		return "missing translated fields"
	}
	if strings.Contains(strings.ToLower(item.ProcessedFullText), "vpn") {
		return "vpn advertising policy"
	}
	if strings.Contains(item.ProcessedFullText, refusalSentinel) {
		return "model refused to summarize"
	}
	return ""
}

func (p *Publisher) markPublished(ctx context.Context, title string) {
	if err := p.repo.SetPublished(ctx, title); err != nil {
		p.logger.Error("mark published", "title", title, "error", err)
	}
}

// composeMessage renders the full channel post.
func composeMessage(emoji string, item *domain.NewsItem) string {
	return fmt.Sprintf("%s<b>%s: %s</b>\n\n%s\n\n🔗 <a href='%s'>Читать оригинал новости в источнике 👇</a>",
		emoji, item.Source, item.TitleRU, item.ProcessedFullText, item.Link)
}

// enforceLength truncates the body when the composed message exceeds the cap,
// and falls back to headline plus link when even a truncated body cannot fit.
func enforceLength(message string, item *domain.NewsItem) string {
	if utf8.RuneCountInString(message) <= maxMessageLen {
		return message
	}

	frame := fmt.Sprintf("<b>%s</b>\n\n...\n\n🔗 <a href='%s'>Читать оригинал</a>", item.TitleRU, item.Link)
	available := maxMessageLen - utf8.RuneCountInString(frame)
	if available > 100 {
		trimmed := truncateRunes(item.ProcessedFullText, available-3) + "..."
		return fmt.Sprintf("<b>%s</b>\n\n%s\n\n🔗 <a href='%s'>Читать оригинал</a>", item.TitleRU, trimmed, item.Link)
	}

	return fmt.Sprintf("<b>%s</b>\n\n🔗 <a href='%s'>Читать оригинал</a>", item.TitleRU, item.Link)
}

func truncateRunes(value string, max int) string {
	runes := []rune(value)
	if max < 0 {
		max = 0
	}
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

// sleepUntilMorning returns how long to sleep when now falls inside the
// [02:00, 07:00) quiet window, or zero outside it.
func sleepUntilMorning(now time.Time) time.Duration {
	hour := now.Hour()
	if hour < 2 || hour >= 7 {
		return 0
	}
	wake := time.Date(now.Year(), now.Month(), now.Day(), 7, 0, 0, 0, now.Location())
	return wake.Sub(now)
}
