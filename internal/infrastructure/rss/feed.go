package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	feedTimeout      = 15 * time.Second
)

// thumbnailResolver locates the preview-image URL for one feed item. Feeds
// differ only in where they hide it.
type thumbnailResolver func(item *gofeed.Item) string

// resolvers maps a source name to its thumbnail strategy; sources not listed
// use the media:thumbnail default.
var resolvers = map[string]thumbnailResolver{
	"CNET":            mediaContentThumbnail,
	"Engadget":        mediaContentThumbnail,
	"Computer Weekly": imageChildThumbnail,
}

// FeedClient fetches and parses one RSS feed into news rows.
type FeedClient struct {
	parser *gofeed.Parser
}

var _ ports.FeedSource = (*FeedClient)(nil)

// NewFeedClient builds a client with a browser-like profile; feeds served
// behind CDNs reject the default Go user agent.
func NewFeedClient(client *http.Client) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: feedTimeout}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = browserUserAgent
	return &FeedClient{parser: parser}
}

// Fetch downloads the feed and converts its items. Title and link are
// required; items missing either are dropped. Everything else is best-effort.
func (f *FeedClient) Fetch(ctx context.Context, sourceName, feedURL string) ([]domain.NewsItem, error) {
	feed, err := f.parser.ParseURLWithContext(strings.TrimSpace(feedURL), ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", sourceName, err)
	}

	resolve := resolvers[sourceName]
	if resolve == nil {
		resolve = mediaThumbnail
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		items = append(items, domain.NewsItem{
			Title:        title,
			Link:         link,
			ThumbnailURL: strings.TrimSpace(resolve(item)),
			Source:       sourceName,
			Status:       domain.StatusNew,
		})
	}

	return items, nil
}

// mediaThumbnail reads the media:thumbnail url attribute.
func mediaThumbnail(item *gofeed.Item) string {
	for _, ext := range item.Extensions["media"]["thumbnail"] {
		if url := ext.Attrs["url"]; url != "" {
			return url
		}
	}
	return fallbackThumbnail(item)
}

// mediaContentThumbnail prefers media:content entries tagged medium="image",
// then falls back to the default strategy.
func mediaContentThumbnail(item *gofeed.Item) string {
	for _, ext := range item.Extensions["media"]["content"] {
		if ext.Attrs["medium"] == "image" && ext.Attrs["url"] != "" {
			return ext.Attrs["url"]
		}
	}
	for _, ext := range item.Extensions["media"]["thumbnail"] {
		if url := ext.Attrs["url"]; url != "" {
			return url
		}
	}
	return fallbackThumbnail(item)
}

// imageChildThumbnail reads a bare <image> child element.
func imageChildThumbnail(item *gofeed.Item) string {
	if url := item.Custom["image"]; url != "" {
		return url
	}
	return fallbackThumbnail(item)
}

// fallbackThumbnail scrapes whatever image hint the parsed item still offers.
func fallbackThumbnail(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	return ""
}
