package sites

import (
	"context"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"newsdigest/internal/extractor"
)

// WiredExtractor pulls article bodies from wired.com pages.
type WiredExtractor struct {
	client *http.Client
}

var _ extractor.Extractor = (*WiredExtractor)(nil)

// NewWiredExtractor wires an HTTP client; nil selects the browser-profile default.
func NewWiredExtractor(client *http.Client) *WiredExtractor {
	if client == nil {
		client = defaultClient()
	}
	return &WiredExtractor{client: client}
}

// Host identifies the extractor inside the registry.
func (e *WiredExtractor) Host() string {
	return "wired.com"
}

// Extract returns the article body or an empty string when the page is
// unreachable or carries none of the known content containers.
func (e *WiredExtractor) Extract(ctx context.Context, articleURL string) (string, error) {
	doc, err := fetchDocument(ctx, e.client, articleURL)
	if err != nil {
		return "", nil
	}

	containers := []string{
		`div[data-testid="ContentHeaderAccreditation"] + div`,
		"article div.body__inner-container",
		".article-body",
		".post-content",
		`[data-attribute-verso-pattern="article-body"]`,
	}

	body := collectParagraphs(doc, containers, "p, h2, h3", 10, func(sel *goquery.Selection, _ string) bool {
		return insideUnwanted(sel)
	})

	return body, nil
}
