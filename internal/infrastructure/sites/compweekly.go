package sites

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsdigest/internal/extractor"
)

// ComputerWeeklyExtractor pulls article bodies from computerweekly.com pages.
type ComputerWeeklyExtractor struct {
	client *http.Client
}

var _ extractor.Extractor = (*ComputerWeeklyExtractor)(nil)

// NewComputerWeeklyExtractor wires an HTTP client; nil selects the
// browser-profile default.
func NewComputerWeeklyExtractor(client *http.Client) *ComputerWeeklyExtractor {
	if client == nil {
		client = defaultClient()
	}
	return &ComputerWeeklyExtractor{client: client}
}

// Host identifies the extractor inside the registry.
func (e *ComputerWeeklyExtractor) Host() string {
	return "computerweekly.com"
}

// Extract returns the article body or an empty string on failure. Paragraphs
// starting with "@" are bylines and photo credits, not content.
func (e *ComputerWeeklyExtractor) Extract(ctx context.Context, articleURL string) (string, error) {
	doc, err := fetchDocument(ctx, e.client, articleURL)
	if err != nil {
		return "", nil
	}

	containers := []string{
		"section#content-body",
		"section.main-article-chapter",
		".article-content",
	}

	body := collectParagraphs(doc, containers, "p", 0, func(_ *goquery.Selection, text string) bool {
		return strings.HasPrefix(text, "@")
	})

	return body, nil
}
