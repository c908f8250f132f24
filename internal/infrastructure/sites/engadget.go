package sites

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"newsdigest/internal/extractor"
)

// EngadgetExtractor pulls article bodies from engadget.com pages. Engadget's
// markup churns the most of the four sources, so a readability pass backs up
// the selector chain.
type EngadgetExtractor struct {
	client *http.Client
}

var _ extractor.Extractor = (*EngadgetExtractor)(nil)

// NewEngadgetExtractor wires an HTTP client; nil selects the browser-profile
// default.
func NewEngadgetExtractor(client *http.Client) *EngadgetExtractor {
	if client == nil {
		client = defaultClient()
	}
	return &EngadgetExtractor{client: client}
}

// Host identifies the extractor inside the registry.
func (e *EngadgetExtractor) Host() string {
	return "engadget.com"
}

// Extract returns the article body or an empty string on failure.
func (e *EngadgetExtractor) Extract(ctx context.Context, articleURL string) (string, error) {
	raw, err := fetchHTML(ctx, e.client, articleURL)
	if err != nil {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", nil
	}

	containers := []string{
		`[data-article-body="true"]`,
		".article-content",
		".post-content",
		".entry-content",
		"article",
	}

	body := collectParagraphs(doc, containers, "p", 20, func(sel *goquery.Selection, _ string) bool {
		return insideUnwanted(sel)
	})
	if body != "" {
		return body, nil
	}

	return e.extractWithReadability(raw, articleURL), nil
}

func (e *EngadgetExtractor) extractWithReadability(raw []byte, articleURL string) string {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(raw), parsed)
	if err != nil {
		return ""
	}

	var paragraphs []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		text := cleanText(line)
		if len(text) > 20 {
			paragraphs = append(paragraphs, text)
		}
	}

	return strings.Join(paragraphs, "\n\n")
}
