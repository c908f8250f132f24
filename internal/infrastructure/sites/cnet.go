package sites

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsdigest/internal/extractor"
)

// CnetExtractor pulls article bodies from cnet.com pages.
type CnetExtractor struct {
	client *http.Client
}

var _ extractor.Extractor = (*CnetExtractor)(nil)

// NewCnetExtractor wires an HTTP client; nil selects the browser-profile default.
func NewCnetExtractor(client *http.Client) *CnetExtractor {
	if client == nil {
		client = defaultClient()
	}
	return &CnetExtractor{client: client}
}

// Host identifies the extractor inside the registry.
func (e *CnetExtractor) Host() string {
	return "cnet.com"
}

// Extract returns the article body or an empty string on failure. Product
// comparison widgets and "See at" shopping links are dropped.
func (e *CnetExtractor) Extract(ctx context.Context, articleURL string) (string, error) {
	doc, err := fetchDocument(ctx, e.client, articleURL)
	if err != nil {
		return "", nil
	}

	doc.Find(".ad-unit, .inline-ad, .c-marketplace, .c-productComparison").Remove()

	containers := []string{
		`div[data-testid="body"]`,
		"div.article-body",
		".c-pageArticle_content",
		".c-shortcodeArticle-content",
		".post-content",
	}

	body := collectParagraphs(doc, containers, "p, h2, h3, h4", 15, func(sel *goquery.Selection, text string) bool {
		if strings.HasPrefix(text, "See at") {
			return true
		}
		return insideUnwanted(sel)
	})

	return body, nil
}
