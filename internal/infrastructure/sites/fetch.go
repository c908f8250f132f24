package sites

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	requestTimeout   = 15 * time.Second
)

var (
	spaceExpr   = regexp.MustCompile(`\s+`)
	controlExpr = regexp.MustCompile("[\\x00-\\x1f\\x7f-\\x9f]")
)

func defaultClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// fetchHTML performs a browser-like GET and returns the raw page bytes.
// Third-party sites block bare Go clients, so the desktop profile matters.
func fetchHTML(ctx context.Context, client *http.Client, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return body, nil
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	body, err := fetchHTML(ctx, client, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// cleanText collapses whitespace and strips non-printable characters.
func cleanText(text string) string {
	text = spaceExpr.ReplaceAllString(strings.TrimSpace(text), " ")
	return controlExpr.ReplaceAllString(text, "")
}

// collectParagraphs walks the first matching container selector and gathers
// cleaned paragraph text, skipping anything shorter than minLen or matched by
// the skip predicate.
func collectParagraphs(doc *goquery.Document, containerSelectors []string, tags string, minLen int, skip func(*goquery.Selection, string) bool) string {
	for _, selector := range containerSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		var paragraphs []string
		container.Find(tags).Each(func(_ int, sel *goquery.Selection) {
			text := cleanText(sel.Text())
			if len(text) <= minLen {
				return
			}
			if skip != nil && skip(sel, text) {
				return
			}
			paragraphs = append(paragraphs, text)
		})

		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}

	return ""
}

// insideUnwanted reports whether the selection sits under an aside, figure,
// or ad wrapper.
func insideUnwanted(sel *goquery.Selection) bool {
	return sel.ParentsFiltered("aside, figure, div.ad-wrapper").Length() > 0
}
