package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Extractor downloads an article page and returns its body as plain text,
// paragraphs separated by blank lines. Network errors and unusable markup
// yield an empty string, never an error that should stop a pass.
type Extractor interface {
	Host() string
	Extract(ctx context.Context, articleURL string) (string, error)
}

// Registry maps registered host suffixes to their extractors.
type Registry struct {
	extractors map[string]Extractor
	order      []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces an extractor keyed by its host suffix.
func (r *Registry) Register(ext Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	host := strings.ToLower(ext.Host())
	if _, ok := r.extractors[host]; !ok {
		r.order = append(r.order, host)
	}
	r.extractors[host] = ext
}

// Resolve parses the article URL and returns the extractor whose registered
// suffix matches the URL host. A URL that merely mentions a known domain in
// its path or query does not match.
func (r *Registry) Resolve(articleURL string) (Extractor, error) {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("invalid article url %s: %w", articleURL, err)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, fmt.Errorf("article url %s has no host", articleURL)
	}

	for _, suffix := range r.order {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return r.extractors[suffix], nil
		}
	}

	return nil, fmt.Errorf("no extractor registered for host %s", host)
}
