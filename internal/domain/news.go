package domain

// NewsItem is the core entity: one row per discovered article, keyed by the
// original English headline.
type NewsItem struct {
	Title             string
	Link              string
	ThumbnailURL      string
	Source            string
	FullText          string
	TitleRU           string
	ProcessedFullText string
	Status            Status
}

// Status enumerates pipeline lifecycle states.
type Status string

const (
	StatusNew         Status = "no"
	StatusFetched     Status = "fetched"
	StatusFetchFailed Status = "fetch_failed"
	StatusProcessed   Status = "processed"
	StatusPublished   Status = "published_to_tg"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusFetched, StatusFetchFailed, StatusProcessed, StatusPublished:
		return true
	}
	return false
}
