package feeds

import (
	"context"
	"time"
)

// SourceType identifies the origin of an article
type SourceType string

const (
	SourceRSS    SourceType = "rss"
	SourceReddit SourceType = "reddit"
)

// SourceRef describes where an article came from, for display and
// credibility lookup.
type SourceRef struct {
	Name string     `json:"name"`
	Type SourceType `json:"type"`
	Icon string     `json:"icon,omitempty"`
}

// Article is the unified record that flows through the pipeline.
// Immutable after construction; every Article has a non-empty Title
// and URL (items missing either are dropped at the parser boundary).
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    SourceRef `json:"source"`
	Published time.Time `json:"published_at"`
	ImageURL  string    `json:"image_url,omitempty"`
	Domain    string    `json:"domain,omitempty"`

	// Score and CommentCount are only meaningful for reddit items;
	// RSS items leave them zero.
	Score        int `json:"score,omitempty"`
	CommentCount int `json:"comment_count,omitempty"`
}

// Fetcher is the interface both source packages implement.
type Fetcher interface {
	// Name returns the human-readable source name
	Name() string

	// Type returns the source type
	Type() SourceType

	// Fetch retrieves the latest articles from this source
	Fetch(ctx context.Context) ([]Article, error)
}

// FilterConfig controls the pipeline's aggregator-item filtering and
// ranking. Immutable per pipeline run.
type FilterConfig struct {
	RequireExternalLink   bool `json:"require_external_link"`
	RequireNewsDomain     bool `json:"require_news_domain"`
	DeprioritizeOneLiners bool `json:"deprioritize_one_liners"`
	MinScore              int  `json:"min_score"`
}

// DefaultFilterConfig returns the filter settings used when the caller
// supplies none.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		RequireExternalLink:   true,
		RequireNewsDomain:     false,
		DeprioritizeOneLiners: true,
		MinScore:              10,
	}
}
