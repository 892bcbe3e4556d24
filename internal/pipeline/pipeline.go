// Package pipeline turns the configured sources into one normalized,
// deduplicated, filtered, ranked article list, cached for a short TTL.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/logging"
	"github.com/abelbrown/newsdesk/internal/store"
)

// newsCacheKey is the single cache slot holding the last pipeline run.
const newsCacheKey = "news:articles"

// maxConcurrentFetches limits parallel source fetches.
const maxConcurrentFetches = 8

// cacheEnvelope is what gets persisted under newsCacheKey.
type cacheEnvelope struct {
	Articles  []feeds.Article `json:"articles"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Options configures a Pipeline.
type Options struct {
	// NewsTTL is how long a cached run stays fresh.
	NewsTTL time.Duration

	// FeedTimeout bounds each RSS source fetch.
	FeedTimeout time.Duration

	// RedditTimeout bounds each reddit source fetch.
	RedditTimeout time.Duration

	// TrustedDomains is the allow-list for the news-domain filter.
	TrustedDomains []string
}

// Result is a pipeline run outcome. The article list alone cannot
// distinguish "no matches" from "every source failed", so the counts
// are carried alongside.
type Result struct {
	Articles      []feeds.Article
	FromCache     bool
	SourcesOK     int
	SourcesFailed int
}

// Pipeline fetches, merges, and caches articles from all sources.
type Pipeline struct {
	kv       *store.KV
	fetchers []feeds.Fetcher
	opts     Options
	now      func() time.Time
}

// New creates a Pipeline over the given store and sources.
func New(kv *store.KV, fetchers []feeds.Fetcher, opts Options) *Pipeline {
	if opts.NewsTTL == 0 {
		opts.NewsTTL = 5 * time.Minute
	}
	if opts.FeedTimeout == 0 {
		opts.FeedTimeout = 15 * time.Second
	}
	if opts.RedditTimeout == 0 {
		opts.RedditTimeout = 10 * time.Second
	}
	return &Pipeline{
		kv:       kv,
		fetchers: fetchers,
		opts:     opts,
		now:      time.Now,
	}
}

// FetchAll returns the current ranked article list, serving from the
// news cache when it is younger than the TTL. Never returns an error:
// failures degrade to fewer (or zero) articles.
func (p *Pipeline) FetchAll(ctx context.Context, cfg *feeds.FilterConfig) []feeds.Article {
	return p.Run(ctx, cfg).Articles
}

// Run is FetchAll with the full Result.
func (p *Pipeline) Run(ctx context.Context, cfg *feeds.FilterConfig) Result {
	filterCfg := feeds.DefaultFilterConfig()
	if cfg != nil {
		filterCfg = *cfg
	}

	if cached, ok := p.readCache(ctx); ok {
		logging.Debug("Serving articles from cache", "count", len(cached))
		return Result{Articles: cached, FromCache: true}
	}

	merged, okCount, failCount := p.fetchSources(ctx)

	merged = feeds.Dedupe(merged)
	merged = feeds.Filter(merged, filterCfg, p.opts.TrustedDomains)
	feeds.Sort(merged, filterCfg)

	p.writeCache(ctx, merged)

	logging.Info("Pipeline run complete",
		"articles", len(merged),
		"sources_ok", okCount,
		"sources_failed", failCount)

	return Result{Articles: merged, SourcesOK: okCount, SourcesFailed: failCount}
}

// ClearCache removes the news cache slot, forcing the next run to
// fetch fresh.
func (p *Pipeline) ClearCache(ctx context.Context) {
	if err := p.kv.Remove(ctx, newsCacheKey); err != nil {
		logging.Error("Failed to clear news cache", "error", err)
	}
}

// fetchSources fetches every source concurrently. Each source is
// failure-isolated: an error yields zero articles for that source and
// never aborts its siblings.
func (p *Pipeline) fetchSources(ctx context.Context) (merged []feeds.Article, okCount, failCount int) {
	type sourceResult struct {
		articles []feeds.Article
		err      error
	}

	results := make([]sourceResult, len(p.fetchers))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	for i, f := range p.fetchers {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].err = ctx.Err()
				return nil
			}

			timeout := p.opts.FeedTimeout
			if f.Type() == feeds.SourceReddit {
				timeout = p.opts.RedditTimeout
			}
			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			articles, err := f.Fetch(fetchCtx)
			results[i] = sourceResult{articles: articles, err: err}
			return nil // never fail the group - errors reported per-source
		})
	}

	_ = g.Wait()

	for i, r := range results {
		if r.err != nil {
			failCount++
			logging.Error("Source fetch failed", "source", p.fetchers[i].Name(), "error", r.err)
			continue
		}
		okCount++
		merged = append(merged, r.articles...)
	}
	return merged, okCount, failCount
}

// readCache returns the cached article list if it is still fresh.
// Any read or decode failure is a cache miss, never fatal.
func (p *Pipeline) readCache(ctx context.Context) ([]feeds.Article, bool) {
	raw, ok, err := p.kv.Get(ctx, newsCacheKey)
	if err != nil {
		logging.Error("News cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		logging.Warn("News cache corrupt, discarding", "error", err)
		return nil, false
	}
	if p.now().Sub(env.FetchedAt) >= p.opts.NewsTTL {
		return nil, false
	}
	return env.Articles, true
}

// writeCache persists the run result. Write failures are logged and
// swallowed; the caller still gets its articles.
func (p *Pipeline) writeCache(ctx context.Context, articles []feeds.Article) {
	env := cacheEnvelope{Articles: articles, FetchedAt: p.now()}
	data, err := json.Marshal(env)
	if err != nil {
		logging.Error("News cache encode failed", "error", err)
		return
	}
	if err := p.kv.Set(ctx, newsCacheKey, string(data)); err != nil {
		logging.Error("News cache write failed", "error", err)
	}
}
