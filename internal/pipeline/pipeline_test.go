package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/store"
)

// mockSource implements feeds.Fetcher for testing.
type mockSource struct {
	name       string
	sourceType feeds.SourceType
	articles   []feeds.Article
	err        error
	fetchCount atomic.Int32
}

func (m *mockSource) Name() string           { return m.name }
func (m *mockSource) Type() feeds.SourceType { return m.sourceType }

func (m *mockSource) Fetch(ctx context.Context) ([]feeds.Article, error) {
	m.fetchCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

func longTitled(id, url string, src feeds.SourceRef, score int) feeds.Article {
	return feeds.Article{
		ID:        id,
		Title:     strings.Repeat("A long and substantive headline ", 4) + id,
		URL:       url,
		Source:    src,
		Published: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Score:     score,
	}
}

func newTestPipeline(t *testing.T, fetchers []feeds.Fetcher) *Pipeline {
	t.Helper()
	kv, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return New(kv, fetchers, Options{TrustedDomains: []string{"reuters.com"}})
}

func TestRunMergesAllSources(t *testing.T) {
	rssRef := feeds.SourceRef{Name: "Feed A", Type: feeds.SourceRSS}
	redditRef := feeds.SourceRef{Name: "r/news", Type: feeds.SourceReddit}

	p := newTestPipeline(t, []feeds.Fetcher{
		&mockSource{name: "Feed A", sourceType: feeds.SourceRSS, articles: []feeds.Article{
			longTitled("a1", "https://example.com/1", rssRef, 0),
			longTitled("a2", "https://example.com/2", rssRef, 0),
		}},
		&mockSource{name: "r/news", sourceType: feeds.SourceReddit, articles: []feeds.Article{
			longTitled("b1", "https://www.reuters.com/3", redditRef, 99),
		}},
	})

	result := p.Run(context.Background(), nil)
	if len(result.Articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(result.Articles))
	}
	if result.FromCache {
		t.Error("first run should not come from cache")
	}
	if result.SourcesOK != 2 || result.SourcesFailed != 0 {
		t.Errorf("sources ok/failed = %d/%d, want 2/0", result.SourcesOK, result.SourcesFailed)
	}
}

func TestRunIsolatesSourceFailure(t *testing.T) {
	rssRef := feeds.SourceRef{Name: "Feed A", Type: feeds.SourceRSS}

	p := newTestPipeline(t, []feeds.Fetcher{
		&mockSource{name: "Feed A", sourceType: feeds.SourceRSS, articles: []feeds.Article{
			longTitled("a1", "https://example.com/1", rssRef, 0),
		}},
		&mockSource{name: "Broken", sourceType: feeds.SourceRSS, err: errors.New("connection refused")},
	})

	result := p.Run(context.Background(), nil)
	if len(result.Articles) != 1 {
		t.Fatalf("healthy source should still contribute, got %d articles", len(result.Articles))
	}
	if result.SourcesFailed != 1 {
		t.Errorf("SourcesFailed = %d, want 1", result.SourcesFailed)
	}
}

func TestRunAllSourcesFailing(t *testing.T) {
	p := newTestPipeline(t, []feeds.Fetcher{
		&mockSource{name: "Broken1", sourceType: feeds.SourceRSS, err: errors.New("timeout")},
		&mockSource{name: "Broken2", sourceType: feeds.SourceReddit, err: errors.New("HTTP 503")},
	})

	result := p.Run(context.Background(), nil)
	if len(result.Articles) != 0 {
		t.Errorf("expected empty result, got %d articles", len(result.Articles))
	}
	if result.SourcesOK != 0 || result.SourcesFailed != 2 {
		t.Errorf("sources ok/failed = %d/%d, want 0/2", result.SourcesOK, result.SourcesFailed)
	}
}

func TestRunServesFreshCacheWithoutFetching(t *testing.T) {
	rssRef := feeds.SourceRef{Name: "Feed A", Type: feeds.SourceRSS}
	src := &mockSource{name: "Feed A", sourceType: feeds.SourceRSS, articles: []feeds.Article{
		longTitled("a1", "https://example.com/1", rssRef, 0),
	}}
	p := newTestPipeline(t, []feeds.Fetcher{src})

	first := p.Run(context.Background(), nil)
	if first.FromCache {
		t.Fatal("first run unexpectedly cached")
	}

	second := p.Run(context.Background(), nil)
	if !second.FromCache {
		t.Error("second run within TTL should come from cache")
	}
	if got := src.fetchCount.Load(); got != 1 {
		t.Errorf("source fetched %d times, want 1 (cache hit issues no network calls)", got)
	}
	if len(second.Articles) != len(first.Articles) {
		t.Errorf("cached list has %d articles, want %d", len(second.Articles), len(first.Articles))
	}
}

func TestRunRefetchesAfterTTL(t *testing.T) {
	rssRef := feeds.SourceRef{Name: "Feed A", Type: feeds.SourceRSS}
	src := &mockSource{name: "Feed A", sourceType: feeds.SourceRSS, articles: []feeds.Article{
		longTitled("a1", "https://example.com/1", rssRef, 0),
	}}
	p := newTestPipeline(t, []feeds.Fetcher{src})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.Run(context.Background(), nil)

	// 4 minutes later: still fresh
	now = now.Add(4 * time.Minute)
	result := p.Run(context.Background(), nil)
	if !result.FromCache {
		t.Error("cache aged 4m should still be fresh")
	}

	// 6 minutes after the fetch: stale, triggers a fresh cycle
	now = now.Add(2 * time.Minute)
	result = p.Run(context.Background(), nil)
	if result.FromCache {
		t.Error("cache aged 6m should be stale")
	}
	if got := src.fetchCount.Load(); got != 2 {
		t.Errorf("source fetched %d times, want 2", got)
	}
}

func TestClearCacheForcesRefetch(t *testing.T) {
	rssRef := feeds.SourceRef{Name: "Feed A", Type: feeds.SourceRSS}
	src := &mockSource{name: "Feed A", sourceType: feeds.SourceRSS, articles: []feeds.Article{
		longTitled("a1", "https://example.com/1", rssRef, 0),
	}}
	p := newTestPipeline(t, []feeds.Fetcher{src})

	ctx := context.Background()
	p.Run(ctx, nil)
	p.ClearCache(ctx)

	result := p.Run(ctx, nil)
	if result.FromCache {
		t.Error("run after ClearCache should bypass the cache")
	}
	if got := src.fetchCount.Load(); got != 2 {
		t.Errorf("source fetched %d times, want 2", got)
	}
}

func TestRunAppliesDedupeFilterSort(t *testing.T) {
	rssRef := feeds.SourceRef{Name: "Feed A", Type: feeds.SourceRSS}
	redditRef := feeds.SourceRef{Name: "r/news", Type: feeds.SourceReddit}
	sharedURL := "https://www.reuters.com/shared"

	rssArticle := longTitled("rss-dup", sharedURL, rssRef, 0)
	redditDup := longTitled("reddit-dup", sharedURL, redditRef, 500)
	redditDup.Domain = "reuters.com"
	lowScore := longTitled("low", "https://www.reuters.com/low", redditRef, 3)
	lowScore.Domain = "reuters.com"

	p := newTestPipeline(t, []feeds.Fetcher{
		&mockSource{name: "Feed A", sourceType: feeds.SourceRSS, articles: []feeds.Article{rssArticle}},
		&mockSource{name: "r/news", sourceType: feeds.SourceReddit, articles: []feeds.Article{redditDup, lowScore}},
	})

	result := p.Run(context.Background(), nil) // default config: MinScore 10
	if len(result.Articles) != 1 {
		t.Fatalf("expected 1 article after dedupe+filter, got %d", len(result.Articles))
	}
	if result.Articles[0].ID != "rss-dup" {
		t.Errorf("survivor = %q, want the rss duplicate", result.Articles[0].ID)
	}
}

func TestFetchAllWithNoSources(t *testing.T) {
	p := newTestPipeline(t, nil)
	if got := p.FetchAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no articles, got %d", len(got))
	}
}
