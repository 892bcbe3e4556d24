// Newsdesk - aggregated news with cached AI explanations.
//
// Architecture overview:
//
//	internal/feeds, feeds/rss, feeds/reddit - sources and article model
//	internal/pipeline                       - fetch/dedupe/filter/sort/cache
//	internal/explain                        - explanation cache + generator
//	internal/store                          - shared SQLite key-value store
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/newsdesk/internal/brain"
	"github.com/abelbrown/newsdesk/internal/config"
	"github.com/abelbrown/newsdesk/internal/explain"
	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/feeds/reddit"
	"github.com/abelbrown/newsdesk/internal/feeds/rss"
	"github.com/abelbrown/newsdesk/internal/fetch"
	"github.com/abelbrown/newsdesk/internal/logging"
	"github.com/abelbrown/newsdesk/internal/pipeline"
	"github.com/abelbrown/newsdesk/internal/store"
)

func main() {
	var (
		refresh      = flag.Bool("refresh", false, "bypass the news cache and fetch fresh")
		limit        = flag.Int("limit", 30, "max articles to print")
		explainURL   = flag.String("explain", "", "explain the article with this URL")
		perspective  = flag.String("perspective", "", "political-perspective hint for explanations")
		ageRange     = flag.String("age", "", "age-range hint for explanations")
		location     = flag.String("location", "", "location hint for explanations")
		cacheStats   = flag.Bool("cache-stats", false, "print explanation cache statistics")
		clearCache   = flag.Bool("clear-cache", false, "clear the news cache and exit")
		clearExplain = flag.Bool("clear-explanations", false, "clear expired explanation entries and exit")
		sourcesFile  = flag.String("sources", config.SourcesPath(), "path to the sources YAML file")
	)
	flag.Parse()

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	sources, err := config.LoadSources(*sourcesFile)
	if err != nil {
		fatal("Failed to load sources: %v", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".newsdesk")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	kv, err := store.Open(filepath.Join(dataDir, "newsdesk.db"))
	if err != nil {
		fatal("Failed to open store: %v", err)
	}
	defer kv.Close()

	ctx := context.Background()

	pipe := pipeline.New(kv, buildFetchers(cfg, sources), pipeline.Options{
		NewsTTL:        time.Duration(cfg.NewsCacheTTL),
		FeedTimeout:    time.Duration(cfg.FeedTimeout),
		RedditTimeout:  time.Duration(cfg.RedditTimeout),
		TrustedDomains: cfg.TrustedDomains,
	})

	cache := explain.NewCache(kv, time.Duration(cfg.ExplainCacheTTL))
	provider := brain.NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model, time.Duration(cfg.Gemini.RequestTimeout))
	generator := explain.NewGenerator(cache, provider, time.Duration(cfg.Gemini.RateInterval), cfg.Gemini.MaxTokens)

	switch {
	case *clearCache:
		pipe.ClearCache(ctx)
		fmt.Println("News cache cleared.")

	case *clearExplain:
		removed := cache.ClearExpired(ctx)
		fmt.Printf("Removed %d expired explanation(s).\n", removed)

	case *cacheStats:
		stats := cache.Stats(ctx)
		if stats.Count == 0 {
			fmt.Println("Explanation cache is empty.")
			return
		}
		fmt.Printf("Explanations cached: %d (oldest %.1f days)\n", stats.Count, stats.OldestAgeDays)

	case *explainURL != "":
		runExplain(ctx, pipe, generator, *explainURL, &explain.UserPrefs{
			Perspective: *perspective,
			AgeRange:    *ageRange,
			Location:    *location,
		})

	default:
		if *refresh {
			pipe.ClearCache(ctx)
		}
		printArticles(pipe.Run(ctx, nil), *limit)
	}
}

// buildFetchers assembles the source list, skipping default-disabled
// source names.
func buildFetchers(cfg *config.Config, sources config.Sources) []feeds.Fetcher {
	disabled := make(map[string]bool, len(cfg.DisabledSources))
	for _, name := range cfg.DisabledSources {
		disabled[name] = true
	}

	feedClient := fetch.NewClient(time.Duration(cfg.FeedTimeout))
	redditClient := fetch.NewClient(time.Duration(cfg.RedditTimeout))

	var fetchers []feeds.Fetcher
	for _, fc := range sources.Feeds {
		if disabled[fc.Name] {
			continue
		}
		fetchers = append(fetchers, rss.New(fc, feedClient))
	}
	for _, community := range sources.Subreddits {
		src := reddit.New(community, redditClient)
		if disabled[src.Name()] {
			continue
		}
		fetchers = append(fetchers, src)
	}
	return fetchers
}

func runExplain(ctx context.Context, pipe *pipeline.Pipeline, gen *explain.Generator, url string, prefs *explain.UserPrefs) {
	var target *feeds.Article
	for _, a := range pipe.FetchAll(ctx, nil) {
		if a.URL == url {
			target = &a
			break
		}
	}
	if target == nil {
		fatal("No article with URL %s in the current feed", url)
	}

	payload, fromCache := gen.Explain(ctx, *target, prefs)
	if fromCache {
		fmt.Println("(cached)")
	}
	fmt.Printf("Summary:     %s\n\n", payload.Summary)
	fmt.Printf("Why now:     %s\n\n", payload.Why)
	fmt.Printf("Impact:      %s\n\n", payload.Impact)
	fmt.Printf("Credibility: %s\n", payload.Credibility)
}

func printArticles(result pipeline.Result, limit int) {
	if len(result.Articles) == 0 {
		if result.SourcesFailed > 0 && result.SourcesOK == 0 {
			fmt.Println("No articles: every source failed. See the log for details.")
		} else {
			fmt.Println("No articles matched the current filters.")
		}
		return
	}

	origin := ""
	if result.FromCache {
		origin = " (cached)"
	}
	fmt.Printf("%d articles%s\n\n", len(result.Articles), origin)

	for i, a := range result.Articles {
		if i >= limit {
			break
		}
		score := ""
		if a.Source.Type == feeds.SourceReddit {
			score = fmt.Sprintf(" [%d pts, %d comments]", a.Score, a.CommentCount)
		}
		fmt.Printf("%2d. %s\n    %s | %s%s\n    %s\n",
			i+1, a.Title, a.Source.Name, a.Published.Format("2006-01-02 15:04"), score, a.URL)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logging.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
