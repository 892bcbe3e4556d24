package feeds

import "testing"

var trusted = []string{"reuters.com", "bbc.co", "apnews.com"}

func TestFilterRSSExempt(t *testing.T) {
	// RSS articles pass every rule, even ones that would sink a
	// reddit post: no score, untrusted domain, non-http link.
	a := Article{
		Title:  "Feed item",
		URL:    "ftp://weird.example/item",
		Domain: "weird.example",
		Source: SourceRef{Name: "BBC World", Type: SourceRSS},
	}
	cfg := FilterConfig{
		RequireExternalLink: true,
		RequireNewsDomain:   true,
		MinScore:            10,
	}
	got := Filter([]Article{a}, cfg, trusted)
	if len(got) != 1 {
		t.Fatalf("RSS article was filtered, want exemption")
	}
}

func TestFilterRedditRules(t *testing.T) {
	base := func() Article {
		return Article{
			Title:  "Post",
			URL:    "https://www.reuters.com/article",
			Domain: "reuters.com",
			Score:  50,
			Source: SourceRef{Name: "r/worldnews", Type: SourceReddit},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Article)
		cfg    FilterConfig
		kept   bool
	}{
		{
			"passes all rules",
			func(a *Article) {},
			FilterConfig{RequireExternalLink: true, RequireNewsDomain: true, MinScore: 10},
			true,
		},
		{
			"self post fails external link",
			func(a *Article) { a.URL = "/r/worldnews/comments/abc" },
			FilterConfig{RequireExternalLink: true},
			false,
		},
		{
			"untrusted domain fails news-domain rule",
			func(a *Article) { a.Domain = "randomblog.example" },
			FilterConfig{RequireNewsDomain: true},
			false,
		},
		{
			"untrusted domain kept when rule off",
			func(a *Article) { a.Domain = "randomblog.example" },
			FilterConfig{},
			true,
		},
		{
			"missing domain passes news-domain rule",
			func(a *Article) { a.Domain = "" },
			FilterConfig{RequireNewsDomain: true},
			true,
		},
		{
			"low score fails minScore",
			func(a *Article) { a.Score = 5 },
			FilterConfig{MinScore: 10},
			false,
		},
		{
			"score at threshold passes",
			func(a *Article) { a.Score = 10 },
			FilterConfig{MinScore: 10},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base()
			tt.mutate(&a)
			got := Filter([]Article{a}, tt.cfg, trusted)
			kept := len(got) == 1
			if kept != tt.kept {
				t.Errorf("kept = %v, want %v", kept, tt.kept)
			}
		})
	}
}

func TestFilterSelfPostKeptWhenRuleOff(t *testing.T) {
	a := Article{
		Title:  "Discussion",
		URL:    "/r/worldnews/comments/abc",
		Score:  50,
		Source: SourceRef{Name: "r/worldnews", Type: SourceReddit},
	}
	got := Filter([]Article{a}, FilterConfig{MinScore: 10}, trusted)
	if len(got) != 1 {
		t.Error("self post should be kept when RequireExternalLink is off")
	}
}

func TestDefaultFilterConfig(t *testing.T) {
	cfg := DefaultFilterConfig()
	if cfg.MinScore != 10 {
		t.Errorf("default MinScore = %d, want 10", cfg.MinScore)
	}
	if !cfg.RequireExternalLink {
		t.Error("default should require external links")
	}
}
