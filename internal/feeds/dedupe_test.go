package feeds

import (
	"reflect"
	"testing"
	"time"
)

func rssArticle(id, url string) Article {
	return Article{
		ID:        id,
		Title:     "Title " + id,
		URL:       url,
		Source:    SourceRef{Name: "BBC World", Type: SourceRSS},
		Published: time.Now(),
	}
}

func redditArticle(id, url string, score int) Article {
	return Article{
		ID:        id,
		Title:     "Title " + id,
		URL:       url,
		Source:    SourceRef{Name: "r/worldnews", Type: SourceReddit},
		Published: time.Now(),
		Score:     score,
	}
}

func TestDedupeKeepsDistinctURLs(t *testing.T) {
	in := []Article{
		rssArticle("a", "https://example.com/1"),
		rssArticle("b", "https://example.com/2"),
	}
	got := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
}

func TestDedupeRSSBeatsReddit(t *testing.T) {
	url := "https://example.com/story"
	tests := []struct {
		name string
		in   []Article
	}{
		{"rss first", []Article{rssArticle("a", url), redditArticle("b", url, 500)}},
		{"reddit first", []Article{redditArticle("b", url, 500), rssArticle("a", url)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.in)
			if len(got) != 1 {
				t.Fatalf("expected 1 survivor, got %d", len(got))
			}
			if got[0].Source.Type != SourceRSS {
				t.Errorf("expected RSS survivor, got %s", got[0].Source.Type)
			}
		})
	}
}

func TestDedupeHigherScoreWins(t *testing.T) {
	url := "https://example.com/story"
	got := Dedupe([]Article{
		redditArticle("low", url, 5),
		redditArticle("high", url, 50),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
	if got[0].ID != "high" {
		t.Errorf("expected high-score post to survive, got %q", got[0].ID)
	}

	// First-seen wins when the later score is not higher
	got = Dedupe([]Article{
		redditArticle("first", url, 50),
		redditArticle("second", url, 50),
	})
	if got[0].ID != "first" {
		t.Errorf("expected first-seen post to survive, got %q", got[0].ID)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	url := "https://example.com/story"
	in := []Article{
		redditArticle("a", url, 5),
		rssArticle("b", url),
		rssArticle("c", "https://example.com/other"),
		redditArticle("d", "https://example.com/third", 12),
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDedupePreservesOrder(t *testing.T) {
	in := []Article{
		rssArticle("a", "https://example.com/1"),
		rssArticle("b", "https://example.com/2"),
		redditArticle("c", "https://example.com/1", 10), // loses to a
		rssArticle("d", "https://example.com/3"),
	}
	got := Dedupe(in)
	wantIDs := []string{"a", "b", "d"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d survivors, got %d", len(wantIDs), len(got))
	}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].ID, want)
		}
	}
}
