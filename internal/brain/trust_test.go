package brain

import (
	"strings"
	"testing"

	"github.com/abelbrown/newsdesk/internal/feeds"
)

func TestCredibilityNoteKnownOutlets(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string // substring expected in the note
	}{
		{"exact match", "Reuters", "wire service"},
		{"prefixed name", "BBC World", "BBC"},
		{"case insensitive", "npr", "NPR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := CredibilityNote(feeds.SourceRef{Name: tt.source, Type: feeds.SourceRSS})
			if !strings.Contains(note, tt.want) {
				t.Errorf("CredibilityNote(%q) = %q, want substring %q", tt.source, note, tt.want)
			}
		})
	}
}

func TestCredibilityNoteUnknownOutlet(t *testing.T) {
	note := CredibilityNote(feeds.SourceRef{Name: "Random Blog Times", Type: feeds.SourceRSS})
	if note != unknownOutletNote {
		t.Errorf("unknown outlet should get the generic fallback, got %q", note)
	}
}

func TestCredibilityNoteRedditAlwaysCommunity(t *testing.T) {
	// Even a community named after a known outlet gets the
	// community-content disclaimer.
	note := CredibilityNote(feeds.SourceRef{Name: "r/reuters", Type: feeds.SourceReddit})
	if note != communityNote {
		t.Errorf("reddit source should get the community disclaimer, got %q", note)
	}
}

func TestGeminiProviderAvailability(t *testing.T) {
	if NewGeminiProvider("", "model", 0).Available() {
		t.Error("provider without a key should be unavailable")
	}
	if !NewGeminiProvider("key", "", 0).Available() {
		t.Error("provider with a key should be available")
	}
}
