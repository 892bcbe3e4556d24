package brain

import (
	"strings"

	"github.com/abelbrown/newsdesk/internal/feeds"
)

// knownOutlets maps outlet names to a short credibility note. Keys are
// lowercase; lookup is substring-based so "BBC World" matches "bbc".
var knownOutlets = map[string]string{
	"reuters":         "Reuters is a global wire service with strong editorial standards and a reputation for factual, agenda-neutral reporting.",
	"ap news":         "The Associated Press is a nonprofit wire service widely regarded as one of the most factually reliable outlets.",
	"bbc":             "The BBC is a publicly funded broadcaster with established editorial guidelines; generally reliable, with occasional institutional framing.",
	"the guardian":    "The Guardian is an established British outlet with solid reporting and an openly progressive editorial stance.",
	"npr":             "NPR is a nonprofit public broadcaster known for measured, well-sourced reporting.",
	"al jazeera":      "Al Jazeera is a Qatari state-funded outlet with strong international coverage; coverage of Gulf politics warrants extra scrutiny.",
	"new york times":  "The New York Times is a major newspaper of record with rigorous sourcing and a center-left opinion section.",
	"washington post": "The Washington Post is a major newspaper of record with strong investigative reporting.",
	"bloomberg":       "Bloomberg is a financial news service with reliable markets coverage.",
}

const unknownOutletNote = "This source is not in our reference list; treat its framing with ordinary caution and check claims against a wire service."

const communityNote = "This link was surfaced by a community aggregator, not an editorial desk. Popularity reflects community interest, not accuracy; check the underlying outlet."

// CredibilityNote returns a short description of how much weight to
// give a source. Aggregator-origin sources get a community-content
// disclaimer regardless of the destination outlet.
func CredibilityNote(src feeds.SourceRef) string {
	if src.Type == feeds.SourceReddit {
		return communityNote
	}
	name := strings.ToLower(src.Name)
	for outlet, note := range knownOutlets {
		if strings.Contains(name, outlet) || strings.Contains(outlet, name) {
			return note
		}
	}
	return unknownOutletNote
}
