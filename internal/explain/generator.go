package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/newsdesk/internal/brain"
	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/logging"
)

// Default texts substituted for any field the backend leaves out.
const (
	defaultSummary = "A summary for this story could not be generated."
	defaultWhy     = "This story was picked up by the configured sources as notable."
	defaultImpact  = "The wider impact of this story is not yet clear."
)

// UserPrefs are optional reader-context hints. They modify only the
// impact framing instruction, never the factual sections.
type UserPrefs struct {
	Perspective string
	AgeRange    string
	Location    string
}

// Generator produces explanations for articles, consulting the cache
// first and falling back to a templated explanation when the backend
// is unconfigured or fails. Its public surface never returns an error.
type Generator struct {
	cache     *Cache
	provider  brain.Provider
	limiter   *rate.Limiter
	maxTokens int
}

// NewGenerator creates a Generator. provider may be nil (mock-only
// mode). rateInterval is the minimum spacing between backend calls.
func NewGenerator(cache *Cache, provider brain.Provider, rateInterval time.Duration, maxTokens int) *Generator {
	if rateInterval == 0 {
		rateInterval = 2 * time.Second
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}
	return &Generator{
		cache:     cache,
		provider:  provider,
		limiter:   rate.NewLimiter(rate.Every(rateInterval), 1),
		maxTokens: maxTokens,
	}
}

// Explain returns an explanation for the article. The second return is
// true when the result came from the cache. Every path produces a
// payload with all four fields non-empty; the caller never observes an
// error.
func (g *Generator) Explain(ctx context.Context, article feeds.Article, prefs *UserPrefs) (Explanation, bool) {
	if cached := g.cache.Get(ctx, article); cached != nil {
		return *cached, true
	}

	if g.provider == nil || !g.provider.Available() {
		logging.Debug("No generation backend configured, using templated explanation", "url", article.URL)
		payload := g.mock(article)
		g.cache.Set(ctx, article, payload)
		return payload, false
	}

	payload, err := g.generate(ctx, article, prefs)
	if err != nil {
		if errors.Is(err, brain.ErrQuotaExceeded) {
			logging.Warn("Generation quota exceeded, using templated explanation", "url", article.URL)
		} else {
			logging.Error("Generation failed, using templated explanation", "url", article.URL, "error", err)
		}
		payload = g.mock(article)
	}

	g.cache.Set(ctx, article, payload)
	return payload, false
}

// CachedIfPresent probes the cache without triggering generation.
func (g *Generator) CachedIfPresent(ctx context.Context, article feeds.Article) *Explanation {
	return g.cache.Get(ctx, article)
}

// generate calls the backend, honoring the rate limit, and parses the
// structured four-field reply.
func (g *Generator) generate(ctx context.Context, article feeds.Article, prefs *UserPrefs) (Explanation, error) {
	// Wait-then-call serializes backend requests; concurrent callers
	// queue behind the limiter instead of racing a shared timestamp.
	if err := g.limiter.Wait(ctx); err != nil {
		return Explanation{}, err
	}

	resp, err := g.provider.Generate(ctx, brain.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   g.buildPrompt(article, prefs),
		MaxTokens:    g.maxTokens,
		Temperature:  0.4,
		JSONResponse: true,
	})
	if err != nil {
		return Explanation{}, err
	}

	var fields struct {
		Summary     string `json:"summary"`
		Why         string `json:"why"`
		Impact      string `json:"impact"`
		Credibility string `json:"credibility"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &fields); err != nil {
		return Explanation{}, fmt.Errorf("parse structured reply: %w", err)
	}

	// Missing fields get defaults; no field is ever left empty.
	payload := Explanation{
		Summary:     fields.Summary,
		Why:         fields.Why,
		Impact:      fields.Impact,
		Credibility: fields.Credibility,
	}
	if payload.Summary == "" {
		payload.Summary = defaultSummary
	}
	if payload.Why == "" {
		payload.Why = defaultWhy
	}
	if payload.Impact == "" {
		payload.Impact = defaultImpact
	}
	if payload.Credibility == "" {
		payload.Credibility = brain.CredibilityNote(article.Source)
	}
	return payload, nil
}

const systemPrompt = `You explain news stories to a general reader. ` +
	`Reply with a single JSON object containing exactly four string fields: ` +
	`"summary" (what happened, 2-3 sentences), ` +
	`"why" (why this is in the news now), ` +
	`"impact" (who is affected and how), and ` +
	`"credibility" (how much weight to give this source). ` +
	`Plain factual prose, no markdown, no preamble.`

// buildPrompt embeds the article's title, source, and domain. Reader
// preference hints only reshape the impact instruction.
func (g *Generator) buildPrompt(article feeds.Article, prefs *UserPrefs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain this news story.\n\nHeadline: %s\nSource: %s", article.Title, article.Source.Name)
	if article.Domain != "" {
		fmt.Fprintf(&b, "\nPublished on: %s", article.Domain)
	}

	if prefs != nil {
		var hints []string
		if prefs.Perspective != "" {
			hints = append(hints, "a reader with a "+prefs.Perspective+" perspective")
		}
		if prefs.AgeRange != "" {
			hints = append(hints, "aged "+prefs.AgeRange)
		}
		if prefs.Location != "" {
			hints = append(hints, "living in "+prefs.Location)
		}
		if len(hints) > 0 {
			fmt.Fprintf(&b, "\n\nFor the impact field only: frame the impact for %s.", strings.Join(hints, ", "))
		}
	}
	return b.String()
}

// mock synthesizes a deterministic explanation from the article's own
// metadata. It still counts as a successful generation and is cached,
// so a failing backend is not hammered for the same article.
func (g *Generator) mock(article feeds.Article) Explanation {
	outlet := article.Source.Name
	where := article.Domain
	if where == "" {
		where = outlet
	}
	return Explanation{
		Summary: fmt.Sprintf("%s. This story was reported by %s; open the full article on %s for details.",
			strings.TrimRight(article.Title, "."), outlet, where),
		Why: fmt.Sprintf("Editors and readers at %s flagged this story as newsworthy right now.", outlet),
		Impact: "Without the full text an impact assessment isn't possible; " +
			"the headline suggests who is involved, and the linked article covers the consequences.",
		Credibility: brain.CredibilityNote(article.Source),
	}
}

// extractJSON pulls the first {...} block out of a reply, tolerating
// backends that wrap JSON in prose or code fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
