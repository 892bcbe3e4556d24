// Package reddit fetches articles from subreddit hot listings.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/fetch"
	"github.com/abelbrown/newsdesk/internal/textutil"
)

// listingLimit is the number of posts requested per subreddit.
const listingLimit = 25

// listing mirrors the subset of reddit's listing JSON we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// post is one raw reddit post object.
type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Stickied    bool    `json:"stickied"`
	Over18      bool    `json:"over_18"`
	Thumbnail   string  `json:"thumbnail"`
	Preview     struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

// Source fetches posts from a single subreddit.
type Source struct {
	community string
	client    *fetch.Client
}

// New creates a reddit source for the given community name (without
// the "r/" prefix).
func New(community string, client *fetch.Client) *Source {
	return &Source{community: community, client: client}
}

func (s *Source) Name() string {
	return "r/" + s.community
}

func (s *Source) Type() feeds.SourceType {
	return feeds.SourceReddit
}

// Fetch retrieves the subreddit's hot listing and converts it to
// articles. Stickied and age-restricted posts are dropped before
// parsing; posts without a title or link are dropped at the parser
// boundary.
func (s *Source) Fetch(ctx context.Context) ([]feeds.Article, error) {
	url := fmt.Sprintf("https://www.reddit.com/r/%s/hot.json?limit=%d", s.community, listingLimit)
	body, err := s.client.Get(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	return s.Parse(body)
}

// Parse converts a raw listing payload into articles.
func (s *Source) Parse(raw []byte) ([]feeds.Article, error) {
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse r/%s listing: %w", s.community, err)
	}

	articles := make([]feeds.Article, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		p := child.Data
		if p.Stickied || p.Over18 {
			continue
		}
		title := textutil.DecodeEntities(strings.TrimSpace(p.Title))
		if title == "" || p.URL == "" {
			continue
		}

		articles = append(articles, feeds.Article{
			ID:    p.ID,
			Title: title,
			URL:   p.URL,
			Source: feeds.SourceRef{
				Name: s.Name(),
				Type: feeds.SourceReddit,
			},
			Published:    time.Unix(int64(p.CreatedUTC), 0),
			ImageURL:     resolveImage(p),
			Domain:       textutil.ExtractDomain(p.URL),
			Score:        p.Score,
			CommentCount: p.NumComments,
		})
	}

	return articles, nil
}

// resolveImage picks a post image by priority: preview source (reddit
// HTML-escapes ampersands in these URLs), then a usable thumbnail,
// then the post URL itself when it points straight at an image.
func resolveImage(p post) string {
	if len(p.Preview.Images) > 0 {
		if u := p.Preview.Images[0].Source.URL; u != "" {
			return strings.ReplaceAll(u, "&amp;", "&")
		}
	}
	if usableThumbnail(p.Thumbnail) {
		return p.Thumbnail
	}
	if hasImageExtension(p.URL) {
		return p.URL
	}
	return ""
}

// usableThumbnail reports whether the thumbnail field is an absolute
// URL that does not point back at reddit itself. Reddit fills this
// field with placeholder words like "self" and "default" otherwise.
func usableThumbnail(thumb string) bool {
	if !strings.HasPrefix(thumb, "http") {
		return false
	}
	return !strings.Contains(textutil.ExtractDomain(thumb), "redd")
}

func hasImageExtension(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
