// Package rss fetches articles from RSS/Atom feeds.
package rss

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/newsdesk/internal/feeds"
	"github.com/abelbrown/newsdesk/internal/fetch"
	"github.com/abelbrown/newsdesk/internal/textutil"
)

// FeedConfig is a static feed descriptor.
type FeedConfig struct {
	Name          string `yaml:"name" json:"name"`
	URL           string `yaml:"url" json:"url"`
	Icon          string `yaml:"icon,omitempty" json:"icon,omitempty"`
	FallbackImage string `yaml:"fallback_image,omitempty" json:"fallback_image,omitempty"`
}

// imgSrcRe pulls the first <img src=...> out of an item description.
var imgSrcRe = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

// Source fetches items from a single RSS/Atom feed.
type Source struct {
	cfg    FeedConfig
	client *fetch.Client
	parser *gofeed.Parser
}

// New creates an RSS source for the given feed descriptor.
func New(cfg FeedConfig, client *fetch.Client) *Source {
	return &Source{
		cfg:    cfg,
		client: client,
		parser: gofeed.NewParser(),
	}
}

func (s *Source) Name() string {
	return s.cfg.Name
}

func (s *Source) Type() feeds.SourceType {
	return feeds.SourceRSS
}

// Fetch retrieves and parses the feed. Items missing a title or link
// never make it into the result.
func (s *Source) Fetch(ctx context.Context) ([]feeds.Article, error) {
	body, err := s.client.Get(ctx, s.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	return s.Parse(string(body))
}

// Parse converts raw feed XML into articles. Split out from Fetch so
// tests can feed it fixture XML directly.
func (s *Source) Parse(raw string) ([]feeds.Article, error) {
	feed, err := s.parser.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.cfg.Name, err)
	}

	now := time.Now()
	articles := make([]feeds.Article, 0, len(feed.Items))

	for _, entry := range feed.Items {
		title := textutil.StripTags(entry.Title)
		if title == "" || entry.Link == "" {
			continue
		}

		published := now
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		articles = append(articles, feeds.Article{
			ID:    textutil.Hash(s.cfg.Name + "|" + entry.Link),
			Title: title,
			URL:   entry.Link,
			Source: feeds.SourceRef{
				Name: s.cfg.Name,
				Type: feeds.SourceRSS,
				Icon: s.cfg.Icon,
			},
			Published: published,
			ImageURL:  s.resolveImage(entry),
			Domain:    textutil.ExtractDomain(entry.Link),
		})
	}

	return articles, nil
}

// resolveImage picks an item image by priority: media:thumbnail or
// media:content attribute, then the first <img> in the description,
// then the feed's configured fallback.
func (s *Source) resolveImage(entry *gofeed.Item) string {
	if url := mediaExtensionURL(entry); url != "" {
		return url
	}
	if m := imgSrcRe.FindStringSubmatch(entry.Description); m != nil {
		return textutil.DecodeEntities(m[1])
	}
	return s.cfg.FallbackImage
}

// mediaExtensionURL returns the url attribute of a media:thumbnail or
// media:content element, if the feed carries one.
func mediaExtensionURL(entry *gofeed.Item) string {
	media, ok := entry.Extensions["media"]
	if !ok {
		return ""
	}
	for _, name := range []string{"thumbnail", "content"} {
		for _, ext := range media[name] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}
