package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/newsdesk/internal/feeds/rss"
)

// Sources is the configured set of upstream sources. A fixed, small
// list - not a plugin system.
type Sources struct {
	Feeds      []rss.FeedConfig `yaml:"feeds"`
	Subreddits []string         `yaml:"subreddits"`
}

// SourcesPath returns the path to the sources file
func SourcesPath() string {
	return "sources.yaml"
}

// LoadSources reads the source list from a YAML file, or returns the
// built-in defaults when the file does not exist.
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSources(), nil
		}
		return Sources{}, fmt.Errorf("read sources config: %w", err)
	}

	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Sources{}, fmt.Errorf("unmarshal sources config: %w", err)
	}
	if len(s.Feeds) == 0 && len(s.Subreddits) == 0 {
		return DefaultSources(), nil
	}
	return s, nil
}

// DefaultSources returns the built-in source list.
func DefaultSources() Sources {
	return Sources{
		Feeds: []rss.FeedConfig{
			{
				Name:          "BBC World",
				URL:           "https://feeds.bbci.co.uk/news/world/rss.xml",
				Icon:          "bbc",
				FallbackImage: "https://news.bbcimg.co.uk/nol/shared/img/bbc_news_120x60.gif",
			},
			{
				Name:          "Reuters",
				URL:           "https://feeds.reuters.com/reuters/topNews",
				Icon:          "reuters",
				FallbackImage: "",
			},
			{
				Name:          "AP News",
				URL:           "https://feedx.net/rss/ap.xml",
				Icon:          "ap",
				FallbackImage: "",
			},
			{
				Name:          "The Guardian",
				URL:           "https://www.theguardian.com/world/rss",
				Icon:          "guardian",
				FallbackImage: "",
			},
			{
				Name:          "NPR",
				URL:           "https://feeds.npr.org/1001/rss.xml",
				Icon:          "npr",
				FallbackImage: "",
			},
		},
		Subreddits: []string{
			"worldnews",
			"news",
			"technology",
		},
	}
}
