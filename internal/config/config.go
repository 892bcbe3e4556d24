package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent application configuration
type Config struct {
	// Cache lifetimes
	NewsCacheTTL    Duration `json:"news_cache_ttl"`
	ExplainCacheTTL Duration `json:"explain_cache_ttl"`

	// Per-source fetch timeouts
	FeedTimeout   Duration `json:"feed_timeout"`
	RedditTimeout Duration `json:"reddit_timeout"`

	// Generation backend settings
	Gemini GeminiConfig `json:"gemini"`

	// Domains considered reputable when the news-domain filter is on
	TrustedDomains []string `json:"trusted_domains"`

	// Sources fetched but excluded from the default active selection
	DisabledSources []string `json:"disabled_sources"`
}

// GeminiConfig holds text-generation backend settings
type GeminiConfig struct {
	APIKey         string   `json:"api_key,omitempty"`
	Model          string   `json:"model,omitempty"`
	RateInterval   Duration `json:"rate_interval"`
	RequestTimeout Duration `json:"request_timeout"`
	MaxTokens      int      `json:"max_tokens"`
}

// Duration marshals as a Go duration string ("5m", "168h") so the
// config file stays human-editable.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		NewsCacheTTL:    Duration(5 * time.Minute),
		ExplainCacheTTL: Duration(7 * 24 * time.Hour),
		FeedTimeout:     Duration(15 * time.Second),
		RedditTimeout:   Duration(10 * time.Second),
		Gemini: GeminiConfig{
			Model:          "gemini-2.5-flash",
			RateInterval:   Duration(2 * time.Second),
			RequestTimeout: Duration(30 * time.Second),
			MaxTokens:      1024,
		},
		TrustedDomains: []string{
			"reuters.com",
			"apnews.com",
			"bbc.co",
			"bbc.com",
			"theguardian.com",
			"nytimes.com",
			"washingtonpost.com",
			"npr.org",
			"aljazeera.com",
			"bloomberg.com",
			"arstechnica.com",
			"theverge.com",
			"wired.com",
			"nature.com",
		},
		DisabledSources: []string{},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".newsdesk", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil
	}

	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// AutoPopulateFromEnv fills in the API key from environment variables.
// Absence of a key is a valid configuration: the explanation generator
// runs in mock mode without one.
func (c *Config) AutoPopulateFromEnv() {
	if c.Gemini.APIKey != "" {
		return
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
		return
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
}
