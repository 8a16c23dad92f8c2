package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/newsagg/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Cache      CacheConfig      `yaml:"cache" json:"cache" jsonschema:"description=Articles cache configuration"`
	Fetch      FetchConfig      `yaml:"fetch" json:"fetch" jsonschema:"description=Feed download configuration"`
	Schedule   ScheduleConfig   `yaml:"schedule" json:"schedule" jsonschema:"description=Background refresh configuration"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Content extraction configuration"`
	Feeds      []Feed           `yaml:"feeds" json:"feeds" jsonschema:"description=Feed sources, two Le Monde feeds if empty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS feeds and external links"`
}

// CacheConfig holds articles cache settings
type CacheConfig struct {
	MaxAge time.Duration `yaml:"max_age" json:"max_age" jsonschema:"default=30m,description=How long fetched articles are served without refetching"`
}

// FetchConfig holds feed download settings
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout per feed request"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Newsagg/1.0,description=User agent for feed requests"`
	ProxyPrefix string        `yaml:"proxy_prefix" json:"proxy_prefix" jsonschema:"description=Prefix prepended to every feed URL, e.g. a CORS proxy"`
	Retries     int           `yaml:"retries" json:"retries" jsonschema:"default=1,minimum=1,description=Attempts per feed request"`
	RetryDelay  time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=1s,description=Initial delay between attempts"`
	MaxWorkers  int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,minimum=1,description=Maximum concurrent feed downloads"`
}

// ScheduleConfig holds background refresh settings
type ScheduleConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval" jsonschema:"default=0,description=Refresh all feeds every interval, 0 disables"`
}

// ExtractionConfig holds content extraction settings
type ExtractionConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable content extraction"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per article"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Newsagg/1.0,description=User agent for article page requests"`
}

// Feed is a configured feed source
type Feed struct {
	ID       string `yaml:"id" json:"id" jsonschema:"required,description=Unique source id"`
	Name     string `yaml:"name" json:"name" jsonschema:"description=Display name, defaults to id"`
	URL      string `yaml:"url" json:"url" jsonschema:"required,description=RSS or Atom feed URL"`
	Category string `yaml:"category" json:"category" jsonschema:"description=Category, defaults to id"`
}

// DefaultFeeds are used when the config has no feeds
var DefaultFeeds = []Feed{
	{ID: "gastronomy", Name: "Le Monde - Gastronomie", URL: "https://www.lemonde.fr/gastronomie/rss_full.xml", Category: "gastronomy"},
	{ID: "videogames", Name: "Le Monde - Jeux vidéo", URL: "https://www.lemonde.fr/jeux-video/rss_full.xml", Category: "videogames"},
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse makes configuration from YAML content, empty content gives all defaults
func Parse(data []byte) (*Config, error) {
	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		log.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}

	// cache
	if cfg.Cache.MaxAge == 0 {
		cfg.Cache.MaxAge = 30 * time.Minute
	}

	// fetch
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Newsagg/1.0"
	}
	if cfg.Fetch.Retries == 0 {
		cfg.Fetch.Retries = 1
	}
	if cfg.Fetch.RetryDelay == 0 {
		cfg.Fetch.RetryDelay = time.Second
	}
	if cfg.Fetch.MaxWorkers == 0 {
		cfg.Fetch.MaxWorkers = 5
	}

	// extraction
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.UserAgent == "" {
		cfg.Extraction.UserAgent = cfg.Fetch.UserAgent
	}

	// feeds
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = append([]Feed(nil), DefaultFeeds...)
	}
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Name == "" {
			cfg.Feeds[i].Name = cfg.Feeds[i].ID
		}
		if cfg.Feeds[i].Category == "" {
			cfg.Feeds[i].Category = cfg.Feeds[i].ID
		}
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return errors.New("server timeout must be at least 1 second")
	}
	if cfg.Cache.MaxAge < time.Second {
		return errors.New("cache max_age must be at least 1 second")
	}
	if cfg.Fetch.Retries < 1 {
		return errors.New("fetch retries must be at least 1")
	}
	if cfg.Fetch.MaxWorkers < 1 {
		return errors.New("fetch max_workers must be at least 1")
	}
	if cfg.Schedule.RefreshInterval < 0 {
		return errors.New("schedule refresh_interval must be non-negative")
	}
	if cfg.Extraction.Enabled && cfg.Extraction.Timeout < time.Second {
		return errors.New("extraction timeout must be at least 1 second")
	}

	ids := make(map[string]struct{}, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		if f.ID == "" {
			return fmt.Errorf("feed #%d: id is required", i)
		}
		if _, ok := ids[f.ID]; ok {
			return fmt.Errorf("feed %q: duplicate id", f.ID)
		}
		ids[f.ID] = struct{}{}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.ID)
		}
		u, err := url.Parse(f.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("feed %q: url must be http or https, got %q", f.ID, f.URL)
		}
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetBaseURL returns the public base URL of the server
func (c *Config) GetBaseURL() string {
	return c.Server.BaseURL
}

// GetExtractionConfig returns content extraction configuration
func (c *Config) GetExtractionConfig() ExtractionConfig {
	return c.Extraction
}

// GetFeeds returns configured feeds as sources, in config order
func (c *Config) GetFeeds() []domain.Source {
	res := make([]domain.Source, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		res = append(res, f.Source())
	}
	return res
}

// Source converts the feed into a domain source
func (f Feed) Source() domain.Source {
	return domain.Source{ID: f.ID, Name: f.Name, URL: f.URL, Category: f.Category}
}
