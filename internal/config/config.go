// Package config loads and saves the YAML application configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one pre-rendered calendar feed the server keeps warm.
type FeedConfig struct {
	// ID names the feed; it is also the cache key and default filename hint.
	ID string `yaml:"id" json:"id"`
	// UserID is the owner whose obligations feed the export.
	UserID string `yaml:"user_id" json:"user_id"`
	// Timezone overrides the global export zone for this feed.
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	// Courses limits the assessment lookup; empty means all courses.
	Courses []string `yaml:"courses,omitempty" json:"courses,omitempty"`
	// FilenameHint overrides the download filename; empty falls back to ID.
	FilenameHint string `yaml:"filename_hint,omitempty" json:"filename_hint,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the export API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the default IANA export zone when a request names none.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Database is the sqlite file backing the record store.
	Database string `yaml:"database" json:"database"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// re-rendering the configured feeds into the server cache.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ProductID is the PRODID written into rendered calendars.
	ProductID string `yaml:"product_id" json:"product_id"`

	// Feeds is the list of pre-rendered calendar feeds.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "America/Toronto",
		Database:    "./coursecal.db",
		RefreshCron: "*/15 * * * *",
		ProductID:   "-//coursecal//calendar export//EN",
		Feeds:       []FeedConfig{},
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Toronto"
	}
	if c.Database == "" {
		c.Database = "./coursecal.db"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.ProductID == "" {
		c.ProductID = "-//coursecal//calendar export//EN"
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	for i := range c.Feeds {
		if c.Feeds[i].Timezone == "" {
			c.Feeds[i].Timezone = c.Timezone
		}
		if c.Feeds[i].FilenameHint == "" {
			c.Feeds[i].FilenameHint = c.Feeds[i].ID
		}
	}
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: a default config is written (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".coursecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save for convenience.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
