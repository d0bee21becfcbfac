// Package config loads service settings from an optional YAML file with
// HANRANK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/hanrank/pkg/hanrank"
	"github.com/cognicore/hanrank/pkg/hanrank/cluster"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
)

// Extraction mirrors the tunable hanrank.Options.
type Extraction struct {
	Limit            int     `yaml:"limit"`
	KeywordsPerTitle int     `yaml:"keywords_per_title"`
	StripNumeric     bool    `yaml:"strip_numeric"`
	PromoteMin       int     `yaml:"promote_min"`
	MergeRatio       float64 `yaml:"merge_ratio"`
	MinCooccurrence  int     `yaml:"min_cooccurrence"`
	SupplementPOS    bool    `yaml:"supplement_pos"`
}

// Config holds everything the CLI and the HTTP service need.
type Config struct {
	Addr            string        `yaml:"addr"`
	DBPath          string        `yaml:"db_path"`
	LexiconPath     string        `yaml:"lexicon"`
	Feeds           []string      `yaml:"feeds"`
	RefreshInterval time.Duration `yaml:"-"`
	CacheTTL        time.Duration `yaml:"-"`
	CacheSize       int           `yaml:"cache_size"`
	Retention       int           `yaml:"retention"`
	FetchTimeout    time.Duration `yaml:"-"`
	Extraction      Extraction    `yaml:"extraction"`
}

// durations are kept as strings in YAML ("15m").
type fileDurations struct {
	RefreshInterval string `yaml:"refresh_interval"`
	CacheTTL        string `yaml:"cache_ttl"`
	FetchTimeout    string `yaml:"fetch_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DBPath:          DefaultDBPath(),
		RefreshInterval: 10 * time.Minute,
		CacheTTL:        15 * time.Minute,
		CacheSize:       128,
		Retention:       500,
		FetchTimeout:    20 * time.Second,
		Extraction: Extraction{
			Limit:            hanrank.DefaultLimit,
			KeywordsPerTitle: hanrank.DefaultKeywordsPerTitle,
			MergeRatio:       cluster.DefaultMergeRatio,
			MinCooccurrence:  cluster.DefaultMinCooccurrence,
		},
	}
}

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "hanrank", "config.yaml")
}

// DefaultDBPath is the default snapshot database location.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "hanrank", "hanrank.db")
}

// Load reads path (or DefaultConfigPath when path is empty; a missing
// default file is not an error), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := c.merge(data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	var d fileDurations
	if err := yaml.Unmarshal(data, &d); err != nil {
		return err
	}
	for _, f := range []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{d.RefreshInterval, &c.RefreshInterval, "refresh_interval"},
		{d.CacheTTL, &c.CacheTTL, "cache_ttl"},
		{d.FetchTimeout, &c.FetchTimeout, "fetch_timeout"},
	} {
		if f.raw == "" {
			continue
		}
		v, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("%s: %v", f.key, err)
		}
		*f.dst = v
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("HANRANK_ADDR", c.Addr)
	c.DBPath = getEnv("HANRANK_DB_PATH", c.DBPath)
	c.LexiconPath = getEnv("HANRANK_LEXICON", c.LexiconPath)
	if raw := getEnv("HANRANK_FEEDS", ""); raw != "" {
		c.Feeds = splitAndTrim(raw)
	}
	c.CacheSize = getInt("HANRANK_CACHE_SIZE", c.CacheSize)
	c.Retention = getInt("HANRANK_RETENTION", c.Retention)
	c.Extraction.Limit = getInt("HANRANK_LIMIT", c.Extraction.Limit)
	c.Extraction.KeywordsPerTitle = getInt("HANRANK_KEYWORDS_PER_TITLE", c.Extraction.KeywordsPerTitle)
	c.Extraction.StripNumeric = getBool("HANRANK_STRIP_NUMERIC", c.Extraction.StripNumeric)

	var err error
	if c.RefreshInterval, err = getDuration("HANRANK_REFRESH_INTERVAL", c.RefreshInterval); err != nil {
		return err
	}
	if c.CacheTTL, err = getDuration("HANRANK_CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.FetchTimeout, err = getDuration("HANRANK_FETCH_TIMEOUT", c.FetchTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must be set", internalerr.ErrInvalidConfig)
	case c.CacheSize <= 0:
		return fmt.Errorf("%w: cache_size must be positive", internalerr.ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("%w: cache_ttl must be positive", internalerr.ErrInvalidConfig)
	case c.RefreshInterval < 0:
		return fmt.Errorf("%w: refresh_interval cannot be negative", internalerr.ErrInvalidConfig)
	case c.Retention < 0:
		return fmt.Errorf("%w: retention cannot be negative", internalerr.ErrInvalidConfig)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch_timeout must be positive", internalerr.ErrInvalidConfig)
	case c.Extraction.Limit <= 0:
		return fmt.Errorf("%w: extraction.limit must be positive", internalerr.ErrInvalidConfig)
	case c.Extraction.KeywordsPerTitle <= 0:
		return fmt.Errorf("%w: extraction.keywords_per_title must be positive", internalerr.ErrInvalidConfig)
	case c.Extraction.MergeRatio < 0 || c.Extraction.MergeRatio > 1:
		return fmt.Errorf("%w: extraction.merge_ratio must be within [0,1]", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Options converts the extraction settings. Lexicon, tokenizer and logger
// are left for the caller.
func (e Extraction) Options() hanrank.Options {
	return hanrank.Options{
		Limit:            e.Limit,
		KeywordsPerTitle: e.KeywordsPerTitle,
		StripNumeric:     e.StripNumeric,
		PromoteMin:       e.PromoteMin,
		MergeRatio:       e.MergeRatio,
		MinCooccurrence:  e.MinCooccurrence,
		SupplementPOS:    e.SupplementPOS,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, key, err)
	}
	return d, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
