// Package config loads websearch settings from a TOML file and WEBSEARCH_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WEBSEARCH"

// Duration is a time.Duration written as "15s" in TOML and the environment.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the merged configuration. Flags are applied on top by cmd.
type Config struct {
	Theme             string `toml:"theme" envconfig:"THEME"`
	Target            string `toml:"target" envconfig:"TARGET"`
	PageSize          int    `toml:"page_size" envconfig:"PAGE_SIZE"`
	LoadMoreThreshold int    `toml:"load_more_threshold" envconfig:"LOAD_MORE_THRESHOLD"`
	Columns           int    `toml:"columns" envconfig:"COLUMNS"`

	Sources Sources  `toml:"sources" envconfig:"SOURCES"`
	Giphy   Giphy    `toml:"giphy" envconfig:"GIPHY"`
	Bing    Endpoint `toml:"bing" envconfig:"BING"`
	Commons Endpoint `toml:"commons" envconfig:"COMMONS"`
	Fetch   Fetch    `toml:"fetch" envconfig:"FETCH"`
}

// Sources names the provider used for each tab.
type Sources struct {
	Images string `toml:"images" envconfig:"IMAGES"`
	GIFs   string `toml:"gifs" envconfig:"GIFS"`
}

type Giphy struct {
	APIKey string `toml:"api_key" envconfig:"API_KEY"`
	Rating string `toml:"rating" envconfig:"RATING"`
}

type Endpoint struct {
	BaseURL string `toml:"base_url" envconfig:"BASE_URL"`
}

type Fetch struct {
	Timeout           Duration `toml:"timeout" envconfig:"TIMEOUT"`
	MaxAttempts       int      `toml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
	RequestsPerSecond float64  `toml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	CacheSize         int      `toml:"cache_size" envconfig:"CACHE_SIZE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme:             "tokyo-night",
		Target:            "en-US",
		PageSize:          30,
		LoadMoreThreshold: 8,
		Columns:           4,
		Sources: Sources{
			Images: "bing",
			GIFs:   "bing",
		},
		Giphy: Giphy{Rating: "g"},
		Fetch: Fetch{
			Timeout:           Duration(15 * time.Second),
			MaxAttempts:       3,
			RequestsPerSecond: 2,
			CacheSize:         64,
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/websearch/config.toml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "websearch", "config.toml"), nil
}

// Load starts from Default, overlays the TOML file at path and then the
// environment. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch {
	case c.PageSize <= 0:
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	case c.Columns <= 0:
		return fmt.Errorf("columns must be positive, got %d", c.Columns)
	case c.LoadMoreThreshold < 0:
		return fmt.Errorf("load_more_threshold must not be negative, got %d", c.LoadMoreThreshold)
	case c.Fetch.MaxAttempts <= 0:
		return fmt.Errorf("fetch.max_attempts must be positive, got %d", c.Fetch.MaxAttempts)
	case c.Fetch.CacheSize <= 0:
		return fmt.Errorf("fetch.cache_size must be positive, got %d", c.Fetch.CacheSize)
	case c.Sources.Images == "" || c.Sources.GIFs == "":
		return errors.New("sources.images and sources.gifs must be set")
	}
	return nil
}
