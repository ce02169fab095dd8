// Package config handles configuration loading for newspulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/seenimoa/newspulse/internal/datasource"
)

// Feed providers.
const (
	ProviderStatic = "static"
	ProviderRSS    = "rss"
	ProviderJSON   = "json"
)

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Feed    FeedConfig    `mapstructure:"feed"    yaml:"feed"`
	Scoring ScoringConfig `mapstructure:"scoring" yaml:"scoring"`
	Alerts  AlertsConfig  `mapstructure:"alerts"  yaml:"alerts"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// FeedConfig selects and tunes the news source.
type FeedConfig struct {
	Provider          string                      `mapstructure:"provider"           yaml:"provider"` // "static", "rss", "json"
	Shuffle           bool                        `mapstructure:"shuffle"            yaml:"shuffle"`
	RefreshDelayMS    int                         `mapstructure:"refresh_delay_ms"   yaml:"refresh_delay_ms"`
	CacheTTL          int                         `mapstructure:"cache_ttl"          yaml:"cache_ttl"` // seconds
	RateLimitPerSec   float64                     `mapstructure:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
	ConcurrentFetches int                         `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	MaxItems          int                         `mapstructure:"max_items"          yaml:"max_items"`
	APIKey            string                      `mapstructure:"api_key"            yaml:"api_key" json:"-"`
	RSSSources        []datasource.FeedConfig     `mapstructure:"rss_sources"        yaml:"rss_sources"`
	JSONSources       []datasource.JSONFeedConfig `mapstructure:"json_sources"       yaml:"json_sources"`
}

// ScoringConfig controls the confidence source of the sentiment scorer.
type ScoringConfig struct {
	Seed            int64 `mapstructure:"seed"             yaml:"seed"`             // 0 = seeded from the clock
	FixedConfidence int   `mapstructure:"fixed_confidence" yaml:"fixed_confidence"` // >0 pins every confidence
}

// AlertsConfig holds the portfolio news alert toggle.
type AlertsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
	File   string `mapstructure:"file"   yaml:"file"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newspulse/config.yaml (home directory)
//  3. /etc/newspulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSPULSE_<SECTION>_<KEY>, e.g., NEWSPULSE_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newspulse"))
	v.AddConfigPath("/etc/newspulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("NEWSPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Feed defaults: the bundled reference feed, shuffled on refresh
	v.SetDefault("feed.provider", ProviderStatic)
	v.SetDefault("feed.shuffle", true)
	v.SetDefault("feed.refresh_delay_ms", 1500)
	v.SetDefault("feed.cache_ttl", 300) // 5 minutes
	v.SetDefault("feed.rate_limit_per_sec", 2.0)
	v.SetDefault("feed.concurrent_fetches", 4)
	v.SetDefault("feed.max_items", 25)

	// Scoring defaults
	v.SetDefault("scoring.seed", 0)
	v.SetDefault("scoring.fixed_confidence", 0)

	v.SetDefault("alerts.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The feed key is copied onto every JSON source that has none of its own.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEWSPULSE_FEED_API_KEY"); key != "" {
		cfg.Feed.APIKey = key
	}
	for i := range cfg.Feed.JSONSources {
		if cfg.Feed.JSONSources[i].APIKey == "" {
			cfg.Feed.JSONSources[i].APIKey = cfg.Feed.APIKey
		}
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	switch c.Feed.Provider {
	case ProviderStatic:
	case ProviderRSS:
		for i, s := range c.Feed.RSSSources {
			if s.URL == "" {
				errs = append(errs, fmt.Errorf("feed.rss_sources[%d]: url is required", i))
			}
		}
	case ProviderJSON:
		if len(c.Feed.JSONSources) == 0 {
			errs = append(errs, errors.New("feed.json_sources: at least one source is required for the json provider"))
		}
		for i, s := range c.Feed.JSONSources {
			if s.URL == "" {
				errs = append(errs, fmt.Errorf("feed.json_sources[%d]: url is required", i))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("feed.provider %q: must be one of static, rss, json", c.Feed.Provider))
	}
	if c.Feed.RefreshDelayMS < 0 {
		errs = append(errs, errors.New("feed.refresh_delay_ms must not be negative"))
	}
	if fc := c.Scoring.FixedConfidence; fc < 0 || fc > 100 {
		errs = append(errs, fmt.Errorf("scoring.fixed_confidence %d out of range 0-100", fc))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: must be text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
