package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "VULNMATCHER_CONFIG"
	apiKeyEnv     = "SOLODIT_API_KEY"
	baseURLEnv    = "SOLODIT_BASE_URL"
	historyDSNEnv = "VULNMATCHER_HISTORY_DSN"
	logLevelEnv   = "VULNMATCHER_LOG_LEVEL"
	logFormatEnv  = "VULNMATCHER_LOG_FORMAT"
)

// Config holds settings required across the application.
type Config struct {
	Solodit SoloditConfig `yaml:"solodit"`
	Matcher MatcherConfig `yaml:"matcher"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// SoloditConfig describes how to reach the knowledge service.
type SoloditConfig struct {
	BaseURL         string `yaml:"baseUrl"`
	APIKey          string `yaml:"apiKey"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`
	CacheTTLSeconds int    `yaml:"cacheTtlSeconds"`
	CacheMaxEntries int    `yaml:"cacheMaxEntries"`
}

// Timeout resolves the request timeout duration.
func (s SoloditConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL resolves the cache time-to-live duration.
func (s SoloditConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// MatcherConfig tunes pattern-match defaults.
type MatcherConfig struct {
	MinSimilarity float64 `yaml:"minSimilarity"`
	MaxResults    int     `yaml:"maxResults"`
}

// HistoryConfig enables the optional Postgres query archive.
type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig controls slog construction.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads an optional .env file and YAML configuration (if present) and
// applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Solodit.APIKey = v
	}
	if v := os.Getenv(baseURLEnv); v != "" {
		c.Solodit.BaseURL = v
	}
	if v := os.Getenv(historyDSNEnv); v != "" {
		c.History.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Solodit.BaseURL != "" {
		base.Solodit.BaseURL = override.Solodit.BaseURL
	}
	if override.Solodit.APIKey != "" {
		base.Solodit.APIKey = override.Solodit.APIKey
	}
	if override.Solodit.TimeoutSeconds > 0 {
		base.Solodit.TimeoutSeconds = override.Solodit.TimeoutSeconds
	}
	if override.Solodit.CacheTTLSeconds != 0 {
		base.Solodit.CacheTTLSeconds = override.Solodit.CacheTTLSeconds
	}
	if override.Solodit.CacheMaxEntries > 0 {
		base.Solodit.CacheMaxEntries = override.Solodit.CacheMaxEntries
	}

	if override.Matcher.MinSimilarity > 0 {
		base.Matcher.MinSimilarity = override.Matcher.MinSimilarity
	}
	if override.Matcher.MaxResults > 0 {
		base.Matcher.MaxResults = override.Matcher.MaxResults
	}

	if override.History.DSN != "" {
		base.History.DSN = override.History.DSN
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Solodit: SoloditConfig{
			TimeoutSeconds:  15,
			CacheTTLSeconds: 300,
			CacheMaxEntries: 1000,
		},
		Matcher: MatcherConfig{
			MinSimilarity: 0.5,
			MaxResults:    10,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
