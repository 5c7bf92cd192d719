// Package config assembles the runtime configuration from defaults, an
// optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"serpscout/internal/browser"
	"serpscout/internal/serp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once by Load and
// handed to components by value.
type Config struct {
	// Browser controls session launching
	Browser browser.Config `yaml:"browser"`

	// Search is the engine tuning for browser-driven searches
	Search serp.Config `yaml:"search"`

	// Batch controls multi-query runs
	Batch BatchConfig `yaml:"batch"`

	// LogLevel is a zerolog level name
	LogLevel string `yaml:"log_level"`
}

// BatchConfig holds settings for running many queries.
type BatchConfig struct {
	// Concurrency is the number of queries in flight, each with its own session
	Concurrency int `yaml:"concurrency"`

	// Interval is the minimum spacing between query starts
	Interval time.Duration `yaml:"interval"`

	// CacheTTL is how long a query's result is reused within one process
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Browser: browser.DefaultConfig(),
		Search:  serp.GoogleConfig(),
		Batch: BatchConfig{
			Concurrency: 1,
			Interval:    5 * time.Second,
			CacheTTL:    time.Hour,
		},
		LogLevel: "info",
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.Search = cfg.Search.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// The engine picks the preset the rest of the search section overlays.
	var head struct {
		Search struct {
			Engine string `yaml:"engine"`
		} `yaml:"search"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if preset, ok := Preset(head.Search.Engine); ok {
		c.Search = preset
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Preset returns the built-in search configuration for engine.
func Preset(engine string) (serp.Config, bool) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "google":
		return serp.GoogleConfig(), true
	case "bing":
		return serp.BingConfig(), true
	default:
		return serp.Config{}, false
	}
}

func (c *Config) applyEnv() {
	c.Browser.Headless = getEnvAsBoolOrDefault("SERPSCOUT_HEADLESS", c.Browser.Headless)
	c.Browser.ProxyURL = getEnvOrDefault("SERPSCOUT_PROXY", c.Browser.ProxyURL)
	c.Browser.Bin = getEnvOrDefault("CHROME_BIN", c.Browser.Bin)
	c.Browser.ScratchRoot = getEnvOrDefault("CHROME_USER_DATA_DIR", c.Browser.ScratchRoot)
	c.Browser.PageLoadTimeout = getEnvAsDurationOrDefault("SERPSCOUT_PAGE_LOAD_TIMEOUT", c.Browser.PageLoadTimeout)
	c.Search.MaxResults = getEnvAsIntOrDefault("SERPSCOUT_MAX_RESULTS", c.Search.MaxResults)
	c.Search.ScreenshotPath = getEnvOrDefault("SERPSCOUT_SCREENSHOT", c.Search.ScreenshotPath)
	c.LogLevel = getEnvOrDefault("SERPSCOUT_LOG_LEVEL", c.LogLevel)
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if c.Browser.PageLoadTimeout <= 0 {
		return errors.New("page load timeout must be positive")
	}
	if c.Browser.ImplicitWait < 0 {
		return errors.New("implicit wait cannot be negative")
	}
	if c.Batch.Concurrency < 1 {
		return errors.New("batch concurrency must be at least 1")
	}
	if c.Batch.Interval < 0 {
		return errors.New("batch interval cannot be negative")
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("invalid search config: %w", err)
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("45s") or plain seconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
