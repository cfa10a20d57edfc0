package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/docquery/docquery/internal/htmlutil"
)

// Config holds docquery CLI configuration.
type Config struct {
	Logging LogConfig
	Limits  LimitConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"DOCQUERY_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"DOCQUERY_LOG_DEV" default:"false"`
}

// LimitConfig holds input bound configuration.
type LimitConfig struct {
	MaxHTMLSize int `envconfig:"DOCQUERY_MAX_HTML_SIZE" default:"10485760"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{Level: "info"},
		Limits:  LimitConfig{MaxHTMLSize: htmlutil.MaxHTMLSize},
	}
}
