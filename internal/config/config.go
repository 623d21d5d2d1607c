package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the core runtime configuration for the service.
// Values are sourced from environment variables (optionally via a .env
// file loaded by main), with sensible defaults where appropriate.
type Config struct {
	ServiceName string `env:"APP_SERVICE_NAME" envDefault:"uva-sustainability-api"`
	ListenAddr  string `env:"APP_LISTEN_ADDR" envDefault:":8080"`

	// DataFile is the CSV the record set is loaded from.
	DataFile string `env:"APP_DATA_FILE" envDefault:"assets/sustainability_metrics.csv"`

	// LazyLoad defers reading DataFile until the first data request.
	LazyLoad bool `env:"APP_LAZY_LOAD" envDefault:"false"`
	// RequireData makes a failed startup load fatal instead of leaving the
	// service up with data_loaded=false.
	RequireData bool `env:"APP_REQUIRE_DATA" envDefault:"false"`

	CORSOrigin string `env:"APP_CORS_ORIGIN" envDefault:"*"`

	// RateLimitRPS is the per-IP request rate. Zero disables limiting.
	RateLimitRPS   float64 `env:"APP_RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"APP_RATE_LIMIT_BURST" envDefault:"20"`

	// DatabaseURL enables the dataset load audit when set (PostgreSQL URL).
	DatabaseURL string `env:"APP_DATABASE_URL"`
	// LoadRetentionDays bounds how long load audit rows are kept.
	LoadRetentionDays int `env:"APP_LOAD_RETENTION_DAYS" envDefault:"30"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `env:"APP_OTEL_ENDPOINT"`
	// OTelSampleRatio is the fraction of new traces kept.
	OTelSampleRatio float64 `env:"APP_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LoadRetentionDays <= 0 {
		cfg.LoadRetentionDays = 30
	}
	if cfg.OTelSampleRatio < 0 || cfg.OTelSampleRatio > 1 {
		return nil, fmt.Errorf("APP_OTEL_SAMPLE_RATIO must be within [0, 1], got %v", cfg.OTelSampleRatio)
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}
	return cfg, nil
}
