package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_SERVICE_NAME", "APP_LISTEN_ADDR", "APP_DATA_FILE", "APP_LAZY_LOAD", "APP_RATE_LIMIT_RPS", "APP_LOAD_RETENTION_DAYS"} {
		// Setenv restores the original value when the test ends.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr :8080, got %s", cfg.ListenAddr)
	}
	if cfg.DataFile != "assets/sustainability_metrics.csv" {
		t.Errorf("unexpected default data file %s", cfg.DataFile)
	}
	if cfg.ServiceName != "uva-sustainability-api" {
		t.Errorf("unexpected service name %s", cfg.ServiceName)
	}
	if cfg.LazyLoad {
		t.Error("expected eager load by default")
	}
	if cfg.RateLimitRPS != 0 {
		t.Errorf("expected rate limiting off, got %v", cfg.RateLimitRPS)
	}
	if cfg.LoadRetentionDays != 30 {
		t.Errorf("expected 30 retention days, got %d", cfg.LoadRetentionDays)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_LISTEN_ADDR", ":9090")
	t.Setenv("APP_DATA_FILE", "/data/metrics.csv")
	t.Setenv("APP_LAZY_LOAD", "true")
	t.Setenv("APP_RATE_LIMIT_RPS", "2.5")
	t.Setenv("APP_LOAD_RETENTION_DAYS", "-4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.ListenAddr)
	}
	if cfg.DataFile != "/data/metrics.csv" {
		t.Errorf("expected /data/metrics.csv, got %s", cfg.DataFile)
	}
	if !cfg.LazyLoad {
		t.Error("expected lazy load from env")
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.LoadRetentionDays != 30 {
		t.Errorf("expected invalid retention to fall back to 30, got %d", cfg.LoadRetentionDays)
	}
}

func TestLoadRejectsBadBool(t *testing.T) {
	t.Setenv("APP_LAZY_LOAD", "maybe")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid bool")
	}
}

func TestLoadSampleRatio(t *testing.T) {
	t.Setenv("APP_OTEL_SAMPLE_RATIO", "0.1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OTelSampleRatio != 0.1 {
		t.Errorf("expected 0.1, got %v", cfg.OTelSampleRatio)
	}

	t.Setenv("APP_OTEL_SAMPLE_RATIO", "1.5")
	if _, err := Load(); err == nil {
		t.Error("expected error for ratio above 1")
	}
}
