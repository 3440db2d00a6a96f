// Package config loads process configuration from the environment, with
// an optional .env file picked up via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Sim     SimConfig
	Catalog CatalogConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

type SimConfig struct {
	TickInterval time.Duration
	TimeScale    float64
	StartPaused  bool
}

type CatalogConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present; a missing file is fine.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Sim:     loadSimConfig(),
		Catalog: loadCatalogConfig(),
		Logging: loadLoggingConfig(),
		Metrics: loadMetricsConfig(),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadSimConfig() SimConfig {
	tickMs, _ := strconv.Atoi(getEnv("STARVIEW_TICK_INTERVAL_MS", "16"))
	timeScale, _ := strconv.ParseFloat(getEnv("STARVIEW_TIME_SCALE", "1"), 64)
	startPaused := getEnv("STARVIEW_START_PAUSED", "false") == "true"

	return SimConfig{
		TickInterval: time.Duration(tickMs) * time.Millisecond,
		TimeScale:    timeScale,
		StartPaused:  startPaused,
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Path: getEnv("STARVIEW_CATALOG", ""),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("STARVIEW_LOG_LEVEL", "info"),
		Format: getEnv("STARVIEW_LOG_FORMAT", "text"),
	}
}

func loadMetricsConfig() MetricsConfig {
	enabled := getEnv("STARVIEW_METRICS_ENABLED", "false") == "true"

	return MetricsConfig{
		Enabled: enabled,
		Addr:    getEnv("STARVIEW_METRICS_ADDR", ":9090"),
	}
}

func (c *Config) validate() error {
	if c.Sim.TickInterval <= 0 {
		return fmt.Errorf("STARVIEW_TICK_INTERVAL_MS must be positive")
	}
	if c.Sim.TimeScale == 0 {
		return fmt.Errorf("STARVIEW_TIME_SCALE must be nonzero")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("STARVIEW_METRICS_ADDR is required when metrics are enabled")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
