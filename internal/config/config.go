// Package config defines the scoregest configuration and its loader.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgallion1/scoregest/internal/sheet"
)

// Config holds process configuration for the CLI and the API server.
type Config struct {
	Port string `koanf:"port"`

	// APIKey is the bearer token required by the parse API.
	APIKey string `koanf:"api_key"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Worker pool
	WorkerCount  int `koanf:"worker_count"`
	MaxQueueSize int `koanf:"max_queue_size"`

	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	JobTTL         time.Duration `koanf:"job_ttl"`

	// OutputDir receives <pdf-stem>.json result files; empty disables them.
	OutputDir string `koanf:"output_dir"`

	// Pathstore connection; an empty URL disables storing.
	PathstoreURL    string `koanf:"pathstore_url"`
	PathstoreAPIKey string `koanf:"pathstore_api_key"`

	Metrics MetricsConfig `koanf:"metrics"`

	Template sheet.Template `koanf:"template"`
}

// MetricsConfig tunes the Prometheus metrics served on /metrics.
type MetricsConfig struct {
	Namespace    string    `koanf:"namespace"`
	ParseBuckets []float64 `koanf:"parse_buckets"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		Port:           "8090",
		LogLevel:       "info",
		WorkerCount:    4,
		MaxQueueSize:   100,
		MaxUploadBytes: 50 << 20,
		JobTTL:         time.Hour,
		Metrics: MetricsConfig{
			Namespace:    "scoregest",
			ParseBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		Template: sheet.DefaultTemplate(),
	}
}

// Validate checks the settings shared by every command.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker_count must be positive, got %d", c.WorkerCount)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be positive, got %d", c.MaxQueueSize)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("job_ttl must be positive, got %s", c.JobTTL)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Metrics.Namespace == "" {
		return errors.New("metrics.namespace must not be empty")
	}
	if !slices.IsSorted(c.Metrics.ParseBuckets) {
		return fmt.Errorf("metrics.parse_buckets must be ascending, got %v", c.Metrics.ParseBuckets)
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return errors.New("pathstore_api_key is required with pathstore_url")
	}
	return c.Template.Validate()
}

// ValidateServer adds the checks the API server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New("SCOREGEST_API_KEY is required")
	}
	return nil
}

// ParseLevel accepts debug, info, warn/warning and error, case-insensitively.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
}
