// Package config provides configuration types and defaults for datagenesis.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rashkid-n/datagenesis-53/internal/log"
	"github.com/rashkid-n/datagenesis-53/internal/tracing"
)

// Config holds all configuration options for datagenesis.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Generation GenerationConfig `mapstructure:"generation"`
	Progress   ProgressConfig   `mapstructure:"progress"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Tracing    tracing.Config   `mapstructure:"tracing"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"` // host:port, e.g. ":8000"
}

// StoreConfig holds job store settings.
type StoreConfig struct {
	// TTL is how long a job record survives after its last write.
	TTL time.Duration `mapstructure:"ttl"`
}

// GenerationConfig holds pipeline limits.
type GenerationConfig struct {
	// MaxRows caps the row count any single job may request.
	MaxRows int `mapstructure:"max_rows"`

	// MaxConcurrent bounds how many generation phases run at once.
	MaxConcurrent int `mapstructure:"max_concurrent"`

	// DefaultRowCount is used when a submission omits the row count.
	DefaultRowCount int `mapstructure:"default_row_count"`
}

// ProgressConfig holds progress delivery settings.
type ProgressConfig struct {
	// BufferSize is the per-connection event buffer. Events beyond it
	// are dropped rather than blocking the pipeline.
	BufferSize int `mapstructure:"buffer_size"`
}

// ArchiveConfig holds job archive settings.
type ArchiveConfig struct {
	// Enabled controls whether terminal jobs are persisted to SQLite.
	Enabled bool `mapstructure:"enabled"`

	// Path is the archive database file.
	// Default: ~/.datagenesis/archive.db
	Path string `mapstructure:"path"`
}

// DefaultArchivePath returns the default archive database location, or
// empty string if the home directory is unavailable.
func DefaultArchivePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".datagenesis", "archive.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Store: StoreConfig{
			TTL: time.Hour,
		},
		Generation: GenerationConfig{
			MaxRows:         100,
			MaxConcurrent:   5,
			DefaultRowCount: 100,
		},
		Progress: ProgressConfig{
			BufferSize: 64,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "", // Derived from home directory at runtime
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Validate checks the configuration for errors. Zero values are valid
// and fall back to defaults at construction time.
func Validate(cfg Config) error {
	if cfg.Store.TTL < 0 {
		return fmt.Errorf("store.ttl must not be negative, got %v", cfg.Store.TTL)
	}
	if cfg.Generation.MaxRows < 0 {
		return fmt.Errorf("generation.max_rows must not be negative, got %d", cfg.Generation.MaxRows)
	}
	if cfg.Generation.MaxConcurrent < 0 {
		return fmt.Errorf("generation.max_concurrent must not be negative, got %d", cfg.Generation.MaxConcurrent)
	}
	if cfg.Generation.DefaultRowCount < 0 {
		return fmt.Errorf("generation.default_row_count must not be negative, got %d", cfg.Generation.DefaultRowCount)
	}
	if cfg.Generation.MaxRows > 0 && cfg.Generation.DefaultRowCount > cfg.Generation.MaxRows {
		return fmt.Errorf("generation.default_row_count (%d) must not exceed generation.max_rows (%d)",
			cfg.Generation.DefaultRowCount, cfg.Generation.MaxRows)
	}
	if cfg.Progress.BufferSize < 0 {
		return fmt.Errorf("progress.buffer_size must not be negative, got %d", cfg.Progress.BufferSize)
	}
	if err := cfg.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Datagenesis Configuration

# HTTP listener settings
server:
  addr: ":8000"   # host:port to listen on

# Job store settings
store:
  ttl: 1h         # How long job records survive after their last write

# Generation pipeline limits
generation:
  max_rows: 100          # Hard cap on rows per job
  max_concurrent: 5      # Generation phases running at once
  default_row_count: 100 # Used when a submission omits row_count

# Progress delivery
progress:
  buffer_size: 64  # Per-connection event buffer; overflow is dropped

# Job archive - terminal jobs are copied to SQLite so results survive
# job store eviction
archive:
  enabled: true
  # path: ~/.datagenesis/archive.db

# Distributed tracing for the generation pipeline
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: stdout               # Export backend: none, stdout, otlp
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1  # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
