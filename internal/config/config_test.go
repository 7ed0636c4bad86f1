package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, ":8000", cfg.Server.Addr)
	require.Equal(t, time.Hour, cfg.Store.TTL)
	require.Equal(t, 100, cfg.Generation.MaxRows)
	require.Equal(t, 5, cfg.Generation.MaxConcurrent)
	require.Equal(t, 100, cfg.Generation.DefaultRowCount)
	require.Equal(t, 64, cfg.Progress.BufferSize)
	require.True(t, cfg.Archive.Enabled)
	require.False(t, cfg.Tracing.Enabled)

	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "zero values are valid",
			mutate: func(c *Config) { *c = Config{} },
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Store.TTL = -time.Minute },
			wantErr: "store.ttl",
		},
		{
			name:    "negative max rows",
			mutate:  func(c *Config) { c.Generation.MaxRows = -1 },
			wantErr: "generation.max_rows",
		},
		{
			name:    "negative max concurrent",
			mutate:  func(c *Config) { c.Generation.MaxConcurrent = -1 },
			wantErr: "generation.max_concurrent",
		},
		{
			name: "default row count above cap",
			mutate: func(c *Config) {
				c.Generation.MaxRows = 50
				c.Generation.DefaultRowCount = 200
			},
			wantErr: "default_row_count",
		},
		{
			name:    "negative buffer size",
			mutate:  func(c *Config) { c.Progress.BufferSize = -1 },
			wantErr: "progress.buffer_size",
		},
		{
			name:    "bad tracing sample rate",
			mutate:  func(c *Config) { c.Tracing.SampleRate = 2.0 },
			wantErr: "sample_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// The commented template must parse and agree with Defaults() for every
// uncommented key, otherwise 'init' would produce a config that behaves
// differently from no config at all.
func TestDefaultConfigTemplateMatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	defaults := Defaults()
	require.Equal(t, defaults.Server.Addr, cfg.Server.Addr)
	require.Equal(t, defaults.Store.TTL, cfg.Store.TTL)
	require.Equal(t, defaults.Generation, cfg.Generation)
	require.Equal(t, defaults.Progress, cfg.Progress)
	require.Equal(t, defaults.Archive.Enabled, cfg.Archive.Enabled)
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
