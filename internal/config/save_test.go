package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, path string) Config {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(data)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveGeneration_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	gen := GenerationConfig{MaxRows: 200, MaxConcurrent: 3, DefaultRowCount: 50}
	require.NoError(t, SaveGeneration(path, gen))

	cfg := loadConfig(t, path)
	require.Equal(t, gen, cfg.Generation)
}

func TestSaveGeneration_ReplacesExistingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	gen := GenerationConfig{MaxRows: 500, MaxConcurrent: 10, DefaultRowCount: 25}
	require.NoError(t, SaveGeneration(path, gen))

	cfg := loadConfig(t, path)
	require.Equal(t, gen, cfg.Generation)
	require.Equal(t, ":8000", cfg.Server.Addr, "other sections must survive the edit")
}

func TestSaveGeneration_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := `# my deployment notes
server:
  addr: ":9000"  # behind the load balancer

generation:
  max_rows: 100
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	require.NoError(t, SaveGeneration(path, GenerationConfig{MaxRows: 250, MaxConcurrent: 2, DefaultRowCount: 10}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "my deployment notes")
	require.Contains(t, content, "behind the load balancer")
	require.Contains(t, content, "max_rows: 250")
	require.False(t, strings.Contains(content, "max_rows: 100"))
}

func TestSaveTracingEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveTracingEnabled(path, true))
	cfg := loadConfig(t, path)
	require.True(t, cfg.Tracing.Enabled)

	require.NoError(t, SaveTracingEnabled(path, false))
	cfg = loadConfig(t, path)
	require.False(t, cfg.Tracing.Enabled)
}

func TestSaveTracingEnabled_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveTracingEnabled(path, true))

	cfg := loadConfig(t, path)
	require.True(t, cfg.Tracing.Enabled)
}
