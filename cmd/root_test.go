package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/rashkid-n/datagenesis-53/internal/config"
)

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"], "serve command must be registered")
	require.True(t, names["config"], "config command must be registered")

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
	require.NotNil(t, serveCmd.Flags().Lookup("addr"))
}

func TestConfigCommandWiring(t *testing.T) {
	subs := make(map[string]*cobra.Command)
	for _, c := range configCmd.Commands() {
		subs[c.Name()] = c
	}
	require.Contains(t, subs, "generation")
	require.Contains(t, subs, "tracing")
	require.NotNil(t, subs["generation"].Flags().Lookup("max-rows"))
	require.NotNil(t, subs["generation"].Flags().Lookup("max-concurrent"))
	require.NotNil(t, subs["generation"].Flags().Lookup("default-row-count"))
	require.NotNil(t, subs["tracing"].Flags().Lookup("enabled"))
}

func TestConfigGenerationCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	t.Cleanup(func() {
		cfgFile = ""
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"config", "generation", "--max-rows", "200", "-c", path})
	require.NoError(t, rootCmd.Execute())

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, 200, v.GetInt("generation.max_rows"))
	require.Equal(t, 5, v.GetInt("generation.max_concurrent"),
		"flags not passed keep their configured values")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Datagenesis Configuration",
		"comments outside the generation section survive the rewrite")
}

func TestConfigTracingCommandTogglesFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	t.Cleanup(func() {
		cfgFile = ""
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"config", "tracing", "--enabled=true", "-c", path})
	require.NoError(t, rootCmd.Execute())

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.True(t, v.GetBool("tracing.enabled"))
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3 (commit: abc, built: today)")
	require.Equal(t, "1.2.3 (commit: abc, built: today)", rootCmd.Version)
}
