package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rashkid-n/datagenesis-53/internal/config"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "datagenesis",
	Short:   "Multi-agent synthetic dataset generation service",
	Long:    `Datagenesis runs a pipeline of analysis agents (domain, privacy, bias, relationships, quality) over a dataset schema and synthesizes data through a provider fallback chain, streaming progress to connected clients.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/datagenesis/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("store.ttl", defaults.Store.TTL)
	viper.SetDefault("generation.max_rows", defaults.Generation.MaxRows)
	viper.SetDefault("generation.max_concurrent", defaults.Generation.MaxConcurrent)
	viper.SetDefault("generation.default_row_count", defaults.Generation.DefaultRowCount)
	viper.SetDefault("progress.buffer_size", defaults.Progress.BufferSize)
	viper.SetDefault("archive.enabled", defaults.Archive.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .datagenesis/config.yaml (current directory)
		// 2. ~/.config/datagenesis/config.yaml (user config)
		if _, err := os.Stat(".datagenesis/config.yaml"); err == nil {
			viper.SetConfigFile(".datagenesis/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "datagenesis"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .datagenesis/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".datagenesis/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = time.Hour
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
