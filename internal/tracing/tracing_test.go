package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{name: "none exporter", cfg: Config{Exporter: "none", SampleRate: 1.0}},
		{name: "otlp with endpoint", cfg: Config{Enabled: true, Exporter: "otlp", OTLPEndpoint: "collector:4317", SampleRate: 0.5}},
		{name: "sample rate too high", cfg: Config{SampleRate: 1.5}, wantErr: true},
		{name: "sample rate negative", cfg: Config{SampleRate: -0.1}, wantErr: true},
		{name: "unknown exporter", cfg: Config{Exporter: "jaeger", SampleRate: 1.0}, wantErr: true},
		{name: "otlp without endpoint", cfg: Config{Enabled: true, Exporter: "otlp", SampleRate: 1.0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestInit_NoneExporter(t *testing.T) {
	shutdown, err := Init(Config{Enabled: true, Exporter: "none", SampleRate: 1.0})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInit_RejectsInvalidConfig(t *testing.T) {
	_, err := Init(Config{Enabled: true, Exporter: "jaeger", SampleRate: 1.0})
	require.Error(t, err)
}
