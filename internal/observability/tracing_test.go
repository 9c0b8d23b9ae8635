package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/config"
)

func TestNewTracerProvider_disabledWithoutExporter(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"nil config", nil},
		{"empty exporter", &config.Config{}},
		{"unknown exporter", &config.Config{OtelTracesExporter: "jaeger"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewTracerProvider(tt.cfg)
			require.NoError(t, err)
			assert.Nil(t, provider)
		})
	}
}

func TestNewTracerProvider_stdoutExporter(t *testing.T) {
	provider, err := NewTracerProvider(&config.Config{OtelTracesExporter: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, provider)

	require.NoError(t, ShutdownTracerProvider(context.Background(), provider))
}

func TestShutdownTracerProvider_nilIsSafe(t *testing.T) {
	assert.NoError(t, ShutdownTracerProvider(context.Background(), nil))
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name        string
		sampler     string
		arg         string
		description string
	}{
		{"default when unset", "", "", "ParentBased{root:AlwaysOnSampler"},
		{"always_on", "always_on", "", "AlwaysOnSampler"},
		{"always_off", "always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "traceidratio", "0.25", "TraceIDRatioBased{0.25}"},
		{"traceidratio invalid arg falls back to 1", "traceidratio", "nope", "TraceIDRatioBased{1}"},
		{"parentbased_always_off", "parentbased_always_off", "", "ParentBased{root:AlwaysOffSampler"},
		{"unknown value", "xray", "", "ParentBased{root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envTracesSampler, tt.sampler)
			t.Setenv(envTracesSamplerArg, tt.arg)

			assert.Contains(t, newSampler().Description(), tt.description)
		})
	}
}

func TestParseTraceIDRatio(t *testing.T) {
	assert.Equal(t, 0.5, parseTraceIDRatio("0.5"))
	assert.Equal(t, defaultTraceIDRatio, parseTraceIDRatio(""))
	assert.Equal(t, defaultTraceIDRatio, parseTraceIDRatio("abc"))
	assert.Equal(t, defaultTraceIDRatio, parseTraceIDRatio("-0.1"))
	assert.Equal(t, defaultTraceIDRatio, parseTraceIDRatio("1.5"))
}
