package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lognoop "go.opentelemetry.io/otel/log/noop"
)

func TestNewDisabled(t *testing.T) {
	cfg := NewDefaultConfig()

	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.False(t, tel.IsEnabled())

	health := tel.Health()
	assert.True(t, health.Healthy)
	assert.False(t, health.Degraded)
	assert.Empty(t, health.Reason)

	// Disabled instances hand out usable no-op instruments
	tracer := tel.Tracer("test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()

	meter := tel.Meter("test")
	counter, err := meter.Int64Counter("noop.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""

	tel, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, tel)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestNilTelemetryIsSafe(t *testing.T) {
	var tel *Telemetry

	assert.False(t, tel.IsEnabled())
	assert.Nil(t, tel.LoggerProvider())
	require.NoError(t, tel.Shutdown(context.Background()))
	require.NoError(t, tel.ForceFlush(context.Background()))

	health := tel.Health()
	assert.False(t, health.Healthy)
	assert.True(t, health.Degraded)

	tracer := tel.Tracer("test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
}

func TestSetLoggerProvider(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.Nil(t, tel.LoggerProvider())

	lp := lognoop.NewLoggerProvider()
	tel.SetLoggerProvider(lp)
	assert.Equal(t, lp, tel.LoggerProvider())

	// Nil receiver must not panic
	var nilTel *Telemetry
	nilTel.SetLoggerProvider(lp)
	assert.Nil(t, nilTel.LoggerProvider())
}

func TestSetDegraded(t *testing.T) {
	tel := &Telemetry{config: NewDefaultConfig()}
	tel.healthy.Store(true)

	tel.setDegraded("tracer provider", assert.AnError)

	health := tel.Health()
	assert.True(t, health.Healthy) // Degraded but still running
	assert.True(t, health.Degraded)
	assert.Contains(t, health.Reason, "tracer provider")
}

func TestTestTelemetryRecordsSpans(t *testing.T) {
	tt := NewTestTelemetry()

	tracer := tt.Tracer("mcpd.test")
	_, span := tracer.Start(context.Background(), "activate")
	span.End()

	tt.AssertSpanExists(t, "activate")
	assert.Nil(t, tt.SpanByName("missing"))
	assert.Len(t, tt.Spans(), 1)
}

func TestTestTelemetryCollectsMetrics(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	meter := tt.Meter("mcpd.test")
	counter, err := meter.Int64Counter("tool.calls")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	rm, err := tt.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "tool.calls", rm.ScopeMetrics[0].Metrics[0].Name)
}

func TestShutdownMarksUnhealthy(t *testing.T) {
	tt := NewTestTelemetry()

	require.True(t, tt.IsEnabled())
	require.NoError(t, tt.Shutdown(context.Background()))
	assert.False(t, tt.IsEnabled())
	assert.False(t, tt.Health().Healthy)
}

func TestForceFlush(t *testing.T) {
	tt := NewTestTelemetry()

	tracer := tt.Tracer("mcpd.test")
	_, span := tracer.Start(context.Background(), "flushed")
	span.End()

	require.NoError(t, tt.ForceFlush(context.Background()))
	tt.AssertSpanExists(t, "flushed")
}

func TestHostPort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://collector:4318", "collector:4318"},
		{"http://localhost:4318", "localhost:4318"},
		{"collector:4318", "collector:4318"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, hostPort(tt.in))
	}
}
