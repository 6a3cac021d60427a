package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sudharshini/backend/internal/infrastructure/config"
	"github.com/sudharshini/backend/internal/infrastructure/telemetry"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.Nil(t, p.ZapCore(zapcore.InfoLevel))
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestWithProfilingLabels(t *testing.T) {
	called := false
	telemetry.WithProfilingLabels(context.Background(), map[string]string{
		telemetry.ProfilingLabelRoute:  "/api/orders",
		telemetry.ProfilingLabelMethod: "",
	}, func(ctx context.Context) {
		called = true
		assert.NotNil(t, ctx)
	})
	assert.True(t, called)

	called = false
	telemetry.WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}

func TestStartProfiler_Validation(t *testing.T) {
	_, err := telemetry.StartProfiler(telemetry.ProfilerConfig{ApplicationName: "app"}, zap.NewNop())
	assert.ErrorContains(t, err, "server address")

	_, err = telemetry.StartProfiler(telemetry.ProfilerConfig{ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.ErrorContains(t, err, "application name")
}
