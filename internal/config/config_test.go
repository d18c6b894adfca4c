package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "Queue_RO", cfg.Queue.Name)
	assert.Equal(t, 24*time.Hour, cfg.Queue.ResultTTL)
	assert.Equal(t, 2*time.Second, cfg.Client.PollInitialDelay)
	assert.Equal(t, 1.5, cfg.Client.PollBackoffFactor)
	assert.Equal(t, 6000, cfg.Client.ContextBudget)
	assert.Zero(t, cfg.Client.PollMaxAttempts)
	assert.Equal(t, "resume-optimizer", cfg.App.ServiceName)
	assert.False(t, cfg.App.OtelEnabled)
	assert.Equal(t, "localhost:4318", cfg.App.OtelEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "5s")
	t.Setenv("POLL_INITIAL_DELAY", "0.5")
	t.Setenv("POLL_BACKOFF_FACTOR", "2")
	t.Setenv("HISTORY_BUDGET", "1200")
	t.Setenv("QUEUE_BACKEND", "redis")
	t.Setenv("GO_ENV", "production")
	t.Setenv("OTEL_SERVICE_NAME", "resume-worker")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.Client.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.PollInitialDelay)
	assert.Equal(t, 2.0, cfg.Client.PollBackoffFactor)
	assert.Equal(t, 1200, cfg.Client.HistoryBudget)
	assert.Equal(t, "redis", cfg.Queue.Backend)
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "resume-worker", cfg.App.ServiceName)
	assert.True(t, cfg.App.OtelEnabled)
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}
