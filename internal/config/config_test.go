package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dialog-engine", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "knowledge.yaml", cfg.Knowledge.FilePath)
	assert.InDelta(t, 0.7, cfg.Knowledge.FastPathThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Engine.HistoryWindow)
	assert.Equal(t, 24*time.Hour, cfg.Engine.ContextTTL())
	assert.Equal(t, 24*time.Hour, cfg.Engine.TurnDedupTTL())
	assert.Equal(t, 3, cfg.Engine.TicketRetries)
	assert.Equal(t, 20*time.Second, cfg.Generator.Timeout())
	assert.Equal(t, 5*time.Minute, cfg.SLA.SweepInterval())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ENGINE_HISTORY_WINDOW", "8")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "60")
	t.Setenv("KNOWLEDGE_FASTPATH_THRESHOLD", "0.85")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 8, cfg.Engine.HistoryWindow)
	assert.Equal(t, time.Minute, cfg.SLA.SweepInterval())
	assert.InDelta(t, 0.85, cfg.Knowledge.FastPathThreshold, 1e-9)
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	t.Setenv("KNOWLEDGE_FASTPATH_THRESHOLD", "high")

	_, err := Load()
	assert.Error(t, err)
}

func TestDurationAccessorsGuardAgainstZero(t *testing.T) {
	assert.Equal(t, 24*time.Hour, EngineConfig{}.ContextTTL())
	assert.Equal(t, 20*time.Second, GeneratorConfig{}.Timeout())
	assert.Equal(t, 5*time.Minute, SLAConfig{}.SweepInterval())
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
}
