package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/shakehands/internal/volume"
)

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("SHAKEHANDS_DATA_DIR", dataDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Second, cfg.DecisionDelay)
	assert.Equal(t, 62500*time.Microsecond, cfg.FadeInterval)
	assert.True(t, cfg.FlipHorizontal)
	assert.Equal(t, 1, cfg.MaxHands)
	assert.Equal(t, 0.8, cfg.ScoreThreshold)
	assert.Equal(t, filepath.Join(dataDir, "plugins"), cfg.PluginDir)
	assert.Equal(t, filepath.Join(dataDir, "shakehands.db"), cfg.DBPath())
	assert.Equal(t, volume.DefaultConfig(), cfg.Volume())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHAKEHANDS_DATA_DIR", t.TempDir())
	t.Setenv("SHAKEHANDS_TRAVEL_DISTANCE", "250")
	t.Setenv("SHAKEHANDS_INCREMENTAL", "false")
	t.Setenv("SHAKEHANDS_DECISION_DELAY", "500ms")
	t.Setenv("SHAKEHANDS_SCORE_THRESHOLD", "0.6")
	t.Setenv("SHAKEHANDS_PLUGIN_DIR", "/opt/plugins")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Volume().TravelDistance)
	assert.False(t, cfg.Volume().Incremental)
	assert.Equal(t, 500*time.Millisecond, cfg.DecisionDelay)
	assert.Equal(t, 0.6, cfg.Detector().MinConfidence)
	assert.Equal(t, "/opt/plugins", cfg.PluginDir)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SHAKEHANDS_DATA_DIR", t.TempDir())
	t.Setenv("SHAKEHANDS_DETECTION_FPS", "fast")

	_, err := Load()
	assert.Error(t, err)
}
