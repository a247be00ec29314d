package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutPath(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.History.Persist)
	assert.Equal(t, MaxDimension, cfg.Limits.MaxW)
	assert.Equal(t, MaxActions, cfg.Limits.ActionsPerActor)
	assert.Len(t, cfg.World.Dimensions, 2)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
limits:
  max_w: 500
  max_h: 16
  actions_per_actor: 99
history:
  persist: true
  backend: sqlite
  directory: /var/lib/voxel
world:
  seed: 7
  dimensions:
    - id: overworld
      generator: flat
      min_y: 0
      max_y: 64
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, cfg.Limits.MaxW)
	assert.Equal(t, 16, cfg.Limits.MaxH)
	assert.Equal(t, MaxDimension, cfg.Limits.MaxD)
	assert.Equal(t, MaxActions, cfg.Limits.ActionsPerActor)
	assert.True(t, cfg.History.Persist)
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, int64(7), cfg.World.Seed)
	require.Len(t, cfg.World.Dimensions, 1)
	assert.Equal(t, "flat", cfg.World.Dimensions[0].Generator)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telemetry:\n  enabled: true\n"), 0o644))
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "voxel-edit", cfg.Telemetry.ServiceName)
}

func TestValidateRejectsBadDimensions(t *testing.T) {
	cfg := Default()
	cfg.World.Dimensions = append(cfg.World.Dimensions, DimensionConfig{ID: "overworld"})
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.World.Dimensions[0].Generator = "caves"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.History.Backend = "tape"
	assert.Error(t, cfg.Validate())
}

func TestPortFallbacks(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("VOXEL_REST_PORT", "9090")
	t.Setenv("VOXEL_METRICS_PORT", "nope")

	assert.Equal(t, 9090, s.GetRESTPort())
	assert.Equal(t, 2112, s.GetMetricsPort())

	s.RESTPort = 7000
	assert.Equal(t, 7000, s.GetRESTPort())
}
