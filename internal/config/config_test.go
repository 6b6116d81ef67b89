package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 10_000, cfg.Trials)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EXOTICPRICE_TRIALS", "5000")
	t.Setenv("EXOTICPRICE_SEED", "7")
	t.Setenv("EXOTICPRICE_LOG_LEVEL", "debug")
	t.Setenv("EXOTICPRICE_CONFIG_PATH", "/tmp/engine.yaml")

	cfg := Load()
	assert.Equal(t, 5000, cfg.Trials)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/engine.yaml", cfg.ConfigPath)
}

func TestLoad_IgnoresUnparseableInt(t *testing.T) {
	t.Setenv("EXOTICPRICE_TRIALS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 10_000, cfg.Trials)
}

func TestLoadEngineConfig_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadEngineConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig(), cfg)
}

func TestLoadEngineConfig_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits: [this is not a mapping"), 0o644))

	_, err := LoadEngineConfig(path)
	assert.Error(t, err)
}

func TestLoadEngineConfig_OverridesDefaultLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	contents := "limits:\n  max_trials: 500\n  max_individual_steps: 10\n  target_msre: 0.01\ncoefficients_path: custom/coeffs.json\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadEngineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Limits.MaxTrials)
	assert.Equal(t, 10, cfg.Limits.MaxIndividualSteps)
	assert.InDelta(t, 0.01, cfg.Limits.TargetMSRE, 1e-9)
	assert.Equal(t, "custom/coeffs.json", cfg.CoefficientsPath)
}
