package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "#landingForm", cfg.Selectors.FormContainer)
	assert.Equal(t, `[data-testid="prefix-option-%s"]`, cfg.Selectors.PrefixOptionFormat)
	assert.Equal(t, 15, cfg.Timing.FormWaitSeconds)
	assert.Equal(t, 3, cfg.Timing.NavRetries)
	assert.Equal(t, 50, cfg.Typing.KeyDelayMinMs)
	assert.Equal(t, 150, cfg.Typing.KeyDelayMaxMs)
	assert.True(t, cfg.Screenshots.Enabled)
	assert.Equal(t, "https://ftd-copy.vercel.app/landing", cfg.Injection.DefaultTargetURL)
	assert.Equal(t, 428, cfg.Injection.WindowWidth)
	assert.Equal(t, 1280, cfg.Replay.DefaultWidth)
	assert.Equal(t, "data/sessions.db", cfg.Database.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
timing:
  form_wait_seconds: 30
injection:
  default_target_url: https://other.example/landing
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Timing.FormWaitSeconds)
	assert.Equal(t, "https://other.example/landing", cfg.Injection.DefaultTargetURL)
	// Untouched settings keep their defaults.
	assert.Equal(t, "#landingForm", cfg.Selectors.FormContainer)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
timing:
  nav_retries: 0
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nav_retries")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
