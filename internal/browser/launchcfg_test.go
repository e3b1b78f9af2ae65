package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lead-automation/internal/core"
)

func clearDeploymentEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NODE_ENV", "RENDER", "VERCEL", "DOCKER"} {
		t.Setenv(key, "")
	}
	t.Setenv("DISPLAY", ":0")
}

func TestDetectHeadless(t *testing.T) {
	clearDeploymentEnv(t)
	assert.False(t, DetectHeadless())

	t.Setenv("NODE_ENV", "production")
	assert.True(t, DetectHeadless())
	t.Setenv("NODE_ENV", "development")
	assert.False(t, DetectHeadless())

	t.Setenv("RENDER", "true")
	assert.True(t, DetectHeadless())
	t.Setenv("RENDER", "")

	t.Setenv("VERCEL", "1")
	assert.True(t, DetectHeadless())
	t.Setenv("VERCEL", "")

	t.Setenv("DISPLAY", "")
	assert.True(t, DetectHeadless(), "no display forces headless")
}

func replayTestConfig() *core.Config {
	cfg := &core.Config{}
	cfg.Injection.WindowWidth = 428
	cfg.Injection.WindowHeight = 926
	cfg.Replay.DefaultWidth = 1280
	cfg.Replay.DefaultHeight = 720
	return cfg
}

func TestInjectionOptions(t *testing.T) {
	clearDeploymentEnv(t)

	lead := &core.LeadRecord{
		Fingerprint: &core.Fingerprint{
			Screen:    core.FingerprintScreen{Width: 390, Height: 844, DevicePixelRatio: 3},
			Navigator: core.FingerprintNavigator{UserAgent: "fp-ua", MaxTouchPoints: 5},
			Mobile:    core.FingerprintMobile{IsMobile: true},
		},
		Proxy: &core.ProxyConfig{Server: "http://proxy.example:8080"},
	}

	opts := InjectionOptions(replayTestConfig(), lead, zap.NewNop())

	assert.False(t, opts.Headless)
	assert.Equal(t, 428, opts.WindowWidth)
	require.NotNil(t, opts.Device)
	assert.Equal(t, 390, opts.Device.ScreenWidth)
	assert.True(t, opts.Device.Mobile)
	assert.Equal(t, "fp-ua", opts.Device.UserAgent)
	require.NotNil(t, opts.Proxy)
	assert.Equal(t, "http://proxy.example:8080", opts.Proxy.Server)
}

func TestInjectionOptionsDefaultDevice(t *testing.T) {
	clearDeploymentEnv(t)

	opts := InjectionOptions(replayTestConfig(), &core.LeadRecord{}, zap.NewNop())
	require.NotNil(t, opts.Device)
	assert.Equal(t, 428, opts.Device.ScreenWidth)
	assert.True(t, opts.Device.Mobile)
}

func TestReplayOptionsFromSession(t *testing.T) {
	clearDeploymentEnv(t)

	session := &core.SessionRecord{
		UserAgent: "captured-ua",
		Viewport:  &core.Viewport{Width: 428, Height: 926},
	}

	opts := ReplayOptions(replayTestConfig(), session, zap.NewNop())
	assert.Equal(t, 428, opts.WindowWidth)
	assert.Equal(t, 926, opts.WindowHeight)
	assert.Equal(t, "captured-ua", opts.UserAgent)
	require.NotNil(t, opts.Viewport)
	assert.Nil(t, opts.Device)
}

func TestReplayOptionsDefaults(t *testing.T) {
	clearDeploymentEnv(t)

	opts := ReplayOptions(replayTestConfig(), nil, zap.NewNop())
	assert.Equal(t, 1280, opts.WindowWidth)
	assert.Equal(t, 720, opts.WindowHeight)
	assert.Empty(t, opts.UserAgent)
	assert.Nil(t, opts.Viewport)
	assert.Nil(t, opts.Device)
}
