package fingerprint

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/core/coretest"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, 428, p.ScreenWidth)
	assert.Equal(t, 926, p.ScreenHeight)
	assert.Equal(t, 3.0, p.ScaleFactor)
	assert.True(t, p.Mobile)
	assert.True(t, p.Touch)
	assert.Contains(t, p.UserAgent, "iPhone")
}

func TestFromFingerprintNil(t *testing.T) {
	assert.Equal(t, DefaultProfile(), FromFingerprint(nil))
}

func TestFromFingerprint(t *testing.T) {
	fp := &core.Fingerprint{
		Screen: core.FingerprintScreen{
			Width: 390, Height: 844,
			AvailWidth: 390, AvailHeight: 800,
			DevicePixelRatio: 3,
		},
		Navigator: core.FingerprintNavigator{UserAgent: "custom-ua", MaxTouchPoints: 5},
		Mobile:    core.FingerprintMobile{IsMobile: true},
	}

	p := FromFingerprint(fp)
	assert.Equal(t, 390, p.ScreenWidth)
	assert.Equal(t, 800, p.ViewportHeight)
	assert.Equal(t, 3.0, p.ScaleFactor)
	assert.True(t, p.Mobile)
	assert.True(t, p.Touch)
	assert.Equal(t, "custom-ua", p.UserAgent)
}

func TestFromFingerprintFallbacks(t *testing.T) {
	p := FromFingerprint(&core.Fingerprint{})

	assert.Equal(t, 428, p.ScreenWidth)
	assert.Equal(t, 926, p.ScreenHeight)
	assert.Equal(t, 428, p.ViewportWidth)
	assert.Equal(t, 1.0, p.ScaleFactor)
	assert.False(t, p.Mobile)
	assert.False(t, p.Touch)
	assert.Contains(t, p.UserAgent, "Windows")
}

func TestApplySetsInjectionFlag(t *testing.T) {
	b := coretest.NewFakeBrowser()

	ok := Apply(context.Background(), b, nil, zap.NewNop())
	assert.True(t, ok)
	assert.Equal(t, "true", b.StorageSet[core.LocalStorage][InjectionModeKey])
	assert.Empty(t, b.Scripts)
}

func TestApplyOverridesNavigator(t *testing.T) {
	b := coretest.NewFakeBrowser()
	fp := &core.Fingerprint{Navigator: core.FingerprintNavigator{Platform: "iPhone"}}

	ok := Apply(context.Background(), b, fp, zap.NewNop())
	assert.True(t, ok)
	assert.Len(t, b.Scripts, 1)
	assert.Contains(t, b.Scripts[0], `"iPhone"`)
	assert.Equal(t, "true", b.StorageSet[core.LocalStorage][InjectionModeKey])
}

func TestApplyReappliesFlagAfterScriptFailure(t *testing.T) {
	b := coretest.NewFakeBrowser()
	b.EvalScriptFn = func(script string) error { return errors.New("eval failed") }

	flagSets := 0
	b.SetStorageItemFn = func(area core.StorageArea, key, value string) error {
		if area == core.LocalStorage && key == InjectionModeKey {
			flagSets++
		}
		return nil
	}

	ok := Apply(context.Background(), b, &core.Fingerprint{}, zap.NewNop())
	assert.True(t, ok)
	assert.Equal(t, 2, flagSets)
}

func TestApplyFailsWhenFlagCannotBeSet(t *testing.T) {
	b := coretest.NewFakeBrowser()
	b.SetStorageItemFn = func(area core.StorageArea, key, value string) error {
		return errors.New("storage unavailable")
	}

	assert.False(t, Apply(context.Background(), b, nil, zap.NewNop()))
}

func TestNavigatorOverrideScriptQuotesPlatform(t *testing.T) {
	script := navigatorOverrideScript(&core.Fingerprint{
		Navigator: core.FingerprintNavigator{Platform: `x"y`},
	})
	assert.Contains(t, script, `"x\"y"`)
	assert.Equal(t, 2, strings.Count(script, InjectionModeKey))

	script = navigatorOverrideScript(&core.Fingerprint{})
	assert.Contains(t, script, `"Win32"`)
}
