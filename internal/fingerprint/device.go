// Package fingerprint translates opaque device descriptions into browser
// emulation parameters and best-effort in-page overrides.
package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lead-automation/internal/core"
)

// InjectionModeKey is the localStorage flag the landing page's client-side
// logic reads to know it is being driven by this automation. Downstream page
// behavior depends on it, so it is re-applied even after override errors.
const InjectionModeKey = "isInjectionMode"

// Default profile: iPhone 14 Pro Max.
const (
	defaultScreenWidth  = 428
	defaultScreenHeight = 926
	defaultScaleFactor  = 3

	defaultMobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 18_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.5 Mobile/15E148 Safari/605.1 NAVER(inapp; search; 2000; 12.12.50; 14PROMAX)"
	defaultDesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// DeviceProfile is the resolved set of emulation parameters for one browser
// context.
type DeviceProfile struct {
	ScreenWidth    int
	ScreenHeight   int
	ViewportWidth  int
	ViewportHeight int
	ScaleFactor    float64
	Mobile         bool
	Touch          bool
	UserAgent      string
}

// DefaultProfile returns the fixed mobile profile used when no fingerprint
// is supplied.
func DefaultProfile() DeviceProfile {
	return DeviceProfile{
		ScreenWidth:    defaultScreenWidth,
		ScreenHeight:   defaultScreenHeight,
		ViewportWidth:  defaultScreenWidth,
		ViewportHeight: defaultScreenHeight,
		ScaleFactor:    defaultScaleFactor,
		Mobile:         true,
		Touch:          true,
		UserAgent:      defaultMobileUserAgent,
	}
}

// FromFingerprint maps a fingerprint onto a DeviceProfile. Missing fields
// fall back to sensible defaults; a nil fingerprint yields DefaultProfile.
func FromFingerprint(fp *core.Fingerprint) DeviceProfile {
	if fp == nil {
		return DefaultProfile()
	}

	screenW := fp.Screen.Width
	if screenW == 0 {
		screenW = defaultScreenWidth
	}
	screenH := fp.Screen.Height
	if screenH == 0 {
		screenH = defaultScreenHeight
	}

	viewportW := fp.Screen.AvailWidth
	if viewportW == 0 {
		viewportW = screenW
	}
	viewportH := fp.Screen.AvailHeight
	if viewportH == 0 {
		viewportH = screenH
	}

	scale := fp.Screen.DevicePixelRatio
	if scale == 0 {
		scale = 1
	}

	ua := fp.Navigator.UserAgent
	if ua == "" {
		ua = defaultDesktopUserAgent
	}

	return DeviceProfile{
		ScreenWidth:    screenW,
		ScreenHeight:   screenH,
		ViewportWidth:  viewportW,
		ViewportHeight: viewportH,
		ScaleFactor:    scale,
		Mobile:         fp.Mobile.IsMobile,
		Touch:          fp.Navigator.MaxTouchPoints > 0,
		UserAgent:      ua,
	}
}

// ViewportMetaScript pins the page to device width so mobile emulation
// renders the form at its intended size.
const ViewportMetaScript = `() => {
	const meta = document.createElement('meta');
	meta.name = 'viewport';
	meta.content = 'width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no';
	document.head.appendChild(meta);
}`

// Apply sets the injection-mode flag and applies in-page navigator overrides
// from the fingerprint. Best effort: override failures are logged and the
// injection flag re-applied, and the flow continues either way. Returns
// false only when even the flag could not be set.
func Apply(ctx context.Context, b core.BrowserPort, fp *core.Fingerprint, logger *zap.Logger) bool {
	// Flag first: the page logic depends on it even if overrides fail.
	if err := b.SetStorageItem(ctx, core.LocalStorage, InjectionModeKey, "true"); err != nil {
		logger.Warn("Could not set injection mode flag", zap.Error(err))
		return false
	}
	logger.Info("Set injection mode flag for the landing page")

	if fp == nil {
		return true
	}

	if err := b.EvalScript(ctx, navigatorOverrideScript(fp)); err != nil {
		logger.Warn("Failed to apply fingerprint properties", zap.Error(err))
		// The override script also sets the flag; with it failed, set the
		// flag again directly.
		if err := b.SetStorageItem(ctx, core.LocalStorage, InjectionModeKey, "true"); err != nil {
			logger.Warn("Could not re-set injection mode flag", zap.Error(err))
			return false
		}
		logger.Info("Set injection mode flag despite fingerprint error")
		return true
	}

	logger.Info("Applied fingerprint properties",
		zap.String("device_id", fp.DeviceID),
		zap.String("device_type", fp.DeviceType),
	)
	return true
}

// navigatorOverrideScript builds the in-page override for exposed navigator
// properties. The injection flag is set inside both branches of the
// try/catch so a property-definition failure cannot leave it unset.
func navigatorOverrideScript(fp *core.Fingerprint) string {
	platform := fp.Navigator.Platform
	if platform == "" {
		platform = "Win32"
	}
	quoted, _ := json.Marshal(platform)

	return fmt.Sprintf(`() => {
	try {
		Object.defineProperty(navigator, 'platform', {
			get: () => %s
		});
		localStorage.setItem('%s', 'true');
	} catch (error) {
		localStorage.setItem('%s', 'true');
	}
}`, string(quoted), InjectionModeKey, InjectionModeKey)
}
