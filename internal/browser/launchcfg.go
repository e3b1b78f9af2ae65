package browser

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/fingerprint"
)

// launchFlag is one chromium switch; an empty value means a bare flag.
type launchFlag struct {
	name  string
	value string
}

// hardeningFlags disable automation-detection signals, sandboxing, first-run
// UI and background throttling. Applied to every launch, in order.
var hardeningFlags = []launchFlag{
	{"no-sandbox", ""},
	{"disable-blink-features", "AutomationControlled"},
	{"disable-web-security", ""},
	{"disable-features", "VizDisplayCompositor"},
	{"disable-extensions", ""},
	{"no-first-run", ""},
	{"disable-default-apps", ""},
	{"disable-infobars", ""},
	{"disable-dev-shm-usage", ""},
	{"disable-background-timer-throttling", ""},
	{"disable-backgrounding-occluded-windows", ""},
	{"disable-renderer-backgrounding", ""},
	{"disable-field-trial-config", ""},
	{"disable-back-forward-cache", ""},
	{"disable-ipc-flooding-protection", ""},
}

// headlessExtraFlags are added only when running without a display.
var headlessExtraFlags = []launchFlag{
	{"disable-features", "TranslateUI"},
	{"disable-plugins", ""},
}

// deploymentEnv lists environment markers that force headless mode.
var deploymentEnv = []struct{ key, value string }{
	{"NODE_ENV", "production"},
	{"RENDER", "true"},
	{"VERCEL", "1"},
	{"DOCKER", "true"},
}

// DetectHeadless reports whether the browser must run headless: any
// deployment indicator set, or no display available.
func DetectHeadless() bool {
	for _, marker := range deploymentEnv {
		if os.Getenv(marker.key) == marker.value {
			return true
		}
	}
	return strings.TrimSpace(os.Getenv("DISPLAY")) == ""
}

// Options configures one browser launch. Always complete; building it
// cannot fail.
type Options struct {
	Headless     bool
	WindowWidth  int
	WindowHeight int
	Proxy        *core.ProxyConfig

	// Device enables mobile/device emulation on the page (injection mode).
	Device *fingerprint.DeviceProfile

	// UserAgent and Viewport override the context without full device
	// emulation (replay mode). Ignored when Device is set.
	UserAgent string
	Viewport  *core.Viewport

	Screenshots core.ScreenshotsConfig
}

// InjectionOptions builds the launch configuration for the capture flow:
// mobile window, emulated device from the lead's fingerprint (or the
// default mobile profile), lead proxy if present.
func InjectionOptions(cfg *core.Config, lead *core.LeadRecord, logger *zap.Logger) *Options {
	device := fingerprint.FromFingerprint(lead.Fingerprint)
	if lead.Fingerprint == nil {
		logger.Warn("No fingerprint configuration provided, using default mobile device profile")
	} else {
		logger.Info("Using device fingerprint",
			zap.String("device_id", lead.Fingerprint.DeviceID),
			zap.String("device_type", lead.Fingerprint.DeviceType),
		)
	}

	opts := &Options{
		Headless:     DetectHeadless(),
		WindowWidth:  cfg.Injection.WindowWidth,
		WindowHeight: cfg.Injection.WindowHeight,
		Proxy:        lead.Proxy,
		Device:       &device,
		Screenshots:  cfg.Screenshots,
	}

	logMode(opts, logger)
	return opts
}

// ReplayOptions builds the launch configuration for the agent flow: window
// and viewport from the captured session (default 1280x720), the captured
// user agent, no device emulation.
func ReplayOptions(cfg *core.Config, session *core.SessionRecord, logger *zap.Logger) *Options {
	width := cfg.Replay.DefaultWidth
	height := cfg.Replay.DefaultHeight

	var viewport *core.Viewport
	var userAgent string
	if session != nil {
		if session.Viewport != nil {
			if session.Viewport.Width > 0 {
				width = session.Viewport.Width
			}
			if session.Viewport.Height > 0 {
				height = session.Viewport.Height
			}
			viewport = &core.Viewport{Width: width, Height: height}
		}
		userAgent = session.UserAgent
	}

	opts := &Options{
		Headless:     DetectHeadless(),
		WindowWidth:  width,
		WindowHeight: height,
		UserAgent:    userAgent,
		Viewport:     viewport,
		Screenshots:  cfg.Screenshots,
	}

	logMode(opts, logger)
	return opts
}

func logMode(opts *Options, logger *zap.Logger) {
	if opts.Headless {
		logger.Info("Running in headless mode (deployment environment detected)")
	} else {
		logger.Info("Running with visible browser for manual interaction")
	}
	if opts.Proxy != nil {
		logger.Info("Using proxy server", zap.String("server", opts.Proxy.Server))
	}
}
