package injector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/pkg/urlutil"
)

// Capturer reads the full session state out of the live browser context.
type Capturer struct {
	browser core.BrowserPort
	logger  *zap.Logger
}

// NewCapturer creates a new session capturer
func NewCapturer(browser core.BrowserPort, logger *zap.Logger) *Capturer {
	return &Capturer{browser: browser, logger: logger}
}

// Capture composes a SessionRecord atomically: cookies, both storage areas,
// user agent, viewport and the current host. Any sub-read failure fails the
// whole capture; a partial record is never returned.
func (c *Capturer) Capture(ctx context.Context) (*core.SessionRecord, error) {
	c.logger.Info("Capturing session data...")

	cookies, err := c.browser.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture cookies: %w", err)
	}

	localStorage, err := c.browser.StorageSnapshot(ctx, core.LocalStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to capture localStorage: %w", err)
	}

	sessionStorage, err := c.browser.StorageSnapshot(ctx, core.SessionStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to capture sessionStorage: %w", err)
	}

	userAgent, err := c.browser.UserAgent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture user agent: %w", err)
	}

	viewport, err := c.browser.ViewportSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture viewport: %w", err)
	}

	currentURL, err := c.browser.CurrentURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current URL: %w", err)
	}

	rec := &core.SessionRecord{
		Cookies:        cookies,
		LocalStorage:   localStorage,
		SessionStorage: sessionStorage,
		UserAgent:      userAgent,
		Viewport:       &viewport,
		FinalDomain:    urlutil.Netloc(currentURL),
		CapturedAt:     float64(time.Now().UnixNano()) / float64(time.Second),
	}

	c.logger.Info("Session data captured",
		zap.Int("cookies", len(rec.Cookies)),
		zap.Int("local_storage", len(rec.LocalStorage)),
		zap.Int("session_storage", len(rec.SessionStorage)),
		zap.String("final_domain", rec.FinalDomain),
	)

	return rec, nil
}
