package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/poll"
	"lead-automation/pkg/urlutil"
)

// Prober checks whether an applied session still looks valid by navigating
// to the captured final domain. The result is advisory only: the browser
// stays usable for the agent either way.
type Prober struct {
	browser core.BrowserPort
	settle  time.Duration
	logger  *zap.Logger
}

// NewProber creates a new session validity prober
func NewProber(browser core.BrowserPort, timing core.TimingConfig, logger *zap.Logger) *Prober {
	return &Prober{
		browser: browser,
		settle:  timing.ProbeSettle(),
		logger:  logger,
	}
}

// Probe navigates to https://<finalDomain> and compares the landed host
// against the expected one with bidirectional containment, tolerating
// subdomain variation. No final domain means nothing to test.
func (p *Prober) Probe(ctx context.Context, finalDomain string) bool {
	if finalDomain == "" {
		p.logger.Info("No final domain to test, proceeding...")
		return true
	}

	testURL := "https://" + finalDomain
	p.logger.Info("Testing session validity", zap.String("url", testURL))

	if err := p.browser.Navigate(ctx, testURL); err != nil {
		p.logger.Warn("Failed to navigate for validity test", zap.Error(err))
		return false
	}

	poll.Sleep(ctx, p.settle)

	currentURL, err := p.browser.CurrentURL(ctx)
	if err != nil {
		p.logger.Warn("Failed to read URL after validity test", zap.Error(err))
		return false
	}

	currentDomain := urlutil.Netloc(currentURL)
	p.logger.Info("Landed after validity navigation",
		zap.String("url", currentURL),
		zap.String("domain", currentDomain),
	)

	if urlutil.DomainsRelated(finalDomain, currentDomain) {
		p.logger.Info("Session appears to be valid")
		return true
	}

	p.logger.Warn("Redirected to different domain",
		zap.String("expected", finalDomain),
		zap.String("got", currentDomain),
	)
	return false
}
