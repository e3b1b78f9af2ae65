package injector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/poll"
	"lead-automation/pkg/urlutil"
)

// MonitorResult is how a submission-monitor run ended.
type MonitorResult int

const (
	// MonitorCaptured means a cross-domain redirect was detected and the
	// session captured.
	MonitorCaptured MonitorResult = iota
	// MonitorBrowserClosed means the human closed the browser before any
	// submission was detected.
	MonitorBrowserClosed
)

// Monitor watches the page URL for the cross-domain redirect that signals a
// successful form submission. It runs until capture, browser close or
// interrupt; there is deliberately no timeout, since submission is
// human-paced.
type Monitor struct {
	pollInterval time.Duration
	settle       time.Duration
	logger       *zap.Logger
}

// NewMonitor creates a new submission monitor
func NewMonitor(timing core.TimingConfig, logger *zap.Logger) *Monitor {
	return &Monitor{
		pollInterval: timing.MonitorPoll(),
		settle:       timing.MonitorSettle(),
		logger:       logger,
	}
}

// Run polls src until the host changes from the initial URL's host, then
// invokes capture exactly once. Same-host changes are in-page navigation and
// keep the monitor running. A failed capture keeps monitoring; a browser-gone
// error ends the run cleanly without capturing.
func (m *Monitor) Run(ctx context.Context, src poll.URLSource, capture func(ctx context.Context) error) (MonitorResult, error) {
	initialURL, err := src.CurrentURL(ctx)
	if err != nil {
		if core.IsBrowserGone(err) {
			m.logger.Info("Browser was closed before monitoring started")
			return MonitorBrowserClosed, nil
		}
		return 0, err
	}

	initialHost := urlutil.Netloc(initialURL)
	lastURL := initialURL

	m.logger.Info("Monitoring for form submission", zap.String("initial_url", initialURL))

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(m.pollInterval):
		}

		currentURL, err := src.CurrentURL(ctx)
		if err != nil {
			if core.IsBrowserGone(err) {
				m.logger.Info("Browser was closed manually")
				return MonitorBrowserClosed, nil
			}
			m.logger.Warn("Error monitoring page", zap.Error(err))
			continue
		}

		if currentURL == lastURL {
			continue
		}

		m.logger.Info("URL changed",
			zap.String("from", lastURL),
			zap.String("to", currentURL),
		)
		lastURL = currentURL

		// Let the new page finish loading before judging the host.
		poll.Sleep(ctx, m.settle)

		currentHost := urlutil.Netloc(currentURL)
		if currentHost == initialHost {
			// In-page navigation, keep watching.
			continue
		}

		m.logger.Info("Form submission detected",
			zap.String("redirected_to", currentHost),
		)

		if err := capture(ctx); err != nil {
			m.logger.Warn("Failed to capture session data", zap.Error(err))
			continue
		}

		return MonitorCaptured, nil
	}
}
