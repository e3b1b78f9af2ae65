// Package poll implements the shared human-paced polling loops. The loops
// are unbounded by design: they end when the human closes the browser or the
// process is interrupted, never on a timer.
package poll

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lead-automation/internal/core"
)

// URLSource yields the page's current URL. A browser-gone error from it
// means the human closed the browser.
type URLSource interface {
	CurrentURL(ctx context.Context) (string, error)
}

// WaitForClose polls src on the given interval until the browser disappears
// or the context is cancelled. Both are normal termination.
func WaitForClose(ctx context.Context, src URLSource, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session interrupted by user")
			return ctx.Err()
		case <-ticker.C:
			if _, err := src.CurrentURL(ctx); err != nil {
				if core.IsBrowserGone(err) {
					logger.Info("Browser was closed manually")
					return nil
				}
				logger.Warn("Error polling page", zap.Error(err))
			}
		}
	}
}

// Sleep blocks for d or until the context is cancelled.
func Sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
