package agent

import (
	"context"

	"go.uber.org/zap"

	"lead-automation/internal/core"
)

// ApplyReport records the per-step outcome of applying a session. Each of
// the three steps degrades independently; an error in one never stops the
// others.
type ApplyReport struct {
	Attempted bool

	CookiesApplied int
	CookiesErr     error

	LocalApplied int
	LocalErr     error

	SessionApplied int
	SessionErr     error
}

// Degraded reports whether any step failed, fully or partially.
func (r ApplyReport) Degraded() bool {
	return r.CookiesErr != nil || r.LocalErr != nil || r.SessionErr != nil
}

// Applicator seeds a fresh browser context with a captured session.
type Applicator struct {
	browser core.BrowserPort
	logger  *zap.Logger
}

// NewApplicator creates a new session applicator
func NewApplicator(browser core.BrowserPort, logger *zap.Logger) *Applicator {
	return &Applicator{browser: browser, logger: logger}
}

// Apply runs the three sub-steps: cookies, localStorage, sessionStorage.
// Absent data is a "nothing to apply" notice, not an error. The report's
// Attempted flag is set once all three steps have been tried.
func (a *Applicator) Apply(ctx context.Context, rec *core.SessionRecord) ApplyReport {
	var report ApplyReport

	if rec.IsEmpty() {
		a.logger.Info("No session data to apply")
		report.Attempted = true
		return report
	}

	a.logger.Info("Applying stored session data...")

	if len(rec.Cookies) > 0 {
		if err := a.browser.SetCookies(ctx, rec.Cookies); err != nil {
			report.CookiesErr = err
			a.logger.Warn("Failed to apply cookies", zap.Error(err))
		} else {
			report.CookiesApplied = len(rec.Cookies)
			a.logger.Info("Applied cookies", zap.Int("count", report.CookiesApplied))
		}
	}

	report.LocalApplied, report.LocalErr = a.applyStorage(ctx, core.LocalStorage, rec.LocalStorage)
	report.SessionApplied, report.SessionErr = a.applyStorage(ctx, core.SessionStorage, rec.SessionStorage)

	report.Attempted = true
	return report
}

// applyStorage writes each pair individually so one malformed entry only
// costs itself.
func (a *Applicator) applyStorage(ctx context.Context, area core.StorageArea, items map[string]string) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	applied := 0
	var firstErr error
	for key, value := range items {
		if err := a.browser.SetStorageItem(ctx, area, key, value); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			a.logger.Warn("Failed to apply storage item",
				zap.String("area", string(area)),
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		applied++
	}

	if applied > 0 {
		a.logger.Info("Applied storage items",
			zap.String("area", string(area)),
			zap.Int("count", applied),
		)
	}

	return applied, firstErr
}
