// Package injector implements the capture flow: fill a landing-page form
// with lead data, wait for the cross-domain redirect that signals
// submission, then capture and emit the authenticated session.
package injector

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/fingerprint"
	"lead-automation/internal/payload"
	"lead-automation/internal/poll"
)

// SessionDataMarker prefixes the stdout line carrying the captured session,
// so a calling process can parse it out of the log stream.
const SessionDataMarker = "SESSION_DATA:"

// Workflow orchestrates one injection run end to end.
type Workflow struct {
	browser  core.BrowserPort
	repo     core.RepositoryPort // may be nil: persistence is best-effort
	form     *FormFiller
	monitor  *Monitor
	capturer *Capturer
	cfg      *core.Config
	logger   *zap.Logger
	stdout   io.Writer
}

// NewWorkflow creates a new injection workflow. stdout receives the banners
// and the SESSION_DATA marker line.
func NewWorkflow(browser core.BrowserPort, repo core.RepositoryPort, cfg *core.Config, logger *zap.Logger, stdout io.Writer) *Workflow {
	return &Workflow{
		browser:  browser,
		repo:     repo,
		form:     NewFormFiller(browser, cfg, logger),
		monitor:  NewMonitor(cfg.Timing, logger),
		capturer: NewCapturer(browser, logger),
		cfg:      cfg,
		logger:   logger,
		stdout:   stdout,
	}
}

// Run drives the capture flow for one lead. The browser must already be
// initialized; the caller closes it.
func (w *Workflow) Run(ctx context.Context, p *core.InjectionPayload) error {
	targetURL := p.TargetURL
	if targetURL == "" {
		targetURL = w.cfg.Injection.DefaultTargetURL
	}
	w.logger.Info("Target URL", zap.String("url", targetURL))

	if err := w.navigateWithRetries(ctx, targetURL); err != nil {
		w.logRun(ctx, p.LeadID, core.RunOutcomeFailed, err.Error())
		return err
	}

	w.browser.Screenshot(ctx, "manual_injection_page_loaded")

	// Pin mobile rendering, then set the injection flag and navigator
	// overrides. All best effort.
	if err := w.browser.EvalScript(ctx, fingerprint.ViewportMetaScript); err != nil {
		w.logger.Debug("Could not inject viewport meta tag", zap.Error(err))
	}
	fingerprint.Apply(ctx, w.browser, p.Fingerprint, w.logger)

	if err := w.form.Fill(ctx, &p.LeadRecord); err != nil {
		w.logger.Warn("Auto-fill failed, continuing in manual mode", zap.Error(err))
		w.printManualFallback(&p.LeadRecord)

		if err := poll.WaitForClose(ctx, w.browser, w.cfg.Timing.ClosePoll(), w.logger); err != nil && err != context.Canceled {
			return err
		}
		w.logRun(ctx, p.LeadID, core.RunOutcomeClosed, "auto-fill failed, manual mode")
		return nil
	}

	w.browser.Screenshot(ctx, "manual_injection_auto_filled")
	w.printPostFillInstructions()

	result, err := w.monitor.Run(ctx, w.browser, func(ctx context.Context) error {
		return w.captureAndEmit(ctx, p.LeadID)
	})
	if err != nil {
		if err == context.Canceled {
			w.logger.Info("Manual injection interrupted by user")
			w.logRun(ctx, p.LeadID, core.RunOutcomeClosed, "interrupted")
			return nil
		}
		w.logRun(ctx, p.LeadID, core.RunOutcomeFailed, err.Error())
		return err
	}

	switch result {
	case MonitorCaptured:
		w.logger.Info("Session data captured and saved, you can now close the browser window")
		w.logRun(ctx, p.LeadID, core.RunOutcomeCaptured, "")
	case MonitorBrowserClosed:
		w.logRun(ctx, p.LeadID, core.RunOutcomeClosed, "browser closed before submission")
	}

	w.logger.Info("Manual injection session completed")
	return nil
}

// navigateWithRetries tries the target URL up to the configured attempt
// count with a fixed delay between attempts.
func (w *Workflow) navigateWithRetries(ctx context.Context, url string) error {
	attempts := w.cfg.Timing.NavRetries
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.browser.Navigate(ctx, url); err != nil {
			lastErr = err
			w.logger.Warn("Failed to navigate",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
			if attempt < attempts {
				poll.Sleep(ctx, w.cfg.Timing.NavRetryDelay())
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to navigate to target URL after %d attempts: %w", attempts, lastErr)
}

// captureAndEmit captures the session, writes the marker line to stdout and
// archives the record. Archiving is best-effort; emission is not.
func (w *Workflow) captureAndEmit(ctx context.Context, leadID string) error {
	rec, err := w.capturer.Capture(ctx)
	if err != nil {
		return err
	}

	encoded, err := payload.EncodeCapturedSession(leadID, rec)
	if err != nil {
		return err
	}
	fmt.Fprintln(w.stdout, SessionDataMarker+encoded)

	if w.repo != nil {
		if err := w.repo.SaveSession(ctx, leadID, rec); err != nil {
			w.logger.Warn("Failed to archive session locally", zap.Error(err))
		} else {
			w.logger.Info("Session archived", zap.String("lead_id", leadID))
		}
	}

	return nil
}

func (w *Workflow) logRun(ctx context.Context, leadID, outcome, details string) {
	if w.repo == nil {
		return
	}
	err := w.repo.LogRun(ctx, &core.RunHistory{
		LeadID:  leadID,
		Role:    core.RunRoleInject,
		Outcome: outcome,
		Details: details,
	})
	if err != nil {
		w.logger.Debug("Failed to record run history", zap.Error(err))
	}
}

func (w *Workflow) printPostFillInstructions() {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "FORM AUTO-FILL COMPLETED!")
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "INSTRUCTIONS:")
	fmt.Fprintln(w.stdout, "1. Review the auto-filled information above")
	fmt.Fprintln(w.stdout, "2. Make any necessary corrections manually")
	fmt.Fprintln(w.stdout, "3. Click the submit button to submit the form")
	fmt.Fprintln(w.stdout, "4. Wait for any redirects to complete")
	fmt.Fprintln(w.stdout, "5. The session will be automatically captured")
	fmt.Fprintln(w.stdout, "6. Close this browser window when done")
	fmt.Fprintln(w.stdout, line)
}

// printManualFallback prints the lead's data so a human can enter it by
// hand while the browser stays open.
func (w *Workflow) printManualFallback(lead *core.LeadRecord) {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "LEAD INFORMATION FOR MANUAL ENTRY (FALLBACK):")
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintf(w.stdout, "First Name: %s\n", lead.FirstName)
	fmt.Fprintf(w.stdout, "Last Name: %s\n", lead.LastName)
	fmt.Fprintf(w.stdout, "Email: %s\n", lead.Email)
	fmt.Fprintf(w.stdout, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(w.stdout, "Country: %s\n", lead.Country)
	fmt.Fprintf(w.stdout, "Country Code: %s\n", lead.CountryCode.WithPlus())
	fmt.Fprintln(w.stdout, line)
}
