// Package agent implements the replay flow: launch a browser pre-seeded
// with a previously captured session so a human agent can act as if already
// logged in.
package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/poll"
)

// Workflow orchestrates one agent-browser run.
type Workflow struct {
	browser    core.BrowserPort
	repo       core.RepositoryPort // may be nil
	applicator *Applicator
	prober     *Prober
	cfg        *core.Config
	logger     *zap.Logger
	stdout     io.Writer
}

// NewWorkflow creates a new agent browser workflow
func NewWorkflow(browser core.BrowserPort, repo core.RepositoryPort, cfg *core.Config, logger *zap.Logger, stdout io.Writer) *Workflow {
	return &Workflow{
		browser:    browser,
		repo:       repo,
		applicator: NewApplicator(browser, logger),
		prober:     NewProber(browser, cfg.Timing, logger),
		cfg:        cfg,
		logger:     logger,
		stdout:     stdout,
	}
}

// ResolveSession returns the session to replay: the bundle's own record, or
// the locally archived one when the bundle carries none.
func ResolveSession(ctx context.Context, bundle *core.LaunchBundle, repo core.RepositoryPort, logger *zap.Logger) *core.SessionRecord {
	if bundle.SessionData != nil {
		return bundle.SessionData
	}

	if repo == nil || bundle.LeadID == "" {
		return nil
	}

	rec, err := repo.GetSessionByLeadID(ctx, bundle.LeadID)
	if err != nil {
		logger.Warn("Failed to look up archived session", zap.Error(err))
		return nil
	}
	if rec != nil {
		logger.Info("Using locally archived session", zap.String("lead_id", bundle.LeadID))
	}
	return rec
}

// Run seeds the browser with the session, probes validity, then holds the
// browser open until the agent closes it. The browser must already be
// initialized; the caller closes it.
func (w *Workflow) Run(ctx context.Context, bundle *core.LaunchBundle, session *core.SessionRecord) error {
	w.printLeadBanner(&bundle.LeadInfo, session)

	applied := false
	if session != nil {
		report := w.applicator.Apply(ctx, session)
		applied = report.Attempted && !session.IsEmpty()
		if report.Degraded() {
			w.logger.Warn("Session applied with degraded steps",
				zap.Int("cookies", report.CookiesApplied),
				zap.Int("local_storage", report.LocalApplied),
				zap.Int("session_storage", report.SessionApplied),
			)
		}
	}

	if applied {
		w.logger.Info("Session data applied successfully")
		if w.prober.Probe(ctx, session.FinalDomain) {
			w.printSessionValidBanner()
		} else {
			w.printSessionWarningBanner()
		}
	} else {
		w.logger.Warn("No session data applied, opening blank browser")
		if err := w.browser.Navigate(ctx, w.cfg.Replay.FallbackURL); err != nil {
			w.logger.Warn("Failed to open fallback page", zap.Error(err))
		}
	}

	w.logRun(ctx, bundle.LeadID, core.RunOutcomeLaunched, "")

	w.logger.Info("Browser is ready for agent use, waiting for it to be closed...")
	if err := poll.WaitForClose(ctx, w.browser, w.cfg.Timing.ClosePoll(), w.logger); err != nil && err != context.Canceled {
		return err
	}

	w.logger.Info("Agent browser session completed")
	return nil
}

func (w *Workflow) logRun(ctx context.Context, leadID, outcome, details string) {
	if w.repo == nil {
		return
	}
	err := w.repo.LogRun(ctx, &core.RunHistory{
		LeadID:  leadID,
		Role:    core.RunRoleLaunch,
		Outcome: outcome,
		Details: details,
	})
	if err != nil {
		w.logger.Debug("Failed to record run history", zap.Error(err))
	}
}

func (w *Workflow) printLeadBanner(lead *core.LeadRecord, session *core.SessionRecord) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "AGENT BROWSER LAUNCHER")
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintf(w.stdout, "Lead: %s %s\n", lead.FirstName, lead.LastName)
	fmt.Fprintf(w.stdout, "Email: %s\n", lead.Email)
	fmt.Fprintf(w.stdout, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(w.stdout, "Country: %s\n", lead.Country)
	if session != nil && session.FinalDomain != "" {
		fmt.Fprintf(w.stdout, "Target Domain: %s\n", session.FinalDomain)
	}
	fmt.Fprintln(w.stdout, line)
}

func (w *Workflow) printSessionValidBanner() {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "SESSION TEST SUCCESSFUL!")
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "INSTRUCTIONS FOR AGENT:")
	fmt.Fprintln(w.stdout, "1. The browser has been opened with the stored session")
	fmt.Fprintln(w.stdout, "2. You should be automatically logged in to any sites")
	fmt.Fprintln(w.stdout, "3. You can navigate without re-entering passwords")
	fmt.Fprintln(w.stdout, "4. The session contains the same login state as the injection")
	fmt.Fprintln(w.stdout, "5. Close the browser when you're done")
	fmt.Fprintln(w.stdout, line)
}

func (w *Workflow) printSessionWarningBanner() {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "SESSION TEST WARNING!")
	fmt.Fprintln(w.stdout, line)
	fmt.Fprintln(w.stdout, "The session may have expired or be invalid.")
	fmt.Fprintln(w.stdout, "You can still use the browser, but may need to log in manually.")
	fmt.Fprintln(w.stdout, line)
}
