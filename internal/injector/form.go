package injector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/poll"
	"lead-automation/internal/stealth"
)

// FormFiller populates the landing-page form with lead data in a way that
// imitates manual entry.
type FormFiller struct {
	browser core.BrowserPort
	cfg     *core.Config
	jitter  *stealth.Jitter
	logger  *zap.Logger
}

// NewFormFiller creates a new form filler
func NewFormFiller(browser core.BrowserPort, cfg *core.Config, logger *zap.Logger) *FormFiller {
	return &FormFiller{
		browser: browser,
		cfg:     cfg,
		jitter:  stealth.NewJitter(),
		logger:  logger,
	}
}

// OptionSelector renders the exact-match selector for a calling-code
// dropdown option, e.g. [data-testid="prefix-option-44"].
func OptionSelector(format string, code core.CallingCode) string {
	return fmt.Sprintf(format, code.Digits())
}

// Fill populates all form fields. A missing form container or a failed
// field entry aborts with an error so the caller can fall back to manual
// entry; an unresolved country code only logs.
func (f *FormFiller) Fill(ctx context.Context, lead *core.LeadRecord) error {
	sel := f.cfg.Selectors

	if err := f.browser.WaitForElement(ctx, sel.FormContainer, f.cfg.Timing.FormWait()); err != nil {
		return fmt.Errorf("form container %s not found: %w", sel.FormContainer, err)
	}
	// Let the form stabilize before touching fields.
	poll.Sleep(ctx, f.cfg.Timing.FieldWait()/10)

	f.logger.Info("Filling First Name", zap.String("value", lead.FirstName))
	if err := f.browser.HumanType(ctx, sel.FirstNameInput, lead.FirstName); err != nil {
		return fmt.Errorf("failed to fill first name: %w", err)
	}

	f.logger.Info("Filling Last Name", zap.String("value", lead.LastName))
	if err := f.browser.HumanType(ctx, sel.LastNameInput, lead.LastName); err != nil {
		return fmt.Errorf("failed to fill last name: %w", err)
	}

	f.logger.Info("Filling Email", zap.String("value", lead.Email))
	if err := f.browser.HumanType(ctx, sel.EmailInput, lead.Email); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}

	code := lead.CountryCode
	if code == "" {
		code = "1"
	}
	if !f.selectCountryCode(ctx, code) {
		f.logger.Warn("Could not select country code, continuing with remaining fields",
			zap.String("code", code.WithPlus()))
	}

	f.logger.Info("Filling Phone", zap.String("value", lead.Phone))
	if err := f.browser.HumanType(ctx, sel.PhoneInput, lead.Phone); err != nil {
		return fmt.Errorf("failed to fill phone: %w", err)
	}

	f.logger.Info("Form auto-fill completed")
	return nil
}

// selectCountryCode opens the prefix dropdown and clicks the option for the
// calling code: first by its exact option key, then by scanning visible
// option labels for the "+NN" substring.
func (f *FormFiller) selectCountryCode(ctx context.Context, code core.CallingCode) bool {
	sel := f.cfg.Selectors
	f.logger.Info("Selecting country code", zap.String("code", code.WithPlus()))

	if err := f.browser.HumanClick(ctx, sel.PrefixDropdown); err != nil {
		f.logger.Warn("Failed to open country code dropdown", zap.Error(err))
		return false
	}

	// Give the dropdown a moment to open.
	f.jitter.RandomSleepRange(ctx, 0.4, 0.7)

	exact := OptionSelector(sel.PrefixOptionFormat, code)
	if err := f.browser.WaitForElement(ctx, exact, f.cfg.Timing.OptionWait()); err == nil {
		if err := f.browser.HumanClick(ctx, exact); err == nil {
			f.logger.Info("Selected country code", zap.String("code", code.WithPlus()))
			return true
		}
		f.logger.Warn("Failed to click exact country code option", zap.String("selector", exact))
	}

	f.logger.Warn("Exact option not found, scanning visible options",
		zap.String("selector", exact))

	matched, err := f.browser.ClickOptionByText(ctx, sel.DropdownOption, code.WithPlus())
	if err != nil {
		f.logger.Warn("Failed scanning dropdown options", zap.Error(err))
		return false
	}
	if !matched {
		f.logger.Error("Could not select country code", zap.String("code", code.WithPlus()))
		return false
	}

	f.logger.Info("Selected country code by label scan", zap.String("code", code.WithPlus()))
	return true
}
