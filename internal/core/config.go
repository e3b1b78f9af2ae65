package core

import "time"

// SelectorsConfig holds the CSS selectors for the landing-page form.
type SelectorsConfig struct {
	FormContainer      string `mapstructure:"form_container"`
	FirstNameInput     string `mapstructure:"first_name_input"`
	LastNameInput      string `mapstructure:"last_name_input"`
	EmailInput         string `mapstructure:"email_input"`
	PhoneInput         string `mapstructure:"phone_input"`
	PrefixDropdown     string `mapstructure:"prefix_dropdown"`
	PrefixOptionFormat string `mapstructure:"prefix_option_format"` // %s = calling code digits
	DropdownOption     string `mapstructure:"dropdown_option"`
}

// TimingConfig holds wait bounds and polling intervals, in seconds.
type TimingConfig struct {
	FormWaitSeconds      int `mapstructure:"form_wait_seconds"`
	FieldWaitSeconds     int `mapstructure:"field_wait_seconds"`
	OptionWaitSeconds    int `mapstructure:"option_wait_seconds"`
	NavTimeoutSeconds    int `mapstructure:"nav_timeout_seconds"`
	NavRetries           int `mapstructure:"nav_retries"`
	NavRetryDelaySeconds int `mapstructure:"nav_retry_delay_seconds"`
	MonitorPollSeconds   int `mapstructure:"monitor_poll_seconds"`
	MonitorSettleSeconds int `mapstructure:"monitor_settle_seconds"`
	ClosePollSeconds     int `mapstructure:"close_poll_seconds"`
	ProbeSettleSeconds   int `mapstructure:"probe_settle_seconds"`
}

// FormWait returns the bounded wait for the form container.
func (t TimingConfig) FormWait() time.Duration { return seconds(t.FormWaitSeconds) }

// FieldWait returns the bounded wait for a single form field.
func (t TimingConfig) FieldWait() time.Duration { return seconds(t.FieldWaitSeconds) }

// OptionWait returns the bounded wait for an exact dropdown option.
func (t TimingConfig) OptionWait() time.Duration { return seconds(t.OptionWaitSeconds) }

// NavTimeout returns the per-attempt navigation timeout.
func (t TimingConfig) NavTimeout() time.Duration { return seconds(t.NavTimeoutSeconds) }

// NavRetryDelay returns the delay between navigation attempts.
func (t TimingConfig) NavRetryDelay() time.Duration { return seconds(t.NavRetryDelaySeconds) }

// MonitorPoll returns the submission-monitor polling interval.
func (t TimingConfig) MonitorPoll() time.Duration { return seconds(t.MonitorPollSeconds) }

// MonitorSettle returns the post-change settle delay before comparing hosts.
func (t TimingConfig) MonitorSettle() time.Duration { return seconds(t.MonitorSettleSeconds) }

// ClosePoll returns the wait-for-manual-close polling interval.
func (t TimingConfig) ClosePoll() time.Duration { return seconds(t.ClosePollSeconds) }

// ProbeSettle returns the settle delay after the validity-probe navigation.
func (t TimingConfig) ProbeSettle() time.Duration { return seconds(t.ProbeSettleSeconds) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// TypingConfig bounds the randomized inter-keystroke delay.
type TypingConfig struct {
	KeyDelayMinMs int `mapstructure:"key_delay_min_ms"`
	KeyDelayMaxMs int `mapstructure:"key_delay_max_ms"`
}

// ScreenshotsConfig controls debug screenshots.
type ScreenshotsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// InjectionConfig holds injector-specific settings.
type InjectionConfig struct {
	DefaultTargetURL string `mapstructure:"default_target_url"`
	WindowWidth      int    `mapstructure:"window_width"`
	WindowHeight     int    `mapstructure:"window_height"`
}

// ReplayConfig holds launcher-specific settings.
type ReplayConfig struct {
	DefaultWidth  int    `mapstructure:"default_width"`
	DefaultHeight int    `mapstructure:"default_height"`
	FallbackURL   string `mapstructure:"fallback_url"`
}

// Config is the full application configuration.
type Config struct {
	Selectors   SelectorsConfig   `mapstructure:"selectors"`
	Timing      TimingConfig      `mapstructure:"timing"`
	Typing      TypingConfig      `mapstructure:"typing"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots"`
	Injection   InjectionConfig   `mapstructure:"injection"`
	Replay      ReplayConfig      `mapstructure:"replay"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
}
