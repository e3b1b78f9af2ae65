package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"lead-automation/internal/core"
)

// Load loads configuration from an optional YAML file and environment
// variables. Every setting has a default, so a missing config file is fine.
func Load(configPath string) (*core.Config, error) {
	cfg := &core.Config{}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LEADBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults and env vars only.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Landing-page form selectors
	v.SetDefault("selectors.form_container", "#landingForm")
	v.SetDefault("selectors.first_name_input", "#firstName")
	v.SetDefault("selectors.last_name_input", "#lastName")
	v.SetDefault("selectors.email_input", "#email")
	v.SetDefault("selectors.phone_input", "#phone")
	v.SetDefault("selectors.prefix_dropdown", "#prefix")
	v.SetDefault("selectors.prefix_option_format", `[data-testid="prefix-option-%s"]`)
	v.SetDefault("selectors.dropdown_option", `[role="option"]`)

	// Waits and polling intervals
	v.SetDefault("timing.form_wait_seconds", 15)
	v.SetDefault("timing.field_wait_seconds", 10)
	v.SetDefault("timing.option_wait_seconds", 5)
	v.SetDefault("timing.nav_timeout_seconds", 30)
	v.SetDefault("timing.nav_retries", 3)
	v.SetDefault("timing.nav_retry_delay_seconds", 2)
	v.SetDefault("timing.monitor_poll_seconds", 1)
	v.SetDefault("timing.monitor_settle_seconds", 2)
	v.SetDefault("timing.close_poll_seconds", 2)
	v.SetDefault("timing.probe_settle_seconds", 3)

	// Human-like typing
	v.SetDefault("typing.key_delay_min_ms", 50)
	v.SetDefault("typing.key_delay_max_ms", 150)

	// Debug screenshots
	v.SetDefault("screenshots.enabled", true)
	v.SetDefault("screenshots.dir", "screenshots")

	// Injection browser (mobile form factor)
	v.SetDefault("injection.default_target_url", "https://ftd-copy.vercel.app/landing")
	v.SetDefault("injection.window_width", 428)
	v.SetDefault("injection.window_height", 926)

	// Agent replay browser
	v.SetDefault("replay.default_width", 1280)
	v.SetDefault("replay.default_height", 720)
	v.SetDefault("replay.fallback_url", "https://google.com")

	// Session archive
	v.SetDefault("database.path", "data/sessions.db")
}

// validateConfig validates that required configuration fields are set
func validateConfig(cfg *core.Config) error {
	if cfg.Selectors.FormContainer == "" {
		return fmt.Errorf("selectors.form_container is required")
	}
	if cfg.Timing.NavRetries < 1 {
		return fmt.Errorf("timing.nav_retries must be at least 1")
	}
	if cfg.Typing.KeyDelayMinMs < 0 || cfg.Typing.KeyDelayMaxMs < cfg.Typing.KeyDelayMinMs {
		return fmt.Errorf("typing key delay bounds are invalid (min=%d max=%d)",
			cfg.Typing.KeyDelayMinMs, cfg.Typing.KeyDelayMaxMs)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}
