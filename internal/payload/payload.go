// Package payload decodes and validates the single JSON argument each
// process receives. Decoding happens before any browser is launched;
// malformed input is a fatal error.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"lead-automation/internal/core"
)

// ParseInjection decodes the injector's CLI argument.
func ParseInjection(raw string) (*core.InjectionPayload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty injection payload")
	}

	var p core.InjectionPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("invalid injection payload JSON: %w", err)
	}

	return &p, nil
}

// ParseLaunchBundle decodes the launcher's CLI argument.
func ParseLaunchBundle(raw string) (*core.LaunchBundle, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty launch bundle")
	}

	var b core.LaunchBundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, fmt.Errorf("invalid launch bundle JSON: %w", err)
	}

	return &b, nil
}

// EncodeCapturedSession renders the stdout marker payload.
func EncodeCapturedSession(leadID string, rec *core.SessionRecord) (string, error) {
	data, err := json.Marshal(core.CapturedSession{
		LeadID:      leadID,
		SessionData: rec,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode captured session: %w", err)
	}
	return string(data), nil
}
