package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Run roles recorded in history entries.
const (
	RunRoleInject = "Inject"
	RunRoleLaunch = "Launch"
)

// Run outcomes recorded in history entries.
const (
	RunOutcomeCaptured = "Captured"
	RunOutcomeClosed   = "Closed"
	RunOutcomeFailed   = "Failed"
	RunOutcomeLaunched = "Launched"
)

// CallingCode is a numeric phone prefix ("44", "1"). Payloads carry it either
// as a JSON string or as a bare number, so it unmarshals from both.
type CallingCode string

// UnmarshalJSON accepts both "44" and 44.
func (c *CallingCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CallingCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("country code must be a string or number: %s", string(data))
	}
	*c = CallingCode(n.String())
	return nil
}

// WithPlus returns the code in "+44" display form.
func (c CallingCode) WithPlus() string {
	return "+" + c.Digits()
}

// Digits returns the code without any "+" prefix.
func (c CallingCode) Digits() string {
	return strings.TrimPrefix(string(c), "+")
}

// ProxyConfig is an upstream proxy the browser should route through.
type ProxyConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// FingerprintScreen describes the emulated screen geometry.
type FingerprintScreen struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	AvailWidth       int     `json:"availWidth"`
	AvailHeight      int     `json:"availHeight"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

// FingerprintNavigator describes the navigator surface exposed to the page.
type FingerprintNavigator struct {
	UserAgent      string `json:"userAgent"`
	Platform       string `json:"platform"`
	MaxTouchPoints int    `json:"maxTouchPoints"`
}

// FingerprintMobile carries mobile capability flags.
type FingerprintMobile struct {
	IsMobile bool `json:"isMobile"`
}

// Fingerprint is an opaque device description supplied with a lead. All
// sub-sections are optional; the adapter fills in defaults.
type Fingerprint struct {
	DeviceID   string               `json:"deviceId"`
	DeviceType string               `json:"deviceType"`
	Screen     FingerprintScreen    `json:"screen"`
	Navigator  FingerprintNavigator `json:"navigator"`
	Mobile     FingerprintMobile    `json:"mobile"`
}

// LeadRecord is the lead handed to the injector. Immutable for the process
// lifetime once parsed.
type LeadRecord struct {
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Country     string       `json:"country"`
	CountryCode CallingCode  `json:"country_code"`
	Fingerprint *Fingerprint `json:"fingerprint,omitempty"`
	Proxy       *ProxyConfig `json:"proxy,omitempty"`
}

// InjectionPayload is the injector's sole CLI argument, decoded.
type InjectionPayload struct {
	LeadID    string `json:"leadId"`
	TargetURL string `json:"targetUrl"`
	LeadRecord
}

// Cookie is one browser cookie in the captured session. The shape matches
// what the engine reports so a record round-trips without loss.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Viewport is the inner window size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SessionRecord is the serializable bundle captured by the injector after a
// cross-domain redirect and re-applied by the launcher. Created once,
// consumed once, never mutated.
type SessionRecord struct {
	Cookies        []Cookie          `json:"cookies"`
	LocalStorage   map[string]string `json:"localStorage"`
	SessionStorage map[string]string `json:"sessionStorage"`
	UserAgent      string            `json:"userAgent"`
	Viewport       *Viewport         `json:"viewport,omitempty"`
	FinalDomain    string            `json:"finalDomain"`
	CapturedAt     float64           `json:"capturedAt"`
}

// IsEmpty reports whether the record carries nothing worth applying.
func (s *SessionRecord) IsEmpty() bool {
	return s == nil ||
		(len(s.Cookies) == 0 && len(s.LocalStorage) == 0 && len(s.SessionStorage) == 0)
}

// LaunchBundle is the launcher's sole CLI argument, decoded: the lead plus
// the session captured for it, correlated by leadId.
type LaunchBundle struct {
	LeadID      string         `json:"leadId"`
	LeadInfo    LeadRecord     `json:"leadInfo"`
	SessionData *SessionRecord `json:"sessionData"`
}

// CapturedSession is the marker-line payload emitted on stdout for the
// calling process to parse out of the log stream.
type CapturedSession struct {
	LeadID      string         `json:"leadId"`
	SessionData *SessionRecord `json:"sessionData"`
}

// SessionArchive is a captured session persisted to the local database,
// keyed by lead.
type SessionArchive struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LeadID     string    `gorm:"uniqueIndex;not null" json:"lead_id"`
	Domain     string    `gorm:"index" json:"domain"`
	Payload    string    `gorm:"type:text;not null" json:"payload"` // SessionRecord as JSON
	CapturedAt time.Time `gorm:"index;not null" json:"captured_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RunHistory is one injector or launcher invocation and how it ended.
type RunHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeadID    string    `gorm:"index" json:"lead_id"`
	Role      string    `gorm:"index;not null" json:"role"`    // Inject, Launch
	Outcome   string    `gorm:"index;not null" json:"outcome"` // Captured, Closed, Failed, Launched
	Details   string    `gorm:"type:text" json:"details"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}
