package urlutil

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Netloc returns the host portion (including any port) of a URL, or "" when
// the URL cannot be parsed.
func Netloc(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// SameHost reports whether two URLs share the same network location.
func SameHost(a, b string) bool {
	return Netloc(a) == Netloc(b)
}

// DomainsRelated reports whether two hosts are considered the same site for
// session purposes. Containment runs in both directions so subdomain
// variation ("www." prefixes) is tolerated. Unrelated domains sharing a
// substring can slip through; callers treat the result as advisory.
func DomainsRelated(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return strings.Contains(actual, expected) || strings.Contains(expected, actual)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
