package core

import (
	"context"
	"time"
)

// StorageArea names one of the page's two string key/value stores.
type StorageArea string

const (
	LocalStorage   StorageArea = "localStorage"
	SessionStorage StorageArea = "sessionStorage"
)

// BrowserPort defines the browser operations the workflows depend on.
// Implemented by internal/browser; faked in tests.
type BrowserPort interface {
	// Initialize launches the browser and opens the single page.
	Initialize(ctx context.Context) error

	// Navigate navigates the page and waits for DOM content.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the page's current URL.
	CurrentURL(ctx context.Context) (string, error)

	// WaitForElement waits for an element to appear within timeout.
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) error

	// HumanClick clicks an element along a curved pointer path.
	HumanClick(ctx context.Context, selector string) error

	// HumanType clicks to focus, clears the field, then types rune by rune
	// with randomized inter-keystroke delays.
	HumanType(ctx context.Context, selector string, text string) error

	// ClickOptionByText scans elements matching selector for one whose text
	// contains substr and clicks it. Returns false when none matched.
	ClickOptionByText(ctx context.Context, selector string, substr string) (bool, error)

	// EvalScript runs a JavaScript function expression on the page.
	EvalScript(ctx context.Context, script string) error

	// Cookies returns all cookies visible to the browser context.
	Cookies(ctx context.Context) ([]Cookie, error)

	// SetCookies adds cookies to the browser context.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// StorageSnapshot reads the complete contents of a storage area.
	StorageSnapshot(ctx context.Context, area StorageArea) (map[string]string, error)

	// SetStorageItem writes one key/value pair into a storage area.
	SetStorageItem(ctx context.Context, area StorageArea, key, value string) error

	// UserAgent returns the negotiated user agent string.
	UserAgent(ctx context.Context) (string, error)

	// ViewportSize returns the inner window size.
	ViewportSize(ctx context.Context) (Viewport, error)

	// Screenshot writes a debug screenshot named by stage. Best effort.
	Screenshot(ctx context.Context, stage string)

	// Close closes the browser. Safe to call on every exit path.
	Close(ctx context.Context) error
}

// RepositoryPort defines the local session-archive persistence.
type RepositoryPort interface {
	SaveSession(ctx context.Context, leadID string, rec *SessionRecord) error
	GetSessionByLeadID(ctx context.Context, leadID string) (*SessionRecord, error)
	LogRun(ctx context.Context, run *RunHistory) error
	TodayRunCount(ctx context.Context, role string) (int64, error)
	Migrate(ctx context.Context) error
	Close() error
}
