// Package coretest provides in-memory fakes for the ports, used by the
// workflow tests.
package coretest

import (
	"context"
	"time"

	"lead-automation/internal/core"
)

// FakeBrowser implements core.BrowserPort. Behavior is overridable per method
// through the Fn fields; unset methods succeed with zero values. Calls are
// recorded so tests can assert on what the workflow did.
type FakeBrowser struct {
	InitializeErr error
	CloseErr      error

	NavigateFn          func(url string) error
	CurrentURLFn        func() (string, error)
	WaitForElementFn    func(selector string) error
	HumanClickFn        func(selector string) error
	HumanTypeFn         func(selector, text string) error
	ClickOptionByTextFn func(selector, substr string) (bool, error)
	EvalScriptFn        func(script string) error
	CookiesFn           func() ([]core.Cookie, error)
	SetCookiesFn        func(cookies []core.Cookie) error
	StorageSnapshotFn   func(area core.StorageArea) (map[string]string, error)
	SetStorageItemFn    func(area core.StorageArea, key, value string) error
	UserAgentFn         func() (string, error)
	ViewportSizeFn      func() (core.Viewport, error)

	Navigations []string
	Clicks      []string
	Typed       map[string]string
	OptionScans []string
	Scripts     []string
	CookiesSet  []core.Cookie
	StorageSet  map[core.StorageArea]map[string]string
	Screenshots []string
	Closed      bool
}

// NewFakeBrowser returns a FakeBrowser with recording maps initialized.
func NewFakeBrowser() *FakeBrowser {
	return &FakeBrowser{
		Typed: make(map[string]string),
		StorageSet: map[core.StorageArea]map[string]string{
			core.LocalStorage:   {},
			core.SessionStorage: {},
		},
	}
}

func (f *FakeBrowser) Initialize(ctx context.Context) error { return f.InitializeErr }

func (f *FakeBrowser) Navigate(ctx context.Context, url string) error {
	f.Navigations = append(f.Navigations, url)
	if f.NavigateFn != nil {
		return f.NavigateFn(url)
	}
	return nil
}

func (f *FakeBrowser) CurrentURL(ctx context.Context) (string, error) {
	if f.CurrentURLFn != nil {
		return f.CurrentURLFn()
	}
	return "", nil
}

func (f *FakeBrowser) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if f.WaitForElementFn != nil {
		return f.WaitForElementFn(selector)
	}
	return nil
}

func (f *FakeBrowser) HumanClick(ctx context.Context, selector string) error {
	f.Clicks = append(f.Clicks, selector)
	if f.HumanClickFn != nil {
		return f.HumanClickFn(selector)
	}
	return nil
}

func (f *FakeBrowser) HumanType(ctx context.Context, selector, text string) error {
	if f.HumanTypeFn != nil {
		if err := f.HumanTypeFn(selector, text); err != nil {
			return err
		}
	}
	f.Typed[selector] = text
	return nil
}

func (f *FakeBrowser) ClickOptionByText(ctx context.Context, selector, substr string) (bool, error) {
	f.OptionScans = append(f.OptionScans, substr)
	if f.ClickOptionByTextFn != nil {
		return f.ClickOptionByTextFn(selector, substr)
	}
	return true, nil
}

func (f *FakeBrowser) EvalScript(ctx context.Context, script string) error {
	f.Scripts = append(f.Scripts, script)
	if f.EvalScriptFn != nil {
		return f.EvalScriptFn(script)
	}
	return nil
}

func (f *FakeBrowser) Cookies(ctx context.Context) ([]core.Cookie, error) {
	if f.CookiesFn != nil {
		return f.CookiesFn()
	}
	return nil, nil
}

func (f *FakeBrowser) SetCookies(ctx context.Context, cookies []core.Cookie) error {
	if f.SetCookiesFn != nil {
		if err := f.SetCookiesFn(cookies); err != nil {
			return err
		}
	}
	f.CookiesSet = append(f.CookiesSet, cookies...)
	return nil
}

func (f *FakeBrowser) StorageSnapshot(ctx context.Context, area core.StorageArea) (map[string]string, error) {
	if f.StorageSnapshotFn != nil {
		return f.StorageSnapshotFn(area)
	}
	return nil, nil
}

func (f *FakeBrowser) SetStorageItem(ctx context.Context, area core.StorageArea, key, value string) error {
	if f.SetStorageItemFn != nil {
		if err := f.SetStorageItemFn(area, key, value); err != nil {
			return err
		}
	}
	f.StorageSet[area][key] = value
	return nil
}

func (f *FakeBrowser) UserAgent(ctx context.Context) (string, error) {
	if f.UserAgentFn != nil {
		return f.UserAgentFn()
	}
	return "", nil
}

func (f *FakeBrowser) ViewportSize(ctx context.Context) (core.Viewport, error) {
	if f.ViewportSizeFn != nil {
		return f.ViewportSizeFn()
	}
	return core.Viewport{}, nil
}

func (f *FakeBrowser) Screenshot(ctx context.Context, stage string) {
	f.Screenshots = append(f.Screenshots, stage)
}

func (f *FakeBrowser) Close(ctx context.Context) error {
	f.Closed = true
	return f.CloseErr
}

// FakeRepository implements core.RepositoryPort with in-memory maps.
type FakeRepository struct {
	SaveErr error
	GetErr  error

	Sessions map[string]*core.SessionRecord
	Runs     []core.RunHistory
}

// NewFakeRepository returns an empty in-memory repository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Sessions: make(map[string]*core.SessionRecord)}
}

func (f *FakeRepository) SaveSession(ctx context.Context, leadID string, rec *core.SessionRecord) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Sessions[leadID] = rec
	return nil
}

func (f *FakeRepository) GetSessionByLeadID(ctx context.Context, leadID string) (*core.SessionRecord, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.Sessions[leadID], nil
}

func (f *FakeRepository) LogRun(ctx context.Context, run *core.RunHistory) error {
	f.Runs = append(f.Runs, *run)
	return nil
}

func (f *FakeRepository) TodayRunCount(ctx context.Context, role string) (int64, error) {
	var n int64
	for _, r := range f.Runs {
		if r.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *FakeRepository) Migrate(ctx context.Context) error { return nil }

func (f *FakeRepository) Close() error { return nil }
