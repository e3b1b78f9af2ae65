package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	rodstealth "github.com/go-rod/stealth"
	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/stealth"
)

// Instance wraps a Rod browser and its single page. It implements
// core.BrowserPort. Each process owns exactly one Instance and closes it on
// every exit path.
type Instance struct {
	browser  *rod.Browser
	page     *rod.Page
	opts     *Options
	keyboard *stealth.Keyboard
	jitter   *stealth.Jitter
	mouse    *stealth.Mouse
	logger   *zap.Logger
	mouseX   float64
	mouseY   float64

	fieldWait time.Duration
}

// NewInstance creates a new browser instance. Nothing is launched until
// Initialize.
func NewInstance(opts *Options, typing core.TypingConfig, fieldWait time.Duration, logger *zap.Logger) *Instance {
	return &Instance{
		opts:      opts,
		keyboard:  stealth.NewKeyboard(typing.KeyDelayMinMs, typing.KeyDelayMaxMs),
		jitter:    stealth.NewJitter(),
		mouse:     stealth.NewMouse(),
		logger:    logger,
		fieldWait: fieldWait,
	}
}

// Initialize launches the browser with the configured flags, connects, opens
// a stealth page and applies device emulation or session overrides.
func (b *Instance) Initialize(ctx context.Context) error {
	l := launcher.New().Headless(b.opts.Headless)

	for _, f := range hardeningFlags {
		l = setFlag(l, f)
	}
	if b.opts.Headless {
		for _, f := range headlessExtraFlags {
			l = setFlag(l, f)
		}
	}
	l = l.Set("window-size", fmt.Sprintf("%d,%d", b.opts.WindowWidth, b.opts.WindowHeight))

	if b.opts.Proxy != nil && b.opts.Proxy.Server != "" {
		l = l.Proxy(b.opts.Proxy.Server)
	}

	if browserPath, has := launcher.LookPath(); has {
		l = l.Bin(browserPath)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b.browser = rod.New().ControlURL(browserURL)
	if err := b.browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	if b.opts.Proxy != nil && b.opts.Proxy.Username != "" {
		if err := b.browser.IgnoreCertErrors(true); err != nil {
			b.logger.Debug("Failed to ignore cert errors for proxy", zap.Error(err))
		}
		go func() {
			if err := b.browser.HandleAuth(b.opts.Proxy.Username, b.opts.Proxy.Password)(); err != nil {
				b.logger.Debug("Proxy auth handler finished", zap.Error(err))
			}
		}()
	}

	b.page, err = rodstealth.Page(b.browser)
	if err != nil {
		return fmt.Errorf("failed to create stealth page: %w", err)
	}

	if err := b.applyEmulation(); err != nil {
		return fmt.Errorf("failed to apply device emulation: %w", err)
	}

	b.mouseX = float64(b.opts.WindowWidth) / 2
	b.mouseY = float64(b.opts.WindowHeight) / 2

	b.logger.Info("Browser initialized",
		zap.Bool("headless", b.opts.Headless),
		zap.Int("width", b.opts.WindowWidth),
		zap.Int("height", b.opts.WindowHeight),
	)

	return nil
}

// setFlag applies one chromium switch, appending duplicates rather than
// overwriting so repeated flags like disable-features survive.
func setFlag(l *launcher.Launcher, f launchFlag) *launcher.Launcher {
	name := flags.Flag(f.name)
	if f.value == "" {
		return l.Set(name)
	}
	return l.Append(name, f.value)
}

// applyEmulation configures device metrics, touch and user agent from the
// device profile (injection) or the session overrides (replay).
func (b *Instance) applyEmulation() error {
	if d := b.opts.Device; d != nil {
		err := b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             d.ViewportWidth,
			Height:            d.ViewportHeight,
			DeviceScaleFactor: d.ScaleFactor,
			Mobile:            d.Mobile,
		})
		if err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}

		if d.Touch {
			maxTouchPoints := 5
			err := proto.EmulationSetTouchEmulationEnabled{
				Enabled:        true,
				MaxTouchPoints: &maxTouchPoints,
			}.Call(b.page)
			if err != nil {
				return fmt.Errorf("enable touch emulation: %w", err)
			}
		}

		if d.UserAgent != "" {
			if err := b.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: d.UserAgent}); err != nil {
				return fmt.Errorf("set user agent: %w", err)
			}
		}
		return nil
	}

	if v := b.opts.Viewport; v != nil {
		err := b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             v.Width,
			Height:            v.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
	}
	if b.opts.UserAgent != "" {
		if err := b.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}
	return nil
}

// Navigate navigates the page and waits for DOM content.
func (b *Instance) Navigate(ctx context.Context, url string) error {
	if b.page == nil {
		return fmt.Errorf("browser not initialized")
	}

	page := b.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitDOMStable(300*time.Millisecond, 0); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}

	return nil
}

// CurrentURL returns the current page URL.
func (b *Instance) CurrentURL(ctx context.Context) (string, error) {
	if b.page == nil {
		return "", fmt.Errorf("browser not initialized")
	}

	info, err := b.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to get page info: %w", err)
	}

	return info.URL, nil
}

// WaitForElement waits for an element to appear with timeout.
func (b *Instance) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if b.page == nil {
		return fmt.Errorf("browser not initialized")
	}

	_, err := b.page.Context(ctx).Timeout(timeout).Element(selector)
	return err
}

// HumanClick clicks an element with curved mouse movement. Movement and the
// press/release sequence are dispatched over CDP so the page sees trusted
// input events.
func (b *Instance) HumanClick(ctx context.Context, selector string) error {
	if b.page == nil {
		return fmt.Errorf("browser not initialized")
	}

	if _, err := b.page.Timeout(b.fieldWait).Element(selector); err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	elem, err := b.page.Element(selector)
	if err != nil {
		return fmt.Errorf("failed to get element: %w", err)
	}

	centerX, centerY, err := b.elementCenter(elem)
	if err != nil {
		return err
	}

	for _, p := range b.mouse.Path(b.mouseX, b.mouseY, centerX, centerY) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := proto.InputDispatchMouseEvent{
			Type: proto.InputDispatchMouseEventTypeMouseMoved,
			X:    p.X,
			Y:    p.Y,
		}.Call(b.page)
		if err != nil {
			b.logger.Debug("Failed to move mouse", zap.Error(err))
		}

		time.Sleep(time.Duration(rand.Intn(11)+5) * time.Millisecond)
	}

	b.mouseX = centerX
	b.mouseY = centerY

	b.jitter.RandomSleepRange(ctx, 0.1, 0.2)

	err = proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMousePressed,
		X:          centerX,
		Y:          centerY,
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	}.Call(b.page)
	if err != nil {
		return fmt.Errorf("failed to mouse down: %w", err)
	}

	time.Sleep(time.Duration(rand.Intn(50)+50) * time.Millisecond)

	err = proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMouseReleased,
		X:          centerX,
		Y:          centerY,
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	}.Call(b.page)
	if err != nil {
		return fmt.Errorf("failed to mouse up: %w", err)
	}

	return nil
}

// elementCenter reads an element's viewport center via its bounding rect.
func (b *Instance) elementCenter(elem *rod.Element) (float64, float64, error) {
	boxResult, err := elem.Eval(`() => {
	const rect = this.getBoundingClientRect();
	return {
		x: rect.left + rect.width / 2,
		y: rect.top + rect.height / 2
	};
}`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get element position: %w", err)
	}

	var box struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	boxJSON, err := boxResult.Value.MarshalJSON()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to marshal element position: %w", err)
	}
	if err := json.Unmarshal(boxJSON, &box); err != nil {
		return 0, 0, fmt.Errorf("failed to parse element position: %w", err)
	}

	return box.X, box.Y, nil
}

// HumanType clicks to focus, clears existing content, then types rune by
// rune with randomized inter-keystroke delays.
func (b *Instance) HumanType(ctx context.Context, selector string, text string) error {
	if b.page == nil {
		return fmt.Errorf("browser not initialized")
	}

	if _, err := b.page.Timeout(b.fieldWait).Element(selector); err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	elem, err := b.page.Element(selector)
	if err != nil {
		return fmt.Errorf("failed to get element: %w", err)
	}

	if err := b.HumanClick(ctx, selector); err != nil {
		return fmt.Errorf("failed to click element: %w", err)
	}

	// Clear any existing content before typing.
	_, err = elem.Eval(`() => {
	this.value = '';
	this.dispatchEvent(new Event('input', { bubbles: true }));
}`)
	if err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}

	actions, err := b.keyboard.TypingActions(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate typing actions: %w", err)
	}

	for _, action := range actions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if action.Type == stealth.ActionTypeKey {
			if err := elem.Input(action.Key); err != nil {
				return fmt.Errorf("failed to input key: %w", err)
			}
		}

		if action.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(action.Delay):
			}
		}
	}

	return nil
}

// ClickOptionByText scans all elements matching selector for one whose
// visible text contains substr and clicks it via JS.
func (b *Instance) ClickOptionByText(ctx context.Context, selector string, substr string) (bool, error) {
	if b.page == nil {
		return false, fmt.Errorf("browser not initialized")
	}

	elems, err := b.page.Elements(selector)
	if err != nil {
		return false, fmt.Errorf("failed to get elements: %w", err)
	}

	for _, elem := range elems {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		text, err := elem.Text()
		if err != nil {
			continue
		}
		if !strings.Contains(text, substr) {
			continue
		}

		if _, err := elem.Eval(`() => this.click()`); err != nil {
			return false, fmt.Errorf("failed to click option: %w", err)
		}
		return true, nil
	}

	return false, nil
}

// EvalScript executes a JavaScript function expression on the page.
func (b *Instance) EvalScript(ctx context.Context, script string) error {
	if b.page == nil {
		return fmt.Errorf("browser not initialized")
	}

	if _, err := b.page.Context(ctx).Eval(script); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

// Cookies returns all cookies visible to the browser context.
func (b *Instance) Cookies(ctx context.Context) ([]core.Cookie, error) {
	if b.browser == nil {
		return nil, fmt.Errorf("browser not initialized")
	}

	raw, err := b.browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	cookies := make([]core.Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, core.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	return cookies, nil
}

// SetCookies adds cookies to the browser context.
func (b *Instance) SetCookies(ctx context.Context, cookies []core.Cookie) error {
	if b.browser == nil {
		return fmt.Errorf("browser not initialized")
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		if c.SameSite != "" {
			p.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		params = append(params, p)
	}

	if err := b.browser.SetCookies(params); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// StorageSnapshot reads the complete key/value contents of a storage area.
func (b *Instance) StorageSnapshot(ctx context.Context, area core.StorageArea) (map[string]string, error) {
	if b.page == nil {
		return nil, fmt.Errorf("browser not initialized")
	}

	res, err := b.page.Context(ctx).Eval(fmt.Sprintf(`() => ({ ...window.%s })`, area))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", area, err)
	}

	data, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s snapshot: %w", area, err)
	}

	snapshot := map[string]string{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse %s snapshot: %w", area, err)
	}

	return snapshot, nil
}

// SetStorageItem writes one key/value pair into a storage area. The pair is
// passed as arguments, not spliced into the script.
func (b *Instance) SetStorageItem(ctx context.Context, area core.StorageArea, key, value string) error {
	if b.page == nil {
		return fmt.Errorf("browser not initialized")
	}

	_, err := b.page.Context(ctx).Eval(
		`(area, key, value) => { window[area].setItem(key, value); }`,
		string(area), key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s item %q: %w", area, key, err)
	}
	return nil
}

// UserAgent returns the negotiated user agent string.
func (b *Instance) UserAgent(ctx context.Context) (string, error) {
	if b.page == nil {
		return "", fmt.Errorf("browser not initialized")
	}

	res, err := b.page.Context(ctx).Eval(`() => navigator.userAgent`)
	if err != nil {
		return "", fmt.Errorf("failed to read user agent: %w", err)
	}
	return res.Value.Str(), nil
}

// ViewportSize returns the inner window size.
func (b *Instance) ViewportSize(ctx context.Context) (core.Viewport, error) {
	if b.page == nil {
		return core.Viewport{}, fmt.Errorf("browser not initialized")
	}

	res, err := b.page.Context(ctx).Eval(`() => ({ width: window.innerWidth, height: window.innerHeight })`)
	if err != nil {
		return core.Viewport{}, fmt.Errorf("failed to read viewport: %w", err)
	}

	data, err := res.Value.MarshalJSON()
	if err != nil {
		return core.Viewport{}, fmt.Errorf("failed to marshal viewport: %w", err)
	}

	var v core.Viewport
	if err := json.Unmarshal(data, &v); err != nil {
		return core.Viewport{}, fmt.Errorf("failed to parse viewport: %w", err)
	}

	return v, nil
}

// Screenshot writes a debug screenshot named by stage and timestamp.
// Purely diagnostic: failures are logged and never abort the flow.
func (b *Instance) Screenshot(ctx context.Context, stage string) {
	if b.page == nil || !b.opts.Screenshots.Enabled {
		return
	}

	if err := os.MkdirAll(b.opts.Screenshots.Dir, 0755); err != nil {
		b.logger.Warn("Could not create screenshots directory", zap.Error(err))
		return
	}

	data, err := b.page.Screenshot(false, nil)
	if err != nil {
		b.logger.Warn("Could not take screenshot", zap.String("stage", stage), zap.Error(err))
		return
	}

	path := filepath.Join(b.opts.Screenshots.Dir, fmt.Sprintf("%s_%d.png", stage, time.Now().Unix()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		b.logger.Warn("Could not write screenshot", zap.String("path", path), zap.Error(err))
		return
	}

	b.logger.Info("Screenshot saved", zap.String("path", path))
}

// Close closes the browser instance.
func (b *Instance) Close(ctx context.Context) error {
	if b.browser == nil {
		return nil
	}

	if err := b.browser.Close(); err != nil {
		if core.IsBrowserGone(err) {
			b.logger.Debug("Browser already gone on close", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to close browser: %w", err)
	}

	b.logger.Info("Browser closed")
	return nil
}

// RandomSleep sleeps for a random duration within the range, in seconds.
func (b *Instance) RandomSleep(ctx context.Context, minSeconds, maxSeconds float64) {
	b.jitter.RandomSleepRange(ctx, minSeconds, maxSeconds)
}
