// Package browser wraps a headless Chrome session behind the narrow
// page-render surface the scrapers need: navigate, wait, read visible
// text, and capture diagnostics. One Browser owns one Chrome instance;
// a scraping job owns one Browser.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/leadharvest/leadharvest/internal/logger"
)

// Renderer is the page-render capability the scrapers depend on. A
// navigation failure is an error; a page that loaded but holds nothing
// useful is not.
type Renderer interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	VisibleText(ctx context.Context, selector string) (string, error)
	Title(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	// ClickAny tries each selector in order and reports whether one
	// matched and was clicked. Used for consent banners.
	ClickAny(ctx context.Context, selectors []string) bool
	// Snapshot saves a screenshot and the page HTML under dir,
	// best-effort. It never fails the caller.
	Snapshot(ctx context.Context, dir, label string)
}

// Config holds browser settings.
type Config struct {
	UserAgent string
	// NavTimeout bounds a full page navigation.
	NavTimeout time.Duration
	// ActionTimeout bounds small reads (title, text, url).
	ActionTimeout time.Duration
	Headless      bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		NavTimeout:    45 * time.Second,
		ActionTimeout: 15 * time.Second,
		Headless:      true,
	}
}

// Browser drives one headless Chrome instance.
type Browser struct {
	config      Config
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// New starts a Chrome instance with anti-automation-detection flags.
// Failure here is fatal for the job; there is no degraded mode without a
// browser.
func New(cfg Config) (*Browser, error) {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.NavTimeout == 0 {
		cfg.NavTimeout = def.NavTimeout
	}
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = def.ActionTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("lang", "fr-FR,fr"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Run an empty action list so a missing or broken Chrome surfaces
	// now instead of on the first URL.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	logger.Debug("browser started", "headless", cfg.Headless, "user_agent", cfg.UserAgent)
	return &Browser{
		config:      cfg,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// run executes actions against the browser tab, bounded by timeout and
// cut short if the caller's ctx ends first.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the document body to appear.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	err := b.run(ctx, b.config.NavTimeout,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitVisible waits until selector is visible, up to timeout.
func (b *Browser) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return b.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// VisibleText returns the rendered text of the first element matching
// selector, newlines preserved. A missing element yields empty text, not
// an error.
func (b *Browser) VisibleText(ctx context.Context, selector string) (string, error) {
	var text string
	expr := fmt.Sprintf(`(document.querySelector(%q) || {}).innerText || ""`, selector)
	if err := b.run(ctx, b.config.ActionTimeout, chromedp.Evaluate(expr, &text)); err != nil {
		return "", err
	}
	return text, nil
}

// Title returns the current document title.
func (b *Browser) Title(ctx context.Context) (string, error) {
	var title string
	if err := b.run(ctx, b.config.ActionTimeout, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// HTML returns the full serialized document.
func (b *Browser) HTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, b.config.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// CurrentURL returns the resolved location after redirects.
func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := b.run(ctx, b.config.ActionTimeout, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// ClickAny tries each selector with a short wait and clicks the first
// one that is present and visible.
func (b *Browser) ClickAny(ctx context.Context, selectors []string) bool {
	for _, sel := range selectors {
		err := b.run(ctx, 3*time.Second,
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Click(sel, chromedp.ByQuery),
		)
		if err == nil {
			logger.Debug("clicked element", "selector", sel)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

// Snapshot writes <label>.png and <label>.html under dir for debugging.
// Every step is best-effort; failures are logged and swallowed.
func (b *Browser) Snapshot(ctx context.Context, dir, label string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("snapshot dir creation failed", "dir", dir, "error", err)
		return
	}

	var shot []byte
	if err := b.run(ctx, b.config.ActionTimeout, chromedp.CaptureScreenshot(&shot)); err != nil {
		logger.Warn("screenshot capture failed", "label", label, "error", err)
	} else if err := os.WriteFile(filepath.Join(dir, label+".png"), shot, 0o644); err != nil {
		logger.Warn("screenshot write failed", "label", label, "error", err)
	}

	var html string
	if err := b.run(ctx, b.config.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		logger.Warn("page source capture failed", "label", label, "error", err)
	} else if err := os.WriteFile(filepath.Join(dir, label+".html"), []byte(html), 0o644); err != nil {
		logger.Warn("page source write failed", "label", label, "error", err)
	}
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	b.tabCancel()
	b.allocCancel()
	return nil
}
