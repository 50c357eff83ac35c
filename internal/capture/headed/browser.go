package headed

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"jobtrail-utils/internal/capture"
	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// Engine captures fully rendered page HTML with a headless Chrome
// instance. The browser is launched lazily on first use and shared
// between captures; each capture gets its own stealth page.
type Engine struct {
	cfg     *config.Config
	logger  logging.Logger
	mu      sync.Mutex
	browser *rod.Browser
}

// New creates a headed capture engine. The browser is not launched
// until the first Acquire call.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Engine returns the engine identifier
func (e *Engine) Engine() string {
	return "headed"
}

// Acquire navigates a stealth page to the URL and returns the rendered
// HTML.
func (e *Engine) Acquire(ctx context.Context, url string) (*capture.Page, error) {
	html, err := e.capturePage(ctx, url)
	if err != nil {
		return nil, err
	}

	return &capture.Page{
		Content: html,
		Engine:  e.Engine(),
		IsHTML:  true,
	}, nil
}

func (e *Engine) ensureBrowser() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil && browserHealthy(e.browser) {
		return e.browser, nil
	}

	l := launcher.New().
		Headless(e.cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := systemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
	}

	if e.cfg.Scraper.UserAgent != "" {
		l = l.Set("user-agent", e.cfg.Scraper.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	e.browser = browser
	e.logger.Info("Browser instance started", map[string]interface{}{
		"headless": e.cfg.Scraper.HeadlessMode,
	})
	return browser, nil
}

// capturePage renders the URL and returns its HTML
func (e *Engine) capturePage(ctx context.Context, url string) (string, error) {
	browser, err := e.ensureBrowser()
	if err != nil {
		return "", utils.NewUnavailableError(err.Error())
	}

	page, err := e.newStealthPage(browser)
	if err != nil {
		return "", utils.NewUnavailableError(err.Error())
	}
	defer func() {
		_ = rod.Try(func() { page.MustClose() })
	}()

	navCtx, cancel := context.WithTimeout(ctx, e.cfg.Scraper.RequestTimeout)
	defer cancel()

	err = rod.Try(func() {
		page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return "", utils.NewTimeoutError(fmt.Sprintf("navigation to %s timed out", url))
		}
		return "", utils.NewUnavailableError(fmt.Sprintf("failed to navigate to %s: %v", url, err))
	}

	// Give client-rendered boards a moment to paint the posting
	time.Sleep(500 * time.Millisecond)

	html, err := page.HTML()
	if err != nil {
		return "", utils.NewUnavailableError(fmt.Sprintf("failed to read page HTML: %v", err))
	}

	return html, nil
}

func (e *Engine) newStealthPage(browser *rod.Browser) (*rod.Page, error) {
	var page *rod.Page
	var err error

	if e.cfg.Scraper.StealthMode {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		e.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if e.cfg.Scraper.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: e.cfg.Scraper.UserAgent,
		}); err != nil {
			e.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return page, nil
}

// Close shuts down the shared browser
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return nil
	}

	err := rod.Try(func() { e.browser.MustClose() })
	e.browser = nil
	return err
}

func browserHealthy(browser *rod.Browser) bool {
	return rod.Try(func() { browser.MustPages() }) == nil
}

func systemChromePath() string {
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		if _, err := os.Stat(chromeBin); err == nil {
			return chromeBin
		}
	}

	commonPaths := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
