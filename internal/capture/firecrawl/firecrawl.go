package firecrawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/mendableai/firecrawl-go"

	"jobtrail-utils/internal/capture"
	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// Engine fetches page text through the Firecrawl API. It needs no
// local browser, which makes it the fallback when a rendered capture
// fails or is unavailable.
type Engine struct {
	app    *firecrawl.FirecrawlApp
	logger logging.Logger
}

// New creates a Firecrawl capture engine
func New(cfg *config.Config) (*Engine, error) {
	if cfg.Firecrawl.APIKey == "" {
		return nil, fmt.Errorf("firecrawl API key not configured - set FIRECRAWL_API_KEY")
	}

	app, err := firecrawl.NewFirecrawlApp(cfg.Firecrawl.APIKey, cfg.Firecrawl.APIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firecrawl: %w", err)
	}

	return &Engine{
		app:    app,
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Engine returns the engine identifier
func (e *Engine) Engine() string {
	return "firecrawl"
}

// Acquire fetches the page as markdown text via the Firecrawl API
func (e *Engine) Acquire(ctx context.Context, url string) (*capture.Page, error) {
	doc, err := e.app.ScrapeURL(url, &firecrawl.ScrapeParams{
		Formats: []string{"markdown"},
	})
	if err != nil {
		return nil, mapFirecrawlError(ctx, err)
	}

	if doc == nil || strings.TrimSpace(doc.Markdown) == "" {
		return nil, utils.NewUnavailableError("firecrawl returned no content for " + url)
	}

	e.logger.Debug("Firecrawl capture completed", map[string]interface{}{
		"url":          url,
		"content_size": len(doc.Markdown),
	})

	return &capture.Page{
		Content: doc.Markdown,
		Engine:  e.Engine(),
		IsHTML:  false,
	}, nil
}

// Close is a no-op; the engine holds no resources
func (e *Engine) Close() error {
	return nil
}

func mapFirecrawlError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return utils.NewTimeoutError(err.Error())
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate limit") {
		return utils.NewRateLimitedError(msg)
	}

	return utils.NewUnavailableError(msg)
}
