package hybrid

import (
	"context"

	"jobtrail-utils/internal/capture"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// Engine tries a rendered browser capture first and falls back to a
// text fetch when the capture fails. A per-domain rate limiter sits in
// front of both engines.
type Engine struct {
	primary  capture.Acquirer
	fallback capture.Acquirer
	limiter  *capture.DomainLimiter
	logger   logging.Logger
}

// New creates a hybrid engine. fallback may be nil when no text-fetch
// engine is configured; captures then fail as soon as the primary does.
func New(primary, fallback capture.Acquirer, limiter *capture.DomainLimiter) *Engine {
	return &Engine{
		primary:  primary,
		fallback: fallback,
		limiter:  limiter,
		logger:   logging.GetGlobalLogger(),
	}
}

// Engine returns the engine identifier
func (e *Engine) Engine() string {
	return "hybrid"
}

// Acquire fetches page content, preferring the rendered capture
func (e *Engine) Acquire(ctx context.Context, url string) (*capture.Page, error) {
	if err := e.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	page, primaryErr := e.primary.Acquire(ctx, url)
	if primaryErr == nil {
		return page, nil
	}

	if e.fallback == nil {
		return nil, primaryErr
	}

	e.logger.Warn("Rendered capture failed, falling back to text fetch", map[string]interface{}{
		"url":   url,
		"error": primaryErr.Error(),
	})

	page, fallbackErr := e.fallback.Acquire(ctx, url)
	if fallbackErr != nil {
		// Report the fallback failure but keep the primary's cause visible
		if extErr, ok := utils.AsExtractionError(fallbackErr); ok {
			extErr.Detail = "rendered capture also failed: " + primaryErr.Error()
			return nil, extErr
		}
		return nil, fallbackErr
	}

	return page, nil
}

// Close shuts down both engines
func (e *Engine) Close() error {
	err := e.primary.Close()
	if e.fallback != nil {
		if ferr := e.fallback.Close(); err == nil {
			err = ferr
		}
	}
	return err
}
