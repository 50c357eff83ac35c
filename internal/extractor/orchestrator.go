// Package extractor coordinates the extraction pipeline: result cache,
// per-provider circuit breaking, retry with backoff, and the ordered
// provider fallback chain.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobtrail-utils/internal/capture"
	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/extractor/breaker"
	"jobtrail-utils/internal/extractor/cache"
	"jobtrail-utils/internal/extractor/retry"
	"jobtrail-utils/internal/llm"
	"jobtrail-utils/internal/llm/processors"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/models"
	"jobtrail-utils/pkg/utils"
)

// Orchestrator runs one extraction end to end. It owns no provider
// state beyond the breaker registry; concurrent extractions are
// independent goroutines sharing the same components.
type Orchestrator struct {
	cfg       *config.Config
	cache     cache.Store
	breakers  *breaker.Registry
	providers *llm.Registry
	acquirers map[string]capture.Acquirer
	cleaner   *processors.ContentCleaner
	logger    logging.Logger
}

// New assembles an orchestrator. acquirers maps engine names to capture
// engines; the "auto" entry is the default when a request names none.
func New(cfg *config.Config, store cache.Store, breakers *breaker.Registry, providers *llm.Registry, acquirers map[string]capture.Acquirer) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		cache:     store,
		breakers:  breakers,
		providers: providers,
		acquirers: acquirers,
		cleaner:   processors.NewContentCleaner(),
		logger:    logging.GetGlobalLogger(),
	}
}

// Extract resolves a source URL to a structured job record. The result
// cache is consulted first; on a miss the page is captured, cleaned and
// run through the provider fallback chain. Successful results are
// cached before returning.
func (o *Orchestrator) Extract(ctx context.Context, sourceURL string, opts *models.ExtractOptions) (*models.Job, error) {
	if opts == nil {
		opts = &models.ExtractOptions{}
	}

	if err := utils.ValidateSourceURL(sourceURL); err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cacheKey := utils.NormalizeSourceURL(sourceURL)
	if job, ok := o.cache.Get(ctx, cacheKey); ok {
		o.logger.Info("Cache hit, skipping extraction", map[string]interface{}{
			"url": sourceURL,
		})
		return job, nil
	}

	// Resolve the chain before touching the network so an unknown
	// explicit provider fails fast
	chain, err := o.providers.Chain(opts.Provider)
	if err != nil {
		return nil, err
	}

	page, err := o.acquirePage(ctx, sourceURL, opts.Engine)
	if err != nil {
		return nil, err
	}

	content, err := o.preparedContent(page)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = models.ModeGeneric
	}
	prompt := llm.BuildExtractionPrompt(content, sourceURL, mode)

	job, err := o.runChain(ctx, chain, prompt, sourceURL)
	if err != nil {
		return nil, err
	}

	job.Metadata.SourceURL = sourceURL
	job.Metadata.Engine = page.Engine
	job.Metadata.ExtractedAt = time.Now().UTC()

	if err := o.cache.Put(ctx, cacheKey, job); err != nil {
		// A broken cache must not fail a completed extraction
		o.logger.Warn("Failed to cache extraction result", map[string]interface{}{
			"url":   sourceURL,
			"error": err.Error(),
		})
	}

	return job, nil
}

// runChain walks the provider chain until one provider produces a
// parseable result. Each provider gets its configured retry budget;
// permanent failures abort the whole chain because every provider would
// hit the same wall.
func (o *Orchestrator) runChain(ctx context.Context, chain []string, prompt, sourceURL string) (*models.Job, error) {
	var attempts []utils.ProviderAttempt

	for _, providerID := range chain {
		if err := ctx.Err(); err != nil {
			return nil, abortError(err)
		}

		if !o.breakers.Allow(providerID) {
			o.logger.Warn("Provider circuit open, skipping", map[string]interface{}{
				"provider": providerID,
			})
			attempts = append(attempts, utils.ProviderAttempt{
				Provider: providerID,
				Kind:     utils.KindUnavailable,
				Message:  "circuit open",
			})
			continue
		}

		client, ok := o.providers.Get(providerID)
		if !ok {
			// The chain only names registered providers, but a provider
			// that vanishes mid-request must still leave a trace in the
			// failure history.
			attempts = append(attempts, utils.ProviderAttempt{
				Provider: providerID,
				Kind:     utils.KindUnavailable,
				Message:  "provider not registered",
			})
			continue
		}

		job, err := o.invokeProvider(ctx, client, providerID, prompt, sourceURL)
		if err == nil {
			job.Metadata.Provider = providerID
			o.logger.Info("Extraction succeeded", map[string]interface{}{
				"provider": providerID,
				"url":      sourceURL,
			})
			return job, nil
		}

		if ctx.Err() != nil {
			return nil, abortError(ctx.Err())
		}

		if retry.Classify(err) == retry.Permanent {
			// The next provider would fail the same way, so surface the
			// error instead of burning the rest of the chain
			o.logger.Error("Permanent extraction failure", map[string]interface{}{
				"provider": providerID,
				"url":      sourceURL,
				"error":    err.Error(),
			})
			return nil, err
		}

		kind := utils.KindUnavailable
		if ee, ok := utils.AsExtractionError(err); ok {
			kind = ee.Kind
		}
		attempts = append(attempts, utils.ProviderAttempt{
			Provider: providerID,
			Kind:     kind,
			Message:  err.Error(),
		})

		o.logger.Warn("Provider exhausted its retry budget, falling back", map[string]interface{}{
			"provider": providerID,
			"url":      sourceURL,
			"error":    err.Error(),
		})
	}

	return nil, utils.NewAllProvidersFailedError(attempts)
}

// abortError translates a context error into the caller-facing failure.
// A deadline is a timeout; cancellation means the caller walked away and
// is surfaced as-is so errors.Is(err, context.Canceled) holds.
func abortError(ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return utils.NewTimeoutError("extraction aborted: " + ctxErr.Error())
	}
	return fmt.Errorf("extraction canceled: %w", ctxErr)
}

// invokeProvider runs one provider's retry loop. The circuit records
// the outcome of every underlying call; a response that invokes fine
// but fails to parse still counts as a provider success because the
// provider itself was healthy.
func (o *Orchestrator) invokeProvider(ctx context.Context, client llm.ProviderClient, providerID, prompt, sourceURL string) (*models.Job, error) {
	providerCfg := o.cfg.Provider(providerID)

	var job *models.Job
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: providerCfg.MaxRetries,
		BaseDelay:   o.cfg.Retry.BaseDelay,
	}, func(ctx context.Context) error {
		callCtx := ctx
		if providerCfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, providerCfg.Timeout)
			defer cancel()
		}

		raw, invokeErr := client.Invoke(callCtx, prompt)
		if invokeErr != nil {
			o.breakers.RecordFailure(providerID)
			return invokeErr
		}
		o.breakers.RecordSuccess(providerID)

		parsed, parseErr := llm.ParseJob(raw, sourceURL)
		if parseErr != nil {
			return parseErr
		}

		job = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// acquirePage fetches page content with the requested capture engine
func (o *Orchestrator) acquirePage(ctx context.Context, sourceURL, engine string) (*capture.Page, error) {
	if engine == "" {
		engine = "auto"
	}

	acquirer, ok := o.acquirers[engine]
	if !ok {
		return nil, utils.NewInvalidInputError(fmt.Sprintf("unknown capture engine %q", engine))
	}

	page, err := acquirer.Acquire(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// preparedContent turns raw page content into prompt-ready text and
// enforces the content size limit.
func (o *Orchestrator) preparedContent(page *capture.Page) (string, error) {
	if max := o.cfg.Scraper.MaxContentSize; max > 0 && len(page.Content) > max {
		return "", utils.NewContentTooLargeError(fmt.Sprintf("page content is %d bytes, limit is %d", len(page.Content), max))
	}

	if !page.IsHTML {
		return page.Content, nil
	}

	text, err := o.cleaner.ExtractText(page.Content)
	if err != nil {
		return "", utils.NewMalformedResponseError("failed to parse page HTML: " + err.Error())
	}
	if text == "" {
		return "", utils.NewInvalidSourceError("page has no extractable text content")
	}
	return text, nil
}

// ProviderHealth reports the circuit state of every provider
func (o *Orchestrator) ProviderHealth() models.ProviderHealthResponse {
	return models.ProviderHealthResponse{
		Providers: o.breakers.Snapshot(),
		Timestamp: time.Now().UTC(),
	}
}

// ClearCache drops every cached extraction result
func (o *Orchestrator) ClearCache(ctx context.Context) error {
	return o.cache.Clear(ctx)
}

// InvalidateCache drops the cached result for one source URL
func (o *Orchestrator) InvalidateCache(ctx context.Context, sourceURL string) error {
	if err := utils.ValidateSourceURL(sourceURL); err != nil {
		return err
	}
	return o.cache.Delete(ctx, utils.NormalizeSourceURL(sourceURL))
}
