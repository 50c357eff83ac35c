// Package retry holds the error classifier and the generic retry
// executor used for provider calls.
package retry

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"jobtrail-utils/pkg/utils"
)

// Class is the retry classification of an error
type Class int

const (
	// Retryable errors are expected to eventually succeed on the same
	// call: timeouts, connection failures, rate limiting, upstream 5xx.
	Retryable Class = iota
	// Permanent errors will not be fixed by retrying: bad input,
	// credentials, unparseable responses, other upstream 4xx.
	Permanent
)

func (c Class) String() string {
	if c == Permanent {
		return "permanent"
	}
	return "retryable"
}

// Classify maps an error into Retryable or Permanent. Errors outside
// the extraction taxonomy default to Retryable, matching how unknown
// network-level failures behave.
func Classify(err error) Class {
	ee, ok := utils.AsExtractionError(err)
	if !ok {
		// Errors that escaped the provider adapters are almost always
		// network-level, so treat them as transient.
		return Retryable
	}

	switch ee.Kind {
	case utils.KindTimeout, utils.KindRateLimited, utils.KindUnavailable, utils.KindUpstreamServer:
		return Retryable
	case utils.KindUpstreamClient:
		// 408 and 429 are transient despite being 4xx
		if ee.Status == http.StatusRequestTimeout || ee.Status == http.StatusTooManyRequests {
			return Retryable
		}
		return Permanent
	default:
		return Permanent
	}
}

// Backoff computes the delay before retrying the given 0-based attempt:
// baseDelay doubled per attempt plus uniform jitter of up to 10% so
// concurrent callers do not retry in lockstep.
func Backoff(attempt int, baseDelay time.Duration) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))
	jitter := rand.Float64() * 0.1 * delay
	return time.Duration(delay + jitter)
}

// Config bounds one retry loop
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Operation is one attempt of the underlying call
type Operation func(ctx context.Context) error

// Do invokes op up to cfg.MaxAttempts times. Permanent failures return
// immediately; retryable failures sleep the backoff delay (waking early
// on context cancellation) before the next attempt. The last error is
// returned once the budget is exhausted.
func Do(ctx context.Context, cfg Config, op Operation) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if Classify(err) == Permanent {
			return err
		}

		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Backoff(attempt, cfg.BaseDelay)):
		}
	}

	return lastErr
}
