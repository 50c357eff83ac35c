package capture

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

const limiterIdleCutoff = 10 * time.Minute

type domainLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// DomainLimiter throttles page acquisition per source domain so a burst
// of requests for one job board does not get the service blocked there.
// Limiters for idle domains are dropped periodically.
type DomainLimiter struct {
	mu            sync.Mutex
	domains       map[string]*domainLimiter
	perMinute     int
	logger        logging.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// NewDomainLimiter creates a limiter allowing perMinute requests per
// domain with a small burst allowance.
func NewDomainLimiter(perMinute int) *DomainLimiter {
	dl := &DomainLimiter{
		domains:       make(map[string]*domainLimiter),
		perMinute:     perMinute,
		logger:        logging.GetGlobalLogger(),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}

	go dl.cleanupLoop()

	return dl
}

// Wait blocks until the domain of the given URL has capacity, or the
// context ends.
func (dl *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	domain := strings.ToLower(utils.ExtractDomain(rawURL))

	dl.mu.Lock()
	entry, ok := dl.domains[domain]
	if !ok {
		entry = &domainLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(dl.perMinute)/60.0), 5),
		}
		dl.domains[domain] = entry
		dl.logger.Debug("Created domain rate limiter", map[string]interface{}{
			"domain":     domain,
			"per_minute": dl.perMinute,
		})
	}
	entry.lastSeen = time.Now()
	dl.mu.Unlock()

	if err := entry.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return utils.NewTimeoutError("timed out waiting for domain rate limit: " + domain)
		}
		return err
	}
	return nil
}

func (dl *DomainLimiter) cleanupLoop() {
	for {
		select {
		case <-dl.cleanupTicker.C:
			dl.cleanup()
		case <-dl.stopCleanup:
			dl.cleanupTicker.Stop()
			return
		}
	}
}

func (dl *DomainLimiter) cleanup() {
	cutoff := time.Now().Add(-limiterIdleCutoff)

	dl.mu.Lock()
	defer dl.mu.Unlock()

	for domain, entry := range dl.domains {
		if entry.lastSeen.Before(cutoff) {
			delete(dl.domains, domain)
		}
	}
}

// Stop terminates the cleanup loop
func (dl *DomainLimiter) Stop() {
	close(dl.stopCleanup)
}
