// Package breaker implements per-provider circuit breaking. Each
// provider gets an independent Closed/Open/HalfOpen state machine so a
// failing provider stops receiving calls while the others keep working.
package breaker

import (
	"sync"
	"time"

	"jobtrail-utils/pkg/models"
)

// State is the circuit state of a provider
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Settings holds the thresholds of one provider's circuit
type Settings struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultSettings matches the configured defaults: open after 5
// consecutive failures, close after 2 half-open successes, retry an
// open circuit after 60s.
var DefaultSettings = Settings{
	FailureThreshold: 5,
	SuccessThreshold: 2,
	OpenTimeout:      60 * time.Second,
}

type circuit struct {
	mu                   sync.Mutex
	settings             Settings
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	halfOpenTrials       int
	openedAt             time.Time
}

// Registry tracks one circuit per provider. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	circuits map[string]*circuit
	now      func() time.Time
}

// NewRegistry creates an empty breaker registry
func NewRegistry() *Registry {
	return &Registry{
		circuits: make(map[string]*circuit),
		now:      time.Now,
	}
}

// Register adds a provider circuit with the given settings. Registering
// an already-known provider is a no-op so live counters survive
// re-registration.
func (r *Registry) Register(providerID string, settings Settings) {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = DefaultSettings.FailureThreshold
	}
	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = DefaultSettings.SuccessThreshold
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = DefaultSettings.OpenTimeout
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.circuits[providerID]; exists {
		return
	}
	r.circuits[providerID] = &circuit{settings: settings, state: StateClosed}
}

func (r *Registry) circuitFor(providerID string) *circuit {
	r.mu.RLock()
	c, ok := r.circuits[providerID]
	r.mu.RUnlock()
	if ok {
		return c
	}

	// Unknown providers get a circuit with default settings
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.circuits[providerID]; ok {
		return c
	}
	c = &circuit{settings: DefaultSettings, state: StateClosed}
	r.circuits[providerID] = c
	return c
}

// Allow reports whether a call to the provider may proceed. An open
// circuit whose timeout has elapsed moves to half-open and lets the
// trial call through. Half-open admits at most SuccessThreshold calls
// whose outcome has not been recorded yet, so a burst of concurrent
// callers cannot flood a recovering provider.
func (r *Registry) Allow(providerID string) bool {
	c := r.circuitFor(providerID)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		if c.halfOpenTrials >= c.settings.SuccessThreshold {
			return false
		}
		c.halfOpenTrials++
		return true
	case StateOpen:
		if r.now().Sub(c.openedAt) >= c.settings.OpenTimeout {
			c.state = StateHalfOpen
			c.consecutiveSuccesses = 0
			c.halfOpenTrials = 1
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess records the outcome of a successful provider call
func (r *Registry) RecordSuccess(providerID string) {
	c := r.circuitFor(providerID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0

	switch c.state {
	case StateHalfOpen:
		if c.halfOpenTrials > 0 {
			c.halfOpenTrials--
		}
		c.consecutiveSuccesses++
		if c.consecutiveSuccesses >= c.settings.SuccessThreshold {
			c.state = StateClosed
			c.consecutiveSuccesses = 0
			c.halfOpenTrials = 0
			c.openedAt = time.Time{}
		}
	case StateClosed:
		c.consecutiveSuccesses++
	}
}

// RecordFailure records the outcome of a failed provider call
func (r *Registry) RecordFailure(providerID string) {
	c := r.circuitFor(providerID)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		c.consecutiveFailures++
		c.consecutiveSuccesses = 0
		if c.consecutiveFailures >= c.settings.FailureThreshold {
			c.state = StateOpen
			c.openedAt = r.now()
		}
	case StateHalfOpen:
		// A single half-open failure reopens the circuit
		c.state = StateOpen
		c.openedAt = r.now()
		c.consecutiveFailures++
		c.consecutiveSuccesses = 0
		c.halfOpenTrials = 0
	case StateOpen:
		c.consecutiveFailures++
	}
}

// Snapshot returns a point-in-time health view of every circuit
func (r *Registry) Snapshot() []models.ProviderHealth {
	r.mu.RLock()
	ids := make([]string, 0, len(r.circuits))
	for id := range r.circuits {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	health := make([]models.ProviderHealth, 0, len(ids))
	for _, id := range ids {
		c := r.circuitFor(id)
		c.mu.Lock()
		h := models.ProviderHealth{
			Provider:             id,
			State:                c.state.String(),
			ConsecutiveFailures:  c.consecutiveFailures,
			ConsecutiveSuccesses: c.consecutiveSuccesses,
		}
		if !c.openedAt.IsZero() {
			openedAt := c.openedAt
			h.OpenedAt = &openedAt
		}
		c.mu.Unlock()
		health = append(health, h)
	}
	return health
}

// StateOf returns the current state of a provider's circuit
func (r *Registry) StateOf(providerID string) State {
	c := r.circuitFor(providerID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
