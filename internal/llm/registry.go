package llm

import (
	"context"
	"fmt"
	"sync"

	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/llm/providers"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// Registry resolves provider identifiers to clients. Providers are
// constructed once at startup from configuration; the fallback order
// is fixed for the process lifetime.
type Registry struct {
	mu            sync.RWMutex
	clients       map[string]ProviderClient
	primary       string
	fallbackOrder []string
	logger        logging.Logger
}

// NewRegistry builds clients for every enabled provider in the
// configuration. At least one provider must come up.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	logger := logging.GetGlobalLogger()

	r := &Registry{
		clients:       make(map[string]ProviderClient),
		primary:       cfg.LLM.Primary,
		fallbackOrder: cfg.LLM.FallbackOrder,
		logger:        logger,
	}

	for name, providerCfg := range cfg.LLM.Providers {
		if !providerCfg.Enabled {
			continue
		}

		client, err := buildProvider(name, providerCfg)
		if err != nil {
			logger.Warn("Skipping provider that failed to initialize", map[string]interface{}{
				"provider": name,
				"error":    err.Error(),
			})
			continue
		}

		r.clients[name] = client
		logger.Info("Registered LLM provider", map[string]interface{}{
			"provider": name,
			"model":    providerCfg.Model,
		})
	}

	if len(r.clients) == 0 {
		return nil, fmt.Errorf("no LLM providers available - check provider configuration and API keys")
	}

	return r, nil
}

// NewStaticRegistry builds a registry from pre-constructed clients,
// for wiring setups that handle provider construction themselves.
func NewStaticRegistry(primary string, fallbackOrder []string, clients map[string]ProviderClient) *Registry {
	return &Registry{
		clients:       clients,
		primary:       primary,
		fallbackOrder: fallbackOrder,
		logger:        logging.GetGlobalLogger(),
	}
}

func buildProvider(name string, cfg config.ProviderConfig) (ProviderClient, error) {
	switch name {
	case "claude":
		return providers.NewClaudeProvider(cfg)
	case "gemini":
		return providers.NewGeminiProvider(cfg)
	case "ollama":
		return providers.NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}
}

// Get returns the client for a provider ID
func (r *Registry) Get(providerID string) (ProviderClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[providerID]
	return client, ok
}

// IDs lists every registered provider
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// Chain returns the ordered provider list for one extraction. An
// explicit provider replaces the configured primary at the head of the
// chain; the configured fallback order follows, minus duplicates and
// providers that never registered.
func (r *Registry) Chain(explicitProvider string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	head := r.primary
	if explicitProvider != "" {
		if _, ok := r.clients[explicitProvider]; !ok {
			return nil, utils.NewInvalidInputError(fmt.Sprintf("unknown provider %q", explicitProvider))
		}
		head = explicitProvider
	}

	chain := make([]string, 0, len(r.clients))
	seen := make(map[string]bool)

	appendKnown := func(id string) {
		if seen[id] {
			return
		}
		if _, ok := r.clients[id]; !ok {
			return
		}
		seen[id] = true
		chain = append(chain, id)
	}

	appendKnown(head)
	for _, id := range r.fallbackOrder {
		appendKnown(id)
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("provider chain is empty")
	}
	return chain, nil
}

// CheckHealth pings every registered provider and returns the results
// keyed by provider ID.
func (r *Registry) CheckHealth(ctx context.Context) map[string]error {
	r.mu.RLock()
	clients := make(map[string]ProviderClient, len(r.clients))
	for id, c := range r.clients {
		clients[id] = c
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(clients))
	for id, client := range clients {
		results[id] = client.IsHealthy(ctx)
	}
	return results
}
