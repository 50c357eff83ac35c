package llm

import "context"

// ProviderClient is implemented once per model provider. Invoke returns
// the provider's raw text output for an extraction prompt; adapters
// must map transport and API failures into the extraction-error
// taxonomy before returning them.
type ProviderClient interface {
	// Invoke sends the extraction prompt and returns the raw model output
	Invoke(ctx context.Context, prompt string) (string, error)

	// ProviderID returns the stable identifier of this provider
	ProviderID() string

	// IsHealthy checks whether the provider is reachable and configured
	IsHealthy(ctx context.Context) error
}
