package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// OllamaProvider invokes a locally hosted model through Ollama. Local
// models are slow, so this provider is configured with a long per-call
// timeout and a small retry budget.
type OllamaProvider struct {
	model  llms.Model
	cfg    config.ProviderConfig
	logger logging.Logger
}

// NewOllamaProvider creates a new Ollama provider instance
func NewOllamaProvider(cfg config.ProviderConfig) (*OllamaProvider, error) {
	opts := []ollama.Option{
		ollama.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &OllamaProvider{
		model:  model,
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Invoke sends the extraction prompt to the local model and returns the
// raw text output
func (p *OllamaProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt,
		llms.WithTemperature(float64(p.cfg.Temperature)),
	)
	if err != nil {
		return "", mapOllamaError(ctx, err)
	}

	if strings.TrimSpace(resp) == "" {
		return "", utils.NewMalformedResponseError("empty response from ollama")
	}

	return resp, nil
}

// IsHealthy checks if the local Ollama server responds
func (p *OllamaProvider) IsHealthy(ctx context.Context) error {
	_, err := llms.GenerateFromSinglePrompt(ctx, p.model, "Hello")
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	return nil
}

// ProviderID returns the provider identifier
func (p *OllamaProvider) ProviderID() string {
	return "ollama"
}

func mapOllamaError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return utils.NewTimeoutError(err.Error())
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return utils.NewUnavailableError("ollama server not reachable: " + err.Error())
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return utils.NewTimeoutError(err.Error())
	}

	return utils.NewUnavailableError(err.Error())
}
