package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// GeminiProvider invokes Google's Gemini models
type GeminiProvider struct {
	client *genai.Client
	cfg    config.ProviderConfig
	logger logging.Logger
}

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(cfg config.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured - set GEMINI_API_KEY")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, err
	}

	return &GeminiProvider{
		client: client,
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Invoke sends the extraction prompt to Gemini and returns the raw text output
func (p *GeminiProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(
		ctx,
		p.cfg.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", mapGeminiError(ctx, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", utils.NewMalformedResponseError("empty response from Gemini")
	}

	return text, nil
}

// IsHealthy checks if the Gemini API is reachable with the configured key
func (p *GeminiProvider) IsHealthy(ctx context.Context) error {
	_, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text("Hello"), nil)
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// ProviderID returns the provider identifier
func (p *GeminiProvider) ProviderID() string {
	return "gemini"
}

func mapGeminiError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return utils.NewUpstreamStatusError(apiErr.Code, apiErr.Message)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return utils.NewTimeoutError(err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return utils.NewTimeoutError(err.Error())
	}

	return utils.NewUnavailableError(err.Error())
}
