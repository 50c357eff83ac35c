package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/utils"
)

// ClaudeProvider invokes Anthropic's Claude models
type ClaudeProvider struct {
	client anthropic.Client
	cfg    config.ProviderConfig
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg config.ProviderConfig) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude API key not configured - set ANTHROPIC_API_KEY")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}, nil
}

// Invoke sends the extraction prompt to Claude and returns the raw text output
func (p *ClaudeProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	// Rough estimation of 3 chars per token keeps the prompt inside the
	// model's context budget
	maxPromptLength := p.cfg.MaxTokens * 3
	if maxPromptLength > 0 && len(prompt) > maxPromptLength {
		prompt = prompt[:maxPromptLength] + "..."
		p.logger.Debug("Prompt truncated to fit token limits", map[string]interface{}{
			"provider": "claude",
		})
	}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.cfg.Model),
		MaxTokens:   int64(p.cfg.MaxTokens),
		Temperature: anthropic.Float(float64(p.cfg.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", mapAnthropicError(ctx, err)
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	if strings.TrimSpace(responseText) == "" {
		return "", utils.NewMalformedResponseError("empty response from Claude")
	}

	return responseText, nil
}

// IsHealthy checks if the Claude API is reachable with the configured key
func (p *ClaudeProvider) IsHealthy(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("claude health check failed: %w", err)
	}
	return nil
}

// ProviderID returns the provider identifier
func (p *ClaudeProvider) ProviderID() string {
	return "claude"
}

func mapAnthropicError(ctx context.Context, err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return utils.NewUpstreamStatusError(apierr.StatusCode, apierr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return utils.NewTimeoutError(err.Error())
	}

	return utils.NewUnavailableError(err.Error())
}
