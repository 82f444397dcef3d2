package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// NewProvider builds the configured provider. It returns ErrProviderDisabled
// for "none" or an empty provider and ErrMissingCredential when an API key
// is required but absent; callers treat both as rule-based-only mode.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	var p Provider
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return nil, ErrProviderDisabled
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai", ErrMissingCredential)
		}
		op := NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, client)
		if cfg.MaxTokens > 0 {
			op.maxTokens = cfg.MaxTokens
		}
		p = op
	case ProviderAnthropic, "claude":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic", ErrMissingCredential)
		}
		ap := NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, client)
		if cfg.MaxTokens > 0 {
			ap.maxTokens = cfg.MaxTokens
		}
		p = ap
	case ProviderBedrock, "aws":
		bp, err := NewBedrockProvider(ctx, cfg.BedrockRegion, cfg.Model)
		if err != nil {
			return nil, err
		}
		if cfg.MaxTokens > 0 {
			bp.maxTokens = cfg.MaxTokens
		}
		p = bp
	default:
		return nil, fmt.Errorf("%w: %s (supported: openai, anthropic, bedrock, none)", ErrUnknownProvider, cfg.Provider)
	}

	logger.Info("using llm provider", zap.String("provider", p.Name()))
	return p, nil
}
