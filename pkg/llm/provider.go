// Package llm holds single-shot text-generation clients for the hosted
// model providers the AI scorer can use.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderNone      = "none"

	defaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second
)

var (
	ErrMissingCredential = errors.New("llm credential not configured")
	ErrProviderDisabled  = errors.New("llm provider disabled")
	ErrUnknownProvider   = errors.New("unknown llm provider")
	ErrEmptyResponse     = errors.New("llm returned no content")
)

// Provider sends one prompt and returns the generated text.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	Provider      string
	APIKey        string
	Model         string
	BaseURL       string
	Timeout       time.Duration
	MaxTokens     int
	BedrockRegion string
}

// StatusError reports a non-2xx response from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
