package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// AnthropicProvider calls the Anthropic messages API.
type AnthropicProvider struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	client    *http.Client
}

func NewAnthropicProvider(apiKey, model, baseURL string, client *http.Client) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &AnthropicProvider{
		apiKey:    apiKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxTokens: defaultMaxTokens,
		client:    client,
	}
}

func (p *AnthropicProvider) Name() string {
	return fmt.Sprintf("Anthropic (%s)", p.model)
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	ID      string                  `json:"id"`
	Content []anthropicContentBlock `json:"content"`
}

// joinText concatenates the text blocks of a messages response.
func joinText(blocks []anthropicContentBlock) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}

	reqBody := anthropicRequest{
		Model:     p.model,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens: p.maxTokens,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, p.client, "Anthropic", p.baseURL+"/messages", map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}, reqBody, &resp); err != nil {
		return "", err
	}

	text := joinText(resp.Content)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
