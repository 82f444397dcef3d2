package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	client    *http.Client
}

func NewOpenAIProvider(apiKey, model, baseURL string, client *http.Client) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &OpenAIProvider{
		apiKey:    apiKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxTokens: defaultMaxTokens,
		client:    client,
	}
}

func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("OpenAI (%s)", p.model)
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate sends prompt as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}

	reqBody := openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: "You are an HR analytics assistant. Reply with JSON only."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: p.maxTokens,
	}

	var resp openAIResponse
	if err := postJSON(ctx, p.client, "OpenAI", p.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.apiKey}, reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
