package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	defaultBedrockRegion = "us-east-1"
	defaultBedrockModel  = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	bedrockAnthropicVer  = "bedrock-2023-05-31"
)

// BedrockInvoker is the subset of the bedrockruntime client the provider uses.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider invokes Anthropic models hosted on AWS Bedrock.
// Credentials come from the default AWS chain.
type BedrockProvider struct {
	client    BedrockInvoker
	model     string
	region    string
	maxTokens int
}

// NewBedrockProvider loads the default AWS config for region.
func NewBedrockProvider(ctx context.Context, region, model string) (*BedrockProvider, error) {
	if region == "" {
		region = defaultBedrockRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewBedrockProviderWithClient(bedrockruntime.NewFromConfig(cfg), region, model), nil
}

func NewBedrockProviderWithClient(client BedrockInvoker, region, model string) *BedrockProvider {
	if model == "" {
		model = defaultBedrockModel
	}
	return &BedrockProvider{
		client:    client,
		model:     model,
		region:    region,
		maxTokens: defaultMaxTokens,
	}
}

func (p *BedrockProvider) Name() string {
	return fmt.Sprintf("AWS Bedrock (%s)", p.model)
}

type bedrockClaudeRequest struct {
	Messages         []anthropicMessage `json:"messages"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	AnthropicVersion string             `json:"anthropic_version"`
}

func (p *BedrockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(bedrockClaudeRequest{
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens:        p.maxTokens,
		AnthropicVersion: bedrockAnthropicVer,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Bedrock API: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode Bedrock response: %w", err)
	}
	text := joinText(resp.Content)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
