package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first choice content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req openAIRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-test", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "score this", req.Messages[1].Content)
			assert.False(t, req.Stream)

			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"risk_score\": 40}"},"finish_reason":"stop"}]}`))
		}))
		defer srv.Close()

		p := NewOpenAIProvider("sk-test", "gpt-test", srv.URL+"/v1/", srv.Client())
		text, err := p.Generate(ctx, "score this")

		require.NoError(t, err)
		assert.Equal(t, `{"risk_score": 40}`, text)
	})

	t.Run("non-2xx is a StatusError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`rate limited`))
		}))
		defer srv.Close()

		p := NewOpenAIProvider("sk-test", "", srv.URL, srv.Client())
		_, err := p.Generate(ctx, "x")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
		assert.Equal(t, "rate limited", statusErr.Body)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		p := NewOpenAIProvider("sk-test", "", srv.URL, srv.Client())
		_, err := p.Generate(ctx, "x")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("missing key never calls out", func(t *testing.T) {
		p := NewOpenAIProvider("", "", "http://127.0.0.1:0", nil)
		_, err := p.Generate(ctx, "x")
		assert.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p := NewOpenAIProvider("sk-test", "", srv.URL, srv.Client())
		_, err := p.Generate(cctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAnthropicProvider_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("joins text blocks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/messages", r.URL.Path)
			assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

			var req anthropicRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, defaultMaxTokens, req.MaxTokens)

			_, _ = w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"Here: "},{"type":"text","text":"{}"}]}`))
		}))
		defer srv.Close()

		p := NewAnthropicProvider("ak-test", "", srv.URL, srv.Client())
		text, err := p.Generate(ctx, "x")

		require.NoError(t, err)
		assert.Equal(t, "Here: {}", text)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := NewAnthropicProvider("ak-test", "", srv.URL, srv.Client())
		_, err := p.Generate(ctx, "x")

		var statusErr *StatusError
		assert.ErrorAs(t, err, &statusErr)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := NewAnthropicProvider("", "", "", nil).Generate(ctx, "x")
		assert.ErrorIs(t, err, ErrMissingCredential)
	})
}

type fakeInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBedrockProvider_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("invokes the configured model", func(t *testing.T) {
		inv := &fakeInvoker{body: `{"content":[{"type":"text","text":"{\"risk_score\":10}"}]}`}
		p := NewBedrockProviderWithClient(inv, "eu-west-1", "")

		text, err := p.Generate(ctx, "x")

		require.NoError(t, err)
		assert.Equal(t, `{"risk_score":10}`, text)
		require.NotNil(t, inv.input)
		assert.Equal(t, defaultBedrockModel, *inv.input.ModelId)

		var req bedrockClaudeRequest
		require.NoError(t, json.Unmarshal(inv.input.Body, &req))
		assert.Equal(t, bedrockAnthropicVer, req.AnthropicVersion)
	})

	t.Run("invoke error", func(t *testing.T) {
		p := NewBedrockProviderWithClient(&fakeInvoker{err: errors.New("throttled")}, "", "m")
		_, err := p.Generate(ctx, "x")
		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("empty content", func(t *testing.T) {
		p := NewBedrockProviderWithClient(&fakeInvoker{body: `{"content":[]}`}, "", "m")
		_, err := p.Generate(ctx, "x")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		want    string
	}{
		{name: "disabled when empty", cfg: Config{}, wantErr: ErrProviderDisabled},
		{name: "disabled when none", cfg: Config{Provider: "none"}, wantErr: ErrProviderDisabled},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: ErrMissingCredential},
		{name: "anthropic without key", cfg: Config{Provider: "anthropic"}, wantErr: ErrMissingCredential},
		{name: "unknown", cfg: Config{Provider: "gemini"}, wantErr: ErrUnknownProvider},
		{name: "openai", cfg: Config{Provider: "OpenAI", APIKey: "k", Model: "m"}, want: "OpenAI (m)"},
		{name: "anthropic alias", cfg: Config{Provider: "claude", APIKey: "k", Model: "m"}, want: "Anthropic (m)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(ctx, tt.cfg, logger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}
