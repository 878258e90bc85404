package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/retry"
)

// DefaultGroqEndpoint is Groq's OpenAI-compatible API.
const DefaultGroqEndpoint = "https://api.groq.com/openai/v1"

// Config holds configuration for creating a provider client.
type Config struct {
	Provider    string        // groq or claude
	Endpoint    string        // Base URL; empty uses the provider default
	Model       string        // e.g. "llama-3.1-70b-versatile"
	APIKey      string        // Required
	MaxTokens   int           // Default max tokens per call
	Temperature float64       // Default sampling temperature
	Timeout     time.Duration // Per-attempt HTTP timeout, 0 for none
	Retry       *retry.Config // Nil uses retry.DefaultConfig()

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// retryPolicy copies the configured policy and binds provider classification
// and retry logging to it.
func (c *Config) retryPolicy(logger *zap.Logger) *retry.Config {
	policy := retry.DefaultConfig()
	if c.Retry != nil {
		cp := *c.Retry
		policy = &cp
	}
	policy.Retryable = IsRetryable
	policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		logger.Warn("Model call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.String("error", logging.SanitizeError(err)))
	}
	return policy
}

func (c *Config) httpClient() *http.Client {
	client := newHTTPClient(c.Transport)
	client.Timeout = c.Timeout
	return client
}

// Client talks to OpenAI-compatible chat completion endpoints (Groq).
type Client struct {
	client      *openai.Client
	provider    string
	endpoint    string
	model       string
	maxTokens   int
	temperature float64
	retry       *retry.Config
	usage       *TokenUsageTracker
	logger      *zap.Logger
}

// NewClient creates a new OpenAI-compatible client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGroq
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultGroqEndpoint
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(endpoint, "/")
	clientConfig.HTTPClient = cfg.httpClient()

	named := logger.Named("llm").With(zap.String("provider", provider))

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		provider:    provider,
		endpoint:    endpoint,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retry:       cfg.retryPolicy(named),
		usage:       NewTokenUsageTracker(PricingFor(provider)),
		logger:      named,
	}, nil
}

// Generate implements TextGenerator.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolveOptions(c.maxTokens, c.temperature, opts)

	return retry.DoWithResult(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.generateOnce(ctx, prompt, o)
	})
}

func (c *Client) generateOnce(ctx context.Context, prompt string, o generateOptions) (string, error) {
	c.logger.Debug("Model request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("max_tokens", o.maxTokens),
		zap.Float64("temperature", o.temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: float32(o.temperature),
	})
	if err != nil {
		c.logger.Error("Model request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return "", c.parseError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Type: ErrorTypeEmpty, Message: "no choices in response", Provider: c.provider, Model: c.model}
	}

	c.usage.Record(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	c.logger.Info("Model request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// TokenStats implements TextGenerator.
func (c *Client) TokenStats() models.TokenStats {
	return c.usage.Stats()
}

// ResetUsage zeroes the token counters.
func (c *Client) ResetUsage() {
	c.usage.Reset()
}

// Provider implements TextGenerator.
func (c *Client) Provider() string {
	return c.provider
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *Client) GetEndpoint() string {
	return c.endpoint
}

// parseError categorizes SDK errors using the structured Error type.
func (c *Client) parseError(err error) error {
	llmErr := ClassifyError(err)
	llmErr.Provider = c.provider
	llmErr.Model = c.model
	return llmErr
}

var _ TextGenerator = (*Client)(nil)
