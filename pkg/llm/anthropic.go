package llm

import (
	"context"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/retry"
)

// DefaultClaudeModel is used when no model is configured for Claude.
const DefaultClaudeModel = "claude-3-5-sonnet-20241022"

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	retry       *retry.Config
	usage       *TokenUsageTracker
	logger      *zap.Logger
}

// NewAnthropicClient creates a Claude client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		cp := *cfg
		cp.Model = DefaultClaudeModel
		cfg = &cp
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(cfg.httpClient())}
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	named := logger.Named("llm").With(zap.String("provider", ProviderClaude))

	return &AnthropicClient{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retry:       cfg.retryPolicy(named),
		usage:       NewTokenUsageTracker(PricingFor(ProviderClaude)),
		logger:      named,
	}, nil
}

// Generate implements TextGenerator.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolveOptions(c.maxTokens, c.temperature, opts)

	return retry.DoWithResult(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.generateOnce(ctx, prompt, o)
	})
}

func (c *AnthropicClient) generateOnce(ctx context.Context, prompt string, o generateOptions) (string, error) {
	temperature := float32(o.temperature)
	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   o.maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("Model request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		llmErr := ClassifyError(err)
		llmErr.Provider = ProviderClaude
		llmErr.Model = c.model
		return "", llmErr
	}

	text := extractText(resp)
	if text == "" {
		return "", &Error{Type: ErrorTypeEmpty, Message: "no text content in response", Provider: ProviderClaude, Model: c.model}
	}

	c.usage.Record(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	c.logger.Info("Model request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// extractText returns the first text block of a Messages response.
func extractText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

// TokenStats implements TextGenerator.
func (c *AnthropicClient) TokenStats() models.TokenStats {
	return c.usage.Stats()
}

// ResetUsage zeroes the token counters.
func (c *AnthropicClient) ResetUsage() {
	c.usage.Reset()
}

// Provider implements TextGenerator.
func (c *AnthropicClient) Provider() string {
	return ProviderClaude
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

var _ TextGenerator = (*AnthropicClient)(nil)
