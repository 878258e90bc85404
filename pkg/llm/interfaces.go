// Package llm provides the text-generation clients used by the insight
// pipeline, with bounded retry and token cost tracking.
package llm

import (
	"context"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// Supported providers.
const (
	ProviderGroq   = "groq"
	ProviderClaude = "claude"
)

// TextGenerator sends a prompt to a remote model and returns its text.
// Use this interface for dependency injection to enable mocking in tests.
type TextGenerator interface {
	// Generate returns the model's text for prompt. Rate-limit and timeout
	// failures are retried; other failures return immediately.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// TokenStats returns the accumulated token usage of this client.
	TokenStats() models.TokenStats

	// Provider returns the provider name, e.g. "groq".
	Provider() string

	// GetModel returns the configured model name.
	GetModel() string
}

// GenerateOption overrides per-call generation parameters.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	maxTokens   int
	temperature float64
}

// WithMaxTokens caps the number of generated tokens for one call.
func WithMaxTokens(n int) GenerateOption {
	return func(o *generateOptions) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature for one call.
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) {
		o.temperature = t
	}
}

func resolveOptions(maxTokens int, temperature float64, opts []GenerateOption) generateOptions {
	o := generateOptions{maxTokens: maxTokens, temperature: temperature}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
