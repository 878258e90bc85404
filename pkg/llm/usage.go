package llm

import (
	"math"
	"sync"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// Pricing is the USD cost per 1,000 tokens for one provider.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
	Decimals    int // cost is rounded to this many decimal places
}

var pricingTable = map[string]Pricing{
	ProviderGroq:   {InputPer1K: 0.0001, OutputPer1K: 0.0002, Decimals: 6},
	ProviderClaude: {InputPer1K: 0.003, OutputPer1K: 0.015, Decimals: 4},
}

// PricingFor returns the rates for provider. Unknown providers cost nothing.
func PricingFor(provider string) Pricing {
	if p, ok := pricingTable[provider]; ok {
		return p
	}
	return Pricing{Decimals: 6}
}

// Cost computes the rounded USD cost of the given token counts.
func (p Pricing) Cost(inputTokens, outputTokens int64) float64 {
	cost := float64(inputTokens)/1000*p.InputPer1K + float64(outputTokens)/1000*p.OutputPer1K
	scale := math.Pow(10, float64(p.Decimals))
	return math.Round(cost*scale) / scale
}

// TokenUsageTracker accumulates token counts across calls on one client.
// Safe for concurrent use.
type TokenUsageTracker struct {
	mu      sync.Mutex
	pricing Pricing
	input   int64
	output  int64
}

// NewTokenUsageTracker creates a tracker priced with p.
func NewTokenUsageTracker(p Pricing) *TokenUsageTracker {
	return &TokenUsageTracker{pricing: p}
}

// Record adds one call's token counts.
func (t *TokenUsageTracker) Record(inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input += int64(inputTokens)
	t.output += int64(outputTokens)
}

// Stats returns a snapshot of the accumulated usage and its cost.
func (t *TokenUsageTracker) Stats() models.TokenStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.TokenStats{
		InputTokens:      t.input,
		OutputTokens:     t.output,
		TotalTokens:      t.input + t.output,
		EstimatedCostUSD: t.pricing.Cost(t.input, t.output),
	}
}

// Reset zeroes the counters.
func (t *TokenUsageTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input, t.output = 0, 0
}
