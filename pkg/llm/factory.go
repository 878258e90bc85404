package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
)

// NewTextGenerator creates the client for cfg.Provider, wrapped in a circuit
// breaker when breaker.Threshold is positive.
func NewTextGenerator(cfg *Config, breaker CircuitBreakerConfig, logger *zap.Logger) (TextGenerator, error) {
	var (
		gen TextGenerator
		err error
	)

	switch cfg.Provider {
	case ProviderGroq, "":
		gen, err = NewClient(cfg, logger)
	case ProviderClaude:
		gen, err = NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	if breaker.Threshold > 0 {
		return NewGuardedClient(gen, NewCircuitBreaker(breaker), logger), nil
	}
	return gen, nil
}
