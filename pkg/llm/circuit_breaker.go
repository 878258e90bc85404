package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	// CircuitClosed means calls reach the provider.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the provider is considered down and calls fail fast.
	CircuitOpen
	// CircuitHalfOpen means a single probe call is in flight.
	CircuitHalfOpen
)

// String returns a human-readable string for the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
// NewTextGenerator skips the breaker entirely when Threshold is zero.
type CircuitBreakerConfig struct {
	// Threshold is the number of consecutive failed generations before the circuit trips.
	Threshold int
	// ResetAfter is how long the circuit stays open before a probe is allowed.
	ResetAfter time.Duration
}

// DefaultCircuitBreakerConfig trips after 5 consecutive failed generations
// and probes again after 30 seconds.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold:  5,
		ResetAfter: 30 * time.Second,
	}
}

// CircuitBreaker stops calling a provider that keeps failing so requests go
// straight to the rule-based fallback instead of waiting out retries.
type CircuitBreaker struct {
	mu               sync.Mutex
	consecutiveFails int
	threshold        int
	resetAfter       time.Duration
	lastFailure      time.Time
	state            CircuitState
	now              func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:  config.Threshold,
		resetAfter: config.ResetAfter,
		state:      CircuitClosed,
		now:        time.Now,
	}
}

// Allow reports whether a call may proceed. The returned error wraps
// apperrors.ErrProviderUnavailable.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailure) > cb.resetAfter {
			cb.state = CircuitHalfOpen
			return nil
		}
		return fmt.Errorf("%w: circuit open after %d consecutive failures",
			apperrors.ErrProviderUnavailable, cb.consecutiveFails)
	default:
		return fmt.Errorf("%w: circuit half-open, probe in flight", apperrors.ErrProviderUnavailable)
	}
}

// RecordSuccess resets the failure count and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails = 0
	cb.state = CircuitClosed
}

// RecordFailure increments the failure count and trips the circuit if threshold is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails++
	cb.lastFailure = cb.now()

	if cb.state == CircuitHalfOpen || cb.consecutiveFails >= cb.threshold {
		cb.state = CircuitOpen
	}
}

// abandonProbe returns a half-open circuit to open without counting a
// failure, so the next call may probe again.
func (cb *CircuitBreaker) abandonProbe() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the current count of consecutive failures.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.consecutiveFails
}

// GuardedClient wraps a TextGenerator with a circuit breaker.
type GuardedClient struct {
	TextGenerator
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewGuardedClient wraps gen. Cancellations do not count as provider failures.
func NewGuardedClient(gen TextGenerator, breaker *CircuitBreaker, logger *zap.Logger) *GuardedClient {
	return &GuardedClient{
		TextGenerator: gen,
		breaker:       breaker,
		logger:        logger.Named("llm"),
	}
}

// Generate implements TextGenerator.
func (g *GuardedClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	if err := g.breaker.Allow(); err != nil {
		g.logger.Warn("Skipping model call", zap.String("provider", g.Provider()), zap.Error(err))
		return "", err
	}

	text, err := g.TextGenerator.Generate(ctx, prompt, opts...)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			g.breaker.abandonProbe()
			return "", err
		}
		g.breaker.RecordFailure()
		if g.breaker.State() == CircuitOpen {
			g.logger.Warn("Circuit opened for provider",
				zap.String("provider", g.Provider()),
				zap.Int("consecutive_failures", g.breaker.ConsecutiveFailures()))
		}
		return "", err
	}

	g.breaker.RecordSuccess()
	return text, nil
}

var _ TextGenerator = (*GuardedClient)(nil)
