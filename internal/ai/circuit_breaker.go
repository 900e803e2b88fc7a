package ai

import (
	stderrors "errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"resumeimport/internal/config"
	"resumeimport/internal/errors"
)

// CircuitBreaker guards one kind of model call. A nil *CircuitBreaker
// runs calls directly, which is what a disabled breaker config produces.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewGenerateBreaker creates the breaker for content generation calls.
func NewGenerateBreaker(operation string, cfg *config.OperationAIConfig, logger *errors.Logger) *CircuitBreaker[*genai.GenerateContentResponse] {
	settings := cfg.CircuitBreaker
	return newCircuitBreaker[*genai.GenerateContentResponse](fmt.Sprintf("AI-%s", operation), settings, logger,
		func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureThreshold
		})
}

// NewModelBreaker creates the breaker for model lookups used by health checks.
// It trips later than the generate breaker since a failed lookup only degrades /health.
func NewModelBreaker(operation string, cfg *config.OperationAIConfig, logger *errors.Logger) *CircuitBreaker[*genai.Model] {
	return newCircuitBreaker[*genai.Model](fmt.Sprintf("AI-Model-%s", operation), cfg.CircuitBreaker, logger,
		func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.8
		})
}

func newCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger, trip func(gobreaker.Counts) bool) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: trip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn under the breaker. Rejections while open come back as
// CIRCUIT_OPEN errors.
func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	result, err := b.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return result, errors.NewAIError(errors.ErrCodeCircuitOpen, "AI circuit breaker is open", err).
			WithContext("breaker", b.cb.Name())
	}
	return result, err
}

// Stats reports the breaker state for /stats.
func (b *CircuitBreaker[T]) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is closed or absent.
func (b *CircuitBreaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
