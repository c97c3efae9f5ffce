package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards gateway calls. A nil *CircuitBreaker passes every
// call straight through.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewCircuitBreaker returns nil when the breaker is disabled
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		// Bad credentials and caller cancellations say nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.HasCode(err, errors.ErrCodeMissingAPIKey) ||
				errors.HasCode(err, errors.ErrCodeInferenceAuthFailed) ||
				stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[json.RawMessage](settings)}
}

// Execute runs fn under breaker protection. Rejections caused by an open
// breaker come back as CIRCUIT_OPEN errors.
func (cb *CircuitBreaker) Execute(fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewAIError(errors.ErrCodeCircuitOpen, "inference circuit breaker is open", err).
			WithContext("breaker", cb.cb.Name())
	}
	return result, err
}

// GetStats returns circuit breaker statistics
func (cb *CircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *CircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}

// BreakerGateway wraps a Gateway with a CircuitBreaker
type BreakerGateway struct {
	next    Gateway
	breaker *CircuitBreaker
}

var _ Gateway = (*BreakerGateway)(nil)

// WithCircuitBreaker wraps gw. With a nil breaker gw is returned unchanged.
func WithCircuitBreaker(gw Gateway, breaker *CircuitBreaker) Gateway {
	if breaker == nil {
		return gw
	}
	return &BreakerGateway{next: gw, breaker: breaker}
}

func (b *BreakerGateway) Call(ctx context.Context, text, modelID string, task TaskHint) (json.RawMessage, error) {
	return b.breaker.Execute(func() (json.RawMessage, error) {
		return b.next.Call(ctx, text, modelID, task)
	})
}

// Breaker exposes the wrapped breaker for health and stats endpoints
func (b *BreakerGateway) Breaker() *CircuitBreaker {
	return b.breaker
}
