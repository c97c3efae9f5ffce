package ai

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGateway struct {
	calls int
	err   error
	reply json.RawMessage
}

func (s *scriptedGateway) Call(context.Context, string, string, TaskHint) (json.RawMessage, error) {
	s.calls++
	return s.reply, s.err
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestDisabledCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test", config.CircuitBreakerConfig{Enabled: false}, nil)
	assert.Nil(t, cb)
	assert.True(t, cb.IsHealthy())
	assert.Equal(t, map[string]any{"enabled": false}, cb.GetStats())

	gw := &scriptedGateway{reply: json.RawMessage(`[]`)}
	assert.Same(t, gw, WithCircuitBreaker(gw, cb))
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewCircuitBreaker("inference-huggingface", breakerConfig(), errors.Discard())
	require.NotNil(t, cb)

	stats := cb.GetStats()
	assert.Equal(t, "inference-huggingface", stats["name"])
	assert.Equal(t, "closed", stats["state"])
	assert.Equal(t, true, stats["enabled"])
	assert.True(t, cb.IsHealthy())
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", breakerConfig(), errors.Discard())
	upstream := &scriptedGateway{err: errors.NewAIError(errors.ErrCodeInferenceRequestFailed, "503", nil)}
	gw := WithCircuitBreaker(upstream, cb)

	for range 2 {
		_, err := gw.Call(context.Background(), "text", "model", TaskStandard)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceRequestFailed))
	}

	_, err := gw.Call(context.Background(), "text", "model", TaskStandard)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCircuitOpen))
	assert.Equal(t, 2, upstream.calls)
	assert.False(t, cb.IsHealthy())
	assert.Equal(t, "open", cb.GetStats()["state"])
}

func TestCircuitBreakerIgnoresCredentialFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", breakerConfig(), errors.Discard())
	upstream := &scriptedGateway{err: errors.NewAIError(errors.ErrCodeInferenceAuthFailed, "Invalid inference API key", nil)}
	gw := WithCircuitBreaker(upstream, cb)

	for range 4 {
		_, err := gw.Call(context.Background(), "text", "model", TaskStandard)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceAuthFailed))
	}
	assert.Equal(t, 4, upstream.calls)
	assert.True(t, cb.IsHealthy())
}

func TestCircuitBreakerPassesReplies(t *testing.T) {
	cb := NewCircuitBreaker("test", breakerConfig(), errors.Discard())
	gw := WithCircuitBreaker(&scriptedGateway{reply: json.RawMessage(`[{"word":"go"}]`)}, cb)

	body, err := gw.Call(context.Background(), "text", "model", TaskStandard)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"word":"go"}]`, string(body))

	wrapped, ok := gw.(*BreakerGateway)
	require.True(t, ok)
	assert.Same(t, cb, wrapped.Breaker())
}
