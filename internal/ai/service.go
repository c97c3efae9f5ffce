package ai

import (
	"context"
	"fmt"

	"profilelens/internal/config"
	"profilelens/internal/errors"
)

// Service bundles the configured gateway with its optional circuit breaker
type Service struct {
	Gateway  Gateway
	Breaker  *CircuitBreaker
	Provider string
	logger   *errors.Logger
}

// NewService builds the gateway for cfg.Provider and wraps it with a circuit
// breaker when one is enabled
func NewService(ctx context.Context, cfg config.InferenceConfig, recorder CallRecorder, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing inference gateway",
		"provider", cfg.Provider,
		"base_url", cfg.BaseURL,
		"llm_model", cfg.LLMModel,
		"timeout", cfg.Timeout,
		"max_text_length", cfg.MaxTextLength,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	var gateway Gateway
	switch cfg.Provider {
	case providerHuggingFace, "":
		gateway = NewHuggingFaceGateway(HuggingFaceOptions{
			BaseURL:       cfg.BaseURL,
			APIKey:        cfg.APIKey,
			MaxTextLength: cfg.MaxTextLength,
			Timeout:       cfg.Timeout,
			Recorder:      recorder,
		}, logger)
	case providerGemini:
		gw, err := NewGeminiGateway(ctx, cfg, recorder, logger)
		if err != nil {
			return nil, err
		}
		gateway = gw
	case providerClaude:
		gateway = NewClaudeGateway(cfg, recorder, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported inference provider: %s", cfg.Provider), nil)
	}

	breaker := NewCircuitBreaker("inference-"+providerName(cfg.Provider), cfg.CircuitBreaker, logger)

	return &Service{
		Gateway:  WithCircuitBreaker(gateway, breaker),
		Breaker:  breaker,
		Provider: providerName(cfg.Provider),
		logger:   logger,
	}, nil
}

// Stats reports gateway health for the stats endpoint
func (s *Service) Stats() map[string]any {
	return map[string]any{
		"provider":        s.Provider,
		"circuit_breaker": s.Breaker.GetStats(),
		"healthy":         s.Breaker.IsHealthy(),
	}
}

func providerName(provider string) string {
	if provider == "" {
		return providerHuggingFace
	}
	return provider
}
