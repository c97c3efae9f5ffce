package pipeline

import (
	"context"

	"profilelens/internal/ai"
	"profilelens/internal/config"
	"profilelens/internal/errors"
)

// Recorder is the metrics sink shared by the gateway and the pipeline
type Recorder interface {
	ai.CallRecorder
	Metrics
}

// NewFromConfig builds the inference service for cfg and an Orchestrator
// using it. The credential is taken from cfg.APIKey once, here.
func NewFromConfig(ctx context.Context, cfg config.InferenceConfig, recorder Recorder, logger *errors.Logger) (*Orchestrator, *ai.Service, error) {
	service, err := ai.NewService(ctx, cfg, recorder, logger)
	if err != nil {
		return nil, nil, err
	}

	orchestrator := NewOrchestrator(Options{
		Credential: Credential(cfg.APIKey),
		Gateway:    service.Gateway,
		Models:     cfg.Models,
		Metrics:    recorder,
		Logger:     logger,
	})
	return orchestrator, service, nil
}
