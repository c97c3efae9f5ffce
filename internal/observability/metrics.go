package observability

import (
	"context"
	"fmt"
	"time"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for profilelens. It implements
// ai.CallRecorder and pipeline.Metrics; every method is a no-op on a nil
// receiver.
type Metrics struct {
	// Inference gateway metrics
	InferenceRequests metric.Int64Counter
	InferenceErrors   metric.Int64Counter
	InferenceDuration metric.Float64Histogram

	// Pipeline metrics
	ProfilesAnalyzed metric.Int64Counter
	Fallbacks        metric.Int64Counter
	ProfileScore     metric.Int64Histogram

	// Infrastructure metrics
	RateLimitHits   metric.Int64Counter
	CertReloadCount metric.Int64Counter

	switches config.CustomMetricsConfig
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter, switches config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{switches: switches}

	if err := m.createInferenceMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createPipelineMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createInfrastructureMetrics(meter); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) createInferenceMetrics(meter metric.Meter) error {
	var err error

	m.InferenceRequests, err = meter.Int64Counter(
		"profilelens_inference_requests_total",
		metric.WithDescription("Total number of inference gateway calls"),
	)
	if err != nil {
		return fmt.Errorf("failed to create inference request count metric: %w", err)
	}

	m.InferenceErrors, err = meter.Int64Counter(
		"profilelens_inference_errors_total",
		metric.WithDescription("Total number of failed inference gateway calls"),
	)
	if err != nil {
		return fmt.Errorf("failed to create inference error count metric: %w", err)
	}

	m.InferenceDuration, err = meter.Float64Histogram(
		"profilelens_inference_duration_seconds",
		metric.WithDescription("Time spent in inference gateway calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create inference duration metric: %w", err)
	}

	return nil
}

func (m *Metrics) createPipelineMetrics(meter metric.Meter) error {
	var err error

	m.ProfilesAnalyzed, err = meter.Int64Counter(
		"profilelens_profiles_analyzed_total",
		metric.WithDescription("Total number of profiles analyzed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create profiles analyzed metric: %w", err)
	}

	m.Fallbacks, err = meter.Int64Counter(
		"profilelens_fallbacks_total",
		metric.WithDescription("Pipeline steps that returned their fallback value"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fallback metric: %w", err)
	}

	m.ProfileScore, err = meter.Int64Histogram(
		"profilelens_profile_score",
		metric.WithDescription("Distribution of profile scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create profile score metric: %w", err)
	}

	return nil
}

func (m *Metrics) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	m.RateLimitHits, err = meter.Int64Counter(
		"profilelens_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	m.CertReloadCount, err = meter.Int64Counter(
		"profilelens_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate reload count metric: %w", err)
	}

	return nil
}

// RecordInferenceCall counts one gateway call and its latency
func (m *Metrics) RecordInferenceCall(ctx context.Context, provider, modelID string, duration time.Duration, err error) {
	if m == nil || !m.switches.Inference.Enabled {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("model", modelID),
		attribute.Bool("success", err == nil),
	}

	m.InferenceRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	if m.switches.Inference.TrackDuration {
		m.InferenceDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	if err != nil {
		m.InferenceErrors.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("code", errorCode(err)))...))
	}
}

// RecordFallback counts a pipeline step that degraded to its fallback
func (m *Metrics) RecordFallback(ctx context.Context, component string) {
	if m == nil || !m.switches.Pipeline.Enabled || !m.switches.Pipeline.TrackFallbacks {
		return
	}
	m.Fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}

// RecordProfileAnalyzed counts a completed analysis and its score
func (m *Metrics) RecordProfileAnalyzed(ctx context.Context, score int) {
	if m == nil || !m.switches.Pipeline.Enabled {
		return
	}
	m.ProfilesAnalyzed.Add(ctx, 1)
	m.ProfileScore.Record(ctx, int64(score))
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, path string) {
	if m == nil || !m.switches.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
}

// RecordCertReload counts a certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

func errorCode(err error) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}
