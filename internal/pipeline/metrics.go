// Package pipeline runs the profile analysis: three inference-backed steps
// that each degrade to a fixed fallback, followed by the rule engines in
// package analysis.
package pipeline

import "context"

// Fallback component names used in logs and metrics
const (
	ComponentSummary   = "summary"
	ComponentKeywords  = "keywords"
	ComponentSentiment = "sentiment"
)

// Metrics receives pipeline outcomes. Implemented by observability.Metrics.
type Metrics interface {
	RecordFallback(ctx context.Context, component string)
	RecordProfileAnalyzed(ctx context.Context, score int)
}

func recordFallback(m Metrics, ctx context.Context, component string) {
	if m != nil {
		m.RecordFallback(ctx, component)
	}
}
