package pipeline

import (
	"context"
	"encoding/json"

	"profilelens/internal/ai"
	"profilelens/internal/errors"
)

// SummaryFallback is returned whenever no summary could be produced
const SummaryFallback = "Unable to generate summary"

// Summarizer asks the summary model for a short summary of the profile
type Summarizer struct {
	gateway ai.Gateway
	model   string
	metrics Metrics
	logger  *errors.Logger
}

// NewSummarizer creates a Summarizer calling model through gateway
func NewSummarizer(gateway ai.Gateway, model string, metrics Metrics, logger *errors.Logger) *Summarizer {
	return &Summarizer{gateway: gateway, model: model, metrics: metrics, logger: logger}
}

// Summarize returns the generated summary of combinedText or SummaryFallback
func (s *Summarizer) Summarize(ctx context.Context, combinedText string) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Summarization panicked", "panic", r)
			summary = s.fallback(ctx)
		}
	}()

	body, err := s.gateway.Call(ctx, combinedText, s.model, ai.TaskTextGeneration)
	if err != nil {
		s.logger.LogError(err, "Summarization failed", "model", s.model)
		return s.fallback(ctx)
	}

	text := parseSummary(body)
	if text == "" {
		s.logger.Warn("Summarization returned no text", "model", s.model)
		return s.fallback(ctx)
	}
	return text
}

func (s *Summarizer) fallback(ctx context.Context) string {
	recordFallback(s.metrics, ctx, ComponentSummary)
	return SummaryFallback
}

// summaryItem covers both summarization and text-generation replies
type summaryItem struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// parseSummary returns the first element's text of a
// [{"summary_text": ...}] reply as the model produced it
func parseSummary(body json.RawMessage) string {
	var items []summaryItem
	if err := json.Unmarshal(body, &items); err != nil || len(items) == 0 {
		return ""
	}
	if items[0].SummaryText != "" {
		return items[0].SummaryText
	}
	return items[0].GeneratedText
}
