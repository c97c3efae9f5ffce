package pipeline

import (
	"context"
	"strings"
	"time"

	"profilelens/internal/ai"
	"profilelens/internal/analysis"
	"profilelens/internal/config"
	"profilelens/internal/errors"
	"profilelens/internal/types"
)

// Credential is the inference service key. It is injected at construction
// rather than read from the environment on each request.
type Credential string

// Present reports whether a non-blank key was supplied
func (c Credential) Present() bool {
	return strings.TrimSpace(string(c)) != ""
}

// Options configures an Orchestrator
type Options struct {
	Credential Credential
	Gateway    ai.Gateway
	Models     config.ModelsConfig
	Metrics    Metrics
	Logger     *errors.Logger
}

// Orchestrator sequences the pipeline steps for one profile at a time. It
// holds only read-only state and is safe for concurrent use.
type Orchestrator struct {
	credential Credential
	summarizer *Summarizer
	keywords   *KeywordAggregator
	sentiment  *SentimentScorer
	metrics    Metrics
	logger     *errors.Logger
}

// NewOrchestrator wires the summarizer, keyword aggregator and sentiment
// scorer around a shared gateway
func NewOrchestrator(opts Options) *Orchestrator {
	models := make([]string, len(opts.Models.Keywords))
	copy(models, opts.Models.Keywords)

	return &Orchestrator{
		credential: opts.Credential,
		summarizer: NewSummarizer(opts.Gateway, opts.Models.Summary, opts.Metrics, opts.Logger),
		keywords:   NewKeywordAggregator(opts.Gateway, models, opts.Metrics, opts.Logger),
		sentiment:  NewSentimentScorer(opts.Gateway, opts.Models.Sentiment, opts.Metrics, opts.Logger),
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

// AnalyzeProfile runs the full analysis. The only error it returns is
// MISSING_API_KEY when no credential was configured; every other failure
// degrades to the affected step's fallback.
func (o *Orchestrator) AnalyzeProfile(ctx context.Context, input types.ProfileInput) (*types.AnalysisResult, error) {
	if !o.credential.Present() {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "API key not configured", nil)
	}

	started := time.Now()
	combined := input.CombinedText()

	summary := o.summarizer.Summarize(ctx, combined)
	keywords := o.keywords.Extract(ctx, input.Sections())
	sentiment := o.sentiment.Score(ctx, combined)

	strengths, improvements := analysis.AnalyzeStrengthsAndImprovements(input, sentiment)
	score := analysis.CalculateProfileScore(input, strengths, improvements)
	suggestions := analysis.GenerateSuggestions(input, keywords)

	result := &types.AnalysisResult{
		Score:        score,
		Summary:      summary,
		Keywords:     keywords,
		Strengths:    strengths,
		Improvements: improvements,
		Suggestions:  suggestions,
	}

	if o.metrics != nil {
		o.metrics.RecordProfileAnalyzed(ctx, score)
	}
	o.logger.Info("Profile analyzed",
		"score", score,
		"sentiment", sentiment,
		"keywords", keywords.Len(),
		"strengths", len(strengths),
		"improvements", len(improvements),
		"duration_ms", time.Since(started).Milliseconds())

	return result, nil
}
