package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"profilelens/internal/ai"
	"profilelens/internal/errors"
)

// NeutralSentiment is used whenever no rating could be read
const NeutralSentiment = 3.0

// SentimentScorer rates the tone of the profile on a 1 to 5 scale
type SentimentScorer struct {
	gateway ai.Gateway
	model   string
	metrics Metrics
	logger  *errors.Logger
}

// NewSentimentScorer creates a SentimentScorer calling model through gateway
func NewSentimentScorer(gateway ai.Gateway, model string, metrics Metrics, logger *errors.Logger) *SentimentScorer {
	return &SentimentScorer{gateway: gateway, model: model, metrics: metrics, logger: logger}
}

// Score returns the leading number of the first sentiment label, such as 4
// for "4 stars", or NeutralSentiment on any failure
func (s *SentimentScorer) Score(ctx context.Context, combinedText string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Sentiment analysis panicked", "panic", r)
			score = s.fallback(ctx)
		}
	}()

	body, err := s.gateway.Call(ctx, combinedText, s.model, ai.TaskTextGeneration)
	if err != nil {
		s.logger.LogError(err, "Sentiment analysis failed", "model", s.model)
		return s.fallback(ctx)
	}

	rating, err := parseSentiment(body)
	if err != nil {
		s.logger.Warn("Sentiment label not understood", "model", s.model, "error", err.Error())
		return s.fallback(ctx)
	}
	return rating
}

func (s *SentimentScorer) fallback(ctx context.Context) float64 {
	recordFallback(s.metrics, ctx, ComponentSentiment)
	return NeutralSentiment
}

type sentimentLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// parseSentiment accepts [{"label": ...}] and the nested [[{"label": ...}]]
// form text-classification models return
func parseSentiment(body json.RawMessage) (float64, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("empty sentiment response")
	}

	first := items[0]
	var nested []json.RawMessage
	if err := json.Unmarshal(first, &nested); err == nil {
		if len(nested) == 0 {
			return 0, fmt.Errorf("empty sentiment label list")
		}
		first = nested[0]
	}

	var label sentimentLabel
	if err := json.Unmarshal(first, &label); err != nil {
		return 0, err
	}

	fields := strings.Fields(label.Label)
	if len(fields) == 0 {
		return 0, fmt.Errorf("sentiment label is empty")
	}
	return strconv.ParseFloat(fields[0], 64)
}
