package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"profilelens/internal/ai"
	"profilelens/internal/errors"
	"profilelens/internal/types"
)

// DefaultVocabulary is used when every extraction call came back empty or failed
var DefaultVocabulary = []string{
	"leadership", "management", "project", "team", "communication",
	"technical", "development", "analytics", "strategy", "innovation",
	"problem-solving", "collaboration", "planning", "execution",
}

// SystemicFallback is used when aggregation itself fails
var SystemicFallback = []string{"leadership", "management", "project", "team", "communication"}

// KeywordAggregator extracts keywords from every profile section with every
// candidate model and merges the results
type KeywordAggregator struct {
	gateway ai.Gateway
	models  []string
	metrics Metrics
	logger  *errors.Logger
}

// NewKeywordAggregator creates an aggregator. models is used as given,
// repeated entries included.
func NewKeywordAggregator(gateway ai.Gateway, models []string, metrics Metrics, logger *errors.Logger) *KeywordAggregator {
	return &KeywordAggregator{gateway: gateway, models: models, metrics: metrics, logger: logger}
}

// Extract makes one call per (section, model) pair in order. Failed calls are
// logged and skipped. The result is never empty.
func (k *KeywordAggregator) Extract(ctx context.Context, sections []types.Section) (keywords types.KeywordSet) {
	defer func() {
		if r := recover(); r != nil {
			k.logger.Warn("Keyword extraction aborted", "panic", fmt.Sprint(r))
			recordFallback(k.metrics, ctx, ComponentKeywords)
			keywords = types.NewKeywordSet(SystemicFallback...)
		}
	}()

	if k.gateway == nil {
		panic("keyword aggregator has no gateway")
	}

	keywords = types.NewKeywordSet()
	for _, section := range sections {
		for _, model := range k.models {
			body, err := k.gateway.Call(ctx, section.Text, model, ai.TaskTextGeneration)
			if err != nil {
				k.logger.LogError(err, "Keyword extraction failed",
					"model", model,
					"section", section.Name)
				continue
			}
			for _, word := range parseKeywords(body) {
				keywords.Add(word)
			}
		}
	}

	if keywords.Len() == 0 {
		k.logger.Debug("No keywords extracted, using default vocabulary")
		recordFallback(k.metrics, ctx, ComponentKeywords)
		return types.NewKeywordSet(DefaultVocabulary...)
	}
	return keywords
}

// parseKeywords reads a keyword reply. An array starting with an object that
// has a "word" field yields the word of every object in it; an array starting
// with a string yields that string. Anything else yields nothing.
func parseKeywords(body json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || len(items) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(items[0], &text); err == nil {
		return []string{text}
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return nil
	}
	if _, ok := first["word"]; !ok {
		return nil
	}

	words := make([]string, 0, len(items))
	for _, item := range items {
		var entity struct {
			Word *string `json:"word"`
		}
		if err := json.Unmarshal(item, &entity); err == nil && entity.Word != nil {
			words = append(words, *entity.Word)
		}
	}
	return words
}
