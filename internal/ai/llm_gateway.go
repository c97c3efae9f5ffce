package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// completeFunc sends one prompt to a generative model and returns its text reply
type completeFunc func(ctx context.Context, prompt string, task llmTask) (string, error)

// llmGateway answers gateway calls with a general-purpose LLM. The configured
// model IDs only select the task; the reply is rewritten into the JSON shape
// the hosted inference models return so the pipeline stays backend agnostic.
type llmGateway struct {
	provider      string
	apiKey        string
	tasks         map[string]llmTask
	maxTextLength int
	complete      completeFunc
	recorder      CallRecorder
	logger        *errors.Logger
}

// taskMap maps each configured model ID to the task it stands for. A model
// listed for more than one task keeps the last assignment.
func taskMap(models config.ModelsConfig) map[string]llmTask {
	tasks := make(map[string]llmTask, len(models.Keywords)+2)
	for _, model := range models.Keywords {
		tasks[model] = llmKeywords
	}
	tasks[models.Summary] = llmSummary
	tasks[models.Sentiment] = llmSentiment
	return tasks
}

func (g *llmGateway) Call(ctx context.Context, text, modelID string, _ TaskHint) (json.RawMessage, error) {
	if g.apiKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "inference API key not configured", nil)
	}

	task, ok := g.tasks[modelID]
	if !ok {
		return nil, errors.NewAIError(errors.ErrCodeInferenceRequestFailed,
			fmt.Sprintf("no task configured for model %s", modelID), nil).
			WithContext("provider", g.provider)
	}

	tracer := otel.Tracer("profilelens.ai." + g.provider)
	ctx, span := tracer.Start(ctx, g.provider+".call")
	defer span.End()

	truncated := truncate(text, g.maxTextLength)
	span.SetAttributes(
		attribute.String("ai.provider", g.provider),
		attribute.String("ai.model", modelID),
		attribute.String("ai.task", task.String()),
		attribute.Int("input.length", len(truncated)),
	)

	started := time.Now()
	reply, err := g.complete(ctx, fmt.Sprintf(userPrompts[task], truncated), task)
	var body json.RawMessage
	if err == nil {
		body, err = toInferenceShape(task, reply)
	}
	record(g.recorder, ctx, g.provider, modelID, started, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inference call failed")
		g.logger.LogError(err, "Inference call failed", "provider", g.provider, "model", modelID)
		return nil, err
	}
	return body, nil
}

type summaryReply struct {
	SummaryText string `json:"summary_text"`
}

type sentimentReply struct {
	Stars      int     `json:"stars"`
	Confidence float64 `json:"confidence"`
}

type keywordReply struct {
	Keywords []string `json:"keywords"`
}

// sentimentLabel mirrors the star labels of the hosted sentiment model
type sentimentLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type keywordEntity struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// toInferenceShape converts an LLM reply into the hosted model response shape
func toInferenceShape(task llmTask, reply string) (json.RawMessage, error) {
	data := []byte(stripCodeFence(reply))

	var shaped any
	switch task {
	case llmSummary:
		var r summaryReply
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, invalidReply(task, err)
		}
		shaped = []summaryReply{r}
	case llmSentiment:
		var r sentimentReply
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, invalidReply(task, err)
		}
		stars := min(max(r.Stars, 1), 5)
		label := fmt.Sprintf("%d stars", stars)
		if stars == 1 {
			label = "1 star"
		}
		shaped = []sentimentLabel{{Label: label, Score: r.Confidence}}
	case llmKeywords:
		var r keywordReply
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, invalidReply(task, err)
		}
		entities := make([]keywordEntity, 0, len(r.Keywords))
		for _, word := range r.Keywords {
			if word = strings.TrimSpace(word); word != "" {
				entities = append(entities, keywordEntity{Word: word, Score: 1})
			}
		}
		shaped = entities
	default:
		return nil, invalidReply(task, fmt.Errorf("unsupported task"))
	}

	body, err := json.Marshal(shaped)
	if err != nil {
		return nil, invalidReply(task, err)
	}
	return body, nil
}

func invalidReply(task llmTask, err error) error {
	return errors.NewAIError(errors.ErrCodeInferenceResponseInvalid, "model reply is not the expected JSON", err).
		WithContext("task", task.String())
}

// stripCodeFence removes a surrounding ```json fence some models add
func stripCodeFence(reply string) string {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, "```") {
		return reply
	}
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimPrefix(reply, "json")
	reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
	return strings.TrimSpace(reply)
}
