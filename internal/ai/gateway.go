package ai

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"
)

// TaskHint selects the request parameters sent with a call
type TaskHint int

const (
	// TaskTextGeneration asks for short generative output (max_length 200, 3 sequences)
	TaskTextGeneration TaskHint = iota
	// TaskStandard sends the plain max_length/truncation parameters
	TaskStandard
)

func (t TaskHint) String() string {
	switch t {
	case TaskTextGeneration:
		return "text-generation"
	case TaskStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// DefaultMaxTextLength is the number of characters sent per call
const DefaultMaxTextLength = 1024

// Gateway performs a single inference call and returns the service's raw JSON
// reply. Failures are *errors.AppError values.
type Gateway interface {
	Call(ctx context.Context, text, modelID string, task TaskHint) (json.RawMessage, error)
}

// CallRecorder receives one record per gateway call. Implemented by
// observability.Metrics.
type CallRecorder interface {
	RecordInferenceCall(ctx context.Context, provider, modelID string, duration time.Duration, err error)
}

// truncate cuts text to at most limit characters
func truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

func record(recorder CallRecorder, ctx context.Context, provider, modelID string, started time.Time, err error) {
	if recorder == nil {
		return
	}
	recorder.RecordInferenceCall(ctx, provider, modelID, time.Since(started), err)
}
