package ai

import (
	"context"
	"fmt"
	"testing"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModels = config.ModelsConfig{
	Summary:   "sum-model",
	Sentiment: "sent-model",
	Keywords:  []string{"kw-a", "kw-b", "kw-a"},
}

func TestToInferenceShape(t *testing.T) {
	tests := []struct {
		name     string
		task     llmTask
		reply    string
		expected string
	}{
		{
			name:     "summary",
			task:     llmSummary,
			reply:    `{"summary_text": "Seasoned platform engineer."}`,
			expected: `[{"summary_text": "Seasoned platform engineer."}]`,
		},
		{
			name:     "summary in code fence",
			task:     llmSummary,
			reply:    "```json\n{\"summary_text\": \"Fenced.\"}\n```",
			expected: `[{"summary_text": "Fenced."}]`,
		},
		{
			name:     "sentiment",
			task:     llmSentiment,
			reply:    `{"stars": 4, "confidence": 0.8}`,
			expected: `[{"label": "4 stars", "score": 0.8}]`,
		},
		{
			name:     "sentiment singular and clamped",
			task:     llmSentiment,
			reply:    `{"stars": -3, "confidence": 0.5}`,
			expected: `[{"label": "1 star", "score": 0.5}]`,
		},
		{
			name:     "sentiment clamped high",
			task:     llmSentiment,
			reply:    `{"stars": 9, "confidence": 1}`,
			expected: `[{"label": "5 stars", "score": 1}]`,
		},
		{
			name:     "keywords",
			task:     llmKeywords,
			reply:    `{"keywords": ["kubernetes", " ", "go"]}`,
			expected: `[{"word": "kubernetes", "score": 1}, {"word": "go", "score": 1}]`,
		},
		{
			name:     "no keywords",
			task:     llmKeywords,
			reply:    `{"keywords": []}`,
			expected: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := toInferenceShape(tt.task, tt.reply)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(body))
		})
	}
}

func TestToInferenceShapeRejectsProse(t *testing.T) {
	_, err := toInferenceShape(llmSummary, "Here is your summary: great profile")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceResponseInvalid))
}

func TestTaskMap(t *testing.T) {
	tasks := taskMap(testModels)
	assert.Equal(t, llmSummary, tasks["sum-model"])
	assert.Equal(t, llmSentiment, tasks["sent-model"])
	assert.Equal(t, llmKeywords, tasks["kw-a"])
	assert.Equal(t, llmKeywords, tasks["kw-b"])
	assert.Len(t, tasks, 4)
}

func newFakeLLM(reply string, err error) (*llmGateway, *[]string) {
	prompts := &[]string{}
	return &llmGateway{
		provider:      "fake",
		apiKey:        "key",
		tasks:         taskMap(testModels),
		maxTextLength: 10,
		logger:        errors.Discard(),
		complete: func(_ context.Context, prompt string, _ llmTask) (string, error) {
			*prompts = append(*prompts, prompt)
			return reply, err
		},
	}, prompts
}

func TestLLMGatewayCall(t *testing.T) {
	gw, prompts := newFakeLLM(`{"keywords": ["cloud"]}`, nil)

	body, err := gw.Call(context.Background(), "0123456789abcdef", "kw-b", TaskTextGeneration)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"word":"cloud","score":1}]`, string(body))

	require.Len(t, *prompts, 1)
	assert.Contains(t, (*prompts)[0], "0123456789")
	assert.NotContains(t, (*prompts)[0], "abcdef")
}

func TestLLMGatewayFailures(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		gw, prompts := newFakeLLM(`{}`, nil)
		gw.apiKey = ""
		_, err := gw.Call(context.Background(), "text", "sum-model", TaskStandard)
		assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))
		assert.Empty(t, *prompts)
	})

	t.Run("unknown model", func(t *testing.T) {
		gw, _ := newFakeLLM(`{}`, nil)
		_, err := gw.Call(context.Background(), "text", "other", TaskStandard)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceRequestFailed))
	})

	t.Run("backend error passes through", func(t *testing.T) {
		backendErr := statusError("fake", 401, fmt.Errorf("unauthorized"))
		gw, _ := newFakeLLM("", backendErr)
		_, err := gw.Call(context.Background(), "text", "sent-model", TaskStandard)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceAuthFailed))
	})
}

func TestStatusError(t *testing.T) {
	cause := fmt.Errorf("upstream said no")

	for _, status := range []int{401, 403} {
		err := statusError("gemini", status, cause)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceAuthFailed))
		assert.Contains(t, err.Error(), "Invalid gemini API key")
	}

	err := statusError("claude", 529, cause)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceRequestFailed))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 529, appErr.Context["status"])
}

func TestClassifyNonAPIErrors(t *testing.T) {
	assert.True(t, errors.HasCode(classifyClaudeError(fmt.Errorf("dial tcp: refused")), errors.ErrCodeNetworkFailure))
	assert.True(t, errors.HasCode(classifyGeminiError(fmt.Errorf("dial tcp: refused")), errors.ErrCodeNetworkFailure))
}

func TestNewServiceProviders(t *testing.T) {
	base := config.InferenceConfig{
		BaseURL:       "http://localhost:1",
		MaxTextLength: 1024,
		Models:        testModels,
	}

	hf := base
	hf.Provider = "huggingface"
	svc, err := NewService(context.Background(), hf, nil, errors.Discard())
	require.NoError(t, err)
	assert.IsType(t, &HuggingFaceGateway{}, svc.Gateway)
	assert.Equal(t, "huggingface", svc.Provider)
	assert.Equal(t, true, svc.Stats()["healthy"])

	claude := base
	claude.Provider = "claude"
	svc, err = NewService(context.Background(), claude, nil, errors.Discard())
	require.NoError(t, err)
	_, err = svc.Gateway.Call(context.Background(), "text", "sum-model", TaskStandard)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))

	gemini := base
	gemini.Provider = "gemini"
	svc, err = NewService(context.Background(), gemini, nil, errors.Discard())
	require.NoError(t, err)
	_, err = svc.Gateway.Call(context.Background(), "text", "sum-model", TaskStandard)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))

	breaker := base
	breaker.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MinRequests: 1, FailureThreshold: 1}
	svc, err = NewService(context.Background(), breaker, nil, errors.Discard())
	require.NoError(t, err)
	assert.IsType(t, &BreakerGateway{}, svc.Gateway)

	unknown := base
	unknown.Provider = "openai"
	_, err = NewService(context.Background(), unknown, nil, errors.Discard())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}
