package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	providerGemini     = "gemini"
	defaultGeminiModel = "gemini-2.0-flash"
)

// NewGeminiGateway creates a Gateway backed by Google Gemini
func NewGeminiGateway(ctx context.Context, cfg config.InferenceConfig, recorder CallRecorder, logger *errors.Logger) (Gateway, error) {
	model := cfg.LLMModel
	if model == "" {
		model = defaultGeminiModel
	}

	gw := &llmGateway{
		provider:      providerGemini,
		apiKey:        cfg.APIKey,
		tasks:         taskMap(cfg.Models),
		maxTextLength: cfg.MaxTextLength,
		recorder:      recorder,
		logger:        logger,
	}
	if cfg.APIKey == "" {
		// Calls fail with MISSING_API_KEY before reaching the client
		gw.complete = func(context.Context, string, llmTask) (string, error) { return "", nil }
		return gw, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeInferenceRequestFailed, "Failed to create Gemini client", err)
	}

	gw.complete = func(ctx context.Context, prompt string, task llmTask) (string, error) {
		result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), geminiConfig(task))
		if err != nil {
			return "", classifyGeminiError(err)
		}
		return result.Text(), nil
	}
	return gw, nil
}

func geminiConfig(task llmTask) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(task),
	}
}

func geminiSchema(task llmTask) *genai.Schema {
	switch task {
	case llmSummary:
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary_text": {Type: genai.TypeString},
			},
			Required: []string{"summary_text"},
		}
	case llmSentiment:
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"stars":      {Type: genai.TypeInteger},
				"confidence": {Type: genai.TypeNumber},
			},
			Required: []string{"stars", "confidence"},
		}
	default:
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"keywords": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"keywords"},
		}
	}
}

// classifyGeminiError maps client failures onto gateway error codes
func classifyGeminiError(err error) error {
	status := 0

	var genaiErr genai.APIError
	var apiErr *googleapi.Error
	switch {
	case stderrors.As(err, &genaiErr):
		status = genaiErr.Code
	case stderrors.As(err, &apiErr):
		status = apiErr.Code
	default:
		return errors.NewNetworkError(errors.ErrCodeNetworkFailure, "Gemini request failed", err)
	}

	return statusError(providerGemini, status, err)
}

// statusError builds the typed failure for a non-success upstream status
func statusError(provider string, status int, cause error) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return errors.NewAIError(errors.ErrCodeInferenceAuthFailed,
			fmt.Sprintf("Invalid %s API key", provider), cause).
			WithContext("status", status)
	}
	return errors.NewAIError(errors.ErrCodeInferenceRequestFailed,
		fmt.Sprintf("API request failed: %v", cause), cause).
		WithContext("status", status)
}
