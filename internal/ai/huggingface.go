package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profilelens/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const providerHuggingFace = "huggingface"

// inferenceRequest is the hosted inference API request body
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength          int     `json:"max_length"`
	Truncation         bool    `json:"truncation"`
	NumReturnSequences int     `json:"num_return_sequences,omitempty"`
	Temperature        float64 `json:"temperature,omitempty"`
}

func parametersFor(task TaskHint) inferenceParameters {
	params := inferenceParameters{MaxLength: 1024, Truncation: true}
	if task == TaskTextGeneration {
		params.MaxLength = 200
		params.NumReturnSequences = 3
		params.Temperature = 0.7
	}
	return params
}

// HuggingFaceGateway calls the hosted inference API over HTTP
type HuggingFaceGateway struct {
	baseURL       string
	apiKey        string
	maxTextLength int
	httpClient    *http.Client
	recorder      CallRecorder
	logger        *errors.Logger
}

var _ Gateway = (*HuggingFaceGateway)(nil)

// HuggingFaceOptions configures a HuggingFaceGateway
type HuggingFaceOptions struct {
	BaseURL       string
	APIKey        string
	MaxTextLength int
	// Timeout of zero keeps the transport default
	Timeout    time.Duration
	HTTPClient *http.Client
	Recorder   CallRecorder
}

// NewHuggingFaceGateway creates a gateway for the hosted inference API
func NewHuggingFaceGateway(opts HuggingFaceOptions, logger *errors.Logger) *HuggingFaceGateway {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	maxLen := opts.MaxTextLength
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLength
	}

	return &HuggingFaceGateway{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		apiKey:        opts.APIKey,
		maxTextLength: maxLen,
		httpClient:    client,
		recorder:      opts.Recorder,
		logger:        logger,
	}
}

// Call posts text to {baseURL}/{modelID}
func (g *HuggingFaceGateway) Call(ctx context.Context, text, modelID string, task TaskHint) (json.RawMessage, error) {
	if g.apiKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "inference API key not configured", nil)
	}

	tracer := otel.Tracer("profilelens.ai.huggingface")
	ctx, span := tracer.Start(ctx, "huggingface.call")
	defer span.End()

	truncated := truncate(text, g.maxTextLength)
	span.SetAttributes(
		attribute.String("ai.provider", providerHuggingFace),
		attribute.String("ai.model", modelID),
		attribute.String("ai.task", task.String()),
		attribute.Int("input.length", len(truncated)),
	)

	started := time.Now()
	body, err := g.post(ctx, truncated, modelID, task)
	record(g.recorder, ctx, providerHuggingFace, modelID, started, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inference call failed")
		g.logger.LogError(err, "Inference call failed", "model", modelID)
		return nil, err
	}

	span.SetAttributes(attribute.Int("output.length", len(body)))
	return body, nil
}

func (g *HuggingFaceGateway) post(ctx context.Context, text, modelID string, task TaskHint) (json.RawMessage, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text, Parameters: parametersFor(task)})
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode inference request", err)
	}

	url := g.baseURL + "/" + modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build inference request", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("Sending inference request", "model", modelID, "task", task.String(), "text_length", len(text))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailure, "inference request failed", err).
			WithContext("model", modelID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailure, "failed to read inference response", err).
			WithContext("model", modelID)
	}

	g.logger.Debug("Inference response received", "model", modelID, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.NewAIError(errors.ErrCodeInferenceAuthFailed, "Invalid inference API key", nil).
			WithContext("model", modelID).
			WithContext("body", string(body))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.NewAIError(errors.ErrCodeInferenceRequestFailed,
			fmt.Sprintf("API request failed: %s", body), nil).
			WithContext("model", modelID).
			WithContext("status", resp.StatusCode).
			WithContext("body", string(body))
	}

	if !json.Valid(body) {
		return nil, errors.NewAIError(errors.ErrCodeInferenceResponseInvalid, "inference response is not JSON", nil).
			WithContext("model", modelID)
	}

	return json.RawMessage(body), nil
}
