package ai

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"profilelens/internal/config"
	"profilelens/internal/errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	providerClaude     = "claude"
	defaultClaudeModel = anthropic.ModelClaude3_7SonnetLatest
	claudeMaxTokens    = 512
)

// NewClaudeGateway creates a Gateway backed by Anthropic Claude
func NewClaudeGateway(cfg config.InferenceConfig, recorder CallRecorder, logger *errors.Logger) Gateway {
	model := anthropic.Model(cfg.LLMModel)
	if cfg.LLMModel == "" {
		model = defaultClaudeModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	client := anthropic.NewClient(opts...)

	return &llmGateway{
		provider:      providerClaude,
		apiKey:        cfg.APIKey,
		tasks:         taskMap(cfg.Models),
		maxTextLength: cfg.MaxTextLength,
		recorder:      recorder,
		logger:        logger,
		complete: func(ctx context.Context, prompt string, _ llmTask) (string, error) {
			message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
				Model:     model,
				MaxTokens: claudeMaxTokens,
				System:    []anthropic.TextBlockParam{{Text: SystemPrompt}},
				Messages: []anthropic.MessageParam{{
					Content: []anthropic.ContentBlockParamUnion{{
						OfText: &anthropic.TextBlockParam{Text: prompt},
					}},
					Role: anthropic.MessageParamRoleUser,
				}},
			})
			if err != nil {
				return "", classifyClaudeError(err)
			}

			var reply strings.Builder
			for _, block := range message.Content {
				if block.Type == "text" {
					reply.WriteString(block.AsText().Text)
				}
			}
			return reply.String(), nil
		},
	}
}

func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if stderrors.As(err, &apiErr) {
		return statusError(providerClaude, apiErr.StatusCode, err)
	}
	return errors.NewNetworkError(errors.ErrCodeNetworkFailure, "Claude request failed", err)
}
