package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

const maxCompletionTokens = 2048

// ChatClient calls an OpenAI-compatible chat completions API for structured
// analysis generation. Streaming is always disabled; each call is a single
// request/response bounded by the caller's context.
type ChatClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the generative backend settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewChatClient creates a chat completions client.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Complete sends a single prompt and returns the raw response text.
// The response-format hint requests a JSON object; the payload may still
// arrive fence-wrapped and is cleaned by the caller.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxCompletionTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyChatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrBackendUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyChatError maps transport-level failures to domain.ErrBackendUnavailable
// so the analysis layer can degrade to the heuristic fallback. API errors with a
// status code mean the backend was reachable but rejected the request; those are
// unavailable for our purposes too, since no retry at this layer can fix them.
func classifyChatError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("completion timed out: %w", domain.ErrBackendUnavailable)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrBackendUnavailable)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, domain.ErrBackendUnavailable)
}
