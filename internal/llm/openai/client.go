package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"lbs-connect/internal/llm"
)

const defaultTimeout = 120 * time.Second

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient constructs a client. baseURL may point at any OpenAI-compatible
// endpoint; empty keeps the public API.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := c.model
	if strings.TrimSpace(req.Model) != "" {
		model = req.Model
	}
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	body := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	// gpt-5 models only accept the default temperature and reject max_tokens.
	if !isGPT5(model) {
		body.Temperature = req.Temperature
		body.MaxTokens = req.MaxTokens
	}
	if req.JSON {
		body.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, body)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai http status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
