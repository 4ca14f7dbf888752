// Package gemini implements llm.Client on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"lbs-connect/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

type Client struct {
	api   *genai.Client
	model string
}

// NewClient builds a Gemini API client. baseURL is only set in tests.
func NewClient(ctx context.Context, apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	api, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{api: api, model: model}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := c.model
	// OpenAI model names configured for other operations do not apply here.
	if m := strings.TrimSpace(req.Model); strings.HasPrefix(m, "gemini") {
		model = m
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	resp, err := c.api.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
