// Package llm abstracts the chat-completion providers used for CV
// extraction, match ranking and outreach drafting.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/telemetry"
)

// Operation names, used for logging and metrics.
const (
	OpExtractCV       = "extract_cv"
	OpRecommendations = "recommendations"
	OpOutreach        = "outreach_message"
)

// Request is one single-turn completion.
type Request struct {
	Operation   string
	System      string
	Prompt      string
	// Model overrides the client's default model when set.
	Model       string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Client completes prompts against an LLM provider.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("LLM provider not configured")
	ErrEmptyResponse = errors.New("LLM returned an empty response")
)

// Placeholder is used when no provider key is configured.
type Placeholder struct{}

func (Placeholder) Complete(ctx context.Context, req Request) (string, error) {
	return "", ErrNotConfigured
}

// Instrumented records latency and outcome of every call made through Next.
type Instrumented struct {
	Provider string
	Next     Client
}

func (c Instrumented) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := c.Next.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.ObserveLLMCall(c.Provider, req.Operation, err, elapsed)
	fields := map[string]any{
		"provider":    c.Provider,
		"operation":   req.Operation,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["err"] = err
		telemetry.Warn("llm.call.failed", fields)
		return "", err
	}
	fields["response_chars"] = len(out)
	telemetry.Info("llm.call.complete", fields)
	return out, nil
}

// CleanJSON strips markdown code fences around a JSON reply.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
