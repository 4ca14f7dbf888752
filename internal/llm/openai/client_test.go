package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lbs-connect/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func fakeServer(t *testing.T, status int, reply string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsJSONRequest(t *testing.T) {
	var body map[string]any
	srv := fakeServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":" {\"ok\":true} "}}]}`, &body)

	client, err := NewClient("test-key", srv.URL+"/v1/", "gpt-4o")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Request{
		System:      "extract",
		Prompt:      "cv text",
		Temperature: 0.1,
		MaxTokens:   500,
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected content %q", out)
	}
	if body["model"] != "gpt-4o" {
		t.Fatalf("unexpected model %v", body["model"])
	}
	if rf, _ := body["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
	if body["max_tokens"] != float64(500) {
		t.Fatalf("unexpected max_tokens %v", body["max_tokens"])
	}
}

func TestCompleteModelOverrideAndGPT5(t *testing.T) {
	var body map[string]any
	srv := fakeServer(t, http.StatusOK, `{"choices":[{"message":{"content":"hello"}}]}`, &body)

	client, _ := NewClient("test-key", srv.URL, "gpt-4o")
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "hi", Model: "gpt-5-mini", Temperature: 0.8, MaxTokens: 200}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if body["model"] != "gpt-5-mini" {
		t.Fatalf("model override ignored: %v", body["model"])
	}
	if _, ok := body["temperature"]; ok {
		t.Fatalf("temperature must be omitted for gpt-5 models")
	}
	if _, ok := body["max_tokens"]; ok {
		t.Fatalf("max_tokens must be omitted for gpt-5 models")
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := fakeServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, nil)
	client, _ := NewClient("test-key", srv.URL, "gpt-4o")

	_, err := client.Complete(context.Background(), llm.Request{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "", "gpt-4o"); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient("key", "", " "); err == nil {
		t.Fatalf("expected missing model error")
	}
}
