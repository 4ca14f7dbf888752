package main

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestUnavailableReturnsEnvelope(t *testing.T) {
	resp, err := unavailable()(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/api/v1/health"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Body, `"success":false`) || !strings.Contains(resp.Body, `"code":"INTERNAL"`) {
		t.Fatalf("unexpected body %s", resp.Body)
	}
}
