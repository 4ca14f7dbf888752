package main

// Build the API Lambda:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"lbs-connect/internal/bootstrap"
	"lbs-connect/internal/shared/config"
	"lbs-connect/internal/shared/server/respond"
)

type proxyHandler func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

func main() {
	// Built once per execution environment and reused across invocations.
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		log.Printf("bootstrap error: %v", err)
		lambda.Start(unavailable())
		return
	}
	lambda.Start(proxyHandler(ginadapter.NewV2(app.Router).ProxyWithContext))
}

// unavailable answers every request with a 500 envelope when the app could
// not be built, so API Gateway returns JSON instead of a bare Lambda error.
func unavailable() proxyHandler {
	body, _ := json.Marshal(respond.Envelope{
		Success: false,
		Error:   "service unavailable",
		Code:    respond.CodeInternal,
	})
	return func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}
}
