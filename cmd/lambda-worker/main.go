package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"lbs-connect/internal/bootstrap"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/shared/config"
	"lbs-connect/internal/shared/telemetry"
	"lbs-connect/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

// invocation covers the two event shapes the worker is wired to: SQS batches
// and the EventBridge schedule that triggers the weekly digest.
type invocation struct {
	Records    []events.SQSMessage `json:"Records"`
	Source     string              `json:"source"`
	DetailType string              `json:"detail-type"`
}

func handler(ctx context.Context, raw json.RawMessage) (any, error) {
	var inv invocation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(inv.Records))
		for _, record := range inv.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	if inv.Source == "aws.events" && len(inv.Records) == 0 {
		return nil, runScheduled(ctx, app.Jobs, inv.DetailType)
	}
	return processBatch(ctx, app.Jobs, events.SQSEvent{Records: inv.Records}), nil
}

// runScheduled runs the weekly digest for a scheduled event.
func runScheduled(ctx context.Context, jobs *workerproc.Processor, detailType string) error {
	msg := queue.Stamp(queue.Message{Kind: queue.KindMatchDigest})
	telemetry.Info("worker.schedule.fired", map[string]any{"detail_type": detailType, "request_id": msg.RequestID})
	return jobs.Process(ctx, msg)
}

// processBatch reports retryable failures; malformed messages are dropped.
func processBatch(ctx context.Context, jobs *workerproc.Processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := workerproc.HandleMessage(ctx, jobs, record.Body)
		if err == nil {
			continue
		}
		fields := map[string]any{"sqs_message_id": record.MessageId, "error": err.Error()}
		if workerproc.Unrecoverable(err) {
			telemetry.Error("worker.job.dropped", fields)
			continue
		}
		telemetry.Error("worker.job.failed", fields)
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
