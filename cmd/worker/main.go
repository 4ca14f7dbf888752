package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"lbs-connect/internal/bootstrap"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/shared/config"
	"lbs-connect/internal/shared/telemetry"
	"lbs-connect/internal/workerproc"
)

const (
	defaultRegion             = "us-east-1"
	defaultVisibilitySeconds  = 600
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	concurrency := max(1, cfg.WorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	switch cfg.QueueBackend {
	case "sqs":
		runSQS(ctx, cfg, app.Jobs, concurrency, shutdownTimeout)
	case "amqp":
		log.Printf("worker started backend=amqp queue=%s concurrency=%d", cfg.AMQPQueue, concurrency)
		err := app.AMQP.Consume(ctx, concurrency, func(ctx context.Context, body []byte) error {
			return handleBody(ctx, app.Jobs, string(body))
		})
		if err != nil {
			log.Fatalf("amqp consume: %v", err)
		}
	default:
		log.Fatal("QUEUE_BACKEND must be sqs or amqp to run the worker")
	}
}

type jobProcessor interface {
	Process(ctx context.Context, msg queue.Message) error
}

// handleBody runs one AMQP message. Malformed messages are acked and dropped.
func handleBody(ctx context.Context, jobs jobProcessor, body string) error {
	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		telemetry.Error("worker.job.decode_failed", map[string]any{
			"body_len":    meta.BodyLen,
			"body_sha256": meta.BodySHA,
			"error":       err.Error(),
		})
		return nil
	}
	return jobs.Process(ctx, decoded)
}

func runSQS(ctx context.Context, cfg config.Config, jobs jobProcessor, concurrency int, shutdownTimeout time.Duration) {
	queueURL := strings.TrimSpace(cfg.SQSQueueURL)
	if queueURL == "" {
		log.Fatal("SQS_QUEUE_URL is required")
	}
	region := cfg.AWSRegion
	if region == "" {
		region = defaultRegion
	}
	visibilitySeconds := envInt("SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	log.Printf("worker started backend=sqs queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, visibilitySeconds)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			log.Printf("receive message: %v", err)
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				// In-flight jobs finish even after shutdown is requested.
				handleMessage(context.WithoutCancel(ctx), sqsClient, queueURL, jobs, m)
			}(msg)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// handleMessage processes one SQS message. Successful and malformed messages
// are deleted; failed ones stay on the queue for redelivery.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, jobs jobProcessor, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		fields := baseFields(msg, queue.Message{})
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		telemetry.Error("worker.job.decode_failed", fields)
		deleteMessage(ctx, client, queueURL, msg, queue.Message{})
		return
	}

	telemetry.Info("worker.job.received", baseFields(msg, decoded))

	if err := jobs.Process(ctx, decoded); err != nil {
		fields := baseFields(msg, decoded)
		fields["error"] = err.Error()
		telemetry.Error("worker.job.failed", fields)
		return
	}

	if deleteMessage(ctx, client, queueURL, msg, decoded) {
		telemetry.Info("worker.job.completed", baseFields(msg, decoded))
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, job queue.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, job)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.job.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, job)
		fields["error"] = err.Error()
		telemetry.Error("worker.job.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, job queue.Message) map[string]any {
	fields := map[string]any{
		"kind":           job.Kind,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if job.UserID != "" {
		fields["user_id"] = job.UserID
	}
	if strings.TrimSpace(job.RequestID) != "" {
		fields["request_id"] = job.RequestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
