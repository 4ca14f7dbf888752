package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const defaultRegion = "us-east-1"

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSClient publishes jobs to an SQS queue. Kind and request id travel as
// message attributes so they show up in the console without decoding bodies.
type SQSClient struct {
	client   sqsSender
	queueURL string
}

func NewSQSClient(ctx context.Context, region, queueURL string) (*SQSClient, error) {
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, errors.New("queue: SQS_QUEUE_URL is required")
	}
	if strings.TrimSpace(region) == "" {
		region = defaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("queue: load aws config: %w", err)
	}
	return &SQSClient{client: sqs.NewFromConfig(cfg), queueURL: queueURL}, nil
}

func (s *SQSClient) Send(ctx context.Context, msg Message) error {
	msg = Stamp(msg)
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("queue: encode: %w", err)
	}
	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"kind":      stringAttr(msg.Kind),
			"requestId": stringAttr(msg.RequestID),
		},
	}
	// FIFO queues serialize jobs per user; digests share one group.
	if strings.HasSuffix(s.queueURL, ".fifo") {
		group := msg.UserID
		if group == "" {
			group = msg.Kind
		}
		in.MessageGroupId = aws.String(group)
		in.MessageDeduplicationId = aws.String(msg.RequestID)
	}
	if _, err := s.client.SendMessage(ctx, in); err != nil {
		return fmt.Errorf("queue: sqs send %s: %w", msg.Kind, err)
	}
	return nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}

var _ Client = (*SQSClient)(nil)
