package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Stamp fills the envelope fields a producer does not set itself.
func Stamp(msg Message) Message {
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}
	if msg.EnqueuedAt == "" {
		msg.EnqueuedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return msg
}
