package queue

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kinds of background jobs.
const (
	KindExtractCV   = "extract_cv"
	KindMatchDigest = "match_digest"
)

const MessageVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Kind   string `json:"kind"`
	UserID string `json:"userId,omitempty"`
	CVPath string `json:"cvPath,omitempty"`
	// Notify asks the worker to generate recommendations and email them
	// once the CV fields are stored.
	Notify     bool   `json:"notify,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

var (
	ErrUnknownKind   = errors.New("unknown job kind")
	ErrMissingUserID = errors.New("missing user id")
	ErrMissingCVPath = errors.New("missing cv path")
)

// Validate checks that the fields required by msg.Kind are present.
func (m Message) Validate() error {
	switch m.Kind {
	case KindExtractCV:
		if strings.TrimSpace(m.UserID) == "" {
			return ErrMissingUserID
		}
		if strings.TrimSpace(m.CVPath) == "" {
			return ErrMissingCVPath
		}
		return nil
	case KindMatchDigest:
		return nil
	default:
		return ErrUnknownKind
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
