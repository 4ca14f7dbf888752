// Package email delivers transactional mail.
package email

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"lbs-connect/internal/shared/telemetry"
	"lbs-connect/internal/shared/util"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.From) == "" {
		return errors.New("email sender address is required")
	}
	if len(m.To) == 0 || strings.TrimSpace(m.To[0]) == "" {
		return errors.New("email recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject is required")
	}
	return nil
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogSender writes messages to the log instead of sending them. It is used
// in dev and whenever no provider key is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	id := "log-" + uuid.NewString()
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, util.Fingerprint(to))
	}
	telemetry.Info("email.logged", map[string]any{
		"id":         id,
		"to_hash":    recipients,
		"subject":    msg.Subject,
		"text_chars": len(msg.Text),
	})
	return id, nil
}
