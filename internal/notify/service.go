// Package notify emails freshly generated matches to their owner, each with
// a drafted outreach message.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lbs-connect/internal/email"
	"lbs-connect/internal/llm"
	"lbs-connect/internal/matches"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/telemetry"
	"lbs-connect/internal/shared/util"
)

const MessageNothingToSend = "No matches to send"

var ErrNoEmail = errors.New("user profile has no email address")

type Service struct {
	Profiles     *profiles.Service
	LLM          llm.Client
	Sender       email.Sender
	Logs         LogRepo
	FromAddress  string
	MessageModel string
}

// Send drafts outreach messages for entries and emails them to userID.
// It returns the user-facing result message.
func (s *Service) Send(ctx context.Context, userID string, entries []Entry) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || len(entries) == 0 {
		return MessageNothingToSend, nil
	}
	user, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(user.Email) == "" {
		return "", ErrNoEmail
	}

	model := s.MessageModel
	if model == "" {
		model = DefaultMessageModel
	}
	from := sender{Name: user.FullName(), Goal: profiles.FormatNetworkingGoal(user.NetworkingGoal)}
	drafts := draftMessages(ctx, s.LLM, model, from, entries)

	greeting := user.FirstName
	if greeting == "" {
		greeting = "there"
	}
	html, text, err := renderEmail(newEmailView(greeting, entries, drafts))
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}

	start := time.Now()
	id, err := s.Sender.Send(ctx, email.Message{
		From:    fmt.Sprintf("LBS Connect <%s>", s.FromAddress),
		To:      []string{user.Email},
		Subject: Subject,
		HTML:    html,
		Text:    text,
	})
	metrics.IncEmail(EmailTypeMatchNotification, err)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	telemetry.Info("notify.email.sent", map[string]any{
		"user_id":     userID,
		"to_hash":     util.Fingerprint(user.Email),
		"match_count": len(entries),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if s.Logs != nil {
		logErr := s.Logs.Insert(ctx, EmailLog{
			UserID:            userID,
			EmailType:         EmailTypeMatchNotification,
			Recipient:         user.Email,
			Status:            "sent",
			ProviderMessageID: id,
			MatchCount:        len(entries),
		})
		if logErr != nil {
			telemetry.Warn("notify.email_log.failed", map[string]any{"user_id": userID, "err": logErr})
		}
	}
	return "Email sent successfully to " + user.Email, nil
}

// Notify adapts Send to matches.Notifier.
func (s *Service) Notify(ctx context.Context, userID string, ms []matches.MatchWithProfile) error {
	_, err := s.Send(ctx, userID, EntriesFrom(ms))
	return err
}

var _ matches.Notifier = (*Service)(nil)
