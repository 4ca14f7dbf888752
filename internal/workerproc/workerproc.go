// Package workerproc decodes background job messages and runs them. It is
// shared by the long-running worker, the SQS Lambda and the API's
// in-process fallback.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"lbs-connect/internal/digest"
	"lbs-connect/internal/matches"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/telemetry"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrInvalid indicates a decoded message that cannot be processed.
type ErrInvalid struct {
	Meta      MessageMeta
	Kind      string
	RequestID string
	Err       error
}

func (e ErrInvalid) Error() string { return "invalid message: " + e.Err.Error() }

func (e ErrInvalid) Unwrap() error { return e.Err }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	Kind      string
	UserID    string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process " + e.Kind
	}
	return "process " + e.Kind + ": " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Unrecoverable reports whether retrying the message can never succeed.
func Unrecoverable(err error) bool {
	switch err.(type) {
	case ErrEmptyBody, ErrDecode, ErrInvalid:
		return true
	}
	return false
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if err := msg.Validate(); err != nil {
		return msg, meta, ErrInvalid{Meta: meta, Kind: msg.Kind, RequestID: msg.RequestID, Err: err}
	}
	return msg, meta, nil
}

type CVExtractor interface {
	Extract(ctx context.Context, userID, cvPath string) (profiles.CVFields, error)
}

type Recommender interface {
	GenerateAndNotify(ctx context.Context, userID string, n matches.Notifier) (int, error)
}

type DigestRunner interface {
	Run(ctx context.Context) (digest.Report, error)
}

// Processor runs decoded jobs.
type Processor struct {
	CV       CVExtractor
	Matches  Recommender
	Notifier matches.Notifier
	Digest   DigestRunner
}

// Process runs msg and records its outcome.
func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	if p == nil {
		return errors.New("job processor not configured")
	}
	start := time.Now()
	err := p.process(ctx, msg)
	metrics.ObserveJob(msg.Kind, err, time.Since(start))

	fields := map[string]any{
		"kind":        msg.Kind,
		"user_id":     msg.UserID,
		"request_id":  msg.RequestID,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["err"] = err
		telemetry.Error("job.failed", fields)
		return ErrProcess{Kind: msg.Kind, UserID: msg.UserID, RequestID: msg.RequestID, Err: err}
	}
	telemetry.Info("job.completed", fields)
	return nil
}

func (p *Processor) process(ctx context.Context, msg queue.Message) error {
	switch msg.Kind {
	case queue.KindExtractCV:
		return p.extractCV(ctx, msg)
	case queue.KindMatchDigest:
		if p.Digest == nil {
			return errors.New("digest not configured")
		}
		_, err := p.Digest.Run(ctx)
		return err
	default:
		return queue.ErrUnknownKind
	}
}

func (p *Processor) extractCV(ctx context.Context, msg queue.Message) error {
	if p.CV == nil {
		return errors.New("cv extraction not configured")
	}
	if _, err := p.CV.Extract(ctx, msg.UserID, msg.CVPath); err != nil {
		return fmt.Errorf("extract cv: %w", err)
	}
	if !msg.Notify || p.Matches == nil {
		return nil
	}
	n, err := p.Matches.GenerateAndNotify(ctx, msg.UserID, p.Notifier)
	if err != nil {
		// A user without usable preferences will not gain them on retry.
		if matches.IsClientError(err) {
			telemetry.Warn("job.recommendations.skipped", map[string]any{"user_id": msg.UserID, "err": err})
			return nil
		}
		return fmt.Errorf("recommendations: %w", err)
	}
	telemetry.Info("job.recommendations.generated", map[string]any{"user_id": msg.UserID, "count": n})
	return nil
}

// HandleMessage parses, validates, and processes a message payload.
func HandleMessage(ctx context.Context, p *Processor, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return p.Process(ctx, msg)
}
