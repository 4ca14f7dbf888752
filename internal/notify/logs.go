package notify

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EmailLog records one delivered email.
type EmailLog struct {
	ID                string
	UserID            string
	EmailType         string
	Recipient         string
	Status            string
	ProviderMessageID string
	MatchCount        int
	SentAt            time.Time
}

type LogRepo interface {
	Insert(ctx context.Context, l EmailLog) error
}

type MemoryLogRepo struct {
	mu   sync.Mutex
	logs []EmailLog
}

func NewMemoryLogRepo() *MemoryLogRepo {
	return &MemoryLogRepo{}
}

func (r *MemoryLogRepo) Insert(ctx context.Context, l EmailLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
	r.logs = append(r.logs, l)
	return nil
}

// All returns a copy of the stored logs.
func (r *MemoryLogRepo) All() []EmailLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EmailLog(nil), r.logs...)
}

type PGLogRepo struct {
	DB *sql.DB
}

func (r *PGLogRepo) Insert(ctx context.Context, l EmailLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	const query = `
INSERT INTO email_logs (id, user_id, email_type, recipient, status, provider_message_id, match_count)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`
	_, err := r.DB.ExecContext(ctx, query, l.ID, l.UserID, l.EmailType, l.Recipient, l.Status, l.ProviderMessageID, l.MatchCount)
	return err
}

var (
	_ LogRepo = (*MemoryLogRepo)(nil)
	_ LogRepo = (*PGLogRepo)(nil)
)
