package matches

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("match not found")
	ErrInvalidInput  = errors.New("invalid match input")
	ErrNoPreferences = errors.New("user has not selected any match preferences")
)

// Repo persists matches.
type Repo interface {
	// ReplacePending deletes userID's pending matches and inserts recs as new
	// pending matches in one transaction.
	ReplacePending(ctx context.Context, userID string, recs []Recommendation, expiresAt *time.Time) ([]Match, error)
	// ListActive returns pending, unexpired matches ordered by score descending.
	ListActive(ctx context.Context, userID string, now time.Time) ([]Match, error)
	UpdateStatus(ctx context.Context, userID, matchID string, status Status) (Match, error)
	// ExpireStale marks pending matches past their expiry as expired.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
