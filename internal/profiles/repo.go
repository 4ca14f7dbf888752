package profiles

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("user profile not found")
	ErrSummaryNotFound = errors.New("user profile summary not found, complete onboarding first")
	ErrInvalidInput    = errors.New("invalid profile input")
)

// Repo persists profiles and their derived summaries.
type Repo interface {
	UpsertOnboarding(ctx context.Context, p Profile) (Profile, error)
	GetByUserID(ctx context.Context, userID string) (Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string]Profile, error)
	UpdateSettings(ctx context.Context, userID string, s Settings) (Profile, error)
	Update(ctx context.Context, userID string, u Update) (Profile, error)
	ApplyCVFields(ctx context.Context, userID string, f CVFields) (Profile, error)
	FindCandidates(ctx context.Context, f CandidateFilter) ([]Profile, error)
	ListWeeklyRecipients(ctx context.Context) ([]Profile, error)

	PutSummary(ctx context.Context, userID string, s Summary) error
	GetSummary(ctx context.Context, userID string) (Summary, error)
	GetSummaries(ctx context.Context, userIDs []string) (map[string]Summary, error)
}
