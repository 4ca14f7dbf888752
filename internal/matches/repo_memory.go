package matches

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	matches map[string]Match
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		matches: make(map[string]Match),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Put stores m as-is. It is meant for seeding.
func (r *MemoryRepo) Put(m Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.matches[m.ID] = m
}

func (r *MemoryRepo) ReplacePending(ctx context.Context, userID string, recs []Recommendation, expiresAt *time.Time) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.matches {
		if m.UserID == userID && m.Status == StatusPending {
			delete(r.matches, id)
		}
	}
	now := r.now()
	out := make([]Match, 0, len(recs))
	for _, rec := range recs {
		m := Match{
			ID:            uuid.NewString(),
			UserID:        userID,
			MatchedUserID: rec.MatchedUserID,
			Score:         rec.Score,
			Reason:        rec.Reason,
			Status:        StatusPending,
			ExpiresAt:     expiresAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		r.matches[m.ID] = m
		out = append(out, m)
	}
	sortByScore(out)
	return out, nil
}

func (r *MemoryRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Match{}
	for _, m := range r.matches {
		if m.UserID == userID && m.Active(now) {
			out = append(out, m)
		}
	}
	sortByScore(out)
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, userID, matchID string, status Status) (Match, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[matchID]
	if !ok || m.UserID != userID {
		return Match{}, ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = r.now()
	r.matches[matchID] = m
	return m, nil
}

func (r *MemoryRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.matches {
		if m.Status == StatusPending && m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
			m.Status = StatusExpired
			m.UpdatedAt = r.now()
			r.matches[id] = m
			n++
		}
	}
	return n, nil
}

func sortByScore(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Score != ms[j].Score {
			return ms[i].Score > ms[j].Score
		}
		return ms[i].MatchedUserID < ms[j].MatchedUserID
	})
}

var _ Repo = (*MemoryRepo)(nil)
