package profiles

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu        sync.RWMutex
	profiles  map[string]Profile
	summaries map[string]Summary
	now       func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		profiles:  make(map[string]Profile),
		summaries: make(map[string]Summary),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Put stores p as-is. It is meant for seeding.
func (r *MemoryRepo) Put(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.TargetIndustries == nil {
		p.TargetIndustries = []string{}
	}
	r.profiles[p.UserID] = clone(p)
}

func (r *MemoryRepo) UpsertOnboarding(ctx context.Context, p Profile) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	existing, ok := r.profiles[p.UserID]
	if !ok {
		existing = Profile{
			ID:        uuid.NewString(),
			UserID:    p.UserID,
			Languages: []string{},
			CreatedAt: now,
		}
	}
	existing.UserType = p.UserType
	if p.Email != "" {
		existing.Email = p.Email
	}
	existing.CVPath = p.CVPath
	existing.CVUploadedAt = p.CVUploadedAt
	existing.NetworkingGoal = p.NetworkingGoal
	existing.TargetIndustries = append([]string{}, p.TargetIndustries...)
	existing.SpecificInterests = p.SpecificInterests
	existing.SendWeeklyUpdates = p.SendWeeklyUpdates
	existing.ConnectWithStudents = p.ConnectWithStudents
	existing.ConnectWithAlumni = p.ConnectWithAlumni
	existing.OnboardingCompleted = true
	existing.UpdatedAt = now
	r.profiles[p.UserID] = existing
	return clone(existing), nil
}

func (r *MemoryRepo) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepo) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.profiles[id]; ok {
			out[id] = clone(p)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpdateSettings(ctx context.Context, userID string, s Settings) (Profile, error) {
	return r.mutate(ctx, userID, func(p *Profile) {
		p.SendWeeklyUpdates = s.SendWeeklyUpdates
		p.ConnectWithStudents = s.ConnectWithStudents
		p.ConnectWithAlumni = s.ConnectWithAlumni
	})
}

func (r *MemoryRepo) Update(ctx context.Context, userID string, u Update) (Profile, error) {
	return r.mutate(ctx, userID, func(p *Profile) { u.apply(p) })
}

func (r *MemoryRepo) ApplyCVFields(ctx context.Context, userID string, f CVFields) (Profile, error) {
	return r.mutate(ctx, userID, func(p *Profile) { f.apply(p) })
}

func (r *MemoryRepo) mutate(ctx context.Context, userID string, fn func(p *Profile)) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = r.now()
	r.profiles[userID] = p
	return clone(p), nil
}

func (r *MemoryRepo) FindCandidates(ctx context.Context, f CandidateFilter) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Profile
	for _, p := range r.profiles {
		if f.Match(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}

func (r *MemoryRepo) ListWeeklyRecipients(ctx context.Context) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Profile
	for _, p := range r.profiles {
		if p.SendWeeklyUpdates && p.OnboardingCompleted {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *MemoryRepo) PutSummary(ctx context.Context, userID string, s Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[userID]; !ok {
		return ErrNotFound
	}
	r.summaries[userID] = s
	return nil
}

func (r *MemoryRepo) GetSummary(ctx context.Context, userID string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[userID]
	if !ok {
		return Summary{}, ErrSummaryNotFound
	}
	return s, nil
}

func (r *MemoryRepo) GetSummaries(ctx context.Context, userIDs []string) (map[string]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Summary, len(userIDs))
	for _, id := range userIDs {
		if s, ok := r.summaries[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func clone(p Profile) Profile {
	p.Languages = append([]string{}, p.Languages...)
	p.TargetIndustries = append([]string{}, p.TargetIndustries...)
	if p.YearsOfExperience != nil {
		v := *p.YearsOfExperience
		p.YearsOfExperience = &v
	}
	if p.GraduationYear != nil {
		v := *p.GraduationYear
		p.GraduationYear = &v
	}
	if p.CVUploadedAt != nil {
		v := *p.CVUploadedAt
		p.CVUploadedAt = &v
	}
	return p
}

var _ Repo = (*MemoryRepo)(nil)
