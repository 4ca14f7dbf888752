// Package matches generates, stores and serves networking recommendations.
package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lbs-connect/internal/llm"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/telemetry"
)

const (
	rankingTemperature = 0.7
	rankingMaxTokens   = 2000

	MessageNoMatches = "No matches found"
)

// Cache is the subset of the shared Redis cache used for active match lists.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Notifier delivers freshly generated matches to their owner.
type Notifier interface {
	Notify(ctx context.Context, userID string, ms []MatchWithProfile) error
}

type Service struct {
	Repo     Repo
	Profiles *profiles.Service
	LLM      llm.Client
	Model    string
	// MatchTTL sets expires_at on new matches; zero means they never expire.
	MatchTTL time.Duration
	Cache    Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func cacheKey(userID string) string {
	return "matches:" + userID
}

// Generate ranks candidates for userID and replaces their pending matches.
// When no candidate survives filtering the stored matches are left as they are.
func (s *Service) Generate(ctx context.Context, userID string, criteria Criteria) (Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Result{}, fmt.Errorf("%w: missing required parameter: userId", ErrInvalidInput)
	}
	user, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	summary, err := s.Profiles.GetSummary(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	accepted := user.AcceptedTypes()
	if len(accepted) == 0 {
		return Result{}, ErrNoPreferences
	}

	found, err := s.Profiles.FindCandidates(ctx, profiles.CandidateFilter{
		ExcludeUserID: userID,
		UserTypes:     accepted,
		OptInFor:      user.UserType,
		Industries:    criteria.Industries,
		Programs:      criteria.Programs,
		MinExperience: criteria.MinExperience,
		MaxExperience: criteria.MaxExperience,
		Limit:         profiles.DefaultCandidateLimit,
	})
	if err != nil {
		return Result{}, fmt.Errorf("fetch candidates: %w", err)
	}
	candidates, err := s.withSummaries(ctx, found)
	if err != nil {
		return Result{}, err
	}
	telemetry.Info("matches.candidates", map[string]any{
		"user_id":    userID,
		"found":      len(found),
		"summarized": len(candidates),
	})
	if len(candidates) == 0 {
		return Result{Matches: []MatchWithProfile{}, Message: MessageNoMatches}, nil
	}

	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[c.Profile.UserID] = true
	}
	raw, err := s.LLM.Complete(ctx, llm.Request{
		Operation:   llm.OpRecommendations,
		System:      systemPrompt,
		Prompt:      BuildPrompt(user, summary, candidates),
		Model:       s.Model,
		Temperature: rankingTemperature,
		MaxTokens:   rankingMaxTokens,
	})
	if err != nil {
		return Result{}, fmt.Errorf("llm: %w", err)
	}
	recs, err := ParseRecommendations(raw, known)
	if err != nil {
		return Result{}, err
	}

	var expiresAt *time.Time
	if s.MatchTTL > 0 {
		t := s.now().Add(s.MatchTTL)
		expiresAt = &t
	}
	stored, err := s.Repo.ReplacePending(ctx, userID, recs, expiresAt)
	if err != nil {
		return Result{}, fmt.Errorf("store matches: %w", err)
	}
	s.invalidate(ctx, userID)
	metrics.AddRecommendations(len(stored))

	withProfiles, err := s.attachProfiles(ctx, stored)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Matches: withProfiles,
		Message: fmt.Sprintf("Successfully generated %d recommendations", len(withProfiles)),
	}, nil
}

func (s *Service) withSummaries(ctx context.Context, found []profiles.Profile) ([]Candidate, error) {
	if len(found) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.UserID)
	}
	summaries, err := s.Profiles.GetSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate summaries: %w", err)
	}
	out := make([]Candidate, 0, len(found))
	for _, p := range found {
		if sum, ok := summaries[p.UserID]; ok {
			out = append(out, Candidate{Profile: p, Summary: sum})
		}
	}
	return out, nil
}

func (s *Service) attachProfiles(ctx context.Context, ms []Match) ([]MatchWithProfile, error) {
	out := make([]MatchWithProfile, 0, len(ms))
	if len(ms) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.MatchedUserID)
	}
	byID, err := s.Profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch matched profiles: %w", err)
	}
	for _, m := range ms {
		out = append(out, MatchWithProfile{Match: m, MatchedProfile: matchedProfileOf(byID[m.MatchedUserID])})
	}
	return out, nil
}

// ListActive returns userID's pending, unexpired matches with profiles.
func (s *Service) ListActive(ctx context.Context, userID string) ([]MatchWithProfile, error) {
	now := s.now()
	if s.Cache != nil {
		var cached []MatchWithProfile
		if hit, err := s.Cache.GetJSON(ctx, cacheKey(userID), &cached); err == nil && hit {
			return activeOnly(cached, now), nil
		}
	}
	ms, err := s.Repo.ListActive(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	out, err := s.attachProfiles(ctx, ms)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, cacheKey(userID), out, s.CacheTTL); err != nil {
			telemetry.Debug("matches.cache.set_failed", map[string]any{"user_id": userID, "err": err})
		}
	}
	return out, nil
}

func activeOnly(ms []MatchWithProfile, now time.Time) []MatchWithProfile {
	out := make([]MatchWithProfile, 0, len(ms))
	for _, m := range ms {
		if m.Active(now) {
			out = append(out, m)
		}
	}
	return out
}

// UpdateStatus accepts or declines one of userID's matches.
func (s *Service) UpdateStatus(ctx context.Context, userID, matchID string, status Status) (Match, error) {
	if status != StatusAccepted && status != StatusDeclined {
		return Match{}, fmt.Errorf("%w: status must be accepted or declined", ErrInvalidInput)
	}
	m, err := s.Repo.UpdateStatus(ctx, userID, matchID, status)
	if err != nil {
		return Match{}, err
	}
	s.invalidate(ctx, userID)
	return m, nil
}

// ExpireStale marks pending matches past their expiry as expired.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	return s.Repo.ExpireStale(ctx, s.now())
}

// GenerateAndNotify regenerates matches and, when any were produced, hands
// them to n. It returns how many matches were generated.
func (s *Service) GenerateAndNotify(ctx context.Context, userID string, n Notifier) (int, error) {
	res, err := s.Generate(ctx, userID, Criteria{})
	if err != nil {
		return 0, err
	}
	if len(res.Matches) == 0 || n == nil {
		return len(res.Matches), nil
	}
	if err := n.Notify(ctx, userID, res.Matches); err != nil {
		return len(res.Matches), fmt.Errorf("notify: %w", err)
	}
	return len(res.Matches), nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cacheKey(userID)); err != nil {
		telemetry.Debug("matches.cache.delete_failed", map[string]any{"user_id": userID, "err": err})
	}
}

// IsClientError reports whether err stems from bad input or missing data
// rather than an upstream failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNoPreferences) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, profiles.ErrNotFound) ||
		errors.Is(err, profiles.ErrSummaryNotFound)
}
