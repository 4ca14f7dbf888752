package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lbs-connect/internal/shared/telemetry"
)

// SettingsHook runs after a settings change was saved.
type SettingsHook func(ctx context.Context, userID string) error

type Service struct {
	Repo Repo
	// AfterSettingsChange regenerates matches once preferences changed.
	// Its failure is logged and never fails the save.
	AfterSettingsChange SettingsHook
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByUserID(ctx, userID)
}

// GetMany loads the profiles for userIDs; missing ids are absent from the map.
func (s *Service) GetMany(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.GetByUserIDs(ctx, userIDs)
}

// IsOnboardingComplete reports false for users without a profile.
func (s *Service) IsOnboardingComplete(ctx context.Context, userID string) (bool, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.OnboardingCompleted, nil
}

// CompleteOnboarding upserts the onboarding answers and rebuilds the summary.
func (s *Service) CompleteOnboarding(ctx context.Context, p Profile) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(p.UserID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !p.UserType.Valid() {
		return Profile{}, fmt.Errorf("%w: user type must be student or alumni", ErrInvalidInput)
	}
	saved, err := s.Repo.UpsertOnboarding(ctx, p)
	if err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	if err := s.refreshSummary(ctx, saved); err != nil {
		return Profile{}, err
	}
	return saved, nil
}

// UpdateProfile applies a partial edit. An explicit empty industry list is rejected.
func (s *Service) UpdateProfile(ctx context.Context, userID string, u Update) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	if u.TargetIndustries != nil && len(*u.TargetIndustries) == 0 {
		return Profile{}, fmt.Errorf("%w: at least one target industry is required", ErrInvalidInput)
	}
	if u.Empty() {
		return s.Get(ctx, userID)
	}
	p, err := s.Repo.Update(ctx, userID, u)
	if err != nil {
		return Profile{}, err
	}
	if err := s.refreshSummary(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateSettings saves preferences. Saving unchanged preferences performs no
// write and returns the stored row untouched. changed reports whether a write happened.
func (s *Service) UpdateSettings(ctx context.Context, userID string, settings Settings) (p Profile, changed bool, err error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, false, err
	}
	if SettingsOf(current) == settings {
		return current, false, nil
	}
	p, err = s.Repo.UpdateSettings(ctx, userID, settings)
	if err != nil {
		return Profile{}, false, fmt.Errorf("save settings: %w", err)
	}
	if err := s.refreshSummary(ctx, p); err != nil {
		return Profile{}, true, err
	}
	if s.AfterSettingsChange != nil {
		if hookErr := s.AfterSettingsChange(ctx, userID); hookErr != nil {
			telemetry.Warn("profiles.settings.followup_failed", map[string]any{
				"user_id": userID,
				"err":     hookErr,
			})
		}
	}
	return p, true, nil
}

// ApplyCVFields normalizes and stores CV-derived fields, then rebuilds the summary.
func (s *Service) ApplyCVFields(ctx context.Context, userID string, f CVFields) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	p, err := s.Repo.ApplyCVFields(ctx, userID, f.Normalize())
	if err != nil {
		return Profile{}, err
	}
	if err := s.refreshSummary(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) GetSummary(ctx context.Context, userID string) (Summary, error) {
	if err := s.ready(); err != nil {
		return Summary{}, err
	}
	return s.Repo.GetSummary(ctx, userID)
}

func (s *Service) GetSummaries(ctx context.Context, userIDs []string) (map[string]Summary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.GetSummaries(ctx, userIDs)
}

func (s *Service) FindCandidates(ctx context.Context, f CandidateFilter) ([]Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.FindCandidates(ctx, f)
}

// ListWeeklyRecipients returns onboarded users who opted into weekly updates.
func (s *Service) ListWeeklyRecipients(ctx context.Context) ([]Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.ListWeeklyRecipients(ctx)
}

func (s *Service) refreshSummary(ctx context.Context, p Profile) error {
	if err := s.Repo.PutSummary(ctx, p.UserID, BuildSummary(p)); err != nil {
		return fmt.Errorf("save profile summary: %w", err)
	}
	return nil
}
