// Package onboarding completes a user's onboarding: it validates the
// answers and CV, stores the CV, saves the profile and schedules CV
// extraction.
package onboarding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"lbs-connect/internal/extract"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/shared/storage/object"
	"lbs-connect/internal/shared/telemetry"
)

const presignTTL = 15 * time.Minute

// RunFunc processes a job in-process when no queue is configured.
type RunFunc func(ctx context.Context, msg queue.Message) error

type Service struct {
	Profiles  *profiles.Service
	Store     object.Store
	Presigner object.Presigner
	Queue     queue.Client
	Run       RunFunc
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cvKey(userID string, at time.Time) string {
	return fmt.Sprintf("%s/%d.pdf", userID, at.UnixMilli())
}

// Complete validates f, stores upload when present, saves the profile and
// schedules extraction of the CV's fields followed by recommendations.
func (s *Service) Complete(ctx context.Context, f Form, upload *Upload) (profiles.Profile, error) {
	if err := Validate(f, upload); err != nil {
		return profiles.Profile{}, err
	}
	now := s.now().UTC()

	cvPath := f.CVPath
	if upload != nil {
		if s.Store == nil {
			return profiles.Profile{}, errors.New("object store not configured")
		}
		cvPath = cvKey(f.UserID, now)
		if _, err := s.Store.Put(ctx, cvPath, extract.MimePDF, bytes.NewReader(upload.Data)); err != nil {
			return profiles.Profile{}, fmt.Errorf("failed to upload cv: %w", err)
		}
	}

	saved, err := s.Profiles.CompleteOnboarding(ctx, profiles.Profile{
		UserID:              f.UserID,
		UserType:            f.UserType,
		Email:               f.Email,
		CVPath:              cvPath,
		CVUploadedAt:        &now,
		NetworkingGoal:      f.NetworkingGoal,
		TargetIndustries:    f.targetIndustries(),
		SpecificInterests:   f.SpecificInterests,
		SendWeeklyUpdates:   f.SendWeeklyUpdates,
		ConnectWithStudents: f.ConnectStudents,
		ConnectWithAlumni:   f.ConnectAlumni,
		OnboardingCompleted: true,
	})
	if err != nil {
		return profiles.Profile{}, err
	}

	s.dispatch(ctx, queue.Message{
		Kind:   queue.KindExtractCV,
		UserID: f.UserID,
		CVPath: cvPath,
		Notify: true,
	})
	return saved, nil
}

// dispatch enqueues msg, or runs it in the background without a queue.
// Failures are logged; onboarding has already succeeded.
func (s *Service) dispatch(ctx context.Context, msg queue.Message) {
	msg = queue.Stamp(msg)
	fields := map[string]any{"kind": msg.Kind, "user_id": msg.UserID, "request_id": msg.RequestID}
	if s.Queue != nil {
		if err := s.Queue.Send(ctx, msg); err != nil {
			fields["err"] = err
			telemetry.Error("onboarding.enqueue.failed", fields)
			return
		}
		telemetry.Info("onboarding.enqueued", fields)
		return
	}
	if s.Run == nil {
		telemetry.Warn("onboarding.extraction.skipped", fields)
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.Run(bg, msg); err != nil {
			fields["err"] = err
			telemetry.Error("onboarding.background.failed", fields)
		}
	}()
}

// PresignCV returns a URL the client can PUT its CV to before submitting
// the form with the returned key as cv_path.
func (s *Service) PresignCV(ctx context.Context, userID, fileName, contentType string, size int64) (object.PresignedUpload, error) {
	if userID == "" {
		return object.PresignedUpload{}, invalid("user id is required")
	}
	if err := ValidateCVFile(fileName, contentType, size); err != nil {
		return object.PresignedUpload{}, err
	}
	if s.Presigner == nil {
		return object.PresignedUpload{}, object.ErrPresignUnsupported
	}
	return s.Presigner.PresignPut(ctx, cvKey(userID, s.now().UTC()), extract.MimePDF, size, presignTTL)
}

func (s *Service) Status(ctx context.Context, userID string) (bool, error) {
	return s.Profiles.IsOnboardingComplete(ctx, userID)
}
