// Package cvextract reads an uploaded CV, asks the LLM for structured
// profile fields and stores them on the profile.
package cvextract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"lbs-connect/internal/extract"
	"lbs-connect/internal/llm"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/storage/object"
	"lbs-connect/internal/shared/telemetry"
)

const (
	// MaxCVChars is how much CV text is sent to the model.
	MaxCVChars   = 15000
	maxFileBytes = 10 << 20
	temperature  = 0.1
)

var ErrMissingParams = errors.New("missing required parameters: userId or cvPath")

type Service struct {
	Store    object.Store
	LLM      llm.Client
	Profiles *profiles.Service
	Model    string
}

// Extract downloads the CV at cvPath, extracts its fields and writes them onto
// userID's profile. Nothing is written when any step fails.
func (s *Service) Extract(ctx context.Context, userID, cvPath string) (fields profiles.CVFields, err error) {
	userID, cvPath = strings.TrimSpace(userID), strings.TrimSpace(cvPath)
	if userID == "" || cvPath == "" {
		return profiles.CVFields{}, ErrMissingParams
	}
	start := time.Now()
	defer func() {
		metrics.IncCVExtraction(err)
		logFields := map[string]any{
			"user_id":     userID,
			"cv_path":     cvPath,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			logFields["err"] = err
			telemetry.Error("cvextract.failed", logFields)
			return
		}
		telemetry.Info("cvextract.complete", logFields)
	}()

	data, err := object.ReadAll(ctx, s.Store, cvPath, maxFileBytes)
	if err != nil {
		return profiles.CVFields{}, fmt.Errorf("download cv: %w", err)
	}
	fields, err = s.FieldsFromFile(ctx, data, path.Base(cvPath))
	if err != nil {
		return profiles.CVFields{}, err
	}
	if _, err := s.Profiles.ApplyCVFields(ctx, userID, fields); err != nil {
		return profiles.CVFields{}, fmt.Errorf("update profile: %w", err)
	}
	return fields, nil
}

// OwnsPath reports whether cvPath lives under userID's prefix in the object
// store.
func OwnsPath(userID, cvPath string) bool {
	userID, cvPath = strings.TrimSpace(userID), strings.TrimSpace(cvPath)
	if userID == "" || strings.Contains(cvPath, "..") {
		return false
	}
	return strings.HasPrefix(cvPath, userID+"/")
}

// FieldsFromFile extracts the text of a CV file and asks the model for its
// fields. Nothing is stored.
func (s *Service) FieldsFromFile(ctx context.Context, data []byte, fileName string) (profiles.CVFields, error) {
	text, err := extract.Text(ctx, data, "", fileName)
	if err != nil {
		return profiles.CVFields{}, fmt.Errorf("read cv: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return profiles.CVFields{}, errors.New("read cv: no text found")
	}

	raw, err := s.LLM.Complete(ctx, llm.Request{
		Operation:   llm.OpExtractCV,
		System:      systemPrompt,
		Prompt:      userPrompt(extract.Truncate(text, MaxCVChars)),
		Model:       s.Model,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return profiles.CVFields{}, fmt.Errorf("llm: %w", err)
	}
	return ParseFields(raw)
}

// replyFields mirrors profiles.CVFields but accepts fractional numbers.
type replyFields struct {
	FirstName               *string  `json:"first_name"`
	LastName                *string  `json:"last_name"`
	LinkedInURL             *string  `json:"linkedin_url"`
	YearsOfExperience       *float64 `json:"years_of_experience"`
	UndergraduateUniversity *string  `json:"undergraduate_university"`
	Languages               []string `json:"languages"`
	CurrentLocation         *string  `json:"current_location"`
	CurrentRole             *string  `json:"current_role"`
	CurrentCompany          *string  `json:"current_company"`
	LBSProgram              *string  `json:"lbs_program"`
	GraduationYear          *float64 `json:"graduation_year"`
}

// ParseFields decodes the model reply into normalized CV fields.
func ParseFields(raw string) (profiles.CVFields, error) {
	var r replyFields
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &r); err != nil {
		return profiles.CVFields{}, fmt.Errorf("invalid JSON from LLM: %w", err)
	}
	fields := profiles.CVFields{
		FirstName:               r.FirstName,
		LastName:                r.LastName,
		LinkedInURL:             r.LinkedInURL,
		YearsOfExperience:       roundPtr(r.YearsOfExperience),
		UndergraduateUniversity: r.UndergraduateUniversity,
		Languages:               r.Languages,
		CurrentLocation:         r.CurrentLocation,
		CurrentRole:             r.CurrentRole,
		CurrentCompany:          r.CurrentCompany,
		LBSProgram:              r.LBSProgram,
		GraduationYear:          roundPtr(r.GraduationYear),
	}
	return fields.Normalize(), nil
}

func roundPtr(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(math.Round(*v))
	return &i
}
