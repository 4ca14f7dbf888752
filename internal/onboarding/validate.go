package onboarding

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"lbs-connect/internal/extract"
	"lbs-connect/internal/industries"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/util"
)

// MaxCVBytes is the largest CV accepted at onboarding.
const MaxCVBytes = 1 << 20

var ErrInvalidInput = errors.New("invalid onboarding input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Form holds the onboarding answers.
type Form struct {
	UserID            string
	Email             string
	UserType          profiles.UserType
	NetworkingGoal    string
	TargetIndustries  []string
	Industries        industries.Selection
	SpecificInterests string
	SendWeeklyUpdates bool
	ConnectStudents   bool
	ConnectAlumni     bool
	// CVPath names a CV uploaded earlier through a presigned URL.
	CVPath string
}

// Upload is a CV sent inline with the form.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// targetIndustries merges plain industry names with a formatted selection.
func (f Form) targetIndustries() []string {
	seen := map[string]bool{}
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	for _, v := range f.TargetIndustries {
		add(v)
	}
	for _, v := range industries.FormatForStorage(f.Industries) {
		add(v)
	}
	return out
}

func needsIndustries(t profiles.UserType, goal string) bool {
	switch t {
	case profiles.Student:
		return goal == profiles.GoalExploring
	case profiles.Alumni:
		return goal == profiles.GoalExpand || goal == profiles.GoalPivot
	}
	return false
}

// Validate checks the answers and CV without touching any backing service.
// Exactly one of upload or f.CVPath must be set.
func Validate(f Form, upload *Upload) error {
	if strings.TrimSpace(f.UserID) == "" {
		return invalid("user id is required")
	}
	if !f.UserType.Valid() {
		return invalid("user type must be student or alumni")
	}
	if !containsGoal(profiles.GoalsFor(f.UserType), f.NetworkingGoal) {
		return invalid("networking goal %q is not available for %s users", f.NetworkingGoal, f.UserType)
	}
	if err := industries.Validate(f.Industries); err != nil {
		return invalid("%v", err)
	}
	if needsIndustries(f.UserType, f.NetworkingGoal) && len(f.targetIndustries()) == 0 {
		return invalid("select at least one industry")
	}
	if f.UserType == profiles.Alumni && f.NetworkingGoal == profiles.GoalGiveBack && strings.TrimSpace(f.SpecificInterests) == "" {
		return invalid("tell us how you would like to give back")
	}

	switch {
	case upload != nil && f.CVPath != "":
		return invalid("send either a cv file or a cv path, not both")
	case upload != nil:
		if err := ValidateCVFile(upload.FileName, upload.ContentType, int64(len(upload.Data))); err != nil {
			return err
		}
		if !extract.IsPDF(upload.Data) {
			return invalid("cv content is not a pdf")
		}
	case f.CVPath != "":
		if err := validateCVPath(f.UserID, f.CVPath); err != nil {
			return err
		}
	default:
		return invalid("a cv is required")
	}
	return nil
}

// ValidateCVFile checks the declared name, type and size of a CV.
func ValidateCVFile(fileName, contentType string, size int64) error {
	name, err := util.CleanFileName(fileName)
	if err != nil {
		return invalid("invalid file name")
	}
	if strings.ToLower(path.Ext(name)) != ".pdf" {
		return invalid("only pdf files are allowed for cv uploads")
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != extract.MimePDF {
		return invalid("only pdf files are allowed for cv uploads")
	}
	if size <= 0 {
		return invalid("cv file is empty")
	}
	if size > MaxCVBytes {
		return invalid("file size must be less than 1MB")
	}
	return nil
}

func validateCVPath(userID, cvPath string) error {
	if strings.Contains(cvPath, "..") || !strings.HasPrefix(cvPath, userID+"/") {
		return invalid("cv path must belong to the caller")
	}
	if strings.ToLower(path.Ext(cvPath)) != ".pdf" {
		return invalid("cv path must name a pdf")
	}
	return nil
}

func containsGoal(goals []string, goal string) bool {
	for _, g := range goals {
		if g == goal {
			return true
		}
	}
	return false
}
