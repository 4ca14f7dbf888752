package profiles

import (
	"strings"
	"time"
)

type UserType string

const (
	Student UserType = "student"
	Alumni  UserType = "alumni"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == Student || t == Alumni
}

// Networking goals offered during onboarding. The first three are student
// goals, the rest alumni goals.
const (
	GoalExploring   = "exploring"
	GoalVenture     = "venture"
	GoalFiguringOut = "figuring-out"
	GoalExpand      = "expand"
	GoalPivot       = "pivot"
	GoalGiveBack    = "give-back"
)

var goalLabels = map[string]string{
	GoalExploring:   "Exploring specific industries",
	GoalVenture:     "Starting my own venture",
	GoalFiguringOut: "Still figuring it out",
	GoalExpand:      "Expand my network in my current industry",
	GoalPivot:       "I'm pivoting to a new industry",
	GoalGiveBack:    "I want to give back to the LBS community",
}

// GoalsFor returns the networking goals a user type may pick.
func GoalsFor(t UserType) []string {
	switch t {
	case Student:
		return []string{GoalExploring, GoalVenture, GoalFiguringOut}
	case Alumni:
		return []string{GoalExpand, GoalPivot, GoalGiveBack}
	default:
		return nil
	}
}

// FormatNetworkingGoal returns the display label for goal, or goal itself when unknown.
func FormatNetworkingGoal(goal string) string {
	if label, ok := goalLabels[goal]; ok {
		return label
	}
	return goal
}

// Programs are the school programs a profile can belong to.
var Programs = []string{"MAM", "MIM", "MBA", "MFA"}

// NormalizeProgram upper-cases p and returns "" when it is not a known program.
func NormalizeProgram(p string) string {
	p = strings.ToUpper(strings.TrimSpace(p))
	for _, known := range Programs {
		if p == known {
			return p
		}
	}
	return ""
}

// Profile is one user's identity, CV-derived data and preferences.
type Profile struct {
	ID                      string     `json:"id"`
	UserID                  string     `json:"user_id"`
	UserType                UserType   `json:"user_type"`
	Email                   string     `json:"email"`
	FirstName               string     `json:"first_name,omitempty"`
	LastName                string     `json:"last_name,omitempty"`
	LinkedInURL             string     `json:"linkedin_url,omitempty"`
	YearsOfExperience       *int       `json:"years_of_experience,omitempty"`
	UndergraduateUniversity string     `json:"undergraduate_university,omitempty"`
	Languages               []string   `json:"languages"`
	CurrentLocation         string     `json:"current_location,omitempty"`
	CurrentRole             string     `json:"current_role,omitempty"`
	CurrentCompany          string     `json:"current_company,omitempty"`
	LBSProgram              string     `json:"lbs_program,omitempty"`
	GraduationYear          *int       `json:"graduation_year,omitempty"`
	CVPath                  string     `json:"cv_path,omitempty"`
	CVUploadedAt            *time.Time `json:"cv_uploaded_at,omitempty"`
	NetworkingGoal          string     `json:"networking_goal,omitempty"`
	TargetIndustries        []string   `json:"target_industries"`
	SpecificInterests       string     `json:"specific_interests,omitempty"`
	SendWeeklyUpdates       bool       `json:"send_weekly_updates"`
	ConnectWithStudents     bool       `json:"connect_with_students"`
	ConnectWithAlumni       bool       `json:"connect_with_alumni"`
	OnboardingCompleted     bool       `json:"onboarding_completed"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// AcceptedTypes lists the user types p has opted in to meet.
func (p Profile) AcceptedTypes() []UserType {
	var out []UserType
	if p.ConnectWithStudents {
		out = append(out, Student)
	}
	if p.ConnectWithAlumni {
		out = append(out, Alumni)
	}
	return out
}

// Accepts reports whether p has opted in to meet users of type t.
func (p Profile) Accepts(t UserType) bool {
	switch t {
	case Student:
		return p.ConnectWithStudents
	case Alumni:
		return p.ConnectWithAlumni
	default:
		return false
	}
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Settings are the notification and matching preferences edited on the settings screen.
type Settings struct {
	SendWeeklyUpdates   bool `json:"send_weekly_updates"`
	ConnectWithStudents bool `json:"connect_with_students"`
	ConnectWithAlumni   bool `json:"connect_with_alumni"`
}

// SettingsOf extracts the settings currently stored on p.
func SettingsOf(p Profile) Settings {
	return Settings{
		SendWeeklyUpdates:   p.SendWeeklyUpdates,
		ConnectWithStudents: p.ConnectWithStudents,
		ConnectWithAlumni:   p.ConnectWithAlumni,
	}
}

// Update is a partial edit of user-editable profile fields. Nil fields are left unchanged.
type Update struct {
	FirstName         *string   `json:"first_name,omitempty"`
	LastName          *string   `json:"last_name,omitempty"`
	LinkedInURL       *string   `json:"linkedin_url,omitempty"`
	CurrentLocation   *string   `json:"current_location,omitempty"`
	CurrentRole       *string   `json:"current_role,omitempty"`
	CurrentCompany    *string   `json:"current_company,omitempty"`
	NetworkingGoal    *string   `json:"networking_goal,omitempty"`
	SpecificInterests *string   `json:"specific_interests,omitempty"`
	TargetIndustries  *[]string `json:"target_industries,omitempty"`
	Languages         *[]string `json:"languages,omitempty"`
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.LinkedInURL == nil &&
		u.CurrentLocation == nil && u.CurrentRole == nil && u.CurrentCompany == nil &&
		u.NetworkingGoal == nil && u.SpecificInterests == nil &&
		u.TargetIndustries == nil && u.Languages == nil
}

// CVFields are the profile fields extracted from a CV.
type CVFields struct {
	FirstName               *string  `json:"first_name"`
	LastName                *string  `json:"last_name"`
	LinkedInURL             *string  `json:"linkedin_url"`
	YearsOfExperience       *int     `json:"years_of_experience"`
	UndergraduateUniversity *string  `json:"undergraduate_university"`
	Languages               []string `json:"languages"`
	CurrentLocation         *string  `json:"current_location"`
	CurrentRole             *string  `json:"current_role"`
	CurrentCompany          *string  `json:"current_company"`
	LBSProgram              *string  `json:"lbs_program"`
	GraduationYear          *int     `json:"graduation_year"`
}

// CandidateFilter narrows the profiles considered for matching.
type CandidateFilter struct {
	ExcludeUserID string
	// UserTypes restricts candidate user types; empty means any.
	UserTypes []UserType
	// OptInFor requires candidates to have opted in to meeting this type.
	OptInFor UserType
	// Industries requires a shared primary industry when non-empty.
	Industries    []string
	Programs      []string
	MinExperience *int
	MaxExperience *int
	Limit         int
}

func (u Update) apply(p *Profile) {
	setString(&p.FirstName, u.FirstName)
	setString(&p.LastName, u.LastName)
	setString(&p.LinkedInURL, u.LinkedInURL)
	setString(&p.CurrentLocation, u.CurrentLocation)
	setString(&p.CurrentRole, u.CurrentRole)
	setString(&p.CurrentCompany, u.CurrentCompany)
	setString(&p.NetworkingGoal, u.NetworkingGoal)
	setString(&p.SpecificInterests, u.SpecificInterests)
	if u.TargetIndustries != nil {
		p.TargetIndustries = append([]string{}, (*u.TargetIndustries)...)
	}
	if u.Languages != nil {
		p.Languages = append([]string{}, (*u.Languages)...)
	}
}
