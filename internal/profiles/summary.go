package profiles

import (
	"fmt"
	"strings"
)

// Summary is the derived description of a profile used as matching context.
type Summary struct {
	UserType          UserType         `json:"user_type"`
	NetworkingGoal    string           `json:"networking_goal,omitempty"`
	SpecificInterests string           `json:"specific_interests,omitempty"`
	TargetIndustries  []string         `json:"target_industries"`
	MatchPreferences  MatchPreferences `json:"match_preferences"`
	EducationSummary  string           `json:"education_summary,omitempty"`
	Languages         []string         `json:"languages"`
	LBSProgram        string           `json:"lbs_program,omitempty"`
	CurrentLocation   string           `json:"current_location,omitempty"`
	WorkHistory       []WorkEntry      `json:"work_history"`
}

type MatchPreferences struct {
	Students bool `json:"students"`
	Alumni   bool `json:"alumni"`
}

type WorkEntry struct {
	Role    string `json:"role,omitempty"`
	Company string `json:"company,omitempty"`
	Years   *int   `json:"years,omitempty"`
}

// BuildSummary derives the matching summary from p.
func BuildSummary(p Profile) Summary {
	s := Summary{
		UserType:          p.UserType,
		NetworkingGoal:    FormatNetworkingGoal(p.NetworkingGoal),
		SpecificInterests: strings.TrimSpace(p.SpecificInterests),
		TargetIndustries:  nonNil(p.TargetIndustries),
		MatchPreferences: MatchPreferences{
			Students: p.ConnectWithStudents,
			Alumni:   p.ConnectWithAlumni,
		},
		EducationSummary: educationSummary(p),
		Languages:        nonNil(p.Languages),
		LBSProgram:       p.LBSProgram,
		CurrentLocation:  p.CurrentLocation,
		WorkHistory:      []WorkEntry{},
	}
	if p.CurrentRole != "" || p.CurrentCompany != "" {
		s.WorkHistory = append(s.WorkHistory, WorkEntry{
			Role:    p.CurrentRole,
			Company: p.CurrentCompany,
			Years:   p.YearsOfExperience,
		})
	}
	return s
}

func educationSummary(p Profile) string {
	var parts []string
	if p.LBSProgram != "" {
		lbs := "London Business School " + p.LBSProgram
		if p.GraduationYear != nil {
			lbs += fmt.Sprintf(" (class of %d)", *p.GraduationYear)
		}
		parts = append(parts, lbs)
	}
	if p.UndergraduateUniversity != "" {
		parts = append(parts, "Undergraduate at "+p.UndergraduateUniversity)
	}
	return strings.Join(parts, "; ")
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
