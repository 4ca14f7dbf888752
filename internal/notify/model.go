package notify

import (
	"fmt"
	"strings"

	"lbs-connect/internal/matches"
)

const EmailTypeMatchNotification = "match_notification"

// Entry is one match as presented in the notification email.
type Entry struct {
	MatchedUserID  string `json:"matched_user_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	LBSProgram     string `json:"lbs_program"`
	GraduationYear *int   `json:"graduation_year"`
	LinkedInURL    string `json:"linkedin_url"`
	Reason         string `json:"reason"`
	CurrentRole    string `json:"current_role"`
	NetworkingGoal string `json:"networking_goal"`
}

// EntriesFrom flattens stored matches into email entries.
func EntriesFrom(ms []matches.MatchWithProfile) []Entry {
	out := make([]Entry, 0, len(ms))
	for _, m := range ms {
		out = append(out, Entry{
			MatchedUserID:  m.MatchedUserID,
			FirstName:      m.MatchedProfile.FirstName,
			LastName:       m.MatchedProfile.LastName,
			LBSProgram:     m.MatchedProfile.LBSProgram,
			GraduationYear: m.MatchedProfile.GraduationYear,
			LinkedInURL:    m.MatchedProfile.LinkedInURL,
			Reason:         m.Reason,
			CurrentRole:    m.MatchedProfile.CurrentRole,
		})
	}
	return out
}

// ProgramLine renders "PROG YEAR", "PROG" or "LBS Alumni".
func (e Entry) ProgramLine() string {
	program := strings.TrimSpace(e.LBSProgram)
	switch {
	case program != "" && e.GraduationYear != nil:
		return fmt.Sprintf("%s %d", program, *e.GraduationYear)
	case program != "":
		return program
	default:
		return "LBS Alumni"
	}
}

func (e Entry) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// programOrNil is the recipient program used in the drafting prompt; it
// differs from ProgramLine in not defaulting to "LBS Alumni".
func (e Entry) programOrNil() string {
	if strings.TrimSpace(e.LBSProgram) == "" {
		return ""
	}
	return e.ProgramLine()
}
