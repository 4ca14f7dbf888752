package matches

import (
	"time"

	"lbs-connect/internal/profiles"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

// MaxRecommendations caps how many matches one generation stores.
const MaxRecommendations = 3

// Match is a directional recommendation: MatchedUserID is suggested to UserID.
type Match struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	MatchedUserID string     `json:"matched_user_id"`
	Score         float64    `json:"score"`
	Reason        string     `json:"reason"`
	Status        Status     `json:"status"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Active reports whether m is pending and not yet expired at now.
func (m Match) Active(now time.Time) bool {
	return m.Status == StatusPending && (m.ExpiresAt == nil || m.ExpiresAt.After(now))
}

// MatchedProfile is the public slice of the matched user's profile.
type MatchedProfile struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	LinkedInURL    string `json:"linkedin_url,omitempty"`
	CurrentRole    string `json:"current_role,omitempty"`
	LBSProgram     string `json:"lbs_program,omitempty"`
	GraduationYear *int   `json:"graduation_year,omitempty"`
}

func matchedProfileOf(p profiles.Profile) MatchedProfile {
	return MatchedProfile{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		LinkedInURL:    p.LinkedInURL,
		CurrentRole:    p.CurrentRole,
		LBSProgram:     p.LBSProgram,
		GraduationYear: p.GraduationYear,
	}
}

type MatchWithProfile struct {
	Match
	MatchedProfile MatchedProfile `json:"matched_profile"`
}

// Recommendation is one ranked entry parsed from the model reply.
type Recommendation struct {
	MatchedUserID string  `json:"matched_user_id"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
}

// Criteria optionally narrows the candidate pool.
type Criteria struct {
	Industries    []string `json:"industries,omitempty"`
	Programs      []string `json:"programs,omitempty"`
	MinExperience *int     `json:"min_experience,omitempty"`
	MaxExperience *int     `json:"max_experience,omitempty"`
}

// Result is the outcome of one generation.
type Result struct {
	Matches []MatchWithProfile
	Message string
}
