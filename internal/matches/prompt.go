package matches

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"lbs-connect/internal/llm"
	"lbs-connect/internal/profiles"
)

const systemPrompt = "You are a professional networking matchmaker. Analyze profiles and provide thoughtful, personalized match recommendations."

// Candidate pairs a candidate profile with its summary.
type Candidate struct {
	Profile profiles.Profile
	Summary profiles.Summary
}

// BuildPrompt renders the ranking prompt for user against candidates.
func BuildPrompt(user profiles.Profile, summary profiles.Summary, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("You are a professional networking matchmaker for London Business School (LBS). ")
	b.WriteString("Analyze the user's profile and recommend the top 3 most compatible contacts from the pool of candidates.\n\n")

	b.WriteString("**User Profile:**\n")
	fmt.Fprintf(&b, "Name: %s\n", orNA(user.FullName()))
	fmt.Fprintf(&b, "Type: %s\n", user.UserType)
	writeDetails(&b, "", user, summary)

	b.WriteString("\n**Candidates:**\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "\nCandidate %d:\n", i+1)
		fmt.Fprintf(&b, "- ID: %s\n", c.Profile.UserID)
		fmt.Fprintf(&b, "- Name: %s\n", orNA(c.Profile.FullName()))
		fmt.Fprintf(&b, "- Type: %s\n", c.Summary.UserType)
		writeDetails(&b, "- ", c.Profile, c.Summary)
	}

	b.WriteString(`
**Your Task:**
Select the TOP 3 BEST MATCHES based on:
1. Shared industries: common target industries or career paths
2. Complementary goals: how their networking goals align or complement each other
3. Common background: same undergraduate university, similar work experience, or shared interests
4. LBS connection: same or complementary LBS programs
5. Mutual benefit: how both parties could benefit from the connection

For each match provide a compatibility score between 0.0 and 1.0 and a personalized reason of 2-3 sentences explaining why this person would be a valuable connection.

Return ONLY valid JSON in this exact format:
{
  "recommendations": [
    {"matched_user_id": "user_id_here", "score": 0.95, "reason": "Personalized reason"}
  ]
}

Return exactly 3 recommendations (or fewer if there are fewer than 3 candidates), sorted by score descending.`)
	return b.String()
}

func writeDetails(b *strings.Builder, prefix string, p profiles.Profile, s profiles.Summary) {
	program := strings.TrimSpace(p.LBSProgram)
	if p.GraduationYear != nil {
		program = strings.TrimSpace(fmt.Sprintf("%s %d", program, *p.GraduationYear))
	}
	history, _ := json.Marshal(s.WorkHistory)
	fmt.Fprintf(b, "%sLBS Program: %s\n", prefix, orNA(program))
	fmt.Fprintf(b, "%sUndergraduate: %s\n", prefix, orNA(p.UndergraduateUniversity))
	fmt.Fprintf(b, "%sCurrent Role: %s\n", prefix, orNA(p.CurrentRole))
	fmt.Fprintf(b, "%sNetworking Goal: %s\n", prefix, orNA(s.NetworkingGoal))
	fmt.Fprintf(b, "%sTarget Industries: %s\n", prefix, orNA(strings.Join(s.TargetIndustries, "; ")))
	fmt.Fprintf(b, "%sSpecific Interests: %s\n", prefix, orNA(s.SpecificInterests))
	fmt.Fprintf(b, "%sWork History: %s\n", prefix, history)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// ParseRecommendations decodes the model reply. Entries naming ids outside
// known, repeated ids and blank ids are dropped; scores are clamped to [0,1];
// the result is sorted by score descending and capped at MaxRecommendations.
func ParseRecommendations(raw string, known map[string]bool) ([]Recommendation, error) {
	var reply struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &reply); err != nil {
		return nil, fmt.Errorf("invalid JSON from LLM: %w", err)
	}
	seen := make(map[string]bool, len(reply.Recommendations))
	out := make([]Recommendation, 0, len(reply.Recommendations))
	for _, rec := range reply.Recommendations {
		rec.MatchedUserID = strings.TrimSpace(rec.MatchedUserID)
		if rec.MatchedUserID == "" || !known[rec.MatchedUserID] || seen[rec.MatchedUserID] {
			continue
		}
		seen[rec.MatchedUserID] = true
		rec.Score = clamp(rec.Score)
		rec.Reason = strings.TrimSpace(rec.Reason)
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out, nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
