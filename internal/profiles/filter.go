package profiles

import "lbs-connect/internal/industries"

// DefaultCandidateLimit caps how many candidates are loaded for one ranking prompt.
const DefaultCandidateLimit = 50

// Match reports whether p satisfies every criterion in f.
func (f CandidateFilter) Match(p Profile) bool {
	if !p.OnboardingCompleted || p.UserID == f.ExcludeUserID {
		return false
	}
	if len(f.UserTypes) > 0 && !containsType(f.UserTypes, p.UserType) {
		return false
	}
	if f.OptInFor != "" && !p.Accepts(f.OptInFor) {
		return false
	}
	if len(f.Programs) > 0 && !containsString(f.Programs, p.LBSProgram) {
		return false
	}
	if f.MinExperience != nil && (p.YearsOfExperience == nil || *p.YearsOfExperience < *f.MinExperience) {
		return false
	}
	if f.MaxExperience != nil && (p.YearsOfExperience == nil || *p.YearsOfExperience > *f.MaxExperience) {
		return false
	}
	return f.matchIndustries(p)
}

func (f CandidateFilter) matchIndustries(p Profile) bool {
	if len(f.Industries) == 0 {
		return true
	}
	return industries.Overlap(f.Industries, p.TargetIndustries)
}

func (f CandidateFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultCandidateLimit
	}
	return f.Limit
}

func containsType(list []UserType, v UserType) bool {
	for _, t := range list {
		if t == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
