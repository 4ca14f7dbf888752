package profiles

import (
	"strings"
	"time"
)

// Normalize trims strings, drops empty values, keeps only known programs and
// plausible numbers, and de-duplicates languages. The result never has nil Languages.
func (f CVFields) Normalize() CVFields {
	out := CVFields{
		FirstName:               cleanString(f.FirstName),
		LastName:                cleanString(f.LastName),
		LinkedInURL:             normalizeLinkedIn(cleanString(f.LinkedInURL)),
		UndergraduateUniversity: cleanString(f.UndergraduateUniversity),
		CurrentLocation:         cleanString(f.CurrentLocation),
		CurrentRole:             cleanString(f.CurrentRole),
		CurrentCompany:          cleanString(f.CurrentCompany),
		Languages:               []string{},
	}
	if f.LBSProgram != nil {
		if p := NormalizeProgram(*f.LBSProgram); p != "" {
			out.LBSProgram = &p
		}
	}
	if f.YearsOfExperience != nil && *f.YearsOfExperience >= 0 && *f.YearsOfExperience <= 70 {
		v := *f.YearsOfExperience
		out.YearsOfExperience = &v
	}
	maxYear := time.Now().Year() + 10
	if f.GraduationYear != nil && *f.GraduationYear >= 1950 && *f.GraduationYear <= maxYear {
		v := *f.GraduationYear
		out.GraduationYear = &v
	}
	seen := make(map[string]bool, len(f.Languages))
	for _, lang := range f.Languages {
		lang = strings.TrimSpace(lang)
		key := strings.ToLower(lang)
		if lang == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Languages = append(out.Languages, lang)
	}
	return out
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func normalizeLinkedIn(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		v = "https://" + v
	}
	return &v
}

// apply copies non-nil extracted values onto p. Languages replace the stored
// list only when the extraction found some.
func (f CVFields) apply(p *Profile) {
	setString(&p.FirstName, f.FirstName)
	setString(&p.LastName, f.LastName)
	setString(&p.LinkedInURL, f.LinkedInURL)
	setString(&p.UndergraduateUniversity, f.UndergraduateUniversity)
	setString(&p.CurrentLocation, f.CurrentLocation)
	setString(&p.CurrentRole, f.CurrentRole)
	setString(&p.CurrentCompany, f.CurrentCompany)
	setString(&p.LBSProgram, f.LBSProgram)
	if f.YearsOfExperience != nil {
		v := *f.YearsOfExperience
		p.YearsOfExperience = &v
	}
	if f.GraduationYear != nil {
		v := *f.GraduationYear
		p.GraduationYear = &v
	}
	if len(f.Languages) > 0 {
		p.Languages = append([]string(nil), f.Languages...)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
