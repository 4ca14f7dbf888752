// Package industries holds the target-industry taxonomy and the string
// encoding used to persist a selection on a profile.
package industries

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/server/respond"
)

// Industry is a primary sector and its selectable sub-sectors.
type Industry struct {
	Name       string   `json:"name"`
	SubSectors []string `json:"subSectors"`
}

// Taxonomy lists primaries in display order.
var Taxonomy = []Industry{
	{Name: "Finance", SubSectors: []string{
		"Asset Management",
		"Commodity Trading",
		"Family Offices",
		"Hedge Funds",
		"Impact Investing",
		"Investment Banking",
		"Private Equity",
		"Private Wealth Management",
		"Real Estate",
		"Retail / Commercial Banking",
		"Sovereign Wealth Funds",
	}},
	{Name: "Consulting", SubSectors: []string{}},
	{Name: "Tech", SubSectors: []string{
		"ClimateTech",
		"FinTech",
		"HealthTech",
		"Technology, Media & Telecoms",
		"Venture Capital",
	}},
	{Name: "Diversified", SubSectors: []string{
		"Climate and Sustainability",
		"Consumer Goods",
		"Energy",
		"Healthcare",
		"Industrials",
		"Retail & Luxury",
		"Social Impact",
	}},
}

// Selection maps a primary industry to the chosen sub-sectors.
type Selection map[string][]string

func lookup(primary string) (Industry, bool) {
	for _, ind := range Taxonomy {
		if strings.EqualFold(ind.Name, primary) {
			return ind, true
		}
	}
	return Industry{}, false
}

// Validate rejects primaries or sub-sectors missing from the taxonomy.
func Validate(sel Selection) error {
	for primary, subs := range sel {
		ind, ok := lookup(primary)
		if !ok {
			return fmt.Errorf("unknown industry %q", primary)
		}
		for _, sub := range subs {
			if !contains(ind.SubSectors, sub) {
				return fmt.Errorf("unknown sub-sector %q for %s", sub, ind.Name)
			}
		}
	}
	return nil
}

// FormatForStorage encodes a selection as one "Primary: a, b" string per
// primary, in taxonomy order. Primaries without sub-sectors are skipped.
// Sub-sector names containing commas do not survive ParseStored intact.
func FormatForStorage(sel Selection) []string {
	out := make([]string, 0, len(sel))
	seen := make(map[string]bool, len(sel))
	for _, ind := range Taxonomy {
		for primary, subs := range sel {
			if !strings.EqualFold(primary, ind.Name) || len(subs) == 0 {
				continue
			}
			seen[primary] = true
			out = append(out, ind.Name+": "+strings.Join(subs, ", "))
		}
	}
	var unknown []string
	for primary, subs := range sel {
		if !seen[primary] && len(subs) > 0 {
			if _, ok := lookup(primary); !ok {
				unknown = append(unknown, primary)
			}
		}
	}
	sort.Strings(unknown)
	for _, primary := range unknown {
		out = append(out, primary+": "+strings.Join(sel[primary], ", "))
	}
	return out
}

// ParseStored decodes stored strings. The text before the first ":" is the
// primary; the rest is split on ",". Entries without ":" name a bare primary.
func ParseStored(stored []string) Selection {
	sel := make(Selection, len(stored))
	for _, raw := range stored {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		primary, rest, found := strings.Cut(raw, ":")
		primary = strings.TrimSpace(primary)
		if !found {
			if _, ok := sel[primary]; !ok {
				sel[primary] = []string{}
			}
			continue
		}
		for _, sub := range strings.Split(rest, ",") {
			if sub = strings.TrimSpace(sub); sub != "" {
				sel[primary] = append(sel[primary], sub)
			}
		}
		if _, ok := sel[primary]; !ok {
			sel[primary] = []string{}
		}
	}
	return sel
}

// Primaries returns the primary names in stored strings, lower-cased.
func Primaries(stored []string) []string {
	sel := ParseStored(stored)
	out := make([]string, 0, len(sel))
	for primary := range sel {
		out = append(out, strings.ToLower(primary))
	}
	sort.Strings(out)
	return out
}

// Overlap reports whether two stored selections share a primary industry.
func Overlap(a, b []string) bool {
	pa := Primaries(a)
	for _, p := range Primaries(b) {
		if contains(pa, p) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// RegisterRoutes exposes the taxonomy.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/industries", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, respond.Envelope{Success: true, Data: Taxonomy})
	})
}
