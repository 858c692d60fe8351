package assessment

import (
	"sort"
	"time"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
)

// Record is one completed assessment, already normalized from the external
// service or the legacy database.
type Record struct {
	ExternalID  string    `json:"external_id"`
	SubjectRef  string    `json:"subject_ref"`
	CompletedAt time.Time `json:"completed_at"`

	// CompositeScore is the 0-43 point total; higher means more need.
	CompositeScore int `json:"composite_score"`

	// DomainScores are per-domain subscores on the same 0-43 scale.
	DomainScores map[string]int `json:"domain_scores"`

	// PositiveScreens are screening items the subject screened positive on.
	PositiveScreens []string `json:"positive_screens"`
}

// Composite-score tier thresholds.
const (
	tier1MaxScore = 11
	tier2MaxScore = 31
	compositeMax  = 43
)

// TierForScore maps a composite score to a risk tier.
func TierForScore(composite int) int {
	switch {
	case composite <= tier1MaxScore:
		return enrollee.TierOne
	case composite <= tier2MaxScore:
		return enrollee.TierTwo
	default:
		return enrollee.TierThree
	}
}

// domainDimensions maps assessment domain keys to wellness dimensions.
var domainDimensions = map[string]string{
	"mental_health":   enrollee.DimensionEmotional,
	"physical_health": enrollee.DimensionPhysical,
	"social_support":  enrollee.DimensionSocial,
	"finances":        enrollee.DimensionFinancial,
	"housing":         enrollee.DimensionEnvironmental,
	"employment":      enrollee.DimensionOccupational,
	"education":       enrollee.DimensionIntellectual,
	"meaning":         enrollee.DimensionSpiritual,
}

// screenCodes maps positive screening items to classification codes.
var screenCodes = map[string]string{
	"housing_instability": "Z59.1",
	"homelessness":        "Z59.0",
	"food_insecurity":     "Z59.4",
	"unemployment":        "Z56.0",
	"low_income":          "Z59.6",
	"social_isolation":    "Z60.2",
	"care_access":         "Z75.3",
	"medication_cost":     "Z91.120",
	"literacy":            "Z55.0",
	"family_loss":         "Z63.4",
}

// ToRiskProfile converts an assessment record into the portal's risk-profile
// vocabulary. Domain subscores measure need on the 0-43 scale, so wellness is
// the inverted score rescaled to 0-100. Unmapped domains and screens are
// dropped.
func ToRiskProfile(rec *Record) enrollee.RiskProfile {
	profile := enrollee.RiskProfile{
		Tier:                TierForScore(rec.CompositeScore),
		WellnessScores:      map[string]int{},
		ClassificationCodes: []string{},
		DomainScores:        map[string]int{},
	}

	for domain, score := range rec.DomainScores {
		dim, ok := domainDimensions[domain]
		if !ok {
			continue
		}
		profile.DomainScores[dim] = score
		profile.WellnessScores[dim] = enrollee.ClampScore(100 - score*100/compositeMax)
	}

	seen := map[string]bool{}
	for _, screen := range rec.PositiveScreens {
		code, ok := screenCodes[screen]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		profile.ClassificationCodes = append(profile.ClassificationCodes, code)
	}
	sort.Strings(profile.ClassificationCodes)

	return profile
}
