package analytics

import "github.com/kc-aidesigntech/atlas/internal/enrollee"

// TierRecommendation is an advisory risk-tier suggestion. It never mutates
// the stored tier.
type TierRecommendation struct {
	Tier       int     `json:"tier"`
	Confidence float64 `json:"confidence"`
	Wellness   int     `json:"wellness"`
	CodeCount  int     `json:"code_count"`
}

// RecommendTier suggests a risk tier from a subject's wellness score and
// classification-code count. High wellness with few codes maps to tier 1, low
// wellness or heavy code load to tier 3, everything else to tier 2. The
// confidence score reflects which branch fired.
func RecommendTier(wellness, codeCount int) TierRecommendation {
	rec := TierRecommendation{Wellness: wellness, CodeCount: codeCount}
	switch {
	case wellness > 70 && codeCount <= 2:
		rec.Tier = enrollee.TierOne
		rec.Confidence = 0.75
	case wellness < 40 || codeCount >= 5:
		rec.Tier = enrollee.TierThree
		rec.Confidence = 0.7
	default:
		rec.Tier = enrollee.TierTwo
		rec.Confidence = 0.6
	}
	return rec
}

// RecommendTierFor applies RecommendTier to an enrollee's current profile.
func RecommendTierFor(subject *enrollee.Enrollee) TierRecommendation {
	if subject == nil {
		return RecommendTier(0, 0)
	}
	return RecommendTier(SubjectWellness(subject), len(subject.RiskProfile.ClassificationCodes))
}
