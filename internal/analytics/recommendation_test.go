package analytics

import (
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
)

// TestRecommendTier verifies the heuristic branches and their confidences
func TestRecommendTier(t *testing.T) {
	tests := []struct {
		name     string
		wellness int
		codes    int
		wantTier int
		wantConf float64
	}{
		{"high wellness few codes", 80, 1, 1, 0.75},
		{"low wellness", 30, 0, 3, 0.7},
		{"heavy code load", 30, 6, 3, 0.7},
		{"code load overrides wellness", 75, 6, 3, 0.7},
		{"middle ground", 55, 3, 2, 0.6},
		{"high wellness too many codes", 80, 3, 2, 0.6},
		{"boundary wellness 70", 70, 1, 2, 0.6},
		{"boundary wellness 40", 40, 0, 2, 0.6},
		{"boundary codes 5", 50, 5, 3, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecommendTier(tt.wellness, tt.codes)
			if rec.Tier != tt.wantTier {
				t.Errorf("tier = %d, want %d", rec.Tier, tt.wantTier)
			}
			if rec.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", rec.Confidence, tt.wantConf)
			}
		})
	}
}

// TestRecommendTierForDoesNotMutate verifies the suggestion leaves the profile alone
func TestRecommendTierForDoesNotMutate(t *testing.T) {
	s := subject(enrollee.TierTwo, uniformScores(90), "Z59.6")

	rec := RecommendTierFor(&s)
	if rec.Tier != enrollee.TierOne {
		t.Errorf("recommended tier = %d, want 1", rec.Tier)
	}
	if rec.Wellness != 90 || rec.CodeCount != 1 {
		t.Errorf("inputs echoed as %d/%d, want 90/1", rec.Wellness, rec.CodeCount)
	}
	if s.RiskProfile.Tier != enrollee.TierTwo {
		t.Errorf("stored tier mutated to %d", s.RiskProfile.Tier)
	}

	rec = RecommendTierFor(nil)
	if rec.Tier != enrollee.TierThree {
		t.Errorf("nil subject tier = %d, want 3 (wellness 0)", rec.Tier)
	}
}
