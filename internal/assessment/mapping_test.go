package assessment

import (
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
)

// TestTierForScore verifies the composite-score thresholds
func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, enrollee.TierOne},
		{11, enrollee.TierOne},
		{12, enrollee.TierTwo},
		{31, enrollee.TierTwo},
		{32, enrollee.TierThree},
		{43, enrollee.TierThree},
	}

	for _, tt := range tests {
		if got := TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

// TestToRiskProfile verifies domain rescaling and screen-to-code mapping
func TestToRiskProfile(t *testing.T) {
	rec := &Record{
		CompositeScore: 35,
		DomainScores: map[string]int{
			"mental_health": 43, // max need -> wellness 0
			"finances":      0,  // no need -> wellness 100
			"housing":       21,
			"unknown_axis":  10, // dropped
		},
		PositiveScreens: []string{
			"homelessness",
			"food_insecurity",
			"food_insecurity", // duplicate collapses
			"unmapped_screen", // dropped
		},
	}

	profile := ToRiskProfile(rec)

	if profile.Tier != enrollee.TierThree {
		t.Errorf("tier = %d, want 3", profile.Tier)
	}

	if got := profile.WellnessScores[enrollee.DimensionEmotional]; got != 0 {
		t.Errorf("emotional wellness = %d, want 0", got)
	}
	if got := profile.WellnessScores[enrollee.DimensionFinancial]; got != 100 {
		t.Errorf("financial wellness = %d, want 100", got)
	}
	// 100 - 21*100/43 = 100 - 48 = 52
	if got := profile.WellnessScores[enrollee.DimensionEnvironmental]; got != 52 {
		t.Errorf("environmental wellness = %d, want 52", got)
	}
	if len(profile.WellnessScores) != 3 {
		t.Errorf("wellness has %d dimensions, want 3 (unknown domain dropped)", len(profile.WellnessScores))
	}

	wantCodes := []string{"Z59.0", "Z59.4"}
	if len(profile.ClassificationCodes) != len(wantCodes) {
		t.Fatalf("codes = %v, want %v", profile.ClassificationCodes, wantCodes)
	}
	for i, code := range wantCodes {
		if profile.ClassificationCodes[i] != code {
			t.Errorf("codes = %v, want %v", profile.ClassificationCodes, wantCodes)
			break
		}
	}
}

// TestToRiskProfileEmptyRecord verifies a bare record maps cleanly
func TestToRiskProfileEmptyRecord(t *testing.T) {
	profile := ToRiskProfile(&Record{CompositeScore: 5})

	if profile.Tier != enrollee.TierOne {
		t.Errorf("tier = %d, want 1", profile.Tier)
	}
	if profile.WellnessScores == nil || profile.ClassificationCodes == nil {
		t.Error("expected non-nil empty maps and slices")
	}
	if len(profile.WellnessScores) != 0 || len(profile.ClassificationCodes) != 0 {
		t.Error("expected empty wellness and codes")
	}
}
