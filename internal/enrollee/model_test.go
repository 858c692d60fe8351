package enrollee

import "testing"

// TestNew verifies enrollee creation and validation
func TestNew(t *testing.T) {
	e, err := New("Ava", "Reyes")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if e.ID.IsZero() {
		t.Error("expected non-zero ID")
	}
	if e.RiskProfile.Tier != TierUnassessed {
		t.Errorf("new enrollee tier = %d, want unassessed", e.RiskProfile.Tier)
	}

	if _, err := New("", "Reyes"); err == nil {
		t.Error("expected error for missing first name")
	}
	if _, err := New("Ava", ""); err == nil {
		t.Error("expected error for missing last name")
	}
}

// TestSetRiskProfile verifies tier validation and score clamping
func TestSetRiskProfile(t *testing.T) {
	e, _ := New("Ava", "Reyes")

	err := e.SetRiskProfile(RiskProfile{
		Tier: TierTwo,
		WellnessScores: map[string]int{
			DimensionEmotional: 150,
			DimensionPhysical:  -20,
			DimensionSocial:    55,
		},
		ClassificationCodes: []string{"Z59.6"},
	})
	if err != nil {
		t.Fatalf("SetRiskProfile() error: %v", err)
	}

	if got := e.RiskProfile.WellnessScores[DimensionEmotional]; got != 100 {
		t.Errorf("over-range score clamped to %d, want 100", got)
	}
	if got := e.RiskProfile.WellnessScores[DimensionPhysical]; got != 0 {
		t.Errorf("under-range score clamped to %d, want 0", got)
	}
	if got := e.RiskProfile.WellnessScores[DimensionSocial]; got != 55 {
		t.Errorf("in-range score = %d, want 55", got)
	}

	for _, tier := range []int{-1, 4, 10} {
		if err := e.SetRiskProfile(RiskProfile{Tier: tier}); err == nil {
			t.Errorf("SetRiskProfile(tier=%d) should fail", tier)
		}
	}
}

// TestHasCode verifies classification-code membership
func TestHasCode(t *testing.T) {
	e, _ := New("Ava", "Reyes")
	e.RiskProfile.ClassificationCodes = []string{"Z59.0", "Z59.6"}

	if !e.HasCode("Z59.6") {
		t.Error("expected HasCode(Z59.6) = true")
	}
	if e.HasCode("Z56.0") {
		t.Error("expected HasCode(Z56.0) = false")
	}
}

// TestCodeName verifies the lookup table and its fallback
func TestCodeName(t *testing.T) {
	if got := CodeName("Z59.0"); got != "Homelessness" {
		t.Errorf("CodeName(Z59.0) = %q", got)
	}
	if got := CodeName("Q99.9"); got != FallbackCodeName {
		t.Errorf("CodeName(unknown) = %q, want fallback", got)
	}
}
