package sandbox

import (
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// TestSeedIDsDeterministic verifies reloads produce identical IDs
func TestSeedIDsDeterministic(t *testing.T) {
	if seedID("enrollee/ava") != seedID("enrollee/ava") {
		t.Error("seed IDs should be stable across calls")
	}
	if seedID("enrollee/ava") == seedID("enrollee/marcus") {
		t.Error("distinct seed names should yield distinct IDs")
	}

	first := demoEnrollees()
	second := demoEnrollees()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("enrollee %d ID differs between builds", i)
		}
	}
}

// TestDemoReferralsReferenceSeededRows verifies referential integrity of the dataset
func TestDemoReferralsReferenceSeededRows(t *testing.T) {
	enrolleeIDs := map[types.ID]bool{}
	for _, e := range demoEnrollees() {
		enrolleeIDs[e.ID] = true
	}
	resourceIDs := map[types.ID]bool{}
	for _, r := range demoResources() {
		resourceIDs[r.ID] = true
	}

	for _, ref := range demoReferrals() {
		if !enrolleeIDs[ref.EnrolleeID] {
			t.Errorf("referral %s points at unseeded enrollee %s", ref.ID, ref.EnrolleeID)
		}
		if !resourceIDs[ref.ResourceID] {
			t.Errorf("referral %s points at unseeded resource %s", ref.ID, ref.ResourceID)
		}
	}
}

// TestDemoDataShape sanity-checks the dataset the dashboards are demoed with
func TestDemoDataShape(t *testing.T) {
	subjects := demoEnrollees()
	if len(subjects) == 0 {
		t.Fatal("expected demo enrollees")
	}

	tiers := map[int]bool{}
	for _, s := range subjects {
		tiers[s.RiskProfile.Tier] = true
		for dim, score := range s.RiskProfile.WellnessScores {
			if score != enrollee.ClampScore(score) {
				t.Errorf("enrollee %s has out-of-range %s score %d", s.ID, dim, score)
			}
		}
	}
	for _, tier := range []int{enrollee.TierOne, enrollee.TierTwo, enrollee.TierThree} {
		if !tiers[tier] {
			t.Errorf("demo data missing tier %d", tier)
		}
	}
}
