package analytics

import (
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/referral"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

func uniformScores(score int) map[string]int {
	scores := make(map[string]int, len(enrollee.Dimensions))
	for _, dim := range enrollee.Dimensions {
		scores[dim] = score
	}
	return scores
}

func subject(tier int, scores map[string]int, codes ...string) enrollee.Enrollee {
	return enrollee.Enrollee{
		ID: types.NewID(),
		RiskProfile: enrollee.RiskProfile{
			Tier:                tier,
			WellnessScores:      scores,
			ClassificationCodes: codes,
		},
	}
}

// TestAverageWellnessEmpty verifies the empty population yields zero
func TestAverageWellnessEmpty(t *testing.T) {
	if got := AverageWellness(nil); got != 0 {
		t.Errorf("AverageWellness(nil) = %v, want 0", got)
	}
	if got := AverageWellness([]enrollee.Enrollee{}); got != 0 {
		t.Errorf("AverageWellness(empty) = %v, want 0", got)
	}

	// Subjects exist but nobody has scores.
	unscored := []enrollee.Enrollee{subject(1, nil), subject(2, map[string]int{})}
	if got := AverageWellness(unscored); got != 0 {
		t.Errorf("AverageWellness(unscored) = %v, want 0", got)
	}
}

// TestAverageWellnessExcludesMissing verifies missing dimensions leave the denominator
func TestAverageWellnessExcludesMissing(t *testing.T) {
	// One subject with two dimensions at 60 and 80. Missing dimensions are
	// not counted as zero here.
	s := subject(1, map[string]int{
		enrollee.DimensionEmotional: 60,
		enrollee.DimensionPhysical:  80,
	})
	if got := AverageWellness([]enrollee.Enrollee{s}); got != 70 {
		t.Errorf("AverageWellness = %v, want 70", got)
	}
}

// TestSubjectWellness verifies missing dimensions count as zero per subject
func TestSubjectWellness(t *testing.T) {
	full := subject(1, uniformScores(80))
	if got := SubjectWellness(&full); got != 80 {
		t.Errorf("SubjectWellness(all 80) = %d, want 80", got)
	}

	scores := uniformScores(80)
	delete(scores, enrollee.DimensionSpiritual)
	partial := subject(1, scores)
	// round(7*80/8) = 70
	if got := SubjectWellness(&partial); got != 70 {
		t.Errorf("SubjectWellness(one missing) = %d, want 70", got)
	}

	empty := subject(1, nil)
	if got := SubjectWellness(&empty); got != 0 {
		t.Errorf("SubjectWellness(no scores) = %d, want 0", got)
	}
	if got := SubjectWellness(nil); got != 0 {
		t.Errorf("SubjectWellness(nil) = %d, want 0", got)
	}
}

// TestDimensionAverages verifies per-dimension denominators exclude missing subjects
func TestDimensionAverages(t *testing.T) {
	a := subject(1, map[string]int{enrollee.DimensionEmotional: 40, enrollee.DimensionPhysical: 90})
	b := subject(1, map[string]int{enrollee.DimensionEmotional: 60})

	averages := DimensionAverages([]enrollee.Enrollee{a, b})
	if got := averages[enrollee.DimensionEmotional]; got != 50 {
		t.Errorf("emotional average = %v, want 50", got)
	}
	// Only subject a has physical; b must not drag it down.
	if got := averages[enrollee.DimensionPhysical]; got != 90 {
		t.Errorf("physical average = %v, want 90", got)
	}
	if got := averages[enrollee.DimensionSocial]; got != 0 {
		t.Errorf("social average = %v, want 0", got)
	}
	if len(averages) != len(enrollee.Dimensions) {
		t.Errorf("averages has %d dimensions, want %d", len(averages), len(enrollee.Dimensions))
	}
}

// TestRiskDistribution verifies counts sum to the population and percentages to ~100
func TestRiskDistribution(t *testing.T) {
	subjects := []enrollee.Enrollee{
		subject(1, nil), subject(1, nil), subject(2, nil),
		subject(3, nil), subject(0, nil),
	}

	dist := ComputeRiskDistribution(subjects)
	if sum := dist.Tier1 + dist.Tier2 + dist.Tier3 + dist.Unassessed; sum != len(subjects) {
		t.Errorf("tier counts sum to %d, want %d", sum, len(subjects))
	}
	if dist.Tier1 != 2 || dist.Tier2 != 1 || dist.Tier3 != 1 || dist.Unassessed != 1 {
		t.Errorf("counts = %d/%d/%d/%d", dist.Tier1, dist.Tier2, dist.Tier3, dist.Unassessed)
	}
	if dist.Tier1Percent != 40 || dist.Tier2Percent != 20 || dist.Tier3Percent != 20 {
		t.Errorf("percentages = %d/%d/%d, want 40/20/20",
			dist.Tier1Percent, dist.Tier2Percent, dist.Tier3Percent)
	}
}

// TestRiskDistributionPercentagesRoughly100 checks rounding never drifts far
func TestRiskDistributionPercentagesRoughly100(t *testing.T) {
	subjects := []enrollee.Enrollee{subject(1, nil), subject(2, nil), subject(3, nil)}

	dist := ComputeRiskDistribution(subjects)
	total := dist.Tier1Percent + dist.Tier2Percent + dist.Tier3Percent
	if total < 98 || total > 102 {
		t.Errorf("percentages sum to %d, want ~100", total)
	}
}

// TestRiskDistributionEmpty verifies all-zero output with no subjects
func TestRiskDistributionEmpty(t *testing.T) {
	dist := ComputeRiskDistribution(nil)
	if dist.Tier1 != 0 || dist.Tier2 != 0 || dist.Tier3 != 0 {
		t.Error("expected zero counts")
	}
	if dist.Tier1Percent != 0 || dist.Tier2Percent != 0 || dist.Tier3Percent != 0 {
		t.Error("expected zero percentages, not NaN or panic")
	}
}

// TestCodeAnalysis verifies the frequency table, averages and name lookup
func TestCodeAnalysis(t *testing.T) {
	subjects := []enrollee.Enrollee{
		subject(1, nil, "Z59.0", "Z59.6"),
		subject(2, nil, "Z59.6"),
		subject(3, nil),
		subject(2, nil, "Z59.6", "Z56.0", "XX.99"),
	}

	analysis := ComputeCodeAnalysis(subjects)
	if analysis.TotalOccurrences != 6 {
		t.Errorf("total occurrences = %d, want 6", analysis.TotalOccurrences)
	}
	if analysis.SubjectsWithCodes != 3 {
		t.Errorf("subjects with codes = %d, want 3", analysis.SubjectsWithCodes)
	}
	if analysis.AvgPerSubject != 1.5 {
		t.Errorf("avg per subject = %v, want 1.5", analysis.AvgPerSubject)
	}

	if len(analysis.TopCodes) != 4 {
		t.Fatalf("top codes has %d rows, want 4", len(analysis.TopCodes))
	}
	top := analysis.TopCodes[0]
	if top.Code != "Z59.6" || top.Count != 3 {
		t.Errorf("top code = %s (%d), want Z59.6 (3)", top.Code, top.Count)
	}
	if top.Name != "Low income" {
		t.Errorf("top code name = %q, want %q", top.Name, "Low income")
	}

	for _, row := range analysis.TopCodes {
		if row.Code == "XX.99" && row.Name != enrollee.FallbackCodeName {
			t.Errorf("unrecognized code name = %q, want fallback", row.Name)
		}
	}
}

// TestCodeAnalysisTop5 verifies the table is capped at five rows
func TestCodeAnalysisTop5(t *testing.T) {
	codes := []string{"Z55.0", "Z56.0", "Z59.0", "Z59.1", "Z59.4", "Z59.6", "Z60.2"}
	subjects := make([]enrollee.Enrollee, 0, len(codes))
	for _, code := range codes {
		subjects = append(subjects, subject(1, nil, code))
	}

	analysis := ComputeCodeAnalysis(subjects)
	if len(analysis.TopCodes) != 5 {
		t.Errorf("top codes has %d rows, want 5", len(analysis.TopCodes))
	}
}

// TestCareTeamAnalysis verifies membership counts and role frequencies
func TestCareTeamAnalysis(t *testing.T) {
	a := subject(1, nil)
	a.CareTeam = []enrollee.CareTeamMember{
		{Name: "A", Role: "Care Coordinator"},
		{Name: "B", Role: "Nurse"},
	}
	b := subject(2, nil)
	b.CareTeam = []enrollee.CareTeamMember{{Name: "C", Role: "Care Coordinator"}}

	analysis := ComputeCareTeamAnalysis([]enrollee.Enrollee{a, b})
	if analysis.TotalMembers != 3 {
		t.Errorf("total members = %d, want 3", analysis.TotalMembers)
	}
	if analysis.AvgTeamSize != 1.5 {
		t.Errorf("avg team size = %v, want 1.5", analysis.AvgTeamSize)
	}
	if analysis.RoleCounts["Care Coordinator"] != 2 || analysis.RoleCounts["Nurse"] != 1 {
		t.Errorf("role counts = %v", analysis.RoleCounts)
	}

	empty := ComputeCareTeamAnalysis(nil)
	if empty.TotalMembers != 0 || empty.AvgTeamSize != 0 {
		t.Error("expected zero care-team analysis for empty input")
	}
}

// TestReferralAnalysis verifies status counts, acceptance rate and top resources
func TestReferralAnalysis(t *testing.T) {
	resA := types.NewID()
	resB := types.NewID()
	names := map[types.ID]string{resA: "Harbor House", resB: "Prairie Pantry"}

	referrals := []referral.Referral{
		{ResourceID: resA, Status: referral.StatusAccepted},
		{ResourceID: resA, Status: referral.StatusPending},
		{ResourceID: resA, Status: referral.StatusRejected},
		{ResourceID: resB, Status: referral.StatusAccepted},
	}

	analysis := ComputeReferralAnalysis(referrals, names)
	if analysis.Total != 4 {
		t.Errorf("total = %d, want 4", analysis.Total)
	}
	if analysis.StatusCounts[referral.StatusAccepted] != 2 {
		t.Errorf("accepted count = %d, want 2", analysis.StatusCounts[referral.StatusAccepted])
	}
	if analysis.AcceptanceRate != 50 {
		t.Errorf("acceptance rate = %d, want 50", analysis.AcceptanceRate)
	}
	if len(analysis.TopResources) != 2 {
		t.Fatalf("top resources has %d rows, want 2", len(analysis.TopResources))
	}
	if analysis.TopResources[0].ResourceID != resA || analysis.TopResources[0].Count != 3 {
		t.Errorf("top resource = %v", analysis.TopResources[0])
	}
	if analysis.TopResources[0].Name != "Harbor House" {
		t.Errorf("top resource name = %q", analysis.TopResources[0].Name)
	}
}

// TestReferralAnalysisEmpty verifies the zero-denominator guard
func TestReferralAnalysisEmpty(t *testing.T) {
	analysis := ComputeReferralAnalysis(nil, nil)
	if analysis.AcceptanceRate != 0 {
		t.Errorf("acceptance rate = %d, want 0", analysis.AcceptanceRate)
	}
	if analysis.Total != 0 || len(analysis.TopResources) != 0 {
		t.Error("expected empty analysis")
	}
}

// TestClassifyTrend verifies the ±10 band around the population average
func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		wellness int
		average  float64
		want     string
	}{
		{65, 50, TrendImproving},
		{50, 50, TrendStable},
		{30, 50, TrendDeclining},
		{60, 50, TrendStable}, // exactly +10 is stable
		{40, 50, TrendStable}, // exactly -10 is stable
		{61, 50, TrendImproving},
		{39, 50, TrendDeclining},
	}

	for _, tt := range tests {
		if got := ClassifyTrend(tt.wellness, tt.average); got != tt.want {
			t.Errorf("ClassifyTrend(%d, %v) = %s, want %s", tt.wellness, tt.average, got, tt.want)
		}
	}
}

// TestComputeTrendClassification verifies bucket counts against the population average
func TestComputeTrendClassification(t *testing.T) {
	subjects := []enrollee.Enrollee{
		subject(1, uniformScores(80)),
		subject(2, uniformScores(50)),
		subject(3, uniformScores(20)),
	}
	// Population average is 50; 80 improves, 20 declines.

	trend := ComputeTrendClassification(subjects)
	if trend.PopulationAverage != 50 {
		t.Errorf("population average = %v, want 50", trend.PopulationAverage)
	}
	if trend.Improving != 1 || trend.Stable != 1 || trend.Declining != 1 {
		t.Errorf("buckets = %d/%d/%d, want 1/1/1", trend.Improving, trend.Stable, trend.Declining)
	}
	if trend.ImprovingPercent != 33 || trend.DecliningPercent != 33 {
		t.Errorf("percentages = %d/%d/%d",
			trend.ImprovingPercent, trend.StablePercent, trend.DecliningPercent)
	}

	empty := ComputeTrendClassification(nil)
	if empty.Improving != 0 || empty.ImprovingPercent != 0 {
		t.Error("expected zero trend for empty input")
	}
}

// TestGeoAnalysis verifies ZIP and city tables skip subjects without addresses
func TestGeoAnalysis(t *testing.T) {
	withAddr := func(city, zip string) enrollee.Enrollee {
		s := subject(1, nil)
		s.Address = &types.Address{City: city, Zip: zip}
		return s
	}

	subjects := []enrollee.Enrollee{
		withAddr("Riverton", "66953"),
		withAddr("Riverton", "66953"),
		withAddr("Galena", "66739"),
		subject(1, nil), // no address, silently excluded
	}

	geo := ComputeGeoAnalysis(subjects)
	if len(geo.TopZips) != 2 || len(geo.TopCities) != 2 {
		t.Fatalf("geo tables = %d zips, %d cities, want 2 each", len(geo.TopZips), len(geo.TopCities))
	}
	if geo.TopZips[0].Value != "66953" || geo.TopZips[0].Count != 2 {
		t.Errorf("top zip = %v", geo.TopZips[0])
	}
	if geo.TopCities[0].Value != "Riverton" || geo.TopCities[0].Count != 2 {
		t.Errorf("top city = %v", geo.TopCities[0])
	}
}

// TestEndToEndScenario runs the documented two-subject, two-referral scenario
func TestEndToEndScenario(t *testing.T) {
	subjects := []enrollee.Enrollee{
		subject(1, uniformScores(70)),
		subject(3, uniformScores(20)),
	}
	referrals := []referral.Referral{
		{ResourceID: types.NewID(), Status: referral.StatusPending},
		{ResourceID: types.NewID(), Status: referral.StatusAccepted},
	}

	summary := BuildSummary(subjects, referrals, nil)

	dist := summary.RiskDistribution
	if dist.Tier1 != 1 || dist.Tier2 != 0 || dist.Tier3 != 1 {
		t.Errorf("risk counts = %d/%d/%d, want 1/0/1", dist.Tier1, dist.Tier2, dist.Tier3)
	}
	if dist.Tier1Percent != 50 || dist.Tier3Percent != 50 {
		t.Errorf("risk percentages = %d/%d, want 50/50", dist.Tier1Percent, dist.Tier3Percent)
	}
	if summary.Referrals.AcceptanceRate != 50 {
		t.Errorf("acceptance rate = %d, want 50", summary.Referrals.AcceptanceRate)
	}
	if summary.SubjectCount != 2 {
		t.Errorf("subject count = %d, want 2", summary.SubjectCount)
	}
	if summary.AverageWellness != 45 {
		t.Errorf("average wellness = %v, want 45", summary.AverageWellness)
	}
}
