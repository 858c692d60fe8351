package analytics

import (
	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/referral"
	"github.com/kc-aidesigntech/atlas/internal/resource"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Summary is the full population dashboard payload.
type Summary struct {
	SubjectCount      int                 `json:"subject_count"`
	AverageWellness   float64             `json:"average_wellness"`
	DimensionAverages map[string]float64  `json:"dimension_averages"`
	RiskDistribution  RiskDistribution    `json:"risk_distribution"`
	Codes             CodeAnalysis        `json:"codes"`
	CareTeams         CareTeamAnalysis    `json:"care_teams"`
	Referrals         ReferralAnalysis    `json:"referrals"`
	Trend             TrendClassification `json:"trend"`
	Geography         GeoAnalysis         `json:"geography"`
}

// BuildSummary runs every sub-computation over the same snapshot of records.
func BuildSummary(subjects []enrollee.Enrollee, referrals []referral.Referral, resources []resource.Resource) Summary {
	names := make(map[types.ID]string, len(resources))
	for i := range resources {
		names[resources[i].ID] = resources[i].Name
	}

	return Summary{
		SubjectCount:      len(subjects),
		AverageWellness:   AverageWellness(subjects),
		DimensionAverages: DimensionAverages(subjects),
		RiskDistribution:  ComputeRiskDistribution(subjects),
		Codes:             ComputeCodeAnalysis(subjects),
		CareTeams:         ComputeCareTeamAnalysis(subjects),
		Referrals:         ComputeReferralAnalysis(referrals, names),
		Trend:             ComputeTrendClassification(subjects),
		Geography:         ComputeGeoAnalysis(subjects),
	}
}
