// Package analytics computes population dashboards from enrollee and referral
// records. Every function is pure and total: empty input yields zero values,
// and divisions guard the zero denominator instead of producing NaN.
package analytics

import (
	"math"
	"sort"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/referral"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// AverageWellness is the mean of every recorded dimension score across all
// subjects, one decimal place. Missing dimensions are excluded from the
// denominator, unlike SubjectWellness which counts them as zero.
func AverageWellness(subjects []enrollee.Enrollee) float64 {
	sum, count := 0, 0
	for i := range subjects {
		for _, score := range subjects[i].RiskProfile.WellnessScores {
			sum += score
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round1(float64(sum) / float64(count))
}

// SubjectWellness is a single subject's wellness: the mean of the eight fixed
// dimensions with 0 substituted for any missing one, rounded to the nearest
// integer.
func SubjectWellness(subject *enrollee.Enrollee) int {
	if subject == nil {
		return 0
	}
	sum := 0
	for _, dim := range enrollee.Dimensions {
		sum += subject.RiskProfile.WellnessScores[dim]
	}
	return int(math.Round(float64(sum) / float64(len(enrollee.Dimensions))))
}

// DimensionAverages computes, for each of the eight dimensions independently,
// the mean across subjects that have the dimension recorded.
func DimensionAverages(subjects []enrollee.Enrollee) map[string]float64 {
	averages := make(map[string]float64, len(enrollee.Dimensions))
	for _, dim := range enrollee.Dimensions {
		sum, count := 0, 0
		for i := range subjects {
			if score, ok := subjects[i].RiskProfile.WellnessScores[dim]; ok {
				sum += score
				count++
			}
		}
		if count == 0 {
			averages[dim] = 0
			continue
		}
		averages[dim] = round1(float64(sum) / float64(count))
	}
	return averages
}

// RiskDistribution holds risk-tier counts and rounded percentages. Percentages
// use the total subject count as denominator, including unassessed subjects.
type RiskDistribution struct {
	Tier1 int `json:"tier1"`
	Tier2 int `json:"tier2"`
	Tier3 int `json:"tier3"`

	Tier1Percent int `json:"tier1_percent"`
	Tier2Percent int `json:"tier2_percent"`
	Tier3Percent int `json:"tier3_percent"`

	Unassessed int `json:"unassessed"`
	Total      int `json:"total"`
}

// ComputeRiskDistribution tallies subjects per risk tier.
func ComputeRiskDistribution(subjects []enrollee.Enrollee) RiskDistribution {
	dist := RiskDistribution{Total: len(subjects)}
	for i := range subjects {
		switch subjects[i].RiskProfile.Tier {
		case enrollee.TierOne:
			dist.Tier1++
		case enrollee.TierTwo:
			dist.Tier2++
		case enrollee.TierThree:
			dist.Tier3++
		default:
			dist.Unassessed++
		}
	}
	dist.Tier1Percent = percent(dist.Tier1, dist.Total)
	dist.Tier2Percent = percent(dist.Tier2, dist.Total)
	dist.Tier3Percent = percent(dist.Tier3, dist.Total)
	return dist
}

// CodeFrequency is one row in a classification-code frequency table.
type CodeFrequency struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CodeAnalysis summarizes classification-code usage across the population.
type CodeAnalysis struct {
	TotalOccurrences  int             `json:"total_occurrences"`
	SubjectsWithCodes int             `json:"subjects_with_codes"`
	AvgPerSubject     float64         `json:"avg_per_subject"`
	TopCodes          []CodeFrequency `json:"top_codes"`
}

// ComputeCodeAnalysis tallies classification codes and resolves the top five
// to their display names.
func ComputeCodeAnalysis(subjects []enrollee.Enrollee) CodeAnalysis {
	analysis := CodeAnalysis{TopCodes: []CodeFrequency{}}
	counts := map[string]int{}

	for i := range subjects {
		codes := subjects[i].RiskProfile.ClassificationCodes
		if len(codes) > 0 {
			analysis.SubjectsWithCodes++
		}
		for _, code := range codes {
			analysis.TotalOccurrences++
			counts[code]++
		}
	}

	if len(subjects) > 0 {
		analysis.AvgPerSubject = round1(float64(analysis.TotalOccurrences) / float64(len(subjects)))
	}

	for code, count := range counts {
		analysis.TopCodes = append(analysis.TopCodes, CodeFrequency{
			Code:  code,
			Name:  enrollee.CodeName(code),
			Count: count,
		})
	}
	sortTop(analysis.TopCodes, func(f CodeFrequency) (int, string) { return f.Count, f.Code })
	analysis.TopCodes = top5(analysis.TopCodes)
	return analysis
}

// CareTeamAnalysis summarizes care-team composition across the population.
type CareTeamAnalysis struct {
	TotalMembers int            `json:"total_members"`
	AvgTeamSize  float64        `json:"avg_team_size"`
	RoleCounts   map[string]int `json:"role_counts"`
}

// ComputeCareTeamAnalysis tallies care-team membership and role frequencies.
func ComputeCareTeamAnalysis(subjects []enrollee.Enrollee) CareTeamAnalysis {
	analysis := CareTeamAnalysis{RoleCounts: map[string]int{}}
	for i := range subjects {
		for _, member := range subjects[i].CareTeam {
			analysis.TotalMembers++
			analysis.RoleCounts[member.Role]++
		}
	}
	if len(subjects) > 0 {
		analysis.AvgTeamSize = round1(float64(analysis.TotalMembers) / float64(len(subjects)))
	}
	return analysis
}

// ResourceFrequency is one row in the top-referred-resources table.
type ResourceFrequency struct {
	ResourceID types.ID `json:"resource_id"`
	Name       string   `json:"name"`
	Count      int      `json:"count"`
}

// ReferralAnalysis summarizes referral outcomes.
type ReferralAnalysis struct {
	Total          int                     `json:"total"`
	StatusCounts   map[referral.Status]int `json:"status_counts"`
	AcceptanceRate int                     `json:"acceptance_rate"`
	TopResources   []ResourceFrequency     `json:"top_resources"`
}

// ComputeReferralAnalysis tallies referral statuses, the acceptance rate and
// the five most-referred resources. resourceNames maps resource IDs to display
// names; unknown IDs keep an empty name.
func ComputeReferralAnalysis(referrals []referral.Referral, resourceNames map[types.ID]string) ReferralAnalysis {
	analysis := ReferralAnalysis{
		Total:        len(referrals),
		StatusCounts: map[referral.Status]int{},
		TopResources: []ResourceFrequency{},
	}
	byResource := map[types.ID]int{}

	for i := range referrals {
		analysis.StatusCounts[referrals[i].Status]++
		byResource[referrals[i].ResourceID]++
	}
	analysis.AcceptanceRate = percent(analysis.StatusCounts[referral.StatusAccepted], analysis.Total)

	for id, count := range byResource {
		analysis.TopResources = append(analysis.TopResources, ResourceFrequency{
			ResourceID: id,
			Name:       resourceNames[id],
			Count:      count,
		})
	}
	sortTop(analysis.TopResources, func(f ResourceFrequency) (int, string) { return f.Count, f.ResourceID.String() })
	analysis.TopResources = top5(analysis.TopResources)
	return analysis
}

// Trend buckets relative to the population average.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// trendMargin is the band around the population average that counts as stable.
const trendMargin = 10

// TrendClassification buckets subjects against the population average. It is
// a snapshot metric, not a longitudinal series.
type TrendClassification struct {
	Improving int `json:"improving"`
	Stable    int `json:"stable"`
	Declining int `json:"declining"`

	ImprovingPercent int `json:"improving_percent"`
	StablePercent    int `json:"stable_percent"`
	DecliningPercent int `json:"declining_percent"`

	PopulationAverage float64 `json:"population_average"`
}

// ClassifyTrend labels one subject's wellness against the population average:
// more than 10 points above is improving, more than 10 below is declining.
func ClassifyTrend(wellness int, populationAverage float64) string {
	switch {
	case float64(wellness) > populationAverage+trendMargin:
		return TrendImproving
	case float64(wellness) < populationAverage-trendMargin:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// ComputeTrendClassification buckets every subject by ClassifyTrend.
func ComputeTrendClassification(subjects []enrollee.Enrollee) TrendClassification {
	trend := TrendClassification{PopulationAverage: AverageWellness(subjects)}
	for i := range subjects {
		switch ClassifyTrend(SubjectWellness(&subjects[i]), trend.PopulationAverage) {
		case TrendImproving:
			trend.Improving++
		case TrendDeclining:
			trend.Declining++
		default:
			trend.Stable++
		}
	}
	total := len(subjects)
	trend.ImprovingPercent = percent(trend.Improving, total)
	trend.StablePercent = percent(trend.Stable, total)
	trend.DecliningPercent = percent(trend.Declining, total)
	return trend
}

// BucketCount is one row in a geographic frequency table.
type BucketCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GeoAnalysis holds the top ZIP codes and cities among subjects with a
// recorded address.
type GeoAnalysis struct {
	TopZips   []BucketCount `json:"top_zips"`
	TopCities []BucketCount `json:"top_cities"`
}

// ComputeGeoAnalysis tallies subject addresses by ZIP and city. Subjects
// without an address are skipped.
func ComputeGeoAnalysis(subjects []enrollee.Enrollee) GeoAnalysis {
	zips := map[string]int{}
	cities := map[string]int{}
	for i := range subjects {
		addr := subjects[i].Address
		if addr == nil {
			continue
		}
		if addr.Zip != "" {
			zips[addr.Zip]++
		}
		if addr.City != "" {
			cities[addr.City]++
		}
	}
	return GeoAnalysis{
		TopZips:   topBuckets(zips),
		TopCities: topBuckets(cities),
	}
}

func topBuckets(counts map[string]int) []BucketCount {
	buckets := make([]BucketCount, 0, len(counts))
	for value, count := range counts {
		buckets = append(buckets, BucketCount{Value: value, Count: count})
	}
	sortTop(buckets, func(b BucketCount) (int, string) { return b.Count, b.Value })
	return top5(buckets)
}

// sortTop orders rows by descending count, breaking ties by key so the output
// is deterministic.
func sortTop[T any](rows []T, key func(T) (int, string)) {
	sort.Slice(rows, func(i, j int) bool {
		ci, ki := key(rows[i])
		cj, kj := key(rows[j])
		if ci != cj {
			return ci > cj
		}
		return ki < kj
	})
}

func top5[T any](rows []T) []T {
	if len(rows) > 5 {
		return rows[:5]
	}
	return rows
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
