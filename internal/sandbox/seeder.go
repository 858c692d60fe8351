// Package sandbox loads a deterministic demo dataset so a fresh deployment
// has something to show on the dashboards. Seeded rows use deterministic IDs,
// which makes loading idempotent-ish (a reload rewrites the same rows) and
// lets Clear remove exactly what was seeded.
package sandbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
	"github.com/kc-aidesigntech/atlas/internal/referral"
	"github.com/kc-aidesigntech/atlas/internal/resource"
	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/metrics"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

const idNamespace = "atlas.sandbox"

// Seeder writes and removes the demo dataset.
type Seeder struct {
	enrollees *enrollee.Repository
	resources *resource.Repository
	referrals *referral.Repository
	bus       events.EventBus
	logger    zerolog.Logger
}

// NewSeeder creates a new sandbox seeder
func NewSeeder(enrollees *enrollee.Repository, resources *resource.Repository, referrals *referral.Repository, bus events.EventBus, logger zerolog.Logger) *Seeder {
	return &Seeder{
		enrollees: enrollees,
		resources: resources,
		referrals: referrals,
		bus:       bus,
		logger:    logger.With().Str("component", "sandbox").Logger(),
	}
}

// Report summarizes what a load or clear touched.
type Report struct {
	Enrollees int `json:"enrollees"`
	Resources int `json:"resources"`
	Referrals int `json:"referrals"`
}

// Load writes the demo dataset. Existing seeded rows are cleared first so a
// reload always yields the same state.
func (s *Seeder) Load(ctx context.Context) (*Report, error) {
	if _, err := s.Clear(ctx); err != nil {
		return nil, err
	}

	report := &Report{}

	for _, subject := range demoEnrollees() {
		if err := s.enrollees.Save(ctx, subject); err != nil {
			return nil, err
		}
		report.Enrollees++
	}
	for _, res := range demoResources() {
		if err := s.resources.Save(ctx, res); err != nil {
			return nil, err
		}
		report.Resources++
	}
	for _, ref := range demoReferrals() {
		if err := s.referrals.Save(ctx, ref); err != nil {
			return nil, err
		}
		if ref.Status != referral.StatusPending {
			if err := s.referrals.Update(ctx, ref); err != nil {
				return nil, err
			}
		}
		report.Referrals++
	}

	metrics.RecordSampleDataLoad()
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.New(events.TypeSampleLoaded, map[string]any{
			"enrollees": report.Enrollees,
			"resources": report.Resources,
			"referrals": report.Referrals,
		}))
	}

	s.logger.Info().
		Int("enrollees", report.Enrollees).
		Int("resources", report.Resources).
		Int("referrals", report.Referrals).
		Msg("sample data loaded")
	return report, nil
}

// Clear removes every seeded row. Rows created outside the sandbox are left
// alone.
func (s *Seeder) Clear(ctx context.Context) (*Report, error) {
	report := &Report{}

	for _, ref := range demoReferrals() {
		if err := s.referrals.Delete(ctx, ref.ID); err == nil {
			report.Referrals++
		}
	}
	for _, subject := range demoEnrollees() {
		if err := s.enrollees.Delete(ctx, subject.ID); err == nil {
			report.Enrollees++
		}
	}
	for _, res := range demoResources() {
		if err := s.resources.Delete(ctx, res.ID); err == nil {
			report.Resources++
		}
	}

	if s.bus != nil && report.Enrollees+report.Resources+report.Referrals > 0 {
		_ = s.bus.Publish(ctx, events.New(events.TypeSampleCleared, map[string]any{
			"enrollees": report.Enrollees,
			"resources": report.Resources,
			"referrals": report.Referrals,
		}))
	}
	return report, nil
}

func seedID(name string) types.ID {
	return types.NewDeterministicID(idNamespace, name)
}

func demoEnrollees() []*enrollee.Enrollee {
	seeded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	build := func(name, first, last string, tier int, scores map[string]int, codes []string, addr *types.Address, team []enrollee.CareTeamMember) *enrollee.Enrollee {
		return &enrollee.Enrollee{
			ID:        seedID("enrollee/" + name),
			FirstName: first,
			LastName:  last,
			Address:   addr,
			CareTeam:  team,
			RiskProfile: enrollee.RiskProfile{
				Tier:                tier,
				WellnessScores:      scores,
				ClassificationCodes: codes,
			},
			CreatedAt: seeded,
			UpdatedAt: seeded,
		}
	}

	uniform := func(score int) map[string]int {
		scores := make(map[string]int, len(enrollee.Dimensions))
		for _, dim := range enrollee.Dimensions {
			scores[dim] = score
		}
		return scores
	}

	return []*enrollee.Enrollee{
		build("ava", "Ava", "Reyes", enrollee.TierOne, uniform(82), []string{"Z59.6"},
			&types.Address{Line1: "114 Birch St", City: "Riverton", State: "KS", Zip: "66953"},
			[]enrollee.CareTeamMember{{Name: "D. Okafor", Role: "Care Coordinator"}}),
		build("marcus", "Marcus", "Lindgren", enrollee.TierTwo, map[string]int{
			enrollee.DimensionEmotional:     55,
			enrollee.DimensionPhysical:      60,
			enrollee.DimensionSocial:        48,
			enrollee.DimensionFinancial:     40,
			enrollee.DimensionEnvironmental: 52,
			enrollee.DimensionOccupational:  45,
			enrollee.DimensionIntellectual:  63,
		}, []string{"Z56.0", "Z59.6", "Z60.2"},
			&types.Address{Line1: "9 Quarry Rd", City: "Riverton", State: "KS", Zip: "66953"},
			[]enrollee.CareTeamMember{
				{Name: "D. Okafor", Role: "Care Coordinator"},
				{Name: "L. Tran", Role: "Social Worker"},
			}),
		build("ines", "Ines", "Moreau", enrollee.TierThree, uniform(28),
			[]string{"Z59.0", "Z59.4", "Z59.7", "Z60.4", "Z75.3"},
			&types.Address{Line1: "PO Box 221", City: "Galena", State: "KS", Zip: "66739"},
			[]enrollee.CareTeamMember{
				{Name: "L. Tran", Role: "Social Worker"},
				{Name: "R. Campos", Role: "Nurse"},
			}),
		build("theo", "Theo", "Abara", enrollee.TierTwo, uniform(58), []string{"Z59.1", "Z63.4"},
			&types.Address{Line1: "77 Mill Ave", City: "Galena", State: "KS", Zip: "66739"},
			[]enrollee.CareTeamMember{{Name: "R. Campos", Role: "Nurse"}}),
		build("priya", "Priya", "Natarajan", enrollee.TierOne, uniform(88), nil,
			&types.Address{Line1: "301 Garden Ln", City: "Riverton", State: "KS", Zip: "66953"},
			[]enrollee.CareTeamMember{{Name: "D. Okafor", Role: "Care Coordinator"}}),
	}
}

func demoResources() []*resource.Resource {
	seeded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	build := func(name string, category resource.Category, description string, codes []string, band string) *resource.Resource {
		return &resource.Resource{
			ID:          seedID("resource/" + name),
			Name:        name,
			Category:    category,
			Description: description,
			Eligibility: resource.Eligibility{
				ClassificationCodes: codes,
				IncomeBand:          band,
			},
			CreatedAt: seeded,
			UpdatedAt: seeded,
		}
	}

	return []*resource.Resource{
		build("Harbor House Shelter", resource.CategoryHousing,
			"Emergency shelter with 90-day transitional beds.",
			[]string{"Z59.0", "Z59.1"}, "below_30_ami"),
		build("Prairie Pantry", resource.CategoryFood,
			"Weekly grocery boxes, no documentation required.",
			[]string{"Z59.4", "Z59.6"}, ""),
		build("WorkPath Employment Center", resource.CategoryEmployment,
			"Job placement and vocational training.",
			[]string{"Z56.0"}, ""),
		build("Open Door Counseling", resource.CategoryBehavioral,
			"Sliding-scale counseling, walk-ins welcome.",
			nil, ""),
		build("RideLink", resource.CategoryTransportation,
			"Subsidized rides to medical appointments.",
			[]string{"Z75.3", "Z75.4"}, ""),
	}
}

func demoReferrals() []*referral.Referral {
	seeded := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	responded := seeded.Add(48 * time.Hour)

	pending := &referral.Referral{
		ID:         seedID("referral/marcus-workpath"),
		EnrolleeID: seedID("enrollee/marcus"),
		ResourceID: seedID("resource/WorkPath Employment Center"),
		Status:     referral.StatusPending,
		Notes:      "Looking for warehouse or trades placement.",
		CreatedAt:  seeded,
		UpdatedAt:  seeded,
	}

	accepted := &referral.Referral{
		ID:            seedID("referral/ines-harbor"),
		EnrolleeID:    seedID("enrollee/ines"),
		ResourceID:    seedID("resource/Harbor House Shelter"),
		Status:        referral.StatusAccepted,
		Notes:         "Urgent: currently unsheltered.",
		ResponseNotes: "Bed available from Monday.",
		RespondedAt:   &responded,
		CreatedAt:     seeded,
		UpdatedAt:     responded,
	}

	rejected := &referral.Referral{
		ID:            seedID("referral/theo-pantry"),
		EnrolleeID:    seedID("enrollee/theo"),
		ResourceID:    seedID("resource/Prairie Pantry"),
		Status:        referral.StatusRejected,
		Notes:         "Household of three.",
		ResponseNotes: "Outside our delivery area, try Galena food bank.",
		RespondedAt:   &responded,
		CreatedAt:     seeded,
		UpdatedAt:     responded,
	}

	return []*referral.Referral{pending, accepted, rejected}
}
