// Package enrollee holds the case-subject model: demographics, care team and
// the risk profile the dashboards are built from.
package enrollee

import (
	"strconv"
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// The eight fixed wellness dimensions. Scores are 0-100 by convention;
// values outside that range are clamped at the write boundary.
const (
	DimensionEmotional     = "emotional"
	DimensionPhysical      = "physical"
	DimensionSocial        = "social"
	DimensionFinancial     = "financial"
	DimensionEnvironmental = "environmental"
	DimensionOccupational  = "occupational"
	DimensionIntellectual  = "intellectual"
	DimensionSpiritual     = "spiritual"
)

// Dimensions lists the wellness dimensions in display order.
var Dimensions = []string{
	DimensionEmotional,
	DimensionPhysical,
	DimensionSocial,
	DimensionFinancial,
	DimensionEnvironmental,
	DimensionOccupational,
	DimensionIntellectual,
	DimensionSpiritual,
}

// Risk tiers. TierUnassessed marks an enrollee whose assessment has not been
// recorded yet.
const (
	TierUnassessed = 0
	TierOne        = 1
	TierTwo        = 2
	TierThree      = 3
)

// RiskProfile is the assessed risk state of an enrollee.
type RiskProfile struct {
	Tier                int            `json:"tier"`
	WellnessScores      map[string]int `json:"wellness_scores"`
	ClassificationCodes []string       `json:"classification_codes"`
	DomainScores        map[string]int `json:"domain_scores,omitempty"`
}

// CareTeamMember is one person on an enrollee's care team.
type CareTeamMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Enrollee is a person receiving care coordination.
type Enrollee struct {
	ID          types.ID         `json:"id"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	DateOfBirth *time.Time       `json:"date_of_birth,omitempty"`
	Address     *types.Address   `json:"address,omitempty"`
	CareTeam    []CareTeamMember `json:"care_team"`
	RiskProfile RiskProfile      `json:"risk_profile"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// New creates an enrollee with validation. New enrollees start unassessed.
func New(firstName, lastName string) (*Enrollee, error) {
	if firstName == "" || lastName == "" {
		return nil, errors.Validation("name is required", map[string]string{
			"first_name": firstName,
			"last_name":  lastName,
		})
	}

	now := time.Now()
	return &Enrollee{
		ID:        types.NewID(),
		FirstName: firstName,
		LastName:  lastName,
		CareTeam:  []CareTeamMember{},
		RiskProfile: RiskProfile{
			Tier:                TierUnassessed,
			WellnessScores:      map[string]int{},
			ClassificationCodes: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetRiskProfile replaces the risk profile, clamping wellness scores to
// 0-100 and rejecting unknown tiers.
func (e *Enrollee) SetRiskProfile(profile RiskProfile) error {
	if profile.Tier < TierUnassessed || profile.Tier > TierThree {
		return errors.Validation("tier must be 0-3", map[string]string{"tier": strconv.Itoa(profile.Tier)})
	}

	if profile.WellnessScores == nil {
		profile.WellnessScores = map[string]int{}
	}
	for dim, score := range profile.WellnessScores {
		profile.WellnessScores[dim] = ClampScore(score)
	}
	if profile.ClassificationCodes == nil {
		profile.ClassificationCodes = []string{}
	}

	e.RiskProfile = profile
	e.UpdatedAt = time.Now()
	return nil
}

// ClampScore clamps a wellness score into the 0-100 range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HasCode reports whether the enrollee carries the classification code.
func (e *Enrollee) HasCode(code string) bool {
	for _, c := range e.RiskProfile.ClassificationCodes {
		if c == code {
			return true
		}
	}
	return false
}
