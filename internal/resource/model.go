// Package resource holds the service-provider directory and the eligibility
// filter that matches resources against an enrollee's classification codes.
package resource

import (
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Category groups resources in the directory.
type Category string

const (
	CategoryHousing        Category = "housing"
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryBehavioral     Category = "behavioral_health"
	CategoryEmployment     Category = "employment"
	CategoryFinancial      Category = "financial"
	CategoryOther          Category = "other"
)

// Eligibility holds a resource's intake criteria. ClassificationCodes drives
// the filter; IncomeBand is recorded but not matched.
type Eligibility struct {
	ClassificationCodes []string `json:"classification_codes"`
	IncomeBand          string   `json:"income_band,omitempty"`
}

// Resource is one service-provider listing in the directory.
type Resource struct {
	ID          types.ID          `json:"id"`
	Name        string            `json:"name"`
	Category    Category          `json:"category"`
	Description string            `json:"description"`
	Address     *types.Address    `json:"address,omitempty"`
	Contact     types.ContactInfo `json:"contact"`
	Eligibility Eligibility       `json:"eligibility"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// New creates a resource with validation
func New(name string, category Category, description string) (*Resource, error) {
	if name == "" {
		return nil, errors.BadRequest("resource name is required")
	}
	if category == "" {
		category = CategoryOther
	}

	now := time.Now()
	return &Resource{
		ID:          types.NewID(),
		Name:        name,
		Category:    category,
		Description: description,
		Eligibility: Eligibility{ClassificationCodes: []string{}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
