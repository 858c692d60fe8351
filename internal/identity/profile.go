package identity

import (
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Profile is the stored record for a principal: one per signed-in user,
// created lazily on first access.
type Profile struct {
	PrincipalID         types.ID   `json:"principal_id"`
	Email               string     `json:"email,omitempty"`
	Role                Role       `json:"role"`
	AssignedEnrolleeIDs []types.ID `json:"assigned_enrollee_ids"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewProfile creates a profile with the default role.
func NewProfile(principalID types.ID, email string) *Profile {
	now := time.Now()
	return &Profile{
		PrincipalID:         principalID,
		Email:               email,
		Role:                DefaultRole,
		AssignedEnrolleeIDs: []types.ID{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// ResolveRole returns the profile's role, or the default role when the
// profile is absent or carries no role. Absence is a handled state, never an
// error.
func ResolveRole(profile *Profile) Role {
	if profile == nil || profile.Role == "" {
		return DefaultRole
	}
	return profile.Role
}

// IsAssigned reports whether the enrollee is on the profile's assignment list.
func (p *Profile) IsAssigned(enrolleeID types.ID) bool {
	for _, id := range p.AssignedEnrolleeIDs {
		if id == enrolleeID {
			return true
		}
	}
	return false
}
