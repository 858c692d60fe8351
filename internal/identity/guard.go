package identity

import (
	"context"

	"github.com/kc-aidesigntech/atlas/internal/shared/auth"
	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/metrics"
)

// Guard ties the permission table to live requests: it resolves the caller's
// profile (creating one lazily) and checks the requested action against the
// caller's role.
type Guard struct {
	repo *Repository
}

// NewGuard creates a new guard
func NewGuard(repo *Repository) *Guard {
	return &Guard{repo: repo}
}

// Require returns the caller's profile when the action is allowed, or a
// Forbidden/Unauthorized error. Every denial is fail-closed and counted.
func (g *Guard) Require(ctx context.Context, action Action) (*Profile, error) {
	principal := auth.GetPrincipal(ctx)
	if principal == nil {
		return nil, errors.Unauthorized("authentication required")
	}

	profile, err := g.repo.EnsureProfile(ctx, principal.ID, principal.Email)
	if err != nil {
		return nil, err
	}

	role := ResolveRole(profile)
	if !IsAllowed(action, role) {
		metrics.RecordPermissionDenial(string(action), string(role))
		return nil, errors.Forbidden("role " + string(role) + " may not perform " + string(action))
	}

	return profile, nil
}

// Resolve returns the caller's profile without any permission check.
func (g *Guard) Resolve(ctx context.Context) (*Profile, error) {
	principal := auth.GetPrincipal(ctx)
	if principal == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	return g.repo.EnsureProfile(ctx, principal.ID, principal.Email)
}
