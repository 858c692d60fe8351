package identity

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Repository persists profiles in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new profile repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureProfile returns the profile for the principal, creating one with the
// default role if none exists yet.
func (r *Repository) EnsureProfile(ctx context.Context, principalID types.ID, email string) (*Profile, error) {
	profile, err := r.FindByPrincipal(ctx, principalID)
	if err == nil {
		return profile, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	profile = NewProfile(principalID, email)
	query := `
		INSERT INTO profiles (principal_id, email, role, assigned_enrollee_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (principal_id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		profile.PrincipalID, profile.Email, profile.Role,
		idSlice(profile.AssignedEnrolleeIDs), profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create profile")
	}

	// A concurrent first access may have won the insert; read back either way.
	return r.FindByPrincipal(ctx, principalID)
}

// FindByPrincipal finds a profile by principal ID
func (r *Repository) FindByPrincipal(ctx context.Context, principalID types.ID) (*Profile, error) {
	query := `
		SELECT principal_id, email, role, assigned_enrollee_ids, created_at, updated_at
		FROM profiles
		WHERE principal_id = $1`

	profile := &Profile{}
	var assigned []string

	err := r.pool.QueryRow(ctx, query, principalID).Scan(
		&profile.PrincipalID, &profile.Email, &profile.Role,
		&assigned, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("profile", principalID.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find profile")
	}

	profile.AssignedEnrolleeIDs = toIDs(assigned)
	return profile, nil
}

// List returns all profiles ordered by creation time
func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	query := `
		SELECT principal_id, email, role, assigned_enrollee_ids, created_at, updated_at
		FROM profiles
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profiles")
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		var assigned []string
		if err := rows.Scan(&p.PrincipalID, &p.Email, &p.Role, &assigned, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan profile")
		}
		p.AssignedEnrolleeIDs = toIDs(assigned)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read profiles")
	}

	return profiles, nil
}

// UpdateRole sets the profile's role
func (r *Repository) UpdateRole(ctx context.Context, principalID types.ID, role Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET role = $2, updated_at = NOW() WHERE principal_id = $1`,
		principalID, role,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update role")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("profile", principalID.String())
	}
	return nil
}

// UpdateAssignments replaces the profile's assigned enrollee list
func (r *Repository) UpdateAssignments(ctx context.Context, principalID types.ID, enrolleeIDs []types.ID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET assigned_enrollee_ids = $2, updated_at = NOW() WHERE principal_id = $1`,
		principalID, idSlice(enrolleeIDs),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update assignments")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("profile", principalID.String())
	}
	return nil
}

func idSlice(ids []types.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func toIDs(strs []string) []types.ID {
	out := make([]types.ID, len(strs))
	for i, s := range strs {
		out[i] = types.ID(s)
	}
	return out
}
