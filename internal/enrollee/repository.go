package enrollee

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// ListFilter narrows enrollee listings.
type ListFilter struct {
	Search string
	Tier   *int
}

// Repository persists enrollees and their care-plan entries in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new enrollee repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a new enrollee
func (r *Repository) Save(ctx context.Context, e *Enrollee) error {
	address, careTeam, wellness, domains, err := marshalFields(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO enrollees (
			id, first_name, last_name, date_of_birth, address, care_team,
			risk_tier, wellness_scores, classification_codes, domain_scores,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.pool.Exec(ctx, query,
		e.ID, e.FirstName, e.LastName, e.DateOfBirth, address, careTeam,
		e.RiskProfile.Tier, wellness, e.RiskProfile.ClassificationCodes, domains,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save enrollee")
	}
	return nil
}

// Update replaces a stored enrollee
func (r *Repository) Update(ctx context.Context, e *Enrollee) error {
	address, careTeam, wellness, domains, err := marshalFields(e)
	if err != nil {
		return err
	}

	query := `
		UPDATE enrollees SET
			first_name = $2, last_name = $3, date_of_birth = $4, address = $5,
			care_team = $6, risk_tier = $7, wellness_scores = $8,
			classification_codes = $9, domain_scores = $10, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		e.ID, e.FirstName, e.LastName, e.DateOfBirth, address,
		careTeam, e.RiskProfile.Tier, wellness,
		e.RiskProfile.ClassificationCodes, domains,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update enrollee")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("enrollee", e.ID.String())
	}
	return nil
}

// Delete removes an enrollee and, via cascade, its care-plan entries and
// referrals.
func (r *Repository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enrollees WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete enrollee")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("enrollee", id.String())
	}
	return nil
}

const enrolleeColumns = `
	id, first_name, last_name, date_of_birth, address, care_team,
	risk_tier, wellness_scores, classification_codes, domain_scores,
	created_at, updated_at`

// FindByID finds an enrollee by ID
func (r *Repository) FindByID(ctx context.Context, id types.ID) (*Enrollee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+enrolleeColumns+` FROM enrollees WHERE id = $1`, id)

	e, err := scanEnrollee(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("enrollee", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find enrollee")
	}
	return e, nil
}

// List returns enrollees matching the filter, newest first
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Enrollee, error) {
	query := `SELECT ` + enrolleeColumns + ` FROM enrollees`
	args := []any{}

	where := ""
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = ` WHERE (first_name ILIKE $1 OR last_name ILIKE $1)`
	}
	if filter.Tier != nil {
		args = append(args, *filter.Tier)
		if where == "" {
			where = ` WHERE risk_tier = $1`
		} else {
			where += ` AND risk_tier = $2`
		}
	}
	query += where + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list enrollees")
	}
	defer rows.Close()

	var enrollees []Enrollee
	for rows.Next() {
		e, err := scanEnrollee(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan enrollee")
		}
		enrollees = append(enrollees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read enrollees")
	}
	return enrollees, nil
}

// --- Care-plan entries ---

// AddEntry appends a care-plan entry
func (r *Repository) AddEntry(ctx context.Context, entry *CarePlanEntry) error {
	var status *string
	if entry.Status != "" {
		s := string(entry.Status)
		status = &s
	}

	query := `
		INSERT INTO care_plan_entries (id, enrollee_id, kind, body, status, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.EnrolleeID, entry.Kind, entry.Body, status, entry.AuthorID, entry.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to add care plan entry")
	}
	return nil
}

// ListEntries returns an enrollee's care-plan entries, newest first
func (r *Repository) ListEntries(ctx context.Context, enrolleeID types.ID) ([]CarePlanEntry, error) {
	query := `
		SELECT id, enrollee_id, kind, body, status, author_id, created_at
		FROM care_plan_entries
		WHERE enrollee_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, enrolleeID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list care plan entries")
	}
	defer rows.Close()

	var entries []CarePlanEntry
	for rows.Next() {
		var entry CarePlanEntry
		var status *string
		if err := rows.Scan(&entry.ID, &entry.EnrolleeID, &entry.Kind, &entry.Body, &status, &entry.AuthorID, &entry.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan care plan entry")
		}
		if status != nil {
			entry.Status = InsightStatus(*status)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read care plan entries")
	}
	return entries, nil
}

// FindEntry finds one care-plan entry
func (r *Repository) FindEntry(ctx context.Context, entryID types.ID) (*CarePlanEntry, error) {
	query := `
		SELECT id, enrollee_id, kind, body, status, author_id, created_at
		FROM care_plan_entries
		WHERE id = $1`

	var entry CarePlanEntry
	var status *string
	err := r.pool.QueryRow(ctx, query, entryID).Scan(
		&entry.ID, &entry.EnrolleeID, &entry.Kind, &entry.Body, &status, &entry.AuthorID, &entry.CreatedAt,
	)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("care plan entry", entryID.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find care plan entry")
	}
	if status != nil {
		entry.Status = InsightStatus(*status)
	}
	return &entry, nil
}

// UpdateEntryStatus persists an insight's review state
func (r *Repository) UpdateEntryStatus(ctx context.Context, entryID types.ID, status InsightStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE care_plan_entries SET status = $2 WHERE id = $1`,
		entryID, string(status),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update care plan entry")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("care plan entry", entryID.String())
	}
	return nil
}

// DeleteEntry removes a care-plan entry
func (r *Repository) DeleteEntry(ctx context.Context, entryID types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM care_plan_entries WHERE id = $1`, entryID)
	if err != nil {
		return errors.Wrap(err, "failed to delete care plan entry")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("care plan entry", entryID.String())
	}
	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnrollee(row rowScanner) (*Enrollee, error) {
	e := &Enrollee{}
	var addressJSON, careTeamJSON, wellnessJSON, domainsJSON []byte

	err := row.Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.DateOfBirth, &addressJSON, &careTeamJSON,
		&e.RiskProfile.Tier, &wellnessJSON, &e.RiskProfile.ClassificationCodes, &domainsJSON,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(addressJSON) > 0 {
		var addr types.Address
		if err := json.Unmarshal(addressJSON, &addr); err == nil && !addr.IsZero() {
			e.Address = &addr
		}
	}
	if len(careTeamJSON) > 0 {
		if err := json.Unmarshal(careTeamJSON, &e.CareTeam); err != nil {
			return nil, err
		}
	}
	if e.CareTeam == nil {
		e.CareTeam = []CareTeamMember{}
	}
	if len(wellnessJSON) > 0 {
		if err := json.Unmarshal(wellnessJSON, &e.RiskProfile.WellnessScores); err != nil {
			return nil, err
		}
	}
	if e.RiskProfile.WellnessScores == nil {
		e.RiskProfile.WellnessScores = map[string]int{}
	}
	if len(domainsJSON) > 0 {
		if err := json.Unmarshal(domainsJSON, &e.RiskProfile.DomainScores); err != nil {
			return nil, err
		}
	}
	if e.RiskProfile.ClassificationCodes == nil {
		e.RiskProfile.ClassificationCodes = []string{}
	}

	return e, nil
}

func marshalFields(e *Enrollee) (address, careTeam, wellness, domains []byte, err error) {
	if e.Address != nil {
		if address, err = json.Marshal(e.Address); err != nil {
			return nil, nil, nil, nil, errors.Wrap(err, "failed to marshal address")
		}
	}
	if careTeam, err = json.Marshal(e.CareTeam); err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "failed to marshal care team")
	}
	if wellness, err = json.Marshal(e.RiskProfile.WellnessScores); err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "failed to marshal wellness scores")
	}
	if domains, err = json.Marshal(e.RiskProfile.DomainScores); err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "failed to marshal domain scores")
	}
	return address, careTeam, wellness, domains, nil
}
