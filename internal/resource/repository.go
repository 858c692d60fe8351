package resource

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// ListFilter narrows resource listings.
type ListFilter struct {
	Search   string
	Category Category
}

// Repository persists resources in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new resource repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a new resource
func (r *Repository) Save(ctx context.Context, res *Resource) error {
	address, contact, err := marshalAux(res)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO resources (
			id, name, category, description, address, contact,
			eligibility_codes, income_band, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		res.ID, res.Name, res.Category, res.Description, address, contact,
		res.Eligibility.ClassificationCodes, res.Eligibility.IncomeBand,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save resource")
	}
	return nil
}

// Update replaces a stored resource
func (r *Repository) Update(ctx context.Context, res *Resource) error {
	address, contact, err := marshalAux(res)
	if err != nil {
		return err
	}

	query := `
		UPDATE resources SET
			name = $2, category = $3, description = $4, address = $5, contact = $6,
			eligibility_codes = $7, income_band = $8, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		res.ID, res.Name, res.Category, res.Description, address, contact,
		res.Eligibility.ClassificationCodes, res.Eligibility.IncomeBand,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update resource")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("resource", res.ID.String())
	}
	return nil
}

// Delete removes a resource
func (r *Repository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete resource")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("resource", id.String())
	}
	return nil
}

const resourceColumns = `
	id, name, category, description, address, contact,
	eligibility_codes, income_band, created_at, updated_at`

// FindByID finds a resource by ID
func (r *Repository) FindByID(ctx context.Context, id types.ID) (*Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)

	res, err := scanResource(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("resource", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find resource")
	}
	return res, nil
}

// List returns resources matching the filter, alphabetical
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources`
	args := []any{}

	where := ""
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = ` WHERE (name ILIKE $1 OR description ILIKE $1)`
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		if where == "" {
			where = ` WHERE category = $1`
		} else {
			where += ` AND category = $2`
		}
	}
	query += where + ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list resources")
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan resource")
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read resources")
	}
	return resources, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*Resource, error) {
	res := &Resource{}
	var addressJSON, contactJSON []byte

	err := row.Scan(
		&res.ID, &res.Name, &res.Category, &res.Description, &addressJSON, &contactJSON,
		&res.Eligibility.ClassificationCodes, &res.Eligibility.IncomeBand,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(addressJSON) > 0 {
		var addr types.Address
		if err := json.Unmarshal(addressJSON, &addr); err == nil && !addr.IsZero() {
			res.Address = &addr
		}
	}
	if len(contactJSON) > 0 {
		if err := json.Unmarshal(contactJSON, &res.Contact); err != nil {
			return nil, err
		}
	}
	if res.Eligibility.ClassificationCodes == nil {
		res.Eligibility.ClassificationCodes = []string{}
	}

	return res, nil
}

func marshalAux(res *Resource) (address, contact []byte, err error) {
	if res.Address != nil {
		if address, err = json.Marshal(res.Address); err != nil {
			return nil, nil, errors.Wrap(err, "failed to marshal address")
		}
	}
	if contact, err = json.Marshal(res.Contact); err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal contact")
	}
	return address, contact, nil
}
