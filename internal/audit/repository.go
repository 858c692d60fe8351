package audit

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Repository persists the audit chain in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append seals the entry onto the end of the chain. The sequence and previous
// hash are read and written inside one transaction so concurrent appends
// cannot fork the chain.
func (r *Repository) Append(ctx context.Context, entry *Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin audit transaction")
	}
	defer tx.Rollback(ctx)

	// An empty chain starts at sequence 1 with no previous hash.
	var sequence int64
	var prevHash string
	err = tx.QueryRow(ctx, `
		SELECT sequence, hash FROM audit_entries
		ORDER BY sequence DESC LIMIT 1
		FOR UPDATE`).Scan(&sequence, &prevHash)
	if err != nil && !stderrors.Is(err, pgx.ErrNoRows) {
		return errors.Wrap(err, "failed to read audit chain head")
	}

	entry.Seal(sequence+1, prevHash)

	var details []byte
	if len(entry.Details) > 0 {
		if details, err = json.Marshal(entry.Details); err != nil {
			return errors.Wrap(err, "failed to marshal audit details")
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_entries (
			id, sequence, timestamp, hash, prev_hash,
			actor_id, actor_role, action, resource_type, resource_id, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.Sequence, entry.Timestamp, entry.Hash, entry.PrevHash,
		nullableID(entry.ActorID), entry.ActorRole, entry.Action,
		entry.ResourceType, nullableID(entry.ResourceID), details,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append audit entry")
	}

	return errors.Wrap(tx.Commit(ctx), "failed to commit audit entry")
}

// List returns entries matching the filter, newest first
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `
		SELECT id, sequence, timestamp, hash, prev_hash,
		       actor_id, actor_role, action, resource_type, resource_id, details
		FROM audit_entries`
	args := []any{}
	where := ""

	addClause := func(clause string, arg any) {
		args = append(args, arg)
		placeholder := "$" + strconv.Itoa(len(args))
		if where == "" {
			where = ` WHERE ` + clause + placeholder
		} else {
			where += ` AND ` + clause + placeholder
		}
	}

	if !filter.ActorID.IsZero() {
		addClause("actor_id = ", filter.ActorID)
	}
	if filter.Action != "" {
		addClause("action = ", filter.Action)
	}
	if filter.ResourceType != "" {
		addClause("resource_type = ", filter.ResourceType)
	}
	if !filter.ResourceID.IsZero() {
		addClause("resource_id = ", filter.ResourceID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += where + ` ORDER BY sequence DESC LIMIT ` + strconv.Itoa(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + strconv.Itoa(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var actorID, resourceID *types.ID
		var details []byte

		err := rows.Scan(&entry.ID, &entry.Sequence, &entry.Timestamp, &entry.Hash, &entry.PrevHash,
			&actorID, &entry.ActorRole, &entry.Action, &entry.ResourceType, &resourceID, &details)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan audit entry")
		}

		if actorID != nil {
			entry.ActorID = *actorID
		}
		if resourceID != nil {
			entry.ResourceID = *resourceID
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, errors.Wrap(err, "failed to decode audit details")
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read audit entries")
	}
	return entries, nil
}

// VerifyChain walks the whole chain in sequence order and reports the first
// broken link, if any.
func (r *Repository) VerifyChain(ctx context.Context) (*ChainStatus, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sequence, timestamp, hash, prev_hash,
		       actor_id, actor_role, action, resource_type, resource_id, details
		FROM audit_entries ORDER BY sequence`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read audit chain")
	}
	defer rows.Close()

	status := &ChainStatus{Valid: true}
	prevHash := ""
	for rows.Next() {
		var entry Entry
		var actorID, resourceID *types.ID
		var details []byte

		err := rows.Scan(&entry.ID, &entry.Sequence, &entry.Timestamp, &entry.Hash, &entry.PrevHash,
			&actorID, &entry.ActorRole, &entry.Action, &entry.ResourceType, &resourceID, &details)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan audit entry")
		}
		if actorID != nil {
			entry.ActorID = *actorID
		}
		if resourceID != nil {
			entry.ResourceID = *resourceID
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &entry.Details)
		}

		status.Entries++
		if entry.PrevHash != prevHash || !entry.Verify() {
			status.Valid = false
			if status.FirstBroken == 0 {
				status.FirstBroken = entry.Sequence
			}
		}
		prevHash = entry.Hash
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to walk audit chain")
	}
	return status, nil
}

// ChainStatus is the result of a chain verification pass.
type ChainStatus struct {
	Valid       bool  `json:"valid"`
	Entries     int64 `json:"entries"`
	FirstBroken int64 `json:"first_broken,omitempty"`
}

func nullableID(id types.ID) *types.ID {
	if id.IsZero() {
		return nil
	}
	return &id
}
