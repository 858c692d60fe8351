package referral

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// ListFilter narrows referral listings.
type ListFilter struct {
	EnrolleeID types.ID
	ResourceID types.ID
	Status     Status
}

// Repository persists referrals in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new referral repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a new referral
func (r *Repository) Save(ctx context.Context, ref *Referral) error {
	query := `
		INSERT INTO referrals (
			id, enrollee_id, resource_id, status, notes, referred_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		ref.ID, ref.EnrolleeID, ref.ResourceID, ref.Status, ref.Notes,
		nullableID(ref.ReferredBy), ref.CreatedAt, ref.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save referral")
	}
	return nil
}

// Update persists a referral's state transition
func (r *Repository) Update(ctx context.Context, ref *Referral) error {
	query := `
		UPDATE referrals SET
			status = $2, notes = $3, response_notes = $4, responded_by = $5,
			responded_at = $6, cancelled_by = $7, cancelled_at = $8, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		ref.ID, ref.Status, ref.Notes, ref.ResponseNotes,
		nullableID(ref.RespondedBy), ref.RespondedAt,
		nullableID(ref.CancelledBy), ref.CancelledAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update referral")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("referral", ref.ID.String())
	}
	return nil
}

// Delete removes a referral and its message thread
func (r *Repository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM referrals WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete referral")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("referral", id.String())
	}
	return nil
}

const referralColumns = `
	id, enrollee_id, resource_id, status, notes, referred_by,
	response_notes, responded_by, responded_at,
	cancelled_by, cancelled_at, created_at, updated_at`

// FindByID finds a referral by ID
func (r *Repository) FindByID(ctx context.Context, id types.ID) (*Referral, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+referralColumns+` FROM referrals WHERE id = $1`, id)

	ref, err := scanReferral(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("referral", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find referral")
	}
	return ref, nil
}

// List returns referrals matching the filter, newest first
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals`
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

	if !filter.EnrolleeID.IsZero() {
		addClause("enrollee_id = ", filter.EnrolleeID)
	}
	if !filter.ResourceID.IsZero() {
		addClause("resource_id = ", filter.ResourceID)
	}
	if filter.Status != "" {
		addClause("status = ", filter.Status)
	}
	query += where + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list referrals")
	}
	defer rows.Close()

	var referrals []Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan referral")
		}
		referrals = append(referrals, *ref)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read referrals")
	}
	return referrals, nil
}

// AddMessage appends a message to a referral's thread
func (r *Repository) AddMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO referral_messages (id, referral_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.ReferralID, nullableID(msg.SenderID), msg.Body, msg.SentAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save referral message")
	}
	return nil
}

// ListMessages returns a referral's thread in send order
func (r *Repository) ListMessages(ctx context.Context, referralID types.ID) ([]Message, error) {
	query := `
		SELECT id, referral_id, sender_id, body, sent_at
		FROM referral_messages WHERE referral_id = $1 ORDER BY sent_at`

	rows, err := r.pool.Query(ctx, query, referralID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list referral messages")
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var sender *types.ID
		if err := rows.Scan(&msg.ID, &msg.ReferralID, &sender, &msg.Body, &msg.SentAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan referral message")
		}
		if sender != nil {
			msg.SenderID = *sender
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read referral messages")
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReferral(row rowScanner) (*Referral, error) {
	ref := &Referral{}
	var referredBy, respondedBy, cancelledBy *types.ID
	var responseNotes *string

	err := row.Scan(
		&ref.ID, &ref.EnrolleeID, &ref.ResourceID, &ref.Status, &ref.Notes, &referredBy,
		&responseNotes, &respondedBy, &ref.RespondedAt,
		&cancelledBy, &ref.CancelledAt, &ref.CreatedAt, &ref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if referredBy != nil {
		ref.ReferredBy = *referredBy
	}
	if respondedBy != nil {
		ref.RespondedBy = *respondedBy
	}
	if cancelledBy != nil {
		ref.CancelledBy = *cancelledBy
	}
	if responseNotes != nil {
		ref.ResponseNotes = *responseNotes
	}
	return ref, nil
}

func nullableID(id types.ID) *types.ID {
	if id.IsZero() {
		return nil
	}
	return &id
}
