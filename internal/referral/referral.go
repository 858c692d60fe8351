// Package referral tracks requests sent from coordinators to community
// resources and the state machine governing their lifecycle.
package referral

import (
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Status is the lifecycle state of a referral.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// KnownStatus reports whether s is a recognized referral status.
func KnownStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Referral is a request for an enrollee to receive services from a resource.
// Only pending referrals may transition; every other status is terminal.
type Referral struct {
	ID         types.ID `json:"id"`
	EnrolleeID types.ID `json:"enrollee_id"`
	ResourceID types.ID `json:"resource_id"`
	Status     Status   `json:"status"`
	Notes      string   `json:"notes,omitempty"`
	ReferredBy types.ID `json:"referred_by,omitempty"`

	ResponseNotes string     `json:"response_notes,omitempty"`
	RespondedBy   types.ID   `json:"responded_by,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`

	CancelledBy types.ID   `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a pending referral
func New(enrolleeID, resourceID, referredBy types.ID, notes string) (*Referral, error) {
	if enrolleeID.IsZero() {
		return nil, errors.BadRequest("enrollee ID is required")
	}
	if resourceID.IsZero() {
		return nil, errors.BadRequest("resource ID is required")
	}

	now := time.Now()
	return &Referral{
		ID:         types.NewID(),
		EnrolleeID: enrolleeID,
		ResourceID: resourceID,
		Status:     StatusPending,
		Notes:      notes,
		ReferredBy: referredBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Respond records the resource's decision. Only pending referrals can be
// responded to, and the decision must be accepted or rejected.
func (r *Referral) Respond(decision Status, responder types.ID, notes string) error {
	if decision != StatusAccepted && decision != StatusRejected {
		return errors.BadRequest("decision must be accepted or rejected")
	}
	if r.Status != StatusPending {
		return errors.Conflict("referral is " + string(r.Status) + ", only pending referrals accept a response")
	}

	now := time.Now()
	r.Status = decision
	r.ResponseNotes = notes
	r.RespondedBy = responder
	r.RespondedAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel withdraws a pending referral.
func (r *Referral) Cancel(actor types.ID) error {
	if r.Status != StatusPending {
		return errors.Conflict("referral is " + string(r.Status) + ", only pending referrals can be cancelled")
	}

	now := time.Now()
	r.Status = StatusCancelled
	r.CancelledBy = actor
	r.CancelledAt = &now
	r.UpdatedAt = now
	return nil
}

// Complete marks an accepted referral as fulfilled.
func (r *Referral) Complete() error {
	if r.Status != StatusAccepted {
		return errors.Conflict("referral is " + string(r.Status) + ", only accepted referrals can be completed")
	}
	r.Status = StatusCompleted
	r.UpdatedAt = time.Now()
	return nil
}

// Message is one entry in a referral's communication thread. The thread is
// append-only.
type Message struct {
	ID         types.ID  `json:"id"`
	ReferralID types.ID  `json:"referral_id"`
	SenderID   types.ID  `json:"sender_id,omitempty"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// NewMessage creates a thread message
func NewMessage(referralID, senderID types.ID, body string) (*Message, error) {
	if body == "" {
		return nil, errors.BadRequest("message body is required")
	}
	return &Message{
		ID:         types.NewID(),
		ReferralID: referralID,
		SenderID:   senderID,
		Body:       body,
		SentAt:     time.Now(),
	}, nil
}
