// Package events publishes portal domain events to EventStoreDB and lets
// in-process consumers subscribe to them. The event streams are the backend
// counterpart of the live-updating views the portal UI renders: every
// mutation to enrollees, resources and referrals is pushed here.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Event types published by the portal.
const (
	TypeEnrolleeCreated  = "enrollee.created"
	TypeEnrolleeUpdated  = "enrollee.updated"
	TypeEnrolleeDeleted  = "enrollee.deleted"
	TypeCarePlanAdded    = "enrollee.careplan.added"
	TypeResourceCreated  = "resource.created"
	TypeResourceUpdated  = "resource.updated"
	TypeResourceDeleted  = "resource.deleted"
	TypeReferralCreated  = "referral.created"
	TypeReferralResponse = "referral.responded"
	TypeReferralCancel   = "referral.cancelled"
	TypeReferralMessage  = "referral.message"
	TypeRoleChanged      = "profile.role_changed"
	TypeSampleLoaded     = "sandbox.loaded"
	TypeSampleCleared    = "sandbox.cleared"
)

// Event represents a portal domain event
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	// Actor information
	ActorID   types.ID `json:"actor_id,omitempty"`
	ActorRole string   `json:"actor_role,omitempty"`

	// Event data
	Data any `json:"data"`
}

// New creates a new event with auto-generated ID and timestamp
func New(eventType string, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "atlas-portal",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// WithActor sets the actor information on the event
func (e Event) WithActor(actorID types.ID, role string) Event {
	e.ActorID = actorID
	e.ActorRole = role
	return e
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// EventBus defines the interface for event publishing and subscription
type EventBus interface {
	// Publish publishes an event to the bus
	Publish(ctx context.Context, event Event) error

	// Subscribe delivers events whose type matches the pattern to the
	// handler. The subscription ends when ctx is cancelled.
	Subscribe(ctx context.Context, pattern string, consumerName string, handler Handler) error

	// Close closes the event bus connection
	Close()

	// Health checks the event bus connection
	Health() error
}
