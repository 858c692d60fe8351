package enrollee

import (
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// EntryKind distinguishes the three care-plan entry types.
type EntryKind string

const (
	EntryKindNote    EntryKind = "note"
	EntryKindInsight EntryKind = "insight"
	EntryKindAlert   EntryKind = "alert"
)

// InsightStatus tracks the review state of a generated insight. Only entries
// of kind insight carry a status.
type InsightStatus string

const (
	InsightStatusPending   InsightStatus = "pending"
	InsightStatusAccepted  InsightStatus = "accepted"
	InsightStatusDismissed InsightStatus = "dismissed"
)

// CarePlanEntry is attached to one enrollee.
type CarePlanEntry struct {
	ID         types.ID      `json:"id"`
	EnrolleeID types.ID      `json:"enrollee_id"`
	Kind       EntryKind     `json:"kind"`
	Body       string        `json:"body"`
	Status     InsightStatus `json:"status,omitempty"`
	AuthorID   types.ID      `json:"author_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewCarePlanEntry creates a care-plan entry with validation. Insights start
// pending; notes and alerts carry no status.
func NewCarePlanEntry(enrolleeID types.ID, kind EntryKind, body string, authorID types.ID) (*CarePlanEntry, error) {
	switch kind {
	case EntryKindNote, EntryKindInsight, EntryKindAlert:
	default:
		return nil, errors.Validation("unknown care plan entry kind", map[string]string{"kind": string(kind)})
	}
	if body == "" {
		return nil, errors.BadRequest("entry body is required")
	}

	entry := &CarePlanEntry{
		ID:         types.NewID(),
		EnrolleeID: enrolleeID,
		Kind:       kind,
		Body:       body,
		AuthorID:   authorID,
		CreatedAt:  time.Now(),
	}
	if kind == EntryKindInsight {
		entry.Status = InsightStatusPending
	}
	return entry, nil
}

// SetInsightStatus updates the review state of an insight entry.
func (e *CarePlanEntry) SetInsightStatus(status InsightStatus) error {
	if e.Kind != EntryKindInsight {
		return errors.Conflict("only insight entries carry a status")
	}
	switch status {
	case InsightStatusPending, InsightStatusAccepted, InsightStatusDismissed:
	default:
		return errors.Validation("unknown insight status", map[string]string{"status": string(status)})
	}
	e.Status = status
	return nil
}
