package enrollee

import (
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// TestNewCarePlanEntry verifies entry validation and insight defaults
func TestNewCarePlanEntry(t *testing.T) {
	enrolleeID := types.NewID()
	authorID := types.NewID()

	note, err := NewCarePlanEntry(enrolleeID, EntryKindNote, "follow up next week", authorID)
	if err != nil {
		t.Fatalf("NewCarePlanEntry(note) error: %v", err)
	}
	if note.Status != "" {
		t.Errorf("note status = %q, want empty", note.Status)
	}

	insight, err := NewCarePlanEntry(enrolleeID, EntryKindInsight, "consider food referral", authorID)
	if err != nil {
		t.Fatalf("NewCarePlanEntry(insight) error: %v", err)
	}
	if insight.Status != InsightStatusPending {
		t.Errorf("insight status = %q, want pending", insight.Status)
	}

	if _, err := NewCarePlanEntry(enrolleeID, EntryKind("reminder"), "x", authorID); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := NewCarePlanEntry(enrolleeID, EntryKindNote, "", authorID); err == nil {
		t.Error("expected error for empty body")
	}
}

// TestSetInsightStatus verifies only insights carry a review status
func TestSetInsightStatus(t *testing.T) {
	enrolleeID := types.NewID()

	insight, _ := NewCarePlanEntry(enrolleeID, EntryKindInsight, "x", types.NewID())
	if err := insight.SetInsightStatus(InsightStatusAccepted); err != nil {
		t.Fatalf("SetInsightStatus() error: %v", err)
	}
	if insight.Status != InsightStatusAccepted {
		t.Errorf("status = %q, want accepted", insight.Status)
	}

	if err := insight.SetInsightStatus(InsightStatus("archived")); err == nil {
		t.Error("expected error for unknown status")
	}

	note, _ := NewCarePlanEntry(enrolleeID, EntryKindNote, "x", types.NewID())
	if err := note.SetInsightStatus(InsightStatusAccepted); err == nil {
		t.Error("expected conflict setting status on a note")
	}
}
