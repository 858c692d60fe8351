package referral

import (
	stderrors "errors"
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/shared/errors"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

func newPending(t *testing.T) *Referral {
	t.Helper()
	ref, err := New(types.NewID(), types.NewID(), types.NewID(), "note")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return ref
}

// TestNewReferral verifies referrals start pending
func TestNewReferral(t *testing.T) {
	ref := newPending(t)
	if ref.Status != StatusPending {
		t.Errorf("new referral status = %s, want %s", ref.Status, StatusPending)
	}
	if ref.ID.IsZero() {
		t.Error("expected non-zero ID")
	}

	if _, err := New(types.ID(""), types.NewID(), types.NewID(), ""); err == nil {
		t.Error("expected error for missing enrollee ID")
	}
	if _, err := New(types.NewID(), types.ID(""), types.NewID(), ""); err == nil {
		t.Error("expected error for missing resource ID")
	}
}

// TestRespond verifies the accept and reject transitions
func TestRespond(t *testing.T) {
	responder := types.NewID()

	ref := newPending(t)
	if err := ref.Respond(StatusAccepted, responder, "bed available"); err != nil {
		t.Fatalf("Respond(accepted) error: %v", err)
	}
	if ref.Status != StatusAccepted {
		t.Errorf("status = %s, want %s", ref.Status, StatusAccepted)
	}
	if ref.RespondedBy != responder || ref.RespondedAt == nil {
		t.Error("expected responder and timestamp to be recorded")
	}
	if ref.ResponseNotes != "bed available" {
		t.Errorf("response notes = %q", ref.ResponseNotes)
	}

	ref = newPending(t)
	if err := ref.Respond(StatusRejected, responder, ""); err != nil {
		t.Fatalf("Respond(rejected) error: %v", err)
	}
	if ref.Status != StatusRejected {
		t.Errorf("status = %s, want %s", ref.Status, StatusRejected)
	}
}

// TestRespondRejectsInvalidDecision verifies only accepted/rejected are decisions
func TestRespondRejectsInvalidDecision(t *testing.T) {
	for _, decision := range []Status{StatusPending, StatusCancelled, StatusCompleted, Status("bogus")} {
		ref := newPending(t)
		if err := ref.Respond(decision, types.NewID(), ""); err == nil {
			t.Errorf("Respond(%s) should fail", decision)
		}
		if ref.Status != StatusPending {
			t.Errorf("failed response mutated status to %s", ref.Status)
		}
	}
}

// TestTerminalStatesRejectTransitions verifies non-pending referrals are terminal
func TestTerminalStatesRejectTransitions(t *testing.T) {
	terminal := []Status{StatusAccepted, StatusRejected, StatusCancelled}

	for _, status := range terminal {
		ref := newPending(t)
		ref.Status = status

		if err := ref.Cancel(types.NewID()); err == nil {
			t.Errorf("Cancel on %s referral should fail", status)
		} else if !stderrors.Is(err, errors.ErrConflict) {
			t.Errorf("Cancel on %s returned %v, want conflict", status, err)
		}

		if err := ref.Respond(StatusAccepted, types.NewID(), ""); err == nil {
			t.Errorf("Respond on %s referral should fail", status)
		}

		if ref.Status != status {
			t.Errorf("rejected transition mutated status from %s to %s", status, ref.Status)
		}
	}
}

// TestCancel verifies pending referrals can be withdrawn
func TestCancel(t *testing.T) {
	actor := types.NewID()
	ref := newPending(t)

	if err := ref.Cancel(actor); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if ref.Status != StatusCancelled {
		t.Errorf("status = %s, want %s", ref.Status, StatusCancelled)
	}
	if ref.CancelledBy != actor || ref.CancelledAt == nil {
		t.Error("expected canceller and timestamp to be recorded")
	}
}

// TestComplete verifies only accepted referrals complete
func TestComplete(t *testing.T) {
	ref := newPending(t)
	if err := ref.Complete(); err == nil {
		t.Error("Complete on pending referral should fail")
	}

	if err := ref.Respond(StatusAccepted, types.NewID(), ""); err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if err := ref.Complete(); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if ref.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", ref.Status, StatusCompleted)
	}
}

// TestNewMessage verifies thread messages require a body
func TestNewMessage(t *testing.T) {
	refID := types.NewID()

	msg, err := NewMessage(refID, types.NewID(), "any update?")
	if err != nil {
		t.Fatalf("NewMessage() error: %v", err)
	}
	if msg.ReferralID != refID || msg.Body != "any update?" {
		t.Error("message fields not set")
	}

	if _, err := NewMessage(refID, types.NewID(), ""); err == nil {
		t.Error("expected error for empty body")
	}
}
