package audit

import (
	"testing"
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// TestFromEvent verifies domain events convert into audit entries
func TestFromEvent(t *testing.T) {
	actorID := types.NewID()
	resourceID := types.NewID()

	event := events.New(events.TypeReferralResponse, map[string]any{
		"id":     resourceID.String(),
		"status": "accepted",
	}).WithActor(actorID, "partner")

	entry := FromEvent(event)
	if entry == nil {
		t.Fatal("FromEvent returned nil")
	}
	if entry.Action != events.TypeReferralResponse {
		t.Errorf("action = %q, want %q", entry.Action, events.TypeReferralResponse)
	}
	if entry.ResourceType != "referral" {
		t.Errorf("resource type = %q, want referral", entry.ResourceType)
	}
	if entry.ResourceID != resourceID {
		t.Errorf("resource ID = %s, want %s", entry.ResourceID, resourceID)
	}
	if entry.ActorID != actorID || entry.ActorRole != "partner" {
		t.Error("actor fields not carried over")
	}

	if FromEvent(events.New("malformed", nil)) != nil {
		t.Error("expected nil entry for unprefixed event type")
	}
}

// TestSealAndVerify verifies the hash covers the chained fields
func TestSealAndVerify(t *testing.T) {
	entry := FromEvent(events.New(events.TypeEnrolleeCreated, map[string]any{"id": types.NewID().String()}))
	entry.Seal(1, "")

	if entry.Hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if !entry.Verify() {
		t.Error("freshly sealed entry should verify")
	}

	entry.Action = "enrollee.deleted"
	if entry.Verify() {
		t.Error("tampered entry should not verify")
	}
}

// TestChainLinks verifies sequential sealing links entries by hash
func TestChainLinks(t *testing.T) {
	prevHash := ""
	var entries []*Entry

	for i := 0; i < 5; i++ {
		entry := FromEvent(events.New(events.TypeResourceUpdated, map[string]any{
			"id": types.NewID().String(),
		}))
		entry.Seal(int64(i+1), prevHash)
		prevHash = entry.Hash
		entries = append(entries, entry)
	}

	for i := 1; i < len(entries); i++ {
		if entries[i].PrevHash != entries[i-1].Hash {
			t.Errorf("chain broken at entry %d", i)
		}
		if !entries[i].Verify() {
			t.Errorf("entry %d does not verify", i)
		}
	}
}

// TestHashDeterministicAcrossKeyOrder verifies map ordering cannot change the hash
func TestHashDeterministicAcrossKeyOrder(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	build := func() *Entry {
		return &Entry{
			ID:           types.ID("9b6f3a64-0000-4000-8000-000000000001"),
			Timestamp:    ts,
			Action:       "enrollee.updated",
			ResourceType: "enrollee",
			Details: map[string]any{
				"first_name": "Ava",
				"last_name":  "Reyes",
				"tier":       2,
			},
		}
	}

	a := build()
	a.Seal(7, "prev")
	b := build()
	b.Seal(7, "prev")

	if a.Hash != b.Hash {
		t.Errorf("hashes differ for identical entries: %s vs %s", a.Hash, b.Hash)
	}
}
