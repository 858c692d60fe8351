// Package audit keeps an append-only, hash-chained record of every mutation
// in the portal. Entries are produced by subscribing to the event bus, never
// by direct handler calls, so a missed write cannot silently skip the trail.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/kc-aidesigntech/atlas/internal/shared/events"
	"github.com/kc-aidesigntech/atlas/internal/shared/types"
)

// Entry is one immutable audit record. Hash covers the entry's own fields
// plus PrevHash, chaining the log.
type Entry struct {
	ID        types.ID  `json:"id"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Hash      string    `json:"hash"`
	PrevHash  string    `json:"prev_hash,omitempty"`

	ActorID   types.ID `json:"actor_id,omitempty"`
	ActorRole string   `json:"actor_role,omitempty"`

	Action       string   `json:"action"`
	ResourceType string   `json:"resource_type"`
	ResourceID   types.ID `json:"resource_id,omitempty"`

	Details map[string]any `json:"details,omitempty"`
}

// FromEvent builds an unsealed entry from a domain event. Returns nil for
// event types that carry no resource prefix.
func FromEvent(event events.Event) *Entry {
	parts := strings.SplitN(event.Type, ".", 2)
	if len(parts) < 2 {
		return nil
	}

	entry := &Entry{
		ID:           types.NewID(),
		Timestamp:    event.Timestamp.UTC().Truncate(time.Microsecond),
		ActorID:      event.ActorID,
		ActorRole:    event.ActorRole,
		Action:       event.Type,
		ResourceType: parts[0],
	}

	if data, ok := event.Data.(map[string]any); ok {
		entry.Details = data
		for _, field := range []string{"id", parts[0] + "_id"} {
			if raw, ok := data[field].(string); ok {
				if id, err := types.ParseID(raw); err == nil {
					entry.ResourceID = id
					break
				}
			}
		}
	}

	return entry
}

// Seal fixes the entry's position in the chain and computes its hash.
func (e *Entry) Seal(sequence int64, prevHash string) {
	e.Sequence = sequence
	e.PrevHash = prevHash
	e.Hash = e.computeHash()
}

// Verify reports whether the entry's hash still matches its content.
func (e *Entry) Verify() bool {
	return e.Hash == e.computeHash()
}

func (e *Entry) computeHash() string {
	fields := map[string]any{
		"id":            e.ID,
		"sequence":      e.Sequence,
		"timestamp":     e.Timestamp.UTC().Format(time.RFC3339Nano),
		"prev_hash":     e.PrevHash,
		"actor_id":      e.ActorID,
		"actor_role":    e.ActorRole,
		"action":        e.Action,
		"resource_type": e.ResourceType,
	}
	if !e.ResourceID.IsZero() {
		fields["resource_id"] = e.ResourceID
	}
	if len(e.Details) > 0 {
		fields["details"] = e.Details
	}

	data, _ := canonicalJSON(fields)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalJSON encodes with sorted map keys. Go maps iterate in random order
// and JSONB round-trips reorder keys, so hashing needs a stable encoding.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return canonicalMarshal(parsed)
}

func canonicalMarshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, _ := json.Marshal(k)
			buf.Write(keyBytes)
			buf.WriteByte(':')
			valBytes, err := canonicalMarshal(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(valBytes)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			itemBytes, err := canonicalMarshal(item)
			if err != nil {
				return nil, err
			}
			buf.Write(itemBytes)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	default:
		return json.Marshal(val)
	}
}

// ListFilter narrows audit queries.
type ListFilter struct {
	ActorID      types.ID
	Action       string
	ResourceType string
	ResourceID   types.ID
	Limit        int
	Offset       int
}
