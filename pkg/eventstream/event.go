// Package eventstream defines the events emitted after gateway invocations are
// recorded and the publishers that deliver them.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/venyro/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeGenerationRecorded is emitted after an invocation record is persisted.
	EventTypeGenerationRecorded = "venyro.generation.recorded"
)

// RecordedEvent is a transport-neutral event payload for a persisted invocation.
type RecordedEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Record        storage.Record `json:"record"`
}

// EventSource identifies where the invocation was served.
type EventSource struct {
	Gateway  string `json:"gateway,omitempty"`
	Provider string `json:"provider"`
}

// NewRecordedEvent wraps record in a v1 event with a fresh ID.
func NewRecordedEvent(record *storage.Record, source EventSource) *RecordedEvent {
	return &RecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeGenerationRecorded,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Record:        *record,
	}
}
