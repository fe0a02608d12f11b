package amqp

import (
	"encoding/json"
	"time"
)

// Record kinds carried on the sync queue.
const (
	KindTimeEntry = "time_entry"
	KindExpense   = "expense"
)

// Operations carried on the sync queue.
const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// SyncMessage is a lightweight notification that a record changed.
// It carries only the kind, id and version; the worker fetches the
// full record from the database before writing it out.
type SyncMessage struct {
	Op        string    `json:"op"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage creates a sync notification for a created or edited record.
func NewSyncMessage(kind string, id, version int64) *SyncMessage {
	return &SyncMessage{
		Op:        OpSync,
		Kind:      kind,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a notification that a record was removed.
func NewDeleteMessage(kind string, id int64) *SyncMessage {
	return &SyncMessage{
		Op:        OpDelete,
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
