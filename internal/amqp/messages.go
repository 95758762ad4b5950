package amqp

import (
	"encoding/json"
	"time"
)

// Reasons a reconcile request is published.
const (
	ReasonSpentUpdateFailed = "spent_update_failed"
	ReasonManual            = "manual"
)

// ReconcileMessage asks the worker to recompute one budget's spent total
// from the ledger. It carries only the normalized category key; the
// worker reads the authoritative data itself.
type ReconcileMessage struct {
	CategoryKey string    `json:"category_key"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewReconcileMessage(categoryKey, reason string) *ReconcileMessage {
	return &ReconcileMessage{
		CategoryKey: categoryKey,
		Reason:      reason,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReconcileMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReconcileMessageFromJSON creates a message from JSON bytes
func ReconcileMessageFromJSON(data []byte) (*ReconcileMessage, error) {
	var msg ReconcileMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.CategoryKey == "" {
		return nil, errEmptyCategoryKey
	}
	return &msg, nil
}
