package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventOp names what happened to a transaction.
type EventOp string

const (
	OpSaved   EventOp = "saved"
	OpDeleted EventOp = "deleted"
)

// TransactionEvent is a lightweight change notification. It carries only the
// id; consumers fetch the current record from the gateway.
type TransactionEvent struct {
	EventID       string    `json:"event_id"`
	TransactionID int64     `json:"transaction_id"`
	Op            EventOp   `json:"op"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent stamps a fresh event id and the current time.
func NewTransactionEvent(id int64, op EventOp) *TransactionEvent {
	return &TransactionEvent{
		EventID:       uuid.NewString(),
		TransactionID: id,
		Op:            op,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op != OpSaved && msg.Op != OpDeleted {
		return nil, errors.New("unknown event op: " + string(msg.Op))
	}
	return &msg, nil
}
