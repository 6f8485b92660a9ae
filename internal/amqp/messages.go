package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the mirror queue.
const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// Envelope wraps every message published on the mirror queue so the
// consumer can dispatch on kind before decoding the payload.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// TransactionSyncMessage asks the worker to mirror a transaction to the
// spreadsheet. Only the ID travels on the wire, the worker fetches the
// full row from storage.
type TransactionSyncMessage struct {
	ID string `json:"id"`
}

// TransactionDeleteMessage carries enough of the deleted row to locate
// and remove its mirror, since the row is already gone from storage.
type TransactionDeleteMessage struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Account     string `json:"account"`
	Date        string `json:"date"`
}

func newEnvelope(kind string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &Envelope{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON creates an envelope from JSON bytes
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Kind != KindSync && env.Kind != KindDelete {
		return nil, fmt.Errorf("unknown message kind %q", env.Kind)
	}
	return &env, nil
}

// SyncPayload decodes the envelope payload as a sync message.
func (e *Envelope) SyncPayload() (*TransactionSyncMessage, error) {
	if e.Kind != KindSync {
		return nil, fmt.Errorf("envelope kind is %q, not %q", e.Kind, KindSync)
	}
	var msg TransactionSyncMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, fmt.Errorf("decode sync payload: %w", err)
	}
	return &msg, nil
}

// DeletePayload decodes the envelope payload as a delete message.
func (e *Envelope) DeletePayload() (*TransactionDeleteMessage, error) {
	if e.Kind != KindDelete {
		return nil, fmt.Errorf("envelope kind is %q, not %q", e.Kind, KindDelete)
	}
	var msg TransactionDeleteMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, fmt.Errorf("decode delete payload: %w", err)
	}
	return &msg, nil
}
