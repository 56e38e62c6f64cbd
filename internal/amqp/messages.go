package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangeMessage announces a persisted mutation. It carries ids only;
// consumers read the records from their own copy of the ledger.
type LedgerChangeMessage struct {
	Operation string    `json:"operation"`
	IDs       []string  `json:"ids,omitempty"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(op string, ids []string, revision int64) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Operation: op,
		IDs:       ids,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
