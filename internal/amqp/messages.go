package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the worker to mirror one transaction to
// the spreadsheet. It carries only the id; the worker fetches the full
// transaction from the database.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batchId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id, batchID string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		BatchID:   batchID,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
