package amqp

import (
	"encoding/json"
	"time"

	"expenses/internal/core"
)

// ExpenseRecordedMessage notifies downstream consumers that an expense
// was written to the ledger. It carries the full row so consumers do
// not need read access to the store.
type ExpenseRecordedMessage struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NewExpenseRecordedMessage builds the message for a stored expense.
func NewExpenseRecordedMessage(id int64, e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:          id,
		Date:        e.Date.String(),
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		RecordedAt:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON parses a message from JSON bytes.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
