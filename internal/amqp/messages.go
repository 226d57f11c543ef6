package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// ExpenseRecordedMessage carries a recorded expense and the budget that
// remained after it. Amounts are encoded as JSON strings.
type ExpenseRecordedMessage struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Category        core.Category   `json:"category"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewExpenseRecordedMessage creates a message with a fresh ID.
func NewExpenseRecordedMessage(e core.Expense, remaining decimal.Decimal) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:              uuid.NewString(),
		Name:            e.Name,
		Amount:          e.Amount,
		Category:        e.Category,
		RemainingBudget: remaining,
		Timestamp:       time.Now().UTC(),
	}
}

// Expense rebuilds the core expense carried by the message.
func (m *ExpenseRecordedMessage) Expense() core.Expense {
	return core.Expense{Name: m.Name, Amount: m.Amount, Category: m.Category}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
