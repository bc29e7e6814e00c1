// Package events publishes notifications about budget and transaction
// changes for consumers outside the web process.
package events

import (
	"encoding/json"
	"time"

	"budgetr/internal/core"

	"github.com/google/uuid"
)

// Event types double as AMQP routing keys.
const (
	TypeTransactionAdded = "transaction.added"
	TypeBudgetChanged    = "budget.changed"
)

// Event is the JSON body of every published message.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	UserID        int64     `json:"user_id"`
	Year          int       `json:"year,omitempty"`
	Month         int       `json:"month,omitempty"`
	Category      string    `json:"category,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionAdded describes a recorded transaction.
func NewTransactionAdded(tx core.Transaction) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          TypeTransactionAdded,
		UserID:        tx.UserID,
		Year:          tx.Date.Year(),
		Month:         tx.Date.Month(),
		Category:      tx.Category,
		Amount:        tx.Amount.StringFixed(2),
		TransactionID: tx.ID,
		Timestamp:     time.Now().UTC(),
	}
}

// NewBudgetChanged describes a monthly (empty category) or category budget
// upsert. Year and month are those of the overview being edited.
func NewBudgetChanged(userID int64, year, month int, category string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      TypeBudgetChanged,
		UserID:    userID,
		Year:      year,
		Month:     month,
		Category:  category,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event body.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
