package amqp

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// ExpenseEvent announces a change to one expense. It carries ids only; a
// consumer that needs the record reads it from storage.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	UserID    int64     `json:"user_id"`
	ExpenseID int64     `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(t EventType, userID, expenseID int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      t,
		UserID:    userID,
		ExpenseID: expenseID,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ExpenseEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID <= 0 || e.ExpenseID <= 0 {
		return fmt.Errorf("event missing ids: user=%d expense=%d", e.UserID, e.ExpenseID)
	}
	return nil
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes and validates an event body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var evt ExpenseEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return &evt, nil
}
