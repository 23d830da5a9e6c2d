package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated         EventType = "created"
	EventTypeUpdated         EventType = "updated"
	EventTypeDeleted         EventType = "deleted"
	EventTypeExpenseRecorded EventType = "expense_recorded"
	EventTypeCreditRecorded  EventType = "credit_recorded"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLedger       EntityType = "ledger"
	EntityTypeRecurring    EntityType = "recurring"
	EntityTypeSession      EntityType = "session"
	EntityTypeNotification EntityType = "notification"
)

// NotificationLevel is the severity of a user-facing notification
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
	LevelError   NotificationLevel = "error"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "ledger.expense_recorded"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "ledger"
	Payload   interface{} `json:"payload"`   // Entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// Notification is the payload of notification events
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseRecorded creates a ledger.expense_recorded event
func ExpenseRecorded(payload interface{}) Event {
	return NewEvent(EventTypeExpenseRecorded, EntityTypeLedger, payload)
}

// CreditRecorded creates a ledger.credit_recorded event
func CreditRecorded(payload interface{}) Event {
	return NewEvent(EventTypeCreditRecorded, EntityTypeLedger, payload)
}

// RecurringCreated creates a recurring.created event
func RecurringCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeRecurring, payload)
}

// RecurringUpdated creates a recurring.updated event
func RecurringUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeRecurring, payload)
}

// RecurringDeleted creates a recurring.deleted event
func RecurringDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeRecurring, payload)
}

// SessionClosed creates a session.deleted event, sent on logout
func SessionClosed(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSession, payload)
}

// Notify creates a notification event such as "notification.error"
func Notify(level NotificationLevel, message string) Event {
	return NewEvent(EventType(level), EntityTypeNotification, Notification{Level: level, Message: message})
}
