package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"category": "Food",
		"amount":   "250.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeExpenseRecorded, EntityTypeLedger, payload)
	after := time.Now()

	assert.Equal(t, "ledger.expense_recorded", evt.Type)
	assert.Equal(t, EntityTypeLedger, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := CreditRecorded(map[string]interface{}{"amount": "1000.00"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "ledger.credit_recorded", decoded["type"])
	assert.Equal(t, "ledger", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEventHelpers(t *testing.T) {
	payload := map[string]interface{}{"id": "0190c7e2"}

	tests := []struct {
		name     string
		evt      Event
		wantType string
		entity   EntityType
	}{
		{"expense recorded", ExpenseRecorded(payload), "ledger.expense_recorded", EntityTypeLedger},
		{"credit recorded", CreditRecorded(payload), "ledger.credit_recorded", EntityTypeLedger},
		{"recurring created", RecurringCreated(payload), "recurring.created", EntityTypeRecurring},
		{"recurring updated", RecurringUpdated(payload), "recurring.updated", EntityTypeRecurring},
		{"recurring deleted", RecurringDeleted(payload), "recurring.deleted", EntityTypeRecurring},
		{"session closed", SessionClosed(payload), "session.deleted", EntityTypeSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

func TestNotify(t *testing.T) {
	evt := Notify(LevelError, "Error loading saved data")

	assert.Equal(t, "notification.error", evt.Type)
	assert.Equal(t, EntityTypeNotification, evt.Entity)

	n, ok := evt.Payload.(Notification)
	require.True(t, ok)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Error loading saved data", n.Message)
}
