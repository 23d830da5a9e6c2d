package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringExpense is a declarative template for a recurring cost.
// It is never posted to the ledger automatically.
type RecurringExpense struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Clone returns a copy that shares no state with r
func (r *RecurringExpense) Clone() *RecurringExpense {
	c := *r
	return &c
}
