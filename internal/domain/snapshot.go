package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the persisted state of one user: balance, expense buckets and
// recurring expenses in insertion order.
type Snapshot struct {
	Balance   decimal.Decimal     `json:"balance"`
	Expenses  ExpenseTree         `json:"expenses"`
	Recurring []*RecurringExpense `json:"recurring"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// SnapshotRepository persists snapshots keyed by user key.
// Load returns ErrSnapshotNotFound when nothing was saved for the user and
// an error wrapping ErrMalformedSnapshot when stored data cannot be decoded.
type SnapshotRepository interface {
	Load(ctx context.Context, userKey string) (*Snapshot, error)
	Save(ctx context.Context, userKey string, snapshot *Snapshot) error
}
