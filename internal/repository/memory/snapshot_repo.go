// Package memory keeps snapshots in process memory. Data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SnapshotRepository implements domain.SnapshotRepository with a map
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
}

var _ domain.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates an empty repository
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{snapshots: make(map[string]*domain.Snapshot)}
}

// Load returns a copy of the stored snapshot
func (r *SnapshotRepository) Load(_ context.Context, userKey string) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[userKey]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return cloneSnapshot(snap), nil
}

// Save stores a copy of snapshot
func (r *SnapshotRepository) Save(_ context.Context, userKey string, snapshot *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[userKey] = cloneSnapshot(snapshot)
	return nil
}

// Len returns the number of stored users
func (r *SnapshotRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots)
}

func cloneSnapshot(s *domain.Snapshot) *domain.Snapshot {
	out := &domain.Snapshot{
		Balance:   s.Balance,
		Expenses:  make(domain.ExpenseTree, len(s.Expenses)),
		Recurring: make([]*domain.RecurringExpense, 0, len(s.Recurring)),
		UpdatedAt: s.UpdatedAt,
	}
	for y, months := range s.Expenses {
		out.Expenses[y] = make(map[string]map[string]decimal.Decimal, len(months))
		for m, cats := range months {
			out.Expenses[y][m] = make(map[string]decimal.Decimal, len(cats))
			for c, amt := range cats {
				out.Expenses[y][m][c] = amt
			}
		}
	}
	for _, r := range s.Recurring {
		out.Recurring = append(out.Recurring, r.Clone())
	}
	return out
}
