package memory

import (
	"context"
	"testing"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	_, err := repo.Load(ctx, "asha")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	snap := &domain.Snapshot{
		Balance:  decimal.NewFromInt(750),
		Expenses: domain.ExpenseTree{"2024": {"0": {"Food": decimal.NewFromInt(250)}}},
		Recurring: []*domain.RecurringExpense{
			{ID: "1", Name: "Netflix", Amount: decimal.NewFromInt(499), Category: "Subscription", Active: true},
		},
	}
	require.NoError(t, repo.Save(ctx, "asha", snap))

	// Mutating the caller's copy must not leak into the store
	snap.Expenses["2024"]["0"]["Food"] = decimal.NewFromInt(1)
	snap.Recurring[0].Active = false

	got, err := repo.Load(ctx, "asha")
	require.NoError(t, err)
	assert.True(t, got.Expenses["2024"]["0"]["Food"].Equal(decimal.NewFromInt(250)))
	assert.True(t, got.Recurring[0].Active)
	assert.Equal(t, 1, repo.Len())
}
