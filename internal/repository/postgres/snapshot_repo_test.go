package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalPgNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "750", "-20.5", "1234567.8901"} {
		t.Run(s, func(t *testing.T) {
			want := decimal.RequireFromString(s)
			num, err := decimalToPgNumeric(want)
			require.NoError(t, err)
			assert.True(t, pgNumericToDecimal(num).Equal(want))
		})
	}
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db", migrateURL("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

// TestSnapshotRepository_Postgres runs against a real database when
// TEST_DATABASE_URL is set.
func TestSnapshotRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, RunMigrations(url))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewSnapshotRepository(pool)
	userKey := "test-" + uuid.NewString()

	_, err = repo.Load(ctx, userKey)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	snap := &domain.Snapshot{
		Balance: decimal.RequireFromString("750"),
		Expenses: domain.ExpenseTree{
			"2024": {"0": {"Food": decimal.RequireFromString("250")}},
		},
		Recurring: []*domain.RecurringExpense{
			{ID: uuid.NewString(), Name: "Netflix", Amount: decimal.NewFromInt(499), Category: "Subscription", Active: true, CreatedAt: time.Now().UTC()},
			{ID: uuid.NewString(), Name: "Gym", Amount: decimal.NewFromInt(1500), Category: "Gym", CreatedAt: time.Now().UTC()},
		},
	}
	require.NoError(t, repo.Save(ctx, userKey, snap))

	got, err := repo.Load(ctx, userKey)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(snap.Balance))
	assert.True(t, got.Expenses["2024"]["0"]["Food"].Equal(decimal.NewFromInt(250)))
	require.Len(t, got.Recurring, 2)
	assert.Equal(t, "Netflix", got.Recurring[0].Name)
	assert.False(t, got.Recurring[1].Active)
}
