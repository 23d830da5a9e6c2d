package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/config"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_IsValid(t *testing.T) {
	assert.True(t, Postgres.IsValid())
	assert.True(t, SQLite.IsValid())
	assert.True(t, Memory.IsValid())
	assert.False(t, Type("sheets").IsValid())
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(&config.Config{StorageBackend: "sqlite", SQLitePath: "x.db"})
	assert.Equal(t, SQLite, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLitePath)
}

func TestOpen_Invalid(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: "sheets"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpen_SQLiteAndMemory(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: Memory}},
		{"sqlite", Config{Type: SQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "budget.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			result, err := Open(ctx, tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			defer result.Cleanup()

			_, err = result.Repository.Load(ctx, "asha@example.com")
			assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

			snapshot := &domain.Snapshot{Balance: decimal.NewFromInt(5), Expenses: domain.ExpenseTree{}}
			require.NoError(t, result.Repository.Save(ctx, "asha@example.com", snapshot))

			loaded, err := result.Repository.Load(ctx, "asha@example.com")
			require.NoError(t, err)
			assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(5)))
		})
	}
}
