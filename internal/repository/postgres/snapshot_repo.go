package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectSnapshotSQL = `SELECT balance, expenses, updated_at FROM ledger_snapshots WHERE user_key = $1`

	selectRecurringSQL = `SELECT id, name, amount, category, active, created_at
FROM recurring_expenses WHERE user_key = $1 ORDER BY position`

	upsertSnapshotSQL = `INSERT INTO ledger_snapshots (user_key, balance, expenses, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_key) DO UPDATE
SET balance = EXCLUDED.balance, expenses = EXCLUDED.expenses, updated_at = EXCLUDED.updated_at`

	deleteRecurringSQL = `DELETE FROM recurring_expenses WHERE user_key = $1`

	insertRecurringSQL = `INSERT INTO recurring_expenses (id, user_key, position, name, amount, category, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// SnapshotRepository implements domain.SnapshotRepository using PostgreSQL
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

var _ domain.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Load reads the snapshot of a user together with its recurring expenses
func (r *SnapshotRepository) Load(ctx context.Context, userKey string) (*domain.Snapshot, error) {
	var (
		balance   pgtype.Numeric
		expenses  []byte
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, selectSnapshotSQL, userKey).Scan(&balance, &expenses, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	tree, err := repository.DecodeExpenses(expenses)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, selectRecurringSQL, userKey)
	if err != nil {
		return nil, fmt.Errorf("load recurring expenses: %w", err)
	}
	defer rows.Close()

	recurring := make([]*domain.RecurringExpense, 0)
	for rows.Next() {
		var (
			entry  domain.RecurringExpense
			amount pgtype.Numeric
		)
		if err := rows.Scan(&entry.ID, &entry.Name, &amount, &entry.Category, &entry.Active, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		entry.Amount = pgNumericToDecimal(amount)
		recurring = append(recurring, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring expenses: %w", err)
	}

	return &domain.Snapshot{
		Balance:   pgNumericToDecimal(balance),
		Expenses:  tree,
		Recurring: recurring,
		UpdatedAt: updatedAt,
	}, nil
}

// Save replaces the stored snapshot of a user in a single transaction
func (r *SnapshotRepository) Save(ctx context.Context, userKey string, snapshot *domain.Snapshot) error {
	balance, err := decimalToPgNumeric(snapshot.Balance)
	if err != nil {
		return fmt.Errorf("convert balance: %w", err)
	}
	expenses, err := repository.EncodeExpenses(snapshot.Expenses)
	if err != nil {
		return err
	}
	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upsertSnapshotSQL, userKey, balance, expenses, updatedAt); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, deleteRecurringSQL, userKey); err != nil {
		return fmt.Errorf("clear recurring expenses: %w", err)
	}

	for i, entry := range snapshot.Recurring {
		amount, err := decimalToPgNumeric(entry.Amount)
		if err != nil {
			return fmt.Errorf("convert recurring amount: %w", err)
		}
		_, err = tx.Exec(ctx, insertRecurringSQL,
			entry.ID, userKey, i, entry.Name, amount, entry.Category, entry.Active, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert recurring expense: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
