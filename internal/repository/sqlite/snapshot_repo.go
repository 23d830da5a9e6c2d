// Package sqlite stores ledger snapshots in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const (
	selectSnapshotSQL = `SELECT balance, expenses, updated_at FROM ledger_snapshots WHERE user_key = ?`

	selectRecurringSQL = `SELECT id, name, amount, category, active, created_at
FROM recurring_expenses WHERE user_key = ? ORDER BY position`

	upsertSnapshotSQL = `INSERT INTO ledger_snapshots (user_key, balance, expenses, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_key) DO UPDATE
SET balance = excluded.balance, expenses = excluded.expenses, updated_at = excluded.updated_at`

	deleteRecurringSQL = `DELETE FROM recurring_expenses WHERE user_key = ?`

	insertRecurringSQL = `INSERT INTO recurring_expenses (id, user_key, position, name, amount, category, active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
)

// SnapshotRepository implements domain.SnapshotRepository on SQLite.
// Decimals and timestamps are stored as text to stay lossless.
type SnapshotRepository struct {
	db *sql.DB
}

var _ domain.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository opens (creating if needed) the database at dbPath and migrates it
func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite locks the whole file anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

// Close closes the database
func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the snapshot of a user together with its recurring expenses
func (r *SnapshotRepository) Load(ctx context.Context, userKey string) (*domain.Snapshot, error) {
	var balance, expenses, updatedAt string
	err := r.db.QueryRowContext(ctx, selectSnapshotSQL, userKey).Scan(&balance, &expenses, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &domain.Snapshot{Recurring: make([]*domain.RecurringExpense, 0)}
	if snap.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("balance %q: %w", balance, domain.ErrMalformedSnapshot)
	}
	if snap.Expenses, err = repository.DecodeExpenses([]byte(expenses)); err != nil {
		return nil, err
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("updated_at %q: %w", updatedAt, domain.ErrMalformedSnapshot)
	}

	rows, err := r.db.QueryContext(ctx, selectRecurringSQL, userKey)
	if err != nil {
		return nil, fmt.Errorf("load recurring expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry     domain.RecurringExpense
			amount    string
			active    int64
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.Name, &amount, &entry.Category, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		if entry.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("recurring amount %q: %w", amount, domain.ErrMalformedSnapshot)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("recurring created_at %q: %w", createdAt, domain.ErrMalformedSnapshot)
		}
		entry.Active = active != 0
		snap.Recurring = append(snap.Recurring, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring expenses: %w", err)
	}

	return snap, nil
}

// Save replaces the stored snapshot of a user in a single transaction
func (r *SnapshotRepository) Save(ctx context.Context, userKey string, snapshot *domain.Snapshot) error {
	expenses, err := repository.EncodeExpenses(snapshot.Expenses)
	if err != nil {
		return err
	}
	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, upsertSnapshotSQL,
		userKey, snapshot.Balance.String(), string(expenses), updatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteRecurringSQL, userKey); err != nil {
		return fmt.Errorf("clear recurring expenses: %w", err)
	}

	for i, entry := range snapshot.Recurring {
		active := 0
		if entry.Active {
			active = 1
		}
		_, err := tx.ExecContext(ctx, insertRecurringSQL,
			entry.ID, userKey, i, entry.Name, entry.Amount.String(), entry.Category, active,
			entry.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert recurring expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
