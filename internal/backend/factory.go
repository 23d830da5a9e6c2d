package backend

import (
	"context"
	"fmt"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/config"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository/memory"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository/postgres"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Type names a snapshot storage backend
type Type string

const (
	Postgres Type = config.BackendPostgres
	SQLite   Type = config.BackendSQLite
	Memory   Type = config.BackendMemory
)

// IsValid returns true if the backend type is known
func (t Type) IsValid() bool {
	switch t {
	case Postgres, SQLite, Memory:
		return true
	default:
		return false
	}
}

// Config holds what is needed to open a backend
type Config struct {
	Type        Type
	DatabaseURL string
	SQLitePath  string
}

// ConfigFromApp extracts the backend settings from the application config
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Type:        Type(cfg.StorageBackend),
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	}
}

// CleanupFunc releases backend resources
type CleanupFunc func()

// Result is an opened backend and its cleanup
type Result struct {
	Repository domain.SnapshotRepository
	Cleanup    CleanupFunc
}

// Open creates the snapshot repository for cfg.Type, running migrations for
// the SQL backends
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Result, error) {
	logger = logger.With().Str("component", "backend").Str("backend", string(cfg.Type)).Logger()

	switch cfg.Type {
	case Postgres:
		return openPostgres(ctx, cfg, logger)
	case SQLite:
		return openSQLite(cfg, logger)
	case Memory:
		logger.Warn().Msg("Using in-memory snapshot storage; data is lost on restart")
		return &Result{Repository: memory.NewSnapshotRepository(), Cleanup: func() {}}, nil
	default:
		return nil, fmt.Errorf("invalid backend type: %q", cfg.Type)
	}
}

func openPostgres(ctx context.Context, cfg Config, logger zerolog.Logger) (*Result, error) {
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info().Msg("Connected to database")

	return &Result{
		Repository: postgres.NewSnapshotRepository(pool),
		Cleanup:    pool.Close,
	}, nil
}

func openSQLite(cfg Config, logger zerolog.Logger) (*Result, error) {
	repo, err := sqlite.NewSnapshotRepository(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	logger.Info().Str("db_path", cfg.SQLitePath).Msg("Opened SQLite database")

	return &Result{
		Repository: repo,
		Cleanup: func() {
			if err := repo.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close SQLite database")
			}
		},
	}, nil
}
