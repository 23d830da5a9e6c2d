package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/backend"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/config"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/rs/zerolog"
)

// Output formats
const (
	formatText = "text"
	formatXLSX = "xlsx"
)

type Params struct {
	User        string `descr:"User email or nickname" positional:"true"`
	Year        int    `descr:"Report year (defaults to the current year)" optional:"true"`
	Backend     string `descr:"Snapshot storage backend" alts:"postgres,sqlite,memory" strict:"true" default:"sqlite"`
	DatabaseURL string `descr:"Postgres connection URL" env:"DATABASE_URL" optional:"true"`
	SQLitePath  string `descr:"SQLite database file" default:"data/budgetpro.db"`
	Format      string `descr:"Output format" alts:"text,xlsx" strict:"true" default:"text"`
	Out         string `descr:"Output file, stdout when empty (required for xlsx)" optional:"true"`
	Catalog     string `descr:"YAML categories file providing the currency symbol" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("report").
		WithShort("Print a user's yearly expense report").
		WithLong("Loads a user's saved ledger from the snapshot store and renders the yearly expense report as text tables or an XLSX workbook.").
		WithRunFunc(func(params *Params) {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
			if err := run(context.Background(), params, os.Stdout, logger); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(ctx context.Context, params *Params, stdout io.Writer, logger zerolog.Logger) error {
	userKey, err := domain.ParseIdentity(params.User).UserKey()
	if err != nil {
		return err
	}
	year := params.Year
	if year == 0 {
		year = time.Now().Year()
	}
	if params.Format == formatXLSX && params.Out == "" {
		return errors.New("--out is required for xlsx output")
	}

	catalog := config.DefaultCatalog()
	if params.Catalog != "" {
		if catalog, err = config.LoadCatalog(params.Catalog); err != nil {
			return err
		}
	}

	opened, err := backend.Open(ctx, backend.Config{
		Type:        backend.Type(params.Backend),
		DatabaseURL: params.DatabaseURL,
		SQLitePath:  params.SQLitePath,
	}, logger)
	if err != nil {
		return err
	}
	defer opened.Cleanup()

	l, err := loadLedger(ctx, opened.Repository, userKey)
	if err != nil {
		return err
	}

	reports := service.NewReportService(nil, nil, catalog.CurrencySymbol, 0)
	report := reports.BuildReport(year, l)

	switch params.Format {
	case formatXLSX:
		data, err := reports.BuildWorkbook(ctx, report, nil)
		if err != nil {
			return err
		}
		if err := os.WriteFile(params.Out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", params.Out, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", params.Out)
		return nil
	default:
		if params.Out == "" {
			reports.WriteText(stdout, report)
			return nil
		}
		f, err := os.Create(params.Out)
		if err != nil {
			return err
		}
		reports.WriteText(f, report)
		return f.Close()
	}
}

// loadLedger restores the user's ledger; a missing snapshot is an error here
// since there is nothing to report on
func loadLedger(ctx context.Context, repo domain.SnapshotRepository, userKey string) (*ledger.Ledger, error) {
	snapshot, err := repo.Load(ctx, userKey)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("no saved data for %s", userKey)
		}
		return nil, err
	}
	return ledger.FromTree(snapshot.Balance, snapshot.Expenses)
}
