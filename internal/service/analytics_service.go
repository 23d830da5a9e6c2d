package service

import (
	"context"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// AnalyticsService exposes the aggregation engine over a user's ledger.
// Every call works on a copy taken under the session lock.
type AnalyticsService struct {
	store  *SessionStore
	charts *ChartService
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(store *SessionStore, charts *ChartService) *AnalyticsService {
	return &AnalyticsService{store: store, charts: charts}
}

// MonthlyTotals returns twelve month totals for year
func (s *AnalyticsService) MonthlyTotals(ctx context.Context, userKey string, year int) ([]decimal.Decimal, error) {
	if !domain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	var out []decimal.Decimal
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		out = ledger.MonthlyTotals(l, year)
		return nil
	})
	return out, err
}

// CategoryTotals returns per-category totals for year
func (s *AnalyticsService) CategoryTotals(ctx context.Context, userKey string, year int) (map[string]decimal.Decimal, error) {
	if !domain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	var out map[string]decimal.Decimal
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		out = ledger.CategoryTotals(l, year)
		return nil
	})
	return out, err
}

// YearlyTotals returns one point per year with data, ascending
func (s *AnalyticsService) YearlyTotals(ctx context.Context, userKey string) ([]domain.YearTotal, error) {
	var out []domain.YearTotal
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		out = ledger.YearlyTotals(l)
		return nil
	})
	return out, err
}

// Charts builds the dashboard charts for year
func (s *AnalyticsService) Charts(ctx context.Context, userKey string, year int) (*domain.ChartSet, error) {
	if !domain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	var out *domain.ChartSet
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		out = s.charts.BuildCharts(year, l)
		return nil
	})
	return out, err
}

// Snapshot returns a private copy of the user's ledger
func (s *AnalyticsService) Snapshot(ctx context.Context, userKey string) (*ledger.Ledger, error) {
	var out *ledger.Ledger
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		out = l
		return nil
	})
	return out, err
}
