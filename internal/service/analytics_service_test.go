package service

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAnalytics(t *testing.T) (*AnalyticsService, *LedgerService) {
	t.Helper()
	store, _, _ := setupSessionStore()
	charts := NewChartService([]string{"#111111", "#222222"})
	return NewAnalyticsService(store, charts), NewLedgerService(store, "₹", nil)
}

func TestAnalytics_Totals(t *testing.T) {
	analytics, ledgerSvc := setupAnalytics(t)
	ctx := context.Background()

	for _, in := range []RecordExpenseInput{
		{Year: 2023, Month: 11, Category: "Gift", Amount: dec("20")},
		{Year: 2024, Month: 0, Category: "Food", Amount: dec("250")},
		{Year: 2024, Month: 0, Category: "Food", Amount: dec("50")},
		{Year: 2024, Month: 5, Category: "Gym", Amount: dec("10")},
	} {
		_, err := ledgerSvc.RecordExpense(ctx, testUser, in)
		require.NoError(t, err)
	}

	monthly, err := analytics.MonthlyTotals(ctx, testUser, 2024)
	require.NoError(t, err)
	require.Len(t, monthly, 12)
	assert.True(t, monthly[0].Equal(dec("300")))
	assert.True(t, monthly[5].Equal(dec("10")))

	categories, err := analytics.CategoryTotals(ctx, testUser, 2024)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	yearly, err := analytics.YearlyTotals(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, yearly, 2)
	assert.Equal(t, 2023, yearly[0].Year)
	assert.True(t, yearly[1].Total.Equal(dec("310")))

	_, err = analytics.MonthlyTotals(ctx, testUser, 3000)
	assert.ErrorIs(t, err, domain.ErrInvalidYear)
}

func TestChartService_BuildCharts(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.RecordExpense(2024, 0, "Food", dec("100")))
	require.NoError(t, l.RecordExpense(2024, 1, "Clothes", dec("30")))
	require.NoError(t, l.RecordExpense(2024, 1, "Misc", dec("5")))

	svc := NewChartService([]string{"#aa0000", "#00aa00"})
	charts := svc.BuildCharts(2024, l)

	assert.Equal(t, ChartLine, charts.MonthlyTrend.ChartType)
	assert.Len(t, charts.MonthlyTrend.Labels, 12)
	assert.Equal(t, "Jan", charts.MonthlyTrend.Labels[0])
	assert.True(t, charts.MonthlyTotals.Datasets[0].Data[1].Equal(dec("35")))

	breakdown := charts.CategoryBreakdown
	assert.Equal(t, ChartDoughnut, breakdown.ChartType)
	assert.Equal(t, []string{"Clothes", "Food", "Misc"}, breakdown.Labels)
	// Palette cycles
	assert.Equal(t, []string{"#aa0000", "#00aa00", "#aa0000"}, breakdown.Datasets[0].Colors)

	assert.Equal(t, []string{"2024"}, charts.YearlyTrend.Labels)
}

func TestChartService_YearlyFallback(t *testing.T) {
	svc := NewChartService(nil)
	svc.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }

	charts := svc.BuildCharts(2026, ledger.New())

	assert.Equal(t, []string{"2026"}, charts.YearlyTrend.Labels)
	require.Len(t, charts.YearlyTrend.Datasets[0].Data, 1)
	assert.True(t, charts.YearlyTrend.Datasets[0].Data[0].IsZero())
	assert.Empty(t, charts.CategoryBreakdown.Labels)
}

func TestAnalytics_Charts(t *testing.T) {
	analytics, ledgerSvc := setupAnalytics(t)
	ctx := context.Background()

	_, err := ledgerSvc.RecordExpense(ctx, testUser, RecordExpenseInput{Year: 2024, Month: 3, Category: "Food", Amount: dec("12")})
	require.NoError(t, err)

	charts, err := analytics.Charts(ctx, testUser, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, charts.Year)
	assert.Equal(t, []string{"Food"}, charts.CategoryBreakdown.Labels)
}
