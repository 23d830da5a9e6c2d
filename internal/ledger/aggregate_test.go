package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *Ledger {
	t.Helper()
	l := New()
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("100")))
	require.NoError(t, l.RecordExpense(2024, 0, "Transport", d("20.50")))
	require.NoError(t, l.RecordExpense(2024, 2, "Food", d("50")))
	require.NoError(t, l.RecordExpense(2024, 11, "Gift", d("75")))
	require.NoError(t, l.RecordExpense(2022, 5, "Gym", d("30")))
	return l
}

func TestMonthlyTotals(t *testing.T) {
	l := seeded(t)

	totals := MonthlyTotals(l, 2024)
	require.Len(t, totals, 12)
	assert.True(t, totals[0].Equal(d("120.50")))
	assert.True(t, totals[1].IsZero())
	assert.True(t, totals[2].Equal(d("50")))
	assert.True(t, totals[11].Equal(d("75")))

	empty := MonthlyTotals(l, 1999)
	require.Len(t, empty, 12)
	for _, v := range empty {
		assert.True(t, v.IsZero())
	}
}

func TestCategoryTotals(t *testing.T) {
	l := seeded(t)

	totals := CategoryTotals(l, 2024)
	assert.Len(t, totals, 3)
	assert.True(t, totals["Food"].Equal(d("150")))
	assert.True(t, totals["Transport"].Equal(d("20.50")))
	assert.True(t, totals["Gift"].Equal(d("75")))
	assert.NotContains(t, totals, "Gym")

	assert.Empty(t, CategoryTotals(l, 2030))
}

func TestCategoryTotals_SumMatchesMonthlyTotals(t *testing.T) {
	l := seeded(t)

	byCategory := decimal.Zero
	for _, v := range CategoryTotals(l, 2024) {
		byCategory = byCategory.Add(v)
	}
	byMonth := decimal.Zero
	for _, v := range MonthlyTotals(l, 2024) {
		byMonth = byMonth.Add(v)
	}

	assert.True(t, byCategory.Equal(byMonth))
	assert.True(t, YearTotal(l, 2024).Equal(byMonth))
}

func TestYearlyTotals(t *testing.T) {
	l := seeded(t)

	points := YearlyTotals(l)
	require.Len(t, points, 2)
	assert.Equal(t, 2022, points[0].Year)
	assert.True(t, points[0].Total.Equal(d("30")))
	assert.Equal(t, 2024, points[1].Year)
	assert.True(t, points[1].Total.Equal(d("245.50")))
}

func TestYearlyTotals_EmptyLedger(t *testing.T) {
	assert.Empty(t, YearlyTotals(New()))
}

func TestMonthTotal(t *testing.T) {
	l := seeded(t)
	assert.True(t, MonthTotal(l, 2024, 0).Equal(d("120.50")))
	assert.True(t, MonthTotal(l, 2024, 5).IsZero())
}

func TestSortedCategoryTotals(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordExpense(2024, 0, "Misc", d("10")))
	require.NoError(t, l.RecordExpense(2024, 1, "Food", d("40")))
	require.NoError(t, l.RecordExpense(2024, 2, "Gift", d("10")))

	got := SortedCategoryTotals(l, 2024)
	require.Len(t, got, 3)
	assert.Equal(t, "Food", got[0].Category)
	assert.Equal(t, "Gift", got[1].Category)
	assert.Equal(t, "Misc", got[2].Category)
}

func TestMonthlyTotals_ExpenseMovesOnlyItsMonth(t *testing.T) {
	tests := []struct {
		month    int
		category string
		amount   string
	}{
		{0, "Food", "12.34"},
		{1, "Gym", "0.01"},
		{11, "Gift", "75"},
		{2, "Brand New", "999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			l := seeded(t)
			before := MonthlyTotals(l, 2024)

			require.NoError(t, l.RecordExpense(2024, tt.month, tt.category, d(tt.amount)))
			after := MonthlyTotals(l, 2024)

			for m := range after {
				if m == tt.month {
					assert.True(t, after[m].Equal(before[m].Add(d(tt.amount))), "month %d: %s", m, after[m])
					continue
				}
				assert.True(t, after[m].Equal(before[m]), "month %d changed", m)
			}
		})
	}
}

func TestAggregates_RepeatableWithoutMutation(t *testing.T) {
	l := seeded(t)

	assert.Equal(t, MonthlyTotals(l, 2024), MonthlyTotals(l, 2024))
	assert.Equal(t, CategoryTotals(l, 2024), CategoryTotals(l, 2024))
	assert.Equal(t, YearlyTotals(l), YearlyTotals(l))
	assert.Equal(t, SortedCategoryTotals(l, 2024), SortedCategoryTotals(l, 2024))
}
