package ledger

import (
	"testing"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRecordExpense_CreditThenExpense(t *testing.T) {
	l := New()

	require.NoError(t, l.RecordCredit(d("1000")))
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("250")))

	assert.True(t, l.Balance().Equal(d("750")))
	month := l.MonthExpenses(2024, 0)
	require.Len(t, month, 1)
	assert.True(t, month["Food"].Equal(d("250")))

	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("50")))
	assert.True(t, l.MonthExpenses(2024, 0)["Food"].Equal(d("300")))
	assert.True(t, MonthlyTotals(l, 2024)[0].Equal(d("300")))
	assert.True(t, l.Balance().Equal(d("700")))
}

func TestRecordExpense_Validation(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    int
		category string
		amount   string
		wantErr  error
	}{
		{"month too large", 2024, 12, "Food", "10", domain.ErrInvalidPeriod},
		{"negative month", 2024, -1, "Food", "10", domain.ErrInvalidPeriod},
		{"negative amount", 2024, 0, "Food", "-5", domain.ErrInvalidAmount},
		{"zero amount", 2024, 0, "Food", "0", domain.ErrInvalidAmount},
		{"blank category", 2024, 0, "   ", "10", domain.ErrEmptyCategory},
		{"year out of range", 1800, 0, "Food", "10", domain.ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			require.NoError(t, l.RecordCredit(d("100")))

			err := l.RecordExpense(tt.year, tt.month, tt.category, d(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)

			// Failed validation leaves state untouched
			assert.True(t, l.Balance().Equal(d("100")))
			assert.Empty(t, l.Years())
		})
	}
}

func TestRecordExpense_AmountCheckedBeforePeriod(t *testing.T) {
	l := New()
	err := l.RecordExpense(2024, 13, "Food", d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRecordExpense_TrimsCategory(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordExpense(2024, 3, "  Gym ", d("12.50")))

	month := l.MonthExpenses(2024, 3)
	assert.Contains(t, month, "Gym")
}

func TestRecordCredit_RejectsNonPositive(t *testing.T) {
	l := New()
	assert.ErrorIs(t, l.RecordCredit(d("0")), domain.ErrInvalidAmount)
	assert.ErrorIs(t, l.RecordCredit(d("-3")), domain.ErrInvalidAmount)
	assert.True(t, l.Balance().IsZero())
}

func TestBalance_CanGoNegative(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordExpense(2024, 1, "Misc", d("20")))
	assert.True(t, l.Balance().Equal(d("-20")))
}

func TestBalance_Invariant(t *testing.T) {
	l := New()
	credits := []string{"100", "0.10", "0.20", "999.99"}
	expenses := []struct {
		year, month int
		category    string
		amount      string
	}{
		{2023, 11, "Food", "0.30"},
		{2024, 0, "Food", "45.10"},
		{2024, 0, "Gift", "12"},
		{2024, 6, "Transport", "7.77"},
	}

	want := decimal.Zero
	for _, c := range credits {
		require.NoError(t, l.RecordCredit(d(c)))
		want = want.Add(d(c))
	}
	for _, e := range expenses {
		require.NoError(t, l.RecordExpense(e.year, e.month, e.category, d(e.amount)))
		want = want.Sub(d(e.amount))
	}

	assert.True(t, l.Balance().Equal(want), "balance %s, want %s", l.Balance(), want)
}

func TestMonthExpenses_AbsentMonthDoesNotCreate(t *testing.T) {
	l := New()
	month := l.MonthExpenses(2024, 5)
	assert.Empty(t, month)
	assert.Empty(t, l.Years())
	assert.Empty(t, l.Tree())
}

func TestMonthExpenses_ReturnsCopy(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("10")))

	month := l.MonthExpenses(2024, 0)
	month["Food"] = d("999")
	month["Other"] = d("1")

	again := l.MonthExpenses(2024, 0)
	assert.True(t, again["Food"].Equal(d("10")))
	assert.NotContains(t, again, "Other")
}

func TestTree_RoundTrip(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordCredit(d("500")))
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("250")))
	require.NoError(t, l.RecordExpense(2024, 11, "Gift", d("40")))
	require.NoError(t, l.RecordExpense(2025, 2, "Gym", d("30")))

	tree := l.Tree()
	assert.True(t, tree["2024"]["0"]["Food"].Equal(d("250")))
	assert.True(t, tree["2024"]["11"]["Gift"].Equal(d("40")))
	assert.True(t, tree["2025"]["2"]["Gym"].Equal(d("30")))

	restored, err := FromTree(l.Balance(), tree)
	require.NoError(t, err)
	assert.True(t, restored.Balance().Equal(l.Balance()))
	assert.Equal(t, l.Years(), restored.Years())
	assert.True(t, restored.MonthExpenses(2024, 11)["Gift"].Equal(d("40")))
}

func TestFromTree_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tree domain.ExpenseTree
	}{
		{"non numeric year", domain.ExpenseTree{"abc": {"0": {"Food": d("1")}}}},
		{"month out of range", domain.ExpenseTree{"2024": {"12": {"Food": d("1")}}}},
		{"negative amount", domain.ExpenseTree{"2024": {"0": {"Food": d("-1")}}}},
		{"empty category", domain.ExpenseTree{"2024": {"0": {"": d("1")}}}},
		{"blank category", domain.ExpenseTree{"2024": {"0": {"   ": d("1")}}}},
		{"year before range", domain.ExpenseTree{"1969": {"0": {"Food": d("1")}}}},
		{"year after range", domain.ExpenseTree{"2101": {"0": {"Food": d("1")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTree(decimal.Zero, tt.tree)
			assert.ErrorIs(t, err, domain.ErrMalformedSnapshot)
		})
	}
}

func TestFromTree_TrimsCategories(t *testing.T) {
	tree := domain.ExpenseTree{"2024": {"0": {
		"Food":   d("10"),
		" Food ": d("2.5"),
	}}}

	l, err := FromTree(decimal.Zero, tree)
	require.NoError(t, err)

	month := l.MonthExpenses(2024, 0)
	assert.Len(t, month, 1)
	assert.True(t, month["Food"].Equal(d("12.5")))
}

func TestClone_IsIndependent(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("10")))

	c := l.Clone()
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("5")))

	assert.True(t, c.MonthExpenses(2024, 0)["Food"].Equal(d("10")))
	assert.True(t, c.Balance().Equal(d("-10")))
}

func TestCategories(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordExpense(2024, 0, "Food", d("10")))
	require.NoError(t, l.RecordExpense(2023, 4, "Clothes", d("10")))
	require.NoError(t, l.RecordExpense(2024, 1, "Food", d("10")))

	assert.Equal(t, []string{"Clothes", "Food"}, l.Categories())
}
