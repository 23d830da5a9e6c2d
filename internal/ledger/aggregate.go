package ledger

import (
	"sort"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthlyTotals returns the expense total of each month of year, January first.
// Months without data are zero.
func MonthlyTotals(l *Ledger, year int) []decimal.Decimal {
	totals := make([]decimal.Decimal, domain.MonthsPerYear)
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for key, amount := range l.buckets {
		if key.Year == year {
			totals[key.Month] = totals[key.Month].Add(amount)
		}
	}
	return totals
}

// CategoryTotals sums each category across all months of year
func CategoryTotals(l *Ledger, year int) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for key, amount := range l.buckets {
		if key.Year == year {
			totals[key.Category] = totals[key.Category].Add(amount)
		}
	}
	return totals
}

// YearlyTotals returns one point per year with data, ascending by year.
// An empty ledger yields an empty slice.
func YearlyTotals(l *Ledger) []domain.YearTotal {
	sums := make(map[int]decimal.Decimal)
	for key, amount := range l.buckets {
		sums[key.Year] = sums[key.Year].Add(amount)
	}

	out := make([]domain.YearTotal, 0, len(sums))
	for year, total := range sums {
		out = append(out, domain.YearTotal{Year: year, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MonthTotal sums all categories of one month
func MonthTotal(l *Ledger, year, month int) decimal.Decimal {
	total := decimal.Zero
	for key, amount := range l.buckets {
		if key.Year == year && key.Month == month {
			total = total.Add(amount)
		}
	}
	return total
}

// YearTotal sums every bucket of year
func YearTotal(l *Ledger, year int) decimal.Decimal {
	total := decimal.Zero
	for key, amount := range l.buckets {
		if key.Year == year {
			total = total.Add(amount)
		}
	}
	return total
}

// SortedCategoryTotals returns the category totals of year ordered by amount
// descending, ties broken by name.
func SortedCategoryTotals(l *Ledger, year int) []domain.CategoryAmount {
	totals := CategoryTotals(l, year)
	out := make([]domain.CategoryAmount, 0, len(totals))
	for c, amt := range totals {
		out = append(out, domain.CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
