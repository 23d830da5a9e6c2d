// Package ledger holds the expense ledger, the recurring expense registry and
// the pure aggregation functions computed over them.
package ledger

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Ledger tracks the running balance and the accumulated expense buckets of one user.
// A Ledger is not safe for concurrent use; callers serialize access.
type Ledger struct {
	balance decimal.Decimal
	buckets map[domain.ExpenseKey]decimal.Decimal
}

// New returns an empty ledger with a zero balance
func New() *Ledger {
	return &Ledger{
		balance: decimal.Zero,
		buckets: make(map[domain.ExpenseKey]decimal.Decimal),
	}
}

// FromTree rebuilds a ledger from its persisted form
func FromTree(balance decimal.Decimal, tree domain.ExpenseTree) (*Ledger, error) {
	l := New()
	l.balance = balance

	for yearKey, months := range tree {
		year, err := strconv.Atoi(yearKey)
		if err != nil || !domain.ValidYear(year) {
			return nil, fmt.Errorf("year %q: %w", yearKey, domain.ErrMalformedSnapshot)
		}
		for monthKey, categories := range months {
			month, err := strconv.Atoi(monthKey)
			if err != nil || !domain.ValidMonth(month) {
				return nil, fmt.Errorf("month %q of %d: %w", monthKey, year, domain.ErrMalformedSnapshot)
			}
			for rawCategory, amount := range categories {
				category, err := domain.NormalizeCategory(rawCategory)
				if err != nil || amount.IsNegative() {
					return nil, fmt.Errorf("bucket %d/%d/%q: %w", year, month, rawCategory, domain.ErrMalformedSnapshot)
				}
				// " Food" and "Food" share a bucket, as RecordExpense would have done
				key := domain.ExpenseKey{Year: year, Month: month, Category: category}
				l.buckets[key] = l.buckets[key].Add(amount)
			}
		}
	}

	return l, nil
}

// RecordExpense adds amount to the (year, month, category) bucket and subtracts it
// from the balance. Nothing is changed when validation fails.
func (l *Ledger) RecordExpense(year, month int, category string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !domain.ValidMonth(month) {
		return domain.ErrInvalidPeriod
	}
	if !domain.ValidYear(year) {
		return domain.ErrInvalidYear
	}
	category, err := domain.NormalizeCategory(category)
	if err != nil {
		return err
	}

	key := domain.ExpenseKey{Year: year, Month: month, Category: category}
	l.buckets[key] = l.buckets[key].Add(amount)
	l.balance = l.balance.Sub(amount)
	return nil
}

// RecordCredit adds amount to the balance
func (l *Ledger) RecordCredit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	l.balance = l.balance.Add(amount)
	return nil
}

// Balance returns the current balance. It may be negative.
func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

// MonthExpenses returns a copy of the category amounts recorded for one month.
// A month without data yields an empty map; no bucket is created.
func (l *Ledger) MonthExpenses(year, month int) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for key, amount := range l.buckets {
		if key.Year == year && key.Month == month {
			out[key.Category] = amount
		}
	}
	return out
}

// Years returns every year that has at least one bucket, ascending
func (l *Ledger) Years() []int {
	seen := make(map[int]struct{})
	for key := range l.buckets {
		seen[key.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Categories returns the distinct category names used in any bucket, sorted
func (l *Ledger) Categories() []string {
	seen := make(map[string]struct{})
	for key := range l.buckets {
		seen[key.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Tree converts the buckets into the nested persisted form
func (l *Ledger) Tree() domain.ExpenseTree {
	tree := make(domain.ExpenseTree)
	for key, amount := range l.buckets {
		yearKey := strconv.Itoa(key.Year)
		monthKey := strconv.Itoa(key.Month)
		if tree[yearKey] == nil {
			tree[yearKey] = make(map[string]map[string]decimal.Decimal)
		}
		if tree[yearKey][monthKey] == nil {
			tree[yearKey][monthKey] = make(map[string]decimal.Decimal)
		}
		tree[yearKey][monthKey][key.Category] = amount
	}
	return tree
}

// Clone returns a deep copy. Aggregations run on clones so readers never
// observe a half-applied mutation.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		balance: l.balance,
		buckets: make(map[domain.ExpenseKey]decimal.Decimal, len(l.buckets)),
	}
	for k, v := range l.buckets {
		c.buckets[k] = v
	}
	return c
}
