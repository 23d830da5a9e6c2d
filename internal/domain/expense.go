package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MonthsPerYear is the number of month buckets per year. Months are zero-based (0 = January).
const MonthsPerYear = 12

// DefaultRecurringCategory is used when a recurring expense is created without a category
const DefaultRecurringCategory = "Subscription"

// DefaultCategories is the built-in category list offered to users.
// Categories are an open set; users may record expenses under any non-empty name.
var DefaultCategories = []string{
	"Clothes", "Food", "Haircare", "Skincare", "Transport",
	"Games", "Gold", "R Deposit", "Gift", "Misc", "Gym", "Badminton",
}

// MonthNames holds full month names indexed by zero-based month
var MonthNames = [MonthsPerYear]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ShortMonthNames holds chart labels indexed by zero-based month
var ShortMonthNames = [MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ExpenseKey identifies a single expense bucket
type ExpenseKey struct {
	Year     int
	Month    int
	Category string
}

// ExpenseTree is the nested wire layout of the expense buckets:
// year -> month -> category -> accumulated amount, all keys as strings.
type ExpenseTree map[string]map[string]map[string]decimal.Decimal

// ValidMonth reports whether month is a zero-based month index
func ValidMonth(month int) bool {
	return month >= 0 && month < MonthsPerYear
}

// ValidYear reports whether year is within the supported range
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// NormalizeCategory trims a category name and validates it
func NormalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", ErrEmptyCategory
	}
	if len(category) > MaxCategoryLength {
		return "", ErrCategoryTooLong
	}
	return category, nil
}
