package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// YearTotal is one point of the yearly total series
type YearTotal struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

// CategoryAmount is a category with its accumulated amount
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthSummary lists the categories recorded in one month with their total
type MonthSummary struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	MonthName  string           `json:"monthName"`
	Categories []CategoryAmount `json:"categories"`
	Total      decimal.Decimal  `json:"total"`
}

// ChartDataset is a single series of a chart
type ChartDataset struct {
	Label  string            `json:"label"`
	Data   []decimal.Decimal `json:"data"`
	Colors []string          `json:"colors,omitempty"`
}

// ChartData is a renderable chart: labels plus one or more datasets
type ChartData struct {
	ChartType string         `json:"chartType"`
	Title     string         `json:"title"`
	Labels    []string       `json:"labels"`
	Datasets  []ChartDataset `json:"datasets"`
}

// ChartSet holds the four dashboard charts for a year
type ChartSet struct {
	Year              int       `json:"year"`
	MonthlyTrend      ChartData `json:"monthlyTrend"`
	CategoryBreakdown ChartData `json:"categoryBreakdown"`
	MonthlyTotals     ChartData `json:"monthlyTotals"`
	YearlyTrend       ChartData `json:"yearlyTrend"`
}

// ReportMonth is a month line of the expense report
type ReportMonth struct {
	Month     int             `json:"month"`
	MonthName string          `json:"monthName"`
	Total     decimal.Decimal `json:"total"`
}

// Report is the presentation-neutral content of the yearly expense report
type Report struct {
	Title          string           `json:"title"`
	Subtitle       string           `json:"subtitle"`
	Year           int              `json:"year"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	CurrencySymbol string           `json:"currencySymbol"`
	Months         []ReportMonth    `json:"months"`
	YearTotal      decimal.Decimal  `json:"yearTotal"`
	Categories     []CategoryAmount `json:"categories"`
}

// Money formats an amount with the report currency symbol and two decimals
func (r *Report) Money(d decimal.Decimal) string {
	return r.CurrencySymbol + d.StringFixed(2)
}

// Lines renders the report as ordered text lines
func (r *Report) Lines() []string {
	lines := []string{
		r.Title,
		r.Subtitle,
		fmt.Sprintf("Year: %d", r.Year),
		"Generated: " + r.GeneratedAt.Format("2006-01-02"),
		"Monthly Summary",
	}
	for _, m := range r.Months {
		lines = append(lines, fmt.Sprintf("%s: %s", m.MonthName, r.Money(m.Total)))
	}
	lines = append(lines, "Total Year Expense: "+r.Money(r.YearTotal), "Category Breakdown")
	for _, c := range r.Categories {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Category, r.Money(c.Amount)))
	}
	return lines
}
