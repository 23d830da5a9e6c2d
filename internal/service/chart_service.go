package service

import (
	"sort"
	"strconv"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// Chart types understood by the frontend
const (
	ChartLine     = "line"
	ChartDoughnut = "doughnut"
	ChartBar      = "bar"
)

// ChartService turns aggregates into chart datasets
type ChartService struct {
	palette []string
	now     func() time.Time
}

// NewChartService creates a new ChartService. Category colours cycle through palette.
func NewChartService(palette []string) *ChartService {
	return &ChartService{palette: palette, now: time.Now}
}

// BuildCharts produces the four dashboard charts for year
func (s *ChartService) BuildCharts(year int, l *ledger.Ledger) *domain.ChartSet {
	monthLabels := domain.ShortMonthNames[:]
	monthly := ledger.MonthlyTotals(l, year)

	return &domain.ChartSet{
		Year: year,
		MonthlyTrend: domain.ChartData{
			ChartType: ChartLine,
			Title:     "Monthly Expense Trend",
			Labels:    monthLabels,
			Datasets:  []domain.ChartDataset{{Label: "Monthly Expenses", Data: monthly}},
		},
		CategoryBreakdown: s.categoryChart(year, l),
		MonthlyTotals: domain.ChartData{
			ChartType: ChartBar,
			Title:     "Monthly Totals",
			Labels:    monthLabels,
			Datasets:  []domain.ChartDataset{{Label: "Total", Data: monthly}},
		},
		YearlyTrend: s.yearlyChart(l),
	}
}

func (s *ChartService) categoryChart(year int, l *ledger.Ledger) domain.ChartData {
	totals := ledger.CategoryTotals(l, year)
	labels := make([]string, 0, len(totals))
	for c := range totals {
		labels = append(labels, c)
	}
	sort.Strings(labels)

	data := make([]decimal.Decimal, len(labels))
	colors := make([]string, len(labels))
	for i, c := range labels {
		data[i] = totals[c]
		if len(s.palette) > 0 {
			colors[i] = s.palette[i%len(s.palette)]
		}
	}

	return domain.ChartData{
		ChartType: ChartDoughnut,
		Title:     "Category Breakdown",
		Labels:    labels,
		Datasets:  []domain.ChartDataset{{Label: "Expenses", Data: data, Colors: colors}},
	}
}

// yearlyChart plots YearlyTotals. An empty ledger is drawn as a single zero
// point for the current year so the chart never renders blank.
func (s *ChartService) yearlyChart(l *ledger.Ledger) domain.ChartData {
	points := ledger.YearlyTotals(l)
	if len(points) == 0 {
		points = []domain.YearTotal{{Year: s.now().Year(), Total: decimal.Zero}}
	}

	labels := make([]string, len(points))
	data := make([]decimal.Decimal, len(points))
	for i, p := range points {
		labels[i] = strconv.Itoa(p.Year)
		data[i] = p.Total
	}

	return domain.ChartData{
		ChartType: ChartLine,
		Title:     "Yearly Expense Trend",
		Labels:    labels,
		Datasets:  []domain.ChartDataset{{Label: "Yearly Expenses", Data: data}},
	}
}
