package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	ReportTitle    = "BudgetPro"
	ReportSubtitle = "Expense Report"
	XLSXMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetSummary    = "Summary"
	sheetCategories = "Categories"
	sheetCharts     = "Charts"
)

// ReportFileName returns the download name of the workbook for year
func ReportFileName(year int) string {
	return fmt.Sprintf("BudgetPro-Report-%d.xlsx", year)
}

// ExportResult is either an uploaded report URL or the workbook itself
type ExportResult struct {
	FileName    string `json:"fileName"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// ReportService builds and renders the yearly expense report.
// It only reads ledger copies and never mutates state.
type ReportService struct {
	analytics      *AnalyticsService
	storage        storage.ReportRepository
	currencySymbol string
	urlExpiry      time.Duration
	now            func() time.Time
}

// NewReportService creates a new ReportService. storage may be nil, in which
// case exports are returned inline.
func NewReportService(analytics *AnalyticsService, storage storage.ReportRepository, currencySymbol string, urlExpiry time.Duration) *ReportService {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &ReportService{
		analytics:      analytics,
		storage:        storage,
		currencySymbol: currencySymbol,
		urlExpiry:      urlExpiry,
		now:            time.Now,
	}
}

// StorageEnabled reports whether exports are uploaded
func (s *ReportService) StorageEnabled() bool {
	return s != nil && s.storage != nil
}

// BuildReport computes the report content for year from a ledger copy
func (s *ReportService) BuildReport(year int, l *ledger.Ledger) *domain.Report {
	report := &domain.Report{
		Title:          ReportTitle,
		Subtitle:       ReportSubtitle,
		Year:           year,
		GeneratedAt:    s.now().UTC(),
		CurrencySymbol: s.currencySymbol,
		Months:         make([]domain.ReportMonth, 0),
		YearTotal:      ledger.YearTotal(l, year),
		Categories:     ledger.SortedCategoryTotals(l, year),
	}

	for month, total := range ledger.MonthlyTotals(l, year) {
		if total.IsPositive() {
			report.Months = append(report.Months, domain.ReportMonth{
				Month:     month,
				MonthName: domain.MonthNames[month],
				Total:     total,
			})
		}
	}
	return report
}

// Report builds the report for a user
func (s *ReportService) Report(ctx context.Context, userKey string, year int) (*domain.Report, error) {
	if !domain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	l, err := s.analytics.Snapshot(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return s.BuildReport(year, l), nil
}

// WriteText renders the report as plain text tables
func (s *ReportService) WriteText(w io.Writer, report *domain.Report) {
	fmt.Fprintf(w, "%s\n%s\nYear: %d\nGenerated: %s\n\n",
		report.Title, report.Subtitle, report.Year, report.GeneratedAt.Format("2006-01-02"))

	months := table.NewWriter()
	months.SetOutputMirror(w)
	months.SetTitle("Monthly Summary")
	months.AppendHeader(table.Row{"Month", "Total"})
	for _, m := range report.Months {
		months.AppendRow(table.Row{m.MonthName, report.Money(m.Total)})
	}
	months.AppendFooter(table.Row{"Total Year Expense", report.Money(report.YearTotal)})
	months.SetStyle(table.StyleRounded)
	months.Render()

	fmt.Fprintln(w)

	categories := table.NewWriter()
	categories.SetOutputMirror(w)
	categories.SetTitle("Category Breakdown")
	categories.AppendHeader(table.Row{"Category", "Total"})
	for _, c := range report.Categories {
		categories.AppendRow(table.Row{c.Category, report.Money(c.Amount)})
	}
	categories.SetStyle(table.StyleRounded)
	categories.Render()
}

// BuildWorkbook renders the report as an XLSX workbook with an optional
// Charts sheet holding up to four client-supplied chart images
func (s *ReportService) BuildWorkbook(ctx context.Context, report *domain.Report, charts []ChartImage) ([]byte, error) {
	prepared, err := PrepareChartImages(ctx, charts)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := s.writeSummarySheet(f, report); err != nil {
		return nil, err
	}
	if err := s.writeCategoriesSheet(f, report); err != nil {
		return nil, err
	}
	if len(prepared) > 0 {
		if err := writeChartsSheet(f, prepared); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Export builds the workbook for a user. With storage configured the file is
// uploaded and a presigned URL returned; otherwise the bytes are returned.
func (s *ReportService) Export(ctx context.Context, userKey string, year int, charts []ChartImage) (*ExportResult, error) {
	report, err := s.Report(ctx, userKey, year)
	if err != nil {
		return nil, err
	}
	data, err := s.BuildWorkbook(ctx, report, charts)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{FileName: ReportFileName(year), ContentType: XLSXMimeType}
	if !s.StorageEnabled() {
		result.Data = data
		return result, nil
	}

	objectPath := fmt.Sprintf("reports/%d/%s/%s", year, uuid.NewString(), result.FileName)
	key, err := s.storage.Upload(ctx, objectPath, data, XLSXMimeType)
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	if result.URL, err = s.storage.GeneratePresignedURL(ctx, key, s.urlExpiry); err != nil {
		// an object nobody can download is garbage
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("Failed to remove unreachable report")
		}
		return nil, fmt.Errorf("presign report: %w", err)
	}
	return result, nil
}

func (s *ReportService) writeSummarySheet(f *excelize.File, report *domain.Report) error {
	rows := [][]interface{}{
		{report.Title},
		{report.Subtitle},
		{"Year", report.Year},
		{"Generated", report.GeneratedAt.Format("2006-01-02")},
		{},
		{"Monthly Summary", "Total (" + report.CurrencySymbol + ")"},
	}
	for _, m := range report.Months {
		rows = append(rows, []interface{}{m.MonthName, m.Total.Round(2).InexactFloat64()})
	}
	rows = append(rows, []interface{}{"Total Year Expense", report.YearTotal.Round(2).InexactFloat64()})

	if err := writeRows(f, sheetSummary, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "A", 24)
}

func (s *ReportService) writeCategoriesSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(sheetCategories); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	rows := [][]interface{}{{"Category Breakdown", "Total (" + report.CurrencySymbol + ")"}}
	for _, c := range report.Categories {
		rows = append(rows, []interface{}{c.Category, c.Amount.Round(2).InexactFloat64()})
	}
	if err := writeRows(f, sheetCategories, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetCategories, "A", "A", 24)
}

// Charts are stacked vertically, one every chartRowStride rows
const chartRowStride = 30

func writeChartsSheet(f *excelize.File, charts []ChartImage) error {
	if _, err := f.NewSheet(sheetCharts); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	for i, c := range charts {
		cell, err := excelize.CoordinatesToCellName(1, 1+i*chartRowStride)
		if err != nil {
			return err
		}
		err = f.AddPictureFromBytes(sheetCharts, cell, &excelize.Picture{
			Extension: ".png",
			File:      c.Data,
			Format:    &excelize.GraphicOptions{AltText: c.Name},
		})
		if err != nil {
			return fmt.Errorf("embed chart %q: %w", c.Name, err)
		}
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
