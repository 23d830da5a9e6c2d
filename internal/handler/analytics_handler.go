package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler serves aggregates and chart data
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// MonthlyTotalsResponse has twelve totals, January first
type MonthlyTotalsResponse struct {
	Year   int      `json:"year"`
	Totals []string `json:"totals"`
}

// CategoryTotalsResponse maps category to its yearly total
type CategoryTotalsResponse struct {
	Year   int               `json:"year"`
	Totals map[string]string `json:"totals"`
}

// YearTotalResponse is one year of the yearly series
type YearTotalResponse struct {
	Year  int    `json:"year"`
	Total string `json:"total"`
}

// YearlyTotalsResponse lists yearly totals in ascending year order
type YearlyTotalsResponse struct {
	Data []YearTotalResponse `json:"data"`
}

// ChartDatasetResponse is one chart series with values as 2dp strings
type ChartDatasetResponse struct {
	Label  string   `json:"label"`
	Data   []string `json:"data"`
	Colors []string `json:"colors,omitempty"`
}

// ChartDataResponse is a renderable chart
type ChartDataResponse struct {
	ChartType string                 `json:"chartType"`
	Title     string                 `json:"title"`
	Labels    []string               `json:"labels"`
	Datasets  []ChartDatasetResponse `json:"datasets"`
}

// ChartSetResponse holds the four dashboard charts for a year
type ChartSetResponse struct {
	Year              int               `json:"year"`
	MonthlyTrend      ChartDataResponse `json:"monthlyTrend"`
	CategoryBreakdown ChartDataResponse `json:"categoryBreakdown"`
	MonthlyTotals     ChartDataResponse `json:"monthlyTotals"`
	YearlyTrend       ChartDataResponse `json:"yearlyTrend"`
}

func toChartDataResponse(chart domain.ChartData) ChartDataResponse {
	datasets := make([]ChartDatasetResponse, 0, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		values := make([]string, len(ds.Data))
		for i, v := range ds.Data {
			values[i] = v.StringFixed(2)
		}
		datasets = append(datasets, ChartDatasetResponse{Label: ds.Label, Data: values, Colors: ds.Colors})
	}
	return ChartDataResponse{
		ChartType: chart.ChartType,
		Title:     chart.Title,
		Labels:    chart.Labels,
		Datasets:  datasets,
	}
}

func toChartSetResponse(charts *domain.ChartSet) ChartSetResponse {
	return ChartSetResponse{
		Year:              charts.Year,
		MonthlyTrend:      toChartDataResponse(charts.MonthlyTrend),
		CategoryBreakdown: toChartDataResponse(charts.CategoryBreakdown),
		MonthlyTotals:     toChartDataResponse(charts.MonthlyTotals),
		YearlyTrend:       toChartDataResponse(charts.YearlyTrend),
	}
}

// GetMonthlyTotals godoc
// @Summary Monthly totals for a year
// @Tags analytics
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} MonthlyTotalsResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/{year}/monthly [get]
func (h *AnalyticsHandler) GetMonthlyTotals(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	totals, err := h.analyticsService.MonthlyTotals(c.Request().Context(), userKey, year)
	if err != nil {
		return handleServiceError(c, err, userKey, "get monthly totals")
	}

	response := MonthlyTotalsResponse{Year: year, Totals: make([]string, len(totals))}
	for i, total := range totals {
		response.Totals[i] = total.StringFixed(2)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCategoryTotals godoc
// @Summary Category totals for a year
// @Tags analytics
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} CategoryTotalsResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/{year}/categories [get]
func (h *AnalyticsHandler) GetCategoryTotals(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	totals, err := h.analyticsService.CategoryTotals(c.Request().Context(), userKey, year)
	if err != nil {
		return handleServiceError(c, err, userKey, "get category totals")
	}

	response := CategoryTotalsResponse{Year: year, Totals: make(map[string]string, len(totals))}
	for category, total := range totals {
		response.Totals[category] = total.StringFixed(2)
	}
	return c.JSON(http.StatusOK, response)
}

// GetYearlyTotals godoc
// @Summary Totals per year
// @Tags analytics
// @Produce json
// @Success 200 {object} YearlyTotalsResponse
// @Router /analytics/yearly [get]
func (h *AnalyticsHandler) GetYearlyTotals(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	totals, err := h.analyticsService.YearlyTotals(c.Request().Context(), userKey)
	if err != nil {
		return handleServiceError(c, err, userKey, "get yearly totals")
	}

	response := YearlyTotalsResponse{Data: make([]YearTotalResponse, len(totals))}
	for i, yt := range totals {
		response.Data[i] = YearTotalResponse{Year: yt.Year, Total: yt.Total.StringFixed(2)}
	}
	return c.JSON(http.StatusOK, response)
}

// GetCharts godoc
// @Summary Dashboard charts for a year
// @Tags analytics
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} ChartSetResponse
// @Failure 400 {object} ProblemDetails
// @Router /charts/{year} [get]
func (h *AnalyticsHandler) GetCharts(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	charts, err := h.analyticsService.Charts(c.Request().Context(), userKey, year)
	if err != nil {
		return handleServiceError(c, err, userKey, "get charts")
	}
	return c.JSON(http.StatusOK, toChartSetResponse(charts))
}
