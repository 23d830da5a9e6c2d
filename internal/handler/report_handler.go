package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// chartFormField is the multipart field carrying chart images
const chartFormField = "charts"

// ReportHandler serves the yearly expense report
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportResponse is the report as ordered lines plus the month and category tables
type ReportResponse struct {
	Year       int                      `json:"year"`
	Lines      []string                 `json:"lines"`
	Months     []CategoryAmountResponse `json:"months"`
	Categories []CategoryAmountResponse `json:"categories"`
	YearTotal  string                   `json:"yearTotal"`
}

// ExportResponse is returned when the workbook was uploaded
type ExportResponse struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

// GetReport godoc
// @Summary Get the yearly report
// @Tags reports
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/{year} [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	report, err := h.reportService.Report(c.Request().Context(), userKey, year)
	if err != nil {
		return handleServiceError(c, err, userKey, "build report")
	}

	response := ReportResponse{
		Year:       report.Year,
		Lines:      report.Lines(),
		Months:     make([]CategoryAmountResponse, len(report.Months)),
		Categories: make([]CategoryAmountResponse, len(report.Categories)),
		YearTotal:  report.YearTotal.StringFixed(2),
	}
	for i, m := range report.Months {
		response.Months[i] = CategoryAmountResponse{Category: m.MonthName, Amount: m.Total.StringFixed(2)}
	}
	for i, cat := range report.Categories {
		response.Categories[i] = CategoryAmountResponse{Category: cat.Category, Amount: cat.Amount.StringFixed(2)}
	}
	return c.JSON(http.StatusOK, response)
}

// GetReportText godoc
// @Summary Get the yearly report as text tables
// @Tags reports
// @Produce plain
// @Param year path int true "Year"
// @Success 200 {string} string
// @Failure 400 {object} ProblemDetails
// @Router /reports/{year}/text [get]
func (h *ReportHandler) GetReportText(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	report, err := h.reportService.Report(c.Request().Context(), userKey, year)
	if err != nil {
		return handleServiceError(c, err, userKey, "build report")
	}

	var buf bytes.Buffer
	h.reportService.WriteText(&buf, report)
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}

// ExportReport godoc
// @Summary Export the yearly report as XLSX
// @Description Up to four chart images may be attached as multipart "charts" files.
// @Description Returns a download URL when report storage is configured, else the workbook.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param year path int true "Year"
// @Param charts formData file false "Chart image (PNG or JPEG)"
// @Success 200 {object} ExportResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/{year}/export [post]
func (h *ReportHandler) ExportReport(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	charts, err := readChartImages(c)
	if err != nil {
		if msg := chartError(err); msg != "" {
			return chartValidationError(c, msg)
		}
		log.Debug().Err(err).Str("user_key", userKey).Msg("Unreadable chart upload")
		return NewValidationError(c, "Invalid multipart body", nil)
	}

	result, err := h.reportService.Export(c.Request().Context(), userKey, year, charts)
	if err != nil {
		if msg := chartError(err); msg != "" {
			return chartValidationError(c, msg)
		}
		return handleServiceError(c, err, userKey, "export report")
	}

	log.Info().
		Str("user_key", userKey).
		Int("year", year).
		Int("charts", len(charts)).
		Bool("uploaded", result.URL != "").
		Msg("Report exported")

	if result.URL != "" {
		return c.JSON(http.StatusOK, ExportResponse{FileName: result.FileName, URL: result.URL})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+result.FileName+`"`)
	return c.Blob(http.StatusOK, result.ContentType, result.Data)
}

func chartValidationError(c echo.Context, msg string) error {
	return NewValidationError(c, "Validation failed", []ValidationError{
		{Field: chartFormField, Message: msg},
	})
}

// readChartImages returns the uploaded chart files, if any
func readChartImages(c echo.Context) ([]service.ChartImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	files := form.File[chartFormField]
	if len(files) > service.MaxChartImages {
		return nil, service.ErrTooManyCharts
	}

	images := make([]service.ChartImage, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(src, service.MaxChartImageSize+1))
		src.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, service.ChartImage{Name: fh.Filename, Data: data})
	}
	return images, nil
}

var chartErrors = []error{
	service.ErrTooManyCharts,
	service.ErrChartTooLarge,
	service.ErrInvalidChartImage,
	service.ErrChartTooSmall,
	service.ErrChartTooManyPixels,
}

// chartError returns the user-facing message for chart validation errors
func chartError(err error) string {
	for _, target := range chartErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return ""
}
