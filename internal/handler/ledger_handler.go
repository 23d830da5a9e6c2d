package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles balance and expense HTTP requests
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RecordCreditRequest represents the add-to-balance request body
type RecordCreditRequest struct {
	Amount string `json:"amount"`
}

// RecordExpenseRequest represents the record expense request body.
// Month is zero-based (0 = January).
type RecordExpenseRequest struct {
	Year     int    `json:"year"`
	Month    *int   `json:"month"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// BalanceResponse represents the current balance
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// ExpenseResponse is returned after an expense is recorded
type ExpenseResponse struct {
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	CategoryTotal string `json:"categoryTotal"`
	Balance       string `json:"balance"`
	Persisted     bool   `json:"persisted"`
}

// CreditResponse is returned after a credit is recorded
type CreditResponse struct {
	Amount    string `json:"amount"`
	Balance   string `json:"balance"`
	Persisted bool   `json:"persisted"`
}

// CategoryAmountResponse is one category line
type CategoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// MonthSummaryResponse lists a month's categories
type MonthSummaryResponse struct {
	Year       int                      `json:"year"`
	Month      int                      `json:"month"`
	MonthName  string                   `json:"monthName"`
	Categories []CategoryAmountResponse `json:"categories"`
	Total      string                   `json:"total"`
}

// CategoriesResponse lists the categories offered to the user
type CategoriesResponse struct {
	Data []string `json:"data"`
}

// GetBalance godoc
// @Summary Get balance
// @Tags ledger
// @Produce json
// @Success 200 {object} BalanceResponse
// @Router /ledger/balance [get]
func (h *LedgerHandler) GetBalance(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	balance, err := h.ledgerService.Balance(c.Request().Context(), userKey)
	if err != nil {
		return handleServiceError(c, err, userKey, "get balance")
	}
	return c.JSON(http.StatusOK, BalanceResponse{Balance: balance.StringFixed(2)})
}

// RecordCredit godoc
// @Summary Add to balance
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body RecordCreditRequest true "Credit"
// @Success 201 {object} CreditResponse
// @Failure 400 {object} ProblemDetails
// @Router /ledger/credits [post]
func (h *LedgerHandler) RecordCredit(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	var req RecordCreditRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.ledgerService.RecordCredit(c.Request().Context(), userKey, amount)
	if err != nil {
		return handleServiceError(c, err, userKey, "record credit")
	}

	log.Info().Str("user_key", userKey).Str("amount", amount.String()).Msg("Credit recorded")
	return c.JSON(http.StatusCreated, CreditResponse{
		Amount:    result.Amount.StringFixed(2),
		Balance:   result.Balance.StringFixed(2),
		Persisted: result.Persisted,
	})
}

// RecordExpense godoc
// @Summary Record an expense
// @Description Record an expense against a year, zero-based month and category
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body RecordExpenseRequest true "Expense"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Router /ledger/expenses [post]
func (h *LedgerHandler) RecordExpense(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	var req RecordExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Month == nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "month", Message: "Month is required"},
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.ledgerService.RecordExpense(c.Request().Context(), userKey, service.RecordExpenseInput{
		Year:     req.Year,
		Month:    *req.Month,
		Category: req.Category,
		Amount:   amount,
	})
	if err != nil {
		return handleServiceError(c, err, userKey, "record expense")
	}

	log.Info().
		Str("user_key", userKey).
		Int("year", result.Year).
		Int("month", result.Month).
		Str("category", result.Category).
		Msg("Expense recorded")

	return c.JSON(http.StatusCreated, ExpenseResponse{
		Year:          result.Year,
		Month:         result.Month,
		Category:      result.Category,
		Amount:        result.Amount.StringFixed(2),
		CategoryTotal: result.CategoryTotal.StringFixed(2),
		Balance:       result.Balance.StringFixed(2),
		Persisted:     result.Persisted,
	})
}

// GetMonthSummary godoc
// @Summary Get a month's expenses by category
// @Tags ledger
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Zero-based month"
// @Success 200 {object} MonthSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /ledger/expenses/{year}/{month} [get]
func (h *LedgerHandler) GetMonthSummary(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", nil)
	}

	summary, err := h.ledgerService.MonthSummary(c.Request().Context(), userKey, year, month)
	if err != nil {
		return handleServiceError(c, err, userKey, "get month summary")
	}

	response := MonthSummaryResponse{
		Year:       summary.Year,
		Month:      summary.Month,
		MonthName:  summary.MonthName,
		Categories: make([]CategoryAmountResponse, len(summary.Categories)),
		Total:      summary.Total.StringFixed(2),
	}
	for i, cat := range summary.Categories {
		response.Categories[i] = CategoryAmountResponse{Category: cat.Category, Amount: cat.Amount.StringFixed(2)}
	}
	return c.JSON(http.StatusOK, response)
}

// GetCategories godoc
// @Summary List categories
// @Description Default categories followed by any custom categories in use
// @Tags ledger
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Router /ledger/categories [get]
func (h *LedgerHandler) GetCategories(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	categories, err := h.ledgerService.Categories(c.Request().Context(), userKey)
	if err != nil {
		return handleServiceError(c, err, userKey, "get categories")
	}
	return c.JSON(http.StatusOK, CategoriesResponse{Data: categories})
}
