package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecurringHandler handles recurring expense HTTP requests
type RecurringHandler struct {
	recurringService *service.RecurringService
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(recurringService *service.RecurringService) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
	}
}

// CreateRecurringRequest represents the create recurring expense request body
type CreateRecurringRequest struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category,omitempty"` // defaults to Subscription
}

// RecurringResponse represents a recurring expense in API responses
type RecurringResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Category  string `json:"category"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
	Persisted *bool  `json:"persisted,omitempty"`
}

// RecurringListResponse represents the list response
type RecurringListResponse struct {
	Data []RecurringResponse `json:"data"`
}

// DeleteRecurringResponse is returned after a delete
type DeleteRecurringResponse struct {
	Persisted bool `json:"persisted"`
}

// CreateRecurring godoc
// @Summary Create a recurring expense
// @Description Recurring expenses are tracked for reference and never change the balance
// @Tags recurring
// @Accept json
// @Produce json
// @Param request body CreateRecurringRequest true "Recurring expense"
// @Success 201 {object} RecurringResponse
// @Failure 400 {object} ProblemDetails
// @Router /recurring [post]
func (h *RecurringHandler) CreateRecurring(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	var req CreateRecurringRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.recurringService.CreateRecurring(c.Request().Context(), userKey, service.CreateRecurringInput{
		Name:     req.Name,
		Amount:   amount,
		Category: req.Category,
	})
	if err != nil {
		return handleServiceError(c, err, userKey, "create recurring expense")
	}

	log.Info().Str("user_key", userKey).Str("recurring_id", result.Recurring.ID).Str("name", result.Recurring.Name).Msg("Recurring expense created")

	response := toRecurringResponse(result.Recurring)
	response.Persisted = &result.Persisted
	return c.JSON(http.StatusCreated, response)
}

// ListRecurring godoc
// @Summary List recurring expenses
// @Tags recurring
// @Produce json
// @Success 200 {object} RecurringListResponse
// @Router /recurring [get]
func (h *RecurringHandler) ListRecurring(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	entries, err := h.recurringService.ListRecurring(c.Request().Context(), userKey)
	if err != nil {
		return handleServiceError(c, err, userKey, "list recurring expenses")
	}

	response := make([]RecurringResponse, len(entries))
	for i, entry := range entries {
		response[i] = toRecurringResponse(entry)
	}
	return c.JSON(http.StatusOK, RecurringListResponse{Data: response})
}

// ToggleRecurring godoc
// @Summary Toggle a recurring expense
// @Tags recurring
// @Produce json
// @Param id path string true "Recurring expense ID"
// @Success 200 {object} RecurringResponse
// @Failure 404 {object} ProblemDetails
// @Router /recurring/{id}/toggle [patch]
func (h *RecurringHandler) ToggleRecurring(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	id := c.Param("id")

	result, err := h.recurringService.ToggleRecurring(c.Request().Context(), userKey, id)
	if err != nil {
		return handleServiceError(c, err, userKey, "toggle recurring expense")
	}

	statusText := "deactivated"
	if result.Recurring.Active {
		statusText = "activated"
	}
	log.Info().Str("user_key", userKey).Str("recurring_id", id).Str("status", statusText).Msg("Recurring expense toggled")

	response := toRecurringResponse(result.Recurring)
	response.Persisted = &result.Persisted
	return c.JSON(http.StatusOK, response)
}

// DeleteRecurring godoc
// @Summary Delete a recurring expense
// @Tags recurring
// @Produce json
// @Param id path string true "Recurring expense ID"
// @Success 200 {object} DeleteRecurringResponse
// @Failure 404 {object} ProblemDetails
// @Router /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c echo.Context) error {
	userKey := middleware.GetUserKey(c)
	id := c.Param("id")

	persisted, err := h.recurringService.DeleteRecurring(c.Request().Context(), userKey, id)
	if err != nil {
		return handleServiceError(c, err, userKey, "delete recurring expense")
	}

	log.Info().Str("user_key", userKey).Str("recurring_id", id).Msg("Recurring expense deleted")
	return c.JSON(http.StatusOK, DeleteRecurringResponse{Persisted: persisted})
}

func toRecurringResponse(r *domain.RecurringExpense) RecurringResponse {
	return RecurringResponse{
		ID:        r.ID,
		Name:      r.Name,
		Amount:    r.Amount.StringFixed(2),
		Category:  r.Category,
		Active:    r.Active,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
