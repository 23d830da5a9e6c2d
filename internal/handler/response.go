package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://budgetpro.app/errors/validation"
	ErrorTypeNotFound           = "https://budgetpro.app/errors/not-found"
	ErrorTypeUnauthorized       = "https://budgetpro.app/errors/unauthorized"
	ErrorTypeInternal           = "https://budgetpro.app/errors/internal"
	ErrorTypeServiceUnavailable = "https://budgetpro.app/errors/service-unavailable"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeServiceUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps domain validation errors to the offending request field
var fieldErrors = []struct {
	err     error
	field   string
	message string
}{
	{domain.ErrInvalidAmount, "amount", "Amount must be positive"},
	{domain.ErrInvalidPeriod, "month", "Month must be between 0 and 11"},
	{domain.ErrInvalidYear, "year", "Year must be between 1970 and 2100"},
	{domain.ErrEmptyCategory, "category", "Category is required"},
	{domain.ErrCategoryTooLong, "category", "Category must be 100 characters or less"},
	{domain.ErrNameRequired, "name", "Name is required"},
	{domain.ErrNameTooLong, "name", "Name must be 255 characters or less"},
	{domain.ErrInvalidIdentity, "identity", "Email or nickname is required"},
}

// handleServiceError maps service errors to Problem Details responses
func handleServiceError(c echo.Context, err error, userKey, operation string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: fe.field, Message: fe.message},
			})
		}
	}
	if errors.Is(err, domain.ErrRecurringNotFound) {
		return NewNotFoundError(c, "Recurring expense not found")
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		return NewNotFoundError(c, "No open session")
	}
	if errors.Is(err, domain.ErrPersistenceFailure) {
		log.Error().Err(err).Str("user_key", userKey).Msgf("Failed to %s", operation)
		return NewServiceUnavailableError(c, "Failed to save data, please retry")
	}

	log.Error().Err(err).Str("user_key", userKey).Msgf("Failed to %s", operation)
	return NewInternalError(c, "Failed to "+operation)
}
