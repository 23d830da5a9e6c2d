package domain

import "errors"

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidPeriod        = errors.New("month must be between 0 and 11")
	ErrInvalidYear          = errors.New("year is out of range")
	ErrEmptyCategory        = errors.New("category is required")
	ErrCategoryTooLong      = errors.New("category exceeds maximum length")
	ErrNameRequired         = errors.New("name is required")
	ErrNameTooLong          = errors.New("name exceeds maximum length")
	ErrRecurringNotFound    = errors.New("recurring expense not found")
	ErrInvalidIdentity      = errors.New("email or nickname is required")
	ErrSnapshotNotFound     = errors.New("snapshot not found")
	ErrMalformedSnapshot    = errors.New("malformed snapshot")
	ErrPersistenceFailure   = errors.New("persistence failure")
	ErrStorageNotConfigured = errors.New("report storage not configured")
	ErrSessionNotFound      = errors.New("session not found")
)

// Validation constants
const (
	MaxNameLength     = 255
	MaxCategoryLength = 100
	MinYear           = 1970
	MaxYear           = 2100
)
