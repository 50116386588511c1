package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrEstimatorFailure = errors.New("estimator failure")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrProfileMissing   = errors.New("profile not set up")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidServing   = errors.New("invalid serving size")
	ErrInvalidMealType  = errors.New("invalid meal type")
	ErrInvalidActivity  = errors.New("invalid activity level")
	ErrInvalidUnit      = errors.New("invalid quantity unit")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
