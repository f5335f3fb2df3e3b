// Package errors provides the error taxonomy for rocket.
//
// This file provides:
// - Sentinel errors for all request and storage conditions
// - Typed errors carrying the offending option name
// - Error category checking functions
// - HTTPStatus mapping for the HTTP surface
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Request decoding and validation errors
	ErrMalformedOptions = errors.New("malformed options: odd number of path segments")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidTimeValue = errors.New("invalid time value")

	// Storage errors
	ErrStorage = errors.New("storage failure")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ============================================================================
// Typed errors
// ============================================================================

// MissingFieldError reports a required option that was absent from a request.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Name)
}

// Unwrap returns ErrMissingField.
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// InvalidTimeError reports a time bound option that is not a non-negative integer.
type InvalidTimeError struct {
	Name  string
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("%s: %s=%q", ErrInvalidTimeValue, e.Name, e.Value)
}

// Unwrap returns ErrInvalidTimeValue.
func (e *InvalidTimeError) Unwrap() error {
	return ErrInvalidTimeValue
}

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// New is a convenience wrapper for errors.New
var New = errors.New

// IsValidation returns true if err was caused by a bad request.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMalformedOptions) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidTimeValue)
}

// IsStorage returns true if err came from the storage collaborator.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// ============================================================================
// Error to HTTP status mapping
// ============================================================================

// HTTPStatus maps an error to the status code the HTTP surface responds with.
// Storage failures are server-side and map to 500; they are never reported as
// a client error.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Storage marks err as a storage failure while keeping the cause inspectable.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return &MissingFieldError{Name: field}
}

// NewInvalidValue creates an invalid configuration value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the first error for errors.Is/As support.
func (v *ValidationErrors) Unwrap() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}
