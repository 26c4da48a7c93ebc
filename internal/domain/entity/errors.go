package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrBusinessRule indicates that an operation was rejected by an ERP
	// business rule (for example, an invalid state transition). Errors
	// wrapping this sentinel are reported to RPC callers inside the
	// uniform result shape and are never retried.
	ErrBusinessRule = errors.New("business rule violation")
)

// BusinessRuleError wraps a human-readable rule violation so that it
// matches ErrBusinessRule under errors.Is while keeping the message
// suitable for the RPC result body.
func BusinessRuleError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBusinessRule, fmt.Sprintf(format, args...))
}

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
