package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Lookup errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrMissingKey     = errors.New("value has no entry in category mapping")

	// Validation errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrWrongKind       = fmt.Errorf("%w: wrong column kind", ErrInvalidArgument)
	ErrLengthMismatch  = fmt.Errorf("%w: length mismatch", ErrInvalidArgument)

	// Statistic errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDegenerateInput  = errors.New("degenerate input for analysis")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

func NewWrongKindError(column, want, got string) error {
	return fmt.Errorf("%w: column %q is %s, want %s", ErrWrongKind, column, got, want)
}

func NewMissingKeyError(column string, value interface{}) error {
	return fmt.Errorf("%w: column %q value %v", ErrMissingKey, column, value)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrColumnNotFound)
}

func IsStatisticError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrDegenerateInput)
}
