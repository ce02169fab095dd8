package portfolio

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is returned when a holding cannot be created from the
// supplied fields. The portfolio is left unchanged.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidationFailed, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
