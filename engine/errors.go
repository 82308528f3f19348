/*
errors.go - Centralized error types for the temporal core

PURPOSE:
  All engine error types in one place for consistency and
  discoverability. Domain packages wrap these with additional context.

ERROR CATEGORIES:
  1. Time format errors - unparsable "HH:MM" values
  2. Input errors - structurally invalid records (e.g. an absence whose
     end date precedes its start date)

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, engine.ErrInvalidTimeFormat) {
        // data-quality problem, not a rule violation
    }

SEE ALSO:
  - clock.go: Raises InvalidTimeError
  - compliance package: Wraps these for record-level validation
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned when a clock value is not a valid
	// "HH:MM" string. The engine never coerces malformed times to zero;
	// the fallback policy belongs to the caller.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidInput is returned for structurally invalid records, as
	// opposed to business-rule violations which are reported as alerts.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTimeError reports the offending clock value.
type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %q, expected HH:MM", e.Value)
}

func (e *InvalidTimeError) Unwrap() error {
	return ErrInvalidTimeFormat
}

// InvalidInputError reports which field of which record is malformed.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// IsClientError returns true if the error is due to invalid caller data
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidInput)
}
