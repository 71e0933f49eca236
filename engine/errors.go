/*
errors.go - Error types for the paid-time calculators

PURPOSE:
  Engine errors in one place. The engine is pure computation, so the
  only failures it can produce itself are input failures: malformed
  times and unknown shift codes. Stateful packages wrap these with
  domain context.

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, engine.ErrInvalidTimeFormat) {
        // reject the input, never correct it
    }

SEE ALSO:
  - time.go: Produces TimeFormatError
  - timesheet/errors.go: Domain errors built on the same pattern
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
	// ErrInvalidTimeFormat is returned for any time string that is not
	// strict zero-padded HH:MM. Malformed input is rejected, never
	// silently corrected.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrUnknownShiftCode is returned when a roster references a shift
	// code the catalog does not define.
	ErrUnknownShiftCode = errors.New("unknown shift code")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeFormatError reports the offending value alongside the sentinel.
type TimeFormatError struct {
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time %q: want HH:MM", e.Value)
}

func (e *TimeFormatError) Unwrap() error {
	return ErrInvalidTimeFormat
}

// UnknownShiftError reports the offending code alongside the sentinel.
type UnknownShiftError struct {
	Code string
}

func (e *UnknownShiftError) Error() string {
	return fmt.Sprintf("unknown shift code %q", e.Code)
}

func (e *UnknownShiftError) Unwrap() error {
	return ErrUnknownShiftCode
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidInput returns true if the error is due to malformed caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrUnknownShiftCode)
}
