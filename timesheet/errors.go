/*
errors.go - Domain errors for the timesheet package

PURPOSE:
  One place for everything the tracker can refuse to do. The clock
  machine deliberately keeps its error surface small: deviations and
  day-off punches are resolved through the confirmation protocol, not
  through errors, so the only fatal punch failure is the absence of a
  week to punch into.

SEE ALSO:
  - engine/errors.go: input errors (invalid times) share its pattern
  - api/handlers.go: maps these onto HTTP status codes
*/
package timesheet

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoActiveWeek is returned when a punch or confirmation arrives
	// and no week covers (or can stand in for) today. Fatal to the
	// transition; the caller must create a week or roster first.
	ErrNoActiveWeek = errors.New("no active week")

	// ErrInvalidDate is returned for any date that is not strict
	// YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrWeekNotFound, ErrEntryNotFound, ErrRosterNotFound and
	// ErrHolidayNotFound report lookups of records that do not exist
	// (or belong to someone else, which looks identical from outside).
	ErrWeekNotFound    = errors.New("week not found")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrRosterNotFound  = errors.New("roster not found")
	ErrHolidayNotFound = errors.New("bank holiday not found")

	// ErrChatNotLinked is returned when a Telegram chat punches before
	// linking itself to an account.
	ErrChatNotLinked = errors.New("chat not linked to any account")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RosterShapeError reports a roster payload that does not describe
// exactly one week of day codes.
type RosterShapeError struct {
	Got    int
	Reason string
}

func (e *RosterShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid roster: %s", e.Reason)
	}
	return fmt.Sprintf("invalid roster: want 7 day codes, got %d", e.Got)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err names a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWeekNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrRosterNotFound) ||
		errors.Is(err, ErrHolidayNotFound) ||
		errors.Is(err, ErrChatNotLinked)
}
