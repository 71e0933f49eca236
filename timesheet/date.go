package timesheet

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR DATES
// =============================================================================
// Dates are ISO "YYYY-MM-DD" strings. The format compares and sorts
// lexicographically in date order, stores as TEXT without conversion,
// and round-trips through JSON untouched.

const dateLayout = "2006-01-02"

// Date is a calendar day in ISO format. The zero value "" means unset.
type Date string

// ParseDate validates strict YYYY-MM-DD input.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil || t.Format(dateLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date(s), nil
}

// DateOf truncates an instant to its calendar day in the instant's location.
func DateOf(t time.Time) Date { return Date(t.Format(dateLayout)) }

// Time parses the date at midnight UTC.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return t, nil
}

// AddDays steps the calendar. An unset or malformed date stays unset.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return ""
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Year of the date, 0 when unset or malformed.
func (d Date) Year() int {
	t, err := d.Time()
	if err != nil {
		return 0
	}
	return t.Year()
}

func (d Date) Before(other Date) bool { return d < other }
func (d Date) After(other Date) bool  { return d > other }
func (d Date) IsZero() bool           { return d == "" }
func (d Date) String() string         { return string(d) }
