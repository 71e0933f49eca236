/*
types.go - Records of the timesheet domain

PURPOSE:
  The durable records the tracker operates on: pay weeks, per-day work
  entries, rosters with their day rows, the bank-holiday allowance and
  the singleton per-user clock state. The engine package computes; this
  package remembers.

OWNERSHIP:
  The WorkDay Entry is the payroll source of truth for a day. The Clock
  State mirrors the entry fields needed by the live clock UI and owns
  only the transient break fields (break_running, break_start). Resyncs
  from entry edits merge into the mirror; they never touch the break
  fields, so an in-progress break survives an edit.

SEE ALSO:
  - engine/: the pure calculators these records feed
  - store.go: persistence interfaces
  - clock.go: the punch state machine
*/
package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserID identifies an account. Identity is established by an external
// session layer; this package only keys records by it.
type UserID string

// =============================================================================
// PAY WEEKS
// =============================================================================

// Week is a pay period anchored on a Sunday start. The hourly rate is
// captured per week so later rate changes never rewrite old payslips.
type Week struct {
	ID         string
	UserID     UserID
	WeekNumber int
	StartDate  Date
	HourlyRate decimal.Decimal
	CreatedAt  time.Time
}

// EndDate is the Saturday closing the week.
func (w Week) EndDate() Date { return w.StartDate.AddDays(6) }

// Contains reports whether d falls inside the week.
func (w Week) Contains(d Date) bool {
	return !d.Before(w.StartDate) && !w.EndDate().Before(d)
}

// =============================================================================
// WORK DAY ENTRIES
// =============================================================================

// Entry is one worked (or confirmed-unworked) day. Times are the REAL
// stored punches in HH:MM; paid times are always derived, never stored.
// Multiplier is frozen when the entry is written so historic pay stays
// stable when premium rules change.
type Entry struct {
	ID           string
	UserID       UserID
	WeekID       string
	Date         Date
	TimeIn       string // "" when not punched in
	TimeOut      string // "" when not punched out
	BreakMinutes int
	Note         string
	Multiplier   decimal.Decimal

	// Two-step confirmation flags for out-of-shift punches. Checked
	// records that the employee answered; Authorized records the answer.
	ExtraChecked    bool
	ExtraAuthorized bool

	CreatedAt time.Time
}

// =============================================================================
// ROSTERS
// =============================================================================

// Roster is a posted schedule for one week: exactly seven day rows,
// Sunday through Saturday. When several rosters cover the same date the
// most recently created one wins.
type Roster struct {
	ID         string
	UserID     UserID
	WeekNumber int
	StartDate  Date
	CreatedAt  time.Time
}

// RosterDay is one scheduled day. A day off carries no shift times.
type RosterDay struct {
	ID       string
	UserID   UserID
	RosterID string
	Date     Date
	ShiftIn  string // "" on a day off
	ShiftOut string // "" on a day off
	DayOff   bool
}

// =============================================================================
// BANK HOLIDAYS
// =============================================================================

// BankHoliday is one public holiday in a user's yearly allowance.
// Applicable marks whether the holiday counts for this user at all;
// Paid marks whether it has been paid out, and when, against which week.
type BankHoliday struct {
	ID         string
	UserID     UserID
	Year       int
	Name       string
	Date       Date
	Applicable bool
	Paid       bool
	PaidDate   Date   // "" until paid
	PaidWeekID string // "" until paid
}

// =============================================================================
// CLOCK STATE
// =============================================================================

// ClockState is the singleton live-clock record for a user. One row per
// user; a new calendar day resets it from that day's entry. BreakStart
// is a wall-clock instant so elapsed break time survives process
// restarts.
type ClockState struct {
	UserID       UserID
	WeekID       string
	Date         Date
	InTime       string
	OutTime      string
	BreakRunning bool
	BreakStart   *time.Time
	BreakMinutes int
	UpdatedAt    time.Time
}

// =============================================================================
// TELEGRAM LINKS
// =============================================================================

// ChatLink binds a Telegram chat to an account so punches can arrive
// over the bot as well as the HTTP API.
type ChatLink struct {
	ChatID    int64
	UserID    UserID
	CreatedAt time.Time
}
