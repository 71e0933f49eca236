/*
store.go - Persistence interfaces for timesheet records

PURPOSE:
  The tracker and clock machine talk to storage exclusively through
  these interfaces. Implementations: store/sqlite (production, WAL) and
  timesheet/store (in-memory, tests).

CONVENTIONS:
  - Every operation is scoped by UserID; a record that exists but
    belongs to someone else is indistinguishable from one that does
    not exist.
  - Point lookups of records whose absence is an error return the
    matching ErrXNotFound sentinel. Calendar probes whose absence is
    the common case (RosterDayOn, HolidayOn, GetClockState) return
    (nil, nil) instead.
  - Save* methods are upserts keyed on the record's identity.

TRANSACTIONS:
  TxStore.WithTx runs fn against a Store view whose writes commit or
  roll back together. The clock machine uses it to keep a day entry and
  its clock-state mirror from ever diverging.
*/
package timesheet

import "context"

// =============================================================================
// PER-RECORD STORES
// =============================================================================

// WeekStore persists pay weeks.
type WeekStore interface {
	SaveWeek(ctx context.Context, w Week) error
	GetWeek(ctx context.Context, user UserID, id string) (*Week, error)
	// FindWeekByNumber probes by week number; (nil, nil) when absent.
	FindWeekByNumber(ctx context.Context, user UserID, weekNumber int) (*Week, error)
	// ListWeeks returns the user's weeks ordered week_number DESC,
	// start_date DESC (newest first, the order the UI lists them).
	ListWeeks(ctx context.Context, user UserID) ([]Week, error)
	// LatestWeek is the week with the most recent start date, used to
	// inherit the hourly rate onto auto-created weeks. (nil, nil) when
	// the user has no weeks.
	LatestWeek(ctx context.Context, user UserID) (*Week, error)
	DeleteWeek(ctx context.Context, user UserID, id string) error
	// ListUsers enumerates every user owning at least one week. The
	// holiday scheduler seeds catalogs for exactly this set.
	ListUsers(ctx context.Context) ([]UserID, error)
}

// EntryStore persists work-day entries.
type EntryStore interface {
	SaveEntry(ctx context.Context, e Entry) error
	GetEntry(ctx context.Context, user UserID, id string) (*Entry, error)
	// FindEntry looks up the unique entry for (week, date); (nil, nil)
	// when the day has no entry yet.
	FindEntry(ctx context.Context, user UserID, weekID string, date Date) (*Entry, error)
	// ListEntries returns a week's entries ordered by date ascending.
	ListEntries(ctx context.Context, user UserID, weekID string) ([]Entry, error)
	// ListAllEntries returns every entry the user has, for all-time
	// dashboard totals.
	ListAllEntries(ctx context.Context, user UserID) ([]Entry, error)
	DeleteEntry(ctx context.Context, user UserID, id string) error
}

// RosterStore persists posted schedules.
type RosterStore interface {
	// SaveRoster writes the roster and its seven day rows atomically.
	SaveRoster(ctx context.Context, r Roster, days []RosterDay) error
	GetRoster(ctx context.Context, user UserID, id string) (*Roster, error)
	ListRosterDays(ctx context.Context, user UserID, rosterID string) ([]RosterDay, error)
	// FindRoster detects re-posts of the same schedule; (nil, nil) when
	// no roster matches (weekNumber, startDate).
	FindRoster(ctx context.Context, user UserID, weekNumber int, startDate Date) (*Roster, error)
	ListRosters(ctx context.Context, user UserID) ([]Roster, error)
	// RosterDayOn resolves the official schedule for a date. When
	// several rosters cover it the most recently created roster wins.
	// (nil, nil) when no roster covers the date.
	RosterDayOn(ctx context.Context, user UserID, date Date) (*RosterDay, error)
	// UpdateRosterDay recodes one day, keyed on (user, roster, date).
	UpdateRosterDay(ctx context.Context, day RosterDay) error
	// DeleteRoster removes the roster and cascades to its day rows.
	DeleteRoster(ctx context.Context, user UserID, id string) error
}

// HolidayStore persists the bank-holiday allowance.
type HolidayStore interface {
	// SeedHolidays inserts catalog rows idempotently: a holiday already
	// present for (user, year, date) is left untouched, preserving any
	// paid/applicable edits the user made.
	SeedHolidays(ctx context.Context, hs []BankHoliday) error
	ListHolidayYears(ctx context.Context, user UserID) ([]int, error)
	// ListHolidays returns a year's holidays ordered by date ascending.
	ListHolidays(ctx context.Context, user UserID, year int) ([]BankHoliday, error)
	GetHoliday(ctx context.Context, user UserID, id string) (*BankHoliday, error)
	// HolidayOn probes a single date; (nil, nil) when not a holiday.
	HolidayOn(ctx context.Context, user UserID, date Date) (*BankHoliday, error)
	UpdateHoliday(ctx context.Context, h BankHoliday) error
}

// ClockStore persists the singleton per-user clock state.
type ClockStore interface {
	// GetClockState returns the user's row regardless of its date;
	// (nil, nil) when the user has never punched.
	GetClockState(ctx context.Context, user UserID) (*ClockState, error)
	SaveClockState(ctx context.Context, st ClockState) error
}

// ChatLinkStore persists Telegram chat bindings.
type ChatLinkStore interface {
	SaveChatLink(ctx context.Context, l ChatLink) error
	// UserForChat returns ErrChatNotLinked for unknown chats.
	UserForChat(ctx context.Context, chatID int64) (UserID, error)
}

// =============================================================================
// COMPOSED STORE
// =============================================================================

// Store is everything the tracker needs from persistence.
type Store interface {
	WeekStore
	EntryStore
	RosterStore
	HolidayStore
	ClockStore
	ChatLinkStore
}

// TxStore adds transactional grouping. fn sees a Store whose writes
// commit together when fn returns nil and roll back when it errors.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
