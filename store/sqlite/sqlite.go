/*
Package sqlite provides the SQLite-backed implementation of the
timesheet storage interfaces.

PURPOSE:
  Implements timesheet.TxStore over database/sql. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  weeks:         Pay weeks with their frozen hourly rate
  entries:       One work-day record per (user, week, date)
  rosters:       Posted week schedules
  roster_days:   Seven day rows per roster
  bank_holidays: Per-user yearly holiday allowance
  clock_state:   Singleton live-clock row per user
  chat_links:    Telegram chat-to-user bindings

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time,
  better crash recovery. Foreign keys are enabled so entries cascade
  with their week and day rows with their roster.

TRANSACTIONS:
  WithTx hands the callback a view bound to one *sql.Tx; the clock
  machine uses it to commit a day entry and its clock-state mirror
  together or not at all.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - timesheet/store.go: Interface definitions
  - timesheet/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/shiftwise/timeclock/timesheet"
)

// Store implements timesheet.TxStore using SQLite.
type Store struct {
	db *sql.DB
	queries
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, queries: queries{q: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS weeks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_weeks_user
		ON weeks(user_id, week_number DESC, start_date DESC);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		week_id TEXT NOT NULL REFERENCES weeks(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		time_in TEXT NOT NULL DEFAULT '',
		time_out TEXT NOT NULL DEFAULT '',
		break_minutes INTEGER NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT '',
		multiplier TEXT NOT NULL,
		extra_checked INTEGER NOT NULL DEFAULT 0,
		extra_authorized INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- One entry per (user, week, date): the lazily created day record.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_unique_day
		ON entries(user_id, week_id, date);
	CREATE INDEX IF NOT EXISTS idx_entries_user_date
		ON entries(user_id, date);

	CREATE TABLE IF NOT EXISTS rosters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rosters_user
		ON rosters(user_id, start_date DESC);

	CREATE TABLE IF NOT EXISTS roster_days (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		roster_id TEXT NOT NULL REFERENCES rosters(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		shift_in TEXT NOT NULL DEFAULT '',
		shift_out TEXT NOT NULL DEFAULT '',
		day_off INTEGER NOT NULL DEFAULT 0,
		UNIQUE(roster_id, date)
	);

	-- Hot path: the resolver probes (user, date) on every punch.
	CREATE INDEX IF NOT EXISTS idx_roster_days_user_date
		ON roster_days(user_id, date);

	CREATE TABLE IF NOT EXISTS bank_holidays (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		applicable INTEGER NOT NULL DEFAULT 1,
		paid INTEGER NOT NULL DEFAULT 0,
		paid_date TEXT NOT NULL DEFAULT '',
		paid_week_id TEXT NOT NULL DEFAULT '',
		UNIQUE(user_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_bank_holidays_user_year
		ON bank_holidays(user_id, year);

	CREATE TABLE IF NOT EXISTS clock_state (
		user_id TEXT PRIMARY KEY,
		week_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		in_time TEXT NOT NULL DEFAULT '',
		out_time TEXT NOT NULL DEFAULT '',
		break_running INTEGER NOT NULL DEFAULT 0,
		break_start TEXT,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_links (
		chat_id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a database transaction. The Store the
// callback sees is bound to the transaction; its writes commit when fn
// returns nil and roll back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(timesheet.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// dbtx is the subset of *sql.DB and *sql.Tx the queries need, so one
// implementation serves both the plain and the transactional path.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q dbtx
}

// =============================================================================
// WEEKS
// =============================================================================

func (s *queries) SaveWeek(ctx context.Context, w timesheet.Week) error {
	query := `
		INSERT INTO weeks (id, user_id, week_number, start_date, hourly_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			week_number = excluded.week_number,
			start_date = excluded.start_date,
			hourly_rate = excluded.hourly_rate
	`
	_, err := s.q.ExecContext(ctx, query,
		w.ID, string(w.UserID), w.WeekNumber, string(w.StartDate),
		w.HourlyRate.String(), w.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *queries) GetWeek(ctx context.Context, user timesheet.UserID, id string) (*timesheet.Week, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, week_number, start_date, hourly_rate, created_at
		 FROM weeks WHERE id = ? AND user_id = ?`, id, string(user))
	w, err := scanWeek(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrWeekNotFound, id)
	}
	return w, err
}

func (s *queries) FindWeekByNumber(ctx context.Context, user timesheet.UserID, weekNumber int) (*timesheet.Week, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, week_number, start_date, hourly_rate, created_at
		 FROM weeks WHERE user_id = ? AND week_number = ?
		 ORDER BY created_at DESC LIMIT 1`, string(user), weekNumber)
	w, err := scanWeek(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

func (s *queries) ListWeeks(ctx context.Context, user timesheet.UserID) ([]timesheet.Week, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, week_number, start_date, hourly_rate, created_at
		 FROM weeks WHERE user_id = ?
		 ORDER BY week_number DESC, start_date DESC`, string(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []timesheet.Week
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, *w)
	}
	return weeks, rows.Err()
}

func (s *queries) LatestWeek(ctx context.Context, user timesheet.UserID) (*timesheet.Week, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, week_number, start_date, hourly_rate, created_at
		 FROM weeks WHERE user_id = ?
		 ORDER BY start_date DESC LIMIT 1`, string(user))
	w, err := scanWeek(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

func (s *queries) DeleteWeek(ctx context.Context, user timesheet.UserID, id string) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM weeks WHERE id = ? AND user_id = ?", id, string(user))
	if err != nil {
		return err
	}
	return notFoundOnZero(res, timesheet.ErrWeekNotFound, id)
}

func (s *queries) ListUsers(ctx context.Context) ([]timesheet.UserID, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM weeks ORDER BY user_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []timesheet.UserID
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, timesheet.UserID(u))
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWeek(r rowScanner) (*timesheet.Week, error) {
	var (
		w                             timesheet.Week
		userID, start, rate, created string
	)
	if err := r.Scan(&w.ID, &userID, &w.WeekNumber, &start, &rate, &created); err != nil {
		return nil, err
	}
	w.UserID = timesheet.UserID(userID)
	w.StartDate = timesheet.Date(start)
	hr, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("corrupt hourly rate %q for week %s: %w", rate, w.ID, err)
	}
	w.HourlyRate = hr
	w.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &w, nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *queries) SaveEntry(ctx context.Context, e timesheet.Entry) error {
	query := `
		INSERT INTO entries
		(id, user_id, week_id, date, time_in, time_out, break_minutes, note,
		 multiplier, extra_checked, extra_authorized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			time_in = excluded.time_in,
			time_out = excluded.time_out,
			break_minutes = excluded.break_minutes,
			note = excluded.note,
			multiplier = excluded.multiplier,
			extra_checked = excluded.extra_checked,
			extra_authorized = excluded.extra_authorized
	`
	_, err := s.q.ExecContext(ctx, query,
		e.ID, string(e.UserID), e.WeekID, string(e.Date),
		e.TimeIn, e.TimeOut, e.BreakMinutes, e.Note,
		e.Multiplier.String(), e.ExtraChecked, e.ExtraAuthorized,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *queries) GetEntry(ctx context.Context, user timesheet.UserID, id string) (*timesheet.Entry, error) {
	row := s.q.QueryRowContext(ctx, selectEntry+" WHERE id = ? AND user_id = ?", id, string(user))
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrEntryNotFound, id)
	}
	return e, err
}

func (s *queries) FindEntry(ctx context.Context, user timesheet.UserID, weekID string, date timesheet.Date) (*timesheet.Entry, error) {
	row := s.q.QueryRowContext(ctx,
		selectEntry+" WHERE user_id = ? AND week_id = ? AND date = ?",
		string(user), weekID, string(date))
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (s *queries) ListEntries(ctx context.Context, user timesheet.UserID, weekID string) ([]timesheet.Entry, error) {
	return s.queryEntries(ctx,
		selectEntry+" WHERE user_id = ? AND week_id = ? ORDER BY date ASC",
		string(user), weekID)
}

func (s *queries) ListAllEntries(ctx context.Context, user timesheet.UserID) ([]timesheet.Entry, error) {
	return s.queryEntries(ctx,
		selectEntry+" WHERE user_id = ? ORDER BY date ASC", string(user))
}

func (s *queries) DeleteEntry(ctx context.Context, user timesheet.UserID, id string) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM entries WHERE id = ? AND user_id = ?", id, string(user))
	if err != nil {
		return err
	}
	return notFoundOnZero(res, timesheet.ErrEntryNotFound, id)
}

const selectEntry = `
	SELECT id, user_id, week_id, date, time_in, time_out, break_minutes, note,
	       multiplier, extra_checked, extra_authorized, created_at
	FROM entries`

func (s *queries) queryEntries(ctx context.Context, query string, args ...any) ([]timesheet.Entry, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(r rowScanner) (*timesheet.Entry, error) {
	var (
		e                           timesheet.Entry
		userID, date, mult, created string
	)
	if err := r.Scan(&e.ID, &userID, &e.WeekID, &date, &e.TimeIn, &e.TimeOut,
		&e.BreakMinutes, &e.Note, &mult, &e.ExtraChecked, &e.ExtraAuthorized, &created); err != nil {
		return nil, err
	}
	e.UserID = timesheet.UserID(userID)
	e.Date = timesheet.Date(date)
	m, err := decimal.NewFromString(mult)
	if err != nil {
		return nil, fmt.Errorf("corrupt multiplier %q for entry %s: %w", mult, e.ID, err)
	}
	e.Multiplier = m
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &e, nil
}

// =============================================================================
// ROSTERS
// =============================================================================

func (s *queries) SaveRoster(ctx context.Context, r timesheet.Roster, days []timesheet.RosterDay) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO rosters (id, user_id, week_number, start_date, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, string(r.UserID), r.WeekNumber, string(r.StartDate),
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	for _, d := range days {
		_, err := s.q.ExecContext(ctx,
			`INSERT INTO roster_days (id, user_id, roster_id, date, shift_in, shift_out, day_off)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.ID, string(d.UserID), d.RosterID, string(d.Date), d.ShiftIn, d.ShiftOut, d.DayOff)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *queries) GetRoster(ctx context.Context, user timesheet.UserID, id string) (*timesheet.Roster, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, week_number, start_date, created_at
		 FROM rosters WHERE id = ? AND user_id = ?`, id, string(user))
	r, err := scanRoster(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrRosterNotFound, id)
	}
	return r, err
}

func (s *queries) ListRosterDays(ctx context.Context, user timesheet.UserID, rosterID string) ([]timesheet.RosterDay, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, roster_id, date, shift_in, shift_out, day_off
		 FROM roster_days WHERE user_id = ? AND roster_id = ?
		 ORDER BY date ASC`, string(user), rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []timesheet.RosterDay
	for rows.Next() {
		d, err := scanRosterDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, *d)
	}
	return days, rows.Err()
}

func (s *queries) FindRoster(ctx context.Context, user timesheet.UserID, weekNumber int, startDate timesheet.Date) (*timesheet.Roster, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, week_number, start_date, created_at
		 FROM rosters WHERE user_id = ? AND week_number = ? AND start_date = ?
		 LIMIT 1`, string(user), weekNumber, string(startDate))
	r, err := scanRoster(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *queries) ListRosters(ctx context.Context, user timesheet.UserID) ([]timesheet.Roster, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, week_number, start_date, created_at
		 FROM rosters WHERE user_id = ?
		 ORDER BY created_at DESC`, string(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rosters []timesheet.Roster
	for rows.Next() {
		r, err := scanRoster(rows)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, *r)
	}
	return rosters, rows.Err()
}

func (s *queries) RosterDayOn(ctx context.Context, user timesheet.UserID, date timesheet.Date) (*timesheet.RosterDay, error) {
	// Overlapping rosters: the most recently created one wins.
	row := s.q.QueryRowContext(ctx,
		`SELECT d.id, d.user_id, d.roster_id, d.date, d.shift_in, d.shift_out, d.day_off
		 FROM roster_days d
		 JOIN rosters r ON r.id = d.roster_id
		 WHERE d.user_id = ? AND d.date = ?
		 ORDER BY r.created_at DESC LIMIT 1`, string(user), string(date))
	d, err := scanRosterDay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (s *queries) UpdateRosterDay(ctx context.Context, day timesheet.RosterDay) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE roster_days SET shift_in = ?, shift_out = ?, day_off = ?
		 WHERE user_id = ? AND roster_id = ? AND date = ?`,
		day.ShiftIn, day.ShiftOut, day.DayOff,
		string(day.UserID), day.RosterID, string(day.Date))
	if err != nil {
		return err
	}
	return notFoundOnZero(res, timesheet.ErrRosterNotFound,
		fmt.Sprintf("no day %s in roster %s", day.Date, day.RosterID))
}

func (s *queries) DeleteRoster(ctx context.Context, user timesheet.UserID, id string) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM rosters WHERE id = ? AND user_id = ?", id, string(user))
	if err != nil {
		return err
	}
	return notFoundOnZero(res, timesheet.ErrRosterNotFound, id)
}

func scanRoster(r rowScanner) (*timesheet.Roster, error) {
	var (
		ro                     timesheet.Roster
		userID, start, created string
	)
	if err := r.Scan(&ro.ID, &userID, &ro.WeekNumber, &start, &created); err != nil {
		return nil, err
	}
	ro.UserID = timesheet.UserID(userID)
	ro.StartDate = timesheet.Date(start)
	ro.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &ro, nil
}

func scanRosterDay(r rowScanner) (*timesheet.RosterDay, error) {
	var (
		d            timesheet.RosterDay
		userID, date string
	)
	if err := r.Scan(&d.ID, &userID, &d.RosterID, &date, &d.ShiftIn, &d.ShiftOut, &d.DayOff); err != nil {
		return nil, err
	}
	d.UserID = timesheet.UserID(userID)
	d.Date = timesheet.Date(date)
	return &d, nil
}

// =============================================================================
// BANK HOLIDAYS
// =============================================================================

func (s *queries) SeedHolidays(ctx context.Context, hs []timesheet.BankHoliday) error {
	// DO NOTHING keeps any paid/applicable edits on rows already seeded.
	query := `
		INSERT INTO bank_holidays
		(id, user_id, year, name, date, applicable, paid, paid_date, paid_week_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO NOTHING
	`
	for _, h := range hs {
		_, err := s.q.ExecContext(ctx, query,
			h.ID, string(h.UserID), h.Year, h.Name, string(h.Date),
			h.Applicable, h.Paid, string(h.PaidDate), h.PaidWeekID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *queries) ListHolidayYears(ctx context.Context, user timesheet.UserID) ([]int, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT DISTINCT year FROM bank_holidays WHERE user_id = ? ORDER BY year ASC",
		string(user))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (s *queries) ListHolidays(ctx context.Context, user timesheet.UserID, year int) ([]timesheet.BankHoliday, error) {
	rows, err := s.q.QueryContext(ctx,
		selectHoliday+" WHERE user_id = ? AND year = ? ORDER BY date ASC",
		string(user), year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hs []timesheet.BankHoliday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		hs = append(hs, *h)
	}
	return hs, rows.Err()
}

func (s *queries) GetHoliday(ctx context.Context, user timesheet.UserID, id string) (*timesheet.BankHoliday, error) {
	row := s.q.QueryRowContext(ctx,
		selectHoliday+" WHERE id = ? AND user_id = ?", id, string(user))
	h, err := scanHoliday(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrHolidayNotFound, id)
	}
	return h, err
}

func (s *queries) HolidayOn(ctx context.Context, user timesheet.UserID, date timesheet.Date) (*timesheet.BankHoliday, error) {
	row := s.q.QueryRowContext(ctx,
		selectHoliday+" WHERE user_id = ? AND date = ?", string(user), string(date))
	h, err := scanHoliday(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return h, err
}

func (s *queries) UpdateHoliday(ctx context.Context, h timesheet.BankHoliday) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE bank_holidays SET applicable = ?, paid = ?, paid_date = ?, paid_week_id = ?
		 WHERE id = ? AND user_id = ?`,
		h.Applicable, h.Paid, string(h.PaidDate), h.PaidWeekID, h.ID, string(h.UserID))
	if err != nil {
		return err
	}
	return notFoundOnZero(res, timesheet.ErrHolidayNotFound, h.ID)
}

const selectHoliday = `
	SELECT id, user_id, year, name, date, applicable, paid, paid_date, paid_week_id
	FROM bank_holidays`

func scanHoliday(r rowScanner) (*timesheet.BankHoliday, error) {
	var (
		h                      timesheet.BankHoliday
		userID, date, paidDate string
	)
	if err := r.Scan(&h.ID, &userID, &h.Year, &h.Name, &date,
		&h.Applicable, &h.Paid, &paidDate, &h.PaidWeekID); err != nil {
		return nil, err
	}
	h.UserID = timesheet.UserID(userID)
	h.Date = timesheet.Date(date)
	h.PaidDate = timesheet.Date(paidDate)
	return &h, nil
}

// =============================================================================
// CLOCK STATE
// =============================================================================

func (s *queries) GetClockState(ctx context.Context, user timesheet.UserID) (*timesheet.ClockState, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT user_id, week_id, date, in_time, out_time, break_running,
		        break_start, break_minutes, updated_at
		 FROM clock_state WHERE user_id = ?`, string(user))

	var (
		st                    timesheet.ClockState
		userID, date, updated string
		breakStart            sql.NullString
	)
	err := row.Scan(&userID, &st.WeekID, &date, &st.InTime, &st.OutTime,
		&st.BreakRunning, &breakStart, &st.BreakMinutes, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st.UserID = timesheet.UserID(userID)
	st.Date = timesheet.Date(date)
	if breakStart.Valid && breakStart.String != "" {
		t, err := time.Parse(time.RFC3339, breakStart.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt break_start %q for user %s: %w", breakStart.String, userID, err)
		}
		st.BreakStart = &t
	}
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &st, nil
}

func (s *queries) SaveClockState(ctx context.Context, st timesheet.ClockState) error {
	var breakStart *string
	if st.BreakStart != nil {
		v := st.BreakStart.UTC().Format(time.RFC3339)
		breakStart = &v
	}
	query := `
		INSERT INTO clock_state
		(user_id, week_id, date, in_time, out_time, break_running, break_start, break_minutes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			week_id = excluded.week_id,
			date = excluded.date,
			in_time = excluded.in_time,
			out_time = excluded.out_time,
			break_running = excluded.break_running,
			break_start = excluded.break_start,
			break_minutes = excluded.break_minutes,
			updated_at = excluded.updated_at
	`
	_, err := s.q.ExecContext(ctx, query,
		string(st.UserID), st.WeekID, string(st.Date), st.InTime, st.OutTime,
		st.BreakRunning, breakStart, st.BreakMinutes,
		st.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// CHAT LINKS
// =============================================================================

func (s *queries) SaveChatLink(ctx context.Context, l timesheet.ChatLink) error {
	query := `
		INSERT INTO chat_links (chat_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET user_id = excluded.user_id
	`
	_, err := s.q.ExecContext(ctx, query,
		l.ChatID, string(l.UserID), l.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *queries) UserForChat(ctx context.Context, chatID int64) (timesheet.UserID, error) {
	var userID string
	err := s.q.QueryRowContext(ctx,
		"SELECT user_id FROM chat_links WHERE chat_id = ?", chatID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: chat %d", timesheet.ErrChatNotLinked, chatID)
	}
	if err != nil {
		return "", err
	}
	return timesheet.UserID(userID), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func notFoundOnZero(res sql.Result, sentinel error, detail string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", sentinel, detail)
	}
	return nil
}
