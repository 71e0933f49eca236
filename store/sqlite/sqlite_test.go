/*
sqlite_test.go - Persistence behavior against a real in-memory SQLite

ORGANIZATION:
  1. Round trips for each record family (weeks, entries, rosters,
     holidays, clock state, chat links)
  2. The semantics the tracker depends on: roster precedence,
     idempotent holiday seeding, cascades, transactional rollback
*/
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/timeclock/timesheet"
)

const testUser = timesheet.UserID("u-1")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testWeek(number int, start string, created time.Time) timesheet.Week {
	return timesheet.Week{
		ID:         uuid.NewString(),
		UserID:     testUser,
		WeekNumber: number,
		StartDate:  timesheet.Date(start),
		HourlyRate: decimal.NewFromFloat(12.70),
		CreatedAt:  created,
	}
}

// =============================================================================
// WEEKS
// =============================================================================

func TestSQLite_WeekRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := testWeek(23, "2025-06-01", time.Now())
	require.NoError(t, s.SaveWeek(ctx, w))

	got, err := s.GetWeek(ctx, testUser, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, 23, got.WeekNumber)
	assert.Equal(t, timesheet.Date("2025-06-01"), got.StartDate)
	assert.True(t, got.HourlyRate.Equal(w.HourlyRate))

	// Save again with a new rate: upsert, not duplicate.
	w.HourlyRate = decimal.NewFromFloat(14.00)
	require.NoError(t, s.SaveWeek(ctx, w))
	weeks, err := s.ListWeeks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.True(t, weeks[0].HourlyRate.Equal(decimal.NewFromFloat(14.00)))
}

func TestSQLite_WeeksAreScopedByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := testWeek(23, "2025-06-01", time.Now())
	require.NoError(t, s.SaveWeek(ctx, w))

	_, err := s.GetWeek(ctx, timesheet.UserID("someone-else"), w.ID)
	assert.True(t, timesheet.IsNotFound(err))
}

func TestSQLite_ListWeeksNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWeek(ctx, testWeek(22, "2025-05-25", time.Now())))
	require.NoError(t, s.SaveWeek(ctx, testWeek(24, "2025-06-08", time.Now())))
	require.NoError(t, s.SaveWeek(ctx, testWeek(23, "2025-06-01", time.Now())))

	weeks, err := s.ListWeeks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, weeks, 3)
	assert.Equal(t, 24, weeks[0].WeekNumber)
	assert.Equal(t, 22, weeks[2].WeekNumber)

	latest, err := s.LatestWeek(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 24, latest.WeekNumber)
}

func TestSQLite_ListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWeek(ctx, testWeek(23, "2025-06-01", time.Now())))
	other := testWeek(23, "2025-06-01", time.Now())
	other.ID = uuid.NewString()
	other.UserID = "u-2"
	require.NoError(t, s.SaveWeek(ctx, other))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []timesheet.UserID{"u-1", "u-2"}, users)
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestSQLite_EntryRoundTripAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := testWeek(23, "2025-06-01", time.Now())
	require.NoError(t, s.SaveWeek(ctx, w))

	e := timesheet.Entry{
		ID:           uuid.NewString(),
		UserID:       testUser,
		WeekID:       w.ID,
		Date:         timesheet.Date("2025-06-02"),
		TimeIn:       "09:45",
		TimeOut:      "19:00",
		BreakMinutes: 60,
		Note:         "regular day",
		Multiplier:   decimal.NewFromInt(1),
		ExtraChecked: true,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.SaveEntry(ctx, e))

	got, err := s.FindEntry(ctx, testUser, w.ID, timesheet.Date("2025-06-02"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "09:45", got.TimeIn)
	assert.True(t, got.ExtraChecked)
	assert.False(t, got.ExtraAuthorized)

	// Deleting the week takes the entry with it.
	require.NoError(t, s.DeleteWeek(ctx, testUser, w.ID))
	_, err = s.GetEntry(ctx, testUser, e.ID)
	assert.True(t, timesheet.IsNotFound(err))
}

func TestSQLite_FindEntryMissingIsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.FindEntry(context.Background(), testUser, "none", timesheet.Date("2025-06-02"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// ROSTERS
// =============================================================================

func saveRoster(t *testing.T, s *Store, weekNumber int, start string, created time.Time, mondayIn string) timesheet.Roster {
	t.Helper()
	r := timesheet.Roster{
		ID:         uuid.NewString(),
		UserID:     testUser,
		WeekNumber: weekNumber,
		StartDate:  timesheet.Date(start),
		CreatedAt:  created,
	}
	days := make([]timesheet.RosterDay, 0, 7)
	for i := 0; i < 7; i++ {
		day := timesheet.RosterDay{
			ID:       uuid.NewString(),
			UserID:   testUser,
			RosterID: r.ID,
			Date:     timesheet.Date(start).AddDays(i),
			DayOff:   i == 0 || i == 6,
		}
		if !day.DayOff {
			day.ShiftIn, day.ShiftOut = mondayIn, "19:00"
		}
		days = append(days, day)
	}
	require.NoError(t, s.SaveRoster(context.Background(), r, days))
	return r
}

func TestSQLite_RosterDayOnPrecedence(t *testing.T) {
	// Two rosters cover 2025-06-02; the one created later must win.
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	saveRoster(t, s, 23, "2025-06-01", base, "09:45")
	saveRoster(t, s, 230, "2025-06-01", base.Add(time.Hour), "10:45")

	day, err := s.RosterDayOn(ctx, testUser, timesheet.Date("2025-06-02"))
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, "10:45", day.ShiftIn)

	// A date nobody covers resolves to nil.
	none, err := s.RosterDayOn(ctx, testUser, timesheet.Date("2025-07-01"))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLite_FindRosterAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := saveRoster(t, s, 23, "2025-06-01", time.Now(), "09:45")

	found, err := s.FindRoster(ctx, testUser, 23, timesheet.Date("2025-06-01"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, r.ID, found.ID)

	missing, err := s.FindRoster(ctx, testUser, 99, timesheet.Date("2025-06-01"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.DeleteRoster(ctx, testUser, r.ID))
	days, err := s.ListRosterDays(ctx, testUser, r.ID)
	require.NoError(t, err)
	assert.Empty(t, days, "days cascade with the roster")
}

func TestSQLite_UpdateRosterDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := saveRoster(t, s, 23, "2025-06-01", time.Now(), "09:45")

	err := s.UpdateRosterDay(ctx, timesheet.RosterDay{
		UserID:   testUser,
		RosterID: r.ID,
		Date:     timesheet.Date("2025-06-02"),
		DayOff:   true,
	})
	require.NoError(t, err)

	day, err := s.RosterDayOn(ctx, testUser, timesheet.Date("2025-06-02"))
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.True(t, day.DayOff)
	assert.Empty(t, day.ShiftIn)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestSQLite_SeedHolidaysIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []timesheet.BankHoliday{
		{
			ID: uuid.NewString(), UserID: testUser, Year: 2025,
			Name: "June Bank Holiday", Date: timesheet.Date("2025-06-02"),
			Applicable: true,
		},
	}
	require.NoError(t, s.SeedHolidays(ctx, rows))

	// Flip to paid, then seed the same row again.
	h, err := s.HolidayOn(ctx, testUser, timesheet.Date("2025-06-02"))
	require.NoError(t, err)
	require.NotNil(t, h)
	h.Paid = true
	h.PaidDate = timesheet.Date("2025-06-02")
	require.NoError(t, s.UpdateHoliday(ctx, *h))

	rows[0].ID = uuid.NewString()
	require.NoError(t, s.SeedHolidays(ctx, rows))

	hs, err := s.ListHolidays(ctx, testUser, 2025)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.True(t, hs[0].Paid, "re-seeding must not reset user edits")

	years, err := s.ListHolidayYears(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []int{2025}, years)
}

// =============================================================================
// CLOCK STATE AND CHAT LINKS
// =============================================================================

func TestSQLite_ClockStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	none, err := s.GetClockState(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, none, "never punched means no row")

	start := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	st := timesheet.ClockState{
		UserID:       testUser,
		WeekID:       "w-23",
		Date:         timesheet.Date("2025-06-02"),
		InTime:       "09:45",
		BreakRunning: true,
		BreakStart:   &start,
		BreakMinutes: 15,
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, s.SaveClockState(ctx, st))

	got, err := s.GetClockState(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.BreakRunning)
	require.NotNil(t, got.BreakStart)
	assert.True(t, got.BreakStart.Equal(start), "break start instant survives the trip")

	// One row per user: saving again replaces, never duplicates.
	st.BreakRunning = false
	st.BreakStart = nil
	require.NoError(t, s.SaveClockState(ctx, st))
	got, err = s.GetClockState(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, got.BreakRunning)
	assert.Nil(t, got.BreakStart)
}

func TestSQLite_ChatLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UserForChat(ctx, 42)
	assert.True(t, errors.Is(err, timesheet.ErrChatNotLinked))

	require.NoError(t, s.SaveChatLink(ctx, timesheet.ChatLink{ChatID: 42, UserID: testUser}))
	user, err := s.UserForChat(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, testUser, user)

	// Relinking the same chat to another account replaces the binding.
	require.NoError(t, s.SaveChatLink(ctx, timesheet.ChatLink{ChatID: 42, UserID: "u-2"}))
	user, err = s.UserForChat(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, timesheet.UserID("u-2"), user)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLite_WithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx timesheet.Store) error {
		if err := tx.SaveWeek(ctx, testWeek(23, "2025-06-01", time.Now())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	weeks, err := s.ListWeeks(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, weeks, "a failed transaction must leave nothing behind")
}

func TestSQLite_WithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := testWeek(23, "2025-06-01", time.Now())
	err := s.WithTx(ctx, func(tx timesheet.Store) error {
		return tx.SaveWeek(ctx, w)
	})
	require.NoError(t, err)

	got, err := s.GetWeek(ctx, testUser, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
}
