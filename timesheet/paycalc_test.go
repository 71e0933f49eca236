/*
paycalc_test.go - Executable behavior of day pay and week reports

ORGANIZATION:
  1. The worked-day breakdown (snap, rounding, break floor)
  2. Premium multipliers and the freeze-at-write rule
  3. Week report and dashboard totals
*/
package timesheet_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/timesheet"
	"github.com/shiftwise/timeclock/timesheet/store"
)

// payFixture is newFixture plus direct store access for holiday rows.
func payFixture(t *testing.T) (*timesheet.Tracker, *testClock, *store.Memory) {
	t.Helper()
	ctx := context.Background()

	clock := &testClock{}
	clock.Set(t, "2025-06-02 09:45")

	mem := store.NewMemory()
	tracker := timesheet.NewTracker(mem, engine.DefaultPolicy(), zap.NewNop(),
		timesheet.WithClock(clock.Now))

	_, err := tracker.CreateWeek(ctx, testUser, 23, timesheet.Date("2025-06-01"), decimal.NewFromFloat(12.70))
	require.NoError(t, err)
	_, err = tracker.CreateRoster(ctx, testUser, 23, timesheet.Date("2025-06-01"),
		[]string{"OFF", "A", "B", "A", "B", "A", "OFF"})
	require.NoError(t, err)

	return tracker, clock, mem
}

func upsert(t *testing.T, tracker *timesheet.Tracker, date timesheet.Date, in, out string, breakMin int) *timesheet.Entry {
	t.Helper()
	ctx := context.Background()
	week, err := tracker.ActiveWeek(ctx, testUser)
	require.NoError(t, err)
	entry, err := tracker.UpsertEntry(ctx, testUser, timesheet.EntryEdit{
		WeekID:       week.ID,
		Date:         date,
		TimeIn:       in,
		TimeOut:      out,
		BreakMinutes: breakMin,
	})
	require.NoError(t, err)
	return entry
}

// markHolidayPaid seeds the year and flips the holiday on the date to
// paid, so the premium applies to entries written afterwards.
func markHolidayPaid(t *testing.T, tracker *timesheet.Tracker, mem *store.Memory, date timesheet.Date) {
	t.Helper()
	ctx := context.Background()

	err := tracker.EnsureHolidayYear(ctx, testUser, date.Year(), []timesheet.HolidaySeed{
		{Date: date, Name: "June Bank Holiday"},
	})
	require.NoError(t, err)

	h, err := mem.HolidayOn(ctx, testUser, date)
	require.NoError(t, err)
	require.NotNil(t, h)

	paid := true
	_, err = tracker.PatchHoliday(ctx, testUser, h.ID, timesheet.HolidayPatch{
		Paid:     &paid,
		PaidDate: date,
	})
	require.NoError(t, err)
}

// =============================================================================
// DAY BREAKDOWN
// =============================================================================

func TestDayBreakdown_FullShiftWithBreakFloor(t *testing.T) {
	// GIVEN: Monday shift A worked 09:43-19:02 with a 45 minute break
	// WHEN:  the day breakdown is computed
	// THEN:  both ends snap to the official window (09:45-19:00, 555
	//        min), the break is floored to 60, and 495 minutes are paid

	tracker, _, _ := payFixture(t)
	entry := upsert(t, tracker, timesheet.Date("2025-06-02"), "09:43", "19:02", 45)

	breakdown, err := tracker.DayBreakdown(context.Background(), testUser, *entry)
	require.NoError(t, err)

	assert.Equal(t, "09:45", breakdown.PaidIn)
	assert.Equal(t, "19:00", breakdown.PaidOut)
	assert.Equal(t, 60, breakdown.BreakEffective, "recorded 45 floors to 60")
	assert.Equal(t, 495, breakdown.Minutes)
	assert.True(t, breakdown.Meta.SnapIn)
	assert.True(t, breakdown.Meta.SnapOut)
}

func TestDayBreakdown_LongBreakDeductedAsRecorded(t *testing.T) {
	// GIVEN: Monday shift A with a 75 minute recorded break
	// WHEN:  the day breakdown is computed
	// THEN:  the recorded break is deducted, not the 60 minute floor

	tracker, _, _ := payFixture(t)
	entry := upsert(t, tracker, timesheet.Date("2025-06-02"), "09:45", "19:00", 75)

	breakdown, err := tracker.DayBreakdown(context.Background(), testUser, *entry)
	require.NoError(t, err)
	assert.Equal(t, 75, breakdown.BreakEffective)
	assert.Equal(t, 480, breakdown.Minutes)
}

func TestDayBreakdown_IncompleteDayPaysNothing(t *testing.T) {
	// GIVEN: an entry with only an in-time
	// WHEN:  the day breakdown is computed
	// THEN:  no minutes are paid and no window is reported

	tracker, _, _ := payFixture(t)
	entry := upsert(t, tracker, timesheet.Date("2025-06-02"), "09:45", "", 0)

	breakdown, err := tracker.DayBreakdown(context.Background(), testUser, *entry)
	require.NoError(t, err)
	assert.Zero(t, breakdown.Minutes)
	assert.Empty(t, breakdown.PaidIn)
}

func TestDayBreakdown_UnrosteredDayDetectsShift(t *testing.T) {
	// GIVEN: a worked day in a week with no roster coverage (week 24),
	//        clock-in 09:50 (at or before the 10:15 cutoff means the
	//        early shift)
	// WHEN:  the day breakdown is computed
	// THEN:  the detected shift A window applies: the IN snaps to
	//        09:45 and the early 18:10 OUT rounds down to 18:00

	ctx := context.Background()
	clock := &testClock{}
	clock.Set(t, "2025-06-09 12:00")
	tracker := timesheet.NewTracker(store.NewMemory(), engine.DefaultPolicy(), zap.NewNop(),
		timesheet.WithClock(clock.Now))
	_, err := tracker.CreateWeek(ctx, testUser, 24, timesheet.Date("2025-06-08"), decimal.NewFromFloat(12.70))
	require.NoError(t, err)

	entry := upsert(t, tracker, timesheet.Date("2025-06-09"), "09:50", "18:10", 60)

	breakdown, err := tracker.DayBreakdown(ctx, testUser, *entry)
	require.NoError(t, err)
	assert.Equal(t, "09:45", breakdown.PaidIn)
	assert.Equal(t, "18:00", breakdown.PaidOut)
	assert.True(t, breakdown.Meta.SnapIn)
	assert.True(t, breakdown.Meta.RoundOut)
	assert.Equal(t, 435, breakdown.Minutes)
}

// =============================================================================
// MULTIPLIERS
// =============================================================================

func TestUpsertEntry_FreezesSundayMultiplier(t *testing.T) {
	// GIVEN: a worked Sunday
	// WHEN:  the entry is written
	// THEN:  the 1.5 premium is frozen onto the row

	tracker, _, _ := payFixture(t)
	entry := upsert(t, tracker, timesheet.Date("2025-06-01"), "10:00", "16:00", 0)
	assert.True(t, entry.Multiplier.Equal(decimal.NewFromFloat(1.5)),
		"got %s", entry.Multiplier)
}

func TestUpsertEntry_PaidHolidayBeatsFlatRate(t *testing.T) {
	// GIVEN: Monday 2025-06-02 marked as a paid bank holiday
	// WHEN:  the entry is written
	// THEN:  the 1.0787 holiday premium is frozen onto the row

	tracker, _, mem := payFixture(t)
	markHolidayPaid(t, tracker, mem, timesheet.Date("2025-06-02"))

	entry := upsert(t, tracker, timesheet.Date("2025-06-02"), "09:45", "19:00", 60)
	assert.True(t, entry.Multiplier.Equal(decimal.NewFromFloat(1.0787)),
		"got %s", entry.Multiplier)
}

func TestUpsertEntry_HolidayPaidOverride(t *testing.T) {
	// GIVEN: Monday 2025-06-02 with no paid holiday on file
	// WHEN:  the edit forces the holiday premium on, then back off
	// THEN:  the override wins over the holiday table both ways

	tracker, _, mem := payFixture(t)
	ctx := context.Background()
	week, err := tracker.ActiveWeek(ctx, testUser)
	require.NoError(t, err)

	force := true
	entry, err := tracker.UpsertEntry(ctx, testUser, timesheet.EntryEdit{
		WeekID:      week.ID,
		Date:        timesheet.Date("2025-06-02"),
		TimeIn:      "09:45",
		TimeOut:     "19:00",
		HolidayPaid: &force,
	})
	require.NoError(t, err)
	assert.True(t, entry.Multiplier.Equal(decimal.NewFromFloat(1.0787)),
		"got %s", entry.Multiplier)

	// The table says paid, the edit says no: the edit wins.
	markHolidayPaid(t, tracker, mem, timesheet.Date("2025-06-02"))
	force = false
	entry, err = tracker.UpsertEntry(ctx, testUser, timesheet.EntryEdit{
		WeekID:      week.ID,
		Date:        timesheet.Date("2025-06-02"),
		TimeIn:      "09:45",
		TimeOut:     "19:00",
		HolidayPaid: &force,
	})
	require.NoError(t, err)
	assert.True(t, entry.Multiplier.Equal(decimal.NewFromInt(1)),
		"got %s", entry.Multiplier)
}

func TestMultiplier_FrozenAtWriteSurvivesLaterPatch(t *testing.T) {
	// GIVEN: a Monday entry written while the holiday was still unpaid
	//        (multiplier 1), then the holiday flipped to paid
	// WHEN:  the week report is rebuilt
	// THEN:  the old entry still pays at its frozen multiplier

	tracker, _, mem := payFixture(t)
	ctx := context.Background()

	entry := upsert(t, tracker, timesheet.Date("2025-06-02"), "09:45", "19:00", 60)
	require.True(t, entry.Multiplier.Equal(decimal.NewFromInt(1)))

	markHolidayPaid(t, tracker, mem, timesheet.Date("2025-06-02"))

	report, err := tracker.BuildWeekReport(ctx, testUser, entry.WeekID)
	require.NoError(t, err)
	require.Len(t, report.Days, 1)
	assert.True(t, report.Days[0].Entry.Multiplier.Equal(decimal.NewFromInt(1)),
		"frozen multiplier must not be recomputed by reports")

	// 495 paid minutes at 12.70 flat.
	assert.Equal(t, "104.78", report.TotalPay.StringFixed(2))
}

// =============================================================================
// REPORTS AND DASHBOARD
// =============================================================================

func TestBuildWeekReport_TotalsAcrossDays(t *testing.T) {
	// GIVEN: a Sunday (1.5x, 6h, no break recorded) and a Monday
	//        (flat, full shift A) in the same week
	// WHEN:  the week report is built
	// THEN:  minutes and pay sum over both days with their own
	//        multipliers

	tracker, _, _ := payFixture(t)
	ctx := context.Background()

	// Sunday 10:00-16:00 on a day off needs no roster coverage checks
	// through the manual edit path; break floors to 60.
	sundayEntry := upsert(t, tracker, timesheet.Date("2025-06-01"), "10:00", "16:00", 0)
	upsert(t, tracker, timesheet.Date("2025-06-02"), "09:43", "19:02", 45)

	report, err := tracker.BuildWeekReport(ctx, testUser, sundayEntry.WeekID)
	require.NoError(t, err)
	require.Len(t, report.Days, 2)

	// Sunday: 360 worked - 60 floor = 300 min at 12.70 * 1.5 = 95.25.
	// Monday: 495 min at 12.70 flat = 104.775.
	assert.Equal(t, 795, report.TotalMinutes)
	assert.Equal(t, "200.03", report.TotalPay.StringFixed(2))
}

func TestBuildDashboard_AggregatesAndAllowance(t *testing.T) {
	// GIVEN: one worked Monday (2025-06-02) and a two-holiday 2025
	//        catalog, one holiday today and one in December
	// WHEN:  the dashboard is built
	// THEN:  all-time totals match the week report, the catalog is
	//        lazily seeded, and the allowance counts only holidays
	//        that have already occurred

	tracker, _, _ := payFixture(t)
	ctx := context.Background()

	upsert(t, tracker, timesheet.Date("2025-06-02"), "09:43", "19:02", 45)

	catalog := timesheet.HolidayCatalog{
		2025: {
			{Date: timesheet.Date("2025-06-02"), Name: "June Bank Holiday"},
			{Date: timesheet.Date("2025-12-25"), Name: "Christmas Day"},
		},
	}
	dash, err := tracker.BuildDashboard(ctx, testUser, catalog)
	require.NoError(t, err)

	assert.Equal(t, 495, dash.AllTimeMinutes)
	assert.Equal(t, "104.78", dash.AllTimePay.StringFixed(2))
	require.NotNil(t, dash.ThisWeek)
	assert.Equal(t, 495, dash.ThisWeek.TotalMinutes)

	require.Len(t, dash.Years, 1)
	assert.Equal(t, 2025, dash.Years[0].Year)
	assert.Equal(t, 1, dash.Years[0].Allowance, "December has not occurred yet")
	assert.Equal(t, 0, dash.Years[0].Paid)
	assert.Equal(t, 1, dash.Years[0].NotPaid)
	assert.Equal(t, 1, dash.Remaining)
}

func TestListWeekSummaries_NewestFirst(t *testing.T) {
	// GIVEN: weeks 23 and 24
	// WHEN:  the summaries are listed
	// THEN:  week 24 comes first and each row carries its own totals

	tracker, _, _ := payFixture(t)
	ctx := context.Background()

	_, err := tracker.CreateWeek(ctx, testUser, 24, timesheet.Date("2025-06-08"), decimal.NewFromFloat(13.50))
	require.NoError(t, err)
	upsert(t, tracker, timesheet.Date("2025-06-02"), "09:45", "19:00", 60)

	summaries, err := tracker.ListWeekSummaries(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 24, summaries[0].Week.WeekNumber)
	assert.Zero(t, summaries[0].TotalMinutes)
	assert.Equal(t, 23, summaries[1].Week.WeekNumber)
	assert.Equal(t, 495, summaries[1].TotalMinutes)
}
