/*
reports.go - Derived read models

PURPOSE:
  Aggregations the UI renders: per-week totals, the per-day breakdown
  of a week, and the dashboard (current week, all-time totals and the
  bank-holiday allowance). Everything here is recomputed from stored
  entries on demand; pay uses the week's frozen hourly rate and each
  entry's frozen multiplier, so reports stay stable as policy evolves.
*/
package timesheet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shiftwise/timeclock/engine"
)

// =============================================================================
// WEEK REPORTS
// =============================================================================

// WeekSummary is one row of the weeks list.
type WeekSummary struct {
	Week         Week
	TotalMinutes int
	TotalPay     decimal.Decimal
}

// DayReport couples an entry with its derived pay.
type DayReport struct {
	Entry     Entry
	Breakdown PaidBreakdown
	Pay       decimal.Decimal
}

// WeekReport is the full week view: every day plus totals.
type WeekReport struct {
	Week         Week
	Days         []DayReport
	TotalMinutes int
	TotalPay     decimal.Decimal
}

// ListWeekSummaries renders the weeks list, newest first, each with its
// recomputed totals.
func (t *Tracker) ListWeekSummaries(ctx context.Context, user UserID) ([]WeekSummary, error) {
	weeks, err := t.store.ListWeeks(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]WeekSummary, 0, len(weeks))
	for _, w := range weeks {
		minutes, pay, err := t.weekTotals(ctx, user, w)
		if err != nil {
			return nil, err
		}
		out = append(out, WeekSummary{Week: w, TotalMinutes: minutes, TotalPay: pay})
	}
	return out, nil
}

// BuildWeekReport renders one week with its per-day breakdowns.
func (t *Tracker) BuildWeekReport(ctx context.Context, user UserID, weekID string) (*WeekReport, error) {
	w, err := t.store.GetWeek(ctx, user, weekID)
	if err != nil {
		return nil, err
	}
	return t.buildReport(ctx, user, *w)
}

// CurrentWeekReport renders the week containing today, falling back to
// the latest week when none does. (nil, nil) when the user has no weeks.
func (t *Tracker) CurrentWeekReport(ctx context.Context, user UserID) (*WeekReport, error) {
	w, err := t.currentReportWeek(ctx, user)
	if err != nil || w == nil {
		return nil, err
	}
	return t.buildReport(ctx, user, *w)
}

func (t *Tracker) currentReportWeek(ctx context.Context, user UserID) (*Week, error) {
	weeks, err := t.store.ListWeeks(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(weeks) == 0 {
		return nil, nil
	}
	today, _ := t.todayNow()

	var containing, latest *Week
	for i := range weeks {
		w := &weeks[i]
		if w.Contains(today) && (containing == nil || containing.StartDate.Before(w.StartDate)) {
			containing = w
		}
		if latest == nil || latest.StartDate.Before(w.StartDate) {
			latest = w
		}
	}
	if containing != nil {
		return containing, nil
	}
	return latest, nil
}

func (t *Tracker) buildReport(ctx context.Context, user UserID, w Week) (*WeekReport, error) {
	entries, err := t.store.ListEntries(ctx, user, w.ID)
	if err != nil {
		return nil, err
	}

	report := &WeekReport{Week: w, Days: make([]DayReport, 0, len(entries)), TotalPay: decimal.Zero}
	for _, e := range entries {
		bd, err := t.DayBreakdown(ctx, user, e)
		if err != nil {
			return nil, err
		}
		pay := engine.Pay(bd.Minutes, w.HourlyRate, e.Multiplier)
		report.Days = append(report.Days, DayReport{Entry: e, Breakdown: bd, Pay: pay})
		report.TotalMinutes += bd.Minutes
		report.TotalPay = report.TotalPay.Add(pay)
	}
	return report, nil
}

func (t *Tracker) weekTotals(ctx context.Context, user UserID, w Week) (int, decimal.Decimal, error) {
	entries, err := t.store.ListEntries(ctx, user, w.ID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	minutes := 0
	pay := decimal.Zero
	for _, e := range entries {
		bd, err := t.DayBreakdown(ctx, user, e)
		if err != nil {
			return 0, decimal.Zero, err
		}
		minutes += bd.Minutes
		pay = pay.Add(engine.Pay(bd.Minutes, w.HourlyRate, e.Multiplier))
	}
	return minutes, pay, nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// YearAllowance is the bank-holiday ledger for one year: holidays that
// are applicable and already due (date not in the future).
type YearAllowance struct {
	Year      int
	Allowance int
	Paid      int
	NotPaid   int
}

// Dashboard is the landing-page aggregate.
type Dashboard struct {
	ThisWeek       *WeekSummary // nil when the user has no weeks
	AllTimeMinutes int
	AllTimePay     decimal.Decimal
	Years          []YearAllowance
	Allowance      int
	PaidCount      int
	Remaining      int
}

// BuildDashboard computes the landing-page aggregate, lazily seeding
// the holiday catalogs it reports on.
func (t *Tracker) BuildDashboard(ctx context.Context, user UserID, catalog HolidayCatalog) (*Dashboard, error) {
	d := &Dashboard{AllTimePay: decimal.Zero}

	weeks, err := t.store.ListWeeks(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, w := range weeks {
		minutes, pay, err := t.weekTotals(ctx, user, w)
		if err != nil {
			return nil, err
		}
		d.AllTimeMinutes += minutes
		d.AllTimePay = d.AllTimePay.Add(pay)
	}

	today, _ := t.todayNow()
	current := activeWeekFor(weeks, today)
	if current != nil {
		minutes, pay, err := t.weekTotals(ctx, user, *current)
		if err != nil {
			return nil, err
		}
		d.ThisWeek = &WeekSummary{Week: *current, TotalMinutes: minutes, TotalPay: pay}
	}

	for _, year := range catalog.Years() {
		if err := t.EnsureHolidayYear(ctx, user, year, catalog[year]); err != nil {
			return nil, err
		}
		hs, err := t.store.ListHolidays(ctx, user, year)
		if err != nil {
			return nil, err
		}
		ya := YearAllowance{Year: year}
		for _, h := range hs {
			if !h.Applicable || h.Date.After(today) {
				continue
			}
			ya.Allowance++
			if h.Paid {
				ya.Paid++
			}
		}
		ya.NotPaid = ya.Allowance - ya.Paid
		d.Years = append(d.Years, ya)
		d.Allowance += ya.Allowance
		d.PaidCount += ya.Paid
	}
	d.Remaining = d.Allowance - d.PaidCount

	return d, nil
}
