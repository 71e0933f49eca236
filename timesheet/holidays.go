/*
holidays.go - The bank-holiday allowance

PURPOSE:
  Each user carries a per-year catalog of public holidays. A holiday is
  "applicable" when it counts toward the user's allowance and "paid"
  once payroll has settled it; a paid holiday on the worked date bumps
  the pay multiplier to the holiday premium.

SEEDING:
  Catalogs are seeded idempotently from configuration, per user per
  year: rows already present keep any paid/applicable edits. Seeding
  runs from the background scheduler and lazily from the dashboard, so
  a fresh account sees its allowance without manual setup.

PATCH RULES:
  - applicable=false also clears paid/paid_date/paid_week: a holiday
    that does not apply cannot stay settled.
  - paid=true stamps paid_date and paid_week; paid=false clears both.
*/
package timesheet

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HolidaySeed is one catalog row: a date and its display name.
type HolidaySeed struct {
	Date Date
	Name string
}

// HolidayCatalog maps years to their public holidays. Injected from
// configuration; the tracker never hard-codes dates.
type HolidayCatalog map[int][]HolidaySeed

// Years lists the catalog's years ascending.
func (c HolidayCatalog) Years() []int {
	years := make([]int, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// EnsureHolidayYear seeds one user's catalog for a year. Safe to call
// any number of times; existing rows are never touched.
func (t *Tracker) EnsureHolidayYear(ctx context.Context, user UserID, year int, seeds []HolidaySeed) error {
	if len(seeds) == 0 {
		return nil
	}
	rows := make([]BankHoliday, 0, len(seeds))
	for _, s := range seeds {
		rows = append(rows, BankHoliday{
			ID:         uuid.NewString(),
			UserID:     user,
			Year:       year,
			Name:       s.Name,
			Date:       s.Date,
			Applicable: true,
			Paid:       false,
		})
	}
	if err := t.store.SeedHolidays(ctx, rows); err != nil {
		return err
	}
	t.log.Debug("holiday catalog ensured",
		zap.String("user", string(user)),
		zap.Int("year", year),
		zap.Int("holidays", len(seeds)))
	return nil
}

// HolidayPatch carries the editable holiday fields. Nil pointers leave
// a field alone.
type HolidayPatch struct {
	Applicable *bool
	Paid       *bool
	PaidDate   Date   // stamped when Paid flips true
	PaidWeekID string // ditto
}

// PatchHoliday applies the allowance edit rules to one holiday.
func (t *Tracker) PatchHoliday(ctx context.Context, user UserID, id string, patch HolidayPatch) (*BankHoliday, error) {
	h, err := t.store.GetHoliday(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if patch.Applicable != nil {
		h.Applicable = *patch.Applicable
		if !h.Applicable {
			// Not applicable cannot stay settled.
			h.Paid = false
			h.PaidDate = ""
			h.PaidWeekID = ""
		}
	}
	if patch.Paid != nil {
		if *patch.Paid {
			h.Paid = true
			h.PaidDate = patch.PaidDate
			h.PaidWeekID = patch.PaidWeekID
		} else {
			h.Paid = false
			h.PaidDate = ""
			h.PaidWeekID = ""
		}
	}

	if err := t.store.UpdateHoliday(ctx, *h); err != nil {
		return nil, err
	}
	return h, nil
}
