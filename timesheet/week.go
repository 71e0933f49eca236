package timesheet

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// WEEK RESOLUTION
// =============================================================================

// ActiveWeek picks the week punches should land in:
//  1. the week containing today, else
//  2. the most recently started past week, else
//  3. the earliest future week.
//
// (nil, nil) when the user has no weeks at all; punch paths turn that
// into ErrNoActiveWeek, read paths render "create a week first".
func (t *Tracker) ActiveWeek(ctx context.Context, user UserID) (*Week, error) {
	weeks, err := t.store.ListWeeks(ctx, user)
	if err != nil {
		return nil, err
	}
	today, _ := t.todayNow()
	return activeWeekFor(weeks, today), nil
}

func activeWeekFor(weeks []Week, today Date) *Week {
	if len(weeks) == 0 {
		return nil
	}
	byStart := make([]Week, len(weeks))
	copy(byStart, weeks)
	sort.Slice(byStart, func(i, j int) bool { return byStart[i].StartDate.Before(byStart[j].StartDate) })

	for i := range byStart {
		if byStart[i].Contains(today) {
			return &byStart[i]
		}
	}

	var latestPast *Week
	for i := range byStart {
		if !byStart[i].StartDate.After(today) {
			latestPast = &byStart[i]
		}
	}
	if latestPast != nil {
		return latestPast
	}

	// All weeks are in the future: the earliest one stands in.
	return &byStart[0]
}

// =============================================================================
// WEEK CREATION
// =============================================================================

// CreateWeek records a new pay week with an explicit hourly rate.
func (t *Tracker) CreateWeek(ctx context.Context, user UserID, weekNumber int, start Date, rate decimal.Decimal) (*Week, error) {
	w := Week{
		ID:         uuid.NewString(),
		UserID:     user,
		WeekNumber: weekNumber,
		StartDate:  start,
		HourlyRate: rate,
		CreatedAt:  t.now(),
	}
	if err := t.store.SaveWeek(ctx, w); err != nil {
		return nil, err
	}
	t.log.Info("week created",
		zap.String("user", string(user)),
		zap.Int("week_number", weekNumber),
		zap.String("start", string(start)))
	return &w, nil
}

// UpdateHourlyRate repoints a week's frozen rate. Reports recompute pay
// from the new rate on the next read; stored entries are untouched.
func (t *Tracker) UpdateHourlyRate(ctx context.Context, user UserID, weekID string, rate decimal.Decimal) (*Week, error) {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	w, err := t.store.GetWeek(ctx, user, weekID)
	if err != nil {
		return nil, err
	}
	w.HourlyRate = rate
	if err := t.store.SaveWeek(ctx, *w); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWeek removes a week; its entries cascade with it.
func (t *Tracker) DeleteWeek(ctx context.Context, user UserID, weekID string) error {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()
	return t.store.DeleteWeek(ctx, user, weekID)
}

// ensureWeek returns the week with the given number, creating it when
// missing. Auto-created weeks inherit the hourly rate of the latest
// existing week so posting a roster never zeroes anyone's pay.
func (t *Tracker) ensureWeek(ctx context.Context, s Store, user UserID, weekNumber int, start Date) (*Week, error) {
	if w, err := s.FindWeekByNumber(ctx, user, weekNumber); err != nil {
		return nil, err
	} else if w != nil {
		return w, nil
	}

	rate := decimal.Zero
	if last, err := s.LatestWeek(ctx, user); err != nil {
		return nil, err
	} else if last != nil {
		rate = last.HourlyRate
	}

	w := Week{
		ID:         uuid.NewString(),
		UserID:     user,
		WeekNumber: weekNumber,
		StartDate:  start,
		HourlyRate: rate,
		CreatedAt:  t.now(),
	}
	if err := s.SaveWeek(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}
