package timesheet

import (
	"context"

	"github.com/shiftwise/timeclock/engine"
)

// =============================================================================
// OFFICIAL SHIFT RESOLUTION
// =============================================================================

// ResolveOfficialShift determines the official window for a date:
//
//   - a rostered working day returns its shift times;
//   - a rostered day OFF returns nil: any punch on it is presumptively
//     overtime and there is nothing to snap or cap against;
//   - an unrostered date falls back to detecting the shift from the
//     real clock-in against the catalog cutoff, so the system stays
//     usable before a roster is entered. The fallback cannot tell an
//     authorized early arrival from a different shift; rostered days
//     always win.
//
// realIn is the recorded real in-time ("" disables the fallback).
func (t *Tracker) ResolveOfficialShift(ctx context.Context, user UserID, date Date, realIn string) (*engine.Shift, error) {
	day, err := t.store.RosterDayOn(ctx, user, date)
	if err != nil {
		return nil, err
	}
	return t.resolveOfficial(day, realIn), nil
}

// resolveOfficial is the pure half, reused inside transactions.
func (t *Tracker) resolveOfficial(day *RosterDay, realIn string) *engine.Shift {
	if day != nil {
		if day.DayOff {
			return nil
		}
		return &engine.Shift{Start: day.ShiftIn, End: day.ShiftOut}
	}
	if sh, ok := t.policy.DetectShift(realIn); ok {
		return &sh
	}
	return nil
}
