/*
paycalc.go - Payable time for stored entries

PURPOSE:
  Bridges stored records to the engine calculators: resolve the
  official shift for the entry's date, compute the paid window from the
  stored real punches, deduct the effective break and produce the
  minutes plus the audit metadata.

  Paid times are derived on every read and never stored; the entry
  stays the single source of truth, so recomputation from the same
  stored fields always reproduces the same result.

DEGRADATION:
  Payroll must always produce a number. Incomplete days (a punch
  missing) and windows consumed by the break yield zero minutes;
  corrupt stored times are logged and yield zero rather than failing a
  whole report. Storage failures propagate.
*/
package timesheet

import (
	"context"

	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/engine"
)

// PaidBreakdown is the derived pay view of one entry. The paid times
// are clock-face HH:MM (overnight windows wrap for display).
type PaidBreakdown struct {
	Minutes        int
	PaidIn         string // "" when the day has no paid window
	PaidOut        string
	BreakEffective int
	Meta           engine.WindowMeta
}

// DayBreakdown computes the payable minutes for one entry from its
// stored fields.
func (t *Tracker) DayBreakdown(ctx context.Context, user UserID, e Entry) (PaidBreakdown, error) {
	if e.TimeIn == "" || e.TimeOut == "" {
		return PaidBreakdown{}, nil
	}

	day, err := t.store.RosterDayOn(ctx, user, e.Date)
	if err != nil {
		return PaidBreakdown{}, err
	}

	officialIn, officialOut := "", ""
	if sh := t.resolveOfficial(day, e.TimeIn); sh != nil {
		officialIn, officialOut = sh.Start, sh.End
	}

	win, meta, err := t.policy.ComputePaidWindow(officialIn, officialOut, e.TimeIn, e.TimeOut, e.ExtraAuthorized)
	if err != nil {
		if engine.IsInvalidInput(err) {
			t.log.Warn("corrupt stored punch, paying zero",
				zap.String("user", string(user)),
				zap.String("date", string(e.Date)),
				zap.Error(err))
			return PaidBreakdown{Meta: meta}, nil
		}
		return PaidBreakdown{}, err
	}
	if win == nil {
		return PaidBreakdown{Meta: meta}, nil
	}

	br := t.policy.EffectiveBreak(true, true, e.BreakMinutes)
	return PaidBreakdown{
		Minutes:        engine.PayableMinutes(win, br),
		PaidIn:         engine.ToHHMM(win.In % engine.MinutesPerDay),
		PaidOut:        engine.ToHHMM(win.Out % engine.MinutesPerDay),
		BreakEffective: br,
		Meta:           meta,
	}, nil
}
