/*
clock.go - The punch state machine

PURPOSE:
  Implements the live clock: IN and OUT punches, the break toggle, the
  two-step confirmation protocol for out-of-shift punches, and the
  today view the clock UI polls.

STATES (per user, per day):
  Idle -> ClockedIn -> OnBreak <-> ClockedIn -> ClockedOut
  A new calendar day resets the machine to Idle; staleness is detected
  by comparing the stored state's date to today, and a stale record is
  reset (break cleared) before any further mutation.

CONFIRMATION PROTOCOL:
  A punch that needs human authorization (day-off, early IN, late OUT)
  commits NOTHING beyond the lazily created day entry. Instead the
  caller receives a PendingConfirm carrying all data needed to ask the
  question and resubmit; the machine keeps no pending state of its own.
  The answer arrives via ConfirmExtra, which only flips the entry's
  confirmation flags. The client then resubmits the punch, which now
  passes the authorization gate. A confirmation repeating an answer
  already recorded is a stale no-op.

  Unauthorized day-off punches are silently ignored (the day is treated
  as not worked). Unauthorized deviations commit the OFFICIAL time, so
  overtime never leaks into pay without a yes.
*/
package timesheet

import (
	"context"

	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/engine"
)

// =============================================================================
// RESULTS
// =============================================================================

// PunchOutcome says what a punch did.
type PunchOutcome string

const (
	// OutcomeCommitted: the punch was stored.
	OutcomeCommitted PunchOutcome = "committed"
	// OutcomePending: nothing stored; the caller must confirm and resubmit.
	OutcomePending PunchOutcome = "pending"
	// OutcomeIgnored: a confirmed-unauthorized day-off punch; treated
	// as not worked.
	OutcomeIgnored PunchOutcome = "ignored"
)

// ConfirmReason names the question the employee must answer.
type ConfirmReason string

const (
	ReasonDayOff  ConfirmReason = "DAY_OFF"
	ReasonEarlyIn ConfirmReason = "EARLY_IN"
	ReasonLateOut ConfirmReason = "LATE_OUT"
)

// PendingConfirm is the value object handed back when a punch needs
// authorization. It carries everything required to ask and to resubmit;
// the server persists nothing about it.
type PendingConfirm struct {
	Kind     engine.PunchKind
	Reason   ConfirmReason
	Date     Date
	Official string // "" on a day off: there is no official window
	Real     string
}

// PunchResult is the outcome of a ClockIn or ClockOut.
type PunchResult struct {
	Outcome PunchOutcome
	Date    Date
	Stored  string        // committed only: the HH:MM written down
	Reason  ConfirmReason // ignored only
	Pending *PendingConfirm
}

// BreakResult is the outcome of a break toggle.
type BreakResult struct {
	Running      bool
	BreakMinutes int
}

// TodayView is the state the clock UI renders.
type TodayView struct {
	HasWeek      bool
	WeekID       string
	Date         Date
	InTime       string
	OutTime      string
	BreakMinutes int
	BreakRunning bool
}

// =============================================================================
// PUNCHES
// =============================================================================

// ClockIn records an IN punch at the injected "now". Committing sets
// the entry's in-time, clears its out-time (a new IN restarts the day),
// refreezes the multiplier and rewrites the clock-state mirror with the
// break stopped.
func (t *Tracker) ClockIn(ctx context.Context, user UserID) (*PunchResult, error) {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	week, err := t.requireActiveWeek(ctx, user)
	if err != nil {
		return nil, err
	}
	today, realNow := t.todayNow()

	var res *PunchResult
	err = t.store.WithTx(ctx, func(s Store) error {
		entry, err := t.getOrCreateEntry(ctx, s, user, week.ID, today)
		if err != nil {
			return err
		}
		day, err := s.RosterDayOn(ctx, user, today)
		if err != nil {
			return err
		}

		if r := gateDayOff(engine.PunchIn, day, entry, today, realNow); r != nil {
			res = r
			return nil
		}

		official := ""
		if day != nil {
			official = day.ShiftIn
		}
		stored, needsConfirm, err := t.policy.DecideStoredPunch(engine.PunchIn, realNow, official, entry.ExtraAuthorized)
		if err != nil {
			return err
		}
		if needsConfirm && !entry.ExtraChecked {
			res = &PunchResult{
				Outcome: OutcomePending,
				Date:    today,
				Pending: &PendingConfirm{
					Kind:     engine.PunchIn,
					Reason:   ReasonEarlyIn,
					Date:     today,
					Official: official,
					Real:     realNow,
				},
			}
			return nil
		}

		mult, err := t.multiplierFor(ctx, s, user, today)
		if err != nil {
			return err
		}
		entry.TimeIn = stored
		entry.TimeOut = ""
		entry.Multiplier = mult
		if err := s.SaveEntry(ctx, *entry); err != nil {
			return err
		}

		st := ClockState{
			UserID:       user,
			WeekID:       week.ID,
			Date:         today,
			InTime:       stored,
			OutTime:      "",
			BreakRunning: false,
			BreakStart:   nil,
			BreakMinutes: entry.BreakMinutes,
			UpdatedAt:    t.now(),
		}
		if err := s.SaveClockState(ctx, st); err != nil {
			return err
		}
		res = &PunchResult{Outcome: OutcomeCommitted, Date: today, Stored: stored}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logPunch(user, engine.PunchIn, today, realNow, res)
	return res, nil
}

// ClockOut records an OUT punch. Before committing it auto-stops a
// break still running today, folding the elapsed minutes into both
// records, so forgetting to end a break never inflates paid time.
func (t *Tracker) ClockOut(ctx context.Context, user UserID) (*PunchResult, error) {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	week, err := t.requireActiveWeek(ctx, user)
	if err != nil {
		return nil, err
	}
	today, realNow := t.todayNow()

	var res *PunchResult
	err = t.store.WithTx(ctx, func(s Store) error {
		entry, err := t.getOrCreateEntry(ctx, s, user, week.ID, today)
		if err != nil {
			return err
		}
		day, err := s.RosterDayOn(ctx, user, today)
		if err != nil {
			return err
		}

		if r := gateDayOff(engine.PunchOut, day, entry, today, realNow); r != nil {
			res = r
			return nil
		}

		official := ""
		if day != nil {
			official = day.ShiftOut
		}
		stored, needsConfirm, err := t.policy.DecideStoredPunch(engine.PunchOut, realNow, official, entry.ExtraAuthorized)
		if err != nil {
			return err
		}
		if needsConfirm && !entry.ExtraChecked {
			res = &PunchResult{
				Outcome: OutcomePending,
				Date:    today,
				Pending: &PendingConfirm{
					Kind:     engine.PunchOut,
					Reason:   ReasonLateOut,
					Date:     today,
					Official: official,
					Real:     realNow,
				},
			}
			return nil
		}

		// Auto-stop a break still running today. A stale row from a
		// previous day is ignored; its break belongs to that day.
		st, err := s.GetClockState(ctx, user)
		if err != nil {
			return err
		}
		if st != nil && st.Date == today && st.BreakRunning && st.BreakStart != nil {
			entry.BreakMinutes = st.BreakMinutes + elapsedMinutes(t.now(), *st.BreakStart)
		}

		mult, err := t.multiplierFor(ctx, s, user, today)
		if err != nil {
			return err
		}
		entry.TimeOut = stored
		entry.Multiplier = mult
		if err := s.SaveEntry(ctx, *entry); err != nil {
			return err
		}

		fresh := ClockState{
			UserID:       user,
			WeekID:       week.ID,
			Date:         today,
			InTime:       entry.TimeIn,
			OutTime:      stored,
			BreakRunning: false,
			BreakStart:   nil,
			BreakMinutes: entry.BreakMinutes,
			UpdatedAt:    t.now(),
		}
		if err := s.SaveClockState(ctx, fresh); err != nil {
			return err
		}
		res = &PunchResult{Outcome: OutcomeCommitted, Date: today, Stored: stored}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logPunch(user, engine.PunchOut, today, realNow, res)
	return res, nil
}

// gateDayOff applies the day-off protocol shared by both punch kinds:
// ask once, then either proceed (authorized) or ignore (unauthorized).
func gateDayOff(kind engine.PunchKind, day *RosterDay, entry *Entry, today Date, realNow string) *PunchResult {
	if day == nil || !day.DayOff {
		return nil
	}
	if !entry.ExtraChecked {
		return &PunchResult{
			Outcome: OutcomePending,
			Date:    today,
			Pending: &PendingConfirm{
				Kind:   kind,
				Reason: ReasonDayOff,
				Date:   today,
				Real:   realNow,
			},
		}
	}
	if !entry.ExtraAuthorized {
		return &PunchResult{Outcome: OutcomeIgnored, Date: today, Reason: ReasonDayOff}
	}
	return nil
}

// =============================================================================
// BREAK TOGGLE
// =============================================================================

// ToggleBreak starts a break, or stops the running one and folds the
// elapsed minutes into the entry and the mirror. A running flag without
// a start timestamp is repaired by just clearing the flag.
func (t *Tracker) ToggleBreak(ctx context.Context, user UserID) (*BreakResult, error) {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	week, err := t.requireActiveWeek(ctx, user)
	if err != nil {
		return nil, err
	}
	today, _ := t.todayNow()

	var res *BreakResult
	err = t.store.WithTx(ctx, func(s Store) error {
		entry, err := t.getOrCreateEntry(ctx, s, user, week.ID, today)
		if err != nil {
			return err
		}

		st, err := s.GetClockState(ctx, user)
		if err != nil {
			return err
		}
		if st == nil || st.Date != today {
			st = t.freshState(user, week.ID, *entry)
		}

		switch {
		case !st.BreakRunning:
			start := t.now()
			st.BreakRunning = true
			st.BreakStart = &start

		case st.BreakStart == nil:
			// Inconsistent row: running with no start. Clear the flag.
			st.BreakRunning = false

		default:
			st.BreakMinutes += elapsedMinutes(t.now(), *st.BreakStart)
			st.BreakRunning = false
			st.BreakStart = nil
			entry.BreakMinutes = st.BreakMinutes
			if err := s.SaveEntry(ctx, *entry); err != nil {
				return err
			}
		}

		st.UpdatedAt = t.now()
		if err := s.SaveClockState(ctx, *st); err != nil {
			return err
		}
		res = &BreakResult{Running: st.BreakRunning, BreakMinutes: st.BreakMinutes}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("break toggled",
		zap.String("user", string(user)),
		zap.Bool("running", res.Running),
		zap.Int("break_minutes", res.BreakMinutes))
	return res, nil
}

// =============================================================================
// CONFIRMATION
// =============================================================================

// ConfirmExtra records the employee's answer to a pending confirmation
// for the given date: authorized punches keep real times, unauthorized
// day-off punches are ignored and unauthorized deviations are capped.
// The punch itself must be resubmitted by the caller. Repeating an
// answer already recorded is a stale no-op; applied reports whether
// anything changed.
func (t *Tracker) ConfirmExtra(ctx context.Context, user UserID, date Date, authorized bool) (applied bool, err error) {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	week, err := t.requireActiveWeek(ctx, user)
	if err != nil {
		return false, err
	}

	err = t.store.WithTx(ctx, func(s Store) error {
		entry, err := t.getOrCreateEntry(ctx, s, user, week.ID, date)
		if err != nil {
			return err
		}
		if entry.ExtraChecked && entry.ExtraAuthorized == authorized {
			return nil // stale: same answer already on file
		}
		entry.ExtraChecked = true
		entry.ExtraAuthorized = authorized
		applied = true
		return s.SaveEntry(ctx, *entry)
	})
	if err != nil {
		return false, err
	}

	t.log.Info("extra confirm recorded",
		zap.String("user", string(user)),
		zap.String("date", string(date)),
		zap.Bool("authorized", authorized),
		zap.Bool("applied", applied))
	return applied, nil
}

// =============================================================================
// TODAY VIEW
// =============================================================================

// TodayState returns the live clock state for today, repairing it on
// the way out: a missing or stale row is rebuilt from today's entry
// with the break stopped; a current row has its mirror fields refreshed
// from the entry while break_running/break_start are preserved.
func (t *Tracker) TodayState(ctx context.Context, user UserID) (*TodayView, error) {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	week, err := t.ActiveWeek(ctx, user)
	if err != nil {
		return nil, err
	}
	if week == nil {
		return &TodayView{HasWeek: false}, nil
	}
	today, _ := t.todayNow()

	var view *TodayView
	err = t.store.WithTx(ctx, func(s Store) error {
		entry, err := t.getOrCreateEntry(ctx, s, user, week.ID, today)
		if err != nil {
			return err
		}

		st, err := s.GetClockState(ctx, user)
		if err != nil {
			return err
		}
		if st == nil || st.Date != today {
			st = t.freshState(user, week.ID, *entry)
		} else {
			st.WeekID = week.ID
			st.InTime = entry.TimeIn
			st.OutTime = entry.TimeOut
			st.BreakMinutes = entry.BreakMinutes
		}
		st.UpdatedAt = t.now()
		if err := s.SaveClockState(ctx, *st); err != nil {
			return err
		}

		view = &TodayView{
			HasWeek:      true,
			WeekID:       week.ID,
			Date:         today,
			InTime:       st.InTime,
			OutTime:      st.OutTime,
			BreakMinutes: st.BreakMinutes,
			BreakRunning: st.BreakRunning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// freshState builds a reset mirror of an entry: break stopped, start
// cleared. Used whenever the stored state is missing or from a past day.
func (t *Tracker) freshState(user UserID, weekID string, e Entry) *ClockState {
	return &ClockState{
		UserID:       user,
		WeekID:       weekID,
		Date:         e.Date,
		InTime:       e.TimeIn,
		OutTime:      e.TimeOut,
		BreakRunning: false,
		BreakStart:   nil,
		BreakMinutes: e.BreakMinutes,
		UpdatedAt:    t.now(),
	}
}

// requireActiveWeek converts "no week" into the fatal punch error.
func (t *Tracker) requireActiveWeek(ctx context.Context, user UserID) (*Week, error) {
	week, err := t.ActiveWeek(ctx, user)
	if err != nil {
		return nil, err
	}
	if week == nil {
		return nil, ErrNoActiveWeek
	}
	return week, nil
}

func (t *Tracker) logPunch(user UserID, kind engine.PunchKind, date Date, real string, res *PunchResult) {
	fields := []zap.Field{
		zap.String("user", string(user)),
		zap.String("kind", string(kind)),
		zap.String("date", string(date)),
		zap.String("real", real),
		zap.String("outcome", string(res.Outcome)),
	}
	if res.Outcome == OutcomeCommitted {
		fields = append(fields, zap.String("stored", res.Stored))
	}
	if res.Pending != nil {
		fields = append(fields, zap.String("reason", string(res.Pending.Reason)))
	}
	t.log.Info("punch", fields...)
}
