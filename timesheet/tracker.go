/*
tracker.go - The stateful heart of the timesheet domain

PURPOSE:
  Tracker owns every mutation of timesheet records: punches, break
  toggles, confirmations, entry edits, roster posting and holiday
  seeding. It serializes concurrent operations per user and keeps the
  WorkDay Entry and its Clock State mirror consistent by grouping their
  writes in one transaction.

CONCURRENCY:
  Two rules, both enforced here and nowhere else:
  1. Per-user serialization: a keyed mutex guarantees at most one
     mutating operation per user at a time, so double-submitted punches
     cannot interleave.
  2. Entry+state atomicity: any operation touching both records runs
     under TxStore.WithTx.

TIME:
  "Now" is injected (WithClock) so the state machine is testable at any
  simulated wall-clock instant. Everything downstream derives from it:
  today's date, the punch HH:MM, break elapsed minutes.

SEE ALSO:
  - clock.go: the punch state machine built on these helpers
  - engine/: the pure calculators invoked here
*/
package timesheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/engine"
)

// Tracker coordinates all timesheet mutations for all users.
type Tracker struct {
	store  TxStore
	policy engine.Policy
	log    *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[UserID]*sync.Mutex
}

// Option tweaks a Tracker at construction time.
type Option func(*Tracker)

// WithClock injects the wall-clock source. Tests pin it to simulate
// punches at exact instants.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker wires a Tracker over a transactional store. A nil logger
// disables logging.
func NewTracker(store TxStore, policy engine.Policy, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		store:  store,
		policy: policy,
		log:    log,
		now:    time.Now,
		locks:  make(map[UserID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policy returns the pay policy the tracker was built with.
func (t *Tracker) Policy() engine.Policy { return t.policy }

// userLock returns the mutex serializing this user's mutations.
func (t *Tracker) userLock(user UserID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[user]
	if !ok {
		l = &sync.Mutex{}
		t.locks[user] = l
	}
	return l
}

// todayNow snapshots the injected clock once per operation: the
// calendar day and the HH:MM punch value derived from the same instant.
func (t *Tracker) todayNow() (Date, string) {
	now := t.now()
	return DateOf(now), now.Format("15:04")
}

// elapsedMinutes is whole minutes from start to now, floored, never
// negative (clock skew must not produce negative breaks).
func elapsedMinutes(now, start time.Time) int {
	m := int(now.Sub(start).Minutes())
	if m < 0 {
		return 0
	}
	return m
}

// =============================================================================
// MULTIPLIER
// =============================================================================

// multiplierFor picks the premium for a date: paid public holiday beats
// Sunday beats flat. Frozen onto the entry by every write path so old
// payslips survive later rule changes.
func (t *Tracker) multiplierFor(ctx context.Context, s Store, user UserID, date Date) (decimal.Decimal, error) {
	return t.multiplierWith(ctx, s, user, date, nil)
}

// multiplierWith is multiplierFor with an optional manual override of
// the holiday-paid flag, used by day edits that force the premium on
// or off regardless of the holiday table.
func (t *Tracker) multiplierWith(ctx context.Context, s Store, user UserID, date Date, holidayPaid *bool) (decimal.Decimal, error) {
	var paid bool
	if holidayPaid != nil {
		paid = *holidayPaid
	} else {
		h, err := s.HolidayOn(ctx, user, date)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("holiday lookup for %s: %w", date, err)
		}
		paid = h != nil && h.Paid
	}

	wt, err := date.Time()
	if err != nil {
		// A malformed stored date pays flat rather than failing payroll.
		return decimal.NewFromInt(1), nil
	}
	return t.policy.Multiplier(wt.Weekday(), paid), nil
}

// MultiplierForDate is the read-only lookup used by day views.
func (t *Tracker) MultiplierForDate(ctx context.Context, user UserID, date Date) (decimal.Decimal, error) {
	return t.multiplierFor(ctx, t.store, user, date)
}

// =============================================================================
// ENTRIES
// =============================================================================

// getOrCreateEntry returns the unique entry for (week, date), creating
// an empty one with a frozen multiplier on first touch.
func (t *Tracker) getOrCreateEntry(ctx context.Context, s Store, user UserID, weekID string, date Date) (*Entry, error) {
	e, err := s.FindEntry(ctx, user, weekID, date)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	mult, err := t.multiplierFor(ctx, s, user, date)
	if err != nil {
		return nil, err
	}
	fresh := Entry{
		ID:         uuid.NewString(),
		UserID:     user,
		WeekID:     weekID,
		Date:       date,
		Multiplier: mult,
		CreatedAt:  t.now(),
	}
	if err := s.SaveEntry(ctx, fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

// EntryEdit is a manual edit of one day, as submitted by the week view.
// HolidayPaid, when set, forces the holiday premium on or off instead
// of consulting the holiday table.
type EntryEdit struct {
	WeekID       string
	Date         Date
	TimeIn       string
	TimeOut      string
	BreakMinutes int
	Note         string
	HolidayPaid  *bool
}

// UpsertEntry writes a day entry from a manual edit. The multiplier is
// recomputed and refrozen; confirmation flags survive the edit. When
// the edited day is today and a clock-state row for today exists, the
// mirror fields (week, in, out, break minutes) are resynced. The merge
// deliberately skips break_running/break_start so an in-progress break
// survives the edit.
func (t *Tracker) UpsertEntry(ctx context.Context, user UserID, edit EntryEdit) (*Entry, error) {
	for _, v := range []string{edit.TimeIn, edit.TimeOut} {
		if v == "" {
			continue
		}
		if _, err := engine.ToMinutes(v); err != nil {
			return nil, err
		}
	}
	if edit.BreakMinutes < 0 {
		edit.BreakMinutes = 0
	}

	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	if _, err := t.store.GetWeek(ctx, user, edit.WeekID); err != nil {
		return nil, err
	}

	today, _ := t.todayNow()

	var saved Entry
	err := t.store.WithTx(ctx, func(s Store) error {
		mult, err := t.multiplierWith(ctx, s, user, edit.Date, edit.HolidayPaid)
		if err != nil {
			return err
		}

		existing, err := s.FindEntry(ctx, user, edit.WeekID, edit.Date)
		if err != nil {
			return err
		}

		e := Entry{
			ID:         uuid.NewString(),
			UserID:     user,
			WeekID:     edit.WeekID,
			Date:       edit.Date,
			CreatedAt:  t.now(),
			Multiplier: mult,
		}
		if existing != nil {
			e.ID = existing.ID
			e.CreatedAt = existing.CreatedAt
			e.ExtraChecked = existing.ExtraChecked
			e.ExtraAuthorized = existing.ExtraAuthorized
		}
		e.TimeIn = edit.TimeIn
		e.TimeOut = edit.TimeOut
		e.BreakMinutes = edit.BreakMinutes
		e.Note = edit.Note

		if err := s.SaveEntry(ctx, e); err != nil {
			return err
		}

		if edit.Date == today {
			if err := t.resyncClockState(ctx, s, user, e); err != nil {
				return err
			}
		}

		saved = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Debug("entry upserted",
		zap.String("user", string(user)),
		zap.String("date", string(saved.Date)),
		zap.String("multiplier", saved.Multiplier.String()))
	return &saved, nil
}

// DeleteEntry removes one day record. When the deleted day is today,
// the clock-state mirror is emptied the same merge-only way an edit
// resyncs it: an in-progress break keeps running.
func (t *Tracker) DeleteEntry(ctx context.Context, user UserID, id string) error {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	entry, err := t.store.GetEntry(ctx, user, id)
	if err != nil {
		return err
	}
	today, _ := t.todayNow()

	return t.store.WithTx(ctx, func(s Store) error {
		if err := s.DeleteEntry(ctx, user, id); err != nil {
			return err
		}
		if entry.Date != today {
			return nil
		}
		cleared := *entry
		cleared.TimeIn = ""
		cleared.TimeOut = ""
		cleared.BreakMinutes = 0
		return t.resyncClockState(ctx, s, user, cleared)
	})
}

// resyncClockState merges an edited entry into an existing clock-state
// row for the same date. Never creates a row and never touches the
// break ownership fields.
func (t *Tracker) resyncClockState(ctx context.Context, s Store, user UserID, e Entry) error {
	st, err := s.GetClockState(ctx, user)
	if err != nil {
		return err
	}
	if st == nil || st.Date != e.Date {
		return nil
	}
	st.WeekID = e.WeekID
	st.InTime = e.TimeIn
	st.OutTime = e.TimeOut
	st.BreakMinutes = e.BreakMinutes
	st.UpdatedAt = t.now()
	return s.SaveClockState(ctx, *st)
}
