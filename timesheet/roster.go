/*
roster.go - Posting and editing schedules

PURPOSE:
  A roster is the weekly schedule as posted in the store: seven codes,
  Sunday through Saturday, each either a catalog shift or OFF. Posting
  a roster also guarantees a pay week exists for that week number, so
  punching works the moment the schedule is in.

RULES:
  - Exactly 7 day codes; anything else is rejected.
  - Codes must name a catalog shift or OFF.
  - Re-posting an identical (week number, start date) pair returns the
    existing roster untouched instead of duplicating it.
  - Day lookups across overlapping rosters pick the most recently
    starting roster (corrections are posted as new rosters).
*/
package timesheet

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/engine"
)

// RosterPost is the result of CreateRoster.
type RosterPost struct {
	Roster  Roster
	WeekID  string
	Created bool // false when an identical roster already existed
}

// CreateRoster validates and stores a week schedule, auto-creating the
// pay week when needed.
func (t *Tracker) CreateRoster(ctx context.Context, user UserID, weekNumber int, start Date, codes []string) (*RosterPost, error) {
	if len(codes) != 7 {
		return nil, &RosterShapeError{Got: len(codes)}
	}
	days, err := t.buildRosterDays(user, start, codes)
	if err != nil {
		return nil, err
	}

	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	var post *RosterPost
	err = t.store.WithTx(ctx, func(s Store) error {
		dup, err := s.FindRoster(ctx, user, weekNumber, start)
		if err != nil {
			return err
		}
		if dup != nil {
			weekID := ""
			if w, err := s.FindWeekByNumber(ctx, user, weekNumber); err != nil {
				return err
			} else if w != nil {
				weekID = w.ID
			}
			post = &RosterPost{Roster: *dup, WeekID: weekID, Created: false}
			return nil
		}

		week, err := t.ensureWeek(ctx, s, user, weekNumber, start)
		if err != nil {
			return err
		}

		r := Roster{
			ID:         uuid.NewString(),
			UserID:     user,
			WeekNumber: weekNumber,
			StartDate:  start,
			CreatedAt:  t.now(),
		}
		for i := range days {
			days[i].RosterID = r.ID
		}
		if err := s.SaveRoster(ctx, r, days); err != nil {
			return err
		}
		post = &RosterPost{Roster: r, WeekID: week.ID, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("roster posted",
		zap.String("user", string(user)),
		zap.Int("week_number", weekNumber),
		zap.String("start", string(start)),
		zap.Bool("created", post.Created))
	return post, nil
}

// PatchRosterDay recodes one day of an existing roster.
func (t *Tracker) PatchRosterDay(ctx context.Context, user UserID, rosterID string, date Date, code string) error {
	shiftIn, shiftOut, dayOff, err := t.decodeDayCode(code)
	if err != nil {
		return err
	}
	if _, err := t.store.GetRoster(ctx, user, rosterID); err != nil {
		return err
	}
	return t.store.UpdateRosterDay(ctx, RosterDay{
		UserID:   user,
		RosterID: rosterID,
		Date:     date,
		ShiftIn:  shiftIn,
		ShiftOut: shiftOut,
		DayOff:   dayOff,
	})
}

// DeleteRoster removes a posted schedule and its day rows.
func (t *Tracker) DeleteRoster(ctx context.Context, user UserID, rosterID string) error {
	lock := t.userLock(user)
	lock.Lock()
	defer lock.Unlock()
	return t.store.DeleteRoster(ctx, user, rosterID)
}

// buildRosterDays expands the seven codes into day rows starting at the
// Sunday start date.
func (t *Tracker) buildRosterDays(user UserID, start Date, codes []string) ([]RosterDay, error) {
	days := make([]RosterDay, 0, 7)
	for i, code := range codes {
		shiftIn, shiftOut, dayOff, err := t.decodeDayCode(code)
		if err != nil {
			return nil, err
		}
		days = append(days, RosterDay{
			ID:       uuid.NewString(),
			UserID:   user,
			Date:     start.AddDays(i),
			ShiftIn:  shiftIn,
			ShiftOut: shiftOut,
			DayOff:   dayOff,
		})
	}
	return days, nil
}

// decodeDayCode maps a roster code onto shift times. OFF carries none.
func (t *Tracker) decodeDayCode(code string) (shiftIn, shiftOut string, dayOff bool, err error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == engine.ShiftCodeOff {
		return "", "", true, nil
	}
	sh, ok := t.policy.ShiftByCode(c)
	if !ok {
		return "", "", false, &engine.UnknownShiftError{Code: code}
	}
	return sh.Start, sh.End, false, nil
}
