// Package store provides an in-memory timesheet.TxStore for tests and
// local development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shiftwise/timeclock/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every record in maps keyed by record ID (clock state by
// user, chat links by chat). Public methods lock; the unexported
// *Locked internals run without the lock so the transactional view can
// reuse them.
type Memory struct {
	mu sync.RWMutex

	weeks    map[string]timesheet.Week
	entries  map[string]timesheet.Entry
	rosters  map[string]timesheet.Roster
	days     map[string]timesheet.RosterDay
	holidays map[string]timesheet.BankHoliday
	clock    map[timesheet.UserID]timesheet.ClockState
	links    map[int64]timesheet.ChatLink
}

func NewMemory() *Memory {
	return &Memory{
		weeks:    make(map[string]timesheet.Week),
		entries:  make(map[string]timesheet.Entry),
		rosters:  make(map[string]timesheet.Roster),
		days:     make(map[string]timesheet.RosterDay),
		holidays: make(map[string]timesheet.BankHoliday),
		clock:    make(map[timesheet.UserID]timesheet.ClockState),
		links:    make(map[int64]timesheet.ChatLink),
	}
}

// =============================================================================
// WEEKS
// =============================================================================

func (m *Memory) SaveWeek(_ context.Context, w timesheet.Week) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveWeekLocked(w)
}

func (m *Memory) saveWeekLocked(w timesheet.Week) error {
	m.weeks[w.ID] = w
	return nil
}

func (m *Memory) GetWeek(_ context.Context, user timesheet.UserID, id string) (*timesheet.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getWeekLocked(user, id)
}

func (m *Memory) getWeekLocked(user timesheet.UserID, id string) (*timesheet.Week, error) {
	w, ok := m.weeks[id]
	if !ok || w.UserID != user {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrWeekNotFound, id)
	}
	return &w, nil
}

func (m *Memory) FindWeekByNumber(_ context.Context, user timesheet.UserID, weekNumber int) (*timesheet.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findWeekByNumberLocked(user, weekNumber)
}

func (m *Memory) findWeekByNumberLocked(user timesheet.UserID, weekNumber int) (*timesheet.Week, error) {
	var found *timesheet.Week
	for _, w := range m.weeks {
		if w.UserID != user || w.WeekNumber != weekNumber {
			continue
		}
		w := w
		if found == nil || found.CreatedAt.Before(w.CreatedAt) {
			found = &w
		}
	}
	return found, nil
}

func (m *Memory) ListWeeks(_ context.Context, user timesheet.UserID) ([]timesheet.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listWeeksLocked(user)
}

func (m *Memory) listWeeksLocked(user timesheet.UserID) ([]timesheet.Week, error) {
	var out []timesheet.Week
	for _, w := range m.weeks {
		if w.UserID == user {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber > out[j].WeekNumber
		}
		return out[j].StartDate.Before(out[i].StartDate)
	})
	return out, nil
}

func (m *Memory) LatestWeek(_ context.Context, user timesheet.UserID) (*timesheet.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latestWeekLocked(user)
}

func (m *Memory) latestWeekLocked(user timesheet.UserID) (*timesheet.Week, error) {
	var latest *timesheet.Week
	for _, w := range m.weeks {
		if w.UserID != user {
			continue
		}
		w := w
		if latest == nil || latest.StartDate.Before(w.StartDate) {
			latest = &w
		}
	}
	return latest, nil
}

func (m *Memory) DeleteWeek(_ context.Context, user timesheet.UserID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWeekLocked(user, id)
}

func (m *Memory) deleteWeekLocked(user timesheet.UserID, id string) error {
	w, ok := m.weeks[id]
	if !ok || w.UserID != user {
		return fmt.Errorf("%w: %s", timesheet.ErrWeekNotFound, id)
	}
	delete(m.weeks, id)
	// Entries cascade with their week, like the SQLite foreign key does.
	for eid, e := range m.entries {
		if e.WeekID == id {
			delete(m.entries, eid)
		}
	}
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]timesheet.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listUsersLocked()
}

func (m *Memory) listUsersLocked() ([]timesheet.UserID, error) {
	seen := make(map[timesheet.UserID]bool)
	var out []timesheet.UserID
	for _, w := range m.weeks {
		if !seen[w.UserID] {
			seen[w.UserID] = true
			out = append(out, w.UserID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) SaveEntry(_ context.Context, e timesheet.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveEntryLocked(e)
}

func (m *Memory) saveEntryLocked(e timesheet.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) GetEntry(_ context.Context, user timesheet.UserID, id string) (*timesheet.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEntryLocked(user, id)
}

func (m *Memory) getEntryLocked(user timesheet.UserID, id string) (*timesheet.Entry, error) {
	e, ok := m.entries[id]
	if !ok || e.UserID != user {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrEntryNotFound, id)
	}
	return &e, nil
}

func (m *Memory) FindEntry(_ context.Context, user timesheet.UserID, weekID string, date timesheet.Date) (*timesheet.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findEntryLocked(user, weekID, date)
}

func (m *Memory) findEntryLocked(user timesheet.UserID, weekID string, date timesheet.Date) (*timesheet.Entry, error) {
	for _, e := range m.entries {
		if e.UserID == user && e.WeekID == weekID && e.Date == date {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListEntries(_ context.Context, user timesheet.UserID, weekID string) ([]timesheet.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEntriesLocked(user, weekID)
}

func (m *Memory) listEntriesLocked(user timesheet.UserID, weekID string) ([]timesheet.Entry, error) {
	var out []timesheet.Entry
	for _, e := range m.entries {
		if e.UserID == user && e.WeekID == weekID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ListAllEntries(_ context.Context, user timesheet.UserID) ([]timesheet.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listAllEntriesLocked(user)
}

func (m *Memory) listAllEntriesLocked(user timesheet.UserID) ([]timesheet.Entry, error) {
	var out []timesheet.Entry
	for _, e := range m.entries {
		if e.UserID == user {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) DeleteEntry(_ context.Context, user timesheet.UserID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteEntryLocked(user, id)
}

func (m *Memory) deleteEntryLocked(user timesheet.UserID, id string) error {
	e, ok := m.entries[id]
	if !ok || e.UserID != user {
		return fmt.Errorf("%w: %s", timesheet.ErrEntryNotFound, id)
	}
	delete(m.entries, id)
	return nil
}

// =============================================================================
// ROSTERS
// =============================================================================

func (m *Memory) SaveRoster(_ context.Context, r timesheet.Roster, days []timesheet.RosterDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveRosterLocked(r, days)
}

func (m *Memory) saveRosterLocked(r timesheet.Roster, days []timesheet.RosterDay) error {
	m.rosters[r.ID] = r
	for _, d := range days {
		m.days[d.ID] = d
	}
	return nil
}

func (m *Memory) GetRoster(_ context.Context, user timesheet.UserID, id string) (*timesheet.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRosterLocked(user, id)
}

func (m *Memory) getRosterLocked(user timesheet.UserID, id string) (*timesheet.Roster, error) {
	r, ok := m.rosters[id]
	if !ok || r.UserID != user {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrRosterNotFound, id)
	}
	return &r, nil
}

func (m *Memory) ListRosterDays(_ context.Context, user timesheet.UserID, rosterID string) ([]timesheet.RosterDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listRosterDaysLocked(user, rosterID)
}

func (m *Memory) listRosterDaysLocked(user timesheet.UserID, rosterID string) ([]timesheet.RosterDay, error) {
	var out []timesheet.RosterDay
	for _, d := range m.days {
		if d.UserID == user && d.RosterID == rosterID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) FindRoster(_ context.Context, user timesheet.UserID, weekNumber int, startDate timesheet.Date) (*timesheet.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findRosterLocked(user, weekNumber, startDate)
}

func (m *Memory) findRosterLocked(user timesheet.UserID, weekNumber int, startDate timesheet.Date) (*timesheet.Roster, error) {
	for _, r := range m.rosters {
		if r.UserID == user && r.WeekNumber == weekNumber && r.StartDate == startDate {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListRosters(_ context.Context, user timesheet.UserID) ([]timesheet.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listRostersLocked(user)
}

func (m *Memory) listRostersLocked(user timesheet.UserID) ([]timesheet.Roster, error) {
	var out []timesheet.Roster
	for _, r := range m.rosters {
		if r.UserID == user {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].CreatedAt.Before(out[i].CreatedAt) })
	return out, nil
}

func (m *Memory) RosterDayOn(_ context.Context, user timesheet.UserID, date timesheet.Date) (*timesheet.RosterDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rosterDayOnLocked(user, date)
}

func (m *Memory) rosterDayOnLocked(user timesheet.UserID, date timesheet.Date) (*timesheet.RosterDay, error) {
	var best *timesheet.RosterDay
	for _, d := range m.days {
		if d.UserID != user || d.Date != date {
			continue
		}
		d := d
		if best == nil || m.rosters[best.RosterID].CreatedAt.Before(m.rosters[d.RosterID].CreatedAt) {
			best = &d
		}
	}
	return best, nil
}

func (m *Memory) UpdateRosterDay(_ context.Context, day timesheet.RosterDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateRosterDayLocked(day)
}

func (m *Memory) updateRosterDayLocked(day timesheet.RosterDay) error {
	for id, d := range m.days {
		if d.UserID == day.UserID && d.RosterID == day.RosterID && d.Date == day.Date {
			d.ShiftIn = day.ShiftIn
			d.ShiftOut = day.ShiftOut
			d.DayOff = day.DayOff
			m.days[id] = d
			return nil
		}
	}
	return fmt.Errorf("%w: no day %s in roster %s", timesheet.ErrRosterNotFound, day.Date, day.RosterID)
}

func (m *Memory) DeleteRoster(_ context.Context, user timesheet.UserID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteRosterLocked(user, id)
}

func (m *Memory) deleteRosterLocked(user timesheet.UserID, id string) error {
	r, ok := m.rosters[id]
	if !ok || r.UserID != user {
		return fmt.Errorf("%w: %s", timesheet.ErrRosterNotFound, id)
	}
	delete(m.rosters, id)
	for did, d := range m.days {
		if d.RosterID == id {
			delete(m.days, did)
		}
	}
	return nil
}

// =============================================================================
// BANK HOLIDAYS
// =============================================================================

func (m *Memory) SeedHolidays(_ context.Context, hs []timesheet.BankHoliday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seedHolidaysLocked(hs)
}

func (m *Memory) seedHolidaysLocked(hs []timesheet.BankHoliday) error {
	for _, h := range hs {
		if m.holidayExistsLocked(h.UserID, h.Date) {
			continue // never clobber existing paid/applicable edits
		}
		m.holidays[h.ID] = h
	}
	return nil
}

func (m *Memory) holidayExistsLocked(user timesheet.UserID, date timesheet.Date) bool {
	for _, h := range m.holidays {
		if h.UserID == user && h.Date == date {
			return true
		}
	}
	return false
}

func (m *Memory) ListHolidayYears(_ context.Context, user timesheet.UserID) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listHolidayYearsLocked(user)
}

func (m *Memory) listHolidayYearsLocked(user timesheet.UserID) ([]int, error) {
	seen := make(map[int]bool)
	var out []int
	for _, h := range m.holidays {
		if h.UserID == user && !seen[h.Year] {
			seen[h.Year] = true
			out = append(out, h.Year)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *Memory) ListHolidays(_ context.Context, user timesheet.UserID, year int) ([]timesheet.BankHoliday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listHolidaysLocked(user, year)
}

func (m *Memory) listHolidaysLocked(user timesheet.UserID, year int) ([]timesheet.BankHoliday, error) {
	var out []timesheet.BankHoliday
	for _, h := range m.holidays {
		if h.UserID == user && h.Year == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) GetHoliday(_ context.Context, user timesheet.UserID, id string) (*timesheet.BankHoliday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getHolidayLocked(user, id)
}

func (m *Memory) getHolidayLocked(user timesheet.UserID, id string) (*timesheet.BankHoliday, error) {
	h, ok := m.holidays[id]
	if !ok || h.UserID != user {
		return nil, fmt.Errorf("%w: %s", timesheet.ErrHolidayNotFound, id)
	}
	return &h, nil
}

func (m *Memory) HolidayOn(_ context.Context, user timesheet.UserID, date timesheet.Date) (*timesheet.BankHoliday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.holidayOnLocked(user, date)
}

func (m *Memory) holidayOnLocked(user timesheet.UserID, date timesheet.Date) (*timesheet.BankHoliday, error) {
	for _, h := range m.holidays {
		if h.UserID == user && h.Date == date {
			h := h
			return &h, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpdateHoliday(_ context.Context, h timesheet.BankHoliday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateHolidayLocked(h)
}

func (m *Memory) updateHolidayLocked(h timesheet.BankHoliday) error {
	existing, ok := m.holidays[h.ID]
	if !ok || existing.UserID != h.UserID {
		return fmt.Errorf("%w: %s", timesheet.ErrHolidayNotFound, h.ID)
	}
	m.holidays[h.ID] = h
	return nil
}

// =============================================================================
// CLOCK STATE
// =============================================================================

func (m *Memory) GetClockState(_ context.Context, user timesheet.UserID) (*timesheet.ClockState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getClockStateLocked(user)
}

func (m *Memory) getClockStateLocked(user timesheet.UserID) (*timesheet.ClockState, error) {
	st, ok := m.clock[user]
	if !ok {
		return nil, nil
	}
	if st.BreakStart != nil {
		t := *st.BreakStart
		st.BreakStart = &t
	}
	return &st, nil
}

func (m *Memory) SaveClockState(_ context.Context, st timesheet.ClockState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveClockStateLocked(st)
}

func (m *Memory) saveClockStateLocked(st timesheet.ClockState) error {
	m.clock[st.UserID] = st
	return nil
}

// =============================================================================
// CHAT LINKS
// =============================================================================

func (m *Memory) SaveChatLink(_ context.Context, l timesheet.ChatLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveChatLinkLocked(l)
}

func (m *Memory) saveChatLinkLocked(l timesheet.ChatLink) error {
	m.links[l.ChatID] = l
	return nil
}

func (m *Memory) UserForChat(_ context.Context, chatID int64) (timesheet.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userForChatLocked(chatID)
}

func (m *Memory) userForChatLocked(chatID int64) (timesheet.UserID, error) {
	l, ok := m.links[chatID]
	if !ok {
		return "", fmt.Errorf("%w: chat %d", timesheet.ErrChatNotLinked, chatID)
	}
	return l.UserID, nil
}

// =============================================================================
// TRANSACTIONAL VIEW
// =============================================================================

// WithTx simulates a transaction with a snapshot: fn writes directly
// through an unlocked view while the store lock is held, and an error
// restores the pre-transaction state.
func (m *Memory) WithTx(_ context.Context, fn func(timesheet.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	if err := fn(&txView{parent: m}); err != nil {
		m.restoreLocked(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	weeks    map[string]timesheet.Week
	entries  map[string]timesheet.Entry
	rosters  map[string]timesheet.Roster
	days     map[string]timesheet.RosterDay
	holidays map[string]timesheet.BankHoliday
	clock    map[timesheet.UserID]timesheet.ClockState
	links    map[int64]timesheet.ChatLink
}

func (m *Memory) snapshotLocked() memorySnapshot {
	return memorySnapshot{
		weeks:    cloneMap(m.weeks),
		entries:  cloneMap(m.entries),
		rosters:  cloneMap(m.rosters),
		days:     cloneMap(m.days),
		holidays: cloneMap(m.holidays),
		clock:    cloneMap(m.clock),
		links:    cloneMap(m.links),
	}
}

func (m *Memory) restoreLocked(s memorySnapshot) {
	m.weeks = s.weeks
	m.entries = s.entries
	m.rosters = s.rosters
	m.days = s.days
	m.holidays = s.holidays
	m.clock = s.clock
	m.links = s.links
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// txView is the Store handed to WithTx callbacks. The parent lock is
// already held, so every call goes straight to the unlocked internals.
type txView struct {
	parent *Memory
}

func (v *txView) SaveWeek(_ context.Context, w timesheet.Week) error {
	return v.parent.saveWeekLocked(w)
}

func (v *txView) GetWeek(_ context.Context, user timesheet.UserID, id string) (*timesheet.Week, error) {
	return v.parent.getWeekLocked(user, id)
}

func (v *txView) FindWeekByNumber(_ context.Context, user timesheet.UserID, weekNumber int) (*timesheet.Week, error) {
	return v.parent.findWeekByNumberLocked(user, weekNumber)
}

func (v *txView) ListWeeks(_ context.Context, user timesheet.UserID) ([]timesheet.Week, error) {
	return v.parent.listWeeksLocked(user)
}

func (v *txView) LatestWeek(_ context.Context, user timesheet.UserID) (*timesheet.Week, error) {
	return v.parent.latestWeekLocked(user)
}

func (v *txView) DeleteWeek(_ context.Context, user timesheet.UserID, id string) error {
	return v.parent.deleteWeekLocked(user, id)
}

func (v *txView) ListUsers(_ context.Context) ([]timesheet.UserID, error) {
	return v.parent.listUsersLocked()
}

func (v *txView) SaveEntry(_ context.Context, e timesheet.Entry) error {
	return v.parent.saveEntryLocked(e)
}

func (v *txView) GetEntry(_ context.Context, user timesheet.UserID, id string) (*timesheet.Entry, error) {
	return v.parent.getEntryLocked(user, id)
}

func (v *txView) FindEntry(_ context.Context, user timesheet.UserID, weekID string, date timesheet.Date) (*timesheet.Entry, error) {
	return v.parent.findEntryLocked(user, weekID, date)
}

func (v *txView) ListEntries(_ context.Context, user timesheet.UserID, weekID string) ([]timesheet.Entry, error) {
	return v.parent.listEntriesLocked(user, weekID)
}

func (v *txView) ListAllEntries(_ context.Context, user timesheet.UserID) ([]timesheet.Entry, error) {
	return v.parent.listAllEntriesLocked(user)
}

func (v *txView) DeleteEntry(_ context.Context, user timesheet.UserID, id string) error {
	return v.parent.deleteEntryLocked(user, id)
}

func (v *txView) SaveRoster(_ context.Context, r timesheet.Roster, days []timesheet.RosterDay) error {
	return v.parent.saveRosterLocked(r, days)
}

func (v *txView) GetRoster(_ context.Context, user timesheet.UserID, id string) (*timesheet.Roster, error) {
	return v.parent.getRosterLocked(user, id)
}

func (v *txView) ListRosterDays(_ context.Context, user timesheet.UserID, rosterID string) ([]timesheet.RosterDay, error) {
	return v.parent.listRosterDaysLocked(user, rosterID)
}

func (v *txView) FindRoster(_ context.Context, user timesheet.UserID, weekNumber int, startDate timesheet.Date) (*timesheet.Roster, error) {
	return v.parent.findRosterLocked(user, weekNumber, startDate)
}

func (v *txView) ListRosters(_ context.Context, user timesheet.UserID) ([]timesheet.Roster, error) {
	return v.parent.listRostersLocked(user)
}

func (v *txView) RosterDayOn(_ context.Context, user timesheet.UserID, date timesheet.Date) (*timesheet.RosterDay, error) {
	return v.parent.rosterDayOnLocked(user, date)
}

func (v *txView) UpdateRosterDay(_ context.Context, day timesheet.RosterDay) error {
	return v.parent.updateRosterDayLocked(day)
}

func (v *txView) DeleteRoster(_ context.Context, user timesheet.UserID, id string) error {
	return v.parent.deleteRosterLocked(user, id)
}

func (v *txView) SeedHolidays(_ context.Context, hs []timesheet.BankHoliday) error {
	return v.parent.seedHolidaysLocked(hs)
}

func (v *txView) ListHolidayYears(_ context.Context, user timesheet.UserID) ([]int, error) {
	return v.parent.listHolidayYearsLocked(user)
}

func (v *txView) ListHolidays(_ context.Context, user timesheet.UserID, year int) ([]timesheet.BankHoliday, error) {
	return v.parent.listHolidaysLocked(user, year)
}

func (v *txView) GetHoliday(_ context.Context, user timesheet.UserID, id string) (*timesheet.BankHoliday, error) {
	return v.parent.getHolidayLocked(user, id)
}

func (v *txView) HolidayOn(_ context.Context, user timesheet.UserID, date timesheet.Date) (*timesheet.BankHoliday, error) {
	return v.parent.holidayOnLocked(user, date)
}

func (v *txView) UpdateHoliday(_ context.Context, h timesheet.BankHoliday) error {
	return v.parent.updateHolidayLocked(h)
}

func (v *txView) GetClockState(_ context.Context, user timesheet.UserID) (*timesheet.ClockState, error) {
	return v.parent.getClockStateLocked(user)
}

func (v *txView) SaveClockState(_ context.Context, st timesheet.ClockState) error {
	return v.parent.saveClockStateLocked(st)
}

func (v *txView) SaveChatLink(_ context.Context, l timesheet.ChatLink) error {
	return v.parent.saveChatLinkLocked(l)
}

func (v *txView) UserForChat(_ context.Context, chatID int64) (timesheet.UserID, error) {
	return v.parent.userForChatLocked(chatID)
}
