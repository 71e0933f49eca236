/*
scheduler.go - Background holiday seeder

PURPOSE:
  Periodically makes sure every known user has bank-holiday catalog
  rows for the configured years. New users get their allowance without
  touching the dashboard; new catalog years roll out without a deploy
  step.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Seeds immediately on start, then on every tick
  - Seeding is idempotent, so overlap with lazy dashboard seeding
    is harmless

USAGE:
  scheduler := NewHolidayScheduler(tracker, store, catalog, interval, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - timesheet/holidays.go: EnsureHolidayYear
  - cmd/server/main.go: Lifecycle wiring
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/timesheet"
)

// HolidayScheduler keeps every user's holiday catalogs seeded.
type HolidayScheduler struct {
	Tracker  *timesheet.Tracker
	Store    timesheet.TxStore
	Catalog  timesheet.HolidayCatalog
	Interval time.Duration
	Log      *zap.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewHolidayScheduler creates a scheduler; Start arms it.
func NewHolidayScheduler(tracker *timesheet.Tracker, store timesheet.TxStore, catalog timesheet.HolidayCatalog, interval time.Duration, log *zap.Logger) *HolidayScheduler {
	return &HolidayScheduler{
		Tracker:  tracker,
		Store:    store,
		Catalog:  catalog,
		Interval: interval,
		Log:      log,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler.
func (hs *HolidayScheduler) Start() {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.ticker != nil {
		return
	}
	hs.ticker = time.NewTicker(hs.Interval)
	hs.wg.Add(1)
	go hs.run()

	hs.Log.Info("holiday scheduler started", zap.Duration("interval", hs.Interval))
}

// Stop stops the scheduler and waits for an in-flight pass.
func (hs *HolidayScheduler) Stop() {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.ticker != nil {
		hs.ticker.Stop()
		close(hs.stop)
		hs.wg.Wait()
		hs.Log.Info("holiday scheduler stopped")
	}
}

func (hs *HolidayScheduler) run() {
	defer hs.wg.Done()

	// Seed immediately on start.
	hs.seedAll()

	for {
		select {
		case <-hs.ticker.C:
			hs.seedAll()
		case <-hs.stop:
			return
		}
	}
}

func (hs *HolidayScheduler) seedAll() {
	ctx := context.Background()

	users, err := hs.Store.ListUsers(ctx)
	if err != nil {
		hs.Log.Error("holiday scheduler: listing users", zap.Error(err))
		return
	}

	years := hs.Catalog.Years()
	for _, user := range users {
		for _, year := range years {
			if err := hs.Tracker.EnsureHolidayYear(ctx, user, year, hs.Catalog[year]); err != nil {
				hs.Log.Error("holiday scheduler: seeding",
					zap.String("user", string(user)),
					zap.Int("year", year),
					zap.Error(err))
			}
		}
	}
	hs.Log.Debug("holiday scheduler pass complete",
		zap.Int("users", len(users)),
		zap.Int("years", len(years)))
}
