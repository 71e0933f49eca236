/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the time-clock server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and parse the command line
  2. Load configuration (file, TIMECLOCK_* env, defaults)
  3. Open the SQLite store
  4. Build the tracker and HTTP router
  5. Start the holiday scheduler, the optional Telegram bot and the
     HTTP server; shut all three down on SIGINT/SIGTERM

COMMANDS:
  serve    Run the server (default)
  seed     Load a demo account into the database

EXAMPLES:
  # Run with a file database
  ./server serve

  # Run against a scratch database on another port
  TIMECLOCK_DB_PATH=":memory:" TIMECLOCK_SERVER_ADDR=":3000" ./server

  # Seed demo data for a user id
  ./server seed --user demo

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Every tunable and its default
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"github.com/shiftwise/timeclock/api"
	"github.com/shiftwise/timeclock/config"
	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/logging"
	"github.com/shiftwise/timeclock/store/sqlite"
	"github.com/shiftwise/timeclock/telegram"
	"github.com/shiftwise/timeclock/timesheet"
)

var CLI struct {
	Config string `help:"Config file path." type:"path" optional:""`

	Serve ServeCmd `cmd:"" help:"Run the HTTP server." default:"1"`
	Seed  SeedCmd  `cmd:"" help:"Load a demo account."`
}

// appContext carries the wired dependencies into the subcommands.
type appContext struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Store   *sqlite.Store
	Tracker *timesheet.Tracker
	Catalog timesheet.HolidayCatalog
}

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("timeclock"),
		kong.Description("Paid-time tracking for hourly shift work"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal("opening database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer store.Close()

	app := &appContext{
		Cfg:     cfg,
		Log:     log,
		Store:   store,
		Tracker: timesheet.NewTracker(store, cfg.Policy(), log),
		Catalog: cfg.HolidayCatalog(),
	}

	if err := ctx.Run(app); err != nil {
		log.Fatal("command failed", zap.Error(err))
	}
}

// =============================================================================
// SERVE
// =============================================================================

// ServeCmd runs the HTTP server, the holiday scheduler and, when a
// token is configured, the Telegram bot.
type ServeCmd struct{}

func (c *ServeCmd) Run(app *appContext) error {
	handler := api.NewHandler(app.Tracker, app.Store, app.Catalog, app.Log)
	router := api.NewRouter(handler, app.Log, app.Cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         app.Cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var scheduler *api.HolidayScheduler
	if app.Cfg.Scheduler.Enabled {
		scheduler = api.NewHolidayScheduler(app.Tracker, app.Store, app.Catalog,
			app.Cfg.Scheduler.Interval, app.Log)
		scheduler.Start()
		defer scheduler.Stop()
	}

	if app.Cfg.Telegram.Enabled() {
		tb, err := telebot.NewBot(telebot.Settings{
			Token:  app.Cfg.Telegram.Token,
			Poller: &telebot.LongPoller{Timeout: app.Cfg.Telegram.PollTimeout},
		})
		if err != nil {
			return fmt.Errorf("starting telegram bot: %w", err)
		}
		bot := telegram.NewHandler(tb, app.Tracker, app.Store, app.Log)
		bot.Register()
		go bot.Start()
		defer bot.Stop()
		app.Log.Info("telegram bot started")
	}

	go func() {
		app.Log.Info("server starting", zap.String("addr", app.Cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	app.Log.Info("server stopped")
	return nil
}

// =============================================================================
// SEED
// =============================================================================

// SeedCmd loads a demo account: the current pay week, a roster, the
// holiday catalogs and two worked days.
type SeedCmd struct {
	User string `help:"Account id to seed." default:"demo"`
	Rate string `help:"Hourly rate." default:"12.70"`
}

func (c *SeedCmd) Run(app *appContext) error {
	ctx := context.Background()
	user := timesheet.UserID(c.User)

	rate, err := decimal.NewFromString(c.Rate)
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}

	now := time.Now()
	today := timesheet.DateOf(now)
	sunday := today.AddDays(-int(now.Weekday()))
	_, weekNumber := now.ISOWeek()

	week, err := app.Tracker.CreateWeek(ctx, user, weekNumber, sunday, rate)
	if err != nil {
		return fmt.Errorf("seeding week: %w", err)
	}

	codes := []string{
		engine.ShiftCodeOff,
		engine.ShiftCodeA,
		engine.ShiftCodeB,
		engine.ShiftCodeA,
		engine.ShiftCodeB,
		engine.ShiftCodeA,
		engine.ShiftCodeOff,
	}
	if _, err := app.Tracker.CreateRoster(ctx, user, weekNumber, sunday, codes); err != nil {
		return fmt.Errorf("seeding roster: %w", err)
	}

	entries := []timesheet.EntryEdit{
		{WeekID: week.ID, Date: sunday.AddDays(1), TimeIn: "09:43", TimeOut: "19:02", BreakMinutes: 45, Note: "seeded"},
		{WeekID: week.ID, Date: sunday.AddDays(2), TimeIn: "10:45", TimeOut: "20:15", BreakMinutes: 70, Note: "seeded"},
	}
	for _, e := range entries {
		if _, err := app.Tracker.UpsertEntry(ctx, user, e); err != nil {
			return fmt.Errorf("seeding entry %s: %w", e.Date, err)
		}
	}

	for _, year := range app.Catalog.Years() {
		if err := app.Tracker.EnsureHolidayYear(ctx, user, year, app.Catalog[year]); err != nil {
			return fmt.Errorf("seeding holidays %d: %w", year, err)
		}
	}

	app.Log.Info("demo account seeded",
		zap.String("user", c.User),
		zap.String("week", week.ID),
		zap.String("start", string(sunday)))
	return nil
}
