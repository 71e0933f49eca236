/*
config.go - Application configuration

PURPOSE:
  Single place where every tunable enters the process: HTTP binding,
  SQLite path, logging, the Telegram token, the holiday scheduler
  cadence, the pay policy and the bank-holiday catalog. Precedence is
  environment variables over config file over defaults.

KEY CONCEPTS:
  - Load: viper-backed loader; TIMECLOCK_SERVER_ADDR style env keys
  - Policy(): converts the raw config into an engine.Policy, parsing
    the premium rates into decimals
  - HolidayCatalog(): converts the raw per-year holiday lists into the
    domain catalog used for idempotent seeding

DEFAULTS:
  The defaults describe the reference deployment: shifts A and B, the
  10:15 detection cutoff, 5-minute snap tolerance, 15-minute rounding,
  the 60-minute break floor, Sunday 1.5x, holiday 1.0787x, and the
  Irish public-holiday calendars for 2025 and 2026.
*/
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/timesheet"
)

// =============================================================================
// CONFIG STRUCTS
// =============================================================================

// Config is the root of the application configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Pay       PayConfig       `mapstructure:"pay"`
	Holidays  HolidaysConfig  `mapstructure:"holidays"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelegramConfig configures the optional bot frontend. The bot starts
// only when a token is present.
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// Enabled reports whether the bot should start.
func (c TelegramConfig) Enabled() bool { return c.Token != "" }

// SchedulerConfig configures the background holiday seeder.
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// PayConfig is the raw form of the pay policy. Rates are strings so
// they survive the trip through configuration without float rounding.
type PayConfig struct {
	Shifts        []ShiftConfig `mapstructure:"shifts"`
	DetectCutoff  string        `mapstructure:"detect_cutoff"`
	ToleranceMin  int           `mapstructure:"tolerance_min"`
	RoundStepMin  int           `mapstructure:"round_step_min"`
	BreakFloorMin int           `mapstructure:"break_floor_min"`
	SundayRate    string        `mapstructure:"sunday_rate"`
	HolidayRate   string        `mapstructure:"holiday_rate"`
}

// ShiftConfig is one catalog entry.
type ShiftConfig struct {
	Code  string `mapstructure:"code"`
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// HolidaysConfig maps year (as a string key, viper maps are keyed by
// string) to that year's public holidays.
type HolidaysConfig map[string][]HolidayConfig

// HolidayConfig is one catalog row.
type HolidayConfig struct {
	Date string `mapstructure:"date"`
	Name string `mapstructure:"name"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the given file (or config.yaml next to
// the binary when path is empty), overlaying TIMECLOCK_* environment
// variables, overlaying the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("db.path", "timeclock.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", "10s")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "12h")

	v.SetDefault("pay.shifts", defaultShifts())
	v.SetDefault("pay.detect_cutoff", "10:15")
	v.SetDefault("pay.tolerance_min", 5)
	v.SetDefault("pay.round_step_min", 15)
	v.SetDefault("pay.break_floor_min", 60)
	v.SetDefault("pay.sunday_rate", "1.5")
	v.SetDefault("pay.holiday_rate", "1.0787")

	v.SetDefault("holidays", defaultHolidays())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TIMECLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No file is fine; defaults plus environment carry the day.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run on.
func (c *Config) Validate() error {
	if len(c.Pay.Shifts) == 0 {
		return fmt.Errorf("config: pay.shifts must list at least one shift")
	}
	for _, s := range c.Pay.Shifts {
		if _, err := engine.ToMinutes(s.Start); err != nil {
			return fmt.Errorf("config: shift %s start: %w", s.Code, err)
		}
		if _, err := engine.ToMinutes(s.End); err != nil {
			return fmt.Errorf("config: shift %s end: %w", s.Code, err)
		}
	}
	if _, err := engine.ToMinutes(c.Pay.DetectCutoff); err != nil {
		return fmt.Errorf("config: pay.detect_cutoff: %w", err)
	}
	if c.Pay.RoundStepMin <= 0 {
		return fmt.Errorf("config: pay.round_step_min must be positive")
	}
	if c.Pay.ToleranceMin < 0 || c.Pay.BreakFloorMin < 0 {
		return fmt.Errorf("config: pay tolerances must not be negative")
	}
	if _, err := decimal.NewFromString(c.Pay.SundayRate); err != nil {
		return fmt.Errorf("config: pay.sunday_rate: %w", err)
	}
	if _, err := decimal.NewFromString(c.Pay.HolidayRate); err != nil {
		return fmt.Errorf("config: pay.holiday_rate: %w", err)
	}
	for year, rows := range c.Holidays {
		if _, err := strconv.Atoi(year); err != nil {
			return fmt.Errorf("config: holidays key %q is not a year", year)
		}
		for _, h := range rows {
			if _, err := timesheet.ParseDate(h.Date); err != nil {
				return fmt.Errorf("config: holiday %q: %w", h.Name, err)
			}
		}
	}
	return nil
}

// =============================================================================
// DOMAIN CONVERSIONS
// =============================================================================

// Policy builds the engine policy from the validated configuration.
func (c *Config) Policy() engine.Policy {
	shifts := make([]engine.Shift, 0, len(c.Pay.Shifts))
	for _, s := range c.Pay.Shifts {
		shifts = append(shifts, engine.Shift{Code: s.Code, Start: s.Start, End: s.End})
	}
	sunday, _ := decimal.NewFromString(c.Pay.SundayRate)
	holiday, _ := decimal.NewFromString(c.Pay.HolidayRate)
	return engine.Policy{
		Shifts:        shifts,
		DetectCutoff:  c.Pay.DetectCutoff,
		ToleranceMin:  c.Pay.ToleranceMin,
		RoundStepMin:  c.Pay.RoundStepMin,
		BreakFloorMin: c.Pay.BreakFloorMin,
		SundayRate:    sunday,
		HolidayRate:   holiday,
	}
}

// HolidayCatalog builds the domain catalog from the validated
// configuration.
func (c *Config) HolidayCatalog() timesheet.HolidayCatalog {
	catalog := make(timesheet.HolidayCatalog, len(c.Holidays))
	for yearKey, rows := range c.Holidays {
		year, _ := strconv.Atoi(yearKey)
		seeds := make([]timesheet.HolidaySeed, 0, len(rows))
		for _, h := range rows {
			seeds = append(seeds, timesheet.HolidaySeed{Date: timesheet.Date(h.Date), Name: h.Name})
		}
		catalog[year] = seeds
	}
	return catalog
}

// =============================================================================
// DEFAULTS
// =============================================================================

func defaultShifts() []map[string]any {
	return []map[string]any{
		{"code": engine.ShiftCodeA, "start": "09:45", "end": "19:00"},
		{"code": engine.ShiftCodeB, "start": "10:45", "end": "20:00"},
	}
}

func defaultHolidays() map[string]any {
	return map[string]any{
		"2025": []map[string]any{
			{"date": "2025-01-01", "name": "New Year's Day"},
			{"date": "2025-02-03", "name": "St Brigid's Day"},
			{"date": "2025-03-17", "name": "St Patrick's Day"},
			{"date": "2025-04-21", "name": "Easter Monday"},
			{"date": "2025-05-05", "name": "May Bank Holiday"},
			{"date": "2025-06-02", "name": "June Bank Holiday"},
			{"date": "2025-08-04", "name": "August Bank Holiday"},
			{"date": "2025-10-27", "name": "October Bank Holiday"},
			{"date": "2025-12-25", "name": "Christmas Day"},
			{"date": "2025-12-26", "name": "St Stephen's Day"},
		},
		"2026": []map[string]any{
			{"date": "2026-01-01", "name": "New Year's Day"},
			{"date": "2026-02-02", "name": "St Brigid's Day"},
			{"date": "2026-03-17", "name": "St Patrick's Day"},
			{"date": "2026-04-06", "name": "Easter Monday"},
			{"date": "2026-05-04", "name": "May Bank Holiday"},
			{"date": "2026-06-01", "name": "June Bank Holiday"},
			{"date": "2026-08-03", "name": "August Bank Holiday"},
			{"date": "2026-10-26", "name": "October Bank Holiday"},
			{"date": "2026-12-25", "name": "Christmas Day"},
			{"date": "2026-12-26", "name": "St Stephen's Day"},
		},
	}
}
