/*
handlers.go - HTTP API handlers for the time clock

PURPOSE:
  Exposes the time tracker over REST. Handles HTTP request/response,
  JSON serialization, and delegates every decision to the timesheet
  package. No paid-time rule lives here.

ENDPOINTS:
  Weeks:
    POST   /api/weeks                  Create a pay week
    GET    /api/weeks                  List weeks with totals
    GET    /api/weeks/{id}             Full week report
    PATCH  /api/weeks/{id}             Change the hourly rate
    DELETE /api/weeks/{id}             Delete a week and its entries
    PUT    /api/weeks/{id}/entry       Upsert one day by date

  Entries:
    DELETE /api/entries/{id}           Delete a day entry
    GET    /api/entries/{id}/details   Paid window, break, pay for one day

  Rosters:
    POST   /api/rosters                Post a week schedule (idempotent)
    GET    /api/rosters                List posted rosters
    GET    /api/rosters/{id}           Roster with its seven days
    PATCH  /api/rosters/{id}/day       Recode one day
    DELETE /api/rosters/{id}           Delete a roster
    GET    /api/rosters/day?date=      Official schedule for a date

  Holidays:
    GET    /api/holidays/years         Years with catalog rows
    GET    /api/holidays/{year}        One year's allowance
    GET    /api/holidays/lookup?date=  Is the date a holiday
    PATCH  /api/holidays/{id}          Edit applicable/paid flags

  Clock:
    POST   /api/clock/in               Punch in now
    POST   /api/clock/out              Punch out now
    POST   /api/clock/break            Toggle the break
    POST   /api/clock/confirm          Answer a pending confirmation
    GET    /api/clock/today            Live clock view

  Reports:
    GET    /api/reports/week/current   Report for the current week
    GET    /api/dashboard              Landing-page aggregate

IDENTITY:
  Every route requires the X-User-ID header; the middleware in
  server.go rejects requests without it and stashes the id on the
  request context.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: No active week for a punch
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *timesheet.Tracker
	Store   timesheet.TxStore
	Catalog timesheet.HolidayCatalog
	Log     *zap.Logger
}

// NewHandler creates a handler around the tracker and its store.
func NewHandler(tracker *timesheet.Tracker, store timesheet.TxStore, catalog timesheet.HolidayCatalog, log *zap.Logger) *Handler {
	return &Handler{Tracker: tracker, Store: store, Catalog: catalog, Log: log}
}

// timeNow is swapped out by tests that need a fixed settlement date.
var timeNow = time.Now

// =============================================================================
// WEEK HANDLERS
// =============================================================================

// CreateWeek creates a pay week.
// POST /api/weeks
func (h *Handler) CreateWeek(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req CreateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := timesheet.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly_rate", err)
		return
	}

	week, err := h.Tracker.CreateWeek(r.Context(), user, req.WeekNumber, start, rate)
	if err != nil {
		h.writeDomainError(w, "Failed to create week", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWeekDTO(*week))
}

// ListWeeks returns every week with recomputed totals, newest first.
// GET /api/weeks
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Tracker.ListWeekSummaries(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to list weeks", err)
		return
	}
	dtos := make([]WeekSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, toWeekSummaryDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWeek returns the full per-day report for one week.
// GET /api/weeks/{id}
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	report, err := h.Tracker.BuildWeekReport(r.Context(), userFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to build week report", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekReportDTO(report))
}

// PatchWeek changes a week's hourly rate.
// PATCH /api/weeks/{id}
func (h *Handler) PatchWeek(w http.ResponseWriter, r *http.Request) {
	var req PatchWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly_rate", err)
		return
	}

	week, err := h.Tracker.UpdateHourlyRate(r.Context(), userFrom(r), chi.URLParam(r, "id"), rate)
	if err != nil {
		h.writeDomainError(w, "Failed to update hourly rate", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekDTO(*week))
}

// DeleteWeek removes a week and everything under it.
// DELETE /api/weeks/{id}
func (h *Handler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeleteWeek(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete week", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// UpsertEntry writes one day of a week by date.
// PUT /api/weeks/{id}/entry
func (h *Handler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req UpsertEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := timesheet.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	entry, err := h.Tracker.UpsertEntry(r.Context(), userFrom(r), timesheet.EntryEdit{
		WeekID:       chi.URLParam(r, "id"),
		Date:         date,
		TimeIn:       req.TimeIn,
		TimeOut:      req.TimeOut,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
		HolidayPaid:  req.BHPaid,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// DeleteEntry removes one day entry.
// DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeleteEntry(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EntryDetails returns the derived paid window and pay for one entry.
// GET /api/entries/{id}/details
func (h *Handler) EntryDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(r)

	entry, err := h.Store.GetEntry(ctx, user, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to load entry", err)
		return
	}
	week, err := h.Store.GetWeek(ctx, user, entry.WeekID)
	if err != nil {
		h.writeDomainError(w, "Failed to load week", err)
		return
	}
	breakdown, err := h.Tracker.DayBreakdown(ctx, user, *entry)
	if err != nil {
		h.writeDomainError(w, "Failed to compute paid time", err)
		return
	}

	writeJSON(w, http.StatusOK, toDayReportDTO(timesheet.DayReport{
		Entry:     *entry,
		Breakdown: breakdown,
		Pay:       engine.Pay(breakdown.Minutes, week.HourlyRate, entry.Multiplier),
	}))
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// CreateRoster posts a week schedule: exactly seven day codes, Sunday
// first. Re-posting the same (week_number, start_date) is a no-op that
// returns the existing roster.
// POST /api/rosters
func (h *Handler) CreateRoster(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req CreateRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := timesheet.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}

	post, err := h.Tracker.CreateRoster(r.Context(), user, req.WeekNumber, start, req.Days)
	if err != nil {
		h.writeDomainError(w, "Failed to post roster", err)
		return
	}

	days, err := h.Store.ListRosterDays(r.Context(), user, post.Roster.ID)
	if err != nil {
		h.writeDomainError(w, "Failed to load roster days", err)
		return
	}
	status := http.StatusOK
	if post.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, RosterPostResponse{
		Roster:  toRosterDTO(post.Roster, days),
		WeekID:  post.WeekID,
		Created: post.Created,
	})
}

// ListRosters returns the posted rosters, newest first.
// GET /api/rosters
func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := h.Store.ListRosters(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to list rosters", err)
		return
	}
	dtos := make([]RosterDTO, 0, len(rosters))
	for _, ro := range rosters {
		dtos = append(dtos, toRosterDTO(ro, nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRoster returns one roster with its seven days.
// GET /api/rosters/{id}
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(r)
	id := chi.URLParam(r, "id")

	roster, err := h.Store.GetRoster(ctx, user, id)
	if err != nil {
		h.writeDomainError(w, "Failed to load roster", err)
		return
	}
	days, err := h.Store.ListRosterDays(ctx, user, id)
	if err != nil {
		h.writeDomainError(w, "Failed to load roster days", err)
		return
	}
	writeJSON(w, http.StatusOK, toRosterDTO(*roster, days))
}

// PatchRosterDay recodes one day of a roster.
// PATCH /api/rosters/{id}/day
func (h *Handler) PatchRosterDay(w http.ResponseWriter, r *http.Request) {
	var req PatchRosterDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := timesheet.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Tracker.PatchRosterDay(r.Context(), userFrom(r), chi.URLParam(r, "id"), date, req.Code); err != nil {
		h.writeDomainError(w, "Failed to update roster day", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRoster removes a roster and its days.
// DELETE /api/rosters/{id}
func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeleteRoster(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete roster", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RosterDayOn resolves the official schedule for a date.
// GET /api/rosters/day?date=YYYY-MM-DD
func (h *Handler) RosterDayOn(w http.ResponseWriter, r *http.Request) {
	date, err := timesheet.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	day, err := h.Store.RosterDayOn(r.Context(), userFrom(r), date)
	if err != nil {
		h.writeDomainError(w, "Failed to resolve roster day", err)
		return
	}
	if day == nil {
		writeError(w, http.StatusNotFound, "No roster covers this date", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRosterDayDTO(*day))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// HolidayYears lists the years the user has catalog rows for, seeding
// the configured catalogs first so a fresh account sees its allowance.
// GET /api/holidays/years
func (h *Handler) HolidayYears(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(r)

	for _, year := range h.Catalog.Years() {
		if err := h.Tracker.EnsureHolidayYear(ctx, user, year, h.Catalog[year]); err != nil {
			h.writeDomainError(w, "Failed to seed holidays", err)
			return
		}
	}
	years, err := h.Store.ListHolidayYears(ctx, user)
	if err != nil {
		h.writeDomainError(w, "Failed to list holiday years", err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}

// ListHolidays returns one year's allowance, date ascending.
// GET /api/holidays/{year}
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(r)

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	if seeds, ok := h.Catalog[year]; ok {
		if err := h.Tracker.EnsureHolidayYear(ctx, user, year, seeds); err != nil {
			h.writeDomainError(w, "Failed to seed holidays", err)
			return
		}
	}

	holidays, err := h.Store.ListHolidays(ctx, user, year)
	if err != nil {
		h.writeDomainError(w, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// HolidayLookup probes whether a date is a bank holiday.
// GET /api/holidays/lookup?date=YYYY-MM-DD
func (h *Handler) HolidayLookup(w http.ResponseWriter, r *http.Request) {
	date, err := timesheet.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	holiday, err := h.Store.HolidayOn(r.Context(), userFrom(r), date)
	if err != nil {
		h.writeDomainError(w, "Failed to look up holiday", err)
		return
	}
	if holiday == nil {
		writeError(w, http.StatusNotFound, "Not a bank holiday", nil)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTO(*holiday))
}

// PatchHoliday edits one holiday's allowance flags.
// PATCH /api/holidays/{id}
func (h *Handler) PatchHoliday(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req PatchHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := timesheet.HolidayPatch{Applicable: req.Applicable, Paid: req.Paid}
	if req.Paid != nil && *req.Paid {
		// Stamp the settlement against today and the week covering it.
		// A user with no weeks still gets the paid date; the week stamp
		// stays empty.
		today := timesheet.DateOf(timeNow())
		patch.PaidDate = today
		if week, err := h.Tracker.ActiveWeek(r.Context(), user); err == nil && week != nil {
			patch.PaidWeekID = week.ID
		}
	}

	holiday, err := h.Tracker.PatchHoliday(r.Context(), user, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeDomainError(w, "Failed to update holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTO(*holiday))
}

// =============================================================================
// CLOCK HANDLERS
// =============================================================================

// ClockIn punches in at server time.
// POST /api/clock/in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tracker.ClockIn(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to clock in", err)
		return
	}
	writeJSON(w, http.StatusOK, toPunchResponse(res))
}

// ClockOut punches out at server time.
// POST /api/clock/out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tracker.ClockOut(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to clock out", err)
		return
	}
	writeJSON(w, http.StatusOK, toPunchResponse(res))
}

// ToggleBreak starts or stops the break.
// POST /api/clock/break
func (h *Handler) ToggleBreak(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tracker.ToggleBreak(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to toggle break", err)
		return
	}
	writeJSON(w, http.StatusOK, BreakResponse{Running: res.Running, BreakMinutes: res.BreakMinutes})
}

// ConfirmExtra answers a pending out-of-shift confirmation. The client
// resubmits the punch afterwards; confirming alone stores nothing.
// POST /api/clock/confirm
func (h *Handler) ConfirmExtra(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := timesheet.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	applied, err := h.Tracker.ConfirmExtra(r.Context(), userFrom(r), date, req.Authorized)
	if err != nil {
		h.writeDomainError(w, "Failed to confirm", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfirmResponse{Applied: applied})
}

// Today returns the live clock view.
// GET /api/clock/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	view, err := h.Tracker.TodayState(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to load clock state", err)
		return
	}
	writeJSON(w, http.StatusOK, TodayDTO{
		HasWeek:      view.HasWeek,
		WeekID:       view.WeekID,
		Date:         string(view.Date),
		TimeIn:       view.InTime,
		TimeOut:      view.OutTime,
		BreakMinutes: view.BreakMinutes,
		BreakRunning: view.BreakRunning,
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// CurrentWeekReport reports the week containing today, falling back to
// the latest week.
// GET /api/reports/week/current
func (h *Handler) CurrentWeekReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Tracker.CurrentWeekReport(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekReportDTO(report))
}

// Dashboard returns the landing-page aggregate, lazily seeding the
// holiday catalogs it reports on.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Tracker.BuildDashboard(r.Context(), userFrom(r), h.Catalog)
	if err != nil {
		h.writeDomainError(w, "Failed to build dashboard", err)
		return
	}

	dto := DashboardDTO{
		AllTimeMinutes: dash.AllTimeMinutes,
		AllTimeHHMM:    engine.ToHHMM(dash.AllTimeMinutes),
		AllTimePay:     dash.AllTimePay.StringFixed(2),
		Years:          make([]YearAllowanceDTO, 0, len(dash.Years)),
		Allowance:      dash.Allowance,
		PaidCount:      dash.PaidCount,
		Remaining:      dash.Remaining,
	}
	if dash.ThisWeek != nil {
		summary := toWeekSummaryDTO(*dash.ThisWeek)
		dto.ThisWeek = &summary
	}
	for _, y := range dash.Years {
		dto.Years = append(dto.Years, YearAllowanceDTO{
			Year:      y.Year,
			Allowance: y.Allowance,
			Paid:      y.Paid,
			NotPaid:   y.NotPaid,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses: invalid
// input is 400, missing rows 404, punching without a week 409,
// everything else 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsInvalidInput(err) || isRosterShape(err) || errors.Is(err, timesheet.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, message, err)
	case timesheet.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, timesheet.ErrNoActiveWeek):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Log.Error("request failed", zap.String("message", message), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func isRosterShape(err error) bool {
	var shape *timesheet.RosterShapeError
	return errors.As(err, &shape)
}
