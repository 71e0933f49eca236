/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the domain model from the external contract: money fields
  are fixed two-decimal strings, dates are YYYY-MM-DD, times HH:MM.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Pay is serialized with StringFixed(2). Clients never see a float.

SEE ALSO:
  - handlers.go: Builds these from domain types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiftwise/timeclock/engine"
	"github.com/shiftwise/timeclock/timesheet"
)

// =============================================================================
// WEEKS
// =============================================================================

// WeekDTO is one pay week.
type WeekDTO struct {
	ID         string `json:"id"`
	WeekNumber int    `json:"week_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	HourlyRate string `json:"hourly_rate"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func toWeekDTO(w timesheet.Week) WeekDTO {
	return WeekDTO{
		ID:         w.ID,
		WeekNumber: w.WeekNumber,
		StartDate:  string(w.StartDate),
		EndDate:    string(w.EndDate()),
		HourlyRate: w.HourlyRate.StringFixed(2),
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
	}
}

// WeekSummaryDTO is one row of the weeks list.
type WeekSummaryDTO struct {
	Week         WeekDTO `json:"week"`
	TotalMinutes int     `json:"total_minutes"`
	TotalHHMM    string  `json:"total_hhmm"`
	TotalPay     string  `json:"total_pay"`
}

func toWeekSummaryDTO(s timesheet.WeekSummary) WeekSummaryDTO {
	return WeekSummaryDTO{
		Week:         toWeekDTO(s.Week),
		TotalMinutes: s.TotalMinutes,
		TotalHHMM:    engine.ToHHMM(s.TotalMinutes),
		TotalPay:     s.TotalPay.StringFixed(2),
	}
}

// CreateWeekRequest creates a pay week.
type CreateWeekRequest struct {
	WeekNumber int    `json:"week_number"`
	StartDate  string `json:"start_date"`
	HourlyRate string `json:"hourly_rate"`
}

// PatchWeekRequest updates a week's hourly rate.
type PatchWeekRequest struct {
	HourlyRate string `json:"hourly_rate"`
}

// =============================================================================
// ENTRIES AND REPORTS
// =============================================================================

// EntryDTO is one worked day as stored.
type EntryDTO struct {
	ID           string `json:"id"`
	WeekID       string `json:"week_id"`
	Date         string `json:"date"`
	TimeIn       string `json:"time_in,omitempty"`
	TimeOut      string `json:"time_out,omitempty"`
	BreakMinutes int    `json:"break_minutes"`
	Note         string `json:"note,omitempty"`
	Multiplier   string `json:"multiplier"`
}

func toEntryDTO(e timesheet.Entry) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		WeekID:       e.WeekID,
		Date:         string(e.Date),
		TimeIn:       e.TimeIn,
		TimeOut:      e.TimeOut,
		BreakMinutes: e.BreakMinutes,
		Note:         e.Note,
		Multiplier:   e.Multiplier.String(),
	}
}

// UpsertEntryRequest writes one day of a week by date.
type UpsertEntryRequest struct {
	Date         string `json:"date"`
	TimeIn       string `json:"time_in"`
	TimeOut      string `json:"time_out"`
	BreakMinutes int    `json:"break_minutes"`
	Note         string `json:"note"`
	// BHPaid forces the holiday premium for the day on or off; when
	// omitted the holiday table decides.
	BHPaid *bool `json:"bh_paid"`
}

// DayReportDTO couples an entry with its derived pay.
type DayReportDTO struct {
	Entry          EntryDTO          `json:"entry"`
	PaidIn         string            `json:"paid_in,omitempty"`
	PaidOut        string            `json:"paid_out,omitempty"`
	PaidMinutes    int               `json:"paid_minutes"`
	PaidHHMM       string            `json:"paid_hhmm"`
	BreakEffective int               `json:"break_effective"`
	Meta           engine.WindowMeta `json:"meta"`
	Pay            string            `json:"pay"`
}

func toDayReportDTO(d timesheet.DayReport) DayReportDTO {
	return DayReportDTO{
		Entry:          toEntryDTO(d.Entry),
		PaidIn:         d.Breakdown.PaidIn,
		PaidOut:        d.Breakdown.PaidOut,
		PaidMinutes:    d.Breakdown.Minutes,
		PaidHHMM:       engine.ToHHMM(d.Breakdown.Minutes),
		BreakEffective: d.Breakdown.BreakEffective,
		Meta:           d.Breakdown.Meta,
		Pay:            d.Pay.StringFixed(2),
	}
}

// WeekReportDTO is the full week view.
type WeekReportDTO struct {
	HasWeek      bool           `json:"has_week"`
	Week         *WeekDTO       `json:"week"`
	Days         []DayReportDTO `json:"days"`
	TotalMinutes int            `json:"total_minutes"`
	TotalHHMM    string         `json:"total_hhmm"`
	TotalPay     string         `json:"total_pay"`
}

// toWeekReportDTO renders a report; a nil report (no weeks on file)
// becomes an empty has_week:false payload rather than an error.
func toWeekReportDTO(r *timesheet.WeekReport) WeekReportDTO {
	if r == nil {
		return WeekReportDTO{
			Days:      []DayReportDTO{},
			TotalHHMM: engine.ToHHMM(0),
			TotalPay:  decimal.Zero.StringFixed(2),
		}
	}
	days := make([]DayReportDTO, 0, len(r.Days))
	for _, d := range r.Days {
		days = append(days, toDayReportDTO(d))
	}
	week := toWeekDTO(r.Week)
	return WeekReportDTO{
		HasWeek:      true,
		Week:         &week,
		Days:         days,
		TotalMinutes: r.TotalMinutes,
		TotalHHMM:    engine.ToHHMM(r.TotalMinutes),
		TotalPay:     r.TotalPay.StringFixed(2),
	}
}

// =============================================================================
// ROSTERS
// =============================================================================

// RosterDTO is a posted week schedule.
type RosterDTO struct {
	ID         string         `json:"id"`
	WeekNumber int            `json:"week_number"`
	StartDate  string         `json:"start_date"`
	CreatedAt  string         `json:"created_at,omitempty"`
	Days       []RosterDayDTO `json:"days,omitempty"`
}

// RosterDayDTO is one scheduled day.
type RosterDayDTO struct {
	Date     string `json:"date"`
	ShiftIn  string `json:"shift_in,omitempty"`
	ShiftOut string `json:"shift_out,omitempty"`
	DayOff   bool   `json:"day_off"`
}

func toRosterDTO(r timesheet.Roster, days []timesheet.RosterDay) RosterDTO {
	dto := RosterDTO{
		ID:         r.ID,
		WeekNumber: r.WeekNumber,
		StartDate:  string(r.StartDate),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	for _, d := range days {
		dto.Days = append(dto.Days, toRosterDayDTO(d))
	}
	return dto
}

func toRosterDayDTO(d timesheet.RosterDay) RosterDayDTO {
	return RosterDayDTO{
		Date:     string(d.Date),
		ShiftIn:  d.ShiftIn,
		ShiftOut: d.ShiftOut,
		DayOff:   d.DayOff,
	}
}

// CreateRosterRequest posts a week schedule: exactly seven day codes,
// Sunday first.
type CreateRosterRequest struct {
	WeekNumber int      `json:"week_number"`
	StartDate  string   `json:"start_date"`
	Days       []string `json:"days"`
}

// PatchRosterDayRequest recodes one day of a roster.
type PatchRosterDayRequest struct {
	Date string `json:"date"`
	Code string `json:"code"`
}

// RosterPostResponse reports the stored roster, the pay week it landed
// on, and whether the post created anything (false on an exact re-post).
type RosterPostResponse struct {
	Roster  RosterDTO `json:"roster"`
	WeekID  string    `json:"week_id"`
	Created bool      `json:"created"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO is one bank holiday of a user's allowance.
type HolidayDTO struct {
	ID         string `json:"id"`
	Year       int    `json:"year"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Applicable bool   `json:"applicable"`
	Paid       bool   `json:"paid"`
	PaidDate   string `json:"paid_date,omitempty"`
	PaidWeekID string `json:"paid_week_id,omitempty"`
}

func toHolidayDTO(h timesheet.BankHoliday) HolidayDTO {
	return HolidayDTO{
		ID:         h.ID,
		Year:       h.Year,
		Name:       h.Name,
		Date:       string(h.Date),
		Applicable: h.Applicable,
		Paid:       h.Paid,
		PaidDate:   string(h.PaidDate),
		PaidWeekID: h.PaidWeekID,
	}
}

// PatchHolidayRequest edits one holiday's allowance flags. Pointer
// fields distinguish "leave alone" from "set false".
type PatchHolidayRequest struct {
	Applicable *bool `json:"applicable"`
	Paid       *bool `json:"paid"`
}

// =============================================================================
// CLOCK
// =============================================================================

// PunchResponse is the outcome of an IN or OUT punch.
type PunchResponse struct {
	Outcome string             `json:"outcome"`
	Date    string             `json:"date"`
	Stored  string             `json:"stored,omitempty"`
	Reason  string             `json:"reason,omitempty"`
	Pending *PendingConfirmDTO `json:"pending,omitempty"`
}

// PendingConfirmDTO asks the client to confirm an out-of-shift punch
// and resubmit it.
type PendingConfirmDTO struct {
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
	Date     string `json:"date"`
	Official string `json:"official,omitempty"`
	Real     string `json:"real"`
}

func toPunchResponse(res *timesheet.PunchResult) PunchResponse {
	out := PunchResponse{
		Outcome: string(res.Outcome),
		Date:    string(res.Date),
		Stored:  res.Stored,
		Reason:  string(res.Reason),
	}
	if res.Pending != nil {
		out.Pending = &PendingConfirmDTO{
			Kind:     string(res.Pending.Kind),
			Reason:   string(res.Pending.Reason),
			Date:     string(res.Pending.Date),
			Official: res.Pending.Official,
			Real:     res.Pending.Real,
		}
	}
	return out
}

// BreakResponse is the outcome of a break toggle.
type BreakResponse struct {
	Running      bool `json:"running"`
	BreakMinutes int  `json:"break_minutes"`
}

// ConfirmRequest answers a pending confirmation for a date.
type ConfirmRequest struct {
	Date       string `json:"date"`
	Authorized bool   `json:"authorized"`
}

// ConfirmResponse reports whether the answer landed on an entry.
type ConfirmResponse struct {
	Applied bool `json:"applied"`
}

// TodayDTO is the live clock view.
type TodayDTO struct {
	HasWeek      bool   `json:"has_week"`
	WeekID       string `json:"week_id,omitempty"`
	Date         string `json:"date"`
	TimeIn       string `json:"time_in,omitempty"`
	TimeOut      string `json:"time_out,omitempty"`
	BreakMinutes int    `json:"break_minutes"`
	BreakRunning bool   `json:"break_running"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// YearAllowanceDTO is the per-year holiday allowance summary.
type YearAllowanceDTO struct {
	Year      int `json:"year"`
	Allowance int `json:"allowance"`
	Paid      int `json:"paid"`
	NotPaid   int `json:"not_paid"`
}

// DashboardDTO is the landing-page aggregate.
type DashboardDTO struct {
	ThisWeek       *WeekSummaryDTO    `json:"this_week,omitempty"`
	AllTimeMinutes int                `json:"all_time_minutes"`
	AllTimeHHMM    string             `json:"all_time_hhmm"`
	AllTimePay     string             `json:"all_time_pay"`
	Years          []YearAllowanceDTO `json:"years"`
	Allowance      int                `json:"allowance"`
	PaidCount      int                `json:"paid_count"`
	Remaining      int                `json:"remaining"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
