/*
policy.go - Pay policy definitions and shift catalog

PURPOSE:
  Defines the rules that govern how raw punches become paid time: the
  named shift catalog, the snap tolerance, the rounding step, the fixed
  break floor, and the premium rates. A Policy is the contract between
  the store and its hourly staff about how worked time is counted.

KEY CONCEPTS:
  - Shift: A named official window (code + start/end in HH:MM)
  - DetectCutoff: Single boundary used to guess the shift when no roster
    covers a date (punch at or before the cutoff means the early shift)
  - ToleranceMin: Punches within this many minutes of the official time
    snap to the official time exactly
  - RoundStepMin: Grid for rounding non-snapped boundaries (IN rounds up,
    OUT rounds down, so rounding never favors the employee)
  - BreakFloorMin: Minimum break deducted whenever a day has both punches
  - SundayRate / HolidayRate: Pay multipliers frozen onto each day entry

DETECTION FALLBACK:
  The cutoff heuristic exists so the system stays usable before a roster
  is entered. It classifies the real clock-in only; it can never tell an
  authorized early arrival apart from a different shift, so rostered
  days always win over detection.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// SHIFT - A named official working window
// =============================================================================

// Shift is one entry of the official shift catalog.
// Start and End are HH:MM strings on the day grid (no dates).
type Shift struct {
	Code  string
	Start string
	End   string
}

// Shift codes used by the default catalog and by roster day records.
const (
	ShiftCodeA   = "A"
	ShiftCodeB   = "B"
	ShiftCodeOff = "OFF"
)

// =============================================================================
// POLICY - Rules governing paid-time computation
// =============================================================================

// Policy bundles every tunable the paid-time calculators need. It is
// built once from configuration and passed by value; calculators never
// reach into globals.
type Policy struct {
	// Shifts is the official catalog, ordered earliest start first.
	Shifts []Shift

	// DetectCutoff is the HH:MM boundary for the detection fallback.
	// A real clock-in at or before the cutoff maps to the first shift,
	// anything later maps to the second.
	DetectCutoff string

	// ToleranceMin is the snap window around official times, in minutes.
	ToleranceMin int

	// RoundStepMin is the rounding grid for non-snapped boundaries.
	RoundStepMin int

	// BreakFloorMin is deducted from every completed day even when the
	// recorded break is shorter.
	BreakFloorMin int

	// SundayRate multiplies pay for work performed on a Sunday.
	SundayRate decimal.Decimal

	// HolidayRate multiplies pay on a public holiday marked as paid.
	// It takes precedence over SundayRate.
	HolidayRate decimal.Decimal
}

// DefaultPolicy returns the catalog and tunables the product launched
// with: two retail shifts, a 10:15 detection cutoff, 5 minute snap
// tolerance, 15 minute rounding, a fixed one hour break, time-and-a-half
// Sundays and the statutory public-holiday premium.
func DefaultPolicy() Policy {
	return Policy{
		Shifts: []Shift{
			{Code: ShiftCodeA, Start: "09:45", End: "19:00"},
			{Code: ShiftCodeB, Start: "10:45", End: "20:00"},
		},
		DetectCutoff:  "10:15",
		ToleranceMin:  5,
		RoundStepMin:  15,
		BreakFloorMin: 60,
		SundayRate:    decimal.NewFromFloat(1.5),
		HolidayRate:   decimal.NewFromFloat(1.0787),
	}
}

// ShiftByCode looks up a catalog shift. The OFF code never resolves; a
// day off has no official window by definition.
func (p Policy) ShiftByCode(code string) (Shift, bool) {
	for _, s := range p.Shifts {
		if s.Code == code {
			return s, true
		}
	}
	return Shift{}, false
}

// DetectShift guesses the official shift from a real clock-in time when
// no roster covers the date. Returns false when the punch is missing,
// malformed, or the catalog has no shifts to choose from.
func (p Policy) DetectShift(realIn string) (Shift, bool) {
	if realIn == "" || len(p.Shifts) == 0 {
		return Shift{}, false
	}
	t, err := ToMinutes(realIn)
	if err != nil {
		return Shift{}, false
	}
	cutoff, err := ToMinutes(p.DetectCutoff)
	if err != nil {
		return Shift{}, false
	}
	if t <= cutoff || len(p.Shifts) == 1 {
		return p.Shifts[0], true
	}
	return p.Shifts[1], true
}
