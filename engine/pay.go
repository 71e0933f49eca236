package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BREAK AND PAY ARITHMETIC
// =============================================================================
// Minutes stay integers all the way through; money is decimal from the
// first multiplication. Pay is kept at full precision internally and
// rounded to cents only where it is reported.

// EffectiveBreak returns the break to deduct from a day. A day with
// both punches always loses at least the policy floor even if the
// recorded break was shorter; an incomplete day loses nothing, since
// it pays nothing anyway.
func (p Policy) EffectiveBreak(hasIn, hasOut bool, recordedMin int) int {
	if !hasIn || !hasOut {
		return 0
	}
	if recordedMin < p.BreakFloorMin {
		return p.BreakFloorMin
	}
	return recordedMin
}

// PayableMinutes is the final payable time for a window after the break
// deduction. Never negative: a break longer than the window pays zero.
func PayableMinutes(win *PaidWindow, breakMin int) int {
	if win == nil {
		return 0
	}
	worked := win.Out - win.In
	if worked < 0 {
		worked = 0
	}
	paid := worked - breakMin
	if paid < 0 {
		paid = 0
	}
	return paid
}

// Pay converts payable minutes to money: minutes/60 * rate * multiplier,
// full precision. Callers round to 2 places at the reporting boundary.
func Pay(minutes int, hourlyRate, multiplier decimal.Decimal) decimal.Decimal {
	hours := decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
	return hours.Mul(hourlyRate).Mul(multiplier)
}

// Multiplier selects the pay premium for a calendar day. A paid public
// holiday beats the Sunday premium; every other day pays flat.
func (p Policy) Multiplier(weekday time.Weekday, paidHoliday bool) decimal.Decimal {
	if paidHoliday {
		return p.HolidayRate
	}
	if weekday == time.Sunday {
		return p.SundayRate
	}
	return decimal.NewFromInt(1)
}
