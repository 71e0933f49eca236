package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/timeclock/engine"
)

// =============================================================================
// BREAK DEDUCTION
// =============================================================================

func TestEffectiveBreak_FloorAppliesOnCompleteDays(t *testing.T) {
	p := engine.DefaultPolicy()

	// GIVEN: a complete day with a short recorded break
	// THEN:  the fixed floor is deducted anyway
	assert.Equal(t, 60, p.EffectiveBreak(true, true, 20))

	// GIVEN: a recorded break above the floor
	// THEN:  the recorded break wins
	assert.Equal(t, 75, p.EffectiveBreak(true, true, 75))

	// GIVEN: a day missing either punch
	// THEN:  nothing is deducted (the day pays nothing anyway)
	assert.Equal(t, 0, p.EffectiveBreak(true, false, 90))
	assert.Equal(t, 0, p.EffectiveBreak(false, true, 90))
}

func TestPayableMinutes_NeverNegative(t *testing.T) {
	// GIVEN: a break longer than the whole window
	// THEN:  payable clamps at zero
	win := &engine.PaidWindow{In: 600, Out: 630}
	assert.Equal(t, 0, engine.PayableMinutes(win, 60))

	// GIVEN: no window at all
	assert.Equal(t, 0, engine.PayableMinutes(nil, 60))
}

func TestPayableMinutes_FullShiftMinusBreak(t *testing.T) {
	// GIVEN: the snapped full shift 09:45-19:00 (555 minutes)
	// WHEN:  the fixed break is deducted
	// THEN:  payable is 495 minutes
	win := &engine.PaidWindow{In: 585, Out: 1140}
	assert.Equal(t, 495, engine.PayableMinutes(win, 60))
}

// =============================================================================
// MONEY
// =============================================================================

func TestPay_FullPrecisionUntilReporting(t *testing.T) {
	// GIVEN: 495 payable minutes at 18.24/h on a paid public holiday
	// WHEN:  pay is computed
	// THEN:  the full-precision product is returned; rounding to cents
	//        happens only at the reporting boundary

	rate := decimal.RequireFromString("18.24")
	mult := decimal.RequireFromString("1.0787")

	pay := engine.Pay(495, rate, mult)

	want := decimal.NewFromInt(495).
		Div(decimal.NewFromInt(60)).
		Mul(rate).
		Mul(mult)
	assert.True(t, pay.Equal(want), "got %s want %s", pay, want)
	assert.Equal(t, "162.32", pay.Round(2).StringFixed(2))
}

func TestPay_ZeroMinutesIsZeroMoney(t *testing.T) {
	pay := engine.Pay(0, decimal.RequireFromString("18.24"), decimal.NewFromInt(1))
	assert.True(t, pay.IsZero())
}

// =============================================================================
// MULTIPLIER SELECTION
// =============================================================================

func TestMultiplier_PaidHolidayBeatsSunday(t *testing.T) {
	// GIVEN: a Sunday that is also a paid public holiday
	// WHEN:  the multiplier is selected
	// THEN:  the holiday premium wins over the Sunday premium

	p := engine.DefaultPolicy()

	m := p.Multiplier(time.Sunday, true)
	require.True(t, m.Equal(p.HolidayRate), "holiday premium overrides Sunday")

	m = p.Multiplier(time.Sunday, false)
	assert.True(t, m.Equal(p.SundayRate))

	m = p.Multiplier(time.Wednesday, false)
	assert.True(t, m.Equal(decimal.NewFromInt(1)))

	m = p.Multiplier(time.Wednesday, true)
	assert.True(t, m.Equal(p.HolidayRate), "premium applies regardless of weekday")
}
