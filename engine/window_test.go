/*
window_test.go - Executable behavior of the paid-window calculator

ORGANIZATION:
  1. Snap / cap / round interplay on the IN and OUT boundaries
  2. Properties that must hold for every input (no negative window,
     snap precedence, rounding idempotence)
  3. Punch-time decision (DecideStoredPunch)
*/
package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/timeclock/engine"
)

func defaultPolicy() engine.Policy { return engine.DefaultPolicy() }

func mustWindow(t *testing.T, p engine.Policy, offIn, offOut, realIn, realOut string, authorized bool) (*engine.PaidWindow, engine.WindowMeta) {
	t.Helper()
	win, meta, err := p.ComputePaidWindow(offIn, offOut, realIn, realOut, authorized)
	require.NoError(t, err)
	return win, meta
}

// =============================================================================
// SNAP / CAP / ROUND
// =============================================================================

func TestComputePaidWindow_SnapsBothEndsWithinTolerance(t *testing.T) {
	// GIVEN: official 09:45-19:00, punches 09:50 in and 19:03 out (both
	//        within the 5 minute tolerance), overtime not authorized
	// WHEN:  the paid window is computed
	// THEN:  both ends snap to the official times, nothing is rounded

	win, meta := mustWindow(t, defaultPolicy(), "09:45", "19:00", "09:50", "19:03", false)

	require.NotNil(t, win)
	assert.Equal(t, "09:45", engine.ToHHMM(win.In))
	assert.Equal(t, "19:00", engine.ToHHMM(win.Out))
	assert.True(t, meta.SnapIn)
	assert.True(t, meta.SnapOut)
	assert.False(t, meta.CapIn)
	assert.False(t, meta.CapOut)
	assert.False(t, meta.RoundIn, "snapped boundary must not round")
	assert.False(t, meta.RoundOut, "snapped boundary must not round")
	assert.Equal(t, 555, win.Out-win.In, "full official shift is 9h15m")
}

func TestComputePaidWindow_CapsUnauthorizedEarlyIn(t *testing.T) {
	// GIVEN: official 09:45 start, real clock-in 09:20 (25 min early),
	//        overtime not authorized
	// WHEN:  the paid window is computed
	// THEN:  the IN is capped to 09:45; the cap lands on the 15-minute
	//        grid already, so the round flag stays clear

	win, meta := mustWindow(t, defaultPolicy(), "09:45", "19:00", "09:20", "19:00", false)

	require.NotNil(t, win)
	assert.Equal(t, "09:45", engine.ToHHMM(win.In))
	assert.True(t, meta.CapIn)
	assert.False(t, meta.SnapIn)
	assert.False(t, meta.RoundIn, "09:45 is already on the grid")
}

func TestComputePaidWindow_CapsUnauthorizedLateOut(t *testing.T) {
	// GIVEN: official 19:00 end, real clock-out 19:40, not authorized
	// WHEN:  the paid window is computed
	// THEN:  the OUT is capped back to 19:00

	win, meta := mustWindow(t, defaultPolicy(), "09:45", "19:00", "09:45", "19:40", false)

	require.NotNil(t, win)
	assert.Equal(t, "19:00", engine.ToHHMM(win.Out))
	assert.True(t, meta.CapOut)
	assert.False(t, meta.SnapOut)
}

func TestComputePaidWindow_AuthorizedKeepsRealTimesButRounds(t *testing.T) {
	// GIVEN: the same early IN and late OUT, but overtime authorized
	// WHEN:  the paid window is computed
	// THEN:  real times survive; only rounding applies (IN up, OUT down)

	win, meta := mustWindow(t, defaultPolicy(), "09:45", "19:00", "09:20", "19:40", true)

	require.NotNil(t, win)
	assert.False(t, meta.CapIn)
	assert.False(t, meta.CapOut)
	assert.Equal(t, "09:30", engine.ToHHMM(win.In), "09:20 rounds up to 09:30")
	assert.Equal(t, "19:30", engine.ToHHMM(win.Out), "19:40 rounds down to 19:30")
	assert.True(t, meta.RoundIn)
	assert.True(t, meta.RoundOut)
}

func TestComputePaidWindow_LateInEarlyOutKeepRealAndRound(t *testing.T) {
	// GIVEN: punches that shorten the shift (late in, early out); this
	//        direction never needs authorization
	// WHEN:  the paid window is computed
	// THEN:  the real times are kept, rounded against the employee

	win, meta := mustWindow(t, defaultPolicy(), "09:45", "19:00", "10:07", "18:23", false)

	require.NotNil(t, win)
	assert.Equal(t, "10:15", engine.ToHHMM(win.In), "late IN rounds up")
	assert.Equal(t, "18:15", engine.ToHHMM(win.Out), "early OUT rounds down")
	assert.True(t, meta.RoundIn)
	assert.True(t, meta.RoundOut)
	assert.False(t, meta.CapIn)
	assert.False(t, meta.CapOut)
}

func TestComputePaidWindow_NoOfficialShiftOnlyRounds(t *testing.T) {
	// GIVEN: no official shift (day off or unrostered date)
	// WHEN:  the paid window is computed
	// THEN:  no snap, no cap; rounding is the only adjustment made

	win, meta := mustWindow(t, defaultPolicy(), "", "", "08:10", "16:50", false)

	require.NotNil(t, win)
	assert.Equal(t, "08:15", engine.ToHHMM(win.In))
	assert.Equal(t, "16:45", engine.ToHHMM(win.Out))
	assert.False(t, meta.SnapIn)
	assert.False(t, meta.SnapOut)
	assert.False(t, meta.CapIn)
	assert.False(t, meta.CapOut)
}

func TestComputePaidWindow_MissingPunchYieldsNoWindow(t *testing.T) {
	// GIVEN: only a clock-in recorded
	// WHEN:  the paid window is computed
	// THEN:  there is no window (zero payable), and that is not an error

	win, meta, err := defaultPolicy().ComputePaidWindow("09:45", "19:00", "09:45", "", false)

	require.NoError(t, err)
	assert.Nil(t, win)
	assert.Equal(t, 0, engine.PayableMinutes(win, 60))
	assert.Equal(t, "09:45", meta.OfficialIn, "meta still reports the context")
}

func TestComputePaidWindow_OvernightShiftExtendsOut(t *testing.T) {
	// GIVEN: a shift crossing midnight: in 20:00, out 04:00 next day
	// WHEN:  the paid window is computed with no official shift
	// THEN:  the OUT gains a day rather than producing a negative window

	win, _ := mustWindow(t, defaultPolicy(), "", "", "20:00", "04:00", false)

	require.NotNil(t, win)
	assert.Equal(t, 8*60, win.Out-win.In)
	assert.Greater(t, win.Out, engine.MinutesPerDay)
}

func TestComputePaidWindow_MalformedTimeRejected(t *testing.T) {
	// GIVEN: a corrupt punch value
	// WHEN:  the paid window is computed
	// THEN:  ErrInvalidTimeFormat, never a silent correction

	_, _, err := defaultPolicy().ComputePaidWindow("09:45", "19:00", "9h45", "19:00", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidTimeFormat)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestComputePaidWindow_NeverReturnsOutBeforeIn(t *testing.T) {
	// GIVEN: a punch pair whose rounding would invert the window
	//        (in 10:10 rounds up to 10:15, out 10:12 rounds down to 10:00)
	// WHEN:  the paid window is computed
	// THEN:  the OUT is clamped to the IN; payable is zero, not negative

	win, _ := mustWindow(t, defaultPolicy(), "", "", "10:10", "10:12", false)

	require.NotNil(t, win)
	assert.GreaterOrEqual(t, win.Out, win.In)
	assert.Equal(t, 0, engine.PayableMinutes(win, 0))
}

func TestComputePaidWindow_SnapBeatsCapAtExactToleranceEdge(t *testing.T) {
	// GIVEN: a punch exactly at official-5 (the tolerance edge)
	// WHEN:  the paid window is computed unauthorized
	// THEN:  it snaps; the cap and round rules never see it

	win, meta := mustWindow(t, defaultPolicy(), "09:45", "19:00", "09:40", "19:05", false)

	require.NotNil(t, win)
	assert.True(t, meta.SnapIn)
	assert.True(t, meta.SnapOut)
	assert.False(t, meta.CapIn)
	assert.False(t, meta.CapOut)
	assert.False(t, meta.RoundIn)
	assert.False(t, meta.RoundOut)
	assert.Equal(t, "09:45", engine.ToHHMM(win.In))
	assert.Equal(t, "19:00", engine.ToHHMM(win.Out))
}

func TestRounding_Idempotent(t *testing.T) {
	// GIVEN: boundaries already on the 15-minute grid
	// WHEN:  rounded again
	// THEN:  nothing changes

	for _, m := range []int{0, 570, 585, 1140, 1440} {
		assert.Equal(t, m, engine.RoundUp(m, 15))
		assert.Equal(t, m, engine.RoundDown(m, 15))
	}
}

func TestComputePaidWindow_RoundFlagOnlySetWhenValueMoves(t *testing.T) {
	// GIVEN: real punches already on the grid, no official shift
	// WHEN:  the paid window is computed
	// THEN:  values are unchanged and the round flags stay clear

	win, meta := mustWindow(t, defaultPolicy(), "", "", "10:00", "18:00", false)

	require.NotNil(t, win)
	assert.Equal(t, "10:00", engine.ToHHMM(win.In))
	assert.Equal(t, "18:00", engine.ToHHMM(win.Out))
	assert.False(t, meta.RoundIn)
	assert.False(t, meta.RoundOut)
}

// =============================================================================
// PUNCH-TIME DECISION
// =============================================================================

func TestDecideStoredPunch_Table(t *testing.T) {
	p := defaultPolicy()

	cases := []struct {
		name        string
		kind        engine.PunchKind
		real        string
		official    string
		authorized  bool
		wantStore   string
		wantConfirm bool
	}{
		{"no official stores real", engine.PunchIn, "08:12", "", false, "08:12", false},
		{"within tolerance stores official", engine.PunchIn, "09:48", "09:45", false, "09:45", false},
		{"exact tolerance edge stores official", engine.PunchOut, "19:05", "19:00", false, "19:00", false},
		{"authorized early in stores real", engine.PunchIn, "09:20", "09:45", true, "09:20", false},
		{"unauthorized early in needs confirm", engine.PunchIn, "09:20", "09:45", false, "09:45", true},
		{"unauthorized late in stores real", engine.PunchIn, "10:30", "09:45", false, "10:30", false},
		{"unauthorized late out needs confirm", engine.PunchOut, "19:40", "19:00", false, "19:00", true},
		{"unauthorized early out stores real", engine.PunchOut, "18:10", "19:00", false, "18:10", false},
		{"authorized late out stores real", engine.PunchOut, "19:40", "19:00", true, "19:40", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, confirm, err := p.DecideStoredPunch(tc.kind, tc.real, tc.official, tc.authorized)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStore, store)
			assert.Equal(t, tc.wantConfirm, confirm)
		})
	}
}

func TestDecideStoredPunch_MalformedReal(t *testing.T) {
	_, _, err := defaultPolicy().DecideStoredPunch(engine.PunchIn, "losing:track", "09:45", false)
	assert.ErrorIs(t, err, engine.ErrInvalidTimeFormat)
}
