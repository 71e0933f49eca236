/*
window.go - The paid-window calculator

PURPOSE:
  Turns a pair of real punches plus an optional official shift into the
  window of minutes the employee is actually paid for, along with a
  metadata record explaining every adjustment made. This is the heart
  of the engine; everything else feeds it or consumes it.

RULE ORDER (applied independently to IN and OUT):
  1. Snap: a punch within ToleranceMin of the official time becomes the
     official time exactly. Small clock drift never changes pay.
  2. Cap: without authorization, an early IN or late OUT beyond the
     tolerance is pulled back to the official time, so unauthorized
     overtime is not counted. Authorized punches keep their real time.
  3. Round: any boundary that was NOT snapped lands on the RoundStepMin
     grid, IN upward and OUT downward. Capped values round too.

  Finally the window is clamped so OUT never precedes IN; a degenerate
  window pays zero minutes rather than failing.

OVERNIGHT:
  A real OUT earlier than the real IN means the shift crossed midnight;
  the OUT gains a day (same for an official window whose end precedes
  its start). Minutes past 1440 are wrapped only at display time.

DECISION VS COMPUTATION:
  DecideStoredPunch answers the question at punch time ("what do we
  write down, and must we ask the employee first?"); ComputePaidWindow
  answers it at pay time from whatever got written down. Both share the
  same tolerance so their answers agree.
*/
package engine

// PunchKind distinguishes the two clock directions.
type PunchKind string

const (
	PunchIn  PunchKind = "IN"
	PunchOut PunchKind = "OUT"
)

// =============================================================================
// PAID WINDOW
// =============================================================================

// PaidWindow is the payable span in minutes since midnight. Out may
// exceed MinutesPerDay when the shift crossed midnight.
type PaidWindow struct {
	In  int
	Out int
}

// WindowMeta records every adjustment ComputePaidWindow made, for
// day-detail views and for auditing disputes. At most one of snap/cap
// is set per boundary; round may combine with cap but never with snap.
type WindowMeta struct {
	SnapIn   bool `json:"snap_in"`
	SnapOut  bool `json:"snap_out"`
	CapIn    bool `json:"cap_in"`
	CapOut   bool `json:"cap_out"`
	RoundIn  bool `json:"round_in"`
	RoundOut bool `json:"round_out"`

	OfficialIn  string `json:"official_in,omitempty"`
	OfficialOut string `json:"official_out,omitempty"`
	Authorized  bool   `json:"authorized"`
}

// ComputePaidWindow applies snap, cap and rounding to a pair of real
// punches. officialIn/officialOut are empty when no official shift
// applies, in which case rounding is the only adjustment. A missing
// real punch yields a nil window (zero payable minutes) and no error;
// a malformed time yields ErrInvalidTimeFormat.
func (p Policy) ComputePaidWindow(officialIn, officialOut, realIn, realOut string, authorized bool) (*PaidWindow, WindowMeta, error) {
	meta := WindowMeta{
		OfficialIn:  officialIn,
		OfficialOut: officialOut,
		Authorized:  authorized,
	}

	if realIn == "" || realOut == "" {
		return nil, meta, nil
	}

	rin, err := ToMinutes(realIn)
	if err != nil {
		return nil, meta, err
	}
	rout, err := ToMinutes(realOut)
	if err != nil {
		return nil, meta, err
	}

	// Overnight: OUT before IN means the shift crossed midnight.
	if rout < rin {
		rout += MinutesPerDay
	}

	paidIn, paidOut := rin, rout

	offIn := -1
	if officialIn != "" {
		if offIn, err = ToMinutes(officialIn); err != nil {
			return nil, meta, err
		}
		switch {
		case abs(rin-offIn) <= p.ToleranceMin:
			paidIn = offIn
			meta.SnapIn = true
		case !authorized && rin < offIn-p.ToleranceMin:
			// Early IN without authorization: overtime not counted.
			paidIn = offIn
			meta.CapIn = true
		}
	}

	if officialOut != "" {
		offOut, err := ToMinutes(officialOut)
		if err != nil {
			return nil, meta, err
		}
		// Align an overnight official window the same way.
		if offIn >= 0 && offOut < offIn {
			offOut += MinutesPerDay
		}
		switch {
		case abs(rout-offOut) <= p.ToleranceMin:
			paidOut = offOut
			meta.SnapOut = true
		case !authorized && rout > offOut+p.ToleranceMin:
			// Late OUT without authorization: overtime not counted.
			paidOut = offOut
			meta.CapOut = true
		}
	}

	// Rounding applies only to boundaries that did not snap; the flag is
	// set only when rounding actually moved the value.
	if !meta.SnapIn {
		r := RoundUp(paidIn, p.RoundStepMin)
		meta.RoundIn = r != paidIn
		paidIn = r
	}
	if !meta.SnapOut {
		r := RoundDown(paidOut, p.RoundStepMin)
		meta.RoundOut = r != paidOut
		paidOut = r
	}

	// Never a negative window.
	if paidOut < paidIn {
		paidOut = paidIn
	}

	return &PaidWindow{In: paidIn, Out: paidOut}, meta, nil
}

// =============================================================================
// PUNCH-TIME DECISION
// =============================================================================

// DecideStoredPunch decides what time to persist for a punch happening
// right now, and whether the employee must confirm before the punch can
// commit. official is empty when no roster covers today.
//
//   - no official: store the real time, no confirmation
//   - within tolerance: store the official time
//   - authorized: store the real time
//   - unauthorized early IN or late OUT: store the official time and
//     require confirmation, so overtime is never counted silently
//   - any other deviation (late IN, early OUT): store the real time;
//     the paid-window rounding handles it at pay time
func (p Policy) DecideStoredPunch(kind PunchKind, real, official string, authorized bool) (store string, needsConfirm bool, err error) {
	if official == "" {
		return real, false, nil
	}

	realMin, err := ToMinutes(real)
	if err != nil {
		return "", false, err
	}
	offMin, err := ToMinutes(official)
	if err != nil {
		return "", false, err
	}
	diff := realMin - offMin

	if abs(diff) <= p.ToleranceMin {
		return official, false, nil
	}
	if authorized {
		return real, false, nil
	}

	switch kind {
	case PunchIn:
		if diff < -p.ToleranceMin {
			return official, true, nil
		}
	case PunchOut:
		if diff > p.ToleranceMin {
			return official, true, nil
		}
	}
	return real, false, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
