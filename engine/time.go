package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// MINUTE-OF-DAY ARITHMETIC
// =============================================================================
// All paid-time math happens on integer minutes since midnight. Overnight
// shifts are represented by letting the out-minute exceed 1440; values are
// wrapped back onto the clock face only when formatted for display.

// MinutesPerDay is the wrap modulus for display formatting.
const MinutesPerDay = 24 * 60

// ToMinutes parses a strict HH:MM string into minutes since midnight.
// Hours run 0-23 and minutes 0-59; anything else is ErrInvalidTimeFormat.
func ToMinutes(hhmm string) (int, error) {
	h, m, ok := splitHHMM(hhmm)
	if !ok {
		return 0, &TimeFormatError{Value: hhmm}
	}
	return h*60 + m, nil
}

// ToHHMM formats minutes since midnight as HH:MM. Values past midnight
// are NOT wrapped; callers that want clock-face display wrap with
// MinutesPerDay first. Negative input clamps to 00:00.
func ToHHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// RoundUp rounds minutes up to the next multiple of step.
func RoundUp(minutes, step int) int {
	if step <= 0 {
		return minutes
	}
	return ((minutes + step - 1) / step) * step
}

// RoundDown rounds minutes down to the previous multiple of step.
func RoundDown(minutes, step int) int {
	if step <= 0 {
		return minutes
	}
	return (minutes / step) * step
}

func splitHHMM(hhmm string) (h, m int, ok bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
