/*
Package engine provides the temporal core of the compliance engine.

PURPOSE:
  This package contains domain-agnostic primitives for clock-time and
  interval arithmetic. Shifts in home care routinely cross midnight, so
  every calculation that involves two clock times (duration, night-hour
  overlap, rest gaps) runs on a single rolling timeline measured in
  minutes from a reference midnight, rather than on wall-clock pairs.

KEY CONCEPTS IN THIS FILE (clock.go):
  - Clock values: "HH:MM" strings parsed to minutes since midnight
  - MinutesPerDay: the timeline's day stride (1440)

DESIGN PRINCIPLES:
  1. Totality: parsing succeeds for every syntactically valid "HH:MM"
  2. Explicit failure: malformed input raises InvalidTimeError, never a
     silent zero - callers choose their own fallback policy
  3. Exactness: all arithmetic stays in integer minutes; rounding to
     hours happens only at display boundaries

SEE ALSO:
  - interval.go: Interval type and overlap/gap math
  - week.go: ISO-week periods for weekly aggregation
  - errors.go: Sentinel and structured error types
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the stride of one calendar day on the rolling timeline.
const MinutesPerDay = 24 * 60

// ParseClock converts an "HH:MM" local clock value to minutes since
// midnight. Hours run 0-23 and minutes 0-59; anything else is an
// InvalidTimeError wrapping ErrInvalidTimeFormat.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, &InvalidTimeError{Value: s}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, &InvalidTimeError{Value: s}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, &InvalidTimeError{Value: s}
	}
	return h*60 + m, nil
}

// FormatClock renders a timeline minute back to "HH:MM". Minutes beyond
// the first day wrap around the clock face; the day offset is dropped.
func FormatClock(min int) string {
	min = ((min % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
