/*
calc.go - Duration and night-hours calculators

PURPOSE:
  The two leaf calculators of the engine. Both run on the rolling
  timeline from the engine package so that midnight wraparound is
  handled in exactly one place.

NIGHT WINDOW:
  The legal night window (default 21:00-06:00) itself crosses midnight.
  A shift can intersect up to two anchored copies of it: the window of
  the night the shift starts in, and the neighboring night when the
  shift crosses midnight or starts in the small hours. The calculator
  sums the overlap with the windows anchored to the previous, same and
  following day; the copies never overlap each other, so the sum is
  exact.

SEE ALSO:
  - engine/interval.go: the overlap math
  - weighting.go: consumes durations for the pay weighting
*/
package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/engine"
)

var minutesPerHour = decimal.NewFromInt(60)

// ShiftDuration converts a shift's clock times and break length into
// effective minutes. Midnight-aware; a break longer than the raw
// interval yields 0, never a negative duration. Fails only on
// malformed clock strings.
func ShiftDuration(start, end string, breakMinutes int) (int, error) {
	iv, err := engine.ClockInterval(start, end)
	if err != nil {
		return 0, err
	}
	d := iv.Minutes() - breakMinutes
	if d < 0 {
		d = 0
	}
	return d, nil
}

// NightHours returns how many hours of the shift fall inside the legal
// night window, as an exact decimal (rounding is the caller's display
// concern). A shift entirely outside night hours returns 0; malformed
// clock strings raise the error rather than silently returning 0, so
// that callers choose the fallback policy explicitly.
func NightHours(cfg AgreementConfig, start, end string) (decimal.Decimal, error) {
	shift, err := engine.ClockInterval(start, end)
	if err != nil {
		return decimal.Zero, err
	}
	window, err := engine.ClockInterval(cfg.NightStart, cfg.NightEnd)
	if err != nil {
		return decimal.Zero, err
	}

	overlap := 0
	for day := -1; day <= 1; day++ {
		overlap += shift.Overlap(window.ShiftDays(day))
	}
	return decimal.NewFromInt(int64(overlap)).Div(minutesPerHour), nil
}

// round2 rounds an exact decimal for a result boundary.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
