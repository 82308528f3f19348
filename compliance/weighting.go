/*
weighting.go - Requalification rule and effective-hours weighter

PURPOSE:
  Converts a shift's raw duration into the hours it is actually paid
  for, per shift type. The policy table:

    effective                     -> not applicable (nil, distinct from 0)
    presence_day                  -> duration x 2/3
    presence_night, requalified   -> duration x 1
    presence_night, otherwise     -> nil (flat 1/4 indemnity, see pay.go)
    guard_24h                     -> sum of effective segments, net of
                                     their breaks; presence segments
                                     contribute nothing

REQUALIFICATION:
  A sleep-in (presence_night) shift converts to fully paid effective
  work once the worker performed at least the configured number of
  interventions during the night. The rule is monotonic in the
  intervention count and never applies to other shift types.

SEE ALSO:
  - pay.go: the indemnity path and the night majoration
  - config.go: the weighting fractions
*/
package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/engine"
)

// Requalified decides whether a night-presence shift converts from the
// flat indemnity to full paid work. Only presence_night shifts are
// eligible; the threshold comes from the agreement, not the call site.
func Requalified(cfg AgreementConfig, shiftType ShiftType, nightInterventions int) bool {
	return shiftType == ShiftPresenceNight &&
		nightInterventions >= cfg.RequalificationThreshold
}

// EffectiveHours applies the pay-weighting policy. A nil result means
// the weighting is not applicable to this shift (which is different
// from zero effective hours). Results are rounded to 2 decimals at this
// boundary; internal sums stay exact.
func EffectiveHours(cfg AgreementConfig, shift Shift, requalified bool) (*decimal.Decimal, error) {
	switch shift.Type {
	case ShiftEffective:
		// Paid at raw duration; no conversion applies.
		return nil, nil

	case ShiftPresenceDay:
		hours, err := durationHours(shift)
		if err != nil {
			return nil, err
		}
		weighted := round2(hours.Mul(cfg.PresenceDayFactor.Decimal()))
		return &weighted, nil

	case ShiftPresenceNight:
		if !requalified {
			// Indemnity path, not effective hours.
			return nil, nil
		}
		hours, err := durationHours(shift)
		if err != nil {
			return nil, err
		}
		full := round2(hours)
		return &full, nil

	case ShiftGuard24h:
		hours, err := guardEffectiveHours(shift)
		if err != nil {
			return nil, err
		}
		rounded := round2(hours)
		return &rounded, nil

	default:
		return nil, &engine.InvalidInputError{Field: "shift_type", Reason: string(shift.Type)}
	}
}

// IndemnityHours returns the flat-rate hours for a non-requalified
// night presence, nil for every other case.
func IndemnityHours(cfg AgreementConfig, shift Shift, requalified bool) (*decimal.Decimal, error) {
	if shift.Type != ShiftPresenceNight || requalified {
		return nil, nil
	}
	hours, err := durationHours(shift)
	if err != nil {
		return nil, err
	}
	ind := round2(hours.Mul(cfg.NightIndemnityFactor.Decimal()))
	return &ind, nil
}

func durationHours(shift Shift) (decimal.Decimal, error) {
	minutes, err := ShiftDuration(shift.Start, shift.End, shift.BreakMinutes)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour), nil
}

// guardEffectiveHours walks the ordered guard segments. A segment spans
// from its start to the next segment's start (the last one ends at the
// shift end); boundaries that read earlier than their predecessor are on
// the following day.
func guardEffectiveHours(shift Shift) (decimal.Decimal, error) {
	if len(shift.GuardSegments) == 0 {
		return decimal.Zero, &engine.InvalidInputError{Field: "guard_segments", Reason: "guard_24h shift has no segments"}
	}

	boundaries := make([]int, 0, len(shift.GuardSegments)+1)
	for _, seg := range shift.GuardSegments {
		m, err := engine.ParseClock(seg.Start)
		if err != nil {
			return decimal.Zero, err
		}
		boundaries = append(boundaries, m)
	}
	endMin, err := engine.ParseClock(shift.End)
	if err != nil {
		return decimal.Zero, err
	}
	boundaries = append(boundaries, endMin)

	// Unroll onto the rolling timeline.
	for i := 1; i < len(boundaries); i++ {
		for boundaries[i] <= boundaries[i-1] {
			boundaries[i] += engine.MinutesPerDay
		}
	}

	total := 0
	for i, seg := range shift.GuardSegments {
		if seg.Kind != SegmentEffective {
			continue
		}
		span := boundaries[i+1] - boundaries[i] - seg.BreakMinutes
		if span < 0 {
			span = 0
		}
		total += span
	}
	return decimal.NewFromInt(int64(total)).Div(minutesPerHour), nil
}
