package engine

// =============================================================================
// INTERVAL - Half-open minute range on the rolling timeline
// =============================================================================

// Interval is a half-open range [Start, End) of minutes on the rolling
// timeline. Minute 0 is midnight of the anchor day; an interval that
// crosses midnight simply runs past 1440. End is always > Start.
type Interval struct {
	Start int
	End   int
}

// ClockInterval builds an interval from two "HH:MM" clock values anchored
// to the same day. An end at or before the start is interpreted as
// crossing midnight (the end belongs to the following day), never as a
// negative duration.
func ClockInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if e <= s {
		e += MinutesPerDay
	}
	return Interval{Start: s, End: e}, nil
}

// Minutes returns the interval's length.
func (iv Interval) Minutes() int {
	return iv.End - iv.Start
}

// ShiftDays translates the interval by n calendar days along the timeline.
// Negative n moves it earlier.
func (iv Interval) ShiftDays(n int) Interval {
	return Interval{Start: iv.Start + n*MinutesPerDay, End: iv.End + n*MinutesPerDay}
}

// Overlap returns the number of minutes shared by both intervals, 0 when
// they are disjoint or merely touching.
func (iv Interval) Overlap(other Interval) int {
	start := iv.Start
	if other.Start > start {
		start = other.Start
	}
	end := iv.End
	if other.End < end {
		end = other.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Intersects reports whether the two intervals share at least one minute.
// Back-to-back intervals (one ending exactly when the other starts) do
// not intersect.
func (iv Interval) Intersects(other Interval) bool {
	return iv.Overlap(other) > 0
}

// GapTo returns the rest gap in minutes between the end of iv and the
// start of next. A non-positive value means next starts before iv ends.
func (iv Interval) GapTo(next Interval) int {
	return next.Start - iv.End
}

// MergeIntervals coalesces overlapping or touching intervals into a
// minimal sorted set. The input is not modified.
func MergeIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start < sorted[j-1].Start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// LongestGap returns the longest span of minutes inside [windowStart,
// windowEnd] not covered by any of the given intervals. Intervals may
// extend past the window on either side; only the uncovered portion
// inside the window counts. An empty set yields the whole window.
func LongestGap(ivs []Interval, windowStart, windowEnd int) int {
	merged := MergeIntervals(ivs)
	longest := 0
	cursor := windowStart
	for _, iv := range merged {
		if iv.End <= windowStart || iv.Start >= windowEnd {
			continue
		}
		if iv.Start > cursor {
			if gap := iv.Start - cursor; gap > longest {
				longest = gap
			}
		}
		if iv.End > cursor {
			cursor = iv.End
		}
	}
	if windowEnd > cursor {
		if gap := windowEnd - cursor; gap > longest {
			longest = gap
		}
	}
	return longest
}
