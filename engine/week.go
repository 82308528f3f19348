package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - ISO-week boundary for weekly aggregation
// =============================================================================

// Period is an inclusive calendar-day range. Weekly compliance rules
// (rest floor, hour ceilings) are always evaluated inside the ISO week
// containing the candidate shift, never a rolling 7-day window.
type Period struct {
	Start time.Time
	End   time.Time
}

// ISOWeekOf returns the Monday-to-Sunday ISO week containing date.
func ISOWeekOf(date time.Time) Period {
	d := Midnight(date)
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	start := d.AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 6)}
}

// ParseISOWeek parses a label like "2026-W35" into its Monday-to-Sunday
// period. The inverse of Label.
func ParseISOWeek(label string) (Period, error) {
	var year, week int
	if _, err := fmt.Sscanf(label, "%d-W%d", &year, &week); err != nil {
		return Period{}, &InvalidInputError{Field: "week", Reason: "want YYYY-Www, got " + label}
	}
	if week < 1 || week > 53 {
		return Period{}, &InvalidInputError{Field: "week", Reason: fmt.Sprintf("week %d out of range", week)}
	}
	// January 4 always falls inside ISO week 1.
	week1 := ISOWeekOf(time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC))
	start := week1.Start.AddDate(0, 0, (week-1)*7)
	if y, w := start.ISOWeek(); y != year || w != week {
		return Period{}, &InvalidInputError{Field: "week", Reason: fmt.Sprintf("year %d has no week %d", year, week)}
	}
	return Period{Start: start, End: start.AddDate(0, 0, 6)}, nil
}

// Contains returns true if the date falls within the period [Start, End].
func (p Period) Contains(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Label renders the period as an ISO week label, e.g. "2026-W35".
func (p Period) Label() string {
	year, week := p.Start.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}

// =============================================================================
// DAY ARITHMETIC
// =============================================================================

// Midnight truncates a time to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b; negative
// when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// OnTimeline anchors an interval (built from clock values on the day
// `date`) onto a timeline whose minute 0 is the midnight of `anchor`.
// This is how shifts on different calendar days become comparable for
// overlap and rest-gap checks.
func OnTimeline(iv Interval, anchor, date time.Time) Interval {
	return iv.ShiftDays(DaysBetween(anchor, date))
}
