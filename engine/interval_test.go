package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresched/compliance-engine/engine"
)

// =============================================================================
// CLOCK PARSING TESTS
// =============================================================================

func TestParseClock_ValidValues(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:30", 570},
		{"21:00", 1260},
		{"23:59", 1439},
		{" 08:15 ", 495},
	}
	for _, c := range cases {
		got, err := engine.ParseClock(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseClock_MalformedValues(t *testing.T) {
	for _, in := range []string{"", "9h30", "24:00", "12:60", "ab:cd", "12", "12:3:4"} {
		_, err := engine.ParseClock(in)
		assert.Error(t, err, in)
		assert.ErrorIs(t, err, engine.ErrInvalidTimeFormat, in)
	}
}

func TestFormatClock_WrapsDayOffset(t *testing.T) {
	assert.Equal(t, "07:00", engine.FormatClock(7*60))
	assert.Equal(t, "07:00", engine.FormatClock(engine.MinutesPerDay+7*60))
	assert.Equal(t, "23:00", engine.FormatClock(-60))
}

// =============================================================================
// INTERVAL TESTS
// =============================================================================

func TestClockInterval_SameDay(t *testing.T) {
	iv, err := engine.ClockInterval("09:00", "17:00")
	require.NoError(t, err)
	assert.Equal(t, 480, iv.Minutes())
}

func TestClockInterval_CrossingMidnight(t *testing.T) {
	// An end before the start means the shift runs into the next day.
	iv, err := engine.ClockInterval("23:00", "07:00")
	require.NoError(t, err)
	assert.Equal(t, 480, iv.Minutes())
	assert.Equal(t, 1380, iv.Start)
	assert.Equal(t, 1860, iv.End)
}

func TestInterval_OverlapSymmetry(t *testing.T) {
	a := engine.Interval{Start: 540, End: 780}  // 09:00-13:00
	b := engine.Interval{Start: 750, End: 1020} // 12:30-17:00
	assert.Equal(t, 30, a.Overlap(b))
	assert.Equal(t, b.Overlap(a), a.Overlap(b))
	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
}

func TestInterval_BackToBackDoNotIntersect(t *testing.T) {
	a := engine.Interval{Start: 540, End: 780}
	b := engine.Interval{Start: 780, End: 900}
	assert.False(t, a.Intersects(b))
	assert.Equal(t, 0, a.GapTo(b))
}

func TestMergeIntervals_CoalescesOverlaps(t *testing.T) {
	merged := engine.MergeIntervals([]engine.Interval{
		{Start: 600, End: 720},
		{Start: 0, End: 120},
		{Start: 100, End: 200},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, engine.Interval{Start: 0, End: 200}, merged[0])
	assert.Equal(t, engine.Interval{Start: 600, End: 720}, merged[1])
}

func TestLongestGap_EmptyWindowIsWholeWindow(t *testing.T) {
	assert.Equal(t, 7*engine.MinutesPerDay, engine.LongestGap(nil, 0, 7*engine.MinutesPerDay))
}

func TestLongestGap_BetweenShifts(t *testing.T) {
	// Two 8h shifts on Monday and Thursday of a week timeline: the
	// longest rest is between Monday 17:00 and Thursday 09:00.
	ivs := []engine.Interval{
		{Start: 540, End: 1020},                               // Mon 09:00-17:00
		{Start: 3*engine.MinutesPerDay + 540, End: 3*engine.MinutesPerDay + 1020}, // Thu
	}
	got := engine.LongestGap(ivs, 0, 7*engine.MinutesPerDay)
	assert.Equal(t, 3*engine.MinutesPerDay-480, got)
}

// =============================================================================
// WEEK TESTS
// =============================================================================

func TestISOWeekOf_MondayAnchorsItsOwnWeek(t *testing.T) {
	mon := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC) // a Monday
	p := engine.ISOWeekOf(mon)
	assert.Equal(t, mon, p.Start)
	assert.Equal(t, mon.AddDate(0, 0, 6), p.End)
}

func TestISOWeekOf_SundayBelongsToPrecedingMonday(t *testing.T) {
	sun := time.Date(2026, time.August, 30, 15, 4, 0, 0, time.UTC)
	p := engine.ISOWeekOf(sun)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), p.Start)
	assert.True(t, p.Contains(sun))
}

func TestPeriod_Label(t *testing.T) {
	p := engine.ISOWeekOf(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-W01", p.Label())
}

func TestOnTimeline_ShiftsByCalendarDays(t *testing.T) {
	anchor := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	next := anchor.AddDate(0, 0, 1)
	iv := engine.Interval{Start: 540, End: 1020}
	moved := engine.OnTimeline(iv, anchor, next)
	assert.Equal(t, 540+engine.MinutesPerDay, moved.Start)
}

func TestParseISOWeek_RoundTripsWithLabel(t *testing.T) {
	p, err := engine.ParseISOWeek("2026-W35")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, "2026-W35", p.Label())
}

func TestParseISOWeek_RejectsBadLabels(t *testing.T) {
	for _, label := range []string{"", "2026", "2026-35", "2026-W0", "2026-W54", "2025-W53"} {
		_, err := engine.ParseISOWeek(label)
		assert.Error(t, err, "label %q", label)
	}
}
