package compliance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresched/compliance-engine/compliance"
	"github.com/caresched/compliance-engine/engine"
)

func empShift(employeeID, id string, date time.Time, start, end string) compliance.Shift {
	s := shift(id, date, start, end)
	s.EmployeeID = employeeID
	s.ContractID = "ct-" + employeeID
	return s
}

func empContract(employeeID string, weeklyHours int64) compliance.Contract {
	return compliance.Contract{
		ID:          "ct-" + employeeID,
		EmployeeID:  employeeID,
		EmployerID:  "empr-1",
		WeeklyHours: decimal.NewFromInt(weeklyHours),
		HourlyRate:  decimal.NewFromInt(12),
		Active:      true,
	}
}

// lightWeek is a single five-hour Tuesday shift.
func lightWeek(employeeID string) []compliance.Shift {
	return []compliance.Shift{empShift(employeeID, employeeID+"-tue", day(1), "09:00", "14:00")}
}

// loadedWeek is Mon-Thu 07:00-17:00 plus a Friday shift of the given
// span, with the weekend free.
func loadedWeek(employeeID, friStart, friEnd string) []compliance.Shift {
	var out []compliance.Shift
	for d := 0; d < 4; d++ {
		out = append(out, empShift(employeeID, employeeID+"-"+time.Weekday(d).String(), day(d), "07:00", "17:00"))
	}
	return append(out, empShift(employeeID, employeeID+"-fri", day(4), friStart, friEnd))
}

func TestWeeklyOverview_SortsCriticalThenWarningThenOK(t *testing.T) {
	// GIVEN: Zoé at exactly the 48h ceiling, Marc at 46h, Alice at 5h
	// WHEN: Building the employer's weekly overview
	// THEN: Order is by severity, not by name

	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{
		empContract("alice", 35),
		empContract("marc", 35),
		empContract("zoe", 35),
	}
	employees := []compliance.Employee{
		{ID: "alice", Name: "Alice"},
		{ID: "marc", Name: "Marc"},
		{ID: "zoe", Name: "Zoé"},
	}
	var shifts []compliance.Shift
	shifts = append(shifts, lightWeek("alice")...)
	shifts = append(shifts, loadedWeek("marc", "07:00", "13:00")...)  // 46h
	shifts = append(shifts, loadedWeek("zoe", "08:00", "16:00")...)   // 48h

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, employees, shifts, nil)

	require.Len(t, ov.Employees, 3)
	assert.Equal(t, "Zoé", ov.Employees[0].Name)
	assert.Equal(t, compliance.StatusCritical, ov.Employees[0].Status)
	assert.Equal(t, "Marc", ov.Employees[1].Name)
	assert.Equal(t, compliance.StatusWarning, ov.Employees[1].Status)
	assert.Equal(t, "Alice", ov.Employees[2].Name)
	assert.Equal(t, compliance.StatusOK, ov.Employees[2].Status)

	assert.Equal(t, compliance.OverviewSummary{Critical: 1, Warning: 1, OK: 1}, ov.Summary)
	assert.Equal(t, week.Label(), ov.WeekLabel)
}

func TestWeeklyOverview_TiesBrokenByName(t *testing.T) {
	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{
		empContract("c1", 35),
		empContract("b1", 35),
	}
	employees := []compliance.Employee{
		{ID: "c1", Name: "Chloé"},
		{ID: "b1", Name: "Benoît"},
	}
	var shifts []compliance.Shift
	shifts = append(shifts, lightWeek("c1")...)
	shifts = append(shifts, lightWeek("b1")...)

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, employees, shifts, nil)

	require.Len(t, ov.Employees, 2)
	assert.Equal(t, "Benoît", ov.Employees[0].Name)
	assert.Equal(t, "Chloé", ov.Employees[1].Name)
}

func TestWeeklyOverview_FiltersInactiveAndForeignContracts(t *testing.T) {
	week := engine.ISOWeekOf(day(0))

	inactive := empContract("gone", 35)
	inactive.Active = false
	foreign := empContract("other", 35)
	foreign.EmployerID = "empr-2"
	contracts := []compliance.Contract{empContract("alice", 35), inactive, foreign}

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, nil, lightWeek("alice"), nil)

	require.Len(t, ov.Employees, 1)
	assert.Equal(t, "alice", ov.Employees[0].EmployeeID)
	// No Employee record was supplied, so the id stands in for the name.
	assert.Equal(t, "alice", ov.Employees[0].Name)
}

func TestWeeklyOverview_HourBudgets(t *testing.T) {
	// GIVEN: A 35h contract, 5h worked so far, all of it on the asOf day
	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{empContract("alice", 35)}
	employees := []compliance.Employee{{ID: "alice", Name: "Alice"}}

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, employees, lightWeek("alice"), nil)

	require.Len(t, ov.Employees, 1)
	st := ov.Employees[0]
	assert.True(t, st.CurrentWeekHours.Equal(decimal.NewFromInt(5)), "got %s", st.CurrentWeekHours)
	assert.True(t, st.RemainingWeeklyHours.Equal(decimal.NewFromInt(30)), "got %s", st.RemainingWeeklyHours)
	assert.True(t, st.RemainingDailyHours.Equal(decimal.NewFromInt(7)), "got %s", st.RemainingDailyHours)
	assert.Equal(t, compliance.RestCompliant, st.WeeklyRest)
}

func TestWeeklyOverview_RemainingHoursClampToZero(t *testing.T) {
	// 46h against a 35h contract leaves nothing, not a negative budget.
	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{empContract("marc", 35)}

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, nil, loadedWeek("marc", "07:00", "13:00"), nil)

	require.Len(t, ov.Employees, 1)
	st := ov.Employees[0]
	assert.True(t, st.CurrentWeekHours.Equal(decimal.NewFromInt(46)), "got %s", st.CurrentWeekHours)
	assert.True(t, st.RemainingWeeklyHours.IsZero(), "got %s", st.RemainingWeeklyHours)
	// Tuesday carried a 10h shift against the 12h daily ceiling.
	assert.True(t, st.RemainingDailyHours.Equal(decimal.NewFromInt(2)), "got %s", st.RemainingDailyHours)
}

func TestWeeklyOverview_WeekLevelAlertsAppearOnce(t *testing.T) {
	// The weekly-hours alerts are recomputed for each of the five
	// shifts; the overview must not repeat them five times.
	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{empContract("marc", 35)}

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, nil, loadedWeek("marc", "07:00", "13:00"), nil)

	require.Len(t, ov.Employees, 1)
	counts := map[string]int{}
	for _, a := range ov.Employees[0].Alerts {
		counts[a.Kind]++
	}
	assert.Equal(t, 1, counts[compliance.KindWeeklyHours])
	assert.Equal(t, 1, counts[compliance.KindContractHours])
}

func TestWeeklyOverview_WeeklyRestStatus(t *testing.T) {
	// A shift every single day leaves no 35h rest span.
	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{empContract("sam", 0)}

	var shifts []compliance.Shift
	for d := 0; d < 7; d++ {
		shifts = append(shifts, empShift("sam", "sam-"+time.Weekday(d).String(), day(d), "08:00", "18:00"))
	}

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, nil, shifts, nil)

	require.Len(t, ov.Employees, 1)
	st := ov.Employees[0]
	assert.Equal(t, compliance.RestNonCompliant, st.WeeklyRest)
	assert.Equal(t, compliance.StatusCritical, st.Status)
}

func TestWeeklyOverview_WeeklyRestSeesPreviousWeekTail(t *testing.T) {
	// GIVEN: A sleep-in dated the previous Sunday running to Monday
	// 07:00, a Tuesday shift and Wednesday-Sunday shifts; the longest
	// rest is 29h
	// WHEN: Building the overview for the week the tail spills into
	// THEN: The tail counts against rest but not toward the week's hours

	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{empContract("nora", 0)}

	shifts := []compliance.Shift{
		empShift("nora", "nora-prev-sun", day(-1), "20:00", "07:00"),
		empShift("nora", "nora-tue", day(1), "12:00", "22:00"),
	}
	for d := 2; d <= 6; d++ {
		shifts = append(shifts, empShift("nora", "nora-"+time.Weekday(d%7).String(), day(d), "08:00", "18:00"))
	}

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, nil, shifts, nil)

	require.Len(t, ov.Employees, 1)
	st := ov.Employees[0]
	assert.Equal(t, compliance.RestNonCompliant, st.WeeklyRest)
	assert.Equal(t, compliance.StatusCritical, st.Status)
	// 10h Tuesday + 5x10h; the previous Sunday's 11h stays outside.
	assert.Equal(t, "60", st.CurrentWeekHours.String())
}

func TestWeeklyOverview_UnreadableShiftBecomesDataQualityAlert(t *testing.T) {
	week := engine.ISOWeekOf(day(0))
	contracts := []compliance.Contract{empContract("alice", 35)}

	broken := empShift("alice", "alice-bad", day(2), "9am", "17:00")
	shifts := append(lightWeek("alice"), broken)

	ov := compliance.WeeklyOverview(cfg(), "empr-1", week, day(1), contracts, nil, shifts, nil)

	require.Len(t, ov.Employees, 1)
	st := ov.Employees[0]
	found := false
	for _, a := range st.Alerts {
		if a.Kind == compliance.KindDataQuality && a.ConflictID == "alice-bad" {
			found = true
		}
	}
	assert.True(t, found, "expected a data-quality alert for the unreadable shift")
	// The broken shift contributes no hours.
	assert.True(t, st.CurrentWeekHours.Equal(decimal.NewFromInt(5)), "got %s", st.CurrentWeekHours)
}
