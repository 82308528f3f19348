package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresched/compliance-engine/compliance"
	"github.com/caresched/compliance-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmployeeRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, compliance.Employee{ID: "emp-1", Name: "Alice"}))

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	// Upsert renames in place.
	require.NoError(t, s.SaveEmployee(ctx, compliance.Employee{ID: "emp-1", Name: "Alice B"}))
	got, err = s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)

	missing, err := s.GetEmployee(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListEmployees_OrderedByName(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, compliance.Employee{ID: "e1", Name: "Zoé"}))
	require.NoError(t, s.SaveEmployee(ctx, compliance.Employee{ID: "e2", Name: "Alice"}))

	list, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Zoé", list[1].Name)
}

func TestContractRoundTrip_PreservesDecimals(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	c := compliance.Contract{
		ID:          "ct-1",
		EmployeeID:  "emp-1",
		EmployerID:  "empr-1",
		WeeklyHours: decimal.NewFromFloat(34.5),
		HourlyRate:  decimal.NewFromFloat(12.75),
		Active:      true,
	}
	require.NoError(t, s.SaveContract(ctx, c))

	got, err := s.GetContract(ctx, "ct-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.WeeklyHours.Equal(decimal.NewFromFloat(34.5)), "got %s", got.WeeklyHours)
	assert.True(t, got.HourlyRate.Equal(decimal.NewFromFloat(12.75)), "got %s", got.HourlyRate)
	assert.True(t, got.Active)
}

func TestListContractsByEmployer(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, c := range []compliance.Contract{
		{ID: "ct-1", EmployeeID: "e1", EmployerID: "empr-1", Active: true},
		{ID: "ct-2", EmployeeID: "e2", EmployerID: "empr-1", Active: false},
		{ID: "ct-3", EmployeeID: "e3", EmployerID: "empr-2", Active: true},
	} {
		require.NoError(t, s.SaveContract(ctx, c))
	}

	list, err := s.ListContractsByEmployer(ctx, "empr-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ct-1", list[0].ID)
	assert.Equal(t, "ct-2", list[1].ID)
}

func TestShiftRoundTrip_WithGuardSegments(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	shift := compliance.Shift{
		ID:         "s-1",
		ContractID: "ct-1",
		EmployeeID: "emp-1",
		Date:       time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
		Start:      "08:00",
		End:        "08:00",
		Status:     compliance.ShiftPlanned,
		Type:       compliance.ShiftGuard24h,
		Tasks:      []string{"toilette", "repas"},
		GuardSegments: []compliance.GuardSegment{
			{Start: "08:00", Kind: compliance.SegmentEffective, BreakMinutes: 30},
			{Start: "20:00", Kind: compliance.SegmentPresence},
		},
	}
	require.NoError(t, s.SaveShift(ctx, shift))

	got, err := s.GetShift(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, shift.Date, got.Date)
	assert.Equal(t, shift.Tasks, got.Tasks)
	assert.Equal(t, shift.GuardSegments, got.GuardSegments)
	assert.Equal(t, compliance.ShiftGuard24h, got.Type)
}

func TestListShiftsForEmployee_DateRange(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	mk := func(id string, day int) compliance.Shift {
		return compliance.Shift{
			ID: id, ContractID: "ct-1", EmployeeID: "emp-1",
			Date:  time.Date(2026, time.August, day, 0, 0, 0, 0, time.UTC),
			Start: "09:00", End: "17:00",
			Status: compliance.ShiftPlanned, Type: compliance.ShiftEffective,
		}
	}
	require.NoError(t, s.SaveShift(ctx, mk("s-before", 23)))
	require.NoError(t, s.SaveShift(ctx, mk("s-mon", 24)))
	require.NoError(t, s.SaveShift(ctx, mk("s-sun", 30)))
	require.NoError(t, s.SaveShift(ctx, mk("s-after", 31)))

	other := mk("s-other", 25)
	other.EmployeeID = "emp-2"
	require.NoError(t, s.SaveShift(ctx, other))

	from := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	list, err := s.ListShiftsForEmployee(ctx, "emp-1", from, to)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s-mon", list[0].ID)
	assert.Equal(t, "s-sun", list[1].ID)
}

func TestSetShiftStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveShift(ctx, compliance.Shift{
		ID: "s-1", ContractID: "ct-1", EmployeeID: "emp-1",
		Date:  time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
		Start: "09:00", End: "17:00",
		Status: compliance.ShiftPlanned, Type: compliance.ShiftEffective,
	}))

	ok, err := s.SetShiftStatus(ctx, "s-1", compliance.ShiftCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetShift(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, compliance.ShiftCompleted, got.Status)

	ok, err = s.SetShiftStatus(ctx, "nope", compliance.ShiftCompleted)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAbsenceRoundTripAndStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := compliance.Absence{
		ID:         "ab-1",
		EmployeeID: "emp-1",
		Type:       "vacation",
		StartDate:  time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC),
		Status:     compliance.AbsencePending,
	}
	require.NoError(t, s.SaveAbsence(ctx, a))

	ok, err := s.SetAbsenceStatus(ctx, "ab-1", compliance.AbsenceApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetAbsence(ctx, "ab-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, compliance.AbsenceApproved, got.Status)
	assert.Equal(t, a.StartDate, got.StartDate)
	assert.Equal(t, a.EndDate, got.EndDate)

	list, err := s.ListAbsencesForEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReset(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, compliance.Employee{ID: "e1", Name: "Alice"}))
	require.NoError(t, s.Reset(ctx))

	list, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
