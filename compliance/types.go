/*
Package compliance implements the labor-agreement rules for home-care
scheduling (IDCC 3239 by default).

PURPOSE:
  Given plain shift, contract and absence records, this package computes
  shift durations and night-hour content, decides whether a sleep-in
  night-presence shift requalifies as effective work, applies the pay
  weighting per shift type, validates a candidate shift against the
  worker's schedule and the legal floors/ceilings, and aggregates a
  per-employer weekly compliance overview.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: one work interval; the type tag decides which fields matter
  - Contract/Absence: read-only inputs from the service layer
  - Alert/ComplianceResult: the checker's structured output
  - WeeklyComplianceOverview: the employer-facing aggregate

DESIGN PRINCIPLES:
  1. Purity: nothing here performs I/O or mutates its inputs
  2. Precision: decimal.Decimal for hour and pay arithmetic, rounded to
     2 decimals only at result boundaries
  3. Explicit severity: errors are hard legal violations, warnings are
     advisory and never block

SEE ALSO:
  - config.go: AgreementConfig, the legal parameter set
  - checker.go: ValidateShift orchestration
  - overview.go: Weekly aggregation
*/
package compliance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT - One work interval for one contract/employee
// =============================================================================

type ShiftType string

const (
	// ShiftEffective is ordinary active work, paid at raw duration.
	ShiftEffective ShiftType = "effective"
	// ShiftPresenceDay is daytime responsible presence, weighted 2/3.
	ShiftPresenceDay ShiftType = "presence_day"
	// ShiftPresenceNight is a sleep-in night presence, paid as a flat
	// quarter-rate indemnity unless requalified by interventions.
	ShiftPresenceNight ShiftType = "presence_night"
	// ShiftGuard24h is a 24-hour guard duty split into ordered segments.
	ShiftGuard24h ShiftType = "guard_24h"
)

type ShiftStatus string

const (
	ShiftPlanned   ShiftStatus = "planned"
	ShiftCompleted ShiftStatus = "completed"
)

type SegmentKind string

const (
	SegmentEffective SegmentKind = "effective"
	SegmentPresence  SegmentKind = "presence"
)

// GuardSegment is one leg of a 24h guard duty. Its span runs from Start
// to the next segment's Start (the last segment ends at the shift end).
type GuardSegment struct {
	Start        string // "HH:MM"
	Kind         SegmentKind
	BreakMinutes int
}

// Shift identifies one work interval. Start and End are local "HH:MM"
// clock values; an End at or before Start means the shift crosses
// midnight into the following calendar day.
//
// Field meaning depends on Type:
//   - HasNightAction: only meaningful when the shift overlaps night hours
//   - NightInterventions: only meaningful for presence_night
//   - GuardSegments: only meaningful for guard_24h
type Shift struct {
	ID         string
	ContractID string
	EmployeeID string
	Date       time.Time // calendar day the shift starts
	Start      string
	End        string
	BreakMinutes int
	Status     ShiftStatus
	Type       ShiftType
	HasNightAction     bool
	NightInterventions int
	Tasks              []string
	GuardSegments      []GuardSegment
}

// =============================================================================
// CONTRACT / ABSENCE - Read-only inputs
// =============================================================================

// Contract links an employee to an employer. WeeklyHours is the
// contractual ceiling; zero means not set, which skips the contractual
// check without failing the validation.
type Contract struct {
	ID          string
	EmployeeID  string
	EmployerID  string
	WeeklyHours decimal.Decimal
	HourlyRate  decimal.Decimal
	Active      bool
}

type AbsenceStatus string

const (
	AbsencePending  AbsenceStatus = "pending"
	AbsenceApproved AbsenceStatus = "approved"
	AbsenceRejected AbsenceStatus = "rejected"
)

// Absence is an inclusive calendar-day range. Only approved absences are
// relevant to compliance: they legitimize a schedule gap but must not
// overlap a shift.
type Absence struct {
	ID         string
	EmployeeID string
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Status     AbsenceStatus
}

// Employee carries the identity fields the overview needs for display
// and tie-breaking. Everything else about the person lives outside the
// engine.
type Employee struct {
	ID   string
	Name string
}

// =============================================================================
// COMPLIANCE RESULT - The checker's output for one candidate shift
// =============================================================================

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Alert kinds, machine-readable. Messages are human-readable and may be
// localized or truncated by consumers.
const (
	KindShiftOverlap   = "shift_overlap"
	KindAbsenceOverlap = "absence_overlap"
	KindDailyRest      = "daily_rest"
	KindWeeklyRest     = "weekly_rest"
	KindWeeklyHours    = "weekly_hours"
	KindContractHours  = "contract_hours"
	KindDataQuality    = "data_quality"
)

// Alert is one violation or risk signal. ConflictID references the
// sibling shift or absence that triggered an overlap alert.
type Alert struct {
	Kind       string
	Severity   Severity
	Message    string
	ConflictID string
}

// ComplianceResult is the complete outcome of validating one shift.
// Errors block completion; warnings only surface. SkippedChecks lists
// the checks that could not be evaluated for lack of data.
type ComplianceResult struct {
	Errors        []Alert
	Warnings      []Alert
	SkippedChecks []string
	DurationHours decimal.Decimal
	Pay           *ComputedPay
}

// OK returns true when the shift carries no hard violation.
func (r ComplianceResult) OK() bool { return len(r.Errors) == 0 }

// ComputedPay is the per-shift pay breakdown. EffectiveHours is nil when
// the weighting is not applicable (plain effective work, or the
// indemnity path of a non-requalified night presence).
type ComputedPay struct {
	DurationHours   decimal.Decimal
	EffectiveHours  *decimal.Decimal
	IndemnityHours  *decimal.Decimal
	NightHours      decimal.Decimal
	NightMajoration decimal.Decimal // extra pay from the night surcharge
	HourlyRate      decimal.Decimal
	Total           decimal.Decimal
}

// =============================================================================
// WEEKLY OVERVIEW - Employer-facing aggregate
// =============================================================================

type OverallStatus string

const (
	StatusOK       OverallStatus = "ok"
	StatusWarning  OverallStatus = "warning"
	StatusCritical OverallStatus = "critical"
)

type WeeklyRestStatus string

const (
	RestCompliant    WeeklyRestStatus = "compliant"
	RestNonCompliant WeeklyRestStatus = "non_compliant"
)

// EmployeeComplianceStatus is one row of the weekly overview.
type EmployeeComplianceStatus struct {
	EmployeeID           string
	Name                 string
	ContractID           string
	WeeklyHours          decimal.Decimal
	CurrentWeekHours     decimal.Decimal
	RemainingWeeklyHours decimal.Decimal
	RemainingDailyHours  decimal.Decimal
	WeeklyRest           WeeklyRestStatus
	Alerts               []Alert
	Status               OverallStatus
}

// OverviewSummary tallies employees per status bucket.
type OverviewSummary struct {
	Critical int
	Warning  int
	OK       int
}

// WeeklyComplianceOverview is the aggregate for one responsible party.
type WeeklyComplianceOverview struct {
	EmployerID string
	WeekStart  time.Time
	WeekEnd    time.Time
	WeekLabel  string
	Employees  []EmployeeComplianceStatus
	Summary    OverviewSummary
}
