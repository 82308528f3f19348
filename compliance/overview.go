/*
overview.go - Weekly compliance overview for a responsible party

PURPOSE:
  Runs the compliance checker over every active worker of one employer,
  restricted to a stated ISO week, and produces a ranked summary the
  employer can review: critical workers first, then warnings, then ok,
  ties broken by name.

DETERMINISM:
  The week and the reference day are explicit parameters. The engine
  never reads the system clock, so the same inputs always produce the
  same overview.

SEE ALSO:
  - checker.go: the per-shift validation this aggregates
*/
package compliance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/engine"
)

// WeeklyOverview aggregates compliance for every active contract of the
// employer within the given week. asOf is the reference day for the
// remaining-daily-hours figure and must fall inside the week. Shifts
// and absences may cover any employee; the aggregator filters per
// contract.
func WeeklyOverview(cfg AgreementConfig, employerID string, week engine.Period, asOf time.Time, contracts []Contract, employees []Employee, shifts []Shift, absences []Absence) WeeklyComplianceOverview {
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	overview := WeeklyComplianceOverview{
		EmployerID: employerID,
		WeekStart:  week.Start,
		WeekEnd:    week.End,
		WeekLabel:  week.Label(),
	}

	for _, contract := range contracts {
		if !contract.Active || contract.EmployerID != employerID {
			continue
		}
		status := employeeStatus(cfg, contract, names[contract.EmployeeID], week, asOf, shifts, absences)
		overview.Employees = append(overview.Employees, status)

		switch status.Status {
		case StatusCritical:
			overview.Summary.Critical++
		case StatusWarning:
			overview.Summary.Warning++
		default:
			overview.Summary.OK++
		}
	}

	sort.SliceStable(overview.Employees, func(i, j int) bool {
		a, b := overview.Employees[i], overview.Employees[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		return a.Name < b.Name
	})

	return overview
}

func employeeStatus(cfg AgreementConfig, contract Contract, name string, week engine.Period, asOf time.Time, allShifts []Shift, allAbsences []Absence) EmployeeComplianceStatus {
	if name == "" {
		name = contract.EmployeeID
	}
	st := EmployeeComplianceStatus{
		EmployeeID:  contract.EmployeeID,
		Name:        name,
		ContractID:  contract.ID,
		WeeklyHours: contract.WeeklyHours,
		WeeklyRest:  RestCompliant,
		Status:      StatusOK,
	}

	// weekShifts counts toward the week's hours; nearShifts also carries
	// the neighbors just outside the week, so a shift whose tail crosses
	// midnight into Monday still reaches the rest checks.
	var weekShifts, nearShifts []Shift
	for _, s := range allShifts {
		if s.EmployeeID != contract.EmployeeID {
			continue
		}
		if d := engine.DaysBetween(week.Start, s.Date); d >= -2 && d <= 8 {
			nearShifts = append(nearShifts, s)
		}
		if week.Contains(s.Date) {
			weekShifts = append(weekShifts, s)
		}
	}
	var empAbsences []Absence
	for _, a := range allAbsences {
		if a.EmployeeID == contract.EmployeeID {
			empAbsences = append(empAbsences, a)
		}
	}

	// Validate every shift of the week against its siblings; week-level
	// alerts repeat identically across runs and collapse in the dedup.
	seen := make(map[string]bool)
	var dayHours decimal.Decimal
	for _, shift := range weekShifts {
		minutes, err := ShiftDuration(shift.Start, shift.End, shift.BreakMinutes)
		if err != nil {
			st.Alerts = append(st.Alerts, Alert{
				Kind:       KindDataQuality,
				Severity:   SeverityWarning,
				Message:    "shift " + shift.ID + " has an unreadable time and was excluded",
				ConflictID: shift.ID,
			})
			continue
		}
		st.CurrentWeekHours = st.CurrentWeekHours.Add(minutesToHours(minutes))
		if engine.Midnight(shift.Date).Equal(engine.Midnight(asOf)) {
			dayHours = dayHours.Add(minutesToHours(minutes))
		}

		result, err := ValidateShift(cfg, shift, nearShifts, empAbsences, &contract)
		if err != nil {
			continue // unreadable records already surfaced above
		}
		for _, a := range append(result.Errors, result.Warnings...) {
			key := a.Kind + "|" + a.ConflictID + "|" + a.Message
			if seen[key] {
				continue
			}
			seen[key] = true
			st.Alerts = append(st.Alerts, a)
			if a.Kind == KindWeeklyRest {
				st.WeeklyRest = RestNonCompliant
			}
		}
	}

	st.CurrentWeekHours = round2(st.CurrentWeekHours)
	st.RemainingWeeklyHours = remaining(weeklyLimit(cfg, contract), st.CurrentWeekHours)
	st.RemainingDailyHours = remaining(cfg.DailyHoursMax, dayHours)
	st.Status = worstSeverity(st.Alerts)
	return st
}

// weeklyLimit prefers the contractual ceiling; without one, the legal
// critical ceiling is the only limit left to budget against.
func weeklyLimit(cfg AgreementConfig, contract Contract) decimal.Decimal {
	if contract.WeeklyHours.IsPositive() {
		return contract.WeeklyHours
	}
	return cfg.WeeklyHoursCritical
}

func remaining(limit, used decimal.Decimal) decimal.Decimal {
	r := limit.Sub(used)
	if r.IsNegative() {
		return decimal.Zero
	}
	return round2(r)
}

func worstSeverity(alerts []Alert) OverallStatus {
	status := StatusOK
	for _, a := range alerts {
		if a.Severity == SeverityError {
			return StatusCritical
		}
		status = StatusWarning
	}
	return status
}

func statusRank(s OverallStatus) int {
	switch s {
	case StatusCritical:
		return 0
	case StatusWarning:
		return 1
	default:
		return 2
	}
}
