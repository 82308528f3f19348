/*
checker.go - Shift validation against the worker's schedule and the law

PURPOSE:
  ValidateShift is the engine's orchestrator. Given one candidate (or
  completed) shift plus the worker's other shifts and approved absences,
  it runs every rule check and returns a structured result of errors
  (hard legal violations that should block completion) and warnings
  (advisory signals that never block).

CHECK ORDER:
  1. Overlap        - candidate vs sibling shifts on the same or
                      adjacent day, and vs approved absence ranges
  2. Daily rest     - gap to the nearest neighboring shift, across day
                      boundaries (error below the floor, warning within
                      the configured margin of it)
  3. Weekly rest    - longest uninterrupted rest span within the ISO
                      week containing the candidate
  4. Weekly hours   - ISO-week total vs the contractual ceiling and the
                      global warning/critical thresholds
  5. Duration + pay - computed hours and, when a rate is available, the
                      ComputedPay breakdown with the night majoration

ERROR POLICY:
  Business-rule violations never raise an error return; they land in
  the result. Only malformed input (unparsable clock values, an absence
  range that ends before it starts) fails the call, so the engine never
  guesses intent. Missing data (no contract, no hourly rate) degrades
  to a skipped-check note; the result object is always complete.

PURITY:
  No I/O, no clock reads, no mutation of any input. Trivially safe to
  call concurrently.

SEE ALSO:
  - calc.go, weighting.go, pay.go: the leaf calculators
  - overview.go: runs this per employee for the weekly overview
*/
package compliance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/engine"
)

// Skipped-check identifiers reported in ComplianceResult.SkippedChecks.
const (
	CheckContractHours = "contract_weekly_hours"
	CheckPay           = "pay"
)

// ValidateShift validates one candidate shift. Siblings are the
// employee's other shifts (the candidate itself is filtered out by ID);
// absences are checked only when approved; contract may be nil, which
// skips the contractual-hours and pay computations.
func ValidateShift(cfg AgreementConfig, candidate Shift, siblings []Shift, absences []Absence, contract *Contract) (ComplianceResult, error) {
	var res ComplianceResult

	candIv, err := engine.ClockInterval(candidate.Start, candidate.End)
	if err != nil {
		return res, err
	}
	if candidate.Date.IsZero() {
		return res, &engine.InvalidInputError{Field: "date", Reason: "missing shift date"}
	}
	anchor := engine.Midnight(candidate.Date)

	others := make([]Shift, 0, len(siblings))
	for _, s := range siblings {
		if s.ID == candidate.ID || s.EmployeeID != candidate.EmployeeID {
			continue
		}
		others = append(others, s)
	}

	res = checkOverlaps(cfg, res, candidate, candIv, anchor, others)
	res, err = checkAbsences(res, candidate, candIv, absences)
	if err != nil {
		return ComplianceResult{}, err
	}
	res = checkDailyRest(cfg, res, candIv, anchor, others)
	res = checkWeeklyRest(cfg, res, candidate, candIv, others)
	res = checkWeeklyHours(cfg, res, candidate, others, contract)

	res.DurationHours = round2(mustDurationHours(candidate))
	if contract != nil && contract.HourlyRate.IsPositive() {
		pay, payErr := ComputePay(cfg, candidate, contract.HourlyRate)
		if payErr != nil {
			return ComplianceResult{}, payErr
		}
		res.Pay = pay
	} else {
		res.SkippedChecks = append(res.SkippedChecks, CheckPay)
	}

	return res, nil
}

// =============================================================================
// 1. OVERLAP
// =============================================================================

func checkOverlaps(cfg AgreementConfig, res ComplianceResult, candidate Shift, candIv engine.Interval, anchor time.Time, others []Shift) ComplianceResult {
	for _, sib := range others {
		dayDiff := engine.DaysBetween(anchor, sib.Date)
		if dayDiff < -1 || dayDiff > 1 {
			continue
		}
		sibIv, err := engine.ClockInterval(sib.Start, sib.End)
		if err != nil {
			res.Warnings = append(res.Warnings, Alert{
				Kind:       KindDataQuality,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("shift %s has an unreadable time and was ignored by the overlap check", sib.ID),
				ConflictID: sib.ID,
			})
			continue
		}
		if candIv.Intersects(sibIv.ShiftDays(dayDiff)) {
			res.Errors = append(res.Errors, Alert{
				Kind:       KindShiftOverlap,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("overlaps shift %s (%s %s-%s)", sib.ID, sib.Date.Format("2006-01-02"), sib.Start, sib.End),
				ConflictID: sib.ID,
			})
		}
	}
	return res
}

func checkAbsences(res ComplianceResult, candidate Shift, candIv engine.Interval, absences []Absence) (ComplianceResult, error) {
	// The calendar days the shift touches: its start day, plus the next
	// day when it crosses midnight.
	days := []time.Time{engine.Midnight(candidate.Date)}
	if candIv.End > engine.MinutesPerDay {
		days = append(days, days[0].AddDate(0, 0, 1))
	}

	for _, ab := range absences {
		if ab.EmployeeID != candidate.EmployeeID || ab.Status != AbsenceApproved {
			continue
		}
		if ab.EndDate.Before(ab.StartDate) {
			return res, &engine.InvalidInputError{
				Field:  "absence " + ab.ID,
				Reason: "end date before start date",
			}
		}
		span := engine.Period{Start: engine.Midnight(ab.StartDate), End: engine.Midnight(ab.EndDate)}
		for _, day := range days {
			if span.Contains(day) {
				res.Errors = append(res.Errors, Alert{
					Kind:       KindAbsenceOverlap,
					Severity:   SeverityError,
					Message:    fmt.Sprintf("falls inside approved absence %s (%s to %s)", ab.ID, ab.StartDate.Format("2006-01-02"), ab.EndDate.Format("2006-01-02")),
					ConflictID: ab.ID,
				})
				break
			}
		}
	}
	return res, nil
}

// =============================================================================
// 2. DAILY REST
// =============================================================================

func checkDailyRest(cfg AgreementConfig, res ComplianceResult, candIv engine.Interval, anchor time.Time, others []Shift) ComplianceResult {
	// Nearest neighbor ending before the candidate starts, and nearest
	// starting after it ends, looked up within two days either side.
	// Neighbors on earlier days sit at negative minutes on the
	// candidate's timeline, so presence is tracked separately.
	var prev, next engine.Interval
	var hasPrev, hasNext bool
	for _, sib := range others {
		dayDiff := engine.DaysBetween(anchor, sib.Date)
		if dayDiff < -2 || dayDiff > 2 {
			continue
		}
		sibIv, err := engine.ClockInterval(sib.Start, sib.End)
		if err != nil {
			continue // already surfaced by the overlap check
		}
		sibIv = sibIv.ShiftDays(dayDiff)
		if sibIv.End <= candIv.Start && (!hasPrev || sibIv.End > prev.End) {
			prev, hasPrev = sibIv, true
		}
		if sibIv.Start >= candIv.End && (!hasNext || sibIv.Start < next.Start) {
			next, hasNext = sibIv, true
		}
	}

	floor := cfg.DailyRestMinutes
	margin := cfg.DailyRestWarningMarginMinutes
	flag := func(gap int, when string) {
		switch {
		case gap < floor:
			res.Errors = append(res.Errors, Alert{
				Kind:     KindDailyRest,
				Severity: SeverityError,
				Message:  fmt.Sprintf("only %s of rest %s (minimum %s)", formatHours(gap), when, formatHours(floor)),
			})
		case gap < floor+margin:
			res.Warnings = append(res.Warnings, Alert{
				Kind:     KindDailyRest,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s of rest %s is close to the %s minimum", formatHours(gap), when, formatHours(floor)),
			})
		}
	}
	if hasPrev {
		flag(prev.GapTo(candIv), fmt.Sprintf("before this shift (previous one ends %s)", engine.FormatClock(prev.End)))
	}
	if hasNext {
		flag(candIv.GapTo(next), fmt.Sprintf("after this shift (next one starts %s)", engine.FormatClock(next.Start)))
	}
	return res
}

// =============================================================================
// 3. WEEKLY REST
// =============================================================================

func checkWeeklyRest(cfg AgreementConfig, res ComplianceResult, candidate Shift, candIv engine.Interval, others []Shift) ComplianceResult {
	week := engine.ISOWeekOf(candidate.Date)

	ivs := []engine.Interval{engine.OnTimeline(candIv, week.Start, candidate.Date)}
	for _, sib := range others {
		// A shift dated the previous Sunday can spill past midnight into
		// this week's Monday; later weeks cannot reach back, so the
		// window clipping in LongestGap handles the rest.
		dayDiff := engine.DaysBetween(week.Start, sib.Date)
		if dayDiff < -1 || dayDiff > 6 {
			continue
		}
		sibIv, err := engine.ClockInterval(sib.Start, sib.End)
		if err != nil {
			continue
		}
		ivs = append(ivs, engine.OnTimeline(sibIv, week.Start, sib.Date))
	}

	longest := engine.LongestGap(ivs, 0, 7*engine.MinutesPerDay)
	if longest < cfg.WeeklyRestMinutes {
		res.Errors = append(res.Errors, Alert{
			Kind:     KindWeeklyRest,
			Severity: SeverityError,
			Message:  fmt.Sprintf("longest rest in week %s is %s, below the %s floor", week.Label(), formatHours(longest), formatHours(cfg.WeeklyRestMinutes)),
		})
	}
	return res
}

// =============================================================================
// 4. WEEKLY HOURS
// =============================================================================

func checkWeeklyHours(cfg AgreementConfig, res ComplianceResult, candidate Shift, others []Shift, contract *Contract) ComplianceResult {
	week := engine.ISOWeekOf(candidate.Date)

	total := mustDurationHours(candidate)
	for _, sib := range others {
		if !week.Contains(sib.Date) {
			continue
		}
		minutes, err := ShiftDuration(sib.Start, sib.End, sib.BreakMinutes)
		if err != nil {
			continue
		}
		total = total.Add(minutesToHours(minutes))
	}

	switch {
	case total.GreaterThanOrEqual(cfg.WeeklyHoursCritical):
		res.Errors = append(res.Errors, Alert{
			Kind:     KindWeeklyHours,
			Severity: SeverityError,
			Message:  fmt.Sprintf("week %s totals %sh, at or above the legal %sh ceiling", week.Label(), round2(total), cfg.WeeklyHoursCritical),
		})
	case total.GreaterThanOrEqual(cfg.WeeklyHoursWarning):
		res.Warnings = append(res.Warnings, Alert{
			Kind:     KindWeeklyHours,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("week %s totals %sh, approaching the %sh ceiling", week.Label(), round2(total), cfg.WeeklyHoursCritical),
		})
	}

	if contract == nil || !contract.WeeklyHours.IsPositive() {
		res.SkippedChecks = append(res.SkippedChecks, CheckContractHours)
		return res
	}
	if total.GreaterThan(contract.WeeklyHours) {
		res.Warnings = append(res.Warnings, Alert{
			Kind:     KindContractHours,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("week %s totals %sh, above the contractual %sh", week.Label(), round2(total), contract.WeeklyHours),
		})
	}
	return res
}

// =============================================================================
// HELPERS
// =============================================================================

// mustDurationHours is used after the candidate's clock values have
// already been parsed once; a failure here would be a programming error.
func mustDurationHours(shift Shift) decimal.Decimal {
	h, err := durationHours(shift)
	if err != nil {
		return decimal.Zero
	}
	return h
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
}

func formatHours(minutes int) string {
	return fmt.Sprintf("%dh%02d", minutes/60, minutes%60)
}
