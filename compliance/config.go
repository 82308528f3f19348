/*
config.go - Labor-agreement parameter set

PURPOSE:
  Every legal threshold the rules depend on lives in an AgreementConfig
  value passed into the checker, never in module-level constants. The
  same engine can then be validated against alternative labor-agreement
  parameter sets (or a future revision of IDCC 3239) without touching
  the rule code.

DEFAULTS:
  IDCC3239() returns the French home-care collective agreement figures:
  night window 21:00-06:00, requalification at 3 interventions, 11h
  daily rest, 35h weekly rest, 44h/48h weekly warning/critical ceilings,
  +20% night majoration, 2/3 presence-day weighting, 1/4 night-presence
  indemnity.

SEE ALSO:
  - factory package: loads parameter sets from YAML documents
  - checker.go, weighting.go, calc.go: consumers
*/
package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/engine"
)

// Fraction is an exact weighting ratio. Stored as a ratio rather than a
// float so 2/3 stays 2/3 through decimal arithmetic.
type Fraction struct {
	Num int64
	Den int64
}

// Decimal converts the fraction using decimal division.
func (f Fraction) Decimal() decimal.Decimal {
	return decimal.NewFromInt(f.Num).Div(decimal.NewFromInt(f.Den))
}

// AgreementConfig bundles every configurable legal parameter.
type AgreementConfig struct {
	Name string

	// Night window, local clock values; the window itself crosses midnight.
	NightStart string
	NightEnd   string

	// Minimum night interventions that requalify a presence_night shift
	// into fully paid effective work.
	RequalificationThreshold int

	// Rest floors, in minutes.
	DailyRestMinutes              int
	DailyRestWarningMarginMinutes int
	WeeklyRestMinutes             int

	// Weekly hour ceilings, independent of the contractual figure.
	WeeklyHoursWarning  decimal.Decimal
	WeeklyHoursCritical decimal.Decimal

	// Daily work ceiling, used for the overview's remaining-hours figure.
	DailyHoursMax decimal.Decimal

	// Surcharge applied to night hours worked with an active task.
	NightMajorationRate decimal.Decimal

	// Pay weighting fractions.
	PresenceDayFactor    Fraction
	NightIndemnityFactor Fraction
}

// IDCC3239 returns the default parameter set of the French home-care
// collective bargaining agreement.
func IDCC3239() AgreementConfig {
	return AgreementConfig{
		Name:                          "idcc3239",
		NightStart:                    "21:00",
		NightEnd:                      "06:00",
		RequalificationThreshold:      3,
		DailyRestMinutes:              11 * 60,
		DailyRestWarningMarginMinutes: 60,
		WeeklyRestMinutes:             35 * 60,
		WeeklyHoursWarning:            decimal.NewFromInt(44),
		WeeklyHoursCritical:           decimal.NewFromInt(48),
		DailyHoursMax:                 decimal.NewFromInt(12),
		NightMajorationRate:           decimal.NewFromFloat(0.20),
		PresenceDayFactor:             Fraction{Num: 2, Den: 3},
		NightIndemnityFactor:          Fraction{Num: 1, Den: 4},
	}
}

// Validate checks the parameter set for structural sanity. It does not
// judge whether the figures are legally correct, only that the rules
// can run on them.
func (c AgreementConfig) Validate() error {
	if _, err := engine.ParseClock(c.NightStart); err != nil {
		return &engine.InvalidInputError{Field: "night_start", Reason: err.Error()}
	}
	if _, err := engine.ParseClock(c.NightEnd); err != nil {
		return &engine.InvalidInputError{Field: "night_end", Reason: err.Error()}
	}
	if c.RequalificationThreshold < 1 {
		return &engine.InvalidInputError{Field: "requalification_threshold", Reason: "must be >= 1"}
	}
	if c.DailyRestMinutes <= 0 {
		return &engine.InvalidInputError{Field: "daily_rest", Reason: "must be > 0"}
	}
	if c.WeeklyRestMinutes <= 0 {
		return &engine.InvalidInputError{Field: "weekly_rest", Reason: "must be > 0"}
	}
	if c.WeeklyHoursCritical.LessThan(c.WeeklyHoursWarning) {
		return &engine.InvalidInputError{Field: "weekly_hours_critical", Reason: "below warning threshold"}
	}
	if c.PresenceDayFactor.Den == 0 || c.NightIndemnityFactor.Den == 0 {
		return &engine.InvalidInputError{Field: "weighting_factor", Reason: "zero denominator"}
	}
	return nil
}
