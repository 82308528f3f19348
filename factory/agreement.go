/*
Package factory provides YAML to Go agreement-parameter conversion.

PURPOSE:
  Converts YAML agreement files into compliance.AgreementConfig values.
  This enables parameter changes without code changes - when a collective
  agreement revision moves a threshold, operations edits a file and
  restarts, nothing is recompiled.

YAML SCHEMA (every key optional, missing keys keep the IDCC 3239
defaults):

  name: "IDCC 3239 - 2026 revision"
  night_window:
    start: "21:00"
    end: "06:00"
  requalification_threshold: 3
  daily_rest_hours: 11
  daily_rest_warning_margin_minutes: 60
  weekly_rest_hours: 35
  weekly_hours_warning: 44
  weekly_hours_critical: 48
  daily_hours_max: 12
  night_majoration_rate: 0.20
  presence_day_factor: {num: 2, den: 3}
  night_indemnity_factor: {num: 1, den: 4}

KEY FEATURES:
  - Missing keys fall back to the statutory defaults, so a file only
    states what it changes
  - The merged config is validated before use; a bad file fails loading
    instead of producing a silently wrong engine

SEE ALSO:
  - compliance/config.go: AgreementConfig and the IDCC3239 defaults
  - cmd/server: loads the file named by the -agreement flag
*/
package factory

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/caresched/compliance-engine/compliance"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// AgreementYAML is the file representation of an agreement. Pointer
// fields distinguish "absent, keep the default" from an explicit zero.
type AgreementYAML struct {
	Name                   string           `yaml:"name"`
	NightWindow            *NightWindowYAML `yaml:"night_window"`
	RequalificationThreshold *int           `yaml:"requalification_threshold"`
	DailyRestHours         *int             `yaml:"daily_rest_hours"`
	DailyRestWarningMarginMinutes *int      `yaml:"daily_rest_warning_margin_minutes"`
	WeeklyRestHours        *int             `yaml:"weekly_rest_hours"`
	WeeklyHoursWarning     *float64         `yaml:"weekly_hours_warning"`
	WeeklyHoursCritical    *float64         `yaml:"weekly_hours_critical"`
	DailyHoursMax          *float64         `yaml:"daily_hours_max"`
	NightMajorationRate    *float64         `yaml:"night_majoration_rate"`
	PresenceDayFactor      *FractionYAML    `yaml:"presence_day_factor"`
	NightIndemnityFactor   *FractionYAML    `yaml:"night_indemnity_factor"`
}

// NightWindowYAML is the nightly window in wall-clock HH:MM.
type NightWindowYAML struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// FractionYAML is an exact ratio; weighting factors are never stored as
// floats so 2/3 stays 2/3.
type FractionYAML struct {
	Num int64 `yaml:"num"`
	Den int64 `yaml:"den"`
}

// =============================================================================
// AGREEMENT FACTORY
// =============================================================================

// ParseAgreement merges a YAML document over the IDCC 3239 defaults and
// validates the result.
func ParseAgreement(data []byte) (compliance.AgreementConfig, error) {
	cfg := compliance.IDCC3239()

	var ay AgreementYAML
	if err := yaml.Unmarshal(data, &ay); err != nil {
		return cfg, fmt.Errorf("failed to parse agreement YAML: %w", err)
	}

	if ay.Name != "" {
		cfg.Name = ay.Name
	}
	if ay.NightWindow != nil {
		if ay.NightWindow.Start != "" {
			cfg.NightStart = ay.NightWindow.Start
		}
		if ay.NightWindow.End != "" {
			cfg.NightEnd = ay.NightWindow.End
		}
	}
	if ay.RequalificationThreshold != nil {
		cfg.RequalificationThreshold = *ay.RequalificationThreshold
	}
	if ay.DailyRestHours != nil {
		cfg.DailyRestMinutes = *ay.DailyRestHours * 60
	}
	if ay.DailyRestWarningMarginMinutes != nil {
		cfg.DailyRestWarningMarginMinutes = *ay.DailyRestWarningMarginMinutes
	}
	if ay.WeeklyRestHours != nil {
		cfg.WeeklyRestMinutes = *ay.WeeklyRestHours * 60
	}
	if ay.WeeklyHoursWarning != nil {
		cfg.WeeklyHoursWarning = decimal.NewFromFloat(*ay.WeeklyHoursWarning)
	}
	if ay.WeeklyHoursCritical != nil {
		cfg.WeeklyHoursCritical = decimal.NewFromFloat(*ay.WeeklyHoursCritical)
	}
	if ay.DailyHoursMax != nil {
		cfg.DailyHoursMax = decimal.NewFromFloat(*ay.DailyHoursMax)
	}
	if ay.NightMajorationRate != nil {
		cfg.NightMajorationRate = decimal.NewFromFloat(*ay.NightMajorationRate)
	}
	if ay.PresenceDayFactor != nil {
		cfg.PresenceDayFactor = compliance.Fraction{Num: ay.PresenceDayFactor.Num, Den: ay.PresenceDayFactor.Den}
	}
	if ay.NightIndemnityFactor != nil {
		cfg.NightIndemnityFactor = compliance.Fraction{Num: ay.NightIndemnityFactor.Num, Den: ay.NightIndemnityFactor.Den}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid agreement parameters: %w", err)
	}
	return cfg, nil
}

// LoadAgreement reads and parses an agreement file. An empty path
// returns the built-in defaults.
func LoadAgreement(path string) (compliance.AgreementConfig, error) {
	if path == "" {
		return compliance.IDCC3239(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return compliance.AgreementConfig{}, fmt.Errorf("failed to read agreement file: %w", err)
	}
	return ParseAgreement(data)
}
