package compliance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY BREAKDOWN - Weighted hours x rate, plus the night majoration
// =============================================================================

// ComputePay assembles the per-shift pay breakdown. Payable hours follow
// the weighting policy; the night majoration adds the configured
// surcharge on night hours, but only when the worker performed an
// active task during them (HasNightAction). All figures are rounded to
// 2 decimals at this boundary.
func ComputePay(cfg AgreementConfig, shift Shift, rate decimal.Decimal) (*ComputedPay, error) {
	duration, err := durationHours(shift)
	if err != nil {
		return nil, err
	}

	requalified := Requalified(cfg, shift.Type, shift.NightInterventions)
	effective, err := EffectiveHours(cfg, shift, requalified)
	if err != nil {
		return nil, err
	}
	indemnity, err := IndemnityHours(cfg, shift, requalified)
	if err != nil {
		return nil, err
	}

	night, err := NightHours(cfg, shift.Start, shift.End)
	if err != nil {
		return nil, err
	}

	// Payable hours per the policy table. Plain effective work is paid
	// at raw duration; a nil weighting with an indemnity means the flat
	// quarter-rate path.
	var payable decimal.Decimal
	switch {
	case shift.Type == ShiftEffective:
		payable = duration
	case indemnity != nil:
		payable = *indemnity
	case effective != nil:
		payable = *effective
	}

	majoration := decimal.Zero
	if shift.HasNightAction && night.IsPositive() {
		majoration = night.Mul(rate).Mul(cfg.NightMajorationRate)
	}

	total := payable.Mul(rate).Add(majoration)

	return &ComputedPay{
		DurationHours:   round2(duration),
		EffectiveHours:  effective,
		IndemnityHours:  indemnity,
		NightHours:      round2(night),
		NightMajoration: round2(majoration),
		HourlyRate:      rate,
		Total:           round2(total),
	}, nil
}
