/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND HOURS:
  Decimal values cross the wire as JSON strings ("6.67", "102.40") so
  clients never see float artifacts. Dates are "YYYY-MM-DD", clock
  values "HH:MM", weeks "YYYY-Www".

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - compliance/types.go: The domain records behind them
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/compliance"
)

const dayFormat = "2006-01-02"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateEmployeeRequest is the request to create an employee. A missing
// ID is generated server-side.
type CreateEmployeeRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	EmployerID  string `json:"employer_id"`
	WeeklyHours string `json:"weekly_hours"`
	HourlyRate  string `json:"hourly_rate"`
	Active      bool   `json:"active"`
}

// CreateContractRequest is the request to create a contract.
type CreateContractRequest struct {
	ID          string  `json:"id,omitempty"`
	EmployeeID  string  `json:"employee_id"`
	EmployerID  string  `json:"employer_id"`
	WeeklyHours float64 `json:"weekly_hours,omitempty"`
	HourlyRate  float64 `json:"hourly_rate,omitempty"`
	Active      *bool   `json:"active,omitempty"` // default true
}

// GuardSegmentDTO is one leg of a 24h guard duty.
type GuardSegmentDTO struct {
	Start        string `json:"start"`
	Kind         string `json:"kind"`
	BreakMinutes int    `json:"break_minutes,omitempty"`
}

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID                 string            `json:"id"`
	ContractID         string            `json:"contract_id"`
	EmployeeID         string            `json:"employee_id"`
	Date               string            `json:"date"`
	Start              string            `json:"start"`
	End                string            `json:"end"`
	BreakMinutes       int               `json:"break_minutes,omitempty"`
	Status             string            `json:"status"`
	Type               string            `json:"type"`
	HasNightAction     bool              `json:"has_night_action,omitempty"`
	NightInterventions int               `json:"night_interventions,omitempty"`
	Tasks              []string          `json:"tasks,omitempty"`
	GuardSegments      []GuardSegmentDTO `json:"guard_segments,omitempty"`
}

// ShiftRequest is the request body for creating or validating a shift.
type ShiftRequest struct {
	ID                 string            `json:"id,omitempty"`
	ContractID         string            `json:"contract_id"`
	EmployeeID         string            `json:"employee_id"`
	Date               string            `json:"date"`
	Start              string            `json:"start"`
	End                string            `json:"end"`
	BreakMinutes       int               `json:"break_minutes,omitempty"`
	Type               string            `json:"type,omitempty"` // default "effective"
	HasNightAction     bool              `json:"has_night_action,omitempty"`
	NightInterventions int               `json:"night_interventions,omitempty"`
	Tasks              []string          `json:"tasks,omitempty"`
	GuardSegments      []GuardSegmentDTO `json:"guard_segments,omitempty"`
}

// CompleteShiftRequest carries clock-out actuals. Empty fields keep the
// planned values.
type CompleteShiftRequest struct {
	Start              string `json:"start,omitempty"`
	End                string `json:"end,omitempty"`
	BreakMinutes       *int   `json:"break_minutes,omitempty"`
	HasNightAction     *bool  `json:"has_night_action,omitempty"`
	NightInterventions *int   `json:"night_interventions,omitempty"`
}

// AbsenceDTO represents an absence in API responses.
type AbsenceDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
}

// CreateAbsenceRequest is the request to declare an absence. It is
// created pending and must be approved to count against shifts.
type CreateAbsenceRequest struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// AlertDTO is one violation or risk signal.
type AlertDTO struct {
	Kind       string `json:"kind"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	ConflictID string `json:"conflict_id,omitempty"`
}

// PayDTO is the per-shift pay breakdown.
type PayDTO struct {
	DurationHours   string  `json:"duration_hours"`
	EffectiveHours  *string `json:"effective_hours,omitempty"`
	IndemnityHours  *string `json:"indemnity_hours,omitempty"`
	NightHours      string  `json:"night_hours"`
	NightMajoration string  `json:"night_majoration"`
	HourlyRate      string  `json:"hourly_rate"`
	Total           string  `json:"total"`
}

// ValidationResultDTO is the checker's outcome for one shift.
type ValidationResultDTO struct {
	OK            bool       `json:"ok"`
	Errors        []AlertDTO `json:"errors"`
	Warnings      []AlertDTO `json:"warnings"`
	SkippedChecks []string   `json:"skipped_checks,omitempty"`
	DurationHours string     `json:"duration_hours"`
	Pay           *PayDTO    `json:"pay,omitempty"`
}

// CreateShiftResponse pairs the stored shift with its validation result.
type CreateShiftResponse struct {
	Shift  ShiftDTO            `json:"shift"`
	Result ValidationResultDTO `json:"result"`
}

// EmployeeStatusDTO is one row of the weekly overview.
type EmployeeStatusDTO struct {
	EmployeeID           string     `json:"employee_id"`
	Name                 string     `json:"name"`
	ContractID           string     `json:"contract_id"`
	WeeklyHours          string     `json:"weekly_hours"`
	CurrentWeekHours     string     `json:"current_week_hours"`
	RemainingWeeklyHours string     `json:"remaining_weekly_hours"`
	RemainingDailyHours  string     `json:"remaining_daily_hours"`
	WeeklyRest           string     `json:"weekly_rest"`
	Alerts               []AlertDTO `json:"alerts"`
	Status               string     `json:"status"`
}

// OverviewSummaryDTO tallies employees per overall status.
type OverviewSummaryDTO struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	OK       int `json:"ok"`
}

// OverviewDTO is the employer-facing weekly compliance overview.
type OverviewDTO struct {
	EmployerID string              `json:"employer_id"`
	WeekStart  string              `json:"week_start"`
	WeekEnd    string              `json:"week_end"`
	WeekLabel  string              `json:"week_label"`
	Employees  []EmployeeStatusDTO `json:"employees"`
	Summary    OverviewSummaryDTO  `json:"summary"`
}

// AgreementDTO exposes the active agreement parameters.
type AgreementDTO struct {
	Name                     string `json:"name"`
	NightStart               string `json:"night_start"`
	NightEnd                 string `json:"night_end"`
	RequalificationThreshold int    `json:"requalification_threshold"`
	DailyRestMinutes         int    `json:"daily_rest_minutes"`
	WeeklyRestMinutes        int    `json:"weekly_rest_minutes"`
	WeeklyHoursWarning       string `json:"weekly_hours_warning"`
	WeeklyHoursCritical      string `json:"weekly_hours_critical"`
	DailyHoursMax            string `json:"daily_hours_max"`
	NightMajorationRate      string `json:"night_majoration_rate"`
	PresenceDayFactor        string `json:"presence_day_factor"`
	NightIndemnityFactor     string `json:"night_indemnity_factor"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e compliance.Employee) EmployeeDTO {
	return EmployeeDTO{ID: e.ID, Name: e.Name}
}

func toContractDTO(c compliance.Contract) ContractDTO {
	return ContractDTO{
		ID:          c.ID,
		EmployeeID:  c.EmployeeID,
		EmployerID:  c.EmployerID,
		WeeklyHours: c.WeeklyHours.String(),
		HourlyRate:  c.HourlyRate.String(),
		Active:      c.Active,
	}
}

func toShiftDTO(s compliance.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:                 s.ID,
		ContractID:         s.ContractID,
		EmployeeID:         s.EmployeeID,
		Date:               s.Date.Format(dayFormat),
		Start:              s.Start,
		End:                s.End,
		BreakMinutes:       s.BreakMinutes,
		Status:             string(s.Status),
		Type:               string(s.Type),
		HasNightAction:     s.HasNightAction,
		NightInterventions: s.NightInterventions,
		Tasks:              s.Tasks,
	}
	for _, seg := range s.GuardSegments {
		dto.GuardSegments = append(dto.GuardSegments, GuardSegmentDTO{
			Start:        seg.Start,
			Kind:         string(seg.Kind),
			BreakMinutes: seg.BreakMinutes,
		})
	}
	return dto
}

func toAbsenceDTO(a compliance.Absence) AbsenceDTO {
	return AbsenceDTO{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Type:       a.Type,
		StartDate:  a.StartDate.Format(dayFormat),
		EndDate:    a.EndDate.Format(dayFormat),
		Status:     string(a.Status),
	}
}

func toAlertDTOs(alerts []compliance.Alert) []AlertDTO {
	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = AlertDTO{
			Kind:       a.Kind,
			Severity:   string(a.Severity),
			Message:    a.Message,
			ConflictID: a.ConflictID,
		}
	}
	return dtos
}

func toPayDTO(p *compliance.ComputedPay) *PayDTO {
	if p == nil {
		return nil
	}
	return &PayDTO{
		DurationHours:   p.DurationHours.String(),
		EffectiveHours:  decimalPtr(p.EffectiveHours),
		IndemnityHours:  decimalPtr(p.IndemnityHours),
		NightHours:      p.NightHours.String(),
		NightMajoration: p.NightMajoration.String(),
		HourlyRate:      p.HourlyRate.String(),
		Total:           p.Total.String(),
	}
}

func toResultDTO(res compliance.ComplianceResult) ValidationResultDTO {
	return ValidationResultDTO{
		OK:            res.OK(),
		Errors:        toAlertDTOs(res.Errors),
		Warnings:      toAlertDTOs(res.Warnings),
		SkippedChecks: res.SkippedChecks,
		DurationHours: res.DurationHours.String(),
		Pay:           toPayDTO(res.Pay),
	}
}

func toOverviewDTO(ov compliance.WeeklyComplianceOverview) OverviewDTO {
	dto := OverviewDTO{
		EmployerID: ov.EmployerID,
		WeekStart:  ov.WeekStart.Format(dayFormat),
		WeekEnd:    ov.WeekEnd.Format(dayFormat),
		WeekLabel:  ov.WeekLabel,
		Employees:  []EmployeeStatusDTO{},
		Summary: OverviewSummaryDTO{
			Critical: ov.Summary.Critical,
			Warning:  ov.Summary.Warning,
			OK:       ov.Summary.OK,
		},
	}
	for _, st := range ov.Employees {
		dto.Employees = append(dto.Employees, EmployeeStatusDTO{
			EmployeeID:           st.EmployeeID,
			Name:                 st.Name,
			ContractID:           st.ContractID,
			WeeklyHours:          st.WeeklyHours.String(),
			CurrentWeekHours:     st.CurrentWeekHours.String(),
			RemainingWeeklyHours: st.RemainingWeeklyHours.String(),
			RemainingDailyHours:  st.RemainingDailyHours.String(),
			WeeklyRest:           string(st.WeeklyRest),
			Alerts:               toAlertDTOs(st.Alerts),
			Status:               string(st.Status),
		})
	}
	return dto
}

func toAgreementDTO(cfg compliance.AgreementConfig) AgreementDTO {
	return AgreementDTO{
		Name:                     cfg.Name,
		NightStart:               cfg.NightStart,
		NightEnd:                 cfg.NightEnd,
		RequalificationThreshold: cfg.RequalificationThreshold,
		DailyRestMinutes:         cfg.DailyRestMinutes,
		WeeklyRestMinutes:        cfg.WeeklyRestMinutes,
		WeeklyHoursWarning:       cfg.WeeklyHoursWarning.String(),
		WeeklyHoursCritical:      cfg.WeeklyHoursCritical.String(),
		DailyHoursMax:            cfg.DailyHoursMax.String(),
		NightMajorationRate:      cfg.NightMajorationRate.String(),
		PresenceDayFactor:        fractionString(cfg.PresenceDayFactor),
		NightIndemnityFactor:     fractionString(cfg.NightIndemnityFactor),
	}
}

func decimalPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func fractionString(f compliance.Fraction) string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}
