/*
handlers.go - HTTP handler implementations

PURPOSE:
  Implements every endpoint of the scheduling API. Handlers load plain
  records from the store, call the pure rule functions in the compliance
  package, and translate results to DTOs. No business rule lives here.

VALIDATION FLOW:
  Creating a shift runs the full compliance check first. Hard violations
  return 422 with the structured result and nothing is persisted;
  warnings persist the shift and ride along in the response. The same
  gate applies to clock-out (complete): actuals that break a legal floor
  are rejected.

ERROR MAPPING:
  Malformed input (bad clock values, bad dates)  -> 400
  Unknown record                                 -> 404
  Compliance errors on create/complete           -> 422
  Storage failures                               -> 500

SEE ALSO:
  - server.go: Routes and middleware
  - compliance/checker.go: The validation engine behind these handlers
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/compliance"
	"github.com/caresched/compliance-engine/engine"
	"github.com/caresched/compliance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Config compliance.AgreementConfig
}

// NewHandler creates a new handler with the given store and agreement
// parameters.
func NewHandler(store *sqlite.Store, cfg compliance.AgreementConfig) *Handler {
	return &Handler{Store: store, Config: cfg}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	emp := compliance.Employee{ID: req.ID, Name: req.Name}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns all contracts, optionally filtered by employee.
// GET /api/contracts?employee_id=
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	dtos := []ContractDTO{}
	for _, c := range contracts {
		if employeeID != "" && c.EmployeeID != employeeID {
			continue
		}
		dtos = append(dtos, toContractDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateContract creates a new contract.
// POST /api/contracts
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" || req.EmployerID == "" {
		writeError(w, http.StatusBadRequest, "employee_id and employer_id are required", nil)
		return
	}

	c := compliance.Contract{
		ID:          req.ID,
		EmployeeID:  req.EmployeeID,
		EmployerID:  req.EmployerID,
		WeeklyHours: decimal.NewFromFloat(req.WeeklyHours),
		HourlyRate:  decimal.NewFromFloat(req.HourlyRate),
		Active:      true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if err := h.Store.SaveContract(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(c))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts, filtered by employee and/or ISO week.
// GET /api/shifts?employee_id=&week=
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employeeID := q.Get("employee_id")

	var week *engine.Period
	if weekLabel := q.Get("week"); weekLabel != "" {
		parsed, perr := engine.ParseISOWeek(weekLabel)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-Www)", perr)
			return
		}
		week = &parsed
	}

	var shifts []compliance.Shift
	var err error
	if week != nil && employeeID != "" {
		shifts, err = h.Store.ListShiftsForEmployee(r.Context(), employeeID, week.Start, week.End)
	} else {
		shifts, err = h.Store.ListShifts(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := []ShiftDTO{}
	for _, s := range shifts {
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		if week != nil && !week.Contains(s.Date) {
			continue
		}
		dtos = append(dtos, toShiftDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShift returns one shift.
// GET /api/shifts/{id}
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	shift, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// CreateShift validates and persists a planned shift. Hard compliance
// violations return 422 and nothing is stored; warnings are returned
// alongside the stored shift.
// POST /api/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := h.shiftFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	// Identity replacement is an update concern; creating over an
	// existing id would also dodge the overlap check against itself.
	if req.ID != "" {
		existing, err := h.Store.GetShift(r.Context(), req.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check shift id", err)
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "Shift "+req.ID+" already exists", nil)
			return
		}
	}

	result, err := h.validateAgainstSchedule(r, shift)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if !result.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, CreateShiftResponse{
			Shift:  toShiftDTO(shift),
			Result: toResultDTO(result),
		})
		return
	}

	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateShiftResponse{
		Shift:  toShiftDTO(shift),
		Result: toResultDTO(result),
	})
}

// ValidateShift dry-runs the compliance check without persisting.
// POST /api/shifts/validate
func (h *Handler) ValidateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := h.shiftFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	result, err := h.validateAgainstSchedule(r, shift)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// CompleteShift records a clock-out. Actuals overwrite the planned
// values, the result is re-validated, and hard violations reject the
// completion.
// POST /api/shifts/{id}/complete
func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	shift, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}

	var req CompleteShiftRequest
	// An empty body is a plain clock-out confirming the planned values.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Start != "" {
		shift.Start = req.Start
	}
	if req.End != "" {
		shift.End = req.End
	}
	if req.BreakMinutes != nil {
		shift.BreakMinutes = *req.BreakMinutes
	}
	if req.HasNightAction != nil {
		shift.HasNightAction = *req.HasNightAction
	}
	if req.NightInterventions != nil {
		shift.NightInterventions = *req.NightInterventions
	}
	shift.Status = compliance.ShiftCompleted

	result, err := h.validateAgainstSchedule(r, *shift)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if !result.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, CreateShiftResponse{
			Shift:  toShiftDTO(*shift),
			Result: toResultDTO(result),
		})
		return
	}

	if err := h.Store.SaveShift(r.Context(), *shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusOK, CreateShiftResponse{
		Shift:  toShiftDTO(*shift),
		Result: toResultDTO(result),
	})
}

// =============================================================================
// ABSENCE HANDLERS
// =============================================================================

// ListAbsences returns absences, optionally filtered by employee.
// GET /api/absences?employee_id=
func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")

	var absences []compliance.Absence
	var err error
	if employeeID != "" {
		absences, err = h.Store.ListAbsencesForEmployee(r.Context(), employeeID)
	} else {
		absences, err = h.Store.ListAbsences(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list absences", err)
		return
	}

	dtos := []AbsenceDTO{}
	for _, a := range absences {
		dtos = append(dtos, toAbsenceDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAbsence declares a pending absence.
// POST /api/absences
func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	var req CreateAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	start, err := time.Parse(dayFormat, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse(dayFormat, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date before start_date", nil)
		return
	}

	a := compliance.Absence{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  start,
		EndDate:    end,
		Status:     compliance.AbsencePending,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if err := h.Store.SaveAbsence(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create absence", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(a))
}

// ApproveAbsence marks an absence approved.
// POST /api/absences/{id}/approve
func (h *Handler) ApproveAbsence(w http.ResponseWriter, r *http.Request) {
	h.setAbsenceStatus(w, r, compliance.AbsenceApproved)
}

// RejectAbsence marks an absence rejected.
// POST /api/absences/{id}/reject
func (h *Handler) RejectAbsence(w http.ResponseWriter, r *http.Request) {
	h.setAbsenceStatus(w, r, compliance.AbsenceRejected)
}

func (h *Handler) setAbsenceStatus(w http.ResponseWriter, r *http.Request, status compliance.AbsenceStatus) {
	id := chi.URLParam(r, "id")

	ok, err := h.Store.SetAbsenceStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update absence", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Absence not found", nil)
		return
	}

	a, err := h.Store.GetAbsence(r.Context(), id)
	if err != nil || a == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload absence", err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(*a))
}

// =============================================================================
// COMPLIANCE HANDLERS
// =============================================================================

// GetOverview returns the weekly compliance overview for one employer.
// GET /api/compliance/overview?employer_id=&week=
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employerID := q.Get("employer_id")
	if employerID == "" {
		writeError(w, http.StatusBadRequest, "employer_id is required", nil)
		return
	}
	weekLabel := q.Get("week")
	if weekLabel == "" {
		writeError(w, http.StatusBadRequest, "week is required (YYYY-Www)", nil)
		return
	}
	week, err := engine.ParseISOWeek(weekLabel)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-Www)", err)
		return
	}
	asOf := week.Start
	if d := q.Get("as_of"); d != "" {
		if asOf, err = time.Parse(dayFormat, d); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of (use YYYY-MM-DD)", err)
			return
		}
	}

	ctx := r.Context()
	contracts, err := h.Store.ListContractsByEmployer(ctx, employerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load contracts", err)
		return
	}
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employees", err)
		return
	}

	// Load each employee's records once; duplicates across contracts of
	// the same person are fine, the aggregator filters per contract. The
	// window is padded so boundary-crossing shifts reach the rest checks.
	var shifts []compliance.Shift
	var absences []compliance.Absence
	seen := map[string]bool{}
	for _, c := range contracts {
		if seen[c.EmployeeID] {
			continue
		}
		seen[c.EmployeeID] = true
		ss, err := h.Store.ListShiftsForEmployee(ctx, c.EmployeeID,
			week.Start.AddDate(0, 0, -2), week.End.AddDate(0, 0, 2))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load shifts", err)
			return
		}
		shifts = append(shifts, ss...)
		as, err := h.Store.ListAbsencesForEmployee(ctx, c.EmployeeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load absences", err)
			return
		}
		absences = append(absences, as...)
	}

	ov := compliance.WeeklyOverview(h.Config, employerID, week, asOf, contracts, employees, shifts, absences)
	writeJSON(w, http.StatusOK, toOverviewDTO(ov))
}

// GetAgreement returns the active agreement parameters.
// GET /api/agreement
func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAgreementDTO(h.Config))
}

// =============================================================================
// SHARED PLUMBING
// =============================================================================

// shiftFromRequest converts a request body into a domain shift,
// rejecting malformed dates up front. Clock values are validated by the
// engine itself.
func (h *Handler) shiftFromRequest(req ShiftRequest) (compliance.Shift, error) {
	date, err := time.Parse(dayFormat, req.Date)
	if err != nil {
		return compliance.Shift{}, &engine.InvalidInputError{Field: "date", Reason: "use YYYY-MM-DD"}
	}

	shiftType := compliance.ShiftType(req.Type)
	if shiftType == "" {
		shiftType = compliance.ShiftEffective
	}
	switch shiftType {
	case compliance.ShiftEffective, compliance.ShiftPresenceDay,
		compliance.ShiftPresenceNight, compliance.ShiftGuard24h:
	default:
		return compliance.Shift{}, &engine.InvalidInputError{Field: "type", Reason: "unknown shift type " + req.Type}
	}

	shift := compliance.Shift{
		ID:                 req.ID,
		ContractID:         req.ContractID,
		EmployeeID:         req.EmployeeID,
		Date:               date,
		Start:              req.Start,
		End:                req.End,
		BreakMinutes:       req.BreakMinutes,
		Status:             compliance.ShiftPlanned,
		Type:               shiftType,
		HasNightAction:     req.HasNightAction,
		NightInterventions: req.NightInterventions,
		Tasks:              req.Tasks,
	}
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	for _, seg := range req.GuardSegments {
		shift.GuardSegments = append(shift.GuardSegments, compliance.GuardSegment{
			Start:        seg.Start,
			Kind:         compliance.SegmentKind(seg.Kind),
			BreakMinutes: seg.BreakMinutes,
		})
	}
	return shift, nil
}

// validateAgainstSchedule loads the worker's surrounding schedule and
// runs the compliance engine. The sibling window spans the candidate's
// ISO week padded by two days so the daily-rest check sees neighbors
// across the week boundary.
func (h *Handler) validateAgainstSchedule(r *http.Request, shift compliance.Shift) (compliance.ComplianceResult, error) {
	ctx := r.Context()
	week := engine.ISOWeekOf(shift.Date)

	siblings, err := h.Store.ListShiftsForEmployee(ctx, shift.EmployeeID,
		week.Start.AddDate(0, 0, -2), week.End.AddDate(0, 0, 2))
	if err != nil {
		return compliance.ComplianceResult{}, err
	}
	absences, err := h.Store.ListAbsencesForEmployee(ctx, shift.EmployeeID)
	if err != nil {
		return compliance.ComplianceResult{}, err
	}
	contract, err := h.Store.GetContract(ctx, shift.ContractID)
	if err != nil {
		return compliance.ComplianceResult{}, err
	}

	return compliance.ValidateShift(h.Config, shift, siblings, absences, contract)
}

// writeEngineError maps engine failures: malformed input is the
// client's fault, anything else is ours.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	if engine.IsClientError(err) {
		writeError(w, http.StatusBadRequest, "Invalid shift data", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Validation failed", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
