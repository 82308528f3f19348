/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, contracts,
	shifts and absences that demonstrate specific compliance behaviors.

AVAILABLE SCENARIOS:

	quiet-week:     One employer, two part-time workers, everything green
	night-presence: A sleep-in night worker, one night requalified by
	                interventions and one paid as an indemnity
	overloaded:     A worker pushed past the weekly ceilings with a daily
	                rest breach, so the overview shows critical

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees and contracts
 3. Insert a week of shifts (and absences where relevant)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-presence"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: CRUD and validation endpoints over the same records
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/compliance"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "quiet-week",
		Name:        "Quiet Week",
		Description: "Two part-time workers, fully compliant schedules",
	},
	{
		ID:          "night-presence",
		Name:        "Night Presence",
		Description: "Sleep-in nights: one requalified by interventions, one paid as indemnity",
	},
	{
		ID:          "overloaded",
		Name:        "Overloaded Worker",
		Description: "Weekly hours past the legal ceiling and a daily rest breach",
	},
}

// scenarioWeek returns the Monday of the ISO week the demo data lives
// in. A fixed date keeps scenario output reproducible.
func scenarioWeek() time.Time {
	return time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the selected scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "quiet-week":
		err = h.loadQuietWeek(ctx)
	case "night-presence":
		err = h.loadNightPresence(ctx)
	case "overloaded":
		err = h.loadOverloaded(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"scenario": req.ScenarioID,
		"week":     scenarioWeek().Format(dayFormat),
	})
}

// ResetDatabase clears all records.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) seedWorker(ctx context.Context, id, name, employerID string, weeklyHours, hourlyRate float64) (compliance.Contract, error) {
	if err := h.Store.SaveEmployee(ctx, compliance.Employee{ID: id, Name: name}); err != nil {
		return compliance.Contract{}, err
	}
	c := compliance.Contract{
		ID:          "ct-" + id,
		EmployeeID:  id,
		EmployerID:  employerID,
		WeeklyHours: decimal.NewFromFloat(weeklyHours),
		HourlyRate:  decimal.NewFromFloat(hourlyRate),
		Active:      true,
	}
	return c, h.Store.SaveContract(ctx, c)
}

func (h *Handler) seedShift(ctx context.Context, contract compliance.Contract, id string, dayOffset int, start, end string, mutate func(*compliance.Shift)) error {
	shift := compliance.Shift{
		ID:         id,
		ContractID: contract.ID,
		EmployeeID: contract.EmployeeID,
		Date:       scenarioWeek().AddDate(0, 0, dayOffset),
		Start:      start,
		End:        end,
		Status:     compliance.ShiftPlanned,
		Type:       compliance.ShiftEffective,
	}
	if mutate != nil {
		mutate(&shift)
	}
	return h.Store.SaveShift(ctx, shift)
}

func (h *Handler) loadQuietWeek(ctx context.Context) error {
	alice, err := h.seedWorker(ctx, "alice", "Alice Fournier", "aidadom", 24, 13.50)
	if err != nil {
		return err
	}
	bruno, err := h.seedWorker(ctx, "bruno", "Bruno Keller", "aidadom", 30, 12.80)
	if err != nil {
		return err
	}

	for d := 0; d < 4; d++ {
		if err := h.seedShift(ctx, alice, shiftID("alice", d), d, "09:00", "15:00", nil); err != nil {
			return err
		}
	}
	for d := 0; d < 5; d++ {
		if err := h.seedShift(ctx, bruno, shiftID("bruno", d), d, "08:00", "14:00", nil); err != nil {
			return err
		}
	}

	// An approved vacation day on Friday keeps Alice's week short.
	return h.Store.SaveAbsence(ctx, compliance.Absence{
		ID:         "ab-alice-fri",
		EmployeeID: "alice",
		Type:       "vacation",
		StartDate:  scenarioWeek().AddDate(0, 0, 4),
		EndDate:    scenarioWeek().AddDate(0, 0, 4),
		Status:     compliance.AbsenceApproved,
	})
}

func (h *Handler) loadNightPresence(ctx context.Context) error {
	chloe, err := h.seedWorker(ctx, "chloe", "Chloé Martin", "aidadom", 35, 13.00)
	if err != nil {
		return err
	}

	// Monday: a calm sleep-in, paid as the quarter-rate indemnity.
	if err := h.seedShift(ctx, chloe, "s-chloe-mon", 0, "21:00", "07:00", func(s *compliance.Shift) {
		s.Type = compliance.ShiftPresenceNight
		s.NightInterventions = 1
	}); err != nil {
		return err
	}
	// Wednesday: four interventions requalify the night as effective work.
	if err := h.seedShift(ctx, chloe, "s-chloe-wed", 2, "21:00", "07:00", func(s *compliance.Shift) {
		s.Type = compliance.ShiftPresenceNight
		s.NightInterventions = 4
		s.HasNightAction = true
	}); err != nil {
		return err
	}
	// Friday: a day presence shift weighted at two thirds.
	return h.seedShift(ctx, chloe, "s-chloe-fri", 4, "09:00", "18:00", func(s *compliance.Shift) {
		s.Type = compliance.ShiftPresenceDay
	})
}

func (h *Handler) loadOverloaded(ctx context.Context) error {
	david, err := h.seedWorker(ctx, "david", "David Oumar", "aidadom", 35, 12.50)
	if err != nil {
		return err
	}

	// Six 9h days plus a short turnaround: 54h and a daily rest breach.
	for d := 0; d < 6; d++ {
		if err := h.seedShift(ctx, david, shiftID("david", d), d, "08:00", "17:00", nil); err != nil {
			return err
		}
	}
	return h.seedShift(ctx, david, "s-david-late", 2, "22:00", "23:30", nil)
}

func shiftID(employee string, dayOffset int) string {
	return "s-" + employee + "-" + scenarioWeek().AddDate(0, 0, dayOffset).Format("Mon")
}
