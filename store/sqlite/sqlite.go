/*
Package sqlite provides the SQLite-backed persistence for the scheduling records.

PURPOSE:
  Stores the plain records the compliance engine consumes: employees,
  contracts, shifts and absences. The engine itself never touches the
  database; the API layer loads records here and hands them to the pure
  rule functions. In production, the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  employees: Identity records for display and tie-breaking
  contracts: Employee-to-employer links with the contractual figures
  shifts:    Work intervals; tasks and guard segments as JSON columns
  absences:  Inclusive day ranges with an approval status

INDEXES:
  - idx_shifts_employee_date: the hot path - every validation loads the
    employee's shifts around a date
  - idx_contracts_employer: the weekly overview's entry point
  - idx_absences_employee: absence checks per validation

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/caresched.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - compliance package: the rule functions these records feed
  - api package: the HTTP layer wiring store and rules together
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/caresched/compliance-engine/compliance"
)

const dayFormat = "2006-01-02"

// Store persists scheduling records in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employer_id TEXT NOT NULL,
		weekly_hours TEXT NOT NULL DEFAULT '0',
		hourly_rate TEXT NOT NULL DEFAULT '0',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_employee
		ON contracts(employee_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_employer
		ON contracts(employer_id);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_clock TEXT NOT NULL,
		end_clock TEXT NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'planned',
		shift_type TEXT NOT NULL DEFAULT 'effective',
		has_night_action BOOLEAN NOT NULL DEFAULT FALSE,
		night_interventions INTEGER NOT NULL DEFAULT 0,
		tasks_json TEXT,
		segments_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: every validation loads the employee's shifts by date
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_date
		ON shifts(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_shifts_contract
		ON shifts(contract_id);

	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		absence_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_absences_employee
		ON absences(employee_id);
	CREATE INDEX IF NOT EXISTS idx_absences_status
		ON absences(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee creates or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp compliance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name
	`
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID. Returns nil when not found.
func (s *Store) GetEmployee(ctx context.Context, id string) (*compliance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp compliance.Employee
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM employees WHERE id = ?", id,
	).Scan(&emp.ID, &emp.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]compliance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM employees ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []compliance.Employee
	for rows.Next() {
		var emp compliance.Employee
		if err := rows.Scan(&emp.ID, &emp.Name); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	return err
}

// =============================================================================
// CONTRACTS
// =============================================================================

// SaveContract creates or updates a contract.
func (s *Store) SaveContract(ctx context.Context, c compliance.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO contracts (id, employee_id, employer_id, weekly_hours, hourly_rate, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			employer_id = excluded.employer_id,
			weekly_hours = excluded.weekly_hours,
			hourly_rate = excluded.hourly_rate,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.EmployeeID, c.EmployerID,
		c.WeeklyHours.String(), c.HourlyRate.String(), c.Active,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetContract retrieves a contract by ID. Returns nil when not found.
func (s *Store) GetContract(ctx context.Context, id string) (*compliance.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, employer_id, weekly_hours, hourly_rate, active FROM contracts WHERE id = ?",
		id,
	)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContracts returns all contracts.
func (s *Store) ListContracts(ctx context.Context) ([]compliance.Contract, error) {
	return s.queryContracts(ctx,
		"SELECT id, employee_id, employer_id, weekly_hours, hourly_rate, active FROM contracts ORDER BY id")
}

// ListContractsByEmployer returns all contracts of one employer,
// including inactive ones; the overview filters on Active itself.
func (s *Store) ListContractsByEmployer(ctx context.Context, employerID string) ([]compliance.Contract, error) {
	return s.queryContracts(ctx,
		"SELECT id, employee_id, employer_id, weekly_hours, hourly_rate, active FROM contracts WHERE employer_id = ? ORDER BY id",
		employerID)
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]compliance.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []compliance.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// DeleteContract removes a contract.
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*compliance.Contract, error) {
	var c compliance.Contract
	var weeklyHours, hourlyRate string
	if err := row.Scan(&c.ID, &c.EmployeeID, &c.EmployerID, &weeklyHours, &hourlyRate, &c.Active); err != nil {
		return nil, err
	}
	var err error
	if c.WeeklyHours, err = decimal.NewFromString(weeklyHours); err != nil {
		return nil, fmt.Errorf("contract %s: bad weekly_hours %q: %w", c.ID, weeklyHours, err)
	}
	if c.HourlyRate, err = decimal.NewFromString(hourlyRate); err != nil {
		return nil, fmt.Errorf("contract %s: bad hourly_rate %q: %w", c.ID, hourlyRate, err)
	}
	return &c, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

const shiftColumns = `id, contract_id, employee_id, date, start_clock, end_clock,
	break_minutes, status, shift_type, has_night_action, night_interventions,
	tasks_json, segments_json`

// SaveShift creates or updates a shift.
func (s *Store) SaveShift(ctx context.Context, shift compliance.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasksJSON, _ := json.Marshal(shift.Tasks)
	segmentsJSON, _ := json.Marshal(shift.GuardSegments)
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO shifts (id, contract_id, employee_id, date, start_clock, end_clock,
			break_minutes, status, shift_type, has_night_action, night_interventions,
			tasks_json, segments_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			contract_id = excluded.contract_id,
			employee_id = excluded.employee_id,
			date = excluded.date,
			start_clock = excluded.start_clock,
			end_clock = excluded.end_clock,
			break_minutes = excluded.break_minutes,
			status = excluded.status,
			shift_type = excluded.shift_type,
			has_night_action = excluded.has_night_action,
			night_interventions = excluded.night_interventions,
			tasks_json = excluded.tasks_json,
			segments_json = excluded.segments_json,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		shift.ID, shift.ContractID, shift.EmployeeID,
		shift.Date.Format(dayFormat), shift.Start, shift.End,
		shift.BreakMinutes, string(shift.Status), string(shift.Type),
		shift.HasNightAction, shift.NightInterventions,
		string(tasksJSON), string(segmentsJSON),
		now, now,
	)
	return err
}

// GetShift retrieves a shift by ID. Returns nil when not found.
func (s *Store) GetShift(ctx context.Context, id string) (*compliance.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE id = ?", id)
	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// ListShiftsForEmployee returns the employee's shifts whose start date
// falls in [from, to], both inclusive, ordered by date then start.
func (s *Store) ListShiftsForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]compliance.Shift, error) {
	return s.queryShifts(ctx,
		"SELECT "+shiftColumns+` FROM shifts
		 WHERE employee_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, start_clock`,
		employeeID, from.Format(dayFormat), to.Format(dayFormat))
}

// ListShifts returns all shifts ordered by date then start.
func (s *Store) ListShifts(ctx context.Context) ([]compliance.Shift, error) {
	return s.queryShifts(ctx,
		"SELECT "+shiftColumns+" FROM shifts ORDER BY date, start_clock")
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]compliance.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []compliance.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	return shifts, rows.Err()
}

// SetShiftStatus updates only the status column. Returns false when the
// shift does not exist.
func (s *Store) SetShiftStatus(ctx context.Context, id string, status compliance.ShiftStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE shifts SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteShift removes a shift.
func (s *Store) DeleteShift(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	return err
}

func scanShift(row rowScanner) (*compliance.Shift, error) {
	var shift compliance.Shift
	var date, status, shiftType string
	var tasksJSON, segmentsJSON sql.NullString

	err := row.Scan(&shift.ID, &shift.ContractID, &shift.EmployeeID,
		&date, &shift.Start, &shift.End,
		&shift.BreakMinutes, &status, &shiftType,
		&shift.HasNightAction, &shift.NightInterventions,
		&tasksJSON, &segmentsJSON)
	if err != nil {
		return nil, err
	}

	shift.Date, err = time.Parse(dayFormat, date)
	if err != nil {
		return nil, fmt.Errorf("shift %s: bad date %q: %w", shift.ID, date, err)
	}
	shift.Status = compliance.ShiftStatus(status)
	shift.Type = compliance.ShiftType(shiftType)
	if tasksJSON.Valid && tasksJSON.String != "" {
		if err := json.Unmarshal([]byte(tasksJSON.String), &shift.Tasks); err != nil {
			return nil, fmt.Errorf("shift %s: bad tasks_json: %w", shift.ID, err)
		}
	}
	if segmentsJSON.Valid && segmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(segmentsJSON.String), &shift.GuardSegments); err != nil {
			return nil, fmt.Errorf("shift %s: bad segments_json: %w", shift.ID, err)
		}
	}
	return &shift, nil
}

// =============================================================================
// ABSENCES
// =============================================================================

// SaveAbsence creates or updates an absence.
func (s *Store) SaveAbsence(ctx context.Context, a compliance.Absence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO absences (id, employee_id, absence_type, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			absence_type = excluded.absence_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.EmployeeID, a.Type,
		a.StartDate.Format(dayFormat), a.EndDate.Format(dayFormat),
		string(a.Status), now, now,
	)
	return err
}

// GetAbsence retrieves an absence by ID. Returns nil when not found.
func (s *Store) GetAbsence(ctx context.Context, id string) (*compliance.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, absence_type, start_date, end_date, status FROM absences WHERE id = ?",
		id)
	a, err := scanAbsence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAbsencesForEmployee returns all of the employee's absences.
func (s *Store) ListAbsencesForEmployee(ctx context.Context, employeeID string) ([]compliance.Absence, error) {
	return s.queryAbsences(ctx,
		"SELECT id, employee_id, absence_type, start_date, end_date, status FROM absences WHERE employee_id = ? ORDER BY start_date",
		employeeID)
}

// ListAbsences returns all absences ordered by start date.
func (s *Store) ListAbsences(ctx context.Context) ([]compliance.Absence, error) {
	return s.queryAbsences(ctx,
		"SELECT id, employee_id, absence_type, start_date, end_date, status FROM absences ORDER BY start_date")
}

func (s *Store) queryAbsences(ctx context.Context, query string, args ...any) ([]compliance.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var absences []compliance.Absence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, err
		}
		absences = append(absences, *a)
	}
	return absences, rows.Err()
}

// SetAbsenceStatus updates only the status column. Returns false when
// the absence does not exist.
func (s *Store) SetAbsenceStatus(ctx context.Context, id string, status compliance.AbsenceStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE absences SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAbsence removes an absence.
func (s *Store) DeleteAbsence(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM absences WHERE id = ?", id)
	return err
}

func scanAbsence(row rowScanner) (*compliance.Absence, error) {
	var a compliance.Absence
	var startDate, endDate, status string
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.Type, &startDate, &endDate, &status); err != nil {
		return nil, err
	}
	var err error
	if a.StartDate, err = time.Parse(dayFormat, startDate); err != nil {
		return nil, fmt.Errorf("absence %s: bad start_date %q: %w", a.ID, startDate, err)
	}
	if a.EndDate, err = time.Parse(dayFormat, endDate); err != nil {
		return nil, fmt.Errorf("absence %s: bad end_date %q: %w", a.ID, endDate, err)
	}
	a.Status = compliance.AbsenceStatus(status)
	return &a, nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears every table. Test helper.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"employees", "contracts", "shifts", "absences"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
