/*
Package sqlite provides the SQLite-backed implementation of the attendance
persistence interfaces.

PURPOSE:
  Implements attendance.EventStore and attendance.EmployeeDirectory using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The check_events table is an append-only ledger:
  - No UPDATE statements on check_events
  - No DELETE statements on check_events

KEY TABLES:
  employees:    Identity records with resolution credentials
  check_events: Immutable ledger of accepted IN/OUT facts

UNIQUENESS:
  idx_one_check_per_day enforces at most one IN and one OUT per employee
  per civil date at the database level. The Validator's in-process
  duplicate check is read-then-decide; this index is the guarantee that
  two concurrent check-ins for the same employee and day cannot both
  succeed.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and there is a single writer at a time.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

// Store implements the attendance persistence interfaces using SQLite.
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		uuid TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		telegram_id INTEGER,
		base_salary TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_telegram
		ON employees(telegram_id) WHERE telegram_id IS NOT NULL;

	-- Check events (append-only ledger)
	CREATE TABLE IF NOT EXISTS check_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		direction TEXT NOT NULL,
		check_time TEXT NOT NULL,
		channel TEXT NOT NULL,
		latitude REAL,
		longitude REAL,
		location_accepted INTEGER,
		is_late INTEGER NOT NULL DEFAULT 0,
		late_minutes INTEGER NOT NULL DEFAULT 0,
		is_early_departure INTEGER NOT NULL DEFAULT 0,
		early_minutes INTEGER NOT NULL DEFAULT 0,
		recorded_at TEXT NOT NULL
	);

	-- CRITICAL: at most one IN and one OUT per employee per civil date.
	-- The Validator's duplicate check races without this.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_one_check_per_day
		ON check_events(employee_id, direction, DATE(check_time));

	-- Range queries per employee (hot path for reconciliation)
	CREATE INDEX IF NOT EXISTS idx_check_events_employee_time
		ON check_events(employee_id, check_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EVENT STORE (attendance.EventStore interface)
// =============================================================================

const timeLayout = "2006-01-02 15:04:05"

// Append adds a check event to the ledger.
func (s *Store) Append(ctx context.Context, event *attendance.CheckEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lat, lon any
	if event.Location != nil {
		lat, lon = event.Location.Latitude, event.Location.Longitude
	}
	var accepted any
	if event.LocationAccepted != nil {
		accepted = boolToInt(*event.LocationAccepted)
	}

	query := `
		INSERT INTO check_events
		(id, employee_id, direction, check_time, channel, latitude, longitude,
		 location_accepted, is_late, late_minutes, is_early_departure, early_minutes, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EmployeeID,
		event.Direction,
		event.Time.Format(timeLayout),
		event.Channel,
		lat,
		lon,
		accepted,
		boolToInt(event.IsLate),
		event.LateMinutes,
		boolToInt(event.IsEarlyDeparture),
		event.EarlyMinutes,
		event.RecordedAt.Format(timeLayout),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return attendance.ErrDuplicateEvent
		}
		return fmt.Errorf("failed to append check event: %w", err)
	}

	return nil
}

// EventsOn returns all events for an employee on one civil date.
func (s *Store) EventsOn(ctx context.Context, employeeID string, day attendance.Date) ([]attendance.CheckEvent, error) {
	return s.EventsInRange(ctx, employeeID, day, day)
}

// EventsInRange returns events with civil dates in [from, to].
func (s *Store) EventsInRange(ctx context.Context, employeeID string, from, to attendance.Date) ([]attendance.CheckEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, direction, check_time, channel, latitude, longitude,
		       location_accepted, is_late, late_minutes, is_early_departure, early_minutes, recorded_at
		FROM check_events
		WHERE employee_id = ? AND DATE(check_time) >= ? AND DATE(check_time) <= ?
		ORDER BY check_time ASC
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query check events: %w", err)
	}
	defer rows.Close()

	var events []attendance.CheckEvent
	for rows.Next() {
		var (
			e          attendance.CheckEvent
			checkTime  string
			recordedAt string
			lat, lon   sql.NullFloat64
			accepted   sql.NullInt64
			isLate     int
			isEarly    int
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Direction, &checkTime, &e.Channel,
			&lat, &lon, &accepted, &isLate, &e.LateMinutes, &isEarly, &e.EarlyMinutes, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check event: %w", err)
		}

		e.Time, err = time.ParseInLocation(timeLayout, checkTime, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse check time: %w", err)
		}
		e.RecordedAt, _ = time.ParseInLocation(timeLayout, recordedAt, time.Local)

		if lat.Valid && lon.Valid {
			e.Location = &attendance.GeoPoint{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		if accepted.Valid {
			v := accepted.Int64 != 0
			e.LocationAccepted = &v
		}
		e.IsLate = isLate != 0
		e.IsEarlyDeparture = isEarly != 0

		events = append(events, e)
	}

	return events, rows.Err()
}

// =============================================================================
// EMPLOYEE DIRECTORY (attendance.EmployeeDirectory interface)
// =============================================================================

const employeeColumns = `id, uuid, full_name, position, phone, telegram_id, base_salary, is_active, created_at`

// SaveEmployee inserts or updates an employee record.
func (s *Store) SaveEmployee(ctx context.Context, emp attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var telegramID any
	if emp.TelegramID != 0 {
		telegramID = emp.TelegramID
	}
	var salary any
	if emp.BaseSalary.Valid {
		salary = emp.BaseSalary.Decimal.String()
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid = excluded.uuid,
			full_name = excluded.full_name,
			position = excluded.position,
			phone = excluded.phone,
			telegram_id = excluded.telegram_id,
			base_salary = excluded.base_salary,
			is_active = excluded.is_active
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.UUID, emp.FullName, emp.Position, emp.Phone,
		telegramID, salary, boolToInt(emp.Active), emp.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns an employee by id.
func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, employeeID)
	return scanEmployee(row)
}

// ListActive returns all active employees ordered by name.
func (s *Store) ListActive(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE is_active = 1 ORDER BY full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

// ResolveCredential maps a credential to an employee id. QR and face
// credentials carry the employee UUID; chat credentials carry the linked
// telegram account id.
func (s *Store) ResolveCredential(ctx context.Context, cred attendance.Credential) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	switch cred.Kind {
	case attendance.CredentialQR, attendance.CredentialFace:
		query = `SELECT id FROM employees WHERE uuid = ?`
	case attendance.CredentialChat:
		query = `SELECT id FROM employees WHERE telegram_id = ?`
	default:
		return "", attendance.ErrUnresolvedCredential
	}

	var id string
	err := s.db.QueryRowContext(ctx, query, cred.Value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", attendance.ErrUnresolvedCredential
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve credential: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*attendance.Employee, error) {
	var (
		emp        attendance.Employee
		telegramID sql.NullInt64
		salary     sql.NullString
		active     int
		createdAt  string
	)
	err := row.Scan(&emp.ID, &emp.UUID, &emp.FullName, &emp.Position, &emp.Phone,
		&telegramID, &salary, &active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, attendance.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	emp.TelegramID = telegramID.Int64
	emp.Active = active != 0
	emp.CreatedAt, _ = time.ParseInLocation(timeLayout, createdAt, time.Local)

	if salary.Valid {
		d, err := decimal.NewFromString(salary.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse base salary: %w", err)
		}
		emp.BaseSalary = decimal.NewNullDecimal(d)
	}

	return &emp, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
