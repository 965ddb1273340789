/*
Package sqlite provides a SQLite-backed workshop fact store.

PURPOSE:
  Implements workshop.Store (fact provider + directory + writes) on SQLite.
  It is the default runtime store; store/postgres carries the same schema
  for PostgreSQL deployments.

KEY TABLES:
  employees:           Directory records with leader and site
  advisor_records:     Employee -> service advisor record link
  orders:              Completed work orders (revenue, rating, timings)
  order_people:        Mechanics, line workers and advisors per order
  order_lines:         Billable service lines with flat-rate hours
  attendance:          Check-in/check-out pairs with lateness flag
  compliance_samples:  SOP samples (lead / kaizen)
  audits:              Inventory and tool value audits
  training_attendance: Training invitations and attendance

TIME STORAGE:
  Instants are stored as fixed-width UTC text with nanoseconds
  ("2006-01-02T15:04:05.000000000Z") so period bounds compare correctly as
  strings and match Period.Contains to the nanosecond.

SCOPED QUERIES:
  Every FactProvider method answers for the whole scope in one statement:
  employee IN (...) for individuals and teams, site_id = ? for sites,
  order_people joins for mechanic and advisor attribution.

CONNECTIONS:
  One open connection. ":memory:" databases live per connection, and SQLite
  allows a single writer anyway.

USAGE:
  store, err := sqlite.New("./data/kpi.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := workshop.NewEngine(store, logger)

SEE ALSO:
  - workshop/facts.go: Store, FactProvider and Directory contracts
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements workshop.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ workshop.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

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
		site_id TEXT NOT NULL DEFAULT '',
		leader_id TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_leader ON employees(leader_id);
	CREATE INDEX IF NOT EXISTS idx_employees_site ON employees(site_id);

	CREATE TABLE IF NOT EXISTS advisor_records (
		employee_id TEXT PRIMARY KEY,
		record_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		revenue TEXT NOT NULL DEFAULT '0',
		rating REAL,
		recommendation_count INTEGER NOT NULL DEFAULT 0,
		reception_start TEXT,
		reception_end TEXT,
		service_start TEXT,
		service_end TEXT,
		part_requested TEXT,
		part_ready TEXT
	);

	-- Hot path: site and period scoped order scans
	CREATE INDEX IF NOT EXISTS idx_orders_site_completed ON orders(site_id, completed_at);
	CREATE INDEX IF NOT EXISTS idx_orders_completed ON orders(completed_at);

	-- kind: mechanic | worker | advisor
	CREATE TABLE IF NOT EXISTS order_people (
		order_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (order_id, person_id, kind)
	);

	CREATE INDEX IF NOT EXISTS idx_order_people_person ON order_people(person_id, kind);

	CREATE TABLE IF NOT EXISTS order_lines (
		order_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		flat_rate_hours REAL NOT NULL DEFAULT 0,
		worker_ids_json TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (order_id, seq)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT,
		late BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee_check_in ON attendance(employee_id, check_in);

	CREATE TABLE IF NOT EXISTS compliance_samples (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		site_id TEXT NOT NULL DEFAULT '',
		order_id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		passed BOOLEAN NOT NULL,
		sampled_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_source_sampled ON compliance_samples(source, sampled_at);

	CREATE TABLE IF NOT EXISTS audits (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		site_id TEXT NOT NULL DEFAULT '',
		audit_type TEXT NOT NULL,
		audited_at TEXT NOT NULL,
		expected_value TEXT NOT NULL DEFAULT '0',
		actual_value TEXT NOT NULL DEFAULT '0'
	);

	CREATE INDEX IF NOT EXISTS idx_audits_type_audited ON audits(audit_type, audited_at);

	CREATE TABLE IF NOT EXISTS training_attendance (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL,
		scheduled_at TEXT NOT NULL,
		attended BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_training_scheduled ON training_attendance(scheduled_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data (for demo scenario loading).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"training_attendance", "audits", "compliance_samples", "attendance",
		"order_lines", "order_people", "orders", "advisor_records", "employees",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// DIRECTORY (workshop.Directory interface)
// =============================================================================

// SaveEmployee creates or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, e workshop.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, site_id, leader_id, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			site_id = excluded.site_id,
			leader_id = excluded.leader_id,
			role = excluded.role,
			active = excluded.active
	`, e.ID, e.Name, e.SiteID, e.LeaderID, string(e.Role), e.Active, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// SaveAdvisorRecord links an employee to the advisor record orders reference.
func (s *Store) SaveAdvisorRecord(ctx context.Context, employeeID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO advisor_records (employee_id, record_id) VALUES (?, ?)",
		employeeID, recordID)
	if err != nil {
		return fmt.Errorf("failed to save advisor record: %w", err)
	}
	return nil
}

// Employee returns one employee.
func (s *Store) Employee(ctx context.Context, id string) (workshop.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e workshop.Employee
	var role string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, site_id, leader_id, role, active FROM employees WHERE id = ?", id,
	).Scan(&e.ID, &e.Name, &e.SiteID, &e.LeaderID, &role, &e.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return workshop.Employee{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return workshop.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	e.Role = generic.Role(role)
	return e, nil
}

// DirectReports returns employees whose leader is leaderID.
func (s *Store) DirectReports(ctx context.Context, leaderID string) ([]workshop.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEmployees(ctx, `
		SELECT id, name, site_id, leader_id, role, active FROM employees
		WHERE leader_id = ? AND id <> ? ORDER BY id
	`, leaderID, leaderID)
}

// SiteEmployees returns every employee of a site.
func (s *Store) SiteEmployees(ctx context.Context, siteID string) ([]workshop.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEmployees(ctx, `
		SELECT id, name, site_id, leader_id, role, active FROM employees
		WHERE site_id = ? ORDER BY id
	`, siteID)
}

// ListEmployees returns the whole directory.
func (s *Store) ListEmployees(ctx context.Context) ([]workshop.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEmployees(ctx, "SELECT id, name, site_id, leader_id, role, active FROM employees ORDER BY id")
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]workshop.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []workshop.Employee
	for rows.Next() {
		var e workshop.Employee
		var role string
		if err := rows.Scan(&e.ID, &e.Name, &e.SiteID, &e.LeaderID, &role, &e.Active); err != nil {
			return nil, err
		}
		e.Role = generic.Role(role)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AdvisorRecord returns the advisor record of an employee.
func (s *Store) AdvisorRecord(ctx context.Context, employeeID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT record_id FROM advisor_records WHERE employee_id = ?", employeeID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && id == "") {
		return "", fmt.Errorf("%w: employee %s has no advisor record", generic.ErrRoleRecordMissing, employeeID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get advisor record: %w", err)
	}
	return id, nil
}

// =============================================================================
// ORDERS
// =============================================================================

// SaveOrder replaces an order together with its people and lines.
func (s *Store) SaveOrder(ctx context.Context, o workshop.OrderFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rating sql.NullFloat64
	if o.Rating != nil {
		rating = sql.NullFloat64{Float64: *o.Rating, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders
		(id, site_id, completed_at, revenue, rating, recommendation_count,
		 reception_start, reception_end, service_start, service_end, part_requested, part_ready)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.SiteID, formatTime(o.CompletedAt), o.Revenue.String(), rating, o.RecommendationCount,
		nullTime(o.ReceptionStart), nullTime(o.ReceptionEnd),
		nullTime(o.ServiceStart), nullTime(o.ServiceEnd),
		nullTime(o.PartRequested), nullTime(o.PartReady),
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	for _, table := range []string{"order_people", "order_lines"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE order_id = ?", o.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	people := make(map[string]string)
	for _, id := range o.Workers() {
		people[id] = "worker"
	}
	for _, id := range o.MechanicIDs {
		people[id] = "mechanic"
	}
	for id, kind := range people {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_people (order_id, person_id, kind) VALUES (?, ?, ?)", o.ID, id, kind); err != nil {
			return fmt.Errorf("failed to save order people: %w", err)
		}
	}
	for _, id := range o.AdvisorIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO order_people (order_id, person_id, kind) VALUES (?, ?, 'advisor')", o.ID, id); err != nil {
			return fmt.Errorf("failed to save order advisors: %w", err)
		}
	}
	for i, l := range o.Lines {
		workers, _ := json.Marshal(l.WorkerIDs)
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_lines (order_id, seq, name, flat_rate_hours, worker_ids_json) VALUES (?, ?, ?, ?, ?)",
			o.ID, i, l.Name, l.FlatRateHours, string(workers)); err != nil {
			return fmt.Errorf("failed to save order line: %w", err)
		}
	}

	return tx.Commit()
}

// Orders returns the period's orders attributed to the scope.
func (s *Store) Orders(ctx context.Context, scope workshop.Scope, period generic.Period) ([]workshop.OrderFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := `
		SELECT id, site_id, completed_at, revenue, rating, recommendation_count,
		       reception_start, reception_end, service_start, service_end, part_requested, part_ready
		FROM orders
		WHERE completed_at >= ? AND completed_at <= ?`
	args := []any{formatTime(period.UTCStart), formatTime(period.UTCEnd)}

	switch scope.Attribution {
	case workshop.AttributeSite:
		base += " AND site_id = ?"
		args = append(args, scope.SiteID)
	case workshop.AttributeAdvisor:
		if len(scope.AdvisorIDs) == 0 {
			return nil, nil
		}
		base += " AND id IN (SELECT order_id FROM order_people WHERE kind = 'advisor' AND person_id IN (" + placeholders(len(scope.AdvisorIDs)) + "))"
		args = append(args, anySlice(scope.AdvisorIDs)...)
	default:
		ids := scope.EmployeeIDs()
		base += " AND id IN (SELECT order_id FROM order_people WHERE kind IN ('mechanic', 'worker') AND person_id IN (" + placeholders(len(ids)) + "))"
		args = append(args, anySlice(ids)...)
	}
	base += " ORDER BY id"

	orders, err := s.queryOrders(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	if err := s.attachOrderDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]workshop.OrderFact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var out []workshop.OrderFact
	for rows.Next() {
		var o workshop.OrderFact
		var completed, revenue string
		var rating sql.NullFloat64
		var times [6]sql.NullString
		if err := rows.Scan(&o.ID, &o.SiteID, &completed, &revenue, &rating, &o.RecommendationCount,
			&times[0], &times[1], &times[2], &times[3], &times[4], &times[5]); err != nil {
			return nil, err
		}
		o.CompletedAt = parseTime(completed)
		o.Revenue = parseDecimal(revenue)
		if rating.Valid {
			r := rating.Float64
			o.Rating = &r
		}
		o.ReceptionStart, o.ReceptionEnd = parseNullTime(times[0]), parseNullTime(times[1])
		o.ServiceStart, o.ServiceEnd = parseNullTime(times[2]), parseNullTime(times[3])
		o.PartRequested, o.PartReady = parseNullTime(times[4]), parseNullTime(times[5])
		out = append(out, o)
	}
	return out, rows.Err()
}

// attachOrderDetails loads people and lines for all orders in two queries.
func (s *Store) attachOrderDetails(ctx context.Context, orders []workshop.OrderFact) error {
	if len(orders) == 0 {
		return nil
	}
	index := make(map[string]int, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		ids[i] = o.ID
	}
	in := placeholders(len(ids))

	rows, err := s.db.QueryContext(ctx,
		"SELECT order_id, person_id, kind FROM order_people WHERE order_id IN ("+in+") ORDER BY order_id, person_id",
		anySlice(ids)...)
	if err != nil {
		return fmt.Errorf("failed to query order people: %w", err)
	}
	for rows.Next() {
		var orderID, personID, kind string
		if err := rows.Scan(&orderID, &personID, &kind); err != nil {
			rows.Close()
			return err
		}
		o := &orders[index[orderID]]
		switch kind {
		case "mechanic":
			o.MechanicIDs = append(o.MechanicIDs, personID)
		case "advisor":
			o.AdvisorIDs = append(o.AdvisorIDs, personID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT order_id, name, flat_rate_hours, worker_ids_json FROM order_lines WHERE order_id IN ("+in+") ORDER BY order_id, seq",
		anySlice(ids)...)
	if err != nil {
		return fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var orderID, workersJSON string
		var line workshop.ServiceLine
		if err := rows.Scan(&orderID, &line.Name, &line.FlatRateHours, &workersJSON); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(workersJSON), &line.WorkerIDs); err != nil {
			return fmt.Errorf("failed to decode workers of order %s line %q: %w", orderID, line.Name, err)
		}
		o := &orders[index[orderID]]
		o.Lines = append(o.Lines, line)
	}
	return rows.Err()
}

// =============================================================================
// ATTENDANCE, SAMPLES, AUDITS, TRAINING
// =============================================================================

func (s *Store) SaveAttendance(ctx context.Context, a workshop.AttendanceFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO attendance (id, employee_id, check_in, check_out, late) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.EmployeeID, formatTime(a.CheckIn), nullTime(a.CheckOut), a.Late)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

// Attendance returns the period's attendance of the scope's members.
func (s *Store) Attendance(ctx context.Context, scope workshop.Scope, period generic.Period) ([]workshop.AttendanceFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := scope.EmployeeIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	args := append([]any{formatTime(period.UTCStart), formatTime(period.UTCEnd)}, anySlice(ids)...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, check_in, check_out, late FROM attendance
		WHERE check_in >= ? AND check_in <= ? AND employee_id IN (`+placeholders(len(ids))+`)
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []workshop.AttendanceFact
	for rows.Next() {
		var a workshop.AttendanceFact
		var checkIn string
		var checkOut sql.NullString
		if err := rows.Scan(&a.ID, &a.EmployeeID, &checkIn, &checkOut, &a.Late); err != nil {
			return nil, err
		}
		a.CheckIn, a.CheckOut = parseTime(checkIn), parseNullTime(checkOut)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SaveSample(ctx context.Context, sm workshop.SampleFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO compliance_samples (id, employee_id, site_id, order_id, source, passed, sampled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sm.ID, sm.EmployeeID, sm.SiteID, sm.OrderID, string(sm.Source), sm.Passed, formatTime(sm.SampledAt))
	if err != nil {
		return fmt.Errorf("failed to save sample: %w", err)
	}
	return nil
}

// ComplianceSamples returns the period's samples of one source covering the scope.
func (s *Store) ComplianceSamples(ctx context.Context, scope workshop.Scope, period generic.Period, source workshop.SampleSource) ([]workshop.SampleFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cover, coverArgs := coverClause(scope)
	args := append([]any{string(source), formatTime(period.UTCStart), formatTime(period.UTCEnd)}, coverArgs...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, site_id, order_id, source, passed, sampled_at FROM compliance_samples
		WHERE source = ? AND sampled_at >= ? AND sampled_at <= ? AND `+cover+`
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance samples: %w", err)
	}
	defer rows.Close()

	var out []workshop.SampleFact
	for rows.Next() {
		var sm workshop.SampleFact
		var src, sampled string
		if err := rows.Scan(&sm.ID, &sm.EmployeeID, &sm.SiteID, &sm.OrderID, &src, &sm.Passed, &sampled); err != nil {
			return nil, err
		}
		sm.Source, sm.SampledAt = workshop.SampleSource(src), parseTime(sampled)
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *Store) SaveAudit(ctx context.Context, a workshop.AuditFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO audits (id, employee_id, site_id, audit_type, audited_at, expected_value, actual_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.SiteID, string(a.Type), formatTime(a.AuditedAt), a.ExpectedValue.String(), a.ActualValue.String())
	if err != nil {
		return fmt.Errorf("failed to save audit: %w", err)
	}
	return nil
}

// Audits returns the period's audits of one type covering the scope.
func (s *Store) Audits(ctx context.Context, scope workshop.Scope, period generic.Period, auditType workshop.AuditType) ([]workshop.AuditFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cover, coverArgs := coverClause(scope)
	args := append([]any{string(auditType), formatTime(period.UTCStart), formatTime(period.UTCEnd)}, coverArgs...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, site_id, audit_type, audited_at, expected_value, actual_value FROM audits
		WHERE audit_type = ? AND audited_at >= ? AND audited_at <= ? AND `+cover+`
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}
	defer rows.Close()

	var out []workshop.AuditFact
	for rows.Next() {
		var a workshop.AuditFact
		var typ, audited, expected, actual string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.SiteID, &typ, &audited, &expected, &actual); err != nil {
			return nil, err
		}
		a.Type, a.AuditedAt = workshop.AuditType(typ), parseTime(audited)
		a.ExpectedValue, a.ActualValue = parseDecimal(expected), parseDecimal(actual)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SaveTraining(ctx context.Context, t workshop.TrainingFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO training_attendance (id, program_id, employee_id, scheduled_at, attended)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.ProgramID, t.EmployeeID, formatTime(t.ScheduledAt), t.Attended)
	if err != nil {
		return fmt.Errorf("failed to save training attendance: %w", err)
	}
	return nil
}

// TrainingAttendance returns every invitation scheduled in the period.
func (s *Store) TrainingAttendance(ctx context.Context, period generic.Period) ([]workshop.TrainingFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_id, employee_id, scheduled_at, attended FROM training_attendance
		WHERE scheduled_at >= ? AND scheduled_at <= ?
		ORDER BY id`, formatTime(period.UTCStart), formatTime(period.UTCEnd))
	if err != nil {
		return nil, fmt.Errorf("failed to query training attendance: %w", err)
	}
	defer rows.Close()

	var out []workshop.TrainingFact
	for rows.Next() {
		var t workshop.TrainingFact
		var scheduled string
		if err := rows.Scan(&t.ID, &t.ProgramID, &t.EmployeeID, &scheduled, &t.Attended); err != nil {
			return nil, err
		}
		t.ScheduledAt = parseTime(scheduled)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// coverClause mirrors workshop.Scope.Covers: sites match by site_id, other
// scopes by employee.
func coverClause(scope workshop.Scope) (string, []any) {
	ids := anySlice(scope.EmployeeIDs())
	if len(ids) == 0 {
		ids = []any{""}
	}
	if scope.Level == generic.ScopeSite {
		return "(site_id = ? OR (site_id = '' AND employee_id IN (" + placeholders(len(ids)) + ")))",
			append([]any{scope.SiteID}, ids...)
	}
	return "employee_id IN (" + placeholders(len(ids)) + ")", ids
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseNullTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	return parseTime(s.String)
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
