/*
Package postgres provides a PostgreSQL-backed workshop fact store.

PURPOSE:
  Same contract and schema as store/sqlite, using pgx connection pooling.
  Amounts are NUMERIC and instants TIMESTAMPTZ; amounts travel as text so
  decimal precision is never lost to float conversion.

USAGE:
  store, err := postgres.New(ctx, os.Getenv("DATABASE_URL"))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - store/sqlite: Default embedded store, same tables
  - workshop/facts.go: Store contract
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// Store implements workshop.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ workshop.Store = (*Store)(nil)

// New connects to databaseURL and migrates the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		site_id TEXT NOT NULL DEFAULT '',
		leader_id TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
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
		completed_at TIMESTAMPTZ NOT NULL,
		revenue NUMERIC NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION,
		recommendation_count INTEGER NOT NULL DEFAULT 0,
		reception_start TIMESTAMPTZ,
		reception_end TIMESTAMPTZ,
		service_start TIMESTAMPTZ,
		service_end TIMESTAMPTZ,
		part_requested TIMESTAMPTZ,
		part_ready TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_orders_site_completed ON orders(site_id, completed_at);
	CREATE INDEX IF NOT EXISTS idx_orders_completed ON orders(completed_at);

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
		flat_rate_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		worker_ids TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (order_id, seq)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		check_in TIMESTAMPTZ NOT NULL,
		check_out TIMESTAMPTZ,
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
		sampled_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_source_sampled ON compliance_samples(source, sampled_at);

	CREATE TABLE IF NOT EXISTS audits (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		site_id TEXT NOT NULL DEFAULT '',
		audit_type TEXT NOT NULL,
		audited_at TIMESTAMPTZ NOT NULL,
		expected_value NUMERIC NOT NULL DEFAULT 0,
		actual_value NUMERIC NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_audits_type_audited ON audits(audit_type, audited_at);

	CREATE TABLE IF NOT EXISTS training_attendance (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		attended BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_training_scheduled ON training_attendance(scheduled_at);
	`)
	return err
}

// Reset truncates every table.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE training_attendance, audits, compliance_samples, attendance,
		order_lines, order_people, orders, advisor_records, employees`)
	if err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	return nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e workshop.Employee) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, site_id, leader_id, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, site_id = EXCLUDED.site_id, leader_id = EXCLUDED.leader_id,
			role = EXCLUDED.role, active = EXCLUDED.active
	`, e.ID, e.Name, e.SiteID, e.LeaderID, string(e.Role), e.Active)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) SaveAdvisorRecord(ctx context.Context, employeeID, recordID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO advisor_records (employee_id, record_id) VALUES ($1, $2)
		ON CONFLICT (employee_id) DO UPDATE SET record_id = EXCLUDED.record_id
	`, employeeID, recordID)
	if err != nil {
		return fmt.Errorf("failed to save advisor record: %w", err)
	}
	return nil
}

const employeeColumns = "id, name, site_id, leader_id, role, active"

func scanEmployee(row pgx.Row) (workshop.Employee, error) {
	var e workshop.Employee
	var role string
	if err := row.Scan(&e.ID, &e.Name, &e.SiteID, &e.LeaderID, &role, &e.Active); err != nil {
		return workshop.Employee{}, err
	}
	e.Role = generic.Role(role)
	return e, nil
}

func (s *Store) Employee(ctx context.Context, id string) (workshop.Employee, error) {
	e, err := scanEmployee(s.pool.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return workshop.Employee{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return workshop.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (s *Store) DirectReports(ctx context.Context, leaderID string) ([]workshop.Employee, error) {
	return s.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE leader_id = $1 AND id <> $1 ORDER BY id", leaderID)
}

func (s *Store) SiteEmployees(ctx context.Context, siteID string) ([]workshop.Employee, error) {
	return s.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE site_id = $1 ORDER BY id", siteID)
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]workshop.Employee, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []workshop.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) AdvisorRecord(ctx context.Context, employeeID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, "SELECT record_id FROM advisor_records WHERE employee_id = $1", employeeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && id == "") {
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

func (s *Store) SaveOrder(ctx context.Context, o workshop.OrderFact) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, site_id, completed_at, revenue, rating, recommendation_count,
				reception_start, reception_end, service_start, service_end, part_requested, part_ready)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				site_id = EXCLUDED.site_id, completed_at = EXCLUDED.completed_at, revenue = EXCLUDED.revenue,
				rating = EXCLUDED.rating, recommendation_count = EXCLUDED.recommendation_count,
				reception_start = EXCLUDED.reception_start, reception_end = EXCLUDED.reception_end,
				service_start = EXCLUDED.service_start, service_end = EXCLUDED.service_end,
				part_requested = EXCLUDED.part_requested, part_ready = EXCLUDED.part_ready
		`, o.ID, o.SiteID, o.CompletedAt.UTC(), o.Revenue.String(), o.Rating, o.RecommendationCount,
			nullTime(o.ReceptionStart), nullTime(o.ReceptionEnd),
			nullTime(o.ServiceStart), nullTime(o.ServiceEnd),
			nullTime(o.PartRequested), nullTime(o.PartReady))
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM order_people WHERE order_id = $1", o.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM order_lines WHERE order_id = $1", o.ID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		mechanics := make(map[string]bool, len(o.MechanicIDs))
		for _, id := range o.MechanicIDs {
			mechanics[id] = true
		}
		for _, id := range o.Workers() {
			kind := "worker"
			if mechanics[id] {
				kind = "mechanic"
			}
			batch.Queue("INSERT INTO order_people (order_id, person_id, kind) VALUES ($1, $2, $3)", o.ID, id, kind)
		}
		for _, id := range o.AdvisorIDs {
			batch.Queue(`INSERT INTO order_people (order_id, person_id, kind) VALUES ($1, $2, 'advisor')
				ON CONFLICT DO NOTHING`, o.ID, id)
		}
		for i, l := range o.Lines {
			workers := l.WorkerIDs
			if workers == nil {
				workers = []string{}
			}
			batch.Queue("INSERT INTO order_lines (order_id, seq, name, flat_rate_hours, worker_ids) VALUES ($1, $2, $3, $4, $5)",
				o.ID, i, l.Name, l.FlatRateHours, workers)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *Store) Orders(ctx context.Context, scope workshop.Scope, period generic.Period) ([]workshop.OrderFact, error) {
	query := `
		SELECT id, site_id, completed_at, revenue::text, rating, recommendation_count,
		       reception_start, reception_end, service_start, service_end, part_requested, part_ready
		FROM orders
		WHERE completed_at BETWEEN $1 AND $2`
	args := []any{period.UTCStart, period.UTCEnd}

	switch scope.Attribution {
	case workshop.AttributeSite:
		query += " AND site_id = $3"
		args = append(args, scope.SiteID)
	case workshop.AttributeAdvisor:
		query += " AND id IN (SELECT order_id FROM order_people WHERE kind = 'advisor' AND person_id = ANY($3))"
		args = append(args, scope.AdvisorIDs)
	default:
		query += " AND id IN (SELECT order_id FROM order_people WHERE kind IN ('mechanic', 'worker') AND person_id = ANY($3))"
		args = append(args, scope.EmployeeIDs())
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workshop.OrderFact, error) {
		var o workshop.OrderFact
		var revenue string
		var times [6]*time.Time
		if err := row.Scan(&o.ID, &o.SiteID, &o.CompletedAt, &revenue, &o.Rating, &o.RecommendationCount,
			&times[0], &times[1], &times[2], &times[3], &times[4], &times[5]); err != nil {
			return o, err
		}
		o.Revenue = parseDecimal(revenue)
		o.ReceptionStart, o.ReceptionEnd = deref(times[0]), deref(times[1])
		o.ServiceStart, o.ServiceEnd = deref(times[2]), deref(times[3])
		o.PartRequested, o.PartReady = deref(times[4]), deref(times[5])
		return o, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}
	if err := s.attachOrderDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

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

	rows, err := s.pool.Query(ctx,
		"SELECT order_id, person_id, kind FROM order_people WHERE order_id = ANY($1) ORDER BY order_id, person_id", ids)
	if err != nil {
		return fmt.Errorf("failed to query order people: %w", err)
	}
	var orderID, personID, kind string
	_, err = pgx.ForEachRow(rows, []any{&orderID, &personID, &kind}, func() error {
		o := &orders[index[orderID]]
		switch kind {
		case "mechanic":
			o.MechanicIDs = append(o.MechanicIDs, personID)
		case "advisor":
			o.AdvisorIDs = append(o.AdvisorIDs, personID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan order people: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		"SELECT order_id, name, flat_rate_hours, worker_ids FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, seq", ids)
	if err != nil {
		return fmt.Errorf("failed to query order lines: %w", err)
	}
	var line workshop.ServiceLine
	_, err = pgx.ForEachRow(rows, []any{&orderID, &line.Name, &line.FlatRateHours, &line.WorkerIDs}, func() error {
		o := &orders[index[orderID]]
		o.Lines = append(o.Lines, workshop.ServiceLine{
			Name:          line.Name,
			FlatRateHours: line.FlatRateHours,
			WorkerIDs:     append([]string(nil), line.WorkerIDs...),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan order lines: %w", err)
	}
	return nil
}

// =============================================================================
// ATTENDANCE, SAMPLES, AUDITS, TRAINING
// =============================================================================

func (s *Store) SaveAttendance(ctx context.Context, a workshop.AttendanceFact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attendance (id, employee_id, check_in, check_out, late) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET employee_id = EXCLUDED.employee_id, check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out, late = EXCLUDED.late
	`, a.ID, a.EmployeeID, a.CheckIn.UTC(), nullTime(a.CheckOut), a.Late)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

func (s *Store) Attendance(ctx context.Context, scope workshop.Scope, period generic.Period) ([]workshop.AttendanceFact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, check_in, check_out, late FROM attendance
		WHERE check_in BETWEEN $1 AND $2 AND employee_id = ANY($3)
		ORDER BY id
	`, period.UTCStart, period.UTCEnd, scope.EmployeeIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workshop.AttendanceFact, error) {
		var a workshop.AttendanceFact
		var checkOut *time.Time
		err := row.Scan(&a.ID, &a.EmployeeID, &a.CheckIn, &checkOut, &a.Late)
		a.CheckOut = deref(checkOut)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return out, nil
}

func (s *Store) SaveSample(ctx context.Context, sm workshop.SampleFact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO compliance_samples (id, employee_id, site_id, order_id, source, passed, sampled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET passed = EXCLUDED.passed, sampled_at = EXCLUDED.sampled_at
	`, sm.ID, sm.EmployeeID, sm.SiteID, sm.OrderID, string(sm.Source), sm.Passed, sm.SampledAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save sample: %w", err)
	}
	return nil
}

// coverClause mirrors workshop.Scope.Covers starting at placeholder $n.
func coverClause(scope workshop.Scope, n int) (string, []any) {
	if scope.Level == generic.ScopeSite {
		return fmt.Sprintf("(site_id = $%d OR (site_id = '' AND employee_id = ANY($%d)))", n, n+1),
			[]any{scope.SiteID, scope.EmployeeIDs()}
	}
	return fmt.Sprintf("employee_id = ANY($%d)", n), []any{scope.EmployeeIDs()}
}

func (s *Store) ComplianceSamples(ctx context.Context, scope workshop.Scope, period generic.Period, source workshop.SampleSource) ([]workshop.SampleFact, error) {
	cover, coverArgs := coverClause(scope, 4)
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, site_id, order_id, source, passed, sampled_at FROM compliance_samples
		WHERE source = $1 AND sampled_at BETWEEN $2 AND $3 AND `+cover+`
		ORDER BY id
	`, append([]any{string(source), period.UTCStart, period.UTCEnd}, coverArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance samples: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workshop.SampleFact, error) {
		var sm workshop.SampleFact
		var src string
		err := row.Scan(&sm.ID, &sm.EmployeeID, &sm.SiteID, &sm.OrderID, &src, &sm.Passed, &sm.SampledAt)
		sm.Source = workshop.SampleSource(src)
		return sm, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan compliance samples: %w", err)
	}
	return out, nil
}

func (s *Store) SaveAudit(ctx context.Context, a workshop.AuditFact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audits (id, employee_id, site_id, audit_type, audited_at, expected_value, actual_value)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)
		ON CONFLICT (id) DO UPDATE SET expected_value = EXCLUDED.expected_value, actual_value = EXCLUDED.actual_value
	`, a.ID, a.EmployeeID, a.SiteID, string(a.Type), a.AuditedAt.UTC(), a.ExpectedValue.String(), a.ActualValue.String())
	if err != nil {
		return fmt.Errorf("failed to save audit: %w", err)
	}
	return nil
}

func (s *Store) Audits(ctx context.Context, scope workshop.Scope, period generic.Period, auditType workshop.AuditType) ([]workshop.AuditFact, error) {
	cover, coverArgs := coverClause(scope, 4)
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, site_id, audit_type, audited_at, expected_value::text, actual_value::text FROM audits
		WHERE audit_type = $1 AND audited_at BETWEEN $2 AND $3 AND `+cover+`
		ORDER BY id
	`, append([]any{string(auditType), period.UTCStart, period.UTCEnd}, coverArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workshop.AuditFact, error) {
		var a workshop.AuditFact
		var typ, expected, actual string
		err := row.Scan(&a.ID, &a.EmployeeID, &a.SiteID, &typ, &a.AuditedAt, &expected, &actual)
		a.Type = workshop.AuditType(typ)
		a.ExpectedValue, a.ActualValue = parseDecimal(expected), parseDecimal(actual)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan audits: %w", err)
	}
	return out, nil
}

func (s *Store) SaveTraining(ctx context.Context, t workshop.TrainingFact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO training_attendance (id, program_id, employee_id, scheduled_at, attended)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET attended = EXCLUDED.attended, scheduled_at = EXCLUDED.scheduled_at
	`, t.ID, t.ProgramID, t.EmployeeID, t.ScheduledAt.UTC(), t.Attended)
	if err != nil {
		return fmt.Errorf("failed to save training attendance: %w", err)
	}
	return nil
}

func (s *Store) TrainingAttendance(ctx context.Context, period generic.Period) ([]workshop.TrainingFact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, program_id, employee_id, scheduled_at, attended FROM training_attendance
		WHERE scheduled_at BETWEEN $1 AND $2
		ORDER BY id
	`, period.UTCStart, period.UTCEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query training attendance: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workshop.TrainingFact, error) {
		var t workshop.TrainingFact
		err := row.Scan(&t.ID, &t.ProgramID, &t.EmployeeID, &t.ScheduledAt, &t.Attended)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan training attendance: %w", err)
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
