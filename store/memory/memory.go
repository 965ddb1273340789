// Package memory provides an in-memory workshop fact store for tests and
// the demo server.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	employees  map[string]workshop.Employee
	advisors   map[string]string
	orders     map[string]workshop.OrderFact
	attendance map[string]workshop.AttendanceFact
	samples    map[string]workshop.SampleFact
	audits     map[string]workshop.AuditFact
	training   map[string]workshop.TrainingFact
}

var _ workshop.Store = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.employees = make(map[string]workshop.Employee)
	m.advisors = make(map[string]string)
	m.orders = make(map[string]workshop.OrderFact)
	m.attendance = make(map[string]workshop.AttendanceFact)
	m.samples = make(map[string]workshop.SampleFact)
	m.audits = make(map[string]workshop.AuditFact)
	m.training = make(map[string]workshop.TrainingFact)
}

// Reset drops every record.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

func (m *Memory) Close() error { return nil }

// =============================================================================
// WRITES - Upsert by ID
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, e workshop.Employee) error {
	if e.ID == "" {
		return fmt.Errorf("employee id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) SaveAdvisorRecord(_ context.Context, employeeID, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advisors[employeeID] = recordID
	return nil
}

func (m *Memory) SaveOrder(_ context.Context, o workshop.OrderFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) SaveAttendance(_ context.Context, a workshop.AttendanceFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[a.ID] = a
	return nil
}

func (m *Memory) SaveSample(_ context.Context, s workshop.SampleFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[s.ID] = s
	return nil
}

func (m *Memory) SaveAudit(_ context.Context, a workshop.AuditFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits[a.ID] = a
	return nil
}

func (m *Memory) SaveTraining(_ context.Context, t workshop.TrainingFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.training[t.ID] = t
	return nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (m *Memory) Employee(_ context.Context, id string) (workshop.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return workshop.Employee{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return e, nil
}

func (m *Memory) DirectReports(_ context.Context, leaderID string) ([]workshop.Employee, error) {
	return m.employeesWhere(func(e workshop.Employee) bool {
		return e.LeaderID == leaderID && e.ID != leaderID
	}), nil
}

func (m *Memory) SiteEmployees(_ context.Context, siteID string) ([]workshop.Employee, error) {
	return m.employeesWhere(func(e workshop.Employee) bool { return e.SiteID == siteID }), nil
}

func (m *Memory) AdvisorRecord(_ context.Context, employeeID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.advisors[employeeID]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: employee %s has no advisor record", generic.ErrRoleRecordMissing, employeeID)
	}
	return id, nil
}

func (m *Memory) employeesWhere(keep func(workshop.Employee) bool) []workshop.Employee {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workshop.Employee
	for _, e := range m.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// FACT PROVIDER - Whole-scope queries
// =============================================================================

func (m *Memory) Orders(_ context.Context, scope workshop.Scope, period generic.Period) ([]workshop.OrderFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workshop.OrderFact
	for _, o := range m.orders {
		if period.Contains(o.CompletedAt) && scope.MatchesOrder(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Attendance(_ context.Context, scope workshop.Scope, period generic.Period) ([]workshop.AttendanceFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workshop.AttendanceFact
	for _, a := range m.attendance {
		if period.Contains(a.CheckIn) && scope.HasEmployee(a.EmployeeID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ComplianceSamples(_ context.Context, scope workshop.Scope, period generic.Period, source workshop.SampleSource) ([]workshop.SampleFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workshop.SampleFact
	for _, s := range m.samples {
		if s.Source == source && period.Contains(s.SampledAt) && scope.Covers(s.EmployeeID, s.SiteID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Audits(_ context.Context, scope workshop.Scope, period generic.Period, auditType workshop.AuditType) ([]workshop.AuditFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workshop.AuditFact
	for _, a := range m.audits {
		if a.Type == auditType && period.Contains(a.AuditedAt) && scope.Covers(a.EmployeeID, a.SiteID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) TrainingAttendance(_ context.Context, period generic.Period) ([]workshop.TrainingFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []workshop.TrainingFact
	for _, t := range m.training {
		if period.Contains(t.ScheduledAt) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
