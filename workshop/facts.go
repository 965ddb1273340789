package workshop

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// =============================================================================
// FACTS - Read-only operational records
// =============================================================================

// Employee is a directory record. Role is already resolved by the identity
// service; it is empty for staff the engine does not score.
type Employee struct {
	ID       string
	Name     string
	SiteID   string
	LeaderID string
	Role     generic.Role
	Active   bool
}

// ServiceLine is one billable job on an order. FlatRateHours is the standard
// time the job is billed at, split evenly between WorkerIDs.
type ServiceLine struct {
	Name          string
	FlatRateHours float64
	WorkerIDs     []string
}

// OrderFact is a completed work order.
type OrderFact struct {
	ID                  string
	SiteID              string
	CompletedAt         time.Time
	Revenue             decimal.Decimal
	Rating              *float64
	RecommendationCount int
	MechanicIDs         []string
	AdvisorIDs          []string

	ReceptionStart time.Time
	ReceptionEnd   time.Time
	ServiceStart   time.Time
	ServiceEnd     time.Time
	PartRequested  time.Time
	PartReady      time.Time

	Lines []ServiceLine
}

// Workers returns every mechanic on the order: assigned mechanics plus line
// workers, without duplicates.
func (o OrderFact) Workers() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range o.MechanicIDs {
		add(id)
	}
	for _, l := range o.Lines {
		for _, id := range l.WorkerIDs {
			add(id)
		}
	}
	return out
}

// PlannedHours is the flat-rate total of the order's lines.
func (o OrderFact) PlannedHours() float64 {
	var h float64
	for _, l := range o.Lines {
		h += l.FlatRateHours
	}
	return h
}

// AttendanceFact is one check-in/check-out pair.
type AttendanceFact struct {
	ID         string
	EmployeeID string
	CheckIn    time.Time
	CheckOut   time.Time
	Late       bool
}

// SampleSource is who took a compliance sample.
type SampleSource string

const (
	SourceLead   SampleSource = "lead"
	SourceKaizen SampleSource = "kaizen"
)

// SampleFact is one SOP compliance check.
type SampleFact struct {
	ID         string
	EmployeeID string
	SiteID     string
	OrderID    string
	Source     SampleSource
	Passed     bool
	SampledAt  time.Time
}

// AuditType distinguishes stock audits from tool audits.
type AuditType string

const (
	AuditInventory AuditType = "inventory"
	AuditTool      AuditType = "tool"
)

// AuditFact is one value audit. Delta is counted minus recorded value.
type AuditFact struct {
	ID            string
	EmployeeID    string
	SiteID        string
	Type          AuditType
	AuditedAt     time.Time
	ExpectedValue decimal.Decimal
	ActualValue   decimal.Decimal
}

func (a AuditFact) Delta() decimal.Decimal {
	return a.ActualValue.Sub(a.ExpectedValue)
}

// TrainingFact is one invitation to a training session.
type TrainingFact struct {
	ID          string
	ProgramID   string
	EmployeeID  string
	ScheduledAt time.Time
	Attended    bool
}

// =============================================================================
// PROVIDER CONTRACT - Implemented by store/memory, store/sqlite, store/postgres
// =============================================================================

// FactProvider returns fact collections scoped to a Scope and a Period.
// Implementations answer each query for the whole scope at once; the engine
// never issues per-member queries.
type FactProvider interface {
	Orders(ctx context.Context, scope Scope, period generic.Period) ([]OrderFact, error)
	Attendance(ctx context.Context, scope Scope, period generic.Period) ([]AttendanceFact, error)
	ComplianceSamples(ctx context.Context, scope Scope, period generic.Period, source SampleSource) ([]SampleFact, error)
	Audits(ctx context.Context, scope Scope, period generic.Period, auditType AuditType) ([]AuditFact, error)
	TrainingAttendance(ctx context.Context, period generic.Period) ([]TrainingFact, error)
}

// Directory resolves employees and their hierarchy.
type Directory interface {
	// Employee returns the record or an error wrapping generic.ErrEmployeeNotFound.
	Employee(ctx context.Context, id string) (Employee, error)
	DirectReports(ctx context.Context, leaderID string) ([]Employee, error)
	SiteEmployees(ctx context.Context, siteID string) ([]Employee, error)
	// AdvisorRecord returns the advisor record ID orders reference, or an
	// error wrapping generic.ErrRoleRecordMissing.
	AdvisorRecord(ctx context.Context, employeeID string) (string, error)
}

// Source is everything the engine reads.
type Source interface {
	FactProvider
	Directory
}

// Store is a Source that also accepts facts. Demo scenarios and tests write
// through it; the engine only reads.
type Store interface {
	Source
	SaveEmployee(ctx context.Context, e Employee) error
	SaveAdvisorRecord(ctx context.Context, employeeID, recordID string) error
	SaveOrder(ctx context.Context, o OrderFact) error
	SaveAttendance(ctx context.Context, a AttendanceFact) error
	SaveSample(ctx context.Context, s SampleFact) error
	SaveAudit(ctx context.Context, a AuditFact) error
	SaveTraining(ctx context.Context, t TrainingFact) error
	Reset(ctx context.Context) error
	Close() error
}
