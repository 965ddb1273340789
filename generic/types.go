/*
Package generic provides the core KPI scoring engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for turning
  per-metric measurements into weighted scorecards. Whether the subject is a
  mechanic, a service advisor or a whole store, the same engine resolves the
  period, evaluates every KPI definition in isolation and reduces the results
  into a summary with an achievement verdict.

KEY CONCEPTS IN THIS FILE (types.go):
  - Role / MetricType / ScopeLevel: Type-safe identifiers
  - KpiDefinition: One weighted, targeted line of a role template
  - RoleTemplate: The ordered catalog of definitions for a role
  - Measurement: What a calculator produces (actual + narrative)
  - KpiResult / Summary / Scorecard: The engine output

DESIGN PRINCIPLES:
  1. Immutability: Templates are shared; results are always new values
  2. Precision: Weights, targets and scores use decimal.Decimal
  3. Isolation: One failing metric never aborts a scorecard
  4. Type Safety: Roles and metric types are enumerations, never titles

SEE ALSO:
  - period.go: Period resolution
  - time.go: Worked/productive hours
  - scoring.go: Weighted scores and the summary reducer
  - evaluate.go: Parallel, isolated evaluation
*/
package generic

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Role is a resolved job role. Resolution from free-text titles happens
// outside the engine; the engine only ever receives one of these values.
type Role string

// MetricType selects the calculator used for a KPI definition.
type MetricType string

// ScopeLevel is the breadth of facts feeding a KPI.
type ScopeLevel string

const (
	ScopeIndividual ScopeLevel = "individual"
	ScopeTeam       ScopeLevel = "team"
	ScopeSite       ScopeLevel = "site"
)

// Valid reports one of the three known levels.
func (s ScopeLevel) Valid() bool {
	return s == ScopeIndividual || s == ScopeTeam || s == ScopeSite
}

// =============================================================================
// KPI DEFINITION
// =============================================================================

// MetricParams carries calculator options that vary per template line.
type MetricParams struct {
	// RevenueTarget is the monthly revenue target for revenue metrics.
	RevenueTarget decimal.Decimal
	// PerMember multiplies RevenueTarget by the scope's attributed member count.
	PerMember bool
	// Components lists the sub-metrics of a composite metric.
	Components []MetricType
	// Population restricts distribution metrics to these roles.
	Population []Role
}

// KpiDefinition is one line of a role template.
type KpiDefinition struct {
	Sequence       int
	Name           string
	Metric         MetricType
	Weight         decimal.Decimal
	Target         decimal.Decimal
	IncludeInTotal bool
	// Scope overrides the template scope for this line; empty means inherit.
	Scope  ScopeLevel
	Params MetricParams
}

// clone returns a copy that shares no slices with d.
func (d KpiDefinition) clone() KpiDefinition {
	out := d
	out.Params.Components = append([]MetricType(nil), d.Params.Components...)
	out.Params.Population = append([]Role(nil), d.Params.Population...)
	return out
}

// =============================================================================
// ROLE TEMPLATE
// =============================================================================

// RoleTemplate is the ordered KPI catalog of a role.
type RoleTemplate struct {
	Role        Role
	Label       string
	Scope       ScopeLevel
	definitions []KpiDefinition
}

// NewRoleTemplate builds a template, copying defs so later caller edits do not
// leak into a template that may be shared across requests.
func NewRoleTemplate(role Role, label string, scope ScopeLevel, defs []KpiDefinition) RoleTemplate {
	t := RoleTemplate{Role: role, Label: label, Scope: scope}
	t.definitions = make([]KpiDefinition, len(defs))
	for i, d := range defs {
		t.definitions[i] = d.clone()
	}
	return t
}

// Definitions returns a copy of the ordered definitions.
func (t RoleTemplate) Definitions() []KpiDefinition {
	out := make([]KpiDefinition, len(t.definitions))
	for i, d := range t.definitions {
		out[i] = d.clone()
	}
	return out
}

// Len returns the number of definitions.
func (t RoleTemplate) Len() int { return len(t.definitions) }

// TotalWeight sums the weight of included definitions.
func (t RoleTemplate) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, d := range t.definitions {
		if d.IncludeInTotal {
			total = total.Add(d.Weight)
		}
	}
	return total
}

// ScopeFor returns the effective scope of a definition in this template.
func (t RoleTemplate) ScopeFor(d KpiDefinition) ScopeLevel {
	if d.Scope != "" {
		return d.Scope
	}
	return t.Scope
}

// Validate checks the template is usable. Weight sums other than 100 are
// allowed; callers log them.
func (t RoleTemplate) Validate() error {
	if t.Role == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidTemplate)
	}
	if !t.Scope.Valid() {
		return fmt.Errorf("%w: %s: unknown scope %q", ErrInvalidTemplate, t.Role, t.Scope)
	}
	if len(t.definitions) == 0 {
		return fmt.Errorf("%w: %s: no definitions", ErrInvalidTemplate, t.Role)
	}
	seen := make(map[int]bool, len(t.definitions))
	for _, d := range t.definitions {
		switch {
		case d.Metric == "":
			return fmt.Errorf("%w: %s #%d: metric is required", ErrInvalidTemplate, t.Role, d.Sequence)
		case seen[d.Sequence]:
			return fmt.Errorf("%w: %s: duplicate sequence %d", ErrInvalidTemplate, t.Role, d.Sequence)
		case d.Weight.IsNegative() || d.Weight.GreaterThan(hundred):
			return fmt.Errorf("%w: %s #%d: weight %s outside 0-100", ErrInvalidTemplate, t.Role, d.Sequence, d.Weight)
		case d.Target.IsNegative():
			return fmt.Errorf("%w: %s #%d: negative target", ErrInvalidTemplate, t.Role, d.Sequence)
		case d.Scope != "" && !d.Scope.Valid():
			return fmt.Errorf("%w: %s #%d: unknown scope %q", ErrInvalidTemplate, t.Role, d.Sequence, d.Scope)
		}
		seen[d.Sequence] = true
	}
	return nil
}

// =============================================================================
// MEASUREMENT - Calculator output
// =============================================================================

// BreakdownEntry is one row of structured detail behind an actual, e.g. one
// mechanic's billable hours in a distribution metric.
type BreakdownEntry struct {
	SubjectID string
	Label     string
	Value     float64
	InRange   bool
}

// Measurement is what a calculator returns.
type Measurement struct {
	Actual    float64
	Narrative string
	Breakdown []BreakdownEntry
}

// =============================================================================
// RESULTS
// =============================================================================

// KpiResult is a definition evaluated for one period.
type KpiResult struct {
	Definition    KpiDefinition
	Actual        decimal.Decimal
	Narrative     string
	Breakdown     []BreakdownEntry
	WeightedScore decimal.Decimal
	// Achievement equals WeightedScore, not Actual/Target. Downstream
	// displays depend on that.
	Achievement decimal.Decimal
	Failed      bool
}

type Status string

const (
	StatusAchieved    Status = "achieved"
	StatusBelowTarget Status = "below_target"
)

// Summary reduces the included results of a scorecard.
type Summary struct {
	TotalWeight decimal.Decimal
	TotalScore  decimal.Decimal
	Target      decimal.Decimal
	Status      Status
}

// Scorecard is the engine output for one subject and period.
type Scorecard struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Role         Role
	RoleLabel    string
	Scope        ScopeLevel
	Period       Period
	Results      []KpiResult
	Summary      Summary
	GeneratedAt  time.Time
}
