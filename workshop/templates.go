package workshop

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// =============================================================================
// BUILT-IN ROLE TEMPLATES
// =============================================================================

var (
	targetMechanicRevenue  = decimal.NewFromInt(40_000_000)
	targetAdvisorRevenue   = decimal.NewFromInt(150_000_000)
	targetHeadStoreRevenue = decimal.NewFromInt(600_000_000)
)

type lineOpt func(*generic.KpiDefinition)

func self(d *generic.KpiDefinition) { d.Scope = generic.ScopeIndividual }

func informational(d *generic.KpiDefinition) { d.IncludeInTotal = false }

func revenueTarget(amount decimal.Decimal, perMember bool) lineOpt {
	return func(d *generic.KpiDefinition) {
		d.Params.RevenueTarget = amount
		d.Params.PerMember = perMember
	}
}

func components(metrics ...generic.MetricType) lineOpt {
	return func(d *generic.KpiDefinition) { d.Params.Components = metrics }
}

func population(roles ...generic.Role) lineOpt {
	return func(d *generic.KpiDefinition) { d.Params.Population = roles }
}

func line(seq int, name string, metric generic.MetricType, weight, target int64, opts ...lineOpt) generic.KpiDefinition {
	d := generic.KpiDefinition{
		Sequence:       seq,
		Name:           name,
		Metric:         metric,
		Weight:         decimal.NewFromInt(weight),
		Target:         decimal.NewFromInt(target),
		IncludeInTotal: true,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// BuiltinTemplates returns the eight default role templates. Each call builds
// fresh values.
func BuiltinTemplates() []generic.RoleTemplate {
	return []generic.RoleTemplate{
		generic.NewRoleTemplate(RoleMechanic, "Mechanic", generic.ScopeIndividual, []generic.KpiDefinition{
			line(1, "Revenue contribution", MetricRevenue, 20, 100, revenueTarget(targetMechanicRevenue, false)),
			line(2, "Flat-rate utilization", MetricFlatRateUtilization, 15, 90),
			line(3, "Service time efficiency", MetricServiceEfficiency, 15, 90),
			line(4, "Customer satisfaction", MetricCustomerSatisfaction, 15, 100),
			line(5, "SOP compliance (lead sampling)", MetricSOPComplianceLead, 10, 100),
			line(6, "SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 10, 100),
			line(7, "Discipline", MetricDiscipline, 15, 95),
			line(8, "Training participation", MetricTrainingParticipation, 0, 100, informational),
		}),
		generic.NewRoleTemplate(RoleTeamLeader, "Team Leader", generic.ScopeTeam, []generic.KpiDefinition{
			line(1, "Team revenue", MetricRevenue, 20, 100, revenueTarget(targetMechanicRevenue, true)),
			line(2, "Flat-rate distribution", MetricFlatRateDistribution, 15, 80, population(RoleMechanic)),
			line(3, "Team service time efficiency", MetricServiceEfficiency, 10, 90),
			line(4, "Team customer satisfaction", MetricCustomerSatisfaction, 15, 100),
			line(5, "Team SOP compliance (lead sampling)", MetricSOPComplianceLead, 10, 100),
			line(6, "Team SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 10, 100),
			line(7, "Team discipline", MetricDiscipline, 10, 95),
			line(8, "Own discipline", MetricDiscipline, 10, 95, self),
		}),
		generic.NewRoleTemplate(RoleServiceAdvisor, "Service Advisor", generic.ScopeIndividual, []generic.KpiDefinition{
			line(1, "Revenue", MetricRevenue, 20, 100, revenueTarget(targetAdvisorRevenue, false)),
			line(2, "Time efficiency", MetricTimeEfficiency, 20, 90,
				components(MetricReceptionEfficiency, MetricServiceEfficiency, MetricPartWaitEfficiency)),
			line(3, "Customer satisfaction", MetricCustomerSatisfaction, 20, 100),
			line(4, "Recommendation rate", MetricRecommendationRate, 10, 80),
			line(5, "SOP compliance (lead sampling)", MetricSOPComplianceLead, 10, 100),
			line(6, "SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 10, 100),
			line(7, "Discipline", MetricDiscipline, 10, 95),
		}),
		generic.NewRoleTemplate(RoleLeadServiceAdvisor, "Lead Service Advisor", generic.ScopeTeam, []generic.KpiDefinition{
			line(1, "Team revenue", MetricRevenue, 20, 100, revenueTarget(targetAdvisorRevenue, true)),
			line(2, "Team time efficiency", MetricTimeEfficiency, 20, 90,
				components(MetricReceptionEfficiency, MetricServiceEfficiency)),
			line(3, "Team customer satisfaction", MetricCustomerSatisfaction, 20, 100),
			line(4, "Team SOP compliance (lead sampling)", MetricSOPComplianceLead, 10, 100),
			line(5, "Team SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 10, 100),
			line(6, "Team discipline", MetricDiscipline, 10, 95),
			line(7, "Own discipline", MetricDiscipline, 10, 95, self),
		}),
		generic.NewRoleTemplate(RoleHeadStore, "Head Store", generic.ScopeSite, []generic.KpiDefinition{
			line(1, "Store revenue", MetricRevenue, 25, 100, revenueTarget(targetHeadStoreRevenue, false)),
			line(2, "Mechanic flat-rate distribution", MetricFlatRateDistribution, 10, 80, population(RoleMechanic)),
			line(3, "Store time efficiency", MetricTimeEfficiency, 15, 90,
				components(MetricReceptionEfficiency, MetricServiceEfficiency, MetricPartWaitEfficiency)),
			line(4, "Store customer satisfaction", MetricCustomerSatisfaction, 20, 100),
			line(5, "Store SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 10, 100),
			line(6, "Inventory audit", MetricInventoryAudit, 10, 100),
			line(7, "Own discipline", MetricDiscipline, 10, 95, self),
			line(8, "Store training participation", MetricTrainingParticipation, 0, 100, informational),
		}),
		generic.NewRoleTemplate(RolePartman, "Partman", generic.ScopeSite, []generic.KpiDefinition{
			line(1, "Part wait efficiency", MetricPartWaitEfficiency, 30, 90),
			line(2, "Inventory audit", MetricInventoryAudit, 30, 100),
			line(3, "SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 20, 100, self),
			line(4, "Discipline", MetricDiscipline, 20, 95, self),
		}),
		generic.NewRoleTemplate(RoleToolkeeper, "Toolkeeper", generic.ScopeSite, []generic.KpiDefinition{
			line(1, "Tool audit", MetricToolAudit, 40, 100),
			line(2, "SOP compliance (kaizen sampling)", MetricSOPComplianceKaizen, 20, 100, self),
			line(3, "Discipline", MetricDiscipline, 40, 95, self),
		}),
		generic.NewRoleTemplate(RoleSupport, "Support", generic.ScopeIndividual, []generic.KpiDefinition{
			line(1, "Discipline", MetricDiscipline, 40, 95),
			line(2, "SOP compliance (lead sampling)", MetricSOPComplianceLead, 30, 100),
			line(3, "Training participation", MetricTrainingParticipation, 30, 100),
		}),
	}
}

// =============================================================================
// TEMPLATE REGISTRY
// =============================================================================

// TemplateRegistry holds one immutable template per role. Lookups return the
// stored value; RoleTemplate only exposes copies of its definitions so callers
// cannot alter a shared template.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[generic.Role]generic.RoleTemplate
}

// NewTemplateRegistry returns a registry seeded with BuiltinTemplates.
func NewTemplateRegistry() *TemplateRegistry {
	r := &TemplateRegistry{templates: make(map[generic.Role]generic.RoleTemplate)}
	for _, t := range BuiltinTemplates() {
		r.templates[t.Role] = t
	}
	return r
}

// Get returns the template for role or an ErrTemplateNotFound error.
func (r *TemplateRegistry) Get(role generic.Role) (generic.RoleTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[role]
	if !ok {
		return generic.RoleTemplate{}, fmt.Errorf("%w: %s", generic.ErrTemplateNotFound, role)
	}
	return t, nil
}

// Override replaces the templates of the given roles after validating all of
// them. Either every template is applied or none is.
func (r *TemplateRegistry) Override(templates ...generic.RoleTemplate) error {
	for _, t := range templates {
		if _, ok := LookupRole(t.Role); !ok {
			return fmt.Errorf("%w: %s", generic.ErrUnknownRole, t.Role)
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range templates {
		r.templates[t.Role] = t
	}
	return nil
}

// All returns every template sorted by role.
func (r *TemplateRegistry) All() []generic.RoleTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]generic.RoleTemplate, 0, len(r.templates))
	for _, role := range Roles() {
		if t, ok := r.templates[role]; ok {
			out = append(out, t)
		}
	}
	return out
}
