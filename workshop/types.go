// Package workshop implements KPI scoring for workshop-service staff.
// It uses the generic engine with workshop facts, calculators and role templates.
package workshop

import (
	"fmt"
	"sort"
	"time"

	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// =============================================================================
// ROLES
// =============================================================================

// Roles scored by the workshop engine. Mapping job titles to these values is
// done by the identity service; the engine never inspects titles.
const (
	RoleMechanic           generic.Role = "mechanic"
	RoleTeamLeader         generic.Role = "team_leader"
	RoleServiceAdvisor     generic.Role = "service_advisor"
	RoleLeadServiceAdvisor generic.Role = "lead_service_advisor"
	RoleHeadStore          generic.Role = "head_store"
	RolePartman            generic.Role = "partman"
	RoleToolkeeper         generic.Role = "toolkeeper"
	RoleSupport            generic.Role = "support"
)

// Attribution decides which orders belong to a scope.
type Attribution string

const (
	// AttributeMechanic matches orders the scope's members worked on.
	AttributeMechanic Attribution = "mechanic"
	// AttributeAdvisor matches orders handled by the scope's advisor records.
	AttributeAdvisor Attribution = "advisor"
	// AttributeSite matches every order of the scope's site.
	AttributeSite Attribution = "site"
)

// RoleInfo describes how a role's facts are attributed.
type RoleInfo struct {
	Role        generic.Role
	Label       string
	Attribution Attribution
}

var roleInfo = map[generic.Role]RoleInfo{
	RoleMechanic:           {RoleMechanic, "Mechanic", AttributeMechanic},
	RoleTeamLeader:         {RoleTeamLeader, "Team Leader", AttributeMechanic},
	RoleServiceAdvisor:     {RoleServiceAdvisor, "Service Advisor", AttributeAdvisor},
	RoleLeadServiceAdvisor: {RoleLeadServiceAdvisor, "Lead Service Advisor", AttributeAdvisor},
	RoleHeadStore:          {RoleHeadStore, "Head Store", AttributeSite},
	RolePartman:            {RolePartman, "Partman", AttributeSite},
	RoleToolkeeper:         {RoleToolkeeper, "Toolkeeper", AttributeSite},
	RoleSupport:            {RoleSupport, "Support", AttributeSite},
}

// ParseRole validates a role code. It accepts only the canonical codes.
func ParseRole(code string) (generic.Role, error) {
	r := generic.Role(code)
	if _, ok := roleInfo[r]; !ok {
		return "", fmt.Errorf("%w: %q", generic.ErrUnknownRole, code)
	}
	return r, nil
}

// LookupRole returns the role's attribution info.
func LookupRole(r generic.Role) (RoleInfo, bool) {
	info, ok := roleInfo[r]
	return info, ok
}

// Roles lists every known role, sorted.
func Roles() []generic.Role {
	out := make([]generic.Role, 0, len(roleInfo))
	for r := range roleInfo {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// METRIC CATALOG
// =============================================================================

const (
	MetricRevenue               generic.MetricType = "revenue"
	MetricFlatRateUtilization   generic.MetricType = "flat_rate_utilization"
	MetricProductiveUtilization generic.MetricType = "productive_utilization"
	MetricFlatRateDistribution  generic.MetricType = "flat_rate_distribution"
	MetricReceptionEfficiency   generic.MetricType = "reception_efficiency"
	MetricServiceEfficiency     generic.MetricType = "service_efficiency"
	MetricPartWaitEfficiency    generic.MetricType = "part_wait_efficiency"
	MetricTimeEfficiency        generic.MetricType = "time_efficiency"
	MetricCustomerSatisfaction  generic.MetricType = "customer_satisfaction"
	MetricRecommendationRate    generic.MetricType = "recommendation_rate"
	MetricSOPComplianceLead     generic.MetricType = "sop_compliance_lead"
	MetricSOPComplianceKaizen   generic.MetricType = "sop_compliance_kaizen"
	MetricDiscipline            generic.MetricType = "discipline"
	MetricInventoryAudit        generic.MetricType = "inventory_audit"
	MetricToolAudit             generic.MetricType = "tool_audit"
	MetricTrainingParticipation generic.MetricType = "training_participation"
)

// Thresholds are the fixed limits used by efficiency and audit metrics.
type Thresholds struct {
	Reception time.Duration
	PartWait  time.Duration
	// DistributionBand is the ± fraction around the group average.
	DistributionBand float64
	// AuditTolerance is the largest |delta| an audit may show and still pass (exclusive).
	AuditTolerance float64
}

// DefaultThresholds: reception within 15 minutes, parts within 40 minutes,
// ±10% distribution band, audit discrepancies under 200,000.
var DefaultThresholds = Thresholds{
	Reception:        15 * time.Minute,
	PartWait:         40 * time.Minute,
	DistributionBand: 0.10,
	AuditTolerance:   200000,
}
