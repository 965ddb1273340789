package workshop

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var testLoc = time.FixedZone("WIB", 7*60*60)

func march(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, testLoc)
}

func mechanic(id string) Employee {
	return Employee{ID: id, Name: strings.ToUpper(id), SiteID: "site-1", LeaderID: "tl", Role: RoleMechanic, Active: true}
}

func individualScope(id string) Scope {
	return Scope{
		Level:       generic.ScopeIndividual,
		SubjectID:   id,
		SiteID:      "site-1",
		Attribution: AttributeMechanic,
		Members:     []Employee{mechanic(id)},
	}
}

func teamScope(members ...Employee) Scope {
	return Scope{
		Level:       generic.ScopeTeam,
		SubjectID:   members[0].ID,
		SiteID:      "site-1",
		Attribution: AttributeMechanic,
		Members:     members,
	}
}

func input(metric generic.MetricType, b *FactBundle) Input {
	return Input{
		Definition: generic.KpiDefinition{Sequence: 1, Metric: metric, Weight: decimal.NewFromInt(10), IncludeInTotal: true},
		Bundle:     b,
		Location:   testLoc,
		Break:      generic.DefaultBreak,
		Thresholds: DefaultThresholds,
	}
}

func measure(t *testing.T, in Input) generic.Measurement {
	t.Helper()
	calc, err := NewCalculators().MustLookup(in.Definition.Metric)
	require.NoError(t, err)
	m, err := calc(in)
	require.NoError(t, err)
	return m
}

func rating(v float64) *float64 { return &v }

// =============================================================================
// COMPLIANCE vs DISCIPLINE DEFAULTS
// =============================================================================

func TestEmptyDefaults_ComplianceIs100_DisciplineIs0(t *testing.T) {
	// GIVEN: A bundle with no samples and no attendance
	// WHEN: Measuring compliance and discipline
	// THEN: Compliance assumes compliant (100), discipline scores 0

	b := &FactBundle{scope: individualScope("m1")}

	assert.Equal(t, 100.0, measure(t, input(MetricSOPComplianceLead, b)).Actual)
	assert.Equal(t, 100.0, measure(t, input(MetricSOPComplianceKaizen, b)).Actual)
	assert.Equal(t, 0.0, measure(t, input(MetricDiscipline, b)).Actual)
}

func TestCompliance_FiltersBySource(t *testing.T) {
	b := &FactBundle{
		scope: individualScope("m1"),
		leadSamples: []SampleFact{
			{ID: "s1", EmployeeID: "m1", Source: SourceLead, Passed: true},
			{ID: "s2", EmployeeID: "m1", Source: SourceLead, Passed: true},
			{ID: "s3", EmployeeID: "m1", Source: SourceLead, Passed: true},
			{ID: "s4", EmployeeID: "m1", Source: SourceLead, Passed: false},
		},
		kaizenSamples: []SampleFact{
			{ID: "k1", EmployeeID: "m1", Source: SourceKaizen, Passed: false},
		},
	}

	lead := measure(t, input(MetricSOPComplianceLead, b))
	assert.Equal(t, 75.0, lead.Actual)
	assert.Equal(t, "3 of 4 lead samples passed", lead.Narrative)

	assert.Equal(t, 0.0, measure(t, input(MetricSOPComplianceKaizen, b)).Actual)
}

func TestDiscipline_OnTimeShare(t *testing.T) {
	b := &FactBundle{
		scope: individualScope("m1"),
		attendance: []AttendanceFact{
			{ID: "a1", EmployeeID: "m1", Late: false},
			{ID: "a2", EmployeeID: "m1", Late: true},
			{ID: "a3", EmployeeID: "m1", Late: false},
			{ID: "a4", EmployeeID: "m1", Late: false},
		},
	}
	m := measure(t, input(MetricDiscipline, b))
	assert.Equal(t, 75.0, m.Actual)
	assert.Equal(t, "3 of 4 check-ins on time, 1 late", m.Narrative)
}

// =============================================================================
// REVENUE
// =============================================================================

func TestRevenue_SharedOrderSplitsBetweenMechanics(t *testing.T) {
	// GIVEN: A 30M order worked by m1 and m2, m1's target 40M
	// WHEN: Measuring m1's revenue
	// THEN: m1 is credited 15M, 37.5% of target

	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{
			{ID: "o1", SiteID: "site-1", Revenue: decimal.NewFromInt(30_000_000), MechanicIDs: []string{"m1", "m2"}},
		},
	}
	in := input(MetricRevenue, b)
	in.Definition.Params.RevenueTarget = decimal.NewFromInt(40_000_000)

	m := measure(t, in)
	assert.InDelta(t, 37.5, m.Actual, 1e-9)
	assert.Contains(t, m.Narrative, "15,000,000")
	assert.Contains(t, m.Narrative, "40,000,000")
}

func TestRevenue_PerMemberTargetOnTeam(t *testing.T) {
	// GIVEN: A team of two sharing a 20M order, 10M target per member
	// THEN: The whole order counts once against a 20M target

	b := &FactBundle{
		scope: teamScope(mechanic("tl"), mechanic("m1")),
		orders: []OrderFact{
			{ID: "o1", Revenue: decimal.NewFromInt(20_000_000), MechanicIDs: []string{"tl", "m1"}},
		},
	}
	in := input(MetricRevenue, b)
	in.Definition.Params.RevenueTarget = decimal.NewFromInt(10_000_000)
	in.Definition.Params.PerMember = true

	assert.InDelta(t, 100.0, measure(t, in).Actual, 1e-9)
}

func TestRevenue_ZeroTargetScoresZero(t *testing.T) {
	b := &FactBundle{
		scope:  individualScope("m1"),
		orders: []OrderFact{{ID: "o1", Revenue: decimal.NewFromInt(5_000_000), MechanicIDs: []string{"m1"}}},
	}
	m := measure(t, input(MetricRevenue, b))
	assert.Equal(t, 0.0, m.Actual)
	assert.Contains(t, m.Narrative, "no revenue target")
}

// =============================================================================
// TIME EFFICIENCY
// =============================================================================

func TestIsTimeComponent(t *testing.T) {
	assert.True(t, IsTimeComponent(MetricReceptionEfficiency))
	assert.True(t, IsTimeComponent(MetricServiceEfficiency))
	assert.True(t, IsTimeComponent(MetricPartWaitEfficiency))
	assert.False(t, IsTimeComponent(MetricRevenue))
	assert.False(t, IsTimeComponent(MetricTimeEfficiency))
}

func TestComponentWeights(t *testing.T) {
	assert.Equal(t, []float64{100}, ComponentWeights(1))
	assert.Equal(t, []float64{50, 50}, ComponentWeights(2))
	assert.Equal(t, []float64{33, 33, 34}, ComponentWeights(3))
	assert.Nil(t, ComponentWeights(0))
}

func TestTimeEfficiency_DropsComponentsWithoutData(t *testing.T) {
	// GIVEN: Reception timings 10m (on time) and 20m (late), one service job
	//        of 1.5h against 2h flat-rate, and no part-wait timings
	// WHEN: Measuring the three-component time efficiency
	// THEN: Reception 50 and service 100 are combined 50/50 = 75

	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{
			{
				ID:             "o1",
				ReceptionStart: march(3, 8, 0), ReceptionEnd: march(3, 8, 10),
				ServiceStart: march(3, 8, 30), ServiceEnd: march(3, 10, 0),
				Lines: []ServiceLine{{Name: "service", FlatRateHours: 2, WorkerIDs: []string{"m1"}}},
			},
			{
				ID:             "o2",
				ReceptionStart: march(4, 8, 0), ReceptionEnd: march(4, 8, 20),
			},
		},
	}
	in := input(MetricTimeEfficiency, b)
	in.Definition.Params.Components = []generic.MetricType{
		MetricReceptionEfficiency, MetricServiceEfficiency, MetricPartWaitEfficiency,
	}

	m := measure(t, in)
	assert.InDelta(t, 75.0, m.Actual, 1e-9)
	assert.Contains(t, m.Narrative, "No part wait timings recorded")
}

func TestTimeEfficiency_ThreeComponents(t *testing.T) {
	// reception 100, service 0, part wait 100 -> 33 + 0 + 34 = 67
	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{{
			ID:             "o1",
			ReceptionStart: march(3, 8, 0), ReceptionEnd: march(3, 8, 15),
			ServiceStart: march(3, 8, 30), ServiceEnd: march(3, 11, 0),
			PartRequested: march(3, 9, 0), PartReady: march(3, 9, 40),
			Lines: []ServiceLine{{FlatRateHours: 1, WorkerIDs: []string{"m1"}}},
		}},
	}
	m := measure(t, input(MetricTimeEfficiency, b))
	assert.InDelta(t, 67.0, m.Actual, 1e-9)
}

func TestServiceEfficiency_ExcludesBreak(t *testing.T) {
	// GIVEN: Service 11:30-14:00 (2.5h elapsed, 1.5h excluding lunch), 2h flat-rate
	// THEN: On time
	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{{
			ID:           "o1",
			ServiceStart: march(3, 11, 30), ServiceEnd: march(3, 14, 0),
			Lines: []ServiceLine{{FlatRateHours: 2, WorkerIDs: []string{"m1"}}},
		}},
	}
	assert.Equal(t, 100.0, measure(t, input(MetricServiceEfficiency, b)).Actual)
}

func TestEfficiency_EmptyIsZero(t *testing.T) {
	b := &FactBundle{scope: individualScope("m1")}
	assert.Equal(t, 0.0, measure(t, input(MetricReceptionEfficiency, b)).Actual)
	assert.Equal(t, 0.0, measure(t, input(MetricPartWaitEfficiency, b)).Actual)
	assert.Equal(t, 0.0, measure(t, input(MetricTimeEfficiency, b)).Actual)
}

// =============================================================================
// CUSTOMER
// =============================================================================

func TestCustomerSatisfaction(t *testing.T) {
	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{
			{ID: "o1", Rating: rating(5)},
			{ID: "o2", Rating: rating(5)},
			{ID: "o3", Rating: rating(4.9)},
			{ID: "o4"},
		},
	}
	// average 4.97 rounds to 5.0 -> 120
	assert.Equal(t, 120.0, measure(t, input(MetricCustomerSatisfaction, b)).Actual)

	empty := &FactBundle{scope: individualScope("m1"), orders: []OrderFact{{ID: "o1"}}}
	m := measure(t, input(MetricCustomerSatisfaction, empty))
	assert.Equal(t, 0.0, m.Actual)
	assert.Contains(t, m.Narrative, "No customer ratings")
}

func TestRecommendationRate(t *testing.T) {
	b := &FactBundle{
		scope:  individualScope("m1"),
		orders: []OrderFact{{ID: "o1", RecommendationCount: 2}, {ID: "o2"}},
	}
	assert.Equal(t, 50.0, measure(t, input(MetricRecommendationRate, b)).Actual)
}

// =============================================================================
// AUDITS & TRAINING
// =============================================================================

func TestAudit_ToleranceIsExclusive(t *testing.T) {
	b := &FactBundle{
		scope: individualScope("p1"),
		inventory: []AuditFact{
			{ID: "i1", Type: AuditInventory, ExpectedValue: decimal.NewFromInt(1_000_000), ActualValue: decimal.NewFromInt(1_100_000)},
			{ID: "i2", Type: AuditInventory, ExpectedValue: decimal.NewFromInt(1_000_000), ActualValue: decimal.NewFromInt(750_000)},
			{ID: "i3", Type: AuditInventory, ExpectedValue: decimal.NewFromInt(1_000_000), ActualValue: decimal.NewFromInt(800_000)},
		},
	}
	// |100k| passes, |250k| and |200k| fail
	m := measure(t, input(MetricInventoryAudit, b))
	assert.InDelta(t, 33.333, m.Actual, 0.001)
	assert.Contains(t, m.Narrative, "largest discrepancy 250,000")

	assert.Equal(t, 0.0, measure(t, input(MetricToolAudit, b)).Actual)
}

func TestTrainingParticipation(t *testing.T) {
	empty := &FactBundle{scope: individualScope("m1")}
	assert.Equal(t, 100.0, measure(t, input(MetricTrainingParticipation, empty)).Actual)

	b := &FactBundle{
		scope: individualScope("m1"),
		training: []TrainingFact{
			{ID: "t1", EmployeeID: "m1", Attended: true},
			{ID: "t2", EmployeeID: "m1", Attended: false},
		},
	}
	assert.Equal(t, 50.0, measure(t, input(MetricTrainingParticipation, b)).Actual)
}

// =============================================================================
// UTILIZATION & DISTRIBUTION
// =============================================================================

func TestFlatRateUtilization(t *testing.T) {
	// GIVEN: 6h billable and one 08:00-17:00 shift (8h after lunch)
	// THEN: 75%
	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{
			{ID: "o1", Lines: []ServiceLine{{FlatRateHours: 4, WorkerIDs: []string{"m1"}}}},
			{ID: "o2", Lines: []ServiceLine{{FlatRateHours: 4, WorkerIDs: []string{"m1", "m2"}}}},
		},
		attendance: []AttendanceFact{{ID: "a1", EmployeeID: "m1", CheckIn: march(3, 8, 0), CheckOut: march(3, 17, 0)}},
	}
	assert.InDelta(t, 75.0, measure(t, input(MetricFlatRateUtilization, b)).Actual, 1e-9)
}

func TestProductiveUtilization(t *testing.T) {
	// GIVEN: Present 08:00-17:00, service 10:00-14:00 on m1's order
	// THEN: 3h productive (lunch removed) over 8h worked
	b := &FactBundle{
		scope: individualScope("m1"),
		orders: []OrderFact{{
			ID: "o1", MechanicIDs: []string{"m1"},
			ServiceStart: march(3, 10, 0), ServiceEnd: march(3, 14, 0),
		}},
		attendance: []AttendanceFact{{ID: "a1", EmployeeID: "m1", CheckIn: march(3, 8, 0), CheckOut: march(3, 17, 0)}},
	}
	assert.InDelta(t, 37.5, measure(t, input(MetricProductiveUtilization, b)).Actual, 1e-9)
}

func TestFlatRateDistribution_QuarterInBand(t *testing.T) {
	// GIVEN: Four mechanics with 90, 100, 110 and 150 billable hours
	// WHEN: Measuring distribution at team scope
	// THEN: Average 112.5, band [101.25, 123.75], only 110 is in range -> 25

	members := []Employee{mechanic("m1"), mechanic("m2"), mechanic("m3"), mechanic("m4")}
	hours := []float64{90, 100, 110, 150}
	var orders []OrderFact
	for i, m := range members {
		orders = append(orders, OrderFact{
			ID:    "o" + m.ID,
			Lines: []ServiceLine{{FlatRateHours: hours[i], WorkerIDs: []string{m.ID}}},
		})
	}
	b := &FactBundle{scope: teamScope(members...), orders: orders}

	m := measure(t, input(MetricFlatRateDistribution, b))
	assert.Equal(t, 25.0, m.Actual)
	require.Len(t, m.Breakdown, 4)
	for _, e := range m.Breakdown {
		assert.Equal(t, e.SubjectID == "m3", e.InRange, e.SubjectID)
	}
}

func TestFlatRateDistribution_PopulationExcludesLeader(t *testing.T) {
	leader := mechanic("tl")
	leader.Role = RoleTeamLeader
	b := &FactBundle{
		scope: teamScope(leader, mechanic("m1"), mechanic("m2")),
		orders: []OrderFact{
			{ID: "o1", Lines: []ServiceLine{{FlatRateHours: 10, WorkerIDs: []string{"m1"}}}},
			{ID: "o2", Lines: []ServiceLine{{FlatRateHours: 10, WorkerIDs: []string{"m2"}}}},
		},
	}
	in := input(MetricFlatRateDistribution, b)
	in.Definition.Params.Population = []generic.Role{RoleMechanic}

	m := measure(t, in)
	assert.Equal(t, 100.0, m.Actual)
	assert.Len(t, m.Breakdown, 2)
}

func TestFlatRateDistribution_IndividualScopeFails(t *testing.T) {
	b := &FactBundle{scope: individualScope("m1")}
	calc := NewCalculators().Lookup(MetricFlatRateDistribution)
	_, err := calc(input(MetricFlatRateDistribution, b))
	assert.Error(t, err)
}

func TestCalculators_MissingBundleFails(t *testing.T) {
	r := NewCalculators()
	for _, metric := range r.Metrics() {
		_, err := r.Lookup(metric)(input(metric, nil))
		assert.Error(t, err, metric)
	}
}
