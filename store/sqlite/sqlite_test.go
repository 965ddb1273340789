package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var wib = time.FixedZone("WIB", 7*60*60)

func newTestStore(t *testing.T) *Store {
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func march(day, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, wib)
}

// =============================================================================
// ORDER ROUND TRIP & SCOPING
// =============================================================================

func TestStore_OrdersByAttribution(t *testing.T) {
	// GIVEN: Three orders at two sites with mechanics, line workers and advisors
	// WHEN: Querying mechanic, advisor and site scopes
	// THEN: Each scope sees exactly its orders, with details attached

	store := newTestStore(t)
	ctx := context.Background()
	period := generic.MustResolvePeriod(3, 2025, wib)
	rating := 4.8

	require.NoError(t, store.SaveOrder(ctx, workshop.OrderFact{
		ID: "o1", SiteID: "s1", CompletedAt: march(3, 10), Revenue: decimal.RequireFromString("1500000.50"),
		Rating: &rating, RecommendationCount: 2,
		MechanicIDs: []string{"m1"}, AdvisorIDs: []string{"adv-1"},
		ServiceStart: march(3, 8), ServiceEnd: march(3, 10),
		Lines: []workshop.ServiceLine{
			{Name: "brake", FlatRateHours: 1.5, WorkerIDs: []string{"m1", "m2"}},
			{Name: "oil", FlatRateHours: 0.5},
		},
	}))
	require.NoError(t, store.SaveOrder(ctx, workshop.OrderFact{
		ID: "o2", SiteID: "s1", CompletedAt: march(4, 10), MechanicIDs: []string{"m3"},
	}))
	require.NoError(t, store.SaveOrder(ctx, workshop.OrderFact{
		ID: "o3", SiteID: "s2", CompletedAt: march(5, 10), MechanicIDs: []string{"m1"},
	}))

	// m2 only appears as a line worker on o1
	m2 := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "m2", Attribution: workshop.AttributeMechanic,
		Members: []workshop.Employee{{ID: "m2"}}}
	orders, err := store.Orders(ctx, m2, period)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "o1", o.ID)
	assert.True(t, o.Revenue.Equal(decimal.RequireFromString("1500000.50")))
	require.NotNil(t, o.Rating)
	assert.Equal(t, 4.8, *o.Rating)
	assert.Equal(t, 2, o.RecommendationCount)
	assert.Equal(t, []string{"m1"}, o.MechanicIDs)
	assert.Equal(t, []string{"adv-1"}, o.AdvisorIDs)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, []string{"m1", "m2"}, o.Lines[0].WorkerIDs)
	assert.True(t, o.ServiceStart.Equal(march(3, 8)))
	assert.True(t, o.PartRequested.IsZero())

	advisor := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "sa", Attribution: workshop.AttributeAdvisor,
		AdvisorIDs: []string{"adv-1"}, Members: []workshop.Employee{{ID: "sa"}}}
	orders, err = store.Orders(ctx, advisor, period)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	site := workshop.Scope{Level: generic.ScopeSite, SubjectID: "hs", SiteID: "s1", Attribution: workshop.AttributeSite,
		Members: []workshop.Employee{{ID: "hs"}}}
	orders, err = store.Orders(ctx, site, period)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestStore_PeriodBoundsUseBusinessTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := generic.MustResolvePeriod(3, 2025, wib)

	// April 1 02:00 local is March 31 in UTC but belongs to April
	require.NoError(t, store.SaveAttendance(ctx, workshop.AttendanceFact{
		ID: "a1", EmployeeID: "m1", CheckIn: time.Date(2025, 4, 1, 2, 0, 0, 0, wib),
	}))
	require.NoError(t, store.SaveAttendance(ctx, workshop.AttendanceFact{
		ID: "a2", EmployeeID: "m1", CheckIn: march(31, 8), CheckOut: march(31, 17), Late: true,
	}))

	scope := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "m1", Members: []workshop.Employee{{ID: "m1"}}}
	att, err := store.Attendance(ctx, scope, period)
	require.NoError(t, err)
	require.Len(t, att, 1)
	assert.Equal(t, "a2", att[0].ID)
	assert.True(t, att[0].Late)
	assert.True(t, att[0].CheckOut.Equal(march(31, 17)))
}

func TestStore_PeriodEndMatchesContains(t *testing.T) {
	// GIVEN: Check-ins on the last second of March and half a second later
	// WHEN: Querying March
	// THEN: SQLite agrees with Period.Contains on both

	store := newTestStore(t)
	ctx := context.Background()
	period := generic.MustResolvePeriod(3, 2025, wib)

	last := time.Date(2025, 3, 31, 23, 59, 59, 0, wib)
	after := last.Add(500 * time.Millisecond)
	require.NoError(t, store.SaveAttendance(ctx, workshop.AttendanceFact{ID: "last", EmployeeID: "m1", CheckIn: last}))
	require.NoError(t, store.SaveAttendance(ctx, workshop.AttendanceFact{ID: "after", EmployeeID: "m1", CheckIn: after}))

	scope := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "m1", Members: []workshop.Employee{{ID: "m1"}}}
	att, err := store.Attendance(ctx, scope, period)
	require.NoError(t, err)
	require.Len(t, att, 1)
	assert.Equal(t, "last", att[0].ID)
	assert.True(t, period.Contains(last))
	assert.False(t, period.Contains(after))
}

func TestStore_KeepsSubSecondPrecision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := generic.MustResolvePeriod(3, 2025, wib)

	in := time.Date(2025, 3, 3, 8, 0, 0, 123456789, wib)
	require.NoError(t, store.SaveAttendance(ctx, workshop.AttendanceFact{ID: "a1", EmployeeID: "m1", CheckIn: in}))

	scope := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "m1", Members: []workshop.Employee{{ID: "m1"}}}
	att, err := store.Attendance(ctx, scope, period)
	require.NoError(t, err)
	require.Len(t, att, 1)
	assert.True(t, att[0].CheckIn.Equal(in))
}

func TestStore_CorruptLineWorkersFailTheQuery(t *testing.T) {
	// GIVEN: An order line whose stored worker list is not valid JSON
	// WHEN: Loading the order
	// THEN: The query fails instead of dropping the workers

	store := newTestStore(t)
	ctx := context.Background()
	period := generic.MustResolvePeriod(3, 2025, wib)

	require.NoError(t, store.SaveOrder(ctx, workshop.OrderFact{
		ID: "o1", SiteID: "s1", CompletedAt: march(3, 10), MechanicIDs: []string{"m1"},
		Lines: []workshop.ServiceLine{{Name: "brake", FlatRateHours: 1, WorkerIDs: []string{"m1"}}},
	}))
	_, err := store.db.ExecContext(ctx, "UPDATE order_lines SET worker_ids_json = 'not-json' WHERE order_id = 'o1'")
	require.NoError(t, err)

	scope := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "m1", Attribution: workshop.AttributeMechanic,
		Members: []workshop.Employee{{ID: "m1"}}}
	_, err = store.Orders(ctx, scope, period)
	assert.ErrorContains(t, err, "failed to decode workers of order o1")
}

func TestStore_SamplesAndAuditsCoverSite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := generic.MustResolvePeriod(3, 2025, wib)

	require.NoError(t, store.SaveSample(ctx, workshop.SampleFact{ID: "k1", EmployeeID: "m1", SiteID: "s1", Source: workshop.SourceKaizen, Passed: true, SampledAt: march(3, 9)}))
	require.NoError(t, store.SaveSample(ctx, workshop.SampleFact{ID: "k2", EmployeeID: "m9", SiteID: "s1", Source: workshop.SourceKaizen, SampledAt: march(3, 9)}))
	require.NoError(t, store.SaveSample(ctx, workshop.SampleFact{ID: "l1", EmployeeID: "m1", SiteID: "s1", Source: workshop.SourceLead, SampledAt: march(3, 9)}))
	require.NoError(t, store.SaveAudit(ctx, workshop.AuditFact{ID: "x1", SiteID: "s1", Type: workshop.AuditInventory, AuditedAt: march(10, 9),
		ExpectedValue: decimal.NewFromInt(1_000_000), ActualValue: decimal.NewFromInt(950_000)}))

	individual := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "m1", SiteID: "s1", Members: []workshop.Employee{{ID: "m1"}}}
	site := workshop.Scope{Level: generic.ScopeSite, SubjectID: "hs", SiteID: "s1", Members: []workshop.Employee{{ID: "hs"}}}

	samples, err := store.ComplianceSamples(ctx, individual, period, workshop.SourceKaizen)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.True(t, samples[0].Passed)

	samples, err = store.ComplianceSamples(ctx, site, period, workshop.SourceKaizen)
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	audits, err := store.Audits(ctx, site, period, workshop.AuditInventory)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.True(t, audits[0].Delta().Equal(decimal.NewFromInt(-50_000)))
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestStore_Directory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, workshop.Employee{ID: "tl", Name: "Tono", SiteID: "s1", Role: workshop.RoleTeamLeader, Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, workshop.Employee{ID: "m1", Name: "Budi", SiteID: "s1", LeaderID: "tl", Role: workshop.RoleMechanic, Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, workshop.Employee{ID: "m2", Name: "Agus", SiteID: "s1", LeaderID: "tl", Role: workshop.RoleMechanic, Active: false}))

	e, err := store.Employee(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, workshop.RoleMechanic, e.Role)
	assert.True(t, e.Active)

	reports, err := store.DirectReports(ctx, "tl")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.False(t, reports[1].Active)

	_, err = store.Employee(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	_, err = store.AdvisorRecord(ctx, "m1")
	assert.ErrorIs(t, err, generic.ErrRoleRecordMissing)

	require.NoError(t, store.Reset(ctx))
	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// =============================================================================
// ENGINE ON SQLITE
// =============================================================================

func TestStore_DrivesEngine(t *testing.T) {
	// GIVEN: A mechanic with one on-time shift stored in SQLite
	// WHEN: Computing the scorecard through the engine
	// THEN: Discipline reads the stored attendance

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, workshop.Employee{ID: "m1", Name: "Budi", SiteID: "s1", Role: workshop.RoleMechanic, Active: true}))
	require.NoError(t, store.SaveAttendance(ctx, workshop.AttendanceFact{ID: "a1", EmployeeID: "m1", CheckIn: march(3, 8), CheckOut: march(3, 17)}))

	engine := workshop.NewEngine(store, zerolog.Nop())
	engine.Location = wib
	card, err := engine.ComputeScorecard(ctx, workshop.Request{EmployeeID: "m1", Role: workshop.RoleMechanic, Month: 3, Year: 2025})
	require.NoError(t, err)

	for _, r := range card.Results {
		if r.Definition.Metric == workshop.MetricDiscipline {
			assert.True(t, r.Actual.Equal(decimal.NewFromInt(100)))
		}
	}
}
