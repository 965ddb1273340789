package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

var wib = time.FixedZone("WIB", 7*60*60)

func TestMemory_ScopedQueries(t *testing.T) {
	// GIVEN: Samples and audits for two sites
	// WHEN: Querying an individual scope and a site scope
	// THEN: Individual scopes match by employee, site scopes by site

	ctx := context.Background()
	m := New()
	period := generic.MustResolvePeriod(3, 2025, wib)
	when := time.Date(2025, 3, 10, 9, 0, 0, 0, wib)

	require.NoError(t, m.SaveSample(ctx, workshop.SampleFact{ID: "s1", EmployeeID: "e1", SiteID: "a", Source: workshop.SourceKaizen, SampledAt: when}))
	require.NoError(t, m.SaveSample(ctx, workshop.SampleFact{ID: "s2", EmployeeID: "e2", SiteID: "a", Source: workshop.SourceKaizen, SampledAt: when}))
	require.NoError(t, m.SaveSample(ctx, workshop.SampleFact{ID: "s3", EmployeeID: "e3", SiteID: "b", Source: workshop.SourceKaizen, SampledAt: when}))
	require.NoError(t, m.SaveSample(ctx, workshop.SampleFact{ID: "s4", EmployeeID: "e1", SiteID: "a", Source: workshop.SourceLead, SampledAt: when}))
	require.NoError(t, m.SaveAudit(ctx, workshop.AuditFact{ID: "x1", SiteID: "a", Type: workshop.AuditTool, AuditedAt: when}))

	individual := workshop.Scope{
		Level: generic.ScopeIndividual, SubjectID: "e1", SiteID: "a",
		Members: []workshop.Employee{{ID: "e1"}},
	}
	site := workshop.Scope{
		Level: generic.ScopeSite, SubjectID: "e1", SiteID: "a",
		Attribution: workshop.AttributeSite,
		Members:     []workshop.Employee{{ID: "e1"}},
	}

	got, err := m.ComplianceSamples(ctx, individual, period, workshop.SourceKaizen)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)

	got, err = m.ComplianceSamples(ctx, site, period, workshop.SourceKaizen)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	audits, err := m.Audits(ctx, site, period, workshop.AuditTool)
	require.NoError(t, err)
	assert.Len(t, audits, 1)

	audits, err = m.Audits(ctx, individual, period, workshop.AuditTool)
	require.NoError(t, err)
	assert.Empty(t, audits)
}

func TestMemory_OrdersRespectPeriodBounds(t *testing.T) {
	ctx := context.Background()
	m := New()
	period := generic.MustResolvePeriod(3, 2025, wib)

	require.NoError(t, m.SaveOrder(ctx, workshop.OrderFact{ID: "in", SiteID: "a", CompletedAt: period.UTCEnd, MechanicIDs: []string{"e1"}}))
	require.NoError(t, m.SaveOrder(ctx, workshop.OrderFact{ID: "out", SiteID: "a", CompletedAt: period.UTCEnd.Add(time.Second), MechanicIDs: []string{"e1"}}))

	scope := workshop.Scope{Level: generic.ScopeIndividual, SubjectID: "e1", Attribution: workshop.AttributeMechanic, Members: []workshop.Employee{{ID: "e1"}}}
	orders, err := m.Orders(ctx, scope, period)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "in", orders[0].ID)
}

func TestMemory_Directory(t *testing.T) {
	ctx := context.Background()
	m := New()
	require.NoError(t, m.SaveEmployee(ctx, workshop.Employee{ID: "tl", SiteID: "a", Active: true}))
	require.NoError(t, m.SaveEmployee(ctx, workshop.Employee{ID: "m1", SiteID: "a", LeaderID: "tl", Active: true}))
	require.NoError(t, m.SaveEmployee(ctx, workshop.Employee{ID: "m2", SiteID: "b", LeaderID: "tl", Active: true}))

	reports, err := m.DirectReports(ctx, "tl")
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	staff, err := m.SiteEmployees(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	_, err = m.Employee(ctx, "nobody")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	_, err = m.AdvisorRecord(ctx, "m1")
	assert.ErrorIs(t, err, generic.ErrRoleRecordMissing)

	require.NoError(t, m.SaveAdvisorRecord(ctx, "m1", "adv-9"))
	id, err := m.AdvisorRecord(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "adv-9", id)

	require.NoError(t, m.Reset(ctx))
	_, err = m.Employee(ctx, "tl")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}
