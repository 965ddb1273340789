/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with a realistic
  workshop month so every role template has facts to score.

AVAILABLE SCENARIOS:
  busy-month:   One site, full staff, daily orders, attendance, samples,
                audits and training
  quiet-month:  Same staff, no operational facts (shows empty-data defaults)

STAFF (fixed IDs so scorecards can be requested right after loading):
  hs-1   head store          tl-1   team leader
  mech-1 mech-2 mech-3       mechanics reporting to tl-1
  lsa-1  lead service advisor
  sa-1   sa-2                service advisors reporting to lsa-1
  pm-1   partman             tk-1   toolkeeper
  sup-1  support             trn-1  trainee without a scored role

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "busy-month", "month": 3, "year": 2025}

NOTE:
  Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Scorecard handlers
  - workshop/facts.go: Store contract the seeder writes through
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const demoSite = "site-1"

var scenarios = []ScenarioDTO{
	{
		ID:          "busy-month",
		Name:        "Busy Month",
		Description: "Full workshop staff with daily orders, attendance, SOP samples, audits and training",
	},
	{
		ID:          "quiet-month",
		Name:        "Quiet Month",
		Description: "Staff directory only; every KPI falls back to its empty-data default",
	},
}

var demoStaff = []workshop.Employee{
	{ID: "hs-1", Name: "Hendra Saputra", Role: workshop.RoleHeadStore},
	{ID: "tl-1", Name: "Tono Wijaya", LeaderID: "hs-1", Role: workshop.RoleTeamLeader},
	{ID: "mech-1", Name: "Budi Santoso", LeaderID: "tl-1", Role: workshop.RoleMechanic},
	{ID: "mech-2", Name: "Agus Pratama", LeaderID: "tl-1", Role: workshop.RoleMechanic},
	{ID: "mech-3", Name: "Dedi Kurniawan", LeaderID: "tl-1", Role: workshop.RoleMechanic},
	{ID: "lsa-1", Name: "Sari Lestari", LeaderID: "hs-1", Role: workshop.RoleLeadServiceAdvisor},
	{ID: "sa-1", Name: "Rina Melati", LeaderID: "lsa-1", Role: workshop.RoleServiceAdvisor},
	{ID: "sa-2", Name: "Dewi Anggraini", LeaderID: "lsa-1", Role: workshop.RoleServiceAdvisor},
	{ID: "pm-1", Name: "Joko Susilo", LeaderID: "hs-1", Role: workshop.RolePartman},
	{ID: "tk-1", Name: "Eko Prasetyo", LeaderID: "hs-1", Role: workshop.RoleToolkeeper},
	{ID: "sup-1", Name: "Maya Putri", LeaderID: "hs-1", Role: workshop.RoleSupport},
	{ID: "trn-1", Name: "Fajar Nugroho", LeaderID: "tl-1"},
}

// advisor record IDs referenced by orders
var demoAdvisorRecords = map[string]string{
	"lsa-1": "adv-lsa-1",
	"sa-1":  "adv-sa-1",
	"sa-2":  "adv-sa-2",
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and seeds the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scenario request", err)
		return
	}

	var scenario *ScenarioDTO
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			scenario = &scenarios[i]
		}
	}
	if scenario == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	month, year := req.Month, req.Year
	if month == 0 || year == 0 {
		now := h.Engine.Clock().In(h.Engine.Location)
		month, year = int(now.Month()), now.Year()
	}
	period, err := generic.ResolvePeriod(month, year, h.Engine.Location)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	s := &seeder{ctx: r.Context(), store: h.Store, period: period}
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	s.staff()
	if scenario.ID == "busy-month" {
		s.busyMonth()
	}
	if s.err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", s.err)
		return
	}
	h.currentScenario = scenario.ID

	h.Logger.Info().Str("scenario", scenario.ID).Str("period", period.String()).Int("orders", s.orders).Msg("scenario loaded")

	ids := make([]string, len(demoStaff))
	for i, e := range demoStaff {
		ids[i] = e.ID
	}
	writeJSON(w, http.StatusOK, LoadScenarioResponse{
		Scenario:  *scenario,
		Period:    period.String(),
		Employees: ids,
		Orders:    s.orders,
	})
}

// =============================================================================
// SEEDER
// =============================================================================

// seeder writes facts through the store, keeping the first error.
type seeder struct {
	ctx    context.Context
	store  workshop.Store
	period generic.Period
	err    error
	orders int
}

func (s *seeder) do(fn func() error) {
	if s.err == nil {
		s.err = fn()
	}
}

func (s *seeder) staff() {
	for _, e := range demoStaff {
		e.SiteID, e.Active = demoSite, true
		s.do(func() error { return s.store.SaveEmployee(s.ctx, e) })
	}
	s.do(func() error {
		return s.store.SaveEmployee(s.ctx, workshop.Employee{
			ID: "mech-9", Name: "Rudi Hartono", SiteID: demoSite, LeaderID: "tl-1", Role: workshop.RoleMechanic,
		})
	})
	for emp, rec := range demoAdvisorRecords {
		s.do(func() error { return s.store.SaveAdvisorRecord(s.ctx, emp, rec) })
	}
}

// at returns day d of the period at hh:mm local time.
func (s *seeder) at(d, hh, mm int) time.Time {
	start := s.period.LocalStart
	return time.Date(start.Year(), start.Month(), d, hh, mm, 0, 0, start.Location())
}

func (s *seeder) busyMonth() {
	mechanics := []string{"mech-1", "mech-2", "mech-3"}
	advisors := []string{"adv-sa-1", "adv-sa-2", "adv-lsa-1"}
	jobs := []demoJob{
		{"Periodic service", 1.5, 1_250_000},
		{"Brake overhaul", 2, 2_400_000},
		{"Engine tune-up", 3, 3_600_000},
		{"AC service", 1, 950_000},
	}

	workday := 0
	for d := 1; d <= s.period.Days(); d++ {
		if s.at(d, 0, 0).Weekday() == time.Sunday {
			continue
		}
		workday++

		for i, e := range demoStaff {
			if e.Role == "" {
				continue
			}
			// every fifth workday one person in rotation arrives late
			late := workday%5 == 0 && i == workday%len(demoStaff)
			checkIn := s.at(d, 8, 0)
			if late {
				checkIn = s.at(d, 8, 25)
			}
			s.do(func() error {
				return s.store.SaveAttendance(s.ctx, workshop.AttendanceFact{
					ID: uuid.NewString(), EmployeeID: e.ID, CheckIn: checkIn, CheckOut: s.at(d, 17, 0), Late: late,
				})
			})
		}

		for n := 0; n < 3; n++ {
			s.order(d, workday, n, mechanics, advisors, jobs[(workday+n)%len(jobs)])
		}

		if workday%4 == 0 {
			for i, m := range mechanics {
				passed := (workday+i)%3 != 0
				s.sample(m, workshop.SourceLead, passed, s.at(d, 15, 0))
				s.sample(m, workshop.SourceKaizen, passed || i == 0, s.at(d, 16, 0))
			}
			for _, id := range []string{"hs-1", "tl-1", "lsa-1", "sa-1", "sa-2", "pm-1", "tk-1", "sup-1"} {
				s.sample(id, workshop.SourceKaizen, workday%8 != 0 || id != "sa-2", s.at(d, 16, 30))
			}
			s.sample("sup-1", workshop.SourceLead, true, s.at(d, 16, 45))
		}

		if s.at(d, 0, 0).Weekday() == time.Saturday {
			drift := int64(workday%3) * 90_000
			s.audit("pm-1", workshop.AuditInventory, 48_000_000, 48_000_000-drift, s.at(d, 16, 0))
			s.audit("tk-1", workshop.AuditTool, 12_500_000, 12_500_000-2*drift, s.at(d, 16, 30))
		}

		if workday == 10 {
			for i, e := range demoStaff {
				if e.Role == "" {
					continue
				}
				attended := i%4 != 3
				s.do(func() error {
					return s.store.SaveTraining(s.ctx, workshop.TrainingFact{
						ID: uuid.NewString(), ProgramID: "sop-refresh", EmployeeID: e.ID,
						ScheduledAt: s.at(d, 13, 0), Attended: attended,
					})
				})
			}
		}
	}
}

type demoJob struct {
	name  string
	hours float64
	price int64
}

func (s *seeder) order(d, workday, n int, mechanics, advisors []string, job demoJob) {
	lead := mechanics[(workday+n)%len(mechanics)]
	helper := mechanics[(workday+n+1)%len(mechanics)]
	advisor := advisors[(workday+n)%len(advisors)]

	arrive := s.at(d, 8+2*n, 10)
	receptionMinutes := 8 + (workday*7+n*5)%14
	serviceStart := arrive.Add(20 * time.Minute)
	// every third order overruns its flat rate by 30 minutes
	worked := time.Duration(job.hours * float64(time.Hour))
	if (workday+n)%3 == 0 {
		worked += 30 * time.Minute
	}
	serviceEnd := serviceStart.Add(worked)
	if serviceStart.Before(s.at(d, 12, 0)) && serviceEnd.After(s.at(d, 12, 0)) {
		serviceEnd = serviceEnd.Add(time.Hour)
	}

	o := workshop.OrderFact{
		ID:             uuid.NewString(),
		SiteID:         demoSite,
		CompletedAt:    serviceEnd.Add(15 * time.Minute),
		Revenue:        decimal.NewFromInt(job.price),
		MechanicIDs:    []string{lead},
		AdvisorIDs:     []string{advisor},
		ReceptionStart: arrive,
		ReceptionEnd:   arrive.Add(time.Duration(receptionMinutes) * time.Minute),
		ServiceStart:   serviceStart,
		ServiceEnd:     serviceEnd,
		Lines:          []workshop.ServiceLine{{Name: job.name, FlatRateHours: job.hours, WorkerIDs: []string{lead}}},
	}
	if job.hours >= 2 {
		o.Lines = append(o.Lines, workshop.ServiceLine{Name: "Road test", FlatRateHours: 0.5, WorkerIDs: []string{lead, helper}})
		o.PartRequested = serviceStart.Add(10 * time.Minute)
		o.PartReady = o.PartRequested.Add(time.Duration(20+(workday*11)%35) * time.Minute)
	}
	if (workday+n)%4 != 0 {
		rating := []float64{5, 4.8, 4.5, 5, 4}[(workday+n)%5]
		o.Rating = &rating
	}
	if (workday+n)%2 == 0 {
		o.RecommendationCount = 1
	}

	s.do(func() error { return s.store.SaveOrder(s.ctx, o) })
	s.orders++
}

func (s *seeder) sample(employeeID string, source workshop.SampleSource, passed bool, at time.Time) {
	s.do(func() error {
		return s.store.SaveSample(s.ctx, workshop.SampleFact{
			ID: uuid.NewString(), EmployeeID: employeeID, SiteID: demoSite, Source: source, Passed: passed, SampledAt: at,
		})
	})
}

func (s *seeder) audit(employeeID string, t workshop.AuditType, expected, actual int64, at time.Time) {
	s.do(func() error {
		return s.store.SaveAudit(s.ctx, workshop.AuditFact{
			ID: uuid.NewString(), EmployeeID: employeeID, SiteID: demoSite, Type: t, AuditedAt: at,
			ExpectedValue: decimal.NewFromInt(expected), ActualValue: decimal.NewFromInt(actual),
		})
	})
}
