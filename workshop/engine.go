/*
engine.go - Workshop scorecard engine

PURPOSE:
  Entry point for scorecard computation. Ties together the period resolver,
  the template registry, scope resolution, the per-request fact session and
  the calculator registry, then hands the results to the generic reducer.

REQUEST FLOW:
  1. Resolve the period (InvalidPeriod)
  2. Look up the role template (UnknownRole / TemplateNotFound)
  3. Load the employee (EmployeeNotFound)
  4. Resolve one scope per distinct scope level used by the template
  5. Load one fact bundle per scope (FactProviderError aborts)
  6. Evaluate every definition in parallel; failures are isolated
  7. Summarize

  Steps 1-5 abort the request. Step 6 never does.

SEE ALSO:
  - bundle.go: Session memo shared by a request
  - generic/evaluate.go: Parallel, isolated evaluation
  - generic/scoring.go: Summary reducer
*/
package workshop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

var hundredWeight = decimal.NewFromInt(100)

// Engine computes scorecards. It holds no per-request state and is safe for
// concurrent use once configured.
type Engine struct {
	Source      Source
	Templates   *TemplateRegistry
	Calculators *Calculators
	Logger      zerolog.Logger

	Location    *time.Location
	Break       generic.BreakWindow
	Thresholds  Thresholds
	Parallelism int

	Clock func() time.Time
	NewID func() string
}

// NewEngine returns an engine with built-in templates, every workshop
// calculator and default business settings.
func NewEngine(source Source, logger zerolog.Logger) *Engine {
	return &Engine{
		Source:      source,
		Templates:   NewTemplateRegistry(),
		Calculators: NewCalculators(),
		Logger:      logger,
		Location:    generic.BusinessLocation(""),
		Break:       generic.DefaultBreak,
		Thresholds:  DefaultThresholds,
		Parallelism: 4,
		Clock:       time.Now,
		NewID:       uuid.NewString,
	}
}

// Request identifies one scorecard computation. An empty Role uses the
// employee's directory role.
type Request struct {
	EmployeeID string
	Role       generic.Role
	Month      int
	Year       int
}

// ComputeScorecard computes the scorecard of an employee at the scope level
// of the role's template.
func (e *Engine) ComputeScorecard(ctx context.Context, req Request) (*generic.Scorecard, error) {
	return e.compute(ctx, req, "", "", NewSession(e.Source, e.Logger))
}

// ComputeTeamScorecard computes a team-scoped scorecard. The role's template
// must be team-scoped.
func (e *Engine) ComputeTeamScorecard(ctx context.Context, req Request) (*generic.Scorecard, error) {
	return e.compute(ctx, req, generic.ScopeTeam, "", NewSession(e.Source, e.Logger))
}

// ComputeSiteScorecard computes a site-scoped scorecard for an employee of
// siteID. The role's template must be site-scoped.
func (e *Engine) ComputeSiteScorecard(ctx context.Context, siteID string, req Request) (*generic.Scorecard, error) {
	return e.compute(ctx, req, generic.ScopeSite, siteID, NewSession(e.Source, e.Logger))
}

// =============================================================================
// TEAM REPORT
// =============================================================================

// SkippedMember is a direct report without a computable scorecard.
type SkippedMember struct {
	EmployeeID string
	Name       string
	Reason     string
}

// TeamReport is a leader's team scorecard plus one scorecard per direct report.
type TeamReport struct {
	Leader  *generic.Scorecard
	Members []*generic.Scorecard
	Skipped []SkippedMember
}

// ComputeTeamReport computes the leader's team card and every active direct
// report's own card, sharing one fact session. Reports without a scorable
// role or role record are listed in Skipped; provider failures abort.
func (e *Engine) ComputeTeamReport(ctx context.Context, req Request) (*TeamReport, error) {
	session := NewSession(e.Source, e.Logger)
	leader, err := e.compute(ctx, req, generic.ScopeTeam, "", session)
	if err != nil {
		return nil, err
	}

	reports, err := e.Source.DirectReports(ctx, req.EmployeeID)
	if err != nil {
		return nil, &generic.FactProviderError{Query: "direct_reports", ScopeID: req.EmployeeID, Err: err}
	}

	report := &TeamReport{Leader: leader}
	for _, m := range reports {
		if !m.Active {
			continue
		}
		if m.Role == "" {
			report.Skipped = append(report.Skipped, SkippedMember{EmployeeID: m.ID, Name: m.Name, Reason: "no scored role"})
			continue
		}
		card, err := e.compute(ctx, Request{EmployeeID: m.ID, Role: m.Role, Month: req.Month, Year: req.Year}, "", "", session)
		switch {
		case err == nil:
			report.Members = append(report.Members, card)
		case generic.IsNotFound(err) || generic.IsClientError(err):
			e.Logger.Warn().Err(err).Str("leader_id", req.EmployeeID).Str("employee_id", m.ID).Msg("team member skipped")
			report.Skipped = append(report.Skipped, SkippedMember{EmployeeID: m.ID, Name: m.Name, Reason: err.Error()})
		default:
			return nil, err
		}
	}
	e.Logger.Debug().Str("leader_id", req.EmployeeID).Int("bundles", session.Loaded()).Msg("team report computed")
	return report, nil
}

// =============================================================================
// COMPUTATION
// =============================================================================

func (e *Engine) compute(ctx context.Context, req Request, level generic.ScopeLevel, siteID string, session *Session) (*generic.Scorecard, error) {
	period, err := generic.ResolvePeriod(req.Month, req.Year, e.Location)
	if err != nil {
		return nil, err
	}

	var emp *Employee
	role := req.Role
	if role == "" {
		loaded, err := e.employee(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
		emp, role = &loaded, loaded.Role
	}
	if _, ok := LookupRole(role); !ok {
		return nil, fmt.Errorf("%w: %q", generic.ErrUnknownRole, role)
	}
	tmpl, err := e.Templates.Get(role)
	if err != nil {
		return nil, err
	}
	if level != "" && tmpl.Scope != level {
		return nil, fmt.Errorf("%w: %s template is %s-scoped, not %s", generic.ErrScopeMismatch, role, tmpl.Scope, level)
	}
	if w := tmpl.TotalWeight(); !w.Equal(hundredWeight) {
		e.Logger.Warn().Str("role", string(role)).Str("total_weight", w.String()).Msg("template weights do not sum to 100")
	}

	if emp == nil {
		loaded, err := e.employee(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
		emp = &loaded
	}
	if siteID != "" && emp.SiteID != siteID {
		return nil, fmt.Errorf("%w: employee %s belongs to site %s, not %s", generic.ErrScopeMismatch, emp.ID, emp.SiteID, siteID)
	}

	defs := tmpl.Definitions()
	bundles := make(map[generic.ScopeLevel]*FactBundle)
	for _, d := range defs {
		lvl := tmpl.ScopeFor(d)
		if _, ok := bundles[lvl]; ok {
			continue
		}
		scope, err := ResolveScope(ctx, e.Source, *emp, role, lvl, e.Logger)
		if err != nil {
			return nil, err
		}
		bundle, err := session.Bundle(ctx, scope, period)
		if err != nil {
			return nil, err
		}
		bundles[lvl] = bundle
	}

	measure := func(_ context.Context, d generic.KpiDefinition) (generic.Measurement, error) {
		calc, err := e.Calculators.MustLookup(d.Metric)
		if err != nil {
			return generic.Measurement{}, err
		}
		return calc(Input{
			Definition: d,
			Bundle:     bundles[tmpl.ScopeFor(d)],
			Location:   e.Location,
			Break:      e.Break,
			Thresholds: e.Thresholds,
		})
	}
	onFailure := func(d generic.KpiDefinition, err error) {
		e.Logger.Warn().
			Err(err).
			Str("employee_id", emp.ID).
			Str("metric", string(d.Metric)).
			Int("sequence", d.Sequence).
			Msg("metric calculation failed")
	}

	results, err := generic.Evaluate(ctx, defs, e.Parallelism, measure, onFailure)
	if err != nil {
		return nil, err
	}

	card := &generic.Scorecard{
		ID:           e.NewID(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Role:         role,
		RoleLabel:    tmpl.Label,
		Scope:        tmpl.Scope,
		Period:       period,
		Results:      results,
		Summary:      generic.Summarize(results),
		GeneratedAt:  e.Clock().UTC(),
	}
	e.Logger.Info().
		Str("scorecard_id", card.ID).
		Str("employee_id", emp.ID).
		Str("role", string(role)).
		Str("period", period.String()).
		Str("total_score", card.Summary.TotalScore.StringFixed(2)).
		Str("status", string(card.Summary.Status)).
		Msg("scorecard computed")
	return card, nil
}

func (e *Engine) employee(ctx context.Context, id string) (Employee, error) {
	emp, err := e.Source.Employee(ctx, id)
	if err == nil {
		return emp, nil
	}
	if errors.Is(err, generic.ErrEmployeeNotFound) {
		return Employee{}, err
	}
	return Employee{}, &generic.FactProviderError{Query: "employee", ScopeID: id, Err: err}
}
