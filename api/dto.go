/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's scorecard model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Query: Query-string parameters, validated with go-playground/validator
  - *Request: Request body types from clients

DECIMALS:
  Weights, targets, actuals and scores are shopspring decimals and serialize
  as JSON strings ("87.5") so clients never see float rounding noise.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/template.go: TemplateJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/factory"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// =============================================================================
// QUERY TYPES
// =============================================================================

// PeriodQuery is the month/year pair every scorecard endpoint takes.
type PeriodQuery struct {
	Month int `validate:"required,gte=1,lte=12"`
	Year  int `validate:"required,gte=2000,lte=2100"`
}

// ScorecardQuery selects an employee scorecard. Role is optional.
type ScorecardQuery struct {
	PeriodQuery
	EmployeeID string `validate:"required,max=64"`
	Role       string `validate:"omitempty,max=64"`
}

// SiteScorecardQuery selects a site scorecard for the employee who owns it.
type SiteScorecardQuery struct {
	PeriodQuery
	SiteID     string `validate:"required,max=64"`
	EmployeeID string `validate:"required,max=64"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load. Month and
// Year default to the current business month.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
	Month      int    `json:"month,omitempty" validate:"omitempty,gte=1,lte=12"`
	Year       int    `json:"year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PeriodDTO represents a resolved scoring period.
type PeriodDTO struct {
	Label      string `json:"label"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Days       int    `json:"days"`
	LocalStart string `json:"local_start"`
	LocalEnd   string `json:"local_end"`
	UTCStart   string `json:"utc_start"`
	UTCEnd     string `json:"utc_end"`
}

// BreakdownDTO is one row behind an actual.
type BreakdownDTO struct {
	SubjectID string  `json:"subject_id"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	InRange   bool    `json:"in_range"`
}

// KpiResultDTO is one scorecard line.
type KpiResultDTO struct {
	Sequence       int             `json:"sequence"`
	Name           string          `json:"name"`
	Metric         string          `json:"metric"`
	Scope          string          `json:"scope"`
	Weight         decimal.Decimal `json:"weight"`
	Target         decimal.Decimal `json:"target"`
	IncludeInTotal bool            `json:"include_in_total"`
	Actual         decimal.Decimal `json:"actual"`
	WeightedScore  decimal.Decimal `json:"weighted_score"`
	Achievement    decimal.Decimal `json:"achievement"`
	Narrative      string          `json:"narrative"`
	Failed         bool            `json:"failed"`
	Breakdown      []BreakdownDTO  `json:"breakdown,omitempty"`
}

// SummaryDTO is the reduced total of a scorecard.
type SummaryDTO struct {
	TotalWeight decimal.Decimal `json:"total_weight"`
	TotalScore  decimal.Decimal `json:"total_score"`
	Target      decimal.Decimal `json:"target"`
	Status      string          `json:"status"`
}

// ScorecardDTO represents a computed scorecard.
type ScorecardDTO struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Role         string         `json:"role"`
	RoleLabel    string         `json:"role_label"`
	Scope        string         `json:"scope"`
	Period       PeriodDTO      `json:"period"`
	Results      []KpiResultDTO `json:"results"`
	Summary      SummaryDTO     `json:"summary"`
	GeneratedAt  string         `json:"generated_at"`
}

// SkippedMemberDTO is a direct report left out of a team report.
type SkippedMemberDTO struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
}

// TeamReportDTO is a leader's team card plus the members' own cards.
type TeamReportDTO struct {
	Leader  ScorecardDTO       `json:"leader"`
	Members []ScorecardDTO     `json:"members"`
	Skipped []SkippedMemberDTO `json:"skipped"`
}

// TemplateDTO wraps factory.TemplateJSON with the computed weight total.
type TemplateDTO struct {
	factory.TemplateJSON
	TotalWeight decimal.Decimal `json:"total_weight"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioResponse reports what a scenario seeded.
type LoadScenarioResponse struct {
	Scenario  ScenarioDTO `json:"scenario"`
	Period    string      `json:"period"`
	Employees []string    `json:"employees"`
	Orders    int         `json:"orders"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toPeriodDTO(p generic.Period) PeriodDTO {
	return PeriodDTO{
		Label:      p.String(),
		Month:      int(p.Month),
		Year:       p.Year,
		Days:       p.Days(),
		LocalStart: p.LocalStart.Format(time.RFC3339),
		LocalEnd:   p.LocalEnd.Format(time.RFC3339),
		UTCStart:   p.UTCStart.Format(time.RFC3339),
		UTCEnd:     p.UTCEnd.Format(time.RFC3339),
	}
}

func toScorecardDTO(c *generic.Scorecard) ScorecardDTO {
	dto := ScorecardDTO{
		ID:           c.ID,
		EmployeeID:   c.EmployeeID,
		EmployeeName: c.EmployeeName,
		Role:         string(c.Role),
		RoleLabel:    c.RoleLabel,
		Scope:        string(c.Scope),
		Period:       toPeriodDTO(c.Period),
		Results:      make([]KpiResultDTO, len(c.Results)),
		Summary: SummaryDTO{
			TotalWeight: c.Summary.TotalWeight,
			TotalScore:  c.Summary.TotalScore,
			Target:      c.Summary.Target,
			Status:      string(c.Summary.Status),
		},
		GeneratedAt: c.GeneratedAt.Format(time.RFC3339),
	}

	for i, r := range c.Results {
		scope := r.Definition.Scope
		if scope == "" {
			scope = c.Scope
		}
		res := KpiResultDTO{
			Sequence:       r.Definition.Sequence,
			Name:           r.Definition.Name,
			Metric:         string(r.Definition.Metric),
			Scope:          string(scope),
			Weight:         r.Definition.Weight,
			Target:         r.Definition.Target,
			IncludeInTotal: r.Definition.IncludeInTotal,
			Actual:         r.Actual,
			WeightedScore:  r.WeightedScore,
			Achievement:    r.Achievement,
			Narrative:      r.Narrative,
			Failed:         r.Failed,
		}
		for _, b := range r.Breakdown {
			res.Breakdown = append(res.Breakdown, BreakdownDTO(b))
		}
		dto.Results[i] = res
	}
	return dto
}

func toTeamReportDTO(r *workshop.TeamReport) TeamReportDTO {
	dto := TeamReportDTO{
		Leader:  toScorecardDTO(r.Leader),
		Members: make([]ScorecardDTO, len(r.Members)),
		Skipped: make([]SkippedMemberDTO, len(r.Skipped)),
	}
	for i, m := range r.Members {
		dto.Members[i] = toScorecardDTO(m)
	}
	for i, s := range r.Skipped {
		dto.Skipped[i] = SkippedMemberDTO(s)
	}
	return dto
}
