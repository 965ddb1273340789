/*
handlers.go - HTTP API handlers for the KPI scoring engine

PURPOSE:
  Exposes scorecard computation via REST API. Handles HTTP request/response,
  query validation and JSON serialization, and delegates to workshop.Engine.

ENDPOINTS:
  Scorecards:
    GET  /api/scorecards/{employeeID}?month&year&role        Own scorecard
    GET  /api/scorecards/{employeeID}/team?month&year&role   Team scorecard
    GET  /api/sites/{siteID}/scorecard?employee&month&year   Site scorecard
    GET  /api/teams/{leaderID}/report?month&year&role        Leader + members

  Reference:
    GET  /api/templates              Active role templates
    GET  /api/templates/{role}       One role template
    GET  /api/periods/{year}/{month} Resolved period bounds

  Scenarios:
    GET  /api/scenarios              List demo scenarios
    POST /api/scenarios/load         Reset the store and seed a scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid period, unknown role, invalid template, scope mismatch
  - 404: Employee, role record or template not found
  - 502: Fact provider failure
  - 504: Request deadline exceeded
  - 500: Anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/teddinata/odoo-pitcar-sub000/factory"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     workshop.Store
	Engine    *workshop.Engine
	Templates *factory.TemplateFactory
	Validator *validator.Validate
	Logger    zerolog.Logger

	// Serializes scenario loads; a load resets the whole store.
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a handler around an engine reading from store.
func NewHandler(store workshop.Store, engine *workshop.Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:     store,
		Engine:    engine,
		Templates: factory.NewTemplateFactory(),
		Validator: validator.New(),
		Logger:    logger,
	}
}

// =============================================================================
// SCORECARD HANDLERS
// =============================================================================

// GetScorecard returns an employee's scorecard at the template's own scope.
func (h *Handler) GetScorecard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.scorecardQuery(w, r)
	if !ok {
		return
	}
	card, err := h.Engine.ComputeScorecard(r.Context(), q.request())
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScorecardDTO(card))
}

// GetTeamScorecard returns a team-scoped scorecard for a leader.
func (h *Handler) GetTeamScorecard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.scorecardQuery(w, r)
	if !ok {
		return
	}
	card, err := h.Engine.ComputeTeamScorecard(r.Context(), q.request())
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScorecardDTO(card))
}

// GetSiteScorecard returns a site-scoped scorecard.
func (h *Handler) GetSiteScorecard(w http.ResponseWriter, r *http.Request) {
	period, ok := h.periodQuery(w, r)
	if !ok {
		return
	}
	q := SiteScorecardQuery{
		PeriodQuery: period,
		SiteID:      chi.URLParam(r, "siteID"),
		EmployeeID:  r.URL.Query().Get("employee"),
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid site scorecard query", err)
		return
	}

	card, err := h.Engine.ComputeSiteScorecard(r.Context(), q.SiteID, workshop.Request{
		EmployeeID: q.EmployeeID,
		Month:      q.Month,
		Year:       q.Year,
	})
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScorecardDTO(card))
}

// GetTeamReport returns a leader's team card and each direct report's card.
func (h *Handler) GetTeamReport(w http.ResponseWriter, r *http.Request) {
	period, ok := h.periodQuery(w, r)
	if !ok {
		return
	}
	q := ScorecardQuery{
		PeriodQuery: period,
		EmployeeID:  chi.URLParam(r, "leaderID"),
		Role:        r.URL.Query().Get("role"),
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team report query", err)
		return
	}

	report, err := h.Engine.ComputeTeamReport(r.Context(), q.request())
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamReportDTO(report))
}

func (q ScorecardQuery) request() workshop.Request {
	return workshop.Request{
		EmployeeID: q.EmployeeID,
		Role:       generic.Role(q.Role),
		Month:      q.Month,
		Year:       q.Year,
	}
}

func (h *Handler) scorecardQuery(w http.ResponseWriter, r *http.Request) (ScorecardQuery, bool) {
	period, ok := h.periodQuery(w, r)
	if !ok {
		return ScorecardQuery{}, false
	}
	q := ScorecardQuery{
		PeriodQuery: period,
		EmployeeID:  chi.URLParam(r, "employeeID"),
		Role:        r.URL.Query().Get("role"),
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scorecard query", err)
		return ScorecardQuery{}, false
	}
	return q, true
}

// periodQuery reads month and year from the query string. Range checks are
// left to the validator on the enclosing query.
func (h *Handler) periodQuery(w http.ResponseWriter, r *http.Request) (PeriodQuery, bool) {
	month, err := intParam(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be an integer", err)
		return PeriodQuery{}, false
	}
	year, err := intParam(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer", err)
		return PeriodQuery{}, false
	}
	return PeriodQuery{Month: month, Year: year}, true
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// =============================================================================
// REFERENCE HANDLERS
// =============================================================================

// ListTemplates returns every active role template.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	all := h.Engine.Templates.All()
	dtos := make([]TemplateDTO, len(all))
	for i, t := range all {
		dtos[i] = TemplateDTO{TemplateJSON: h.Templates.ToJSON(t), TotalWeight: t.TotalWeight()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTemplate returns the template of one role.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	role, err := workshop.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	t, err := h.Engine.Templates.Get(role)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateDTO{TemplateJSON: h.Templates.ToJSON(t), TotalWeight: t.TotalWeight()})
}

// GetPeriod resolves a month in the business timezone.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be an integer", err)
		return
	}
	period, err := generic.ResolvePeriod(month, year, h.Engine.Location)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine errors to HTTP statuses.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	writeError(w, status, http.StatusText(status), err)
}

func statusFor(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrFactProvider):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
