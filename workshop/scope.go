package workshop

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// =============================================================================
// SCOPE - Whose facts feed a KPI
// =============================================================================

// Scope is the set of employees (one, a team, or a site) whose facts feed a
// scorecard line. Members always includes the subject.
type Scope struct {
	Level       generic.ScopeLevel
	SubjectID   string
	SiteID      string
	Attribution Attribution
	Members     []Employee
	AdvisorIDs  []string
}

// Key identifies the scope for request-level memoization.
func (s Scope) Key() string {
	return string(s.Level) + ":" + string(s.Attribution) + ":" + s.SubjectID
}

// EmployeeIDs lists member IDs in member order.
func (s Scope) EmployeeIDs() []string {
	ids := make([]string, len(s.Members))
	for i, m := range s.Members {
		ids[i] = m.ID
	}
	return ids
}

func (s Scope) HasEmployee(id string) bool {
	for _, m := range s.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (s Scope) HasAdvisor(id string) bool {
	for _, a := range s.AdvisorIDs {
		if a == id {
			return true
		}
	}
	return false
}

// MatchesOrder applies the scope's attribution rule to an order.
func (s Scope) MatchesOrder(o OrderFact) bool {
	switch s.Attribution {
	case AttributeAdvisor:
		for _, id := range o.AdvisorIDs {
			if s.HasAdvisor(id) {
				return true
			}
		}
		return false
	case AttributeSite:
		return o.SiteID == s.SiteID
	default:
		for _, id := range o.Workers() {
			if s.HasEmployee(id) {
				return true
			}
		}
		return false
	}
}

// Covers reports whether a per-employee fact belongs to the scope. A site
// scope takes every fact recorded at its site, including facts of staff no
// longer active.
func (s Scope) Covers(employeeID, siteID string) bool {
	if s.Level == generic.ScopeSite && siteID != "" {
		return siteID == s.SiteID
	}
	return s.HasEmployee(employeeID)
}

// AttributedCount is the head count revenue targets scale with.
func (s Scope) AttributedCount() int {
	if s.Attribution == AttributeAdvisor {
		return len(s.AdvisorIDs)
	}
	return len(s.Members)
}

func (s Scope) String() string {
	return fmt.Sprintf("%s[%s] %s (%d members)", s.Level, s.Attribution, s.SubjectID, len(s.Members))
}

// =============================================================================
// SCOPE RESOLUTION - Hierarchy walk
// =============================================================================

// ResolveScope builds the scope of subject at level for role.
//
//   - individual: the subject alone
//   - team: the subject plus active direct reports
//   - site: every active employee of the subject's site
//
// Advisor-attributed scopes need advisor records: a subject without one is
// RoleRecordMissing, a team member without one is skipped and logged.
func ResolveScope(ctx context.Context, dir Directory, subject Employee, role generic.Role, level generic.ScopeLevel, logger zerolog.Logger) (Scope, error) {
	info, ok := LookupRole(role)
	if !ok {
		return Scope{}, fmt.Errorf("%w: %s", generic.ErrUnknownRole, role)
	}

	scope := Scope{
		Level:       level,
		SubjectID:   subject.ID,
		SiteID:      subject.SiteID,
		Attribution: info.Attribution,
		Members:     []Employee{subject},
	}

	switch level {
	case generic.ScopeIndividual:
	case generic.ScopeTeam:
		reports, err := dir.DirectReports(ctx, subject.ID)
		if err != nil {
			return Scope{}, &generic.FactProviderError{Query: "direct_reports", ScopeID: scope.Key(), Err: err}
		}
		scope.Members = appendActive(scope.Members, reports)
	case generic.ScopeSite:
		staff, err := dir.SiteEmployees(ctx, subject.SiteID)
		if err != nil {
			return Scope{}, &generic.FactProviderError{Query: "site_employees", ScopeID: scope.Key(), Err: err}
		}
		scope.Members = appendActive(scope.Members, staff)
	default:
		return Scope{}, fmt.Errorf("%w: unknown scope level %q", generic.ErrInvalidTemplate, level)
	}

	if info.Attribution == AttributeAdvisor {
		ids, err := advisorRecords(ctx, dir, scope.Members, subject, role, logger)
		if err != nil {
			return Scope{}, err
		}
		scope.AdvisorIDs = ids
	}
	return scope, nil
}

// appendActive adds active employees not already present.
func appendActive(members []Employee, more []Employee) []Employee {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		seen[m.ID] = true
	}
	for _, e := range more {
		if !e.Active || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		members = append(members, e)
	}
	return members
}

func advisorRecords(ctx context.Context, dir Directory, members []Employee, subject Employee, role generic.Role, logger zerolog.Logger) ([]string, error) {
	var ids []string
	for _, m := range members {
		id, err := dir.AdvisorRecord(ctx, m.ID)
		switch {
		case err == nil && id != "":
			ids = append(ids, id)
		case m.ID == subject.ID && (err == nil || errors.Is(err, generic.ErrRoleRecordMissing)):
			return nil, &generic.RoleRecordMissingError{EmployeeID: subject.ID, Role: role}
		case err == nil || errors.Is(err, generic.ErrRoleRecordMissing):
			logger.Warn().
				Str("employee_id", m.ID).
				Str("subject_id", subject.ID).
				Msg("team member has no advisor record; excluded from advisor facts")
		default:
			return nil, &generic.FactProviderError{Query: "advisor_record", ScopeID: m.ID, Err: err}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
