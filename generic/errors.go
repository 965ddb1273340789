/*
errors.go - Centralized error types for the scoring engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Request errors  - Reject the whole scorecard (bad period, unknown subject)
  2. Provider errors - The fact source failed; surfaced, never retried here
  3. Metric errors   - Isolated per KPI; converted to actual=0 + narrative

USAGE:
  Callers branch on sentinels:

    if errors.Is(err, generic.ErrInvalidPeriod) {
        // 400
    }

  Structured errors carry the offending values and unwrap to the sentinel.

SEE ALSO:
  - period.go: Produces InvalidPeriodError
  - evaluate.go: Produces MetricCalculationError
  - workshop/bundle.go: Produces FactProviderError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when month/year fall outside the accepted range.
	// It is raised before any fact is fetched.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrEmployeeNotFound is returned when the scored subject does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRoleRecordMissing is returned when a role needs a linking record the
	// subject does not have (e.g. a service advisor without an advisor record).
	ErrRoleRecordMissing = errors.New("role record missing")

	// ErrFactProvider wraps any failure of the external fact source.
	ErrFactProvider = errors.New("fact provider error")

	// ErrMetricCalculation marks a single KPI whose calculator failed.
	ErrMetricCalculation = errors.New("metric calculation error")

	// ErrUnknownRole is returned for a role outside the enumerated set.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownMetric is returned when no calculator is registered for a metric type.
	ErrUnknownMetric = errors.New("unknown metric type")

	// ErrTemplateNotFound is returned when a role has no scorecard template.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplate is returned when a template fails validation.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrScopeMismatch is returned when a team or site scorecard is requested
	// for a role whose template is scored at another level.
	ErrScopeMismatch = errors.New("scope mismatch")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPeriodError reports the rejected month/year pair.
type InvalidPeriodError struct {
	Month int
	Year  int
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: month %d year %d (month 1-12, year %d-%d)",
		e.Month, e.Year, MinYear, MaxYear)
}

func (e *InvalidPeriodError) Unwrap() error {
	return ErrInvalidPeriod
}

// FactProviderError wraps a failed fact query with the query name and scope.
type FactProviderError struct {
	Query   string
	ScopeID string
	Err     error
}

func (e *FactProviderError) Error() string {
	return fmt.Sprintf("fact provider: %s for scope %s: %v", e.Query, e.ScopeID, e.Err)
}

// Is reports ErrFactProvider so callers need not know the concrete type.
func (e *FactProviderError) Is(target error) bool {
	return target == ErrFactProvider
}

func (e *FactProviderError) Unwrap() error {
	return e.Err
}

// MetricCalculationError describes a calculator failure for one KPI.
type MetricCalculationError struct {
	Metric   MetricType
	Sequence int
	Err      error
}

func (e *MetricCalculationError) Error() string {
	return fmt.Sprintf("metric %s (#%d): %v", e.Metric, e.Sequence, e.Err)
}

func (e *MetricCalculationError) Is(target error) bool {
	return target == ErrMetricCalculation
}

func (e *MetricCalculationError) Unwrap() error {
	return e.Err
}

// RoleRecordMissingError names the subject lacking its role-specific record.
type RoleRecordMissingError struct {
	EmployeeID string
	Role       Role
}

func (e *RoleRecordMissingError) Error() string {
	return fmt.Sprintf("employee %s has no %s record", e.EmployeeID, e.Role)
}

func (e *RoleRecordMissingError) Unwrap() error {
	return ErrRoleRecordMissing
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownRole) ||
		errors.Is(err, ErrInvalidTemplate) ||
		errors.Is(err, ErrScopeMismatch)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRoleRecordMissing) ||
		errors.Is(err, ErrTemplateNotFound)
}
