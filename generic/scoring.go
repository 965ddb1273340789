package generic

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WeightedScore is actual × weight ÷ 100. Actual is already a percentage-like
// value so it is never divided by the target.
func WeightedScore(actual, weight decimal.Decimal) decimal.Decimal {
	return actual.Mul(weight).Div(hundred)
}

// Percent returns 100 × num / den, or 0 when den is 0.
func Percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return 100 * num / den
}

// Round2 rounds to two decimals, the precision actuals are reported in.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// NewKpiResult turns a measurement into a result for d.
func NewKpiResult(d KpiDefinition, m Measurement) KpiResult {
	actual := decimal.NewFromFloat(Round2(m.Actual))
	score := WeightedScore(actual, d.Weight)
	return KpiResult{
		Definition:    d.clone(),
		Actual:        actual,
		Narrative:     m.Narrative,
		Breakdown:     append([]BreakdownEntry(nil), m.Breakdown...),
		WeightedScore: score,
		Achievement:   score,
	}
}

// FailedResult is the isolated-failure result: actual 0 plus the reason.
func FailedResult(d KpiDefinition, err error) KpiResult {
	r := NewKpiResult(d, Measurement{
		Actual:    0,
		Narrative: fmt.Sprintf("Calculation failed: %v", err),
	})
	r.Failed = true
	return r
}

// =============================================================================
// SUMMARY REDUCER
// =============================================================================

// Summarize reduces results into totals over IncludeInTotal definitions only.
//
// Target is the weight-averaged target while TotalScore is a plain sum of
// weighted scores; Status compares the two as they are.
func Summarize(results []KpiResult) Summary {
	totalWeight := decimal.Zero
	totalScore := decimal.Zero
	weightedTarget := decimal.Zero

	for _, r := range results {
		if !r.Definition.IncludeInTotal {
			continue
		}
		totalWeight = totalWeight.Add(r.Definition.Weight)
		totalScore = totalScore.Add(r.WeightedScore)
		weightedTarget = weightedTarget.Add(r.Definition.Target.Mul(r.Definition.Weight))
	}

	target := decimal.Zero
	if !totalWeight.IsZero() {
		target = weightedTarget.Div(totalWeight)
	}

	status := StatusBelowTarget
	if totalScore.GreaterThanOrEqual(target) {
		status = StatusAchieved
	}

	return Summary{
		TotalWeight: totalWeight,
		TotalScore:  totalScore,
		Target:      target,
		Status:      status,
	}
}
