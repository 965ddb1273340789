/*
calculators.go - Workshop metric calculators

PURPOSE:
  One pure function per metric type. Each reads a FactBundle that is already
  scoped (individual, team or site) and returns an actual plus a narrative.
  The same function serves every role; scope comes from the bundle.

DEFAULTS WHEN DATA IS ABSENT:
  revenue                 0  (also when the target is 0)
  efficiencies            0
  customer_satisfaction   0
  recommendation_rate     0
  sop_compliance_*      100  (no negative evidence)
  discipline              0  (no attendance)
  inventory/tool audit    0  (no audit performed)
  training_participation 100 (no session scheduled)
  utilization             0  (no worked hours)
  flat_rate_distribution  0  (no individuals)

  Compliance and discipline default in opposite directions. Both are kept
  as-is pending a policy decision.

SEE ALSO:
  - aggregate.go: Flat-rate hours and distribution band
  - generic/rating.go: Rating formula
  - generic/registry.go: Dispatch table
*/
package workshop

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// Input is what every workshop calculator receives.
type Input struct {
	Definition generic.KpiDefinition
	Bundle     *FactBundle
	Location   *time.Location
	Break      generic.BreakWindow
	Thresholds Thresholds
}

// Calculators is the workshop dispatch table type.
type Calculators = generic.Registry[Input]

// NewCalculators returns a registry holding every workshop calculator.
func NewCalculators() *Calculators {
	r := generic.NewRegistry[Input]()
	r.Register(MetricRevenue, calcRevenue)
	r.Register(MetricFlatRateUtilization, calcFlatRateUtilization)
	r.Register(MetricProductiveUtilization, calcProductiveUtilization)
	r.Register(MetricFlatRateDistribution, calcFlatRateDistribution)
	r.Register(MetricReceptionEfficiency, calcReceptionEfficiency)
	r.Register(MetricServiceEfficiency, calcServiceEfficiency)
	r.Register(MetricPartWaitEfficiency, calcPartWaitEfficiency)
	r.Register(MetricTimeEfficiency, calcTimeEfficiency)
	r.Register(MetricCustomerSatisfaction, calcCustomerSatisfaction)
	r.Register(MetricRecommendationRate, calcRecommendationRate)
	r.Register(MetricSOPComplianceLead, compliance(SourceLead))
	r.Register(MetricSOPComplianceKaizen, compliance(SourceKaizen))
	r.Register(MetricDiscipline, calcDiscipline)
	r.Register(MetricInventoryAudit, audit(AuditInventory))
	r.Register(MetricToolAudit, audit(AuditTool))
	r.Register(MetricTrainingParticipation, calcTrainingParticipation)
	return r
}

var errNoBundle = errors.New("no fact bundle for scope")

func bundleOf(in Input) (*FactBundle, error) {
	if in.Bundle == nil {
		return nil, errNoBundle
	}
	return in.Bundle, nil
}

// =============================================================================
// PRODUCTIVITY
// =============================================================================

func calcRevenue(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	scope := b.Scope()

	revenue := decimal.Zero
	orders := b.Orders()
	for _, o := range orders {
		revenue = revenue.Add(AttributedRevenue(o, scope))
	}

	target := in.Definition.Params.RevenueTarget
	if in.Definition.Params.PerMember {
		target = target.Mul(decimal.NewFromInt(int64(scope.AttributedCount())))
	}
	if !target.IsPositive() {
		return generic.Measurement{
			Actual:    0,
			Narrative: fmt.Sprintf("Revenue %s from %d orders; no revenue target configured", money(revenue), len(orders)),
		}, nil
	}

	actual, _ := revenue.Mul(decimal.NewFromInt(100)).Div(target).Float64()
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("Revenue %s of target %s from %d orders (%.2f%%)", money(revenue), money(target), len(orders), generic.Round2(actual)),
	}, nil
}

// workedHours sums break-excluded attendance hours of members.
func workedHours(in Input, members map[string]bool) float64 {
	var total float64
	for _, a := range in.Bundle.Attendance() {
		if !members[a.EmployeeID] {
			continue
		}
		total += in.Break.WorkingHours(a.CheckIn, a.CheckOut, in.Location)
	}
	return total
}

func memberSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func calcFlatRateUtilization(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	ids := b.Scope().EmployeeIDs()
	hours := FlatRateHours(b.Orders(), ids)

	var billable float64
	for _, h := range hours {
		billable += h
	}
	worked := workedHours(in, memberSet(ids))
	if worked == 0 {
		return generic.Measurement{
			Actual:    0,
			Narrative: fmt.Sprintf("Billable %.2fh; no attendance hours recorded", billable),
		}, nil
	}
	actual := generic.Percent(billable, worked)
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("Billable %.2fh over %.2fh worked (%.2f%%)", billable, worked, generic.Round2(actual)),
	}, nil
}

// calcProductiveUtilization counts task time only while the worker was
// present: each service interval is intersected with the same worker's
// attendance before breaks are removed.
func calcProductiveUtilization(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	ids := b.Scope().EmployeeIDs()
	members := memberSet(ids)
	orders := b.Orders()

	var productive float64
	for _, a := range b.Attendance() {
		if !members[a.EmployeeID] {
			continue
		}
		presence := generic.Interval{Start: a.CheckIn, End: a.CheckOut}
		for _, o := range orders {
			if !workedBy(o, a.EmployeeID) {
				continue
			}
			task := generic.Interval{Start: o.ServiceStart, End: o.ServiceEnd}
			productive += in.Break.ProductiveHours(presence, task, in.Location)
		}
	}

	worked := workedHours(in, members)
	if worked == 0 {
		return generic.Measurement{
			Actual:    0,
			Narrative: "No attendance hours recorded",
		}, nil
	}
	actual := generic.Percent(productive, worked)
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("Productive %.2fh over %.2fh worked (%.2f%%)", productive, worked, generic.Round2(actual)),
	}, nil
}

// calcFlatRateDistribution scores how evenly billable hours are spread over
// a team or site: the share of individuals within the band around average.
func calcFlatRateDistribution(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	scope := b.Scope()
	if scope.Level == generic.ScopeIndividual {
		return generic.Measurement{}, fmt.Errorf("flat-rate distribution needs a team or site scope")
	}

	population := in.Definition.Params.Population
	if len(population) == 0 {
		population = []generic.Role{RoleMechanic}
	}
	allowed := make(map[generic.Role]bool, len(population))
	for _, r := range population {
		allowed[r] = true
	}

	var individuals []Employee
	for _, m := range scope.Members {
		if m.Active && allowed[m.Role] {
			individuals = append(individuals, m)
		}
	}
	if len(individuals) == 0 {
		return generic.Measurement{
			Actual:    0,
			Narrative: "No active individuals to compare",
		}, nil
	}

	ids := make([]string, len(individuals))
	for i, m := range individuals {
		ids[i] = m.ID
	}
	hours := FlatRateHours(b.Orders(), ids)

	subjects := make([]SubjectHours, len(individuals))
	for i, m := range individuals {
		subjects[i] = SubjectHours{SubjectID: m.ID, Name: m.Name, Hours: hours[m.ID]}
	}
	band := in.Thresholds.DistributionBand
	res := Distribution(subjects, band)
	if res.Average == 0 {
		return generic.Measurement{
			Actual:    0,
			Narrative: fmt.Sprintf("No billable hours for %d individuals", res.Count),
			Breakdown: res.Entries,
		}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d within ±%.0f%% of average %.2fh [%.2f-%.2f]:",
		res.InRange, res.Count, band*100, res.Average, res.Lower, res.Upper)
	for _, e := range res.Entries {
		mark := "out"
		if e.InRange {
			mark = "in"
		}
		fmt.Fprintf(&sb, " %s %.2fh (%s);", e.Label, e.Value, mark)
	}
	return generic.Measurement{
		Actual:    res.Actual(),
		Narrative: strings.TrimSuffix(sb.String(), ";"),
		Breakdown: res.Entries,
	}, nil
}

// =============================================================================
// TIME EFFICIENCY
// =============================================================================

// efficiency is count(on time) over count(measured) for one sub-metric.
type efficiency struct {
	label    string
	onTime   int
	measured int
}

func (e efficiency) actual() float64 {
	return generic.Percent(float64(e.onTime), float64(e.measured))
}

func (e efficiency) narrative() string {
	if e.measured == 0 {
		return fmt.Sprintf("No %s timings recorded", e.label)
	}
	return fmt.Sprintf("%s: %d of %d on time (%.2f%%)", e.label, e.onTime, e.measured, generic.Round2(e.actual()))
}

func receptionEfficiency(in Input) efficiency {
	e := efficiency{label: "reception"}
	for _, o := range in.Bundle.Orders() {
		iv := generic.Interval{Start: o.ReceptionStart, End: o.ReceptionEnd}
		if !iv.Valid() {
			continue
		}
		e.measured++
		if iv.Duration() <= in.Thresholds.Reception {
			e.onTime++
		}
	}
	return e
}

// serviceEfficiency compares break-excluded service hours with the order's
// flat-rate hours; orders without either are not measured.
func serviceEfficiency(in Input) efficiency {
	e := efficiency{label: "service"}
	for _, o := range in.Bundle.Orders() {
		iv := generic.Interval{Start: o.ServiceStart, End: o.ServiceEnd}
		planned := o.PlannedHours()
		if !iv.Valid() || planned <= 0 {
			continue
		}
		e.measured++
		if in.Break.WorkingHours(iv.Start, iv.End, in.Location) <= planned {
			e.onTime++
		}
	}
	return e
}

func partWaitEfficiency(in Input) efficiency {
	e := efficiency{label: "part wait"}
	for _, o := range in.Bundle.Orders() {
		iv := generic.Interval{Start: o.PartRequested, End: o.PartReady}
		if !iv.Valid() {
			continue
		}
		e.measured++
		if iv.Duration() <= in.Thresholds.PartWait {
			e.onTime++
		}
	}
	return e
}

func single(f func(Input) efficiency) generic.Calculator[Input] {
	return func(in Input) (generic.Measurement, error) {
		if _, err := bundleOf(in); err != nil {
			return generic.Measurement{}, err
		}
		e := f(in)
		return generic.Measurement{Actual: e.actual(), Narrative: e.narrative()}, nil
	}
}

var (
	calcReceptionEfficiency = single(receptionEfficiency)
	calcServiceEfficiency   = single(serviceEfficiency)
	calcPartWaitEfficiency  = single(partWaitEfficiency)
)

var componentEfficiency = map[generic.MetricType]func(Input) efficiency{
	MetricReceptionEfficiency: receptionEfficiency,
	MetricServiceEfficiency:   serviceEfficiency,
	MetricPartWaitEfficiency:  partWaitEfficiency,
}

// IsTimeComponent reports whether m can be combined by the time efficiency metric.
func IsTimeComponent(m generic.MetricType) bool {
	_, ok := componentEfficiency[m]
	return ok
}

// ComponentWeights splits 100 across n parts: 50/50 for two, 33/33/34 for
// three. The remainder always goes to the last part.
func ComponentWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	base := math.Floor(100 / float64(n))
	w := make([]float64, n)
	for i := range w {
		w[i] = base
	}
	w[n-1] = 100 - base*float64(n-1)
	return w
}

// calcTimeEfficiency combines the configured sub-efficiencies that have
// timings this period. Sub-metrics without data drop out of the weighting.
func calcTimeEfficiency(in Input) (generic.Measurement, error) {
	if _, err := bundleOf(in); err != nil {
		return generic.Measurement{}, err
	}
	components := in.Definition.Params.Components
	if len(components) == 0 {
		components = []generic.MetricType{MetricReceptionEfficiency, MetricServiceEfficiency, MetricPartWaitEfficiency}
	}

	var measured []efficiency
	var notes []string
	for _, c := range components {
		f, ok := componentEfficiency[c]
		if !ok {
			return generic.Measurement{}, fmt.Errorf("%w: %s is not a time-efficiency component", generic.ErrUnknownMetric, c)
		}
		e := f(in)
		if e.measured == 0 {
			notes = append(notes, e.narrative())
			continue
		}
		measured = append(measured, e)
	}
	if len(measured) == 0 {
		return generic.Measurement{Actual: 0, Narrative: strings.Join(notes, "; ")}, nil
	}

	weights := ComponentWeights(len(measured))
	var actual float64
	parts := make([]string, 0, len(measured)+len(notes))
	for i, e := range measured {
		actual += e.actual() * weights[i] / 100
		parts = append(parts, fmt.Sprintf("%s ×%.0f%%", e.narrative(), weights[i]))
	}
	parts = append(parts, notes...)
	return generic.Measurement{Actual: actual, Narrative: strings.Join(parts, "; ")}, nil
}

// =============================================================================
// CUSTOMER
// =============================================================================

func calcCustomerSatisfaction(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	var ratings []float64
	orders := b.Orders()
	for _, o := range orders {
		if o.Rating != nil {
			ratings = append(ratings, *o.Rating)
		}
	}
	avg, ok := generic.AverageRating(ratings)
	if !ok {
		return generic.Measurement{
			Actual:    0,
			Narrative: fmt.Sprintf("No customer ratings among %d orders", len(orders)),
		}, nil
	}
	score := generic.RatingScore(avg)
	actual, _ := score.Float64()
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("Average rating %s from %d rated orders scores %s", avg.Round(2).String(), len(ratings), score.String()),
	}, nil
}

func calcRecommendationRate(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	orders := b.Orders()
	if len(orders) == 0 {
		return generic.Measurement{Actual: 0, Narrative: "No completed orders"}, nil
	}
	with, total := 0, 0
	for _, o := range orders {
		total += o.RecommendationCount
		if o.RecommendationCount > 0 {
			with++
		}
	}
	actual := generic.Percent(float64(with), float64(len(orders)))
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("%d of %d orders carried recommendations (%d total)", with, len(orders), total),
	}, nil
}

// =============================================================================
// COMPLIANCE & DISCIPLINE
// =============================================================================

// compliance measures SOP samples of one source. No samples scores 100.
func compliance(source SampleSource) generic.Calculator[Input] {
	return func(in Input) (generic.Measurement, error) {
		b, err := bundleOf(in)
		if err != nil {
			return generic.Measurement{}, err
		}
		samples := b.Samples(source)
		if len(samples) == 0 {
			return generic.Measurement{
				Actual:    100,
				Narrative: fmt.Sprintf("No %s samples this period; treated as compliant", source),
			}, nil
		}
		passed := 0
		for _, s := range samples {
			if s.Passed {
				passed++
			}
		}
		actual := generic.Percent(float64(passed), float64(len(samples)))
		return generic.Measurement{
			Actual:    actual,
			Narrative: fmt.Sprintf("%d of %d %s samples passed", passed, len(samples), source),
		}, nil
	}
}

// calcDiscipline is the on-time share of attendance. No attendance scores 0.
func calcDiscipline(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	records := b.Attendance()
	if len(records) == 0 {
		return generic.Measurement{Actual: 0, Narrative: "No attendance records"}, nil
	}
	onTime := 0
	for _, a := range records {
		if !a.Late {
			onTime++
		}
	}
	actual := generic.Percent(float64(onTime), float64(len(records)))
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("%d of %d check-ins on time, %d late", onTime, len(records), len(records)-onTime),
	}, nil
}

// =============================================================================
// AUDITS
// =============================================================================

func audit(t AuditType) generic.Calculator[Input] {
	return func(in Input) (generic.Measurement, error) {
		b, err := bundleOf(in)
		if err != nil {
			return generic.Measurement{}, err
		}
		audits := b.Audits(t)
		if len(audits) == 0 {
			return generic.Measurement{Actual: 0, Narrative: fmt.Sprintf("No %s audits performed", t)}, nil
		}
		tolerance := decimal.NewFromFloat(in.Thresholds.AuditTolerance)
		clean := 0
		worst := decimal.Zero
		for _, a := range audits {
			d := a.Delta().Abs()
			if d.LessThan(tolerance) {
				clean++
			}
			if d.GreaterThan(worst) {
				worst = d
			}
		}
		actual := generic.Percent(float64(clean), float64(len(audits)))
		return generic.Measurement{
			Actual: actual,
			Narrative: fmt.Sprintf("%d of %d %s audits within tolerance %s; largest discrepancy %s",
				clean, len(audits), t, money(tolerance), money(worst)),
		}, nil
	}
}

// =============================================================================
// TRAINING
// =============================================================================

func calcTrainingParticipation(in Input) (generic.Measurement, error) {
	b, err := bundleOf(in)
	if err != nil {
		return generic.Measurement{}, err
	}
	sessions := b.Training()
	if len(sessions) == 0 {
		return generic.Measurement{Actual: 100, Narrative: "No training sessions scheduled"}, nil
	}
	attended := 0
	for _, s := range sessions {
		if s.Attended {
			attended++
		}
	}
	actual := generic.Percent(float64(attended), float64(len(sessions)))
	return generic.Measurement{
		Actual:    actual,
		Narrative: fmt.Sprintf("Attended %d of %d training sessions", attended, len(sessions)),
	}, nil
}

// money formats an amount with thousands separators, e.g. 40,000,000.
func money(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
