package workshop

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// =============================================================================
// FLAT-RATE HOURS
// =============================================================================

// FlatRateHours accumulates billable hours per worker. Each service line's
// flat-rate hours are split evenly between its workers; a line without
// workers falls back to the order's assigned mechanics. Only workers in
// subjects are returned, and every subject gets an entry (possibly zero).
func FlatRateHours(orders []OrderFact, subjects []string) map[string]float64 {
	hours := make(map[string]float64, len(subjects))
	wanted := make(map[string]bool, len(subjects))
	for _, id := range subjects {
		hours[id] = 0
		wanted[id] = true
	}

	for _, o := range orders {
		for _, line := range o.Lines {
			workers := line.WorkerIDs
			if len(workers) == 0 {
				workers = o.MechanicIDs
			}
			if len(workers) == 0 || line.FlatRateHours <= 0 {
				continue
			}
			share := line.FlatRateHours / float64(len(workers))
			for _, w := range workers {
				if wanted[w] {
					hours[w] += share
				}
			}
		}
	}
	return hours
}

// =============================================================================
// DISTRIBUTION BAND
// =============================================================================

// SubjectHours is one individual's accumulated billable hours.
type SubjectHours struct {
	SubjectID string
	Name      string
	Hours     float64
}

// DistributionResult classifies individuals against the group average.
type DistributionResult struct {
	Average  float64
	Lower    float64
	Upper    float64
	InRange  int
	Count    int
	Entries  []generic.BreakdownEntry
}

// Actual is 100 × in-range / individuals.
func (d DistributionResult) Actual() float64 {
	return generic.Percent(float64(d.InRange), float64(d.Count))
}

// Distribution marks each individual in range when their hours lie within
// ±band of the group average (bounds inclusive).
func Distribution(subjects []SubjectHours, band float64) DistributionResult {
	res := DistributionResult{Count: len(subjects)}
	if len(subjects) == 0 {
		return res
	}

	var total float64
	for _, s := range subjects {
		total += s.Hours
	}
	res.Average = total / float64(len(subjects))
	res.Lower = res.Average * (1 - band)
	res.Upper = res.Average * (1 + band)

	for _, s := range subjects {
		in := res.Average > 0 && s.Hours >= res.Lower && s.Hours <= res.Upper
		if in {
			res.InRange++
		}
		label := s.Name
		if label == "" {
			label = s.SubjectID
		}
		res.Entries = append(res.Entries, generic.BreakdownEntry{
			SubjectID: s.SubjectID,
			Label:     label,
			Value:     generic.Round2(s.Hours),
			InRange:   in,
		})
	}
	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Label < res.Entries[j].Label
	})
	return res
}

// =============================================================================
// ATTRIBUTION HELPERS
// =============================================================================

// AttributedRevenue is the part of an order's revenue credited to scope.
// Mechanic and advisor scopes get the share of co-assigned people inside the
// scope; a site gets the whole order.
func AttributedRevenue(o OrderFact, scope Scope) decimal.Decimal {
	var people []string
	var in func(string) bool
	switch scope.Attribution {
	case AttributeSite:
		if o.SiteID == scope.SiteID {
			return o.Revenue
		}
		return decimal.Zero
	case AttributeAdvisor:
		people, in = o.AdvisorIDs, scope.HasAdvisor
	default:
		people, in = o.Workers(), scope.HasEmployee
	}
	if len(people) == 0 {
		return decimal.Zero
	}
	matched := 0
	for _, p := range people {
		if in(p) {
			matched++
		}
	}
	if matched == 0 {
		return decimal.Zero
	}
	return o.Revenue.Mul(decimal.NewFromInt(int64(matched))).Div(decimal.NewFromInt(int64(len(people))))
}

// workedBy reports whether employee worked on the order.
func workedBy(o OrderFact, employeeID string) bool {
	for _, w := range o.Workers() {
		if w == employeeID {
			return true
		}
	}
	return false
}
