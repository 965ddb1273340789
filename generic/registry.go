/*
registry.go - Metric type to calculator dispatch

PURPOSE:
  One table maps each MetricType to the function that measures it. Every
  role template shares the same table; scope (individual/team/site) is an
  input to the calculator, not a reason to duplicate it.

HOW IT WORKS:
  1. Domain packages define their input type and calculators
  2. They register calculators on a Registry built at startup
  3. The engine looks up the calculator for each KPI definition

WHY A TYPE PARAMETER:
  - generic stays domain-agnostic (it never sees fact bundles)
  - Calculators keep a concrete, type-checked input

SEE ALSO:
  - evaluate.go: Runs the looked-up calculators
  - workshop/calculators.go: The workshop calculator set
*/
package generic

import (
	"fmt"
	"sort"
	"sync"
)

// Calculator measures one metric for an input.
type Calculator[In any] func(in In) (Measurement, error)

// Registry maps metric types to calculators.
type Registry[In any] struct {
	mu          sync.RWMutex
	calculators map[MetricType]Calculator[In]
}

func NewRegistry[In any]() *Registry[In] {
	return &Registry[In]{calculators: make(map[MetricType]Calculator[In])}
}

// Register adds or replaces the calculator for metric.
func (r *Registry[In]) Register(metric MetricType, calc Calculator[In]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculators[metric] = calc
}

// Lookup returns the calculator for metric, or nil.
func (r *Registry[In]) Lookup(metric MetricType) Calculator[In] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calculators[metric]
}

// MustLookup returns the calculator or an ErrUnknownMetric error.
func (r *Registry[In]) MustLookup(metric MetricType) (Calculator[In], error) {
	calc := r.Lookup(metric)
	if calc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	return calc, nil
}

// Has reports whether metric has a calculator.
func (r *Registry[In]) Has(metric MetricType) bool {
	return r.Lookup(metric) != nil
}

// Metrics lists registered metric types in sorted order.
func (r *Registry[In]) Metrics() []MetricType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MetricType, 0, len(r.calculators))
	for m := range r.calculators {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
