package generic_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

func TestEvaluate_PreservesDefinitionOrder(t *testing.T) {
	// GIVEN: Five definitions whose measurements finish in reverse order
	// WHEN: Evaluating in parallel
	// THEN: Results follow definition order

	defs := make([]generic.KpiDefinition, 5)
	for i := range defs {
		defs[i] = def(i+1, 20, 100, true)
	}
	measure := func(_ context.Context, d generic.KpiDefinition) (generic.Measurement, error) {
		time.Sleep(time.Duration(5-d.Sequence) * time.Millisecond)
		return generic.Measurement{Actual: float64(d.Sequence * 10)}, nil
	}

	results, err := generic.Evaluate(context.Background(), defs, 5, measure, nil)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i+1, r.Definition.Sequence)
		assert.True(t, r.Actual.Equal(dec(float64((i+1)*10))))
	}
}

func TestEvaluate_IsolatesFailures(t *testing.T) {
	// GIVEN: Three definitions, the second errors and the third panics
	// WHEN: Evaluating
	// THEN: The first succeeds, the others become failed results with
	//       actual 0, and the failure hook sees MetricCalculationErrors

	defs := []generic.KpiDefinition{def(1, 50, 100, true), def(2, 30, 100, true), def(3, 20, 100, true)}
	measure := func(_ context.Context, d generic.KpiDefinition) (generic.Measurement, error) {
		switch d.Sequence {
		case 2:
			return generic.Measurement{}, errors.New("no data source")
		case 3:
			panic("nil bundle")
		}
		return generic.Measurement{Actual: 100}, nil
	}

	var mu sync.Mutex
	var failures []error
	onFailure := func(_ generic.KpiDefinition, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	}

	results, err := generic.Evaluate(context.Background(), defs, 2, measure, onFailure)
	require.NoError(t, err)

	assert.False(t, results[0].Failed)
	assert.True(t, results[0].WeightedScore.Equal(dec(50)))
	assert.True(t, results[1].Failed)
	assert.Contains(t, results[1].Narrative, "no data source")
	assert.True(t, results[2].Failed)
	assert.Contains(t, results[2].Narrative, "panic: nil bundle")

	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.ErrorIs(t, f, generic.ErrMetricCalculation)
	}

	s := generic.Summarize(results)
	assert.True(t, s.TotalScore.Equal(dec(50)))
	assert.Equal(t, generic.StatusBelowTarget, s.Status)
}

func TestEvaluate_RespectsParallelism(t *testing.T) {
	defs := make([]generic.KpiDefinition, 8)
	for i := range defs {
		defs[i] = def(i+1, 10, 100, true)
	}

	var running, peak int32
	measure := func(_ context.Context, _ generic.KpiDefinition) (generic.Measurement, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return generic.Measurement{Actual: 1}, nil
	}

	_, err := generic.Evaluate(context.Background(), defs, 2, measure, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestEvaluate_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	measure := func(_ context.Context, _ generic.KpiDefinition) (generic.Measurement, error) {
		return generic.Measurement{Actual: 1}, nil
	}
	_, err := generic.Evaluate(ctx, []generic.KpiDefinition{def(1, 100, 100, true)}, 1, measure, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_LookupAndUnknown(t *testing.T) {
	r := generic.NewRegistry[int]()
	r.Register("double", func(in int) (generic.Measurement, error) {
		return generic.Measurement{Actual: float64(in * 2)}, nil
	})

	calc, err := r.MustLookup("double")
	require.NoError(t, err)
	m, err := calc(21)
	require.NoError(t, err)
	assert.Equal(t, 42.0, m.Actual)

	_, err = r.MustLookup("missing")
	assert.ErrorIs(t, err, generic.ErrUnknownMetric)
	assert.False(t, r.Has("missing"))
	assert.Equal(t, []generic.MetricType{"double"}, r.Metrics())
}
