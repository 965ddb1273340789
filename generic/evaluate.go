package generic

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MeasureFunc measures one definition. It runs concurrently with the other
// definitions of the same scorecard and must only read shared state.
type MeasureFunc func(ctx context.Context, d KpiDefinition) (Measurement, error)

// FailureFunc is notified of each isolated metric failure.
type FailureFunc func(d KpiDefinition, err error)

// Evaluate measures every definition with at most parallelism goroutines and
// returns results in definition order. A failing or panicking measurement
// becomes a FailedResult; it never stops the others. Only ctx cancellation
// aborts the whole evaluation.
func Evaluate(ctx context.Context, defs []KpiDefinition, parallelism int, measure MeasureFunc, onFailure FailureFunc) ([]KpiResult, error) {
	results := make([]KpiResult, len(defs))

	g, gCtx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, d := range defs {
		i, d := i, d
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			m, err := safeMeasure(gCtx, d, measure)
			if err != nil {
				calcErr := &MetricCalculationError{Metric: d.Metric, Sequence: d.Sequence, Err: err}
				if onFailure != nil {
					onFailure(d, calcErr)
				}
				results[i] = FailedResult(d, err)
				return nil
			}
			results[i] = NewKpiResult(d, m)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func safeMeasure(ctx context.Context, d KpiDefinition, measure MeasureFunc) (m Measurement, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return measure(ctx, d)
}
