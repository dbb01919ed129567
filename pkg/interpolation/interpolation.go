// Package interpolation implements the spatial estimators: inverse
// distance weighting (IDW) and locally weighted regression (LWR). Both
// follow the same pattern: for each query location, retrieve the
// nearest samples through a spatial index, weight them by a
// distance-derived kernel and combine them into a local estimate paired
// with an uncertainty proxy.
package interpolation

import (
	"errors"
	"fmt"

	"scatterinterp/pkg/metric"
	"scatterinterp/pkg/spatial"
)

// Estimation errors. All validation is eager: a variable either fails
// before its output arrays are allocated or completes fully.
var (
	// ErrEmptySampleSet reports a variable with zero non-missing
	// observations.
	ErrEmptySampleSet = errors.New("interpolation: variable has no samples")

	// ErrNeighborCount reports a configured neighbor count larger than
	// the variable's sample count.
	ErrNeighborCount = errors.New("interpolation: neighbor count exceeds sample count")

	// ErrDegenerate reports a singular or ill-conditioned local
	// regression system (LWR only).
	ErrDegenerate = errors.New("interpolation: degenerate local regression system")
)

// Options configures the estimation of one variable.
type Options struct {
	// Neighbors is the number of nearest samples each local estimate
	// uses. Zero means every sample of the variable. Must not exceed
	// the variable's sample count.
	Neighbors int

	// Distance is the metric used for neighbor retrieval and
	// weighting. Nil means metric.Euclidean.
	Distance metric.Metric
}

// Config maps variable names to their options. Variables absent from
// the map use the zero Options: all samples as neighbors, Euclidean
// distance.
type Config map[string]Options

func (o Options) metric() metric.Metric {
	if o.Distance == nil {
		return metric.Euclidean{}
	}
	return o.Distance
}

func (o Options) neighbors(samples int) (int, error) {
	if o.Neighbors < 0 {
		return 0, fmt.Errorf("interpolation: invalid neighbor count %d", o.Neighbors)
	}
	if o.Neighbors == 0 {
		return samples, nil
	}
	if o.Neighbors > samples {
		return 0, fmt.Errorf("%w: %d > %d", ErrNeighborCount, o.Neighbors, samples)
	}
	return o.Neighbors, nil
}

// Field holds the two dense output arrays of one variable, indexed by
// the domain's traversal order.
type Field struct {
	// Estimates is the mean estimate at each domain location.
	Estimates []float64

	// Uncertainties is a non-negative spread proxy at each location:
	// the nearest-sample distance for IDW, the weighted residual RMS
	// of the local fit for LWR. It is not a calibrated variance.
	Uncertainties []float64
}

// Estimator produces per-variable fields over a domain from a dataset.
type Estimator interface {
	Solve(ds spatial.Dataset, dom spatial.Domain, cfg Config) (map[string]*Field, error)
}

// ProgressFunc receives progress while a solve runs: once when a
// variable's pass starts (done = 0) and once when it completes
// (done = total), with total the domain size.
type ProgressFunc func(variable string, done, total int)
