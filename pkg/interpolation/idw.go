package interpolation

import (
	"math"

	"scatterinterp/pkg/index"
	"scatterinterp/pkg/spatial"
)

// IDW estimates by inverse distance weighting: each location gets the
// convex combination of its k nearest sample values with weights
// proportional to 1/distance. The uncertainty proxy is the distance to
// the nearest sample.
type IDW struct {
	// Workers bounds the number of goroutines used per variable.
	// Zero means one per CPU.
	Workers int

	// Progress, if set, is called at the start and end of each
	// variable's pass.
	Progress ProgressFunc
}

// Solve implements Estimator.
func (e *IDW) Solve(ds spatial.Dataset, dom spatial.Domain, cfg Config) (map[string]*Field, error) {
	return solve(ds, dom, cfg, e.Workers, e.Progress, idwPoint)
}

// idwPoint combines one neighbor set. A query coinciding with a sample
// makes the raw weight sum non-finite; the estimate is then the value
// of the first zero-distance neighbor in ascending order and the
// uncertainty is zero. This is a true singularity of the 1/d kernel:
// only exact coincidence triggers it, never a tolerance.
func idwPoint(_ []float64, nb []index.Neighbor, _ [][]float64, values []float64) (float64, float64, error) {
	var sum float64
	for _, n := range nb {
		sum += 1 / n.Distance
	}
	if math.IsInf(sum, 1) {
		for _, n := range nb {
			if n.Distance == 0 {
				return values[n.Index], 0, nil
			}
		}
	}
	var est float64
	for _, n := range nb {
		est += 1 / n.Distance / sum * values[n.Index]
	}
	return est, nb[0].Distance, nil
}
