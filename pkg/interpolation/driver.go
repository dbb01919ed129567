package interpolation

import (
	"fmt"
	"sync"

	"scatterinterp/internal/parallel"
	"scatterinterp/pkg/index"
	"scatterinterp/pkg/spatial"
)

// pointEstimator computes one local estimate. neighbors is ascending by
// distance and indexes into the variable's coords/values sample set.
type pointEstimator func(query []float64, neighbors []index.Neighbor, coords [][]float64, values []float64) (estimate, uncertainty float64, err error)

// solve is the estimation loop shared by IDW and LWR. Per variable it
// validates eagerly, builds the spatial index once, then fills both
// output arrays in parallel. Location iterations are independent: the
// index is immutable after construction and every worker writes a
// disjoint range of output slots, so no synchronization is needed on
// the hot path.
func solve(ds spatial.Dataset, dom spatial.Domain, cfg Config, workers int, progress ProgressFunc, fit pointEstimator) (map[string]*Field, error) {
	out := make(map[string]*Field, len(ds.Variables()))
	for _, name := range ds.Variables() {
		opts := cfg[name]
		coords, values := ds.Samples(name)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptySampleSet, name)
		}
		k, err := opts.neighbors(len(values))
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		ix, err := index.Build(coords, opts.metric())
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}

		n := dom.Len()
		if progress != nil {
			progress(name, 0, n)
		}
		field := &Field{
			Estimates:     make([]float64, n),
			Uncertainties: make([]float64, n),
		}

		var (
			mu       sync.Mutex
			firstErr error
		)
		parallel.ForEach(n, workers, func(start, end int) {
			for i := start; i < end; i++ {
				q := dom.Coord(i)
				est, unc, err := fit(q, ix.Query(q, k), coords, values)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("variable %q, location %d: %w", name, i, err)
					}
					mu.Unlock()
					return
				}
				field.Estimates[i] = est
				field.Uncertainties[i] = unc
			}
		})
		if firstErr != nil {
			return nil, firstErr
		}

		if progress != nil {
			progress(name, n, n)
		}
		out[name] = field
	}
	return out, nil
}
