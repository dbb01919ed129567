package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"scatterinterp/pkg/index"
	"scatterinterp/pkg/spatial"
)

// LWR estimates by locally weighted linear regression: a weighted
// least-squares hyperplane is fitted to the k nearest samples and
// evaluated at the query location. The kernel is w = 1/(1+d), strictly
// positive and non-increasing in distance, so closer samples always
// dominate and there is no zero-distance singularity to special-case.
// The uncertainty proxy is the weighted RMS residual of the local fit.
type LWR struct {
	// Workers bounds the number of goroutines used per variable.
	// Zero means one per CPU.
	Workers int

	// Progress, if set, is called at the start and end of each
	// variable's pass.
	Progress ProgressFunc
}

// Solve implements Estimator.
func (e *LWR) Solve(ds spatial.Dataset, dom spatial.Domain, cfg Config) (map[string]*Field, error) {
	return solve(ds, dom, cfg, e.Workers, e.Progress, lwrPoint)
}

func lwrKernel(d float64) float64 { return 1 / (1 + d) }

// lwrPoint fits the coefficient vector minimizing
// Σ wᵢ (zᵢ − β·[1, Xᵢ])² by QR factorization of the √w-scaled design
// matrix and evaluates the fit at the query location. A rank-deficient
// neighborhood (collinear samples, or fewer neighbors than
// coefficients) fails with ErrDegenerate instead of producing an
// unstable fit. There is no regularization fallback; callers wanting
// one should lower the neighbor count or use IDW.
func lwrPoint(query []float64, nb []index.Neighbor, coords [][]float64, values []float64) (float64, float64, error) {
	dims := len(query)
	rows, cols := len(nb), dims+1
	if rows < cols {
		return 0, 0, fmt.Errorf("%w: %d neighbors for %d coefficients", ErrDegenerate, rows, cols)
	}

	X := mat.NewDense(rows, cols, nil)
	z := mat.NewVecDense(rows, nil)
	w := make([]float64, rows)
	for i, n := range nb {
		w[i] = lwrKernel(n.Distance)
		sw := math.Sqrt(w[i])
		X.Set(i, 0, sw)
		for d, c := range coords[n.Index] {
			X.Set(i, d+1, sw*c)
		}
		z.SetVec(i, sw*values[n.Index])
	}

	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(cols, nil)
	if err := qr.SolveVecTo(beta, false, z); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	est := beta.AtVec(0)
	for d := 0; d < dims; d++ {
		est += beta.AtVec(d+1) * query[d]
	}

	// Weighted RMS residual over the fitted neighbors.
	var num, den float64
	for i, n := range nb {
		fit := beta.AtVec(0)
		for d, c := range coords[n.Index] {
			fit += beta.AtVec(d+1) * c
		}
		r := values[n.Index] - fit
		num += w[i] * r * r
		den += w[i]
	}
	return est, math.Sqrt(num / den), nil
}
