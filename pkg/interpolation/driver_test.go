package interpolation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scatterinterp/pkg/metric"
	"scatterinterp/pkg/spatial"
)

// newDataset builds an in-memory dataset for tests, one value slice per
// variable. NaN marks missing observations.
func newDataset(t *testing.T, coords [][]float64, vars map[string][]float64) *spatial.PointSet {
	t.Helper()
	ps, err := spatial.NewPointSet(coords)
	require.NoError(t, err)
	for name, values := range vars {
		require.NoError(t, ps.AddVariable(name, values))
	}
	return ps
}

func randomField(n, dims int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	coords := make([][]float64, n)
	values := make([]float64, n)
	for i := range coords {
		c := make([]float64, dims)
		for d := range c {
			c[d] = rng.Float64() * 10
		}
		coords[i] = c
		values[i] = rng.Float64() * 100
	}
	return coords, values
}

func TestSolveFullyPopulatesOutputs(t *testing.T) {
	coords, _ := randomField(20, 2, 1)
	values := make([]float64, len(coords))
	for i := range values {
		values[i] = 7
	}
	ds := newDataset(t, coords, map[string][]float64{"v": values})
	dom, err := spatial.NewGrid(
		spatial.Axis{Min: 0, Max: 10, N: 5},
		spatial.Axis{Min: 0, Max: 10, N: 5},
	)
	require.NoError(t, err)

	for _, e := range []Estimator{&IDW{}, &LWR{}} {
		fields, err := e.Solve(ds, dom, nil)
		require.NoError(t, err)
		require.Len(t, fields, 1)
		f := fields["v"]
		require.NotNil(t, f)
		require.Len(t, f.Estimates, dom.Len())
		require.Len(t, f.Uncertainties, dom.Len())
		for i := range f.Estimates {
			assert.InDelta(t, 7, f.Estimates[i], 1e-9, "location %d", i)
			assert.GreaterOrEqual(t, f.Uncertainties[i], 0.0)
		}
	}
}

func TestSolveDeterministicAcrossWorkerCounts(t *testing.T) {
	coords, values := randomField(60, 2, 2)
	ds := newDataset(t, coords, map[string][]float64{"v": values})
	dom, err := spatial.NewGrid(
		spatial.Axis{Min: 0, Max: 10, N: 9},
		spatial.Axis{Min: 0, Max: 10, N: 9},
	)
	require.NoError(t, err)
	cfg := Config{"v": {Neighbors: 8}}

	one, err := (&IDW{Workers: 1}).Solve(ds, dom, cfg)
	require.NoError(t, err)
	many, err := (&IDW{Workers: 8}).Solve(ds, dom, cfg)
	require.NoError(t, err)

	assert.Equal(t, one["v"].Estimates, many["v"].Estimates)
	assert.Equal(t, one["v"].Uncertainties, many["v"].Uncertainties)
}

func TestSolvePerVariableOptions(t *testing.T) {
	coords := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}}
	ds := newDataset(t, coords, map[string][]float64{
		"full":   {1, 2, 3, 4, 5},
		"sparse": {1, math.NaN(), math.NaN(), 4, math.NaN()},
	})
	cfg := Config{
		"full":   {Neighbors: 2, Distance: metric.Manhattan{}},
		"sparse": {}, // defaults: all samples, Euclidean
	}

	fields, err := (&IDW{}).Solve(ds, spatial.Points{{0.5, 0.5}}, cfg)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	// sparse has two samples with values 1 and 4; the query is closer
	// to the first, so the estimate stays in (1, 4).
	est := fields["sparse"].Estimates[0]
	assert.Greater(t, est, 1.0)
	assert.Less(t, est, 4.0)
}

func TestSolveProgressCallback(t *testing.T) {
	coords, values := randomField(10, 2, 3)
	ds := newDataset(t, coords, map[string][]float64{"v": values})
	dom := spatial.Points{{1, 1}, {2, 2}, {3, 3}}

	type call struct {
		variable    string
		done, total int
	}
	var calls []call
	e := &IDW{Progress: func(variable string, done, total int) {
		calls = append(calls, call{variable, done, total})
	}}
	_, err := e.Solve(ds, dom, nil)
	require.NoError(t, err)
	assert.Equal(t, []call{{"v", 0, 3}, {"v", 3, 3}}, calls)
}

func TestSolveEmptySampleSet(t *testing.T) {
	coords := [][]float64{{0, 0}, {1, 1}}
	ds := newDataset(t, coords, map[string][]float64{"v": {math.NaN(), math.NaN()}})

	for _, e := range []Estimator{&IDW{}, &LWR{}} {
		fields, err := e.Solve(ds, spatial.Points{{0, 0}}, nil)
		require.ErrorIs(t, err, ErrEmptySampleSet)
		assert.Nil(t, fields)
	}
}

func TestSolveNeighborCountExceedsSamples(t *testing.T) {
	coords, values := randomField(5, 2, 4)
	ds := newDataset(t, coords, map[string][]float64{"v": values})
	cfg := Config{"v": {Neighbors: 6}}

	for _, e := range []Estimator{&IDW{}, &LWR{}} {
		fields, err := e.Solve(ds, spatial.Points{{0, 0}}, cfg)
		require.ErrorIs(t, err, ErrNeighborCount)
		assert.Nil(t, fields, "failure must happen before any output array exists")
	}
}

func TestSolveNegativeNeighborCount(t *testing.T) {
	coords, values := randomField(5, 2, 5)
	ds := newDataset(t, coords, map[string][]float64{"v": values})
	_, err := (&IDW{}).Solve(ds, spatial.Points{{0, 0}}, Config{"v": {Neighbors: -1}})
	assert.Error(t, err)
}
