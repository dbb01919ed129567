package interpolation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scatterinterp/pkg/spatial"
)

// planeDataset is the hand-placed scenario: four corner samples with
// values {1, 0, 1, 0} lying on the plane v = 1 - x.
func planeDataset(t *testing.T) *spatial.PointSet {
	coords := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	return newDataset(t, coords, map[string][]float64{"v": {1, 0, 1, 0}})
}

func TestIDWConvexCombination(t *testing.T) {
	coords, values := randomField(50, 2, 10)
	ds := newDataset(t, coords, map[string][]float64{"v": values})

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	rng := rand.New(rand.NewSource(11))
	queries := make(spatial.Points, 40)
	for i := range queries {
		queries[i] = []float64{rng.Float64() * 10, rng.Float64() * 10}
	}

	for _, k := range []int{1, 5, 0} {
		fields, err := (&IDW{}).Solve(ds, queries, Config{"v": {Neighbors: k}})
		require.NoError(t, err)
		for i, est := range fields["v"].Estimates {
			assert.GreaterOrEqual(t, est, lo-1e-9, "k=%d location %d", k, i)
			assert.LessOrEqual(t, est, hi+1e-9, "k=%d location %d", k, i)
		}
	}
}

func TestIDWExactAtSamplePoint(t *testing.T) {
	coords, values := randomField(30, 2, 12)
	ds := newDataset(t, coords, map[string][]float64{"v": values})

	// Query at every sample site: the zero-distance short-circuit must
	// return the sample's value exactly, with zero uncertainty,
	// regardless of the other neighbors.
	dom := spatial.Points(coords)
	fields, err := (&IDW{}).Solve(ds, dom, Config{"v": {Neighbors: 10}})
	require.NoError(t, err)
	for i := range coords {
		assert.Equal(t, values[i], fields["v"].Estimates[i], "location %d", i)
		assert.Equal(t, 0.0, fields["v"].Uncertainties[i], "location %d", i)
	}
}

func TestIDWZeroDistanceTieBreak(t *testing.T) {
	// Two samples at the same site carry the same value; the first in
	// ascending-distance order (lowest sample index) wins.
	coords := [][]float64{{1, 1}, {1, 1}, {0, 0}}
	ds := newDataset(t, coords, map[string][]float64{"v": {5, 5, 9}})

	fields, err := (&IDW{}).Solve(ds, spatial.Points{{1, 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, fields["v"].Estimates[0])
	assert.Equal(t, 0.0, fields["v"].Uncertainties[0])
}

func TestIDWUncertaintyIsNearestDistance(t *testing.T) {
	coords := [][]float64{{0, 0}, {4, 0}, {0, 3}}
	ds := newDataset(t, coords, map[string][]float64{"v": {1, 2, 3}})

	fields, err := (&IDW{}).Solve(ds, spatial.Points{{1, 0}, {0, 0}}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fields["v"].Uncertainties[0], 1e-12)
	assert.Equal(t, 0.0, fields["v"].Uncertainties[1])
}

func TestIDWFourSampleScenario(t *testing.T) {
	ds := planeDataset(t)
	sampleCoords, sampleValues := ds.Samples("v")

	for _, k := range []int{3, 4} {
		cfg := Config{"v": {Neighbors: k}}

		// Exact at each sample's own coordinate.
		fields, err := (&IDW{}).Solve(ds, spatial.Points(sampleCoords), cfg)
		require.NoError(t, err)
		for i := range sampleCoords {
			assert.Equal(t, sampleValues[i], fields["v"].Estimates[i], "k=%d sample %d", k, i)
		}

		// Monotone non-increasing along x between the sample extremes.
		queries := make(spatial.Points, 9)
		for i := range queries {
			queries[i] = []float64{float64(i) / 8, 0.5}
		}
		fields, err = (&IDW{}).Solve(ds, queries, cfg)
		require.NoError(t, err)
		prev := math.Inf(1)
		for i, est := range fields["v"].Estimates {
			assert.LessOrEqual(t, est, prev+1e-12, "k=%d x=%g", k, queries[i][0])
			assert.GreaterOrEqual(t, est, 0.0)
			assert.LessOrEqual(t, est, 1.0)
			prev = est
		}
	}
}
