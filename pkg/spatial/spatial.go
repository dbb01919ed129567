// Package spatial defines the two collaborators the estimators consume:
// a Dataset holding scattered measurements and a Domain enumerating the
// locations to estimate at. It also provides concrete in-memory
// implementations of both.
package spatial

import (
	"fmt"
	"math"
)

// Dataset exposes, per variable, the locations that carry a value for
// that variable.
type Dataset interface {
	// Variables lists the variable names in a stable order.
	Variables() []string

	// Samples returns the coordinates and values of every location
	// with a non-missing value for the variable. The two slices share
	// indexing. An unknown variable yields empty slices.
	Samples(variable string) (coords [][]float64, values []float64)
}

// Domain enumerates the query locations of an estimation pass. The
// traversal order is deterministic and defines the indexing of the
// output arrays.
type Domain interface {
	// Len returns the number of locations.
	Len() int

	// Coord returns the coordinates of location i, 0 <= i < Len().
	Coord(i int) []float64
}

// PointSet is an in-memory Dataset over a fixed list of locations. A
// NaN value marks a variable as missing at a location. PointSet also
// implements Domain over its full location list, which is convenient
// for cross-validation style estimation at the sample sites themselves.
type PointSet struct {
	coords [][]float64
	names  []string
	values map[string][]float64
}

// NewPointSet creates a dataset over the given locations. All
// coordinate vectors must have the same length.
func NewPointSet(coords [][]float64) (*PointSet, error) {
	if len(coords) > 0 {
		dims := len(coords[0])
		for i, c := range coords {
			if len(c) != dims {
				return nil, fmt.Errorf("spatial: location %d has %d coordinates, want %d", i, len(c), dims)
			}
		}
	}
	return &PointSet{
		coords: coords,
		values: make(map[string][]float64),
	}, nil
}

// AddVariable attaches one value per location under the given name.
// NaN entries mark missing observations.
func (ps *PointSet) AddVariable(name string, values []float64) error {
	if len(values) != len(ps.coords) {
		return fmt.Errorf("spatial: variable %q has %d values for %d locations", name, len(values), len(ps.coords))
	}
	if _, ok := ps.values[name]; ok {
		return fmt.Errorf("spatial: variable %q already present", name)
	}
	ps.names = append(ps.names, name)
	ps.values[name] = values
	return nil
}

// Variables returns the variable names in the order they were added.
func (ps *PointSet) Variables() []string { return ps.names }

// Samples implements Dataset, filtering out locations where the
// variable is missing.
func (ps *PointSet) Samples(variable string) ([][]float64, []float64) {
	all, ok := ps.values[variable]
	if !ok {
		return nil, nil
	}
	coords := make([][]float64, 0, len(all))
	values := make([]float64, 0, len(all))
	for i, v := range all {
		if math.IsNaN(v) {
			continue
		}
		coords = append(coords, ps.coords[i])
		values = append(values, v)
	}
	return coords, values
}

// Len implements Domain.
func (ps *PointSet) Len() int { return len(ps.coords) }

// Coord implements Domain.
func (ps *PointSet) Coord(i int) []float64 { return ps.coords[i] }

// Axis describes one dimension of a Grid: N evenly spaced coordinates
// from Min to Max inclusive. N == 1 pins the axis at Min.
type Axis struct {
	Min, Max float64
	N        int
}

func (ax Axis) coord(j int) float64 {
	if ax.N == 1 {
		return ax.Min
	}
	return ax.Min + (ax.Max-ax.Min)*float64(j)/float64(ax.N-1)
}

// Grid is a regular rectilinear Domain. Locations are traversed in
// row-major order with the last axis varying fastest.
type Grid struct {
	axes []Axis
	n    int
}

// NewGrid creates a grid from the given axes.
func NewGrid(axes ...Axis) (*Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("spatial: grid needs at least one axis")
	}
	n := 1
	for i, ax := range axes {
		if ax.N < 1 {
			return nil, fmt.Errorf("spatial: axis %d has %d points", i, ax.N)
		}
		if ax.N > 1 && ax.Max <= ax.Min {
			return nil, fmt.Errorf("spatial: axis %d has empty extent [%g, %g]", i, ax.Min, ax.Max)
		}
		n *= ax.N
	}
	return &Grid{axes: axes, n: n}, nil
}

// Dims returns the number of grid axes.
func (g *Grid) Dims() int { return len(g.axes) }

// Len implements Domain.
func (g *Grid) Len() int { return g.n }

// Coord implements Domain.
func (g *Grid) Coord(i int) []float64 {
	c := make([]float64, len(g.axes))
	for d := len(g.axes) - 1; d >= 0; d-- {
		ax := g.axes[d]
		c[d] = ax.coord(i % ax.N)
		i /= ax.N
	}
	return c
}

// Points is a Domain over an explicit list of query coordinates.
type Points [][]float64

// Len implements Domain.
func (p Points) Len() int { return len(p) }

// Coord implements Domain.
func (p Points) Coord(i int) []float64 { return p[i] }
