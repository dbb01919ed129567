// Package index wraps the spatial index used for k-nearest-neighbor
// retrieval. Minkowski-family metrics are served by a k-d tree; every
// other metric falls back to a vantage-point tree, a ball tree that only
// requires the triangle inequality. The dispatch is a correctness
// requirement, not an optimization: a k-d tree prunes subtrees on
// per-axis displacement, and that bound only holds for fixed p-norms.
package index

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/vptree"

	"scatterinterp/pkg/metric"
)

// Neighbor is one entry of a nearest-neighbor result.
type Neighbor struct {
	// Index of the sample in the coordinate slice the index was built
	// from.
	Index int

	// Distance from the query point under the index's metric.
	Distance float64
}

// Index answers k-nearest-neighbor queries over a fixed set of sample
// coordinates. It is immutable after Build and safe for concurrent
// queries.
type Index struct {
	m  metric.Metric
	kd *kdtree.Tree
	vp *vptree.Tree
	n  int
}

// Build constructs an index over coords using m. The coordinate slices
// are referenced, not copied, and must not be mutated while the index
// is in use.
func Build(coords [][]float64, m metric.Metric) (*Index, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("index: no coordinates to index")
	}
	ix := &Index{m: m, n: len(coords)}
	if m.Minkowski() {
		pts := make(kdPoints, len(coords))
		for i, c := range coords {
			pts[i] = kdPoint{idx: i, coords: c, m: m}
		}
		ix.kd = kdtree.New(pts, true)
		return ix, nil
	}
	pts := make([]vptree.Comparable, len(coords))
	for i, c := range coords {
		pts[i] = vpPoint{idx: i, coords: c, m: m}
	}
	t, err := vptree.New(pts, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("index: building ball tree: %w", err)
	}
	ix.vp = t
	return ix, nil
}

// Len returns the number of indexed samples.
func (ix *Index) Len() int { return ix.n }

// Query returns the k nearest indexed samples to point, ascending by
// distance with ties broken by sample index. k larger than the number
// of indexed samples returns the full sample set.
func (ix *Index) Query(point []float64, k int) []Neighbor {
	if k > ix.n {
		k = ix.n
	}
	if k <= 0 {
		return nil
	}
	out := make([]Neighbor, 0, k)
	if ix.kd != nil {
		keep := kdtree.NewNKeeper(k)
		ix.kd.NearestSet(keep, kdPoint{idx: -1, coords: point, m: ix.m})
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			p := cd.Comparable.(kdPoint)
			out = append(out, Neighbor{Index: p.idx, Distance: math.Sqrt(cd.Dist)})
		}
	} else {
		keep := vptree.NewNKeeper(k)
		ix.vp.NearestSet(keep, vpPoint{idx: -1, coords: point, m: ix.m})
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			p := cd.Comparable.(vpPoint)
			out = append(out, Neighbor{Index: p.idx, Distance: cd.Dist})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// kdPoint adapts one sample coordinate to kdtree.Comparable. Distance
// reports the squared metric distance: the displacement along a single
// axis lower-bounds every p-norm, so the tree's squared plane test stays
// conservative for the whole Minkowski family. Query results carry true
// distances; the square root is taken on extraction.
type kdPoint struct {
	idx    int
	coords []float64
	m      metric.Metric
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	return p.coords[d] - q.coords[d]
}

func (p kdPoint) Dims() int { return len(p.coords) }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	d := p.m.Distance(p.coords, q.coords)
	return d * d
}

// kdPoints satisfies kdtree.Interface.
type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p kdPoints) Len() int                              { return len(p) }
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p kdPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(kdPlane{kdPoints: p, Dim: d}, kdtree.MedianOfRandoms(kdPlane{kdPoints: p, Dim: d}, 100))
}

// kdPlane implements sort.Interface and kdtree.SortSlicer over a single
// dimension of kdPoints.
type kdPlane struct {
	kdPoints
	kdtree.Dim
}

func (p kdPlane) Less(i, j int) bool {
	return p.kdPoints[i].coords[p.Dim] < p.kdPoints[j].coords[p.Dim]
}

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	return kdPlane{kdPoints: p.kdPoints[start:end], Dim: p.Dim}
}

func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}

// vpPoint adapts one sample coordinate to vptree.Comparable. The ball
// tree needs nothing beyond the metric itself.
type vpPoint struct {
	idx    int
	coords []float64
	m      metric.Metric
}

func (p vpPoint) Distance(c vptree.Comparable) float64 {
	q := c.(vpPoint)
	return p.m.Distance(p.coords, q.coords)
}
