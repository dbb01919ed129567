// Package metric provides the distance metrics used for neighbor
// retrieval and weighting, together with the Minkowski-family membership
// test that decides which spatial index structure a metric may be used
// with.
package metric

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Metric measures the distance between two coordinate vectors of equal
// length. Implementations must be symmetric, non-negative and satisfy
// the triangle inequality.
type Metric interface {
	// Distance returns the distance between a and b.
	Distance(a, b []float64) float64

	// Minkowski reports whether the metric is a fixed p-norm over
	// coordinate differences. Minkowski metrics admit axis-aligned
	// splitting and therefore a k-d tree index; anything else must be
	// indexed with a ball tree.
	Minkowski() bool

	// String returns the config-facing name of the metric.
	String() string
}

// Euclidean is the L2 norm. It is the default metric wherever a
// configuration leaves the distance unset.
type Euclidean struct{}

func (Euclidean) Distance(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func (Euclidean) Minkowski() bool { return true }

func (Euclidean) String() string { return "euclidean" }

// Manhattan is the L1 norm.
type Manhattan struct{}

func (Manhattan) Distance(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += math.Abs(a[i] - b[i])
	}
	return s
}

func (Manhattan) Minkowski() bool { return true }

func (Manhattan) String() string { return "manhattan" }

// Chebyshev is the L∞ norm, the limit of the Minkowski family.
type Chebyshev struct{}

func (Chebyshev) Distance(a, b []float64) float64 {
	var s float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > s {
			s = d
		}
	}
	return s
}

func (Chebyshev) Minkowski() bool { return true }

func (Chebyshev) String() string { return "chebyshev" }

// PNorm is the general Minkowski metric with exponent P. P must be at
// least 1 for the triangle inequality to hold.
type PNorm struct {
	P float64
}

func (m PNorm) Distance(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return math.Pow(s, 1/m.P)
}

func (PNorm) Minkowski() bool { return true }

func (m PNorm) String() string { return fmt.Sprintf("minkowski:%g", m.P) }

// Haversine is the great-circle distance in kilometers between
// (longitude, latitude) pairs in degrees. Coordinates beyond the first
// two are ignored. It is not a Minkowski metric: distances wrap around
// the antimeridian, so axis-aligned splits do not bound them.
type Haversine struct{}

func (Haversine) Distance(a, b []float64) float64 {
	return geo.Distance(orb.Point{a[0], a[1]}, orb.Point{b[0], b[1]}) / 1000
}

func (Haversine) Minkowski() bool { return false }

func (Haversine) String() string { return "haversine" }

// Parse resolves a metric from its configuration name. Recognized names
// are "euclidean", "manhattan", "chebyshev", "haversine" and
// "minkowski:<p>" with p >= 1. The empty string resolves to Euclidean.
func Parse(name string) (Metric, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	switch s {
	case "", "euclidean":
		return Euclidean{}, nil
	case "manhattan":
		return Manhattan{}, nil
	case "chebyshev":
		return Chebyshev{}, nil
	case "haversine":
		return Haversine{}, nil
	}
	if arg, ok := strings.CutPrefix(s, "minkowski:"); ok {
		p, err := strconv.ParseFloat(arg, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p < 1 {
			return nil, fmt.Errorf("metric: invalid minkowski exponent %q", arg)
		}
		return PNorm{P: p}, nil
	}
	return nil, fmt.Errorf("metric: unknown distance metric %q", name)
}
