// Package linkage computes inter-cluster distances over already vectorized
// points with a pluggable pairwise metric.
package linkage

import (
	"fmt"
	"math"
)

// Vector is one vectorized record.
type Vector []float64

// Metric is a pairwise distance between two vectors.
type Metric interface {
	Compute(x, y Vector) (float64, error)
}

// MetricFunc adapts a plain function to Metric.
type MetricFunc func(x, y Vector) (float64, error)

// Compute calls f(x, y).
func (f MetricFunc) Compute(x, y Vector) (float64, error) { return f(x, y) }

// Euclidean is the L2 distance.
var Euclidean Metric = MetricFunc(func(x, y Vector) (float64, error) {
	if err := sameDim(x, y); err != nil {
		return 0, err
	}
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
})

// Manhattan is the L1 distance.
var Manhattan Metric = MetricFunc(func(x, y Vector) (float64, error) {
	if err := sameDim(x, y); err != nil {
		return 0, err
	}
	var sum float64
	for i := range x {
		sum += math.Abs(x[i] - y[i])
	}
	return sum, nil
})

func sameDim(x, y Vector) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(x), len(y))
	}
	return nil
}

// Pair identifies the closest points of two collections.
type Pair struct {
	A, B     int
	Distance float64
}

// SingleLinker measures clusters by their closest pair of points.
type SingleLinker struct {
	Metric Metric
}

// NewSingleLinker returns a linker using m, or Euclidean when m is nil.
func NewSingleLinker(m Metric) *SingleLinker {
	if m == nil {
		m = Euclidean
	}
	return &SingleLinker{Metric: m}
}

// Distance is the minimum metric over every a in A and b in B. A singleton
// is an ordinary collection; an empty one is an error.
func (l *SingleLinker) Distance(a, b []Vector) (float64, error) {
	p, err := l.Closest(a, b)
	if err != nil {
		return 0, err
	}
	return p.Distance, nil
}

// Closest returns the indices and distance of the nearest pair across the
// two collections. Ties keep the first pair in row-major order.
func (l *SingleLinker) Closest(a, b []Vector) (Pair, error) {
	if len(a) == 0 || len(b) == 0 {
		return Pair{}, fmt.Errorf("%w: sizes %d and %d", ErrEmptyCluster, len(a), len(b))
	}
	m := l.Metric
	if m == nil {
		m = Euclidean
	}

	best := Pair{A: -1, B: -1, Distance: math.Inf(1)}
	for i, x := range a {
		for j, y := range b {
			d, err := m.Compute(x, y)
			if err != nil {
				return Pair{}, fmt.Errorf("distance a[%d] b[%d]: %w", i, j, err)
			}
			if d < best.Distance || best.A < 0 {
				best = Pair{A: i, B: j, Distance: d}
			}
		}
	}
	return best, nil
}
