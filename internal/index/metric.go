package index

import (
	"fmt"

	"github.com/lumenkart/shopassist/internal/domain"
)

// Metric is the distance metric fixed per index instance.
type Metric int

const (
	// MetricEuclidean ranks by squared L2 distance, smaller is better.
	MetricEuclidean Metric = iota
	// MetricInnerProduct ranks by dot product, larger is better.
	MetricInnerProduct
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "l2"
	case MetricInnerProduct:
		return "ip"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMetric maps a config string to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "l2", "euclidean", "":
		return MetricEuclidean, nil
	case "ip", "inner_product":
		return MetricInnerProduct, nil
	default:
		return 0, fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidArgument, s)
	}
}

// DistanceFunc computes the metric between two equal-length vectors.
type DistanceFunc func(a, b []float32) float32

// SquaredL2 computes the squared Euclidean distance.
// Assumes equal lengths (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Dot computes the dot product.
// Assumes equal lengths (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// newDistanceFunc returns the ranking function for the metric. Inner product is
// negated so that smaller is always better internally; callers that report raw
// scores undo the negation.
func newDistanceFunc(m Metric) DistanceFunc {
	if m == MetricInnerProduct {
		return func(a, b []float32) float32 { return -Dot(a, b) }
	}
	return SquaredL2
}
