// Package distance provides the dissimilarity metrics used by the clustering
// algorithms, together with the dense and pairwise distance tables built on
// top of them.
package distance

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Func computes a scalar dissimilarity between two vectors.
// Implementations assume both vectors have the same length; dimensionality is
// validated by the engine before any computation starts.
type Func func(a, b []float64) float64

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// SquaredEuclidean returns the squared L2 distance between a and b.
// This is the k-means (WCSS) dissimilarity: the arithmetic mean is its exact
// per-cluster minimizer, which keeps the total cost non-increasing across
// update steps.
func SquaredEuclidean(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// Manhattan returns the L1 distance between a and b.
// The per-coordinate median is its exact per-cluster minimizer.
func Manhattan(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// Metric represents a built-in distance metric.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricSquaredEuclidean
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricSquaredEuclidean:
		return "SquaredEuclidean"
	case MetricManhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricSquaredEuclidean:
		return SquaredEuclidean, nil
	case MetricManhattan:
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
