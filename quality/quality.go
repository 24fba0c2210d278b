// Package quality provides post-clustering evaluation: per-point silhouette
// scores, total within-cluster cost, and the k-selection helpers built on
// them (mean-silhouette maximization and the elbow cost curve).
package quality

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/clustergo/distance"
)

// ErrAssignmentMismatch is returned when the assignment does not cover the
// point set one-to-one.
var ErrAssignmentMismatch = errors.New("assignment length does not match point count")

// Silhouette returns the per-point silhouette score in [-1, 1].
//
// For point i in cluster C, a(i) is the mean distance to the other members
// of C and b(i) is the smallest mean distance to any other cluster. Defined
// degenerate cases: a singleton cluster scores 0, and a zero denominator
// scores 0. With a single cluster there is no b(i) and every point scores 0.
func Silhouette(points [][]float64, assignment []int, fn distance.Func) ([]float64, error) {
	n := len(points)
	if len(assignment) != n {
		return nil, ErrAssignmentMismatch
	}

	clusters := make(map[int][]int)
	for i, c := range assignment {
		if c < 0 {
			return nil, fmt.Errorf("negative cluster id %d at point %d", c, i)
		}
		clusters[c] = append(clusters[c], i)
	}

	pw := distance.NewPairwise(points, fn)

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		own := clusters[assignment[i]]
		if len(own) == 1 || len(clusters) == 1 {
			continue // Defined as 0.
		}

		var intra float64
		for _, j := range own {
			if j != i {
				intra += pw.At(i, j)
			}
		}
		a := intra / float64(len(own)-1)

		b := math.Inf(1)
		for c, members := range clusters {
			if c == assignment[i] {
				continue
			}
			var sum float64
			for _, j := range members {
				sum += pw.At(i, j)
			}
			if mean := sum / float64(len(members)); mean < b {
				b = mean
			}
		}

		if den := math.Max(a, b); den > 0 {
			scores[i] = (b - a) / den
		}
	}

	return scores, nil
}

// MeanSilhouette returns the mean silhouette score across all points.
func MeanSilhouette(points [][]float64, assignment []int, fn distance.Func) (float64, error) {
	scores, err := Silhouette(points, assignment, fn)
	if err != nil {
		return 0, err
	}
	return stat.Mean(scores, nil), nil
}

// TotalCost returns the sum over all points of the distance to the assigned
// center. With the squared-Euclidean metric this is the WCSS objective.
func TotalCost(points, centers [][]float64, assignment []int, fn distance.Func) float64 {
	var cost float64
	for i, p := range points {
		cost += fn(p, centers[assignment[i]])
	}
	return cost
}

// FitFunc clusters the points into k groups and returns the assignment.
// It adapts an engine run for the k-selection helpers.
type FitFunc func(ctx context.Context, k int) (assignment []int, cost float64, err error)

// OptimalK fits every k in [minK, maxK] and returns the k with the highest
// mean silhouette, along with the score per k.
func OptimalK(ctx context.Context, points [][]float64, minK, maxK int, fn distance.Func, fit FitFunc) (int, map[int]float64, error) {
	if minK < 2 {
		minK = 2
	}
	if maxK > len(points) {
		maxK = len(points)
	}
	if maxK < minK {
		return 0, nil, fmt.Errorf("empty k range [%d, %d]", minK, maxK)
	}

	scores := make(map[int]float64, maxK-minK+1)
	bestK := minK
	bestScore := math.Inf(-1)
	for k := minK; k <= maxK; k++ {
		assignment, _, err := fit(ctx, k)
		if err != nil {
			return 0, nil, fmt.Errorf("fit k=%d: %w", k, err)
		}
		score, err := MeanSilhouette(points, assignment, fn)
		if err != nil {
			return 0, nil, err
		}
		scores[k] = score
		if score > bestScore {
			bestScore = score
			bestK = k
		}
	}

	return bestK, scores, nil
}

// ElbowCurve fits every k in [minK, maxK] and returns the total cost per k.
// The caller inspects the curve for the bend where additional clusters stop
// paying for themselves.
func ElbowCurve(ctx context.Context, minK, maxK int, fit FitFunc) (map[int]float64, error) {
	if minK < 1 || maxK < minK {
		return nil, fmt.Errorf("invalid k range [%d, %d]", minK, maxK)
	}

	costs := make(map[int]float64, maxK-minK+1)
	for k := minK; k <= maxK; k++ {
		_, cost, err := fit(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("fit k=%d: %w", k, err)
		}
		costs[k] = cost
	}

	return costs, nil
}
