// Package initializer provides the seeding strategies for the clustering
// engine: uniform random selection, distance-weighted k-means++, the
// deterministic farthest-point variant, and PAM's greedy BUILD phase.
//
// All strategies return indexes into the input point set. The engine decides
// whether those indexes become detached coordinate copies (mean/median
// centers) or retain their identity as medoids.
package initializer

import (
	"context"
	"errors"
	"math/rand"

	"github.com/hupe1980/clustergo/distance"
)

// ErrInsufficientPoints is returned when fewer points than requested centers
// are available.
var ErrInsufficientPoints = errors.New("not enough points to seed k centers")

// Initializer seeds k distinct initial centers from a point set.
type Initializer interface {
	// Seed returns k distinct point indexes. The rng drives any randomized
	// selection so that seeded runs are reproducible.
	Seed(ctx context.Context, points [][]float64, k int, rng *rand.Rand, dist distance.Func) ([]int, error)

	// Name returns a stable identifier for logging and snapshots.
	Name() string
}

func checkSeedArgs(points [][]float64, k int) error {
	if k <= 0 || k > len(points) {
		return ErrInsufficientPoints
	}
	return nil
}

// weightedSample draws an index proportionally to weights, given their
// precomputed sum. Zero-weight entries are never selected.
func weightedSample(rng *rand.Rand, weights []float64, sum float64) int {
	target := rng.Float64() * sum
	var cum float64
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	// Fallback for accumulated rounding; pick the last nonzero weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}
