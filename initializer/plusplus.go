package initializer

import (
	"context"
	"math/rand"

	"github.com/hupe1980/clustergo/distance"
)

// KMeansPlusPlus implements distance-weighted k-means++ seeding: the first
// center is drawn uniformly, every following center is drawn from the
// remaining points with probability proportional to the squared distance to
// the nearest already-chosen center.
//
// When every remaining candidate coincides with a chosen center (all weights
// zero), selection falls back to uniform sampling over the unchosen points.
type KMeansPlusPlus struct{}

// Seed implements Initializer.
func (KMeansPlusPlus) Seed(ctx context.Context, points [][]float64, k int, rng *rand.Rand, dist distance.Func) ([]int, error) {
	if err := checkSeedArgs(points, k); err != nil {
		return nil, err
	}

	n := len(points)
	seeds := make([]int, 0, k)
	chosen := make([]bool, n)

	first := rng.Intn(n)
	seeds = append(seeds, first)
	chosen[first] = true

	// weights[i] tracks the squared distance from point i to its nearest
	// chosen center, updated incrementally as centers are added.
	weights := make([]float64, n)
	var sum float64
	for i, p := range points {
		d := dist(p, points[first])
		weights[i] = d * d
		sum += weights[i]
	}

	for len(seeds) < k {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next int
		if sum == 0 {
			next = uniformUnchosen(rng, chosen)
		} else {
			next = weightedSample(rng, weights, sum)
		}
		seeds = append(seeds, next)
		chosen[next] = true

		sum = 0
		for i, p := range points {
			d := dist(p, points[next])
			if d2 := d * d; d2 < weights[i] {
				weights[i] = d2
			}
			sum += weights[i]
		}
	}

	return seeds, nil
}

// Name implements Initializer.
func (KMeansPlusPlus) Name() string { return "kmeans++" }

func uniformUnchosen(rng *rand.Rand, chosen []bool) int {
	remaining := make([]int, 0, len(chosen))
	for i, c := range chosen {
		if !c {
			remaining = append(remaining, i)
		}
	}
	return remaining[rng.Intn(len(remaining))]
}

// FarthestPoint is the deterministic cousin of k-means++: after a uniformly
// random first center, every following center is the point farthest from its
// nearest chosen center (argmax instead of a weighted draw).
//
// This is not k-means++. The argmax chases extreme points, so the strategy is
// prone to seeding on outliers; prefer KMeansPlusPlus unless reproducible
// seeding without a fixed rng seed is required.
type FarthestPoint struct{}

// Seed implements Initializer.
func (FarthestPoint) Seed(ctx context.Context, points [][]float64, k int, rng *rand.Rand, dist distance.Func) ([]int, error) {
	if err := checkSeedArgs(points, k); err != nil {
		return nil, err
	}

	n := len(points)
	seeds := make([]int, 0, k)
	chosen := make([]bool, n)

	first := rng.Intn(n)
	seeds = append(seeds, first)
	chosen[first] = true

	nearest := make([]float64, n)
	for i, p := range points {
		nearest[i] = dist(p, points[first])
	}

	for len(seeds) < k {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Farthest remaining point; ties resolve to the lowest index.
		next := -1
		best := -1.0
		for i := range points {
			if !chosen[i] && nearest[i] > best {
				best = nearest[i]
				next = i
			}
		}
		seeds = append(seeds, next)
		chosen[next] = true

		for i, p := range points {
			if d := dist(p, points[next]); d < nearest[i] {
				nearest[i] = d
			}
		}
	}

	return seeds, nil
}

// Name implements Initializer.
func (FarthestPoint) Name() string { return "farthest-point" }
