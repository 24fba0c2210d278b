package initializer

import (
	"context"
	"math/rand"

	"github.com/hupe1980/clustergo/distance"
)

// Random draws k distinct point indexes uniformly without replacement.
type Random struct{}

// Seed implements Initializer.
func (Random) Seed(_ context.Context, points [][]float64, k int, rng *rand.Rand, _ distance.Func) ([]int, error) {
	if err := checkSeedArgs(points, k); err != nil {
		return nil, err
	}

	return rng.Perm(len(points))[:k], nil
}

// Name implements Initializer.
func (Random) Name() string { return "random" }
