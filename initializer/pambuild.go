package initializer

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/clustergo/distance"
)

// PAMBuild implements the greedy BUILD phase of PAM. The first medoid is the
// most central point (minimum summed distance to all others); every following
// medoid is the candidate whose addition minimizes the total assignment cost
// of the whole dataset. Ties resolve to the lowest index, which makes the
// strategy fully deterministic.
//
// BUILD is O(k·n²) on top of a precomputed O(n²) pairwise table. Long runs on
// large n are expected, not a failure; progress is logged at most once per
// second when a Logger is set.
type PAMBuild struct {
	// Logger receives throttled progress logs. Nil disables progress logging.
	Logger *slog.Logger

	// Parallelism bounds the number of goroutines evaluating candidates.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Parallelism int
}

// Seed implements Initializer.
func (b PAMBuild) Seed(ctx context.Context, points [][]float64, k int, _ *rand.Rand, dist distance.Func) ([]int, error) {
	if err := checkSeedArgs(points, k); err != nil {
		return nil, err
	}

	n := len(points)
	pw := distance.NewPairwise(points, dist)

	progress := rate.Sometimes{Interval: time.Second}

	// First medoid: minimum summed distance to all other points.
	first := 0
	bestSum := math.Inf(1)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += pw.At(i, j)
		}
		if sum < bestSum {
			bestSum = sum
			first = j
		}
	}

	medoids := make([]int, 0, k)
	medoids = append(medoids, first)
	isMedoid := make([]bool, n)
	isMedoid[first] = true

	// nearest[i] is the distance from point i to its nearest chosen medoid.
	nearest := make([]float64, n)
	for i := 0; i < n; i++ {
		nearest[i] = pw.At(i, first)
	}

	// costs[c] is the total assignment cost of {medoids ∪ c}; filled per
	// round by parallel workers, reduced serially for lowest-index ties.
	costs := make([]float64, n)

	for len(medoids) < k {
		if err := b.evaluateCandidates(ctx, pw, isMedoid, nearest, costs); err != nil {
			return nil, err
		}

		next := -1
		best := math.Inf(1)
		for c := 0; c < n; c++ {
			if !isMedoid[c] && costs[c] < best {
				best = costs[c]
				next = c
			}
		}

		medoids = append(medoids, next)
		isMedoid[next] = true
		for i := 0; i < n; i++ {
			if d := pw.At(i, next); d < nearest[i] {
				nearest[i] = d
			}
		}

		if b.Logger != nil {
			progress.Do(func() {
				b.Logger.DebugContext(ctx, "pam build progress",
					"chosen", len(medoids),
					"k", k,
					"cost", best,
				)
			})
		}
	}

	return medoids, nil
}

// evaluateCandidates fills costs[c] with the total assignment cost of the
// current medoid set extended by candidate c, for every non-medoid c. All
// evaluations read the same nearest snapshot, so execution order is
// irrelevant.
func (b PAMBuild) evaluateCandidates(ctx context.Context, pw *distance.Pairwise, isMedoid []bool, nearest, costs []float64) error {
	n := pw.Len()
	workers := b.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for c := start; c < end; c++ {
				if isMedoid[c] {
					costs[c] = math.Inf(1)
					continue
				}
				var sum float64
				for i := 0; i < n; i++ {
					sum += math.Min(nearest[i], pw.At(i, c))
				}
				costs[c] = sum
			}
			return nil
		})
	}

	return g.Wait()
}

// Name implements Initializer.
func (PAMBuild) Name() string { return "pam-build" }
