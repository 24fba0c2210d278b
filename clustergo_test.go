package clustergo_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustergo"
	"github.com/hupe1980/clustergo/distance"
	"github.com/hupe1980/clustergo/initializer"
	"github.com/hupe1980/clustergo/quality"
)

// twoBlobs returns six points forming two tight, well-separated groups.
func twoBlobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}
}

// threeRows returns three vertical triples; within each, the middle point is
// the natural medoid.
func threeRows() [][]float64 {
	return [][]float64{
		{0, 0}, {0, 1}, {0, 2},
		{10, 0}, {10, 1}, {10, 2},
		{20, 0}, {20, 1}, {20, 2},
	}
}

// fixedSeeds is a test initializer that returns predetermined indexes.
type fixedSeeds []int

func (f fixedSeeds) Seed(_ context.Context, _ [][]float64, k int, _ *rand.Rand, _ distance.Func) ([]int, error) {
	return append([]int(nil), f[:k]...), nil
}

func (fixedSeeds) Name() string { return "fixed" }

func assertTotalAssignment(t *testing.T, res *clustergo.Result, n, k int) {
	t.Helper()
	require.Len(t, res.Assignment, n)
	for i, c := range res.Assignment {
		assert.GreaterOrEqual(t, c, 0, "point %d", i)
		assert.Less(t, c, k, "point %d", i)
	}
}

func assertMonotonicCosts(t *testing.T, costs []float64) {
	t.Helper()
	for i := 1; i < len(costs); i++ {
		assert.LessOrEqual(t, costs[i], costs[i-1]+1e-9, "iteration %d", i)
	}
}

func TestKMeans_TwoClusters(t *testing.T) {
	points := twoBlobs()

	engine, err := clustergo.NewKMeans(2, clustergo.WithSeed(1))
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), points)
	require.NoError(t, err)

	assertTotalAssignment(t, res, len(points), 2)
	assertMonotonicCosts(t, res.Costs)
	assert.True(t, res.Converged)
	assert.Nil(t, res.MedoidIndexes)

	// The two groups must land in different clusters.
	assert.Equal(t, res.Assignment[0], res.Assignment[1])
	assert.Equal(t, res.Assignment[0], res.Assignment[2])
	assert.Equal(t, res.Assignment[3], res.Assignment[4])
	assert.Equal(t, res.Assignment[3], res.Assignment[5])
	assert.NotEqual(t, res.Assignment[0], res.Assignment[3])
}

func TestKMeans_SeededDeterminism(t *testing.T) {
	points := twoBlobs()

	fit := func() *clustergo.Result {
		engine, err := clustergo.NewKMeans(2, clustergo.WithSeed(7))
		require.NoError(t, err)
		res, err := engine.Fit(context.Background(), points)
		require.NoError(t, err)
		return res
	}

	a, b := fit(), fit()
	assert.Equal(t, a.Assignment, b.Assignment)
	assert.Equal(t, a.Centers, b.Centers)
	assert.Equal(t, a.Cost, b.Cost)
}

func TestKMeans_ParallelMatchesSerial(t *testing.T) {
	points := twoBlobs()

	serial, err := clustergo.NewKMeans(2, clustergo.WithSeed(3))
	require.NoError(t, err)
	parallel, err := clustergo.NewKMeans(2, clustergo.WithSeed(3), clustergo.WithParallelism(4))
	require.NoError(t, err)

	a, err := serial.Fit(context.Background(), points)
	require.NoError(t, err)
	b, err := parallel.Fit(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, a.Assignment, b.Assignment)
	assert.InDelta(t, a.Cost, b.Cost, 1e-9)
}

func TestKMedians_SyntheticCenter(t *testing.T) {
	// The per-coordinate median of this set is (3,3), which is not a member.
	points := [][]float64{{1, 1}, {2, 2}, {3, 4}, {4, 3}, {5, 5}}

	engine, err := clustergo.NewKMedians(1, clustergo.WithSeed(11))
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), points)
	require.NoError(t, err)

	require.Len(t, res.Centers, 1)
	assert.Equal(t, []float64{3, 3}, res.Centers[0])
	assert.NotContains(t, points, res.Centers[0])
	assertMonotonicCosts(t, res.Costs)
}

func TestKMedoids_CentersAreDataPoints(t *testing.T) {
	points := twoBlobs()

	engine, err := clustergo.NewKMedoids(2, clustergo.WithSeed(5))
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), points)
	require.NoError(t, err)

	require.Len(t, res.MedoidIndexes, 2)
	for c, idx := range res.MedoidIndexes {
		assert.Equal(t, points[idx], res.Centers[c])
	}
	assertTotalAssignment(t, res, len(points), 2)
	assertMonotonicCosts(t, res.Costs)
	assert.True(t, res.Converged)
}

func TestSwapCounts_LloydVersusPAM(t *testing.T) {
	// Seed every cluster on a non-medoid member. Lloyd-medoids fixes all
	// three clusters in one round; PAM commits exactly one swap per round.
	points := threeRows()
	badSeeds := fixedSeeds{0, 3, 6}

	lloyd, err := clustergo.NewKMedoids(3, clustergo.WithInitializer(badSeeds))
	require.NoError(t, err)
	lloydRes, err := lloyd.Fit(context.Background(), points)
	require.NoError(t, err)

	require.NotEmpty(t, lloydRes.Swaps)
	assert.Equal(t, 3, lloydRes.Swaps[0])
	assert.Equal(t, []int{1, 4, 7}, lloydRes.MedoidIndexes)

	pamEngine, err := clustergo.NewPAM(3, clustergo.WithInitializer(badSeeds))
	require.NoError(t, err)
	pamRes, err := pamEngine.Fit(context.Background(), points)
	require.NoError(t, err)

	for round, swaps := range pamRes.Swaps {
		assert.LessOrEqual(t, swaps, 1, "round %d", round)
	}
	assert.Equal(t, 1, pamRes.Swaps[0])
	assert.ElementsMatch(t, []int{1, 4, 7}, pamRes.MedoidIndexes)
	assertMonotonicCosts(t, pamRes.Costs)
	assert.True(t, pamRes.Converged)
}

func TestPAM_NonConvergenceCap(t *testing.T) {
	// Three swaps are needed but only one round is allowed; the run must
	// surface best-so-far state instead of failing.
	points := threeRows()

	engine, err := clustergo.NewPAM(3,
		clustergo.WithInitializer(fixedSeeds{0, 3, 6}),
		clustergo.WithMaxSwapRounds(1),
	)
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), points)
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, clustergo.TerminationSwapCap, res.Termination)
	assertTotalAssignment(t, res, len(points), 3)
	assertMonotonicCosts(t, res.Costs)
}

func TestEmptyCluster_Reseed(t *testing.T) {
	// Both seeds share the same coordinates, so every point initially lands
	// in cluster 0 and cluster 1 must be reseeded.
	points := [][]float64{{0, 0}, {0, 0}, {10, 0}, {10, 0.5}}

	var buf bytes.Buffer
	logger := clustergo.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	engine, err := clustergo.NewKMeans(2,
		clustergo.WithInitializer(fixedSeeds{0, 1}),
		clustergo.WithLogger(logger),
	)
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), points)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Reseeds, 1)
	assert.Contains(t, buf.String(), "empty cluster reseeded")

	// After recovery both clusters hold points.
	sizes := make(map[int]int)
	for _, c := range res.Assignment {
		sizes[c]++
	}
	assert.Len(t, sizes, 2)
}

func TestFit_ValidationErrors(t *testing.T) {
	_, err := clustergo.New(0)
	assert.ErrorIs(t, err, clustergo.ErrInvalidK)

	_, err = clustergo.New(2, clustergo.WithMetric(distance.Metric(99)))
	assert.Error(t, err)

	engine, err := clustergo.NewKMeans(3)
	require.NoError(t, err)

	_, err = engine.Fit(context.Background(), [][]float64{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, initializer.ErrInsufficientPoints)

	_, err = engine.Fit(context.Background(), [][]float64{{0, 0}, {1, 1}, {2, 2, 2}})
	var dimErr *clustergo.ErrDimensionMismatch
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Actual)
}

func TestFit_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine, err := clustergo.NewKMeans(2, clustergo.WithSeed(1))
	require.NoError(t, err)

	_, err = engine.Fit(ctx, twoBlobs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCustomDistanceFunc(t *testing.T) {
	// Chebyshev distance as a caller-supplied metric.
	chebyshev := func(a, b []float64) float64 {
		var maxDiff float64
		for i := range a {
			d := a[i] - b[i]
			if d < 0 {
				d = -d
			}
			if d > maxDiff {
				maxDiff = d
			}
		}
		return maxDiff
	}

	engine, err := clustergo.NewKMedoids(2,
		clustergo.WithSeed(9),
		clustergo.WithDistanceFunc(chebyshev),
	)
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), twoBlobs())
	require.NoError(t, err)
	assertTotalAssignment(t, res, 6, 2)
	assert.NotEqual(t, res.Assignment[0], res.Assignment[3])
}

func TestFarthestPointInitializer_EndToEnd(t *testing.T) {
	engine, err := clustergo.NewKMeans(2,
		clustergo.WithSeed(2),
		clustergo.WithInitializer(initializer.FarthestPoint{}),
	)
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), twoBlobs())
	require.NoError(t, err)
	assert.NotEqual(t, res.Assignment[0], res.Assignment[3])
}

func TestOptimalK_WithEngine(t *testing.T) {
	points := threeRows()

	fit := func(ctx context.Context, k int) ([]int, float64, error) {
		engine, err := clustergo.NewPAM(k)
		if err != nil {
			return nil, 0, err
		}
		res, err := engine.Fit(ctx, points)
		if err != nil {
			return nil, 0, err
		}
		return res.Assignment, res.Cost, nil
	}

	bestK, scores, err := quality.OptimalK(context.Background(), points, 2, 4, distance.Euclidean, fit)
	require.NoError(t, err)
	assert.Equal(t, 3, bestK)
	assert.Len(t, scores, 3)

	costs, err := quality.ElbowCurve(context.Background(), 2, 4, fit)
	require.NoError(t, err)
	assert.Greater(t, costs[2], costs[3])
}

func TestMetricsCollector(t *testing.T) {
	collector := &clustergo.BasicMetricsCollector{}

	engine, err := clustergo.NewKMeans(2,
		clustergo.WithSeed(4),
		clustergo.WithMetricsCollector(collector),
	)
	require.NoError(t, err)

	res, err := engine.Fit(context.Background(), twoBlobs())
	require.NoError(t, err)

	_, err = engine.Predict(res, [][]float64{{0, 0.5}})
	require.NoError(t, err)

	stats := collector.GetStats()
	assert.EqualValues(t, 1, stats.FitCount)
	assert.EqualValues(t, 1, stats.SeedCount)
	assert.EqualValues(t, 1, stats.PredictCount)
	assert.Zero(t, stats.FitErrors)
	assert.Positive(t, stats.FitIterations)
}

func TestSwapPolicyString(t *testing.T) {
	assert.Equal(t, "pam", clustergo.SwapPAM.String())
	assert.Equal(t, "lloyd", clustergo.SwapLloyd.String())
	assert.True(t, strings.HasPrefix(clustergo.SwapPolicy(9).String(), "Unknown"))
}
