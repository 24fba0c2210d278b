package clustergo

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/clustergo/center"
	"github.com/hupe1980/clustergo/distance"
	"github.com/hupe1980/clustergo/initializer"
)

// SwapPolicy selects how the medoid engines search for improving swaps.
type SwapPolicy int

const (
	// SwapPAM considers every non-medoid in the dataset as a replacement for
	// every medoid and commits only the single best strictly-improving swap
	// per round.
	SwapPAM SwapPolicy = iota

	// SwapLloyd restricts each medoid's replacement candidates to the points
	// currently assigned to its cluster and lets every cluster commit its
	// own best strictly-improving swap, so up to k swaps happen per round.
	SwapLloyd
)

func (p SwapPolicy) String() string {
	switch p {
	case SwapPAM:
		return "pam"
	case SwapLloyd:
		return "lloyd"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Termination describes why a fit stopped.
type Termination string

const (
	// TerminationMaxIterations: the configured iteration cap was reached.
	TerminationMaxIterations Termination = "MaxIterations"

	// TerminationStability: no point changed cluster between iterations.
	TerminationStability Termination = "ClusterStability"

	// TerminationFixedPoint: no strictly-improving medoid swap exists.
	TerminationFixedPoint Termination = "CostFixedPoint"

	// TerminationSwapCap: the medoid swap search hit its sanity cap before
	// reaching a fixed point. The result carries the best state found.
	TerminationSwapCap Termination = "SwapRoundCap"
)

// Result is the output of a completed fit.
type Result struct {
	// Assignment maps each point index to a cluster id in [0, k).
	Assignment []int

	// Centers holds the final center coordinates, one per cluster.
	Centers [][]float64

	// MedoidIndexes holds, for the medoid engines, the point index behind
	// each center. Nil for synthetic (mean/median) centers.
	MedoidIndexes []int

	// Cost is the sum over all points of the distance to the assigned
	// center, consistent with the returned Assignment and Centers.
	Cost float64

	// Iterations counts completed assign/update or swap rounds.
	Iterations int

	// Converged reports whether the run reached its stopping rule rather
	// than the medoid swap-round sanity cap.
	Converged bool

	// Termination records which stopping rule fired.
	Termination Termination

	// Costs and Changes record the per-iteration total cost and number of
	// reassigned points, in iteration order.
	Costs   []float64
	Changes []int

	// Swaps records, for the medoid engines, the number of swaps committed
	// per round.
	Swaps []int

	// Reseeds counts empty-cluster recoveries.
	Reseeds int
}

// Engine partitions a point set into k clusters with a configurable
// initializer, center strategy, and distance metric. An Engine is stateless
// across runs: Fit may be called repeatedly, with different data each time.
type Engine struct {
	k    int
	opts options
	dist distance.Func
}

// New creates an Engine with the given options. The zero configuration is
// k-means: squared-Euclidean metric, k-means++ seeding, mean centers.
func New(k int, optFns ...Option) (*Engine, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	o := applyOptions(optFns)

	dist := o.distFunc
	if dist == nil {
		fn, err := distance.Provider(o.metric)
		if err != nil {
			return nil, err
		}
		dist = fn
	}

	return &Engine{k: k, opts: o, dist: dist}, nil
}

// NewKMeans creates a k-means engine: mean centers under the
// squared-Euclidean metric with k-means++ seeding.
func NewKMeans(k int, optFns ...Option) (*Engine, error) {
	return New(k, optFns...)
}

// NewKMedians creates a k-medians engine: per-coordinate median centers
// under the Manhattan metric with random seeding.
func NewKMedians(k int, optFns ...Option) (*Engine, error) {
	defaults := []Option{
		WithMetric(distance.MetricManhattan),
		WithCenterStrategy(center.Median{}),
		WithInitializer(initializer.Random{}),
	}
	return New(k, append(defaults, optFns...)...)
}

// NewKMedoids creates a Lloyd-style k-medoids engine: centers constrained to
// data points, per-cluster swap search, random seeding, Euclidean metric.
func NewKMedoids(k int, optFns ...Option) (*Engine, error) {
	defaults := []Option{
		WithMetric(distance.MetricEuclidean),
		WithInitializer(initializer.Random{}),
		withMedoids(SwapLloyd),
	}
	return New(k, append(defaults, optFns...)...)
}

// NewPAM creates a PAM engine: greedy BUILD seeding followed by the
// exhaustive single-best-swap search, Euclidean metric.
func NewPAM(k int, optFns ...Option) (*Engine, error) {
	defaults := []Option{
		WithMetric(distance.MetricEuclidean),
		WithInitializer(initializer.PAMBuild{}),
		withMedoids(SwapPAM),
	}
	return New(k, append(defaults, optFns...)...)
}

func withMedoids(policy SwapPolicy) Option {
	return func(o *options) {
		o.medoids = true
		o.swapPolicy = policy
	}
}

// K returns the configured cluster count.
func (e *Engine) K() int { return e.k }

// Fit partitions points into k clusters.
//
// Validation failures (non-positive k is rejected in New; here: fewer points
// than clusters, mismatched dimensionality) are reported before any
// iteration begins. A medoid run that exhausts its swap-round cap is not an
// error: the best-so-far result is returned with Converged=false.
func (e *Engine) Fit(ctx context.Context, points [][]float64) (res *Result, err error) {
	start := time.Now()
	defer func() {
		iterations := 0
		if res != nil {
			iterations = res.Iterations
		}
		e.opts.metrics.RecordFit(e.k, iterations, time.Since(start), err)
	}()

	if e.k > len(points) {
		return nil, fmt.Errorf("%w: k=%d, n=%d", initializer.ErrInsufficientPoints, e.k, len(points))
	}
	dim, err := validateDims(points)
	if err != nil {
		return nil, err
	}

	logger := e.opts.logger.WithK(e.k).WithDimension(dim)

	seedStart := time.Now()
	seeds, err := e.opts.init.Seed(ctx, points, e.k, e.opts.rng, e.dist)
	e.opts.metrics.RecordSeed(e.opts.init.Name(), time.Since(seedStart), err)
	logger.LogSeed(ctx, e.opts.init.Name(), seeds, err)
	if err != nil {
		return nil, err
	}

	if e.opts.medoids {
		res, err = e.fitMedoids(ctx, logger, points, seeds)
	} else {
		res, err = e.fitCenters(ctx, logger, points, seeds)
	}
	if err != nil {
		return nil, err
	}

	logger.LogFit(ctx, res.Iterations, res.Cost, res.Converged)

	return res, nil
}

// fitCenters runs the assign/update loop for the synthetic-center
// strategies. The loop runs for the configured iteration cap, with an early
// stop once no point changes cluster.
func (e *Engine) fitCenters(ctx context.Context, logger *Logger, points [][]float64, seeds []int) (*Result, error) {
	centers := make([][]float64, len(seeds))
	for c, idx := range seeds {
		centers[c] = slices.Clone(points[idx])
	}

	assignment := make([]int, len(points))
	res := &Result{Termination: TerminationMaxIterations, Converged: true}

	for iter := 0; iter < e.opts.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changes, cost, err := e.assignCenters(ctx, points, centers, assignment)
		if err != nil {
			return nil, err
		}
		res.Iterations = iter + 1
		res.Costs = append(res.Costs, cost)
		res.Changes = append(res.Changes, changes)

		if changes == 0 && iter > 0 {
			res.Termination = TerminationStability
			break
		}

		if err := e.updateCenters(ctx, logger, points, centers, assignment, res); err != nil {
			return nil, err
		}
	}

	// One final pass so the returned assignment and cost match the centers
	// produced by the last update.
	_, cost, err := e.assignCenters(ctx, points, centers, assignment)
	if err != nil {
		return nil, err
	}

	res.Assignment = assignment
	res.Centers = centers
	res.Cost = cost

	return res, nil
}

// assignCenters assigns every point to its nearest center, ties resolving to
// the lowest center index. It returns the number of points that changed
// cluster and the total cost. All rows are computed against the same fixed
// centers, so the parallel path is order-independent.
func (e *Engine) assignCenters(ctx context.Context, points, centers [][]float64, assignment []int) (int, float64, error) {
	if e.opts.parallelism < 2 {
		m := distance.NewMatrix(points, centers, e.dist)
		var changes int
		var cost float64
		for i := range points {
			best, d := m.NearestInRow(i)
			if assignment[i] != best {
				assignment[i] = best
				changes++
			}
			cost += d
		}
		return changes, cost, nil
	}

	n := len(points)
	workers := e.opts.parallelism
	chunk := (n + workers - 1) / workers
	nchunks := (n + chunk - 1) / chunk

	changesPer := make([]int, nchunks)
	costPer := make([]float64, nchunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ci := 0; ci < nchunks; ci++ {
		ci := ci
		start := ci * chunk
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				best := 0
				minDist := e.dist(points[i], centers[0])
				for j := 1; j < len(centers); j++ {
					if d := e.dist(points[i], centers[j]); d < minDist {
						minDist = d
						best = j
					}
				}
				if assignment[i] != best {
					assignment[i] = best
					changesPer[ci]++
				}
				costPer[ci] += minDist
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	var changes int
	var cost float64
	for ci := 0; ci < nchunks; ci++ {
		changes += changesPer[ci]
		cost += costPer[ci]
	}
	return changes, cost, nil
}

// updateCenters recomputes every cluster's center with the configured
// strategy. An empty cluster is reseeded from the point farthest from its
// assigned center (lowest index on ties) and logged, never left undefined.
func (e *Engine) updateCenters(ctx context.Context, logger *Logger, points, centers [][]float64, assignment []int, res *Result) error {
	members := make([][][]float64, len(centers))
	for i, p := range points {
		c := assignment[i]
		members[c] = append(members[c], p)
	}

	for c := range centers {
		if len(members[c]) == 0 {
			far := e.farthestFromAssigned(points, centers, assignment)
			centers[c] = slices.Clone(points[far])
			res.Reseeds++
			logger.LogEmptyCluster(ctx, c, far)
			continue
		}

		updated, err := e.opts.strategy.Update(members[c])
		if err != nil {
			return err
		}
		centers[c] = updated
	}

	return nil
}

// farthestFromAssigned returns the index of the point with the greatest
// distance to its currently assigned center.
func (e *Engine) farthestFromAssigned(points, centers [][]float64, assignment []int) int {
	far := 0
	best := -1.0
	for i, p := range points {
		if d := e.dist(p, centers[assignment[i]]); d > best {
			best = d
			far = i
		}
	}
	return far
}

// fitMedoids runs the swap search for the medoid engines on a precomputed
// pairwise table. Each round evaluates swap candidates against a fixed
// snapshot of the current medoids, commits per the configured policy, and
// stops at the first round with no strictly-improving swap.
func (e *Engine) fitMedoids(ctx context.Context, logger *Logger, points [][]float64, seeds []int) (*Result, error) {
	n := len(points)
	pw := distance.NewPairwise(points, e.dist)

	medoids := slices.Clone(seeds)
	assignment := make([]int, n)

	changes, cost := assignMedoids(pw, medoids, assignment, true)
	res := &Result{}
	res.Costs = append(res.Costs, cost)
	res.Changes = append(res.Changes, changes)

	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if round >= e.opts.maxSwapRounds {
			res.Termination = TerminationSwapCap
			logger.LogNonConvergence(ctx, round, cost)
			break
		}

		var swaps int
		var err error
		switch e.opts.swapPolicy {
		case SwapLloyd:
			swaps, err = e.lloydSwapRound(ctx, pw, medoids, assignment)
		default:
			swaps, err = e.pamSwapRound(ctx, pw, medoids, cost)
		}
		if err != nil {
			return nil, err
		}

		res.Iterations = round + 1
		res.Swaps = append(res.Swaps, swaps)

		if swaps == 0 {
			res.Termination = TerminationFixedPoint
			res.Converged = true
			break
		}

		changes, cost = assignMedoids(pw, medoids, assignment, false)
		res.Costs = append(res.Costs, cost)
		res.Changes = append(res.Changes, changes)
	}

	centers := make([][]float64, len(medoids))
	for c, idx := range medoids {
		centers[c] = slices.Clone(points[idx])
	}

	res.Assignment = assignment
	res.Centers = centers
	res.MedoidIndexes = medoids
	res.Cost = cost

	return res, nil
}

// assignMedoids assigns every point to its nearest medoid (ties to the
// lowest medoid position) and returns the reassignment count and total cost.
func assignMedoids(pw *distance.Pairwise, medoids []int, assignment []int, initial bool) (int, float64) {
	var changes int
	var cost float64
	for i := 0; i < pw.Len(); i++ {
		best, d := pw.NearestOf(i, medoids)
		if initial || assignment[i] != best {
			assignment[i] = best
			changes++
		}
		cost += d
	}
	return changes, cost
}

// pamSwapRound evaluates every (medoid, non-medoid) replacement against the
// full dataset and commits the single best swap if it strictly lowers the
// total cost. Returns the number of swaps committed (0 or 1).
//
// Per point it keeps the nearest and second-nearest medoid distances, so one
// swap evaluation is a single pass over the points instead of a nested
// minimum over the whole medoid set.
func (e *Engine) pamSwapRound(ctx context.Context, pw *distance.Pairwise, medoids []int, curCost float64) (int, error) {
	n := pw.Len()
	k := len(medoids)

	isMedoid := make([]bool, n)
	for _, m := range medoids {
		isMedoid[m] = true
	}

	// Nearest and second-nearest medoid distance per point, computed once
	// against the round's fixed medoid snapshot.
	d1 := make([]float64, n)
	i1 := make([]int, n)
	d2 := make([]float64, n)
	for i := 0; i < n; i++ {
		d1[i] = math.Inf(1)
		d2[i] = math.Inf(1)
		for m, idx := range medoids {
			d := pw.At(i, idx)
			switch {
			case d < d1[i]:
				d2[i] = d1[i]
				d1[i], i1[i] = d, m
			case d < d2[i]:
				d2[i] = d
			}
		}
	}

	// costs[c*k+m] is the total cost after replacing medoid position m with
	// candidate point c.
	costs := make([]float64, n*k)
	for i := range costs {
		costs[i] = math.Inf(1)
	}

	workers := max(e.opts.parallelism, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for c := start; c < end; c++ {
				if isMedoid[c] {
					continue
				}
				for m := 0; m < k; m++ {
					var sum float64
					for i := 0; i < n; i++ {
						keep := d1[i]
						if i1[i] == m {
							keep = d2[i]
						}
						sum += math.Min(keep, pw.At(i, c))
					}
					costs[c*k+m] = sum
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	bestC, bestM := -1, -1
	best := curCost
	for c := 0; c < n; c++ {
		for m := 0; m < k; m++ {
			if costs[c*k+m] < best {
				best = costs[c*k+m]
				bestC, bestM = c, m
			}
		}
	}

	if bestC < 0 {
		return 0, nil
	}
	medoids[bestM] = bestC
	return 1, nil
}

// lloydSwapRound lets every cluster independently replace its medoid with
// the member that minimizes the within-cluster cost, committing only strict
// improvements. Returns the number of swaps committed (up to k). Clusters
// are disjoint, so the per-cluster searches are evaluated against the same
// snapshot and may run in parallel.
func (e *Engine) lloydSwapRound(ctx context.Context, pw *distance.Pairwise, medoids []int, assignment []int) (int, error) {
	k := len(medoids)

	members := make([][]int, k)
	for i := 0; i < pw.Len(); i++ {
		c := assignment[i]
		members[c] = append(members[c], i)
	}

	swapped := make([]bool, k)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.opts.parallelism, 1))
	for m := 0; m < k; m++ {
		m := m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			clusterCost := func(idx int) float64 {
				var sum float64
				for _, i := range members[m] {
					sum += pw.At(i, idx)
				}
				return sum
			}

			cur := clusterCost(medoids[m])
			bestIdx := -1
			best := cur
			for _, cand := range members[m] {
				if cand == medoids[m] {
					continue
				}
				if cost := clusterCost(cand); cost < best {
					best = cost
					bestIdx = cand
				}
			}
			if bestIdx >= 0 {
				medoids[m] = bestIdx
				swapped[m] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var swaps int
	for _, s := range swapped {
		if s {
			swaps++
		}
	}
	return swaps, nil
}
