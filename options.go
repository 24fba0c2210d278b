package clustergo

import (
	"math/rand"
	"time"

	"github.com/hupe1980/clustergo/center"
	"github.com/hupe1980/clustergo/distance"
	"github.com/hupe1980/clustergo/initializer"
)

type options struct {
	metric        distance.Metric
	distFunc      distance.Func
	init          initializer.Initializer
	strategy      center.Strategy
	swapPolicy    SwapPolicy
	medoids       bool
	maxIterations int
	maxSwapRounds int
	rng           *rand.Rand
	logger        *Logger
	metrics       MetricsCollector
	parallelism   int
}

// Option configures an Engine.
type Option func(*options)

// WithMetric selects a built-in distance metric.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
		o.distFunc = nil
	}
}

// WithDistanceFunc installs a custom distance function. The function must be
// symmetric and non-negative; the recorded metric of persisted models is
// meaningless for custom functions.
func WithDistanceFunc(fn distance.Func) Option {
	return func(o *options) {
		if fn != nil {
			o.distFunc = fn
		}
	}
}

// WithInitializer selects the seeding strategy.
func WithInitializer(init initializer.Initializer) Option {
	return func(o *options) {
		if init != nil {
			o.init = init
		}
	}
}

// WithCenterStrategy selects the closed-form center update (mean or median).
// It is ignored by the medoid engines, which search swaps instead.
func WithCenterStrategy(s center.Strategy) Option {
	return func(o *options) {
		if s != nil {
			o.strategy = s
		}
	}
}

// WithMaxIterations caps the assign/update rounds of the mean and median
// engines. The medoid engines run to a cost fixed point instead; see
// WithMaxSwapRounds.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithMaxSwapRounds sets the sanity cap on medoid swap rounds. A run that
// hits the cap returns its best-so-far result with Converged=false rather
// than failing.
func WithMaxSwapRounds(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSwapRounds = n
		}
	}
}

// WithSeed makes all randomized behavior reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed)) //nolint:gosec
	}
}

// WithRand installs an explicit pseudo-random source. It is used serially;
// no synchronization is required.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsCollector configures a metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithParallelism bounds the goroutines used for assignment and swap
// evaluation. Values below 2 keep the engine fully serial. Results are
// identical either way; only the evaluation order of independent rows
// changes.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metric:        distance.MetricSquaredEuclidean,
		init:          initializer.KMeansPlusPlus{},
		strategy:      center.Mean{},
		swapPolicy:    SwapPAM,
		maxIterations: 20,
		maxSwapRounds: 100,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
		logger:        NoopLogger(),
		metrics:       NoopMetricsCollector{},
		parallelism:   1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
