package clustergo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordFit is called after each Fit. iterations counts completed
	// assign/update (or swap) rounds, err is nil if successful.
	RecordFit(k, iterations int, duration time.Duration, err error)

	// RecordSeed is called after the seeding phase.
	RecordSeed(strategy string, duration time.Duration, err error)

	// RecordPredict is called after each Predict.
	RecordPredict(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, int, time.Duration, error) {}

func (NoopMetricsCollector) RecordSeed(string, time.Duration, error) {}

func (NoopMetricsCollector) RecordPredict(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount        atomic.Int64
	FitErrors       atomic.Int64
	FitTotalNanos   atomic.Int64
	FitIterations   atomic.Int64
	SeedCount       atomic.Int64
	SeedTotalNanos  atomic.Int64
	PredictCount    atomic.Int64
	PredictErrors   atomic.Int64
	PredictedPoints atomic.Int64
}

// RecordFit implements MetricsCollector.
func (c *BasicMetricsCollector) RecordFit(_, iterations int, duration time.Duration, err error) {
	c.FitCount.Add(1)
	c.FitTotalNanos.Add(int64(duration))
	c.FitIterations.Add(int64(iterations))
	if err != nil {
		c.FitErrors.Add(1)
	}
}

// RecordSeed implements MetricsCollector.
func (c *BasicMetricsCollector) RecordSeed(_ string, duration time.Duration, _ error) {
	c.SeedCount.Add(1)
	c.SeedTotalNanos.Add(int64(duration))
}

// RecordPredict implements MetricsCollector.
func (c *BasicMetricsCollector) RecordPredict(count int, _ time.Duration, err error) {
	c.PredictCount.Add(1)
	c.PredictedPoints.Add(int64(count))
	if err != nil {
		c.PredictErrors.Add(1)
	}
}

// Stats is a point-in-time snapshot of a BasicMetricsCollector.
type Stats struct {
	FitCount      int64
	FitErrors     int64
	FitAvgNanos   int64
	FitIterations int64
	SeedCount     int64
	PredictCount  int64
}

// GetStats returns a snapshot of the collected metrics.
func (c *BasicMetricsCollector) GetStats() Stats {
	s := Stats{
		FitCount:      c.FitCount.Load(),
		FitErrors:     c.FitErrors.Load(),
		FitIterations: c.FitIterations.Load(),
		SeedCount:     c.SeedCount.Load(),
		PredictCount:  c.PredictCount.Load(),
	}
	if s.FitCount > 0 {
		s.FitAvgNanos = c.FitTotalNanos.Load() / s.FitCount
	}
	return s
}
