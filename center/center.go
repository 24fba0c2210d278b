// Package center provides the closed-form center update strategies used by
// the clustering engine: the arithmetic mean (k-means) and the
// per-coordinate median (k-medians). Both produce synthetic centers that
// generally do not coincide with any input point; medoid selection is a swap
// search performed by the engine, not a closed-form update.
package center

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyCluster is returned when an update is requested for a cluster with
// no members.
var ErrEmptyCluster = errors.New("cluster has no members")

// Strategy computes a new synthetic center from the members of one cluster.
type Strategy interface {
	// Update returns the new center for the given members.
	Update(members [][]float64) ([]float64, error)

	// Name returns a stable identifier for logging and snapshots.
	Name() string
}

// Mean is the k-means update: the arithmetic mean of each coordinate.
type Mean struct{}

// Update implements Strategy.
func (Mean) Update(members [][]float64) ([]float64, error) {
	if len(members) == 0 {
		return nil, ErrEmptyCluster
	}

	c := make([]float64, len(members[0]))
	for _, m := range members {
		floats.Add(c, m)
	}
	floats.Scale(1/float64(len(members)), c)

	return c, nil
}

// Name implements Strategy.
func (Mean) Name() string { return "mean" }

// Median is the k-medians update: the per-coordinate median. The resulting
// center is a synthetic point that is generally not a member of the cluster.
type Median struct{}

// Update implements Strategy.
func (Median) Update(members [][]float64) ([]float64, error) {
	if len(members) == 0 {
		return nil, ErrEmptyCluster
	}

	dim := len(members[0])
	c := make([]float64, dim)
	col := make([]float64, len(members))
	for d := 0; d < dim; d++ {
		for i, m := range members {
			col[i] = m[d]
		}
		sort.Float64s(col)
		mid := len(col) / 2
		if len(col)%2 == 1 {
			c[d] = col[mid]
		} else {
			c[d] = (col[mid-1] + col[mid]) / 2
		}
	}

	return c, nil
}

// Name implements Strategy.
func (Median) Name() string { return "median" }
