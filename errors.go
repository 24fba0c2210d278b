package clustergo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotFitted is returned when a model operation requires a completed
	// fit.
	ErrNotFitted = errors.New("model has no centers")
)

// Seeding errors (notably initializer.ErrInsufficientPoints for k > n)
// surface unwrapped from the configured initializer.

// ErrDimensionMismatch indicates a point dimensionality mismatch.
// It is reported during input validation, before any iteration begins.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// validateDims checks that all points share one dimensionality and returns it.
func validateDims(points [][]float64) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, &ErrDimensionMismatch{Expected: 1, Actual: 0}
	}
	for _, p := range points {
		if len(p) != dim {
			return 0, &ErrDimensionMismatch{Expected: dim, Actual: len(p)}
		}
	}
	return dim, nil
}
