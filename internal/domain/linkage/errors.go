package linkage

import "errors"

var (
	// ErrEmptyCluster is returned when either collection has no points.
	ErrEmptyCluster = errors.New("empty cluster")
	// ErrDimensionMismatch is returned by the built-in metrics for vectors of
	// different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
