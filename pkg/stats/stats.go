// Package stats provides statistical utility functions for analyzers.
package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-quantile (0..1) of values using the empirical
// distribution. values need not be sorted and are not modified.
// Returns 0 if values is empty.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Ints converts integer samples to float64 for the gonum routines.
func Ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
