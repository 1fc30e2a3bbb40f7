// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/kd8watts/antsweep/pkg/constants"
)

// Round rounds a value to two decimals, the precision used in result
// tables. Keeping a single rounding rule here keeps sweep output
// reproducible across runs.
func Round(val float64) float64 {
	return math.Round(val*constants.DisplayPrecision) / constants.DisplayPrecision
}

// WithinTolerance checks if two values are within a specified tolerance.
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Linspace returns count evenly spaced values from start to stop
// inclusive. A count of 1 yields just start.
func Linspace(start, stop float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float64{start}
	}
	vals := make([]float64, count)
	step := (stop - start) / float64(count-1)
	for i := range vals {
		vals[i] = start + float64(i)*step
	}
	vals[count-1] = stop
	return vals
}

// Arange returns values start, start+step, ... not exceeding stop (with a
// half-step slack to absorb floating point drift).
func Arange(start, stop, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var vals []float64
	for v := start; v <= stop+step/2; v += step {
		vals = append(vals, v)
	}
	return vals
}
