// Package solver defines the boundary to the external thin-wire field
// solver and normalizes its raw output into structured results. The
// solver is treated as a pure function of (geometry, excitation,
// frequency, ground, angle grid); orchestration code depends only on the
// Solver interface so it can be tested against deterministic stubs.
package solver

import (
	"context"
	"fmt"

	"github.com/kd8watts/antsweep/internal/geometry"
	"github.com/kd8watts/antsweep/pkg/constants"
)

// Impedance is the feedpoint impedance (R, X) in ohms for one
// (geometry, frequency) pair. R may carry small negative numerical noise
// near resonance; that is tolerated, not fatal.
type Impedance struct {
	R float64
	X float64
}

// FarFieldSample is one far-field gain sample. Null marks domain-correct
// singular directions where the solver emits a large negative sentinel;
// the raw sentinel value is preserved verbatim in GainDBi.
type FarFieldSample struct {
	ElevationDeg float64
	AzimuthDeg   float64
	GainDBi      float64
	Null         bool
}

// AngleGrid describes the requested far-field sample grid in degrees.
// Counts are the number of samples along each axis.
type AngleGrid struct {
	ElevationStart float64
	ElevationStep  float64
	ElevationCount int
	AzimuthStart   float64
	AzimuthStep    float64
	AzimuthCount   int
}

// ElevationCut returns a grid sampling elevation 0..180 degrees at the
// given step with azimuth fixed at 0.
func ElevationCut(stepDeg float64) AngleGrid {
	return AngleGrid{
		ElevationStep:  stepDeg,
		ElevationCount: int(180.0/stepDeg) + 1,
		AzimuthStep:    360.0,
		AzimuthCount:   1,
	}
}

// AzimuthCut returns a grid sampling a full azimuth circle at the given
// step with elevation fixed at elDeg.
func AzimuthCut(elDeg, stepDeg float64) AngleGrid {
	return AngleGrid{
		ElevationStart: elDeg,
		ElevationStep:  1.0,
		ElevationCount: 1,
		AzimuthStep:    stepDeg,
		AzimuthCount:   int(360.0/stepDeg) + 1,
	}
}

// Request is one solver invocation: a fully built geometry with its
// excitation, the frequency in MHz, a ground model, and the requested
// far-field angle grid.
type Request struct {
	Geometry   geometry.WireGeometry
	Excitation geometry.ExcitationSpec
	FreqMHz    float64
	Ground     Ground
	Angles     AngleGrid
}

// Result is the normalized solver output.
type Result struct {
	Impedance Impedance
	Samples   []FarFieldSample
}

// Solver evaluates one antenna configuration. Implementations must be
// deterministic for fixed inputs and safe for concurrent use, since sweep
// points may be evaluated in parallel.
type Solver interface {
	Evaluate(ctx context.Context, req Request) (*Result, error)
}

// Failure reports a failed or non-converged solver invocation together
// with the offending parameters. The sweep engine records it as a gap and
// continues.
type Failure struct {
	FreqMHz float64
	Ground  Ground
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("solver failure at %g MHz (ground %s): %v", f.FreqMHz, f.Ground, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// TagNulls marks samples at or below the sentinel threshold as null
// directions, preserving the raw gain value.
func TagNulls(samples []FarFieldSample) []FarFieldSample {
	for i := range samples {
		if samples[i].GainDBi <= constants.NullGainThreshold {
			samples[i].Null = true
		}
	}
	return samples
}
