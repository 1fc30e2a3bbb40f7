// Package metrics derives scalar performance metrics from structured
// far-field results: forward gain, front-to-back ratio, and the elevation
// of maximum gain.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/kd8watts/antsweep/internal/solver"
)

// ErrUndefined reports that a metric cannot be computed because the
// required samples are null directions (or absent). Callers report the
// metric as undefined rather than fabricating a number.
var ErrUndefined = errors.New("metric undefined")

const angleEps = 1e-6

// sampleAt finds the sample at the given elevation and azimuth.
func sampleAt(samples []solver.FarFieldSample, elDeg, azDeg float64) (solver.FarFieldSample, bool) {
	for _, s := range samples {
		if math.Abs(s.ElevationDeg-elDeg) < angleEps && math.Abs(s.AzimuthDeg-azDeg) < angleEps {
			return s, true
		}
	}
	return solver.FarFieldSample{}, false
}

// ForwardGain returns the gain at the given azimuth on a fixed-elevation
// cut. The sample being a null direction makes the metric undefined.
func ForwardGain(samples []solver.FarFieldSample, elDeg, azDeg float64) (float64, error) {
	s, ok := sampleAt(samples, elDeg, azDeg)
	if !ok {
		return 0, fmt.Errorf("%w: no sample at el=%g az=%g", ErrUndefined, elDeg, azDeg)
	}
	if s.Null {
		return 0, fmt.Errorf("%w: null direction at el=%g az=%g", ErrUndefined, elDeg, azDeg)
	}
	return s.GainDBi, nil
}

// FrontToBack returns forward minus backward gain in dB for the given
// boresight/back-lobe azimuth pair on a fixed-elevation cut. The
// subtraction is linear-dB arithmetic, matching the reporting convention
// everywhere in this system. Antisymmetric under swapping the two
// azimuths.
func FrontToBack(samples []solver.FarFieldSample, elDeg, fwdAzDeg, backAzDeg float64) (float64, error) {
	fwd, err := ForwardGain(samples, elDeg, fwdAzDeg)
	if err != nil {
		return 0, err
	}
	back, err := ForwardGain(samples, elDeg, backAzDeg)
	if err != nil {
		return 0, err
	}
	return fwd - back, nil
}

// ElevationOfMaxGain returns the elevation of the largest gain over an
// elevation cut at fixed azimuth 0. Ties break toward the smallest
// elevation angle. A cut that is entirely null directions is undefined.
func ElevationOfMaxGain(samples []solver.FarFieldSample) (float64, float64, error) {
	bestEl := 0.0
	bestGain := math.Inf(-1)
	found := false
	for _, s := range samples {
		if math.Abs(s.AzimuthDeg) >= angleEps || s.Null {
			continue
		}
		if !found || s.GainDBi > bestGain || (s.GainDBi == bestGain && s.ElevationDeg < bestEl) {
			bestEl = s.ElevationDeg
			bestGain = s.GainDBi
			found = true
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("%w: elevation cut has no usable samples", ErrUndefined)
	}
	return bestEl, bestGain, nil
}
