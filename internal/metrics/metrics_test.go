package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/kd8watts/antsweep/internal/solver"
)

func azimuthCut(elDeg float64, gains map[float64]float64) []solver.FarFieldSample {
	var samples []solver.FarFieldSample
	for az := 0.0; az <= 360.0; az += 5.0 {
		gain, ok := gains[az]
		if !ok {
			gain = 0.0
		}
		samples = append(samples, solver.FarFieldSample{ElevationDeg: elDeg, AzimuthDeg: az, GainDBi: gain})
	}
	return solver.TagNulls(samples)
}

func TestForwardGain(t *testing.T) {
	samples := azimuthCut(30, map[float64]float64{0: 11.08, 180: -6.16})
	got, err := ForwardGain(samples, 30, 0)
	if err != nil {
		t.Fatalf("ForwardGain returned error: %v", err)
	}
	if got != 11.08 {
		t.Errorf("ForwardGain = %g, want 11.08", got)
	}
}

func TestForwardGainMissingSample(t *testing.T) {
	samples := azimuthCut(30, nil)
	_, err := ForwardGain(samples, 45, 0)
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("expected ErrUndefined for missing elevation, got %v", err)
	}
}

func TestForwardGainNullDirection(t *testing.T) {
	samples := azimuthCut(30, map[float64]float64{0: -999.0})
	_, err := ForwardGain(samples, 30, 0)
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("expected ErrUndefined for null direction, got %v", err)
	}
}

func TestFrontToBack(t *testing.T) {
	samples := azimuthCut(30, map[float64]float64{0: 11.08, 180: -6.16})
	got, err := FrontToBack(samples, 30, 0, 180)
	if err != nil {
		t.Fatalf("FrontToBack returned error: %v", err)
	}
	if math.Abs(got-17.24) > 1e-9 {
		t.Errorf("FrontToBack = %g, want 17.24", got)
	}
}

func TestFrontToBackAntisymmetric(t *testing.T) {
	samples := azimuthCut(30, map[float64]float64{0: 8.5, 180: 3.2})
	fwd, err := FrontToBack(samples, 30, 0, 180)
	if err != nil {
		t.Fatalf("FrontToBack returned error: %v", err)
	}
	rev, err := FrontToBack(samples, 30, 180, 0)
	if err != nil {
		t.Fatalf("reversed FrontToBack returned error: %v", err)
	}
	if fwd != -rev {
		t.Errorf("FrontToBack not antisymmetric: %g vs %g", fwd, rev)
	}
}

func TestFrontToBackUndefinedWhenEitherEndpointNull(t *testing.T) {
	tests := []struct {
		name  string
		gains map[float64]float64
	}{
		{name: "null boresight", gains: map[float64]float64{0: -999.0, 180: 3.0}},
		{name: "null back lobe", gains: map[float64]float64{0: 8.0, 180: -250.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := azimuthCut(30, tt.gains)
			_, err := FrontToBack(samples, 30, 0, 180)
			if !errors.Is(err, ErrUndefined) {
				t.Fatalf("expected ErrUndefined, got %v", err)
			}
		})
	}
}

func elevationCut(gains map[float64]float64) []solver.FarFieldSample {
	var samples []solver.FarFieldSample
	for el := 0.0; el <= 180.0; el += 5.0 {
		gain, ok := gains[el]
		if !ok {
			gain = -999.0
		}
		samples = append(samples, solver.FarFieldSample{ElevationDeg: el, AzimuthDeg: 0, GainDBi: gain})
	}
	return solver.TagNulls(samples)
}

func TestElevationOfMaxGain(t *testing.T) {
	samples := elevationCut(map[float64]float64{15: 2.1, 25: 6.4, 30: 7.9, 45: 5.0})
	el, gain, err := ElevationOfMaxGain(samples)
	if err != nil {
		t.Fatalf("ElevationOfMaxGain returned error: %v", err)
	}
	if el != 30 || gain != 7.9 {
		t.Errorf("max gain at el=%g gain=%g, want el=30 gain=7.9", el, gain)
	}
}

func TestElevationOfMaxGainTieBreaksToSmallestElevation(t *testing.T) {
	samples := elevationCut(map[float64]float64{25: 7.9, 60: 7.9, 40: 3.0})
	el, _, err := ElevationOfMaxGain(samples)
	if err != nil {
		t.Fatalf("ElevationOfMaxGain returned error: %v", err)
	}
	if el != 25 {
		t.Errorf("tie resolved to el=%g, want 25", el)
	}

	// The tie-break is on elevation angle, not sample order.
	unsorted := []solver.FarFieldSample{
		{ElevationDeg: 60, AzimuthDeg: 0, GainDBi: 7.9},
		{ElevationDeg: 25, AzimuthDeg: 0, GainDBi: 7.9},
		{ElevationDeg: 40, AzimuthDeg: 0, GainDBi: 3.0},
	}
	el, _, err = ElevationOfMaxGain(unsorted)
	if err != nil {
		t.Fatalf("ElevationOfMaxGain returned error: %v", err)
	}
	if el != 25 {
		t.Errorf("unsorted tie resolved to el=%g, want 25", el)
	}
}

func TestElevationOfMaxGainSkipsNulls(t *testing.T) {
	// Sentinel rows carry huge negative values; they must never win even
	// when every real sample is negative.
	samples := elevationCut(map[float64]float64{20: -3.4, 35: -1.2})
	el, gain, err := ElevationOfMaxGain(samples)
	if err != nil {
		t.Fatalf("ElevationOfMaxGain returned error: %v", err)
	}
	if el != 35 || gain != -1.2 {
		t.Errorf("max gain at el=%g gain=%g, want el=35 gain=-1.2", el, gain)
	}
}

func TestElevationOfMaxGainAllNull(t *testing.T) {
	samples := elevationCut(nil)
	_, _, err := ElevationOfMaxGain(samples)
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("expected ErrUndefined for all-null cut, got %v", err)
	}
}
