package units

import (
	"math"
	"testing"
)

func TestFeetMetersRoundTrip(t *testing.T) {
	tests := []float64{1, 66, 88, 10.5}
	for _, ft := range tests {
		if got := MetersToFeet(FeetToMeters(ft)); math.Abs(got-ft) > 1e-12 {
			t.Errorf("round trip of %g ft = %g", ft, got)
		}
	}
	if got := FeetToMeters(1); got != 0.3048 {
		t.Errorf("FeetToMeters(1) = %g, want 0.3048", got)
	}
}

func TestWavelength(t *testing.T) {
	tests := []struct {
		freqMHz float64
		want    float64
	}{
		{freqMHz: 21.0, want: 14.2758},
		{freqMHz: 7.1, want: 42.2243},
		{freqMHz: 300.0, want: 0.9993},
	}
	for _, tt := range tests {
		if got := Wavelength(tt.freqMHz); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("Wavelength(%g) = %g, want about %g", tt.freqMHz, got, tt.want)
		}
	}
}

func TestResonantDipoleLengthIsHalfWave(t *testing.T) {
	if got, want := ResonantDipoleLength(14.0), Wavelength(14.0)/2; got != want {
		t.Errorf("ResonantDipoleLength(14) = %g, want %g", got, want)
	}
}

func TestKHzToMHz(t *testing.T) {
	if got := KHzToMHz(-50); got != -0.05 {
		t.Errorf("KHzToMHz(-50) = %g, want -0.05", got)
	}
}
