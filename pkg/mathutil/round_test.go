package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 11.0849, want: 11.08},
		{in: 17.2351, want: 17.24},
		{in: -55.734, want: -55.73},
		{in: 4.576, want: 4.58},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(0.05, -0.04, 0.1) {
		t.Error("expected values within tolerance")
	}
	if WithinTolerance(0.2, 0.0, 0.1) {
		t.Error("expected values outside tolerance")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(got) != len(want) {
		t.Fatalf("Linspace length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Linspace[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	if got := Linspace(3, 7, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("Linspace(3, 7, 1) = %v, want [3]", got)
	}
	if got := Linspace(0, 1, 0); got != nil {
		t.Errorf("Linspace with count 0 = %v, want nil", got)
	}
}

func TestArange(t *testing.T) {
	got := Arange(0, 5, 1)
	if len(got) != 6 {
		t.Fatalf("Arange(0, 5, 1) length = %d, want 6", len(got))
	}
	if got[0] != 0 || got[5] != 5 {
		t.Errorf("Arange endpoints = %g, %g, want 0, 5", got[0], got[5])
	}

	// Fractional steps must include the stop value despite float drift.
	got = Arange(0, 0.5, 0.05)
	if len(got) != 11 {
		t.Fatalf("Arange(0, 0.5, 0.05) length = %d, want 11", len(got))
	}
	if math.Abs(got[10]-0.5) > 1e-9 {
		t.Errorf("Arange last value = %g, want 0.5", got[10])
	}

	if got := Arange(0, 5, 0); got != nil {
		t.Errorf("Arange with zero step = %v, want nil", got)
	}
}
