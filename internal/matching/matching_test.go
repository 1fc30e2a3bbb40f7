package matching

import (
	"math"
	"testing"

	"github.com/kd8watts/antsweep/internal/solver"
)

func TestSynthesizeKinds(t *testing.T) {
	tests := []struct {
		name string
		z    solver.Impedance
		freq float64
		kind ComponentKind
	}{
		{name: "capacitive reactance takes a capacitor", z: solver.Impedance{R: 67.78, X: -55.73}, freq: 7.1, kind: Capacitor},
		{name: "inductive reactance takes an inductor", z: solver.Impedance{R: 40.0, X: 32.5}, freq: 21.0, kind: Inductor},
		{name: "near resonance needs no match", z: solver.Impedance{R: 50.0, X: 0.4}, freq: 14.0, kind: None},
		{name: "small negative reactance needs no match", z: solver.Impedance{R: 50.0, X: -0.9}, freq: 14.0, kind: None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Synthesize(tt.z, tt.freq)
			if c.Kind != tt.kind {
				t.Errorf("Synthesize(%+v, %g).Kind = %v, want %v", tt.z, tt.freq, c.Kind, tt.kind)
			}
			if tt.kind == None && c.Value != 0 {
				t.Errorf("None component carries value %g", c.Value)
			}
			if tt.kind != None && c.Value <= 0 {
				t.Errorf("component value must be positive, got %g", c.Value)
			}
		})
	}
}

func TestSynthesizeMagnitudes(t *testing.T) {
	// C = 1/(2*pi*f*|X|): 7.1 MHz, X = -55.73 ohm -> about 402.3 pF.
	c := Synthesize(solver.Impedance{R: 67.78, X: -55.73}, 7.1)
	if math.Abs(c.Value-402.3) > 0.5 {
		t.Errorf("capacitor value = %.1f pF, want about 402.3", c.Value)
	}

	// L = X/(2*pi*f): 21 MHz, X = 32.5 ohm -> about 246.3 nH.
	l := Synthesize(solver.Impedance{R: 40.0, X: 32.5}, 21.0)
	if math.Abs(l.Value-246.3) > 0.5 {
		t.Errorf("inductor value = %.1f nH, want about 246.3", l.Value)
	}
}

func TestSynthesizeCancelsReactance(t *testing.T) {
	tests := []struct {
		x    float64
		freq float64
	}{
		{x: -55.73, freq: 7.1},
		{x: -312.0, freq: 3.8},
		{x: 18.4, freq: 21.0},
		{x: 140.0, freq: 28.4},
	}
	for _, tt := range tests {
		c := Synthesize(solver.Impedance{R: 50, X: tt.x}, tt.freq)
		residual := tt.x + c.CancelReactance(tt.freq)
		if math.Abs(residual) > 1e-6 {
			t.Errorf("X=%g at %g MHz: residual reactance %g after match", tt.x, tt.freq, residual)
		}
	}
}

func TestComponentString(t *testing.T) {
	tests := []struct {
		c    Component
		want string
	}{
		{c: Component{Kind: Capacitor, Value: 402.3}, want: "C=402.3 pF"},
		{c: Component{Kind: Inductor, Value: 246.3}, want: "L=246.3 nH"},
		{c: Component{Kind: None}, want: "none"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
