// Package matching synthesizes the lumped reactive component that cancels
// feedpoint reactance for a 50-ohm reference feed. A pure numeric
// transform: R passes through unchanged.
package matching

import (
	"fmt"
	"math"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/pkg/constants"
)

// ComponentKind tags the matching component variant.
type ComponentKind int

const (
	// None means |X| is already within the match epsilon.
	None ComponentKind = iota
	// Capacitor cancels capacitive (negative) reactance; value in pF.
	Capacitor
	// Inductor cancels inductive (positive) reactance; value in nH.
	Inductor
)

// Component is the synthesized matching element.
type Component struct {
	Kind ComponentKind
	// Value is pF for Capacitor, nH for Inductor, 0 for None.
	Value float64
}

// String renders the component the way impedance tables report it.
func (c Component) String() string {
	switch c.Kind {
	case Capacitor:
		return fmt.Sprintf("C=%.1f pF", c.Value)
	case Inductor:
		return fmt.Sprintf("L=%.1f nH", c.Value)
	default:
		return "none"
	}
}

// Synthesize computes the component cancelling the reactance of z at the
// given frequency. Negative (capacitive) X takes a capacitor
// C = 1/(2*pi*f*|X|); positive (inductive) X takes an inductor
// L = X/(2*pi*f). |X| under the epsilon needs no match.
func Synthesize(z solver.Impedance, freqMHz float64) Component {
	if math.Abs(z.X) < constants.MatchEpsilonOhms {
		return Component{Kind: None}
	}
	omega := 2 * math.Pi * freqMHz * 1e6
	if z.X < 0 {
		farads := 1.0 / (omega * math.Abs(z.X))
		return Component{Kind: Capacitor, Value: farads * 1e12}
	}
	henries := z.X / omega
	return Component{Kind: Inductor, Value: henries * 1e9}
}

// CancelReactance returns the reactance the synthesized component
// presents at the given frequency, with sign opposite to the input
// reactance it was built for. Used to verify the round-trip law
// X + CancelReactance(...) ~ 0.
func (c Component) CancelReactance(freqMHz float64) float64 {
	omega := 2 * math.Pi * freqMHz * 1e6
	switch c.Kind {
	case Capacitor:
		farads := c.Value * 1e-12
		return 1.0 / (omega * farads)
	case Inductor:
		henries := c.Value * 1e-9
		return -omega * henries
	default:
		return 0
	}
}
