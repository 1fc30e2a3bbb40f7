package testutil

import (
	"context"
	"math"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/pkg/units"
)

// AnalyticSolver is a closed-form deterministic stand-in for the field
// solver, good enough for exercising orchestration behavior: reactance
// varies linearly with element length around resonance, and a two-element
// array develops front/back asymmetry only when the second element is
// detuned. It is not a physical model.
type AnalyticSolver struct {
	// ReactanceSlope is ohms of X per unit of fractional length offset
	// from resonance. The default mimics a thin half-wave dipole.
	ReactanceSlope float64
}

// reactanceSlope returns the configured or default slope.
func (a *AnalyticSolver) reactanceSlope() float64 {
	if a.ReactanceSlope != 0 {
		return a.ReactanceSlope
	}
	return 430.0
}

// Evaluate implements solver.Solver.
func (a *AnalyticSolver) Evaluate(ctx context.Context, req solver.Request) (*solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	el0 := req.Geometry.Elements[0]
	length := math.Abs(el0.Y2 - el0.Y1)
	resonant := units.ResonantDipoleLength(req.FreqMHz)
	offset := length/resonant - 1.0
	z := solver.Impedance{R: 70.0 + 200.0*offset, X: a.reactanceSlope() * offset}

	grid := req.Angles
	var samples []solver.FarFieldSample
	if grid.ElevationCount > 1 {
		res := ElevationCutResult(grid.ElevationStep, 30.0, a.forwardGain(req, 0), z)
		samples = res.Samples
	} else {
		for i := 0; i < grid.AzimuthCount; i++ {
			az := grid.AzimuthStart + float64(i)*grid.AzimuthStep
			samples = append(samples, solver.FarFieldSample{
				ElevationDeg: grid.ElevationStart,
				AzimuthDeg:   az,
				GainDBi:      a.forwardGain(req, az),
			})
		}
	}
	return &solver.Result{Impedance: z, Samples: solver.TagNulls(samples)}, nil
}

// forwardGain computes an array-factor gain in dBi at the given azimuth.
// A single element radiates 2.15 dBi. A second element contributes a
// coupled current whose phase tracks its fractional detune, so equal
// lengths give a symmetric (F/B = 0) pattern.
func (a *AnalyticSolver) forwardGain(req solver.Request, azDeg float64) float64 {
	elements := req.Geometry.Elements
	if len(elements) == 1 {
		return 2.15
	}

	lam := units.Wavelength(req.FreqMHz)
	d := math.Abs(elements[1].X1 - elements[0].X1)
	len0 := math.Abs(elements[0].Y2 - elements[0].Y1)
	len1 := math.Abs(elements[1].Y2 - elements[1].Y1)
	detune := len1/len0 - 1.0

	// Second-element current: fed elements keep their feed phase,
	// parasitic elements couple at reduced magnitude with a
	// detune-dependent phase around 180 degrees.
	mag := 1.0
	phase := math.Pi * (1.0 + 4.0*detune)
	if len(req.Excitation.Feeds) > 1 {
		phase = req.Excitation.Feeds[1].PhaseDeg * math.Pi / 180.0
	} else {
		mag = 0.6
	}

	k := 2 * math.Pi / lam
	psi := k*d*math.Cos(azDeg*math.Pi/180.0) + phase
	af := math.Hypot(1+mag*math.Cos(psi), mag*math.Sin(psi))
	return 2.15 + 20*math.Log10(math.Max(af, 1e-6))
}
