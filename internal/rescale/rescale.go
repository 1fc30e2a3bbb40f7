// Package rescale finds the uniform geometric scale factor that drives
// feedpoint reactance to (near) zero at a target frequency, via a bounded
// bisection over repeated solver calls. Detune and spacing fractions are
// held fixed by the caller's build closure.
package rescale

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/constants"
	"go.uber.org/zap"
)

// ErrNonConvergence reports that the root-find could not bring |X| under
// tolerance within its iteration budget.
var ErrNonConvergence = errors.New("rescale did not converge")

// Result is the converged scale factor with the impedance observed there.
type Result struct {
	Scale      float64
	Impedance  solver.Impedance
	Iterations int
}

// Solver performs the bounded root-find. Tolerance must sit above the
// field solver's numeric noise near resonance or the search will not
// terminate.
type Solver struct {
	solver solver.Solver
	logger *zap.Logger

	// ToleranceOhms is the |X| acceptance threshold. Zero means the
	// default.
	ToleranceOhms float64
	// MaxIterations caps solver calls across bracketing and bisection.
	// Zero means the default.
	MaxIterations int
	// Lower and Upper bound the initial scale bracket. Zero values mean
	// 0.9 and 1.1.
	Lower, Upper float64
}

// NewSolver constructs a rescaling solver with defaults filled in.
func NewSolver(s solver.Solver, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{
		solver:        s,
		logger:        logger,
		ToleranceOhms: constants.RescaleToleranceOhms,
		MaxIterations: constants.RescaleMaxIterations,
		Lower:         0.9,
		Upper:         1.1,
	}
}

// Solve searches for the scale s with |X(s)| under tolerance. The build
// closure produces the full configuration at a candidate scale; the
// target frequency is baked into the returned Case. Deterministic given
// identical solver responses.
func (r *Solver) Solve(ctx context.Context, build func(scale float64) (sweep.Case, error), ground solver.Ground) (Result, error) {
	tol := r.ToleranceOhms
	if tol <= 0 {
		tol = constants.RescaleToleranceOhms
	}
	budget := r.MaxIterations
	if budget <= 0 {
		budget = constants.RescaleMaxIterations
	}
	lower, upper := r.Lower, r.Upper
	if lower <= 0 || upper <= lower {
		lower, upper = 0.9, 1.1
	}

	calls := 0
	reactance := func(scale float64) (float64, solver.Impedance, error) {
		calls++
		c, err := build(scale)
		if err != nil {
			return 0, solver.Impedance{}, err
		}
		res, err := r.solver.Evaluate(ctx, solver.Request{
			Geometry:   c.Geometry,
			Excitation: c.Excitation,
			FreqMHz:    c.FreqMHz,
			Ground:     ground,
			Angles:     solver.AzimuthCut(constants.DefaultElevationCut, 360.0),
		})
		if err != nil {
			return 0, solver.Impedance{}, err
		}
		return res.Impedance.X, res.Impedance, nil
	}

	xLo, zLo, err := reactance(lower)
	if err != nil {
		return Result{}, err
	}
	if math.Abs(xLo) < tol {
		return Result{Scale: lower, Impedance: zLo, Iterations: calls}, nil
	}
	xHi, zHi, err := reactance(upper)
	if err != nil {
		return Result{}, err
	}
	if math.Abs(xHi) < tol {
		return Result{Scale: upper, Impedance: zHi, Iterations: calls}, nil
	}

	// Widen the bracket until X changes sign across it. Reactance grows
	// with element length, so the root sits where the sign flips.
	for xLo*xHi > 0 {
		if calls >= budget {
			return Result{}, fmt.Errorf("%w: no sign change in scale bracket [%g, %g] after %d calls", ErrNonConvergence, lower, upper, calls)
		}
		width := upper - lower
		if xLo > 0 {
			lower -= width / 2
			if lower <= 0 {
				lower = 1e-3
			}
			xLo, zLo, err = reactance(lower)
		} else {
			upper += width / 2
			xHi, zHi, err = reactance(upper)
		}
		if err != nil {
			return Result{}, err
		}
	}

	for calls < budget {
		mid := lower + (upper-lower)/2
		xMid, zMid, err := reactance(mid)
		if err != nil {
			return Result{}, err
		}
		if math.Abs(xMid) < tol {
			r.logger.Debug("rescale converged",
				zap.String("op", "rescale.Solver.Solve"),
				zap.Float64("scale", mid),
				zap.Float64("reactance", xMid),
				zap.Int("iterations", calls),
			)
			return Result{Scale: mid, Impedance: zMid, Iterations: calls}, nil
		}
		if xMid*xLo < 0 {
			upper = mid
			xHi = xMid
		} else {
			lower = mid
			xLo = xMid
		}
	}
	return Result{}, fmt.Errorf("%w: |X| still above %g ohm after %d solver calls", ErrNonConvergence, tol, calls)
}
