package rescale_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kd8watts/antsweep/internal/geometry"
	"github.com/kd8watts/antsweep/internal/rescale"
	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/testutil"
	"github.com/kd8watts/antsweep/pkg/units"
	"go.uber.org/zap"
)

func scaledDipole(freqMHz float64) func(scale float64) (sweep.Case, error) {
	return func(scale float64) (sweep.Case, error) {
		geo, exc, err := geometry.Dipole(
			units.ResonantDipoleLength(freqMHz),
			geometry.Params{HeightM: 10.0, Scale: scale},
		)
		if err != nil {
			return sweep.Case{}, err
		}
		return sweep.Case{Geometry: geo, Excitation: exc, FreqMHz: freqMHz}, nil
	}
}

func TestSolveConvergesToResonantScale(t *testing.T) {
	// The analytic stand-in has X proportional to the length offset from
	// resonance, so the root sits exactly at scale 1.
	rs := rescale.NewSolver(&testutil.AnalyticSolver{}, zap.NewNop())
	result, err := rs.Solve(context.Background(), scaledDipole(7.1), solver.GroundAverage)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if math.Abs(result.Scale-1.0) > 0.01 {
		t.Errorf("converged scale = %g, want about 1.0", result.Scale)
	}
	if math.Abs(result.Impedance.X) >= rs.ToleranceOhms {
		t.Errorf("reactance at converged scale = %g, want |X| < %g", result.Impedance.X, rs.ToleranceOhms)
	}
	if result.Iterations < 1 || result.Iterations > rs.MaxIterations {
		t.Errorf("iterations = %d outside [1, %d]", result.Iterations, rs.MaxIterations)
	}
}

func TestSolveConvergesFromOffsetBracket(t *testing.T) {
	// A too-long dipole resonates below the target frequency; the bracket
	// must widen downward until the sign flips.
	longDipole := func(scale float64) (sweep.Case, error) {
		geo, exc, err := geometry.Dipole(
			1.2*units.ResonantDipoleLength(7.1),
			geometry.Params{HeightM: 10.0, Scale: scale},
		)
		if err != nil {
			return sweep.Case{}, err
		}
		return sweep.Case{Geometry: geo, Excitation: exc, FreqMHz: 7.1}, nil
	}

	rs := rescale.NewSolver(&testutil.AnalyticSolver{}, zap.NewNop())
	result, err := rs.Solve(context.Background(), longDipole, solver.GroundAverage)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if math.Abs(result.Scale-1.0/1.2) > 0.01 {
		t.Errorf("converged scale = %g, want about %g", result.Scale, 1.0/1.2)
	}
}

// constReactanceSolver never crosses zero, so no scale can resonate.
type constReactanceSolver struct{}

func (constReactanceSolver) Evaluate(ctx context.Context, req solver.Request) (*solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &solver.Result{
		Impedance: solver.Impedance{R: 50, X: 50},
		Samples:   []solver.FarFieldSample{{ElevationDeg: 30, AzimuthDeg: 0, GainDBi: 2.15}},
	}, nil
}

func TestSolveNonConvergence(t *testing.T) {
	rs := rescale.NewSolver(constReactanceSolver{}, zap.NewNop())
	rs.MaxIterations = 20

	_, err := rs.Solve(context.Background(), scaledDipole(7.1), solver.GroundAverage)
	if !errors.Is(err, rescale.ErrNonConvergence) {
		t.Fatalf("expected ErrNonConvergence, got %v", err)
	}
}

func TestSolvePropagatesSolverFailure(t *testing.T) {
	rs := rescale.NewSolver(testutil.NewScriptedSolver(), zap.NewNop())

	_, err := rs.Solve(context.Background(), scaledDipole(7.1), solver.GroundAverage)
	var failure *solver.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected solver.Failure, got %v", err)
	}
}

func TestSolveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs := rescale.NewSolver(&testutil.AnalyticSolver{}, zap.NewNop())
	if _, err := rs.Solve(ctx, scaledDipole(7.1), solver.GroundAverage); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
