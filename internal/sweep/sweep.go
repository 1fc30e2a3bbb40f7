// Package sweep drives the geometry builder, solver, and metric
// extraction across multidimensional parameter grids, collecting tabular
// results. Grid traversal order is canonical (outer axis varies slowest)
// and the result table preserves it regardless of parallel completion
// order: results land in pre-indexed slots, never by append order.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kd8watts/antsweep/internal/geometry"
	"github.com/kd8watts/antsweep/internal/metrics"
	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Axis is one sweep dimension: a named, ordered list of parameter values.
type Axis struct {
	Name   string
	Values []float64
}

// Case is one fully built antenna configuration ready for the solver.
type Case struct {
	Geometry   geometry.WireGeometry
	Excitation geometry.ExcitationSpec
	FreqMHz    float64
}

// BuildFunc constructs the Case for one grid point. The map carries one
// value per axis, keyed by axis name. Degenerate parameters surface a
// geometry.ConfigurationError, which is recorded for the point without
// aborting the grid.
type BuildFunc func(values map[string]float64) (Case, error)

// PatternKind selects which far-field cut a sweep evaluates.
type PatternKind int

const (
	// AzimuthCutPattern samples a full azimuth circle at a fixed
	// elevation; points get forward gain and front-to-back ratio.
	AzimuthCutPattern PatternKind = iota
	// ElevationCutPattern samples elevation 0-180 at azimuth 0; points
	// get the elevation of maximum gain.
	ElevationCutPattern
)

// Spec describes one sweep: the grid axes, how to build each point, and
// the evaluation conditions shared by every point.
type Spec struct {
	Name    string
	Axes    []Axis
	Build   BuildFunc
	Ground  solver.Ground
	Pattern PatternKind

	// ElevationCutDeg is the fixed elevation for azimuth cuts. Zero means
	// the default.
	ElevationCutDeg float64
	// AzimuthStepDeg / ElevationStepDeg are the sample steps; zero means
	// the defaults.
	AzimuthStepDeg   float64
	ElevationStepDeg float64
	// ForwardAzDeg / BackAzDeg are the boresight and back-lobe azimuths.
	// BackAzDeg left zero defaults to the azimuth opposite the boresight.
	ForwardAzDeg float64
	BackAzDeg    float64
}

func (s *Spec) normalize() error {
	if len(s.Axes) == 0 {
		return fmt.Errorf("sweep %q has no axes", s.Name)
	}
	for _, ax := range s.Axes {
		if len(ax.Values) == 0 {
			return fmt.Errorf("sweep %q axis %q has no values", s.Name, ax.Name)
		}
	}
	if s.Build == nil {
		return fmt.Errorf("sweep %q has no build function", s.Name)
	}
	if s.ElevationCutDeg == 0 {
		s.ElevationCutDeg = constants.DefaultElevationCut
	}
	if s.AzimuthStepDeg == 0 {
		s.AzimuthStepDeg = constants.DefaultAzimuthStep
	}
	if s.ElevationStepDeg == 0 {
		s.ElevationStepDeg = constants.DefaultElevationStep
	}
	if s.BackAzDeg == 0 {
		s.BackAzDeg = math.Mod(s.ForwardAzDeg+180.0, 360.0)
	}
	return nil
}

// Point is one fully specified parameter combination and its derived
// results. Nil metric pointers mean failed or undefined; Err carries the
// recorded failure for inspectable gaps.
type Point struct {
	Index  int
	Values map[string]float64

	Impedance    *solver.Impedance
	ForwardGain  *float64
	FrontToBack  *float64
	MaxGainElDeg *float64
	MaxGainDBi   *float64
	Err          error
}

// Value returns the point's value on the named axis.
func (p Point) Value(axis string) float64 {
	return p.Values[axis]
}

// Table is the ordered result of one sweep. Insertion order equals grid
// traversal order and is deterministic across runs.
type Table struct {
	Name   string
	Axes   []Axis
	Points []Point
}

// Failures counts points with a recorded error.
func (t *Table) Failures() int {
	n := 0
	for _, p := range t.Points {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Engine owns a solver and evaluates sweep specs against it.
type Engine struct {
	solver solver.Solver
	logger *zap.Logger

	// Parallelism bounds concurrent solver invocations; values below 1
	// mean serial evaluation.
	Parallelism int

	// RetryFailures re-attempts a failed solver call once before
	// recording the gap.
	RetryFailures bool
}

// NewEngine constructs a sweep engine around the given solver.
func NewEngine(s solver.Solver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{solver: s, logger: logger, Parallelism: 1}
}

// Run evaluates every grid point of the spec. Individual point failures
// are recorded in the table and never abort the remaining grid. When ctx
// is canceled the engine stops issuing new points; already evaluated
// points remain valid and the context error is returned alongside the
// partial table.
func (e *Engine) Run(ctx context.Context, spec Spec) (*Table, error) {
	if err := spec.normalize(); err != nil {
		return nil, err
	}

	total := 1
	for _, ax := range spec.Axes {
		total *= len(ax.Values)
	}
	table := &Table{Name: spec.Name, Axes: spec.Axes, Points: make([]Point, total)}

	e.logger.Info("starting sweep",
		zap.String("op", "sweep.Engine.Run"),
		zap.String("sweep", spec.Name),
		zap.Int("points", total),
		zap.Int("axes", len(spec.Axes)),
	)

	limit := e.Parallelism
	if limit < 1 {
		limit = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			// Abort between grid points: mark the never-issued remainder.
			for j := i; j < total; j++ {
				table.Points[j] = Point{Index: j, Values: gridValues(spec.Axes, j), Err: err}
			}
			_ = g.Wait()
			e.logger.Warn("sweep aborted",
				zap.String("op", "sweep.Engine.Run"),
				zap.String("sweep", spec.Name),
				zap.Int("completed", i),
				zap.Error(err),
			)
			return table, err
		}
		idx := i
		g.Go(func() error {
			table.Points[idx] = e.evaluatePoint(ctx, spec, idx)
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Info("sweep complete",
		zap.String("op", "sweep.Engine.Run"),
		zap.String("sweep", spec.Name),
		zap.Int("points", total),
		zap.Int("failures", table.Failures()),
	)
	return table, nil
}

// gridValues decodes a traversal index into per-axis values. The first
// axis varies slowest, the last fastest.
func gridValues(axes []Axis, index int) map[string]float64 {
	values := make(map[string]float64, len(axes))
	rem := index
	for i := len(axes) - 1; i >= 0; i-- {
		ax := axes[i]
		values[ax.Name] = ax.Values[rem%len(ax.Values)]
		rem /= len(ax.Values)
	}
	return values
}

// evaluatePoint builds and solves one grid point, extracting the metrics
// the pattern kind supports. One solver call per point.
func (e *Engine) evaluatePoint(ctx context.Context, spec Spec, index int) Point {
	point := Point{Index: index, Values: gridValues(spec.Axes, index)}

	c, err := spec.Build(point.Values)
	if err != nil {
		point.Err = err
		e.logger.Warn("grid point configuration rejected",
			zap.String("op", "sweep.Engine.evaluatePoint"),
			zap.String("sweep", spec.Name),
			zap.Int("index", index),
			zap.Error(err),
		)
		return point
	}

	var grid solver.AngleGrid
	switch spec.Pattern {
	case ElevationCutPattern:
		grid = solver.ElevationCut(spec.ElevationStepDeg)
	default:
		grid = solver.AzimuthCut(spec.ElevationCutDeg, spec.AzimuthStepDeg)
	}

	req := solver.Request{
		Geometry:   c.Geometry,
		Excitation: c.Excitation,
		FreqMHz:    c.FreqMHz,
		Ground:     spec.Ground,
		Angles:     grid,
	}

	res, err := e.solver.Evaluate(ctx, req)
	if err != nil && e.RetryFailures {
		var failure *solver.Failure
		if errors.As(err, &failure) && ctx.Err() == nil {
			res, err = e.solver.Evaluate(ctx, req)
		}
	}
	if err != nil {
		point.Err = err
		e.logger.Warn("grid point solver failure",
			zap.String("op", "sweep.Engine.evaluatePoint"),
			zap.String("sweep", spec.Name),
			zap.Int("index", index),
			zap.Error(err),
		)
		return point
	}

	z := res.Impedance
	point.Impedance = &z

	switch spec.Pattern {
	case ElevationCutPattern:
		el, gain, err := metrics.ElevationOfMaxGain(res.Samples)
		if err != nil {
			point.Err = err
			return point
		}
		point.MaxGainElDeg = &el
		point.MaxGainDBi = &gain
	default:
		fwd, err := metrics.ForwardGain(res.Samples, spec.ElevationCutDeg, spec.ForwardAzDeg)
		if err != nil {
			point.Err = err
			return point
		}
		fb, err := metrics.FrontToBack(res.Samples, spec.ElevationCutDeg, spec.ForwardAzDeg, spec.BackAzDeg)
		if err != nil {
			point.Err = err
			return point
		}
		point.ForwardGain = &fwd
		point.FrontToBack = &fb
	}
	return point
}
