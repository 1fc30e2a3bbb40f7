// Package sensitivity characterizes how quickly an optimum configuration
// degrades off-frequency ("criticality"): it re-evaluates one fixed
// geometry recipe at a small, symmetric set of frequency offsets around
// the nominal frequency.
package sensitivity

import (
	"context"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/units"
	"go.uber.org/zap"
)

// DefaultOffsetsKHz is the conventional symmetric offset set.
var DefaultOffsetsKHz = []float64{-100, -50, -25, 0, 25, 50, 100}

// AxisOffset is the axis name carrying the frequency offset in kHz.
const AxisOffset = "offsetKHz"

// Row is one off-frequency evaluation of the configuration under test.
type Row struct {
	OffsetKHz   float64
	FreqMHz     float64
	ForwardGain *float64
	FrontToBack *float64
	Err         error
}

// Analyzer re-runs a configuration across frequency offsets using the
// sweep engine, so evaluation order, failure recording, and cancellation
// behave exactly as in any other sweep.
type Analyzer struct {
	engine *sweep.Engine
}

// NewAnalyzer constructs an Analyzer around a solver.
func NewAnalyzer(s solver.Solver, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{engine: sweep.NewEngine(s, logger)}
}

// Analyze evaluates build at nominalMHz plus each offset, holding every
// other parameter fixed. A nil offsets slice takes the default
// symmetric set. Per-offset failures are recorded in the row, not fatal.
func (a *Analyzer) Analyze(ctx context.Context, name string, build func(freqMHz float64) (sweep.Case, error), nominalMHz float64, offsetsKHz []float64, ground solver.Ground, elevationCutDeg float64) ([]Row, error) {
	if offsetsKHz == nil {
		offsetsKHz = DefaultOffsetsKHz
	}

	spec := sweep.Spec{
		Name:            name,
		Axes:            []sweep.Axis{{Name: AxisOffset, Values: offsetsKHz}},
		Ground:          ground,
		Pattern:         sweep.AzimuthCutPattern,
		ElevationCutDeg: elevationCutDeg,
		Build: func(values map[string]float64) (sweep.Case, error) {
			return build(nominalMHz + units.KHzToMHz(values[AxisOffset]))
		},
	}

	table, err := a.engine.Run(ctx, spec)
	if table == nil {
		return nil, err
	}

	rows := make([]Row, len(table.Points))
	for i, p := range table.Points {
		rows[i] = Row{
			OffsetKHz:   p.Value(AxisOffset),
			FreqMHz:     nominalMHz + units.KHzToMHz(p.Value(AxisOffset)),
			ForwardGain: p.ForwardGain,
			FrontToBack: p.FrontToBack,
			Err:         p.Err,
		}
	}
	return rows, err
}
