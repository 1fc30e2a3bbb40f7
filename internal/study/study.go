// Package study translates a validated configuration into concrete sweep
// specs: it resolves lengths and spacings into meters, assembles the grid
// axes, and provides the per-point geometry builders the engines consume.
package study

import (
	"fmt"

	"github.com/kd8watts/antsweep/internal/config"
	"github.com/kd8watts/antsweep/internal/geometry"
	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/mathutil"
	"github.com/kd8watts/antsweep/pkg/units"
)

// Axis names used in sweep tables produced from a configuration.
const (
	AxisDetunePct     = "detunePct"
	AxisSpacingLambda = "spacingLambda"
	AxisHeightM       = "heightM"
	AxisBoomFt        = "boomFt"
	AxisLengthFt      = "lengthFt"
	AxisFreqMHz       = "freqMHz"
)

// Plan is a ready-to-run sweep spec plus the builders for follow-up
// analyses (criticality, rescaling) at a chosen point.
type Plan struct {
	Spec sweep.Spec

	conf *config.Configuration
}

// NewPlan assembles the sweep described by the configuration.
func NewPlan(conf *config.Configuration, ground solver.Ground) (*Plan, error) {
	p := &Plan{conf: conf}

	var axes []sweep.Axis
	if len(conf.Sweep.FrequenciesMHz) > 0 {
		axes = append(axes, sweep.Axis{Name: AxisFreqMHz, Values: conf.Sweep.FrequenciesMHz})
	}
	if len(conf.Sweep.LengthsFeet) > 0 {
		axes = append(axes, sweep.Axis{Name: AxisLengthFt, Values: conf.Sweep.LengthsFeet})
	}
	if detune := detuneValues(conf.Sweep); len(detune) > 0 {
		axes = append(axes, sweep.Axis{Name: AxisDetunePct, Values: detune})
	}
	if len(conf.Sweep.SpacingFractions) > 0 {
		axes = append(axes, sweep.Axis{Name: AxisSpacingLambda, Values: conf.Sweep.SpacingFractions})
	}
	if len(conf.Sweep.BoomFeet) > 0 {
		axes = append(axes, sweep.Axis{Name: AxisBoomFt, Values: conf.Sweep.BoomFeet})
	}
	if len(conf.Sweep.HeightsM) > 0 {
		axes = append(axes, sweep.Axis{Name: AxisHeightM, Values: conf.Sweep.HeightsM})
	}
	if len(axes) == 0 {
		// Nothing swept: evaluate the single configured point.
		axes = append(axes, sweep.Axis{Name: AxisDetunePct, Values: []float64{conf.Antenna.DetunePct}})
	}

	pattern := sweep.AzimuthCutPattern
	if conf.Simulation.Pattern == "elevation" {
		pattern = sweep.ElevationCutPattern
	}

	p.Spec = sweep.Spec{
		Name:             fmt.Sprintf("%s @ %g MHz (%s ground)", conf.Antenna.Kind, conf.Simulation.FrequencyMHz, conf.Simulation.Ground),
		Axes:             axes,
		Ground:           ground,
		Pattern:          pattern,
		ElevationCutDeg:  conf.Simulation.ElevationCutDeg,
		AzimuthStepDeg:   conf.Simulation.AzimuthStepDeg,
		ElevationStepDeg: conf.Simulation.ElevationStepDeg,
		Build: func(values map[string]float64) (sweep.Case, error) {
			freq := conf.Simulation.FrequencyMHz
			if f, ok := values[AxisFreqMHz]; ok {
				freq = f
			}
			return p.buildCase(values, freq, 1.0)
		},
	}
	return p, nil
}

// detuneValues expands the configured detune grid, either step-based or
// count-based.
func detuneValues(sw config.SweepConfig) []float64 {
	if sw.DetuneStopPct < sw.DetuneStartPct {
		return nil
	}
	if sw.DetuneSteps > 0 {
		return mathutil.Linspace(sw.DetuneStartPct, sw.DetuneStopPct, sw.DetuneSteps)
	}
	if sw.DetuneStepPct > 0 {
		return mathutil.Arange(sw.DetuneStartPct, sw.DetuneStopPct, sw.DetuneStepPct)
	}
	return nil
}

// drivenLength resolves the configured driven element length in meters,
// defaulting to the resonant half-wave length at the simulation
// frequency.
func (p *Plan) drivenLength() float64 {
	a := p.conf.Antenna
	switch {
	case a.DrivenLengthM > 0:
		return a.DrivenLengthM
	case a.DrivenLengthFeet > 0:
		return units.FeetToMeters(a.DrivenLengthFeet)
	case a.DrivenLengthLambda > 0:
		return a.DrivenLengthLambda * units.Wavelength(p.conf.Simulation.FrequencyMHz)
	default:
		return units.ResonantDipoleLength(p.conf.Simulation.FrequencyMHz)
	}
}

// spacing resolves element spacing in meters for a point, preferring the
// sweep axes over the fixed antenna configuration.
func (p *Plan) spacing(values map[string]float64) float64 {
	lam := units.Wavelength(p.conf.Simulation.FrequencyMHz)
	if frac, ok := values[AxisSpacingLambda]; ok {
		return frac * lam
	}
	if ft, ok := values[AxisBoomFt]; ok {
		return units.FeetToMeters(ft)
	}
	a := p.conf.Antenna
	switch {
	case a.SpacingM > 0:
		return a.SpacingM
	case a.SpacingFeet > 0:
		return units.FeetToMeters(a.SpacingFeet)
	case a.SpacingLambda > 0:
		return a.SpacingLambda * lam
	default:
		return 0
	}
}

// buildCase constructs the geometry for one point at the given frequency
// and scale factor.
func (p *Plan) buildCase(values map[string]float64, freqMHz, scale float64) (sweep.Case, error) {
	sim := p.conf.Simulation
	params := geometry.Params{
		Segments: sim.Segments,
		Radius:   sim.WireRadiusM,
		HeightM:  sim.HeightM,
		Scale:    scale,
	}
	if h, ok := values[AxisHeightM]; ok {
		params.HeightM = h
	}

	detuneFrac := p.conf.Antenna.DetunePct / 100.0
	if pct, ok := values[AxisDetunePct]; ok {
		detuneFrac = pct / 100.0
	}

	length := p.drivenLength()
	if ft, ok := values[AxisLengthFt]; ok {
		length = units.FeetToMeters(ft)
	}

	var (
		geo geometry.WireGeometry
		exc geometry.ExcitationSpec
		err error
	)
	switch p.conf.Antenna.Kind {
	case "dipole":
		geo, exc, err = geometry.Dipole(length, params)
	case "yagi":
		geo, exc, err = geometry.TwoElementYagi(length, detuneFrac, p.spacing(values), params)
	case "8jk":
		geo, exc, err = geometry.EightJK(length, p.spacing(values), params)
	default:
		return sweep.Case{}, fmt.Errorf("unrecognized antenna kind %q", p.conf.Antenna.Kind)
	}
	if err != nil {
		return sweep.Case{}, err
	}
	return sweep.Case{Geometry: geo, Excitation: exc, FreqMHz: freqMHz}, nil
}

// AtFrequency returns a builder re-evaluating the given point's geometry
// at arbitrary frequencies, holding geometry parameters fixed. Used by
// the criticality analysis.
func (p *Plan) AtFrequency(point sweep.Point) func(freqMHz float64) (sweep.Case, error) {
	return func(freqMHz float64) (sweep.Case, error) {
		return p.buildCase(point.Values, freqMHz, 1.0)
	}
}

// AtScale returns a builder evaluating the given point's geometry under a
// uniform scale factor at the nominal frequency, holding detune and
// spacing fractions fixed. Used by the rescaling solver.
func (p *Plan) AtScale(point sweep.Point) func(scale float64) (sweep.Case, error) {
	return func(scale float64) (sweep.Case, error) {
		return p.buildCase(point.Values, p.NominalFreq(point), scale)
	}
}

// NominalFreq is the frequency a point was evaluated at: its frequency
// axis value when the sweep has one, otherwise the simulation frequency.
func (p *Plan) NominalFreq(point sweep.Point) float64 {
	if f, ok := point.Values[AxisFreqMHz]; ok {
		return f
	}
	return p.conf.Simulation.FrequencyMHz
}
