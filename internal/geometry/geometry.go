// Package geometry constructs wire-segment descriptions and excitation
// specifications for dipoles and two-element arrays from physical
// parameters. Geometries are cheap pure values, rebuilt fresh for every
// solver call and never mutated after construction.
package geometry

import (
	"fmt"
	"math"

	"github.com/kd8watts/antsweep/pkg/constants"
	"github.com/kd8watts/antsweep/pkg/units"
)

// Element is a single straight wire: two endpoints in meters, a uniform
// segmentation count, and a wire radius in meters.
type Element struct {
	X1, Y1, Z1 float64
	X2, Y2, Z2 float64
	Segments   int
	Radius     float64
}

// WireGeometry is an ordered sequence of straight-wire elements.
type WireGeometry struct {
	Elements []Element
}

// Feed identifies an excited segment on one element. Phase is in degrees,
// normalized to [0, 360). Magnitude is the source voltage magnitude.
type Feed struct {
	Element   int
	Segment   int
	Magnitude float64
	PhaseDeg  float64
}

// ExcitationSpec lists the voltage sources driving the geometry. Exactly
// one feed per independently excited element.
type ExcitationSpec struct {
	Feeds []Feed
}

// ConfigurationError reports invalid or degenerate geometry parameters.
// It is fatal for the affected grid point, not for the whole sweep.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("geometry configuration error: %s=%g %s", e.Field, e.Value, e.Reason)
}

// normalizePhase wraps a phase in degrees into [0, 360).
func normalizePhase(deg float64) float64 {
	p := math.Mod(deg, 360.0)
	if p < 0 {
		p += 360.0
	}
	return p
}

// CenterSegment returns the 1-based feed segment index centered on an
// element with the given segmentation count.
func CenterSegment(segments int) int {
	return (segments + 1) / 2
}

// Params carries the shared physical parameters for the builders. Scale
// defaults to 1.0 and multiplies every element length; spacing and height
// are not rescaled.
type Params struct {
	Segments int
	Radius   float64
	HeightM  float64
	Scale    float64
}

func (p *Params) normalize() error {
	if p.Segments == 0 {
		p.Segments = constants.DefaultSegments
	}
	if p.Radius == 0 {
		p.Radius = constants.DefaultWireRadius
	}
	if p.Scale == 0 {
		p.Scale = 1.0
	}
	if p.Segments < constants.MinimumSegments {
		return &ConfigurationError{Field: "segments", Value: float64(p.Segments), Reason: fmt.Sprintf("must be >= %d for convergence", constants.MinimumSegments)}
	}
	if p.Radius <= 0 {
		return &ConfigurationError{Field: "radius", Value: p.Radius, Reason: "must be positive"}
	}
	if p.Scale <= 0 {
		return &ConfigurationError{Field: "scale", Value: p.Scale, Reason: "must be positive"}
	}
	if p.HeightM < 0 {
		return &ConfigurationError{Field: "height", Value: p.HeightM, Reason: "must not be negative"}
	}
	return nil
}

// yElement builds a wire parallel to the y-axis, centered on y=0, at the
// given x offset and height.
func yElement(xOffset, lengthM float64, p Params) Element {
	half := lengthM / 2.0
	return Element{
		X1: xOffset, Y1: -half, Z1: p.HeightM,
		X2: xOffset, Y2: half, Z2: p.HeightM,
		Segments: p.Segments,
		Radius:   p.Radius,
	}
}

// Dipole builds a center-fed dipole of the given total length in meters.
func Dipole(lengthM float64, p Params) (WireGeometry, ExcitationSpec, error) {
	if err := p.normalize(); err != nil {
		return WireGeometry{}, ExcitationSpec{}, err
	}
	scaled := lengthM * p.Scale
	if scaled <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "length", Value: scaled, Reason: "must be positive"}
	}
	geo := WireGeometry{Elements: []Element{yElement(0, scaled, p)}}
	exc := ExcitationSpec{Feeds: []Feed{{Element: 0, Segment: CenterSegment(p.Segments), Magnitude: 1.0}}}
	return geo, exc, nil
}

// ResonantDipole builds a center-fed half-wave dipole resonant at the
// given frequency in MHz.
func ResonantDipole(freqMHz float64, p Params) (WireGeometry, ExcitationSpec, error) {
	if freqMHz <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "frequency", Value: freqMHz, Reason: "must be positive"}
	}
	return Dipole(units.ResonantDipoleLength(freqMHz), p)
}

// TwoElementYagi builds a driven element plus a parasitic reflector. The
// driven element has the given length; the reflector is detuneFrac longer
// and sits spacingM behind it along the x-axis. Only the driven element
// is fed.
func TwoElementYagi(drivenLengthM, detuneFrac, spacingM float64, p Params) (WireGeometry, ExcitationSpec, error) {
	if err := p.normalize(); err != nil {
		return WireGeometry{}, ExcitationSpec{}, err
	}
	driven := drivenLengthM * p.Scale
	reflector := driven * (1.0 + detuneFrac)
	if driven <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "length", Value: driven, Reason: "must be positive"}
	}
	if reflector <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "detune", Value: detuneFrac, Reason: "collapses reflector length to <= 0"}
	}
	if spacingM <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "spacing", Value: spacingM, Reason: "must be positive for two-element configurations"}
	}
	geo := WireGeometry{Elements: []Element{
		yElement(0, driven, p),
		yElement(-spacingM, reflector, p),
	}}
	exc := ExcitationSpec{Feeds: []Feed{{Element: 0, Segment: CenterSegment(p.Segments), Magnitude: 1.0}}}
	return geo, exc, nil
}

// EightJK builds two identical driven elements spaced spacingM apart along
// the x-axis and fed 180 degrees out of phase.
func EightJK(lengthM, spacingM float64, p Params) (WireGeometry, ExcitationSpec, error) {
	if err := p.normalize(); err != nil {
		return WireGeometry{}, ExcitationSpec{}, err
	}
	scaled := lengthM * p.Scale
	if scaled <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "length", Value: scaled, Reason: "must be positive"}
	}
	if spacingM <= 0 {
		return WireGeometry{}, ExcitationSpec{}, &ConfigurationError{Field: "spacing", Value: spacingM, Reason: "must be positive for two-element configurations"}
	}
	geo := WireGeometry{Elements: []Element{
		yElement(0, scaled, p),
		yElement(spacingM, scaled, p),
	}}
	center := CenterSegment(p.Segments)
	exc := ExcitationSpec{Feeds: []Feed{
		{Element: 0, Segment: center, Magnitude: 1.0, PhaseDeg: normalizePhase(0)},
		{Element: 1, Segment: center, Magnitude: 1.0, PhaseDeg: normalizePhase(180)},
	}}
	return geo, exc, nil
}

// Validate checks the structural invariants of a geometry: positive
// segment counts and radii, and no two coincident elements.
func (g WireGeometry) Validate() error {
	for i, el := range g.Elements {
		if el.Segments < 1 {
			return &ConfigurationError{Field: "segments", Value: float64(el.Segments), Reason: fmt.Sprintf("element %d must have at least 1 segment", i)}
		}
		if el.Radius <= 0 {
			return &ConfigurationError{Field: "radius", Value: el.Radius, Reason: fmt.Sprintf("element %d must have positive radius", i)}
		}
		for j := 0; j < i; j++ {
			if coincident(g.Elements[j], el) {
				return &ConfigurationError{Field: "spacing", Value: 0, Reason: fmt.Sprintf("elements %d and %d are coincident", j, i)}
			}
		}
	}
	return nil
}

func coincident(a, b Element) bool {
	const eps = 1e-9
	return math.Abs(a.X1-b.X1) < eps && math.Abs(a.Y1-b.Y1) < eps && math.Abs(a.Z1-b.Z1) < eps &&
		math.Abs(a.X2-b.X2) < eps && math.Abs(a.Y2-b.Y2) < eps && math.Abs(a.Z2-b.Z2) < eps
}
