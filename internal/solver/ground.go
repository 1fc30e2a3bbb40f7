package solver

import "fmt"

// Ground is the ground model token passed through to the solver.
type Ground string

// Recognized ground models with their conventional soil parameters.
const (
	GroundFree    Ground = "free"
	GroundPerfect Ground = "perfect"
	GroundPoor    Ground = "poor"
	GroundAverage Ground = "average"
	GroundGood    Ground = "good"
)

// soil holds relative permittivity and conductivity (S/m) for a real
// ground model.
type soil struct {
	permittivity float64
	conductivity float64
}

var soils = map[Ground]soil{
	GroundPoor:    {permittivity: 5, conductivity: 0.001},
	GroundAverage: {permittivity: 13, conductivity: 0.005},
	GroundGood:    {permittivity: 20, conductivity: 0.03},
}

// ParseGround validates a configured ground token.
func ParseGround(s string) (Ground, error) {
	switch Ground(s) {
	case GroundFree, GroundPerfect, GroundPoor, GroundAverage, GroundGood:
		return Ground(s), nil
	}
	return "", fmt.Errorf("unrecognized ground model %q", s)
}

// args returns the solver command-line arguments selecting this ground
// model. Free space needs none; perfect ground is the solver default
// medium; real grounds pass their soil constants.
func (g Ground) args() []string {
	switch g {
	case GroundFree:
		return nil
	case GroundPerfect:
		return []string{"--medium", "0,0,0"}
	default:
		s, ok := soils[g]
		if !ok {
			return nil
		}
		return []string{"--medium", fmt.Sprintf("%g,%g,0", s.permittivity, s.conductivity)}
	}
}
