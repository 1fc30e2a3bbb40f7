// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for antsweep.
type Configuration struct {
	Simulation   Simulation         `yaml:"simulation"`
	Antenna      Antenna            `yaml:"antenna"`
	Sweep        SweepConfig        `yaml:"sweep,omitempty"`
	Optimization OptimizationConfig `yaml:"optimization,omitempty"`
	Sensitivity  SensitivityConfig  `yaml:"sensitivity,omitempty"`
	Rescale      RescaleConfig      `yaml:"rescale,omitempty"`
	Solver       SolverConfig       `yaml:"solver,omitempty"`
	Logging      LoggingConfig      `yaml:"logging,omitempty"`
	Output       OutputConfig       `yaml:"output,omitempty"`
}

// Simulation holds the shared evaluation conditions for every sweep point.
type Simulation struct {
	FrequencyMHz     float64 `yaml:"frequencyMHz"`
	Ground           string  `yaml:"ground,omitempty"`           // free, perfect, poor, average, good
	Pattern          string  `yaml:"pattern,omitempty"`          // azimuth (gain/F-B) or elevation (max-gain elevation)
	Segments         int     `yaml:"segments,omitempty"`         // per-element segmentation count
	WireRadiusM      float64 `yaml:"wireRadiusM,omitempty"`      // thin-wire radius in meters
	HeightM          float64 `yaml:"heightM,omitempty"`          // mounting height in meters
	ElevationCutDeg  float64 `yaml:"elevationCutDeg,omitempty"`  // elevation for azimuth cuts
	AzimuthStepDeg   float64 `yaml:"azimuthStepDeg,omitempty"`   // azimuth sample step
	ElevationStepDeg float64 `yaml:"elevationStepDeg,omitempty"` // elevation sample step
}

// Antenna selects the configuration under study. Lengths and spacing may
// be given in exactly one unit each; fractions are of the free-space
// wavelength at the simulation frequency.
type Antenna struct {
	Kind string `yaml:"kind"` // dipole, yagi, 8jk

	DrivenLengthM      float64 `yaml:"drivenLengthM,omitempty"`
	DrivenLengthFeet   float64 `yaml:"drivenLengthFeet,omitempty"`
	DrivenLengthLambda float64 `yaml:"drivenLengthLambda,omitempty"`

	SpacingM      float64 `yaml:"spacingM,omitempty"`
	SpacingFeet   float64 `yaml:"spacingFeet,omitempty"`
	SpacingLambda float64 `yaml:"spacingLambda,omitempty"`

	DetunePct float64 `yaml:"detunePct,omitempty"` // reflector detune, percent
}

// SweepConfig describes the parameter grid. Axes left empty are held at
// the Antenna/Simulation values.
type SweepConfig struct {
	DetuneStartPct float64 `yaml:"detuneStartPct,omitempty"`
	DetuneStopPct  float64 `yaml:"detuneStopPct,omitempty"`
	DetuneStepPct  float64 `yaml:"detuneStepPct,omitempty"`
	// DetuneSteps is the count-based alternative to detuneStepPct: that
	// many evenly spaced values from start to stop inclusive.
	DetuneSteps int `yaml:"detuneSteps,omitempty"`

	SpacingFractions []float64 `yaml:"spacingFractions,omitempty"` // of lambda
	HeightsM         []float64 `yaml:"heightsM,omitempty"`
	BoomFeet         []float64 `yaml:"boomFeet,omitempty"`

	// LengthsFeet sweeps the driven element length, e.g. a multiband
	// dipole evaluated at several fixed cuts.
	LengthsFeet []float64 `yaml:"lengthsFeet,omitempty"`
	// FrequenciesMHz evaluates every grid point at each listed frequency
	// instead of the single simulation frequency.
	FrequenciesMHz []float64 `yaml:"frequenciesMHz,omitempty"`
}

// OptimizationConfig selects the search target and optional constraint.
type OptimizationConfig struct {
	Target               string   `yaml:"target,omitempty"` // gain, fb
	ReactanceCeilingOhms *float64 `yaml:"reactanceCeilingOhms,omitempty"`
}

// SensitivityConfig controls the criticality analysis around the optimum.
type SensitivityConfig struct {
	Enabled    bool      `yaml:"enabled,omitempty"`
	OffsetsKHz []float64 `yaml:"offsetsKHz,omitempty"`
}

// RescaleConfig controls the resonance rescaling pass.
type RescaleConfig struct {
	Enabled       bool    `yaml:"enabled,omitempty"`
	ToleranceOhms float64 `yaml:"toleranceOhms,omitempty"`
	MaxIterations int     `yaml:"maxIterations,omitempty"`
}

// SolverConfig configures the external solver invocation.
type SolverConfig struct {
	Command        string `yaml:"command,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
	Parallelism    int    `yaml:"parallelism,omitempty"`
	RetryFailures  bool   `yaml:"retryFailures,omitempty"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options.
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // pretty, csv, xlsx
	XLSXFile string `yaml:"xlsxFile,omitempty"` // workbook path for xlsx output
}

// LoadConfiguration takes a file path as input and loads the
// YAML-formatted configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// applyDefaults fills unset fields with the documented defaults so sweep
// evaluation never depends on ambient global state.
func (c *Configuration) applyDefaults() {
	if c.Simulation.Ground == "" {
		c.Simulation.Ground = string(solver.GroundAverage)
	}
	if c.Simulation.Pattern == "" {
		c.Simulation.Pattern = "azimuth"
	}
	if c.Simulation.Segments == 0 {
		c.Simulation.Segments = constants.DefaultSegments
	}
	if c.Simulation.WireRadiusM == 0 {
		c.Simulation.WireRadiusM = constants.DefaultWireRadius
	}
	if c.Simulation.ElevationCutDeg == 0 {
		c.Simulation.ElevationCutDeg = constants.DefaultElevationCut
	}
	if c.Simulation.AzimuthStepDeg == 0 {
		c.Simulation.AzimuthStepDeg = constants.DefaultAzimuthStep
	}
	if c.Simulation.ElevationStepDeg == 0 {
		c.Simulation.ElevationStepDeg = constants.DefaultElevationStep
	}
	if c.Solver.Command == "" {
		c.Solver.Command = constants.DefaultSolverCommand
	}
	if c.Solver.TimeoutSeconds == 0 {
		c.Solver.TimeoutSeconds = constants.DefaultSolverTimeoutSeconds
	}
	if c.Solver.Parallelism == 0 {
		c.Solver.Parallelism = 1
	}
	if c.Optimization.Target == "" {
		c.Optimization.Target = "gain"
	}
	if c.Rescale.ToleranceOhms == 0 {
		c.Rescale.ToleranceOhms = constants.RescaleToleranceOhms
	}
	if c.Rescale.MaxIterations == 0 {
		c.Rescale.MaxIterations = constants.RescaleMaxIterations
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings. Hard errors are returned separately and are fatal
// before any solver call.
func (c *Configuration) ValidateConfiguration() ([]string, error) {
	var warnings []string

	if c.Simulation.FrequencyMHz <= 0 {
		return warnings, fmt.Errorf("simulation.frequencyMHz must be positive, got %g", c.Simulation.FrequencyMHz)
	}
	if _, err := solver.ParseGround(c.Simulation.Ground); err != nil {
		return warnings, err
	}
	if c.Simulation.Segments < constants.MinimumSegments {
		return warnings, fmt.Errorf("simulation.segments must be >= %d, got %d", constants.MinimumSegments, c.Simulation.Segments)
	}
	if c.Simulation.Segments%2 == 0 {
		warnings = append(warnings, fmt.Sprintf("simulation.segments = %d is even; an odd count centers the feedpoint", c.Simulation.Segments))
	}
	if c.Simulation.WireRadiusM <= 0 {
		return warnings, fmt.Errorf("simulation.wireRadiusM must be positive, got %g", c.Simulation.WireRadiusM)
	}
	switch c.Simulation.Pattern {
	case "azimuth", "elevation":
	default:
		return warnings, fmt.Errorf("simulation.pattern must be azimuth or elevation, got %q", c.Simulation.Pattern)
	}
	if c.Simulation.HeightM < 0 {
		return warnings, fmt.Errorf("simulation.heightM must not be negative, got %g", c.Simulation.HeightM)
	}
	if c.Simulation.ElevationCutDeg < 0 || c.Simulation.ElevationCutDeg > 90 {
		return warnings, fmt.Errorf("simulation.elevationCutDeg must be between 0 and 90, got %g", c.Simulation.ElevationCutDeg)
	}
	if c.Simulation.AzimuthStepDeg < 0 {
		return warnings, fmt.Errorf("simulation.azimuthStepDeg must not be negative, got %g", c.Simulation.AzimuthStepDeg)
	}
	if c.Simulation.ElevationStepDeg < 0 {
		return warnings, fmt.Errorf("simulation.elevationStepDeg must not be negative, got %g", c.Simulation.ElevationStepDeg)
	}

	switch c.Antenna.Kind {
	case "dipole", "yagi", "8jk":
	case "":
		return warnings, fmt.Errorf("antenna.kind is required (dipole, yagi, or 8jk)")
	default:
		return warnings, fmt.Errorf("unrecognized antenna.kind %q", c.Antenna.Kind)
	}

	if n := countSet(c.Antenna.DrivenLengthM, c.Antenna.DrivenLengthFeet, c.Antenna.DrivenLengthLambda); n > 1 {
		return warnings, fmt.Errorf("antenna driven length set in %d units; use exactly one", n)
	}
	if n := countSet(c.Antenna.SpacingM, c.Antenna.SpacingFeet, c.Antenna.SpacingLambda); n > 1 {
		return warnings, fmt.Errorf("antenna spacing set in %d units; use exactly one", n)
	}
	if c.Antenna.Kind != "dipole" && countSet(c.Antenna.SpacingM, c.Antenna.SpacingFeet, c.Antenna.SpacingLambda) == 0 && len(c.Sweep.SpacingFractions) == 0 && len(c.Sweep.BoomFeet) == 0 {
		return warnings, fmt.Errorf("two-element antenna %q needs a spacing or a spacing/boom sweep axis", c.Antenna.Kind)
	}

	switch c.Optimization.Target {
	case "gain", "fb":
	default:
		return warnings, fmt.Errorf("optimization.target must be gain or fb, got %q", c.Optimization.Target)
	}
	if c.Optimization.ReactanceCeilingOhms != nil && *c.Optimization.ReactanceCeilingOhms <= 0 {
		return warnings, fmt.Errorf("optimization.reactanceCeilingOhms must be positive")
	}

	if c.Sweep.DetuneStepPct < 0 || c.Sweep.DetuneSteps < 0 {
		return warnings, fmt.Errorf("sweep detune step settings must not be negative")
	}
	if c.Sweep.DetuneStepPct > 0 && c.Sweep.DetuneSteps > 0 {
		return warnings, fmt.Errorf("sweep detune grid set by both detuneStepPct and detuneSteps; use exactly one")
	}
	if c.Sweep.DetuneStepPct == 0 && c.Sweep.DetuneSteps == 0 && c.Sweep.DetuneStopPct > c.Sweep.DetuneStartPct {
		return warnings, fmt.Errorf("sweep detune range needs a positive detuneStepPct or detuneSteps")
	}
	for _, ft := range c.Sweep.LengthsFeet {
		if ft <= 0 {
			return warnings, fmt.Errorf("sweep.lengthsFeet entries must be positive, got %g", ft)
		}
	}
	for _, f := range c.Sweep.FrequenciesMHz {
		if f <= 0 {
			return warnings, fmt.Errorf("sweep.frequenciesMHz entries must be positive, got %g", f)
		}
	}
	if c.Solver.TimeoutSeconds < 0 {
		return warnings, fmt.Errorf("solver.timeoutSeconds must not be negative")
	}
	if c.Solver.Parallelism > 8 {
		warnings = append(warnings, fmt.Sprintf("solver.parallelism = %d; the external solver is usually the serialization point", c.Solver.Parallelism))
	}

	return warnings, nil
}

func countSet(vals ...float64) int {
	n := 0
	for _, v := range vals {
		if v != 0 {
			n++
		}
	}
	return n
}
