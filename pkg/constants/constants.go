// Package constants provides shared constants for the antsweep application.
package constants

// Geometry defaults shared by every study unless the configuration overrides
// them. Segment count is odd so the feed lands on a centered segment.
const (
	// DefaultSegments is the default per-element segmentation count.
	DefaultSegments = 21

	// MinimumSegments is the smallest segmentation count accepted for
	// convergence of the thin-wire solution.
	MinimumSegments = 3

	// DefaultWireRadius is the default wire radius in meters (thin-wire
	// approximation).
	DefaultWireRadius = 0.001
)

// Far-field sampling defaults.
const (
	// DefaultElevationCut is the elevation angle in degrees used for
	// azimuth cuts.
	DefaultElevationCut = 30.0

	// DefaultAzimuthStep is the default azimuth step in degrees.
	DefaultAzimuthStep = 5.0

	// DefaultElevationStep is the default elevation step in degrees.
	DefaultElevationStep = 5.0

	// DefaultFarFieldDistance is the far-field evaluation distance in
	// meters passed to the solver.
	DefaultFarFieldDistance = 1000
)

// Numeric policy constants.
const (
	// NullGainThreshold marks far-field samples at or below this gain
	// (dBi) as null directions. The solver emits large negative sentinels
	// (-999 and similar) at singular angles; legitimate pattern nulls stay
	// well above this.
	NullGainThreshold = -100.0

	// MatchEpsilonOhms is the reactance magnitude below which no matching
	// component is needed.
	MatchEpsilonOhms = 1.0

	// RescaleToleranceOhms is the default reactance tolerance for the
	// rescaling root-find. Chosen above the solver's numeric noise near
	// resonance.
	RescaleToleranceOhms = 0.1

	// RescaleMaxIterations is the default iteration budget for the
	// rescaling root-find.
	RescaleMaxIterations = 60

	// DisplayPrecision is the precision for tabular rounding (2 decimal
	// places, matching report output).
	DisplayPrecision = 100
)

// Output format constants.
const (
	// OutputFormatPretty is the human-readable output format.
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format.
	OutputFormatCSV = "csv"

	// OutputFormatXLSX is the Excel workbook output format.
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants.
const (
	// DefaultConfigFile is the default configuration file name.
	DefaultConfigFile = "config.yaml"
)

// Solver invocation defaults.
const (
	// DefaultSolverCommand is the external thin-wire solver binary.
	DefaultSolverCommand = "pymininec"

	// DefaultSolverTimeoutSeconds bounds a single solver call.
	DefaultSolverTimeoutSeconds = 120
)
