package solver

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/kd8watts/antsweep/internal/geometry"
	"github.com/kd8watts/antsweep/pkg/constants"
	"go.uber.org/zap"
)

// Exec invokes an external MININEC-style thin-wire solver binary once per
// Evaluate call. Each call is bounded by Timeout; exceeding it is a
// Failure, not a fatal error for the caller's sweep.
type Exec struct {
	// Command is the solver binary; defaults to constants.DefaultSolverCommand.
	Command string

	// Timeout bounds a single solver invocation. Zero means the default.
	Timeout time.Duration

	// FarFieldDistance in meters for absolute far-field runs. Zero means
	// the default.
	FarFieldDistance int

	logger *zap.Logger
}

// NewExec constructs an Exec adapter with defaults filled in.
func NewExec(logger *zap.Logger) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{
		Command:          constants.DefaultSolverCommand,
		Timeout:          constants.DefaultSolverTimeoutSeconds * time.Second,
		FarFieldDistance: constants.DefaultFarFieldDistance,
		logger:           logger,
	}
}

// Evaluate runs the solver for one configuration and normalizes its
// output. It is deterministic for fixed inputs and holds no state between
// calls.
func (e *Exec) Evaluate(ctx context.Context, req Request) (*Result, error) {
	args, err := e.buildArgs(req)
	if err != nil {
		return nil, &Failure{FreqMHz: req.FreqMHz, Ground: req.Ground, Err: err}
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultSolverTimeoutSeconds * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := e.Command
	if command == "" {
		command = constants.DefaultSolverCommand
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Warn("solver invocation failed",
			zap.String("op", "solver.Exec.Evaluate"),
			zap.Float64("freqMHz", req.FreqMHz),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return nil, &Failure{FreqMHz: req.FreqMHz, Ground: req.Ground, Err: err}
	}

	result, err := parseOutput(stdout.String(), req.Angles)
	if err != nil {
		return nil, &Failure{FreqMHz: req.FreqMHz, Ground: req.Ground, Err: err}
	}
	result.Samples = TagNulls(result.Samples)

	e.logger.Debug("solver invocation complete",
		zap.String("op", "solver.Exec.Evaluate"),
		zap.Float64("freqMHz", req.FreqMHz),
		zap.Int("samples", len(result.Samples)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// buildArgs translates the request into solver command-line arguments.
// Wire endpoints are emitted per element; feeds are addressed by absolute
// pulse index across the concatenated segment list.
func (e *Exec) buildArgs(req Request) ([]string, error) {
	if len(req.Geometry.Elements) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}
	if err := req.Geometry.Validate(); err != nil {
		return nil, err
	}
	if len(req.Excitation.Feeds) == 0 {
		return nil, fmt.Errorf("no feedpoints")
	}

	args := []string{"-f", fmt.Sprintf("%g", req.FreqMHz)}
	for _, el := range req.Geometry.Elements {
		args = append(args, "-w", fmt.Sprintf("%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f",
			el.Segments, el.X1, el.Y1, el.Z1, el.X2, el.Y2, el.Z2, el.Radius))
	}
	args = append(args, req.Ground.args()...)

	for _, feed := range req.Excitation.Feeds {
		pulse, err := absolutePulse(req.Geometry, feed)
		if err != nil {
			return nil, err
		}
		phase := feed.PhaseDeg * math.Pi / 180.0
		re := feed.Magnitude * math.Cos(phase)
		im := feed.Magnitude * math.Sin(phase)
		if math.Abs(im) < 1e-12 {
			args = append(args, "--excitation-pulse", fmt.Sprintf("%d,%g", pulse, re))
		} else {
			args = append(args, "--excitation-pulse", fmt.Sprintf("%d,%g,%g", pulse, re, im))
		}
	}

	ffDistance := e.FarFieldDistance
	if ffDistance <= 0 {
		ffDistance = constants.DefaultFarFieldDistance
	}
	args = append(args,
		"--option", "far-field",
		"--ff-distance", fmt.Sprintf("%d", ffDistance),
	)

	thetaArg, phiArg, err := angleArgs(req.Angles)
	if err != nil {
		return nil, err
	}
	args = append(args, "--theta", thetaArg, "--phi", phiArg)
	return args, nil
}

// absolutePulse converts an (element, segment) feed into the solver's
// global pulse index over the concatenated wires.
func absolutePulse(geo geometry.WireGeometry, feed geometry.Feed) (int, error) {
	if feed.Element < 0 || feed.Element >= len(geo.Elements) {
		return 0, fmt.Errorf("feed element %d out of range", feed.Element)
	}
	el := geo.Elements[feed.Element]
	if feed.Segment < 1 || feed.Segment > el.Segments {
		return 0, fmt.Errorf("feed segment %d out of range for element %d", feed.Segment, feed.Element)
	}
	offset := 0
	for i := 0; i < feed.Element; i++ {
		offset += geo.Elements[i].Segments
	}
	return offset + feed.Segment, nil
}

// angleArgs maps the elevation/azimuth grid onto the solver's zenith
// (theta) and azimuth (phi) sampling arguments. Two grid shapes are
// supported: a full elevation cut at azimuth 0 and a full azimuth circle
// at fixed elevation; these are the only shapes the orchestration layer
// requests.
func angleArgs(grid AngleGrid) (string, string, error) {
	switch {
	case grid.AzimuthCount == 1 && grid.ElevationCount > 1:
		// Elevation cut: zenith 0..90 on both phi=0 and phi=180 half
		// planes covers elevation 0..180 at azimuth 0.
		if grid.ElevationStep <= 0 {
			return "", "", fmt.Errorf("elevation step must be positive")
		}
		zenithCount := int(90.0/grid.ElevationStep) + 1
		theta := fmt.Sprintf("0,%g,%d", grid.ElevationStep, zenithCount)
		phi := "0,180,2"
		return theta, phi, nil
	case grid.ElevationCount == 1 && grid.AzimuthCount >= 1:
		if grid.AzimuthStep <= 0 {
			return "", "", fmt.Errorf("azimuth step must be positive")
		}
		zenith := 90.0 - grid.ElevationStart
		theta := fmt.Sprintf("%g,1,1", zenith)
		phi := fmt.Sprintf("%g,%g,%d", grid.AzimuthStart, grid.AzimuthStep, grid.AzimuthCount)
		return theta, phi, nil
	default:
		return "", "", fmt.Errorf("unsupported angle grid shape: %d elevation x %d azimuth samples", grid.ElevationCount, grid.AzimuthCount)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
