package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kd8watts/antsweep/internal/config"
	"github.com/kd8watts/antsweep/internal/geometry"
	"github.com/kd8watts/antsweep/internal/matching"
	"github.com/kd8watts/antsweep/internal/metrics"
	"github.com/kd8watts/antsweep/internal/optimum"
	"github.com/kd8watts/antsweep/internal/rescale"
	"github.com/kd8watts/antsweep/internal/sensitivity"
	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/study"
	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/constants"
	"github.com/kd8watts/antsweep/pkg/output"
	"github.com/kd8watts/antsweep/pkg/units"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// dipoleReference evaluates a resonant half-wave dipole under the same
// conditions as the main sweep, for the beam-vs-dipole comparison.
func dipoleReference(ctx context.Context, s solver.Solver, conf *config.Configuration, ground solver.Ground) (output.Series, error) {
	geo, exc, err := geometry.ResonantDipole(conf.Simulation.FrequencyMHz, geometry.Params{
		Segments: conf.Simulation.Segments,
		Radius:   conf.Simulation.WireRadiusM,
		HeightM:  conf.Simulation.HeightM,
	})
	if err != nil {
		return output.Series{}, err
	}
	res, err := s.Evaluate(ctx, solver.Request{
		Geometry:   geo,
		Excitation: exc,
		FreqMHz:    conf.Simulation.FrequencyMHz,
		Ground:     ground,
		Angles:     solver.AzimuthCut(conf.Simulation.ElevationCutDeg, conf.Simulation.AzimuthStepDeg),
	})
	if err != nil {
		return output.Series{}, err
	}
	series := output.Series{Label: "dipole"}
	if fwd, err := metrics.ForwardGain(res.Samples, conf.Simulation.ElevationCutDeg, 0); err == nil {
		series.ForwardGain = &fwd
	}
	if fb, err := metrics.FrontToBack(res.Samples, conf.Simulation.ElevationCutDeg, 0, 180); err == nil {
		series.FrontToBack = &fb
	}
	return series, nil
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, xlsx")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	switch outputFormat {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatXLSX:
	default:
		logger.Fatal("invalid output format "+outputFormat,
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings; hard errors are
	// fatal before any solver call.
	warnings, err := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	if err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ground, err := solver.ParseGround(conf.Simulation.Ground)
	if err != nil {
		logger.Fatal("invalid ground model",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// A long sweep must be abortable between grid points.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := solver.NewExec(logger)
	exec.Command = conf.Solver.Command
	exec.Timeout = time.Duration(conf.Solver.TimeoutSeconds) * time.Second

	engine := sweep.NewEngine(exec, logger)
	engine.Parallelism = conf.Solver.Parallelism
	engine.RetryFailures = conf.Solver.RetryFailures

	plan, err := study.NewPlan(conf, ground)
	if err != nil {
		logger.Fatal("failed to assemble study plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	table, err := engine.Run(ctx, plan.Spec)
	if err != nil {
		logger.Warn("sweep ended early",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	opts := output.Options{FreqMHz: conf.Simulation.FrequencyMHz}
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(table, opts)
	case constants.OutputFormatCSV:
		output.CsvFormat(table, opts)
	case constants.OutputFormatXLSX:
		path := conf.Output.XLSXFile
		if path == "" {
			path = "results.xlsx"
		}
		if err := output.XlsxFormat([]*sweep.Table{table}, opts, path); err != nil {
			logger.Fatal("failed to write workbook",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	// An elevation study reports the max-gain elevation table itself; the
	// gain and front-to-back passes below apply to azimuth cuts only.
	if plan.Spec.Pattern == sweep.ElevationCutPattern {
		return
	}

	target := optimum.TargetGain
	if conf.Optimization.Target == "fb" {
		target = optimum.TargetFrontToBack
	}
	var constraint func(sweep.Point) bool
	if conf.Optimization.ReactanceCeilingOhms != nil {
		constraint = optimum.ReactanceCeiling(*conf.Optimization.ReactanceCeilingOhms)
	}
	best, err := optimum.SearchConstrained(table, target, constraint)
	if err != nil {
		logger.Error("optimum search found no feasible point",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	}
	logger.Info("optimum configuration",
		zap.String("op", "main"),
		zap.String("target", target.String()),
		zap.Any("values", best.Values),
	)
	if best.Impedance != nil {
		component := matching.Synthesize(*best.Impedance, conf.Simulation.FrequencyMHz)
		fmt.Printf("Optimum (%s): %v  Z=(%.2f, %.2f) ohm  match: %s\n",
			target, best.Values, best.Impedance.R, best.Impedance.X, component)
	}

	// With a boom axis, also report the best configuration per boom
	// length so the boom-vs-detune trade is visible at a glance.
	if len(conf.Sweep.BoomFeet) > 0 {
		groups, err := optimum.SearchGrouped(table, target, study.AxisBoomFt, constraint)
		if err != nil {
			logger.Warn("per-boom optimum search failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		} else {
			lam := units.Wavelength(conf.Simulation.FrequencyMHz)
			fmt.Printf("Boom (ft) | Boom (lambda) | Detune (%%) | Gain (dBi) | F/B (dB)\n")
			for _, g := range groups {
				gain, fb := "undefined", "undefined"
				if g.Best.ForwardGain != nil {
					gain = fmt.Sprintf("%.2f", *g.Best.ForwardGain)
				}
				if g.Best.FrontToBack != nil {
					fb = fmt.Sprintf("%.2f", *g.Best.FrontToBack)
				}
				fmt.Printf("%9.2f | %13.3f | %10.2f | %s | %s\n",
					g.AxisValue, units.FeetToMeters(g.AxisValue)/lam, g.Best.Value(study.AxisDetunePct), gain, fb)
			}
		}
	}

	if conf.Antenna.Kind != "dipole" {
		ref, err := dipoleReference(ctx, exec, conf, ground)
		if err != nil {
			logger.Warn("dipole reference evaluation failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		} else {
			output.PrettyComparison(output.Comparison{
				Name: "beam vs. dipole",
				A:    output.Series{Label: conf.Antenna.Kind, ForwardGain: best.ForwardGain, FrontToBack: best.FrontToBack},
				B:    ref,
			})
		}
	}

	if conf.Sensitivity.Enabled {
		analyzer := sensitivity.NewAnalyzer(exec, logger)
		rows, err := analyzer.Analyze(ctx, plan.Spec.Name+" criticality", plan.AtFrequency(best), plan.NominalFreq(best), conf.Sensitivity.OffsetsKHz, ground, conf.Simulation.ElevationCutDeg)
		if err != nil {
			logger.Warn("criticality analysis ended early",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		fmt.Println("Offset (kHz) | Gain (dBi) | F/B (dB)")
		for _, row := range rows {
			gain, fb := "undefined", "undefined"
			if row.ForwardGain != nil {
				gain = fmt.Sprintf("%.2f", *row.ForwardGain)
			}
			if row.FrontToBack != nil {
				fb = fmt.Sprintf("%.2f", *row.FrontToBack)
			}
			fmt.Printf("%12.0f | %s | %s\n", row.OffsetKHz, gain, fb)
		}
	}

	if conf.Rescale.Enabled {
		rs := rescale.NewSolver(exec, logger)
		rs.ToleranceOhms = conf.Rescale.ToleranceOhms
		rs.MaxIterations = conf.Rescale.MaxIterations
		result, err := rs.Solve(ctx, plan.AtScale(best), ground)
		if err != nil {
			logger.Error("rescaling failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return
		}
		fmt.Printf("Resonant scale factor: %.5f  Z=(%.2f, %.2f) ohm after %d solver calls\n",
			result.Scale, result.Impedance.R, result.Impedance.X, result.Iterations)
	}
}
