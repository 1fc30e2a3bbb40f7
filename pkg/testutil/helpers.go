// Package testutil provides deterministic solver stubs and common utility
// functions for testing the orchestration layers without the external
// field solver.
package testutil

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/sweep"
)

// FindPoint finds the first point in a table satisfying match. Returns a
// pointer to the point if found, nil otherwise.
func FindPoint(t *sweep.Table, match func(sweep.Point) bool) *sweep.Point {
	for i := range t.Points {
		if match(t.Points[i]) {
			return &t.Points[i]
		}
	}
	return nil
}

// RequestKey reduces a solver request to a stable string key: element
// count, frequency, per-element lengths, the x-offset of the second
// element, and the cut shape. Scripted responses are registered under
// these keys.
func RequestKey(req solver.Request) string {
	key := fmt.Sprintf("n=%d f=%.4f", len(req.Geometry.Elements), req.FreqMHz)
	for _, el := range req.Geometry.Elements {
		key += fmt.Sprintf(" l=%.4f", math.Abs(el.Y2-el.Y1))
	}
	if len(req.Geometry.Elements) > 1 {
		key += fmt.Sprintf(" d=%.4f", math.Abs(req.Geometry.Elements[1].X1-req.Geometry.Elements[0].X1))
	}
	if req.Angles.ElevationCount > 1 {
		key += " cut=el"
	} else {
		key += " cut=az"
	}
	return key
}

// ScriptedSolver replays canned results keyed by RequestKey. Unscripted
// requests surface a solver.Failure, which is also how tests exercise the
// sweep engine's gap recording.
type ScriptedSolver struct {
	mu        sync.Mutex
	responses map[string]*solver.Result
	calls     int
}

// NewScriptedSolver constructs an empty scripted solver.
func NewScriptedSolver() *ScriptedSolver {
	return &ScriptedSolver{responses: make(map[string]*solver.Result)}
}

// Script registers the response for every request reducing to the same
// key as req.
func (s *ScriptedSolver) Script(req solver.Request, res *solver.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[RequestKey(req)] = res
}

// ScriptKey registers a response under a precomputed key.
func (s *ScriptedSolver) ScriptKey(key string, res *solver.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = res
}

// Calls reports how many evaluations were requested.
func (s *ScriptedSolver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Evaluate implements solver.Solver.
func (s *ScriptedSolver) Evaluate(ctx context.Context, req solver.Request) (*solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	res, ok := s.responses[RequestKey(req)]
	if !ok {
		return nil, &solver.Failure{FreqMHz: req.FreqMHz, Ground: req.Ground, Err: fmt.Errorf("no scripted response for %s", RequestKey(req))}
	}
	out := *res
	out.Samples = append([]solver.FarFieldSample(nil), res.Samples...)
	return &out, nil
}

// AzimuthCutResult builds a full-circle azimuth cut at the given
// elevation with the given forward (az 0) and backward (az 180) gains,
// blending smoothly in between, plus the given impedance.
func AzimuthCutResult(elDeg, stepDeg, fwdGain, backGain float64, z solver.Impedance) *solver.Result {
	var samples []solver.FarFieldSample
	for az := 0.0; az <= 360.0; az += stepDeg {
		w := (1 + math.Cos(az*math.Pi/180.0)) / 2
		samples = append(samples, solver.FarFieldSample{
			ElevationDeg: elDeg,
			AzimuthDeg:   az,
			GainDBi:      backGain + (fwdGain-backGain)*w,
		})
	}
	return &solver.Result{Impedance: z, Samples: solver.TagNulls(samples)}
}

// ElevationCutResult builds an elevation cut 0..180 at azimuth 0 with a
// sine-lobed gain peaking at peakElDeg, and sentinel nulls at the
// grazing angles.
func ElevationCutResult(stepDeg, peakElDeg, peakGain float64, z solver.Impedance) *solver.Result {
	var samples []solver.FarFieldSample
	for el := 0.0; el <= 180.0; el += stepDeg {
		gain := -999.0
		if el > 0 && el < 180 {
			shape := math.Sin(el / peakElDeg * math.Pi / 2)
			if el > peakElDeg {
				shape = math.Sin((180 - el) / (180 - peakElDeg) * math.Pi / 2)
			}
			gain = peakGain + 10*math.Log10(math.Max(shape*shape, 1e-9))
		}
		samples = append(samples, solver.FarFieldSample{ElevationDeg: el, AzimuthDeg: 0, GainDBi: gain})
	}
	return &solver.Result{Impedance: z, Samples: solver.TagNulls(samples)}
}
