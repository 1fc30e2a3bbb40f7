// Package optimum scans sweep tables for the configuration maximizing a
// target metric, optionally restricted to points satisfying a secondary
// constraint. Selection is stable: ties resolve to the first occurrence
// in grid traversal order.
package optimum

import (
	"errors"
	"fmt"
	"math"

	"github.com/kd8watts/antsweep/internal/sweep"
)

// Target selects the metric being maximized.
type Target int

const (
	// TargetGain maximizes forward gain.
	TargetGain Target = iota
	// TargetFrontToBack maximizes the front-to-back ratio.
	TargetFrontToBack
)

func (t Target) String() string {
	switch t {
	case TargetFrontToBack:
		return "front-to-back"
	default:
		return "gain"
	}
}

// ErrInfeasible reports that no candidate point has a defined target
// metric and satisfies the constraint. The constraint is never silently
// relaxed.
var ErrInfeasible = errors.New("no feasible candidate")

// metricOf returns the target metric for a point, or false when the point
// failed or the metric is undefined.
func metricOf(p sweep.Point, target Target) (float64, bool) {
	var v *float64
	switch target {
	case TargetFrontToBack:
		v = p.FrontToBack
	default:
		v = p.ForwardGain
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Search returns the point with the largest target metric, scanning in
// table order. Re-running on the same table yields the same point.
func Search(t *sweep.Table, target Target) (sweep.Point, error) {
	return SearchConstrained(t, target, nil)
}

// SearchConstrained restricts the candidate set to points satisfying the
// predicate before taking the maximum. A nil predicate admits every
// point. Strict greater-than comparison keeps the first-reached maximum
// on ties.
func SearchConstrained(t *sweep.Table, target Target, predicate func(sweep.Point) bool) (sweep.Point, error) {
	best := sweep.Point{}
	bestMetric := math.Inf(-1)
	found := false
	for _, p := range t.Points {
		m, ok := metricOf(p, target)
		if !ok {
			continue
		}
		if predicate != nil && !predicate(p) {
			continue
		}
		if !found || m > bestMetric {
			best = p
			bestMetric = m
			found = true
		}
	}
	if !found {
		return sweep.Point{}, fmt.Errorf("%w for %s in sweep %q", ErrInfeasible, target, t.Name)
	}
	return best, nil
}

// GroupBest pairs one value of a grouping axis with the best point among
// that value's candidates.
type GroupBest struct {
	AxisValue float64
	Best      sweep.Point
}

// SearchGrouped runs a constrained search separately for each value of
// the named axis, in axis order. Axis values with no feasible candidate
// are skipped; all of them infeasible is an error.
func SearchGrouped(t *sweep.Table, target Target, axis string, predicate func(sweep.Point) bool) ([]GroupBest, error) {
	var axisValues []float64
	for _, ax := range t.Axes {
		if ax.Name == axis {
			axisValues = ax.Values
		}
	}
	if axisValues == nil {
		return nil, fmt.Errorf("sweep %q has no axis %q", t.Name, axis)
	}

	var groups []GroupBest
	for _, v := range axisValues {
		v := v
		best, err := SearchConstrained(t, target, func(p sweep.Point) bool {
			if p.Value(axis) != v {
				return false
			}
			return predicate == nil || predicate(p)
		})
		if err != nil {
			if errors.Is(err, ErrInfeasible) {
				continue
			}
			return nil, err
		}
		groups = append(groups, GroupBest{AxisValue: v, Best: best})
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w for %s on any %s in sweep %q", ErrInfeasible, target, axis, t.Name)
	}
	return groups, nil
}

// ReactanceCeiling builds a constraint admitting only points whose
// feedpoint reactance magnitude is at or below the ceiling in ohms.
func ReactanceCeiling(ohms float64) func(sweep.Point) bool {
	return func(p sweep.Point) bool {
		return p.Impedance != nil && math.Abs(p.Impedance.X) <= ohms
	}
}
