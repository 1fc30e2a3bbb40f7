package optimum

import (
	"errors"
	"testing"

	"github.com/kd8watts/antsweep/internal/solver"
	"github.com/kd8watts/antsweep/internal/sweep"
)

func fp(v float64) *float64 { return &v }

func testTable() *sweep.Table {
	return &sweep.Table{
		Name: "detune",
		Axes: []sweep.Axis{{Name: "detunePct", Values: []float64{2, 3, 4, 5, 6}}},
		Points: []sweep.Point{
			{Index: 0, Values: map[string]float64{"detunePct": 2}, Impedance: &solver.Impedance{R: 48, X: -8}, ForwardGain: fp(9.8), FrontToBack: fp(10.1)},
			{Index: 1, Values: map[string]float64{"detunePct": 3}, Impedance: &solver.Impedance{R: 42, X: -20}, ForwardGain: fp(10.6), FrontToBack: fp(14.0)},
			{Index: 2, Values: map[string]float64{"detunePct": 4}, Impedance: &solver.Impedance{R: 35, X: -42}, ForwardGain: fp(11.08), FrontToBack: fp(16.2)},
			{Index: 3, Values: map[string]float64{"detunePct": 5}, Impedance: &solver.Impedance{R: 30, X: -61}, ForwardGain: fp(10.9), FrontToBack: fp(17.24)},
			{Index: 4, Values: map[string]float64{"detunePct": 6}, Impedance: &solver.Impedance{R: 27, X: -80}, ForwardGain: fp(10.2), FrontToBack: fp(15.5)},
		},
	}
}

func TestSearchByTarget(t *testing.T) {
	table := testTable()

	best, err := Search(table, TargetGain)
	if err != nil {
		t.Fatalf("gain search returned error: %v", err)
	}
	if best.Value("detunePct") != 4 {
		t.Errorf("gain optimum at detune %g, want 4", best.Value("detunePct"))
	}

	best, err = Search(table, TargetFrontToBack)
	if err != nil {
		t.Fatalf("front-to-back search returned error: %v", err)
	}
	if best.Value("detunePct") != 5 {
		t.Errorf("front-to-back optimum at detune %g, want 5", best.Value("detunePct"))
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	table := testTable()
	first, err := Search(table, TargetGain)
	if err != nil {
		t.Fatalf("first search returned error: %v", err)
	}
	second, err := Search(table, TargetGain)
	if err != nil {
		t.Fatalf("second search returned error: %v", err)
	}
	if first.Index != second.Index {
		t.Errorf("repeated searches disagree: index %d vs %d", first.Index, second.Index)
	}
}

func TestSearchTieKeepsFirstOccurrence(t *testing.T) {
	table := testTable()
	*table.Points[1].ForwardGain = 11.08 // duplicate of the point at index 2

	best, err := Search(table, TargetGain)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if best.Index != 1 {
		t.Errorf("tie resolved to index %d, want the first occurrence 1", best.Index)
	}
}

func TestSearchSkipsFailedPoints(t *testing.T) {
	table := testTable()
	table.Points[2].ForwardGain = nil
	table.Points[2].Err = errors.New("solver gap")

	best, err := Search(table, TargetGain)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if best.Value("detunePct") != 5 {
		t.Errorf("optimum at detune %g, want 5 with the gap skipped", best.Value("detunePct"))
	}
}

func TestSearchConstrainedReactanceCeiling(t *testing.T) {
	table := testTable()

	best, err := SearchConstrained(table, TargetGain, ReactanceCeiling(45))
	if err != nil {
		t.Fatalf("constrained search returned error: %v", err)
	}
	if best.Value("detunePct") != 4 {
		t.Errorf("constrained optimum at detune %g, want 4", best.Value("detunePct"))
	}

	// A tighter ceiling excludes the unconstrained optimum; the constraint
	// is honored rather than relaxed.
	best, err = SearchConstrained(table, TargetGain, ReactanceCeiling(25))
	if err != nil {
		t.Fatalf("tight constrained search returned error: %v", err)
	}
	if best.Value("detunePct") != 3 {
		t.Errorf("tightly constrained optimum at detune %g, want 3", best.Value("detunePct"))
	}
}

func TestSearchConstrainedNeverExceedsUnconstrained(t *testing.T) {
	table := testTable()
	unconstrained, err := Search(table, TargetFrontToBack)
	if err != nil {
		t.Fatalf("unconstrained search returned error: %v", err)
	}
	constrained, err := SearchConstrained(table, TargetFrontToBack, ReactanceCeiling(45))
	if err != nil {
		t.Fatalf("constrained search returned error: %v", err)
	}
	if *constrained.FrontToBack > *unconstrained.FrontToBack {
		t.Errorf("constrained metric %g exceeds unconstrained %g", *constrained.FrontToBack, *unconstrained.FrontToBack)
	}
}

func boomTable() *sweep.Table {
	return &sweep.Table{
		Name: "boom x detune",
		Axes: []sweep.Axis{
			{Name: "boomFt", Values: []float64{2, 6}},
			{Name: "detunePct", Values: []float64{3, 4, 5}},
		},
		Points: []sweep.Point{
			{Index: 0, Values: map[string]float64{"boomFt": 2, "detunePct": 3}, Impedance: &solver.Impedance{R: 20, X: -15}, ForwardGain: fp(9.1), FrontToBack: fp(8.0)},
			{Index: 1, Values: map[string]float64{"boomFt": 2, "detunePct": 4}, Impedance: &solver.Impedance{R: 18, X: -30}, ForwardGain: fp(9.6), FrontToBack: fp(9.5)},
			{Index: 2, Values: map[string]float64{"boomFt": 2, "detunePct": 5}, Impedance: &solver.Impedance{R: 15, X: -48}, ForwardGain: fp(9.3), FrontToBack: fp(10.2)},
			{Index: 3, Values: map[string]float64{"boomFt": 6, "detunePct": 3}, Impedance: &solver.Impedance{R: 44, X: -10}, ForwardGain: fp(10.7), FrontToBack: fp(13.8)},
			{Index: 4, Values: map[string]float64{"boomFt": 6, "detunePct": 4}, Impedance: &solver.Impedance{R: 38, X: -26}, ForwardGain: fp(11.08), FrontToBack: fp(16.2)},
			{Index: 5, Values: map[string]float64{"boomFt": 6, "detunePct": 5}, Impedance: &solver.Impedance{R: 31, X: -52}, ForwardGain: fp(10.8), FrontToBack: fp(17.24)},
		},
	}
}

func TestSearchGroupedPerBoom(t *testing.T) {
	table := boomTable()

	groups, err := SearchGrouped(table, TargetGain, "boomFt", nil)
	if err != nil {
		t.Fatalf("grouped gain search returned error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected one group per boom value, got %d", len(groups))
	}
	if groups[0].AxisValue != 2 || groups[0].Best.Value("detunePct") != 4 {
		t.Errorf("boom 2 ft optimum at detune %g, want 4", groups[0].Best.Value("detunePct"))
	}
	if groups[1].AxisValue != 6 || groups[1].Best.Value("detunePct") != 4 {
		t.Errorf("boom 6 ft optimum at detune %g, want 4", groups[1].Best.Value("detunePct"))
	}

	groups, err = SearchGrouped(table, TargetFrontToBack, "boomFt", nil)
	if err != nil {
		t.Fatalf("grouped front-to-back search returned error: %v", err)
	}
	if groups[0].Best.Value("detunePct") != 5 || groups[1].Best.Value("detunePct") != 5 {
		t.Errorf("front-to-back optima at detune %g and %g, want 5 and 5",
			groups[0].Best.Value("detunePct"), groups[1].Best.Value("detunePct"))
	}
}

func TestSearchGroupedHonorsConstraint(t *testing.T) {
	table := boomTable()

	// The ceiling excludes every point on the short boom; the group is
	// skipped rather than relaxed.
	groups, err := SearchGrouped(table, TargetGain, "boomFt", ReactanceCeiling(12))
	if err != nil {
		t.Fatalf("constrained grouped search returned error: %v", err)
	}
	if len(groups) != 1 || groups[0].AxisValue != 6 {
		t.Fatalf("groups = %+v, want only the 6 ft boom", groups)
	}
	if groups[0].Best.Value("detunePct") != 3 {
		t.Errorf("constrained optimum at detune %g, want 3", groups[0].Best.Value("detunePct"))
	}
}

func TestSearchGroupedInfeasibleAndMissingAxis(t *testing.T) {
	table := boomTable()

	if _, err := SearchGrouped(table, TargetGain, "boomFt", ReactanceCeiling(1)); !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
	if _, err := SearchGrouped(table, TargetGain, "heightM", nil); err == nil {
		t.Fatal("expected error for unknown grouping axis")
	}
}

func TestSearchInfeasible(t *testing.T) {
	table := testTable()

	_, err := SearchConstrained(table, TargetGain, ReactanceCeiling(1))
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}

	empty := &sweep.Table{Name: "empty"}
	if _, err := Search(empty, TargetGain); !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible for empty table, got %v", err)
	}
}
