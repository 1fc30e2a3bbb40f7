// Package output provides utilities for formatting and displaying sweep
// results. The core engine only exposes tables and named comparisons;
// rendering beyond these flat formats belongs to external consumers.
package output

import (
	"fmt"
	"strings"

	"github.com/kd8watts/antsweep/internal/matching"
	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options adjusts table rendering. A positive FreqMHz adds a matching
// component column computed from each point's impedance.
type Options struct {
	FreqMHz float64
}

// undefinedCell marks failed or indeterminate points in every format.
const undefinedCell = "undefined"

// headers returns the column names for a table: axis columns first, then
// the derived results.
func headers(t *sweep.Table, opts Options) []string {
	cols := make([]string, 0, len(t.Axes)+6)
	for _, ax := range t.Axes {
		cols = append(cols, ax.Name)
	}
	cols = append(cols, "R (ohm)", "X (ohm)")
	if opts.FreqMHz > 0 {
		cols = append(cols, "Match")
	}
	cols = append(cols, "Gain (dBi)", "F/B (dB)", "MaxGainEl (deg)")
	return cols
}

// row renders one point to cells aligned with headers.
func row(t *sweep.Table, p sweep.Point, opts Options) []string {
	cells := make([]string, 0, len(t.Axes)+6)
	for _, ax := range t.Axes {
		cells = append(cells, fmt.Sprintf("%.2f", p.Value(ax.Name)))
	}

	if p.Impedance != nil {
		cells = append(cells,
			fmt.Sprintf("%.2f", mathutil.Round(p.Impedance.R)),
			fmt.Sprintf("%.2f", mathutil.Round(p.Impedance.X)),
		)
		if opts.FreqMHz > 0 {
			cells = append(cells, matching.Synthesize(*p.Impedance, opts.FreqMHz).String())
		}
	} else {
		cells = append(cells, undefinedCell, undefinedCell)
		if opts.FreqMHz > 0 {
			cells = append(cells, undefinedCell)
		}
	}

	cells = append(cells, metricCell(p.ForwardGain), metricCell(p.FrontToBack), metricCell(p.MaxGainElDeg))
	return cells
}

func metricCell(v *float64) string {
	if v == nil {
		return undefinedCell
	}
	return fmt.Sprintf("%.2f", mathutil.Round(*v))
}

// PrettyFormat outputs a human-readable rather than machine-readable
// table.
func PrettyFormat(t *sweep.Table, opts Options) {
	p := message.NewPrinter(language.English)
	_, _ = p.Printf("--- Results for sweep %s ---\n", t.Name)
	cols := headers(t, opts)
	fmt.Println(strings.Join(cols, " | "))
	underline := make([]string, len(cols))
	for i, c := range cols {
		underline[i] = strings.Repeat("_", len(c))
	}
	fmt.Println(strings.Join(underline, " | "))
	for _, point := range t.Points {
		fmt.Println(strings.Join(row(t, point, opts), " | "))
		if point.Err != nil {
			fmt.Printf("  ! point %d: %v\n", point.Index, point.Err)
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(t *sweep.Table, opts Options) {
	cols := headers(t, opts)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
	}
	fmt.Println(strings.Join(quoted, ","))
	for _, point := range t.Points {
		cells := row(t, point, opts)
		for i, c := range cells {
			cells[i] = `"` + c + `"`
		}
		fmt.Println(strings.Join(cells, ","))
	}
}

// Series is one side of a named comparison.
type Series struct {
	Label       string
	ForwardGain *float64
	FrontToBack *float64
}

// Comparison pairs two configurations evaluated under identical
// conditions, e.g. beam vs. dipole reference.
type Comparison struct {
	Name string
	A, B Series
}

// PrettyComparison prints a two-series comparison table.
func PrettyComparison(c Comparison) {
	fmt.Printf("--- %s ---\n", c.Name)
	fmt.Println("Case | Gain (dBi) | F/B (dB)")
	fmt.Println("____ | __________ | ________")
	for _, s := range []Series{c.A, c.B} {
		fmt.Printf("%s | %s | %s\n", s.Label, metricCell(s.ForwardGain), metricCell(s.FrontToBack))
	}
}
