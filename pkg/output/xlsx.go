package output

import (
	"fmt"

	"github.com/kd8watts/antsweep/internal/sweep"
	"github.com/kd8watts/antsweep/pkg/mathutil"
	"github.com/xuri/excelize/v2"
)

// XlsxFormat writes one sweep table per sheet into an Excel workbook at
// path. Numeric cells stay numeric so the workbook remains sortable;
// failed or undefined cells hold the undefined marker string.
func XlsxFormat(tables []*sweep.Table, opts Options, path string) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	for ti, t := range tables {
		sheet := t.Name
		if sheet == "" {
			sheet = fmt.Sprintf("Sheet%d", ti+1)
		}
		if ti == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("add sheet %s: %w", sheet, err)
			}
		}

		cols := headers(t, opts)
		for ci, name := range cols {
			cell, err := excelize.CoordinatesToCellName(ci+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return err
			}
		}

		for ri, point := range t.Points {
			if err := writePointRow(f, sheet, t, point, opts, ri+2); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writePointRow(f *excelize.File, sheet string, t *sweep.Table, p sweep.Point, opts Options, rowNum int) error {
	col := 1
	set := func(v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			return err
		}
		col++
		return f.SetCellValue(sheet, cell, v)
	}
	setMetric := func(v *float64) error {
		if v == nil {
			return set(undefinedCell)
		}
		return set(mathutil.Round(*v))
	}

	for _, ax := range t.Axes {
		if err := set(p.Value(ax.Name)); err != nil {
			return err
		}
	}
	if p.Impedance != nil {
		if err := set(mathutil.Round(p.Impedance.R)); err != nil {
			return err
		}
		if err := set(mathutil.Round(p.Impedance.X)); err != nil {
			return err
		}
	} else {
		if err := set(undefinedCell); err != nil {
			return err
		}
		if err := set(undefinedCell); err != nil {
			return err
		}
	}
	if opts.FreqMHz > 0 {
		cells := row(t, p, opts)
		// Match column sits right after R and X in the rendered row.
		if err := set(cells[len(t.Axes)+2]); err != nil {
			return err
		}
	}
	if err := setMetric(p.ForwardGain); err != nil {
		return err
	}
	if err := setMetric(p.FrontToBack); err != nil {
		return err
	}
	return setMetric(p.MaxGainElDeg)
}
