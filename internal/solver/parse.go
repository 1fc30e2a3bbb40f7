package solver

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// impedanceRe matches the solver's feedpoint impedance line, e.g.
//
//	IMPEDANCE = ( 67.780 , -55.730 J)
var impedanceRe = regexp.MustCompile(`IMPEDANCE\s*=?\s*\(?\s*(-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?)\s*[, ]\s*(-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?)`)

// parseOutput extracts the feedpoint impedance and the far-field pattern
// rows from raw solver output, converting the solver's (zenith, azimuth)
// convention back into (elevation, azimuth). Sentinel gains are kept as
// emitted; TagNulls classifies them afterwards.
func parseOutput(out string, grid AngleGrid) (*Result, error) {
	var result Result

	m := impedanceRe.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("no feedpoint impedance in solver output")
	}
	r, err1 := strconv.ParseFloat(m[1], 64)
	x, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("malformed impedance in solver output: %q", m[0])
	}
	result.Impedance = Impedance{R: r, X: x}

	rows, err := patternRows(out)
	if err != nil {
		return nil, err
	}

	elevationCut := grid.AzimuthCount == 1 && grid.ElevationCount > 1
	seen := make(map[[2]int64]bool)
	for _, row := range rows {
		zenith, phi, gain := row[0], row[1], row[2]
		var sample FarFieldSample
		if elevationCut {
			// phi=0 half plane maps to elevation 0..90, phi=180 to 90..180.
			el := 90.0 - zenith
			if phi >= 90.0 {
				el = 90.0 + zenith
			}
			sample = FarFieldSample{ElevationDeg: el, AzimuthDeg: 0, GainDBi: gain}
		} else {
			sample = FarFieldSample{ElevationDeg: 90.0 - zenith, AzimuthDeg: phi, GainDBi: gain}
		}
		// The zenith row appears on both half planes of an elevation cut;
		// keep the first occurrence only.
		key := [2]int64{int64(sample.ElevationDeg * 1e6), int64(sample.AzimuthDeg * 1e6)}
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Samples = append(result.Samples, sample)
	}
	if len(result.Samples) == 0 {
		return nil, fmt.Errorf("no far-field pattern data in solver output")
	}

	sort.SliceStable(result.Samples, func(i, j int) bool {
		if result.Samples[i].ElevationDeg != result.Samples[j].ElevationDeg {
			return result.Samples[i].ElevationDeg < result.Samples[j].ElevationDeg
		}
		return result.Samples[i].AzimuthDeg < result.Samples[j].AzimuthDeg
	})
	return &result, nil
}

// patternRows collects (zenith, azimuth, total gain dBi) triples from the
// PATTERN DATA section. Rows carry angle pair first and total pattern
// gain in the final numeric column.
func patternRows(out string) ([][3]float64, error) {
	var rows [][3]float64
	capture := false
	header := false
	for _, line := range strings.Split(out, "\n") {
		if !capture {
			if strings.Contains(line, "PATTERN DATA") || strings.Contains(line, "FAR FIELD PATTERN") {
				capture = true
			}
			continue
		}
		if !header {
			if strings.Contains(line, "ANGLE") || strings.Contains(line, "PATTERN (DB)") {
				header = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		vals := make([]float64, 0, len(fields))
		ok := true
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		if !ok {
			continue
		}
		rows = append(rows, [3]float64{vals[0], vals[1], vals[len(vals)-1]})
	}
	if !capture {
		return nil, fmt.Errorf("no far-field pattern section in solver output")
	}
	return rows, nil
}
