package cleaner

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/scrubd/scrubd/internal/dataset"
)

// outlierZScore is the |z| bound past which a value counts as an
// outlier.
const outlierZScore = 3.0

// statistics builds the flat statistics document: global keys plus
// "<column>/<stat>" keys per column.
func statistics(f dataset.Frame, types map[string]string) map[string]any {
	stats := map[string]any{
		"count":               f.NumRows(),
		"columns_count":       f.NumColumns(),
		"duplicate_row_count": len(f.DuplicateRows()),
	}

	totalCells := f.NumRows() * f.NumColumns()
	totalNulls := 0

	for _, column := range f.Columns {
		cells := f.Column(column)
		nulls := 0
		for _, c := range cells {
			if dataset.IsNull(c) {
				nulls++
			}
		}
		totalNulls += nulls

		stats[column+"/count"] = len(cells) - nulls
		stats[column+"/null_value_count"] = nulls
		if len(cells) > 0 {
			stats[column+"/null_value_rate"] = float64(nulls) / float64(len(cells))
		} else {
			stats[column+"/null_value_rate"] = 0.0
		}

		if isNumericType(types[column]) {
			numberStatistics(stats, f, column)
		} else {
			categoryStatistics(stats, cells, column)
		}
	}

	if totalCells > 0 {
		stats["null_value_rate"] = float64(totalNulls) / float64(totalCells)
	} else {
		stats["null_value_rate"] = 0.0
	}
	return stats
}

func numberStatistics(stats map[string]any, f dataset.Frame, column string) {
	values, _ := f.FloatColumn(column)
	if len(values) == 0 {
		return
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean := stat.Mean(values, nil)
	stats[column+"/average"] = mean
	stats[column+"/median"] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	stats[column+"/min"] = sorted[0]
	stats[column+"/max"] = sorted[len(sorted)-1]
	stats[column+"/sum"] = mean * float64(len(values))
	stats[column+"/quantile25"] = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	stats[column+"/quantile75"] = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	// StdDev is NaN for a single value; Sanitize turns it into null on
	// output.
	std := stat.StdDev(values, nil)
	stats[column+"/std"] = std

	outliers := 0
	if !math.IsNaN(std) && std > 0 {
		for _, v := range values {
			if math.Abs(v-mean)/std > outlierZScore {
				outliers++
			}
		}
	}
	stats[column+"/outlier_count"] = outliers
}

func categoryStatistics(stats map[string]any, cells []string, column string) {
	counts := make(map[string]int)
	for _, c := range cells {
		if !dataset.IsNull(c) {
			counts[c]++
		}
	}
	stats[column+"/count_distinct"] = len(counts)

	mode, modeCount := "", 0
	for v, n := range counts {
		if n > modeCount {
			mode, modeCount = v, n
		}
	}
	if modeCount > 0 {
		stats[column+"/mode"] = mode
		stats[column+"/mode_count"] = modeCount
	}
}

// highCorrelation is the |r| bound past which a column pair becomes an
// insight.
const highCorrelation = 0.7

// insights reports strongly correlated numeric column pairs.
func insights(f dataset.Frame, types map[string]string) []Insight {
	var numeric []string
	for _, column := range f.Columns {
		if isNumericType(types[column]) {
			numeric = append(numeric, column)
		}
	}

	var out []Insight
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			x, y := pairedValues(f, numeric[i], numeric[j])
			if len(x) < 3 {
				continue
			}
			r := stat.Correlation(x, y, nil)
			if math.IsNaN(r) || math.Abs(r) < highCorrelation {
				continue
			}
			out = append(out, Insight{
				Type:    "high_correlation",
				Columns: []string{numeric[i], numeric[j]},
				Value:   r,
				Message: fmt.Sprintf("%s and %s are strongly correlated (r=%.2f)",
					numeric[i], numeric[j], r),
			})
		}
	}
	return out
}

// pairedValues extracts rows where both columns parse as numbers.
func pairedValues(f dataset.Frame, a, b string) ([]float64, []float64) {
	ai, aok := f.ColumnIndex(a)
	bi, bok := f.ColumnIndex(b)
	if !aok || !bok {
		return nil, nil
	}
	var x, y []float64
	for _, row := range f.Rows {
		va, errA := dataset.ParseFloat(row[ai])
		vb, errB := dataset.ParseFloat(row[bi])
		if errA != nil || errB != nil {
			continue
		}
		x = append(x, va)
		y = append(y, vb)
	}
	return x, y
}
