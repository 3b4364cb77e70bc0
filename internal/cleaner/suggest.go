package cleaner

import (
	"fmt"

	"github.com/scrubd/scrubd/internal/dataset"
	"github.com/scrubd/scrubd/internal/pipeline"
)

// dropColumnNullRate is the null rate past which a column is suggested
// for removal instead of imputation.
const dropColumnNullRate = 0.8

// suggestions derives cleanup steps from the statistics document. Order
// matters: column drops run before imputation so a near-empty column is
// removed, not filled.
func suggestions(f dataset.Frame, types map[string]string, stats map[string]any) []Suggestion {
	var out []Suggestion

	var dropColumns []string
	for _, column := range f.Columns {
		rate, _ := stats[column+"/null_value_rate"].(float64)
		if rate >= dropColumnNullRate {
			dropColumns = append(dropColumns, column)
		}
	}
	if len(dropColumns) > 0 {
		out = append(out, Suggestion{
			Title:   "Remove columns with high null rate",
			Message: fmt.Sprintf("%d column(s) are at least %.0f%% null", len(dropColumns), dropColumnNullRate*100),
			Action: pipeline.Action{
				Type:    pipeline.ActionDropColumns,
				Columns: dropColumns,
			},
		})
	}
	dropped := make(map[string]bool, len(dropColumns))
	for _, c := range dropColumns {
		dropped[c] = true
	}

	if n, _ := stats["duplicate_row_count"].(int); n > 0 {
		out = append(out, Suggestion{
			Title:   "Remove duplicate rows",
			Message: fmt.Sprintf("%d row(s) duplicate an earlier row", n),
			Action:  pipeline.Action{Type: pipeline.ActionDropDuplicates},
		})
	}

	for _, column := range f.Columns {
		if dropped[column] {
			continue
		}
		nulls, _ := stats[column+"/null_value_count"].(int)
		if nulls == 0 {
			continue
		}
		strategy := "mode"
		if isNumericType(types[column]) {
			strategy = "median"
		}
		out = append(out, Suggestion{
			Title:   "Fill in missing values",
			Message: fmt.Sprintf("column %q has %d missing value(s); fill with %s", column, nulls, strategy),
			Action: pipeline.Action{
				Type:    pipeline.ActionImpute,
				Columns: []string{column},
				Options: map[string]any{"strategy": strategy},
			},
		})
	}

	for _, column := range f.Columns {
		if dropped[column] || !isNumericType(types[column]) {
			continue
		}
		outliers, _ := stats[column+"/outlier_count"].(int)
		if outliers == 0 {
			continue
		}
		out = append(out, Suggestion{
			Title:   "Clip outliers",
			Message: fmt.Sprintf("column %q has %d outlier(s) beyond %g standard deviations", column, outliers, outlierZScore),
			Action: pipeline.Action{
				Type:    pipeline.ActionClipOutliers,
				Columns: []string{column},
				Options: map[string]any{"threshold": outlierZScore},
			},
		})
	}

	return out
}
