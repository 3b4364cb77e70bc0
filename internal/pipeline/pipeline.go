package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/scrubd/scrubd/internal/dataset"
)

// ActionType identifies one transformation step.
type ActionType string

const (
	ActionDropColumns    ActionType = "drop_columns"
	ActionDropDuplicates ActionType = "drop_duplicates"
	ActionFilterRows     ActionType = "filter_rows"
	ActionImpute         ActionType = "impute"
	ActionClipOutliers   ActionType = "clip_outliers"
)

// Action is one transformation applied to a frame. Options carries
// per-type parameters:
//
//	impute:        "strategy" (mean|median|constant), "value" (constant)
//	filter_rows:   "op" (eq|ne|gt|lt|ge|le), "value"
//	clip_outliers: "threshold" (z-score bound, default 3)
type Action struct {
	Type    ActionType     `json:"action_type"`
	Columns []string       `json:"columns,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// Metadata is the pipeline's descriptor.
type Metadata struct {
	ID           string `json:"id"`
	FeatureSetID string `json:"feature_set_id,omitempty"`
}

// Pipeline is an ordered list of actions bound to at most one feature
// set.
type Pipeline struct {
	Metadata Metadata `json:"metadata"`
	Actions  []Action `json:"actions"`
}

// Apply runs the pipeline's actions in order against a copy of f.
func (p *Pipeline) Apply(f dataset.Frame) (dataset.Frame, error) {
	out := f.Clone()
	for i, action := range p.Actions {
		var err error
		out, err = applyAction(out, action)
		if err != nil {
			return dataset.Frame{}, fmt.Errorf("pipeline %s action %d (%s): %w",
				p.Metadata.ID, i, action.Type, err)
		}
	}
	return out, nil
}

func applyAction(f dataset.Frame, a Action) (dataset.Frame, error) {
	switch a.Type {
	case ActionDropColumns:
		return f.WithoutColumns(a.Columns), nil
	case ActionDropDuplicates:
		return dropDuplicates(f), nil
	case ActionFilterRows:
		return filterRows(f, a)
	case ActionImpute:
		return impute(f, a)
	case ActionClipOutliers:
		return clipOutliers(f, a), nil
	default:
		return dataset.Frame{}, fmt.Errorf("unknown action type %q", a.Type)
	}
}

func dropDuplicates(f dataset.Frame) dataset.Frame {
	dup := make(map[int]bool)
	for _, i := range f.DuplicateRows() {
		dup[i] = true
	}
	return f.Select(func(row int) bool { return !dup[row] })
}

func filterRows(f dataset.Frame, a Action) (dataset.Frame, error) {
	if len(a.Columns) == 0 {
		return dataset.Frame{}, fmt.Errorf("filter_rows requires a column")
	}
	column := a.Columns[0]
	idx, ok := f.ColumnIndex(column)
	if !ok {
		return dataset.Frame{}, fmt.Errorf("unknown column %q", column)
	}
	op, _ := a.Options["op"].(string)
	if op == "" {
		op = "eq"
	}
	want := a.Options["value"]

	return f.Select(func(row int) bool {
		return compareCell(f.Rows[row][idx], op, want)
	}), nil
}

// compareCell compares numerically when both sides parse as numbers,
// otherwise as strings (eq/ne only).
func compareCell(cell, op string, want any) bool {
	if wantNum, ok := toFloat(want); ok {
		got, err := dataset.ParseFloat(cell)
		if err != nil {
			return false
		}
		switch op {
		case "eq":
			return got == wantNum
		case "ne":
			return got != wantNum
		case "gt":
			return got > wantNum
		case "lt":
			return got < wantNum
		case "ge":
			return got >= wantNum
		case "le":
			return got <= wantNum
		}
		return false
	}
	wantStr := fmt.Sprintf("%v", want)
	switch op {
	case "eq":
		return cell == wantStr
	case "ne":
		return cell != wantStr
	}
	return false
}

func impute(f dataset.Frame, a Action) (dataset.Frame, error) {
	strategy, _ := a.Options["strategy"].(string)
	if strategy == "" {
		strategy = "mean"
	}
	out := f.Clone()
	for _, column := range a.Columns {
		if _, ok := out.ColumnIndex(column); !ok {
			return dataset.Frame{}, fmt.Errorf("unknown column %q", column)
		}
		fill, err := imputeValue(out, column, strategy, a.Options["value"])
		if err != nil {
			return dataset.Frame{}, err
		}
		for i, cell := range out.Column(column) {
			if dataset.IsNull(cell) {
				out.SetCell(i, column, fill)
			}
		}
	}
	return out, nil
}

func imputeValue(f dataset.Frame, column, strategy string, constant any) (string, error) {
	switch strategy {
	case "constant":
		return fmt.Sprintf("%v", constant), nil
	case "mean", "median":
		values, _ := f.FloatColumn(column)
		if len(values) == 0 {
			return "", fmt.Errorf("impute %s: column %q has no numeric values", strategy, column)
		}
		v := stat.Mean(values, nil)
		if strategy == "median" {
			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			v = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case "mode":
		mode, ok := modeValue(f.Column(column))
		if !ok {
			return "", fmt.Errorf("impute mode: column %q is entirely null", column)
		}
		return mode, nil
	default:
		return "", fmt.Errorf("unknown impute strategy %q", strategy)
	}
}

func modeValue(cells []string) (string, bool) {
	counts := make(map[string]int)
	for _, c := range cells {
		if !dataset.IsNull(c) {
			counts[c]++
		}
	}
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount {
			best, bestCount = v, n
		}
	}
	return best, bestCount > 0
}

// clipOutliers caps values whose z-score exceeds the threshold at the
// boundary value.
func clipOutliers(f dataset.Frame, a Action) dataset.Frame {
	threshold, ok := toFloat(a.Options["threshold"])
	if !ok || threshold <= 0 {
		threshold = 3
	}
	out := f.Clone()
	for _, column := range a.Columns {
		values, positions := out.FloatColumn(column)
		if len(values) < 2 {
			continue
		}
		mean, std := stat.MeanStdDev(values, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}
		lo, hi := mean-threshold*std, mean+threshold*std
		for i, v := range values {
			if v < lo {
				out.SetCell(positions[i], column, strconv.FormatFloat(lo, 'g', -1, 64))
			} else if v > hi {
				out.SetCell(positions[i], column, strconv.FormatFloat(hi, 'g', -1, 64))
			}
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
