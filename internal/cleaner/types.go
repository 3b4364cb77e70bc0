package cleaner

import (
	"math"
	"strings"
	"time"

	"github.com/scrubd/scrubd/internal/dataset"
)

// maxCategoryCardinality bounds how many distinct values a column may
// have and still count as categorical.
const maxCategoryCardinality = 20

func columnTypes(f dataset.Frame) map[string]string {
	types := make(map[string]string, f.NumColumns())
	for _, column := range f.Columns {
		types[column] = typeOf(f.Column(column))
	}
	return types
}

func typeOf(cells []string) string {
	nonNull := make([]string, 0, len(cells))
	for _, c := range cells {
		if !dataset.IsNull(c) {
			nonNull = append(nonNull, c)
		}
	}
	if len(nonNull) == 0 {
		return TypeText
	}

	if isBoolean(nonNull) {
		return TypeBoolean
	}

	numeric, integral := true, true
	for _, c := range nonNull {
		v, err := dataset.ParseFloat(c)
		if err != nil {
			numeric = false
			break
		}
		if v != math.Trunc(v) {
			integral = false
		}
	}
	if numeric {
		if integral {
			return TypeNumber
		}
		return TypeNumberDecimals
	}

	if isDatetime(nonNull) {
		return TypeDatetime
	}

	distinct := make(map[string]bool, len(nonNull))
	for _, c := range nonNull {
		distinct[c] = true
	}
	if len(distinct) <= maxCategoryCardinality && len(distinct)*2 <= len(nonNull) {
		return TypeCategory
	}
	return TypeText
}

func isBoolean(cells []string) bool {
	for _, c := range cells {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "true", "false", "yes", "no", "t", "f":
		default:
			return false
		}
	}
	return true
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func isDatetime(cells []string) bool {
	for _, c := range cells {
		if !parsesAsTime(strings.TrimSpace(c)) {
			return false
		}
	}
	return true
}

func parsesAsTime(cell string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, cell); err == nil {
			return true
		}
	}
	return false
}

func isNumericType(t string) bool {
	return t == TypeNumber || t == TypeNumberDecimals
}
