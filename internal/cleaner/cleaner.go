package cleaner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scrubd/scrubd/internal/dataset"
	"github.com/scrubd/scrubd/internal/logging"
	"github.com/scrubd/scrubd/internal/pipeline"
)

// Column types assigned by Analyze.
const (
	TypeNumber         = "number"
	TypeNumberDecimals = "number_with_decimals"
	TypeBoolean        = "true_or_false"
	TypeDatetime       = "datetime"
	TypeCategory       = "category"
	TypeText           = "text"
)

// Insight is a notable relationship found in the data.
type Insight struct {
	Type    string   `json:"type"`
	Columns []string `json:"columns"`
	Value   float64  `json:"value"`
	Message string   `json:"message"`
}

// Suggestion is a recommended cleanup step with the action that
// implements it.
type Suggestion struct {
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Action  pipeline.Action `json:"action_payload"`
}

// Result is the outcome of one analyze or clean run. After Clean, Frame
// is the transformed data and Actions the steps that produced it; after
// Analyze, Frame is the input and Actions is empty.
type Result struct {
	Frame       dataset.Frame
	ColumnTypes map[string]string
	Statistics  map[string]any
	Insights    []Insight
	Suggestions []Suggestion
	Actions     []pipeline.Action
}

// SummaryStatistics returns the compact statistics block embedded in
// feature set metadata.
func (r *Result) SummaryStatistics() map[string]any {
	quality := "Good"
	if badQuality(r.Statistics) {
		quality = "Bad"
	}
	return map[string]any{
		"count":   r.Statistics["count"],
		"quality": quality,
	}
}

func badQuality(stats map[string]any) bool {
	if n, ok := stats["duplicate_row_count"].(int); ok && n > 0 {
		return true
	}
	rate, ok := stats["null_value_rate"].(float64)
	return ok && rate > 0.2
}

// Cleaner computes statistics and cleanup transformations for frames.
type Cleaner struct {
	log *logging.Logger
}

// New creates a Cleaner.
func New(log *logging.Logger) *Cleaner {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Cleaner{log: log}
}

// Analyze computes column types, statistics, insights and suggestions
// without touching the data.
func (c *Cleaner) Analyze(f dataset.Frame) (*Result, error) {
	if f.NumColumns() == 0 {
		return nil, fmt.Errorf("analyze: frame has no columns")
	}

	types := columnTypes(f)
	stats := statistics(f, types)
	r := &Result{
		Frame:       f,
		ColumnTypes: types,
		Statistics:  stats,
		Insights:    insights(f, types),
	}
	r.Suggestions = suggestions(f, types, stats)

	c.log.Debug("analyzed frame",
		zap.Int("rows", f.NumRows()),
		zap.Int("columns", f.NumColumns()),
		zap.Int("suggestions", len(r.Suggestions)),
	)
	return r, nil
}

// Clean analyzes f, applies every suggested action, and re-analyzes the
// transformed frame. The returned result carries the transformed frame,
// its fresh statistics, and the applied actions.
func (c *Cleaner) Clean(f dataset.Frame) (*Result, error) {
	before, err := c.Analyze(f)
	if err != nil {
		return nil, err
	}

	actions := make([]pipeline.Action, 0, len(before.Suggestions))
	for _, s := range before.Suggestions {
		actions = append(actions, s.Action)
	}
	if len(actions) == 0 {
		return before, nil
	}

	p := pipeline.Pipeline{Actions: actions}
	transformed, err := p.Apply(f)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}

	after, err := c.Analyze(transformed)
	if err != nil {
		return nil, err
	}
	after.Actions = actions

	c.log.Info("cleaned frame",
		zap.Int("rows_before", f.NumRows()),
		zap.Int("rows_after", transformed.NumRows()),
		zap.Int("actions", len(actions)),
	)
	return after, nil
}
