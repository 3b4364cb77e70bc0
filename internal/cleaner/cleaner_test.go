package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrubd/scrubd/internal/dataset"
	"github.com/scrubd/scrubd/internal/logging"
	"github.com/scrubd/scrubd/internal/pipeline"
)

func testFrame() dataset.Frame {
	return dataset.Frame{
		Columns: []string{"age", "score", "tier", "notes"},
		Rows: [][]string{
			{"34", "80.5", "gold", "likes email"},
			{"29", "75.0", "gold", "calls often"},
			{"", "60.25", "silver", "prefers sms"},
			{"34", "80.5", "gold", "likes email"},
			{"41", "90.0", "silver", ""},
			{"38", "85.5", "gold", ""},
		},
	}
}

func TestAnalyzeColumnTypes(t *testing.T) {
	c := New(logging.NewNop())
	r, err := c.Analyze(testFrame())
	require.NoError(t, err)

	assert.Equal(t, TypeNumber, r.ColumnTypes["age"])
	assert.Equal(t, TypeNumberDecimals, r.ColumnTypes["score"])
	assert.Equal(t, TypeCategory, r.ColumnTypes["tier"])
	assert.Equal(t, TypeText, r.ColumnTypes["notes"])
}

func TestAnalyzeDetectsDatetimeAndBoolean(t *testing.T) {
	f := dataset.Frame{
		Columns: []string{"joined", "active"},
		Rows: [][]string{
			{"2024-01-15", "true"},
			{"2024-03-02", "false"},
			{"", "yes"},
		},
	}
	c := New(logging.NewNop())
	r, err := c.Analyze(f)
	require.NoError(t, err)

	assert.Equal(t, TypeDatetime, r.ColumnTypes["joined"])
	assert.Equal(t, TypeBoolean, r.ColumnTypes["active"])
}

func TestAnalyzeStatistics(t *testing.T) {
	c := New(logging.NewNop())
	r, err := c.Analyze(testFrame())
	require.NoError(t, err)

	assert.Equal(t, 6, r.Statistics["count"])
	assert.Equal(t, 4, r.Statistics["columns_count"])
	assert.Equal(t, 1, r.Statistics["duplicate_row_count"])

	assert.Equal(t, 5, r.Statistics["age/count"])
	assert.Equal(t, 1, r.Statistics["age/null_value_count"])
	assert.InDelta(t, 35.2, r.Statistics["age/average"].(float64), 0.001)
	assert.Equal(t, 29.0, r.Statistics["age/min"])
	assert.Equal(t, 41.0, r.Statistics["age/max"])

	assert.Equal(t, 2, r.Statistics["tier/count_distinct"])
	assert.Equal(t, "gold", r.Statistics["tier/mode"])
	assert.Equal(t, 4, r.Statistics["tier/mode_count"])
}

func TestAnalyzeSuggestions(t *testing.T) {
	c := New(logging.NewNop())
	r, err := c.Analyze(testFrame())
	require.NoError(t, err)

	var hasDedupe bool
	imputes := make(map[string]string) // column -> strategy
	for _, s := range r.Suggestions {
		switch s.Action.Type {
		case pipeline.ActionDropDuplicates:
			hasDedupe = true
		case pipeline.ActionImpute:
			strategy, _ := s.Action.Options["strategy"].(string)
			for _, col := range s.Action.Columns {
				imputes[col] = strategy
			}
		}
	}

	assert.True(t, hasDedupe)
	assert.Equal(t, "median", imputes["age"], "numeric columns impute with median")
	assert.Equal(t, "mode", imputes["notes"], "non-numeric columns impute with mode")
}

func TestAnalyzeSuggestsDroppingNearEmptyColumn(t *testing.T) {
	f := dataset.Frame{
		Columns: []string{"a", "mostly_null"},
		Rows: [][]string{
			{"1", ""}, {"2", ""}, {"3", ""}, {"4", ""}, {"5", "x"},
		},
	}
	c := New(logging.NewNop())
	r, err := c.Analyze(f)
	require.NoError(t, err)

	var dropped []string
	imputed := false
	for _, s := range r.Suggestions {
		switch s.Action.Type {
		case pipeline.ActionDropColumns:
			dropped = s.Action.Columns
		case pipeline.ActionImpute:
			imputed = true
		}
	}
	assert.Equal(t, []string{"mostly_null"}, dropped)
	// a dropped column must not also be imputed
	assert.False(t, imputed)
}

func TestAnalyzeHighCorrelationInsight(t *testing.T) {
	f := dataset.Frame{
		Columns: []string{"x", "y"},
		Rows: [][]string{
			{"1", "2"}, {"2", "4"}, {"3", "6"}, {"4", "8"}, {"5", "10"},
		},
	}
	c := New(logging.NewNop())
	r, err := c.Analyze(f)
	require.NoError(t, err)

	require.Len(t, r.Insights, 1)
	assert.Equal(t, "high_correlation", r.Insights[0].Type)
	assert.InDelta(t, 1.0, r.Insights[0].Value, 0.001)
	assert.ElementsMatch(t, []string{"x", "y"}, r.Insights[0].Columns)
}

func TestAnalyzeEmptyFrame(t *testing.T) {
	c := New(logging.NewNop())
	_, err := c.Analyze(dataset.Frame{})
	require.Error(t, err)
}

func TestCleanTransformsFrame(t *testing.T) {
	c := New(logging.NewNop())
	r, err := c.Clean(testFrame())
	require.NoError(t, err)

	require.NotEmpty(t, r.Actions)
	assert.Equal(t, 5, r.Frame.NumRows(), "duplicate row removed")
	assert.Zero(t, r.Frame.NullCount("age"), "nulls imputed")

	// post-clean statistics describe the transformed frame
	assert.Equal(t, 5, r.Statistics["count"])
	assert.Equal(t, 0, r.Statistics["duplicate_row_count"])
}

func TestCleanIsNoOpOnCleanData(t *testing.T) {
	f := dataset.Frame{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"1", "x"}, {"2", "y"}, {"3", "z"}},
	}
	c := New(logging.NewNop())
	r, err := c.Clean(f)
	require.NoError(t, err)

	assert.Empty(t, r.Actions)
	assert.Equal(t, 3, r.Frame.NumRows())
}

func TestSummaryStatistics(t *testing.T) {
	c := New(logging.NewNop())

	r, err := c.Analyze(testFrame())
	require.NoError(t, err)
	summary := r.SummaryStatistics()
	assert.Equal(t, 6, summary["count"])
	assert.Equal(t, "Bad", summary["quality"], "duplicates and nulls present")

	cleaned, err := c.Clean(testFrame())
	require.NoError(t, err)
	summary = cleaned.SummaryStatistics()
	assert.Equal(t, "Good", summary["quality"])
}
