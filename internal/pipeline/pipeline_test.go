package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrubd/scrubd/internal/dataset"
)

func sampleFrame() dataset.Frame {
	return dataset.Frame{
		Columns: []string{"age", "score", "city"},
		Rows: [][]string{
			{"34", "80", "SF"},
			{"29", "75", "NY"},
			{"", "60", "SF"},
			{"34", "80", "SF"},
			{"41", "90", "LA"},
		},
	}
}

func apply(t *testing.T, f dataset.Frame, actions ...Action) dataset.Frame {
	t.Helper()
	p := Pipeline{Metadata: Metadata{ID: "test"}, Actions: actions}
	out, err := p.Apply(f)
	require.NoError(t, err)
	return out
}

func TestApplyDropColumns(t *testing.T) {
	out := apply(t, sampleFrame(), Action{Type: ActionDropColumns, Columns: []string{"city"}})
	assert.Equal(t, []string{"age", "score"}, out.Columns)
	assert.Equal(t, 5, out.NumRows())
}

func TestApplyDropDuplicates(t *testing.T) {
	out := apply(t, sampleFrame(), Action{Type: ActionDropDuplicates})
	assert.Equal(t, 4, out.NumRows())
	assert.Empty(t, out.DuplicateRows())
}

func TestApplyFilterRows(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		value   any
		wantLen int
	}{
		{"numeric gt", "gt", 75.0, 3},
		{"numeric le", "le", 75.0, 2},
		{"numeric eq", "eq", 80.0, 2},
		{"numeric ne", "ne", 80.0, 3},
		{"string eq", "eq", "SF", 3},
		{"string ne", "ne", "SF", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column := "score"
			if tt.value == "SF" {
				column = "city"
			}
			out := apply(t, sampleFrame(), Action{
				Type:    ActionFilterRows,
				Columns: []string{column},
				Options: map[string]any{"op": tt.op, "value": tt.value},
			})
			assert.Equal(t, tt.wantLen, out.NumRows())
		})
	}
}

func TestApplyFilterRowsValidation(t *testing.T) {
	p := Pipeline{Actions: []Action{{Type: ActionFilterRows}}}
	_, err := p.Apply(sampleFrame())
	require.Error(t, err)

	p = Pipeline{Actions: []Action{{Type: ActionFilterRows, Columns: []string{"missing"}}}}
	_, err = p.Apply(sampleFrame())
	require.Error(t, err)
}

func TestApplyImputeMean(t *testing.T) {
	out := apply(t, sampleFrame(), Action{
		Type:    ActionImpute,
		Columns: []string{"age"},
		Options: map[string]any{"strategy": "mean"},
	})
	// mean of 34, 29, 34, 41
	assert.Equal(t, "34.5", out.Rows[2][0])
	assert.Zero(t, out.NullCount("age"))
}

func TestApplyImputeMedian(t *testing.T) {
	out := apply(t, sampleFrame(), Action{
		Type:    ActionImpute,
		Columns: []string{"age"},
		Options: map[string]any{"strategy": "median"},
	})
	assert.Equal(t, "34", out.Rows[2][0])
}

func TestApplyImputeConstant(t *testing.T) {
	out := apply(t, sampleFrame(), Action{
		Type:    ActionImpute,
		Columns: []string{"age"},
		Options: map[string]any{"strategy": "constant", "value": "0"},
	})
	assert.Equal(t, "0", out.Rows[2][0])
}

func TestApplyImputeMode(t *testing.T) {
	f := dataset.Frame{
		Columns: []string{"city"},
		Rows:    [][]string{{"SF"}, {"NY"}, {""}, {"SF"}},
	}
	out := apply(t, f, Action{
		Type:    ActionImpute,
		Columns: []string{"city"},
		Options: map[string]any{"strategy": "mode"},
	})
	assert.Equal(t, "SF", out.Rows[2][0])
}

func TestApplyImputeErrors(t *testing.T) {
	cases := []Action{
		{Type: ActionImpute, Columns: []string{"missing"}},
		{Type: ActionImpute, Columns: []string{"city"}, Options: map[string]any{"strategy": "mean"}},
		{Type: ActionImpute, Columns: []string{"age"}, Options: map[string]any{"strategy": "bogus"}},
	}
	for _, a := range cases {
		p := Pipeline{Actions: []Action{a}}
		_, err := p.Apply(sampleFrame())
		assert.Error(t, err)
	}
}

func TestApplyClipOutliers(t *testing.T) {
	f := dataset.Frame{
		Columns: []string{"v"},
		Rows:    [][]string{{"10"}, {"11"}, {"9"}, {"10"}, {"1000"}},
	}
	out := apply(t, f, Action{
		Type:    ActionClipOutliers,
		Columns: []string{"v"},
		Options: map[string]any{"threshold": 1.5},
	})

	clipped, err := dataset.ParseFloat(out.Rows[4][0])
	require.NoError(t, err)
	assert.Less(t, clipped, 1000.0)

	// inliers stay put
	assert.Equal(t, "10", out.Rows[0][0])
}

func TestApplyUnknownAction(t *testing.T) {
	p := Pipeline{Actions: []Action{{Type: "explode"}}}
	_, err := p.Apply(sampleFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action type")
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	f := sampleFrame()
	apply(t, f,
		Action{Type: ActionImpute, Columns: []string{"age"}, Options: map[string]any{"strategy": "mean"}},
		Action{Type: ActionDropDuplicates},
	)
	assert.Equal(t, sampleFrame(), f)
}

func TestStoreRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	actions := []Action{{Type: ActionDropDuplicates}}
	p, err := s.Create("", "fs-1", actions)
	require.NoError(t, err)
	require.NotEmpty(t, p.Metadata.ID)
	assert.True(t, s.Exists(p.Metadata.ID))

	loaded, err := s.Get(p.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, "fs-1", loaded.Metadata.FeatureSetID)
	assert.Equal(t, actions, loaded.Actions)

	loaded.Actions = append(loaded.Actions, Action{Type: ActionDropColumns, Columns: []string{"city"}})
	require.NoError(t, s.Save(loaded))
	again, err := s.Get(p.Metadata.ID)
	require.NoError(t, err)
	assert.Len(t, again.Actions, 2)
}

func TestStoreList(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"b", "a"} {
		_, err := s.Create(id, "", nil)
		require.NoError(t, err)
	}
	listed, err := s.List()
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "a", listed[0].Metadata.ID)
	assert.Equal(t, "b", listed[1].Metadata.ID)

	_, err = s.Get("missing")
	require.Error(t, err)
}
