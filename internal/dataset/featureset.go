package dataset

// Metadata is the feature set's descriptor document. ColumnTypes and the
// statistics summary are filled in after the first analyze/clean run; a
// feature set without them is considered unprocessed and is hidden from
// listings.
type Metadata struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	PipelineID  string            `json:"pipeline_id,omitempty"`
	ColumnTypes map[string]string `json:"column_types,omitempty"`
	Statistics  map[string]any    `json:"statistics,omitempty"`
}

// Processed reports whether the set has been through an analyze or clean
// run.
func (m Metadata) Processed() bool {
	return len(m.ColumnTypes) > 0 && len(m.Statistics) > 0
}

// FeatureSet pairs a descriptor with its current tabular data.
type FeatureSet struct {
	Metadata Metadata
	Data     Frame
}
