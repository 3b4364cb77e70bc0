package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Document names persisted per feature set.
const (
	DocStatistics  = "statistics"
	DocInsights    = "insights"
	DocSuggestions = "suggestions"
	DocSampleData  = "sample_data"
)

// SampleRows is how many rows the persisted sample keeps.
const SampleRows = 20

// Store persists feature sets as JSON documents, one directory per set:
//
//	<root>/feature_sets/<id>/metadata.json
//	<root>/feature_sets/<id>/data.json
//	<root>/feature_sets/<id>/orig_data.json
//	<root>/feature_sets/<id>/{statistics,insights,suggestions,sample_data}.json
type Store struct {
	root string
}

// NewStore creates the store root if needed.
func NewStore(root string) (*Store, error) {
	root = ExpandHome(root)
	dir := filepath.Join(root, "feature_sets")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create feature set store: %w", err)
	}
	return &Store{root: dir}, nil
}

// ExpandHome resolves a leading "~" against the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func (s *Store) dir(id string) string {
	return filepath.Join(s.root, id)
}

// Exists reports whether a feature set with this id is stored.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(s.dir(id), "metadata.json"))
	return err == nil
}

// Create stores a new feature set with frame as both current and
// original data. An empty id gets a generated one.
func (s *Store) Create(id, name string, frame Frame) (*FeatureSet, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := os.MkdirAll(s.dir(id), 0o755); err != nil {
		return nil, fmt.Errorf("create feature set %s: %w", id, err)
	}
	md := Metadata{ID: id, Name: name}
	if err := s.SaveMetadata(md); err != nil {
		return nil, err
	}
	if err := s.SaveData(id, frame); err != nil {
		return nil, err
	}
	if err := s.SaveOrigData(id, frame); err != nil {
		return nil, err
	}
	if err := s.SaveDocument(id, DocSampleData, frame.Head(SampleRows)); err != nil {
		return nil, err
	}
	return &FeatureSet{Metadata: md, Data: frame}, nil
}

// Metadata loads the descriptor for id.
func (s *Store) Metadata(id string) (Metadata, error) {
	var md Metadata
	if err := s.readJSON(id, "metadata", &md); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

// SaveMetadata writes the descriptor.
func (s *Store) SaveMetadata(md Metadata) error {
	return s.writeJSON(md.ID, "metadata", md)
}

// Data loads the current frame.
func (s *Store) Data(id string) (Frame, error) {
	var f Frame
	if err := s.readJSON(id, "data", &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// SaveData writes the current frame and refreshes the sample.
func (s *Store) SaveData(id string, f Frame) error {
	if err := s.writeJSON(id, "data", f); err != nil {
		return err
	}
	return s.SaveDocument(id, DocSampleData, f.Head(SampleRows))
}

// OrigData loads the as-ingested frame, falling back to current data for
// sets stored before transformation history existed.
func (s *Store) OrigData(id string) (Frame, error) {
	var f Frame
	if err := s.readJSON(id, "orig_data", &f); err != nil {
		return s.Data(id)
	}
	return f, nil
}

// SaveOrigData writes the as-ingested frame.
func (s *Store) SaveOrigData(id string, f Frame) error {
	return s.writeJSON(id, "orig_data", f)
}

// SaveDocument writes one named auxiliary document.
func (s *Store) SaveDocument(id, name string, v any) error {
	return s.writeJSON(id, name, Sanitize(v))
}

// LoadDocument loads one named auxiliary document, nil when absent.
func (s *Store) LoadDocument(id, name string) (any, error) {
	data, err := os.ReadFile(filepath.Join(s.dir(id), name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s for feature set %s: %w", name, id, err)
	}
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s for feature set %s: %w", name, id, err)
	}
	return v, nil
}

// List returns descriptors of all stored feature sets, sorted by id.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list feature sets: %w", err)
	}
	var out []Metadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		md, err := s.Metadata(e.Name())
		if err != nil {
			continue
		}
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Document assembles the feature set's full response document.
func (s *Store) Document(id string) (map[string]any, error) {
	md, err := s.Metadata(id)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{
		"id":       md.ID,
		"metadata": md,
	}
	for _, name := range []string{DocSampleData, DocStatistics, DocInsights, DocSuggestions} {
		v, err := s.LoadDocument(id, name)
		if err != nil {
			return nil, err
		}
		doc[name] = v
	}
	return doc, nil
}

// ColumnDocument is Document narrowed to one column: statistics are
// filtered to the column's keys and column types to the single entry.
func (s *Store) ColumnDocument(id, column string) (map[string]any, error) {
	doc, err := s.Document(id)
	if err != nil {
		return nil, err
	}
	if stats, ok := doc[DocStatistics].(map[string]any); ok {
		filtered := make(map[string]any)
		prefix := column + "/"
		for k, v := range stats {
			if strings.HasPrefix(k, prefix) {
				filtered[k] = v
			}
		}
		doc[DocStatistics] = filtered
	}
	doc["column"] = column
	return doc, nil
}

func (s *Store) writeJSON(id, name string, v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s for feature set %s: %w", name, id, err)
	}
	path := filepath.Join(s.dir(id), name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s for feature set %s: %w", name, id, err)
	}
	return nil
}

func (s *Store) readJSON(id, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir(id), name+".json"))
	if err != nil {
		return fmt.Errorf("read %s for feature set %s: %w", name, id, err)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s for feature set %s: %w", name, id, err)
	}
	return nil
}
