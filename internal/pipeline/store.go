package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/scrubd/scrubd/internal/dataset"
)

// Store persists pipelines, one JSON document per pipeline:
//
//	<root>/pipelines/<id>.json
type Store struct {
	root string
}

// NewStore creates the store root if needed.
func NewStore(root string) (*Store, error) {
	root = dataset.ExpandHome(root)
	dir := filepath.Join(root, "pipelines")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pipeline store: %w", err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

// Exists reports whether a pipeline with this id is stored.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Create stores a new pipeline. An empty id gets a generated one.
func (s *Store) Create(id, featureSetID string, actions []Action) (*Pipeline, error) {
	if id == "" {
		id = uuid.NewString()
	}
	p := &Pipeline{
		Metadata: Metadata{ID: id, FeatureSetID: featureSetID},
		Actions:  actions,
	}
	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a pipeline by id.
func (s *Store) Get(id string) (*Pipeline, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read pipeline %s: %w", id, err)
	}
	var p Pipeline
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode pipeline %s: %w", id, err)
	}
	return &p, nil
}

// Save writes a pipeline document.
func (s *Store) Save(p *Pipeline) error {
	data, err := sonic.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pipeline %s: %w", p.Metadata.ID, err)
	}
	if err := os.WriteFile(s.path(p.Metadata.ID), data, 0o644); err != nil {
		return fmt.Errorf("write pipeline %s: %w", p.Metadata.ID, err)
	}
	return nil
}

// List returns all stored pipelines, sorted by id.
func (s *Store) List() ([]*Pipeline, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	var out []*Pipeline
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		p, err := s.Get(e.Name()[:len(e.Name())-len(".json")])
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metadata.ID < out[j].Metadata.ID })
	return out, nil
}
