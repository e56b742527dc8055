package scene

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/facet/pkg/mesh"
)

// Record is the persistence shape of a scene: mesh records in order.
type Record struct {
	Version uint64        `json:"version"`
	Meshes  []mesh.Record `json:"meshes"`
}

// Records returns a deep copy of every mesh in insertion order.
func (s *Scene) Records() Record {
	r := Record{Version: s.Version}
	for _, m := range s.List() {
		r.Meshes = append(r.Meshes, m.ToRecord())
	}
	return r
}

// FromRecord rebuilds a scene from r.
func FromRecord(r Record) (*Scene, error) {
	s := New()
	for _, mr := range r.Meshes {
		if err := s.Add(mesh.FromRecord(mr)); err != nil {
			return nil, err
		}
	}
	s.Version = r.Version
	return s, nil
}

// Marshal encodes the scene as indented JSON.
func Marshal(s *Scene) ([]byte, error) {
	data, err := json.MarshalIndent(s.Records(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("scene: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON scene record.
func Unmarshal(data []byte) (*Scene, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("scene: unmarshal: %w", err)
	}
	return FromRecord(r)
}
