package mesh

import (
	"encoding/json"
	"fmt"
)

// Record is the plain persistence shape of a mesh. It holds no live
// references: ids alone encode structure, so a record can be copied,
// stored and restored freely.
type Record struct {
	ID        MeshID    `json:"id"`
	Name      string    `json:"name"`
	Vertices  []Vertex  `json:"vertices"`
	Edges     []Edge    `json:"edges"`
	Faces     []Face    `json:"faces"`
	Transform Transform `json:"transform"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
	Shading   Shading   `json:"shading,omitempty"`
}

// ToRecord returns a deep copy of m as a record.
func (m *Mesh) ToRecord() Record {
	c := m.Clone()
	return Record{
		ID:        c.ID,
		Name:      c.Name,
		Vertices:  c.Vertices,
		Edges:     c.Edges,
		Faces:     c.Faces,
		Transform: c.Transform,
		Visible:   c.Visible,
		Locked:    c.Locked,
		Shading:   c.Shading,
	}
}

// FromRecord reconstructs a mesh from r. The record is copied, never
// aliased. Stored edges are kept as-is; call Rebuild to re-derive them.
func FromRecord(r Record) *Mesh {
	src := &Mesh{
		ID:        r.ID,
		Name:      r.Name,
		Vertices:  r.Vertices,
		Edges:     r.Edges,
		Faces:     r.Faces,
		Transform: r.Transform,
		Visible:   r.Visible,
		Locked:    r.Locked,
		Shading:   r.Shading,
	}
	m := src.Clone()
	if m.Shading == "" {
		m.Shading = ShadingFlat
	}
	return m
}

// Marshal encodes m as a JSON record.
func Marshal(m *Mesh) ([]byte, error) {
	data, err := json.Marshal(m.ToRecord())
	if err != nil {
		return nil, fmt.Errorf("mesh: marshal %s: %w", m.Name, err)
	}
	return data, nil
}

// Unmarshal decodes a JSON record into a mesh.
func Unmarshal(data []byte) (*Mesh, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("mesh: unmarshal: %w", err)
	}
	return FromRecord(r), nil
}
