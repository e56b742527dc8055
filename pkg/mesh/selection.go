package mesh

// SelectedVertexIDs returns the ids of selected vertices in mesh order.
func (m *Mesh) SelectedVertexIDs() []VertexID {
	var out []VertexID
	for _, v := range m.Vertices {
		if v.Selected {
			out = append(out, v.ID)
		}
	}
	return out
}

// SelectedEdgeIDs returns the ids of selected edges in mesh order.
func (m *Mesh) SelectedEdgeIDs() []EdgeID {
	var out []EdgeID
	for _, e := range m.Edges {
		if e.Selected {
			out = append(out, e.ID)
		}
	}
	return out
}

// SelectedFaceIDs returns the ids of selected faces in mesh order.
func (m *Mesh) SelectedFaceIDs() []FaceID {
	var out []FaceID
	for _, f := range m.Faces {
		if f.Selected {
			out = append(out, f.ID)
		}
	}
	return out
}

// ClearSelection deselects every vertex, edge and face.
func (m *Mesh) ClearSelection() {
	for i := range m.Vertices {
		m.Vertices[i].Selected = false
	}
	for i := range m.Edges {
		m.Edges[i].Selected = false
	}
	for i := range m.Faces {
		m.Faces[i].Selected = false
	}
}

// SelectVertices marks the given vertices selected. Unknown ids are
// ignored.
func (m *Mesh) SelectVertices(ids ...VertexID) {
	for _, id := range ids {
		if v := m.Vertex(id); v != nil {
			v.Selected = true
		}
	}
}

// SelectFaces marks the given faces and their corners selected.
func (m *Mesh) SelectFaces(ids ...FaceID) {
	for _, id := range ids {
		f := m.Face(id)
		if f == nil {
			continue
		}
		f.Selected = true
		m.SelectVertices(f.VertexIDs...)
	}
}

// SelectEdges marks the given edges and their endpoints selected.
func (m *Mesh) SelectEdges(ids ...EdgeID) {
	for _, id := range ids {
		e := m.Edge(id)
		if e == nil {
			continue
		}
		e.Selected = true
		m.SelectVertices(e.VertexIDs[0], e.VertexIDs[1])
	}
}

// SelectionVertexIDs flattens the current selection of every element kind
// into the set of affected vertex ids, in first-seen order.
func (m *Mesh) SelectionVertexIDs() []VertexID {
	seen := make(map[VertexID]bool)
	var out []VertexID
	add := func(id VertexID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, v := range m.Vertices {
		if v.Selected {
			add(v.ID)
		}
	}
	for _, e := range m.Edges {
		if e.Selected {
			add(e.VertexIDs[0])
			add(e.VertexIDs[1])
		}
	}
	for _, f := range m.Faces {
		if f.Selected {
			for _, id := range f.VertexIDs {
				add(id)
			}
		}
	}
	return out
}
