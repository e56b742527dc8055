package mesh

import (
	"github.com/chazu/facet/pkg/geom"
)

// Mesh owns its vertices and faces. Edges are derived data rebuilt by
// Rebuild after every topology change.
type Mesh struct {
	ID        MeshID    `json:"id"`
	Name      string    `json:"name"`
	Vertices  []Vertex  `json:"vertices"`
	Edges     []Edge    `json:"edges"`
	Faces     []Face    `json:"faces"`
	Transform Transform `json:"transform"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
	Shading   Shading   `json:"shading"`

	// Lookup caches. Entries are verified against the slices on every hit
	// and rebuilt on a miss, so direct slice edits never return a wrong
	// element.
	vindex map[VertexID]int
	findex map[FaceID]int
	eindex map[EdgeID]int
}

// New returns an empty visible mesh with flat shading.
func New(name string) *Mesh {
	return &Mesh{
		ID:        NewMeshID(),
		Name:      name,
		Transform: IdentityTransform(),
		Visible:   true,
		Shading:   ShadingFlat,
	}
}

// FromGeometry wraps builder output into a mesh with derived edges and
// normals.
func FromGeometry(name string, g Geometry) *Mesh {
	m := New(name)
	m.Vertices = append(m.Vertices, g.Vertices...)
	m.Faces = append(m.Faces, g.Faces...)
	m.Rebuild()
	return m
}

// CreateVertex allocates a vertex with a fresh id, normal +Y and uv (0,0).
func CreateVertex(position geom.Vec3) Vertex {
	return Vertex{
		ID:       NewVertexID(),
		Position: position,
		Normal:   geom.Up,
	}
}

// CreateVertexWith allocates a vertex with explicit normal and uv.
func CreateVertexWith(position, normal geom.Vec3, uv geom.Vec2) Vertex {
	return Vertex{
		ID:       NewVertexID(),
		Position: position,
		Normal:   normal,
		UV:       uv,
	}
}

// CreateFace builds a face with a fresh id. uvs may be nil; when given it
// must have one entry per vertex.
func CreateFace(vertexIDs []VertexID, uvs []geom.Vec2) (Face, error) {
	if len(vertexIDs) < 3 {
		return Face{}, &InvalidFaceError{
			VertexCount: len(vertexIDs),
			UVCount:     len(uvs),
			Reason:      "a face needs at least 3 vertices",
		}
	}
	if uvs != nil && len(uvs) != len(vertexIDs) {
		return Face{}, &InvalidFaceError{
			VertexCount: len(vertexIDs),
			UVCount:     len(uvs),
			Reason:      "uv count does not match vertex count",
		}
	}
	f := Face{
		ID:        NewFaceID(),
		VertexIDs: append([]VertexID(nil), vertexIDs...),
		Normal:    geom.Up,
	}
	if uvs != nil {
		f.UVs = append([]geom.Vec2(nil), uvs...)
	}
	return f, nil
}

// MustCreateFace is CreateFace for builders whose loops are correct by
// construction. It panics on invalid input.
func MustCreateFace(vertexIDs []VertexID, uvs []geom.Vec2) Face {
	f, err := CreateFace(vertexIDs, uvs)
	if err != nil {
		panic(err)
	}
	return f
}

// Vertex returns a pointer to the vertex with the given id, or nil.
func (m *Mesh) Vertex(id VertexID) *Vertex {
	if i, ok := m.vindex[id]; ok && i < len(m.Vertices) && m.Vertices[i].ID == id {
		return &m.Vertices[i]
	}
	m.vindex = make(map[VertexID]int, len(m.Vertices))
	for i := range m.Vertices {
		m.vindex[m.Vertices[i].ID] = i
	}
	if i, ok := m.vindex[id]; ok {
		return &m.Vertices[i]
	}
	return nil
}

// Face returns a pointer to the face with the given id, or nil.
func (m *Mesh) Face(id FaceID) *Face {
	if i, ok := m.findex[id]; ok && i < len(m.Faces) && m.Faces[i].ID == id {
		return &m.Faces[i]
	}
	m.findex = make(map[FaceID]int, len(m.Faces))
	for i := range m.Faces {
		m.findex[m.Faces[i].ID] = i
	}
	if i, ok := m.findex[id]; ok {
		return &m.Faces[i]
	}
	return nil
}

// Edge returns a pointer to the edge with the given id, or nil.
func (m *Mesh) Edge(id EdgeID) *Edge {
	if i, ok := m.eindex[id]; ok && i < len(m.Edges) && m.Edges[i].ID == id {
		return &m.Edges[i]
	}
	m.eindex = make(map[EdgeID]int, len(m.Edges))
	for i := range m.Edges {
		m.eindex[m.Edges[i].ID] = i
	}
	if i, ok := m.eindex[id]; ok {
		return &m.Edges[i]
	}
	return nil
}

// EdgeBetween returns the edge joining a and b, or nil.
func (m *Mesh) EdgeBetween(a, b VertexID) *Edge {
	return m.Edge(EdgeKey(a, b))
}

// Position returns the position of vertex id.
func (m *Mesh) Position(id VertexID) (geom.Vec3, bool) {
	v := m.Vertex(id)
	if v == nil {
		return geom.Vec3{}, false
	}
	return v.Position, true
}

// Positions returns the positions of a face loop in order. Missing vertices
// are skipped.
func (m *Mesh) Positions(ids []VertexID) []geom.Vec3 {
	pts := make([]geom.Vec3, 0, len(ids))
	for _, id := range ids {
		if v := m.Vertex(id); v != nil {
			pts = append(pts, v.Position)
		}
	}
	return pts
}

// FaceCentroid returns the mean of the face's vertex positions.
func (m *Mesh) FaceCentroid(f *Face) geom.Vec3 {
	return geom.Centroid(m.Positions(f.VertexIDs))
}

// AddVertex appends v and returns its id.
func (m *Mesh) AddVertex(v Vertex) VertexID {
	m.Vertices = append(m.Vertices, v)
	return v.ID
}

// AddFace appends f and returns its id.
func (m *Mesh) AddFace(f Face) FaceID {
	m.Faces = append(m.Faces, f)
	return f.ID
}

// RemoveFaces drops the faces whose ids are in ids.
func (m *Mesh) RemoveFaces(ids map[FaceID]bool) {
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		if !ids[f.ID] {
			kept = append(kept, f)
		}
	}
	m.Faces = kept
}

// RemoveVertices drops the vertices whose ids are in ids. Faces are not
// touched.
func (m *Mesh) RemoveVertices(ids map[VertexID]bool) {
	kept := m.Vertices[:0]
	for _, v := range m.Vertices {
		if !ids[v.ID] {
			kept = append(kept, v)
		}
	}
	m.Vertices = kept
}

// FacesUsing returns the ids of faces whose loop contains v.
func (m *Mesh) FacesUsing(v VertexID) []FaceID {
	var out []FaceID
	for _, f := range m.Faces {
		if f.Contains(v) {
			out = append(out, f.ID)
		}
	}
	return out
}

// ReferencedVertices returns the set of vertex ids used by at least one face.
func (m *Mesh) ReferencedVertices() map[VertexID]bool {
	used := make(map[VertexID]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, id := range f.VertexIDs {
			used[id] = true
		}
	}
	return used
}

// RemoveLooseVertices deletes vertices referenced by no face and returns
// how many were removed.
func (m *Mesh) RemoveLooseVertices() int {
	used := m.ReferencedVertices()
	before := len(m.Vertices)
	kept := m.Vertices[:0]
	for _, v := range m.Vertices {
		if used[v.ID] {
			kept = append(kept, v)
		}
	}
	m.Vertices = kept
	return before - len(m.Vertices)
}

// Rebuild re-derives edges from faces and recomputes every normal. Every
// topology-changing operation must finish with it.
func (m *Mesh) Rebuild() {
	m.RebuildEdges()
	m.RecomputeNormals()
}

// RebuildEdges replaces Edges with BuildEdgesFromFaces, carrying the
// Selected and Seam flags of edges that survive.
func (m *Mesh) RebuildEdges() {
	flags := make(map[EdgeID][2]bool, len(m.Edges))
	for _, e := range m.Edges {
		if e.Selected || e.Seam {
			flags[e.ID] = [2]bool{e.Selected, e.Seam}
		}
	}
	m.Edges = BuildEdgesFromFaces(m.Vertices, m.Faces)
	for i := range m.Edges {
		if f, ok := flags[m.Edges[i].ID]; ok {
			m.Edges[i].Selected = f[0]
			m.Edges[i].Seam = f[1]
		}
	}
	m.eindex = nil
}

// Clone returns a deep copy sharing no slices with m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		ID:        m.ID,
		Name:      m.Name,
		Transform: m.Transform,
		Visible:   m.Visible,
		Locked:    m.Locked,
		Shading:   m.Shading,
	}
	c.Vertices = append([]Vertex(nil), m.Vertices...)
	c.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		c.Faces[i] = f.clone()
	}
	c.Edges = make([]Edge, len(m.Edges))
	for i, e := range m.Edges {
		e.FaceIDs = append([]FaceID(nil), e.FaceIDs...)
		c.Edges[i] = e
	}
	return c
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// EdgeCount returns the number of derived edges.
func (m *Mesh) EdgeCount() int { return len(m.Edges) }
