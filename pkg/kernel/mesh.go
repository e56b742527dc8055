package kernel

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
)

// Mesh is an indexed triangle mesh ready for GPU upload. Arrays are flat:
// three floats per vertex position and normal, three indices per triangle,
// two floats per vertex UV when present.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs,omitempty"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"` // source mesh name
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns vertex i.
func (m *Mesh) Position(i int) geom.Vec3 {
	return geom.Vec3{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) geom.Vec3 {
	return geom.Vec3{
		X: float64(m.Normals[3*i]),
		Y: float64(m.Normals[3*i+1]),
		Z: float64(m.Normals[3*i+2]),
	}
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// yields zero vectors.
func (m *Mesh) Bounds() (min, max geom.Vec3) {
	if m.IsEmpty() {
		return min, max
	}
	min = geom.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = geom.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(i)
		min = geom.Vec3{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = geom.Vec3{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max
}

// AppendVertex adds one vertex and returns its index.
func (m *Mesh) AppendVertex(p, n geom.Vec3) uint32 {
	i := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	return i
}

// AppendUV adds the UV of the most recently appended vertex.
func (m *Mesh) AppendUV(uv geom.Vec2) {
	m.UVs = append(m.UVs, float32(uv.X), float32(uv.Y))
}

// AppendTriangle adds one triangle by vertex index.
func (m *Mesh) AppendTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}
