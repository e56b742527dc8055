// Package primitives generates parametric starting geometry. Every builder
// is a pure function returning a mesh.Geometry with fresh ids, outward
// counter-clockwise winding and per-corner UVs. Topology is quad-first;
// triangles appear only in fans around poles and apexes.
package primitives

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// builder accumulates vertices and faces for one primitive.
type builder struct {
	g mesh.Geometry
}

func (b *builder) vertex(p geom.Vec3, uv geom.Vec2) mesh.VertexID {
	v := mesh.CreateVertex(p)
	v.UV = uv
	b.g.Vertices = append(b.g.Vertices, v)
	return v.ID
}

func (b *builder) face(ids []mesh.VertexID, uvs []geom.Vec2) {
	b.g.Faces = append(b.g.Faces, mesh.MustCreateFace(ids, uvs))
}

// geometry returns the accumulated result with face normals filled in.
func (b *builder) geometry() mesh.Geometry {
	pos := make(map[mesh.VertexID]geom.Vec3, len(b.g.Vertices))
	for _, v := range b.g.Vertices {
		pos[v.ID] = v.Position
	}
	for i := range b.g.Faces {
		f := &b.g.Faces[i]
		pts := make([]geom.Vec3, len(f.VertexIDs))
		for k, id := range f.VertexIDs {
			pts[k] = pos[id]
		}
		f.Normal = mesh.PolygonNormal(pts)
	}
	return b.g
}

// FixSeamUVs repairs a face whose u coordinates wrap around the texture
// seam: when the u range exceeds 0.5, every corner with u < 0.5 is moved
// by +1 so the face samples a contiguous strip.
func FixSeamUVs(uvs []geom.Vec2) {
	if len(uvs) == 0 {
		return
	}
	lo, hi := uvs[0].X, uvs[0].X
	for _, uv := range uvs[1:] {
		lo = min(lo, uv.X)
		hi = max(hi, uv.X)
	}
	if hi-lo <= 0.5 {
		return
	}
	for i := range uvs {
		if uvs[i].X < 0.5 {
			uvs[i].X++
		}
	}
}

// hexahedron appends a six-quad solid. Corners follow the unit cube order
// 0=(-,-,-) 1=(+,-,-) 2=(+,+,-) 3=(-,+,-) 4=(-,-,+) 5=(+,-,+) 6=(+,+,+)
// 7=(-,+,+); any right-handed deformation of that layout keeps the faces
// outward. Each face gets the atlas cell given by cells.
func (b *builder) hexahedron(corners [8]geom.Vec3, cells [6]atlasCell) []mesh.VertexID {
	ids := make([]mesh.VertexID, 8)
	for i, c := range corners {
		ids[i] = b.vertex(c, geom.Vec2{})
	}
	for i, loop := range hexLoops {
		b.face([]mesh.VertexID{ids[loop[0]], ids[loop[1]], ids[loop[2]], ids[loop[3]]}, cells[i].quad())
	}
	return ids
}

// hexLoops lists the faces of a hexahedron as +X, -X, +Y, -Y, +Z, -Z.
var hexLoops = [6][4]int{
	{1, 2, 6, 5},
	{4, 7, 3, 0},
	{3, 7, 6, 2},
	{0, 1, 5, 4},
	{4, 5, 6, 7},
	{1, 0, 3, 2},
}

// atlasCell is one rectangle of a texture atlas.
type atlasCell struct {
	U0, V0, U1, V1 float64
}

// quad returns corner uvs for a four-corner loop.
func (c atlasCell) quad() []geom.Vec2 {
	return []geom.Vec2{
		{X: c.U0, Y: c.V0},
		{X: c.U1, Y: c.V0},
		{X: c.U1, Y: c.V1},
		{X: c.U0, Y: c.V1},
	}
}

// fullCells maps every face onto the whole texture.
var fullCells = [6]atlasCell{
	{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
	{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
}

// crossAtlas lays the six cube faces out on a 3x2 grid: +X, -X, +Y in the
// bottom row and -Y, +Z, -Z in the top row.
var crossAtlas = func() [6]atlasCell {
	var cells [6]atlasCell
	for i := range cells {
		col, row := float64(i%3), float64(i/3)
		cells[i] = atlasCell{
			U0: col / 3, V0: row / 2,
			U1: (col + 1) / 3, V1: (row + 1) / 2,
		}
	}
	return cells
}()

// clampSegments enforces a minimum segment count.
func clampSegments(n, lo int) int {
	if n < lo {
		return lo
	}
	return n
}
