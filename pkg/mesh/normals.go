package mesh

import (
	"github.com/chazu/facet/pkg/geom"
)

// PolygonNormal returns the unit normal of a polygon given by its corner
// positions. Triangles use the cross product of the two edges leaving
// corner 0. Larger polygons use Newell's method, which agrees with that
// cross product on convex planar loops but stays correct when corner 0 is
// collinear with its neighbours (a vertex inserted on an edge, say). A
// polygon without area yields +Y.
func PolygonNormal(pts []geom.Vec3) geom.Vec3 {
	if len(pts) < 3 {
		return geom.Up
	}
	c := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
	if len(pts) == 3 {
		return geom.NormalizeOr(c, geom.Up)
	}

	var n geom.Vec3
	for i := range pts {
		cur, next := pts[i], pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	if n.Length() < geom.Epsilon {
		return geom.NormalizeOr(c, geom.Up)
	}
	return geom.Normalize(n)
}

// CalculateFaceNormal computes the normal of face from the given vertex
// list.
func CalculateFaceNormal(face Face, vertices []Vertex) geom.Vec3 {
	pos := make(map[VertexID]geom.Vec3, len(vertices))
	for _, v := range vertices {
		pos[v.ID] = v.Position
	}
	pts := make([]geom.Vec3, 0, len(face.VertexIDs))
	for _, id := range face.VertexIDs {
		if p, ok := pos[id]; ok {
			pts = append(pts, p)
		}
	}
	return PolygonNormal(pts)
}

// FaceNormal computes the normal of f from the mesh's current positions.
func (m *Mesh) FaceNormal(f *Face) geom.Vec3 {
	return PolygonNormal(m.Positions(f.VertexIDs))
}

// CalculateVertexNormals returns a copy of the mesh vertices carrying
// angle-weighted normals. Each face is fanned from corner 0; every triangle
// corner adds faceNormal*angle to its vertex. Vertices on no face get +Y.
func CalculateVertexNormals(m *Mesh) []Vertex {
	acc := make(map[VertexID]geom.Vec3, len(m.Vertices))
	for fi := range m.Faces {
		f := &m.Faces[fi]
		n := m.FaceNormal(f)
		ids := f.VertexIDs
		for k := 1; k+1 < len(ids); k++ {
			tri := [3]VertexID{ids[0], ids[k], ids[k+1]}
			var p [3]geom.Vec3
			ok := true
			for c := 0; c < 3; c++ {
				v := m.Vertex(tri[c])
				if v == nil {
					ok = false
					break
				}
				p[c] = v.Position
			}
			if !ok {
				continue
			}
			for c := 0; c < 3; c++ {
				prev, next := p[(c+2)%3], p[(c+1)%3]
				angle := geom.Angle(next.Sub(p[c]), prev.Sub(p[c]))
				acc[tri[c]] = acc[tri[c]].Add(n.MulScalar(angle))
			}
		}
	}

	out := make([]Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		v.Normal = geom.NormalizeOr(acc[v.ID], geom.Up)
		out[i] = v
	}
	return out
}

// RecomputeNormals refreshes every face normal and vertex normal in place.
func (m *Mesh) RecomputeNormals() {
	for i := range m.Faces {
		m.Faces[i].Normal = m.FaceNormal(&m.Faces[i])
	}
	m.Vertices = CalculateVertexNormals(m)
}
