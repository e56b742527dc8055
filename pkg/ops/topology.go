package ops

import (
	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// apply runs fn against a copy of m and swaps the copy in only when fn
// succeeds, so a failed edit leaves m untouched.
func apply(m *mesh.Mesh, fn func(w *mesh.Mesh) error) error {
	w := m.Clone()
	if err := fn(w); err != nil {
		return err
	}
	w.Rebuild()
	*m = *w
	return nil
}

// existingFaces filters ids down to faces present in m, dropping repeats.
func existingFaces(m *mesh.Mesh, ids []mesh.FaceID) []mesh.FaceID {
	return lo.Filter(lo.Uniq(ids), func(id mesh.FaceID, _ int) bool {
		return m.Face(id) != nil
	})
}

// existingVertices filters ids down to vertices present in m, dropping
// repeats.
func existingVertices(m *mesh.Mesh, ids []mesh.VertexID) []mesh.VertexID {
	return lo.Filter(lo.Uniq(ids), func(id mesh.VertexID, _ int) bool {
		return m.Vertex(id) != nil
	})
}

// existingEdges filters ids down to edges present in m, dropping repeats.
func existingEdges(m *mesh.Mesh, ids []mesh.EdgeID) []mesh.EdgeID {
	return lo.Filter(lo.Uniq(ids), func(id mesh.EdgeID, _ int) bool {
		return m.Edge(id) != nil
	})
}

// insertOnEdgeAll inserts ids into every face that has a and b as
// winding-adjacent corners. ids run from a towards b with parameters ts.
func insertOnEdgeAll(m *mesh.Mesh, a, b mesh.VertexID, ids []mesh.VertexID, ts []float64) {
	for i := range m.Faces {
		m.Faces[i].InsertOnEdge(a, b, ids, ts)
	}
}

// interpolatedVertex creates a vertex at parameter t along a->b with lerped
// normal and uv.
func interpolatedVertex(a, b *mesh.Vertex, t float64) mesh.Vertex {
	return mesh.CreateVertexWith(
		geom.Lerp(a.Position, b.Position, t),
		geom.NormalizeOr(geom.Lerp(a.Normal, b.Normal, t), geom.Up),
		geom.Lerp2(a.UV, b.UV, t),
	)
}

// derivedFace creates a face that inherits material from src.
func derivedFace(src *mesh.Face, ids []mesh.VertexID, uvs []geom.Vec2) mesh.Face {
	f := mesh.MustCreateFace(ids, uvs)
	f.MaterialID = src.MaterialID
	return f
}

// cornerUVs returns the uvs of f at the given corners, or nil when f has
// none.
func cornerUVs(f *mesh.Face, ids ...mesh.VertexID) []geom.Vec2 {
	if f.UVs == nil {
		return nil
	}
	out := make([]geom.Vec2, len(ids))
	for i, id := range ids {
		out[i], _ = f.CornerUV(id)
	}
	return out
}

// otherFace returns the face across edge (a, b) from f, or nil.
func otherFace(m *mesh.Mesh, a, b mesh.VertexID, f mesh.FaceID) *mesh.Face {
	e := m.EdgeBetween(a, b)
	if e == nil {
		return nil
	}
	for _, id := range e.FaceIDs {
		if id != f {
			return m.Face(id)
		}
	}
	return nil
}
