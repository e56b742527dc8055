package ops

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// SplitEdge inserts a new vertex at pos into edge and into every face that
// borders it. Each incident n-gon becomes an (n+1)-gon; the face count is
// unchanged. The new vertex takes the average normal and uv of the
// endpoints; face corner uvs are interpolated at pos's projection onto the
// edge.
func SplitEdge(m *mesh.Mesh, edgeID mesh.EdgeID, pos geom.Vec3) (mesh.VertexID, error) {
	const op = "split edge"
	e := m.Edge(edgeID)
	if e == nil {
		return "", stale(op, edgeID)
	}
	a, b := m.Vertex(e.VertexIDs[0]), m.Vertex(e.VertexIDs[1])
	if a == nil || b == nil {
		return "", stale(op, edgeID)
	}
	if !geom.IsFinite(pos) {
		return "", degenerate(op, string(edgeID), "split position is not finite")
	}

	t := 0.5
	ab := b.Position.Sub(a.Position)
	if l2 := ab.Dot(ab); l2 > geom.Epsilon {
		t = geom.Clamp(pos.Sub(a.Position).Dot(ab)/l2, 0, 1)
	}
	v := mesh.CreateVertexWith(
		pos,
		geom.NormalizeOr(a.Normal.Add(b.Normal), geom.Up),
		geom.Average2(a.UV, b.UV),
	)
	aID, bID := a.ID, b.ID
	faces := append([]mesh.FaceID(nil), e.FaceIDs...)

	m.AddVertex(v)
	for _, fid := range faces {
		if f := m.Face(fid); f != nil {
			f.InsertOnEdge(aID, bID, []mesh.VertexID{v.ID}, []float64{t})
		}
	}
	m.Rebuild()
	return v.ID, nil
}

// SplitEdgeAt splits edge at parameter t in [0, 1] measured from the
// edge's first stored vertex.
func SplitEdgeAt(m *mesh.Mesh, edgeID mesh.EdgeID, t float64) (mesh.VertexID, error) {
	e := m.Edge(edgeID)
	if e == nil {
		return "", stale("split edge", edgeID)
	}
	a, b := m.Vertex(e.VertexIDs[0]), m.Vertex(e.VertexIDs[1])
	if a == nil || b == nil {
		return "", stale("split edge", edgeID)
	}
	return SplitEdge(m, edgeID, geom.Lerp(a.Position, b.Position, geom.Clamp(t, 0, 1)))
}

// SubdivideEdges splits each edge into cuts+1 equal parts.
func SubdivideEdges(m *mesh.Mesh, edgeIDs []mesh.EdgeID, cuts int) ([]mesh.VertexID, error) {
	const op = "subdivide edges"
	if cuts < 1 {
		return nil, invalid(op, "", "need at least one cut")
	}
	ids := existingEdges(m, edgeIDs)
	if len(ids) == 0 {
		return nil, stale(op, firstOr(edgeIDs))
	}
	var created []mesh.VertexID
	err := apply(m, func(w *mesh.Mesh) error {
		for _, id := range ids {
			e := w.Edge(id)
			a, b := w.Vertex(e.VertexIDs[0]), w.Vertex(e.VertexIDs[1])
			aID, bID := a.ID, b.ID
			var vs []mesh.Vertex
			ts := make([]float64, cuts)
			for k := 1; k <= cuts; k++ {
				ts[k-1] = float64(k) / float64(cuts+1)
				vs = append(vs, interpolatedVertex(a, b, ts[k-1]))
			}
			newIDs := make([]mesh.VertexID, len(vs))
			for i, v := range vs {
				newIDs[i] = w.AddVertex(v)
			}
			insertOnEdgeAll(w, aID, bID, newIDs, ts)
			created = append(created, newIDs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func firstOr[T ~string](ids []T) T {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
