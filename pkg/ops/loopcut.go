package ops

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// OrientedEdge is a span edge. Every edge of a span is oriented the same
// way, so From vertices lie on one side of the ring and To vertices on the
// other.
type OrientedEdge struct {
	From mesh.VertexID
	To   mesh.VertexID
}

// Span is a ring of quads crossed by a loop cut. Faces[i] lies between
// Edges[i] and Edges[i+1]; when Closed the last face joins the last edge
// back to the first.
type Span struct {
	Edges  []OrientedEdge
	Faces  []mesh.FaceID
	Closed bool
}

// oppositeEdge returns the edge of quad f across from e, oriented parallel
// to e.
func oppositeEdge(f *mesh.Face, e OrientedEdge) (OrientedEdge, bool) {
	if f.Len() != 4 {
		return OrientedEdge{}, false
	}
	for i := 0; i < 4; i++ {
		cur, next := f.VertexIDs[i], f.VertexIDs[(i+1)%4]
		c, d := f.VertexIDs[(i+2)%4], f.VertexIDs[(i+3)%4]
		switch {
		case cur == e.From && next == e.To:
			return OrientedEdge{From: d, To: c}, true
		case cur == e.To && next == e.From:
			return OrientedEdge{From: c, To: d}, true
		}
	}
	return OrientedEdge{}, false
}

// walkRing follows quads from e through face fid until it reaches a
// non-quad, a boundary, an already visited face, or the edge it started
// from.
func walkRing(m *mesh.Mesh, e OrientedEdge, fid mesh.FaceID, visited map[mesh.FaceID]bool) (edges []OrientedEdge, faces []mesh.FaceID, closed bool) {
	start := mesh.EdgeKey(e.From, e.To)
	cur := e
	for fid != "" && !visited[fid] {
		f := m.Face(fid)
		if f == nil {
			return
		}
		next, ok := oppositeEdge(f, cur)
		if !ok {
			return
		}
		visited[fid] = true
		faces = append(faces, fid)
		if mesh.EdgeKey(next.From, next.To) == start {
			closed = true
			return
		}
		edges = append(edges, next)
		nf := otherFace(m, next.From, next.To, fid)
		if nf == nil {
			return
		}
		fid, cur = nf.ID, next
	}
	return
}

// FindLoopCutSpan computes the quad ring through edgeID. The ring is walked
// through the edge's first face and, unless it closes, through the second
// face the other way.
func FindLoopCutSpan(m *mesh.Mesh, edgeID mesh.EdgeID) (Span, error) {
	const op = "loop cut"
	e := m.Edge(edgeID)
	if e == nil {
		return Span{}, stale(op, edgeID)
	}
	start := OrientedEdge{From: e.VertexIDs[0], To: e.VertexIDs[1]}
	visited := make(map[mesh.FaceID]bool)

	var fwdEdges, backEdges []OrientedEdge
	var fwdFaces, backFaces []mesh.FaceID
	closed := false
	if len(e.FaceIDs) > 0 {
		fwdEdges, fwdFaces, closed = walkRing(m, start, e.FaceIDs[0], visited)
	}
	if !closed && len(e.FaceIDs) > 1 {
		backEdges, backFaces, _ = walkRing(m, start, e.FaceIDs[1], visited)
	}
	if len(fwdFaces)+len(backFaces) == 0 {
		return Span{}, invalid(op, string(edgeID), "no quad borders the edge")
	}

	span := Span{Closed: closed}
	for i := len(backEdges) - 1; i >= 0; i-- {
		span.Edges = append(span.Edges, backEdges[i])
	}
	for i := len(backFaces) - 1; i >= 0; i-- {
		span.Faces = append(span.Faces, backFaces[i])
	}
	span.Edges = append(span.Edges, start)
	span.Edges = append(span.Edges, fwdEdges...)
	span.Faces = append(span.Faces, fwdFaces...)
	return span, nil
}

// SpanPoints returns, per span edge, the cut positions at t = k/(cuts+1)
// from From to To.
func SpanPoints(m *mesh.Mesh, span Span, cuts int) [][]geom.Vec3 {
	cuts = max(cuts, 1)
	out := make([][]geom.Vec3, len(span.Edges))
	for i, e := range span.Edges {
		a, _ := m.Position(e.From)
		b, _ := m.Position(e.To)
		pts := make([]geom.Vec3, cuts)
		for k := range pts {
			pts[k] = geom.Lerp(a, b, float64(k+1)/float64(cuts+1))
		}
		out[i] = pts
	}
	return out
}

// LoopCut cuts the quad ring through edgeID with cuts parallel edge loops
// and returns the new vertices. Each ring quad becomes cuts+1 quads, the
// first keeping the face id; other faces bordering span edges get the new
// vertices inserted into their loops.
func LoopCut(m *mesh.Mesh, edgeID mesh.EdgeID, cuts int) ([]mesh.VertexID, error) {
	span, err := FindLoopCutSpan(m, edgeID)
	if err != nil {
		return nil, err
	}
	cuts = max(cuts, 1)
	ts := make([]float64, cuts)
	for k := range ts {
		ts[k] = float64(k+1) / float64(cuts+1)
	}

	var created []mesh.VertexID
	err = apply(m, func(w *mesh.Mesh) error {
		// lines[i] runs From, cut points..., To along span edge i.
		lines := make([][]mesh.VertexID, len(span.Edges))
		for i, e := range span.Edges {
			a, b := w.Vertex(e.From), w.Vertex(e.To)
			if a == nil || b == nil {
				return stale("loop cut", e.From)
			}
			vs := make([]mesh.Vertex, cuts)
			for k, t := range ts {
				vs[k] = interpolatedVertex(a, b, t)
			}
			line := []mesh.VertexID{e.From}
			for _, v := range vs {
				id := w.AddVertex(v)
				line = append(line, id)
				created = append(created, id)
			}
			lines[i] = append(line, e.To)
		}

		var strips []mesh.Face
		for j, fid := range span.Faces {
			f := w.Face(fid)
			e0, e1 := span.Edges[j], span.Edges[(j+1)%len(span.Edges)]
			l0, l1 := lines[j], lines[(j+1)%len(lines)]
			forward := f.EdgeDirection(e0.From, e0.To) == 1

			var ux, uy, ux1, uy1 geom.Vec2
			hasUV := f.UVs != nil
			if hasUV {
				ux, _ = f.CornerUV(e0.From)
				uy, _ = f.CornerUV(e0.To)
				ux1, _ = f.CornerUV(e1.From)
				uy1, _ = f.CornerUV(e1.To)
			}
			uvAt := func(k int, side float64) geom.Vec2 {
				s := float64(k) / float64(cuts+1)
				return geom.Lerp2(geom.Lerp2(ux, uy, s), geom.Lerp2(ux1, uy1, s), side)
			}

			for k := 0; k <= cuts; k++ {
				ids := []mesh.VertexID{l0[k], l0[k+1], l1[k+1], l1[k]}
				uvs := []geom.Vec2{uvAt(k, 0), uvAt(k+1, 0), uvAt(k+1, 1), uvAt(k, 1)}
				if !forward {
					ids = []mesh.VertexID{l0[k+1], l0[k], l1[k], l1[k+1]}
					uvs = []geom.Vec2{uvAt(k+1, 0), uvAt(k, 0), uvAt(k, 1), uvAt(k+1, 1)}
				}
				if !hasUV {
					uvs = nil
				}
				if k == 0 {
					f.VertexIDs, f.UVs = ids, uvs
					continue
				}
				strips = append(strips, derivedFace(f, ids, uvs))
			}
		}

		// Faces outside the ring still hold the old span edges.
		for i, e := range span.Edges {
			insertOnEdgeAll(w, e.From, e.To, lines[i][1:cuts+1], ts)
		}
		for _, s := range strips {
			w.AddFace(s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
