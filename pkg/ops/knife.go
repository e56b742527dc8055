package ops

import (
	"math"
	"sort"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// KnifePoint is one click of the knife polyline: a surface position and the
// face it was dropped on.
type KnifePoint struct {
	Position geom.Vec3
	FaceID   mesh.FaceID
}

// KnifeResult lists the vertices the cut created and the faces it added.
type KnifeResult struct {
	Vertices []mesh.VertexID
	Faces    []mesh.FaceID
}

// Crossings closer than this (as an edge parameter) to an endpoint snap to
// the vertex.
const knifeSnap = 1e-6

// knifeEvent is a point where the cut meets the mesh: an edge crossing, a
// vertex crossing, or a knife point inside a face.
type knifeEvent struct {
	pos      geom.Vec3
	s        float64 // parameter along the current segment
	u, v     mesh.VertexID
	t        float64
	vertex   mesh.VertexID // set for vertex crossings
	interior bool
	face     mesh.FaceID // face entered after the event, or holding an interior point
}

// knifeTraversal is one chord across a face from boundary event from to
// boundary event to, passing through interior knife points.
type knifeTraversal struct {
	face     mesh.FaceID
	from, to int
	interior []int
}

// faceCrossings intersects the plane (origin, normal) with the edges of f.
// skip excludes crossings at that vertex.
func faceCrossings(m *mesh.Mesh, f *mesh.Face, origin, normal, dir geom.Vec3, skip mesh.VertexID) []knifeEvent {
	d2 := dir.Dot(dir)
	dist := func(id mesh.VertexID) float64 {
		p, _ := m.Position(id)
		return p.Sub(origin).Dot(normal)
	}
	var out []knifeEvent
	n := f.Len()
	for i := 0; i < n; i++ {
		u, v := f.VertexIDs[i], f.VertexIDs[(i+1)%n]
		du, dv := dist(u), dist(v)
		pu, _ := m.Position(u)
		pv, _ := m.Position(v)
		var ev knifeEvent
		switch {
		case math.Abs(du) <= geom.Epsilon:
			ev = knifeEvent{pos: pu, vertex: u}
		case math.Abs(dv) <= geom.Epsilon:
			continue // reported as the next edge's first corner
		case (du < 0) != (dv < 0):
			t := du / (du - dv)
			switch {
			case t < knifeSnap:
				ev = knifeEvent{pos: pu, vertex: u}
			case t > 1-knifeSnap:
				ev = knifeEvent{pos: pv, vertex: v}
			default:
				ev = knifeEvent{pos: geom.Lerp(pu, pv, t), u: u, v: v, t: t}
			}
		default:
			continue
		}
		if skip != "" && ev.vertex == skip {
			continue
		}
		ev.s = ev.pos.Sub(origin).Dot(dir) / d2
		out = append(out, ev)
	}
	return out
}

// nextCrossing returns the crossing of f with the smallest s beyond after,
// ignoring crossings on the entry edge or vertex.
func nextCrossing(m *mesh.Mesh, f *mesh.Face, origin, normal, dir geom.Vec3, after float64, entry *knifeEvent) (knifeEvent, bool) {
	var skip mesh.VertexID
	if entry != nil {
		skip = entry.vertex
	}
	best, found := knifeEvent{}, false
	for _, c := range faceCrossings(m, f, origin, normal, dir, skip) {
		if entry != nil && entry.vertex == "" && c.vertex == "" &&
			mesh.EdgeKey(c.u, c.v) == mesh.EdgeKey(entry.u, entry.v) {
			continue
		}
		if c.s <= after+geom.Epsilon {
			continue
		}
		if !found || c.s < best.s {
			best, found = c, true
		}
	}
	return best, found
}

// walkSegment follows the cut from p (in face fp) to q (in face fq) and
// returns the boundary events in order. ok is false when the walk left the
// mesh before reaching fq.
func walkSegment(m *mesh.Mesh, p, q KnifePoint) (events []knifeEvent, ok bool) {
	fp, fq := m.Face(p.FaceID), m.Face(q.FaceID)
	dir := q.Position.Sub(p.Position)
	up := geom.Normalize(m.FaceNormal(fp).Add(m.FaceNormal(fq)))
	normal := geom.Normalize(dir.Cross(up))
	if normal.Length() == 0 {
		return nil, fp.ID == fq.ID
	}

	cur := fp
	var entry *knifeEvent
	s := 0.0
	visited := map[mesh.FaceID]bool{}
	for cur.ID != fq.ID {
		if visited[cur.ID] {
			return events, false
		}
		visited[cur.ID] = true
		exit, found := nextCrossing(m, cur, p.Position, normal, dir, s, entry)
		if !found || exit.s > 1+knifeSnap {
			return events, false
		}
		var next *mesh.Face
		if exit.vertex == "" {
			next = otherFace(m, exit.u, exit.v, cur.ID)
		} else {
			next = faceThroughVertex(m, exit, cur.ID, fq.ID, p.Position, normal, dir)
		}
		if next == nil {
			return events, false
		}
		exit.face = next.ID
		events = append(events, exit)
		entry = &exit
		s = exit.s
		cur = next
	}
	return events, true
}

// faceThroughVertex picks the face the cut enters after passing through a
// vertex: the target face if it touches the vertex, otherwise the face whose
// own exit lies closest ahead.
func faceThroughVertex(m *mesh.Mesh, at knifeEvent, from, target mesh.FaceID, origin, normal, dir geom.Vec3) *mesh.Face {
	var best *mesh.Face
	bestS := math.Inf(1)
	for _, id := range m.FacesUsing(at.vertex) {
		if id == from {
			continue
		}
		g := m.Face(id)
		if id == target {
			return g
		}
		if c, ok := nextCrossing(m, g, origin, normal, dir, at.s, &at); ok && c.s < bestS {
			best, bestS = g, c.s
		}
	}
	return best
}

// Knife cuts the mesh along the polyline through points. Each face the line
// crosses from one boundary point to another is split in two along the
// chord, with knife points inside the face becoming chord vertices. The
// pieces before the first and after the last boundary crossing cut nothing.
func Knife(m *mesh.Mesh, points []KnifePoint) (KnifeResult, error) {
	const op = "knife"
	if len(points) < 2 {
		return KnifeResult{}, invalid(op, "", "need at least two points")
	}
	for _, p := range points {
		if m.Face(p.FaceID) == nil {
			return KnifeResult{}, stale(op, p.FaceID)
		}
	}

	// Event stream over the original mesh.
	var events []knifeEvent
	var traversals []knifeTraversal
	var open *knifeTraversal
	push := func(ev knifeEvent) {
		events = append(events, ev)
		idx := len(events) - 1
		if ev.interior {
			if open != nil && open.face == ev.face {
				open.interior = append(open.interior, idx)
			} else {
				open = nil
			}
			return
		}
		if open != nil {
			open.to = idx
			traversals = append(traversals, *open)
		}
		open = &knifeTraversal{face: ev.face, from: idx}
	}
	for i, p := range points {
		push(knifeEvent{pos: p.Position, interior: true, face: p.FaceID})
		if i == len(points)-1 {
			break
		}
		crossings, ok := walkSegment(m, p, points[i+1])
		for _, ev := range crossings {
			push(ev)
		}
		if !ok {
			open = nil
		}
	}
	if len(traversals) == 0 {
		return KnifeResult{}, invalid(op, "", "cut does not cross any face")
	}

	var res KnifeResult
	err := apply(m, func(w *mesh.Mesh) error {
		ids := knifeVertices(w, events, traversals, &res)

		// Faces split earlier in this cut keep being found through the id
		// of the face they came from.
		family := make(map[mesh.FaceID][]mesh.FaceID)
		for _, tr := range traversals {
			x, y := ids[tr.from], ids[tr.to]
			if x == y {
				continue
			}
			chord := make([]mesh.VertexID, len(tr.interior))
			for k, e := range tr.interior {
				chord[k] = ids[e]
			}
			candidates := append([]mesh.FaceID{tr.face}, family[tr.face]...)
			for _, fid := range candidates {
				f := w.Face(fid)
				if f == nil || !f.Contains(x) || !f.Contains(y) {
					continue
				}
				g, ok := splitFace(w, f, x, y, chord)
				if !ok {
					break
				}
				family[tr.face] = append(family[tr.face], g.ID)
				res.Faces = append(res.Faces, w.AddFace(g))
				break
			}
		}
		if len(res.Faces) == 0 {
			return degenerate(op, string(traversals[0].face), "cut does not split any face")
		}
		return nil
	})
	if err != nil {
		return KnifeResult{}, err
	}
	return res, nil
}

// knifeVertices creates the vertices for every event used by a traversal
// and inserts edge crossings into the loops of all faces sharing the edge.
// It returns the vertex id per event index.
func knifeVertices(w *mesh.Mesh, events []knifeEvent, traversals []knifeTraversal, res *KnifeResult) map[int]mesh.VertexID {
	used := make(map[int]bool)
	for _, tr := range traversals {
		used[tr.from], used[tr.to] = true, true
		for _, e := range tr.interior {
			used[e] = true
		}
	}

	ids := make(map[int]mesh.VertexID, len(used))
	type cut struct {
		t     float64
		event int
	}
	byEdge := make(map[mesh.EdgeID][]cut)
	var edgeOrder []mesh.EdgeID
	for idx, ev := range events {
		if !used[idx] {
			continue
		}
		switch {
		case ev.vertex != "":
			ids[idx] = ev.vertex
		case ev.interior:
			f := w.Face(ev.face)
			v := mesh.CreateVertexWith(ev.pos, w.FaceNormal(f), geom.Average2(f.UVs...))
			ids[idx] = w.AddVertex(v)
			res.Vertices = append(res.Vertices, v.ID)
		default:
			// Parameters are kept relative to the sorted pair.
			key := mesh.EdgeKey(ev.u, ev.v)
			t := ev.t
			if ev.v < ev.u {
				t = 1 - t
			}
			if _, seen := byEdge[key]; !seen {
				edgeOrder = append(edgeOrder, key)
			}
			byEdge[key] = append(byEdge[key], cut{t: t, event: idx})
		}
	}

	for _, key := range edgeOrder {
		e := w.Edge(key)
		lo, hi := e.VertexIDs[0], e.VertexIDs[1]
		cuts := byEdge[key]
		sort.SliceStable(cuts, func(i, j int) bool { return cuts[i].t < cuts[j].t })

		var newIDs []mesh.VertexID
		var ts []float64
		for _, c := range cuts {
			if len(ts) > 0 && c.t-ts[len(ts)-1] < knifeSnap {
				ids[c.event] = newIDs[len(newIDs)-1]
				continue
			}
			a, b := w.Vertex(lo), w.Vertex(hi)
			v := interpolatedVertex(a, b, c.t)
			ids[c.event] = w.AddVertex(v)
			res.Vertices = append(res.Vertices, v.ID)
			newIDs = append(newIDs, v.ID)
			ts = append(ts, c.t)
		}
		insertOnEdgeAll(w, lo, hi, newIDs, ts)
	}
	return ids
}

// splitFace cuts f along x -> chord -> y. f keeps the part running from x
// to y along its loop; the returned face holds the part from y back to x.
// ok is false when either part would have fewer than three corners.
func splitFace(w *mesh.Mesh, f *mesh.Face, x, y mesh.VertexID, chord []mesh.VertexID) (mesh.Face, bool) {
	n := f.Len()
	i, j := f.IndexOf(x), f.IndexOf(y)
	arc := func(from, to int) []mesh.VertexID {
		var out []mesh.VertexID
		for k := from; ; k = (k + 1) % n {
			out = append(out, f.VertexIDs[k])
			if k == to {
				return out
			}
		}
	}
	l1 := arc(i, j)
	for k := len(chord) - 1; k >= 0; k-- {
		l1 = append(l1, chord[k])
	}
	l2 := append(arc(j, i), chord...)
	if len(l1) < 3 || len(l2) < 3 {
		return mesh.Face{}, false
	}

	uvOf := func(id mesh.VertexID) geom.Vec2 {
		if v := w.Vertex(id); v != nil {
			return v.UV
		}
		return geom.Vec2{}
	}
	g := derivedFace(f, f.VertexIDs, f.UVs)
	g.SetLoop(l2, uvOf)
	f.SetLoop(l1, uvOf)
	return g, true
}
