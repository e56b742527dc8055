package ops

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// BevelOptions controls BevelEdges.
type BevelOptions struct {
	// Width is how far the new edges slide from the old one along each
	// neighbouring face. It is clamped to half the shortest slide edge.
	Width float64
	// Segments is the number of strips replacing the edge. Values below
	// one mean one.
	Segments int
	// Round places intermediate profile points on a circular arc tangent
	// to both faces instead of on the straight chord.
	Round bool
}

// BevelResult reports what a multi-edge bevel did.
type BevelResult struct {
	Beveled  int
	Skipped  []mesh.EdgeID
	Vertices []mesh.VertexID
	Faces    []mesh.FaceID
}

// bevelPlan is the geometry for beveling one edge a->b, where F1 runs
// ...p1, a, b, n1... and F2 runs ...p2, b, a, n2...
type bevelPlan struct {
	a, b           mesh.VertexID
	f1, f2         mesh.FaceID
	p1, n1, p2, n2 mesh.VertexID
	// Slide parameters of a1, b1, a2, b2 along their edges.
	ta1, tb1, ta2, tb2 float64
	// chainA runs a1 -> a2 around corner a; chainB runs b1 -> b2.
	chainA, chainB []geom.Vec3
}

type widthFunc func(m *mesh.Mesh, f1, f2 *mesh.Face) float64

func fixedWidth(w float64) widthFunc {
	return func(*mesh.Mesh, *mesh.Face, *mesh.Face) float64 { return w }
}

// filletWidth converts an arc radius into the slide width that makes the
// arc tangent to both faces: w = r * cot(theta/2), theta being the interior
// angle between the faces.
func filletWidth(radius float64) widthFunc {
	return func(m *mesh.Mesh, f1, f2 *mesh.Face) float64 {
		theta := math.Pi - geom.Angle(m.FaceNormal(f1), m.FaceNormal(f2))
		t := math.Tan(theta / 2)
		if t < geom.Epsilon {
			return math.Inf(1)
		}
		return radius / t
	}
}

func planBevelEdge(m *mesh.Mesh, id mesh.EdgeID, width widthFunc, segments int, round bool) (*bevelPlan, error) {
	const op = "bevel"
	e := m.Edge(id)
	if e == nil {
		return nil, stale(op, id)
	}
	if len(e.FaceIDs) != 2 {
		return nil, invalid(op, string(id), "edge must border exactly two faces")
	}
	f1, f2 := m.Face(e.FaceIDs[0]), m.Face(e.FaceIDs[1])
	if f1 == nil || f2 == nil {
		return nil, stale(op, id)
	}
	a, b := e.VertexIDs[0], e.VertexIDs[1]
	switch f1.EdgeDirection(a, b) {
	case 1:
	case -1:
		a, b = b, a
	default:
		return nil, invalid(op, string(id), "edge is not on its face loop")
	}
	if f2.EdgeDirection(a, b) != -1 {
		return nil, invalid(op, string(id), "faces disagree on winding")
	}

	p := &bevelPlan{a: a, b: b, f1: f1.ID, f2: f2.ID}
	p.p1 = f1.Prev(f1.IndexOf(a))
	p.n1 = f1.Next(f1.IndexOf(b))
	p.p2 = f2.Prev(f2.IndexOf(b))
	p.n2 = f2.Next(f2.IndexOf(a))

	pa, _ := m.Position(a)
	pb, _ := m.Position(b)
	pos := func(v mesh.VertexID) geom.Vec3 { q, _ := m.Position(v); return q }
	lens := [4]float64{
		geom.Distance(pa, pos(p.p1)),
		geom.Distance(pb, pos(p.n1)),
		geom.Distance(pa, pos(p.n2)),
		geom.Distance(pb, pos(p.p2)),
	}
	w := min(width(m, f1, f2), 0.5*min(lens[0], lens[1], lens[2], lens[3]))
	if !(w > geom.Epsilon) {
		return nil, degenerate(op, string(id), "bevel width collapses to zero")
	}
	p.ta1, p.tb1, p.ta2, p.tb2 = w/lens[0], w/lens[1], w/lens[2], w/lens[3]

	a1 := geom.Lerp(pa, pos(p.p1), p.ta1)
	b1 := geom.Lerp(pb, pos(p.n1), p.tb1)
	a2 := geom.Lerp(pa, pos(p.n2), p.ta2)
	b2 := geom.Lerp(pb, pos(p.p2), p.tb2)
	p.chainA = bevelProfile(pa, a1, a2, segments, round)
	p.chainB = bevelProfile(pb, b1, b2, segments, round)
	return p, nil
}

// bevelProfile returns segments+1 points from `from` to `to` around corner.
// Round profiles follow the arc tangent to corner->from and corner->to; a
// flat or folded corner falls back to the chord.
func bevelProfile(corner, from, to geom.Vec3, segments int, round bool) []geom.Vec3 {
	segments = max(segments, 1)
	out := make([]geom.Vec3, segments+1)
	d1, d2 := from.Sub(corner), to.Sub(corner)
	half := geom.Angle(d1, d2) / 2
	arc := round && segments > 1 && half > 1e-6 && half < math.Pi/2-1e-6
	var c geom.Vec3
	var r float64
	var u0, u1 geom.Vec3
	if arc {
		w := d1.Length()
		c = corner.Add(geom.Normalize(geom.Normalize(d1).Add(geom.Normalize(d2))).MulScalar(w / math.Cos(half)))
		r = w * math.Tan(half)
		u0, u1 = geom.Normalize(from.Sub(c)), geom.Normalize(to.Sub(c))
	}
	for k := 0; k <= segments; k++ {
		t := float64(k) / float64(segments)
		if arc {
			out[k] = c.Add(slerp(u0, u1, t).MulScalar(r))
		} else {
			out[k] = geom.Lerp(from, to, t)
		}
	}
	out[0], out[segments] = from, to
	return out
}

func slerp(u0, u1 geom.Vec3, t float64) geom.Vec3 {
	omega := geom.Angle(u0, u1)
	s := math.Sin(omega)
	if s < geom.Epsilon {
		return geom.Normalize(geom.Lerp(u0, u1, t))
	}
	return u0.MulScalar(math.Sin((1-t)*omega) / s).Add(u1.MulScalar(math.Sin(t*omega) / s))
}

// PreviewBevel returns the profile points each edge would get, chain at the
// first corner then chain at the second, computed independently per edge.
func PreviewBevel(m *mesh.Mesh, edgeIDs []mesh.EdgeID, opts BevelOptions) ([]geom.Vec3, error) {
	return previewBevel(m, edgeIDs, fixedWidth(opts.Width), opts.Segments, opts.Round)
}

// PreviewFillet is PreviewBevel for FilletEdges.
func PreviewFillet(m *mesh.Mesh, edgeIDs []mesh.EdgeID, radius float64, divisions int) ([]geom.Vec3, error) {
	return previewBevel(m, edgeIDs, filletWidth(radius), max(divisions, 0)+1, true)
}

func previewBevel(m *mesh.Mesh, edgeIDs []mesh.EdgeID, width widthFunc, segments int, round bool) ([]geom.Vec3, error) {
	var out []geom.Vec3
	var first error
	for _, id := range existingEdges(m, edgeIDs) {
		p, err := planBevelEdge(m, id, width, segments, round)
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		out = append(out, p.chainA...)
		out = append(out, p.chainB...)
	}
	if out == nil {
		if first == nil {
			first = stale("bevel", firstOr(edgeIDs))
		}
		return nil, first
	}
	return out, nil
}

// BevelEdges replaces each edge with Segments strips. Edges are processed
// one after another on a working copy: an edge whose endpoint was consumed
// by an earlier bevel follows it to the slid vertex. Edges that cannot be
// beveled are reported in Skipped; the call fails only when none could be.
func BevelEdges(m *mesh.Mesh, edgeIDs []mesh.EdgeID, opts BevelOptions) (BevelResult, error) {
	return bevelEdges(m, edgeIDs, fixedWidth(opts.Width), opts.Segments, opts.Round)
}

// ChamferEdges is a one-segment bevel.
func ChamferEdges(m *mesh.Mesh, edgeIDs []mesh.EdgeID, width float64) (BevelResult, error) {
	return bevelEdges(m, edgeIDs, fixedWidth(width), 1, false)
}

// FilletEdges rounds each edge with an arc of the given radius split into
// divisions+1 strips. The slide width follows from the angle between the
// two faces, so sharper edges slide further.
func FilletEdges(m *mesh.Mesh, edgeIDs []mesh.EdgeID, radius float64, divisions int) (BevelResult, error) {
	if radius <= 0 {
		return BevelResult{}, invalid("fillet", "", "radius must be positive")
	}
	return bevelEdges(m, edgeIDs, filletWidth(radius), max(divisions, 0)+1, true)
}

func bevelEdges(m *mesh.Mesh, edgeIDs []mesh.EdgeID, width widthFunc, segments int, round bool) (BevelResult, error) {
	var res BevelResult
	live := existingEdges(m, edgeIDs)
	if len(live) == 0 {
		return res, stale("bevel", firstOr(edgeIDs))
	}
	w := m.Clone()
	redirect := make(map[mesh.EdgeID]mesh.EdgeID)
	var first error
	for _, id := range live {
		for to, ok := redirect[id]; ok; to, ok = redirect[id] {
			id = to
		}
		p, err := planBevelEdge(w, id, width, segments, round)
		if err == nil {
			var verts []mesh.VertexID
			var faces []mesh.FaceID
			verts, faces, err = commitBevel(w, p, redirect)
			res.Vertices = append(res.Vertices, verts...)
			res.Faces = append(res.Faces, faces...)
		}
		if err != nil {
			if first == nil {
				first = err
			}
			res.Skipped = append(res.Skipped, id)
			continue
		}
		res.Beveled++
		w.Rebuild()
	}
	if res.Beveled == 0 {
		return BevelResult{Skipped: res.Skipped}, first
	}
	*m = *w
	return res, nil
}

// commitBevel rewrites w for one planned edge. It only touches w when it
// returns nil.
func commitBevel(w *mesh.Mesh, p *bevelPlan, redirect map[mesh.EdgeID]mesh.EdgeID) ([]mesh.VertexID, []mesh.FaceID, error) {
	const op = "bevel"
	// Faces across the slide edges, looked up before any loop changes.
	g1 := faceIDAcross(w, p.a, p.p1, p.f1)
	h1 := faceIDAcross(w, p.a, p.n2, p.f2)
	g2 := faceIDAcross(w, p.b, p.n1, p.f1)
	h2 := faceIDAcross(w, p.b, p.p2, p.f2)
	for _, id := range []mesh.FaceID{g1, h1, g2, h2} {
		if id != "" && (id == p.f1 || id == p.f2) {
			return nil, nil, invalid(op, string(mesh.EdgeKey(p.a, p.b)), "bevel faces wrap around the edge")
		}
	}

	va, vb := *w.Vertex(p.a), *w.Vertex(p.b)
	chainA := make([]mesh.VertexID, len(p.chainA))
	for k, pos := range p.chainA {
		chainA[k] = w.AddVertex(mesh.CreateVertexWith(pos, va.Normal, va.UV))
	}
	chainB := make([]mesh.VertexID, len(p.chainB))
	for k, pos := range p.chainB {
		chainB[k] = w.AddVertex(mesh.CreateVertexWith(pos, vb.Normal, vb.UV))
	}
	s := len(chainA) - 1
	a1, a2, b1, b2 := chainA[0], chainA[s], chainB[0], chainB[s]

	f1 := w.Face(p.f1)
	uvA1, uvB1 := slidUV(f1, p.a, p.p1, p.ta1), slidUV(f1, p.b, p.n1, p.tb1)
	spliceCorner(f1, p.a, []mesh.VertexID{a1}, []geom.Vec2{uvA1})
	spliceCorner(f1, p.b, []mesh.VertexID{b1}, []geom.Vec2{uvB1})
	f2 := w.Face(p.f2)
	uvA2, uvB2 := slidUV(f2, p.a, p.n2, p.ta2), slidUV(f2, p.b, p.p2, p.tb2)
	spliceCorner(f2, p.a, []mesh.VertexID{a2}, []geom.Vec2{uvA2})
	spliceCorner(f2, p.b, []mesh.VertexID{b2}, []geom.Vec2{uvB2})

	var added []mesh.Face
	src := *f1
	for k := 0; k < s; k++ {
		v0, v1 := float64(k)/float64(s), float64(k+1)/float64(s)
		added = append(added, derivedFace(&src,
			[]mesh.VertexID{chainA[k], chainA[k+1], chainB[k+1], chainB[k]},
			[]geom.Vec2{{X: 0, Y: v0}, {X: 0, Y: v1}, {X: 1, Y: v1}, {X: 1, Y: v0}},
		))
	}

	// Corner at a: chain reversed runs a2 -> a1 on the far side.
	revA := make([]mesh.VertexID, len(chainA))
	for k, id := range chainA {
		revA[s-k] = id
	}
	added = append(added, closeCorner(w, &src, p.a, g1, h1, p.p1, p.n2, a1, a2, p.ta1, p.ta2, revA)...)
	// Corner at b: chain runs b1 -> b2.
	added = append(added, closeCorner(w, &src, p.b, g2, h2, p.n1, p.p2, b1, b2, p.tb1, p.tb2, chainB)...)

	var faces []mesh.FaceID
	for _, f := range added {
		faces = append(faces, w.AddFace(f))
	}

	used := w.ReferencedVertices()
	gone := make(map[mesh.VertexID]bool)
	for _, v := range []mesh.VertexID{p.a, p.b} {
		if !used[v] {
			gone[v] = true
		}
	}
	w.RemoveVertices(gone)

	redirect[mesh.EdgeKey(p.a, p.p1)] = mesh.EdgeKey(a1, p.p1)
	redirect[mesh.EdgeKey(p.a, p.n2)] = mesh.EdgeKey(a2, p.n2)
	redirect[mesh.EdgeKey(p.b, p.n1)] = mesh.EdgeKey(b1, p.n1)
	redirect[mesh.EdgeKey(p.b, p.p2)] = mesh.EdgeKey(b2, p.p2)

	verts := append(append([]mesh.VertexID(nil), chainA...), chainB...)
	return verts, faces, nil
}

// closeCorner patches the faces around corner v after its two slide
// vertices s1 (toward x1, across face g) and s2 (toward x2, across face h)
// were created. When g and h are the same face the corner vertex is
// replaced by chain in it. Otherwise the slide vertices are inserted on the
// neighbouring edges and a corner face [v, chain...] closes the hole.
func closeCorner(w *mesh.Mesh, src *mesh.Face, v mesh.VertexID, g, h mesh.FaceID,
	x1, x2, s1, s2 mesh.VertexID, t1, t2 float64, chain []mesh.VertexID,
) []mesh.Face {
	if g != "" && g == h {
		f := w.Face(g)
		uv, _ := f.CornerUV(v)
		uvs := make([]geom.Vec2, len(chain))
		for i := range uvs {
			uvs[i] = uv
		}
		spliceCorner(f, v, chain, uvs)
		return nil
	}
	if g != "" {
		w.Face(g).InsertOnEdge(v, x1, []mesh.VertexID{s1}, []float64{t1})
	}
	if h != "" {
		w.Face(h).InsertOnEdge(v, x2, []mesh.VertexID{s2}, []float64{t2})
	}
	if g == "" && h == "" {
		return nil
	}
	return []mesh.Face{derivedFace(src, append([]mesh.VertexID{v}, chain...), nil)}
}

// faceIDAcross returns the id of the face across (a, b) from f, or "".
func faceIDAcross(m *mesh.Mesh, a, b mesh.VertexID, f mesh.FaceID) mesh.FaceID {
	if o := otherFace(m, a, b, f); o != nil {
		return o.ID
	}
	return ""
}

// slidUV interpolates f's corner uv from v toward x by t.
func slidUV(f *mesh.Face, v, x mesh.VertexID, t float64) geom.Vec2 {
	uv, _ := f.CornerUV(v)
	ux, _ := f.CornerUV(x)
	return geom.Lerp2(uv, ux, t)
}

// spliceCorner replaces corner v of f with ids, keeping uvs aligned. uvs is
// used only when f carries uvs.
func spliceCorner(f *mesh.Face, v mesh.VertexID, ids []mesh.VertexID, uvs []geom.Vec2) {
	i := f.IndexOf(v)
	if i < 0 {
		return
	}
	loop := make([]mesh.VertexID, 0, f.Len()+len(ids)-1)
	loop = append(loop, f.VertexIDs[:i]...)
	loop = append(loop, ids...)
	loop = append(loop, f.VertexIDs[i+1:]...)
	if f.UVs != nil {
		out := make([]geom.Vec2, 0, len(loop))
		out = append(out, f.UVs[:i]...)
		out = append(out, uvs...)
		out = append(out, f.UVs[i+1:]...)
		f.UVs = out
	}
	f.VertexIDs = loop
}
