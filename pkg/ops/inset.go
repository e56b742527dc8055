package ops

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// InsetResult lists the faces an inset produced.
type InsetResult struct {
	// Inner faces keep the ids of the inset faces.
	Inner []mesh.FaceID
	// Ring holds the quads between each outer and inner loop.
	Ring []mesh.FaceID
}

// insetLoop computes the inner corner positions of f. Each corner moves
// toward the centroid by amount of its distance and then along the face
// normal by depth.
func insetLoop(m *mesh.Mesh, f *mesh.Face, amount, depth float64) []geom.Vec3 {
	c := m.FaceCentroid(f)
	lift := m.FaceNormal(f).MulScalar(depth)
	out := make([]geom.Vec3, f.Len())
	for i, p := range m.Positions(f.VertexIDs) {
		out[i] = p.Add(c.Sub(p).MulScalar(amount)).Add(lift)
	}
	return out
}

func checkInset(op string, m *mesh.Mesh, ids []mesh.FaceID, amount float64) ([]mesh.FaceID, error) {
	if amount < 0 || amount >= 1 {
		return nil, invalid(op, "", "amount must be in [0, 1)")
	}
	live := existingFaces(m, ids)
	if len(live) == 0 {
		return nil, stale(op, firstOr(ids))
	}
	return live, nil
}

// PreviewInset returns the inner loop positions for every face, in face
// order then loop order.
func PreviewInset(m *mesh.Mesh, ids []mesh.FaceID, amount, depth float64) ([]geom.Vec3, error) {
	live, err := checkInset("inset", m, ids, amount)
	if err != nil {
		return nil, err
	}
	var out []geom.Vec3
	for _, id := range live {
		out = append(out, insetLoop(m, m.Face(id), amount, depth)...)
	}
	return out, nil
}

// InsetFaces insets each face on its own. amount is the fraction of the
// way each corner moves toward the centroid and depth lifts the inner face
// along its normal. The original face becomes the inner face; a ring of
// quads joins it to the old outline.
func InsetFaces(m *mesh.Mesh, ids []mesh.FaceID, amount, depth float64) (InsetResult, error) {
	live, err := checkInset("inset", m, ids, amount)
	if err != nil {
		return InsetResult{}, err
	}
	return insetFaces(m, live, amount, depth)
}

// BevelFaces outlines each face by width (a fraction of the distance to the
// centroid, as in InsetFaces) and lifts the inner face by depth.
func BevelFaces(m *mesh.Mesh, ids []mesh.FaceID, width, depth float64) (InsetResult, error) {
	live, err := checkInset("bevel faces", m, ids, width)
	if err != nil {
		return InsetResult{}, err
	}
	return insetFaces(m, live, width, depth)
}

func insetFaces(m *mesh.Mesh, live []mesh.FaceID, amount, depth float64) (InsetResult, error) {
	var res InsetResult
	err := apply(m, func(w *mesh.Mesh) error {
		var ring []mesh.Face
		for _, id := range live {
			f := w.Face(id)
			pts := insetLoop(w, f, amount, depth)
			n := f.Len()

			var centerUV geom.Vec2
			if f.UVs != nil {
				centerUV = geom.Average2(f.UVs...)
			}
			inner := make([]mesh.VertexID, n)
			innerUVs := make([]geom.Vec2, n)
			for i, vid := range f.VertexIDs {
				src := w.Vertex(vid)
				inner[i] = w.AddVertex(mesh.CreateVertexWith(pts[i], src.Normal, src.UV))
				if f.UVs != nil {
					innerUVs[i] = geom.Lerp2(f.UVs[i], centerUV, amount)
				}
			}

			for i := 0; i < n; i++ {
				j := (i + 1) % n
				loop := []mesh.VertexID{f.VertexIDs[i], f.VertexIDs[j], inner[j], inner[i]}
				var uvs []geom.Vec2
				if f.UVs != nil {
					uvs = []geom.Vec2{f.UVs[i], f.UVs[j], innerUVs[j], innerUVs[i]}
				}
				ring = append(ring, derivedFace(f, loop, uvs))
			}

			f.VertexIDs = inner
			if f.UVs != nil {
				f.UVs = innerUVs
			}
			res.Inner = append(res.Inner, id)
		}
		for _, r := range ring {
			res.Ring = append(res.Ring, w.AddFace(r))
		}
		return nil
	})
	if err != nil {
		return InsetResult{}, err
	}
	return res, nil
}
