package ops

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// ExtrudeResult lists what an extrude created.
type ExtrudeResult struct {
	// Caps are the moved faces. They keep the ids of the extruded faces.
	Caps []mesh.FaceID
	// Sides are the new quads joining the old boundary to the caps.
	Sides []mesh.FaceID
	// Vertices maps each original region vertex to its moved copy.
	Vertices map[mesh.VertexID]mesh.VertexID
}

// extrudePlan is the geometry an extrude would produce, computed without
// touching the mesh.
type extrudePlan struct {
	faces  []mesh.FaceID
	order  []mesh.VertexID // region vertices in first-seen order
	moved  map[mesh.VertexID]geom.Vec3
	offset geom.Vec3
}

func planExtrude(m *mesh.Mesh, faceIDs []mesh.FaceID, distance float64) (*extrudePlan, error) {
	const op = "extrude"
	live := existingFaces(m, faceIDs)
	if len(live) == 0 {
		return nil, stale(op, firstOr(faceIDs))
	}
	var sum geom.Vec3
	for _, id := range live {
		sum = sum.Add(m.FaceNormal(m.Face(id)))
	}
	dir := geom.Normalize(sum)
	if dir.Length() == 0 {
		return nil, degenerate(op, string(live[0]), "selected faces have no common normal")
	}
	p := &extrudePlan{
		faces:  live,
		moved:  make(map[mesh.VertexID]geom.Vec3),
		offset: dir.MulScalar(distance),
	}
	for _, id := range live {
		for _, v := range m.Face(id).VertexIDs {
			if _, ok := p.moved[v]; ok {
				continue
			}
			pos, _ := m.Position(v)
			p.moved[v] = pos.Add(p.offset)
			p.order = append(p.order, v)
		}
	}
	return p, nil
}

// PreviewExtrude returns where each vertex of the face region would move,
// leaving m untouched.
func PreviewExtrude(m *mesh.Mesh, faceIDs []mesh.FaceID, distance float64) (map[mesh.VertexID]geom.Vec3, error) {
	p, err := planExtrude(m, faceIDs, distance)
	if err != nil {
		return nil, err
	}
	return p.moved, nil
}

// ExtrudeFaces extrudes the faces as one region along the normalized sum of
// their normals. Region vertices are duplicated at the offset position, the
// faces move onto the copies, and every region boundary edge a->b gets a
// side quad [a, b, b', a']. Interior region vertices that end up unused are
// removed.
func ExtrudeFaces(m *mesh.Mesh, faceIDs []mesh.FaceID, distance float64) (ExtrudeResult, error) {
	p, err := planExtrude(m, faceIDs, distance)
	if err != nil {
		return ExtrudeResult{}, err
	}
	res := ExtrudeResult{Caps: p.faces, Vertices: make(map[mesh.VertexID]mesh.VertexID, len(p.order))}

	err = apply(m, func(w *mesh.Mesh) error {
		for _, id := range p.order {
			src := w.Vertex(id)
			v := mesh.CreateVertexWith(p.moved[id], src.Normal, src.UV)
			res.Vertices[id] = v.ID
			w.AddVertex(v)
		}

		// Edges used once inside the region are its boundary.
		uses := make(map[mesh.EdgeID]int)
		for _, id := range p.faces {
			for _, e := range mesh.EdgesOfFace(w.Face(id)) {
				uses[e]++
			}
		}

		var sides []mesh.Face
		for _, id := range p.faces {
			f := w.Face(id)
			n := f.Len()
			for i := 0; i < n; i++ {
				a, b := f.VertexIDs[i], f.VertexIDs[(i+1)%n]
				if uses[mesh.EdgeKey(a, b)] != 1 {
					continue
				}
				loop := []mesh.VertexID{a, b, res.Vertices[b], res.Vertices[a]}
				var uvs []geom.Vec2
				if f.UVs != nil {
					ua, ub := f.UVs[i], f.UVs[(i+1)%n]
					uvs = []geom.Vec2{ua, ub, ub, ua}
				}
				sides = append(sides, derivedFace(f, loop, uvs))
			}
			for k, v := range f.VertexIDs {
				f.VertexIDs[k] = res.Vertices[v]
			}
		}
		for _, s := range sides {
			res.Sides = append(res.Sides, w.AddFace(s))
		}

		used := w.ReferencedVertices()
		unused := make(map[mesh.VertexID]bool)
		for _, id := range p.order {
			if !used[id] {
				unused[id] = true
			}
		}
		w.RemoveVertices(unused)
		return nil
	})
	if err != nil {
		return ExtrudeResult{}, err
	}
	return res, nil
}
