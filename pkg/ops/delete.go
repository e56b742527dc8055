package ops

import (
	"github.com/chazu/facet/pkg/mesh"
)

// DeleteVertices removes the vertices and every face that references one of
// them. Other vertices of those faces remain as loose points.
func DeleteVertices(m *mesh.Mesh, ids []mesh.VertexID) error {
	live := existingVertices(m, ids)
	if len(live) == 0 {
		return stale("delete vertices", firstOr(ids))
	}
	gone := make(map[mesh.VertexID]bool, len(live))
	for _, id := range live {
		gone[id] = true
	}
	drop := make(map[mesh.FaceID]bool)
	for _, f := range m.Faces {
		for _, id := range f.VertexIDs {
			if gone[id] {
				drop[f.ID] = true
				break
			}
		}
	}
	m.RemoveFaces(drop)
	m.RemoveVertices(gone)
	m.Rebuild()
	return nil
}

// DeleteEdges removes every face incident to the edges. The endpoints stay.
func DeleteEdges(m *mesh.Mesh, ids []mesh.EdgeID) error {
	live := existingEdges(m, ids)
	if len(live) == 0 {
		return stale("delete edges", firstOr(ids))
	}
	drop := make(map[mesh.FaceID]bool)
	for _, id := range live {
		for _, fid := range m.Edge(id).FaceIDs {
			drop[fid] = true
		}
	}
	m.RemoveFaces(drop)
	m.Rebuild()
	return nil
}

// DeleteFaces removes only the given faces. Their vertices stay.
func DeleteFaces(m *mesh.Mesh, ids []mesh.FaceID) error {
	live := existingFaces(m, ids)
	if len(live) == 0 {
		return stale("delete faces", firstOr(ids))
	}
	drop := make(map[mesh.FaceID]bool, len(live))
	for _, id := range live {
		drop[id] = true
	}
	m.RemoveFaces(drop)
	m.Rebuild()
	return nil
}

// FlipFaces reverses the winding, and so the normal, of each face.
func FlipFaces(m *mesh.Mesh, ids []mesh.FaceID) error {
	live := existingFaces(m, ids)
	if len(live) == 0 {
		return stale("flip faces", firstOr(ids))
	}
	for _, id := range live {
		m.Face(id).Reverse()
	}
	m.Rebuild()
	return nil
}

// MarkSeams sets or clears the seam flag on edges. Seams survive edge
// rebuilds as long as the vertex pair does.
func MarkSeams(m *mesh.Mesh, ids []mesh.EdgeID, seam bool) error {
	live := existingEdges(m, ids)
	if len(live) == 0 {
		return stale("mark seams", firstOr(ids))
	}
	for _, id := range live {
		m.Edge(id).Seam = seam
	}
	return nil
}
