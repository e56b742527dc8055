package ops

import (
	"fmt"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// MergeMode selects where the surviving vertex of a merge ends up.
type MergeMode string

const (
	// MergeCenter moves the survivor to the average of the merged positions.
	MergeCenter MergeMode = "center"
	// MergeFirst keeps the first vertex's original position.
	MergeFirst MergeMode = "first"
)

// ParseMergeMode converts a name to a MergeMode.
func ParseMergeMode(s string) (MergeMode, error) {
	switch MergeMode(s) {
	case MergeCenter, MergeFirst:
		return MergeMode(s), nil
	case "":
		return MergeCenter, nil
	}
	return "", fmt.Errorf("unknown merge mode %q", s)
}

// MergeVertices collapses ids into the first existing one. Every face loop
// is rewritten to use the survivor, consecutive repeats are collapsed, and
// faces left with fewer than three distinct vertices are dropped.
func MergeVertices(m *mesh.Mesh, ids []mesh.VertexID, mode MergeMode) (mesh.VertexID, error) {
	const op = "merge vertices"
	live := existingVertices(m, ids)
	if len(live) == 0 {
		return "", stale(op, firstOr(ids))
	}
	survivor := live[0]
	if len(live) == 1 {
		return survivor, nil
	}
	err := apply(m, func(w *mesh.Mesh) error {
		mergeGroups(w, [][]mesh.VertexID{live}, mode)
		return nil
	})
	return survivor, err
}

// MergeVerticesByDistance unions every pair of candidate vertices closer
// than tolerance, transitively, and collapses each group as MergeVertices
// does. An empty ids merges over the whole mesh. It returns how many
// vertices were removed.
func MergeVerticesByDistance(m *mesh.Mesh, ids []mesh.VertexID, tolerance float64, mode MergeMode) (int, error) {
	const op = "merge by distance"
	if tolerance < 0 {
		return 0, invalid(op, "", "tolerance must not be negative")
	}
	candidates := existingVertices(m, ids)
	if len(ids) == 0 {
		candidates = make([]mesh.VertexID, len(m.Vertices))
		for i, v := range m.Vertices {
			candidates[i] = v.ID
		}
	} else if len(candidates) == 0 {
		return 0, stale(op, ids[0])
	}

	groups := proximityGroups(m, candidates, tolerance)
	removed := 0
	for _, g := range groups {
		removed += len(g) - 1
	}
	if removed == 0 {
		return 0, nil
	}
	err := apply(m, func(w *mesh.Mesh) error {
		mergeGroups(w, groups, mode)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// spatialVertex adapts a vertex position to the r-tree.
type spatialVertex struct {
	index int
	rect  rtreego.Rect
}

func (s *spatialVertex) Bounds() rtreego.Rect { return s.rect }

// proximityGroups returns groups of two or more candidates linked by
// distance <= tolerance. Group members keep candidate order.
func proximityGroups(m *mesh.Mesh, candidates []mesh.VertexID, tolerance float64) [][]mesh.VertexID {
	pts := make([]geom.Vec3, len(candidates))
	tree := rtreego.NewTree(3, 8, 32)
	for i, id := range candidates {
		p, _ := m.Position(id)
		pts[i] = p
		tree.Insert(&spatialVertex{index: i, rect: rtreego.Point{p.X, p.Y, p.Z}.ToRect(geom.Epsilon)})
	}

	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	for i, p := range pts {
		box := rtreego.Point{p.X, p.Y, p.Z}.ToRect(tolerance + geom.Epsilon)
		for _, hit := range tree.SearchIntersect(box) {
			j := hit.(*spatialVertex).index
			if j != i && geom.Distance(p, pts[j]) <= tolerance {
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]mesh.VertexID)
	var roots []int
	for i, id := range candidates {
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], id)
	}
	var groups [][]mesh.VertexID
	for _, r := range roots {
		if len(byRoot[r]) > 1 {
			groups = append(groups, byRoot[r])
		}
	}
	return groups
}

// mergeGroups collapses each group into its first member and removes the
// rest. The caller rebuilds.
func mergeGroups(w *mesh.Mesh, groups [][]mesh.VertexID, mode MergeMode) {
	remap := make(map[mesh.VertexID]mesh.VertexID)
	gone := make(map[mesh.VertexID]bool)
	for _, g := range groups {
		survivor := g[0]
		if mode != MergeFirst {
			w.Vertex(survivor).Position = geom.Centroid(w.Positions(g))
		}
		for _, id := range g[1:] {
			remap[id] = survivor
			gone[id] = true
		}
	}
	remapFaces(w, remap)
	w.RemoveVertices(gone)
}

// remapFaces substitutes vertex ids in every loop, collapses consecutive
// duplicates (cyclically, keeping uvs aligned) and drops faces with fewer
// than three distinct vertices.
func remapFaces(w *mesh.Mesh, remap map[mesh.VertexID]mesh.VertexID) {
	drop := make(map[mesh.FaceID]bool)
	for i := range w.Faces {
		f := &w.Faces[i]
		changed := false
		for k, id := range f.VertexIDs {
			if to, ok := remap[id]; ok {
				f.VertexIDs[k] = to
				changed = true
			}
		}
		if !changed {
			continue
		}
		ids, uvs := collapseRepeats(f.VertexIDs, f.UVs)
		distinct := make(map[mesh.VertexID]bool, len(ids))
		for _, id := range ids {
			distinct[id] = true
		}
		if len(distinct) < 3 {
			drop[f.ID] = true
			continue
		}
		f.VertexIDs, f.UVs = ids, uvs
	}
	w.RemoveFaces(drop)
}

func collapseRepeats(ids []mesh.VertexID, uvs []geom.Vec2) ([]mesh.VertexID, []geom.Vec2) {
	var outIDs []mesh.VertexID
	var outUVs []geom.Vec2
	for k, id := range ids {
		if len(outIDs) > 0 && outIDs[len(outIDs)-1] == id {
			continue
		}
		outIDs = append(outIDs, id)
		if uvs != nil {
			outUVs = append(outUVs, uvs[k])
		}
	}
	for len(outIDs) > 1 && outIDs[0] == outIDs[len(outIDs)-1] {
		outIDs = outIDs[:len(outIDs)-1]
		if outUVs != nil {
			outUVs = outUVs[:len(outUVs)-1]
		}
	}
	return outIDs, outUVs
}
