package mesh

import "github.com/chazu/facet/pkg/geom"

func (f Face) clone() Face {
	f.VertexIDs = append([]VertexID(nil), f.VertexIDs...)
	if f.UVs != nil {
		f.UVs = append([]geom.Vec2(nil), f.UVs...)
	}
	return f
}

// Len returns the number of corners.
func (f *Face) Len() int { return len(f.VertexIDs) }

// IndexOf returns the loop index of v, or -1.
func (f *Face) IndexOf(v VertexID) int {
	for i, id := range f.VertexIDs {
		if id == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is a corner of f.
func (f *Face) Contains(v VertexID) bool { return f.IndexOf(v) >= 0 }

// Next returns the corner after index i, wrapping.
func (f *Face) Next(i int) VertexID { return f.VertexIDs[(i+1)%len(f.VertexIDs)] }

// Prev returns the corner before index i, wrapping.
func (f *Face) Prev(i int) VertexID {
	n := len(f.VertexIDs)
	return f.VertexIDs[(i+n-1)%n]
}

// EdgeDirection reports how the pair (a, b) appears in the loop: +1 when b
// directly follows a, -1 when a directly follows b, 0 when they are not
// winding-adjacent.
func (f *Face) EdgeDirection(a, b VertexID) int {
	n := len(f.VertexIDs)
	for i, id := range f.VertexIDs {
		next := f.VertexIDs[(i+1)%n]
		if id == a && next == b {
			return 1
		}
		if id == b && next == a {
			return -1
		}
	}
	return 0
}

// CornerUV returns the per-corner uv of v, if the face carries uvs.
func (f *Face) CornerUV(v VertexID) (geom.Vec2, bool) {
	if f.UVs == nil {
		return geom.Vec2{}, false
	}
	i := f.IndexOf(v)
	if i < 0 {
		return geom.Vec2{}, false
	}
	return f.UVs[i], true
}

// SetLoop replaces the vertex loop. When the face carries uvs, corners that
// existed before keep their uv and new corners take uvOf(id).
func (f *Face) SetLoop(ids []VertexID, uvOf func(VertexID) geom.Vec2) {
	if f.UVs != nil {
		old := make(map[VertexID]geom.Vec2, len(f.VertexIDs))
		for i, id := range f.VertexIDs {
			if _, seen := old[id]; !seen {
				old[id] = f.UVs[i]
			}
		}
		uvs := make([]geom.Vec2, len(ids))
		for i, id := range ids {
			if uv, ok := old[id]; ok {
				uvs[i] = uv
			} else if uvOf != nil {
				uvs[i] = uvOf(id)
			}
		}
		f.UVs = uvs
	}
	f.VertexIDs = append([]VertexID(nil), ids...)
}

// InsertOnEdge inserts ids between the winding-adjacent corners a and b.
// ids are ordered from a towards b and ts holds each one's parameter along
// a->b, used to interpolate corner uvs. It returns false when a and b are
// not adjacent in the loop.
func (f *Face) InsertOnEdge(a, b VertexID, ids []VertexID, ts []float64) bool {
	n := len(f.VertexIDs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cur, next := f.VertexIDs[i], f.VertexIDs[j]
		var forward bool
		switch {
		case cur == a && next == b:
			forward = true
		case cur == b && next == a:
			forward = false
		default:
			continue
		}

		insIDs := make([]VertexID, len(ids))
		insUVs := make([]geom.Vec2, len(ids))
		var uvA, uvB geom.Vec2
		if f.UVs != nil {
			uvA, uvB = f.UVs[f.IndexOf(a)], f.UVs[f.IndexOf(b)]
		}
		for k := range ids {
			src := k
			if !forward {
				src = len(ids) - 1 - k
			}
			insIDs[k] = ids[src]
			insUVs[k] = geom.Lerp2(uvA, uvB, ts[src])
		}

		loop := make([]VertexID, 0, n+len(ids))
		loop = append(loop, f.VertexIDs[:i+1]...)
		loop = append(loop, insIDs...)
		loop = append(loop, f.VertexIDs[i+1:]...)
		if f.UVs != nil {
			uvs := make([]geom.Vec2, 0, n+len(ids))
			uvs = append(uvs, f.UVs[:i+1]...)
			uvs = append(uvs, insUVs...)
			uvs = append(uvs, f.UVs[i+1:]...)
			f.UVs = uvs
		}
		f.VertexIDs = loop
		return true
	}
	return false
}

// Reverse flips the winding of the face.
func (f *Face) Reverse() {
	for i, j := 0, len(f.VertexIDs)-1; i < j; i, j = i+1, j-1 {
		f.VertexIDs[i], f.VertexIDs[j] = f.VertexIDs[j], f.VertexIDs[i]
		if f.UVs != nil {
			f.UVs[i], f.UVs[j] = f.UVs[j], f.UVs[i]
		}
	}
	f.Normal = f.Normal.MulScalar(-1)
}
