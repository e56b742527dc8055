package mesh

// EdgeKey returns the canonical id of the unordered pair (a, b). The same
// pair always yields the same id regardless of argument order.
func EdgeKey(a, b VertexID) EdgeID {
	if b < a {
		a, b = b, a
	}
	return EdgeID(string(a) + "|" + string(b))
}

// BuildEdgesFromFaces derives the edge list from face loops. For every face
// and every consecutive (wrapping) vertex pair, the first occurrence of the
// canonical pair creates an edge and later occurrences append their face id.
// Edges come out in order of first occurrence, so the result is
// deterministic for a given face list. Pairs touching a vertex missing from
// vertices make no edge; a nil vertices skips that check.
func BuildEdgesFromFaces(vertices []Vertex, faces []Face) []Edge {
	var known map[VertexID]bool
	if vertices != nil {
		known = make(map[VertexID]bool, len(vertices))
		for _, v := range vertices {
			known[v.ID] = true
		}
	}
	index := make(map[EdgeID]int)
	var edges []Edge
	for _, f := range faces {
		n := len(f.VertexIDs)
		for i := 0; i < n; i++ {
			a, b := f.VertexIDs[i], f.VertexIDs[(i+1)%n]
			if a == b || known != nil && (!known[a] || !known[b]) {
				continue
			}
			key := EdgeKey(a, b)
			if at, ok := index[key]; ok {
				e := &edges[at]
				if !containsFace(e.FaceIDs, f.ID) {
					e.FaceIDs = append(e.FaceIDs, f.ID)
				}
				continue
			}
			lo, hi := a, b
			if hi < lo {
				lo, hi = hi, lo
			}
			index[key] = len(edges)
			edges = append(edges, Edge{
				ID:        key,
				VertexIDs: [2]VertexID{lo, hi},
				FaceIDs:   []FaceID{f.ID},
			})
		}
	}
	return edges
}

func containsFace(ids []FaceID, id FaceID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// EdgesOfFace returns the canonical edge ids along the face loop, in loop
// order.
func EdgesOfFace(f *Face) []EdgeID {
	n := len(f.VertexIDs)
	out := make([]EdgeID, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, EdgeKey(f.VertexIDs[i], f.VertexIDs[(i+1)%n]))
	}
	return out
}
