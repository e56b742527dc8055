package mesh

import (
	"fmt"
	"math"
	"sort"
)

// ValidationError describes one broken invariant.
type ValidationError struct {
	Code     string
	Message  string
	VertexID VertexID
	FaceID   FaceID
	EdgeID   EdgeID
}

func (e ValidationError) Error() string {
	context := ""
	switch {
	case e.FaceID != "":
		context = fmt.Sprintf(" (face: %s)", e.FaceID)
	case e.EdgeID != "":
		context = fmt.Sprintf(" (edge: %s)", e.EdgeID)
	case e.VertexID != "":
		context = fmt.Sprintf(" (vertex: %s)", e.VertexID)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, context)
}

// normalTolerance bounds | |n| - 1 | for rendered normals.
const normalTolerance = 1e-5

// Validate checks every structural invariant of m and returns the findings.
// An empty result means the mesh is consistent and renderable. It never
// mutates m.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateIDs(m)...)
	errs = append(errs, validateFaces(m)...)
	errs = append(errs, validateEdges(m)...)
	errs = append(errs, validateNormals(m)...)
	return errs
}

func validateIDs(m *Mesh) []ValidationError {
	var errs []ValidationError
	seenV := make(map[VertexID]bool, len(m.Vertices))
	for _, v := range m.Vertices {
		if seenV[v.ID] {
			errs = append(errs, ValidationError{
				Code:     "DUPLICATE_VERTEX_ID",
				Message:  "vertex id used more than once",
				VertexID: v.ID,
			})
		}
		seenV[v.ID] = true
	}
	seenF := make(map[FaceID]bool, len(m.Faces))
	for _, f := range m.Faces {
		if seenF[f.ID] {
			errs = append(errs, ValidationError{
				Code:    "DUPLICATE_FACE_ID",
				Message: "face id used more than once",
				FaceID:  f.ID,
			})
		}
		seenF[f.ID] = true
	}
	return errs
}

func validateFaces(m *Mesh) []ValidationError {
	var errs []ValidationError
	for i := range m.Faces {
		f := &m.Faces[i]
		n := len(f.VertexIDs)
		if n < 3 {
			errs = append(errs, ValidationError{
				Code:    "FACE_ARITY",
				Message: fmt.Sprintf("face has %d vertices, need at least 3", n),
				FaceID:  f.ID,
			})
		}
		if f.UVs != nil && len(f.UVs) != n {
			errs = append(errs, ValidationError{
				Code:    "FACE_UV_MISMATCH",
				Message: fmt.Sprintf("face has %d uvs for %d vertices", len(f.UVs), n),
				FaceID:  f.ID,
			})
		}
		for k, id := range f.VertexIDs {
			if m.Vertex(id) == nil {
				errs = append(errs, ValidationError{
					Code:     "FACE_DANGLING_VERTEX",
					Message:  "face references a missing vertex",
					FaceID:   f.ID,
					VertexID: id,
				})
			}
			if n > 0 && f.VertexIDs[(k+1)%n] == id {
				errs = append(errs, ValidationError{
					Code:     "FACE_REPEATED_VERTEX",
					Message:  "consecutive corners share a vertex",
					FaceID:   f.ID,
					VertexID: id,
				})
			}
		}
	}
	return errs
}

// validateEdges compares the stored edges with a fresh derivation.
func validateEdges(m *Mesh) []ValidationError {
	var errs []ValidationError
	want := BuildEdgesFromFaces(m.Vertices, m.Faces)
	wantByID := make(map[EdgeID]Edge, len(want))
	for _, e := range want {
		wantByID[e.ID] = e
	}
	have := make(map[EdgeID]bool, len(m.Edges))
	for _, e := range m.Edges {
		if have[e.ID] {
			errs = append(errs, ValidationError{
				Code:    "DUPLICATE_EDGE",
				Message: "edge listed more than once",
				EdgeID:  e.ID,
			})
			continue
		}
		have[e.ID] = true
		w, ok := wantByID[e.ID]
		if !ok {
			errs = append(errs, ValidationError{
				Code:    "EDGE_STALE",
				Message: "edge is not bordered by any face",
				EdgeID:  e.ID,
			})
			continue
		}
		if !sameFaceSet(e.FaceIDs, w.FaceIDs) {
			errs = append(errs, ValidationError{
				Code:    "EDGE_FACE_MISMATCH",
				Message: fmt.Sprintf("edge lists faces %v, faces say %v", e.FaceIDs, w.FaceIDs),
				EdgeID:  e.ID,
			})
		}
	}
	for _, w := range want {
		if !have[w.ID] {
			errs = append(errs, ValidationError{
				Code:    "EDGE_MISSING",
				Message: "face boundary pair has no edge",
				EdgeID:  w.ID,
			})
		}
	}
	return errs
}

func sameFaceSet(a, b []FaceID) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]FaceID(nil), a...)
	bs := append([]FaceID(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func validateNormals(m *Mesh) []ValidationError {
	var errs []ValidationError
	for _, f := range m.Faces {
		if math.Abs(f.Normal.Length()-1) > normalTolerance {
			errs = append(errs, ValidationError{
				Code:    "FACE_NORMAL_NOT_UNIT",
				Message: fmt.Sprintf("face normal length %.6f", f.Normal.Length()),
				FaceID:  f.ID,
			})
		}
	}
	for _, v := range m.Vertices {
		if math.Abs(v.Normal.Length()-1) > normalTolerance {
			errs = append(errs, ValidationError{
				Code:     "VERTEX_NORMAL_NOT_UNIT",
				Message:  fmt.Sprintf("vertex normal length %.6f", v.Normal.Length()),
				VertexID: v.ID,
			})
		}
	}
	return errs
}
