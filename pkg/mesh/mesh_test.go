package mesh

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/chazu/facet/pkg/geom"
)

// quadMesh builds a unit quad [A,B,C,D] in the XY plane facing +Z.
func quadMesh(t *testing.T) (*Mesh, [4]VertexID) {
	t.Helper()
	m := New("quad")
	pts := []geom.Vec3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	var ids [4]VertexID
	for i, p := range pts {
		ids[i] = m.AddVertex(CreateVertex(p))
	}
	f, err := CreateFace(ids[:], nil)
	if err != nil {
		t.Fatalf("CreateFace: %v", err)
	}
	m.AddFace(f)
	m.Rebuild()
	return m, ids
}

// cubeMesh builds an axis-aligned cube of side 2 centred at the origin with
// outward-facing quads.
func cubeMesh(t *testing.T) *Mesh {
	t.Helper()
	m := New("cube")
	corners := []geom.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	ids := make([]VertexID, len(corners))
	for i, c := range corners {
		ids[i] = m.AddVertex(CreateVertex(c))
	}
	loops := [][4]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}
	for _, l := range loops {
		m.AddFace(MustCreateFace([]VertexID{ids[l[0]], ids[l[1]], ids[l[2]], ids[l[3]]}, nil))
	}
	m.Rebuild()
	return m
}

func TestCreateVertexDefaults(t *testing.T) {
	v := CreateVertex(geom.Vec3{X: 1})
	if v.ID == "" {
		t.Fatal("vertex id is empty")
	}
	if v.Normal != geom.Up {
		t.Errorf("default normal = %v, want +Y", v.Normal)
	}
	if v.UV != (geom.Vec2{}) {
		t.Errorf("default uv = %v, want (0,0)", v.UV)
	}
	if w := CreateVertex(geom.Vec3{}); w.ID == v.ID {
		t.Error("two vertices share an id")
	}
}

func TestCreateFaceValidation(t *testing.T) {
	ids := []VertexID{"a", "b", "c"}
	tests := []struct {
		name    string
		ids     []VertexID
		uvs     []geom.Vec2
		wantErr bool
	}{
		{"triangle", ids, nil, false},
		{"triangle with uvs", ids, make([]geom.Vec2, 3), false},
		{"two vertices", ids[:2], nil, true},
		{"empty", nil, nil, true},
		{"uv mismatch", ids, make([]geom.Vec2, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateFace(tt.ids, tt.uvs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateFace error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidFace) {
					t.Errorf("error %v does not match ErrInvalidFace", err)
				}
				var ife *InvalidFaceError
				if !errors.As(err, &ife) {
					t.Errorf("error %T is not *InvalidFaceError", err)
				}
			}
		})
	}
}

func TestBuildEdgesFromFacesQuad(t *testing.T) {
	m, ids := quadMesh(t)
	if got := len(m.Edges); got != 4 {
		t.Fatalf("quad has %d edges, want 4", got)
	}
	e := m.EdgeBetween(ids[1], ids[0])
	if e == nil {
		t.Fatal("edge AB not found by reversed pair")
	}
	if len(e.FaceIDs) != 1 || e.FaceIDs[0] != m.Faces[0].ID {
		t.Errorf("edge AB faces = %v", e.FaceIDs)
	}
}

func TestBuildEdgesFromFacesIsDeterministic(t *testing.T) {
	m := cubeMesh(t)
	a := BuildEdgesFromFaces(m.Vertices, m.Faces)
	b := BuildEdgesFromFaces(m.Vertices, m.Faces)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two derivations from the same faces differ")
	}
	if len(a) != 12 {
		t.Fatalf("cube has %d edges, want 12", len(a))
	}
}

func TestBuildEdgesFromFacesSkipsMissingVertices(t *testing.T) {
	m, ids := quadMesh(t)
	faces := append(m.Faces, Face{ID: "tri", VertexIDs: []VertexID{ids[0], ids[2], "ghost"}})

	if got := len(BuildEdgesFromFaces(m.Vertices, faces)); got != 5 {
		t.Errorf("got %d edges, want 5 (the quad plus its diagonal)", got)
	}
	if got := len(BuildEdgesFromFaces(nil, faces)); got != 7 {
		t.Errorf("without vertices got %d edges, want 7", got)
	}
}

func TestEdgeFaceSetsMatchFaceLoops(t *testing.T) {
	m := cubeMesh(t)
	for _, e := range m.Edges {
		var want []FaceID
		for i := range m.Faces {
			if m.Faces[i].EdgeDirection(e.VertexIDs[0], e.VertexIDs[1]) != 0 {
				want = append(want, m.Faces[i].ID)
			}
		}
		if !sameFaceSet(e.FaceIDs, want) {
			t.Errorf("edge %s faces = %v, want %v", e.ID, e.FaceIDs, want)
		}
		if len(e.FaceIDs) != 2 {
			t.Errorf("closed cube edge %s has %d faces", e.ID, len(e.FaceIDs))
		}
	}
}

func TestRebuildEdgesKeepsFlags(t *testing.T) {
	m, ids := quadMesh(t)
	e := m.EdgeBetween(ids[0], ids[1])
	e.Seam = true
	e.Selected = true
	m.RebuildEdges()
	e = m.EdgeBetween(ids[0], ids[1])
	if !e.Seam || !e.Selected {
		t.Errorf("flags lost across rebuild: seam=%v selected=%v", e.Seam, e.Selected)
	}
}

func TestFaceNormalWinding(t *testing.T) {
	m, _ := quadMesh(t)
	if n := m.Faces[0].Normal; !geom.NearlyEqual(n, geom.Vec3{Z: 1}, 1e-12) {
		t.Errorf("counter-clockwise quad normal = %v, want +Z", n)
	}
	m.Faces[0].Reverse()
	m.RecomputeNormals()
	if n := m.Faces[0].Normal; !geom.NearlyEqual(n, geom.Vec3{Z: -1}, 1e-12) {
		t.Errorf("reversed quad normal = %v, want -Z", n)
	}
}

func TestCalculateFaceNormalDegenerate(t *testing.T) {
	verts := []Vertex{
		{ID: "a", Position: geom.Vec3{}},
		{ID: "b", Position: geom.Vec3{X: 1}},
		{ID: "c", Position: geom.Vec3{X: 2}},
	}
	n := CalculateFaceNormal(Face{VertexIDs: []VertexID{"a", "b", "c"}}, verts)
	if n != geom.Up {
		t.Errorf("collinear triangle normal = %v, want +Y fallback", n)
	}
}

func TestCalculateFaceNormalCollinearFirstCorner(t *testing.T) {
	// A pentagon with a vertex inserted on its first edge keeps the quad's
	// normal.
	verts := []Vertex{
		{ID: "a", Position: geom.Vec3{}},
		{ID: "m", Position: geom.Vec3{X: 0.5}},
		{ID: "b", Position: geom.Vec3{X: 1}},
		{ID: "c", Position: geom.Vec3{X: 1, Y: 1}},
		{ID: "d", Position: geom.Vec3{Y: 1}},
	}
	n := CalculateFaceNormal(Face{VertexIDs: []VertexID{"a", "m", "b", "c", "d"}}, verts)
	if !geom.NearlyEqual(n, geom.Vec3{Z: 1}, 1e-12) {
		t.Errorf("pentagon normal = %v, want +Z", n)
	}
}

func TestVertexNormalsAreUnitAndPointOutward(t *testing.T) {
	m := cubeMesh(t)
	m.AddVertex(CreateVertex(geom.Vec3{X: 10}))
	m.Rebuild()
	inv := 1 / math.Sqrt(3)
	for _, v := range m.Vertices {
		if l := v.Normal.Length(); math.Abs(l-1) > 1e-5 {
			t.Errorf("vertex %s normal length %v", v.ID, l)
		}
		if v.Position.X == 10 {
			if v.Normal != geom.Up {
				t.Errorf("isolated vertex normal = %v, want +Y", v.Normal)
			}
			continue
		}
		want := geom.Vec3{X: v.Position.X * inv, Y: v.Position.Y * inv, Z: v.Position.Z * inv}
		if !geom.NearlyEqual(v.Normal, want, 1e-9) {
			t.Errorf("corner %v normal = %v, want %v", v.Position, v.Normal, want)
		}
	}
	if errs := Validate(m); len(errs) != 0 {
		t.Fatalf("Validate: %v", errs)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	m := cubeMesh(t)
	m.Faces[0].UVs = []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m.Faces[0].MaterialID = "wood"
	m.Edges[3].Seam = true
	m.Shading = ShadingSmooth

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != m.ID || got.Name != m.Name || got.Shading != m.Shading {
		t.Errorf("header mismatch: %+v", got.ToRecord())
	}
	if !reflect.DeepEqual(got.Vertices, m.Vertices) {
		t.Error("vertices differ after round trip")
	}
	if !reflect.DeepEqual(got.Edges, m.Edges) {
		t.Error("edges differ after round trip")
	}
	if !reflect.DeepEqual(got.Faces, m.Faces) {
		t.Error("faces differ after round trip")
	}
	if !reflect.DeepEqual(got.Transform, m.Transform) {
		t.Error("transform differs after round trip")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := cubeMesh(t)
	c := m.Clone()
	c.Faces[0].VertexIDs[0] = "changed"
	c.Vertices[0].Position = geom.Vec3{X: 99}
	c.Edges[0].FaceIDs[0] = "changed"
	if m.Faces[0].VertexIDs[0] == "changed" || m.Vertices[0].Position.X == 99 || m.Edges[0].FaceIDs[0] == "changed" {
		t.Fatal("clone shares storage with the original")
	}
}

func TestInsertOnEdgeBothWindings(t *testing.T) {
	f := Face{
		VertexIDs: []VertexID{"a", "b", "c", "d"},
		UVs:       []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
	}
	if !f.InsertOnEdge("a", "b", []VertexID{"p", "q"}, []float64{0.25, 0.75}) {
		t.Fatal("insert on a->b failed")
	}
	want := []VertexID{"a", "p", "q", "b", "c", "d"}
	if !reflect.DeepEqual(f.VertexIDs, want) {
		t.Errorf("loop = %v, want %v", f.VertexIDs, want)
	}
	if f.UVs[1].X != 0.25 || f.UVs[2].X != 0.75 {
		t.Errorf("interpolated uvs = %v", f.UVs)
	}

	// Same points given from the other endpoint land in loop order.
	g := Face{VertexIDs: []VertexID{"a", "b", "c", "d"}}
	if !g.InsertOnEdge("a", "d", []VertexID{"p", "q"}, []float64{0.25, 0.75}) {
		t.Fatal("insert on wrapping edge failed")
	}
	want = []VertexID{"a", "b", "c", "d", "q", "p"}
	if !reflect.DeepEqual(g.VertexIDs, want) {
		t.Errorf("loop = %v, want %v", g.VertexIDs, want)
	}

	if g.InsertOnEdge("a", "c", []VertexID{"x"}, []float64{0.5}) {
		t.Error("insert between non-adjacent corners should fail")
	}
}

func TestSetLoopPreservesCornerUVs(t *testing.T) {
	f := Face{
		VertexIDs: []VertexID{"a", "b", "c"},
		UVs:       []geom.Vec2{{X: 0}, {X: 1}, {X: 2}},
	}
	f.SetLoop([]VertexID{"c", "x", "a"}, func(VertexID) geom.Vec2 { return geom.Vec2{X: 7} })
	want := []geom.Vec2{{X: 2}, {X: 7}, {X: 0}}
	if !reflect.DeepEqual(f.UVs, want) {
		t.Errorf("uvs = %v, want %v", f.UVs, want)
	}
}

func TestValidateFindsProblems(t *testing.T) {
	m, ids := quadMesh(t)
	m.Faces = append(m.Faces, Face{ID: "bad", VertexIDs: []VertexID{ids[0], "ghost", ids[0]}, Normal: geom.Up})
	errs := Validate(m)
	codes := make(map[string]bool)
	for _, e := range errs {
		codes[e.Code] = true
	}
	for _, want := range []string{"FACE_DANGLING_VERTEX", "FACE_REPEATED_VERTEX"} {
		if !codes[want] {
			t.Errorf("Validate did not report %s; got %v", want, errs)
		}
	}
}

func TestLookupSurvivesDirectSliceEdits(t *testing.T) {
	m, ids := quadMesh(t)
	if m.Vertex(ids[2]) == nil {
		t.Fatal("vertex lookup failed")
	}
	m.Vertices = m.Vertices[1:]
	if m.Vertex(ids[0]) != nil {
		t.Error("removed vertex still found")
	}
	if v := m.Vertex(ids[2]); v == nil || v.ID != ids[2] {
		t.Error("lookup returned wrong vertex after slice edit")
	}
}

func TestRemoveLooseVertices(t *testing.T) {
	m, _ := quadMesh(t)
	m.AddVertex(CreateVertex(geom.Vec3{Z: 5}))
	if n := m.RemoveLooseVertices(); n != 1 {
		t.Errorf("removed %d loose vertices, want 1", n)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", m.VertexCount())
	}
}

func TestSelectionHelpers(t *testing.T) {
	m := cubeMesh(t)
	m.SelectFaces(m.Faces[0].ID)
	if got := len(m.SelectedFaceIDs()); got != 1 {
		t.Errorf("selected faces = %d, want 1", got)
	}
	if got := len(m.SelectedVertexIDs()); got != 4 {
		t.Errorf("selected vertices = %d, want 4", got)
	}
	m.SelectEdges(m.Edges[len(m.Edges)-1].ID)
	if got := len(m.SelectedEdgeIDs()); got != 1 {
		t.Errorf("selected edges = %d, want 1", got)
	}
	m.ClearSelection()
	if len(m.SelectionVertexIDs()) != 0 {
		t.Error("selection not cleared")
	}
}
