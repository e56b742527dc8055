package engine

import (
	"math"
	"strings"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(cube :size 2)`,
			expect: `(cube "__kw_size" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :width 4 :depth 2)`,
			expect: `(box "__kw_width" 4 "__kw_depth" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"say \"loop-cut\"" :a`,
			expect: `"say \"loop-cut\"" "__kw_a"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(loop-cut m e :cuts 2)`,
			expect: `(loop_cut m e "__kw_cuts" 2)`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `(plane :segments-x 3)`,
			expect: `(plane "__kw_segments-x" 3)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 x-1)`,
			expect: `(vec3 -1 0 x-1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  "; simple comment\n(cube)",
			expect: "// simple comment\n(cube)",
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :text`",
			expect: "`raw :text`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	a := parseArgs([]zygo.Sexp{
		&zygo.SexpStr{S: kwPrefix + "width"}, &zygo.SexpInt{Val: 2},
		&zygo.SexpStr{S: "hello"},
		&zygo.SexpStr{S: kwPrefix + "name"}, &zygo.SexpStr{S: "x"},
		&zygo.SexpStr{S: kwPrefix + "round"},
	})
	if len(a.positional) != 1 {
		t.Fatalf("positional = %d, want 1", len(a.positional))
	}
	w, err := a.num("width", 0)
	if err != nil || w != 2 {
		t.Errorf("width = %v, %v", w, err)
	}
	d, err := a.num("depth", 7)
	if err != nil || d != 7 {
		t.Errorf("depth default = %v, %v", d, err)
	}
	if _, err := a.num("name", 0); err == nil {
		t.Error("string keyword read as number should fail")
	}
	var round bool
	if err := a.flagInto("round", &round); err != nil || !round {
		t.Errorf("trailing flag = %v, %v", round, err)
	}
}

// ---------------------------------------------------------------------------
// Evaluation tests
// ---------------------------------------------------------------------------

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) *EvalResult {
	t.Helper()
	res, evalErrs, err := NewEngine().Run(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("nil result")
	}
	return res
}

// evalErr evaluates source and returns the first eval error message.
func evalErr(t *testing.T, source string) string {
	t.Helper()
	res, evalErrs, err := NewEngine().Run(source)
	if err != nil {
		t.Fatalf("expected eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	return evalErrs[0].Message
}

func mustMesh(t *testing.T, s *scene.Scene, name string) *mesh.Mesh {
	t.Helper()
	m := s.Lookup(name)
	if m == nil {
		t.Fatalf("mesh %q not in scene", name)
	}
	return m
}

func assertCounts(t *testing.T, m *mesh.Mesh, v, e, f int) {
	t.Helper()
	if m.VertexCount() != v || m.EdgeCount() != e || m.FaceCount() != f {
		t.Errorf("%s: got %d/%d/%d vertices/edges/faces, want %d/%d/%d",
			m.Name, m.VertexCount(), m.EdgeCount(), m.FaceCount(), v, e, f)
	}
	if errs := mesh.Validate(m); len(errs) > 0 {
		t.Errorf("%s invalid: %v", m.Name, errs)
	}
}

func TestDefmeshPrimitives(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		v, e, f int
	}{
		{"cube", `(defmesh "m" (cube :size 2))`, 8, 12, 6},
		{"box", `(defmesh "m" (box :width 4 :height 1 :depth 2))`, 8, 12, 6},
		{"plane", `(defmesh "m" (plane :width 3 :segments-x 3))`, 8, 10, 3},
		{"ico sphere", `(defmesh "m" (ico-sphere :radius 1 :subdivisions 0))`, 12, 30, 20},
		{"wedge", `(defmesh "m" (wedge))`, 6, 9, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evalOK(t, tt.source)
			assertCounts(t, mustMesh(t, res.Scene, "m"), tt.v, tt.e, tt.f)
		})
	}
}

func TestVec3(t *testing.T) {
	res := evalOK(t, `
(def s (defmesh "m" (cube :size 2)))
(move s (vec3 1 2.5 -3))
`)
	m := mustMesh(t, res.Scene, "m")
	var c geom.Vec3
	for _, v := range m.Vertices {
		c = c.Add(v.Position)
	}
	c = c.MulScalar(1 / float64(m.VertexCount()))
	if want := (geom.Vec3{X: 1, Y: 2.5, Z: -3}); geom.Distance(c, want) > 1e-9 {
		t.Errorf("centroid = %v, want %v", c, want)
	}
}

func TestVec3WrongArity(t *testing.T) {
	msg := evalErr(t, `(vec3 1 2)`)
	if !strings.Contains(msg, "expected 3 arguments") {
		t.Errorf("message = %q", msg)
	}
}

func TestExtrudeTopFace(t *testing.T) {
	res := evalOK(t, `
(def s (defmesh "tower" (cube :size 2)))
(extrude s (faces s :facing (vec3 0 1 0)) :distance 1)
`)
	m := mustMesh(t, res.Scene, "tower")
	assertCounts(t, m, 12, 20, 10)
	var top float64
	for _, v := range m.Vertices {
		top = math.Max(top, v.Position.Y)
	}
	if math.Abs(top-2) > 1e-9 {
		t.Errorf("top = %v, want 2", top)
	}
	if got := res.History.Names(); len(got) != 1 || got[0] != "extrude" {
		t.Errorf("history = %v", got)
	}
}

func TestEdgeOperators(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		v, e, f int
	}{
		{"chamfer", `(chamfer s (edge-near s (vec3 1 1 0)) :width 0.5)`, 10, 15, 7},
		{"bevel", `(bevel s (edge-near s (vec3 1 1 0)) :width 0.5 :segments 3)`, 14, 21, 9},
		{"fillet", `(fillet s (edge-near s (vec3 1 1 0)) :radius 0.5 :divisions 2)`, 14, 21, 9},
		{"loop cut", `(loop-cut s (edge-near s (vec3 1 1 0)) :cuts 1)`, 12, 20, 10},
		{"loop cut twice", `(loop-cut s (edge-near s (vec3 1 1 0)) :cuts 2)`, 16, 28, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evalOK(t, `(def s (defmesh "c" (cube :size 2)))`+"\n"+tt.op)
			assertCounts(t, mustMesh(t, res.Scene, "c"), tt.v, tt.e, tt.f)
			if len(res.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", res.Warnings)
			}
		})
	}
}

func TestChamferBoundaryEdgeFails(t *testing.T) {
	msg := evalErr(t, `
(def s (defmesh "p" (plane)))
(chamfer s (edge-near s (vec3 0.5 0 0)) :width 0.1)
`)
	if !strings.Contains(msg, "chamfer") {
		t.Errorf("message = %q, want it to name the builtin", msg)
	}
}

func TestKnifeAcrossPlane(t *testing.T) {
	res := evalOK(t, `
(def s (defmesh "strip" (plane :width 3 :segments-x 3)))
(knife s (list (vec3 -1 0 0.1) (vec3 1 0 0.1)))
`)
	m := mustMesh(t, res.Scene, "strip")
	if m.VertexCount() != 10 || m.FaceCount() != 4 {
		t.Errorf("got %d vertices and %d faces, want 10 and 4", m.VertexCount(), m.FaceCount())
	}
}

func TestKnifeOffSurfaceFails(t *testing.T) {
	msg := evalErr(t, `
(def s (defmesh "strip" (plane :width 3 :segments-x 3)))
(knife s (list (vec3 -1 5 0) (vec3 1 0 0)))
`)
	if !strings.Contains(msg, "not on the surface") {
		t.Errorf("message = %q", msg)
	}
}

func TestInsetAndDelete(t *testing.T) {
	res := evalOK(t, `
(def s (defmesh "c" (cube :size 2)))
(def top (faces s :facing (vec3 0 1 0)))
(inset s top :amount 0.25)
(delete-faces s (faces s :facing (vec3 0 1 0)))
`)
	// A flat inset keeps the ring coplanar, so every upward face goes.
	m := mustMesh(t, res.Scene, "c")
	for i := range m.Faces {
		if m.FaceNormal(&m.Faces[i]).Y > 0.5 {
			t.Fatal("upward faces remain after delete")
		}
	}
	if len(res.History.Names()) != 2 {
		t.Errorf("history = %v", res.History.Names())
	}
}

func TestMergeByDistanceKeepsDistinctVertices(t *testing.T) {
	res := evalOK(t, `
(def s (defmesh "c" (cube :size 2)))
(merge-by-distance s :distance 0.001)
`)
	assertCounts(t, mustMesh(t, res.Scene, "c"), 8, 12, 6)
}

func TestRotateAndScale(t *testing.T) {
	res := evalOK(t, `
(def s (defmesh "b" (box :width 4 :height 1 :depth 1)))
(rotate s 90 :axis :y)
(scale s 2 :axis :x)
`)
	m := mustMesh(t, res.Scene, "b")
	var maxX, maxZ float64
	for _, v := range m.Vertices {
		maxX = math.Max(maxX, v.Position.X)
		maxZ = math.Max(maxZ, v.Position.Z)
	}
	if math.Abs(maxZ-2) > 1e-9 || math.Abs(maxX-1) > 1e-9 {
		t.Errorf("extent x=%v z=%v, want 1 and 2", maxX, maxZ)
	}
}

func TestShading(t *testing.T) {
	res := evalOK(t, `(shade-smooth (defmesh "s" (uv-sphere)))`)
	if m := mustMesh(t, res.Scene, "s"); m.Shading != mesh.ShadingSmooth {
		t.Errorf("shading = %s", m.Shading)
	}
}

func TestMeshLookup(t *testing.T) {
	res := evalOK(t, `
(defmesh "a" (cube))
(extrude (mesh "a") (faces (mesh "a") :facing (vec3 0 0 1)))
`)
	assertCounts(t, mustMesh(t, res.Scene, "a"), 12, 20, 10)
}

func TestMeshLookupError(t *testing.T) {
	msg := evalErr(t, `(extrude (mesh "nonexistent") (list))`)
	if !strings.Contains(msg, "nonexistent") {
		t.Errorf("message = %q, want it to name the mesh", msg)
	}
}

func TestDuplicateMeshName(t *testing.T) {
	evalErr(t, `
(defmesh "a" (cube))
(defmesh "a" (cube))
`)
}

func TestStaleFaceID(t *testing.T) {
	msg := evalErr(t, `
(def s (defmesh "c" (cube)))
(extrude s "no-such-face")
`)
	if !strings.Contains(msg, "stale") {
		t.Errorf("message = %q", msg)
	}
}

func TestDefsolid(t *testing.T) {
	eng := NewEngine(WithKernel(sdfx.New(20), 1e-6))
	res, evalErrs, err := eng.Run(`
(defsolid "ball" (translate (solid-sphere :radius 1) (vec3 0 2 0)))
`)
	if err != nil {
		t.Fatalf("fatal: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	m := mustMesh(t, res.Scene, "ball")
	if m.FaceCount() == 0 {
		t.Fatal("imported solid has no faces")
	}
	centre := geom.Vec3{Y: 2}
	for _, v := range m.Vertices {
		if r := geom.Distance(v.Position, centre); math.Abs(r-1) > 0.2 {
			t.Fatalf("vertex at radius %f, want ~1", r)
		}
	}
}

func TestSolidArgumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"union needs two", `(union (solid-sphere))`, "at least 2"},
		{"defsolid needs a solid", `(defsolid "x" (cube))`, "expected solid"},
		{"box needs a size", `(solid-box 1)`, "expected vec3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msg := evalErr(t, tt.source); !strings.Contains(msg, tt.want) {
				t.Errorf("message = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestEmptySourceStillWorks(t *testing.T) {
	s, evalErrs, err := NewEngine().Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil || s.MeshCount() != 0 {
		t.Error("expected empty scene")
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	res := evalOK(t, `
(def n (+ 1 2))
(defmesh "c" (cube :size (* n 2)))
`)
	m := mustMesh(t, res.Scene, "c")
	var maxX float64
	for _, v := range m.Vertices {
		maxX = math.Max(maxX, v.Position.X)
	}
	if maxX != 3 {
		t.Errorf("half size = %v, want 3", maxX)
	}
}
