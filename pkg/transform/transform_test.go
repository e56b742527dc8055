package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/primitives"
)

func near(a, b geom.Vec3) bool {
	return geom.Distance(a, b) < 1e-9
}

func verts(ps ...geom.Vec3) []mesh.Vertex {
	out := make([]mesh.Vertex, len(ps))
	for i, p := range ps {
		out[i] = mesh.CreateVertex(p)
	}
	return out
}

func TestParseAxisLock(t *testing.T) {
	tests := []struct {
		in      string
		want    AxisLock
		wantErr bool
	}{
		{"", AxisNone, false},
		{"none", AxisNone, false},
		{"x", AxisX, false},
		{"z", AxisZ, false},
		{"w", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAxisLock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyMoveOperation(t *testing.T) {
	in := verts(geom.Vec3{X: 1, Y: 2, Z: 3})
	delta := geom.Vec3{X: 1, Y: 1, Z: 1}

	tests := []struct {
		lock AxisLock
		want geom.Vec3
	}{
		{AxisNone, geom.Vec3{X: 2, Y: 3, Z: 4}},
		{AxisX, geom.Vec3{X: 2, Y: 2, Z: 3}},
		{AxisY, geom.Vec3{X: 1, Y: 3, Z: 3}},
		{AxisZ, geom.Vec3{X: 1, Y: 2, Z: 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.lock), func(t *testing.T) {
			out := ApplyMoveOperation(in, delta, tt.lock)
			if !near(out[0].Position, tt.want) {
				t.Errorf("got %v, want %v", out[0].Position, tt.want)
			}
			if in[0].Position != (geom.Vec3{X: 1, Y: 2, Z: 3}) {
				t.Error("input slice was modified")
			}
			if out[0].ID != in[0].ID {
				t.Error("id changed")
			}
		})
	}
}

func TestApplyScaleOperation(t *testing.T) {
	in := verts(geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{X: -1, Y: -1, Z: -1})
	c := Centroid(in)
	if !near(c, geom.Vec3{}) {
		t.Fatalf("centroid = %v", c)
	}

	out := ApplyScaleOperation(in, c, UniformScale(2), AxisNone)
	if !near(out[0].Position, geom.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("uniform: got %v", out[0].Position)
	}

	out = ApplyScaleOperation(in, c, UniformScale(2), AxisY)
	if !near(out[0].Position, geom.Vec3{X: 1, Y: 2, Z: 1}) {
		t.Errorf("locked Y: got %v", out[0].Position)
	}
	if !near(out[1].Position, geom.Vec3{X: -1, Y: -2, Z: -1}) {
		t.Errorf("locked Y: got %v", out[1].Position)
	}
}

func TestApplyRotateOperation(t *testing.T) {
	in := verts(geom.Vec3{X: 2, Y: 1}, geom.Vec3{X: 0, Y: 1})
	c := Centroid(in) // (1,1,0)

	out := ApplyRotateOperation(in, c, math.Pi/2, AxisNone)
	if !near(out[0].Position, geom.Vec3{X: 1, Y: 2}) {
		t.Errorf("got %v, want (1,2,0)", out[0].Position)
	}
	if !near(out[1].Position, geom.Vec3{X: 1, Y: 0}) {
		t.Errorf("got %v, want (1,0,0)", out[1].Position)
	}
	// Normal +Y rotated a quarter turn about Z points to -X.
	if !near(out[0].Normal, geom.Vec3{X: -1}) {
		t.Errorf("normal = %v, want (-1,0,0)", out[0].Normal)
	}

	out = ApplyRotateOperation(in, c, math.Pi, AxisY)
	if !near(out[0].Position, geom.Vec3{X: 0, Y: 1}) {
		t.Errorf("about Y: got %v, want (0,1,0)", out[0].Position)
	}
}

func TestApplyExtrudeOperation(t *testing.T) {
	in := verts(geom.Vec3{}, geom.Vec3{X: 1})
	out := ApplyExtrudeOperation(in, geom.Vec3{Y: 5}, 0.5)
	for i, v := range out {
		want := in[i].Position.Add(geom.Vec3{Y: 0.5})
		if !near(v.Position, want) {
			t.Errorf("vertex %d: got %v, want %v", i, v.Position, want)
		}
	}
}

func TestMouseToWorldDelta(t *testing.T) {
	cam := Camera{Right: geom.Vec3{X: 1}, Up: geom.Vec3{Y: 1}, Distance: 10}
	got := MouseToWorldDelta(5, 2, cam, 0.01)
	want := geom.Vec3{X: 0.5, Y: -0.2}
	if !near(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	cam.Distance = 20
	if got := MouseToWorldDelta(5, 0, cam, 0.01); !near(got, geom.Vec3{X: 1}) {
		t.Errorf("zoomed out: got %v, want (1,0,0)", got)
	}
}

func topFace(m *mesh.Mesh) *mesh.Face {
	for i := range m.Faces {
		if m.Faces[i].Normal.Y > 0.99 {
			return &m.Faces[i]
		}
	}
	return nil
}

func TestGestureMovePreviewIsFromSnapshot(t *testing.T) {
	m := mesh.FromGeometry("cube", primitives.Cube(2))
	top := topFace(m)
	ids := append([]mesh.VertexID(nil), top.VertexIDs...)
	before := m.Positions(ids)

	g, err := Begin(m, Move, ids, AxisY)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := g.Update(Params{Delta: geom.Vec3{X: 7, Y: 1}}); err != nil {
			t.Fatal(err)
		}
	}
	for _, v := range g.Preview() {
		if math.Abs(v.Position.Y-2) > 1e-9 {
			t.Errorf("preview y = %v, want 2", v.Position.Y)
		}
	}
	if got := m.Positions(ids); !near(got[0], before[0]) {
		t.Error("mesh moved before commit")
	}

	if err := g.Commit(); err != nil {
		t.Fatal(err)
	}
	for _, p := range m.Positions(ids) {
		if math.Abs(p.Y-2) > 1e-9 || math.Abs(math.Abs(p.X)-1) > 1e-9 {
			t.Errorf("committed position %v", p)
		}
	}
	if errs := mesh.Validate(m); len(errs) > 0 {
		t.Errorf("invalid after commit: %v", errs)
	}
	if _, err := g.Update(Params{}); !errors.Is(err, ErrGestureDone) {
		t.Errorf("update after commit: err = %v", err)
	}
}

func TestGestureCancelLeavesMesh(t *testing.T) {
	m := mesh.FromGeometry("cube", primitives.Cube(2))
	orig := m.Clone()
	ids := make([]mesh.VertexID, len(m.Vertices))
	for i, v := range m.Vertices {
		ids[i] = v.ID
	}

	g, err := Begin(m, Scale, ids, AxisNone)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Update(Params{Scale: UniformScale(3)}); err != nil {
		t.Fatal(err)
	}
	g.Cancel()
	if !g.Done() {
		t.Error("cancelled gesture not done")
	}
	for i := range m.Vertices {
		if m.Vertices[i].Position != orig.Vertices[i].Position {
			t.Fatalf("vertex %d moved", i)
		}
	}
	if err := g.Commit(); !errors.Is(err, ErrGestureDone) {
		t.Errorf("commit after cancel: err = %v", err)
	}
}

func TestGestureSetAxisLock(t *testing.T) {
	m := mesh.FromGeometry("cube", primitives.Cube(2))
	id := m.Vertices[0].ID
	start, _ := m.Position(id)

	g, err := Begin(m, Move, []mesh.VertexID{id}, AxisNone)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Update(Params{Delta: geom.Vec3{X: 1, Y: 1, Z: 1}}); err != nil {
		t.Fatal(err)
	}
	pv, err := g.SetAxisLock(AxisZ)
	if err != nil {
		t.Fatal(err)
	}
	if !near(pv[0].Position, start.Add(geom.Vec3{Z: 1})) {
		t.Errorf("got %v", pv[0].Position)
	}
}

func TestBeginRejectsEmptySelection(t *testing.T) {
	m := mesh.FromGeometry("cube", primitives.Cube(2))
	_, err := Begin(m, Rotate, []mesh.VertexID{"gone"}, AxisNone)
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("err = %v, want ErrEmptySelection", err)
	}
}

func TestExtrudeGesture(t *testing.T) {
	m := mesh.FromGeometry("cube", primitives.Cube(2))
	top := topFace(m)

	g, err := BeginExtrude(m, []mesh.FaceID{top.ID})
	if err != nil {
		t.Fatal(err)
	}
	pv, err := g.Update(Params{Distance: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(pv) != 4 {
		t.Fatalf("preview has %d vertices, want 4", len(pv))
	}
	for _, v := range pv {
		if math.Abs(v.Position.Y-2) > 1e-9 {
			t.Errorf("preview y = %v, want 2", v.Position.Y)
		}
	}
	if m.FaceCount() != 6 {
		t.Fatal("preview changed topology")
	}
	if err := g.Commit(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 12 || m.FaceCount() != 10 {
		t.Errorf("got %d vertices %d faces, want 12 and 10", m.VertexCount(), m.FaceCount())
	}
}
