package history

import (
	"errors"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/ops"
	"github.com/chazu/facet/pkg/primitives"
	"github.com/chazu/facet/pkg/scene"
	"github.com/chazu/facet/pkg/transform"
)

func newCubeScene(t *testing.T) (*scene.Scene, mesh.MeshID) {
	t.Helper()
	s := scene.New()
	m, err := s.AddGeometry("cube", primitives.Cube(2))
	if err != nil {
		t.Fatal(err)
	}
	return s, m.ID
}

func deleteFirstFace() Command {
	return Func{Label: "delete face", Fn: func(m *mesh.Mesh) error {
		return ops.DeleteFaces(m, []mesh.FaceID{m.Faces[0].ID})
	}}
}

func TestExecuteUndoRedo(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 0)

	if err := h.Execute(id, deleteFirstFace()); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(id).FaceCount(); got != 5 {
		t.Fatalf("faces after delete = %d, want 5", got)
	}

	name, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if name != "delete face" {
		t.Errorf("undo name = %q", name)
	}
	if got := s.Get(id).FaceCount(); got != 6 {
		t.Errorf("faces after undo = %d, want 6", got)
	}
	if !h.CanRedo() || h.CanUndo() {
		t.Error("stack flags wrong after undo")
	}

	if _, err := h.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(id).FaceCount(); got != 5 {
		t.Errorf("faces after redo = %d, want 5", got)
	}
	if _, err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("err = %v, want ErrNothingToRedo", err)
	}
}

func TestFailingCommandLeavesSceneUntouched(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 0)
	before := s.Get(id)
	version := s.Version

	err := h.Execute(id, Func{Label: "bad split", Fn: func(m *mesh.Mesh) error {
		_, err := ops.SplitEdgeAt(m, "no-such-edge", 0.5)
		return err
	}})
	if !ops.IsStale(err) {
		t.Fatalf("err = %v, want stale reference", err)
	}
	if s.Get(id) != before || s.Version != version {
		t.Error("scene changed after a failing command")
	}
	if h.Len() != 0 {
		t.Error("failing command was recorded")
	}
}

func TestExecuteDropsRedoTail(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 0)

	h.Execute(id, deleteFirstFace())
	h.Execute(id, deleteFirstFace())
	h.Undo()
	h.Execute(id, Func{Label: "flip", Fn: func(m *mesh.Mesh) error {
		return ops.FlipFaces(m, []mesh.FaceID{m.Faces[0].ID})
	}})

	if h.CanRedo() {
		t.Error("redo tail should be dropped")
	}
	want := []string{"delete face", "flip"}
	got := h.Names()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestLimit(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 2)
	for i := 0; i < 4; i++ {
		if err := h.Execute(id, deleteFirstFace()); err != nil {
			t.Fatal(err)
		}
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2", h.Len())
	}
	h.Undo()
	h.Undo()
	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}
	if got := s.Get(id).FaceCount(); got != 4 {
		t.Errorf("faces = %d, want 4 after undoing the two kept steps", got)
	}
}

func TestGestureAsCommand(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 0)
	m := s.Get(id)
	v := m.Vertices[0]

	g, err := transform.Begin(m, transform.Move, []mesh.VertexID{v.ID}, transform.AxisX)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Update(transform.Params{Delta: geom.Vec3{X: 0.5, Y: 3}}); err != nil {
		t.Fatal(err)
	}
	if err := h.Execute(id, g); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(id).Position(v.ID)
	if want := v.Position.Add(geom.Vec3{X: 0.5}); geom.Distance(got, want) > 1e-9 {
		t.Errorf("position = %v, want %v", got, want)
	}

	h.Undo()
	got, _ = s.Get(id).Position(v.ID)
	if got != v.Position {
		t.Errorf("undo did not restore position: %v", got)
	}
}

func TestExecuteWhileGestureActive(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 0)
	v := s.Get(id).Vertices[0]

	g, err := s.BeginGesture(id, transform.Move, transform.AxisNone, v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Update(transform.Params{Delta: geom.Vec3{X: 5}}); err != nil {
		t.Fatal(err)
	}

	noop := Func{Label: "noop", Fn: func(*mesh.Mesh) error { return nil }}
	if err := h.Execute(id, noop); !errors.Is(err, scene.ErrGestureActive) {
		t.Fatalf("execute during gesture: err = %v, want ErrGestureActive", err)
	}
	if h.Len() != 0 {
		t.Errorf("refused command was recorded")
	}

	// The gesture itself is the one command that may land.
	if err := h.Execute(id, g); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(id).Position(v.ID)
	if want := v.Position.Add(geom.Vec3{X: 5}); geom.Distance(got, want) > 1e-9 {
		t.Errorf("position = %v, want %v", got, want)
	}
	if s.ActiveGesture() != nil {
		t.Error("gesture still active after execute")
	}
	if err := h.Execute(id, noop); err != nil {
		t.Errorf("execute after gesture: %v", err)
	}
}

func TestUndoWhileGestureActive(t *testing.T) {
	s, id := newCubeScene(t)
	h := New(s, 0)
	if err := h.Execute(id, deleteFirstFace()); err != nil {
		t.Fatal(err)
	}
	g, err := s.BeginGesture(id, transform.Move, transform.AxisNone, s.Get(id).Vertices[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Undo(); !errors.Is(err, scene.ErrGestureActive) {
		t.Fatalf("undo during gesture: err = %v, want ErrGestureActive", err)
	}
	if !h.CanUndo() {
		t.Error("refused undo moved the cursor")
	}
	g.Cancel()
	if _, err := h.Undo(); err != nil {
		t.Errorf("undo after cancel: %v", err)
	}
}

func TestLockedMeshRejected(t *testing.T) {
	s, id := newCubeScene(t)
	s.Get(id).Locked = true
	err := New(s, 0).Execute(id, deleteFirstFace())
	if !errors.Is(err, scene.ErrMeshLocked) {
		t.Errorf("err = %v, want ErrMeshLocked", err)
	}
}
