package transform

import (
	"errors"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/ops"
)

// Kind names the gesture being performed.
type Kind string

const (
	Move    Kind = "move"
	Rotate  Kind = "rotate"
	Scale   Kind = "scale"
	Extrude Kind = "extrude"
)

var (
	// ErrEmptySelection is returned when a gesture starts with nothing to
	// act on.
	ErrEmptySelection = errors.New("transform: empty selection")
	// ErrGestureDone is returned by calls on a committed or cancelled
	// gesture.
	ErrGestureDone = errors.New("transform: gesture already finished")
)

// Params is the latest input sample of a drag. Only the field matching the
// gesture kind is read.
type Params struct {
	Delta    geom.Vec3 // move
	Angle    float64   // rotate, radians
	Scale    geom.Vec3 // scale, per axis
	Distance float64   // extrude
}

// Gesture is one interactive edit. It keeps the vertices as they were when
// it began; every Update recomputes the preview from that snapshot, so
// repeated samples never accumulate error.
type Gesture struct {
	target   *mesh.Mesh
	kind     Kind
	lock     AxisLock
	faces    []mesh.FaceID // extrude only
	snapshot []mesh.Vertex
	centroid geom.Vec3
	params   Params
	preview  []mesh.Vertex
	done     bool
}

// Begin starts a move, rotate or scale gesture over the given vertices.
// Ids that no longer exist are ignored.
func Begin(m *mesh.Mesh, kind Kind, ids []mesh.VertexID, lock AxisLock) (*Gesture, error) {
	if kind == Extrude {
		return nil, errors.New("transform: extrude gestures start with BeginExtrude")
	}
	g := &Gesture{target: m, kind: kind, lock: lock}
	seen := make(map[mesh.VertexID]bool, len(ids))
	for _, id := range ids {
		if v := m.Vertex(id); v != nil && !seen[id] {
			seen[id] = true
			g.snapshot = append(g.snapshot, *v)
		}
	}
	if len(g.snapshot) == 0 {
		return nil, ErrEmptySelection
	}
	g.centroid = Centroid(g.snapshot)
	g.params = Params{Scale: UniformScale(1)}
	g.preview = append([]mesh.Vertex(nil), g.snapshot...)
	return g, nil
}

// BeginExtrude starts a face extrude. The preview moves the region's
// vertices; Commit builds the new topology.
func BeginExtrude(m *mesh.Mesh, faces []mesh.FaceID) (*Gesture, error) {
	if _, err := ops.PreviewExtrude(m, faces, 0); err != nil {
		return nil, err
	}
	g := &Gesture{target: m, kind: Extrude, lock: AxisNone, faces: faces}
	seen := make(map[mesh.VertexID]bool)
	for _, fid := range faces {
		f := m.Face(fid)
		if f == nil {
			continue
		}
		for _, id := range f.VertexIDs {
			if !seen[id] {
				seen[id] = true
				g.snapshot = append(g.snapshot, *m.Vertex(id))
			}
		}
	}
	g.centroid = Centroid(g.snapshot)
	g.preview = append([]mesh.Vertex(nil), g.snapshot...)
	return g, nil
}

// Kind returns the gesture kind.
func (g *Gesture) Kind() Kind { return g.kind }

// Done reports whether the gesture was committed or cancelled.
func (g *Gesture) Done() bool { return g.done }

// Mesh returns the mesh the gesture edits.
func (g *Gesture) Mesh() *mesh.Mesh { return g.target }

// Centroid returns the snapshot centroid used as the pivot.
func (g *Gesture) Centroid() geom.Vec3 { return g.centroid }

// SetAxisLock changes the lock and recomputes the preview.
func (g *Gesture) SetAxisLock(lock AxisLock) ([]mesh.Vertex, error) {
	if g.done {
		return nil, ErrGestureDone
	}
	g.lock = lock
	return g.Update(g.params)
}

// Update recomputes the preview from the snapshot for the latest sample.
func (g *Gesture) Update(p Params) ([]mesh.Vertex, error) {
	if g.done {
		return nil, ErrGestureDone
	}
	g.params = p
	switch g.kind {
	case Move:
		g.preview = ApplyMoveOperation(g.snapshot, p.Delta, g.lock)
	case Rotate:
		g.preview = ApplyRotateOperation(g.snapshot, g.centroid, p.Angle, g.lock)
	case Scale:
		g.preview = ApplyScaleOperation(g.snapshot, g.centroid, p.Scale, g.lock)
	case Extrude:
		moved, err := ops.PreviewExtrude(g.target, g.faces, p.Distance)
		if err != nil {
			return nil, err
		}
		g.preview = mapPositions(g.snapshot, func(v *mesh.Vertex) {
			v.Position = moved[v.ID]
		})
	}
	return g.Preview(), nil
}

// Preview returns a copy of the current preview vertices.
func (g *Gesture) Preview() []mesh.Vertex {
	return append([]mesh.Vertex(nil), g.preview...)
}

// Cancel drops the preview. The mesh was never modified.
func (g *Gesture) Cancel() {
	g.done = true
	g.preview = nil
}

// Name describes the gesture for undo history.
func (g *Gesture) Name() string { return string(g.kind) }

// Apply folds the preview into m, which must hold the same ids as the
// gesture's mesh (it may be a clone). Apply finishes the gesture.
func (g *Gesture) Apply(m *mesh.Mesh) error {
	if g.done {
		return ErrGestureDone
	}
	if g.kind == Extrude {
		if _, err := ops.ExtrudeFaces(m, g.faces, g.params.Distance); err != nil {
			return err
		}
		g.done = true
		return nil
	}
	for _, p := range g.preview {
		if v := m.Vertex(p.ID); v != nil {
			v.Position = p.Position
		}
	}
	m.RecomputeNormals()
	g.done = true
	return nil
}

// Commit applies the gesture to the mesh it was started on.
func (g *Gesture) Commit() error {
	return g.Apply(g.target)
}
