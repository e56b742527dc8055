// Package scene owns the meshes being edited. A Scene keeps insertion order,
// a name index and a version counter bumped on every change, and allows at
// most one active transform gesture at a time.
package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/transform"
)

var (
	// ErrGestureActive is returned when a gesture starts while another is
	// still in progress.
	ErrGestureActive = errors.New("scene: a gesture is already active")
	// ErrMeshNotFound is returned for ids the scene does not hold.
	ErrMeshNotFound = errors.New("scene: mesh not found")
	// ErrMeshLocked is returned when editing a locked mesh.
	ErrMeshLocked = errors.New("scene: mesh is locked")
)

// Scene is the top-level collection of meshes.
type Scene struct {
	Meshes    map[mesh.MeshID]*mesh.Mesh `json:"-"`
	Order     []mesh.MeshID              `json:"order"`
	NameIndex map[string]mesh.MeshID     `json:"name_index"`
	Version   uint64                     `json:"version"`

	gesture *transform.Gesture
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		Meshes:    make(map[mesh.MeshID]*mesh.Mesh),
		NameIndex: make(map[string]mesh.MeshID),
	}
}

// Add inserts m. Names must be unique when non-empty.
func (s *Scene) Add(m *mesh.Mesh) error {
	if _, exists := s.Meshes[m.ID]; exists {
		return fmt.Errorf("scene: mesh %s already added", m.ID)
	}
	if m.Name != "" {
		if _, taken := s.NameIndex[m.Name]; taken {
			return fmt.Errorf("scene: mesh name %q already in use", m.Name)
		}
		s.NameIndex[m.Name] = m.ID
	}
	s.Meshes[m.ID] = m
	s.Order = append(s.Order, m.ID)
	s.Version++
	return nil
}

// AddGeometry wraps builder output into a new mesh and adds it.
func (s *Scene) AddGeometry(name string, g mesh.Geometry) (*mesh.Mesh, error) {
	m := mesh.FromGeometry(name, g)
	if err := s.Add(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the mesh with the given id, or nil.
func (s *Scene) Get(id mesh.MeshID) *mesh.Mesh {
	return s.Meshes[id]
}

// Lookup returns the mesh with the given name, or nil.
func (s *Scene) Lookup(name string) *mesh.Mesh {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Meshes[id]
}

// MustLookup returns the mesh with the given name, or panics.
func (s *Scene) MustLookup(name string) *mesh.Mesh {
	m := s.Lookup(name)
	if m == nil {
		panic(fmt.Sprintf("scene: no mesh named %q", name))
	}
	return m
}

// Remove deletes the mesh with the given id.
func (s *Scene) Remove(id mesh.MeshID) error {
	m, ok := s.Meshes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMeshNotFound, id)
	}
	if s.gesture != nil && !s.gesture.Done() && s.gesture.Mesh() == m {
		s.gesture.Cancel()
	}
	delete(s.Meshes, id)
	if m.Name != "" && s.NameIndex[m.Name] == id {
		delete(s.NameIndex, m.Name)
	}
	for i, oid := range s.Order {
		if oid == id {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
	s.Version++
	return nil
}

// Replace swaps in next for the mesh with the same id. The name index
// follows a rename. A mesh with an unfinished gesture cannot be replaced;
// the gesture would otherwise commit into the detached mesh.
func (s *Scene) Replace(next *mesh.Mesh) error {
	prev, ok := s.Meshes[next.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMeshNotFound, next.ID)
	}
	if s.gesture != nil && !s.gesture.Done() && s.gesture.Mesh() == prev {
		return fmt.Errorf("%w on %s", ErrGestureActive, prev.Name)
	}
	if next.Name != prev.Name {
		if id, taken := s.NameIndex[next.Name]; taken && id != next.ID {
			return fmt.Errorf("scene: mesh name %q already in use", next.Name)
		}
		delete(s.NameIndex, prev.Name)
		if next.Name != "" {
			s.NameIndex[next.Name] = next.ID
		}
	}
	s.Meshes[next.ID] = next
	s.Version++
	return nil
}

// Touch records an in-place edit of a mesh the scene holds.
func (s *Scene) Touch() {
	s.Version++
}

// List returns the meshes in insertion order.
func (s *Scene) List() []*mesh.Mesh {
	out := make([]*mesh.Mesh, 0, len(s.Order))
	for _, id := range s.Order {
		if m := s.Meshes[id]; m != nil {
			out = append(out, m)
		}
	}
	return out
}

// MeshCount returns the number of meshes.
func (s *Scene) MeshCount() int {
	return len(s.Meshes)
}

// editable returns the mesh for id if it can be edited.
func (s *Scene) editable(id mesh.MeshID) (*mesh.Mesh, error) {
	m, ok := s.Meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMeshNotFound, id)
	}
	if m.Locked {
		return nil, fmt.Errorf("%w: %s", ErrMeshLocked, m.Name)
	}
	return m, nil
}

func (s *Scene) checkIdle() error {
	if s.gesture != nil && !s.gesture.Done() {
		return ErrGestureActive
	}
	return nil
}

// BeginGesture starts a move, rotate or scale gesture on the selected
// vertices of a mesh (or on ids when given).
func (s *Scene) BeginGesture(id mesh.MeshID, kind transform.Kind, lock transform.AxisLock, ids ...mesh.VertexID) (*transform.Gesture, error) {
	if err := s.checkIdle(); err != nil {
		return nil, err
	}
	m, err := s.editable(id)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids = m.SelectionVertexIDs()
	}
	g, err := transform.Begin(m, kind, ids, lock)
	if err != nil {
		return nil, err
	}
	s.gesture = g
	return g, nil
}

// BeginExtrude starts an extrude gesture on the selected faces of a mesh.
func (s *Scene) BeginExtrude(id mesh.MeshID) (*transform.Gesture, error) {
	if err := s.checkIdle(); err != nil {
		return nil, err
	}
	m, err := s.editable(id)
	if err != nil {
		return nil, err
	}
	g, err := transform.BeginExtrude(m, m.SelectedFaceIDs())
	if err != nil {
		return nil, err
	}
	s.gesture = g
	return g, nil
}

// ActiveGesture returns the gesture in progress, or nil.
func (s *Scene) ActiveGesture() *transform.Gesture {
	if s.gesture == nil || s.gesture.Done() {
		return nil
	}
	return s.gesture
}
