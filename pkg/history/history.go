// Package history records edits as commands and provides snapshot-based
// undo and redo over a scene.
//
// Execute runs a command against a clone of the target mesh and swaps the
// clone in only when the command succeeds, so a failing command never
// leaves a half-edited mesh behind.
package history

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/facet/internal/logger"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/scene"
)

// DefaultLimit is the number of undo steps kept when none is configured.
const DefaultLimit = 100

var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// Command is one undoable edit of a single mesh.
type Command interface {
	Name() string
	Apply(m *mesh.Mesh) error
}

// Func adapts a function to Command.
type Func struct {
	Label string
	Fn    func(m *mesh.Mesh) error
}

func (f Func) Name() string              { return f.Label }
func (f Func) Apply(m *mesh.Mesh) error { return f.Fn(m) }

// Entry is one recorded step: the mesh before and after the command.
type Entry struct {
	Name   string
	MeshID mesh.MeshID
	before *mesh.Mesh
	after  *mesh.Mesh
}

// History is a linear undo stack with a redo tail.
type History struct {
	scene   *scene.Scene
	limit   int
	entries []Entry
	cursor  int // entries[:cursor] are applied
}

// New returns a history over s keeping at most limit steps. A limit of zero
// or less selects DefaultLimit.
func New(s *scene.Scene, limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{scene: s, limit: limit}
}

// Execute applies cmd to the mesh with the given id and records it. On
// error the scene is unchanged and nothing is recorded.
func (h *History) Execute(id mesh.MeshID, cmd Command) error {
	cur := h.scene.Get(id)
	if cur == nil {
		return fmt.Errorf("%s: %w: %s", cmd.Name(), scene.ErrMeshNotFound, id)
	}
	if cur.Locked {
		return fmt.Errorf("%s: %w: %s", cmd.Name(), scene.ErrMeshLocked, cur.Name)
	}
	work := cur.Clone()
	if err := cmd.Apply(work); err != nil {
		logger.Debug("command failed",
			zap.String("command", cmd.Name()),
			zap.String("mesh", cur.Name),
			zap.Error(err),
		)
		return err
	}
	if err := h.scene.Replace(work); err != nil {
		return err
	}

	h.entries = append(h.entries[:h.cursor], Entry{
		Name:   cmd.Name(),
		MeshID: id,
		before: cur.Clone(),
		after:  work.Clone(),
	})
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries)
	logger.Debug("command applied",
		zap.String("command", cmd.Name()),
		zap.String("mesh", work.Name),
		zap.Int("depth", h.cursor),
	)
	return nil
}

// Undo restores the mesh touched by the latest applied command.
func (h *History) Undo() (string, error) {
	if h.cursor == 0 {
		return "", ErrNothingToUndo
	}
	e := h.entries[h.cursor-1]
	if err := h.scene.Replace(e.before.Clone()); err != nil {
		return "", fmt.Errorf("undo %s: %w", e.Name, err)
	}
	h.cursor--
	return e.Name, nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo() (string, error) {
	if h.cursor == len(h.entries) {
		return "", ErrNothingToRedo
	}
	e := h.entries[h.cursor]
	if err := h.scene.Replace(e.after.Clone()); err != nil {
		return "", fmt.Errorf("redo %s: %w", e.Name, err)
	}
	h.cursor++
	return e.Name, nil
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries) }

// Len returns the number of recorded steps, including undone ones.
func (h *History) Len() int { return len(h.entries) }

// Names returns the applied command names, oldest first.
func (h *History) Names() []string {
	out := make([]string, h.cursor)
	for i := range out {
		out[i] = h.entries[i].Name
	}
	return out
}

// Clear drops every recorded step.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = 0
}
