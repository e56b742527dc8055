package scene

import (
	"fmt"

	"github.com/chazu/facet/pkg/mesh"
)

// Severity indicates whether a finding blocks saving or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // scene is inconsistent
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes one finding. MeshID is empty for scene-level
// findings.
type ValidationError struct {
	MeshID   mesh.MeshID
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.MeshID == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] mesh %s: %s", e.Severity, short(e.MeshID), e.Message)
}

func short(id mesh.MeshID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs every check and returns the findings. It is read-only.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateIndex(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateMeshes(s)...)
	return errs
}

// ValidateAll runs Validate and splits the findings by severity.
func ValidateAll(s *Scene) ValidationResult {
	var r ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, e)
		} else {
			r.Errors = append(r.Errors, e)
		}
	}
	return r
}

// validateIndex checks that Order and Meshes hold the same ids and that
// each mesh is stored under its own id.
func validateIndex(s *Scene) []ValidationError {
	var errs []ValidationError

	inOrder := make(map[mesh.MeshID]bool, len(s.Order))
	for _, id := range s.Order {
		if inOrder[id] {
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  "listed twice in scene order",
				Severity: SeverityError,
			})
		}
		inOrder[id] = true
		if _, ok := s.Meshes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("order references missing mesh %s", short(id)),
				Severity: SeverityError,
			})
		}
	}
	for id, m := range s.Meshes {
		if !inOrder[id] {
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  "mesh missing from scene order",
				Severity: SeverityError,
			})
		}
		if m.ID != id {
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  fmt.Sprintf("stored under %s but has id %s", short(id), short(m.ID)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that the name index is injective and points at
// meshes carrying that name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	for name, id := range s.NameIndex {
		m, ok := s.Meshes[id]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references missing mesh %s", name, short(id)),
				Severity: SeverityError,
			})
		case m.Name != name:
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  fmt.Sprintf("name index entry %q but mesh is named %q", name, m.Name),
				Severity: SeverityError,
			})
		}
	}

	byName := make(map[string]int)
	for _, m := range s.Meshes {
		if m.Name != "" {
			byName[m.Name]++
		}
	}
	for name, n := range byName {
		if n > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d meshes", name, n),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateMeshes runs the mesh invariants on every mesh and warns about
// empty meshes and loose vertices.
func validateMeshes(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.Order {
		m := s.Meshes[id]
		if m == nil {
			continue
		}
		for _, e := range mesh.Validate(m) {
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  e.Error(),
				Severity: SeverityError,
			})
		}
		if m.FaceCount() == 0 {
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  "mesh has no faces",
				Severity: SeverityWarning,
			})
			continue
		}
		if loose := m.VertexCount() - len(m.ReferencedVertices()); loose > 0 {
			errs = append(errs, ValidationError{
				MeshID:   id,
				Message:  fmt.Sprintf("%d loose vertices", loose),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
