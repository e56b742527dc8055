package ops

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/facet/internal/logger"
)

// ErrorKind classifies an EditError.
type ErrorKind int

const (
	// StaleReference means an id no longer names anything in the mesh.
	// Interactive callers treat it as a no-op.
	StaleReference ErrorKind = iota + 1
	// DegenerateFace means the request would produce a face with fewer
	// than three distinct corners or zero area.
	DegenerateFace
	// InvalidTopology means the local topology does not support the
	// operation, such as beveling a boundary edge.
	InvalidTopology
)

func (k ErrorKind) String() string {
	switch k {
	case StaleReference:
		return "stale reference"
	case DegenerateFace:
		return "degenerate face"
	case InvalidTopology:
		return "invalid topology"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against any *EditError of that kind.
var (
	ErrStaleReference  = errors.New("stale reference")
	ErrDegenerateFace  = errors.New("degenerate face")
	ErrInvalidTopology = errors.New("invalid topology")
)

// EditError reports why an operator refused to run.
type EditError struct {
	Op     string
	Kind   ErrorKind
	ID     string
	Reason string
}

func (e *EditError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.ID != "" {
		msg += fmt.Sprintf(" %q", e.ID)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches the sentinel for the error's kind.
func (e *EditError) Is(target error) bool {
	switch target {
	case ErrStaleReference:
		return e.Kind == StaleReference
	case ErrDegenerateFace:
		return e.Kind == DegenerateFace
	case ErrInvalidTopology:
		return e.Kind == InvalidTopology
	}
	return false
}

// IsStale reports whether err is a stale-reference no-op.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleReference)
}

func stale[T ~string](op string, id T) error {
	logger.Debug("ignoring stale reference", zap.String("op", op), zap.String("id", string(id)))
	return &EditError{Op: op, Kind: StaleReference, ID: string(id)}
}

func degenerate(op, id, reason string) error {
	return &EditError{Op: op, Kind: DegenerateFace, ID: id, Reason: reason}
}

func invalid(op, id, reason string) error {
	return &EditError{Op: op, Kind: InvalidTopology, ID: id, Reason: reason}
}
