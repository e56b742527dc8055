package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidFace is matched by every *InvalidFaceError.
var ErrInvalidFace = errors.New("mesh: invalid face")

// InvalidFaceError reports a face that cannot be constructed. It signals a
// caller bug, typically a builder emitting a malformed loop.
type InvalidFaceError struct {
	VertexCount int
	UVCount     int
	Reason      string
}

func (e *InvalidFaceError) Error() string {
	return fmt.Sprintf("mesh: invalid face (%d vertices, %d uvs): %s", e.VertexCount, e.UVCount, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidFace) succeed.
func (e *InvalidFaceError) Is(target error) bool {
	return target == ErrInvalidFace
}
