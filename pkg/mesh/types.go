package mesh

import (
	"github.com/google/uuid"

	"github.com/chazu/facet/pkg/geom"
)

// VertexID identifies a vertex. IDs stay stable across mutation.
type VertexID string

// EdgeID identifies an edge. It is derived from the canonical vertex pair.
type EdgeID string

// FaceID identifies a face.
type FaceID string

// MeshID identifies a mesh within a scene.
type MeshID string

// NewVertexID allocates a fresh globally unique vertex id.
func NewVertexID() VertexID { return VertexID(uuid.NewString()) }

// NewFaceID allocates a fresh globally unique face id.
func NewFaceID() FaceID { return FaceID(uuid.NewString()) }

// NewMeshID allocates a fresh globally unique mesh id.
func NewMeshID() MeshID { return MeshID(uuid.NewString()) }

// Shading selects which normals the renderer uses.
type Shading string

const (
	ShadingFlat   Shading = "flat"   // per-face normals
	ShadingSmooth Shading = "smooth" // angle-weighted per-vertex normals
)

// Vertex is a point of the mesh.
type Vertex struct {
	ID       VertexID  `json:"id"`
	Position geom.Vec3 `json:"position"`
	Normal   geom.Vec3 `json:"normal"`
	UV       geom.Vec2 `json:"uv"`
	Selected bool      `json:"selected"`
}

// Edge connects two vertices. VertexIDs is stored sorted; FaceIDs lists
// every face that has the pair as consecutive loop vertices.
type Edge struct {
	ID        EdgeID      `json:"id"`
	VertexIDs [2]VertexID `json:"vertexIds"`
	FaceIDs   []FaceID    `json:"faceIds"`
	Selected  bool        `json:"selected"`
	Seam      bool        `json:"seam"`
}

// IsBoundary reports whether the edge borders exactly one face.
func (e *Edge) IsBoundary() bool { return len(e.FaceIDs) == 1 }

// Other returns the endpoint opposite v, or "" if v is not an endpoint.
func (e *Edge) Other(v VertexID) VertexID {
	switch v {
	case e.VertexIDs[0]:
		return e.VertexIDs[1]
	case e.VertexIDs[1]:
		return e.VertexIDs[0]
	}
	return ""
}

// Face is an n-gon given by an ordered loop of at least three vertex ids.
// Winding follows the right-hand rule: counter-clockwise seen from the side
// the normal points to.
type Face struct {
	ID         FaceID      `json:"id"`
	VertexIDs  []VertexID  `json:"vertexIds"`
	Normal     geom.Vec3   `json:"normal"`
	MaterialID string      `json:"materialId,omitempty"`
	Selected   bool        `json:"selected"`
	UVs        []geom.Vec2 `json:"uvs,omitempty"` // per corner, aligned with VertexIDs
}

// Transform is the object-level placement of a mesh. Rotation holds Euler
// angles in degrees.
type Transform struct {
	Position geom.Vec3 `json:"position"`
	Rotation geom.Vec3 `json:"rotation"`
	Scale    geom.Vec3 `json:"scale"`
}

// IdentityTransform returns a transform with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: geom.Vec3{X: 1, Y: 1, Z: 1}}
}

// Geometry is the output of a primitive builder: vertices and faces with
// fresh ids and no edges.
type Geometry struct {
	Vertices []Vertex
	Faces    []Face
}
