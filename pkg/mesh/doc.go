// Package mesh defines the editable polygon mesh: vertices, derived edges
// and n-gon faces, plus the invariants that keep them consistent.
//
// Faces are the source of truth. Edges are always rebuilt from the face
// loops (see BuildEdgesFromFaces) and never patched incrementally.
package mesh
