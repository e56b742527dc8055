// Package ops implements the topological edit operators. Every operator
// mutates a mesh in place and finishes with mesh.Rebuild, so edges and
// normals are consistent afterwards. When an operator returns an error the
// mesh is unchanged.
//
// Ids that no longer name anything produce an *EditError of kind
// StaleReference; see IsStale.
package ops
