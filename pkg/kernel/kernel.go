// Package kernel defines the solid-kernel interface and the triangle mesh
// shared by the renderer and the kernel backends. Booleans and other solid
// operations live behind Kernel; the editable n-gon mesh never implements
// them itself.
package kernel

import "github.com/chazu/facet/pkg/geom"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max geom.Vec3)
}

// Kernel builds and combines solids. Primitives are centered on the origin
// with +Y up, matching the mesh primitive builders.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, offset geom.Vec3) Solid
	Rotate(s Solid, euler geom.Vec3) Solid // degrees, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
