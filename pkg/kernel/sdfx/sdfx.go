// Package sdfx implements kernel.Kernel with the github.com/deadsy/sdfx
// signed-distance CAD library. Solids are rendered to triangles with
// uniform marching cubes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
)

var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest axis.
const DefaultMeshCells = 200

type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() (min, max geom.Vec3) {
	bb := s.s.BoundingBox()
	return bb.Min, bb.Max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel rendering with the given marching cubes resolution.
// Zero or less selects DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// must panics on sdfx constructor errors, which only occur for
// non-positive dimensions.
func must(s sdf.SDF3, err error) sdf.SDF3 {
	if err != nil {
		panic(fmt.Sprintf("sdfx: %v", err))
	}
	return s
}

// Box creates a box centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	return wrap(must(sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)))
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	return wrap(must(sdf.Sphere3D(radius)))
}

// Cylinder creates a cylinder along +Y centered on the origin. sdfx builds
// cylinders along Z, so the solid is turned a quarter about X.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s := must(sdf.Cylinder3D(height, radius, 0))
	return wrap(sdf.Transform3D(s, sdf.RotateX(-math.Pi/2)))
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns a minus b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by offset.
func (k *SdfxKernel) Translate(s kernel.Solid, offset geom.Vec3) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(offset)))
}

// Rotate rotates a solid by Euler angles in degrees.
func (k *SdfxKernel) Rotate(s kernel.Solid, euler geom.Vec3) kernel.Solid {
	r := euler.MulScalar(math.Pi / 180)
	m := sdf.RotateZ(r.Z).Mul(sdf.RotateY(r.Y)).Mul(sdf.RotateX(r.X))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle soup with flat normals. Use
// tessellate.Weld to turn the result into an editable mesh.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	triangles := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: solid rendered no triangles at %d cells", k.cells)
	}

	out := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		a := out.AppendVertex(tri[0], n)
		b := out.AppendVertex(tri[1], n)
		c := out.AppendVertex(tri[2], n)
		out.AppendTriangle(a, b, c)
	}
	return out, nil
}
