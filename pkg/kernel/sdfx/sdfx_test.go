package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
)

const testCells = 40

func TestBox(t *testing.T) {
	k := New(testCells)
	mesh, err := k.ToMesh(k.Box(2, 1, 0.5))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() || mesh.TriangleCount() == 0 {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3", len(mesh.Indices))
	}
}

func TestBoundingBoxIsCentered(t *testing.T) {
	k := New(testCells)
	min, max := k.Box(100, 50, 25).BoundingBox()

	const tol = 0.01
	wantMin := geom.Vec3{X: -50, Y: -25, Z: -12.5}
	wantMax := geom.Vec3{X: 50, Y: 25, Z: 12.5}
	if geom.Distance(min, wantMin) > tol || geom.Distance(max, wantMax) > tol {
		t.Errorf("bounds = %v %v, want %v %v", min, max, wantMin, wantMax)
	}
}

func TestCylinderIsUpright(t *testing.T) {
	k := New(testCells)
	min, max := k.Cylinder(10, 1).BoundingBox()
	if h := max.Y - min.Y; math.Abs(h-10) > 0.01 {
		t.Errorf("Y extent = %f, want 10", h)
	}
	if w := max.X - min.X; math.Abs(w-2) > 0.01 {
		t.Errorf("X extent = %f, want 2", w)
	}
}

func TestDifferenceAddsTriangles(t *testing.T) {
	k := New(testCells)
	box := k.Box(10, 10, 10)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatal(err)
	}
	diff := k.Difference(box, k.Cylinder(12, 2))
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatal(err)
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference has %d triangles, box %d", diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(testCells)
	a := k.Box(10, 10, 10)
	b := k.Translate(k.Box(10, 10, 10), geom.Vec3{X: 5})

	for name, s := range map[string]kernel.Solid{
		"union":        k.Union(a, b),
		"intersection": k.Intersection(a, b),
	} {
		t.Run(name, func(t *testing.T) {
			m, err := k.ToMesh(s)
			if err != nil {
				t.Fatal(err)
			}
			if m.IsEmpty() {
				t.Fatal("mesh is empty")
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	min, max := k.Translate(k.Box(10, 10, 10), geom.Vec3{X: 100, Y: 200, Z: 300}).BoundingBox()

	const tol = 0.5
	if geom.Distance(min, geom.Vec3{X: 95, Y: 195, Z: 295}) > tol {
		t.Errorf("min = %v", min)
	}
	if geom.Distance(max, geom.Vec3{X: 105, Y: 205, Z: 305}) > tol {
		t.Errorf("max = %v", max)
	}
}

func TestRotate(t *testing.T) {
	k := New(testCells)
	// A long box along X turned 90 degrees about Z extends along Y.
	min, max := k.Rotate(k.Box(100, 10, 10), geom.Vec3{Z: 90}).BoundingBox()

	const tol = 1.0
	if x := max.X - min.X; math.Abs(x-10) > tol {
		t.Errorf("X extent = %f, want ~10", x)
	}
	if y := max.Y - min.Y; math.Abs(y-100) > tol {
		t.Errorf("Y extent = %f, want ~100", y)
	}
}
