package primitives

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// Box builds an axis-aligned box centred at the origin: 8 shared vertices
// and 6 quads textured with the 3x2 cube atlas.
func Box(width, height, depth float64) mesh.Geometry {
	x, y, z := width/2, height/2, depth/2
	var b builder
	b.hexahedron([8]geom.Vec3{
		{X: -x, Y: -y, Z: -z}, {X: x, Y: -y, Z: -z}, {X: x, Y: y, Z: -z}, {X: -x, Y: y, Z: -z},
		{X: -x, Y: -y, Z: z}, {X: x, Y: -y, Z: z}, {X: x, Y: y, Z: z}, {X: -x, Y: y, Z: z},
	}, crossAtlas)
	return b.geometry()
}

// Cube builds a cube of the given edge length.
func Cube(size float64) mesh.Geometry {
	return Box(size, size, size)
}

// Plane builds a grid in the XZ plane facing +Y with segX by segZ quads.
func Plane(width, depth float64, segX, segZ int) mesh.Geometry {
	segX = clampSegments(segX, 1)
	segZ = clampSegments(segZ, 1)
	var b builder

	ids := make([][]mesh.VertexID, segX+1)
	uvs := make([][]geom.Vec2, segX+1)
	for i := 0; i <= segX; i++ {
		ids[i] = make([]mesh.VertexID, segZ+1)
		uvs[i] = make([]geom.Vec2, segZ+1)
		for j := 0; j <= segZ; j++ {
			u := float64(i) / float64(segX)
			w := float64(j) / float64(segZ)
			p := geom.Vec3{X: -width/2 + width*u, Z: -depth/2 + depth*w}
			uvs[i][j] = geom.Vec2{X: u, Y: 1 - w}
			ids[i][j] = b.vertex(p, uvs[i][j])
		}
	}
	for i := 0; i < segX; i++ {
		for j := 0; j < segZ; j++ {
			b.face(
				[]mesh.VertexID{ids[i][j], ids[i][j+1], ids[i+1][j+1], ids[i+1][j]},
				[]geom.Vec2{uvs[i][j], uvs[i][j+1], uvs[i+1][j+1], uvs[i+1][j]},
			)
		}
	}
	return b.geometry()
}

// Wedge builds a ramp: a triangular prism whose slope rises from the front
// bottom edge (+Z) to the full height at the back (-Z).
func Wedge(width, height, depth float64) mesh.Geometry {
	x, y, z := width/2, height/2, depth/2
	var b builder
	frontL := b.vertex(geom.Vec3{X: -x, Y: -y, Z: z}, geom.Vec2{X: 0, Y: 0})
	frontR := b.vertex(geom.Vec3{X: x, Y: -y, Z: z}, geom.Vec2{X: 1, Y: 0})
	backR := b.vertex(geom.Vec3{X: x, Y: -y, Z: -z}, geom.Vec2{X: 1, Y: 0})
	backL := b.vertex(geom.Vec3{X: -x, Y: -y, Z: -z}, geom.Vec2{X: 0, Y: 0})
	topR := b.vertex(geom.Vec3{X: x, Y: y, Z: -z}, geom.Vec2{X: 1, Y: 1})
	topL := b.vertex(geom.Vec3{X: -x, Y: y, Z: -z}, geom.Vec2{X: 0, Y: 1})

	quad := fullCells[0].quad
	b.face([]mesh.VertexID{frontL, backL, backR, frontR}, quad())
	b.face([]mesh.VertexID{backL, topL, topR, backR}, quad())
	b.face([]mesh.VertexID{frontL, frontR, topR, topL}, quad())
	b.face([]mesh.VertexID{frontL, topL, backL}, []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}})
	b.face([]mesh.VertexID{frontR, backR, topR}, []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
	return b.geometry()
}
