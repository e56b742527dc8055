package primitives

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

var icoFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

func icoVertices() []geom.Vec3 {
	t := (1 + math.Sqrt(5)) / 2
	raw := []geom.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range raw {
		raw[i] = geom.Normalize(raw[i])
	}
	return raw
}

// IcoSphere builds a geodesic sphere by splitting each icosahedron triangle
// into four, subdivisions times, and projecting every new vertex onto the
// sphere. The result has 20*4^subdivisions triangles.
func IcoSphere(radius float64, subdivisions int) mesh.Geometry {
	if subdivisions < 0 {
		subdivisions = 0
	}
	pts := icoVertices()
	tris := icoFaces[:]

	for s := 0; s < subdivisions; s++ {
		cache := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := cache[key]; ok {
				return i
			}
			pts = append(pts, geom.Normalize(pts[a].Add(pts[b])))
			cache[key] = len(pts) - 1
			return len(pts) - 1
		}
		next := make([][3]int, 0, len(tris)*4)
		for _, t := range tris {
			ab := midpoint(t[0], t[1])
			bc := midpoint(t[1], t[2])
			ca := midpoint(t[2], t[0])
			next = append(next,
				[3]int{t[0], ab, ca},
				[3]int{t[1], bc, ab},
				[3]int{t[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		tris = next
	}

	var b builder
	ids := make([]mesh.VertexID, len(pts))
	for i, p := range pts {
		ids[i] = b.vertex(p.MulScalar(radius), sphereUV(p))
	}
	for _, t := range tris {
		uvs := []geom.Vec2{sphereUV(pts[t[0]]), sphereUV(pts[t[1]]), sphereUV(pts[t[2]])}
		FixSeamUVs(uvs)
		b.face([]mesh.VertexID{ids[t[0]], ids[t[1]], ids[t[2]]}, uvs)
	}
	return b.geometry()
}

// sphereUV maps a unit direction to equirectangular coordinates.
func sphereUV(p geom.Vec3) geom.Vec2 {
	return geom.Vec2{
		X: 0.5 + math.Atan2(p.Z, p.X)/(2*math.Pi),
		Y: 0.5 + math.Asin(geom.Clamp(p.Y, -1, 1))/math.Pi,
	}
}
