package primitives

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// sweepFrame extrudes the band between two matched polylines in the XY
// plane through z in [-depth/2, depth/2]. outer and inner must have the
// same length and run clockwise around the opening as seen from +Z. A
// closed band wraps around; an open band gets end caps.
func sweepFrame(outer, inner []geom.Vec2, depth float64, closed bool) mesh.Geometry {
	n := len(outer)
	zf, zb := depth/2, -depth/2
	var b builder

	lo, hi := outer[0], outer[0]
	for _, p := range outer {
		lo = geom.Vec2{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = geom.Vec2{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	span := geom.Vec2{X: max(hi.X-lo.X, geom.Epsilon), Y: max(hi.Y-lo.Y, geom.Epsilon)}
	planar := func(p geom.Vec2) geom.Vec2 {
		return geom.Vec2{X: (p.X - lo.X) / span.X, Y: (p.Y - lo.Y) / span.Y}
	}

	// Arc length along the outer polyline drives the side u coordinate.
	along := make([]float64, n+1)
	for k := 1; k <= n; k++ {
		along[k] = along[k-1] + outer[k%n].Sub(outer[k-1]).Length()
	}
	total := along[n]
	if !closed {
		total = along[n-1]
	}
	total = max(total, geom.Epsilon)

	of, ob, inf, inb := make([]mesh.VertexID, n), make([]mesh.VertexID, n), make([]mesh.VertexID, n), make([]mesh.VertexID, n)
	for k := 0; k < n; k++ {
		o, i := outer[k], inner[k]
		of[k] = b.vertex(geom.Vec3{X: o.X, Y: o.Y, Z: zf}, planar(o))
		ob[k] = b.vertex(geom.Vec3{X: o.X, Y: o.Y, Z: zb}, planar(o))
		inf[k] = b.vertex(geom.Vec3{X: i.X, Y: i.Y, Z: zf}, planar(i))
		inb[k] = b.vertex(geom.Vec3{X: i.X, Y: i.Y, Z: zb}, planar(i))
	}

	segs := n - 1
	if closed {
		segs = n
	}
	for k := 0; k < segs; k++ {
		k1 := (k + 1) % n
		u0, u1 := along[k]/total, along[k+1]/total
		b.face([]mesh.VertexID{of[k], inf[k], inf[k1], of[k1]},
			[]geom.Vec2{planar(outer[k]), planar(inner[k]), planar(inner[k1]), planar(outer[k1])})
		b.face([]mesh.VertexID{ob[k1], inb[k1], inb[k], ob[k]},
			[]geom.Vec2{planar(outer[k1]), planar(inner[k1]), planar(inner[k]), planar(outer[k])})
		b.face([]mesh.VertexID{of[k], of[k1], ob[k1], ob[k]},
			[]geom.Vec2{{X: u0, Y: 1}, {X: u1, Y: 1}, {X: u1, Y: 0}, {X: u0, Y: 0}})
		b.face([]mesh.VertexID{inf[k], inb[k], inb[k1], inf[k1]},
			[]geom.Vec2{{X: u0, Y: 1}, {X: u0, Y: 0}, {X: u1, Y: 0}, {X: u1, Y: 1}})
	}
	if !closed {
		last := n - 1
		b.face([]mesh.VertexID{of[0], ob[0], inb[0], inf[0]}, fullCells[0].quad())
		b.face([]mesh.VertexID{inf[last], inb[last], ob[last], of[last]}, fullCells[0].quad())
	}
	return b.geometry()
}

// DoorFrame builds a three-sided frame standing on y = 0. width and height
// are outer dimensions; thickness is the jamb width and depth the wall
// depth along Z.
func DoorFrame(width, height, thickness, depth float64) mesh.Geometry {
	t := clampThickness(thickness, width, height)
	x, h := width/2, height
	outer := []geom.Vec2{{X: -x, Y: 0}, {X: -x, Y: h}, {X: x, Y: h}, {X: x, Y: 0}}
	inner := []geom.Vec2{{X: -x + t, Y: 0}, {X: -x + t, Y: h - t}, {X: x - t, Y: h - t}, {X: x - t, Y: 0}}
	return sweepFrame(outer, inner, depth, false)
}

// WindowFrame builds a closed rectangular frame centred at the origin.
func WindowFrame(width, height, thickness, depth float64) mesh.Geometry {
	t := clampThickness(thickness, width, height)
	outer, inner := rectRing(width, height, t)
	return sweepFrame(outer, inner, depth, true)
}

// ArchFrame builds a door frame whose head is a semicircle spanning the
// full width. height is measured to the top of the arch; segments controls
// the arc resolution.
func ArchFrame(width, height, thickness, depth float64, segments int) mesh.Geometry {
	segs := clampSegments(segments, 2)
	t := clampThickness(thickness, width, height)
	ro := width / 2
	ri := ro - t
	spring := max(height-ro, 0)

	outer := []geom.Vec2{{X: -ro, Y: 0}}
	inner := []geom.Vec2{{X: -ri, Y: 0}}
	for k := 0; k <= segs; k++ {
		a := math.Pi * (1 - float64(k)/float64(segs))
		c, s := math.Cos(a), math.Sin(a)
		outer = append(outer, geom.Vec2{X: ro * c, Y: spring + ro*s})
		inner = append(inner, geom.Vec2{X: ri * c, Y: spring + ri*s})
	}
	outer = append(outer, geom.Vec2{X: ro, Y: 0})
	inner = append(inner, geom.Vec2{X: ri, Y: 0})
	if spring < geom.Epsilon {
		// The arc starts on the floor: drop the duplicated jamb corners.
		outer, inner = outer[1:len(outer)-1], inner[1:len(inner)-1]
	}
	return sweepFrame(outer, inner, depth, false)
}

// Duct builds a straight rectangular duct along Z: a hollow box section of
// outer width and height with the given wall thickness.
func Duct(width, height, wall, length float64) mesh.Geometry {
	t := clampThickness(wall, width, height)
	outer, inner := rectRing(width, height, t)
	return sweepFrame(outer, inner, length, true)
}

// rectRing returns matched outer and inner rectangles, clockwise from the
// top-left corner as seen from +Z.
func rectRing(width, height, t float64) (outer, inner []geom.Vec2) {
	x, y := width/2, height/2
	outer = []geom.Vec2{{X: -x, Y: y}, {X: x, Y: y}, {X: x, Y: -y}, {X: -x, Y: -y}}
	inner = []geom.Vec2{{X: -x + t, Y: y - t}, {X: x - t, Y: y - t}, {X: x - t, Y: -y + t}, {X: -x + t, Y: -y + t}}
	return outer, inner
}

// clampThickness keeps a frame member thinner than half the opening.
func clampThickness(t, width, height float64) float64 {
	limit := min(width, height) / 2 * 0.95
	if t <= 0 {
		return limit / 2
	}
	return min(t, limit)
}
