package primitives

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// StairsParams configures Stairs. The flight starts at the origin's front
// edge (z = 0, y = 0) and climbs towards -Z.
type StairsParams struct {
	Width  float64
	Height float64
	Depth  float64
	Steps  int
	// Closed adds side walls, a back and a bottom so the flight is a solid.
	// Open stairs are only the riser and tread surfaces.
	Closed bool
	// Curve bends the flight along a circular arc by this many radians over
	// its full depth. Zero keeps it straight.
	Curve float64
}

// Stairs builds a straight or curved flight of stairs.
func Stairs(p StairsParams) mesh.Geometry {
	n := clampSegments(p.Steps, 1)
	rise := p.Height / float64(n)
	run := p.Depth / float64(n)
	xl, xr := -p.Width/2, p.Width/2
	var b builder

	pt := func(x, y, s float64) geom.Vec3 {
		return bendDepth(geom.Vec3{X: x, Y: y, Z: -s}, p.Depth, p.Curve)
	}
	du, dv := max(p.Depth, geom.Epsilon), max(p.Height, geom.Epsilon)
	sideUV := func(y, s float64) geom.Vec2 {
		return geom.Vec2{X: s / du, Y: y / dv}
	}

	// Profile corners on both sides. tread[k] is the back of tread k (tread
	// 0 is the floor at the front), nose[k] the top of riser k, base[k] the
	// floor below tread[k].
	type side struct{ tread, nose, base []mesh.VertexID }
	mk := func(x float64) side {
		var sd side
		sd.tread = make([]mesh.VertexID, n+1)
		sd.nose = make([]mesh.VertexID, n+1)
		sd.base = make([]mesh.VertexID, n+1)
		for k := 0; k <= n; k++ {
			y, s := float64(k)*rise, float64(k)*run
			sd.tread[k] = b.vertex(pt(x, y, s), sideUV(y, s))
			if k > 0 {
				sd.nose[k] = b.vertex(pt(x, y, s-run), sideUV(y, s-run))
				if p.Closed {
					sd.base[k] = b.vertex(pt(x, 0, s), sideUV(0, s))
				}
			}
		}
		sd.base[0] = sd.tread[0]
		return sd
	}
	l, r := mk(xl), mk(xr)

	for k := 1; k <= n; k++ {
		v0 := float64(2*k-2) / float64(2*n)
		v1 := float64(2*k-1) / float64(2*n)
		v2 := float64(2*k) / float64(2*n)
		b.face([]mesh.VertexID{l.tread[k-1], r.tread[k-1], r.nose[k], l.nose[k]},
			[]geom.Vec2{{X: 0, Y: v0}, {X: 1, Y: v0}, {X: 1, Y: v1}, {X: 0, Y: v1}})
		b.face([]mesh.VertexID{l.nose[k], r.nose[k], r.tread[k], l.tread[k]},
			[]geom.Vec2{{X: 0, Y: v1}, {X: 1, Y: v1}, {X: 1, Y: v2}, {X: 0, Y: v2}})
	}
	if !p.Closed {
		return b.geometry()
	}

	for k := 1; k <= n; k++ {
		y0, y1 := float64(k-1)*rise, float64(k)*rise
		s0, s1 := float64(k-1)*run, float64(k)*run

		// Side slices: a quad for the first step, pentagons after.
		rLoop := []mesh.VertexID{r.base[k-1], r.base[k], r.tread[k], r.nose[k]}
		rUV := []geom.Vec2{sideUV(0, s0), sideUV(0, s1), sideUV(y1, s1), sideUV(y1, s0)}
		if k > 1 {
			rLoop = append(rLoop, r.tread[k-1])
			rUV = append(rUV, sideUV(y0, s0))
		}
		b.face(rLoop, rUV)

		lLoop := []mesh.VertexID{l.base[k-1], l.base[k], l.tread[k], l.nose[k]}
		lUV := []geom.Vec2{sideUV(0, s0), sideUV(0, s1), sideUV(y1, s1), sideUV(y1, s0)}
		if k > 1 {
			lLoop = append(lLoop, l.tread[k-1])
			lUV = append(lUV, sideUV(y0, s0))
		}
		reverseLoop(lLoop, lUV)
		b.face(lLoop, lUV)

		b.face([]mesh.VertexID{l.base[k-1], l.base[k], r.base[k], r.base[k-1]},
			[]geom.Vec2{{X: 0, Y: s0 / du}, {X: 0, Y: s1 / du}, {X: 1, Y: s1 / du}, {X: 1, Y: s0 / du}})
	}
	b.face([]mesh.VertexID{l.tread[n], r.tread[n], r.base[n], l.base[n]}, fullCells[0].quad())
	return b.geometry()
}

func reverseLoop(ids []mesh.VertexID, uvs []geom.Vec2) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
		uvs[i], uvs[j] = uvs[j], uvs[i]
	}
}

// bendDepth wraps a point whose depth runs along -Z around a circular arc
// of the given total angle. The front edge (z = 0) stays in place; x is the
// distance from the arc's centre line.
func bendDepth(p geom.Vec3, depth, angle float64) geom.Vec3 {
	if math.Abs(angle) < geom.Epsilon || depth < geom.Epsilon {
		return p
	}
	radius := depth / angle
	s := -p.Z
	phi := s / radius
	return geom.Vec3{
		X: radius - (radius-p.X)*math.Cos(phi),
		Y: p.Y,
		Z: -(radius - p.X) * math.Sin(phi),
	}
}

// SpiralStairsParams configures SpiralStairs.
type SpiralStairsParams struct {
	InnerRadius float64
	OuterRadius float64
	Height      float64
	Steps       int
	// Rotation is the total sweep in radians.
	Rotation float64
	// Thickness of each tread slab.
	Thickness float64
}

// SpiralStairs builds a helix of separate wedge-shaped tread slabs around
// the Y axis. Step k spans one angular slice and its top sits at
// (k+1)*Height/Steps.
func SpiralStairs(p SpiralStairsParams) mesh.Geometry {
	n := clampSegments(p.Steps, 1)
	thick := p.Thickness
	if thick <= 0 {
		thick = p.Height / float64(n) / 4
	}
	slice := p.Rotation / float64(n)
	in, out := min(p.InnerRadius, p.OuterRadius), max(p.InnerRadius, p.OuterRadius)
	var b builder
	for k := 0; k < n; k++ {
		// Corners must run in increasing angle to keep the slab outward.
		a0, a1 := slice*float64(k), slice*float64(k+1)
		if a1 < a0 {
			a0, a1 = a1, a0
		}
		top := p.Height * float64(k+1) / float64(n)
		bot := top - thick
		b.hexahedron([8]geom.Vec3{
			ring(in, a0, bot), ring(out, a0, bot), ring(out, a0, top), ring(in, a0, top),
			ring(in, a1, bot), ring(out, a1, bot), ring(out, a1, top), ring(in, a1, top),
		}, fullCells)
	}
	return b.geometry()
}
