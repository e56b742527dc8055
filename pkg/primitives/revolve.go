package primitives

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// ring returns the point at angle theta on a circle of radius r at height y.
// Increasing theta runs counter-clockwise seen from -Y.
func ring(r, theta, y float64) geom.Vec3 {
	return geom.Vec3{X: r * math.Cos(theta), Y: y, Z: r * math.Sin(theta)}
}

// CylinderParams configures Cylinder.
type CylinderParams struct {
	RadiusTop      float64
	RadiusBottom   float64
	Height         float64
	RadialSegments int
	HeightSegments int
	// OpenEnded omits the cap n-gons.
	OpenEnded bool
}

// Cylinder builds a Y-aligned cylinder centred at the origin. A zero top or
// bottom radius collapses that ring into a single apex joined by a triangle
// fan, which makes a cone.
func Cylinder(p CylinderParams) mesh.Geometry {
	n := clampSegments(p.RadialSegments, 3)
	rows := clampSegments(p.HeightSegments, 1)
	var b builder

	// rings[i] holds n ids, or one apex id when its radius is zero.
	rings := make([][]mesh.VertexID, rows+1)
	radii := make([]float64, rows+1)
	for i := 0; i <= rows; i++ {
		t := float64(i) / float64(rows)
		y := -p.Height/2 + p.Height*t
		radii[i] = p.RadiusBottom + (p.RadiusTop-p.RadiusBottom)*t
		if radii[i] < geom.Epsilon {
			rings[i] = []mesh.VertexID{b.vertex(geom.Vec3{Y: y}, geom.Vec2{X: 0.5, Y: t})}
			continue
		}
		rings[i] = make([]mesh.VertexID, n)
		for k := 0; k < n; k++ {
			theta := 2 * math.Pi * float64(k) / float64(n)
			rings[i][k] = b.vertex(ring(radii[i], theta, y), geom.Vec2{X: float64(k) / float64(n), Y: t})
		}
	}

	for i := 0; i < rows; i++ {
		lo, hi := rings[i], rings[i+1]
		v0, v1 := float64(i)/float64(rows), float64(i+1)/float64(rows)
		for k := 0; k < n; k++ {
			u0, u1 := float64(k)/float64(n), float64(k+1)/float64(n)
			um := (u0 + u1) / 2
			switch {
			case len(lo) == 1 && len(hi) == 1:
				continue
			case len(hi) == 1:
				b.face([]mesh.VertexID{lo[k], hi[0], lo[(k+1)%n]},
					[]geom.Vec2{{X: u0, Y: v0}, {X: um, Y: v1}, {X: u1, Y: v0}})
			case len(lo) == 1:
				b.face([]mesh.VertexID{lo[0], hi[k], hi[(k+1)%n]},
					[]geom.Vec2{{X: um, Y: v0}, {X: u0, Y: v1}, {X: u1, Y: v1}})
			default:
				b.face([]mesh.VertexID{lo[k], hi[k], hi[(k+1)%n], lo[(k+1)%n]},
					[]geom.Vec2{{X: u0, Y: v0}, {X: u0, Y: v1}, {X: u1, Y: v1}, {X: u1, Y: v0}})
			}
		}
	}

	if !p.OpenEnded {
		if bottom := rings[0]; len(bottom) == n {
			b.face(append([]mesh.VertexID(nil), bottom...), capUVs(n, false))
		}
		if top := rings[rows]; len(top) == n {
			loop := make([]mesh.VertexID, n)
			for k := range top {
				loop[k] = top[n-1-k]
			}
			b.face(loop, capUVs(n, true))
		}
	}
	return b.geometry()
}

// capUVs projects a cap ring onto the unit disc centred at (0.5, 0.5).
func capUVs(n int, reversed bool) []geom.Vec2 {
	uvs := make([]geom.Vec2, n)
	for k := 0; k < n; k++ {
		idx := k
		if reversed {
			idx = n - 1 - k
		}
		theta := 2 * math.Pi * float64(idx) / float64(n)
		uvs[k] = geom.Vec2{X: 0.5 + 0.5*math.Cos(theta), Y: 0.5 + 0.5*math.Sin(theta)}
	}
	return uvs
}

// Cone builds a cone with its apex at +Y.
func Cone(radius, height float64, segments int) mesh.Geometry {
	return Cylinder(CylinderParams{
		RadiusBottom:   radius,
		Height:         height,
		RadialSegments: segments,
		HeightSegments: 1,
	})
}

// UVSphere builds a latitude/longitude sphere. The poles are single
// vertices joined to the first and last rings by triangle fans; all other
// faces are quads with equirectangular uvs.
func UVSphere(radius float64, widthSegments, heightSegments int) mesh.Geometry {
	ws := clampSegments(widthSegments, 3)
	hs := clampSegments(heightSegments, 2)
	var b builder

	top := b.vertex(geom.Vec3{Y: radius}, geom.Vec2{X: 0.5, Y: 1})
	bottom := b.vertex(geom.Vec3{Y: -radius}, geom.Vec2{X: 0.5, Y: 0})

	// rings[j-1] is latitude j, counted from the top pole.
	rings := make([][]mesh.VertexID, hs-1)
	for j := 1; j < hs; j++ {
		phi := math.Pi * float64(j) / float64(hs)
		y := radius * math.Cos(phi)
		r := radius * math.Sin(phi)
		row := make([]mesh.VertexID, ws)
		for k := 0; k < ws; k++ {
			theta := 2 * math.Pi * float64(k) / float64(ws)
			row[k] = b.vertex(ring(r, theta, y), geom.Vec2{X: float64(k) / float64(ws), Y: 1 - float64(j)/float64(hs)})
		}
		rings[j-1] = row
	}

	uv := func(k, j int) geom.Vec2 {
		return geom.Vec2{X: float64(k) / float64(ws), Y: 1 - float64(j)/float64(hs)}
	}
	poleUV := func(k, j int) geom.Vec2 {
		return geom.Vec2{X: (float64(k) + 0.5) / float64(ws), Y: 1 - float64(j)/float64(hs)}
	}

	first := rings[0]
	for k := 0; k < ws; k++ {
		b.face([]mesh.VertexID{first[k], top, first[(k+1)%ws]},
			[]geom.Vec2{uv(k, 1), poleUV(k, 0), uv(k+1, 1)})
	}
	for j := 1; j < hs-1; j++ {
		upper, lower := rings[j-1], rings[j]
		for k := 0; k < ws; k++ {
			b.face([]mesh.VertexID{lower[k], upper[k], upper[(k+1)%ws], lower[(k+1)%ws]},
				[]geom.Vec2{uv(k, j+1), uv(k, j), uv(k+1, j), uv(k+1, j+1)})
		}
	}
	last := rings[hs-2]
	for k := 0; k < ws; k++ {
		b.face([]mesh.VertexID{bottom, last[k], last[(k+1)%ws]},
			[]geom.Vec2{poleUV(k, hs), uv(k, hs-1), uv(k+1, hs-1)})
	}
	return b.geometry()
}

// Torus builds a ring torus around the Y axis. radius is the distance from
// the centre to the middle of the tube.
func Torus(radius, tube float64, radialSegments, tubularSegments int) mesh.Geometry {
	rs := clampSegments(radialSegments, 3)
	ts := clampSegments(tubularSegments, 3)
	var b builder

	ids := make([][]mesh.VertexID, rs)
	for i := 0; i < rs; i++ {
		phi := 2 * math.Pi * float64(i) / float64(rs)
		ids[i] = make([]mesh.VertexID, ts)
		for j := 0; j < ts; j++ {
			theta := 2 * math.Pi * float64(j) / float64(ts)
			r := radius + tube*math.Cos(phi)
			p := geom.Vec3{X: r * math.Cos(theta), Y: tube * math.Sin(phi), Z: r * math.Sin(theta)}
			ids[i][j] = b.vertex(p, geom.Vec2{X: float64(j) / float64(ts), Y: float64(i) / float64(rs)})
		}
	}
	uv := func(i, j int) geom.Vec2 {
		return geom.Vec2{X: float64(j) / float64(ts), Y: float64(i) / float64(rs)}
	}
	for i := 0; i < rs; i++ {
		for j := 0; j < ts; j++ {
			i1, j1 := (i+1)%rs, (j+1)%ts
			b.face([]mesh.VertexID{ids[i][j], ids[i1][j], ids[i1][j1], ids[i][j1]},
				[]geom.Vec2{uv(i, j), uv(i+1, j), uv(i+1, j+1), uv(i, j+1)})
		}
	}
	return b.geometry()
}

// Pipe builds a Y-aligned hollow cylinder with annular end caps.
func Pipe(outerRadius, innerRadius, height float64, segments int) mesh.Geometry {
	n := clampSegments(segments, 3)
	if innerRadius >= outerRadius {
		innerRadius = outerRadius * 0.5
	}
	var b builder
	y0, y1 := -height/2, height/2

	var ob, ot, ib, it []mesh.VertexID
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		u := float64(k) / float64(n)
		ob = append(ob, b.vertex(ring(outerRadius, theta, y0), geom.Vec2{X: u, Y: 0}))
		ot = append(ot, b.vertex(ring(outerRadius, theta, y1), geom.Vec2{X: u, Y: 1}))
		ib = append(ib, b.vertex(ring(innerRadius, theta, y0), geom.Vec2{X: u, Y: 0}))
		it = append(it, b.vertex(ring(innerRadius, theta, y1), geom.Vec2{X: u, Y: 1}))
	}
	ratio := innerRadius / outerRadius
	for k := 0; k < n; k++ {
		k1 := (k + 1) % n
		u0, u1 := float64(k)/float64(n), float64(k+1)/float64(n)
		side := []geom.Vec2{{X: u0, Y: 0}, {X: u0, Y: 1}, {X: u1, Y: 1}, {X: u1, Y: 0}}
		b.face([]mesh.VertexID{ob[k], ot[k], ot[k1], ob[k1]}, side)
		b.face([]mesh.VertexID{ib[k], ib[k1], it[k1], it[k]},
			[]geom.Vec2{{X: u0, Y: 0}, {X: u1, Y: 0}, {X: u1, Y: 1}, {X: u0, Y: 1}})

		th0 := 2 * math.Pi * float64(k) / float64(n)
		th1 := 2 * math.Pi * float64(k+1) / float64(n)
		disc := func(r, th float64) geom.Vec2 {
			return geom.Vec2{X: 0.5 + 0.5*r*math.Cos(th), Y: 0.5 + 0.5*r*math.Sin(th)}
		}
		b.face([]mesh.VertexID{ot[k], it[k], it[k1], ot[k1]},
			[]geom.Vec2{disc(1, th0), disc(ratio, th0), disc(ratio, th1), disc(1, th1)})
		b.face([]mesh.VertexID{ob[k], ob[k1], ib[k1], ib[k]},
			[]geom.Vec2{disc(1, th0), disc(1, th1), disc(ratio, th1), disc(ratio, th0)})
	}
	return b.geometry()
}
