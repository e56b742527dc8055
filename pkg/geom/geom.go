// Package geom provides the vector algebra shared by every mesh component.
// Vectors are the sdfx vector types so that kernel output and edit
// operators speak the same representation without conversion.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a 3D point or direction.
type Vec3 = v3.Vec

// Vec2 is a 2D texture coordinate.
type Vec2 = v2.Vec

// Epsilon is the tolerance used for degeneracy checks throughout the core.
const Epsilon = 1e-9

// Up is the fallback normal for degenerate faces and isolated vertices.
var Up = Vec3{X: 0, Y: 1, Z: 0}

// Zero is the zero vector.
var Zero = Vec3{}

// Add returns a + b.
func Add(a, b Vec3) Vec3 {
	return a.Add(b)
}

// Subtract returns a - b.
func Subtract(a, b Vec3) Vec3 {
	return a.Sub(b)
}

// Multiply scales v by s.
func Multiply(v Vec3, s float64) Vec3 {
	return v.MulScalar(s)
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 {
	return a.Dot(b)
}

// Cross returns the cross product a x b.
func Cross(a, b Vec3) Vec3 {
	return a.Cross(b)
}

// Length returns the euclidean length of v.
func Length(v Vec3) float64 {
	return v.Length()
}

// Normalize returns v scaled to unit length. A zero-length input yields the
// zero vector rather than NaN components.
func Normalize(v Vec3) Vec3 {
	l := v.Length()
	if l < Epsilon {
		return Vec3{}
	}
	return v.MulScalar(1 / l)
}

// NormalizeOr normalizes v, returning fallback when v is degenerate.
func NormalizeOr(v, fallback Vec3) Vec3 {
	l := v.Length()
	if l < Epsilon {
		return fallback
	}
	return v.MulScalar(1 / l)
}

// Distance returns |a - b|.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Length()
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Lerp2 interpolates between two texture coordinates.
func Lerp2(a, b Vec2, t float64) Vec2 {
	return Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Average2 returns the mean of the given texture coordinates.
func Average2(uvs ...Vec2) Vec2 {
	if len(uvs) == 0 {
		return Vec2{}
	}
	var sum Vec2
	for _, uv := range uvs {
		sum.X += uv.X
		sum.Y += uv.Y
	}
	n := float64(len(uvs))
	return Vec2{X: sum.X / n, Y: sum.Y / n}
}

// Centroid returns the arithmetic mean of points, or the zero vector when
// points is empty.
func Centroid(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.MulScalar(1 / float64(len(points)))
}

// Angle returns the angle in radians between a and b, 0 when either is
// degenerate.
func Angle(a, b Vec3) float64 {
	la, lb := a.Length(), b.Length()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(Clamp(c, -1, 1))
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// NearlyEqual reports whether a and b are within tol on every axis.
func NearlyEqual(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
