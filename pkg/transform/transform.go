// Package transform computes live previews for selection-driven move,
// rotate, scale and extrude gestures. Every function reads a copy of the
// selected vertices and returns a new slice; mesh topology is never
// touched.
package transform

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// AxisLock restricts a transform to one world axis.
type AxisLock string

const (
	AxisNone AxisLock = "none"
	AxisX    AxisLock = "x"
	AxisY    AxisLock = "y"
	AxisZ    AxisLock = "z"
)

// ParseAxisLock converts "x", "y", "z", "none" or "" to an AxisLock.
func ParseAxisLock(s string) (AxisLock, error) {
	switch AxisLock(s) {
	case AxisX, AxisY, AxisZ, AxisNone:
		return AxisLock(s), nil
	case "":
		return AxisNone, nil
	}
	return "", fmt.Errorf("unknown axis lock %q", s)
}

// unit returns the lock's world axis, or false for AxisNone.
func (a AxisLock) unit() (geom.Vec3, bool) {
	switch a {
	case AxisX:
		return geom.Vec3{X: 1}, true
	case AxisY:
		return geom.Vec3{Y: 1}, true
	case AxisZ:
		return geom.Vec3{Z: 1}, true
	}
	return geom.Vec3{}, false
}

// Mask returns the per-axis multiplier for deltas: 1 on the locked axis
// and 0 elsewhere, or all ones when unlocked.
func (a AxisLock) Mask() geom.Vec3 {
	if u, ok := a.unit(); ok {
		return u
	}
	return geom.Vec3{X: 1, Y: 1, Z: 1}
}

// RotationAxis returns the locked axis, or Z when unlocked.
func (a AxisLock) RotationAxis() geom.Vec3 {
	if u, ok := a.unit(); ok {
		return u
	}
	return geom.Vec3{Z: 1}
}

func mapPositions(vs []mesh.Vertex, fn func(v *mesh.Vertex)) []mesh.Vertex {
	out := make([]mesh.Vertex, len(vs))
	copy(out, vs)
	for i := range out {
		fn(&out[i])
	}
	return out
}

// ApplyMoveOperation adds delta, masked by lock, to every position.
func ApplyMoveOperation(vs []mesh.Vertex, delta geom.Vec3, lock AxisLock) []mesh.Vertex {
	d := delta.Mul(lock.Mask())
	return mapPositions(vs, func(v *mesh.Vertex) {
		v.Position = v.Position.Add(d)
	})
}

// ApplyScaleOperation scales each offset from centroid per axis. Axes other
// than the locked one keep a factor of 1.
func ApplyScaleOperation(vs []mesh.Vertex, centroid, scale geom.Vec3, lock AxisLock) []mesh.Vertex {
	if u, ok := lock.unit(); ok {
		ones := geom.Vec3{X: 1, Y: 1, Z: 1}
		scale = ones.Add(scale.Sub(ones).Mul(u))
	}
	return mapPositions(vs, func(v *mesh.Vertex) {
		v.Position = centroid.Add(v.Position.Sub(centroid).Mul(scale))
	})
}

// UniformScale is the scale vector with every component f.
func UniformScale(f float64) geom.Vec3 {
	return geom.Vec3{X: f, Y: f, Z: f}
}

// ApplyRotateOperation rotates positions by angle radians about the locked
// axis (Z when unlocked) through centroid. Normals are rotated too.
func ApplyRotateOperation(vs []mesh.Vertex, centroid geom.Vec3, angle float64, lock AxisLock) []mesh.Vertex {
	rot := sdf.Rotate3d(lock.RotationAxis(), angle)
	m := sdf.Translate3d(centroid).Mul(rot).Mul(sdf.Translate3d(centroid.MulScalar(-1)))
	return mapPositions(vs, func(v *mesh.Vertex) {
		v.Position = m.MulPosition(v.Position)
		v.Normal = geom.NormalizeOr(rot.MulPosition(v.Normal), v.Normal)
	})
}

// ApplyExtrudeOperation offsets every position by distance along normal.
func ApplyExtrudeOperation(vs []mesh.Vertex, normal geom.Vec3, distance float64) []mesh.Vertex {
	d := geom.Normalize(normal).MulScalar(distance)
	return mapPositions(vs, func(v *mesh.Vertex) {
		v.Position = v.Position.Add(d)
	})
}

// Camera is the part of the view a drag needs: the screen basis in world
// space and the distance to the orbit target.
type Camera struct {
	Right    geom.Vec3
	Up       geom.Vec3
	Distance float64
}

// MouseToWorldDelta turns a pointer movement in pixels into a world-space
// delta. Scaling by view distance keeps the drag speed constant on screen
// at any zoom. Screen y grows downward.
func MouseToWorldDelta(dx, dy float64, cam Camera, sensitivity float64) geom.Vec3 {
	k := cam.Distance * sensitivity
	return cam.Right.MulScalar(dx * k).Sub(cam.Up.MulScalar(dy * k))
}

// Centroid returns the mean position of vs.
func Centroid(vs []mesh.Vertex) geom.Vec3 {
	pts := make([]geom.Vec3, len(vs))
	for i, v := range vs {
		pts[i] = v.Position
	}
	return geom.Centroid(pts)
}
