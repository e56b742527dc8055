package primitives

import (
	"math"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// signedVolume integrates over the fan triangles of every face. It is
// positive for a closed mesh with outward winding.
func signedVolume(m *mesh.Mesh) float64 {
	var vol float64
	for i := range m.Faces {
		pts := m.Positions(m.Faces[i].VertexIDs)
		for k := 1; k+1 < len(pts); k++ {
			vol += pts[0].Dot(pts[k].Cross(pts[k+1])) / 6
		}
	}
	return vol
}

// assertClosed checks that every edge borders two faces that traverse it in
// opposite directions.
func assertClosed(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for _, e := range m.Edges {
		if len(e.FaceIDs) != 2 {
			t.Errorf("edge %s borders %d faces, want 2", e.ID, len(e.FaceIDs))
			continue
		}
		sum := 0
		for _, fid := range e.FaceIDs {
			sum += m.Face(fid).EdgeDirection(e.VertexIDs[0], e.VertexIDs[1])
		}
		if sum != 0 {
			t.Errorf("edge %s is traversed the same way by both faces", e.ID)
		}
	}
}

func assertValid(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	if errs := mesh.Validate(m); len(errs) != 0 {
		t.Fatalf("Validate(%s) = %v", m.Name, errs)
	}
}

func TestCubeScenario(t *testing.T) {
	m := mesh.FromGeometry("cube", Cube(2))
	if m.VertexCount() != 8 || m.FaceCount() != 6 {
		t.Fatalf("cube has %d vertices and %d faces, want 8 and 6", m.VertexCount(), m.FaceCount())
	}
	for _, f := range m.Faces {
		if f.Len() != 4 {
			t.Fatalf("face has %d corners", f.Len())
		}
		seen := make(map[mesh.VertexID]bool)
		for _, id := range f.VertexIDs {
			seen[id] = true
		}
		if len(seen) != 4 {
			t.Errorf("face corners are not distinct: %v", f.VertexIDs)
		}
		pts := m.Positions(f.VertexIDs)
		for k := range pts {
			if d := geom.Distance(pts[k], pts[(k+1)%4]); math.Abs(d-2) > 1e-12 {
				t.Errorf("side length %v, want 2", d)
			}
			if off := pts[k].Sub(pts[0]).Dot(f.Normal); math.Abs(off) > 1e-12 {
				t.Errorf("corner %d is %v off the face plane", k, off)
			}
		}
		if len(f.UVs) != 4 {
			t.Errorf("face has %d uvs", len(f.UVs))
		}
	}
	assertClosed(t, m)
	assertValid(t, m)
	if v := signedVolume(m); math.Abs(v-8) > 1e-9 {
		t.Errorf("volume = %v, want 8", v)
	}
}

func TestCubeAtlasCellsAreDistinct(t *testing.T) {
	g := Cube(1)
	seen := make(map[geom.Vec2]bool)
	for _, f := range g.Faces {
		seen[f.UVs[0]] = true
	}
	if len(seen) != 6 {
		t.Errorf("faces use %d atlas cells, want 6", len(seen))
	}
}

func TestIcoSphereScenario(t *testing.T) {
	m := mesh.FromGeometry("ico", IcoSphere(1, 2))
	if m.FaceCount() != 320 {
		t.Fatalf("icosphere has %d faces, want 320", m.FaceCount())
	}
	if m.VertexCount() != 162 {
		t.Errorf("icosphere has %d vertices, want 162", m.VertexCount())
	}
	for _, v := range m.Vertices {
		if d := v.Position.Length(); math.Abs(d-1) > 1e-6 {
			t.Errorf("vertex at distance %v from origin", d)
		}
	}
	for _, f := range m.Faces {
		if f.Len() != 3 {
			t.Fatalf("icosphere face has %d corners", f.Len())
		}
	}
	assertClosed(t, m)
	assertValid(t, m)
}

func TestIcoSphereFaceCounts(t *testing.T) {
	for sub, want := range []int{20, 80, 320, 1280} {
		if got := len(IcoSphere(2, sub).Faces); got != want {
			t.Errorf("IcoSphere(2, %d) has %d faces, want %d", sub, got, want)
		}
	}
}

func TestClosedPrimitives(t *testing.T) {
	tests := []struct {
		name   string
		g      mesh.Geometry
		verts  int
		faces  int
		volume float64 // zero skips the exact check
		volTol float64
	}{
		{"box", Box(1, 2, 3), 8, 6, 6, 1e-9},
		{"uv sphere", UVSphere(1, 12, 8), 12*7 + 2, 12 * 8, 0, 0},
		{"cylinder", Cylinder(CylinderParams{RadiusTop: 1, RadiusBottom: 1, Height: 2, RadialSegments: 16, HeightSegments: 3}), 16 * 4, 16*3 + 2, 0, 0},
		{"cone", Cone(1, 2, 16), 17, 17, 0, 0},
		{"torus", Torus(2, 0.5, 8, 16), 8 * 16, 8 * 16, 0, 0},
		{"wedge", Wedge(2, 1, 3), 6, 5, 3, 1e-9},
		{"pipe", Pipe(1, 0.5, 2, 12), 48, 48, 0, 0},
		{"duct", Duct(4, 2, 0.5, 3), 16, 16, (4*2 - 3*1) * 3, 1e-9},
		{"window", WindowFrame(4, 3, 0.5, 0.2), 16, 16, (4*3 - 3*2) * 0.2, 1e-9},
		{"door", DoorFrame(2, 3, 0.25, 0.5), 16, 14, (2*3 - 1.5*2.75) * 0.5, 1e-9},
		{"arch", ArchFrame(2, 3, 0.2, 0.3, 8), 4 * 11, 4*10 + 2, 0, 0},
		{"closed stairs", Stairs(StairsParams{Width: 1, Height: 1, Depth: 1, Steps: 4, Closed: true}), 2 * (5 + 4 + 4), 4*2 + 4*3 + 1, 1 * 0.25 * 0.25 * 10, 1e-9},
		{"curved stairs", Stairs(StairsParams{Width: 1, Height: 2, Depth: 3, Steps: 6, Closed: true, Curve: math.Pi / 2}), 2 * (7 + 6 + 6), 6*2 + 6*3 + 1, 0, 0},
		{"spiral stairs", SpiralStairs(SpiralStairsParams{InnerRadius: 0.2, OuterRadius: 1, Height: 3, Steps: 10, Rotation: 2 * math.Pi, Thickness: 0.05}), 80, 60, 0, 0},
		{"spiral stairs reversed", SpiralStairs(SpiralStairsParams{InnerRadius: 1, OuterRadius: 0.2, Height: 3, Steps: 4, Rotation: -math.Pi}), 32, 24, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mesh.FromGeometry(tt.name, tt.g)
			if m.VertexCount() != tt.verts {
				t.Errorf("vertices = %d, want %d", m.VertexCount(), tt.verts)
			}
			if m.FaceCount() != tt.faces {
				t.Errorf("faces = %d, want %d", m.FaceCount(), tt.faces)
			}
			assertClosed(t, m)
			assertValid(t, m)
			vol := signedVolume(m)
			if vol <= 0 {
				t.Fatalf("signed volume %v, faces are not outward", vol)
			}
			if tt.volume != 0 && math.Abs(vol-tt.volume) > tt.volTol {
				t.Errorf("volume = %v, want %v", vol, tt.volume)
			}
		})
	}
}

func TestPlane(t *testing.T) {
	m := mesh.FromGeometry("plane", Plane(2, 4, 2, 3))
	if m.VertexCount() != 12 || m.FaceCount() != 6 {
		t.Fatalf("plane has %d vertices and %d faces", m.VertexCount(), m.FaceCount())
	}
	for _, f := range m.Faces {
		if !geom.NearlyEqual(f.Normal, geom.Up, 1e-12) {
			t.Errorf("plane face normal = %v, want +Y", f.Normal)
		}
	}
	boundary := 0
	for i := range m.Edges {
		if m.Edges[i].IsBoundary() {
			boundary++
		}
	}
	if boundary != 2*(2+3) {
		t.Errorf("boundary edges = %d, want 10", boundary)
	}
	assertValid(t, m)
}

func TestOpenStairsAreSurfaces(t *testing.T) {
	m := mesh.FromGeometry("stairs", Stairs(StairsParams{Width: 1, Height: 1, Depth: 1, Steps: 3}))
	if m.FaceCount() != 6 {
		t.Fatalf("open stairs have %d faces, want 6", m.FaceCount())
	}
	for _, f := range m.Faces {
		if f.Normal.Y < -1e-12 || f.Normal.Z < -1e-12 {
			t.Errorf("riser or tread faces away from the climber: %v", f.Normal)
		}
	}
	assertValid(t, m)
}

func TestStairsCurveKeepsFrontEdge(t *testing.T) {
	straight := Stairs(StairsParams{Width: 1, Height: 1, Depth: 2, Steps: 2})
	curved := Stairs(StairsParams{Width: 1, Height: 1, Depth: 2, Steps: 2, Curve: math.Pi / 3})
	for i, v := range straight.Vertices {
		if v.Position.Z != 0 {
			continue
		}
		if !geom.NearlyEqual(v.Position, curved.Vertices[i].Position, 1e-12) {
			t.Errorf("front vertex moved from %v to %v", v.Position, curved.Vertices[i].Position)
		}
	}
	var moved bool
	for i, v := range straight.Vertices {
		if !geom.NearlyEqual(v.Position, curved.Vertices[i].Position, 1e-9) {
			moved = true
		}
	}
	if !moved {
		t.Error("curve did not bend any vertex")
	}
}

func TestBendDepthPreservesDistanceFromCentre(t *testing.T) {
	const depth, angle = 4.0, math.Pi / 2
	radius := depth / angle
	for _, p := range []geom.Vec3{{X: 0, Z: -1}, {X: 0.5, Z: -3}, {X: -0.5, Z: -4}} {
		q := bendDepth(p, depth, angle)
		centre := geom.Vec3{X: radius, Y: q.Y}
		if d := geom.Distance(q, centre); math.Abs(d-(radius-p.X)) > 1e-12 {
			t.Errorf("bent %v lies %v from the bend centre, want %v", p, d, radius-p.X)
		}
	}
}

func TestFixSeamUVs(t *testing.T) {
	tests := []struct {
		name string
		in   []geom.Vec2
		want []float64
	}{
		{"no seam", []geom.Vec2{{X: 0.1}, {X: 0.2}, {X: 0.3}}, []float64{0.1, 0.2, 0.3}},
		{"wraps", []geom.Vec2{{X: 0.95}, {X: 0.02}, {X: 0.9}}, []float64{0.95, 1.02, 0.9}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			FixSeamUVs(tt.in)
			for i, uv := range tt.in {
				if math.Abs(uv.X-tt.want[i]) > 1e-12 {
					t.Errorf("u[%d] = %v, want %v", i, uv.X, tt.want[i])
				}
			}
		})
	}
}

func TestIcoSphereUVsDoNotStraddleSeam(t *testing.T) {
	g := IcoSphere(1, 1)
	height := make(map[mesh.VertexID]float64, len(g.Vertices))
	for _, v := range g.Vertices {
		height[v.ID] = v.Position.Y
	}
	for _, f := range g.Faces {
		polar := false
		for _, id := range f.VertexIDs {
			if math.Abs(height[id]) > 0.999 {
				polar = true
			}
		}
		if polar {
			// u is undefined at the poles.
			continue
		}
		lo, hi := f.UVs[0].X, f.UVs[0].X
		for _, uv := range f.UVs {
			lo, hi = min(lo, uv.X), max(hi, uv.X)
		}
		if hi-lo > 0.5 {
			t.Errorf("face uv range %v straddles the seam", hi-lo)
		}
	}
}
