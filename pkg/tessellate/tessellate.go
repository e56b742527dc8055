// Package tessellate converts between editable n-gon meshes and indexed
// triangle meshes. Tessellate feeds the renderer; Weld and Import bring
// kernel triangle soups back in as editable meshes. Neither direction
// mutates its input.
package tessellate

import (
	"fmt"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/ops"
	"github.com/chazu/facet/pkg/scene"
)

// Tessellate triangulates every face of m as a fan from its first corner.
// Flat shading duplicates corners per face with the face normal and the
// face's corner UVs; smooth shading shares one vertex per mesh vertex with
// its vertex normal.
func Tessellate(m *mesh.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{Name: m.Name}
	if m.Shading == mesh.ShadingSmooth {
		smooth(m, out)
	} else {
		flat(m, out)
	}
	return out
}

func flat(m *mesh.Mesh, out *kernel.Mesh) {
	for i := range m.Faces {
		f := &m.Faces[i]
		first := uint32(out.VertexCount())
		for k, id := range f.VertexIDs {
			v := m.Vertex(id)
			if v == nil {
				continue
			}
			out.AppendVertex(v.Position, f.Normal)
			uv := v.UV
			if f.UVs != nil {
				uv = f.UVs[k]
			}
			out.AppendUV(uv)
		}
		fan(out, first, uint32(out.VertexCount())-first)
	}
}

func smooth(m *mesh.Mesh, out *kernel.Mesh) {
	index := make(map[mesh.VertexID]uint32, len(m.Vertices))
	for _, v := range m.Vertices {
		index[v.ID] = out.AppendVertex(v.Position, v.Normal)
		out.AppendUV(v.UV)
	}
	for _, f := range m.Faces {
		corners := make([]uint32, 0, len(f.VertexIDs))
		for _, id := range f.VertexIDs {
			if i, ok := index[id]; ok {
				corners = append(corners, i)
			}
		}
		for k := 1; k+1 < len(corners); k++ {
			out.AppendTriangle(corners[0], corners[k], corners[k+1])
		}
	}
}

// fan emits n-2 triangles over n consecutive vertices starting at first.
func fan(out *kernel.Mesh, first, n uint32) {
	for k := uint32(1); k+1 < n; k++ {
		out.AppendTriangle(first, first+k, first+k+1)
	}
}

// TessellateScene returns one triangle mesh per visible mesh, in scene
// order.
func TessellateScene(s *scene.Scene) []*kernel.Mesh {
	var out []*kernel.Mesh
	for _, m := range s.List() {
		if !m.Visible {
			continue
		}
		out = append(out, Tessellate(m))
	}
	return out
}

// Weld builds an editable mesh from a triangle mesh, merging vertices
// closer than tolerance. Triangles that collapse while welding are dropped.
func Weld(km *kernel.Mesh, name string, tolerance float64) (*mesh.Mesh, error) {
	if km.TriangleCount() == 0 {
		return nil, fmt.Errorf("tessellate: weld %s: no triangles", name)
	}
	m := mesh.New(name)
	ids := make([]mesh.VertexID, km.VertexCount())
	for i := range ids {
		v := mesh.CreateVertex(km.Position(i))
		if km.UVs != nil {
			v.UV = geom.Vec2{X: float64(km.UVs[2*i]), Y: float64(km.UVs[2*i+1])}
		}
		ids[i] = m.AddVertex(v)
	}
	for t := 0; t < km.TriangleCount(); t++ {
		a, b, c := ids[km.Indices[3*t]], ids[km.Indices[3*t+1]], ids[km.Indices[3*t+2]]
		if a == b || b == c || a == c {
			continue
		}
		m.AddFace(mesh.MustCreateFace([]mesh.VertexID{a, b, c}, nil))
	}
	m.Rebuild()

	if _, err := ops.MergeVerticesByDistance(m, nil, tolerance, ops.MergeFirst); err != nil {
		return nil, fmt.Errorf("tessellate: weld %s: %w", name, err)
	}
	m.RemoveLooseVertices()
	m.Rebuild()
	return m, nil
}

// Import renders a kernel solid and welds it into an editable mesh.
func Import(k kernel.Kernel, s kernel.Solid, name string, tolerance float64) (*mesh.Mesh, error) {
	km, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: import %s: %w", name, err)
	}
	return Weld(km, name, tolerance)
}
