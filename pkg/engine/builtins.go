package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/ops"
	"github.com/chazu/facet/pkg/primitives"
	"github.com/chazu/facet/pkg/scene"
	"github.com/chazu/facet/pkg/tessellate"
	"github.com/chazu/facet/pkg/transform"
)

// facingTolerance is how far a face normal may stray from the :facing
// direction, as 1 - cos(angle).
const facingTolerance = 1e-6

// builtins is the state shared by the functions of one evaluation.
type builtins struct {
	scene    *scene.Scene
	history  *history.History
	kernel   kernel.Kernel
	weld     float64
	defaults EditDefaults
	warnings []EvalWarning
}

// builtinFunc is the body of a builtin after argument parsing.
type builtinFunc func(a kwArgs) (zygo.Sexp, error)

// add registers fn under name. Errors are prefixed with the name as the
// user wrote it.
func (b *builtins) add(env *zygo.Zlisp, name string, fn builtinFunc) {
	display := strings.ReplaceAll(name, "_", "-")
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := fn(parseArgs(args))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
		}
		return out, nil
	})
}

// register installs every builtin into env.
func (b *builtins) register(env *zygo.Zlisp) {
	b.add(env, "vec3", builtinVec3)

	for name, build := range primitiveBuilders {
		b.add(env, name, func(a kwArgs) (zygo.Sexp, error) {
			g, err := build(a)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpGeometry{kind: name, g: g}, nil
		})
	}

	b.add(env, "defmesh", b.defmesh)
	b.add(env, "mesh", b.lookupMesh)
	b.add(env, "faces", b.faces)
	b.add(env, "face_edges", b.faceEdges)
	b.add(env, "face_near", b.faceNear)
	b.add(env, "edge_near", b.edgeNear)
	b.add(env, "vertex_near", b.vertexNear)

	b.add(env, "extrude", b.extrude)
	b.add(env, "inset", b.inset)
	b.add(env, "bevel_faces", b.bevelFaces)
	b.add(env, "bevel", b.bevel)
	b.add(env, "chamfer", b.chamfer)
	b.add(env, "fillet", b.fillet)
	b.add(env, "loop_cut", b.loopCut)
	b.add(env, "subdivide", b.subdivide)
	b.add(env, "split_edge", b.splitEdge)
	b.add(env, "knife", b.knife)
	b.add(env, "merge", b.merge)
	b.add(env, "merge_by_distance", b.mergeByDistance)
	b.add(env, "delete_faces", b.deleteFaces)
	b.add(env, "delete_edges", b.deleteEdges)
	b.add(env, "delete_vertices", b.deleteVertices)
	b.add(env, "flip", b.flip)
	b.add(env, "mark_seams", b.markSeams)
	b.add(env, "move", b.move)
	b.add(env, "rotate", b.rotate)
	b.add(env, "scale", b.scale)
	b.add(env, "shade_smooth", b.shading(mesh.ShadingSmooth))
	b.add(env, "shade_flat", b.shading(mesh.ShadingFlat))

	b.add(env, "solid_box", b.solidBox)
	b.add(env, "solid_sphere", b.solidSphere)
	b.add(env, "solid_cylinder", b.solidCylinder)
	b.add(env, "union", b.boolean(b.kernel.Union))
	b.add(env, "difference", b.boolean(b.kernel.Difference))
	b.add(env, "intersection", b.boolean(b.kernel.Intersection))
	b.add(env, "translate", b.translate)
	b.add(env, "turn", b.turn)
	b.add(env, "defsolid", b.defsolid)
}

// (vec3 x y z)
func builtinVec3(a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 3 {
		return zygo.SexpNull, fmt.Errorf("expected 3 arguments, got %d", len(a.positional))
	}
	var c [3]float64
	for i, s := range a.positional {
		f, err := toFloat64(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("argument %d: %w", i+1, err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: geom.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// primitiveBuilders maps builtin names to primitive constructors reading
// keyword arguments. Missing keywords take the defaults shown.
var primitiveBuilders = map[string]func(a kwArgs) (mesh.Geometry, error){
	"box": func(a kwArgs) (mesh.Geometry, error) {
		return dims3(a, primitives.Box)
	},
	"cube": func(a kwArgs) (mesh.Geometry, error) {
		size, err := a.num("size", 1)
		return primitives.Cube(size), err
	},
	"plane": func(a kwArgs) (mesh.Geometry, error) {
		var p struct {
			w, d   float64
			sx, sz int
		}
		err := firstErr(
			a.numInto("width", 1, &p.w),
			a.numInto("depth", 1, &p.d),
			a.countInto("segments-x", 1, &p.sx),
			a.countInto("segments-z", 1, &p.sz),
		)
		return primitives.Plane(p.w, p.d, p.sx, p.sz), err
	},
	"cylinder": func(a kwArgs) (mesh.Geometry, error) {
		var r float64
		var p primitives.CylinderParams
		err := firstErr(
			a.numInto("radius", 0.5, &r),
			a.numInto("height", 1, &p.Height),
			a.countInto("segments", 16, &p.RadialSegments),
			a.countInto("height-segments", 1, &p.HeightSegments),
		)
		if err == nil {
			err = firstErr(
				a.numInto("top-radius", r, &p.RadiusTop),
				a.numInto("bottom-radius", r, &p.RadiusBottom),
			)
		}
		return primitives.Cylinder(p), err
	},
	"cone": func(a kwArgs) (mesh.Geometry, error) {
		var r, h float64
		var n int
		err := firstErr(
			a.numInto("radius", 0.5, &r),
			a.numInto("height", 1, &h),
			a.countInto("segments", 16, &n),
		)
		return primitives.Cone(r, h, n), err
	},
	"uv_sphere": func(a kwArgs) (mesh.Geometry, error) {
		var r float64
		var w, h int
		err := firstErr(
			a.numInto("radius", 0.5, &r),
			a.countInto("width-segments", 16, &w),
			a.countInto("height-segments", 8, &h),
		)
		return primitives.UVSphere(r, w, h), err
	},
	"ico_sphere": func(a kwArgs) (mesh.Geometry, error) {
		var r float64
		var n int
		err := firstErr(
			a.numInto("radius", 0.5, &r),
			a.countInto("subdivisions", 1, &n),
		)
		return primitives.IcoSphere(r, n), err
	},
	"torus": func(a kwArgs) (mesh.Geometry, error) {
		var r, tube float64
		var rs, ts int
		err := firstErr(
			a.numInto("radius", 0.5, &r),
			a.numInto("tube", 0.2, &tube),
			a.countInto("radial-segments", 12, &rs),
			a.countInto("tubular-segments", 24, &ts),
		)
		return primitives.Torus(r, tube, rs, ts), err
	},
	"wedge": func(a kwArgs) (mesh.Geometry, error) {
		return dims3(a, primitives.Wedge)
	},
	"pipe": func(a kwArgs) (mesh.Geometry, error) {
		var outer, inner, h float64
		var n int
		err := firstErr(
			a.numInto("outer-radius", 0.5, &outer),
			a.numInto("inner-radius", 0.25, &inner),
			a.numInto("height", 1, &h),
			a.countInto("segments", 16, &n),
		)
		return primitives.Pipe(outer, inner, h, n), err
	},
	"duct": func(a kwArgs) (mesh.Geometry, error) {
		var w, h, wall, l float64
		err := firstErr(
			a.numInto("width", 1, &w),
			a.numInto("height", 1, &h),
			a.numInto("wall", 0.1, &wall),
			a.numInto("length", 2, &l),
		)
		return primitives.Duct(w, h, wall, l), err
	},
	"stairs": func(a kwArgs) (mesh.Geometry, error) {
		var p primitives.StairsParams
		var curve float64
		err := firstErr(
			a.numInto("width", 1, &p.Width),
			a.numInto("height", 1, &p.Height),
			a.numInto("depth", 1, &p.Depth),
			a.countInto("steps", 4, &p.Steps),
			a.flagInto("closed", &p.Closed),
			a.numInto("curve", 0, &curve),
		)
		p.Curve = curve * math.Pi / 180
		return primitives.Stairs(p), err
	},
	"spiral_stairs": func(a kwArgs) (mesh.Geometry, error) {
		var p primitives.SpiralStairsParams
		var rotation float64
		err := firstErr(
			a.numInto("inner-radius", 0.2, &p.InnerRadius),
			a.numInto("outer-radius", 1, &p.OuterRadius),
			a.numInto("height", 2, &p.Height),
			a.countInto("steps", 12, &p.Steps),
			a.numInto("rotation", 360, &rotation),
			a.numInto("thickness", 0.05, &p.Thickness),
		)
		p.Rotation = rotation * math.Pi / 180
		return primitives.SpiralStairs(p), err
	},
	"door_frame": func(a kwArgs) (mesh.Geometry, error) {
		return frame(a, primitives.DoorFrame)
	},
	"window_frame": func(a kwArgs) (mesh.Geometry, error) {
		return frame(a, primitives.WindowFrame)
	},
	"arch_frame": func(a kwArgs) (mesh.Geometry, error) {
		var n int
		if err := a.countInto("segments", 8, &n); err != nil {
			return mesh.Geometry{}, err
		}
		return frame(a, func(w, h, t, d float64) mesh.Geometry {
			return primitives.ArchFrame(w, h, t, d, n)
		})
	},
}

func dims3(a kwArgs, build func(w, h, d float64) mesh.Geometry) (mesh.Geometry, error) {
	var w, h, d float64
	err := firstErr(
		a.numInto("width", 1, &w),
		a.numInto("height", 1, &h),
		a.numInto("depth", 1, &d),
	)
	return build(w, h, d), err
}

func frame(a kwArgs, build func(w, h, t, d float64) mesh.Geometry) (mesh.Geometry, error) {
	var w, h, t, d float64
	err := firstErr(
		a.numInto("width", 1, &w),
		a.numInto("height", 2, &h),
		a.numInto("thickness", 0.1, &t),
		a.numInto("depth", 0.2, &d),
	)
	return build(w, h, t, d), err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a kwArgs) numInto(name string, def float64, dst *float64) error {
	f, err := a.num(name, def)
	*dst = f
	return err
}

func (a kwArgs) countInto(name string, def int, dst *int) error {
	n, err := a.count(name, def)
	*dst = n
	return err
}

// flagInto reads a boolean keyword. A bare trailing keyword counts as true.
func (a kwArgs) flagInto(name string, dst *bool) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case *zygo.SexpBool:
		*dst = x.Val
	case *zygo.SexpSentinel:
		*dst = x == zygo.SexpNull
	default:
		return fmt.Errorf("%s: expected true or false, got %s", name, v.SexpString(nil))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scene
// ---------------------------------------------------------------------------

// (defmesh "name" geometry)
func (b *builtins) defmesh(a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("expected name and geometry, got %d arguments", len(a.positional))
	}
	name, err := toString(a.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("name: %w", err)
	}
	g, ok := a.positional[1].(*sexpGeometry)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("expected geometry, got %s", a.positional[1].SexpString(nil))
	}
	m, err := b.scene.AddGeometry(name, g.g)
	if err != nil {
		return zygo.SexpNull, err
	}
	if b.defaults.Shading != "" {
		m.Shading = b.defaults.Shading
	}
	return &sexpMeshRef{id: m.ID, name: m.Name}, nil
}

// (mesh "name")
func (b *builtins) lookupMesh(a kwArgs) (zygo.Sexp, error) {
	s, err := a.arg(0, "name")
	if err != nil {
		return zygo.SexpNull, err
	}
	name, err := toString(s)
	if err != nil {
		return zygo.SexpNull, err
	}
	m := b.scene.Lookup(name)
	if m == nil {
		return zygo.SexpNull, fmt.Errorf("%w: %q", scene.ErrMeshNotFound, name)
	}
	return &sexpMeshRef{id: m.ID, name: m.Name}, nil
}

// target resolves the mesh reference in the first positional argument.
func (b *builtins) target(a kwArgs) (*sexpMeshRef, *mesh.Mesh, error) {
	s, err := a.arg(0, "mesh")
	if err != nil {
		return nil, nil, err
	}
	ref, ok := s.(*sexpMeshRef)
	if !ok {
		return nil, nil, fmt.Errorf("expected mesh, got %s", s.SexpString(nil))
	}
	m := b.scene.Get(ref.id)
	if m == nil {
		return nil, nil, fmt.Errorf("%w: %q", scene.ErrMeshNotFound, ref.name)
	}
	return ref, m, nil
}

// ids reads positional argument i as one id or a list of ids.
func ids[T ~string](a kwArgs, i int, what string) ([]T, error) {
	s, err := a.arg(i, what)
	if err != nil {
		return nil, err
	}
	out, err := toIDs[T](s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return out, nil
}

// (faces m) or (faces m :facing (vec3 0 1 0))
func (b *builtins) faces(a kwArgs) (zygo.Sexp, error) {
	_, m, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	var out []mesh.FaceID
	dir, hasDir := a.kw["facing"]
	if !hasDir {
		for _, f := range m.Faces {
			out = append(out, f.ID)
		}
		return idList(out), nil
	}
	d, err := toVec3(dir)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("facing: %w", err)
	}
	d = geom.Normalize(d)
	for i := range m.Faces {
		f := &m.Faces[i]
		if m.FaceNormal(f).Dot(d) >= 1-facingTolerance {
			out = append(out, f.ID)
		}
	}
	return idList(out), nil
}

// (face-edges m face)
func (b *builtins) faceEdges(a kwArgs) (zygo.Sexp, error) {
	_, m, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	fids, err := ids[mesh.FaceID](a, 1, "face")
	if err != nil {
		return zygo.SexpNull, err
	}
	var out []mesh.EdgeID
	seen := make(map[mesh.EdgeID]bool)
	for _, id := range fids {
		f := m.Face(id)
		if f == nil {
			return zygo.SexpNull, fmt.Errorf("%w: face %s", ops.ErrStaleReference, id)
		}
		for _, e := range mesh.EdgesOfFace(f) {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return idList(out), nil
}

// (face-near m point) returns the face whose centroid is closest to point.
func (b *builtins) faceNear(a kwArgs) (zygo.Sexp, error) {
	_, m, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	p, err := b.point(a, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	best, bestD := mesh.FaceID(""), math.Inf(1)
	for i := range m.Faces {
		if d := geom.Distance(m.FaceCentroid(&m.Faces[i]), p); d < bestD {
			best, bestD = m.Faces[i].ID, d
		}
	}
	if best == "" {
		return zygo.SexpNull, fmt.Errorf("mesh %q has no faces", m.Name)
	}
	return &zygo.SexpStr{S: string(best)}, nil
}

// (edge-near m point) returns the edge whose midpoint is closest to point.
func (b *builtins) edgeNear(a kwArgs) (zygo.Sexp, error) {
	_, m, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	p, err := b.point(a, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	best, bestD := mesh.EdgeID(""), math.Inf(1)
	for _, e := range m.Edges {
		ends := m.Positions(e.VertexIDs[:])
		if d := geom.Distance(geom.Lerp(ends[0], ends[1], 0.5), p); d < bestD {
			best, bestD = e.ID, d
		}
	}
	if best == "" {
		return zygo.SexpNull, fmt.Errorf("mesh %q has no edges", m.Name)
	}
	return &zygo.SexpStr{S: string(best)}, nil
}

// (vertex-near m point)
func (b *builtins) vertexNear(a kwArgs) (zygo.Sexp, error) {
	_, m, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	p, err := b.point(a, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	best, bestD := mesh.VertexID(""), math.Inf(1)
	for _, v := range m.Vertices {
		if d := geom.Distance(v.Position, p); d < bestD {
			best, bestD = v.ID, d
		}
	}
	if best == "" {
		return zygo.SexpNull, fmt.Errorf("mesh %q has no vertices", m.Name)
	}
	return &zygo.SexpStr{S: string(best)}, nil
}

func (b *builtins) point(a kwArgs, i int) (geom.Vec3, error) {
	s, err := a.arg(i, "point")
	if err != nil {
		return geom.Vec3{}, err
	}
	return toVec3(s)
}

// ---------------------------------------------------------------------------
// Edits
// ---------------------------------------------------------------------------

// edit runs fn as an undoable command on the mesh and returns its reference
// so edits can be chained.
func (b *builtins) edit(ref *sexpMeshRef, label string, fn func(m *mesh.Mesh) error) (zygo.Sexp, error) {
	if err := b.history.Execute(ref.id, history.Func{Label: label, Fn: fn}); err != nil {
		return zygo.SexpNull, err
	}
	return ref, nil
}

// faceEdit is the shape of (op m faces ...).
func (b *builtins) faceEdit(a kwArgs, label string, fn func(m *mesh.Mesh, ids []mesh.FaceID) error) (zygo.Sexp, error) {
	ref, _, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	fids, err := ids[mesh.FaceID](a, 1, "faces")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edit(ref, label, func(m *mesh.Mesh) error { return fn(m, fids) })
}

// edgeEdit is the shape of (op m edges ...).
func (b *builtins) edgeEdit(a kwArgs, label string, fn func(m *mesh.Mesh, ids []mesh.EdgeID) error) (zygo.Sexp, error) {
	ref, _, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	eids, err := ids[mesh.EdgeID](a, 1, "edges")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edit(ref, label, func(m *mesh.Mesh) error { return fn(m, eids) })
}

// (extrude m faces :distance 1)
func (b *builtins) extrude(a kwArgs) (zygo.Sexp, error) {
	d, err := a.num("distance", 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.faceEdit(a, "extrude", func(m *mesh.Mesh, fids []mesh.FaceID) error {
		_, err := ops.ExtrudeFaces(m, fids, d)
		return err
	})
}

// (inset m faces :amount 0.1 :depth 0)
func (b *builtins) inset(a kwArgs) (zygo.Sexp, error) {
	var amount, depth float64
	if err := firstErr(a.numInto("amount", 0.1, &amount), a.numInto("depth", 0, &depth)); err != nil {
		return zygo.SexpNull, err
	}
	return b.faceEdit(a, "inset", func(m *mesh.Mesh, fids []mesh.FaceID) error {
		_, err := ops.InsetFaces(m, fids, amount, depth)
		return err
	})
}

// (bevel-faces m faces :width 0.1 :depth 0.1)
func (b *builtins) bevelFaces(a kwArgs) (zygo.Sexp, error) {
	var width, depth float64
	if err := firstErr(a.numInto("width", 0.1, &width), a.numInto("depth", 0.1, &depth)); err != nil {
		return zygo.SexpNull, err
	}
	return b.faceEdit(a, "bevel faces", func(m *mesh.Mesh, fids []mesh.FaceID) error {
		_, err := ops.BevelFaces(m, fids, width, depth)
		return err
	})
}

// bevelEdit runs an edge bevel and turns skipped edges into warnings.
func (b *builtins) bevelEdit(a kwArgs, label string, fn func(m *mesh.Mesh, ids []mesh.EdgeID) (ops.BevelResult, error)) (zygo.Sexp, error) {
	var skipped []mesh.EdgeID
	out, err := b.edgeEdit(a, label, func(m *mesh.Mesh, eids []mesh.EdgeID) error {
		res, err := fn(m, eids)
		skipped = res.Skipped
		return err
	})
	if err == nil && len(skipped) > 0 {
		ref := out.(*sexpMeshRef)
		b.warnings = append(b.warnings, EvalWarning{
			Mesh:    ref.name,
			Message: fmt.Sprintf("%s: skipped %d edges", label, len(skipped)),
		})
	}
	return out, err
}

// (bevel m edges :width 0.1 :segments 1 :round)
func (b *builtins) bevel(a kwArgs) (zygo.Sexp, error) {
	var opts ops.BevelOptions
	if err := firstErr(
		a.numInto("width", 0.1, &opts.Width),
		a.countInto("segments", 1, &opts.Segments),
		a.flagInto("round", &opts.Round),
	); err != nil {
		return zygo.SexpNull, err
	}
	return b.bevelEdit(a, "bevel", func(m *mesh.Mesh, eids []mesh.EdgeID) (ops.BevelResult, error) {
		return ops.BevelEdges(m, eids, opts)
	})
}

// (chamfer m edges :width 0.1)
func (b *builtins) chamfer(a kwArgs) (zygo.Sexp, error) {
	w, err := a.num("width", 0.1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.bevelEdit(a, "chamfer", func(m *mesh.Mesh, eids []mesh.EdgeID) (ops.BevelResult, error) {
		return ops.ChamferEdges(m, eids, w)
	})
}

// (fillet m edges :radius 0.1 :divisions 4)
func (b *builtins) fillet(a kwArgs) (zygo.Sexp, error) {
	var r float64
	var div int
	if err := firstErr(a.numInto("radius", 0.1, &r), a.countInto("divisions", b.defaults.FilletDivisions, &div)); err != nil {
		return zygo.SexpNull, err
	}
	return b.bevelEdit(a, "fillet", func(m *mesh.Mesh, eids []mesh.EdgeID) (ops.BevelResult, error) {
		return ops.FilletEdges(m, eids, r, div)
	})
}

// (loop-cut m edge :cuts 1)
func (b *builtins) loopCut(a kwArgs) (zygo.Sexp, error) {
	cuts, err := a.count("cuts", b.defaults.LoopCutSegments)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edgeEdit(a, "loop cut", func(m *mesh.Mesh, eids []mesh.EdgeID) error {
		if len(eids) != 1 {
			return fmt.Errorf("expected one edge, got %d", len(eids))
		}
		_, err := ops.LoopCut(m, eids[0], cuts)
		return err
	})
}

// (subdivide m edges :cuts 1)
func (b *builtins) subdivide(a kwArgs) (zygo.Sexp, error) {
	cuts, err := a.count("cuts", 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edgeEdit(a, "subdivide", func(m *mesh.Mesh, eids []mesh.EdgeID) error {
		_, err := ops.SubdivideEdges(m, eids, cuts)
		return err
	})
}

// (split-edge m edge :at 0.5)
func (b *builtins) splitEdge(a kwArgs) (zygo.Sexp, error) {
	t, err := a.num("at", 0.5)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edgeEdit(a, "split edge", func(m *mesh.Mesh, eids []mesh.EdgeID) error {
		for _, id := range eids {
			if _, err := ops.SplitEdgeAt(m, id, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// (knife m (list p1 p2 ...)) cuts along surface points. Each point is
// assigned the face containing it.
func (b *builtins) knife(a kwArgs) (zygo.Sexp, error) {
	ref, _, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	s, err := a.arg(1, "points")
	if err != nil {
		return zygo.SexpNull, err
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return zygo.SexpNull, err
	}
	pts := make([]geom.Vec3, len(items))
	for i, item := range items {
		if pts[i], err = toVec3(item); err != nil {
			return zygo.SexpNull, fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return b.edit(ref, "knife", func(m *mesh.Mesh) error {
		kps := make([]ops.KnifePoint, len(pts))
		for i, p := range pts {
			f := faceContaining(m, p)
			if f == "" {
				return fmt.Errorf("point %d %v is not on the surface", i+1, p)
			}
			kps[i] = ops.KnifePoint{Position: p, FaceID: f}
		}
		_, err := ops.Knife(m, kps)
		return err
	})
}

// faceContaining returns the first face whose plane holds p and whose
// polygon winds around it, or "" if there is none.
func faceContaining(m *mesh.Mesh, p geom.Vec3) mesh.FaceID {
	const planeTol = 1e-5
	for i := range m.Faces {
		f := &m.Faces[i]
		pts := m.Positions(f.VertexIDs)
		n := mesh.PolygonNormal(pts)
		if math.Abs(p.Sub(pts[0]).Dot(n)) > planeTol {
			continue
		}
		var winding float64
		for j := range pts {
			u, v := pts[j].Sub(p), pts[(j+1)%len(pts)].Sub(p)
			if u.Length() < planeTol || v.Length() < planeTol {
				return f.ID // on a corner
			}
			winding += math.Atan2(u.Cross(v).Dot(n), u.Dot(v))
		}
		if math.Abs(winding) > math.Pi {
			return f.ID
		}
	}
	return ""
}

// (merge m vertices :mode :center)
func (b *builtins) merge(a kwArgs) (zygo.Sexp, error) {
	ref, _, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	vids, err := ids[mesh.VertexID](a, 1, "vertices")
	if err != nil {
		return zygo.SexpNull, err
	}
	mode, err := b.mergeMode(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edit(ref, "merge", func(m *mesh.Mesh) error {
		_, err := ops.MergeVertices(m, vids, mode)
		return err
	})
}

// (merge-by-distance m :distance 0.0001) welds the whole mesh, or only the
// vertices given as a second argument.
func (b *builtins) mergeByDistance(a kwArgs) (zygo.Sexp, error) {
	ref, _, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	var vids []mesh.VertexID
	if len(a.positional) > 1 {
		if vids, err = ids[mesh.VertexID](a, 1, "vertices"); err != nil {
			return zygo.SexpNull, err
		}
	}
	dist, err := a.num("distance", b.defaults.MergeDistance)
	if err != nil {
		return zygo.SexpNull, err
	}
	mode, err := b.mergeMode(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edit(ref, "merge by distance", func(m *mesh.Mesh) error {
		_, err := ops.MergeVerticesByDistance(m, vids, dist, mode)
		return err
	})
}

func (b *builtins) mergeMode(a kwArgs) (ops.MergeMode, error) {
	v, ok := a.kw["mode"]
	if !ok {
		return ops.MergeCenter, nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("mode: %w", err)
	}
	return ops.ParseMergeMode(s)
}

func (b *builtins) deleteFaces(a kwArgs) (zygo.Sexp, error) {
	return b.faceEdit(a, "delete faces", ops.DeleteFaces)
}

func (b *builtins) deleteEdges(a kwArgs) (zygo.Sexp, error) {
	return b.edgeEdit(a, "delete edges", ops.DeleteEdges)
}

func (b *builtins) deleteVertices(a kwArgs) (zygo.Sexp, error) {
	ref, _, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	vids, err := ids[mesh.VertexID](a, 1, "vertices")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.edit(ref, "delete vertices", func(m *mesh.Mesh) error {
		return ops.DeleteVertices(m, vids)
	})
}

func (b *builtins) flip(a kwArgs) (zygo.Sexp, error) {
	return b.faceEdit(a, "flip", ops.FlipFaces)
}

// (mark-seams m edges) or (mark-seams m edges :clear)
func (b *builtins) markSeams(a kwArgs) (zygo.Sexp, error) {
	var clear bool
	if err := a.flagInto("clear", &clear); err != nil {
		return zygo.SexpNull, err
	}
	return b.edgeEdit(a, "mark seams", func(m *mesh.Mesh, eids []mesh.EdgeID) error {
		return ops.MarkSeams(m, eids, !clear)
	})
}

// gesture runs a scripted transform over the vertices of :faces, or the
// whole mesh when no faces are given.
func (b *builtins) gesture(a kwArgs, kind transform.Kind, p transform.Params) (zygo.Sexp, error) {
	ref, m, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	lock := transform.AxisNone
	if v, ok := a.kw["axis"]; ok {
		s, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("axis: %w", err)
		}
		if lock, err = transform.ParseAxisLock(s); err != nil {
			return zygo.SexpNull, err
		}
	}

	var vids []mesh.VertexID
	if v, ok := a.kw["faces"]; ok {
		fids, err := toIDs[mesh.FaceID](v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("faces: %w", err)
		}
		seen := make(map[mesh.VertexID]bool)
		for _, id := range fids {
			f := m.Face(id)
			if f == nil {
				return zygo.SexpNull, fmt.Errorf("%w: face %s", ops.ErrStaleReference, id)
			}
			for _, vid := range f.VertexIDs {
				if !seen[vid] {
					seen[vid] = true
					vids = append(vids, vid)
				}
			}
		}
	} else {
		for _, v := range m.Vertices {
			vids = append(vids, v.ID)
		}
	}

	g, err := transform.Begin(m, kind, vids, lock)
	if err != nil {
		return zygo.SexpNull, err
	}
	if _, err := g.Update(p); err != nil {
		return zygo.SexpNull, err
	}
	if err := b.history.Execute(ref.id, g); err != nil {
		return zygo.SexpNull, err
	}
	return ref, nil
}

// (move m (vec3 1 0 0) :axis :x :faces fs)
func (b *builtins) move(a kwArgs) (zygo.Sexp, error) {
	d, err := b.point(a, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.gesture(a, transform.Move, transform.Params{Delta: d})
}

// (rotate m 90 :axis :y) rotates by degrees about the selection centroid.
func (b *builtins) rotate(a kwArgs) (zygo.Sexp, error) {
	s, err := a.arg(1, "angle")
	if err != nil {
		return zygo.SexpNull, err
	}
	deg, err := toFloat64(s)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("angle: %w", err)
	}
	return b.gesture(a, transform.Rotate, transform.Params{Angle: deg * math.Pi / 180})
}

// (scale m 2) or (scale m (vec3 1 2 1))
func (b *builtins) scale(a kwArgs) (zygo.Sexp, error) {
	s, err := a.arg(1, "factor")
	if err != nil {
		return zygo.SexpNull, err
	}
	var f geom.Vec3
	if v, ok := s.(*sexpVec3); ok {
		f = v.vec
	} else {
		n, err := toFloat64(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("factor: %w", err)
		}
		f = transform.UniformScale(n)
	}
	return b.gesture(a, transform.Scale, transform.Params{Scale: f})
}

func (b *builtins) shading(mode mesh.Shading) builtinFunc {
	return func(a kwArgs) (zygo.Sexp, error) {
		ref, _, err := b.target(a)
		if err != nil {
			return zygo.SexpNull, err
		}
		return b.edit(ref, "shade "+string(mode), func(m *mesh.Mesh) error {
			m.Shading = mode
			return nil
		})
	}
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

// (solid-box (vec3 1 2 3))
func (b *builtins) solidBox(a kwArgs) (zygo.Sexp, error) {
	size, err := b.point(a, 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("size: %w", err)
	}
	return &sexpSolid{s: b.kernel.Box(size.X, size.Y, size.Z)}, nil
}

// (solid-sphere :radius 1)
func (b *builtins) solidSphere(a kwArgs) (zygo.Sexp, error) {
	r, err := a.num("radius", 0.5)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{s: b.kernel.Sphere(r)}, nil
}

// (solid-cylinder :height 1 :radius 0.5)
func (b *builtins) solidCylinder(a kwArgs) (zygo.Sexp, error) {
	var h, r float64
	if err := firstErr(a.numInto("height", 1, &h), a.numInto("radius", 0.5, &r)); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{s: b.kernel.Cylinder(h, r)}, nil
}

func (b *builtins) boolean(op func(x, y kernel.Solid) kernel.Solid) builtinFunc {
	return func(a kwArgs) (zygo.Sexp, error) {
		if len(a.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("expected at least 2 solids, got %d", len(a.positional))
		}
		acc, err := toSolid(a.positional[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		for _, s := range a.positional[1:] {
			next, err := toSolid(s)
			if err != nil {
				return zygo.SexpNull, err
			}
			acc = op(acc, next)
		}
		return &sexpSolid{s: acc}, nil
	}
}

// (translate solid (vec3 x y z))
func (b *builtins) translate(a kwArgs) (zygo.Sexp, error) {
	return b.placeSolid(a, b.kernel.Translate)
}

// (turn solid (vec3 rx ry rz)) rotates by Euler angles in degrees.
func (b *builtins) turn(a kwArgs) (zygo.Sexp, error) {
	return b.placeSolid(a, b.kernel.Rotate)
}

func (b *builtins) placeSolid(a kwArgs, place func(kernel.Solid, geom.Vec3) kernel.Solid) (zygo.Sexp, error) {
	s, err := a.arg(0, "solid")
	if err != nil {
		return zygo.SexpNull, err
	}
	solid, err := toSolid(s)
	if err != nil {
		return zygo.SexpNull, err
	}
	v, err := b.point(a, 1)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{s: place(solid, v)}, nil
}

// (defsolid "name" solid) tessellates the solid into an editable mesh.
func (b *builtins) defsolid(a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("expected name and solid, got %d arguments", len(a.positional))
	}
	name, err := toString(a.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("name: %w", err)
	}
	solid, err := toSolid(a.positional[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	m, err := tessellate.Import(b.kernel, solid, name, b.weld)
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := b.scene.Add(m); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpMeshRef{id: m.ID, name: m.Name}, nil
}
