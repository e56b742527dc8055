package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chazu/facet/internal/config"
	"github.com/chazu/facet/internal/logger"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/scene"
	"github.com/chazu/facet/pkg/tessellate"
	"github.com/chazu/facet/pkg/transform"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine to the viewer-facing output: triangle buffers,
// errors and the scene file.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
	scene  *scene.Scene // last successfully evaluated scene
}

// MeshData is the JSON-serializable triangle mesh sent to a viewer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs"`
	Indices  []uint32  `json:"indices"`
	MeshName string    `json:"meshName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Edits    []string        `json:"edits"`
}

// NewApp creates an App configured by cfg. A nil cfg uses the defaults.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg: cfg,
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Engine.EvalTimeout),
			engine.WithKernel(sdfx.New(cfg.Kernel.MeshCells), cfg.Kernel.WeldTolerance),
			engine.WithHistoryLimit(cfg.Editor.HistoryLimit),
			engine.WithEditDefaults(engine.EditDefaults{
				Shading:         mesh.Shading(cfg.Editor.DefaultShading),
				MergeDistance:   cfg.Editor.MergeDistance,
				FilletDivisions: cfg.Editor.FilletDivisions,
				LoopCutSegments: cfg.Editor.LoopCutSegments,
			}),
		),
	}
}

// Evaluate runs source and returns triangle data for every visible mesh.
// Scene validation failures are reported as errors, advisory findings as
// warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
		Edits:    []string{},
	}

	res, evalErrs, err := a.engine.Run(source)
	if err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message: fmt.Sprintf("%s: %s", w.Mesh, w.Message),
		})
	}
	v := scene.ValidateAll(res.Scene)
	for _, e := range v.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: e.Error()})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	for i, m := range tessellate.TessellateScene(res.Scene) {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			UVs:      m.UVs,
			Indices:  m.Indices,
			MeshName: m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	result.Edits = append(result.Edits, res.History.Names()...)
	a.scene = res.Scene

	logger.Info("evaluated",
		zap.Int("meshes", len(result.Meshes)),
		zap.Int("edits", len(result.Edits)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result
}

// Scene returns the last successfully evaluated scene, or nil.
func (a *App) Scene() *scene.Scene { return a.scene }

// SaveScene writes the last evaluated scene as JSON to path.
func (a *App) SaveScene(path string) error {
	if a.scene == nil {
		return fmt.Errorf("no scene to save")
	}
	data, err := scene.Marshal(a.scene)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DragDelta converts a pointer drag into a world-space move using the
// configured sensitivity.
func (a *App) DragDelta(dx, dy float64, cam transform.Camera) geom.Vec3 {
	return transform.MouseToWorldDelta(dx, dy, cam, a.cfg.Editor.DragSensitivity)
}
