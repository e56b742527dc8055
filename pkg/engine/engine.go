// Package engine runs modeling scripts. It wraps the zygomys Lisp
// interpreter in a sandbox whose builtins build meshes from primitives,
// apply edit operators through an undo history and import kernel solids.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/facet/internal/logger"
	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/scene"
)

// EvalError is a non-fatal error in user code, such as a parse error or a
// failing builtin.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is advisory output of an evaluation, such as bevel edges
// that had to be skipped.
type EvalWarning struct {
	Mesh    string
	Message string
}

// EvalResult is the full output of a successful evaluation.
type EvalResult struct {
	Scene    *scene.Scene
	History  *history.History
	Warnings []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the evaluation time limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithKernel sets the solid kernel used by the solid builtins and the
// distance under which imported vertices are welded.
func WithKernel(k kernel.Kernel, weldTolerance float64) Option {
	return func(e *Engine) {
		e.kernel = k
		e.weld = weldTolerance
	}
}

// EditDefaults are the values builtins fall back to when a script omits an
// argument.
type EditDefaults struct {
	Shading         mesh.Shading
	MergeDistance   float64
	FilletDivisions int
	LoopCutSegments int
}

// DefaultEditDefaults returns the built-in fallbacks.
func DefaultEditDefaults() EditDefaults {
	return EditDefaults{
		Shading:         mesh.ShadingFlat,
		MergeDistance:   1e-4,
		FilletDivisions: 4,
		LoopCutSegments: 1,
	}
}

// WithEditDefaults sets the fallbacks used by the edit builtins.
func WithEditDefaults(d EditDefaults) Option {
	return func(e *Engine) { e.defaults = d }
}

// WithHistoryLimit sets the undo depth recorded per evaluation.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) { e.historyLimit = n }
}

// Engine evaluates modeling scripts. It is safe for concurrent use; each
// evaluation runs in a fresh sandbox so results are deterministic.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout      time.Duration
	kernel       kernel.Kernel
	weld         float64
	historyLimit int
	defaults     EditDefaults
}

// NewEngine returns an engine with the sdfx kernel and default limits.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:  DefaultEvalTimeout,
		kernel:   sdfx.New(sdfx.DefaultMeshCells),
		weld:     1e-6,
		defaults: DefaultEditDefaults(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the scene it built.
//
// Return semantics:
//   - On success: scene, nil, nil
//   - On parse or runtime failure in user code: nil, eval errors, nil
//   - On fatal failure (timeout, panic, superseded): nil, nil, error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	res, evalErrs, err := e.Run(source)
	if res == nil {
		return nil, evalErrs, err
	}
	return res.Scene, evalErrs, err
}

// Run is Evaluate returning the full result, including the edit history.
func (e *Engine) Run(source string) (*EvalResult, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*EvalResult, []EvalError, error) {
	s := scene.New()
	res := &EvalResult{Scene: s, History: history.New(s, e.historyLimit)}

	if strings.TrimSpace(source) == "" {
		return res, nil, nil
	}

	// The sandbox denies filesystem and system calls to user code.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builtins{
		scene:    s,
		history:  res.History,
		kernel:   e.kernel,
		weld:     e.weld,
		defaults: e.defaults,
	}
	b.register(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	res.Warnings = b.warnings
	logger.Debug("script evaluated",
		zap.Int("meshes", s.MeshCount()),
		zap.Int("edits", res.History.Len()),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, pulling the
// line number out of the message when there is one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
