package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chazu/facade/pkg/building"
	"github.com/chazu/facade/pkg/engine"
	"github.com/chazu/facade/pkg/kernel"
	"github.com/chazu/facade/pkg/kernel/sdfx"
	"github.com/chazu/facade/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the whole pipeline: script or design, generation,
// tessellation and delivery into the part registry.
type App struct {
	engine   *engine.Engine
	kernel   kernel.Kernel
	registry *building.Registry
}

// MeshData is the JSON-serializable mesh format handed to viewers.
type MeshData struct {
	ID       string    `json:"id"`
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return NewAppWithKernel(sdfx.New())
}

// NewAppWithKernel creates an App that builds solids with k.
func NewAppWithKernel(k kernel.Kernel) *App {
	return &App{
		engine:   engine.NewEngine(),
		kernel:   k,
		registry: building.NewRegistry(),
	}
}

// Registry returns the registry holding the latest delivered parts.
func (a *App) Registry() *building.Registry {
	return a.registry
}

// Evaluate takes building script source and returns mesh data + errors.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	logger := log.FromContext(ctx)

	// Step 1: Evaluate the script into designs.
	designs, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logger.Error("evaluate failed", "err", err)
		result := newEvalResult()
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		result := newEvalResult()
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	return a.Generate(ctx, designs...)
}

// Generate builds every design, tessellates the parts and delivers them
// to the registry. Part names are qualified with the design name, as in
// "tower/walls". If any design fails nothing is delivered and the
// registry keeps the previous result.
func (a *App) Generate(ctx context.Context, designs ...building.Design) EvalResult {
	logger := log.FromContext(ctx)
	result := newEvalResult()

	var parts []building.Part
	for _, d := range designs {
		res, err := building.Generate(ctx, d, a.kernel)
		if err != nil {
			logger.Error("generate failed", "building", d.Name, "err", err)
			for _, e := range splitErrors(err) {
				result.Errors = append(result.Errors, EvalErrorData{Message: fmt.Sprintf("%s: %v", d.Name, e)})
			}
			continue
		}
		for _, w := range res.Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: fmt.Sprintf("%s: %s", d.Name, w)})
		}
		for _, p := range res.Parts {
			parts = append(parts, building.Part{Name: d.Name + "/" + p.Name, Mesh: p.Mesh})
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	// Step 3: Deliver the parts, replacing the previous result.
	ids := make(map[string]string, len(parts))
	for _, h := range a.registry.Replace(parts) {
		ids[h.Part.Name] = h.ID.String()
	}

	// Step 4: Convert the tessellated parts to MeshData.
	for i, b := range tessellate.Tessellate(parts) {
		result.Meshes = append(result.Meshes, MeshData{
			ID:       ids[b.PartName],
			Vertices: b.Vertices,
			Normals:  b.Normals,
			Indices:  b.Indices,
			PartName: b.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	logger.Debug("delivered", "designs", len(designs), "meshes", len(result.Meshes))
	return result
}

// splitErrors unpacks errors joined with errors.Join so that every
// validation failure is reported on its own.
func splitErrors(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
