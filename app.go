package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/collidergen/pkg/collider"
	"github.com/chazu/collidergen/pkg/engine"
	"github.com/chazu/collidergen/pkg/importer"
	"github.com/chazu/collidergen/pkg/kernel"
	"github.com/chazu/collidergen/pkg/kernel/sdfx"
	"github.com/chazu/collidergen/pkg/prefs"
	"github.com/chazu/collidergen/pkg/preview"
	"github.com/chazu/collidergen/pkg/tessellate"
)

// importDirName is the directory, next to the imported file, that receives
// processed scenes.
const importDirName = "colliders"

// colorPalette is a default palette used to tell render meshes apart.
// Proxies use the fixed per-kind colors from the preview package.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx       context.Context
	prefs     *prefs.Store
	engine    *engine.Engine
	kernel    kernel.Kernel
	generator *collider.Generator
	// onToggle is called after the preference flips so the menu checkbox
	// can follow.
	onToggle func(on bool)
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Merged   int             `json:"merged"`
	Kept     int             `json:"kept"`
}

// ImportResult reports one ImportModel call.
type ImportResult struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Preview   string `json:"preview"`
	Merged    int    `json:"merged"`
	Kept      int    `json:"kept"`
	Destroyed int    `json:"destroyed"`
	Error     string `json:"error"`
}

// NewApp creates a new App whose generator is gated by store.
func NewApp(store *prefs.Store) *App {
	cfg := store.Prefs()
	return &App{
		prefs:  store,
		engine: engine.NewEngine(),
		kernel: sdfx.New(cfg.MeshCells),
		generator: &collider.Generator{
			Toggle:            store,
			RotationTolerance: cfg.RotationTolerance,
		},
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// ColliderGenerationEnabled reports the Better Collider Generation switch.
func (a *App) ColliderGenerationEnabled() bool {
	return a.prefs.Enabled()
}

// ToggleColliderGeneration flips and persists the switch and returns the
// new state.
func (a *App) ToggleColliderGeneration() (bool, error) {
	on, err := a.prefs.Toggle()
	if err != nil {
		log.Printf("Toggle collider generation: %v", err)
		return on, err
	}
	if a.onToggle != nil {
		a.onToggle(on)
	}
	return on, nil
}

// ImportModel runs the import hook on a scene file and writes the result to
// a colliders directory next to it.
func (a *App) ImportModel(path string) ImportResult {
	p := &importer.Pipeline{
		Prefs:     a.prefs,
		Generator: a.generator,
		Kernel:    a.kernel,
		OutputDir: filepath.Join(filepath.Dir(path), importDirName),
		Preview:   true,
	}
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := p.Import(ctx, path)
	if err != nil {
		log.Printf("Import %s: %v", path, err)
	}
	return ImportResult{
		Input:     res.Input,
		Output:    res.Output,
		Preview:   res.Preview,
		Merged:    res.Merged,
		Kept:      res.Kept,
		Destroyed: res.Destroyed,
		Error:     res.Error,
	}
}

// OpenAndImport asks for a scene file and imports it. The result is also
// emitted as an "import" event so menu-triggered imports reach the UI.
func (a *App) OpenAndImport() (ImportResult, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Import Model",
		Filters: []runtime.FileFilter{{
			DisplayName: "Scenes (*.yaml, *.json, *.scene)",
			Pattern:     "*.yaml;*.yml;*.json;*.scene;*.lisp",
		}},
	})
	if err != nil {
		return ImportResult{}, err
	}
	if path == "" {
		return ImportResult{}, nil
	}
	res := a.ImportModel(path)
	runtime.EventsEmit(a.ctx, "import", res)
	return res, nil
}

// Evaluate takes scene DSL source and returns mesh data + errors. When
// generation is on, marker nodes are converted first so the viewport shows
// the proxies the importer would produce.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: err.Error(),
		})
		return result
	}

	// Step 2: Convert eval errors to the frontend format.
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

	// Step 3: Generate proxies.
	report := a.generator.PostprocessModel(s)
	result.Merged = report.Count(collider.ActionMerged)
	result.Kept = report.Count(collider.ActionKept)

	// Step 4: Tessellate render geometry and proxies.
	meshes, err := tessellate.Tessellate(s, a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Convert kernel meshes to the frontend MeshData format.
	renderIdx := 0
	for _, m := range meshes {
		var color string
		if m.Kind.IsProxy() {
			c := preview.ColorFor(m.Kind)
			color = fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
		} else {
			color = colorPalette[renderIdx%len(colorPalette)]
			renderIdx++
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Kind:     string(m.Kind),
			Color:    color,
		})
	}

	return result
}
