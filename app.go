package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/chazu/stereo/pkg/config"
	"github.com/chazu/stereo/pkg/engine"
	"github.com/chazu/stereo/pkg/metrics"
	"github.com/chazu/stereo/pkg/render"
	"github.com/chazu/stereo/pkg/scene"
	"github.com/chazu/stereo/pkg/store"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// SceneChangedEvent is emitted to the frontend after every scene mutation.
const SceneChangedEvent = "scene:changed"

// App is the Wails backend. It exposes methods to the frontend via bindings.
//
// Bound methods are called from arbitrary goroutines; mu serializes every
// access to the scene.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	engine *engine.Engine

	mu    sync.Mutex
	scene *scene.Registry
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Batches  []render.Batch  `json:"batches"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// TreeNode is one entity of the scene tree panel.
type TreeNode struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Children []TreeNode `json:"children"`
}

// NewApp creates a new App with an empty scene.
func NewApp(cfg *config.Config) *App {
	a := &App{
		cfg:    cfg,
		engine: engine.NewEngine(engine.WithTimeout(cfg.EvalTimeout)),
		scene:  scene.New(),
	}
	a.scene.Subscribe(a.sceneChanged)
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *App) sceneChanged() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, SceneChangedEvent)
}

// snapshot feeds the metrics collector.
func (a *App) snapshot() metrics.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return metrics.Take(a.scene)
}

// Evaluate runs a scene script. On success the resulting scene replaces the
// current one; on failure the current scene is kept and the errors are
// returned.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Batches:  []render.Batch{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	r, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
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

	a.mu.Lock()
	defer a.mu.Unlock()
	a.scene.Replace(r)
	for _, f := range scene.Validate(a.scene) {
		e := EvalErrorData{Message: f.Error()}
		if f.Severity == scene.SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Batches = append(result.Batches, render.Build(a.scene)...)
	return result
}

// Batches returns the draw geometry of the current scene.
func (a *App) Batches() []render.Batch {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]render.Batch{}, render.Build(a.scene)...)
}

// Tree returns the scene as a forest rooted at entities no other entity
// lists as a child.
func (a *App) Tree() []TreeNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	nodes := []TreeNode{}
	for _, name := range a.scene.Roots() {
		nodes = append(nodes, a.node(a.scene.Get(name)))
	}
	return nodes
}

func (a *App) node(e *scene.Entity) TreeNode {
	n := TreeNode{Name: e.Name, Kind: e.Kind.String(), Children: []TreeNode{}}
	for _, c := range a.scene.Children(e.Name) {
		n.Children = append(n.Children, a.node(c))
	}
	return n
}

// Menu returns the creation menu.
func (a *App) Menu() []scene.MenuItem {
	return scene.CreationMenu()
}

// Create runs the creation command named by keyword.
func (a *App) Create(keyword string, values map[string]any) error {
	cmd := scene.FindCommand(keyword)
	if cmd == nil {
		return fmt.Errorf("%w: unknown command %q", scene.ErrInvalidArgument, keyword)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := cmd.Invoke(a.scene, fromJSON(values)); err != nil {
		log.Printf("Create %s: %v", keyword, err)
		return err
	}
	return nil
}

// EditableParams lists the parameters the edit panel shows for name.
func (a *App) EditableParams(name string) ([]scene.ParamSpec, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	specs, _, err := a.scene.EditableParams(name)
	return specs, err
}

// SetParams applies edited parameter values to name.
func (a *App) SetParams(name string, values map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, set, err := a.scene.EditableParams(name)
	if err != nil {
		return err
	}
	if err := set(fromJSON(values)); err != nil {
		log.Printf("SetParams %s: %v", name, err)
		return err
	}
	return nil
}

// Translate adds an offset to name.
func (a *App) Translate(name string, dx, dy, dz float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scene.Translate(name, dx, dy, dz)
}

// ApplyTranslation moves the points of name by its pending offset.
func (a *App) ApplyTranslation(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scene.ApplyTranslation(name)
}

// Save writes the scene to path, or to the configured scene path when
// path is empty.
func (a *App) Save(path string) error {
	path = a.path(path)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := store.SaveFile(a.context(), a.scene, path); err != nil {
		log.Printf("Save %s: %v", path, err)
		return err
	}
	log.Printf("Saved %d entities to %s", a.scene.Len(), path)
	return nil
}

// Load replaces the scene with the one stored at path, or at the
// configured scene path when path is empty.
func (a *App) Load(path string) error {
	path = a.path(path)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := store.LoadFile(a.context(), a.scene, path); err != nil {
		log.Printf("Load %s: %v", path, err)
		return err
	}
	log.Printf("Loaded %d entities from %s", a.scene.Len(), path)
	return nil
}

// ExportSTL writes every face of the scene to an STL file.
func (a *App) ExportSTL(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := render.ExportSTL(a.scene, path); err != nil {
		log.Printf("ExportSTL %s: %v", path, err)
		return err
	}
	return nil
}

func (a *App) path(p string) string {
	if p == "" {
		return a.cfg.ScenePath
	}
	return p
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// fromJSON converts values decoded from the frontend: JSON arrays arrive as
// []any and are turned into name lists.
func fromJSON(values map[string]any) scene.Values {
	v := make(scene.Values, len(values))
	for k, val := range values {
		if list, ok := val.([]any); ok {
			names := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					names = nil
					break
				}
				names = append(names, s)
			}
			if names != nil {
				v[k] = names
				continue
			}
		}
		v[k] = val
	}
	return v
}
