package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sqlongithub/voxelbench/pkg/config"
	"github.com/sqlongithub/voxelbench/pkg/engine"
	"github.com/sqlongithub/voxelbench/pkg/gizmo"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/kernel/sdfx"
	"github.com/sqlongithub/voxelbench/pkg/provider"
	"github.com/sqlongithub/voxelbench/pkg/render"
	"github.com/sqlongithub/voxelbench/pkg/scene"
	"github.com/sqlongithub/voxelbench/pkg/selection"
	"github.com/sqlongithub/voxelbench/pkg/tessellate"
	"github.com/sqlongithub/voxelbench/pkg/viewport"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings may arrive on different goroutines, so every one holds mu.
type App struct {
	ctx    context.Context
	mu     sync.Mutex
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	models *provider.Provider

	graph     *scene.Graph
	view      *viewport.Viewport
	hover     string
	showHulls bool
	hulls     hullCache
}

// hullCache holds the last tessellated pick volumes. They only change when
// the controller rebuilds its handles or drops the selection.
type hullCache struct {
	ctrl     *selection.Controller
	selected *render.Object
	builds   int
	handles  int
	items    []render.DrawItem
}

func (c *hullCache) fresh(ctrl *selection.Controller) bool {
	return c.ctrl == ctrl && c.selected == ctrl.SelectedObject() && c.builds == ctrl.HandleBuilds() && c.handles == len(ctrl.Handles())
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is returned by Evaluate.
type EvalResult struct {
	Nodes    int             `json:"nodes"`
	Selected string          `json:"selected,omitempty"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NodeData is one row of the hierarchy panel.
type NodeData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Parent   string `json:"parent,omitempty"`
	Depth    int    `json:"depth"`
	Selected bool   `json:"selected"`
	Age      string `json:"age"`
}

// FrameData is everything the frontend draws for one frame.
type FrameData struct {
	Items      []render.DrawItem `json:"items"`
	Hulls      []render.DrawItem `json:"hulls,omitempty"`
	Selected   string            `json:"selected,omitempty"`
	State      string            `json:"state"`
	Hover      string            `json:"hover,omitempty"`
	Background string            `json:"background"`
}

// NewApp creates an App with an empty scene.
func NewApp(cfg config.Config) *App {
	a := &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
	a.models = provider.New(scene.New())
	a.models.SetColor(uint32(cfg.Colors.Node))
	a.replaceGraph(scene.New())
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// LoadModels registers the block models found in dir.
func (a *App) LoadModels(dir string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := a.models.LoadModels(os.DirFS(dir))
	if err != nil {
		return n, err
	}
	a.replaceGraph(a.graph)
	return n, nil
}

// replaceGraph points the viewport at g. Callers hold mu.
func (a *App) replaceGraph(g *scene.Graph) {
	if a.view != nil {
		a.view.Close()
	}
	a.graph = g
	a.view = viewport.New(g, a.models.For(g), a.kernel, a.cfg.ViewportOptions())
	a.hover = ""
}

// Evaluate runs a scene script and shows the result. The selection carries
// over when the selected node still exists.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		slog.Error("Evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	for _, v := range scene.Validate(g) {
		d := EvalErrorData{Message: v.Error()}
		if v.Severity == scene.SeverityError {
			result.Errors = append(result.Errors, d)
		} else {
			result.Warnings = append(result.Warnings, d)
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	if prev := a.graph.Selected(); g.Selected().IsZero() && g.Has(prev) {
		if err := g.SelectNode(prev); err != nil {
			slog.Warn("Could not restore selection", "node", prev.Short(), "error", err)
		}
	}
	a.replaceGraph(g)
	slog.Info("Scene loaded", "nodes", g.Len(), "renderables", a.view.Len())

	result.Nodes = g.Len()
	result.Selected = string(g.Selected())
	return result
}

// Hierarchy lists the scene depth first.
func (a *App) Hierarchy() []NodeData {
	a.mu.Lock()
	defer a.mu.Unlock()

	sel := a.graph.Selected()
	rows := []NodeData{}
	a.graph.Walk(func(n scene.SceneNode, depth int) bool {
		rows = append(rows, NodeData{
			ID:       string(n.UUID),
			Name:     n.Name,
			Type:     n.Type.String(),
			Parent:   string(n.Parent),
			Depth:    depth,
			Selected: n.UUID == sel,
			Age:      humanize.Time(n.Created()),
		})
		return true
	})
	return rows
}

// SelectNode selects a node by id.
func (a *App) SelectNode(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph.SelectNode(scene.NodeID(id))
}

// DeselectNode clears the selection.
func (a *App) DeselectNode() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.graph.DeselectNode()
}

// PointerDown handles a click at pixel (x, y) of a w×h viewport. A click on a
// gizmo handle returns the axis and leaves the selection alone; otherwise the
// node under the pointer is selected, or the selection cleared on a miss.
func (a *App) PointerDown(x, y, w, h float64) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ray, ok := a.view.RayAt(x, y, w, h)
	if !ok {
		return ""
	}
	if hit := a.view.PickAxis(ray); hit.Found {
		a.hover = hit.Axis.String()
		return a.hover
	}
	id, ok := a.view.PickObject(ray)
	if !ok {
		a.graph.DeselectNode()
		return ""
	}
	if err := a.graph.SelectNode(id); err != nil {
		slog.Warn("Pick selected a stale node", "node", id.Short(), "error", err)
	}
	return ""
}

// HoverAxis reports the handle under the pointer, or "" when none.
func (a *App) HoverAxis(x, y, w, h float64) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.hover = ""
	if axis, ok := a.view.ActiveAxis(x, y, w, h); ok {
		a.hover = axis.String()
	}
	return a.hover
}

// DragAxis moves the selected node by amount along axis, snapped according
// to its transform.
func (a *App) DragAxis(axis string, amount float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ax, ok := gizmo.ParseAxis(axis)
	if !ok {
		return fmt.Errorf("unknown axis %q", axis)
	}
	id := a.graph.Selected()
	if id.IsZero() {
		return fmt.Errorf("drag %s: nothing selected", axis)
	}
	tr, ok := a.graph.Transform(id)
	if !ok {
		return fmt.Errorf("drag %s: %w", id.Short(), scene.ErrNotFound)
	}
	switch ax {
	case gizmo.Forward:
		tr.Position.X = scene.SnapPosition(tr, tr.Position.X+amount)
	case gizmo.Up:
		tr.Position.Y = scene.SnapPosition(tr, tr.Position.Y+amount)
	case gizmo.Right:
		tr.Position.Z = scene.SnapPosition(tr, tr.Position.Z+amount)
	}
	return a.graph.SetTransform(id, tr)
}

// ScaleSelected rescales the selected node to value, snapped onto one of the
// node type's tiers. It returns the scale applied. Handles resize on the
// next Tick.
func (a *App) ScaleSelected(value float64) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.graph.Selected()
	if id.IsZero() {
		return 0, fmt.Errorf("scale: nothing selected")
	}
	n, ok := a.graph.Node(id)
	if !ok {
		return 0, fmt.Errorf("scale %s: %w", id.Short(), scene.ErrNotFound)
	}
	tr, _ := a.graph.Transform(id)
	tr.Scale = scene.SnapScaleValue(n.Type, tr, value)
	if err := a.graph.SetTransform(id, tr); err != nil {
		return 0, err
	}
	return tr.Scale, nil
}

// SetShowHulls toggles drawing of the gizmo picking volumes.
func (a *App) SetShowHulls(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.showHulls = on
}

// Tick advances one frame and returns what to draw.
func (a *App) Tick() FrameData {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.view.Tick()
	var hulls []render.DrawItem
	if a.showHulls {
		hulls = a.currentHulls()
	}
	return FrameData{
		Hulls:      hulls,
		Items:      a.view.DrawList(),
		Selected:   string(a.graph.Selected()),
		State:      a.view.Controller().State().String(),
		Hover:      a.hover,
		Background: fmt.Sprintf("#%06x", a.cfg.Colors.Background),
	}
}

// currentHulls tessellates the pick volumes when the handles changed since
// the last call. Callers hold mu.
func (a *App) currentHulls() []render.DrawItem {
	ctrl := a.view.Controller()
	if a.hulls.fresh(ctrl) {
		return a.hulls.items
	}
	items, err := tessellate.Hulls(ctrl.Group(), a.kernel, tessellate.DefaultCells)
	if err != nil {
		slog.Warn("Failed to tessellate hulls", "error", err)
		return nil
	}
	a.hulls = hullCache{ctrl: ctrl, selected: ctrl.SelectedObject(), builds: ctrl.HandleBuilds(), handles: len(ctrl.Handles()), items: items}
	return items
}
