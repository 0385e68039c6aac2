// Package viewport keeps a renderable tree in step with a scene graph and
// routes selection and picking between them.
package viewport

import (
	"log/slog"
	"slices"

	"github.com/ErikKalkoken/go-set"
	"github.com/sqlongithub/voxelbench/pkg/gizmo"
	"github.com/sqlongithub/voxelbench/pkg/hittest"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/render"
	"github.com/sqlongithub/voxelbench/pkg/scene"
	"github.com/sqlongithub/voxelbench/pkg/selection"
)

// GeometryProvider builds and updates the renderable for a node.
type GeometryProvider interface {
	BuildRenderable(id scene.NodeID) (*render.Object, error)
	SyncRenderablePose(obj *render.Object, id scene.NodeID) error
}

// Options configures a viewport.
type Options struct {
	Selection  selection.Options
	March      kernel.MarchParams
	Camera     hittest.Camera
	Background uint32
}

// DefaultOptions returns the editor's startup settings.
func DefaultOptions() Options {
	return Options{
		Selection:  selection.DefaultOptions(),
		March:      kernel.DefaultMarchParams,
		Camera:     hittest.DefaultCamera(),
		Background: 0x111111,
	}
}

const subscriberKey = "viewport"

// Viewport owns the scene root, one renderable per node and the selection
// controller. Like the graph it is driven from a single loop.
type Viewport struct {
	graph    *scene.Graph
	provider GeometryProvider
	tester   *hittest.Tester
	ctrl     *selection.Controller
	opts     Options

	root    *render.Object
	objects map[scene.NodeID]*render.Object
	dirty   set.Set[scene.NodeID]
}

// New builds renderables for every node already in g and subscribes to its
// changes. Call Close to detach.
func New(g *scene.Graph, p GeometryProvider, k kernel.Kernel, opts Options) *Viewport {
	v := &Viewport{
		graph:    g,
		provider: p,
		tester:   hittest.New(k, opts.March),
		ctrl:     selection.New(k, opts.Selection),
		opts:     opts,
		root:     render.NewGroup("scene"),
		objects:  make(map[scene.NodeID]*render.Object),
	}
	v.root.Add(v.ctrl.Group())
	g.Walk(func(n scene.SceneNode, _ int) bool {
		v.addNode(n.UUID)
		return true
	})
	g.Subscribe(subscriberKey, v.handle)
	if sel := g.Selected(); !sel.IsZero() {
		v.SelectNode(sel)
	}
	return v
}

// Close stops following the graph.
func (v *Viewport) Close() {
	v.graph.Unsubscribe(subscriberKey)
}

func (v *Viewport) handle(e scene.Event) {
	switch e.Kind {
	case scene.NodeAdded:
		v.addNode(e.Node)
	case scene.NodeRemoved:
		v.removeNode(e.Node)
	case scene.TransformChanged, scene.NodeRenamed:
		v.dirty.Add(e.Node)
	case scene.Selected:
		v.SelectNode(e.Node)
	case scene.Deselected:
		v.DeselectNode()
	}
}

func (v *Viewport) addNode(id scene.NodeID) {
	if _, ok := v.objects[id]; ok {
		return
	}
	obj, err := v.provider.BuildRenderable(id)
	if err != nil {
		slog.Warn("Skipping node without renderable", "node", id.Short(), "error", err)
		return
	}
	if obj == nil {
		return
	}
	obj.NodeID = id
	v.root.Add(obj)
	v.objects[id] = obj
	slog.Debug("Added renderable", "node", id.Short(), "name", obj.Name)
}

func (v *Viewport) removeNode(id scene.NodeID) {
	obj, ok := v.objects[id]
	if !ok {
		return
	}
	if v.ctrl.SelectedObject() == obj {
		v.ctrl.ClearSelection()
	}
	obj.Dispose()
	delete(v.objects, id)
}

// Root returns the top of the renderable tree.
func (v *Viewport) Root() *render.Object { return v.root }

// Controller returns the selection controller.
func (v *Viewport) Controller() *selection.Controller { return v.ctrl }

// Camera returns the picking camera.
func (v *Viewport) Camera() hittest.Camera { return v.opts.Camera }

// SetCamera replaces the picking camera, e.g. after an orbit or resize.
func (v *Viewport) SetCamera(c hittest.Camera) { v.opts.Camera = c }

// Object returns the renderable for id.
func (v *Viewport) Object(id scene.NodeID) (*render.Object, bool) {
	obj, ok := v.objects[id]
	return obj, ok
}

// NodeOf returns the node a renderable stands for.
func (v *Viewport) NodeOf(obj *render.Object) (scene.NodeID, bool) {
	for id, o := range v.objects {
		if o == obj {
			return id, true
		}
	}
	return scene.ZeroID, false
}

// Len returns the number of live renderables.
func (v *Viewport) Len() int { return len(v.objects) }

// SelectNode shows the selection visuals on id's renderable. A node without
// a renderable clears them, so they never stay on a previous node.
func (v *Viewport) SelectNode(id scene.NodeID) {
	obj, ok := v.objects[id]
	if !ok {
		v.ctrl.ClearSelection()
		return
	}
	v.ctrl.SelectObject(obj)
}

// DeselectNode removes the selection visuals.
func (v *Viewport) DeselectNode() {
	v.ctrl.ClearSelection()
}

// PickObject returns the node under ray, ignoring the selection visuals.
func (v *Viewport) PickObject(ray kernel.Ray) (scene.NodeID, bool) {
	return v.tester.PickObject(ray, v.root, v.ctrl.Group())
}

// PickAxis returns the gizmo axis under ray.
func (v *Viewport) PickAxis(ray kernel.Ray) hittest.AxisHit {
	return v.tester.PickAxis(ray, v.ctrl)
}

// RayAt returns the camera ray through a pixel of a w×h viewport.
func (v *Viewport) RayAt(px, py, w, h float64) (kernel.Ray, bool) {
	ndc, ok := hittest.PointerToNDC(px, py, w, h)
	if !ok {
		return kernel.Ray{}, false
	}
	return v.opts.Camera.Ray(ndc), true
}

// ActiveAxis is the axis currently hovered, if any.
func (v *Viewport) ActiveAxis(px, py, w, h float64) (gizmo.Axis, bool) {
	ray, ok := v.RayAt(px, py, w, h)
	if !ok {
		return 0, false
	}
	hit := v.PickAxis(ray)
	return hit.Axis, hit.Found
}

// Tick applies pending pose changes from the graph and then runs selection
// change detection. Call it once per frame.
func (v *Viewport) Tick() {
	pending := slices.Collect(v.dirty.All())
	v.dirty = set.Set[scene.NodeID]{}
	for _, id := range pending {
		obj, ok := v.objects[id]
		if !ok {
			continue
		}
		if err := v.provider.SyncRenderablePose(obj, id); err != nil {
			slog.Warn("Failed to sync renderable", "node", id.Short(), "error", err)
		}
	}
	v.ctrl.Tick()
}

// DrawList flattens the scene, selection visuals included, for the frontend.
func (v *Viewport) DrawList() []render.DrawItem {
	return render.DrawList(v.root)
}
