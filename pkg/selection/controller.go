// Package selection owns the visualization of the current selection: an
// edge outline, vertex point markers and the three gizmo handles. The
// controller never owns the selected object itself; it only reads its pose
// and geometry.
package selection

import (
	"log/slog"

	"github.com/deadsy/sdfx/sdf"
	"github.com/sqlongithub/voxelbench/pkg/gizmo"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/render"
)

// State is the controller's lifecycle state.
type State int

const (
	Idle State = iota
	Selected
)

func (s State) String() string {
	if s == Selected {
		return "selected"
	}
	return "idle"
}

// Options controls the look of the selection visuals.
type Options struct {
	Ratios        gizmo.Ratios
	AxisColors    map[gizmo.Axis]uint32
	OutlineColor  uint32
	EdgeThreshold float64 // degrees between face normals before an edge is drawn
	PointSize     float64
}

// DefaultOptions returns the stock orange outline and axis handles.
func DefaultOptions() Options {
	return Options{
		Ratios:        gizmo.DefaultRatios(),
		AxisColors:    gizmo.DefaultColors,
		OutlineColor:  0xffa500,
		EdgeThreshold: 15,
		PointSize:     6,
	}
}

// Names of the objects the controller creates.
const (
	GroupName   = "selection-wireframe"
	GizmoName   = "selection-gizmo"
	OutlineName = "selection-outline"
	PointsName  = "selection-points"
)

// Controller manages the selection visuals. Add Group() to the scene root
// next to the selectable objects: the outline copies the selected object's
// local pose, so both must share a parent frame.
type Controller struct {
	opts    Options
	builder *gizmo.Builder

	group  *render.Object
	gizmos *render.Object

	selected *render.Object
	outline  *render.Object
	points   *render.Object
	handles  []*gizmo.Handle
	dims     gizmo.Dimensions
	cache    render.Pose

	builds int
}

// New creates an idle controller whose collision hulls come from k.
func New(k kernel.Kernel, opts Options) *Controller {
	group := render.NewGroup(GroupName)
	gizmos := render.NewGroup(GizmoName)
	group.Add(gizmos)
	return &Controller{
		opts:    opts,
		builder: gizmo.NewBuilder(k, opts.Ratios, opts.AxisColors),
		group:   group,
		gizmos:  gizmos,
	}
}

// Group returns the root of everything the controller draws.
func (c *Controller) Group() *render.Object { return c.group }

// HandleGroup returns the parent of the handle roots; gizmo picks test
// only its descendants.
func (c *Controller) HandleGroup() *render.Object { return c.gizmos }

// State reports Idle or Selected.
func (c *Controller) State() State {
	if c.selected == nil {
		return Idle
	}
	return Selected
}

// SelectedObject returns the object being visualized, or nil.
func (c *Controller) SelectedObject() *render.Object { return c.selected }

// Outline returns the edge outline, nil when idle or for empty geometry.
func (c *Controller) Outline() *render.Object { return c.outline }

// Points returns the vertex markers, nil when idle or for empty geometry.
func (c *Controller) Points() *render.Object { return c.points }

// Handles returns the live handles in Forward, Up, Right order.
func (c *Controller) Handles() []*gizmo.Handle { return c.handles }

// Dimensions returns the sizes the current handles were built with.
func (c *Controller) Dimensions() gizmo.Dimensions { return c.dims }

// CachedPose returns the pose last seen by change detection.
func (c *Controller) CachedPose() render.Pose { return c.cache }

// HandleBuilds counts handle rebuilds since creation.
func (c *Controller) HandleBuilds() int { return c.builds }

// SelectObject visualizes obj. Selecting the current object again only runs
// change detection. A nil obj clears the selection.
func (c *Controller) SelectObject(obj *render.Object) {
	if obj == nil {
		c.ClearSelection()
		return
	}
	if obj == c.selected {
		c.Tick()
		return
	}
	c.ClearSelection()

	c.selected = obj
	c.cache = obj.Pose

	geom := collectGeometry(obj)
	if !geom.IsEmpty() {
		c.outline = render.NewLines(OutlineName, kernel.Edges(geom, c.opts.EdgeThreshold), render.Solid(c.opts.OutlineColor))
		pm := render.Solid(c.opts.OutlineColor)
		pm.PointSize = c.opts.PointSize
		c.points = render.NewPoints(PointsName, kernel.UniqueVertices(geom.Vertices), pm)
		c.group.Add(c.outline)
		c.group.Add(c.points)
	} else {
		slog.Debug("Selected object has no geometry", "object", obj.Name)
	}
	c.UpdateSelectionTransforms(obj)
}

// UpdateSelectionTransforms moves the outline and markers onto obj's
// current pose and rebuilds the handles from its current bounds.
func (c *Controller) UpdateSelectionTransforms(obj *render.Object) {
	if obj == nil || obj != c.selected {
		return
	}
	for _, o := range []*render.Object{c.outline, c.points} {
		if o == nil {
			continue
		}
		o.Pose = obj.Pose
		o.Orientation = obj.Orientation
	}
	c.rebuildHandles(obj)
}

func (c *Controller) rebuildHandles(obj *render.Object) {
	c.disposeHandles()
	bb, ok := obj.WorldBounds()
	if !ok {
		c.dims = gizmo.Dimensions{}
		return
	}
	c.dims = c.builder.Dimensions(bb)
	if c.dims.IsDegenerate() {
		return
	}
	origin := obj.WorldPosition()
	for _, axis := range gizmo.Axes {
		h, err := c.builder.CreateArrow(origin, axis, c.dims)
		if err != nil {
			slog.Warn("Failed to build gizmo handle", "axis", axis, "error", err)
			c.disposeHandles()
			return
		}
		c.handles = append(c.handles, h)
		c.gizmos.Add(h.Root)
	}
	c.builds++
}

// ClearSelection disposes every owned visual and returns to Idle. The
// selected object itself is left untouched.
func (c *Controller) ClearSelection() {
	c.disposeHandles()
	if c.outline != nil {
		c.outline.Dispose()
		c.outline = nil
	}
	if c.points != nil {
		c.points.Dispose()
		c.points = nil
	}
	c.selected = nil
	c.dims = gizmo.Dimensions{}
	c.cache = render.Pose{}
}

func (c *Controller) disposeHandles() {
	for _, h := range c.handles {
		h.Dispose()
	}
	c.handles = nil
}

// Tick runs change detection against the selected object's pose. It is
// cheap when nothing moved and must be called once per frame.
func (c *Controller) Tick() {
	obj := c.selected
	if obj == nil {
		return
	}
	if obj.Disposed() {
		c.ClearSelection()
		return
	}
	if obj.Pose == c.cache {
		return
	}
	c.UpdateSelectionTransforms(obj)
	c.cache = obj.Pose
}

// TransformAxis resolves the axis a picked object belongs to. Collision
// primitives sit two levels below the handle root; visual primitives sit
// directly under the visual group.
func (c *Controller) TransformAxis(hit *render.Object) (gizmo.Axis, bool) {
	if hit == nil {
		return 0, false
	}
	if hit.Collision {
		group := hit.Parent()
		if group == nil {
			return 0, false
		}
		root := group.Parent()
		for _, h := range c.handles {
			if root != nil && h.Root == root {
				return h.Axis, true
			}
		}
		return 0, false
	}
	for _, h := range c.handles {
		if hit.Parent() != nil && hit.Parent() == h.Visual {
			return h.Axis, true
		}
	}
	return 0, false
}

// collectGeometry merges the triangle leaves under obj into one mesh in
// obj's local frame.
func collectGeometry(obj *render.Object) *kernel.Mesh {
	merged := &kernel.Mesh{Name: obj.Name}
	obj.Leaves(func(leaf *render.Object) {
		if leaf.Collision || leaf.Geometry != render.Triangles || leaf.Mesh.IsEmpty() {
			return
		}
		merged.Append(leaf.Mesh.Transformed(relative(leaf, obj)))
	})
	return merged
}

// relative returns the matrix from leaf's frame to anc's local frame.
func relative(leaf, anc *render.Object) sdf.M44 {
	m := sdf.Identity3d()
	for o := leaf; o != nil && o != anc; o = o.Parent() {
		m = o.Local().Mul(m)
	}
	return m
}
