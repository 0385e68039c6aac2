// Package hittest resolves pointer rays against renderable trees: scene
// picks to find the node under the pointer and gizmo picks to find the drag
// axis.
package hittest

import (
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/gizmo"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/render"
	"github.com/sqlongithub/voxelbench/pkg/scene"
)

// Intersection is one primitive hit by a ray.
type Intersection struct {
	Object   *render.Object
	Distance float64
	Point    v3.Vec
}

// Query selects which primitives a ray is tested against.
type Query struct {
	// IncludeCollision marches rays against collision hulls, including
	// those inside invisible groups.
	IncludeCollision bool
	// Exclude skips these subtrees entirely.
	Exclude []*render.Object
}

// AxisResolver maps gizmo primitives back to their axis.
type AxisResolver interface {
	HandleGroup() *render.Object
	TransformAxis(hit *render.Object) (gizmo.Axis, bool)
}

// AxisHit is the result of a gizmo pick. Found is false both when nothing
// was hit and when only non-handle geometry was hit; Intersections tells the
// two apart.
type AxisHit struct {
	Axis          gizmo.Axis
	Found         bool
	Intersections int
}

// Tester runs ray queries. The kernel transforms collision hulls into
// world space before marching.
type Tester struct {
	kernel kernel.Kernel
	march  kernel.MarchParams
}

// New returns a tester using k for hull placement.
func New(k kernel.Kernel, p kernel.MarchParams) *Tester {
	if p.MaxSteps <= 0 {
		p = kernel.DefaultMarchParams
	}
	return &Tester{kernel: k, march: p}
}

// Intersect returns every primitive under root hit by ray, nearest first.
// A nil root yields no intersections.
func (t *Tester) Intersect(ray kernel.Ray, root *render.Object, q Query) []Intersection {
	if root == nil {
		return nil
	}
	var hits []Intersection
	root.Walk(func(o *render.Object) bool {
		if o.Disposed() || excluded(o, q.Exclude) {
			return false
		}
		if o.Collision {
			if !q.IncludeCollision {
				return false
			}
		} else if !o.Visible {
			return false
		}
		if !o.IsPrimitive() {
			return true
		}
		if d, ok := t.intersectLeaf(ray, o); ok {
			hits = append(hits, Intersection{Object: o, Distance: d, Point: ray.At(d)})
		}
		return false
	})
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func (t *Tester) intersectLeaf(ray kernel.Ray, o *render.Object) (float64, bool) {
	world := o.World()
	if o.Collision {
		if o.Hull == nil {
			return 0, false
		}
		placed := t.kernel.Transform(o.Hull, world)
		lo, hi := placed.BoundingBox()
		if _, ok := ray.IntersectBox(box(lo, hi)); !ok {
			return 0, false
		}
		return ray.March(placed, t.march)
	}
	if o.Geometry != render.Triangles || o.Mesh.IsEmpty() {
		return 0, false
	}
	bb, ok := o.WorldBounds()
	if !ok {
		return 0, false
	}
	if _, ok := ray.IntersectBox(bb); !ok {
		return 0, false
	}
	return ray.IntersectMesh(o.Mesh, world)
}

// PickObject returns the scene node under the ray. Hits are normalized up to
// the nearest ancestor that stands for a node, so any part of a composite
// selects the whole object. Collision hulls and the exclude subtrees (the
// selection visuals) are ignored.
func (t *Tester) PickObject(ray kernel.Ray, root *render.Object, exclude ...*render.Object) (scene.NodeID, bool) {
	for _, h := range t.Intersect(ray, root, Query{Exclude: exclude}) {
		if id := owningNode(h.Object); !id.IsZero() {
			return id, true
		}
	}
	return scene.ZeroID, false
}

// PickAxis returns the first handle axis under the ray.
func (t *Tester) PickAxis(ray kernel.Ray, r AxisResolver) AxisHit {
	if r == nil {
		return AxisHit{}
	}
	hits := t.Intersect(ray, r.HandleGroup(), Query{IncludeCollision: true})
	for _, h := range hits {
		if axis, ok := r.TransformAxis(h.Object); ok {
			return AxisHit{Axis: axis, Found: true, Intersections: len(hits)}
		}
	}
	return AxisHit{Intersections: len(hits)}
}

func owningNode(o *render.Object) scene.NodeID {
	for x := o; x != nil; x = x.Parent() {
		if !x.NodeID.IsZero() {
			return x.NodeID
		}
	}
	return scene.ZeroID
}

func excluded(o *render.Object, exclude []*render.Object) bool {
	for _, e := range exclude {
		if o == e {
			return true
		}
	}
	return false
}

func box(lo, hi [3]float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: lo[0], Y: lo[1], Z: lo[2]},
		Max: v3.Vec{X: hi[0], Y: hi[1], Z: hi[2]},
	}
}
