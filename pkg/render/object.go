// Package render models renderable objects as a tree of tagged variants:
// a Primitive carries geometry, a Composite carries children. Objects hold a
// local pose; world matrices and world bounding boxes are derived by walking
// up the parent chain. Nothing here draws; the frontend consumes DrawItems.
package render

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/scene"
)

// Kind distinguishes leaf primitives from composite groups.
type Kind int

const (
	Primitive Kind = iota
	Composite
)

func (k Kind) String() string {
	if k == Composite {
		return "composite"
	}
	return "primitive"
}

// Geometry says how a primitive's vertex data is interpreted.
type Geometry int

const (
	Triangles Geometry = iota
	Lines              // segment pairs
	Points
)

func (g Geometry) String() string {
	switch g {
	case Lines:
		return "lines"
	case Points:
		return "points"
	default:
		return "triangles"
	}
}

// Material is the subset of surface state the editor controls.
type Material struct {
	Color      uint32  `json:"color"`
	Opacity    float64 `json:"opacity"`
	DepthTest  bool    `json:"depthTest"`
	DepthWrite bool    `json:"depthWrite"`
	PointSize  float64 `json:"pointSize,omitempty"`
}

// Solid returns an opaque depth-tested material.
func Solid(color uint32) Material {
	return Material{Color: color, Opacity: 1, DepthTest: true, DepthWrite: true}
}

// Overlay returns a material that always draws on top of the scene.
func Overlay(color uint32) Material {
	return Material{Color: color, Opacity: 1}
}

// Pose is a local placement: translation, Euler rotation in radians applied
// in XYZ order, and per-axis scale.
type Pose struct {
	Position v3.Vec
	Rotation v3.Vec
	Scale    v3.Vec
}

// IdentityPose has no translation or rotation and unit scale.
func IdentityPose() Pose {
	return Pose{Scale: v3.Vec{X: 1, Y: 1, Z: 1}}
}

// EulerXYZ is the rotation matrix for XYZ-ordered Euler angles.
func EulerXYZ(r v3.Vec) sdf.M44 {
	return sdf.RotateX(r.X).Mul(sdf.RotateY(r.Y)).Mul(sdf.RotateZ(r.Z))
}

// Object is one node of the renderable tree.
type Object struct {
	Name      string
	Kind      Kind
	NodeID    scene.NodeID // set on objects that stand for a scene node
	Tag       string       // free-form role marker, e.g. a gizmo axis
	Collision bool         // pick-only geometry, never drawn
	Visible   bool
	Pose      Pose

	// Orientation, when set, is applied between the translation and the
	// Euler rotation.
	Orientation *sdf.M44

	// Primitive payload. Mesh backs Triangles; Positions backs Lines and
	// Points. Hull is the local-space collision solid of a collision primitive.
	Geometry  Geometry
	Mesh      *kernel.Mesh
	Positions []float32
	Hull      kernel.Solid
	Material  Material

	parent   *Object
	children []*Object
	disposed bool
}

// NewGroup returns an empty visible composite.
func NewGroup(name string) *Object {
	return &Object{Name: name, Kind: Composite, Visible: true, Pose: IdentityPose()}
}

// NewMesh returns a triangle primitive.
func NewMesh(name string, m *kernel.Mesh, mat Material) *Object {
	return &Object{Name: name, Kind: Primitive, Geometry: Triangles, Mesh: m, Material: mat, Visible: true, Pose: IdentityPose()}
}

// NewLines returns a line-segment primitive from flat endpoint pairs.
func NewLines(name string, segments []float32, mat Material) *Object {
	return &Object{Name: name, Kind: Primitive, Geometry: Lines, Positions: segments, Material: mat, Visible: true, Pose: IdentityPose()}
}

// NewPoints returns a point-marker primitive.
func NewPoints(name string, points []float32, mat Material) *Object {
	return &Object{Name: name, Kind: Primitive, Geometry: Points, Positions: points, Material: mat, Visible: true, Pose: IdentityPose()}
}

// NewCollision returns an invisible pick-only primitive. The mesh is
// optional and only used to draw the hull when debugging.
func NewCollision(name string, hull kernel.Solid, m *kernel.Mesh) *Object {
	return &Object{Name: name, Kind: Primitive, Geometry: Triangles, Hull: hull, Mesh: m, Collision: true, Pose: IdentityPose()}
}

// Parent returns the owning composite, or nil for a root.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the direct children. The slice must not be modified.
func (o *Object) Children() []*Object { return o.children }

// IsPrimitive reports whether o is a leaf.
func (o *Object) IsPrimitive() bool { return o.Kind == Primitive }

// Disposed reports whether Dispose has released o.
func (o *Object) Disposed() bool { return o.disposed }

// Add appends child to o, detaching it from any previous parent. Adding to
// a primitive is ignored.
func (o *Object) Add(child *Object) {
	if child == nil || child == o || o.Kind != Composite {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = o
	o.children = append(o.children, child)
}

// Remove detaches child from o.
func (o *Object) Remove(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i:i], o.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Clear detaches every child of o without disposing them.
func (o *Object) Clear() {
	for _, c := range o.children {
		c.parent = nil
	}
	o.children = nil
}

// Dispose detaches o and releases its subtree's geometry.
func (o *Object) Dispose() {
	if o.parent != nil {
		o.parent.Remove(o)
	}
	o.release()
}

func (o *Object) release() {
	for _, c := range o.children {
		c.parent = nil
		c.release()
	}
	o.children = nil
	o.Mesh = nil
	o.Positions = nil
	o.Hull = nil
	o.disposed = true
}

// Local returns the local matrix T·O·R·S.
func (o *Object) Local() sdf.M44 {
	m := sdf.Translate3d(o.Pose.Position)
	if o.Orientation != nil {
		m = m.Mul(*o.Orientation)
	}
	return m.Mul(EulerXYZ(o.Pose.Rotation)).Mul(sdf.Scale3d(o.Pose.Scale))
}

// World returns the matrix from o's local space to world space.
func (o *Object) World() sdf.M44 {
	m := o.Local()
	for p := o.parent; p != nil; p = p.parent {
		m = p.Local().Mul(m)
	}
	return m
}

// WorldPosition returns the world-space origin of o.
func (o *Object) WorldPosition() v3.Vec {
	return o.World().MulPosition(v3.Vec{})
}

// Walk visits o and its descendants depth-first. Returning false skips the
// visited object's children.
func (o *Object) Walk(fn func(*Object) bool) {
	if !fn(o) {
		return
	}
	for _, c := range o.children {
		c.Walk(fn)
	}
}

// Leaves calls fn for every primitive in o's subtree.
func (o *Object) Leaves(fn func(*Object)) {
	o.Walk(func(x *Object) bool {
		if x.IsPrimitive() {
			fn(x)
		}
		return true
	})
}

// Vertices returns the leaf's local-space positions.
func (o *Object) Vertices() []float32 {
	if o.Geometry == Triangles {
		if o.Mesh == nil {
			return nil
		}
		return o.Mesh.Vertices
	}
	return o.Positions
}

// WorldBounds returns the world-space bounding box of every leaf under o,
// computed from transformed vertices. Collision hulls without a mesh
// contribute their solid's bounds. ok is false when there is no geometry.
func (o *Object) WorldBounds() (sdf.Box3, bool) {
	var acc sdf.Box3
	found := false
	merge := func(bb sdf.Box3) {
		if !found {
			acc, found = bb, true
			return
		}
		acc = sdf.Box3{
			Min: v3.Vec{X: math.Min(acc.Min.X, bb.Min.X), Y: math.Min(acc.Min.Y, bb.Min.Y), Z: math.Min(acc.Min.Z, bb.Min.Z)},
			Max: v3.Vec{X: math.Max(acc.Max.X, bb.Max.X), Y: math.Max(acc.Max.Y, bb.Max.Y), Z: math.Max(acc.Max.Z, bb.Max.Z)},
		}
	}
	o.Leaves(func(leaf *Object) {
		world := leaf.World()
		if verts := leaf.Vertices(); len(verts) >= 3 {
			if bb, ok := kernel.BoundsOf(verts, world); ok {
				merge(bb)
			}
			return
		}
		if leaf.Hull != nil {
			lo, hi := leaf.Hull.BoundingBox()
			corners := make([]float32, 0, 24)
			for i := 0; i < 8; i++ {
				x, y, z := lo[0], lo[1], lo[2]
				if i&1 != 0 {
					x = hi[0]
				}
				if i&2 != 0 {
					y = hi[1]
				}
				if i&4 != 0 {
					z = hi[2]
				}
				corners = append(corners, float32(x), float32(y), float32(z))
			}
			if bb, ok := kernel.BoundsOf(corners, world); ok {
				merge(bb)
			}
		}
	})
	return acc, found
}

// Root returns the topmost ancestor of o.
func (o *Object) Root() *Object {
	r := o
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsDescendantOf reports whether o is anc or lies beneath it.
func (o *Object) IsDescendantOf(anc *Object) bool {
	for x := o; x != nil; x = x.parent {
		if x == anc {
			return true
		}
	}
	return false
}
