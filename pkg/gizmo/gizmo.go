// Package gizmo builds the three axis drag handles drawn around a selected
// object. Each handle has a thin visual arrow and a larger invisible
// collision arrow; only the latter is meant to be hit by picking rays.
package gizmo

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/render"
)

// Axis identifies one handle.
type Axis int

const (
	Forward Axis = iota // +X
	Up                  // +Y
	Right               // +Z
)

// Axes lists the handles in build order.
var Axes = [...]Axis{Forward, Up, Right}

var axisNames = [...]string{Forward: "forward", Up: "up", Right: "right"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis converts a handle tag back to its axis.
func ParseAxis(s string) (Axis, bool) {
	for i, name := range axisNames {
		if name == s {
			return Axis(i), true
		}
	}
	return 0, false
}

// Direction returns the world-space unit vector of the axis.
func (a Axis) Direction() v3.Vec {
	switch a {
	case Forward:
		return v3.Vec{X: 1}
	case Up:
		return v3.Vec{Y: 1}
	default:
		return v3.Vec{Z: 1}
	}
}

// DefaultColors are the conventional red/green/blue axis colours.
var DefaultColors = map[Axis]uint32{
	Forward: 0xff0000,
	Up:      0x00ff00,
	Right:   0x0000ff,
}

// Ratios are the tunable proportions of a handle.
type Ratios struct {
	LengthRatio float64 `yaml:"length_ratio"` // handle length per unit of object size
	LengthScale float64 `yaml:"length_scale"` // extra multiplier on the length
	RadiusRatio float64 `yaml:"radius_ratio"` // shaft radius per unit of length
	OffsetRatio float64 `yaml:"offset_ratio"` // gap from the object origin per unit of size

	HeadFraction    float64 `yaml:"head_fraction"`     // share of the length taken by the cone
	HeadRadiusRatio float64 `yaml:"head_radius_ratio"` // cone radius per unit of shaft radius

	CollisionShaftRatio float64 `yaml:"collision_shaft_ratio"` // hull shaft radius per unit of shaft radius
	CollisionHeadRatio  float64 `yaml:"collision_head_ratio"`  // hull cone radius per unit of visual cone radius

	Segments int `yaml:"segments"`
}

// DefaultRatios returns the stock handle proportions.
func DefaultRatios() Ratios {
	return Ratios{
		LengthRatio:         0.8,
		LengthScale:         0.8,
		RadiusRatio:         0.03,
		OffsetRatio:         0.12,
		HeadFraction:        0.2,
		HeadRadiusRatio:     2.5,
		CollisionShaftRatio: 4.0,
		CollisionHeadRatio:  2.5,
		Segments:            12,
	}
}

// Dimensions are the sizes derived from an object's bounding box.
type Dimensions struct {
	Size   float64 // largest world extent of the object
	Length float64
	Radius float64
	Offset float64
}

// CalculateArrowDimensions sizes handles from a world-space bounding box.
func CalculateArrowDimensions(bb sdf.Box3, r Ratios) Dimensions {
	ext := bb.Size()
	size := math.Max(ext.X, math.Max(ext.Y, ext.Z))
	length := size * r.LengthRatio * r.LengthScale
	return Dimensions{
		Size:   size,
		Length: length,
		Radius: length * r.RadiusRatio,
		Offset: size * r.OffsetRatio,
	}
}

// IsDegenerate reports whether the dimensions cannot produce geometry.
func (d Dimensions) IsDegenerate() bool {
	return !(d.Length > 0) || !(d.Radius > 0)
}

// Handle is one built arrow. Root holds Visual and Collision as children.
type Handle struct {
	Axis      Axis
	Root      *render.Object
	Visual    *render.Object
	Collision *render.Object
}

// Dispose releases the handle's geometry.
func (h *Handle) Dispose() {
	if h.Root != nil {
		h.Root.Dispose()
	}
	h.Root, h.Visual, h.Collision = nil, nil, nil
}

// Builder turns dimensions into handles. The kernel supplies the
// collision hulls.
type Builder struct {
	kernel kernel.Kernel
	ratios Ratios
	colors map[Axis]uint32
}

// NewBuilder returns a builder using k for hulls.
func NewBuilder(k kernel.Kernel, r Ratios, colors map[Axis]uint32) *Builder {
	if colors == nil {
		colors = DefaultColors
	}
	if r.Segments < 3 {
		r.Segments = DefaultRatios().Segments
	}
	return &Builder{kernel: k, ratios: r, colors: colors}
}

// Ratios returns the proportions in use.
func (b *Builder) Ratios() Ratios { return b.ratios }

// Dimensions sizes handles for bb with the builder's ratios.
func (b *Builder) Dimensions(bb sdf.Box3) Dimensions {
	return CalculateArrowDimensions(bb, b.ratios)
}

// CreateArrow builds the handle for axis at origin. The arrow is modelled
// along +Y and turned onto the axis direction by a shortest-arc rotation.
func (b *Builder) CreateArrow(origin v3.Vec, axis Axis, d Dimensions) (*Handle, error) {
	if d.IsDegenerate() {
		return nil, fmt.Errorf("gizmo: %s arrow: degenerate dimensions %+v", axis, d)
	}
	r := b.ratios
	shaftLen := d.Length * (1 - r.HeadFraction)
	headLen := d.Length * r.HeadFraction
	headRadius := d.Radius * r.HeadRadiusRatio
	tag := axis.String()

	visual := render.NewGroup(tag + "-visual")
	visual.Tag = tag
	mat := render.Overlay(b.colors[axis])
	shaft := render.NewMesh(tag+"-shaft", kernel.CylinderMesh(d.Radius, d.Radius, shaftLen, r.Segments), mat)
	shaft.Pose.Position = v3.Vec{Y: shaftLen / 2}
	head := render.NewMesh(tag+"-head", kernel.ConeMesh(headRadius, headLen, r.Segments), mat)
	head.Pose.Position = v3.Vec{Y: shaftLen + headLen/2}
	visual.Add(shaft)
	visual.Add(head)

	collision, err := b.collisionGroup(tag, shaftLen, headLen, d.Radius*r.CollisionShaftRatio, headRadius*r.CollisionHeadRatio)
	if err != nil {
		return nil, fmt.Errorf("gizmo: %s arrow: %w", axis, err)
	}

	root := render.NewGroup(tag)
	root.Tag = tag
	dir := axis.Direction()
	orient := AlignFromUp(dir)
	root.Orientation = &orient
	root.Pose.Position = origin.Add(dir.MulScalar(d.Offset))
	root.Add(visual)
	root.Add(collision)

	return &Handle{Axis: axis, Root: root, Visual: visual, Collision: collision}, nil
}

// collisionGroup builds the invisible pick volume: the widened shaft and
// head joined into a single hull in handle space, so a pick marches once
// per axis.
func (b *Builder) collisionGroup(tag string, shaftLen, headLen, shaftRadius, headRadius float64) (*render.Object, error) {
	shaftHull, err := b.kernel.Cylinder(shaftLen, shaftRadius)
	if err != nil {
		return nil, err
	}
	headHull, err := b.kernel.Cone(headLen, headRadius)
	if err != nil {
		return nil, err
	}
	hull := b.kernel.Union(
		b.kernel.Translate(shaftHull, 0, shaftLen/2, 0),
		b.kernel.Translate(headHull, 0, shaftLen+headLen/2, 0),
	)

	seg := b.ratios.Segments
	mesh := kernel.CylinderMesh(shaftRadius, shaftRadius, shaftLen, seg).Transformed(sdf.Translate3d(v3.Vec{Y: shaftLen / 2}))
	mesh.Append(kernel.ConeMesh(headRadius, headLen, seg).Transformed(sdf.Translate3d(v3.Vec{Y: shaftLen + headLen/2})))

	group := render.NewGroup(tag + "-collision")
	group.Tag = tag
	group.Visible = false
	group.Collision = true
	group.Add(render.NewCollision(tag+"-hull", hull, mesh))
	return group, nil
}

// AlignFromUp returns the shortest-arc rotation taking +Y onto dir.
func AlignFromUp(dir v3.Vec) sdf.M44 {
	up := v3.Vec{Y: 1}
	l := dir.Length()
	if l == 0 {
		return sdf.Identity3d()
	}
	dir = dir.MulScalar(1 / l)
	dot := up.Dot(dir)
	switch {
	case dot > 1-1e-12:
		return sdf.Identity3d()
	case dot < -1+1e-12:
		return sdf.RotateX(math.Pi)
	}
	axis := up.Cross(dir)
	axis = axis.MulScalar(1 / axis.Length())
	return sdf.Rotate3d(axis, math.Acos(dot))
}
