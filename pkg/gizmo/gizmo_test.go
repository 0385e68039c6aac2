package gizmo

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/kernel/sdfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube(size float64) sdf.Box3 {
	h := size / 2
	return sdf.Box3{Min: v3.Vec{X: -h, Y: -h, Z: -h}, Max: v3.Vec{X: h, Y: h, Z: h}}
}

func TestCalculateArrowDimensions2x2x2(t *testing.T) {
	d := CalculateArrowDimensions(cube(2), DefaultRatios())
	assert.InDelta(t, 2, d.Size, 1e-12)
	assert.InDelta(t, 1.28, d.Length, 1e-12)
	assert.InDelta(t, 0.0384, d.Radius, 1e-12)
	assert.InDelta(t, 0.24, d.Offset, 1e-12)
}

func TestCalculateArrowDimensionsUsesLargestExtent(t *testing.T) {
	bb := sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 0.5, Y: 3, Z: 1}}
	d := CalculateArrowDimensions(bb, DefaultRatios())
	assert.InDelta(t, 3, d.Size, 1e-12)
}

func TestSizingIsMonotonic(t *testing.T) {
	r := DefaultRatios()
	sizes := []float64{0.01, 0.294, 0.5, 1, 2, 10, 1000}
	for i := 1; i < len(sizes); i++ {
		small := CalculateArrowDimensions(cube(sizes[i-1]), r)
		large := CalculateArrowDimensions(cube(sizes[i]), r)
		assert.Greater(t, large.Length, small.Length, "length %g vs %g", sizes[i-1], sizes[i])
		assert.Greater(t, large.Offset, small.Offset, "offset %g vs %g", sizes[i-1], sizes[i])
	}
}

func TestDegenerateDimensions(t *testing.T) {
	d := CalculateArrowDimensions(sdf.Box3{}, DefaultRatios())
	assert.True(t, d.IsDegenerate())

	b := NewBuilder(sdfx.New(), DefaultRatios(), nil)
	h, err := b.CreateArrow(v3.Vec{}, Up, d)
	assert.Error(t, err)
	assert.Nil(t, h)
}

func TestAxisNames(t *testing.T) {
	for _, a := range Axes {
		got, ok := ParseAxis(a.String())
		require.True(t, ok)
		assert.Equal(t, a, got)
	}
	_, ok := ParseAxis("sideways")
	assert.False(t, ok)
	assert.Equal(t, "Axis(7)", Axis(7).String())
}

func TestAlignFromUp(t *testing.T) {
	tests := []v3.Vec{
		{X: 1}, {Y: 1}, {Z: 1}, {Y: -1}, {X: -1}, {X: 1, Y: 1, Z: 1},
	}
	for _, dir := range tests {
		got := AlignFromUp(dir).MulPosition(v3.Vec{Y: 1})
		want := dir.MulScalar(1 / dir.Length())
		assert.InDelta(t, want.X, got.X, 1e-9, "dir %v", dir)
		assert.InDelta(t, want.Y, got.Y, 1e-9, "dir %v", dir)
		assert.InDelta(t, want.Z, got.Z, 1e-9, "dir %v", dir)
	}
	assert.Equal(t, sdf.Identity3d(), AlignFromUp(v3.Vec{}))
}

func TestCreateArrow(t *testing.T) {
	b := NewBuilder(sdfx.New(), DefaultRatios(), nil)
	d := CalculateArrowDimensions(cube(2), b.Ratios())
	origin := v3.Vec{X: 1, Y: 2, Z: 3}

	h, err := b.CreateArrow(origin, Forward, d)
	require.NoError(t, err)
	assert.Equal(t, Forward, h.Axis)
	assert.Equal(t, "forward", h.Root.Tag)

	// Root sits at origin + direction × offset.
	pos := h.Root.WorldPosition()
	assert.InDelta(t, 1.24, pos.X, 1e-9)
	assert.InDelta(t, 2, pos.Y, 1e-9)
	assert.InDelta(t, 3, pos.Z, 1e-9)

	require.Len(t, h.Root.Children(), 2)
	assert.Same(t, h.Visual, h.Root.Children()[0])
	assert.Same(t, h.Collision, h.Root.Children()[1])
	assert.Same(t, h.Root, h.Visual.Parent())

	// The visual arrow draws on top of the scene.
	for _, c := range h.Visual.Children() {
		assert.False(t, c.Material.DepthTest)
		assert.False(t, c.Material.DepthWrite)
		assert.False(t, c.Collision)
		assert.Equal(t, DefaultColors[Forward], c.Material.Color)
	}
	// The collision arrow is invisible and tagged for picking.
	assert.False(t, h.Collision.Visible)
	for _, c := range h.Collision.Children() {
		assert.True(t, c.Collision)
		assert.NotNil(t, c.Hull)
	}

	// Visual extends the full length along +X; the tip is at offset + length.
	vb, ok := h.Visual.WorldBounds()
	require.True(t, ok)
	assert.InDelta(t, 1.24+1.28, vb.Max.X, 1e-5)
	assert.InDelta(t, 1.24, vb.Min.X, 1e-5)

	// The collision hull is strictly wider than the visual arrow.
	cb, ok := h.Collision.WorldBounds()
	require.True(t, ok)
	assert.Greater(t, cb.Size().Y, vb.Size().Y)
	assert.Greater(t, cb.Size().Z, vb.Size().Z)
}

func TestCreateArrowHullShape(t *testing.T) {
	r := DefaultRatios()
	b := NewBuilder(sdfx.New(), r, nil)
	d := CalculateArrowDimensions(cube(2), r)
	h, err := b.CreateArrow(v3.Vec{}, Up, d)
	require.NoError(t, err)

	// Shaft and head share one hull.
	require.Len(t, h.Collision.Children(), 1)
	hull := h.Collision.Children()[0]
	assert.Equal(t, v3.Vec{}, hull.Pose.Position)

	shaftLen := d.Length * (1 - r.HeadFraction)
	headRadius := d.Radius * r.HeadRadiusRatio * r.CollisionHeadRatio

	// Just inside the widened shaft around its midpoint.
	assert.Less(t, hull.Hull.Distance(v3.Vec{X: d.Radius*r.CollisionShaftRatio - 1e-3, Y: shaftLen / 2}), 0.0)
	// Just inside the cone base.
	assert.Less(t, hull.Hull.Distance(v3.Vec{X: headRadius * 0.5, Y: shaftLen + 1e-3}), 0.0)
	// Beyond the tip.
	assert.Greater(t, hull.Hull.Distance(v3.Vec{Y: d.Length + 0.1}), 0.0)

	lo, hi := hull.Hull.BoundingBox()
	assert.InDelta(t, 0, lo[1], 1e-6)
	assert.InDelta(t, d.Length, hi[1], 1e-6)
}

func TestHandleDispose(t *testing.T) {
	b := NewBuilder(sdfx.New(), DefaultRatios(), map[Axis]uint32{Right: 0x123456})
	h, err := b.CreateArrow(v3.Vec{}, Right, CalculateArrowDimensions(cube(1), b.Ratios()))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x123456), h.Visual.Children()[0].Material.Color)

	root := h.Root
	h.Dispose()
	assert.True(t, root.Disposed())
	assert.Nil(t, h.Root)
	assert.Nil(t, h.Visual)
	assert.Nil(t, h.Collision)
}
