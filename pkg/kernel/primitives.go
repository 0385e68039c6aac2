package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoxMesh creates a box with the given dimensions centered on the origin.
// Each face has its own four vertices so normals stay flat.
func BoxMesh(x, y, z float64) *Mesh {
	hx, hy, hz := x/2, y/2, z/2
	faces := []struct {
		n       v3.Vec
		corners [4]v3.Vec
	}{
		{v3.Vec{X: 1}, [4]v3.Vec{{X: hx, Y: hy, Z: hz}, {X: hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}}},
		{v3.Vec{X: -1}, [4]v3.Vec{{X: -hx, Y: hy, Z: -hz}, {X: -hx, Y: -hy, Z: -hz}, {X: -hx, Y: -hy, Z: hz}, {X: -hx, Y: hy, Z: hz}}},
		{v3.Vec{Y: 1}, [4]v3.Vec{{X: -hx, Y: hy, Z: -hz}, {X: -hx, Y: hy, Z: hz}, {X: hx, Y: hy, Z: hz}, {X: hx, Y: hy, Z: -hz}}},
		{v3.Vec{Y: -1}, [4]v3.Vec{{X: -hx, Y: -hy, Z: hz}, {X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: hz}}},
		{v3.Vec{Z: 1}, [4]v3.Vec{{X: -hx, Y: hy, Z: hz}, {X: -hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: hz}, {X: hx, Y: hy, Z: hz}}},
		{v3.Vec{Z: -1}, [4]v3.Vec{{X: hx, Y: hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}, {X: -hx, Y: -hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz}}},
	}
	m := &Mesh{
		Vertices: make([]float32, 0, 6*4*3),
		Normals:  make([]float32, 0, 6*4*3),
		Indices:  make([]uint32, 0, 6*6),
	}
	for _, f := range faces {
		base := uint32(m.VertexCount())
		for _, c := range f.corners {
			m.addVertex(c, f.n)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// CylinderMesh creates a Y-aligned frustum centered on the origin. A zero
// radius at either end collapses that ring to a point and omits its cap.
// The seam column is duplicated so each ring has segments+1 vertices.
func CylinderMesh(radiusTop, radiusBottom, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	hh := height / 2
	slope := 0.0
	if height > 0 {
		slope = (radiusBottom - radiusTop) / height
	}
	m := &Mesh{}

	// Side: row 0 is the top ring, row 1 the bottom ring.
	for row := 0; row < 2; row++ {
		r, y := radiusTop, hh
		if row == 1 {
			r, y = radiusBottom, -hh
		}
		for i := 0; i <= segments; i++ {
			theta := float64(i) / float64(segments) * 2 * math.Pi
			sin, cos := math.Sincos(theta)
			n := v3.Vec{X: sin, Y: slope, Z: cos}.Normalize()
			m.addVertex(v3.Vec{X: r * sin, Y: y, Z: r * cos}, n)
		}
	}
	cols := uint32(segments + 1)
	for i := uint32(0); i < uint32(segments); i++ {
		a, b := i, cols+i
		c, d := cols+i+1, i+1
		m.Indices = append(m.Indices, a, b, d, b, c, d)
	}

	if radiusTop > 0 {
		m.addCap(radiusTop, hh, 1, segments)
	}
	if radiusBottom > 0 {
		m.addCap(radiusBottom, -hh, -1, segments)
	}
	return m
}

// ConeMesh creates a Y-aligned cone centered on the origin with its tip at
// +height/2.
func ConeMesh(radius, height float64, segments int) *Mesh {
	return CylinderMesh(0, radius, height, segments)
}

func (m *Mesh) addCap(r, y, sign float64, segments int) {
	n := v3.Vec{Y: sign}
	center := uint32(m.VertexCount())
	m.addVertex(v3.Vec{Y: y}, n)
	for i := 0; i <= segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		sin, cos := math.Sincos(theta)
		m.addVertex(v3.Vec{X: r * sin, Y: y, Z: r * cos}, n)
	}
	for i := uint32(0); i < uint32(segments); i++ {
		cur, next := center+1+i, center+2+i
		if sign > 0 {
			m.Indices = append(m.Indices, center, cur, next)
		} else {
			m.Indices = append(m.Indices, center, next, cur)
		}
	}
}

func (m *Mesh) addVertex(p, n v3.Vec) {
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
}
