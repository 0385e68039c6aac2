package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an indexed triangle mesh in local space.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{
		X: float64(m.Vertices[i*3]),
		Y: float64(m.Vertices[i*3+1]),
		Z: float64(m.Vertices[i*3+2]),
	}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c v3.Vec) {
	return m.Vertex(int(m.Indices[i*3])), m.Vertex(int(m.Indices[i*3+1])), m.Vertex(int(m.Indices[i*3+2]))
}

// Bounds returns the local-space bounding box. ok is false for an empty mesh.
func (m *Mesh) Bounds() (bb sdf.Box3, ok bool) {
	if m.IsEmpty() {
		return sdf.Box3{}, false
	}
	return BoundsOf(m.Vertices, sdf.Identity3d())
}

// BoundsOf returns the bounding box of the flat xyz positions after applying
// mat to each one.
func BoundsOf(positions []float32, mat sdf.M44) (bb sdf.Box3, ok bool) {
	if len(positions) < 3 {
		return sdf.Box3{}, false
	}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i+2 < len(positions); i += 3 {
		p := mat.MulPosition(v3.Vec{
			X: float64(positions[i]),
			Y: float64(positions[i+1]),
			Z: float64(positions[i+2]),
		})
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}, true
}

// Transformed returns a copy of m with every vertex mapped through mat and
// every normal through its linear part.
func (m *Mesh) Transformed(mat sdf.M44) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  append([]uint32(nil), m.Indices...),
		Name:     m.Name,
	}
	origin := mat.MulPosition(v3.Vec{})
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		p := mat.MulPosition(m.Vertex(i / 3))
		out.Vertices[i], out.Vertices[i+1], out.Vertices[i+2] = float32(p.X), float32(p.Y), float32(p.Z)
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := v3.Vec{X: float64(m.Normals[i]), Y: float64(m.Normals[i+1]), Z: float64(m.Normals[i+2])}
		n = mat.MulPosition(n).Sub(origin)
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		out.Normals[i], out.Normals[i+1], out.Normals[i+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}
	return out
}

// Append adds the geometry of o to m, offsetting its indices.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}
