package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half-line in world space. Dir is expected to be unit length so
// that distances along the ray are world distances.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) v3.Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// IntersectBox returns the entry distance of the ray into bb using the slab
// test. A ray starting inside the box reports t = 0.
func (r Ray) IntersectBox(bb sdf.Box3) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	slabs := [3][3]float64{
		{r.Origin.X, r.Dir.X, 0},
		{r.Origin.Y, r.Dir.Y, 1},
		{r.Origin.Z, r.Dir.Z, 2},
	}
	lo := [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	hi := [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	for _, s := range slabs {
		o, d, i := s[0], s[1], int(s[2])
		if d == 0 {
			if o < lo[i] || o > hi[i] {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo[i]-o)/d, (hi[i]-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// triangleEpsilon rejects rays nearly parallel to a triangle's plane.
const triangleEpsilon = 1e-9

// IntersectTriangle returns the distance to triangle abc using the
// Möller–Trumbore algorithm. Both faces are hit.
func (r Ray) IntersectTriangle(a, b, c v3.Vec) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < triangleEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectMesh returns the nearest hit distance against m placed by world.
func (r Ray) IntersectMesh(m *Mesh, world sdf.M44) (float64, bool) {
	if m.IsEmpty() {
		return 0, false
	}
	best, hit := math.Inf(1), false
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		t, ok := r.IntersectTriangle(world.MulPosition(a), world.MulPosition(b), world.MulPosition(c))
		if ok && t < best {
			best, hit = t, true
		}
	}
	return best, hit
}

// MarchParams bounds a sphere-tracing query.
type MarchParams struct {
	MaxDistance float64
	MaxSteps    int
	Epsilon     float64
}

// DefaultMarchParams suits editor-scale scenes measured in block units.
var DefaultMarchParams = MarchParams{MaxDistance: 1000, MaxSteps: 128, Epsilon: 1e-4}

// March sphere-traces the ray against s and returns the distance to the
// first surface crossing. A ray starting inside s hits at t = 0.
func (r Ray) March(s Solid, p MarchParams) (float64, bool) {
	t := 0.0
	for i := 0; i < p.MaxSteps && t <= p.MaxDistance; i++ {
		d := s.Distance(r.At(t))
		if d < p.Epsilon {
			return t, true
		}
		t += d
	}
	return 0, false
}
