package hittest

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position v3.Vec  `yaml:"-"`
	Target   v3.Vec  `yaml:"-"`
	Up       v3.Vec  `yaml:"-"`
	FOV      float64 `yaml:"fov"` // vertical field of view in degrees
	Aspect   float64 `yaml:"aspect"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
}

// DefaultCamera matches the editor's startup view.
func DefaultCamera() Camera {
	return Camera{
		Position: v3.Vec{X: 2, Y: 0, Z: 5},
		Up:       v3.Vec{Y: 1},
		FOV:      75,
		Aspect:   1,
		Near:     0.1,
		Far:      1000,
	}
}

// NDC is a normalized device coordinate: x and y in [-1, 1], +y up.
type NDC struct {
	X, Y float64
}

// PointerToNDC converts a pixel position inside a w×h viewport. ok is false
// for an empty viewport.
func PointerToNDC(px, py, w, h float64) (NDC, bool) {
	if w <= 0 || h <= 0 {
		return NDC{}, false
	}
	return NDC{X: px/w*2 - 1, Y: -(py/h)*2 + 1}, true
}

// Basis returns the camera's forward, right and up unit vectors.
func (c Camera) Basis() (forward, right, up v3.Vec) {
	forward = safeNormalize(c.Target.Sub(c.Position), v3.Vec{Z: -1})
	right = safeNormalize(forward.Cross(c.Up), v3.Vec{X: 1})
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns the world-space ray through ndc, starting at the camera.
func (c Camera) Ray(ndc NDC) kernel.Ray {
	f, r, u := c.Basis()
	half := math.Tan(c.FOV * math.Pi / 360)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	dir := f.Add(r.MulScalar(ndc.X * half * aspect)).Add(u.MulScalar(ndc.Y * half))
	return kernel.Ray{Origin: c.Position, Dir: dir.Normalize()}
}

func safeNormalize(v, fallback v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return fallback
	}
	return v.MulScalar(1 / l)
}
