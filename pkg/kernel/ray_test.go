package kernel

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestRayIntersectBox(t *testing.T) {
	bb := sdf.Box3{Min: v3.Vec{X: -1, Y: -1, Z: -1}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float64
	}{
		{"head on", Ray{v3.Vec{Z: 5}, v3.Vec{Z: -1}}, true, 4},
		{"inside", Ray{v3.Vec{}, v3.Vec{X: 1}}, true, 0},
		{"miss", Ray{v3.Vec{X: 3, Z: 5}, v3.Vec{Z: -1}}, false, 0},
		{"pointing away", Ray{v3.Vec{Z: 5}, v3.Vec{Z: 1}}, false, 0},
		{"parallel outside slab", Ray{v3.Vec{Y: 2, Z: 5}, v3.Vec{Z: -1}}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectBox(bb)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %g, want %g", got, tt.wantT)
			}
		})
	}
}

func TestRayIntersectTriangle(t *testing.T) {
	a, b, c := v3.Vec{X: -1, Y: -1}, v3.Vec{X: 1, Y: -1}, v3.Vec{Y: 1}
	tests := []struct {
		name string
		ray  Ray
		hit  bool
	}{
		{"front", Ray{v3.Vec{Z: 3}, v3.Vec{Z: -1}}, true},
		{"back face", Ray{v3.Vec{Z: -3}, v3.Vec{Z: 1}}, true},
		{"outside", Ray{v3.Vec{X: 2, Z: 3}, v3.Vec{Z: -1}}, false},
		{"parallel", Ray{v3.Vec{Z: 3}, v3.Vec{X: 1}}, false},
		{"behind origin", Ray{v3.Vec{Z: 3}, v3.Vec{Z: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectTriangle(a, b, c)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(got-3) > 1e-9 {
				t.Errorf("t = %g, want 3", got)
			}
		})
	}
}

func TestRayIntersectMesh(t *testing.T) {
	m := BoxMesh(1, 1, 1)
	r := Ray{Origin: v3.Vec{X: 5, Z: 10}, Dir: v3.Vec{Z: -1}}

	if _, ok := r.IntersectMesh(m, sdf.Identity3d()); ok {
		t.Fatal("ray should miss the box at the origin")
	}
	got, ok := r.IntersectMesh(m, sdf.Translate3d(v3.Vec{X: 5}))
	if !ok {
		t.Fatal("ray should hit the translated box")
	}
	if math.Abs(got-9.5) > 1e-6 {
		t.Errorf("t = %g, want 9.5 (nearest face)", got)
	}
	if _, ok := r.IntersectMesh(&Mesh{}, sdf.Identity3d()); ok {
		t.Error("empty mesh cannot be hit")
	}
}

func TestRayMarch(t *testing.T) {
	s := sphere{center: v3.Vec{Z: -5}, radius: 1}
	tests := []struct {
		name  string
		ray   Ray
		p     MarchParams
		hit   bool
		wantT float64
	}{
		{"hit", Ray{v3.Vec{}, v3.Vec{Z: -1}}, DefaultMarchParams, true, 4},
		{"miss", Ray{v3.Vec{}, v3.Vec{X: 1}}, DefaultMarchParams, false, 0},
		{"inside", Ray{v3.Vec{Z: -5}, v3.Vec{X: 1}}, DefaultMarchParams, true, 0},
		{"beyond max distance", Ray{v3.Vec{}, v3.Vec{Z: -1}}, MarchParams{MaxDistance: 2, MaxSteps: 64, Epsilon: 1e-4}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.March(s, tt.p)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-3 {
				t.Errorf("t = %g, want %g", got, tt.wantT)
			}
		})
	}
}
