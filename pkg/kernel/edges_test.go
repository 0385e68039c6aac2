package kernel

import (
	"math"
	"testing"
)

func TestEdgesBox(t *testing.T) {
	m := BoxMesh(1, 1, 1)
	lines := Edges(m, 15)
	// 12 box edges, two endpoints each; the face diagonals are coplanar.
	if got := len(lines) / 6; got != 12 {
		t.Fatalf("edge count = %d, want 12", got)
	}
	for i := 0; i < len(lines); i += 6 {
		dx := lines[i+3] - lines[i]
		dy := lines[i+4] - lines[i+1]
		dz := lines[i+5] - lines[i+2]
		l := math.Sqrt(float64(dx*dx + dy*dy + dz*dz))
		if math.Abs(l-1) > 1e-6 {
			t.Errorf("edge %d has length %g, want 1", i/6, l)
		}
	}
}

func TestEdgesThreshold(t *testing.T) {
	// Two triangles folded 10 degrees along their shared edge.
	fold := 10 * math.Pi / 180
	m := &Mesh{
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			0.5, 1, 0,
			0.5, float32(-math.Cos(fold)), float32(math.Sin(fold)),
		},
		Indices: []uint32{0, 1, 2, 1, 0, 3},
	}
	tests := []struct {
		threshold float64
		want      int
	}{
		{15, 4}, // fold is below the threshold: only the outline
		{5, 5},  // fold exceeds the threshold: the shared edge too
	}
	for _, tt := range tests {
		if got := len(Edges(m, tt.threshold)) / 6; got != tt.want {
			t.Errorf("Edges(threshold=%g) = %d edges, want %d", tt.threshold, got, tt.want)
		}
	}
}

func TestEdgesEmptyAndDegenerate(t *testing.T) {
	if Edges(&Mesh{}, 15) != nil {
		t.Error("empty mesh should produce no edges")
	}
	m := &Mesh{Vertices: []float32{0, 0, 0, 0, 0, 0, 1, 0, 0}, Indices: []uint32{0, 1, 2}}
	if got := Edges(m, 15); len(got) != 0 {
		t.Errorf("degenerate triangle produced %d floats", len(got))
	}
}

func TestUniqueVertices(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"empty", nil, []float32{}},
		{"no duplicates", []float32{0, 0, 0, 1, 1, 1}, []float32{0, 0, 0, 1, 1, 1}},
		{"first seen order", []float32{1, 2, 3, 0, 0, 0, 1, 2, 3}, []float32{1, 2, 3, 0, 0, 0}},
		{"below precision", []float32{0.1, 0, 0, 0.1000001, 0, 0}, []float32{0.1, 0, 0}},
		{"negative zero", []float32{float32(math.Copysign(0, -1)), 0, 0, 0, 0, 0}, []float32{float32(math.Copysign(0, -1)), 0, 0}},
		{"trailing partial vertex", []float32{1, 1, 1, 2}, []float32{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueVertices(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("UniqueVertices() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("UniqueVertices() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestUniqueVerticesBox(t *testing.T) {
	m := BoxMesh(2, 2, 2)
	got := UniqueVertices(m.Vertices)
	if len(got)/3 != 8 {
		t.Fatalf("box has %d unique corners, want 8", len(got)/3)
	}
	if len(got) > len(m.Vertices) {
		t.Fatal("output longer than input")
	}
	for i := 0; i < len(got); i += 3 {
		for j := i + 3; j < len(got); j += 3 {
			if math.Abs(float64(got[i]-got[j])) < 1e-6 &&
				math.Abs(float64(got[i+1]-got[j+1])) < 1e-6 &&
				math.Abs(float64(got[i+2]-got[j+2])) < 1e-6 {
				t.Fatalf("vertices %d and %d coincide", i/3, j/3)
			}
		}
	}
}

// Keys round each coordinate to 6 decimals, so closeness alone does not
// merge points: two points 2e-7 apart on either side of a rounding boundary
// both survive, while points in the same bucket merge.
func TestUniqueVerticesRoundingBuckets(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want int
	}{
		{"same bucket", []float32{0.0000011, 0, 0, 0.0000014, 0, 0}, 1},
		{"across a boundary", []float32{0.0000004, 0, 0, 0.0000006, 0, 0}, 2},
		{"signed zero", []float32{float32(math.Copysign(0, -1)), 0, 0, 0, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(UniqueVertices(tt.in)) / 3; got != tt.want {
				t.Errorf("UniqueVertices kept %d points, want %d", got, tt.want)
			}
		})
	}
}
