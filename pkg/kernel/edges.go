package kernel

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// edgeHashPrecision controls how close two positions must be to count as
// the same corner when matching triangle edges.
const edgeHashPrecision = 1e4

type halfEdge struct {
	a, b   v3.Vec
	normal v3.Vec
	open   bool
}

// Edges returns the feature edges of m as flat line-segment pairs
// [ax,ay,az, bx,by,bz, ...]. An edge shared by two triangles is kept only
// when the angle between their normals is at least thresholdDeg; edges used
// by a single triangle are always kept. Degenerate triangles are skipped.
func Edges(m *Mesh, thresholdDeg float64) []float32 {
	if m.IsEmpty() {
		return nil
	}
	thresholdDot := math.Cos(thresholdDeg * math.Pi / 180)

	var out []float32
	emit := func(a, b v3.Vec) {
		out = append(out, float32(a.X), float32(a.Y), float32(a.Z), float32(b.X), float32(b.Y), float32(b.Z))
	}

	edges := make(map[string]*halfEdge)
	var order []string
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		corners := [3]v3.Vec{a, b, c}
		hashes := [3]string{hashPosition(a), hashPosition(b), hashPosition(c)}
		if hashes[0] == hashes[1] || hashes[1] == hashes[2] || hashes[0] == hashes[2] {
			continue
		}
		normal := b.Sub(a).Cross(c.Sub(a)).Normalize()

		for j := 0; j < 3; j++ {
			next := (j + 1) % 3
			key := hashes[j] + "_" + hashes[next]
			reverse := hashes[next] + "_" + hashes[j]
			if e, ok := edges[reverse]; ok && e.open {
				if normal.Dot(e.normal) <= thresholdDot {
					emit(corners[j], corners[next])
				}
				e.open = false
				continue
			}
			if _, ok := edges[key]; !ok {
				edges[key] = &halfEdge{a: corners[j], b: corners[next], normal: normal, open: true}
				order = append(order, key)
			}
		}
	}
	for _, key := range order {
		if e := edges[key]; e.open {
			emit(e.a, e.b)
		}
	}
	return out
}

func hashPosition(p v3.Vec) string {
	return fmt.Sprintf("%d,%d,%d",
		int64(math.Round(p.X*edgeHashPrecision)),
		int64(math.Round(p.Y*edgeHashPrecision)),
		int64(math.Round(p.Z*edgeHashPrecision)))
}
