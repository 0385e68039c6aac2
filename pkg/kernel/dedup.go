package kernel

import (
	"fmt"

	"github.com/ErikKalkoken/go-set"
)

// UniqueVertices removes repeated positions from flat xyz data. Positions
// are compared after rounding each coordinate to 6 decimals; the output
// keeps the first occurrence of each and preserves input order.
func UniqueVertices(positions []float32) []float32 {
	seen := set.Of[string]()
	out := make([]float32, 0, len(positions))
	for i := 0; i+2 < len(positions); i += 3 {
		x, y, z := positions[i], positions[i+1], positions[i+2]
		key := vertexKey(x, y, z)
		if seen.Contains(key) {
			continue
		}
		seen.Add(key)
		out = append(out, x, y, z)
	}
	return out
}

func vertexKey(x, y, z float32) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f", unsignZero(x), unsignZero(y), unsignZero(z))
}

// unsignZero maps -0 to 0 so both print the same key.
func unsignZero(v float32) float64 {
	if v == 0 {
		return 0
	}
	return float64(v)
}
