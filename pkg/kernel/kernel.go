// Package kernel defines the geometry used by the editor's selection
// visuals: flat triangle meshes, procedural primitive builders, edge
// extraction and vertex dedup. It also defines the abstract collision
// kernel interface that the sdfx backend implements.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an opaque handle to a collision hull.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Distance returns the signed distance from p to the surface,
	// negative inside.
	Distance(p v3.Vec) float64
}

// Kernel builds collision hulls. Round primitives are aligned with +Y and
// centered on the origin, matching the mesh builders in this package.
type Kernel interface {
	// Primitives
	Cylinder(height, radius float64) (Solid, error)
	Cone(height, radius float64) (Solid, error)

	// Boolean operations. A gizmo handle's hull is its shaft and head
	// joined into one solid.
	Union(a, b Solid) Solid

	// Transforms
	Transform(s Solid, m sdf.M44) Solid
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output, used to visualize hulls while debugging picks.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
