package render

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/scene"
)

// DrawItem is one primitive flattened into world space for the frontend.
type DrawItem struct {
	Name      string       `json:"name"`
	NodeID    scene.NodeID `json:"nodeId,omitempty"`
	Tag       string       `json:"tag,omitempty"`
	Geometry  string       `json:"geometry"`
	Positions []float32    `json:"positions"`
	Normals   []float32    `json:"normals,omitempty"`
	Indices   []uint32     `json:"indices,omitempty"`
	Material  Material     `json:"material"`
}

// DrawList flattens the visible primitives under root. Collision geometry,
// hidden subtrees and disposed objects are skipped. Each item inherits the
// NodeID of its nearest tagged ancestor.
func DrawList(root *Object) []DrawItem {
	if root == nil || root.Disposed() {
		return nil
	}
	var items []DrawItem
	var visit func(o *Object, node scene.NodeID)
	visit = func(o *Object, node scene.NodeID) {
		if !o.Visible || o.Collision || o.disposed {
			return
		}
		if !o.NodeID.IsZero() {
			node = o.NodeID
		}
		if o.IsPrimitive() {
			if item, ok := flatten(o, node); ok {
				items = append(items, item)
			}
			return
		}
		for _, c := range o.children {
			visit(c, node)
		}
	}
	visit(root, scene.ZeroID)
	return items
}

func flatten(o *Object, node scene.NodeID) (DrawItem, bool) {
	item := DrawItem{
		Name:     o.Name,
		NodeID:   node,
		Tag:      o.Tag,
		Geometry: o.Geometry.String(),
		Material: o.Material,
	}
	world := o.World()
	switch o.Geometry {
	case Triangles:
		if o.Mesh.IsEmpty() {
			return DrawItem{}, false
		}
		m := o.Mesh.Transformed(world)
		item.Positions, item.Normals, item.Indices = m.Vertices, m.Normals, m.Indices
	default:
		if len(o.Positions) < 3 {
			return DrawItem{}, false
		}
		item.Positions = make([]float32, 0, len(o.Positions))
		for i := 0; i+2 < len(o.Positions); i += 3 {
			p := world.MulPosition(vec(o.Positions[i:]))
			item.Positions = append(item.Positions, float32(p.X), float32(p.Y), float32(p.Z))
		}
	}
	return item, true
}

func vec(p []float32) v3.Vec {
	return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}
