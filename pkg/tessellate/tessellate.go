// Package tessellate turns the collision hulls of a render tree into
// triangle meshes so picking volumes can be inspected. The hulls are SDF
// solids, so this goes through the kernel's marching cubes rather than the
// analytic meshes used for drawing.
package tessellate

import (
	"fmt"

	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/render"
	"github.com/sqlongithub/voxelbench/pkg/scene"
)

// DefaultCells is the marching cubes resolution along a hull's longest side.
const DefaultCells = 24

// HullColor is the debug colour of tessellated hulls.
const HullColor uint32 = 0xff00ff

// Hulls walks root and produces one draw item per collision primitive,
// placed in world space. Hidden subtrees are included since hulls usually
// live in invisible groups; disposed objects are not. The tree is never
// mutated.
func Hulls(root *render.Object, k kernel.Kernel, cells int) ([]render.DrawItem, error) {
	if root == nil || root.Disposed() {
		return nil, nil
	}
	if cells <= 0 {
		cells = DefaultCells
	}
	w := walker{k: k, cells: cells}
	if err := w.visit(root, scene.ZeroID, ""); err != nil {
		return nil, err
	}
	return w.items, nil
}

type walker struct {
	k     kernel.Kernel
	cells int
	items []render.DrawItem
}

// visit carries the nearest NodeID and Tag down the tree.
func (w *walker) visit(o *render.Object, node scene.NodeID, tag string) error {
	if o.Disposed() {
		return nil
	}
	if !o.NodeID.IsZero() {
		node = o.NodeID
	}
	if o.Tag != "" {
		tag = o.Tag
	}
	if o.IsPrimitive() {
		if o.Hull == nil {
			return nil
		}
		return w.hull(o, node, tag)
	}
	for _, c := range o.Children() {
		if err := w.visit(c, node, tag); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) hull(o *render.Object, node scene.NodeID, tag string) error {
	solid := w.k.Transform(o.Hull, o.World())
	mesh, err := w.k.ToMesh(solid, w.cells)
	if err != nil {
		return fmt.Errorf("tessellate: hull %q: %w", o.Name, err)
	}
	if mesh.IsEmpty() {
		return nil
	}
	mat := render.Overlay(HullColor)
	mat.Opacity = 0.35
	w.items = append(w.items, render.DrawItem{
		Name:      o.Name,
		NodeID:    node,
		Tag:       tag,
		Geometry:  render.Triangles.String(),
		Positions: mesh.Vertices,
		Normals:   mesh.Normals,
		Indices:   mesh.Indices,
		Material:  mat,
	})
	return nil
}
