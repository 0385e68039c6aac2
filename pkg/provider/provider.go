// Package provider turns scene nodes into renderables. Nodes without a
// registered block model render as a unit box scaled by their tier; block
// nodes whose BlockType names a model render as one box per model element.
package provider

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/sqlongithub/voxelbench/pkg/kernel"
	"github.com/sqlongithub/voxelbench/pkg/render"
	"github.com/sqlongithub/voxelbench/pkg/scene"
)

// DefaultColor is the fill colour of generated node geometry.
const DefaultColor uint32 = 0x00ccff

// Provider builds renderables from a graph.
type Provider struct {
	graph  *scene.Graph
	models map[string]Model
	color  uint32
}

// New returns a provider reading from g.
func New(g *scene.Graph) *Provider {
	return &Provider{graph: g, models: make(map[string]Model), color: DefaultColor}
}

// For returns a provider reading from g that shares p's models and colour.
func (p *Provider) For(g *scene.Graph) *Provider {
	return &Provider{graph: g, models: p.models, color: p.color}
}

// SetColor changes the fill colour of renderables built afterwards.
func (p *Provider) SetColor(c uint32) { p.color = c }

// Register makes m available to block nodes whose BlockType equals m.Name.
// A model without elements inherits those of its parent.
func (p *Provider) Register(m Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	p.models[m.Name] = m
	return nil
}

// Model returns the registered model for name.
func (p *Provider) Model(name string) (Model, bool) {
	m, ok := p.models[name]
	return m, ok
}

// BuildRenderable creates the object for id at its current transform. The
// geometry is unit sized; the pose carries the node's scale so later syncs
// rescale without rebuilding.
func (p *Provider) BuildRenderable(id scene.NodeID) (*render.Object, error) {
	node, ok := p.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("provider: build %s: %w", id.Short(), scene.ErrNotFound)
	}
	var obj *render.Object
	if elems := p.elements(node); len(elems) > 0 {
		obj = p.composite(node, elems)
	} else {
		obj = render.NewMesh(node.Name, kernel.BoxMesh(1, 1, 1), render.Solid(p.color))
	}
	obj.NodeID = id
	if err := p.SyncRenderablePose(obj, id); err != nil {
		return nil, err
	}
	return obj, nil
}

// elements returns the model elements for a block node, following parent
// models until one defines elements.
func (p *Provider) elements(node scene.SceneNode) []Element {
	if node.Type != scene.NodeBlock || node.BlockType == "" {
		return nil
	}
	name := modelName(node.BlockType)
	for range len(p.models) {
		m, ok := p.models[name]
		if !ok {
			return nil
		}
		if len(m.Elements) > 0 {
			return m.Elements
		}
		name = modelName(m.Parent)
	}
	return nil
}

func (p *Provider) composite(node scene.SceneNode, elems []Element) *render.Object {
	group := render.NewGroup(node.Name)
	for i, e := range elems {
		size := e.Size()
		part := render.NewMesh(fmt.Sprintf("%s/%d", node.BlockType, i), kernel.BoxMesh(size.X, size.Y, size.Z), render.Solid(p.color))
		part.Pose.Position, part.Orientation = e.Placement()
		group.Add(part)
	}
	return group
}

// SyncRenderablePose copies id's position, rotation and uniform scale onto
// obj.
func (p *Provider) SyncRenderablePose(obj *render.Object, id scene.NodeID) error {
	tr, ok := p.graph.Transform(id)
	if !ok {
		return fmt.Errorf("provider: sync %s: %w", id.Short(), scene.ErrNotFound)
	}
	if node, ok := p.graph.Node(id); ok {
		obj.Name = node.Name
	}
	obj.Pose.Position = tr.Position.Vec()
	obj.Pose.Rotation = tr.Rotation.Vec()
	s := tr.Scale
	if s == 0 {
		s = 1
	}
	obj.Pose.Scale = v3.Vec{X: s, Y: s, Z: s}
	return nil
}
