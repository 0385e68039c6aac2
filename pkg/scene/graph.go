package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ErikKalkoken/go-set"
)

var (
	ErrNotFound   = errors.New("node not found")
	ErrDuplicate  = errors.New("node already exists")
	ErrSelfParent = errors.New("node cannot be its own parent")
	ErrCycle      = errors.New("re-parenting would create a cycle")
)

// Graph is the project aggregate: node metadata, transforms, the hierarchy and
// the selection pointer. It is not safe for concurrent use; the editor drives
// it from a single update loop.
type Graph struct {
	nodes      map[NodeID]*SceneNode
	transforms map[NodeID]Transform
	order      []NodeID // insertion order, used for root display order
	selected   NodeID
	version    uint64
	events     *bus
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[NodeID]*SceneNode),
		transforms: make(map[NodeID]Transform),
		events:     newBus(),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Version increments on every mutation. Pollers can compare it between ticks.
func (g *Graph) Version() uint64 {
	return g.version
}

// Has reports whether id is present.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the metadata for id.
func (g *Graph) Node(id NodeID) (SceneNode, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return SceneNode{}, false
	}
	c := *n
	c.Children = slices.Clone(n.Children)
	return c, true
}

// Transform returns the transform for id.
func (g *Graph) Transform(id NodeID) (Transform, bool) {
	tr, ok := g.transforms[id]
	return tr, ok
}

// IDs returns all node ids in insertion order.
func (g *Graph) IDs() []NodeID {
	return slices.Clone(g.order)
}

// Children returns the ordered children of id.
func (g *Graph) Children(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.Children)
}

// Roots returns the parentless nodes in insertion order.
func (g *Graph) Roots() []NodeID {
	var roots []NodeID
	for _, id := range g.order {
		if g.nodes[id].Parent.IsZero() {
			roots = append(roots, id)
		}
	}
	return roots
}

// Walk visits every node depth-first in display order (roots in insertion
// order, then children in list order). Returning false from fn skips the
// node's subtree.
func (g *Graph) Walk(fn func(n SceneNode, depth int) bool) {
	seen := set.Of[NodeID]()
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		n, ok := g.nodes[id]
		if !ok || seen.Contains(id) {
			return
		}
		seen.Add(id)
		if !fn(*n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, id := range g.Roots() {
		visit(id, 0)
	}
}

// Ancestors returns the parent chain of id, nearest first. The walk stops
// after Len() steps so a corrupted hierarchy cannot loop forever.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	var chain []NodeID
	seen := set.Of(id)
	n, ok := g.nodes[id]
	for ok && !n.Parent.IsZero() && len(chain) < len(g.nodes) {
		if seen.Contains(n.Parent) {
			break
		}
		seen.Add(n.Parent)
		chain = append(chain, n.Parent)
		n, ok = g.nodes[n.Parent]
	}
	return chain
}

// IsAncestor reports whether a is somewhere on b's parent chain.
func (g *Graph) IsAncestor(a, b NodeID) bool {
	return slices.Contains(g.Ancestors(b), a)
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// AddNode inserts metadata and its transform. It is a no-op returning false
// when the UUID is already present. Children are derived from parent links,
// so any Children on meta are ignored. A parent that does not exist is
// dropped and the node becomes a root.
func (g *Graph) AddNode(meta SceneNode, tr Transform) bool {
	if meta.UUID.IsZero() {
		meta.UUID = NewNodeID()
	}
	if _, exists := g.nodes[meta.UUID]; exists {
		return false
	}
	n := meta
	n.Children = nil
	if !n.Parent.IsZero() {
		if n.Parent == n.UUID {
			n.Parent = ZeroID
		} else if _, ok := g.nodes[n.Parent]; !ok {
			slog.Warn("Dropping unknown parent for new node", "node", n.UUID.Short(), "parent", n.Parent.Short())
			n.Parent = ZeroID
		}
	}
	g.nodes[n.UUID] = &n
	g.transforms[n.UUID] = tr
	g.order = append(g.order, n.UUID)
	if !n.Parent.IsZero() {
		p := g.nodes[n.Parent]
		p.Children = appendChild(p.Children, n.UUID)
	}
	g.publish(Event{Kind: NodeAdded, Node: n.UUID, Parent: n.Parent})
	return true
}

// RemoveNode deletes id. Its children move to the removed node's parent,
// taking its place in the parent's child list, or become roots.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("scene: remove %s: %w", id.Short(), ErrNotFound)
	}
	orphans := n.Children
	for _, c := range orphans {
		if child, ok := g.nodes[c]; ok {
			child.Parent = n.Parent
		}
	}
	if p, ok := g.nodes[n.Parent]; ok {
		idx := slices.Index(p.Children, id)
		if idx < 0 {
			idx = len(p.Children)
		}
		children := make([]NodeID, 0, len(p.Children)+len(orphans))
		children = append(children, p.Children[:idx]...)
		for _, c := range orphans {
			children = appendChild(children, c)
		}
		if idx < len(p.Children) {
			children = append(children, p.Children[idx+1:]...)
		}
		p.Children = children
	}
	delete(g.nodes, id)
	delete(g.transforms, id)
	g.order = slices.DeleteFunc(g.order, func(x NodeID) bool { return x == id })
	wasSelected := g.selected == id
	if wasSelected {
		g.selected = ZeroID
	}
	g.publish(Event{Kind: NodeRemoved, Node: id, Parent: n.Parent})
	if wasSelected {
		g.publish(Event{Kind: Deselected, Node: id})
	}
	return nil
}

// MakeNodeChildOf moves nodeID under parentID. It reports whether the
// hierarchy changed; rejected requests return false with the reason and leave
// the graph untouched.
func (g *Graph) MakeNodeChildOf(nodeID, parentID NodeID) (bool, error) {
	if nodeID == parentID {
		return false, fmt.Errorf("scene: parent %s: %w", nodeID.Short(), ErrSelfParent)
	}
	node, ok := g.nodes[nodeID]
	if !ok {
		return false, fmt.Errorf("scene: parent %s: %w", nodeID.Short(), ErrNotFound)
	}
	parent, ok := g.nodes[parentID]
	if !ok {
		return false, fmt.Errorf("scene: parent %s under %s: %w", nodeID.Short(), parentID.Short(), ErrNotFound)
	}
	if parent.Parent == nodeID || g.IsAncestor(nodeID, parentID) {
		return false, fmt.Errorf("scene: parent %s under %s: %w", nodeID.Short(), parentID.Short(), ErrCycle)
	}
	g.detach(node)
	node.Parent = parentID
	parent.Children = appendChild(parent.Children, nodeID)
	g.publish(Event{Kind: NodeReparented, Node: nodeID, Parent: parentID})
	return true, nil
}

// Unparent makes id a root node.
func (g *Graph) Unparent(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("scene: unparent %s: %w", id.Short(), ErrNotFound)
	}
	if n.Parent.IsZero() {
		return nil
	}
	g.detach(n)
	n.Parent = ZeroID
	g.publish(Event{Kind: NodeReparented, Node: id})
	return nil
}

// detach removes n from its current parent's children. The slice is rebuilt
// rather than spliced in place so earlier copies held by observers stay valid.
func (g *Graph) detach(n *SceneNode) {
	if n.Parent.IsZero() {
		return
	}
	if p, ok := g.nodes[n.Parent]; ok {
		p.Children = slices.DeleteFunc(slices.Clone(p.Children), func(c NodeID) bool { return c == n.UUID })
	}
}

// SetTransform replaces the transform of id.
func (g *Graph) SetTransform(id NodeID, tr Transform) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("scene: set transform %s: %w", id.Short(), ErrNotFound)
	}
	if g.transforms[id] == tr {
		return nil
	}
	g.transforms[id] = tr
	g.publish(Event{Kind: TransformChanged, Node: id})
	return nil
}

// Rename changes the display name of id.
func (g *Graph) Rename(id NodeID, name string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("scene: rename %s: %w", id.Short(), ErrNotFound)
	}
	n.Name = name
	g.publish(Event{Kind: NodeRenamed, Node: id})
	return nil
}

// Selected returns the selected node or ZeroID.
func (g *Graph) Selected() NodeID {
	return g.selected
}

// SelectNode sets the selection. Unknown ids are rejected with ErrNotFound
// and leave the current selection in place.
func (g *Graph) SelectNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("scene: select %s: %w", id.Short(), ErrNotFound)
	}
	if g.selected == id {
		return nil
	}
	g.selected = id
	g.publish(Event{Kind: Selected, Node: id})
	return nil
}

// DeselectNode clears the selection.
func (g *Graph) DeselectNode() {
	if g.selected.IsZero() {
		return
	}
	prev := g.selected
	g.selected = ZeroID
	g.publish(Event{Kind: Deselected, Node: prev})
}

func (g *Graph) publish(e Event) {
	g.version++
	e.Version = g.version
	g.events.emit(e)
}

// appendChild appends id unless it is already present. It always returns a
// new slice.
func appendChild(children []NodeID, id NodeID) []NodeID {
	if slices.Contains(children, id) {
		return slices.Clone(children)
	}
	out := make([]NodeID, 0, len(children)+1)
	out = append(out, children...)
	return append(out, id)
}
