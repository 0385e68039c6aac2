package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNamed(t *testing.T, g *Graph, name string, parent NodeID) NodeID {
	t.Helper()
	n := NewSceneNode(name, NodeBlock)
	n.Parent = parent
	require.True(t, g.AddNode(n, DefaultTransform()))
	return n.UUID
}

func TestNewGraph(t *testing.T) {
	g := New()
	if g.Len() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.Len())
	}
	if !g.Selected().IsZero() {
		t.Errorf("empty graph should have no selection")
	}
	if g.Version() != 0 {
		t.Errorf("version = %d, want 0", g.Version())
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New()
	n := NewSceneNode("stone", NodeBlock)
	tr := DefaultTransform()
	tr.Position = Float3{X: 1, Y: 2, Z: 3}

	require.True(t, g.AddNode(n, tr))
	v := g.Version()

	moved := tr
	moved.Position = Float3{X: 9}
	n.Name = "renamed"
	assert.False(t, g.AddNode(n, moved), "second add with the same id must be a no-op")
	assert.Equal(t, v, g.Version())

	got, ok := g.Node(n.UUID)
	require.True(t, ok)
	assert.Equal(t, "stone", got.Name)
	gotTr, _ := g.Transform(n.UUID)
	assert.Equal(t, tr, gotTr)
	assert.Equal(t, 1, g.Len())
}

func TestAddNodeWithParent(t *testing.T) {
	g := New()
	root := addNamed(t, g, "root", ZeroID)
	child := addNamed(t, g, "child", root)

	assert.Equal(t, []NodeID{child}, g.Children(root))
	n, _ := g.Node(child)
	assert.Equal(t, root, n.Parent)
	assert.Equal(t, []NodeID{root}, g.Roots())
}

func TestAddNodeIgnoresSuppliedChildren(t *testing.T) {
	g := New()
	n := NewSceneNode("a", NodeBlock)
	n.Children = []NodeID{"ghost"}
	g.AddNode(n, DefaultTransform())
	assert.Empty(t, g.Children(n.UUID))
	assert.Empty(t, Validate(g))
}

func TestAddNodeUnknownParentBecomesRoot(t *testing.T) {
	g := New()
	n := NewSceneNode("a", NodeBlock)
	n.Parent = "missing"
	g.AddNode(n, DefaultTransform())

	got, _ := g.Node(n.UUID)
	assert.True(t, got.Parent.IsZero())
	assert.Equal(t, []NodeID{n.UUID}, g.Roots())
}

func TestAddNodeAssignsMissingID(t *testing.T) {
	g := New()
	require.True(t, g.AddNode(SceneNode{Name: "anon"}, DefaultTransform()))
	ids := g.IDs()
	require.Len(t, ids, 1)
	assert.False(t, ids[0].IsZero())
}

func TestMakeNodeChildOf(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", ZeroID)
	c := addNamed(t, g, "c", ZeroID)

	ok, err := g.MakeNodeChildOf(b, a)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = g.MakeNodeChildOf(c, a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []NodeID{b, c}, g.Children(a))

	// Moving c under b removes it from a.
	_, err = g.MakeNodeChildOf(c, b)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{b}, g.Children(a))
	assert.Equal(t, []NodeID{c}, g.Children(b))
	assert.Empty(t, Validate(g))
}

func TestMakeNodeChildOfTwiceDoesNotDuplicate(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", ZeroID)

	_, err := g.MakeNodeChildOf(b, a)
	require.NoError(t, err)
	_, err = g.MakeNodeChildOf(b, a)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{b}, g.Children(a))
}

func TestMakeNodeChildOfRejects(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", a)
	c := addNamed(t, g, "c", b)
	d := addNamed(t, g, "d", c)

	tests := []struct {
		name         string
		node, parent NodeID
		want         error
	}{
		{"self", a, a, ErrSelfParent},
		{"direct cycle", b, c, ErrCycle},
		{"deep cycle", a, d, ErrCycle},
		{"missing node", "missing", a, ErrNotFound},
		{"missing parent", a, "missing", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := g.Version()
			ok, err := g.MakeNodeChildOf(tt.node, tt.parent)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, g.Version(), "rejected request must not mutate")
		})
	}
	assert.Empty(t, Validate(g))
	assert.Equal(t, []NodeID{c, b, a}, g.Ancestors(d))
	assert.True(t, g.IsAncestor(a, d))
	assert.False(t, g.IsAncestor(d, a))
}

func TestUnparent(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", a)

	require.NoError(t, g.Unparent(b))
	assert.Empty(t, g.Children(a))
	assert.Equal(t, []NodeID{a, b}, g.Roots())
	assert.ErrorIs(t, g.Unparent("missing"), ErrNotFound)
}

func TestRemoveNodeReparentsChildren(t *testing.T) {
	g := New()
	root := addNamed(t, g, "root", ZeroID)
	first := addNamed(t, g, "first", root)
	mid := addNamed(t, g, "mid", root)
	last := addNamed(t, g, "last", root)
	x := addNamed(t, g, "x", mid)
	y := addNamed(t, g, "y", mid)

	require.NoError(t, g.RemoveNode(mid))
	assert.False(t, g.Has(mid))
	assert.Equal(t, []NodeID{first, x, y, last}, g.Children(root))
	n, _ := g.Node(x)
	assert.Equal(t, root, n.Parent)
	assert.Empty(t, Validate(g))
}

func TestRemoveRootPromotesChildren(t *testing.T) {
	g := New()
	root := addNamed(t, g, "root", ZeroID)
	child := addNamed(t, g, "child", root)

	require.NoError(t, g.RemoveNode(root))
	assert.Equal(t, []NodeID{child}, g.Roots())
	_, ok := g.Transform(root)
	assert.False(t, ok)
	assert.Empty(t, Validate(g))
}

func TestRemoveNodeMissing(t *testing.T) {
	g := New()
	assert.ErrorIs(t, g.RemoveNode("nope"), ErrNotFound)
}

func TestRemoveSelectedClearsSelection(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	require.NoError(t, g.SelectNode(a))

	var kinds []EventKind
	g.Subscribe("test", func(e Event) { kinds = append(kinds, e.Kind) })
	require.NoError(t, g.RemoveNode(a))

	assert.True(t, g.Selected().IsZero())
	assert.Equal(t, []EventKind{NodeRemoved, Deselected}, kinds)
}

func TestSelectNode(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", ZeroID)

	require.NoError(t, g.SelectNode(a))
	assert.Equal(t, a, g.Selected())

	err := g.SelectNode("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, a, g.Selected(), "failed select keeps the previous selection")

	require.NoError(t, g.SelectNode(b))
	assert.Equal(t, b, g.Selected())

	g.DeselectNode()
	assert.True(t, g.Selected().IsZero())
}

func TestSetTransform(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)

	var events []Event
	g.Subscribe("test", func(e Event) { events = append(events, e) })

	tr := DefaultTransform()
	tr.Position.X = 4
	require.NoError(t, g.SetTransform(a, tr))
	require.NoError(t, g.SetTransform(a, tr)) // unchanged, no event

	require.Len(t, events, 1)
	assert.Equal(t, TransformChanged, events[0].Kind)
	assert.Equal(t, a, events[0].Node)
	assert.Equal(t, g.Version(), events[0].Version)

	assert.ErrorIs(t, g.SetTransform("missing", tr), ErrNotFound)
}

func TestRename(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	require.NoError(t, g.Rename(a, "alpha"))
	n, _ := g.Node(a)
	assert.Equal(t, "alpha", n.Name)
	assert.ErrorIs(t, g.Rename("missing", "x"), ErrNotFound)
}

func TestNodeReturnsCopy(t *testing.T) {
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", a)

	n, _ := g.Node(a)
	n.Children[0] = "tampered"
	n.Name = "tampered"
	assert.Equal(t, []NodeID{b}, g.Children(a))
	got, _ := g.Node(a)
	assert.Equal(t, "a", got.Name)
}

func TestWalkDisplayOrder(t *testing.T) {
	g := New()
	r1 := addNamed(t, g, "r1", ZeroID)
	r2 := addNamed(t, g, "r2", ZeroID)
	c1 := addNamed(t, g, "c1", r1)
	gc := addNamed(t, g, "gc", c1)

	type visit struct {
		id    NodeID
		depth int
	}
	var got []visit
	g.Walk(func(n SceneNode, depth int) bool {
		got = append(got, visit{n.UUID, depth})
		return true
	})
	assert.Equal(t, []visit{{r1, 0}, {c1, 1}, {gc, 2}, {r2, 0}}, got)

	got = nil
	g.Walk(func(n SceneNode, depth int) bool {
		got = append(got, visit{n.UUID, depth})
		return n.UUID != r1
	})
	assert.Equal(t, []visit{{r1, 0}, {r2, 0}}, got)
}

func TestUnsubscribe(t *testing.T) {
	g := New()
	calls := 0
	g.Subscribe("k", func(Event) { calls++ })
	g.Subscribe("k", func(Event) { calls += 10 }) // replaces
	addNamed(t, g, "a", ZeroID)
	assert.Equal(t, 10, calls)

	g.Unsubscribe("k")
	addNamed(t, g, "b", ZeroID)
	assert.Equal(t, 10, calls)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "node-reparented", NodeReparented.String())
	assert.Equal(t, "EventKind(99)", EventKind(99).String())
}
