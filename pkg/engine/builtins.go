package engine

import (
	"fmt"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/sqlongithub/voxelbench/pkg/scene"
)

// ---------------------------------------------------------------------------
// Script values
// ---------------------------------------------------------------------------

// sexpNodeRef carries a node between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	name string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(ref %q)", n.name)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec scene.Float3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits keyword pairs from positional arguments. A trailing
// keyword with no value is recorded as null.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts :kw or a plain string.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toNodeType(s zygo.Sexp) (scene.NodeType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	t, ok := scene.ParseNodeType(name)
	if !ok {
		return 0, fmt.Errorf("unknown node type %q", name)
	}
	return t, nil
}

func toSnapMode(s zygo.Sexp) (scene.SnapMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	for _, m := range []scene.SnapMode{scene.SnapGrid, scene.SnapScale, scene.SnapCustom} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown snap mode %q, expected grid, scale or custom", name)
}

func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (scene.Float3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return scene.Float3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// builder accumulates the graph a script describes. Node names are unique
// within one script and determine the node ids.
type builder struct {
	g     *scene.Graph
	names map[string]scene.NodeID
	now   int64
}

func newBuilder() *builder {
	return &builder{g: scene.New(), names: make(map[string]scene.NodeID), now: time.Now().UnixMilli()}
}

func (b *builder) ref(id scene.NodeID) (*sexpNodeRef, error) {
	n, ok := b.g.Node(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id.Short(), scene.ErrNotFound)
	}
	return &sexpNodeRef{id: id, name: n.Name}, nil
}

// defaultScale is the largest tier for the type.
func defaultScale(t scene.NodeType) float64 {
	tiers := scene.Tiers(t)
	return tiers[len(tiers)-1]
}

// node handles
//
//	(node "name" :type :block :at (vec3 0 1 0) :rotation (vec3 0 0 0)
//	      :scale 0.625 :snap :grid :interval 0.5 :parent ref
//	      :block-type "stone" :item-type "sword" :enchanted true
//	      :text "hello" :color "#ffffff"
//	      child...)
func (b *builder) node(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("node requires a name")
	}
	name, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("node: name: %w", err)
	}
	if _, dup := b.names[name]; dup {
		return zygo.SexpNull, fmt.Errorf("node %q: %w", name, scene.ErrDuplicate)
	}

	meta := scene.SceneNode{UUID: scene.NodeIDFor(name), Name: name, Type: scene.NodeBlock, CreatedTimestamp: b.now}
	if v, ok := pa.kw["type"]; ok {
		if meta.Type, err = toNodeType(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: type: %w", name, err)
		}
	}
	tr := scene.DefaultTransform()
	tr.Scale = defaultScale(meta.Type)

	for key, dst := range map[string]*scene.Float3{"at": &tr.Position, "rotation": &tr.Rotation} {
		if v, ok := pa.kw[key]; ok {
			if *dst, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: %s: %w", name, key, err)
			}
		}
	}
	if v, ok := pa.kw["scale"]; ok {
		s, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: scale: %w", name, err)
		}
		if !scene.IsTier(meta.Type, s) {
			return zygo.SexpNull, fmt.Errorf("node %q: scale %g is not an allowed %s scale %v", name, s, meta.Type, scene.Tiers(meta.Type))
		}
		tr.Scale = s
	}
	if v, ok := pa.kw["snap"]; ok {
		if tr.SnapMode, err = toSnapMode(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: snap: %w", name, err)
		}
	}
	if v, ok := pa.kw["interval"]; ok {
		f, err := toFloat64(v)
		if err != nil || f < 0 {
			return zygo.SexpNull, fmt.Errorf("node %q: interval must be a non-negative number", name)
		}
		tr.SnapInterval = f
	}
	if v, ok := pa.kw["parent"]; ok {
		ref, err := toNodeRef(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: parent: %w", name, err)
		}
		meta.Parent = ref.id
	}
	for key, dst := range map[string]*string{
		"block-type": &meta.BlockType,
		"item-type":  &meta.ItemType,
		"text":       &meta.Text,
		"color":      &meta.Color,
	} {
		if v, ok := pa.kw[key]; ok {
			if *dst, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: %s: %w", name, key, err)
			}
		}
	}
	if v, ok := pa.kw["enchanted"]; ok {
		if meta.Enchanted, err = toBool(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: enchanted: %w", name, err)
		}
	}

	if !b.g.AddNode(meta, tr) {
		return zygo.SexpNull, fmt.Errorf("node %q: %w", name, scene.ErrDuplicate)
	}
	b.names[name] = meta.UUID

	for i, a := range pa.positional[1:] {
		child, err := toNodeRef(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: child %d: %w", name, i+1, err)
		}
		if _, err := b.g.MakeNodeChildOf(child.id, meta.UUID); err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: child %q: %w", name, child.name, err)
		}
	}
	return &sexpNodeRef{id: meta.UUID, name: name}, nil
}

// registerBuiltins installs the scene builtins. Source must go through
// preprocessSource first so keywords and kebab-case names resolve.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.node(args)
	})

	// (ref "name")
	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires a node name")
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: %w", err)
		}
		id, ok := b.names[n]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("ref: no node named %q", n)
		}
		return b.ref(id)
	})

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: scene.Float3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (child-of child parent)
	env.AddFunction("child_of", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("child-of requires a child and a parent")
		}
		child, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("child-of: child: %w", err)
		}
		parent, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("child-of: parent: %w", err)
		}
		if _, err := b.g.MakeNodeChildOf(child.id, parent.id); err != nil {
			return zygo.SexpNull, fmt.Errorf("child-of %q %q: %w", child.name, parent.name, err)
		}
		return child, nil
	})

	// (unparent ref)
	env.AddFunction("unparent", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("unparent requires a node reference")
		}
		ref, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("unparent: %w", err)
		}
		if err := b.g.Unparent(ref.id); err != nil {
			return zygo.SexpNull, fmt.Errorf("unparent %q: %w", ref.name, err)
		}
		return ref, nil
	})

	// (remove ref)
	env.AddFunction("remove", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove requires a node reference")
		}
		ref, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove: %w", err)
		}
		if err := b.g.RemoveNode(ref.id); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove %q: %w", ref.name, err)
		}
		delete(b.names, ref.name)
		return zygo.SexpNull, nil
	})

	// (select ref)
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("select requires a node reference")
		}
		ref, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		if err := b.g.SelectNode(ref.id); err != nil {
			return zygo.SexpNull, fmt.Errorf("select %q: %w", ref.name, err)
		}
		return ref, nil
	})

	// (deselect)
	env.AddFunction("deselect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		b.g.DeselectNode()
		return zygo.SexpNull, nil
	})
}
