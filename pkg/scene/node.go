package scene

import (
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// NodeID is the UUID string identifying a scene node.
type NodeID string

// ZeroID is the empty sentinel; a graph with no selection reports ZeroID.
const ZeroID NodeID = ""

// NewNodeID returns a fresh random node id.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// scriptNamespace seeds name-derived ids.
var scriptNamespace = uuid.MustParse("6f1c2e0a-52b4-4c8e-9d5e-3b7a0c1d2e4f")

// NodeIDFor derives a stable id from a name, so scripts that are evaluated
// again produce the same ids for the same node names.
func NodeIDFor(name string) NodeID {
	return NodeID(uuid.NewSHA1(scriptNamespace, []byte(name)).String())
}

// IsZero reports whether the id is the empty sentinel.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first 8 characters of the id for log and error messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// NodeType enumerates the kinds of placeable objects.
type NodeType int

const (
	NodeBlock NodeType = iota
	NodeItem
	NodeEntity
	NodeParticle
	NodeLight
	NodeSound
	NodeText
)

var nodeTypeNames = [...]string{
	NodeBlock:    "block",
	NodeItem:     "item",
	NodeEntity:   "entity",
	NodeParticle: "particle",
	NodeLight:    "light",
	NodeSound:    "sound",
	NodeText:     "text",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "unknown"
	}
	return nodeTypeNames[t]
}

// ParseNodeType converts the lowercase name of a node type back to its value.
func ParseNodeType(s string) (NodeType, bool) {
	for i, name := range nodeTypeNames {
		if name == s {
			return NodeType(i), true
		}
	}
	return 0, false
}

// SceneNode is the metadata of one addressable item in the hierarchy.
type SceneNode struct {
	UUID             NodeID   `json:"uuid"`
	Name             string   `json:"name"`
	Type             NodeType `json:"type"`
	Parent           NodeID   `json:"parent,omitempty"`
	Children         []NodeID `json:"children,omitempty"`
	CreatedTimestamp int64    `json:"createdTimestamp"`

	// Type-specific payload. Only the fields matching Type are meaningful.
	BlockType string `json:"blockType,omitempty"`
	ItemType  string `json:"itemType,omitempty"`
	Enchanted bool   `json:"enchanted,omitempty"`
	Text      string `json:"text,omitempty"`
	Color     string `json:"color,omitempty"`
}

// NewSceneNode returns metadata with a fresh id and the current timestamp.
func NewSceneNode(name string, t NodeType) SceneNode {
	return SceneNode{
		UUID:             NewNodeID(),
		Name:             name,
		Type:             t,
		CreatedTimestamp: time.Now().UnixMilli(),
	}
}

// Created returns the creation time.
func (n SceneNode) Created() time.Time {
	return time.UnixMilli(n.CreatedTimestamp)
}

// HasChild reports whether id is listed in the node's children.
func (n SceneNode) HasChild(id NodeID) bool {
	for _, c := range n.Children {
		if c == id {
			return true
		}
	}
	return false
}

// Float3 is a plain xyz triple as stored in transforms.
type Float3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts to an sdfx vector.
func (f Float3) Vec() v3.Vec {
	return v3.Vec{X: f.X, Y: f.Y, Z: f.Z}
}

// FromVec converts an sdfx vector to a Float3.
func FromVec(v v3.Vec) Float3 {
	return Float3{X: v.X, Y: v.Y, Z: v.Z}
}

// Transform is the placement of one node: position, Euler rotation in radians,
// a discrete scale tier and the snapping policy for edits.
type Transform struct {
	Position     Float3   `json:"position"`
	Rotation     Float3   `json:"rotation"`
	Scale        float64  `json:"scale"`
	SnapMode     SnapMode `json:"snapMode"`
	SnapInterval float64  `json:"snapInterval"`
}

// DefaultTransform places a node at the origin with the solid block tier and
// a 0.1 grid snap.
func DefaultTransform() Transform {
	return Transform{
		Scale:        float64(BlockSolid),
		SnapMode:     SnapGrid,
		SnapInterval: 0.1,
	}
}
