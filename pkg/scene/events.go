package scene

import (
	"context"
	"fmt"

	"github.com/maniartech/signals"
)

// EventKind identifies what changed in a graph mutation.
type EventKind int

const (
	NodeAdded EventKind = iota
	NodeRemoved
	NodeReparented
	NodeRenamed
	TransformChanged
	Selected
	Deselected
)

func (k EventKind) String() string {
	switch k {
	case NodeAdded:
		return "node-added"
	case NodeRemoved:
		return "node-removed"
	case NodeReparented:
		return "node-reparented"
	case NodeRenamed:
		return "node-renamed"
	case TransformChanged:
		return "transform-changed"
	case Selected:
		return "selected"
	case Deselected:
		return "deselected"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is published after every graph mutation has been applied.
type Event struct {
	Kind    EventKind
	Node    NodeID
	Parent  NodeID // new parent for NodeAdded/NodeReparented, old parent for NodeRemoved
	Version uint64
}

// bus delivers events synchronously, so a listener observes the graph in the
// state right after the mutation that produced the event.
type bus struct {
	sig signals.Signal[Event]
}

func newBus() *bus {
	return &bus{sig: signals.NewSync[Event]()}
}

func (b *bus) emit(e Event) {
	b.sig.Emit(context.Background(), e)
}

// Subscribe registers fn under key. Registering the same key again replaces
// the earlier listener.
func (g *Graph) Subscribe(key string, fn func(Event)) {
	g.events.sig.RemoveListener(key)
	g.events.sig.AddListener(func(_ context.Context, e Event) {
		fn(e)
	}, key)
}

// Unsubscribe removes the listener registered under key.
func (g *Graph) Unsubscribe(key string) {
	g.events.sig.RemoveListener(key)
}
