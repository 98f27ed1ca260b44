package collider

import (
	"fmt"

	"github.com/chazu/collidergen/pkg/scene"
)

// Action is what happened to a marked node.
type Action int

const (
	ActionMerged Action = iota // proxy moved to the parent, node deleted
	ActionKept                 // proxy attached in place, geometry stripped
)

func (a Action) String() string {
	switch a {
	case ActionMerged:
		return "merged"
	case ActionKept:
		return "kept"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Event records the handling of one marked node.
type Event struct {
	Node       string
	NodeID     scene.NodeID
	Convention Convention
	Action     Action
	Target     scene.NodeID // node that received the proxy
	TargetName string
	Shape      scene.Shape
	// MeshRewritten is set when the node's mesh vertices were rebased into
	// parent space.
	MeshRewritten bool
}

// Report summarizes one generator run.
type Report struct {
	Events    []Event
	Destroyed int // nodes destroyed directly; subtrees count once
}

// Count returns the number of events with the given action.
func (r Report) Count(a Action) int {
	n := 0
	for _, e := range r.Events {
		if e.Action == a {
			n++
		}
	}
	return n
}

// Empty reports whether the run touched nothing.
func (r Report) Empty() bool {
	return len(r.Events) == 0 && r.Destroyed == 0
}
