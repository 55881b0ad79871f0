package secs

// TreeEventKind classifies a host tree mutation.
type TreeEventKind int

const (
	NodeAdded TreeEventKind = iota
	NodeRemoved
	NodeRenamed
)

// String returns the kind name.
func (k TreeEventKind) String() string {
	switch k {
	case NodeAdded:
		return "NodeAdded"
	case NodeRemoved:
		return "NodeRemoved"
	case NodeRenamed:
		return "NodeRenamed"
	default:
		return "Unknown"
	}
}

// TreeEvent is one host tree mutation, captured as a handle so the node can
// be resolved (or found already gone) at drain time.
type TreeEvent struct {
	Node NodeHandle
	Kind TreeEventKind
}

// treeWatcher receives host tree mutation callbacks and queues them for the
// per-tick drain. The push side runs on the host thread; pushing never
// blocks and never touches the world.
type treeWatcher struct {
	ch *queue[TreeEvent]
}

func newTreeWatcher() *treeWatcher {
	return &treeWatcher{ch: newQueue[TreeEvent]()}
}

// observe plants the watcher's callbacks on the graph's tree mutation
// signals. Must run on the host thread.
func (tw *treeWatcher) observe(graph SceneGraph) {
	connect := func(signal string, kind TreeEventKind) {
		graph.Connect(signal, func(args ...any) {
			node, ok := firstNodeArg(args)
			if !ok {
				return
			}
			tw.ch.Push(TreeEvent{Node: HandleOf(graph, node), Kind: kind})
		})
	}
	connect(SignalNodeAdded, NodeAdded)
	connect(SignalNodeRemoved, NodeRemoved)
	connect(SignalNodeRenamed, NodeRenamed)
}

// firstNodeArg pulls the affected node out of a signal argument list.
func firstNodeArg(args []any) (SceneNode, bool) {
	if len(args) == 0 {
		return nil, false
	}
	node, ok := args[0].(SceneNode)
	return node, ok && node != nil
}
