package secs

import (
	"sync"
)

// fakeNode is an in-memory SceneNode. Class hierarchy is a flat chain of
// names, most derived first.
type fakeNode struct {
	id      NodeID
	name    string
	classes []string
	groups  []string

	parent   SceneNode
	children []SceneNode

	signalNames map[string]bool
	handlers    map[string][]SignalFunc
}

func (n *fakeNode) ID() NodeID    { return n.id }
func (n *fakeNode) Name() string  { return n.name }
func (n *fakeNode) Class() string { return n.classes[0] }

func (n *fakeNode) Inherits(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (n *fakeNode) Parent() SceneNode     { return n.parent }
func (n *fakeNode) Children() []SceneNode { return n.children }
func (n *fakeNode) Groups() []string      { return n.groups }

func (n *fakeNode) HasSignal(name string) bool { return n.signalNames[name] }

func (n *fakeNode) ConnectSignal(name string, fn SignalFunc) {
	if n.handlers == nil {
		n.handlers = map[string][]SignalFunc{}
	}
	n.handlers[name] = append(n.handlers[name], fn)
}

// fire invokes every handler connected to the signal, as the host would.
func (n *fakeNode) fire(signal string, args ...any) {
	for _, fn := range n.handlers[signal] {
		fn(args...)
	}
}

// fakeNode3D adds a 3D transform and counts host-side writes.
type fakeNode3D struct {
	fakeNode
	tf       HostTransform3D
	setCalls int
}

func (n *fakeNode3D) Transform3D() HostTransform3D { return n.tf }

func (n *fakeNode3D) SetTransform3D(t HostTransform3D) {
	n.tf = t
	n.setCalls++
}

// fakeNode2D adds a 2D transform.
type fakeNode2D struct {
	fakeNode
	tf       HostTransform2D
	setCalls int
}

func (n *fakeNode2D) Transform2D() HostTransform2D { return n.tf }

func (n *fakeNode2D) SetTransform2D(t HostTransform2D) {
	n.tf = t
	n.setCalls++
}

// fakeGraph is an in-memory SceneGraph driving the bridge in tests. Tree
// mutations fire the same signals a host would.
type fakeGraph struct {
	mu       sync.Mutex
	nextID   NodeID
	nodes    map[NodeID]SceneNode
	root     *fakeNode
	handlers map[string][]SignalFunc
}

func newFakeGraph() *fakeGraph {
	g := &fakeGraph{
		nodes:    map[NodeID]SceneNode{},
		handlers: map[string][]SignalFunc{},
	}
	g.root = &fakeNode{id: g.allocID(), name: "Root", classes: []string{"Node"}}
	g.nodes[g.root.id] = g.root
	return g
}

func (g *fakeGraph) allocID() NodeID {
	g.nextID++
	return g.nextID
}

func (g *fakeGraph) Root() SceneNode { return g.root }

func (g *fakeGraph) Resolve(id NodeID) SceneNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[id]
}

func (g *fakeGraph) Connect(signal string, fn SignalFunc) {
	g.handlers[signal] = append(g.handlers[signal], fn)
}

func (g *fakeGraph) emit(signal string, node SceneNode) {
	for _, fn := range g.handlers[signal] {
		fn(node)
	}
}

func (g *fakeGraph) base(n SceneNode) *fakeNode {
	switch v := n.(type) {
	case *fakeNode:
		return v
	case *fakeNode3D:
		return &v.fakeNode
	case *fakeNode2D:
		return &v.fakeNode
	}
	return nil
}

// newNode builds a detached plain node.
func (g *fakeGraph) newNode(name string, classes ...string) *fakeNode {
	if len(classes) == 0 {
		classes = []string{"Node"}
	}
	return &fakeNode{id: g.allocID(), name: name, classes: classes}
}

// newNode3D builds a detached spatial node with an identity transform.
func (g *fakeGraph) newNode3D(name string, classes ...string) *fakeNode3D {
	classes = append(classes, "Node3D", "Node")
	return &fakeNode3D{
		fakeNode: fakeNode{id: g.allocID(), name: name, classes: classes},
		tf:       IdentityHostTransform3D(),
	}
}

// newNode2D builds a detached 2D node with an identity transform.
func (g *fakeGraph) newNode2D(name string, classes ...string) *fakeNode2D {
	classes = append(classes, "Node2D", "CanvasItem", "Node")
	return &fakeNode2D{
		fakeNode: fakeNode{id: g.allocID(), name: name, classes: classes},
		tf:       IdentityHostTransform2D(),
	}
}

// add attaches the node under parent and announces it.
func (g *fakeGraph) add(parent, node SceneNode) {
	b := g.base(node)
	b.parent = parent
	pb := g.base(parent)
	pb.children = append(pb.children, node)

	g.mu.Lock()
	g.nodes[node.ID()] = node
	g.mu.Unlock()

	g.emit(SignalNodeAdded, node)
}

// remove frees the node and its subtree, then announces the removals. The
// nodes are unresolvable by the time the signals fire, as on a real host.
func (g *fakeGraph) remove(node SceneNode) {
	var freed []SceneNode
	var walk func(n SceneNode)
	walk = func(n SceneNode) {
		freed = append(freed, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(node)

	g.mu.Lock()
	for _, n := range freed {
		delete(g.nodes, n.ID())
	}
	g.mu.Unlock()

	if p := g.base(node).parent; p != nil {
		pb := g.base(p)
		keep := pb.children[:0]
		for _, c := range pb.children {
			if c.ID() != node.ID() {
				keep = append(keep, c)
			}
		}
		pb.children = keep
	}

	for _, n := range freed {
		g.emit(SignalNodeRemoved, n)
	}
}

// rename changes the node's name and announces it.
func (g *fakeGraph) rename(node SceneNode, name string) {
	g.base(node).name = name
	g.emit(SignalNodeRenamed, node)
}

// entityFor returns the mirror entity for a node, or nil.
func entityFor(w *World, node SceneNode) *Entity {
	var found *Entity
	w.Query(MaskOf[NodeHandle](), Bitmask{}, func(e *Entity) {
		if Get[NodeHandle](e).ID() == node.ID() {
			found = e
		}
	})
	return found
}
