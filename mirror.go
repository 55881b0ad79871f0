package secs

import (
	"go.uber.org/zap"
)

// Name is the mirror component holding the node's name. Kept in step with
// the host through rename events.
type Name string

// Groups is the mirror component listing the node's group memberships at
// mirroring time.
type Groups []string

// Is reports membership in the named group.
func (g Groups) Is(name string) bool {
	for _, n := range g {
		if n == name {
			return true
		}
	}
	return false
}

// ChildOf links a mirror entity to its parent's mirror entity, reflecting
// the host tree topology at mirroring time.
type ChildOf struct {
	Parent EntityID
}

// mirror keeps the entity store in step with the host tree. All of its
// work happens on the main thread, inside the First stage.
type mirror struct {
	graph      SceneGraph
	watcher    *treeWatcher
	collisions *collisionWatcher
	mirrorTree bool
	log        *zap.Logger
}

func newMirror(graph SceneGraph, tw *treeWatcher, cw *collisionWatcher, cfg Config, log *zap.Logger) *mirror {
	return &mirror{
		graph:      graph,
		watcher:    tw,
		collisions: cw,
		mirrorTree: cfg.MirrorChildRelationships,
		log:        log,
	}
}

// drainAndApply consumes the tick's queued tree events. Registered in First.
func (m *mirror) drainAndApply(w *World) {
	events := m.watcher.ch.Drain()
	if len(events) == 0 {
		return
	}
	if len(events) > 1024 {
		m.log.Debug("large tree event batch", zap.Int("events", len(events)))
	}
	m.apply(w, events)
}

// seedFromTree mirrors the whole existing tree as synthetic add events, in
// pre-order so parents exist before their children link to them. Runs once
// at App construction, before the host can fire real events.
func (m *mirror) seedFromTree(w *World) {
	root := m.graph.Root()
	if root == nil {
		return
	}
	var events []TreeEvent
	var walk func(n SceneNode)
	walk = func(n SceneNode) {
		events = append(events, TreeEvent{Node: HandleOf(m.graph, n), Kind: NodeAdded})
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	m.apply(w, events)
	m.log.Info("scene tree mirrored", zap.Int("nodes", len(events)))
}

// apply processes one batch of tree events in arrival order. The node-to-
// entity index is built once per batch and maintained across it, so a child
// added later in the batch finds the parent added earlier.
func (m *mirror) apply(w *World, events []TreeEvent) {
	byNode := make(map[NodeID]*Entity)
	w.Query(MaskOf[NodeHandle](), Bitmask{}, func(e *Entity) {
		byNode[Get[NodeHandle](e).ID()] = e
	})

	for _, ev := range events {
		switch ev.Kind {
		case NodeAdded:
			m.applyAdded(w, byNode, ev.Node)
		case NodeRemoved:
			m.applyRemoved(w, byNode, ev.Node)
		case NodeRenamed:
			m.applyRenamed(w, byNode, ev.Node)
		}
	}
}

func (m *mirror) applyAdded(w *World, byNode map[NodeID]*Entity, h NodeHandle) {
	node := h.TryGet()
	if node == nil {
		// Added and freed within one tick; nothing to mirror.
		m.log.Debug("added node already freed", zap.Int64("node", int64(h.ID())))
		return
	}

	// Find-or-create: an entity may already hold the handle, either spawned
	// by the application ahead of time or re-announced by the host.
	e := byNode[h.ID()]
	if e == nil {
		e = w.Spawn()
		handle := h
		Add(e, &handle)
		byNode[h.ID()] = e
	}

	name := Name(node.Name())
	Add(e, &name)

	types := probeNodeTypes(node)
	Add(e, &types)

	groups := Groups(node.Groups())
	Add(e, &groups)

	if syncMode(w) != SyncDisabled {
		tick := w.Tick()
		switch n := node.(type) {
		case Spatial3D:
			tr := NewTransform3DFromHost(n.Transform3D(), tick)
			Add(e, &tr)
		case Spatial2D:
			tr := NewTransform2DFromHost(n.Transform2D(), tick)
			Add(e, &tr)
		}
	}

	if m.collisions.observe(node) {
		Add(e, &Collisions{})
	}

	if err := applyBundles(e, h, node.Class()); err != nil {
		m.log.Warn("bundle application failed",
			zap.Int64("node", int64(h.ID())),
			zap.Error(err),
		)
	}

	if m.mirrorTree {
		if parent := node.Parent(); parent != nil {
			if pe := byNode[parent.ID()]; pe != nil {
				Add(e, &ChildOf{Parent: pe.ID()})
			} else {
				m.log.Warn("parent not mirrored, skipping child link",
					zap.String("node", node.Name()),
					zap.Int64("parent", int64(parent.ID())),
				)
			}
		}
	}

	m.log.Debug("node mirrored",
		zap.String("name", node.Name()),
		zap.String("class", node.Class()),
		zap.Uint64("entity", uint64(e.ID())),
	)
}

// applyRemoved despawns the mirror entity, or strips its node-derived
// components when the entity is Protected. The node itself is usually
// already freed by the time the event drains, so everything here works off
// the stable identity alone.
func (m *mirror) applyRemoved(w *World, byNode map[NodeID]*Entity, h NodeHandle) {
	e := byNode[h.ID()]
	if e == nil {
		m.log.Debug("removed node had no mirror entity", zap.Int64("node", int64(h.ID())))
		return
	}
	delete(byNode, h.ID())

	if Has[Protected](e) {
		Remove[NodeHandle](e)
		Remove[Name](e)
		Remove[NodeTypes](e)
		Remove[Groups](e)
		Remove[Transform3D](e)
		Remove[Transform2D](e)
		Remove[Collisions](e)
		Remove[ChildOf](e)
		m.log.Debug("protected entity stripped", zap.Uint64("entity", uint64(e.ID())))
		return
	}

	w.Despawn(e)
	m.log.Debug("mirror entity despawned",
		zap.Int64("node", int64(h.ID())),
		zap.Uint64("entity", uint64(e.ID())),
	)
}

// applyRenamed updates the Name component and nothing else.
func (m *mirror) applyRenamed(w *World, byNode map[NodeID]*Entity, h NodeHandle) {
	e := byNode[h.ID()]
	if e == nil {
		return
	}
	node := h.TryGet()
	if node == nil {
		return
	}
	if n := Get[Name](e); n != nil {
		*n = Name(node.Name())
	}
}
