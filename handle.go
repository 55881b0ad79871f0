package secs

import (
	"fmt"
	"sync"
)

// NodeHandle is a lightweight, copyable reference to a host graph node by
// stable identity. It never owns the node and is never cached as a live
// reference across frames; resolution happens on demand and may fail if the
// node was destroyed in the meantime.
//
// Two handles for the same graph and identity compare equal. A handle that
// outlives its target stays valid to hold; it simply resolves to nil.
//
// Resolution touches the host graph and is therefore main-thread only.
type NodeHandle struct {
	id    NodeID
	graph SceneGraph
}

// HandleOf wraps a live node in a handle.
func HandleOf(graph SceneGraph, node SceneNode) NodeHandle {
	if node == nil {
		return NodeHandle{}
	}
	return NodeHandle{id: node.ID(), graph: graph}
}

// NewNodeHandle builds a handle from a raw identity.
func NewNodeHandle(graph SceneGraph, id NodeID) NodeHandle {
	return NodeHandle{id: id, graph: graph}
}

// ID returns the stable identity the handle refers to.
func (h NodeHandle) ID() NodeID {
	return h.id
}

// Valid reports whether the handle refers to any identity at all. A valid
// handle may still fail to resolve if the node was destroyed.
func (h NodeHandle) Valid() bool {
	return h.id != 0 && h.graph != nil
}

// TryGet resolves the handle. Returns nil if the node was destroyed.
func (h NodeHandle) TryGet() SceneNode {
	if !h.Valid() {
		return nil
	}
	return h.graph.Resolve(h.id)
}

// Get resolves the handle and panics if the node was destroyed. Use TryGet
// anywhere a destruction race is possible, which is almost everywhere.
func (h NodeHandle) Get() SceneNode {
	n := h.TryGet()
	if n == nil {
		panic(fmt.Sprintf("secs: node %d was freed", h.id))
	}
	return n
}

// String returns a debug representation.
func (h NodeHandle) String() string {
	return fmt.Sprintf("NodeHandle(%d)", h.id)
}

// ResourceHandle is a counted reference to a host resource. Constructing or
// cloning increments the host's reference count; Release decrements it and,
// if that was the last reference, destroys the underlying object.
//
// Clone and Release are the only mutation points for the count. Release is
// idempotent per handle, so a double Release never double-frees.
type ResourceHandle struct {
	id    ResourceID
	store ResourceStore

	once sync.Once
}

// NewResourceHandle wraps a live resource, taking a reference.
func NewResourceHandle(store ResourceStore, res HostResource) *ResourceHandle {
	if res == nil {
		return nil
	}
	res.IncRef()
	return &ResourceHandle{id: res.ResourceID(), store: store}
}

// ID returns the stable identity the handle refers to.
func (h *ResourceHandle) ID() ResourceID {
	return h.id
}

// TryGet resolves the handle. Returns nil if the resource was destroyed.
func (h *ResourceHandle) TryGet() HostResource {
	if h == nil || h.store == nil {
		return nil
	}
	return h.store.ResolveResource(h.id)
}

// Clone takes an additional reference and returns a new handle for it.
// Returns nil if the resource is already gone.
func (h *ResourceHandle) Clone() *ResourceHandle {
	res := h.TryGet()
	if res == nil {
		return nil
	}
	res.IncRef()
	return &ResourceHandle{id: h.id, store: h.store}
}

// Release drops this handle's reference. If it was the last one, the
// underlying resource is destroyed. Calling Release more than once on the
// same handle is a no-op.
func (h *ResourceHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		res := h.TryGet()
		if res == nil {
			// Already destroyed elsewhere, nothing to drop.
			return
		}
		if res.DecRef() {
			res.Destroy()
		}
	})
}
