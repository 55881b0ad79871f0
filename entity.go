package secs

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// EntityID is a unique identifier for an entity within a World. IDs are
// allocated sequentially starting at 1 and never reused.
type EntityID uint64

// Entity is a bag of components identified by an EntityID. Entities are
// created through World.Spawn and destroyed through World.Despawn; the
// mirror synchronizer spawns one per host node it observes.
//
// Component access goes through the package-level generic functions
// (Add, Get, Has, Remove), which lock per entity.
type Entity struct {
	id    EntityID
	world *World

	// mask tracks which component types are present
	mask Bitmask

	// components is a sparse table indexed by ComponentID
	components [MaxComponents]unsafe.Pointer

	mu sync.RWMutex

	despawned atomic.Bool
}

// ID returns the entity's unique identifier.
func (e *Entity) ID() EntityID {
	return e.id
}

// World returns the world the entity belongs to.
func (e *Entity) World() *World {
	return e.world
}

// Mask returns a snapshot of the entity's component presence mask.
func (e *Entity) Mask() Bitmask {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mask
}

// Alive reports whether the entity has not been despawned.
func (e *Entity) Alive() bool {
	return !e.despawned.Load()
}

// String returns a debug representation including the component names.
func (e *Entity) String() string {
	mask := e.Mask()
	names := make([]string, 0, mask.Count())
	for _, id := range mask.Indices() {
		names = append(names, ComponentName(ComponentID(id)))
	}
	return fmt.Sprintf("Entity(%d)%v", e.id, names)
}

// Protected marks a mirror entity that must survive its host node. When the
// node is freed, the synchronizer strips the node-derived components instead
// of despawning the entity.
type Protected struct{}
