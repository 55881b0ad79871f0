package secs

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// World owns every entity, the shared resources, and the event queues. One
// World exists per App.
//
// Entity storage is guarded by a read-write lock; queries take the read side
// so systems on worker goroutines can iterate concurrently. Structural
// changes (spawn, despawn) take the write side and are cheap enough to do
// from any system.
type World struct {
	mu       sync.RWMutex
	entities map[EntityID]*Entity

	nextEntity atomic.Uint64

	resMu     sync.RWMutex
	resources map[reflect.Type]any

	evMu   sync.Mutex
	events map[reflect.Type]any

	// changeTick advances once per Process/PhysicsProcess call; transform
	// components stamp it to tell host-originated changes from local ones.
	changeTick atomic.Uint64

	log *zap.Logger
}

// NewWorld creates an empty world. Most callers go through NewApp instead.
func NewWorld(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		entities:  make(map[EntityID]*Entity),
		resources: make(map[reflect.Type]any),
		events:    make(map[reflect.Type]any),
		log:       log,
	}
}

// Spawn creates a new empty entity and returns it.
func (w *World) Spawn() *Entity {
	e := &Entity{
		id:    EntityID(w.nextEntity.Add(1)),
		world: w,
	}
	w.mu.Lock()
	w.entities[e.id] = e
	w.mu.Unlock()
	return e
}

// Despawn removes the entity from the world and calls Detach on every
// component that implements Detachable. Despawning an already-despawned
// entity is a no-op.
func (w *World) Despawn(e *Entity) {
	if e == nil || !e.despawned.CompareAndSwap(false, true) {
		return
	}

	w.mu.Lock()
	delete(w.entities, e.id)
	w.mu.Unlock()

	// Detach in a stable order so cleanup is deterministic.
	e.mu.Lock()
	var detach []Detachable
	for _, id := range e.mask.Indices() {
		ptr := e.components[id]
		if ptr == nil {
			continue
		}
		t := ComponentType(ComponentID(id))
		v := reflect.NewAt(t, ptr).Interface()
		if d, ok := v.(Detachable); ok {
			detach = append(detach, d)
		}
		e.components[id] = nil
	}
	e.mask = Bitmask{}
	e.mu.Unlock()

	for _, d := range detach {
		d.Detach(e)
	}
}

// Entity returns the live entity with the given id, or nil.
func (w *World) Entity(id EntityID) *Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities[id]
}

// Count returns the number of live entities.
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// Each calls fn for every live entity. The entity set is snapshotted first,
// so fn may spawn and despawn freely.
func (w *World) Each(fn func(e *Entity)) {
	w.mu.RLock()
	snapshot := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		snapshot = append(snapshot, e)
	}
	w.mu.RUnlock()

	for _, e := range snapshot {
		if e.Alive() {
			fn(e)
		}
	}
}

// Query calls fn for every live entity whose mask contains all bits of
// require and none of exclude. Build the masks with MaskOf and Or.
func (w *World) Query(require, exclude Bitmask, fn func(e *Entity)) {
	w.Each(func(e *Entity) {
		mask := e.Mask()
		if !mask.ContainsAll(require) {
			return
		}
		if mask.ContainsAny(exclude) {
			return
		}
		fn(e)
	})
}

// Tick returns the current change tick. It advances once per frame pass.
func (w *World) Tick() uint64 {
	return w.changeTick.Load()
}

func (w *World) advanceTick() uint64 {
	return w.changeTick.Add(1)
}

// Logger returns the world's logger.
func (w *World) Logger() *zap.Logger {
	return w.log
}

// SetResource stores a singleton value keyed by its concrete type,
// replacing any previous value of that type. Pass a pointer.
func (w *World) SetResource(res any) {
	w.resMu.Lock()
	w.resources[reflect.TypeOf(res)] = res
	w.resMu.Unlock()
}

// Resource returns the world singleton of type T, or nil if none was set.
func Resource[T any](w *World) *T {
	w.resMu.RLock()
	res, ok := w.resources[reflect.TypeOf((*T)(nil))]
	w.resMu.RUnlock()
	if !ok {
		return nil
	}
	return res.(*T)
}

// FindEntityByName returns the first live entity whose Name component equals
// name, or nil. Iteration order over entities is unspecified, so when several
// entities share a name any of them may be returned.
func FindEntityByName(w *World, name string) *Entity {
	var found *Entity
	w.Each(func(e *Entity) {
		if found != nil {
			return
		}
		if n := Get[Name](e); n != nil && string(*n) == name {
			found = e
		}
	})
	return found
}
