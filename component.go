package secs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

// ComponentID is a unique identifier for a component type.
// Valid IDs range from 0 to 255.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 255

// componentRegistry manages component type registration with lock-free reads.
// Component IDs are assigned sequentially and cached for fast lookup.
// sync.Map provides lock-free reads for the hot path (checking registered types)
// while still allowing safe concurrent registration.
type componentRegistry struct {
	// types maps reflect.Type to ComponentID using sync.Map for lock-free reads
	// This is the hot path - components are registered once but looked up constantly
	types sync.Map // map[reflect.Type]ComponentID

	// names and typesArr store component metadata indexed by ComponentID
	// These are written once during registration and read-only afterward
	names    [MaxComponents]string
	typesArr [MaxComponents]reflect.Type

	// nextID is the next available component ID (atomic for lock-free allocation)
	nextID atomic.Uint32

	// arrMu protects writes to names and typesArr arrays
	// Only needed during registration, not for normal lookups
	arrMu sync.RWMutex
}

// globalRegistry is the singleton component registry.
var globalRegistry = &componentRegistry{}

// registerComponentType registers a component type and returns its ID.
// This is called automatically when components are first used.
func registerComponentType(t reflect.Type) ComponentID {
	// Fast path: lock-free read from sync.Map
	if id, ok := globalRegistry.types.Load(t); ok {
		return id.(ComponentID)
	}

	// Slow path: need to register new type
	newID := ComponentID(globalRegistry.nextID.Add(1) - 1)
	if newID >= MaxComponents {
		panic(fmt.Sprintf("secs: component limit exceeded (max %d types)", MaxComponents))
	}

	// LoadOrStore ensures only one goroutine wins if multiple try simultaneously
	actual, loaded := globalRegistry.types.LoadOrStore(t, newID)
	if loaded {
		// Another goroutine registered this type first; our allocated ID is
		// wasted, but that's rare.
		return actual.(ComponentID)
	}

	globalRegistry.arrMu.Lock()
	globalRegistry.names[newID] = t.Name()
	globalRegistry.typesArr[newID] = t
	globalRegistry.arrMu.Unlock()

	return newID
}

// componentID returns the ComponentID for type T, registering it if needed.
func componentID[T any]() ComponentID {
	return registerComponentType(reflect.TypeOf((*T)(nil)).Elem())
}

// componentIDFromType returns the ComponentID for the given type.
func componentIDFromType(t reflect.Type) ComponentID {
	return registerComponentType(t)
}

// Attachable is implemented by components that need initialization logic
// when attached to an entity.
type Attachable interface {
	Attach(e *Entity)
}

// Detachable is implemented by components that need cleanup logic
// when detached from an entity or when the entity is despawned.
type Detachable interface {
	Detach(e *Entity)
}

// Add attaches a component to the entity.
// If a component of this type already exists, it is replaced.
// If the component implements Attachable, its Attach method is called.
//
// Concurrency:
// This function is thread-safe. Systems scheduled without MainThread may add
// components to entities they own exclusively.
func Add[T any](e *Entity, component *T) {
	if e == nil || component == nil {
		return
	}

	id := componentID[T]()

	e.mu.Lock()

	// Check for existing component and call Detach if needed
	oldPtr := e.components[id]
	if oldPtr != nil {
		if old, ok := any((*T)(oldPtr)).(Detachable); ok {
			e.mu.Unlock()
			old.Detach(e)
			e.mu.Lock()
		}
	}

	e.components[id] = unsafe.Pointer(component)
	e.mask.Set(uint8(id))

	e.mu.Unlock()

	if attachable, ok := any(component).(Attachable); ok {
		attachable.Attach(e)
	}
}

// Remove detaches a component from the entity.
// If the component implements Detachable, its Detach method is called first.
func Remove[T any](e *Entity) {
	if e == nil {
		return
	}

	id := componentID[T]()

	e.mu.Lock()

	ptr := e.components[id]
	if ptr == nil {
		e.mu.Unlock()
		return
	}

	// Clear before calling Detach to prevent re-entrancy issues
	e.components[id] = nil
	e.mask.Clear(uint8(id))

	e.mu.Unlock()

	if component, ok := any((*T)(ptr)).(Detachable); ok {
		component.Detach(e)
	}
}

// Get retrieves a component from the entity.
// Returns nil if the component is not present.
//
// Concurrency:
// This function is thread-safe. Mutating the returned component's fields is
// safe as long as the entity is not shared between concurrently running
// systems.
func Get[T any](e *Entity) *T {
	if e == nil {
		return nil
	}

	id := componentID[T]()

	e.mu.RLock()
	ptr := e.components[id]
	e.mu.RUnlock()

	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// Has checks if a component type is present on the entity.
//
// Concurrency:
// This function is fully thread-safe and can be called from any goroutine.
func Has[T any](e *Entity) bool {
	if e == nil {
		return false
	}

	id := componentID[T]()

	e.mu.RLock()
	has := e.mask.Has(uint8(id))
	e.mu.RUnlock()

	return has
}

// addComponentUnsafe adds a component by ID without locking.
// Does not call lifecycle hooks.
func (e *Entity) addComponentUnsafe(id ComponentID, ptr unsafe.Pointer) {
	e.components[id] = ptr
	e.mask.Set(uint8(id))
}

// ComponentName returns the name of the component type with the given ID.
// Uses read lock since names array is only written during registration.
func ComponentName(id ComponentID) string {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.names[id]
}

// ComponentType returns the reflect.Type of the component with the given ID.
// Uses read lock since typesArr is only written during registration.
func ComponentType(id ComponentID) reflect.Type {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.typesArr[id]
}

// RegisteredComponentCount returns the number of registered component types.
func RegisteredComponentCount() int {
	return int(globalRegistry.nextID.Load())
}

// MaskOf returns a bitmask with only the bit for component type T set.
// Combine masks with Or to build query filters.
func MaskOf[T any]() Bitmask {
	var m Bitmask
	m.Set(uint8(componentID[T]()))
	return m
}
