package secs

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// BundleFunc builds the extra components a mirror entity gets for one host
// class. It runs on the main thread during mirroring and may resolve the
// handle. Return pointers to component values; each constructed set must be
// independent of any other bundle registered for the same class.
type BundleFunc func(h NodeHandle) []any

// bundleRegistry maps host class names to bundle constructors. Append-only:
// registration happens from init functions, the registry seals when the
// first App is constructed, and lookups after that point are lock-free
// reads of an immutable table.
type bundleRegistry struct {
	mu      sync.Mutex
	sealed  bool
	entries map[string][]BundleFunc
}

var bundles = &bundleRegistry{entries: make(map[string][]BundleFunc)}

// RegisterBundle associates fn with a host class name. Every mirror entity
// created for a node of that class (exact match, not inheritance) has the
// bundle's components inserted after the built-in mirror components.
//
// Call from an init function. Registering after an App has been constructed
// panics: mirroring is already live and nodes of the class may have been
// processed without the bundle.
//
// Multiple bundles for one class all apply, in registration order; the
// order is an implementation artifact, not a contract.
func RegisterBundle(class string, fn BundleFunc) {
	if class == "" || fn == nil {
		panic("secs: RegisterBundle needs a class name and a constructor")
	}
	bundles.mu.Lock()
	defer bundles.mu.Unlock()
	if bundles.sealed {
		panic(fmt.Sprintf("secs: RegisterBundle(%q) after App construction", class))
	}
	bundles.entries[class] = append(bundles.entries[class], fn)
}

// sealBundles freezes the registry. Called once per process from NewApp.
func sealBundles() {
	bundles.mu.Lock()
	bundles.sealed = true
	bundles.mu.Unlock()
}

// bundlesForClass returns the constructors registered for a class.
func bundlesForClass(class string) []BundleFunc {
	bundles.mu.Lock()
	defer bundles.mu.Unlock()
	return bundles.entries[class]
}

// insertComponent attaches an any-typed component to an entity, registering
// its type on first sight. The value must be a non-nil pointer to a struct.
func insertComponent(e *Entity, component any) error {
	v := reflect.ValueOf(component)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("secs: bundle component must be a non-nil pointer, got %T", component)
	}
	if v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("secs: bundle component must point to a struct, got %T", component)
	}

	id := componentIDFromType(v.Elem().Type())

	e.mu.Lock()
	e.addComponentUnsafe(id, unsafe.Pointer(v.Pointer()))
	e.mu.Unlock()

	if attachable, ok := component.(Attachable); ok {
		attachable.Attach(e)
	}
	return nil
}

// applyBundles runs every matching constructor for the node's class and
// inserts the resulting components.
func applyBundles(e *Entity, h NodeHandle, class string) error {
	for _, fn := range bundlesForClass(class) {
		for _, component := range fn(h) {
			if err := insertComponent(e, component); err != nil {
				return fmt.Errorf("class %q: %w", class, err)
			}
		}
	}
	return nil
}
