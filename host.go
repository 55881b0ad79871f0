package secs

import (
	"github.com/go-gl/mathgl/mgl64"
)

// NodeID is the host-assigned stable identity of a scene graph object.
// The zero value is never a valid identity.
type NodeID int64

// ResourceID is the host-assigned stable identity of a reference-counted
// host resource (not a tree node).
type ResourceID int64

// SignalFunc receives a host signal firing. The host invokes it on its main
// thread with the signal's argument list, whatever arity that is.
type SignalFunc func(args ...any)

// Well-known tree mutation signals exposed by a SceneGraph.
const (
	SignalNodeAdded   = "node_added"
	SignalNodeRemoved = "node_removed"
	SignalNodeRenamed = "node_renamed"
)

// SceneGraph is the host-owned retained node tree. All methods are
// main-thread only; SECS guarantees it calls them exclusively from inside
// Process/PhysicsProcess, which the host drives on that thread.
type SceneGraph interface {
	// Root returns the tree root. It is never nil for a live graph.
	Root() SceneNode

	// Resolve turns a stable identity back into a live node. Returns nil if
	// the object has been destroyed; destruction races are expected and
	// callers treat nil as a silent no-op.
	Resolve(id NodeID) SceneNode

	// Connect registers fn with one of the graph's tree mutation signals
	// (SignalNodeAdded, SignalNodeRemoved, SignalNodeRenamed). The host
	// invokes fn on its main thread with the affected node as the only
	// argument.
	Connect(signal string, fn SignalFunc)
}

// SceneNode is one object in the host graph. The host owns it; SECS never
// retains one across frames and always re-resolves through a NodeHandle.
type SceneNode interface {
	// ID returns the node's stable identity.
	ID() NodeID

	// Name returns the node's human-readable name.
	Name() string

	// Class returns the node's concrete host type name.
	Class() string

	// Inherits reports whether the node's type equals or derives from the
	// named host class.
	Inherits(class string) bool

	// Parent returns the parent node, or nil for the tree root.
	Parent() SceneNode

	// Children returns the node's direct children in tree order.
	Children() []SceneNode

	// Groups returns the flat group names the node is a member of.
	Groups() []string

	// HasSignal reports whether the node exposes the named signal.
	HasSignal(name string) bool

	// ConnectSignal installs fn as a callback for the named signal. The
	// host invokes fn on its main thread with the firing's argument list.
	ConnectSignal(name string, fn SignalFunc)
}

// HostTransform3D is the host-native spatial encoding for three-dimensional
// nodes: a basis matrix (rotation and scale) plus an origin.
type HostTransform3D struct {
	Basis  mgl64.Mat3
	Origin mgl64.Vec3
}

// HostTransform2D is the host-native spatial encoding for two-dimensional
// nodes: two rotation-scale columns plus an origin.
type HostTransform2D struct {
	A      mgl64.Vec2
	B      mgl64.Vec2
	Origin mgl64.Vec2
}

// IdentityHostTransform3D returns the identity host encoding.
func IdentityHostTransform3D() HostTransform3D {
	return HostTransform3D{Basis: mgl64.Ident3()}
}

// IdentityHostTransform2D returns the identity host encoding.
func IdentityHostTransform2D() HostTransform2D {
	return HostTransform2D{A: mgl64.Vec2{1, 0}, B: mgl64.Vec2{0, 1}}
}

// Spatial3D is implemented by host nodes that carry a 3D transform.
type Spatial3D interface {
	SceneNode
	Transform3D() HostTransform3D
	SetTransform3D(t HostTransform3D)
}

// Spatial2D is implemented by host nodes that carry a 2D transform.
type Spatial2D interface {
	SceneNode
	Transform2D() HostTransform2D
	SetTransform2D(t HostTransform2D)
}

// BulkTransformSink is an optional fast path a SceneGraph may implement.
// When present, the write-back pass pushes all changed transforms for a tick
// as flat arrays, one call per axis group, instead of one call per entity per
// field. The host composes each entity's transform from the given
// translation, rotation and scale exactly as Transform.HostTransform3D and
// Transform.HostTransform2D do, so results are identical to the per-entity
// path.
type BulkTransformSink interface {
	SetPositions3D(ids []NodeID, positions []mgl64.Vec3)
	SetRotations3D(ids []NodeID, rotations []mgl64.Quat)
	SetScales3D(ids []NodeID, scales []mgl64.Vec3)

	SetPositions2D(ids []NodeID, positions []mgl64.Vec2)
	SetRotations2D(ids []NodeID, rotations []float64)
	SetScales2D(ids []NodeID, scales []mgl64.Vec2)
}

// HostResource is a reference-counted host object that is not a tree node,
// typically produced by the host's resource loader.
type HostResource interface {
	// ResourceID returns the resource's stable identity.
	ResourceID() ResourceID

	// IncRef increments the host-side reference count.
	IncRef()

	// DecRef decrements the host-side reference count and reports whether
	// the decremented reference was the last one.
	DecRef() bool

	// Destroy releases the underlying object. Only called by the handle
	// that observed the last DecRef.
	Destroy()
}

// ResourceStore resolves resource identities, mirroring SceneGraph.Resolve
// for reference-counted resources.
type ResourceStore interface {
	// ResolveResource returns the live resource for id, or nil if it has
	// been destroyed.
	ResolveResource(id ResourceID) HostResource
}
