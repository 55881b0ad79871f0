package secs

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignalArgument is one argument of a signal firing, captured as a type name
// plus a string rendering. Object arguments also carry the node identity so
// the receiving system can look the mirror entity up.
type SignalArgument struct {
	TypeName string
	Value    string
	NodeID   NodeID
}

// SignalEvent is a generic signal firing: name, origin and the captured
// argument list. Systems read these through EventsOf[SignalEvent].
type SignalEvent struct {
	Name   string
	Origin NodeHandle
	Args   []SignalArgument
}

// signalArgument renders one host argument. The type set mirrors the host's
// primitive value kinds; anything else becomes "Unknown" with its Go
// rendering as the value.
func signalArgument(v any) SignalArgument {
	switch a := v.(type) {
	case nil:
		return SignalArgument{TypeName: "Nil", Value: "<null>"}
	case bool:
		return SignalArgument{TypeName: "Bool", Value: strconv.FormatBool(a)}
	case int:
		return SignalArgument{TypeName: "Int", Value: strconv.Itoa(a)}
	case int64:
		return SignalArgument{TypeName: "Int", Value: strconv.FormatInt(a, 10)}
	case float64:
		return SignalArgument{TypeName: "Float", Value: strconv.FormatFloat(a, 'g', -1, 64)}
	case string:
		return SignalArgument{TypeName: "String", Value: a}
	case mgl64.Vec2:
		return SignalArgument{TypeName: "Vector2", Value: fmt.Sprintf("(%g, %g)", a.X(), a.Y())}
	case mgl64.Vec3:
		return SignalArgument{TypeName: "Vector3", Value: fmt.Sprintf("(%g, %g, %g)", a.X(), a.Y(), a.Z())}
	case SceneNode:
		return SignalArgument{TypeName: "Object", Value: a.Name(), NodeID: a.ID()}
	default:
		return SignalArgument{TypeName: "Unknown", Value: fmt.Sprintf("%v", a)}
	}
}

// signalBridge owns the queues signal callbacks push into and the
// connection bookkeeping. Generic firings go through events; typed firings
// are captured as closures over the world and run during the drain.
type signalBridge struct {
	events *queue[SignalEvent]
	typed  *queue[func(*World)]
	log    *zap.Logger
}

func newSignalBridge(log *zap.Logger) *signalBridge {
	return &signalBridge{
		events: newQueue[SignalEvent](),
		typed:  newQueue[func(*World)](),
		log:    log,
	}
}

// connect installs a generic forwarding callback on a node's signal. Must
// run on the host thread. Returns the connection id used in logs.
func (sb *signalBridge) connect(h NodeHandle, signal string) (uuid.UUID, error) {
	node := h.TryGet()
	if node == nil {
		return uuid.Nil, fmt.Errorf("secs: connect %q: node %d was freed", signal, h.ID())
	}
	if !node.HasSignal(signal) {
		return uuid.Nil, fmt.Errorf("secs: connect %q: node %q has no such signal", signal, node.Name())
	}

	id := uuid.New()
	node.ConnectSignal(signal, func(args ...any) {
		out := make([]SignalArgument, len(args))
		for i, a := range args {
			out[i] = signalArgument(a)
		}
		sb.events.Push(SignalEvent{Name: signal, Origin: h, Args: out})
	})

	sb.log.Debug("signal connected",
		zap.String("signal", signal),
		zap.Int64("node", int64(h.ID())),
		zap.String("connection", id.String()),
	)
	return id, nil
}

// drain moves queued firings into the world. Runs in First, after event
// rotation: generic firings publish to EventsOf[SignalEvent], typed firings
// run their capture closure directly.
func (sb *signalBridge) drain(w *World) {
	out := EventsOf[SignalEvent](w)
	for _, ev := range sb.events.Drain() {
		out.Publish(ev)
	}
	for _, apply := range sb.typed.Drain() {
		apply(w)
	}
}

// TypedSignalMapper turns a raw signal firing into a typed event. It runs on
// the host thread; keep it to pure argument conversion.
type TypedSignalMapper[T any] func(args []any, origin NodeHandle, source EntityID) T

// ConnectTypedSignal installs a callback that maps each firing of the signal
// into a T and publishes it to EventsOf[T]. source is threaded through to
// the mapper so the event can reference the entity that owns the connection;
// pass zero when there is none. Must run on the host thread.
func ConnectTypedSignal[T any](a *App, h NodeHandle, signal string, source EntityID, mapper TypedSignalMapper[T]) error {
	node := h.TryGet()
	if node == nil {
		return fmt.Errorf("secs: connect %q: node %d was freed", signal, h.ID())
	}
	if !node.HasSignal(signal) {
		return fmt.Errorf("secs: connect %q: node %q has no such signal", signal, node.Name())
	}

	sb := a.signals
	node.ConnectSignal(signal, func(args ...any) {
		ev := mapper(args, h, source)
		sb.typed.Push(func(w *World) {
			EventsOf[T](w).Publish(ev)
		})
	})
	return nil
}

// DeferredSignalConnections defers generic signal connections on an entity
// until its NodeHandle exists. The mirror's retry system picks the component
// up each tick, wires whatever it can, and removes it once empty.
type DeferredSignalConnections struct {
	Signals []string
}

// processDeferredSignals wires pending generic connections. Entities without
// a NodeHandle yet are left for a later tick. Main-thread system.
func processDeferredSignals(a *App) SystemFunc {
	mask := MaskOf[NodeHandle]().Or(MaskOf[DeferredSignalConnections]())
	return func(w *World) {
		w.Query(mask, Bitmask{}, func(e *Entity) {
			h := *Get[NodeHandle](e)
			for _, signal := range Get[DeferredSignalConnections](e).Signals {
				if _, err := a.signals.connect(h, signal); err != nil {
					w.log.Warn("deferred signal connection failed",
						zap.String("signal", signal),
						zap.Error(err),
					)
				}
			}
			Remove[DeferredSignalConnections](e)
		})
	}
}

// DeferredTypedConnections defers typed connections for event type T until
// the entity's NodeHandle exists. Register the per-T retry system once with
// RegisterTypedSignal.
type DeferredTypedConnections[T any] struct {
	conns []deferredTypedConn[T]
}

type deferredTypedConn[T any] struct {
	signal string
	mapper TypedSignalMapper[T]
}

// Push queues one deferred connection.
func (d *DeferredTypedConnections[T]) Push(signal string, mapper TypedSignalMapper[T]) {
	d.conns = append(d.conns, deferredTypedConn[T]{signal: signal, mapper: mapper})
}

// NewDeferredTypedConnections builds the component with a single pending
// connection.
func NewDeferredTypedConnections[T any](signal string, mapper TypedSignalMapper[T]) *DeferredTypedConnections[T] {
	d := &DeferredTypedConnections[T]{}
	d.Push(signal, mapper)
	return d
}

// RegisterTypedSignal installs the retry system that wires
// DeferredTypedConnections[T] components as their entities gain handles.
// Call once per event type, before the first frame.
func RegisterTypedSignal[T any](a *App) {
	mask := MaskOf[NodeHandle]().Or(MaskOf[DeferredTypedConnections[T]]())
	a.AddSystem(fmt.Sprintf("deferred_typed_signals_%T", *new(T)), First, func(w *World) {
		w.Query(mask, Bitmask{}, func(e *Entity) {
			h := *Get[NodeHandle](e)
			for _, conn := range Get[DeferredTypedConnections[T]](e).conns {
				if err := ConnectTypedSignal(a, h, conn.signal, e.ID(), conn.mapper); err != nil {
					w.log.Warn("deferred typed signal connection failed",
						zap.String("signal", conn.signal),
						zap.Error(err),
					)
				}
			}
			Remove[DeferredTypedConnections[T]](e)
		})
	}, MainThread())
}
