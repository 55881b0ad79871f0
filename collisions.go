package secs

import (
	"go.uber.org/zap"
)

// Host collision signals the mirror connects on physics bodies and areas.
const (
	SignalBodyEntered = "body_entered"
	SignalBodyExited  = "body_exited"
	SignalAreaEntered = "area_entered"
	SignalAreaExited  = "area_exited"
)

// CollisionKind tells an overlap beginning from an overlap ending.
type CollisionKind int

const (
	CollisionStarted CollisionKind = iota
	CollisionEnded
)

// String returns the kind name.
func (k CollisionKind) String() string {
	if k == CollisionStarted {
		return "Started"
	}
	return "Ended"
}

// CollisionEvent is one host collision signal firing, identified by node
// identities since the handler runs on the host thread where entity lookups
// are not available.
type CollisionEvent struct {
	Kind   CollisionKind
	Origin NodeID
	Target NodeID
}

// Collisions is the mirror component tracking which entities a physics node
// currently overlaps. The mirror attaches it to every node exposing the
// collision signals.
type Collisions struct {
	colliding []EntityID
	recent    []EntityID
}

// Colliding returns the entities currently overlapping, in start order.
func (c *Collisions) Colliding() []EntityID {
	return c.colliding
}

// Recent returns the entities whose overlap started this tick.
func (c *Collisions) Recent() []EntityID {
	return c.recent
}

// collisionWatcher queues collision signal firings for the per-tick drain.
type collisionWatcher struct {
	ch *queue[CollisionEvent]
}

func newCollisionWatcher() *collisionWatcher {
	return &collisionWatcher{ch: newQueue[CollisionEvent]()}
}

// observe connects the watcher to one physics node's collision signals.
// Called by the mirror for every node that has them; must run on the host
// thread.
func (cw *collisionWatcher) observe(node SceneNode) bool {
	pairs := []struct {
		signal string
		kind   CollisionKind
	}{
		{SignalBodyEntered, CollisionStarted},
		{SignalBodyExited, CollisionEnded},
		{SignalAreaEntered, CollisionStarted},
		{SignalAreaExited, CollisionEnded},
	}

	origin := node.ID()
	connected := false
	for _, p := range pairs {
		if !node.HasSignal(p.signal) {
			continue
		}
		kind := p.kind
		node.ConnectSignal(p.signal, func(args ...any) {
			other, ok := firstNodeArg(args)
			if !ok {
				return
			}
			cw.ch.Push(CollisionEvent{Kind: kind, Origin: origin, Target: other.ID()})
		})
		connected = true
	}
	return connected
}

// drainCollisionEvents moves queued firings into the world's typed event
// queue. Runs in First, after event rotation.
func drainCollisionEvents(cw *collisionWatcher) SystemFunc {
	return func(w *World) {
		out := EventsOf[CollisionEvent](w)
		for _, ev := range cw.ch.Drain() {
			out.Publish(ev)
		}
	}
}

// updateCollisions applies this tick's collision events to the Collisions
// components. Recent sets reset every tick; colliding sets persist until the
// matching end event. Events for unmirrored nodes drop silently, since the
// node may have been freed between firing and drain.
func updateCollisions() SystemFunc {
	var reader *EventReader[CollisionEvent]
	collisionsMask := MaskOf[NodeHandle]().Or(MaskOf[Collisions]())

	return func(w *World) {
		if reader == nil {
			reader = EventsOf[CollisionEvent](w).Reader()
		}

		w.Query(collisionsMask, Bitmask{}, func(e *Entity) {
			Get[Collisions](e).recent = nil
		})

		events := reader.Read()
		if len(events) == 0 {
			return
		}

		// One pass over the mirror set per drain, not per event.
		byNode := make(map[NodeID]*Entity)
		w.Query(MaskOf[NodeHandle](), Bitmask{}, func(e *Entity) {
			byNode[Get[NodeHandle](e).ID()] = e
		})

		for _, ev := range events {
			w.log.Debug("collision event",
				zap.String("kind", ev.Kind.String()),
				zap.Int64("origin", int64(ev.Origin)),
				zap.Int64("target", int64(ev.Target)),
			)

			target, ok := byNode[ev.Target]
			if !ok {
				continue
			}
			origin, ok := byNode[ev.Origin]
			if !ok {
				continue
			}
			col := Get[Collisions](origin)
			if col == nil {
				continue
			}

			switch ev.Kind {
			case CollisionStarted:
				col.colliding = append(col.colliding, target.ID())
				col.recent = append(col.recent, target.ID())
			case CollisionEnded:
				keep := col.colliding[:0]
				for _, id := range col.colliding {
					if id != target.ID() {
						keep = append(keep, id)
					}
				}
				col.colliding = keep
			}
		}
	}
}
