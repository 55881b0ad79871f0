package secs

import (
	"reflect"
	"sync"
)

// Events is a typed per-world event queue. Writers publish from any
// goroutine; readers consume through an EventReader, which tracks what it
// has already seen. An event stays visible for one full tick after the tick
// it was published in, then drops, so a reader that runs every tick never
// misses an event and never sees one twice.
type Events[T any] struct {
	mu      sync.Mutex
	last    []T
	current []T

	// total is the absolute index one past the newest event. The oldest
	// retained event sits at total - len(current) - len(last).
	total uint64
}

func newEvents[T any]() *Events[T] {
	return &Events[T]{}
}

// Publish appends an event to the current tick's buffer.
func (ev *Events[T]) Publish(e T) {
	ev.mu.Lock()
	ev.current = append(ev.current, e)
	ev.total++
	ev.mu.Unlock()
}

// Len returns the number of retained events.
func (ev *Events[T]) Len() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return len(ev.last) + len(ev.current)
}

// Reader creates an independent cursor over the queue. Events already
// retained at creation time are visible to it.
func (ev *Events[T]) Reader() *EventReader[T] {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return &EventReader[T]{ev: ev, seen: ev.total - uint64(len(ev.last)+len(ev.current))}
}

// update rotates the buffers, dropping the previous tick's generation.
// Called once per tick by the schedule.
func (ev *Events[T]) update() {
	ev.mu.Lock()
	ev.last = ev.current
	ev.current = nil
	ev.mu.Unlock()
}

// eventUpdater lets the world rotate queues of unknown element type.
type eventUpdater interface {
	update()
}

// EventReader consumes events from one Events queue. Not safe for
// concurrent use; give each system its own reader.
type EventReader[T any] struct {
	ev   *Events[T]
	seen uint64
}

// Read returns the retained events this reader has not seen yet, oldest
// first, and marks them seen.
func (r *EventReader[T]) Read() []T {
	r.ev.mu.Lock()
	defer r.ev.mu.Unlock()

	oldest := r.ev.total - uint64(len(r.ev.last)+len(r.ev.current))
	if r.seen < oldest {
		// Reader stalled past the retention window; skip what's gone.
		r.seen = oldest
	}

	n := r.ev.total - r.seen
	if n == 0 {
		return nil
	}
	out := make([]T, 0, n)
	skip := int(r.seen - oldest)
	for _, e := range r.ev.last {
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, e)
	}
	for _, e := range r.ev.current {
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, e)
	}
	r.seen = r.ev.total
	return out
}

// EventsOf returns the world's event queue for type T, creating it on first
// use. Queues rotate once per tick; see Events.
func EventsOf[T any](w *World) *Events[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()

	w.evMu.Lock()
	defer w.evMu.Unlock()

	if q, ok := w.events[key]; ok {
		return q.(*Events[T])
	}
	q := newEvents[T]()
	w.events[key] = q
	return q
}

// updateEvents rotates every registered event queue. Runs in First.
func (w *World) updateEvents() {
	w.evMu.Lock()
	queues := make([]eventUpdater, 0, len(w.events))
	for _, q := range w.events {
		queues = append(queues, q.(eventUpdater))
	}
	w.evMu.Unlock()

	for _, q := range queues {
		q.update()
	}
}
