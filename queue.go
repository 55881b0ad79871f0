package secs

import (
	"sync"
)

// queue is an unbounded multi-producer queue. Hosts push from their signal
// callbacks; the schedule drains once per tick. Pushing never blocks, so a
// host callback can fire mid-drain without deadlocking, and a push after
// Close is silently dropped.
//
// Backpressure is the drain cadence itself: the consumer runs every tick, so
// the queue only grows without bound if ticks stop entirely.
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{}
}

// Push appends an item. No-op after Close.
func (q *queue[T]) Push(item T) {
	q.mu.Lock()
	if !q.closed {
		q.items = append(q.items, item)
	}
	q.mu.Unlock()
}

// Drain removes and returns all queued items in push order.
func (q *queue[T]) Drain() []T {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Len returns the number of queued items.
func (q *queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close drops the backlog and makes further pushes no-ops.
func (q *queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
}
