package queue

import (
	"sync"
)

// Queue is a generic thread-safe FIFO queue. Replay backends use it to
// decouple the synchronous simulation loop from slower sinks such as a
// database write loop.
//
// Popped slots are released lazily: the backing slice advances a head
// index and is only compacted when a pop or drain empties it.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// Pop removes and returns the first item. Returns the zero value if
// the queue is empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var item T
	if q.head < len(q.items) {
		item = q.items[q.head]
		// Drop the reference so popped payloads can be collected.
		var zero T
		q.items[q.head] = zero
		q.head++
		if q.head == len(q.items) {
			q.reset()
		}
	}
	return item
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head == len(q.items)
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.reset()
	q.mu.Unlock()
}

// GetAndEmpty returns all items and clears the queue. Drain loops call
// this once per tick instead of popping one item at a time.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.items[q.head:]
	q.items = nil
	q.head = 0
	return pending
}

// reset must be called with the lock held.
func (q *Queue[T]) reset() {
	q.items = q.items[:0]
	q.head = 0
}
