// Package queue provides the small FIFO and LIFO buffers used to stage
// room transitions and dialogue frames. They are passive: no locking and no
// in-flight guards. Callers decide when to drain them.
package queue

// Queue is a first-in, first-out buffer.
type Queue[T any] struct {
	items []T
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue adds item at the back.
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue removes and returns the front item. ok is false when empty.
func (q *Queue[T]) Dequeue() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Front returns the front item without removing it.
func (q *Queue[T]) Front() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	return q.items[0], true
}

// Len is the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// IsEmpty reports whether the queue holds nothing.
func (q *Queue[T]) IsEmpty() bool {
	return len(q.items) == 0
}

// Clear drops every item.
func (q *Queue[T]) Clear() {
	q.items = nil
}
