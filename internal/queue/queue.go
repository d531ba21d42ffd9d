// Package queue provides the first-in first-out run queue used to order package builds.
//
// Entries are dequeued in the order they were enqueued, which keeps the run order
// deterministic for a given discovery order.
package queue

// Queue is a FIFO queue. The zero value is ready to use.
type Queue[T any] struct {
	entries []T
	head    int
}

// NewQueue creates a queue holding entries in order.
func NewQueue[T any](entries ...T) *Queue[T] {
	return &Queue[T]{entries: append([]T(nil), entries...)}
}

// Entries returns the entries not yet dequeued. Used for testing.
func (q *Queue[T]) Entries() []T {
	return q.entries[q.head:]
}

// Enqueue adds entry at the back of the queue.
func (q *Queue[T]) Enqueue(entry T) {
	q.entries = append(q.entries, entry)
}

// Dequeue removes and returns the front entry. ok is false when the queue is empty.
func (q *Queue[T]) Dequeue() (entry T, ok bool) {
	if q.Empty() {
		return entry, false
	}

	entry = q.entries[q.head]

	var zero T

	q.entries[q.head] = zero
	q.head++

	// Reclaim space once the consumed prefix dominates.
	if q.head > len(q.entries)/2 {
		q.entries = append([]T(nil), q.entries[q.head:]...)
		q.head = 0
	}

	return entry, true
}

func (q *Queue[T]) Len() int {
	return len(q.entries) - q.head
}

func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}
