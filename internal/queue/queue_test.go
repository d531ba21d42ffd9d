package queue_test

import (
	"testing"

	"github.com/monorel/monorel/internal/queue"
	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("keeps insertion order", func(t *testing.T) {
		t.Parallel()

		q := queue.NewQueue("first", "second")
		q.Enqueue("third")

		assert.Equal(t, []string{"first", "second", "third"}, q.Entries())

		var got []string
		for entry, ok := q.Dequeue(); ok; entry, ok = q.Dequeue() {
			got = append(got, entry)
		}

		assert.Equal(t, []string{"first", "second", "third"}, got)
		assert.True(t, q.Empty())
	})

	t.Run("interleaved enqueue and dequeue", func(t *testing.T) {
		t.Parallel()

		q := &queue.Queue[int]{}

		for i := range 10 {
			q.Enqueue(i)

			if i%3 == 0 {
				entry, ok := q.Dequeue()
				assert.True(t, ok)
				assert.Equal(t, i/3, entry)
			}
		}

		assert.Equal(t, 6, q.Len())
		assert.Equal(t, []int{4, 5, 6, 7, 8, 9}, q.Entries())
	})

	t.Run("empty queue", func(t *testing.T) {
		t.Parallel()

		q := queue.NewQueue[string]()

		entry, ok := q.Dequeue()
		assert.False(t, ok)
		assert.Empty(t, entry)
	})
}
