package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsTasksInOrder(t *testing.T) {
	q := NewQueue(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	for i := 0; i < 5; i++ {
		i := i
		q.Enqueue(Task{
			Name: "ordered",
			Run: func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				if len(order) == 5 {
					close(done)
				}
				mu.Unlock()
				return nil
			},
		})
	}
	q.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestQueuePanicIsolation(t *testing.T) {
	q := NewQueue(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	q.Enqueue(Task{Name: "boom", Run: func(context.Context) error { panic("boom") }})
	q.Enqueue(Task{Name: "after", Run: func(context.Context) error {
		close(done)
		return nil
	}})
	q.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer died with the panicking task")
	}
}

func TestQueueDropsAfterClose(t *testing.T) {
	q := NewQueue(nil)
	q.Close()
	q.Enqueue(Task{Name: "late", Run: func(context.Context) error { return nil }})
	assert.Equal(t, 0, q.Len())
}

func TestQueueDrainsPendingOnClose(t *testing.T) {
	q := NewQueue(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ran int
	var mu sync.Mutex
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		last := i == 2
		q.Enqueue(Task{Name: "pending", Run: func(context.Context) error {
			mu.Lock()
			ran++
			mu.Unlock()
			if last {
				close(done)
			}
			return nil
		}})
	}
	q.Close()
	q.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pending tasks were not drained")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 3, ran)
}
