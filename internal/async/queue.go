package async

import (
	"context"
	"runtime/debug"
	"sync"

	"mnemo/internal/logging"
)

// Task is a unit of background work. Tasks receive the worker's context, not
// the request context: once enqueued they run to completion or failure even
// if the originating request has gone away.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue is an unbounded FIFO with a single consumer. Per-request handlers
// enqueue and return immediately; the consumer drains in arrival order, so
// work enqueued for the same user never interleaves.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []Task
	closed bool
	logger logging.Logger
}

// NewQueue creates an empty queue. Call Start to launch the consumer.
func NewQueue(logger logging.Logger) *Queue {
	q := &Queue{logger: logging.OrNop(logger)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a task. It never blocks. Enqueue on a closed queue drops
// the task silently; shutdown is not a time for new work.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Start launches the single consumer goroutine. It drains until ctx is
// cancelled and Close is called; a failing or panicking task is terminal for
// that task only.
func (q *Queue) Start(ctx context.Context) {
	Go(q.logger, "background-queue", func() {
		for {
			task, ok := q.next(ctx)
			if !ok {
				return
			}
			q.runOne(ctx, task)
		}
	})
	// Wake the consumer when the context is cancelled so it can observe
	// closure instead of waiting on the condvar forever.
	go func() {
		<-ctx.Done()
		q.Close()
	}()
}

// Close marks the queue closed and wakes the consumer. Pending tasks are
// still drained before the consumer exits.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

func (q *Queue) next(ctx context.Context) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.tasks) == 0 {
		if q.closed || ctx.Err() != nil {
			return Task{}, false
		}
		q.cond.Wait()
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task, true
}

func (q *Queue) runOne(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("background task %q panicked: %v\n%s", task.Name, r, debug.Stack())
		}
	}()
	if err := task.Run(ctx); err != nil {
		q.logger.Error("background task failed [%s]: %v", task.Name, err)
	}
}
