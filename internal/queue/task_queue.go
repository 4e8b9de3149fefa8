package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Runner executes one task to its terminal state.
type Runner interface {
	Run(ctx context.Context, taskID string) error
}

// TaskQueue is the fire-and-forget dispatch mechanism between task
// creation and task execution. Each enqueued id is delivered to exactly one
// worker; callers never block on completion. A task that fails stays
// failed, the worker only logs the error.
type TaskQueue struct {
	tasks  chan string
	runner Runner
	log    *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewTaskQueue(runner Runner, workers, buffer int, log *zap.Logger) *TaskQueue {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 100
	}

	q := &TaskQueue{
		tasks:  make(chan string, buffer),
		runner: runner,
		log:    log,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	return q
}

// Enqueue hands the task id to a worker. Blocks only if the buffer is
// full, never on task execution.
func (q *TaskQueue) Enqueue(taskID string) {
	q.tasks <- taskID
}

func (q *TaskQueue) work(id int) {
	defer q.wg.Done()

	for taskID := range q.tasks {
		q.log.Debug("worker picked up task", zap.Int("worker", id), zap.String("task_id", taskID))
		if err := q.runner.Run(context.Background(), taskID); err != nil {
			q.log.Error("task run failed", zap.Int("worker", id), zap.String("task_id", taskID), zap.Error(err))
		}
	}
}

// Close stops accepting tasks and waits for in-flight ones to finish.
func (q *TaskQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}
