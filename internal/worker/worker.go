package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Task is a unit of background work. Errors are logged by the pool.
type Task func(ctx context.Context) error

type Pool struct {
	numWorkers int
	tasks      chan Task
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task, bufferSize),
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if err := task(ctx); err != nil {
				slog.Error("worker: task failed", "worker", id, "error", err)
			}
		}
	}
}

func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// TrySubmit drops the task instead of blocking when the queue is full.
// Tick-driven submitters use it so a slow task cannot pile up refreshes.
func (p *Pool) TrySubmit(task Task) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
