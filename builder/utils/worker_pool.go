package utils

import (
	"context"
	"sync"
)

// WorkerPool runs handler over submitted tasks on a fixed number of goroutines.
// Cancelling ctx stops workers from taking new tasks.
type WorkerPool[T any] struct {
	workers   int
	ctx       context.Context
	wg        sync.WaitGroup
	taskQueue chan T
	handler   func(context.Context, T)
}

func NewWorkerPool[T any](ctx context.Context, workers int, handler func(context.Context, T)) *WorkerPool[T] {
	if workers <= 0 {
		workers = DefaultWorkerCount()
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &WorkerPool[T]{
		workers:   workers,
		ctx:       ctx,
		taskQueue: make(chan T, workers*WorkerBufferSize),
		handler:   handler,
	}
}

func (p *WorkerPool[T]) Workers() int {
	return p.workers
}

func (p *WorkerPool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *WorkerPool[T]) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			// a task may be dequeued in the same instant ctx is cancelled
			if p.ctx.Err() != nil {
				return
			}
			p.handler(p.ctx, task)
		}
	}
}

// Submit queues a task. It returns false once the pool's context is done.
func (p *WorkerPool[T]) Submit(task T) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.taskQueue <- task:
		return true
	}
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (p *WorkerPool[T]) Stop() {
	close(p.taskQueue)
	p.wg.Wait()
}

// Run starts the pool, submits every task and waits for completion.
func (p *WorkerPool[T]) Run(tasks []T) error {
	p.Start()
	for _, task := range tasks {
		if !p.Submit(task) {
			break
		}
	}
	p.Stop()
	return p.ctx.Err()
}
