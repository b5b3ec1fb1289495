package concurrent

import (
	"context"
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool runs a fixed batch of jobs on numWorkers goroutines. jobs are queued with AddJob before
// Start, the queue is sealed with Close, and results are drained from CollectResults after Wait.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
	ctx        context.Context
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return NewWorkerPoolWithContext[T, G](context.Background(), numWorkers, jobQueueSize)
}

// NewWorkerPoolWithContext returns a pool whose workers stop picking up queued jobs once ctx is done.
// skipped jobs produce no result.
func NewWorkerPoolWithContext[T any, G any](ctx context.Context, numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
		ctx:        ctx,
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		if wp.ctx.Err() != nil {
			continue
		}
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) NumWorkers() int {
	return wp.numWorkers
}
