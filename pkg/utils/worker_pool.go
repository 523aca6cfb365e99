package utils

import (
	"log"
	"sync"
)

// WorkerPool is a fixed-size goroutine pool with a buffered job queue.
// Background jobs submit work here instead of spawning goroutines directly,
// which keeps the goroutine count bounded under load.
type WorkerPool struct {
	jobQueue  chan func()
	workerNum int
	wg        sync.WaitGroup
	quit      chan struct{}
}

// NewWorkerPool creates a pool with workerNum workers and a queue of
// queueSize pending jobs.
func NewWorkerPool(workerNum int, queueSize int) *WorkerPool {
	return &WorkerPool{
		jobQueue:  make(chan func(), queueSize),
		workerNum: workerNum,
		quit:      make(chan struct{}),
	}
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerNum; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobQueue:
					// A recover per job so one panicking job cannot take
					// the worker down with it.
					func() {
						defer func() {
							if r := recover(); r != nil {
								log.Printf("worker %d recovered from panic: %v", workerID, r)
							}
						}()
						job()
					}()
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// Submit enqueues a job. Blocks when the queue is full rather than dropping
// work.
func (p *WorkerPool) Submit(job func()) {
	p.jobQueue <- job
}

// Stop signals the workers to exit and waits for them.
func (p *WorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
