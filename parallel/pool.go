package parallel

import (
	"runtime"
	"sync"
)

// Pool runs batches of tasks on a fixed set of goroutines.
type Pool struct {
	wg    sync.WaitGroup
	size  int
	work  chan func()
	close func()
}

// Start launches numWorkers goroutines, or GOMAXPROCS of them when
// numWorkers < 1. A pool of one worker runs tasks inline.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		size:  numWorkers,
		close: func() {},
	}

	if numWorkers > 1 {
		pool.work = make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range pool.work {
					f()
				}
			})
		}

		pool.close = sync.OnceFunc(func() {
			close(pool.work)
			pool.wg.Wait()
		})
	}

	return pool
}

func (p *Pool) Size() int {
	if p == nil {
		return 1
	}
	return p.size
}

// Run dispatches tasks to the workers and returns once all of them are done.
// It must not be called from inside a task of the same pool.
func (p *Pool) Run(tasks ...func()) {
	if p == nil || p.work == nil {
		for _, f := range tasks {
			f()
		}
		return
	}

	var batch sync.WaitGroup
	for _, f := range tasks {
		batch.Add(1)
		p.work <- func() {
			defer batch.Done()
			f()
		}
	}
	batch.Wait()
}

// Close stops the workers. The pool must not be used afterwards.
func (p *Pool) Close() {
	if p != nil {
		p.close()
	}
}
