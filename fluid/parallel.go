package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum arena size to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// rangeFunc processes arena indices [lo, hi). slot identifies the chunk so
// callers can hand out per-chunk scratch buffers.
type rangeFunc func(lo, hi, slot int)

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	slot       int
	fn         rangeFunc
}

// workerPool runs per-particle phases across persistent goroutines. Every
// phase writes only to the particles in its own chunk, so the result is the
// same as a serial pass.
type workerPool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers < 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &workerPool{numWorkers: numWorkers}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end, chunk.slot)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits [0, n) into one chunk per worker and blocks until all are done.
// Small inputs run inline on the caller's goroutine.
func (p *workerPool) run(n int, fn rangeFunc) {
	if n < parallelThreshold || p.numWorkers == 1 {
		fn(0, n, 0)
		return
	}
	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, slot: w, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
