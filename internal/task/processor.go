package task

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Processor is a pool of goroutines executing queued tessellation work.
//
// Work items are distributed across per-worker queues. Workers pull
// primarily from their own queue but steal from others when idle, which
// balances load when some tessellations are slower than others. No
// ordering is guaranteed across distinct work items; every accepted
// item eventually runs, including during shutdown (Close drains the
// queues before the workers exit).
//
// Thread safety: Processor is safe for concurrent use.
type Processor struct {
	// workers is the number of worker goroutines.
	workers int

	// workQueues holds per-worker work queues.
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the processor is accepting work.
	running atomic.Bool
}

// NewProcessor creates a processor with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used. Workers start
// immediately and wait for work.
func NewProcessor(workers int) *Processor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A few buffered slots per worker hide submit latency.
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &Processor{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range p.workQueues {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// worker is the main loop for each worker goroutine.
func (p *Processor) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			// Drain remaining work before exiting
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			// Try to steal work from another worker
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				// No work available anywhere, block on own queue
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *Processor) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
// Returns nil if no work is available.
func (p *Processor) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
			// Queue is empty, try next
		}
	}
	return nil
}

// Add enqueues a unit of work for background execution. The work is
// sent to the worker with the shortest queue. Add never blocks beyond
// queue backpressure and is a no-op after Close.
func (p *Processor) Add(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}

	// Find worker with shortest queue (simple load balancing)
	minLen := len(p.workQueues[0])
	minIdx := 0
	for i := 1; i < p.workers; i++ {
		if qLen := len(p.workQueues[i]); qLen < minLen {
			minLen = qLen
			minIdx = i
		}
	}

	select {
	case p.workQueues[minIdx] <- fn:
	case <-p.done:
		// Processor is closing
	}
}

// Close gracefully shuts down the processor. It stops accepting new
// work, waits for all queued work to complete, and then stops all
// workers. Close is safe to call multiple times.
func (p *Processor) Close() {
	if !p.running.CompareAndSwap(true, false) {
		// Already closed
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Processor) Workers() int {
	return p.workers
}

// IsRunning returns true if the processor is still accepting work.
func (p *Processor) IsRunning() bool {
	return p.running.Load()
}
