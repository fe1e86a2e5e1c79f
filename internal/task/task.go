// Package task provides one-shot futures and the worker pool that
// resolves them in the background.
package task

import "sync/atomic"

// Task is a single-producer, multi-consumer result cell representing a
// computation in flight. Exactly one producer publishes a result with
// SetResult; any number of consumers may block on Result.
//
// The result is written before the done channel closes, so a consumer
// can never observe "producer finished but value absent" — that failure
// mode of the classic signal-then-read pattern is eliminated by
// construction. The remaining hazard is documented, not tolerated: if
// no producer ever calls SetResult, Result blocks forever. The system
// assumes every task handed to a Processor is eventually serviced.
type Task[T any] struct {
	done   chan struct{}
	set    atomic.Bool
	result T
}

// New creates an unresolved task.
func New[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// SetResult publishes the result and wakes all blocked consumers.
// It must be called exactly once; a second call is a programming
// invariant violation and panics.
func (t *Task[T]) SetResult(v T) {
	if !t.set.CompareAndSwap(false, true) {
		panic("task: result already set")
	}
	t.result = v
	close(t.done)
}

// Result blocks the calling goroutine until SetResult has been invoked,
// then returns the value. Calls after resolution return the cached
// value without blocking.
func (t *Task[T]) Result() T {
	<-t.done
	return t.result
}

// Done returns a channel that is closed once the result is available.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// TryResult returns the result without blocking. The second return
// value reports whether the task has resolved.
func (t *Task[T]) TryResult() (T, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		var zero T
		return zero, false
	}
}
