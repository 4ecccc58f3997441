package asynccore

import "sync/atomic"

// PollStatus is the result of polling a single Future once.
type PollStatus int

const (
	// FuturePending means the future has not produced a result yet; it
	// must call Waker.Wake (or WakeByRef) once it's ready to be polled again.
	FuturePending PollStatus = iota
	// FutureReady means the future has produced its final result.
	FutureReady
)

// Future is one unit of host async work registered with a Queue. Poll is
// called by the queue whenever the future's slot is in the ready list; it
// must not block. A future that isn't ready yet must arrange for w.Wake
// to be called later, or it will never be polled again.
type Future interface {
	Poll(w *Waker) (result any, err error, status PollStatus)
}

// FutureFunc adapts a plain poll step (no waker bookkeeping of its own)
// into a Future, for tasks that always resolve on their very first poll -
// the "Schedule a callback" case used to settle promises from the
// runtime's own thread.
type FutureFunc func() (any, error)

func (f FutureFunc) Poll(*Waker) (any, error, PollStatus) {
	result, err := f()
	return result, err, FutureReady
}

// goroutineFuture runs fn on its own goroutine and reports completion
// through a channel, giving a plain blocking Go function the Future
// shape the queue expects without requiring it to be written as an
// explicit resumable state machine.
type goroutineFuture struct {
	done      chan struct{}
	result    any
	err       error
	waiterSet int32
}

// NewGoroutineFuture spawns fn immediately on a new goroutine and returns
// a Future that becomes ready once fn returns.
func NewGoroutineFuture(fn func() (any, error)) Future {
	f := &goroutineFuture{done: make(chan struct{})}
	go func() {
		f.result, f.err = fn()
		close(f.done)
	}()
	return f
}

func (f *goroutineFuture) Poll(w *Waker) (any, error, PollStatus) {
	select {
	case <-f.done:
		return f.result, f.err, FutureReady
	default:
		if atomic.CompareAndSwapInt32(&f.waiterSet, 0, 1) {
			go func() {
				<-f.done
				w.Wake()
			}()
		}
		return nil, nil, FuturePending
	}
}
