package asynccore

import "sync"

const slabSize = 64

// slot is one stable-address task slot. Slabs are appended as `[]slot`
// chunks and never resized in place, so a slot's address never changes
// for its entire life, matching spec's "a slot pointer remains stable
// for the slot's entire life".
type slot struct {
	mu     sync.Mutex
	queue  *Queue
	active bool // true exactly while the slot holds a future
	queued bool // true exactly while the slot appears in the ready list
	future Future
}

// Waker is the per-slot wake handle threaded through Future.Poll. Wake and
// WakeByRef are equivalent here since Go has no separate owned/borrowed
// waker distinction; Drop is a documented no-op (Go's GC reclaims the
// slot's memory once nothing references it).
type Waker struct {
	s *slot
}

// Wake marks the slot ready again and notifies the outer poller.
func (w *Waker) Wake() { w.WakeByRef() }

// WakeByRef is identical to Wake; kept distinct to mirror the two-method
// vtable the task queue's contract names explicitly.
func (w *Waker) WakeByRef() {
	s := w.s
	s.mu.Lock()
	wake := s.active && !s.queued
	if wake {
		s.queued = true
	}
	s.mu.Unlock()
	if wake {
		s.queue.pushReady(s)
		s.queue.wakeOuter()
	}
}

// Drop releases the waker. A no-op: nothing to release under Go's GC.
func (w *Waker) Drop() {}

// Queue is the per-engine slab-backed task queue.
type Queue struct {
	mu        sync.Mutex
	slabs     [][]slot
	free      []*slot
	ready     []*slot
	live      int
	outerWake func()
}

// NewQueue returns an empty task queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push registers fut with the queue, allocating a slot from the free list
// or appending a new slab if none is free. The caller asserts fut is
// valid for as long as the queue may poll it (spec's "unsafe push").
func (q *Queue) Push(fut Future) {
	q.mu.Lock()
	s := q.allocSlotLocked()
	s.active = true
	s.queued = true
	s.future = fut
	q.live++
	q.ready = append(q.ready, s)
	q.mu.Unlock()
}

// Spawn implements function.Spawner: it runs fn on its own goroutine and
// registers the result as a task so a subsequent Poll observes its
// completion, driving the engine's task queue when a scope exits with
// pending work.
func (q *Queue) Spawn(fn func()) {
	q.Push(NewGoroutineFuture(func() (any, error) {
		fn()
		return nil, nil
	}))
}

// Schedule implements function.Scheduler: fn is queued as a task and runs
// during the queue's next Poll, on the goroutine that calls Poll, rather
// than on the goroutine that called Schedule. Poll itself takes no
// runtime lock; the caller of Poll decides what it holds.
func (q *Queue) Schedule(fn func()) {
	q.Push(FutureFunc(func() (any, error) {
		fn()
		return nil, nil
	}))
}

func (q *Queue) allocSlotLocked() *slot {
	if n := len(q.free); n > 0 {
		s := q.free[n-1]
		q.free = q.free[:n-1]
		return s
	}
	q.slabs = append(q.slabs, make([]slot, slabSize))
	slab := q.slabs[len(q.slabs)-1]
	for i := range slab {
		slab[i].queue = q
	}
	for i := 1; i < slabSize; i++ {
		q.free = append(q.free, &slab[i])
	}
	return &slab[0]
}

func (q *Queue) pushReady(s *slot) {
	q.mu.Lock()
	q.ready = append(q.ready, s)
	q.mu.Unlock()
}

func (q *Queue) wakeOuter() {
	q.mu.Lock()
	wake := q.outerWake
	q.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Poll drains the ready list once: every ready slot is polled with its
// own waker; slots that complete are returned to the free list, slots
// still pending have their future put back. outerWake, if non-nil, is
// cached and invoked by a waker firing after this call returns.
func (q *Queue) Poll(outerWake func()) Status {
	q.mu.Lock()
	q.outerWake = outerWake
	if q.live == 0 {
		q.mu.Unlock()
		return Empty
	}
	batch := q.ready
	q.ready = nil
	q.mu.Unlock()

	progress := false
	for _, s := range batch {
		s.mu.Lock()
		s.queued = false
		fut := s.future
		s.future = nil
		s.mu.Unlock()

		if fut == nil {
			continue
		}

		_, _, status := fut.Poll(&Waker{s: s})
		if status == FutureReady {
			q.complete(s)
			progress = true
		} else {
			s.mu.Lock()
			s.future = fut
			s.mu.Unlock()
		}
	}

	if progress {
		return Progress
	}
	return Pending
}

func (q *Queue) complete(s *slot) {
	q.mu.Lock()
	s.active = false
	q.live--
	q.free = append(q.free, s)
	q.mu.Unlock()
}

// Live reports the number of tasks currently registered with the queue.
func (q *Queue) Live() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.live
}
