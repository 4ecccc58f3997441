// Package class implements host data types registered as JS classes:
// per-engine class ids, a finalizer/GC-mark hook pair, prototype/static
// initialization, and borrow-checked access to the host cell each
// instance carries. It generalizes the opaque-storage-behind-a-hidden-
// property pattern the teacher uses for wrapped protobuf messages.
package class

import (
	"sync/atomic"

	"github.com/gojsembed/qjsgo/jserr"
)

const (
	cellFree int32 = 0
	cellMut  int32 = -1
)

// Cell is the borrow-checked host-data container every class instance
// carries. TryRef/TryMut never block: a conflicting borrow fails fast
// with a jserr.Borrow error, matching spec.md's "try_ref(obj) and
// try_mut(obj)... return a borrow-checked reference" (RefCell-style
// dynamic borrow checking, not a mutex).
type Cell[T any] struct {
	state int32 // 0 = free, -1 = mutably borrowed, >0 = N shared readers
	value T
}

// NewCell wraps v in a fresh, unborrowed Cell.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Ref is a released-on-Drop shared borrow.
type Ref[T any] struct {
	cell *Cell[T]
}

// Get returns the borrowed value. Valid until Drop.
func (r *Ref[T]) Get() *T { return &r.cell.value }

// Drop releases the shared borrow.
func (r *Ref[T]) Drop() { atomic.AddInt32(&r.cell.state, -1) }

// Mut is a released-on-Drop exclusive borrow.
type Mut[T any] struct {
	cell *Cell[T]
}

// Get returns the mutably borrowed value. Valid until Drop.
func (m *Mut[T]) Get() *T { return &m.cell.value }

// Drop releases the exclusive borrow.
func (m *Mut[T]) Drop() { atomic.StoreInt32(&m.cell.state, cellFree) }

// TryRef acquires a shared borrow, failing if the cell is currently
// mutably borrowed.
func (c *Cell[T]) TryRef() (*Ref[T], error) {
	for {
		cur := atomic.LoadInt32(&c.state)
		if cur == cellMut {
			return nil, jserr.Borrow("cell already borrowed mutably")
		}
		if atomic.CompareAndSwapInt32(&c.state, cur, cur+1) {
			return &Ref[T]{cell: c}, nil
		}
	}
}

// TryMut acquires an exclusive borrow, failing if the cell is already
// borrowed in any way.
func (c *Cell[T]) TryMut() (*Mut[T], error) {
	if !atomic.CompareAndSwapInt32(&c.state, cellFree, cellMut) {
		return nil, jserr.Borrow("cell already borrowed")
	}
	return &Mut[T]{cell: c}, nil
}
