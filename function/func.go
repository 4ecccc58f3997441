package function

import (
	"reflect"
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
)

// Func wraps a stateless (or externally-synchronized) Go function as a
// JS callable. It is New under a name call sites read more easily.
func Func(cap Capability, fn any) (goja.Value, error) {
	return New(cap, fn)
}

// FuncMut wraps fn with a re-entrancy guard: a recursive or concurrent
// call into fn while an outer call is still running panics, mirroring
// the borrow-check on a FnMut's captured cell from spec.md §4.G.
func FuncMut(cap Capability, fn any) (goja.Value, error) {
	var busy int32
	return newGuarded(cap, fn, func(call func() []reflect.Value) []reflect.Value {
		if !atomic.CompareAndSwapInt32(&busy, 0, 1) {
			panic(cap.Runtime().NewGoError(jserr.Borrow("FuncMut cell is already borrowed (re-entrant call)")))
		}
		defer atomic.StoreInt32(&busy, 0)
		return call()
	})
}

// FuncOnce wraps fn so that any call after the first panics, mirroring
// the double-call panic on a FnOnce from spec.md §4.G.
func FuncOnce(cap Capability, fn any) (goja.Value, error) {
	var called int32
	return newGuarded(cap, fn, func(call func() []reflect.Value) []reflect.Value {
		if !atomic.CompareAndSwapInt32(&called, 0, 1) {
			panic(cap.Runtime().NewGoError(jserr.CellFn("FuncOnce called more than once")))
		}
		return call()
	})
}
