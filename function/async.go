package function

import (
	"reflect"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

// Scheduler marshals a callback onto the thread that owns the runtime's
// engine lock, e.g. asynccore's task queue. AsyncFunc uses it to resolve
// or reject the returned promise safely, since goja runtimes are not
// safe for concurrent access.
type Scheduler interface {
	Schedule(fn func())
}

// Spawner runs fn on a new goroutine. Matches the external Spawner
// interface from spec.md §6.
type Spawner interface {
	Spawn(fn func())
}

// AsyncFunc wraps fn - whose parameters follow the same Arg/Opt/Rest/
// This/WithCapability/Exhaustive convention as New, and which must
// return (R, error) - as a JS callable returning a Promise. Per spec.md
// §4.G: "creates a JS promise capability up front (resolve, reject),
// registers the future with the engine's task queue". Argument
// extraction happens synchronously on the calling goroutine (call data
// is only valid for the duration of the call); fn itself then runs on a
// goroutine spawned via spawner, and its result is marshalled back onto
// the runtime's thread via sched.
func AsyncFunc(cap Capability, sched Scheduler, spawner Spawner, fn any) (goja.Value, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, jserr.FromJS("non-function", "function.AsyncFunc argument")
	}
	p, err := planFor(fnType)
	if err != nil {
		return nil, err
	}

	rt := cap.Runtime()
	trampoline := func(call goja.FunctionCall) (result goja.Value) {
		defer capturePanic(rt, &result)

		args, err := p.extractArgs(rt, cap, call)
		if err != nil {
			jserr.ThrowError(rt, err)
		}

		promise, resolve, reject := rt.NewPromise()

		spawner.Spawn(func() {
			out := fnVal.Call(args)

			sched.Schedule(func() {
				settlePromise(rt, resolve, reject, out)
			})
		})

		return rt.ToValue(promise)
	}

	return rt.ToValue(trampoline), nil
}

func settlePromise(rt *goja.Runtime, resolve, reject func(any), out []reflect.Value) {
	var errVal reflect.Value
	resultVal := out[0]
	if len(out) == 2 {
		errVal = out[1]
	}
	if errVal.IsValid() && !errVal.IsNil() {
		rejectWith(rt, reject, errVal.Interface().(error))
		return
	}
	if !resultVal.IsValid() {
		resolve(goja.Undefined())
		return
	}
	switch rv := resultVal.Interface().(type) {
	case value.Value:
		resolve(rv.Raw())
		return
	case goja.Value:
		resolve(rv)
		return
	}
	converted, err := value.IntoJS(rt, resultVal.Interface())
	if err != nil {
		rejectWith(rt, reject, err)
		return
	}
	resolve(converted.Raw())
}

func rejectWith(rt *goja.Runtime, reject func(any), err error) {
	if e, ok := err.(*jserr.Error); ok && e.Kind == jserr.KindException {
		// A KindException *jserr.Error carries no thrown value, so the
		// promise is rejected with its message string instead of a
		// wrapping GoError.
		reject(rt.ToValue(err.Error()))
		return
	}
	reject(rt.NewGoError(err))
}
