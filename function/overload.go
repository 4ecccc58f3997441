package function

import "github.com/dop251/goja"

// Overload composes several Go functions - each built the same way New
// builds one - into a single JS callable whose arity range is the union
// of the candidates'. On call, candidates are tried in order; a
// candidate that fails with an arity or conversion error falls through
// to the next; any other error propagates immediately. Mirrors spec.md
// §4.G's "overload composition".
func Overload(cap Capability, fns ...any) (goja.Value, error) {
	candidates := make([]goja.Callable, 0, len(fns))
	for _, fn := range fns {
		wrapped, err := New(cap, fn)
		if err != nil {
			return nil, err
		}
		callable, ok := goja.AssertFunction(wrapped)
		if !ok {
			return nil, candidateNotCallable()
		}
		candidates = append(candidates, callable)
	}

	rt := cap.Runtime()
	trampoline := func(call goja.FunctionCall) (result goja.Value) {
		defer capturePanic(rt, &result)

		var lastErr *goja.Exception
		for _, candidate := range candidates {
			res, err := candidate(call.This, call.Arguments...)
			if err == nil {
				return res
			}
			var exc *goja.Exception
			if asException(err, &exc) && isRetryable(rt, exc) {
				lastErr = exc
				continue
			}
			panic(err)
		}
		if lastErr != nil {
			panic(lastErr.Value())
		}
		return goja.Undefined()
	}
	return rt.ToValue(trampoline), nil
}

func candidateNotCallable() error {
	return errNotCallable{}
}

type errNotCallable struct{}

func (errNotCallable) Error() string { return "overload candidate did not produce a callable" }

func asException(err error, target **goja.Exception) bool {
	exc, ok := err.(*goja.Exception)
	if !ok {
		return false
	}
	*target = exc
	return true
}

// isRetryable reports whether exc looks like an arity/type mismatch
// (TypeError), the only class of failure spec.md allows Overload to fall
// through on.
func isRetryable(rt *goja.Runtime, exc *goja.Exception) bool {
	obj, ok := exc.Value().(*goja.Object)
	if !ok {
		return false
	}
	name := obj.Get("name")
	return name != nil && name.String() == "TypeError"
}
