package jserr

import (
	"github.com/dop251/goja"
)

// ThrowError converts err into a pending JS exception on rt and panics with it,
// following the table in spec §4.L / §7:
//
//	Allocation                  -> "out of memory" (plain Error)
//	FromJS/IntoJS/MissingArgs/
//	TooManyArgs                 -> TypeError
//	Resolving/Loading           -> ReferenceError
//	Unknown                     -> InternalError-shaped Error
//	everything else             -> Error with err.Error() as message
//
// The panic value is whatever goja expects its native-function trampoline
// to observe: a *goja.Object holding a JS Error instance (a GoError for an
// err that is not an *Error), or a plain object with name and message when
// the named constructor is missing from rt. A KindException *Error takes
// the "everything else" row; a *CaughtError is reinstated with ThrowCaught.
func ThrowError(rt *goja.Runtime, err error) {
	e, ok := err.(*Error)
	if !ok {
		panic(rt.NewGoError(err))
	}

	switch e.Kind {
	case KindAllocation:
		panic(newNamedError(rt, "Error", "out of memory"))
	case KindFromJS, KindIntoJS, KindMissingArgs, KindTooManyArgs:
		panic(rt.NewTypeError(e.Error()))
	case KindResolving, KindLoading:
		panic(newNamedError(rt, "ReferenceError", e.Error()))
	case KindUnknown:
		panic(newNamedError(rt, "InternalError", e.Error()))
	default:
		panic(newNamedError(rt, "Error", e.Error()))
	}
}

// ThrowCaught reinstates a previously-caught value, round-tripping it
// exactly (spec §8: "for any JS value thrown, catch().throw() round-trips").
func ThrowCaught(rt *goja.Runtime, c *CaughtError) {
	Throw(rt, c)
}

// newNamedError builds an instance of one of the JS built-in error
// constructors (Error, ReferenceError, TypeError, InternalError - the
// latter isn't standard ECMAScript but many embedders, including this one,
// register it; see realm.New) by invoking the global constructor
// found on rt, falling back to a plain object carrying a message property
// if the named constructor isn't present in the realm's intrinsic set.
func newNamedError(rt *goja.Runtime, name, msg string) goja.Value {
	ctorVal := rt.GlobalObject().Get(name)
	if ctorVal != nil && !goja.IsUndefined(ctorVal) {
		if ctor, ok := goja.AssertConstructor(ctorVal); ok {
			obj, err := ctor([]goja.Value{rt.ToValue(msg)}, nil)
			if err == nil {
				return obj
			}
		}
	}
	obj := rt.NewObject()
	_ = obj.Set("name", name)
	_ = obj.Set("message", msg)
	return obj
}
