// Package function implements the native-to-JS callback bridge: wrapping
// a Go function as a JS callable with arity checking, argument
// extraction, panic containment, and Fn/FnMut/FnOnce/async variants.
// Argument extraction is composed from a small set of generic parameter
// wrapper types (Arg, Opt, Rest, This, WithCapability, Exhaustive),
// mirroring the arity contract in spec.md §4.G.
package function

import (
	"reflect"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

// Capability is the minimal surface the function bridge needs from
// qjs.Capability: the runtime to build JS values against. A concrete
// *qjs.Capability implements this without function needing to import qjs
// (which sits above function in the dependency order).
type Capability interface {
	Runtime() *goja.Runtime
}

type extractorKind uint8

const (
	kindPositional extractorKind = iota
	kindThis
	kindOptional
	kindRest
	kindCapability
	kindExhaustive
)

// extractor is implemented by every parameter wrapper type below. Each
// generic instantiation (Arg[int32], Opt[string], ...) gets its own
// extractFrom method that closes over its own T, so dispatch across
// "any T" happens through this non-generic interface rather than through
// reflection on T itself.
type extractor interface {
	kind() extractorKind
	extractFrom(v value.Value) (reflect.Value, error)
	extractRest(vs []value.Value) (reflect.Value, error)
}

// Arg extracts the Nth positional argument, converted to T via
// value.FromJS. It is the default parameter kind: required, consumes
// exactly one argument.
type Arg[T any] struct {
	Value T
}

func (Arg[T]) kind() extractorKind { return kindPositional }

func (a Arg[T]) extractFrom(v value.Value) (reflect.Value, error) {
	t, err := value.FromJS[T](v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(Arg[T]{Value: t}), nil
}

func (a Arg[T]) extractRest([]value.Value) (reflect.Value, error) {
	return reflect.Value{}, jserr.Unknown(nil)
}

// This extracts the call receiver (call.This), converted to T.
type This[T any] struct {
	Value T
}

func (This[T]) kind() extractorKind { return kindThis }

func (t This[T]) extractFrom(v value.Value) (reflect.Value, error) {
	val, err := value.FromJS[T](v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(This[T]{Value: val}), nil
}

func (t This[T]) extractRest([]value.Value) (reflect.Value, error) {
	return reflect.Value{}, jserr.Unknown(nil)
}

// Opt consumes zero or one argument: Present is false and Value is the
// zero T when the argument was omitted or is undefined.
type Opt[T any] struct {
	Value   T
	Present bool
}

func (Opt[T]) kind() extractorKind { return kindOptional }

func (o Opt[T]) extractFrom(v value.Value) (reflect.Value, error) {
	val, present, err := value.ToOptional[T](v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(Opt[T]{Value: val, Present: present}), nil
}

func (o Opt[T]) extractRest([]value.Value) (reflect.Value, error) {
	return reflect.Value{}, jserr.Unknown(nil)
}

// Rest consumes every remaining argument, each converted to T.
type Rest[T any] struct {
	Values []T
}

func (Rest[T]) kind() extractorKind { return kindRest }

func (r Rest[T]) extractFrom(value.Value) (reflect.Value, error) {
	return reflect.Value{}, jserr.Unknown(nil)
}

func (r Rest[T]) extractRest(vs []value.Value) (reflect.Value, error) {
	out := make([]T, len(vs))
	for i, v := range vs {
		t, err := value.FromJS[T](v)
		if err != nil {
			return reflect.Value{}, err
		}
		out[i] = t
	}
	return reflect.ValueOf(Rest[T]{Values: out}), nil
}

// capabilityMarker is the non-generic type WithCapability uses so New can
// recognize it by reflect.Type without instantiating a generic interface.
type capabilityMarker struct{}

func (capabilityMarker) isCapabilityMarker() {}

// WithCapability injects the calling Capability without consuming an
// argument position.
type WithCapability struct {
	capabilityMarker
	Cap Capability
}

// exhaustiveMarker lets New recognize the Exhaustive sentinel type.
type exhaustiveMarker struct{}

func (exhaustiveMarker) isExhaustiveMarker() {}

// Exhaustive is a sentinel parameter enforcing "no extra arguments": if
// present in a function's parameter list, a call with more arguments
// than the computed max arity fails with jserr.TooManyArgs.
type Exhaustive struct {
	exhaustiveMarker
}
