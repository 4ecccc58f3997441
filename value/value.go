package value

import (
	"math"
	"math/big"

	"github.com/dop251/goja"
)

// Value pairs the runtime it was produced by (spec's "realm pointer") with
// a raw goja.Value and a cached Tag. It is the Go analogue of a
// reference-counted engine value; goja's own garbage collector stands in
// for the engine-level refcounting spec.md describes; Clone is therefore
// a no-op kept only so call sites read the same as spec.md.
type Value struct {
	rt  *goja.Runtime
	raw goja.Value
	tag Tag
}

// Runtime returns the *goja.Runtime this Value was produced against.
func (v Value) Runtime() *goja.Runtime { return v.rt }

// Raw returns the underlying goja.Value.
func (v Value) Raw() goja.Value { return v.raw }

// Tag returns the concrete kind of v.
func (v Value) Tag() Tag { return v.tag }

// Clone is a no-op: goja values are Go-GC-managed, so there is no engine
// refcount to bump. It exists so translated call sites read the same as
// the reference-counted original.
func (v Value) Clone() Value { return v }

// Of classifies raw and returns a tagged Value. rt must be the runtime
// that produced raw.
func Of(rt *goja.Runtime, raw goja.Value) Value {
	return Value{rt: rt, raw: raw, tag: classify(raw)}
}

func classify(raw goja.Value) Tag {
	if raw == nil {
		return TagUninitialized
	}
	switch {
	case goja.IsUndefined(raw):
		return TagUndefined
	case goja.IsNull(raw):
		return TagNull
	}

	if _, ok := raw.(*goja.Symbol); ok {
		return TagSymbol
	}

	obj, isObject := raw.(*goja.Object)
	if !isObject {
		switch exported := raw.Export().(type) {
		case bool:
			return TagBool
		case int64:
			return TagInt
		case *big.Int:
			return TagBigInt
		case string:
			return TagString
		case float64:
			if isIntegralFloat(exported) {
				return TagInt
			}
			return TagFloat
		}
		return TagUninitialized
	}

	switch obj.ClassName() {
	case "Array":
		return TagArray
	case "Function", "GeneratorFunction", "AsyncFunction":
		return TagFunction
	case "Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError":
		return TagException
	}
	if _, isFn := goja.AssertFunction(obj); isFn {
		if _, isCtor := goja.AssertConstructor(obj); isCtor {
			return TagConstructor
		}
		return TagFunction
	}
	return TagObject
}

func isIntegralFloat(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}
