package value

import (
	"math"

	"github.com/dop251/goja"
)

// Undefined returns the undefined Value for rt.
func Undefined(rt *goja.Runtime) Value {
	return Value{rt: rt, raw: goja.Undefined(), tag: TagUndefined}
}

// Null returns the null Value for rt.
func Null(rt *goja.Runtime) Value {
	return Value{rt: rt, raw: goja.Null(), tag: TagNull}
}

// Bool returns a boolean Value.
func Bool(rt *goja.Runtime, b bool) Value {
	return Value{rt: rt, raw: rt.ToValue(b), tag: TagBool}
}

// Int returns an integer Value. Mirrors spec's small-int-optimized int(i32)
// constructor; goja itself decides the internal representation.
func Int(rt *goja.Runtime, i int32) Value {
	return Value{rt: rt, raw: rt.ToValue(int64(i)), tag: TagInt}
}

// Float returns a floating-point Value.
func Float(rt *goja.Runtime, f float64) Value {
	return Value{rt: rt, raw: rt.ToValue(f), tag: TagFloat}
}

// Number returns an Int Value if f has no fractional part and fits cleanly,
// otherwise a Float Value - the "small-int optimized" number() constructor
// from spec §4.D.
func Number(rt *goja.Runtime, f float64) Value {
	if isIntegralFloat(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
		return Int(rt, int32(f))
	}
	return Float(rt, f)
}

// String returns a string Value.
func String(rt *goja.Runtime, s string) Value {
	return Value{rt: rt, raw: rt.ToValue(s), tag: TagString}
}

// FromRaw adopts an already-classified goja.Value, taking over its single
// engine reference (spec's "unsafe adoption"). Since goja values carry no
// engine refcount, this is simply Of with a clearer name at call sites that
// are receiving a value from elsewhere in the engine rather than
// constructing one fresh.
func FromRaw(rt *goja.Runtime, raw goja.Value) Value {
	return Of(rt, raw)
}

// IntoRaw transfers v back out as a plain goja.Value, for handing to goja
// APIs that don't know about this package's tagging.
func IntoRaw(v Value) goja.Value {
	return v.raw
}
