package value

import (
	"math"
	"math/big"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
)

// Converter is the FromJs<'s> analogue: fallible extraction from a Value
// to a host type T. It is implemented as an interface rather than a bare
// generic function so user types can opt in by implementing it directly
// (spec §4.D: "Two traits form the conversion layer").
type Converter[T any] interface {
	FromValue(v Value) (T, error)
}

// IntoConverter is the IntoJs<'s> analogue: converts a host value into a
// Value against a particular runtime.
type IntoConverter interface {
	IntoValue(rt *goja.Runtime) (Value, error)
}

// FromJS extracts a T out of v using the blanket conversions below,
// falling through to a user Converter[T] if T implements one via
// RegisterConverter.
func FromJS[T any](v Value) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool, string:
		return fromJSPrimitive[T](v)
	}
	if conv, ok := lookupConverter[T](); ok {
		return conv.FromValue(v)
	}
	return zero, jserr.FromJS(v.Tag().String(), typeName[T]())
}

// IntoJS converts a host value into a Value bound to rt, using the blanket
// conversions below.
func IntoJS[T any](rt *goja.Runtime, val T) (Value, error) {
	switch v := any(val).(type) {
	case bool:
		return Bool(rt, v), nil
	case int:
		return Number(rt, float64(v)), nil
	case int8:
		return Int(rt, int32(v)), nil
	case int16:
		return Int(rt, int32(v)), nil
	case int32:
		return Int(rt, v), nil
	case int64:
		return Number(rt, float64(v)), nil
	case uint:
		return Number(rt, float64(v)), nil
	case uint8:
		return Int(rt, int32(v)), nil
	case uint16:
		return Int(rt, int32(v)), nil
	case uint32:
		return Number(rt, float64(v)), nil
	case uint64:
		return Number(rt, float64(v)), nil
	case float32:
		return Float(rt, float64(v)), nil
	case float64:
		return Float(rt, v), nil
	case string:
		return String(rt, v), nil
	case *big.Int:
		return Of(rt, rt.ToValue(v)), nil
	}
	if conv, ok := any(val).(IntoConverter); ok {
		return conv.IntoValue(rt)
	}
	return Value{}, jserr.IntoJS(typeName[T](), "Value")
}

func fromJSPrimitive[T any](v Value) (T, error) {
	var zero T
	switch any(zero).(type) {
	case bool:
		if !v.IsBool() {
			return zero, jserr.FromJS(v.Tag().String(), "bool")
		}
		b, _ := v.raw.Export().(bool)
		return any(b).(T), nil
	case string:
		if !v.IsString() {
			return zero, jserr.FromJS(v.Tag().String(), "string")
		}
		return any(v.raw.String()).(T), nil
	}

	if !v.Is(TagFloat) {
		return zero, jserr.FromJS(v.Tag().String(), typeName[T]())
	}
	f := v.raw.ToFloat()

	switch any(zero).(type) {
	case float32:
		return any(float32(f)).(T), nil
	case float64:
		return any(f).(T), nil
	}

	if f != math.Trunc(f) {
		return zero, jserr.FromJSMessage(v.Tag().String(), typeName[T](), "non-integral number cannot convert to an integer type")
	}

	switch any(zero).(type) {
	case int:
		return checkRange[T](f, math.MinInt, math.MaxInt)
	case int8:
		return checkRange[T](f, math.MinInt8, math.MaxInt8)
	case int16:
		return checkRange[T](f, math.MinInt16, math.MaxInt16)
	case int32:
		return checkRange[T](f, math.MinInt32, math.MaxInt32)
	case int64:
		return checkRange[T](f, math.MinInt64, math.MaxInt64)
	case uint:
		return checkRange[T](f, 0, math.MaxUint32)
	case uint8:
		return checkRange[T](f, 0, math.MaxUint8)
	case uint16:
		return checkRange[T](f, 0, math.MaxUint16)
	case uint32:
		return checkRange[T](f, 0, math.MaxUint32)
	case uint64:
		return checkRange[T](f, 0, math.MaxInt64)
	}
	return zero, jserr.FromJS(v.Tag().String(), typeName[T]())
}

func checkRange[T any](f, lo, hi float64) (T, error) {
	var zero T
	if f < lo {
		return zero, jserr.FromJSMessage(floatTypeName, typeName[T](), "numeric underflow converting to "+typeName[T]())
	}
	if f > hi {
		return zero, jserr.FromJSMessage(floatTypeName, typeName[T](), "numeric overflow converting to "+typeName[T]())
	}
	return convertFloatTo[T](f), nil
}

const floatTypeName = "float"

func convertFloatTo[T any](f float64) T {
	var zero T
	switch any(zero).(type) {
	case int:
		return any(int(f)).(T)
	case int8:
		return any(int8(f)).(T)
	case int16:
		return any(int16(f)).(T)
	case int32:
		return any(int32(f)).(T)
	case int64:
		return any(int64(f)).(T)
	case uint:
		return any(uint(f)).(T)
	case uint8:
		return any(uint8(f)).(T)
	case uint16:
		return any(uint16(f)).(T)
	case uint32:
		return any(uint32(f)).(T)
	case uint64:
		return any(uint64(f)).(T)
	}
	return zero
}

func typeName[T any]() string {
	var zero T
	switch any(zero).(type) {
	case int:
		return "int"
	case int8:
		return "int8"
	case int16:
		return "int16"
	case int32:
		return "int32"
	case int64:
		return "int64"
	case uint:
		return "uint"
	case uint8:
		return "uint8"
	case uint16:
		return "uint16"
	case uint32:
		return "uint32"
	case uint64:
		return "uint64"
	case float32:
		return "float32"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case string:
		return "string"
	default:
		return "host value"
	}
}
