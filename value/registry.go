package value

import (
	"reflect"
	"sync"
)

// converters holds user-registered Converter[T] implementations, keyed by
// reflect.Type of T, so FromJS[T] can fall through to them for types
// outside the primitive blanket set (structs and other host types, each
// implemented as a Converter registered by the package that owns the
// host type). Slices, maps and optionals are converted by the free
// functions ToSlice, ToMap and ToOptional instead.
var converters sync.Map // reflect.Type -> any (Converter[T])

// RegisterConverter installs conv as the FromJS[T] implementation for T.
// Call this from an init() in a package that wants to extend the
// conversion layer beyond the built-in primitive set.
func RegisterConverter[T any](conv Converter[T]) {
	var zero T
	converters.Store(reflect.TypeOf(&zero).Elem(), conv)
}

func lookupConverter[T any]() (Converter[T], bool) {
	var zero T
	v, ok := converters.Load(reflect.TypeOf(&zero).Elem())
	if !ok {
		return nil, false
	}
	conv, ok := v.(Converter[T])
	return conv, ok
}
