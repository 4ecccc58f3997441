package value

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
)

// ToSlice extracts v (which must be array-like) into a host slice,
// converting each element with FromJS[T]. This is the "arrays into any
// list-like container" branch of the FromJs conversion layer; it is a
// free function rather than a FromJS[[]T] case because Go generics can't
// pattern-match on "any slice type" inside a single type switch.
func ToSlice[T any](v Value) ([]T, error) {
	if !v.IsArray() {
		var zero []T
		return zero, jserr.FromJS(v.Tag().String(), "[]"+typeName[T]())
	}
	obj := v.raw.(*goja.Object)
	n := int(obj.Get("length").ToInteger())
	out := make([]T, n)
	for i := 0; i < n; i++ {
		elem := Of(v.rt, obj.Get(strconv.Itoa(i)))
		item, err := FromJS[T](elem)
		if err != nil {
			var zero []T
			return zero, err
		}
		out[i] = item
	}
	return out, nil
}

// IntoSlice builds a JS array Value from a host slice, converting each
// element with IntoJS[T]. Mirrors "tuples/lists become arrays" from
// spec's IntoJs description.
func IntoSlice[T any](rt *goja.Runtime, items []T) (Value, error) {
	raw := make([]any, len(items))
	for i, item := range items {
		elemVal, err := IntoJS(rt, item)
		if err != nil {
			return Value{}, err
		}
		raw[i] = elemVal.raw
	}
	return Of(rt, rt.NewArray(raw...)), nil
}

// ToMap extracts v (which must be object-like) into a host map keyed by
// property name, converting each value with FromJS[T]. Implements the
// "objects into any map-like container with string keys" branch.
func ToMap[T any](v Value) (map[string]T, error) {
	if !v.IsObject() {
		return nil, jserr.FromJS(v.Tag().String(), "map[string]"+typeName[T]())
	}
	obj := v.raw.(*goja.Object)
	out := make(map[string]T)
	for _, key := range obj.Keys() {
		item, err := FromJS[T](Of(v.rt, obj.Get(key)))
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}

// IntoMap builds a plain JS object Value from a host map, converting each
// value with IntoJS[T].
func IntoMap[T any](rt *goja.Runtime, m map[string]T) (Value, error) {
	obj := rt.NewObject()
	for k, item := range m {
		itemVal, err := IntoJS(rt, item)
		if err != nil {
			return Value{}, err
		}
		if err := obj.Set(k, itemVal.raw); err != nil {
			return Value{}, jserr.IntoJS("map entry", "object property")
		}
	}
	return Of(rt, obj), nil
}

// ToOptional maps an undefined or null Value to (zero, false); any other
// value is converted with FromJS[T] and returned as (value, true).
// Implements spec's "optional (maps void types to none)" branch.
func ToOptional[T any](v Value) (T, bool, error) {
	var zero T
	if v.IsUndefined() || v.IsNull() {
		return zero, false, nil
	}
	item, err := FromJS[T](v)
	return item, err == nil, err
}

// IntoOptional converts present into a Value via IntoJS[T] if ok, else
// returns Undefined.
func IntoOptional[T any](rt *goja.Runtime, present T, ok bool) (Value, error) {
	if !ok {
		return Undefined(rt), nil
	}
	return IntoJS(rt, present)
}
