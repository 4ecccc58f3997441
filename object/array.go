package object

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

// Array is a typed view asserting value.TagArray. It derefs to Object,
// completing the single-inheritance chain Array -> Object -> Value.
type Array struct {
	Object
}

// FromArray asserts v.Tag() == value.TagArray and returns the Array view.
func FromArray(v value.Value) (Array, error) {
	if v.Tag() != value.TagArray {
		return Array{}, jserr.FromJS(v.Tag().String(), "Array")
	}
	obj, ok := v.Raw().(*goja.Object)
	if !ok {
		return Array{}, jserr.FromJS(v.Tag().String(), "Array")
	}
	return Array{Object{rt: v.Runtime(), obj: obj, val: v}}, nil
}

// NewArray creates a fresh JS array from items.
func NewArray(rt *goja.Runtime, items ...value.Value) Array {
	raw := make([]any, len(items))
	for i, it := range items {
		raw[i] = it.Raw()
	}
	obj := rt.NewArray(raw...)
	return Array{Object{rt: rt, obj: obj, val: value.Of(rt, obj)}}
}

// Len returns the array's length property.
func (a Array) Len() int { return int(a.Length()) }

// At returns the element at index i.
func (a Array) At(i int) value.Value {
	return value.Of(a.rt, a.obj.Get(strconv.Itoa(i)))
}

// SetAt assigns v to index i.
func (a Array) SetAt(i int, v value.Value) error {
	return a.Set(strconv.Itoa(i), v)
}

// Push appends items to the end of the array via the Array.prototype.push
// semantics (goja's Object exposes no native push, so this grows length
// and assigns by index the way a manual push implementation would).
func (a Array) Push(items ...value.Value) error {
	start := a.Len()
	for i, it := range items {
		if err := a.SetAt(start+i, it); err != nil {
			return err
		}
	}
	return nil
}

// Pop removes and returns the last element, or value.Undefined if empty.
func (a Array) Pop() (value.Value, error) {
	n := a.Len()
	if n == 0 {
		return value.Undefined(a.rt), nil
	}
	last := a.At(n - 1)
	if err := a.Delete(strconv.Itoa(n - 1)); err != nil {
		return value.Value{}, err
	}
	if err := a.obj.Set("length", n-1); err != nil {
		return value.Value{}, jserr.Borrow(err.Error())
	}
	return last, nil
}

// Iter returns every element in index order.
func (a Array) Iter() []value.Value {
	n := a.Len()
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = a.At(i)
	}
	return out
}
