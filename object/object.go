// Package object implements the Object/property protocol: get/set/has/
// delete, property descriptors, prototype chain access, filtered key
// iteration, and the Array view. It is the generalization of the
// get/set/has/clear quartet every wrapped message type in the teacher
// implements by hand, lifted into one reusable surface over any
// *goja.Object.
package object

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

// Object is a typed view asserting value.TagObject (or anything
// interpretable as Object: Array, Function, Constructor, Exception,
// Module).
type Object struct {
	rt  *goja.Runtime
	obj *goja.Object
	val value.Value
}

// From asserts v.Is(value.TagObject) and returns the Object view.
func From(v value.Value) (Object, error) {
	if !v.Is(value.TagObject) {
		return Object{}, jserr.FromJS(v.Tag().String(), "Object")
	}
	obj, ok := v.Raw().(*goja.Object)
	if !ok {
		return Object{}, jserr.FromJS(v.Tag().String(), "Object")
	}
	return Object{rt: v.Runtime(), obj: obj, val: v}, nil
}

// New creates a fresh, empty plain object bound to rt.
func New(rt *goja.Runtime) Object {
	obj := rt.NewObject()
	return Object{rt: rt, obj: obj, val: value.Of(rt, obj)}
}

// Value returns the typed-view's underlying tagged Value (Object derefs
// to Value, forming the bottom of the single-inheritance chain).
func (o Object) Value() value.Value { return o.val }

// Raw returns the underlying *goja.Object.
func (o Object) Raw() *goja.Object { return o.obj }

// Get returns the property named key as a value.Value; GetAs also
// converts it via value.FromJS.
func (o Object) Get(key string) value.Value {
	return value.Of(o.rt, o.obj.Get(key))
}

// GetAs retrieves and converts the property named key in one step.
func GetAs[T any](o Object, key string) (T, error) {
	return value.FromJS[T](o.Get(key))
}

// Set assigns val to the property named key.
func (o Object) Set(key string, val value.Value) error {
	if err := o.obj.Set(key, val.Raw()); err != nil {
		return jserr.IntoJS("value", "object property "+key)
	}
	return nil
}

// SetAs converts val via value.IntoJS and assigns it to key.
func SetAs[T any](o Object, key string, val T) error {
	v, err := value.IntoJS(o.rt, val)
	if err != nil {
		return err
	}
	return o.Set(key, v)
}

// Has reports whether key is present anywhere on o's prototype chain.
func (o Object) Has(key string) bool {
	return o.obj.Get(key) != nil
}

// HasOwn reports whether key is an own property of o.
func (o Object) HasOwn(key string) bool {
	for _, k := range o.obj.GetOwnPropertyNames() {
		if k == key {
			return true
		}
	}
	return false
}

// Delete removes the property named key. goja's Object.Delete returns an
// error if the property is non-configurable; this is mapped to a Borrow-
// flavored jserr.Error the way spec.md describes ("throws if
// unconfigurable").
func (o Object) Delete(key string) error {
	ok, err := o.obj.Delete(key)
	if err != nil {
		return jserr.Borrow(err.Error())
	}
	if !ok {
		return jserr.Borrow("property " + key + " is not configurable")
	}
	return nil
}

// Prototype returns o's prototype object, or the zero Object if o has no
// prototype (Object.prototype itself).
func (o Object) Prototype() Object {
	proto := o.obj.Prototype()
	if proto == nil {
		return Object{}
	}
	return Object{rt: o.rt, obj: proto, val: value.Of(o.rt, proto)}
}

// SetPrototype sets o's prototype. goja surfaces a cyclic prototype chain
// as an error from SetPrototype, mapped here per spec.md ("cycle in
// prototype chain surfaces as an error").
func (o Object) SetPrototype(proto Object) error {
	if err := o.obj.SetPrototype(proto.obj); err != nil {
		return jserr.Borrow(err.Error())
	}
	return nil
}

// InstanceOf tests o against ctor's prototype chain, i.e. `o instanceof
// ctor`. There is no direct instanceof primitive exposed by goja's Go
// API, so this walks the constructor's prototype property against o's
// own prototype chain, exactly what `instanceof` does internally.
func (o Object) InstanceOf(ctor Object) (bool, error) {
	target := ctor.obj.Get("prototype")
	targetObj, isObj := target.(*goja.Object)
	if !isObj {
		return false, jserr.FromJS("value", "Object")
	}
	cur := o.obj.Prototype()
	for cur != nil {
		if cur == targetObj {
			return true, nil
		}
		cur = cur.Prototype()
	}
	return false, nil
}

// Length reads o's "length" property as an integer, for array-likes and
// Function.
func (o Object) Length() int64 {
	return o.obj.Get("length").ToInteger()
}

// ClassName returns goja's internal [[Class]] string (e.g. "Array",
// "Object", "Function").
func (o Object) ClassName() string {
	return o.obj.ClassName()
}
