package class

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/object"
	"github.com/gojsembed/qjsgo/value"
)

// ID is a per-engine class identifier, lazily assigned on first
// registration (spec.md §4.H: "a unique per-engine class-id slot,
// lazy-initialized to the engine-assigned number on first
// registration").
type ID uint32

var nextID uint32

func allocateID() ID {
	return ID(atomic.AddUint32(&nextID, 1))
}

// Def describes a host type T registered as a JS class. Only Name is
// required; Finalizer/Mark/InitPrototype/InitStatic are
// recognized via optional-interface assertions on the same value,
// mirroring spec.md's "opts into GC mark" / "optional prototype
// initializer" / "optional static initializer" wording - a class
// doesn't need separate struct fields for hooks it doesn't use.
type Def[T any] interface {
	Name() string
}

// Finalizer is implemented by a Def[T] that wants to run cleanup when an
// instance becomes unreachable.
type Finalizer[T any] interface {
	Finalize(t *T)
}

// Marker is implemented by a Def[T] whose instances hold internal
// value.Value references that must be visited during a GC mark pass;
// Class.Mark invokes it for an instance.
type Marker[T any] interface {
	Mark(t *T, visit func(value.Value))
}

// PrototypeInitializer is implemented by a Def[T] that wants to install
// methods/properties on the class prototype at registration time.
type PrototypeInitializer[T any] interface {
	InitPrototype(proto object.Object) error
}

// StaticInitializer is implemented by a Def[T] that wants to install
// static members on the constructor function at registration time.
type StaticInitializer[T any] interface {
	InitStatic(ctor object.Object) error
}

// hiddenKeyPrefix namespaces the non-enumerable property every instance
// carries its host cell under, one per registered class so that passing
// a Foo instance where a Bar is expected fails try_ref/try_mut instead of
// silently reading through the wrong type - grounded directly on
// goja-protobuf/message.go's "_pbMsg" opaque-storage property, with a
// per-class suffix standing in for spec's per-engine class-id check.
const hiddenKeyPrefix = "\x00qjsgo_class_"

// Class is a registered JS class for host type T.
type Class[T any] struct {
	id        ID
	name      string
	def       Def[T]
	rt        *goja.Runtime
	proto     *goja.Object
	ctor      *goja.Object
	hiddenKey string
}

// Register installs def as a new JS class bound to rt, returning the
// Class handle used to create instances and access their cells.
func Register[T any](rt *goja.Runtime, def Def[T]) (*Class[T], error) {
	id := allocateID()
	c := &Class[T]{
		id:        id,
		name:      def.Name(),
		def:       def,
		rt:        rt,
		proto:     rt.NewObject(),
		hiddenKey: fmt.Sprintf("%s%d", hiddenKeyPrefix, id),
	}

	if init, ok := def.(PrototypeInitializer[T]); ok {
		protoView, err := object.From(value.Of(rt, c.proto))
		if err != nil {
			return nil, err
		}
		if err := init.InitPrototype(protoView); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ID returns the class's per-engine identifier.
func (c *Class[T]) ID() ID { return c.id }

// Name returns the class's JS name.
func (c *Class[T]) Name() string { return c.name }

// Prototype returns the class's prototype object.
func (c *Class[T]) Prototype() *goja.Object { return c.proto }

// Instance allocates a new JS object of this class wrapping val, tagged
// with the class's prototype (spec's instance(value)).
func (c *Class[T]) Instance(val T) (*goja.Object, error) {
	return c.InstanceWithProto(val, c.proto)
}

// InstanceWithProto allocates a new JS object wrapping val with proto as
// its prototype instead of the class's own, enabling subclass-aware
// instantiation (spec's instance_with_proto(value, proto)).
func (c *Class[T]) InstanceWithProto(val T, proto *goja.Object) (*goja.Object, error) {
	obj := c.rt.NewObject()
	if err := obj.SetPrototype(proto); err != nil {
		return nil, jserr.Borrow(err.Error())
	}
	cell := NewCell(val)
	if err := obj.DefineDataProperty(c.hiddenKey, c.rt.ToValue(cell), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
		return nil, jserr.Borrow(err.Error())
	}

	if finalizerDef, ok := c.def.(Finalizer[T]); ok {
		runtime.AddCleanup(obj, func(cell *Cell[T]) {
			finalizerDef.Finalize(&cell.value)
		}, cell)
	}

	return obj, nil
}

// cellOf retrieves the host cell from obj, failing if obj is not an
// instance of this exact class.
func (c *Class[T]) cellOf(obj *goja.Object) (*Cell[T], error) {
	raw := obj.Get(c.hiddenKey)
	if raw == nil || goja.IsUndefined(raw) {
		return nil, jserr.FromJSMessage("object", c.name, "object is not an instance of "+c.name)
	}
	cell, ok := raw.Export().(*Cell[T])
	if !ok {
		return nil, jserr.FromJSMessage("object", c.name, "object is not an instance of "+c.name)
	}
	return cell, nil
}

// TryRef reads a shared borrow of obj's host cell, validating the class
// id implicitly via the per-class hidden key.
func (c *Class[T]) TryRef(obj *goja.Object) (*Ref[T], error) {
	cell, err := c.cellOf(obj)
	if err != nil {
		return nil, err
	}
	return cell.TryRef()
}

// TryMut acquires an exclusive borrow of obj's host cell.
func (c *Class[T]) TryMut(obj *goja.Object) (*Mut[T], error) {
	cell, err := c.cellOf(obj)
	if err != nil {
		return nil, err
	}
	return cell.TryMut()
}

// Mark runs the class's GC-mark hook (if any) over obj's host cell,
// visiting every value.Value it holds via visit. A no-op if the class
// def doesn't implement Marker[T].
func (c *Class[T]) Mark(obj *goja.Object, visit func(value.Value)) {
	marker, ok := c.def.(Marker[T])
	if !ok {
		return
	}
	cell, err := c.cellOf(obj)
	if err != nil {
		return
	}
	marker.Mark(&cell.value, visit)
}
