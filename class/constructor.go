package class

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/object"
	"github.com/gojsembed/qjsgo/value"
)

// Constructor builds val from the arguments passed to `new ClassName(...)`.
// It runs before the instance object exists, mirroring a Rust constructor
// function that returns the value to store in the cell rather than
// mutating a pre-existing object.
type Constructor[T any] func(call goja.ConstructorCall) (T, error)

// NewConstructor wraps build as c's JS constructor function, installing it
// as ctor.prototype == c.Prototype() and threading NewTarget's prototype
// through for subclasses (`class Sub extends ClassName {}`), grounded on
// goja's own ConstructorCall.NewTarget handling for native constructors.
func (c *Class[T]) NewConstructor(build Constructor[T]) (*goja.Object, error) {
	ctor := c.rt.ToValue(func(call goja.ConstructorCall) *goja.Object {
		val, err := build(call)
		if err != nil {
			jserr.ThrowError(c.rt, err)
		}

		proto := c.proto
		if call.NewTarget != nil {
			if p, ok := call.NewTarget.Get("prototype").(*goja.Object); ok {
				proto = p
			}
		}

		obj, err := c.InstanceWithProto(val, proto)
		if err != nil {
			jserr.ThrowError(c.rt, err)
		}
		return obj
	})

	ctorObj := ctor.ToObject(c.rt)
	if err := ctorObj.Set("prototype", c.proto); err != nil {
		return nil, jserr.Borrow(err.Error())
	}
	if err := c.proto.Set("constructor", ctorObj); err != nil {
		return nil, jserr.Borrow(err.Error())
	}
	if err := ctorObj.Set("name", c.name); err != nil {
		return nil, jserr.Borrow(err.Error())
	}

	if init, ok := c.def.(StaticInitializer[T]); ok {
		ctorView, err := object.From(value.Of(c.rt, ctorObj))
		if err != nil {
			return nil, err
		}
		if err := init.InitStatic(ctorView); err != nil {
			return nil, err
		}
	}

	c.ctor = ctorObj
	return ctorObj, nil
}

// Constructor returns the class's constructor function object, if
// NewConstructor has been called.
func (c *Class[T]) Constructor() *goja.Object { return c.ctor }
