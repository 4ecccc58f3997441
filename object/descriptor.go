package object

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

// Property describes a data property: (value, writable?, configurable?,
// enumerable?).
type Property struct {
	Value        value.Value
	Writable     bool
	Configurable bool
	Enumerable   bool
}

// Accessor describes an accessor property: (getter?, setter?,
// configurable?, enumerable?). Either Getter or Setter may be the zero
// value.Value to omit it.
type Accessor struct {
	Getter       value.Value
	Setter       value.Value
	Configurable bool
	Enumerable   bool
}

func flag(b bool) goja.PropertyFlag {
	if b {
		return goja.FLAG_TRUE
	}
	return goja.FLAG_FALSE
}

// DefineProperty installs p as key on o using goja's define-property
// primitive with the THROW flag, so illegal redefinitions (e.g.
// narrowing a non-configurable property) surface as an error rather
// than silently failing.
func (o Object) DefineProperty(key string, p Property) error {
	err := o.obj.DefineDataProperty(key, p.Value.Raw(), flag(p.Writable), flag(p.Configurable), flag(p.Enumerable))
	if err != nil {
		return jserr.Borrow(err.Error())
	}
	return nil
}

// DefineAccessor installs a accessor property named key on o.
func (o Object) DefineAccessor(key string, a Accessor) error {
	var getter, setter goja.Value
	if a.Getter.Raw() != nil {
		getter = a.Getter.Raw()
	}
	if a.Setter.Raw() != nil {
		setter = a.Setter.Raw()
	}
	err := o.obj.DefineAccessorProperty(key, getter, setter, flag(a.Configurable), flag(a.Enumerable))
	if err != nil {
		return jserr.Borrow(err.Error())
	}
	return nil
}
