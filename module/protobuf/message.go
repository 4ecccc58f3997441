package protobuf

import (
	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/gojsembed/qjsgo/class"
	"github.com/gojsembed/qjsgo/jserr"
)

// messageDef is the class.Def for every dynamicpb.Message instance this
// binding produces - one shared prototype regardless of which proto
// message type a given instance wraps, since get/set/has/clear/$type
// are identical across message types and only consult the instance's
// own descriptor at call time. Grounded on
// goja-protobuf/message.go's wrapMessage, replacing its per-call
// "_pbMsg" property convention with class's hidden-cell storage.
type messageDef struct{ class *class.Class[*dynamicpb.Message] }

func (messageDef) Name() string { return "ProtoMessage" }

// Binding owns one Registry plus the class and runtime it's bound to,
// adapting goja-protobuf's Module to this package's Capability/class
// surface.
type Binding struct {
	rt       *goja.Runtime
	registry *Registry
	msgClass *class.Class[*dynamicpb.Message]
}

// NewBinding registers the shared ProtoMessage class on rt and returns
// a Binding ready to build message-type constructors against reg.
func NewBinding(rt *goja.Runtime, reg *Registry) (*Binding, error) {
	d := &messageDef{}
	c, err := class.Register[*dynamicpb.Message](rt, d)
	if err != nil {
		return nil, err
	}
	d.class = c

	b := &Binding{rt: rt, registry: reg, msgClass: c}
	if err := b.wirePrototype(c.Prototype()); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Binding) wirePrototype(proto *goja.Object) error {
	rt := b.rt
	c := b.msgClass

	resolveField := func(msg *dynamicpb.Message, name string) protoreflect.FieldDescriptor {
		fd := msg.Descriptor().Fields().ByName(protoreflect.Name(name))
		if fd == nil {
			jserr.ThrowError(rt, jserr.FromJSMessage("field name", string(msg.Descriptor().FullName()), "field "+name+" not found"))
		}
		return fd
	}

	if err := proto.DefineAccessorProperty("$type", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		this, ok := call.This.(*goja.Object)
		if !ok {
			jserr.ThrowError(rt, jserr.FromJS("object", "$type"))
		}
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		return rt.ToValue(string((*ref.Get()).Descriptor().FullName()))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return jserr.Borrow(err.Error())
	}

	if err := proto.Set("get", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		this := call.This.(*goja.Object)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		msg := *ref.Get()
		fd := resolveField(msg, call.Argument(0).String())
		if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
			if !msg.Has(fd) {
				return goja.Null()
			}
		}
		return b.protoValueToGoja(msg.Get(fd), fd)
	})); err != nil {
		return err
	}

	if err := proto.Set("set", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		this := call.This.(*goja.Object)
		mut, err := c.TryMut(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer mut.Drop()
		msg := *mut.Get()
		fd := resolveField(msg, call.Argument(0).String())
		val := call.Argument(1)

		if goja.IsUndefined(val) || goja.IsNull(val) {
			msg.Clear(fd)
			return goja.Undefined()
		}
		pv, err := b.gojaToProtoValue(val, fd)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		msg.Set(fd, pv)
		return goja.Undefined()
	})); err != nil {
		return err
	}

	if err := proto.Set("has", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		this := call.This.(*goja.Object)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		msg := *ref.Get()
		fd := resolveField(msg, call.Argument(0).String())
		return rt.ToValue(msg.Has(fd))
	})); err != nil {
		return err
	}

	if err := proto.Set("clear", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		this := call.This.(*goja.Object)
		mut, err := c.TryMut(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer mut.Drop()
		msg := *mut.Get()
		fd := resolveField(msg, call.Argument(0).String())
		msg.Clear(fd)
		return goja.Undefined()
	})); err != nil {
		return err
	}

	return nil
}

// wrap allocates a new class instance wrapping msg.
func (b *Binding) wrap(msg *dynamicpb.Message) (*goja.Object, error) {
	return b.msgClass.Instance(msg)
}

// unwrap extracts the dynamicpb.Message a class instance wraps.
func (b *Binding) unwrap(val goja.Value) (*dynamicpb.Message, error) {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil, jserr.FromJS("object", "ProtoMessage")
	}
	ref, err := b.msgClass.TryRef(obj)
	if err != nil {
		return nil, err
	}
	defer ref.Drop()
	return *ref.Get(), nil
}

// Wrap is the exported form of wrap, for other modules sharing this
// Binding (via Registry.BindingFor) to box a *dynamicpb.Message they
// produced themselves - module/grpcclient's response messages,
// notably - as a class instance indistinguishable from one produced
// by require('protobuf').
func (b *Binding) Wrap(msg *dynamicpb.Message) (*goja.Object, error) { return b.wrap(msg) }

// Unwrap is the exported form of unwrap, for other modules sharing
// this Binding to recover the *dynamicpb.Message a class instance
// wraps - module/grpcclient's request messages, notably.
func (b *Binding) Unwrap(val goja.Value) (*dynamicpb.Message, error) { return b.unwrap(val) }

// dynamicMessage normalizes a protoreflect.Message to *dynamicpb.Message,
// copying field-by-field when msg isn't already dynamic - matching
// goja-protobuf/conversion.go's protoMessageToGoja fallback, since
// message-kind fields read off a dynamicpb.Message are themselves
// already dynamic in every case this binding produces.
func dynamicMessage(msg protoreflect.Message) *dynamicpb.Message {
	if dm, ok := msg.Interface().(*dynamicpb.Message); ok {
		return dm
	}
	dm := dynamicpb.NewMessage(msg.Descriptor())
	msg.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		dm.Set(fd, v)
		return true
	})
	return dm
}
