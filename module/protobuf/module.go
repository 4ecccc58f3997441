package protobuf

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	qjsmodule "github.com/gojsembed/qjsgo/module"
)

// ModuleName is the specifier scripts use to require this binding:
// require('protobuf').
const ModuleName = "protobuf"

// definition adapts a fresh Binding per runtime to
// qjsmodule.ModuleDefinition, so the protobuf wire format is reachable
// via require() the same way goja-protobuf's Enable(rt) was, grounded
// on goja-protobuf/module.go's setupExports export list.
type definition struct{ registry *Registry }

// Definition returns a module.ModuleDefinition sharing one Registry
// across every runtime that requires it, so descriptors loaded in one
// realm are visible to messageType/decode/fromJSON calls in another -
// matching the teacher's own module-scoped (not runtime-scoped)
// localTypes/localFiles registries.
func Definition(reg *Registry) qjsmodule.ModuleDefinition {
	return definition{registry: reg}
}

func (definition) Declare(d *qjsmodule.Declarations) error {
	for _, name := range []string{
		"loadDescriptorSet", "messageType", "encode", "decode",
		"toJSON", "fromJSON", "equals", "clone", "isMessage",
		"marshalJSON", "unmarshalJSON", "formatJSON",
	} {
		if err := d.Declare(name); err != nil {
			return err
		}
	}
	return nil
}

func (def definition) Evaluate(cap qjsmodule.Capability, exports *qjsmodule.Exports) error {
	rt := cap.Runtime()
	b, err := def.registry.BindingFor(rt)
	if err != nil {
		return err
	}

	jsonParse, jsonStringify, err := jsonBridge(rt)
	if err != nil {
		return err
	}

	set := func(name string, fn func(goja.FunctionCall) goja.Value) error {
		return exports.Set(name, rt.ToValue(fn))
	}

	if err := set("loadDescriptorSet", func(call goja.FunctionCall) goja.Value {
		data, err := b.extractBytes(call.Argument(0))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		names, err := b.registry.LoadDescriptorSet(data)
		if err != nil {
			jserr.ThrowError(rt, jserr.Unknown(err))
		}
		return rt.ToValue(names)
	}); err != nil {
		return err
	}

	if err := set("messageType", func(call goja.FunctionCall) goja.Value {
		ctor, err := b.MessageType(call.Argument(0).String())
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return ctor
	}); err != nil {
		return err
	}

	if err := set("encode", func(call goja.FunctionCall) goja.Value {
		out, err := b.Encode(call.Argument(0))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return out
	}); err != nil {
		return err
	}

	if err := set("decode", func(call goja.FunctionCall) goja.Value {
		obj, err := b.Decode(call.Argument(0), call.Argument(1))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return obj
	}); err != nil {
		return err
	}

	if err := set("toJSON", func(call goja.FunctionCall) goja.Value {
		jsonStr, err := b.ToJSON(call.Argument(0))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		result, err := jsonParse(goja.Undefined(), rt.ToValue(jsonStr))
		if err != nil {
			jserr.ThrowError(rt, jserr.Unknown(err))
		}
		return result
	}); err != nil {
		return err
	}

	if err := set("fromJSON", func(call goja.FunctionCall) goja.Value {
		jsonVal, err := jsonStringify(goja.Undefined(), call.Argument(1))
		if err != nil {
			jserr.ThrowError(rt, jserr.Unknown(err))
		}
		obj, err := b.FromJSON(call.Argument(0), jsonVal.String())
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return obj
	}); err != nil {
		return err
	}

	if err := set("equals", func(call goja.FunctionCall) goja.Value {
		eq, err := b.Equals(call.Argument(0), call.Argument(1))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return rt.ToValue(eq)
	}); err != nil {
		return err
	}

	if err := set("clone", func(call goja.FunctionCall) goja.Value {
		obj, err := b.Clone(call.Argument(0))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return obj
	}); err != nil {
		return err
	}

	if err := set("isMessage", func(call goja.FunctionCall) goja.Value {
		return rt.ToValue(b.IsMessage(call.Argument(0)))
	}); err != nil {
		return err
	}

	if err := set("marshalJSON", func(call goja.FunctionCall) goja.Value {
		jsonStr, err := b.MarshalJSON(rt, call.Argument(0), call.Argument(1))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return rt.ToValue(jsonStr)
	}); err != nil {
		return err
	}

	if err := set("unmarshalJSON", func(call goja.FunctionCall) goja.Value {
		obj, err := b.UnmarshalJSON(rt, call.Argument(0).String(), call.Argument(1).String(), call.Argument(2))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return obj
	}); err != nil {
		return err
	}

	if err := set("formatJSON", func(call goja.FunctionCall) goja.Value {
		jsonStr, err := b.FormatJSON(call.Argument(0))
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return rt.ToValue(jsonStr)
	}); err != nil {
		return err
	}

	return nil
}

// jsonBridge resolves JSON.parse/JSON.stringify off rt's global JSON
// object, the same bridging goja-protobuf/serialize.go uses to move
// between protojson's string output and a live JS object graph without
// this package depending on a separate JSON-in-Go codec.
func jsonBridge(rt *goja.Runtime) (parse, stringify goja.Callable, err error) {
	jsonObj := rt.Get("JSON").ToObject(rt)
	var ok bool
	parse, ok = goja.AssertFunction(jsonObj.Get("parse"))
	if !ok {
		return nil, nil, jserr.Unknown(nil)
	}
	stringify, ok = goja.AssertFunction(jsonObj.Get("stringify"))
	if !ok {
		return nil, nil, jserr.Unknown(nil)
	}
	return parse, stringify, nil
}
