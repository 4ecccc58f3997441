package protobuf

import (
	"github.com/dop251/goja"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/gojsembed/qjsgo/jserr"
)

// MarshalJSON implements marshalJSON(msg, opts?): the wire-format JSON
// string a message serializes to, as opposed to ToJSON's JSON.parse'd
// live object - grounded on goja-protojson/marshal.go's jsMarshal, kept
// as a distinct export from toJSON/fromJSON since a caller exchanging
// proto3 JSON with another process wants the string itself, not a detour
// through this runtime's JSON.parse/stringify.
func (b *Binding) MarshalJSON(rt *goja.Runtime, msgVal, optsVal goja.Value) (string, error) {
	msg, err := b.unwrap(msgVal)
	if err != nil {
		return "", err
	}
	opts := b.parseMarshalOptions(rt, optsVal)
	data, err := opts.Marshal(msg)
	if err != nil {
		return "", jserr.Unknown(err)
	}
	return string(data), nil
}

// FormatJSON implements formatJSON(msg): marshalJSON with two-space
// indentation, matching goja-protojson/marshal.go's jsFormat.
func (b *Binding) FormatJSON(msgVal goja.Value) (string, error) {
	msg, err := b.unwrap(msgVal)
	if err != nil {
		return "", err
	}
	opts := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
		Resolver:  b.registry.TypeResolver(),
	}
	data, err := opts.Marshal(msg)
	if err != nil {
		return "", jserr.Unknown(err)
	}
	return string(data), nil
}

// UnmarshalJSON implements unmarshalJSON(typeName, jsonStr, opts?),
// grounded on goja-protojson/unmarshal.go's jsUnmarshal - resolving
// typeName against this Binding's shared Registry rather than a
// protojson-package-private one, so a type loaded via loadDescriptorSet
// is reachable here too.
func (b *Binding) UnmarshalJSON(rt *goja.Runtime, typeName, jsonStr string, optsVal goja.Value) (*goja.Object, error) {
	desc, err := b.registry.FindDescriptor(protoreflect.FullName(typeName))
	if err != nil {
		return nil, jserr.FromJSMessage("message type", typeName, err.Error())
	}
	msgDesc, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, jserr.FromJSMessage("message type", typeName, "name does not resolve to a message")
	}

	opts := b.parseUnmarshalOptions(rt, optsVal)
	msg := dynamicpb.NewMessage(msgDesc)
	if err := opts.Unmarshal([]byte(jsonStr), msg); err != nil {
		return nil, jserr.Unknown(err)
	}
	return b.wrap(msg)
}

// parseMarshalOptions reads emitDefaults/enumAsNumber/useProtoNames/indent
// from a JS options object, matching
// goja-protojson/marshal.go's parseMarshalOptions field-for-field.
func (b *Binding) parseMarshalOptions(rt *goja.Runtime, val goja.Value) protojson.MarshalOptions {
	opts := protojson.MarshalOptions{Resolver: b.registry.TypeResolver()}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return opts
	}
	obj := val.ToObject(rt)
	if v := obj.Get("emitDefaults"); v != nil && !goja.IsUndefined(v) {
		opts.EmitDefaultValues = v.ToBoolean()
	}
	if v := obj.Get("enumAsNumber"); v != nil && !goja.IsUndefined(v) {
		opts.UseEnumNumbers = v.ToBoolean()
	}
	if v := obj.Get("useProtoNames"); v != nil && !goja.IsUndefined(v) {
		opts.UseProtoNames = v.ToBoolean()
	}
	if v := obj.Get("indent"); v != nil && !goja.IsUndefined(v) {
		opts.Indent = v.String()
		if opts.Indent != "" {
			opts.Multiline = true
		}
	}
	return opts
}

// parseUnmarshalOptions reads discardUnknown from a JS options object,
// matching goja-protojson/unmarshal.go's parseUnmarshalOptions.
func (b *Binding) parseUnmarshalOptions(rt *goja.Runtime, val goja.Value) protojson.UnmarshalOptions {
	opts := protojson.UnmarshalOptions{Resolver: b.registry.TypeResolver()}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return opts
	}
	obj := val.ToObject(rt)
	if v := obj.Get("discardUnknown"); v != nil && !goja.IsUndefined(v) {
		opts.DiscardUnknown = v.ToBoolean()
	}
	return opts
}
