package protobuf

import (
	"github.com/dop251/goja"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/gojsembed/qjsgo/jserr"
)

// Encode serializes a wrapped message to its binary wire format.
func (b *Binding) Encode(msgVal goja.Value) (goja.Value, error) {
	msg, err := b.unwrap(msgVal)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, jserr.Unknown(err)
	}
	return b.newUint8Array(data), nil
}

// Decode deserializes bytes into a new message of the type ctorVal was
// built for (a constructor returned by MessageType).
func (b *Binding) Decode(ctorVal, bytesVal goja.Value) (*goja.Object, error) {
	msgDesc, err := extractMessageDesc(ctorVal)
	if err != nil {
		return nil, err
	}
	data, err := b.extractBytes(bytesVal)
	if err != nil {
		return nil, err
	}
	msg := dynamicpb.NewMessage(msgDesc)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, jserr.Unknown(err)
	}
	return b.wrap(msg)
}

// ToJSON converts a wrapped message to its proto3 JSON representation,
// as a JSON string - left to the caller (the module wiring) to
// JSON.parse, mirroring goja-protobuf/serialize.go's jsToJSON.
func (b *Binding) ToJSON(msgVal goja.Value) (string, error) {
	msg, err := b.unwrap(msgVal)
	if err != nil {
		return "", err
	}
	opts := protojson.MarshalOptions{Resolver: b.registry.TypeResolver()}
	data, err := opts.Marshal(msg)
	if err != nil {
		return "", jserr.Unknown(err)
	}
	return string(data), nil
}

// FromJSON parses a proto3 JSON string into a new message of ctorVal's
// type, discarding unknown fields the same way
// goja-protobuf/serialize.go's jsFromJSON does.
func (b *Binding) FromJSON(ctorVal goja.Value, jsonStr string) (*goja.Object, error) {
	msgDesc, err := extractMessageDesc(ctorVal)
	if err != nil {
		return nil, err
	}
	msg := dynamicpb.NewMessage(msgDesc)
	opts := protojson.UnmarshalOptions{Resolver: b.registry.TypeResolver(), DiscardUnknown: true}
	if err := opts.Unmarshal([]byte(jsonStr), msg); err != nil {
		return nil, jserr.Unknown(err)
	}
	return b.wrap(msg)
}

// Equals reports whether two wrapped messages are field-for-field
// equal via proto.Equal.
func (b *Binding) Equals(aVal, bVal goja.Value) (bool, error) {
	a, err := b.unwrap(aVal)
	if err != nil {
		return false, err
	}
	bm, err := b.unwrap(bVal)
	if err != nil {
		return false, err
	}
	return proto.Equal(a, bm), nil
}

// Clone deep-copies a wrapped message into a new class instance.
func (b *Binding) Clone(msgVal goja.Value) (*goja.Object, error) {
	msg, err := b.unwrap(msgVal)
	if err != nil {
		return nil, err
	}
	cloned, ok := proto.Clone(msg).(*dynamicpb.Message)
	if !ok {
		return nil, jserr.Unknown(nil)
	}
	return b.wrap(cloned)
}

// IsMessage reports whether val is a class instance produced by this
// binding, without throwing on a non-object val.
func (b *Binding) IsMessage(val goja.Value) bool {
	obj, ok := val.(*goja.Object)
	if !ok {
		return false
	}
	ref, err := b.msgClass.TryRef(obj)
	if err != nil {
		return false
	}
	ref.Drop()
	return true
}
