package protobuf

import (
	"math/big"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/gojsembed/qjsgo/jserr"
)

const (
	maxSafeInteger = int64(1<<53 - 1)
	minSafeInteger = -maxSafeInteger
)

// protoValueToGoja converts a protoreflect.Value to a goja.Value,
// scalar and message fields only - grounded on
// goja-protobuf/conversion.go's protoValueToGoja, trimmed of the
// repeated/map wrappers (module/urlparams already exercises ordered
// collection wrapping; this package's own contribution is the
// class-registered message instance).
func (b *Binding) protoValueToGoja(val protoreflect.Value, fd protoreflect.FieldDescriptor) goja.Value {
	rt := b.rt
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return rt.ToValue(val.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return rt.ToValue(val.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return int64ToGoja(rt, val.Int())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return rt.ToValue(val.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return uint64ToGoja(rt, val.Uint())
	case protoreflect.FloatKind:
		return rt.ToValue(float64(val.Float()))
	case protoreflect.DoubleKind:
		return rt.ToValue(val.Float())
	case protoreflect.StringKind:
		return rt.ToValue(val.String())
	case protoreflect.BytesKind:
		buf := val.Bytes()
		if buf == nil {
			buf = []byte{}
		}
		return b.newUint8Array(buf)
	case protoreflect.EnumKind:
		return rt.ToValue(int32(val.Enum()))
	case protoreflect.MessageKind, protoreflect.GroupKind:
		msg := dynamicMessage(val.Message())
		obj, err := b.wrap(msg)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		return obj
	default:
		return goja.Undefined()
	}
}

func int64ToGoja(rt *goja.Runtime, v int64) goja.Value {
	if v >= minSafeInteger && v <= maxSafeInteger {
		return rt.ToValue(v)
	}
	return rt.ToValue(new(big.Int).SetInt64(v))
}

func uint64ToGoja(rt *goja.Runtime, v uint64) goja.Value {
	if v <= uint64(maxSafeInteger) {
		return rt.ToValue(v)
	}
	return rt.ToValue(new(big.Int).SetUint64(v))
}

// gojaToProtoValue converts a goja.Value to a protoreflect.Value for a
// scalar or message field, the write-side counterpart of
// protoValueToGoja.
func (b *Binding) gojaToProtoValue(val goja.Value, fd protoreflect.FieldDescriptor) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return protoreflect.ValueOfBool(val.ToBoolean()), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.ValueOfInt32(int32(val.ToInteger())), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.ValueOfInt64(val.ToInteger()), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.ValueOfUint32(uint32(val.ToInteger())), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protoreflect.ValueOfUint64(uint64(val.ToInteger())), nil
	case protoreflect.FloatKind:
		return protoreflect.ValueOfFloat32(float32(val.ToFloat())), nil
	case protoreflect.DoubleKind:
		return protoreflect.ValueOfFloat64(val.ToFloat()), nil
	case protoreflect.StringKind:
		return protoreflect.ValueOfString(val.String()), nil
	case protoreflect.BytesKind:
		buf, err := b.extractBytes(val)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfBytes(buf), nil
	case protoreflect.EnumKind:
		return protoreflect.ValueOfEnum(protoreflect.EnumNumber(val.ToInteger())), nil
	case protoreflect.MessageKind, protoreflect.GroupKind:
		msg, err := b.unwrap(val)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfMessage(msg.ProtoReflect()), nil
	default:
		return protoreflect.Value{}, jserr.FromJS("unsupported field kind", string(fd.Name()))
	}
}
