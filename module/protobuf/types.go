package protobuf

import (
	"github.com/dop251/goja"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/gojsembed/qjsgo/jserr"
)

// descHolder carries a protoreflect.MessageDescriptor across the
// goja export/import boundary on a constructor's hidden property,
// mirroring goja-protobuf/types.go's messageDescHolder.
type descHolder struct{ desc protoreflect.MessageDescriptor }

// MessageType builds a constructor function for fullName: calling it
// with `new` allocates a fresh class-registered message instance of
// that type. Grounded on goja-protobuf/types.go's jsMessageType,
// adapted to return a *dynamicpb.Message wrapped via Binding.wrap
// instead of an ad hoc goja.Object.
func (b *Binding) MessageType(fullName string) (*goja.Object, error) {
	msgDesc, err := b.registry.FindMessage(protoreflect.FullName(fullName))
	if err != nil {
		return nil, jserr.FromJSMessage("proto descriptor", fullName, err.Error())
	}

	ctorVal := b.rt.ToValue(func(call goja.ConstructorCall) *goja.Object {
		msg := dynamicpb.NewMessage(msgDesc)
		obj, err := b.wrap(msg)
		if err != nil {
			panic(b.rt.NewGoError(err))
		}
		return obj
	})
	ctorObj := ctorVal.ToObject(b.rt)
	if err := ctorObj.Set("_pbMsgDesc", &descHolder{desc: msgDesc}); err != nil {
		return nil, jserr.Borrow(err.Error())
	}
	if err := ctorObj.Set("typeName", fullName); err != nil {
		return nil, jserr.Borrow(err.Error())
	}
	return ctorObj, nil
}

// extractMessageDesc recovers the descriptor a MessageType constructor
// was built for, for decode/fromJSON.
func extractMessageDesc(val goja.Value) (protoreflect.MessageDescriptor, error) {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil, jserr.FromJS("object", "message type constructor")
	}
	holderVal := obj.Get("_pbMsgDesc")
	if holderVal == nil || goja.IsUndefined(holderVal) {
		return nil, jserr.FromJS("not a message type constructor", "decode/fromJSON")
	}
	holder, ok := holderVal.Export().(*descHolder)
	if !ok {
		return nil, jserr.FromJS("not a message type constructor", "decode/fromJSON")
	}
	return holder.desc, nil
}
