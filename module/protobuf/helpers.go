package protobuf

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
)

// extractBytes pulls a []byte out of a Uint8Array or ArrayBuffer value,
// grounded on goja-protobuf/helpers.go's extractBytes (goja exports
// ArrayBuffer as goja.ArrayBuffer and Uint8Array as []byte).
func (b *Binding) extractBytes(val goja.Value) ([]byte, error) {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, jserr.FromJS("null/undefined", "Uint8Array or ArrayBuffer")
	}
	switch v := val.Export().(type) {
	case goja.ArrayBuffer:
		return v.Bytes(), nil
	case []byte:
		return v, nil
	}
	var out []byte
	if err := b.rt.ExportTo(val, &out); err != nil {
		return nil, jserr.FromJS("unsupported type", "Uint8Array or ArrayBuffer")
	}
	return out, nil
}

// newUint8Array wraps data as a JS Uint8Array backed by a new
// ArrayBuffer, falling back to the bare ArrayBuffer if the runtime's
// global Uint8Array constructor is unavailable for any reason.
func (b *Binding) newUint8Array(data []byte) goja.Value {
	ab := b.rt.NewArrayBuffer(data)
	ctor := b.rt.Get("Uint8Array")
	if ctor == nil || goja.IsUndefined(ctor) {
		return b.rt.ToValue(ab)
	}
	result, err := b.rt.New(ctor, b.rt.ToValue(ab))
	if err != nil {
		return b.rt.ToValue(ab)
	}
	return result
}
