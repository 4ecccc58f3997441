// Package persistent implements Values promoted to engine-level lifetime:
// handles that outlive any single realm scope but must not outlive the
// engine that produced them. Restoring a Persistent against a different
// engine fails with jserr.UnrelatedRuntime, mirroring spec.md §4.I.
package persistent

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

// EngineID identifies the engine a Persistent was saved against. Callers
// implement this over whatever uniquely names their Engine (qjsgo's
// engine package uses a monotonic counter assigned at Engine creation).
type EngineID uint64

// Capability is the minimal surface persistent needs from qjs.Capability:
// the runtime to operate against, and the id of the engine that owns it.
// A concrete *qjs.Capability implements this without persistent needing
// to import qjs (which sits above persistent in the dependency order).
type Capability interface {
	Runtime() *goja.Runtime
	EngineID() EngineID
}

// Persistent is a Value promoted to engine-level lifetime. The zero
// Persistent is invalid.
type Persistent struct {
	engineID EngineID
	raw      goja.Value
	tag      value.Tag
}

// Save captures v's engine id and payload, detaching it from cap's scope.
func Save(cap Capability, v value.Value) (*Persistent, error) {
	return &Persistent{
		engineID: cap.EngineID(),
		raw:      v.Raw(),
		tag:      v.Tag(),
	}, nil
}

// Restore compares p's originating engine id against cap's; on mismatch it
// fails with jserr.ErrUnrelatedRuntime. Otherwise the payload is rebound
// to cap's runtime and scope.
func Restore(cap Capability, p *Persistent) (value.Value, error) {
	if p == nil {
		return value.Value{}, jserr.UnrelatedRuntime()
	}
	if p.engineID != cap.EngineID() {
		return value.Value{}, jserr.UnrelatedRuntime()
	}
	return value.Of(cap.Runtime(), p.raw), nil
}

// EngineID reports which engine p was saved against, for diagnostics.
func (p *Persistent) EngineID() EngineID { return p.engineID }

// Tag reports p's value tag without requiring a Restore.
func (p *Persistent) Tag() value.Tag { return p.tag }
