// Package realm implements Realm, the owner of one *goja.Runtime and the
// scoped-entry machinery ("With"/"WithValue") that produces a
// qjs.Capability for host code to operate through.
package realm

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/qjs"
	"github.com/gojsembed/qjsgo/value"
)

// Realm wraps exactly one *goja.Runtime - in this library, "one engine
// hosts several realms" is an Engine owning a registry of Realms that
// share the Engine's id, interrupt policy, class-id registry and async
// core, rather than several global objects multiplexed onto one runtime.
type Realm struct {
	mu       sync.Mutex
	rt       *goja.Runtime
	engineID qjs.EngineID
}

// New wraps rt as a Realm owned by the engine identified by engineID.
// Called by engine.Engine.NewRealm; exported so tests and standalone use
// don't need a full Engine. When rt has no InternalError global, New
// installs one as a subclass of Error, for jserr's Unknown mapping.
func New(rt *goja.Runtime, engineID qjs.EngineID) *Realm {
	if v := rt.GlobalObject().Get("InternalError"); v == nil || goja.IsUndefined(v) {
		_, _ = rt.RunString(`globalThis.InternalError = class InternalError extends Error {
	constructor(message) { super(message); this.name = "InternalError"; }
};`)
	}
	return &Realm{rt: rt, engineID: engineID}
}

// Runtime returns the wrapped goja runtime.
func (r *Realm) Runtime() *goja.Runtime { return r.rt }

// EngineID returns the owning engine's id.
func (r *Realm) EngineID() qjs.EngineID { return r.engineID }

// With opens a scoped Capability, serialized against every other scoped
// entry into this Realm (goja.Runtime is not safe for concurrent use),
// runs fn, and closes the Capability before returning - so a *Capability
// retained past fn's return fails RequireOpen checks performed by the
// packages built on it. A panic from fn propagates after the scope is
// closed and the lock released, mirroring the teacher's safeExecute
// recover-log-continue shape but re-panicking instead of swallowing,
// since a panicking host callback is a programming error the caller
// needs to see.
func (r *Realm) With(fn func(cap *qjs.Capability) error) error {
	r.mu.Lock()
	cap := qjs.New(r.rt, r.engineID)
	defer func() {
		cap.Close()
		r.mu.Unlock()
	}()
	return fn(cap)
}

// WithValue is With specialized for callbacks that produce a value.Value.
func (r *Realm) WithValue(fn func(cap *qjs.Capability) (value.Value, error)) (value.Value, error) {
	var out value.Value
	err := r.With(func(cap *qjs.Capability) error {
		v, err := fn(cap)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Eval compiles and runs src as a top-level script, returning its
// completion value converted to a value.Value, or the caught exception
// as a *jserr.CaughtError-wrapping error.
func (r *Realm) Eval(src string) (value.Value, error) {
	return r.WithValue(func(cap *qjs.Capability) (value.Value, error) {
		raw, err := r.rt.RunString(src)
		if err != nil {
			if exc, ok := err.(*goja.Exception); ok {
				return value.Value{}, jserr.Catch(exc)
			}
			return value.Value{}, jserr.Unknown(err)
		}
		return value.Of(r.rt, raw), nil
	})
}

// Global returns a top-level global by name, or value.Undefined if unset.
func (r *Realm) Global(name string) (value.Value, error) {
	return r.WithValue(func(cap *qjs.Capability) (value.Value, error) {
		raw := r.rt.GlobalObject().Get(name)
		if raw == nil {
			return value.Undefined(r.rt), nil
		}
		return value.Of(r.rt, raw), nil
	})
}

// SetGlobal installs v as a top-level global called name.
func (r *Realm) SetGlobal(name string, v any) error {
	return r.With(func(cap *qjs.Capability) error {
		if err := r.rt.Set(name, v); err != nil {
			return jserr.Unknown(fmt.Errorf("setting global %q: %w", name, err))
		}
		return nil
	})
}
