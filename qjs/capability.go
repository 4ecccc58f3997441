// Package qjs defines Capability, the token every scoped entry into a
// Realm produces. It is the one thing above persistent/function/class in
// the dependency order that those packages depend on only through their
// own minimal local interfaces - qjs.Capability satisfies all of them
// structurally without those packages importing qjs.
package qjs

import (
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/persistent"
)

// EngineID re-exports persistent.EngineID so callers constructing a
// Capability don't need to import persistent directly.
type EngineID = persistent.EngineID

// Capability is the token threaded through every host callback and every
// `With`/`WithValue` scoped entry into a Realm. It carries the engine id
// (for persistent.Restore's cross-engine check) and an open/closed flag
// that stands in for spec.md §9's invariant phantom scope: Go has no
// lifetime variance to lean on, so "a Capability may not be used outside
// the scope that produced it" is enforced dynamically by closing the flag
// the instant Realm.With/WithValue returns, rather than by a compile-time
// borrow. Values themselves (value.Value holding a plain *goja.Runtime)
// stay valid for the Runtime's whole life, same as any goja.Value - the
// risk this closes off is host code stashing a *Capability and calling
// back into it after its scope ended, not a dangling Value.
type Capability struct {
	rt       *goja.Runtime
	engineID EngineID
	closed   int32
}

// New opens a fresh Capability against rt/engineID.
func New(rt *goja.Runtime, engineID EngineID) *Capability {
	return &Capability{rt: rt, engineID: engineID}
}

// Runtime returns the underlying goja runtime. Satisfies
// persistent.Capability and function.Capability structurally.
func (c *Capability) Runtime() *goja.Runtime { return c.rt }

// EngineID returns the owning engine's id. Satisfies persistent.Capability.
func (c *Capability) EngineID() EngineID { return c.engineID }

// Close marks the capability as having left its scope. Called by
// Realm.With/WithValue exactly once, when fn returns.
func (c *Capability) Close() { atomic.StoreInt32(&c.closed, 1) }

// RequireOpen fails with jserr.ScopeEscaped if the capability's scope has
// already ended - the dynamic check for code that retains a *Capability
// past the callback it was handed to.
func (c *Capability) RequireOpen() error {
	if atomic.LoadInt32(&c.closed) != 0 {
		return jserr.ScopeEscaped()
	}
	return nil
}
